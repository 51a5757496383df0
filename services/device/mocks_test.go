package device

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"clipsynq/database"
	"clipsynq/models"
)

// memStore is an in-memory marker store.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *memStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

// fakeSession is a fixed-identity session selector.
type fakeSession struct {
	userID string
	qr     bool
}

func (f *fakeSession) UserID() string                    { return f.userID }
func (f *fakeSession) IsQRLogin() bool                   { return f.qr }
func (f *fakeSession) PromoteQRSession()                 {}
func (f *fakeSession) LinkQRUser(_, _, _, _ string) error { return nil }
func (f *fakeSession) ClearLocalSession()                { f.userID = "" }
func (f *fakeSession) UserLabel() string                 { return "You" }
func (f *fakeSession) CurrentFolder() string             { return "all" }
func (f *fakeSession) SetCurrentFolder(string)           {}
func (f *fakeSession) CurrentUser() *models.AuthUser     { return nil }

// fakeDB is an in-memory realtime database with watch support. Values are
// stored as JSON at exact paths; Get aggregates one level of children.
type fakeDB struct {
	mu       sync.Mutex
	data     map[string]json.RawMessage
	watchers map[string][]func(database.Snapshot)
	pushSeq  int

	failDelete map[string]bool
	ops        []string
	onOp       func(op string)
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		data:       make(map[string]json.RawMessage),
		watchers:   make(map[string][]func(database.Snapshot)),
		failDelete: make(map[string]bool),
	}
}

func (f *fakeDB) record(op string) {
	f.ops = append(f.ops, op)
	if f.onOp != nil {
		f.onOp(op)
	}
}

func (f *fakeDB) Get(_ context.Context, path string, v any) error {
	f.mu.Lock()
	raw, ok := f.data[path]
	if !ok {
		children := make(map[string]json.RawMessage)
		prefix := path + "/"
		for k, r := range f.data {
			if strings.HasPrefix(k, prefix) {
				children[strings.TrimPrefix(k, prefix)] = r
			}
		}
		if len(children) > 0 {
			raw, _ = json.Marshal(children)
			ok = true
		}
	}
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (f *fakeDB) Set(ctx context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[path] = raw
	f.record("set:" + path)
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Update(ctx context.Context, path string, fields map[string]any) error {
	f.mu.Lock()
	merged := make(map[string]any)
	if raw, ok := f.data[path]; ok {
		_ = json.Unmarshal(raw, &merged)
	}
	for k, v := range fields {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.data[path] = raw
	f.record("update:" + path)
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	if f.failDelete[path] {
		f.record("delete-failed:" + path)
		f.mu.Unlock()
		return fmt.Errorf("permission denied at %s", path)
	}
	delete(f.data, path)
	prefix := path + "/"
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			delete(f.data, k)
		}
	}
	f.record("delete:" + path)
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Push(ctx context.Context, path string, v any) (string, error) {
	f.mu.Lock()
	f.pushSeq++
	key := fmt.Sprintf("push-%d", f.pushSeq)
	f.mu.Unlock()
	if err := f.Set(ctx, path+"/"+key, v); err != nil {
		return "", err
	}
	return key, nil
}

func (f *fakeDB) Watch(_ context.Context, path string, fn func(database.Snapshot)) (database.UnsubscribeFunc, error) {
	f.mu.Lock()
	f.watchers[path] = append(f.watchers[path], fn)
	idx := len(f.watchers[path]) - 1
	f.mu.Unlock()

	// Streams deliver the current value first.
	fn(f.snapshot(path))

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if fns, ok := f.watchers[path]; ok && idx < len(fns) {
			fns[idx] = nil
		}
	}, nil
}

func (f *fakeDB) snapshot(path string) database.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return database.Snapshot{Path: path, Data: f.data[path]}
}

func (f *fakeDB) notify(path string) {
	snap := f.snapshot(path)
	f.mu.Lock()
	fns := append([]func(database.Snapshot){}, f.watchers[path]...)
	f.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(snap)
		}
	}
}

func (f *fakeDB) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[path]
	return ok
}

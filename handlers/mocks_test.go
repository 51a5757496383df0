package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"clipsynq/database"
	"clipsynq/models"
	"clipsynq/services/events"
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

// fakeAuth is a scriptable identity provider.
type fakeAuth struct {
	mu       sync.Mutex
	user     *models.AuthUser
	signOuts int
}

func (f *fakeAuth) SignInWithEmail(_ context.Context, email, _ string) (*models.AuthUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = &models.AuthUser{UID: "u1", Email: email}
	return f.user, nil
}

func (f *fakeAuth) SignUpWithEmail(ctx context.Context, email, password string) (*models.AuthUser, error) {
	return f.SignInWithEmail(ctx, email, password)
}

func (f *fakeAuth) CurrentUser() *models.AuthUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	f.signOuts++
	return nil
}

func (f *fakeAuth) signOutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOuts
}

// fakeRegistry records registrations and satisfies the registry boundary.
type fakeRegistry struct {
	mu         sync.Mutex
	registered []string
}

func (f *fakeRegistry) Register(_ context.Context, userID, deviceID, name string, isQR bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, userID)
	return nil
}

func (f *fakeRegistry) RegisterCurrentDevice(context.Context) error        { return nil }
func (f *fakeRegistry) UpdateStatus(context.Context, bool) error           { return nil }
func (f *fakeRegistry) Rename(context.Context, string) error               { return nil }
func (f *fakeRegistry) Remove(context.Context, string, string, bool) error { return nil }
func (f *fakeRegistry) ForceLogout(context.Context, string, bool) error    { return nil }
func (f *fakeRegistry) List(context.Context) ([]models.DeviceEntry, error) { return nil, nil }

func (f *fakeRegistry) registeredFor(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.registered {
		if id == userID {
			return true
		}
	}
	return false
}

// fakeDB is an in-memory realtime store whose subscriptions die with their
// context, the way the SSE stream does: once a watcher's context is canceled
// it never sees another change.
type fakeDB struct {
	mu       sync.Mutex
	data     map[string]json.RawMessage
	watchers map[string][]*dbWatcher
	pushSeq  int
}

type dbWatcher struct {
	ctx context.Context
	fn  func(database.Snapshot)
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		data:     make(map[string]json.RawMessage),
		watchers: make(map[string][]*dbWatcher),
	}
}

func (f *fakeDB) Get(_ context.Context, path string, v any) error {
	f.mu.Lock()
	raw, ok := f.data[path]
	f.mu.Unlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (f *fakeDB) Set(_ context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.data[path] = raw
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Update(_ context.Context, path string, fields map[string]any) error {
	f.mu.Lock()
	merged := make(map[string]any)
	if raw, ok := f.data[path]; ok {
		if err := json.Unmarshal(raw, &merged); err != nil {
			f.mu.Unlock()
			return err
		}
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
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	delete(f.data, path)
	f.mu.Unlock()
	f.notify(path)
	return nil
}

func (f *fakeDB) Push(ctx context.Context, path string, v any) (string, error) {
	f.mu.Lock()
	f.pushSeq++
	key := fmt.Sprintf("push-%d", f.pushSeq)
	f.mu.Unlock()
	return key, f.Set(ctx, path+"/"+key, v)
}

func (f *fakeDB) Watch(ctx context.Context, path string, fn func(database.Snapshot)) (database.UnsubscribeFunc, error) {
	w := &dbWatcher{ctx: ctx, fn: fn}
	f.mu.Lock()
	f.watchers[path] = append(f.watchers[path], w)
	initial := f.data[path]
	f.mu.Unlock()

	fn(database.Snapshot{Path: path, Data: initial})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := f.watchers[path]
		for i, entry := range list {
			if entry == w {
				f.watchers[path] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}, nil
}

func (f *fakeDB) has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[path]
	return ok
}

// notify delivers synchronously, with the lock released so callbacks may
// issue further store calls. Canceled watchers are skipped.
func (f *fakeDB) notify(path string) {
	f.mu.Lock()
	raw := f.data[path]
	var live []*dbWatcher
	for watched, list := range f.watchers {
		if watched != path && !strings.HasPrefix(path, watched+"/") {
			continue
		}
		for _, w := range list {
			if w.ctx.Err() == nil {
				live = append(live, w)
			}
		}
	}
	f.mu.Unlock()

	for _, w := range live {
		w.fn(database.Snapshot{Path: path, Data: raw})
	}
}

// waitEvent drains the bus subscription until a matching event arrives.
func waitEvent(t *testing.T, ch <-chan events.Event, kind events.Kind, field, want string) events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind != kind {
				continue
			}
			if field == "" {
				return ev
			}
			if got, _ := ev.Payload[field].(string); got == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event with %s=%q", kind, field, want)
		}
	}
}

// waitFor polls cond until it holds.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

package folder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"clipsynq/database"
	"clipsynq/models"

	"go.uber.org/zap"
)

type fakeSession struct {
	userID string
	folder string
}

func (f *fakeSession) UserID() string                     { return f.userID }
func (f *fakeSession) IsQRLogin() bool                    { return false }
func (f *fakeSession) PromoteQRSession()                  {}
func (f *fakeSession) LinkQRUser(_, _, _, _ string) error { return nil }
func (f *fakeSession) ClearLocalSession()                 {}
func (f *fakeSession) UserLabel() string                  { return "You" }
func (f *fakeSession) CurrentFolder() string              { return f.folder }
func (f *fakeSession) SetCurrentFolder(folder string)     { f.folder = folder }
func (f *fakeSession) CurrentUser() *models.AuthUser      { return nil }

type fakeDB struct {
	mu      sync.Mutex
	data    map[string]json.RawMessage
	pushSeq int
}

func newFakeDB() *fakeDB { return &fakeDB{data: make(map[string]json.RawMessage)} }

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

func (f *fakeDB) Set(_ context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[path] = raw
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
	f.mu.Unlock()
	return nil
}

func (f *fakeDB) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, path)
	return nil
}

func (f *fakeDB) Push(ctx context.Context, path string, v any) (string, error) {
	f.mu.Lock()
	f.pushSeq++
	key := fmt.Sprintf("push-%d", f.pushSeq)
	f.mu.Unlock()
	return key, f.Set(ctx, path+"/"+key, v)
}

func (f *fakeDB) Watch(context.Context, string, func(database.Snapshot)) (database.UnsubscribeFunc, error) {
	return func() {}, nil
}

func newTestService(db *fakeDB, sess *fakeSession) *DefaultFolderService {
	return &DefaultFolderService{
		DB:      db,
		Session: sess,
		Log:     zap.NewNop(),
		Now:     func() int64 { return 9000 },
	}
}

func TestCreateFolder(t *testing.T) {
	db := newFakeDB()
	svc := newTestService(db, &fakeSession{userID: "u1", folder: "all"})
	ctx := context.Background()

	id, err := svc.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var f models.Folder
	if err := db.Get(ctx, "users/u1/folders/"+id, &f); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.Name != "Work" || f.Icon != "folder" || f.CreatedAt != 9000 {
		t.Errorf("folder = %+v", f)
	}
}

func TestCreateFolderRejectsDuplicatesAndReserved(t *testing.T) {
	db := newFakeDB()
	svc := newTestService(db, &fakeSession{userID: "u1", folder: "all"})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Work", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "work", ""); err == nil {
		t.Error("case-insensitive duplicate accepted")
	}
	if _, err := svc.Create(ctx, "all", ""); err == nil {
		t.Error("reserved name accepted")
	}
	if _, err := svc.Create(ctx, "   ", ""); err == nil {
		t.Error("blank name accepted")
	}
}

func TestDeleteFolderReassignsMessages(t *testing.T) {
	db := newFakeDB()
	sess := &fakeSession{userID: "u1", folder: "Work"}
	svc := newTestService(db, sess)
	ctx := context.Background()

	id, err := svc.Create(ctx, "Work", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	db.Set(ctx, "users/u1/messages/m1", models.Message{Text: "in work", Folder: "Work"})
	db.Set(ctx, "users/u1/messages/m2", models.Message{Text: "elsewhere", Folder: "home"})

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var m1, m2 models.Message
	db.Get(ctx, "users/u1/messages/m1", &m1)
	db.Get(ctx, "users/u1/messages/m2", &m2)
	if m1.Folder != "all" {
		t.Errorf("m1 folder = %q, want all", m1.Folder)
	}
	if m2.Folder != "home" {
		t.Errorf("m2 folder = %q, want untouched", m2.Folder)
	}

	// Active selection pointed at the deleted folder; it resets.
	if sess.folder != "all" {
		t.Errorf("current folder = %q after delete, want all", sess.folder)
	}

	var gone models.Folder
	db.Get(ctx, "users/u1/folders/"+id, &gone)
	if gone.Name != "" {
		t.Error("folder record survived delete")
	}
}

func TestRenameFolder(t *testing.T) {
	db := newFakeDB()
	svc := newTestService(db, &fakeSession{userID: "u1", folder: "all"})
	ctx := context.Background()

	id, err := svc.Create(ctx, "Work", "briefcase")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Rename(ctx, id, "Office"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	var f models.Folder
	if err := db.Get(ctx, "users/u1/folders/"+id, &f); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.Name != "Office" || f.Icon != "briefcase" {
		t.Errorf("folder = %+v", f)
	}

	if err := svc.Rename(ctx, id, " "); err == nil {
		t.Error("blank rename accepted")
	}
}

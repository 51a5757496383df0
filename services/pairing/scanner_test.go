package pairing

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/events"
	"clipsynq/services/session"

	"go.uber.org/zap"
)

// scannerAuth is a provider with nobody signed in, which is the scanner's
// normal condition.
type scannerAuth struct{}

func (scannerAuth) SignInWithEmail(context.Context, string, string) (*models.AuthUser, error) {
	return nil, nil
}
func (scannerAuth) SignUpWithEmail(context.Context, string, string) (*models.AuthUser, error) {
	return nil, nil
}
func (scannerAuth) CurrentUser() *models.AuthUser { return nil }
func (scannerAuth) SignOut(context.Context) error { return nil }

type scanFixture struct {
	scanner *Scanner
	db      *fakeDB
	reg     *fakeRegistry
	store   *memStore
	bus     *events.Bus
	events  <-chan events.Event

	mu  sync.Mutex
	ops []string
}

func newScanFixture(t *testing.T) *scanFixture {
	t.Helper()
	fx := &scanFixture{
		db:    newFakeDB(),
		reg:   &fakeRegistry{},
		store: newMemStore(),
		bus:   events.NewBus(),
	}
	record := func(op string) {
		fx.mu.Lock()
		fx.ops = append(fx.ops, op)
		fx.mu.Unlock()
	}
	fx.db.onOp = record
	fx.reg.onOp = record
	fx.store.onOp = record

	sess := session.NewDefaultSessionService(scannerAuth{}, fx.store, fx.bus, zap.NewNop())
	fx.scanner = &Scanner{
		DB:        fx.db,
		Registry:  fx.reg,
		Session:   sess,
		Markers:   fx.store,
		Bus:       fx.bus,
		Log:       zap.NewNop(),
		Timeout:   time.Minute,
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) ClipSynq-Agent",
		Now:       func() int64 { return 5000 },
	}
	ch, detach := fx.bus.Subscribe()
	fx.events = ch
	t.Cleanup(detach)
	t.Cleanup(fx.scanner.teardown)
	return fx
}

func (fx *scanFixture) opsSnapshot() []string {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]string{}, fx.ops...)
}

func (fx *scanFixture) scanStatuses() []string {
	var out []string
	for {
		select {
		case ev := <-fx.events:
			if ev.Kind == events.KindScanStatus {
				out = append(out, ev.Payload["status"].(string))
			}
		default:
			return out
		}
	}
}

func validPayload(t *testing.T) []byte {
	t.Helper()
	raw, err := EncodePayload(models.QRPayload{
		Type:      models.QRPayloadType,
		UserID:    "owner-uid",
		UserEmail: "owner@example.com",
		UserName:  "Owner",
		SessionID: "s1",
		Timestamp: 1,
	})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	return raw
}

func TestHandleScanInvalidPayload(t *testing.T) {
	fx := newScanFixture(t)

	fx.scanner.HandleScan(context.Background(), []byte("garbage"))

	if got := fx.opsSnapshot(); len(got) != 0 {
		t.Errorf("invalid scan caused writes: %v", got)
	}
	statuses := fx.scanStatuses()
	if len(statuses) != 1 || statuses[0] != "invalid" {
		t.Errorf("scan statuses = %v, want [invalid]", statuses)
	}
}

func TestHandleScanMarksSessionScanned(t *testing.T) {
	fx := newScanFixture(t)
	ctx := context.Background()
	fx.db.Set(ctx, "qr-sessions/s1", models.QRSession{UserID: "owner-uid", Status: models.QRStatusPending})

	fx.scanner.HandleScan(ctx, validPayload(t))

	var sess models.QRSession
	if err := fx.db.Get(ctx, "qr-sessions/s1", &sess); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.Status != models.QRStatusPending || sess.ScannedAt != 5000 {
		t.Errorf("session after scan = %+v", sess)
	}
	if fx.store.Get(localstore.KeyLoginMethod) != "" {
		t.Error("loginMethod set before owner approval")
	}
}

func TestApprovedScanLinksInOrder(t *testing.T) {
	fx := newScanFixture(t)
	ctx := context.Background()
	fx.db.Set(ctx, "qr-sessions/s1", models.QRSession{
		UserID: "owner-uid", UserEmail: "owner@example.com", Status: models.QRStatusPending,
	})

	fx.scanner.HandleScan(ctx, validPayload(t))
	fx.db.Update(ctx, "qr-sessions/s1", map[string]any{"status": models.QRStatusApproved})

	// Device registration must precede the loginMethod marker, and the
	// terminal status must be written before the session is deleted.
	ops := fx.opsSnapshot()
	idx := func(op string) int {
		for i, o := range ops {
			if strings.HasPrefix(o, op) {
				return i
			}
		}
		return -1
	}
	register := idx("register:owner-uid")
	method := idx("marker:" + localstore.KeyLoginMethod)
	terminal := -1
	deleted := idx("delete:qr-sessions/s1")
	for i, o := range ops {
		if o == "update:qr-sessions/s1" && i > register {
			terminal = i
		}
	}
	if register == -1 || method == -1 || deleted == -1 {
		t.Fatalf("missing ops in %v", ops)
	}
	if !(register < method && method < terminal && terminal < deleted) {
		t.Errorf("wrong order: register=%d method=%d terminal=%d delete=%d ops=%v",
			register, method, terminal, deleted, ops)
	}

	if fx.store.Get(localstore.KeyLinkedUserID) != "owner-uid" {
		t.Error("linkedUserId not persisted")
	}
	if fx.store.Get(localstore.KeyLoginMethod) != localstore.LoginMethodQR {
		t.Error("loginMethod not persisted")
	}
	if fx.store.Get(localstore.KeyLinkedUserName) != "Owner" {
		t.Errorf("linkedUserName = %q", fx.store.Get(localstore.KeyLinkedUserName))
	}
	if fx.store.Get(localstore.KeyDeviceName) == "" {
		t.Error("deviceName not persisted")
	}
	if fx.db.has("qr-sessions/s1") {
		t.Error("completed session not deleted")
	}

	var sawLinked, sawRedirect bool
	for {
		select {
		case ev := <-fx.events:
			if ev.Kind == events.KindScanStatus && ev.Payload["status"] == "linked" {
				sawLinked = true
			}
			if ev.Kind == events.KindRedirect && ev.Payload["target"] == "app" {
				sawRedirect = true
			}
		default:
			if !sawLinked {
				t.Error("no linked status published")
			}
			if !sawRedirect {
				t.Error("no redirect-to-app published")
			}
			return
		}
	}
}

func TestApprovedScanRegistrationFailureLeavesNoMarkers(t *testing.T) {
	fx := newScanFixture(t)
	fx.reg.fail = true
	ctx := context.Background()
	fx.db.Set(ctx, "qr-sessions/s1", models.QRSession{UserID: "owner-uid", Status: models.QRStatusPending})

	fx.scanner.HandleScan(ctx, validPayload(t))
	fx.db.Update(ctx, "qr-sessions/s1", map[string]any{"status": models.QRStatusApproved})

	for _, key := range []string{
		localstore.KeyLinkedUserID, localstore.KeyLoginMethod, localstore.KeyLinkedUserEmail,
	} {
		if fx.store.Get(key) != "" {
			t.Errorf("marker %s written despite failed registration", key)
		}
	}
}

func TestDeniedScan(t *testing.T) {
	fx := newScanFixture(t)
	ctx := context.Background()
	fx.db.Set(ctx, "qr-sessions/s1", models.QRSession{UserID: "owner-uid", Status: models.QRStatusPending})

	fx.scanner.HandleScan(ctx, validPayload(t))
	fx.db.Update(ctx, "qr-sessions/s1", map[string]any{"status": models.QRStatusDenied})

	if fx.store.Get(localstore.KeyLoginMethod) != "" {
		t.Error("denied scan still linked the device")
	}
	if fx.db.has("qr-sessions/s1") {
		t.Error("denied session not deleted")
	}

	var sawToast, sawReady bool
	for {
		select {
		case ev := <-fx.events:
			if ev.Kind == events.KindToast {
				sawToast = true
			}
			if ev.Kind == events.KindScanStatus && ev.Payload["status"] == "ready" {
				sawReady = true
			}
		default:
			if !sawToast {
				t.Error("no denial toast published")
			}
			if !sawReady {
				t.Error("scanner not returned to ready state")
			}
			return
		}
	}
}

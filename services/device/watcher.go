package device

import (
	"context"
	"sync"

	"clipsynq/database"
	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/events"
	"clipsynq/services/identity"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

// WatcherState enumerates the force-logout watcher lifecycle.
type WatcherState string

const (
	WatcherInactive  WatcherState = "INACTIVE"
	WatcherWatching  WatcherState = "WATCHING"
	WatcherLoggedOut WatcherState = "LOGGED_OUT"
)

// ForceLogoutWatcher subscribes to this device's own record and tears the
// local session down when another device flags it with forceLogout.
type ForceLogoutWatcher struct {
	DB      database.Client
	Auth    identity.Provider
	Session session.Service
	Markers localstore.Store
	Bus     *events.Bus
	Log     *zap.Logger

	mu    sync.Mutex
	state WatcherState
	unsub database.UnsubscribeFunc
	path  string
}

func NewForceLogoutWatcher(db database.Client, auth identity.Provider, sess session.Service, markers localstore.Store, bus *events.Bus, log *zap.Logger) *ForceLogoutWatcher {
	return &ForceLogoutWatcher{
		DB:      db,
		Auth:    auth,
		Session: sess,
		Markers: markers,
		Bus:     bus,
		Log:     log,
		state:   WatcherInactive,
	}
}

func (w *ForceLogoutWatcher) State() WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start subscribes to the current device record. Safe to call repeatedly:
// any prior subscription is torn down first so auth-state churn never stacks
// duplicate listeners.
func (w *ForceLogoutWatcher) Start(ctx context.Context) error {
	userID := w.Session.UserID()
	deviceID := w.Markers.Get(localstore.KeyDeviceID)
	if userID == "" || deviceID == "" {
		w.Log.Debug("watcher not started: identity not resolved")
		return nil
	}

	path := utils.DevicePath(userID, deviceID, w.Session.IsQRLogin())

	w.mu.Lock()
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
	w.mu.Unlock()

	unsub, err := w.DB.Watch(ctx, path, w.onSnapshot)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.unsub = unsub
	w.path = path
	w.state = WatcherWatching
	w.mu.Unlock()

	w.Bus.Publish(events.KindWatcher, map[string]any{"state": string(WatcherWatching)})
	return nil
}

// Stop tears the subscription down and returns the watcher to INACTIVE.
func (w *ForceLogoutWatcher) Stop() {
	w.mu.Lock()
	unsub := w.unsub
	w.unsub = nil
	if w.state == WatcherWatching {
		w.state = WatcherInactive
	}
	w.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (w *ForceLogoutWatcher) onSnapshot(snap database.Snapshot) {
	if !snap.Exists() {
		return
	}
	var rec models.DeviceRecord
	if err := snap.Decode(&rec); err != nil {
		w.Log.Warn("malformed device record on watch", zap.String("path", snap.Path), zap.Error(err))
		return
	}
	if !rec.ForceLogout {
		return
	}

	w.mu.Lock()
	if w.state != WatcherWatching {
		w.mu.Unlock()
		return
	}
	w.state = WatcherLoggedOut
	unsub := w.unsub
	w.unsub = nil
	path := w.path
	w.mu.Unlock()

	w.Log.Info("force logout triggered on this device", zap.String("path", path))
	if unsub != nil {
		unsub()
	}
	w.logout(path)
}

// logout runs the forced-logout sequence. Record deletion and provider
// sign-out are best-effort; local cleanup and the redirect always complete.
func (w *ForceLogoutWatcher) logout(path string) {
	ctx := context.Background()

	if err := w.DB.Delete(ctx, path); err != nil {
		w.Log.Warn("failed to remove device after forceLogout", zap.Error(err))
	}
	if err := w.Auth.SignOut(ctx); err != nil {
		w.Log.Warn("signOut after forceLogout failed", zap.Error(err))
	}

	w.Session.ClearLocalSession()

	w.Bus.Publish(events.KindWatcher, map[string]any{"state": string(WatcherLoggedOut)})
	w.Bus.Publish(events.KindRedirect, map[string]any{"target": "login"})
}

package pairing

import (
	"context"
	"sync"
	"time"

	"clipsynq/database"
	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/device"
	"clipsynq/services/events"
	"clipsynq/services/notification"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

// scanListenerTimeout unconditionally tears the scanner's listener down when
// no terminal status arrives. Independent of the initiator's 5-minute window.
const scanListenerTimeout = 60 * time.Second

// Scanner runs the second-device side of the pairing protocol.
type Scanner struct {
	DB       database.Client
	Registry device.Registry
	Session  session.Service
	Markers  localstore.Store
	Bus      *events.Bus
	Log      *zap.Logger

	// Notify, when set, tells the account owner a new device linked up.
	Notify notification.Service

	Timeout   time.Duration
	UserAgent string
	Now       func() int64

	mu    sync.Mutex
	unsub database.UnsubscribeFunc
	timer *time.Timer
}

func NewScanner(db database.Client, reg device.Registry, sess session.Service, markers localstore.Store, bus *events.Bus, log *zap.Logger) *Scanner {
	return &Scanner{
		DB:        db,
		Registry:  reg,
		Session:   sess,
		Markers:   markers,
		Bus:       bus,
		Log:       log,
		Timeout:   scanListenerTimeout,
		UserAgent: device.AgentUserAgent(),
		Now:       func() int64 { return time.Now().UnixMilli() },
	}
}

// HandleScan processes one decoded QR payload. Malformed payloads surface as
// an "invalid" scan status; nothing escapes to the caller.
func (s *Scanner) HandleScan(ctx context.Context, raw []byte) {
	payload, err := DecodePayload(raw)
	if err != nil {
		s.Log.Warn("invalid QR code", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "invalid"})
		return
	}

	s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "detected", "sessionId": payload.SessionID})

	// Advisory only: tells the initiator someone scanned. Approval is gated
	// on the owner, not on this write.
	sessionPath := utils.QRSessionPath(payload.SessionID)
	err = s.DB.Update(ctx, sessionPath, map[string]any{
		"status":    models.QRStatusPending,
		"scannedAt": s.Now(),
	})
	if err != nil {
		s.Log.Warn("failed to mark pairing session scanned", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "error"})
		return
	}

	unsub, err := s.DB.Watch(ctx, sessionPath, func(snap database.Snapshot) {
		s.onSession(payload, snap)
	})
	if err != nil {
		s.Log.Warn("failed to watch pairing session", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "error"})
		return
	}

	s.mu.Lock()
	if s.unsub != nil {
		s.unsub()
	}
	s.unsub = unsub
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.Timeout, s.teardown)
	s.mu.Unlock()
}

func (s *Scanner) onSession(payload *models.QRPayload, snap database.Snapshot) {
	if !snap.Exists() {
		return
	}
	var sess models.QRSession
	if err := snap.Decode(&sess); err != nil {
		s.Log.Warn("malformed pairing session", zap.Error(err))
		return
	}

	switch sess.Status {
	case models.QRStatusApproved:
		s.teardown()
		s.completeLink(payload, &sess)
	case models.QRStatusDenied:
		s.teardown()
		s.Bus.Publish(events.KindToast, map[string]any{"level": "error", "message": "Access denied by the device owner"})
		if err := s.DB.Delete(context.Background(), utils.QRSessionPath(payload.SessionID)); err != nil {
			s.Log.Warn("failed to delete denied pairing session", zap.Error(err))
		}
		// Back to a scannable state; denial is not terminal for the flow.
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "ready"})
	}
}

// completeLink registers this device under the owner's account and only then
// persists the QR session markers, so a failed registration can never leave
// the store half-linked.
func (s *Scanner) completeLink(payload *models.QRPayload, sess *models.QRSession) {
	ctx := context.Background()

	deviceID, err := device.EnsureDeviceID(s.Markers)
	if err != nil {
		s.Log.Error("failed to resolve device id", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "error"})
		return
	}
	info := device.DetectDeviceInfo(s.UserAgent)

	if err := s.Registry.Register(ctx, payload.UserID, deviceID, info.DeviceName, true); err != nil {
		s.Log.Error("QR device registration failed", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "error"})
		return
	}

	// Name: prefer QR payload, then session, then email prefix. Photo cascades
	// the same way.
	name := payload.UserName
	if name == "" {
		name = sess.UserName
	}
	if name == "" {
		name = models.EmailLocalPart(payload.UserEmail)
	}
	photo := payload.UserPhoto
	if photo == "" {
		photo = sess.UserPhoto
	}

	if err := s.Session.LinkQRUser(payload.UserID, payload.UserEmail, name, photo); err != nil {
		s.Log.Error("failed to persist QR session markers", zap.Error(err))
		s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "error"})
		return
	}
	if err := s.Markers.Set(localstore.KeyDeviceName, info.DeviceName); err != nil {
		s.Log.Warn("failed to persist device name", zap.Error(err))
	}

	// Same-path writes are delivered in order, so the initiator observes the
	// terminal status before the record disappears.
	sessionPath := utils.QRSessionPath(payload.SessionID)
	if err := s.DB.Update(ctx, sessionPath, map[string]any{"status": models.QRStatusAuthenticated}); err != nil {
		s.Log.Warn("failed to mark pairing session authenticated", zap.Error(err))
	}
	if err := s.DB.Delete(ctx, sessionPath); err != nil {
		s.Log.Warn("failed to delete completed pairing session", zap.Error(err))
	}

	if s.Notify != nil {
		_, err := s.Notify.Push(ctx, payload.UserID, models.Notification{
			Title: "New device linked",
			Body:  info.DeviceName,
			Kind:  "device",
		})
		if err != nil {
			s.Log.Warn("failed to notify owner of new device", zap.Error(err))
		}
	}

	s.Log.Info("device linked via QR", zap.String("owner", payload.UserID), zap.String("device", deviceID))
	s.Bus.Publish(events.KindScanStatus, map[string]any{"status": "linked"})
	s.Bus.Publish(events.KindRedirect, map[string]any{"target": "app"})
}

// teardown detaches the session listener. Idempotent.
func (s *Scanner) teardown() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

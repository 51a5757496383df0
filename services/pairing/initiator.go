package pairing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clipsynq/database"
	"clipsynq/models"
	"clipsynq/services/events"
	"clipsynq/utils"

	"go.uber.org/zap"
)

// PairingWindow is the fixed validity of a pairing session. Cleanup is purely
// client-driven: the server enforces no TTL, so the generating side deletes
// the record at expiry itself.
const PairingWindow = 5 * time.Minute

// successCloseDelay keeps the success state visible before the view closes.
const successCloseDelay = 2 * time.Second

// Ticket is what the initiator hands to the rendering layer.
type Ticket struct {
	SessionID string           `json:"sessionId"`
	Payload   models.QRPayload `json:"payload"`
	PNG       []byte           `json:"-"`
	ExpiresAt int64            `json:"expiresAt"`
}

// Initiator runs the owner side of the pairing protocol. One live session at
// a time; starting a new one cancels the previous.
type Initiator struct {
	DB  database.Client
	Bus *events.Bus
	Log *zap.Logger

	Window     time.Duration
	CloseDelay time.Duration
	Now        func() int64

	mu          sync.Mutex
	sessionID   string
	unsub       database.UnsubscribeFunc
	expireTimer *time.Timer
	closeTimer  *time.Timer
}

func NewInitiator(db database.Client, bus *events.Bus, log *zap.Logger) *Initiator {
	return &Initiator{
		DB:         db,
		Bus:        bus,
		Log:        log,
		Window:     PairingWindow,
		CloseDelay: successCloseDelay,
		Now:        func() int64 { return time.Now().UnixMilli() },
	}
}

// Begin creates a pending pairing session for the signed-in owner, renders
// the scannable code, and subscribes for the scanner's progress.
func (i *Initiator) Begin(ctx context.Context, owner *models.AuthUser) (*Ticket, error) {
	if owner == nil || owner.UID == "" {
		return nil, fmt.Errorf("user not authenticated")
	}
	i.Cancel()

	displayName := owner.Label()
	now := i.Now()
	session := models.QRSession{
		UserID:    owner.UID,
		UserEmail: owner.Email,
		UserName:  displayName,
		UserPhoto: owner.PhotoURL,
		CreatedAt: now,
		ExpiresAt: now + i.Window.Milliseconds(),
		Status:    models.QRStatusPending,
	}

	sessionID, err := i.DB.Push(ctx, "qr-sessions", session)
	if err != nil {
		return nil, fmt.Errorf("failed to create pairing session: %w", err)
	}

	payload := models.QRPayload{
		Type:      models.QRPayloadType,
		UserID:    owner.UID,
		UserEmail: owner.Email,
		UserName:  displayName,
		UserPhoto: owner.PhotoURL,
		SessionID: sessionID,
		Timestamp: now,
	}
	png, err := RenderPNG(payload)
	if err != nil {
		_ = i.DB.Delete(ctx, utils.QRSessionPath(sessionID))
		return nil, err
	}

	unsub, err := i.DB.Watch(ctx, utils.QRSessionPath(sessionID), func(snap database.Snapshot) {
		i.onSession(sessionID, snap)
	})
	if err != nil {
		_ = i.DB.Delete(ctx, utils.QRSessionPath(sessionID))
		return nil, fmt.Errorf("failed to watch pairing session: %w", err)
	}

	i.mu.Lock()
	i.sessionID = sessionID
	i.unsub = unsub
	i.expireTimer = time.AfterFunc(i.Window, func() { i.expire(sessionID) })
	i.mu.Unlock()

	i.Log.Info("pairing session created", zap.String("session", sessionID))
	i.Bus.Publish(events.KindPairing, map[string]any{"status": models.QRStatusPending, "sessionId": sessionID})

	return &Ticket{
		SessionID: sessionID,
		Payload:   payload,
		PNG:       png,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (i *Initiator) onSession(sessionID string, snap database.Snapshot) {
	if !snap.Exists() {
		return
	}
	var session models.QRSession
	if err := snap.Decode(&session); err != nil {
		i.Log.Warn("malformed pairing session", zap.String("session", sessionID), zap.Error(err))
		return
	}

	switch {
	// Scanners stamp scannedAt without advancing the status; both shapes
	// mean the code was read on another device.
	case session.Status == models.QRStatusScanned,
		session.Status == models.QRStatusPending && session.ScannedAt > 0:
		i.Bus.Publish(events.KindPairing, map[string]any{"status": models.QRStatusScanned, "sessionId": sessionID})
	case session.Status == models.QRStatusAuthenticated:
		i.Bus.Publish(events.KindPairing, map[string]any{"status": models.QRStatusAuthenticated, "sessionId": sessionID})
		i.mu.Lock()
		if i.sessionID == sessionID && i.closeTimer == nil {
			i.closeTimer = time.AfterFunc(i.CloseDelay, func() {
				i.teardown(sessionID)
				i.Bus.Publish(events.KindPairing, map[string]any{"status": "closed", "sessionId": sessionID})
			})
		}
		i.mu.Unlock()
	}
}

// expire fires when no terminal state arrived inside the window.
func (i *Initiator) expire(sessionID string) {
	i.mu.Lock()
	current := i.sessionID
	i.mu.Unlock()
	if current != sessionID {
		return
	}
	i.Log.Info("pairing session expired", zap.String("session", sessionID))
	i.teardown(sessionID)
	i.Bus.Publish(events.KindPairing, map[string]any{"status": "expired", "sessionId": sessionID})
}

// Live returns the id of the in-flight pairing session, or "" when none is
// active. Expiry, close, and Cancel all clear it.
func (i *Initiator) Live() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sessionID
}

// Approve grants the scanning device access. Invoked by the owner's UI once
// it sees the scanned status.
func (i *Initiator) Approve(ctx context.Context, sessionID string) error {
	return i.DB.Update(ctx, utils.QRSessionPath(sessionID), map[string]any{
		"status": models.QRStatusApproved,
	})
}

// Deny rejects the scanning device. The scanner deletes the session.
func (i *Initiator) Deny(ctx context.Context, sessionID string) error {
	return i.DB.Update(ctx, utils.QRSessionPath(sessionID), map[string]any{
		"status": models.QRStatusDenied,
	})
}

// Cancel aborts the live pairing session, if any (view closed).
func (i *Initiator) Cancel() {
	i.mu.Lock()
	sessionID := i.sessionID
	i.mu.Unlock()
	if sessionID != "" {
		i.teardown(sessionID)
	}
}

// teardown stops timers, detaches the listener, and deletes the session
// record. A session record never outlives its observed terminal state.
func (i *Initiator) teardown(sessionID string) {
	i.mu.Lock()
	if i.sessionID != sessionID {
		i.mu.Unlock()
		return
	}
	i.sessionID = ""
	unsub := i.unsub
	i.unsub = nil
	if i.expireTimer != nil {
		i.expireTimer.Stop()
		i.expireTimer = nil
	}
	if i.closeTimer != nil {
		i.closeTimer.Stop()
		i.closeTimer = nil
	}
	i.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if err := i.DB.Delete(context.Background(), utils.QRSessionPath(sessionID)); err != nil {
		i.Log.Warn("pairing session cleanup failed", zap.String("session", sessionID), zap.Error(err))
	}
}

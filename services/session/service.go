package session

import (
	"sync"

	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/events"
	"clipsynq/services/identity"

	"go.uber.org/zap"
)

const defaultFolder = "all"

var _ Service = (*DefaultSessionService)(nil)

// DefaultSessionService is the production implementation.
type DefaultSessionService struct {
	Auth    identity.Provider
	Markers localstore.Store
	Bus     *events.Bus
	Log     *zap.Logger

	mu            sync.Mutex
	currentFolder string
}

func NewDefaultSessionService(auth identity.Provider, markers localstore.Store, bus *events.Bus, log *zap.Logger) *DefaultSessionService {
	folder := markers.Get(localstore.KeyCurrentFolder)
	if folder == "" {
		folder = defaultFolder
	}
	return &DefaultSessionService{
		Auth:          auth,
		Markers:       markers,
		Bus:           bus,
		Log:           log,
		currentFolder: folder,
	}
}

func (s *DefaultSessionService) UserID() string {
	// Priority 1: live provider session.
	if u := s.Auth.CurrentUser(); u != nil && u.UID != "" {
		return u.UID
	}
	// Priority 2: QR linkage, only when the provider session is absent.
	linked := s.Markers.Get(localstore.KeyLinkedUserID)
	method := s.Markers.Get(localstore.KeyLoginMethod)
	if linked != "" && method == localstore.LoginMethodQR {
		return linked
	}
	return ""
}

func (s *DefaultSessionService) IsQRLogin() bool {
	return s.Auth.CurrentUser() == nil &&
		s.Markers.Get(localstore.KeyLoginMethod) == localstore.LoginMethodQR &&
		s.Markers.Get(localstore.KeyLinkedUserID) != ""
}

// PromoteQRSession discards stale QR markers once a provider session exists.
// Marker presence is the once-only guard, so repeated calls are safe.
func (s *DefaultSessionService) PromoteQRSession() {
	if s.Auth.CurrentUser() == nil {
		return
	}
	if s.Markers.Get(localstore.KeyLoginMethod) != localstore.LoginMethodQR {
		return
	}
	s.Log.Info("converting QR session to provider session")
	s.removeMarker(localstore.KeyLoginMethod)
	s.removeMarker(localstore.KeyLinkedUserID)
	s.removeMarker(localstore.KeyLinkedUserEmail)
	s.Bus.Publish(events.KindSession, map[string]any{"state": "promoted"})
}

func (s *DefaultSessionService) LinkQRUser(userID, email, name, photo string) error {
	if err := s.Markers.Set(localstore.KeyLinkedUserID, userID); err != nil {
		return err
	}
	if err := s.Markers.Set(localstore.KeyLinkedUserEmail, email); err != nil {
		return err
	}
	if err := s.Markers.Set(localstore.KeyLinkedUserName, name); err != nil {
		return err
	}
	if err := s.Markers.Set(localstore.KeyLinkedUserPhoto, photo); err != nil {
		return err
	}
	// Written last: a failure above must not leave a half-linked session.
	if err := s.Markers.Set(localstore.KeyLoginMethod, localstore.LoginMethodQR); err != nil {
		return err
	}
	s.Bus.Publish(events.KindSession, map[string]any{"state": "linked", "userId": userID})
	return nil
}

func (s *DefaultSessionService) ClearLocalSession() {
	for _, key := range []string{
		localstore.KeyLinkedUserID,
		localstore.KeyLinkedUserEmail,
		localstore.KeyLinkedUserName,
		localstore.KeyLoginMethod,
		localstore.KeyDeviceName,
		localstore.KeyDeviceID,
		localstore.KeyCurrentFolder,
	} {
		s.removeMarker(key)
	}
	s.mu.Lock()
	s.currentFolder = defaultFolder
	s.mu.Unlock()
}

func (s *DefaultSessionService) UserLabel() string {
	if name := s.Markers.Get(localstore.KeyLinkedUserName); name != "" {
		return name
	}
	if email := s.Markers.Get(localstore.KeyLinkedUserEmail); email != "" {
		return models.EmailLocalPart(email)
	}
	if u := s.Auth.CurrentUser(); u != nil {
		return u.Label()
	}
	return "You"
}

func (s *DefaultSessionService) CurrentFolder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFolder
}

func (s *DefaultSessionService) SetCurrentFolder(folder string) {
	if folder == "" {
		folder = defaultFolder
	}
	s.mu.Lock()
	s.currentFolder = folder
	s.mu.Unlock()
	if err := s.Markers.Set(localstore.KeyCurrentFolder, folder); err != nil {
		s.Log.Warn("failed to persist folder selection", zap.Error(err))
	}
}

func (s *DefaultSessionService) CurrentUser() *models.AuthUser {
	return s.Auth.CurrentUser()
}

func (s *DefaultSessionService) removeMarker(key string) {
	if err := s.Markers.Delete(key); err != nil {
		s.Log.Warn("failed to remove marker", zap.String("key", key), zap.Error(err))
	}
}

package message

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"clipsynq/database"
	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

var _ Service = (*DefaultMessageService)(nil)

var reLink = regexp.MustCompile(`^(https?://|www\.)\S+$`)

// DefaultMessageService is the production implementation.
type DefaultMessageService struct {
	DB      database.Client
	Session session.Service
	Markers localstore.Store
	Log     *zap.Logger
	Now     func() int64
}

func NewDefaultMessageService(db database.Client, sess session.Service, markers localstore.Store, log *zap.Logger) *DefaultMessageService {
	return &DefaultMessageService{
		DB:      db,
		Session: sess,
		Markers: markers,
		Log:     log,
		Now:     func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *DefaultMessageService) userID() (string, error) {
	userID := s.Session.UserID()
	if userID == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return userID, nil
}

func (s *DefaultMessageService) Send(ctx context.Context, text, folder string) (string, error) {
	userID, err := s.userID()
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("message text is empty")
	}
	if folder == "" {
		folder = s.Session.CurrentFolder()
	}

	kind := "text"
	if reLink.MatchString(text) {
		kind = "link"
	}

	msg := models.Message{
		Text:       text,
		Type:       kind,
		Folder:     folder,
		DeviceID:   s.Markers.Get(localstore.KeyDeviceID),
		DeviceName: s.Markers.Get(localstore.KeyDeviceName),
		Timestamp:  s.Now(),
	}
	id, err := s.DB.Push(ctx, utils.MessagesPath(userID), msg)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return id, nil
}

func (s *DefaultMessageService) Edit(ctx context.Context, messageID, text string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("message text is empty")
	}
	return s.DB.Update(ctx, utils.MessagePath(userID, messageID), map[string]any{
		"text":     text,
		"editedAt": s.Now(),
	})
}

func (s *DefaultMessageService) Delete(ctx context.Context, messageID string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	return s.DB.Delete(ctx, utils.MessagePath(userID, messageID))
}

func (s *DefaultMessageService) ClearFolder(ctx context.Context, folder string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	messages, err := s.List(ctx)
	if err != nil {
		return err
	}
	for id, msg := range messages {
		if folder != "all" && msg.Folder != folder {
			continue
		}
		if err := s.DB.Delete(ctx, utils.MessagePath(userID, id)); err != nil {
			s.Log.Warn("failed to delete message", zap.String("message", id), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultMessageService) SetPinned(ctx context.Context, messageID string, pinned bool) error {
	return s.setFlag(ctx, messageID, "pinned", pinned)
}

func (s *DefaultMessageService) SetStarred(ctx context.Context, messageID string, starred bool) error {
	return s.setFlag(ctx, messageID, "starred", starred)
}

func (s *DefaultMessageService) setFlag(ctx context.Context, messageID, field string, value bool) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	return s.DB.Update(ctx, utils.MessagePath(userID, messageID), map[string]any{field: value})
}

func (s *DefaultMessageService) MoveToFolder(ctx context.Context, messageID, folder string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	return s.DB.Update(ctx, utils.MessagePath(userID, messageID), map[string]any{"folder": folder})
}

func (s *DefaultMessageService) List(ctx context.Context) (map[string]models.Message, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	var messages map[string]models.Message
	if err := s.DB.Get(ctx, utils.MessagesPath(userID), &messages); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

func (s *DefaultMessageService) Watch(ctx context.Context, fn func(map[string]models.Message)) (database.UnsubscribeFunc, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	return s.DB.Watch(ctx, utils.MessagesPath(userID), func(snap database.Snapshot) {
		var messages map[string]models.Message
		if snap.Exists() {
			if err := snap.Decode(&messages); err != nil {
				s.Log.Warn("malformed message feed", zap.Error(err))
				return
			}
		}
		fn(messages)
	})
}

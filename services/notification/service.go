package notification

import (
	"context"
	"fmt"
	"time"

	"clipsynq/database"
	"clipsynq/models"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

var _ Service = (*DefaultNotificationService)(nil)

type DefaultNotificationService struct {
	DB      database.Client
	Session session.Service
	Log     *zap.Logger
	Now     func() int64
}

func NewDefaultNotificationService(db database.Client, sess session.Service, log *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{
		DB:      db,
		Session: sess,
		Log:     log,
		Now:     func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *DefaultNotificationService) actingUser() (string, error) {
	userID := s.Session.UserID()
	if userID == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return userID, nil
}

func (s *DefaultNotificationService) Push(ctx context.Context, userID string, n models.Notification) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is empty")
	}
	if n.Timestamp == 0 {
		n.Timestamp = s.Now()
	}
	id, err := s.DB.Push(ctx, utils.NotificationsPath(userID), n)
	if err != nil {
		return "", fmt.Errorf("failed to push notification: %w", err)
	}
	return id, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, notifID string) error {
	userID, err := s.actingUser()
	if err != nil {
		return err
	}
	return s.DB.Update(ctx, utils.NotificationPath(userID, notifID), map[string]any{"read": true})
}

func (s *DefaultNotificationService) Delete(ctx context.Context, notifID string) error {
	userID, err := s.actingUser()
	if err != nil {
		return err
	}
	return s.DB.Delete(ctx, utils.NotificationPath(userID, notifID))
}

func (s *DefaultNotificationService) List(ctx context.Context) (map[string]models.Notification, error) {
	userID, err := s.actingUser()
	if err != nil {
		return nil, err
	}
	var notifs map[string]models.Notification
	if err := s.DB.Get(ctx, utils.NotificationsPath(userID), &notifs); err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return notifs, nil
}

func (s *DefaultNotificationService) Watch(ctx context.Context, fn func(map[string]models.Notification)) (database.UnsubscribeFunc, error) {
	userID, err := s.actingUser()
	if err != nil {
		return nil, err
	}
	return s.DB.Watch(ctx, utils.NotificationsPath(userID), func(snap database.Snapshot) {
		var notifs map[string]models.Notification
		if snap.Exists() {
			if err := snap.Decode(&notifs); err != nil {
				s.Log.Warn("malformed notification feed", zap.Error(err))
				return
			}
		}
		fn(notifs)
	})
}

package board

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

var _ Service = (*DefaultBoardService)(nil)

type DefaultBoardService struct {
	DB      database.Client
	Session session.Service
	Log     *zap.Logger
	Now     func() int64
}

func NewDefaultBoardService(db database.Client, sess session.Service, log *zap.Logger) *DefaultBoardService {
	return &DefaultBoardService{
		DB:      db,
		Session: sess,
		Log:     log,
		Now:     func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *DefaultBoardService) userID() (string, error) {
	userID := s.Session.UserID()
	if userID == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return userID, nil
}

func (s *DefaultBoardService) Post(ctx context.Context, text string) (string, error) {
	userID, err := s.userID()
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("message text is empty")
	}
	msg := models.GlobalMessage{
		Text:       text,
		AuthorID:   userID,
		AuthorName: s.Session.UserLabel(),
		Timestamp:  s.Now(),
	}
	id, err := s.DB.Push(ctx, utils.GlobalMessagesPath, msg)
	if err != nil {
		return "", fmt.Errorf("failed to post to board: %w", err)
	}
	return id, nil
}

func (s *DefaultBoardService) ToggleLike(ctx context.Context, messageID string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	likePath := fmt.Sprintf("%s/likes/%s", utils.GlobalMessagePath(messageID), userID)

	var liked bool
	if err := s.DB.Get(ctx, likePath, &liked); err != nil {
		return fmt.Errorf("failed to read like state: %w", err)
	}
	if liked {
		return s.DB.Delete(ctx, likePath)
	}
	return s.DB.Set(ctx, likePath, true)
}

func (s *DefaultBoardService) Reply(ctx context.Context, messageID, text string) (string, error) {
	userID, err := s.userID()
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("reply text is empty")
	}
	reply := models.Reply{
		Text:       text,
		AuthorID:   userID,
		AuthorName: s.Session.UserLabel(),
		Timestamp:  s.Now(),
	}
	id, err := s.DB.Push(ctx, utils.GlobalMessagePath(messageID)+"/replies", reply)
	if err != nil {
		return "", fmt.Errorf("failed to reply: %w", err)
	}
	return id, nil
}

func (s *DefaultBoardService) Delete(ctx context.Context, messageID string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	var msg models.GlobalMessage
	if err := s.DB.Get(ctx, utils.GlobalMessagePath(messageID), &msg); err != nil {
		return fmt.Errorf("failed to load board post: %w", err)
	}
	if msg.AuthorID != userID {
		return fmt.Errorf("only the author can delete a board post")
	}
	return s.DB.Delete(ctx, utils.GlobalMessagePath(messageID))
}

func (s *DefaultBoardService) List(ctx context.Context) (map[string]models.GlobalMessage, error) {
	if _, err := s.userID(); err != nil {
		return nil, err
	}
	var posts map[string]models.GlobalMessage
	if err := s.DB.Get(ctx, utils.GlobalMessagesPath, &posts); err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	return posts, nil
}

func (s *DefaultBoardService) Watch(ctx context.Context, fn func(map[string]models.GlobalMessage)) (database.UnsubscribeFunc, error) {
	return s.DB.Watch(ctx, utils.GlobalMessagesPath, func(snap database.Snapshot) {
		var posts map[string]models.GlobalMessage
		if snap.Exists() {
			if err := snap.Decode(&posts); err != nil {
				s.Log.Warn("malformed board feed", zap.Error(err))
				return
			}
		}
		fn(posts)
	})
}

package folder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clipsynq/database"
	"clipsynq/models"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

var _ Service = (*DefaultFolderService)(nil)

type DefaultFolderService struct {
	DB      database.Client
	Session session.Service
	Log     *zap.Logger
	Now     func() int64
}

func NewDefaultFolderService(db database.Client, sess session.Service, log *zap.Logger) *DefaultFolderService {
	return &DefaultFolderService{
		DB:      db,
		Session: sess,
		Log:     log,
		Now:     func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *DefaultFolderService) userID() (string, error) {
	userID := s.Session.UserID()
	if userID == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return userID, nil
}

func (s *DefaultFolderService) Create(ctx context.Context, name, icon string) (string, error) {
	userID, err := s.userID()
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("folder name is empty")
	}
	if strings.EqualFold(name, "all") {
		return "", fmt.Errorf("folder name %q is reserved", name)
	}

	existing, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, f := range existing {
		if strings.EqualFold(f.Name, name) {
			return "", fmt.Errorf("folder %q already exists", name)
		}
	}

	if icon == "" {
		icon = "folder"
	}
	folder := models.Folder{
		Name:      name,
		Icon:      icon,
		CreatedAt: s.Now(),
	}
	id, err := s.DB.Push(ctx, utils.FoldersPath(userID), folder)
	if err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return id, nil
}

func (s *DefaultFolderService) Rename(ctx context.Context, folderID, name string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("folder name is empty")
	}
	return s.DB.Update(ctx, utils.FolderPath(userID, folderID), map[string]any{"name": name})
}

// Delete removes the folder and reassigns its clips to "all" so none become
// orphaned under a folder key that no longer resolves.
func (s *DefaultFolderService) Delete(ctx context.Context, folderID string) error {
	userID, err := s.userID()
	if err != nil {
		return err
	}

	var folder models.Folder
	if err := s.DB.Get(ctx, utils.FolderPath(userID, folderID), &folder); err != nil {
		return fmt.Errorf("failed to load folder: %w", err)
	}

	var messages map[string]models.Message
	if err := s.DB.Get(ctx, utils.MessagesPath(userID), &messages); err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	for id, msg := range messages {
		if msg.Folder != folder.Name && msg.Folder != folderID {
			continue
		}
		if err := s.DB.Update(ctx, utils.MessagePath(userID, id), map[string]any{"folder": "all"}); err != nil {
			s.Log.Warn("failed to reassign clip", zap.String("message", id), zap.Error(err))
		}
	}

	if err := s.DB.Delete(ctx, utils.FolderPath(userID, folderID)); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	if s.Session.CurrentFolder() == folder.Name || s.Session.CurrentFolder() == folderID {
		s.Session.SetCurrentFolder("all")
	}
	return nil
}

func (s *DefaultFolderService) List(ctx context.Context) (map[string]models.Folder, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	var folders map[string]models.Folder
	if err := s.DB.Get(ctx, utils.FoldersPath(userID), &folders); err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}
	return folders, nil
}

func (s *DefaultFolderService) Watch(ctx context.Context, fn func(map[string]models.Folder)) (database.UnsubscribeFunc, error) {
	userID, err := s.userID()
	if err != nil {
		return nil, err
	}
	return s.DB.Watch(ctx, utils.FoldersPath(userID), func(snap database.Snapshot) {
		var folders map[string]models.Folder
		if snap.Exists() {
			if err := snap.Decode(&folders); err != nil {
				s.Log.Warn("malformed folder feed", zap.Error(err))
				return
			}
		}
		fn(folders)
	})
}

package device

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"clipsynq/database"
	"clipsynq/localstore"
	"clipsynq/models"
	"clipsynq/services/session"
	"clipsynq/utils"

	"go.uber.org/zap"
)

var _ Registry = (*DefaultRegistry)(nil)

// DefaultRegistry is the production implementation.
type DefaultRegistry struct {
	DB        database.Client
	Session   session.Service
	Markers   localstore.Store
	Log       *zap.Logger
	UserAgent string

	// Now is the clock, swappable in tests.
	Now func() int64
}

func NewDefaultRegistry(db database.Client, sess session.Service, markers localstore.Store, log *zap.Logger) *DefaultRegistry {
	return &DefaultRegistry{
		DB:        db,
		Session:   sess,
		Markers:   markers,
		Log:       log,
		UserAgent: AgentUserAgent(),
		Now:       func() int64 { return time.Now().UnixMilli() },
	}
}

func (r *DefaultRegistry) Register(ctx context.Context, userID, deviceID, name string, isQR bool) error {
	switch {
	case userID == "":
		return &ValidationError{Field: "userId"}
	case deviceID == "":
		return &ValidationError{Field: "deviceId"}
	case name == "":
		return &ValidationError{Field: "deviceName"}
	}

	info := DetectDeviceInfo(r.UserAgent)
	now := r.Now()
	record := models.DeviceRecord{
		Name:        name,
		Type:        info.DeviceType,
		IsOnline:    true,
		CreatedAt:   now,
		LastActive:  now,
		LastSeen:    now,
		ForceLogout: false,
		LinkedViaQR: isQR,
		UserAgent:   r.UserAgent,
		Platform:    runtime.GOOS,
		Browser:     BrowserInfo(r.UserAgent),
	}

	path := utils.DevicePath(userID, deviceID, isQR)
	if err := r.DB.Set(ctx, path, record); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	r.Log.Info("device registered",
		zap.String("device", name), zap.String("path", path), zap.Bool("qr", isQR))
	return nil
}

func (r *DefaultRegistry) RegisterCurrentDevice(ctx context.Context) error {
	userID := r.Session.UserID()
	if userID == "" {
		r.Log.Warn("no user id - skipping device registration")
		return nil
	}
	deviceID, err := EnsureDeviceID(r.Markers)
	if err != nil {
		return err
	}

	name := r.Markers.Get(localstore.KeyDeviceName)
	if name == "" {
		name = DetectDeviceInfo(r.UserAgent).DeviceName
		if err := r.Markers.Set(localstore.KeyDeviceName, name); err != nil {
			r.Log.Warn("failed to persist device name", zap.Error(err))
		}
	}

	isQR := r.Session.IsQRLogin()
	if err := r.Register(ctx, userID, deviceID, name, isQR); err != nil {
		return err
	}

	// Exactly one namespace may hold the live record; drop any stale twin.
	stale := utils.DevicePath(userID, deviceID, !isQR)
	if err := r.DB.Delete(ctx, stale); err != nil {
		r.Log.Debug("no stale record to prune", zap.String("path", stale), zap.Error(err))
	}
	return nil
}

func (r *DefaultRegistry) UpdateStatus(ctx context.Context, online bool) error {
	userID := r.Session.UserID()
	if userID == "" {
		return nil
	}
	deviceID := r.Markers.Get(localstore.KeyDeviceID)
	if deviceID == "" {
		return nil
	}

	path := utils.DevicePath(userID, deviceID, r.Session.IsQRLogin())
	err := r.DB.Update(ctx, path, map[string]any{
		"isOnline": online,
		"lastSeen": r.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to update device status: %w", err)
	}
	return nil
}

func (r *DefaultRegistry) Rename(ctx context.Context, newName string) error {
	if newName == "" {
		return &ValidationError{Field: "deviceName"}
	}
	userID := r.Session.UserID()
	deviceID := r.Markers.Get(localstore.KeyDeviceID)
	if userID == "" || deviceID == "" {
		return fmt.Errorf("not authenticated")
	}

	path := utils.DevicePath(userID, deviceID, r.Session.IsQRLogin())
	err := r.DB.Update(ctx, path, map[string]any{
		"name":        newName,
		"lastUpdated": r.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to rename device: %w", err)
	}
	return r.Markers.Set(localstore.KeyDeviceName, newName)
}

func (r *DefaultRegistry) Remove(ctx context.Context, userID, deviceID string, isQR bool) error {
	return r.DB.Delete(ctx, utils.DevicePath(userID, deviceID, isQR))
}

func (r *DefaultRegistry) ForceLogout(ctx context.Context, deviceID string, isQR bool) error {
	userID := r.Session.UserID()
	if userID == "" {
		return fmt.Errorf("not authenticated")
	}
	path := utils.DevicePath(userID, deviceID, isQR)
	err := r.DB.Update(ctx, path, map[string]any{
		"forceLogout": true,
		"isOnline":    false,
		"lastActive":  r.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to flag device for logout: %w", err)
	}
	return nil
}

func (r *DefaultRegistry) List(ctx context.Context) ([]models.DeviceEntry, error) {
	userID := r.Session.UserID()
	if userID == "" {
		return nil, fmt.Errorf("not authenticated")
	}

	var entries []models.DeviceEntry
	for _, ns := range []struct {
		path string
		isQR bool
	}{
		{utils.UserDevicesPath(userID), false},
		{utils.QRDevicesPath(userID), true},
	} {
		var records map[string]models.DeviceRecord
		if err := r.DB.Get(ctx, ns.path, &records); err != nil {
			r.Log.Warn("failed to read devices", zap.String("path", ns.path), zap.Error(err))
			continue
		}
		for id, rec := range records {
			if rec.Corrupted() {
				// Nameless records are leftovers from interrupted registrations.
				if err := r.DB.Delete(ctx, utils.DevicePath(userID, id, ns.isQR)); err != nil {
					r.Log.Warn("failed to prune corrupted device", zap.String("device", id), zap.Error(err))
				}
				continue
			}
			entries = append(entries, models.DeviceEntry{ID: id, IsQR: ns.isQR, Record: rec})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Record, entries[j].Record
		if a.IsOnline != b.IsOnline {
			return a.IsOnline
		}
		return a.LastActive > b.LastActive
	})
	return entries, nil
}

package cron

import (
	"context"
	"time"

	"clipsynq/database"
	"clipsynq/models"
	"clipsynq/utils"

	"go.uber.org/zap"
)

const sweepInterval = 5 * time.Minute

// StartSessionSweep deletes pairing sessions whose expiry has passed. The
// initiator cleans up its own sessions, but a crashed process leaves the
// record behind; this sweep catches those.
func StartSessionSweep(ctx context.Context, db database.Client, log *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("session sweep shutdown signal received")
			return
		case <-ticker.C:
			sweepOnce(ctx, db, log)
		}
	}
}

func sweepOnce(ctx context.Context, db database.Client, log *zap.Logger) {
	var sessions map[string]models.QRSession
	if err := db.Get(ctx, "qr-sessions", &sessions); err != nil {
		log.Warn("failed to list pairing sessions", zap.Error(err))
		return
	}
	now := time.Now().UnixMilli()
	for id, sess := range sessions {
		if !sess.Expired(now) {
			continue
		}
		if err := db.Delete(ctx, utils.QRSessionPath(id)); err != nil {
			log.Warn("failed to sweep expired pairing session", zap.String("session", id), zap.Error(err))
			continue
		}
		log.Info("swept expired pairing session", zap.String("session", id))
	}
}

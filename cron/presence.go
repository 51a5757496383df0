// Package cron holds the agent's background tickers.
package cron

import (
	"context"
	"time"

	"clipsynq/config"
	"clipsynq/services/device"

	"go.uber.org/zap"
)

// StartPresenceCron refreshes this device's online presence on an interval.
// The registry no-ops when no identity is resolved, so the ticker can run
// from process start regardless of sign-in state.
func StartPresenceCron(ctx context.Context, reg device.Registry, log *zap.Logger) {
	interval := time.Duration(config.AppConfig.HeartbeatSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("presence cron shutdown signal received")
			return
		case <-ticker.C:
			if err := reg.UpdateStatus(ctx, true); err != nil {
				log.Warn("presence heartbeat failed", zap.Error(err))
			}
		}
	}
}

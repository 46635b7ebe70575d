package storage

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartEviction periodically removes sessions idle for longer than ttl until
// ctx is done. It does nothing when the store cannot evict or ttl is not positive.
func StartEviction(ctx context.Context, store SessionStore, ttl, interval time.Duration, logger *zap.Logger) {
	evicter, ok := store.(IdleEvicter)
	if !ok || ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl / 2
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := evicter.DeleteIdle(ctx, ttl)
				if err != nil {
					logger.Error("Failed to evict idle sessions", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("Evicted idle sessions", zap.Int64("count", n))
				}
			}
		}
	}()
}

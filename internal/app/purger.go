package app

import (
	"time"

	"go.uber.org/zap"
)

// runCachePurger periodically removes insights cache entries past their TTL.
func (a *App) runCachePurger(interval time.Duration) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("cache-purger-started", zap.Duration("interval", interval))

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.purgeExpired()
		}
	}
}

func (a *App) purgeExpired() {
	_, err := a.insights.PurgeExpired(a.ctx)
	if err != nil && a.ctx.Err() == nil {
		a.logger.Warn("cache-purge-failed", zap.Error(err))
	}
}

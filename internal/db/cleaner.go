package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// DefaultCleanupInterval is used when StartExpiredCleaner gets a non-positive interval.
const DefaultCleanupInterval = time.Hour

// StartExpiredCleaner deletes expired sessions and one-time codes every interval
// until ctx is cancelled. The returned channel is closed when the loop exits.
func StartExpiredCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) <-chan struct{} {
	if interval <= 0 {
		log.Warn("non-positive cleanup interval, using default",
			zap.Duration("interval", interval), zap.Duration("default", DefaultCleanupInterval))
		interval = DefaultCleanupInterval
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purge(ctx, db, log, "sessions", `DELETE FROM sessions WHERE expires_at < $1`)
				purge(ctx, db, log, "otp_codes", `DELETE FROM otp_codes WHERE expires_at < $1`)
			}
		}
	}()
	return done
}

func purge(ctx context.Context, db *sql.DB, log *zap.Logger, table, query string) {
	res, err := db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		log.Error("failed to clean expired rows", zap.String("table", table), zap.Error(err))
		return
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Info("cleaned expired rows", zap.String("table", table), zap.Int64("removed", rows))
	}
}

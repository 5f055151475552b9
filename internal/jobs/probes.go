package jobs

import (
	"context"
	"database/sql"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/metrics"
)

// DBPing measures storage latency for the db_ping histogram.
func DBPing(database *sql.DB) Job {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(ctx); err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(t0))
		return nil
	}
}

// StaleCodeGauge counts expired-but-unconsumed one-time codes. They are not
// swept (expiry is enforced at verification), only observed.
func StaleCodeGauge(database *sql.DB) Job {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		n, err := db.CountStaleCodes(ctx, database, time.Now())
		if err != nil {
			return err
		}
		metrics.StaleCodes.Set(float64(n))
		return nil
	}
}

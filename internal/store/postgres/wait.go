package postgres

import (
	"database/sql"
	"time"

	// Registers the "postgres" database/sql driver used only for the
	// lightweight readiness probe below; the runtime pool is pgxpool.
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// WaitForPostgres polls dsn with database/sql until it accepts connections
// or attempts are exhausted. Migration CLIs commonly run against a database
// that is still starting up; this probe is deliberately lighter weight than
// opening the full pgxpool used by the running services.
func WaitForPostgres(dsn string, attempts int, delay time.Duration) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			lastErr = db.Ping()
			db.Close()
			if lastErr == nil {
				return nil
			}
		} else {
			lastErr = err
		}
		log.WithError(lastErr).Warnf("postgres not ready, retrying (%d/%d)", i+1, attempts)
		time.Sleep(delay)
	}
	return lastErr
}

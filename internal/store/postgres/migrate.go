package postgres

import (
	"context"

	"github.com/jackc/pgtype/pgxtype"
	log "github.com/sirupsen/logrus"

	"github.com/eventflow-io/eventflow/internal/store/migrations"
)

// ApplyMigrations runs every embedded migration with an id greater than the
// database's current version, tracked with the teacher's sequence-based
// version marker.
func ApplyMigrations(ctx context.Context, db pgxtype.Querier) error {
	migs, err := migrations.Load()
	if err != nil {
		return err
	}

	log.Info("applying postgres migrations")
	version, err := readVersion(ctx, db)
	if err != nil {
		return err
	}
	log.Infof("current schema version %d", version)

	for _, m := range migs {
		if m.ID <= version {
			continue
		}
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			return err
		}
		version = m.ID
		if err := setVersion(ctx, db, version); err != nil {
			return err
		}
	}
	log.Info("schema up to date")
	return nil
}

func readVersion(ctx context.Context, db pgxtype.Querier) (int, error) {
	if _, err := db.Exec(ctx,
		`CREATE SEQUENCE IF NOT EXISTS database_version START WITH 0 MINVALUE 0;`); err != nil {
		return 0, err
	}

	rows, err := db.Query(ctx, `SELECT last_value FROM database_version`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var version int
	rows.Next()
	err = rows.Scan(&version)
	return version, err
}

func setVersion(ctx context.Context, db pgxtype.Querier, version int) error {
	_, err := db.Exec(ctx, `SELECT setval('database_version', $1)`, version)
	return err
}

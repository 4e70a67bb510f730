// Package postgres implements the persistence layer: a pgxpool-backed store
// for raw, processed, and failed event records, grounded on the teacher's
// internal/common/database connection and migration helpers.
package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/eventflow-io/eventflow/internal/config"
)

// CreateConnectionString builds a libpq keyword/value connection string from
// a map, escaping backslashes and quotes the way the teacher's
// database.CreateConnectionString does.
// https://www.postgresql.org/docs/10/libpq-connect.html#id-1.7.3.8.3.5
func CreateConnectionString(values map[string]string) string {
	result := ""
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	for k, v := range values {
		result += k + "='" + replacer.Replace(v) + "'"
	}
	return result
}

// OpenPool connects a pgxpool.Pool and verifies it with a ping.
func OpenPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(CreateConnectionString(cfg.Connection))
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

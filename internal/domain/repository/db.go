package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS area_metrics (
			id BIGSERIAL PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			crime_index DOUBLE PRECISION NOT NULL DEFAULT 0,
			traffic_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			accessibility_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			meta JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (latitude, longitude)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_area_metrics_lat_lon ON area_metrics (latitude, longitude)`,
		`CREATE TABLE IF NOT EXISTS prediction_log (
			id BIGSERIAL PRIMARY KEY,
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			target_year INTEGER NOT NULL,
			features JSONB NOT NULL,
			base_model DOUBLE PRECISION NOT NULL,
			current_price DOUBLE PRECISION NOT NULL,
			predicted_price DOUBLE PRECISION NOT NULL,
			currency_code TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS area_metrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			crime_index REAL NOT NULL DEFAULT 0,
			traffic_score REAL NOT NULL DEFAULT 0,
			accessibility_score REAL NOT NULL DEFAULT 0,
			meta TEXT NOT NULL DEFAULT '{}',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (latitude, longitude)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_area_metrics_lat_lon ON area_metrics (latitude, longitude)`,
		`CREATE TABLE IF NOT EXISTS prediction_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			target_year INTEGER NOT NULL,
			features TEXT NOT NULL,
			base_model REAL NOT NULL,
			current_price REAL NOT NULL,
			predicted_price REAL NOT NULL,
			currency_code TEXT NOT NULL,
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// Open connects to the store database. The driver is either "postgres"
// (lib/pq) or "sqlite" (modernc.org/sqlite).
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, eris.Errorf("store: unsupported driver %q", driver)
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "store: connect %s", driver)
	}
	if driver == DriverSQLite {
		// One writer avoids SQLITE_BUSY under concurrent upserts.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// EnsureSchema creates the tables the service needs.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schemas[db.DriverName()]
	if !ok {
		return eris.Errorf("store: unsupported driver %q", db.DriverName())
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "store: apply schema")
		}
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"humidmon/internal/config"
	"humidmon/internal/model"
)

// Store mirrors appended readings into a database. The daily log file stays
// the source of truth.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveReading(ctx context.Context, r model.Reading) error
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func (b *baseStore) init(ctx context.Context, stmts []string) error {
	if b.db == nil {
		return nil
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *baseStore) saveReading(ctx context.Context, query string, r model.Reading) error {
	if b.db == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	_, err := b.db.ExecContext(ctx, query,
		r.Time.UTC(),
		r.Time.Format("2006-01-02"),
		r.TemperatureF,
		r.Humidity,
		r.AbsoluteHumidity,
		string(r.Status),
	)
	return err
}

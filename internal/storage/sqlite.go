package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"humidmon/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:humidmon.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	return s.init(ctx, []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts TIMESTAMP NOT NULL,
			day TEXT NOT NULL,
			temperature_f REAL NOT NULL,
			humidity REAL NOT NULL,
			absolute_humidity REAL NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_day ON readings(day)`,
	})
}

func (s *sqliteStore) SaveReading(ctx context.Context, r model.Reading) error {
	return s.saveReading(ctx,
		`INSERT INTO readings (ts, day, temperature_f, humidity, absolute_humidity, status)
		VALUES (?, ?, ?, ?, ?, ?)`, r)
}

// CountDay returns how many readings were mirrored for day (YYYY-MM-DD).
func (s *sqliteStore) CountDay(ctx context.Context, day string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings WHERE day = ?`, day).Scan(&n)
	return n, err
}

package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"humidmon/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/humidmon?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	return s.init(ctx, []string{
		`CREATE TABLE IF NOT EXISTS readings (
			id BIGSERIAL PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			day DATE NOT NULL,
			temperature_f DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			absolute_humidity DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_day ON readings(day)`,
	})
}

func (s *postgresStore) SaveReading(ctx context.Context, r model.Reading) error {
	return s.saveReading(ctx,
		`INSERT INTO readings (ts, day, temperature_f, humidity, absolute_humidity, status)
		VALUES ($1, $2, $3, $4, $5, $6)`, r)
}

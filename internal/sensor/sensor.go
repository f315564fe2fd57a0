// Package sensor reads temperature and relative humidity from the attached
// sensor.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"humidmon/internal/config"
)

var (
	ErrSensorUnavailable = errors.New("sensor unavailable")
	ErrInvalidSample     = errors.New("invalid sample")
)

// Sample is one raw measurement.
type Sample struct {
	Humidity     float64 // relative humidity, %
	TemperatureC float64
}

func (s Sample) validate() error {
	if math.IsNaN(s.Humidity) || math.IsNaN(s.TemperatureC) {
		return fmt.Errorf("%w: NaN value", ErrInvalidSample)
	}
	if s.Humidity <= 0 || s.Humidity > 100 {
		return fmt.Errorf("%w: humidity %.1f%% out of range", ErrInvalidSample, s.Humidity)
	}
	return nil
}

type Source interface {
	Read(ctx context.Context) (Sample, error)
	Close() error
}

// New builds the source selected by cfg.Driver. A driver that cannot reach
// its hardware fails with ErrSensorUnavailable.
func New(cfg config.SensorConfig) (Source, error) {
	switch strings.ToLower(cfg.Driver) {
	case "bme280":
		src, err := NewBME280(cfg.I2CBus, cfg.I2CAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSensorUnavailable, err)
		}
		return src, nil
	case "mock":
		return NewMockSource(), nil
	default:
		return nil, fmt.Errorf("unsupported sensor driver %q", cfg.Driver)
	}
}

// ReadWithRetry reads src, retrying exactly once. Two failures in a row
// return ErrSensorUnavailable.
func ReadWithRetry(ctx context.Context, src Source, logger *slog.Logger) (Sample, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return Sample{}, err
		}
		s, err := src.Read(ctx)
		if err == nil {
			err = s.validate()
		}
		if err == nil {
			return s, nil
		}
		lastErr = err
		if logger != nil {
			logger.Warn("sensor read failed", "attempt", attempt, "err", err)
		}
	}
	return Sample{}, fmt.Errorf("%w: %w", ErrSensorUnavailable, lastErr)
}

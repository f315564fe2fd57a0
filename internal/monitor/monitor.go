// Package monitor runs one measurement or one plot pass.
package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"humidmon/internal/chart"
	"humidmon/internal/config"
	"humidmon/internal/dailylog"
	"humidmon/internal/engine"
	"humidmon/internal/model"
	"humidmon/internal/sensor"
	"humidmon/internal/storage"
)

type Monitor struct {
	cfg    *config.Config
	logger *slog.Logger
	source sensor.Source
	engine *engine.Engine
	store  storage.Store
	loc    *time.Location
	// Now is the clock used to stamp readings and pick the day's log.
	Now func() time.Time
}

// New wires a monitor. source and store may be nil; store nil disables
// mirroring, source is only needed for Measure.
func New(cfg *config.Config, logger *slog.Logger, source sensor.Source, store storage.Store) (*Monitor, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Monitor{
		cfg:    cfg,
		logger: logger,
		source: source,
		engine: engine.NewEngine(cfg.Detection, logger),
		store:  store,
		loc:    loc,
		Now:    time.Now,
	}, nil
}

func (m *Monitor) now() time.Time {
	return m.Now().In(m.loc)
}

// Measure takes one reading, classifies it against today's history and
// appends it to today's log. Nothing is appended on failure.
func (m *Monitor) Measure(ctx context.Context) (model.Reading, error) {
	if m.source == nil {
		return model.Reading{}, fmt.Errorf("%w: no sensor configured", sensor.ErrSensorUnavailable)
	}
	m.logger.Info("reading temperature and humidity sensor", "driver", m.cfg.Sensor.Driver)
	sample, err := sensor.ReadWithRetry(ctx, m.source, m.logger)
	if err != nil {
		return model.Reading{}, err
	}
	tempF := model.CelsiusToFahrenheit(sample.TemperatureC)
	absHum := sensor.AbsoluteHumidity(sample.TemperatureC, sample.Humidity)
	m.logger.Info("sensor reading",
		"temperature_f", fmt.Sprintf("%.3f", tempF),
		"humidity", fmt.Sprintf("%.1f", sample.Humidity),
		"absolute_humidity", fmt.Sprintf("%.2f", absHum),
	)

	now := m.now()
	daily, err := dailylog.Open(m.cfg.DailyLog.Dir, now)
	if err != nil {
		return model.Reading{}, err
	}
	defer daily.Close()
	m.logger.Debug("reading history", "path", daily.Path(), "created", daily.Created())
	history, err := daily.ReadHistory()
	if err != nil {
		return model.Reading{}, err
	}

	d := m.engine.Evaluate(sample.Humidity, dailylog.Statuses(history))
	reading := model.NewReading(now, tempF, sample.Humidity, absHum, d.Final)
	if err := daily.Append(reading); err != nil {
		return model.Reading{}, err
	}
	m.logger.Info("status", "status", reading.Status, "instant", d.Instant, "history", d.History)

	if m.store != nil {
		if err := m.store.SaveReading(ctx, reading); err != nil {
			m.logger.Warn("storage mirror failed", "err", err)
		}
	}
	return reading, nil
}

// PlotResult describes what a plot pass produced.
type PlotResult struct {
	Path     string
	Readings int
}

// Plot renders the log for the day containing day. The log is read once;
// appends made while rendering are not picked up.
func (m *Monitor) Plot(ctx context.Context, day time.Time) (PlotResult, error) {
	if day.IsZero() {
		day = m.now()
	}
	day = day.In(m.loc)
	path := dailylog.Path(m.cfg.DailyLog.Dir, day)
	m.logger.Info("reading data file", "path", path)
	readings, err := dailylog.LoadDay(m.cfg.DailyLog.Dir, day)
	if err != nil {
		return PlotResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return PlotResult{}, err
	}
	out := filepath.Join(m.cfg.Chart.Dir, day.Format("20060102")+".png")
	m.logger.Info("writing output file", "path", out, "readings", len(readings))
	if err := chart.WriteFile(out, readings, m.chartOptions()); err != nil {
		return PlotResult{}, err
	}
	if err := chart.UpdateLink(m.cfg.Chart.Dir, m.cfg.Chart.LatestLink, out); err != nil {
		return PlotResult{}, fmt.Errorf("latest link: %w", err)
	}
	return PlotResult{Path: out, Readings: len(readings)}, nil
}

// Sparkline renders the day's log for a terminal.
func (m *Monitor) Sparkline(day time.Time) (string, error) {
	if day.IsZero() {
		day = m.now()
	}
	readings, err := dailylog.LoadDay(m.cfg.DailyLog.Dir, day.In(m.loc))
	if err != nil {
		return "", err
	}
	return chart.Sparkline(readings, m.cfg.Chart.TermWidth)
}

func (m *Monitor) chartOptions() chart.Options {
	return chart.Options{
		Width:          m.cfg.Chart.Width,
		Height:         m.cfg.Chart.Height,
		HumidThreshold: m.cfg.Detection.HumidThreshold,
		WetThreshold:   m.cfg.Detection.WetThreshold,
	}
}

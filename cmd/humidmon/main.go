package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"humidmon/internal/config"
	"humidmon/internal/logging"
	"humidmon/internal/monitor"
	"humidmon/internal/sensor"
	"humidmon/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to yaml or json configuration file")
	envPath := flag.String("env", ".env", "dotenv file with HUMIDMON_* overrides")
	var verbose, plot bool
	flag.BoolVar(&verbose, "v", false, "verbose (debug) logging")
	flag.BoolVar(&verbose, "verbose", false, "verbose (debug) logging")
	flag.BoolVar(&plot, "p", false, "make plot instead of measuring")
	flag.BoolVar(&plot, "plot", false, "make plot instead of measuring")
	term := flag.Bool("term", false, "with -plot, also print a terminal sparkline")
	day := flag.String("day", "", "with -plot, day to plot as YYYYMMDD (default today)")
	writeConfig := flag.String("write-config", "", "write the resolved configuration to this path and exit")
	flag.Parse()

	if err := run(*configPath, *envPath, *writeConfig, verbose, plot, *term, *day); err != nil {
		fmt.Fprintln(os.Stderr, "humidmon:", err)
		os.Exit(1)
	}
}

func run(configPath, envPath, writeConfig string, verbose, plot, term bool, day string) error {
	if err := config.LoadEnvFile(envPath); err != nil {
		return fmt.Errorf("env file: %w", err)
	}
	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if writeConfig != "" {
		return config.Save(writeConfig, cfg)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	logFile := cfg.LogFile
	if plot && logFile != "" {
		logFile = "PlotLog.txt"
	}
	logger, closer, err := logging.NewRunLogger(cfg.LogLevel, cfg.DailyLog.Dir, logFile, time.Now().In(loc))
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if plot {
		return runPlot(ctx, cfg, logger, loc, term, day)
	}
	return runMeasure(ctx, cfg, logger)
}

func runMeasure(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	src, err := sensor.New(cfg.Sensor)
	if err != nil {
		logger.Error("sensor init failed", "err", err)
		return err
	}
	defer src.Close()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			logger.Warn("storage mirror disabled", "err", err)
			store.Close()
			store = nil
		} else {
			defer store.Close()
		}
	}

	m, err := monitor.New(cfg, logger, src, store)
	if err != nil {
		return err
	}
	r, err := m.Measure(ctx)
	if err != nil {
		logger.Error("measurement failed", "err", err)
		return err
	}
	logger.Info("done", "status", r.Status)
	return nil
}

func runPlot(ctx context.Context, cfg *config.Config, logger *slog.Logger, loc *time.Location, term bool, day string) error {
	m, err := monitor.New(cfg, logger, nil, nil)
	if err != nil {
		return err
	}
	var when time.Time
	if day != "" {
		when, err = time.ParseInLocation("20060102", day, loc)
		if err != nil {
			return fmt.Errorf("invalid -day %q: %w", day, err)
		}
	}
	res, err := m.Plot(ctx, when)
	if err != nil {
		logger.Error("plot failed", "err", err)
		return err
	}
	logger.Info("done", "path", res.Path, "readings", res.Readings)
	if term {
		out, err := m.Sparkline(when)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	return nil
}

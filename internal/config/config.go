package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  string          `json:"log_level" yaml:"log_level"`
	LogFile   string          `json:"log_file" yaml:"log_file"`
	DailyLog  DailyLogConfig  `json:"daily_log" yaml:"daily_log"`
	Sensor    SensorConfig    `json:"sensor" yaml:"sensor"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Chart     ChartConfig     `json:"chart" yaml:"chart"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
}

type DailyLogConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type SensorConfig struct {
	Driver  string `json:"driver" yaml:"driver"`
	I2CBus  string `json:"i2c_bus" yaml:"i2c_bus"`
	I2CAddr uint16 `json:"i2c_addr" yaml:"i2c_addr"`
}

type DetectionConfig struct {
	HumidThreshold float64 `json:"humid_threshold" yaml:"humid_threshold"`
	WetThreshold   float64 `json:"wet_threshold" yaml:"wet_threshold"`
	ShortWindow    int     `json:"short_window" yaml:"short_window"`
	LongWindow     int     `json:"long_window" yaml:"long_window"`
	EscalationMean float64 `json:"escalation_mean" yaml:"escalation_mean"`
}

type ChartConfig struct {
	Dir        string `json:"dir" yaml:"dir"`
	LatestLink string `json:"latest_link" yaml:"latest_link"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
	TermWidth  int    `json:"term_width" yaml:"term_width"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

func DefaultDetection() DetectionConfig {
	return DetectionConfig{
		HumidThreshold: 55,
		WetThreshold:   75,
		ShortWindow:    6,
		LongWindow:     23,
		EscalationMean: 0.5,
	}
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFile:   "HumidityLog_{20060102}.txt",
		DailyLog:  DailyLogConfig{Dir: "logs", Timezone: "Local"},
		Sensor:    SensorConfig{Driver: "bme280", I2CBus: "", I2CAddr: 0x76},
		Detection: DefaultDetection(),
		Chart:     ChartConfig{LatestLink: "latest.png", Width: 1152, Height: 720, TermWidth: 96},
		Storage:   StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:humidmon.db?_pragma=busy_timeout(5000)"},
	}
}

// Load reads a yaml or json config file. An empty path yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(string(content))
		if len(trimmed) == 0 {
			return nil, errors.New("config file is empty")
		}
		var decodeErr error
		if looksLikeJSON(trimmed) {
			decodeErr = json.Unmarshal([]byte(trimmed), cfg)
		} else {
			decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("decode %s: %w", path, decodeErr)
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the resolved configuration to path, as json when the extension
// is .json and yaml otherwise. An invalid configuration is not written.
func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnvFile loads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HUMIDMON_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HUMIDMON_LOG_DIR"); v != "" {
		cfg.DailyLog.Dir = v
	}
	if v := os.Getenv("HUMIDMON_SENSOR_DRIVER"); v != "" {
		cfg.Sensor.Driver = v
	}
	if v := os.Getenv("HUMIDMON_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
		cfg.Storage.Enabled = true
		if isPostgresDSN(v) {
			cfg.Storage.Driver = "postgres"
		}
	}
	if v := os.Getenv("HUMIDMON_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
}

func isPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	def := DefaultDetection()
	if cfg.Detection.ShortWindow <= 0 {
		cfg.Detection.ShortWindow = def.ShortWindow
	}
	if cfg.Detection.LongWindow <= 0 {
		cfg.Detection.LongWindow = def.LongWindow
	}
	if cfg.DailyLog.Dir == "" {
		cfg.DailyLog.Dir = "logs"
	}
	if cfg.DailyLog.Timezone == "" {
		cfg.DailyLog.Timezone = "Local"
	}
	if cfg.Chart.Dir == "" {
		cfg.Chart.Dir = cfg.DailyLog.Dir
	}
	if cfg.Chart.Width <= 0 {
		cfg.Chart.Width = 1152
	}
	if cfg.Chart.Height <= 0 {
		cfg.Chart.Height = 720
	}
	if cfg.Chart.TermWidth <= 0 {
		cfg.Chart.TermWidth = 96
	}
	if cfg.Sensor.Driver == "" {
		cfg.Sensor.Driver = "bme280"
	}
	if cfg.Sensor.I2CAddr == 0 {
		cfg.Sensor.I2CAddr = 0x76
	}
}

func Validate(cfg *Config) error {
	d := cfg.Detection
	if d.HumidThreshold <= 0 || d.HumidThreshold > 100 {
		return errors.New("detection.humid_threshold must be in (0, 100]")
	}
	if d.WetThreshold <= d.HumidThreshold || d.WetThreshold > 100 {
		return errors.New("detection.wet_threshold must be above humid_threshold and at most 100")
	}
	if d.ShortWindow > d.LongWindow {
		return fmt.Errorf("detection.short_window (%d) must not exceed long_window (%d)", d.ShortWindow, d.LongWindow)
	}
	if d.EscalationMean < 0 || d.EscalationMean >= 2 {
		return errors.New("detection.escalation_mean must be in [0, 2)")
	}
	switch strings.ToLower(cfg.Sensor.Driver) {
	case "bme280", "mock":
	default:
		return fmt.Errorf("unsupported sensor driver %q", cfg.Sensor.Driver)
	}
	if cfg.Storage.Enabled {
		switch strings.ToLower(cfg.Storage.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			return fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
		}
	}
	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("daily_log.timezone: %w", err)
	}
	return nil
}

// Location resolves the timezone used to name daily log files and stamp records.
func (c *Config) Location() (*time.Location, error) {
	if c.DailyLog.Timezone == "" || strings.EqualFold(c.DailyLog.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.DailyLog.Timezone)
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}

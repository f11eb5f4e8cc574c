package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/salesmetrics/internal/alerts"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	// Metrics engine
	TimeSeriesStrategy string
	FetchConcurrency   int
	DefaultWindowDays  int
	MaxWindowDays      int

	// Live dashboard
	DashboardInterval time.Duration
	AlertMinShowRate  float64
	AlertMinCloseRate float64
	AlertMinSample    int

	// Optional NATS event source
	NATSURL          string
	NATSCallsSubject string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:               getEnv("PORT", "8080"),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		TimeSeriesStrategy: getEnv("METRICS_TIMESERIES_STRATEGY", "bucket"),
		NATSURL:            getEnv("NATS_URL", ""),
		NATSCallsSubject:   getEnv("NATS_CALLS_SUBJECT", "calls.events"),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	if config.TimeSeriesStrategy != "bucket" && config.TimeSeriesStrategy != "per_day" {
		return nil, fmt.Errorf("invalid METRICS_TIMESERIES_STRATEGY: %q", config.TimeSeriesStrategy)
	}

	if config.FetchConcurrency, err = positiveInt("METRICS_FETCH_CONCURRENCY", "8"); err != nil {
		return nil, err
	}
	if config.DefaultWindowDays, err = positiveInt("METRICS_DEFAULT_WINDOW_DAYS", "30"); err != nil {
		return nil, err
	}
	if config.MaxWindowDays, err = positiveInt("METRICS_MAX_WINDOW_DAYS", "366"); err != nil {
		return nil, err
	}
	if config.DefaultWindowDays > config.MaxWindowDays {
		return nil, fmt.Errorf("METRICS_DEFAULT_WINDOW_DAYS (%d) exceeds METRICS_MAX_WINDOW_DAYS (%d)", config.DefaultWindowDays, config.MaxWindowDays)
	}

	interval, err := positiveInt("DASHBOARD_INTERVAL_SECONDS", "5")
	if err != nil {
		return nil, err
	}
	config.DashboardInterval = time.Duration(interval) * time.Second

	defaults := alerts.DefaultThresholds()
	if config.AlertMinShowRate, err = strconv.ParseFloat(getEnv("ALERT_MIN_SHOW_RATE", formatFloat(defaults.MinShowRate)), 64); err != nil {
		return nil, fmt.Errorf("invalid ALERT_MIN_SHOW_RATE: %w", err)
	}
	if config.AlertMinCloseRate, err = strconv.ParseFloat(getEnv("ALERT_MIN_CLOSE_RATE", formatFloat(defaults.MinCloseRate)), 64); err != nil {
		return nil, fmt.Errorf("invalid ALERT_MIN_CLOSE_RATE: %w", err)
	}
	if config.AlertMinSample, err = positiveInt("ALERT_MIN_SAMPLE", strconv.Itoa(defaults.MinSample)); err != nil {
		return nil, err
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Thresholds returns the configured KPI alert thresholds
func (c *Config) Thresholds() alerts.Thresholds {
	return alerts.Thresholds{
		MinShowRate:  c.AlertMinShowRate,
		MinCloseRate: c.AlertMinCloseRate,
		MinSample:    c.AlertMinSample,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func positiveInt(key, defaultValue string) (int, error) {
	v, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, v)
	}
	return v, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the scheduler
// service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	MaxRangeDays    int
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// Every value has a sensible default; set values are validated and bad ones
// reported together in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:scheduler.db",
		MaxRangeDays:    90,
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if rangeValue := strings.TrimSpace(os.Getenv("SCHEDULER_MAX_RANGE_DAYS")); rangeValue != "" {
		rangeDays, err := strconv.Atoi(rangeValue)
		if err != nil || rangeDays < 0 {
			invalid = append(invalid, "SCHEDULER_MAX_RANGE_DAYS")
		} else {
			cfg.MaxRangeDays = rangeDays
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("SCHEDULER_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "SCHEDULER_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"SCHEDULER_HTTP_PORT",
			"SCHEDULER_SQLITE_DSN",
			"SCHEDULER_MAX_RANGE_DAYS",
			"SCHEDULER_SHUTDOWN_TIMEOUT",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:scheduler.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.MaxRangeDays != 90 {
			t.Fatalf("expected default max range 90 days, got %d", cfg.MaxRangeDays)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Fatalf("expected default shutdown timeout 10s, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_SQLITE_DSN", "file:/tmp/scheduler.db")
		t.Setenv("SCHEDULER_MAX_RANGE_DAYS", "30")
		t.Setenv("SCHEDULER_SHUTDOWN_TIMEOUT", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/scheduler.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.MaxRangeDays != 30 {
			t.Fatalf("expected max range 30 days, got %d", cfg.MaxRangeDays)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Fatalf("expected shutdown timeout 30s, got %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("reports every invalid value in one error", func(t *testing.T) {
		t.Setenv("SCHEDULER_HTTP_PORT", "-1")
		t.Setenv("SCHEDULER_MAX_RANGE_DAYS", "ninety")

		_, err := Load()
		if err == nil {
			t.Fatal("expected error for invalid values")
		}
		for _, name := range []string{"SCHEDULER_HTTP_PORT", "SCHEDULER_MAX_RANGE_DAYS"} {
			if !strings.Contains(err.Error(), name) {
				t.Fatalf("expected %s in error, got %q", name, err.Error())
			}
		}
	})
}

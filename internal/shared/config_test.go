package shared

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIBaseURL != "https://api.sevasetu.in" {
		t.Errorf("api base = %q", c.APIBaseURL)
	}
	if c.HTTPTimeout != 30*time.Second {
		t.Errorf("timeout = %v", c.HTTPTimeout)
	}
	if c.Workers != 6 {
		t.Errorf("workers = %d", c.Workers)
	}
	if c.CredsFile == "" {
		t.Error("creds file default empty")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEVA_API_BASE_URL", "http://localhost:8585")
	t.Setenv("SEVA_WORKERS", "2")
	t.Setenv("SEVA_HTTP_TIMEOUT", "5s")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.APIBaseURL != "http://localhost:8585" {
		t.Errorf("api base = %q", c.APIBaseURL)
	}
	if c.Workers != 2 {
		t.Errorf("workers = %d", c.Workers)
	}
	if c.HTTPTimeout != 5*time.Second {
		t.Errorf("timeout = %v", c.HTTPTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SEVA_API_BASE_URL", "not a url")
	if _, err := Load(); err == nil {
		t.Error("expected error for relative base URL")
	}
	t.Setenv("SEVA_API_BASE_URL", "https://api.sevasetu.in")
	t.Setenv("SEVA_RATE_LIMIT_RPS", "0")
	if _, err := Load(); err == nil {
		t.Error("expected error for zero rps")
	}
}

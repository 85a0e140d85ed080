package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// unsetEnv removes keys for the duration of the test so envconfig defaults apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "STORE_BACKEND", "VFL_DATABASE_URL", "BATCH_LIMIT", "RATE_LIMIT_WINDOW", "CORS_ALLOW_ORIGINS")
	t.Setenv("DATABASE_URL", "postgres://localhost/vfl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendPostgres {
		t.Errorf("Backend = %q, want postgres", cfg.Backend)
	}
	if cfg.DatabaseURL != "postgres://localhost/vfl" {
		t.Errorf("DatabaseURL fallback not applied: %q", cfg.DatabaseURL)
	}
	if cfg.BatchLimit != 500 {
		t.Errorf("BatchLimit = %d, want 500", cfg.BatchLimit)
	}
	if cfg.RateLimitWindow != 60*time.Second {
		t.Errorf("RateLimitWindow = %s", cfg.RateLimitWindow)
	}
	if len(cfg.CORSAllowOrigins) != 2 {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadPrefersPrimaryURL(t *testing.T) {
	unsetEnv(t, "STORE_BACKEND")
	t.Setenv("VFL_DATABASE_URL", "postgres://primary/vfl")
	t.Setenv("DATABASE_URL", "postgres://fallback/vfl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://primary/vfl" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"postgres without url", Config{Backend: BackendPostgres, BatchLimit: 1}, "DATABASE_URL"},
		{"mongo without uri", Config{Backend: BackendMongo, BatchLimit: 1}, "MONGO_URI"},
		{"unknown backend", Config{Backend: "redis", BatchLimit: 1}, "unknown STORE_BACKEND"},
		{"bad batch limit", Config{Backend: BackendMemory}, "BATCH_LIMIT"},
		{"memory ok", Config{Backend: BackendMemory, BatchLimit: 10}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	for env, want := range map[string]bool{"production": true, "staging": false, "development": false, "": false} {
		c := &Config{Environment: env}
		if got := c.IsProduction(); got != want {
			t.Errorf("IsProduction(%q) = %v, want %v", env, got, want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"DATABASE_URL", "PORT", "LOG_LEVEL", "LOG_FORMAT", "PROMETHEUS_PORT", "MIGRATIONS_PATH",
	"ADMIN_USER", "ADMIN_PASSWORD", "TELEGRAM_TOKEN", "TELEGRAM_ADMIN_CHAT_ID",
	"DIGEST_INTERVAL", "OTEL_EXPORTER_OTLP_ENDPOINT", "SERVICE_NAME",
}

// clearEnv blanks every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{"DATABASE_URL": "bolt://wedding.db"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" || cfg.PrometheusPort != "9090" || cfg.LogLevel != "info" {
					t.Errorf("unexpected defaults: %+v", cfg)
				}
				if cfg.DigestInterval != 24*time.Hour {
					t.Errorf("DigestInterval = %s", cfg.DigestInterval)
				}
				if cfg.AdminEnabled() || cfg.TelegramEnabled() {
					t.Errorf("admin surfaces enabled without credentials")
				}
			},
		},
		{
			name:    "missing database url",
			env:     map[string]string{},
			wantErr: true,
		},
		{
			name:    "admin user without password",
			env:     map[string]string{"DATABASE_URL": "bolt://x.db", "ADMIN_USER": "couple"},
			wantErr: true,
		},
		{
			name:    "telegram without chat id",
			env:     map[string]string{"DATABASE_URL": "bolt://x.db", "TELEGRAM_TOKEN": "123:abc"},
			wantErr: true,
		},
		{
			name:    "bad chat id",
			env:     map[string]string{"DATABASE_URL": "bolt://x.db", "TELEGRAM_TOKEN": "123:abc", "TELEGRAM_ADMIN_CHAT_ID": "chat"},
			wantErr: true,
		},
		{
			name:    "bad digest interval",
			env:     map[string]string{"DATABASE_URL": "bolt://x.db", "DIGEST_INTERVAL": "-1h"},
			wantErr: true,
		},
		{
			name: "everything set",
			env: map[string]string{
				"DATABASE_URL":           "postgres://localhost/wedding",
				"ADMIN_USER":             "couple",
				"ADMIN_PASSWORD":         "secret",
				"TELEGRAM_TOKEN":         "123:abc",
				"TELEGRAM_ADMIN_CHAT_ID": "-1001234",
				"DIGEST_INTERVAL":        "6h",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.AdminEnabled() || !cfg.TelegramEnabled() {
					t.Errorf("admin surfaces not enabled: %+v", cfg)
				}
				if cfg.TelegramAdminChatID != -1001234 {
					t.Errorf("TelegramAdminChatID = %d", cfg.TelegramAdminChatID)
				}
				if cfg.DigestInterval != 6*time.Hour {
					t.Errorf("DigestInterval = %s", cfg.DigestInterval)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(missing)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=bolt://from-file.db\nPORT=9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv only fills variables that are unset, not ones set to empty
	for _, k := range []string{"DATABASE_URL", "PORT"} {
		os.Unsetenv(k)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseURL != "bolt://from-file.db" || cfg.Port != "9999" {
		t.Errorf("Load() = %+v, want values from file", cfg)
	}
}

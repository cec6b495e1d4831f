package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "5050" {
		t.Errorf("expected HTTPPort 5050, got %q", cfg.HTTPPort)
	}

	if cfg.InsightsTTL != 24*time.Hour {
		t.Errorf("expected InsightsTTL 24h, got %v", cfg.InsightsTTL)
	}

	if cfg.InsightsPurgeInterval != time.Hour {
		t.Errorf("expected InsightsPurgeInterval 1h, got %v", cfg.InsightsPurgeInterval)
	}

	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("expected default gemini model, got %q", cfg.GeminiModel)
	}

	if cfg.StorageMode != StorageModeMemory {
		t.Errorf("expected memory storage mode, got %q", cfg.StorageMode)
	}

	if !cfg.AutoMigrate {
		t.Error("expected AutoMigrate to default to true")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("GEMINI_TIMEOUT", "15s")
	t.Setenv("INSIGHTS_CACHE_TTL", "2h")
	t.Setenv("STORAGE_MODE", "postgres")
	t.Setenv("POSTGRES_AUTO_MIGRATE", "false")
	t.Setenv("SUMMARY_CONCURRENCY", "8")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("expected HTTPPort 9090, got %q", cfg.HTTPPort)
	}

	if cfg.GeminiTimeout != 15*time.Second {
		t.Errorf("expected GeminiTimeout 15s, got %v", cfg.GeminiTimeout)
	}

	if cfg.InsightsTTL != 2*time.Hour {
		t.Errorf("expected InsightsTTL 2h, got %v", cfg.InsightsTTL)
	}

	if cfg.StorageMode != StorageModePostgres {
		t.Errorf("expected postgres storage mode, got %q", cfg.StorageMode)
	}

	if cfg.AutoMigrate {
		t.Error("expected AutoMigrate false")
	}

	if cfg.SummaryConcurrency != 8 {
		t.Errorf("expected SummaryConcurrency 8, got %d", cfg.SummaryConcurrency)
	}
}

func TestLoadFromEnv_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("GEMINI_TIMEOUT", "not-a-duration")
	t.Setenv("SUMMARY_CONCURRENCY", "many")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.GeminiTimeout != 60*time.Second {
		t.Errorf("expected default GeminiTimeout, got %v", cfg.GeminiTimeout)
	}

	if cfg.SummaryConcurrency != 4 {
		t.Errorf("expected default SummaryConcurrency, got %d", cfg.SummaryConcurrency)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:           "5050",
			GeminiModel:        "gemini-2.0-flash",
			GeminiTimeout:      time.Minute,
			InsightsTTL:        24 * time.Hour,
			SummaryConcurrency: 4,
			StorageMode:        StorageModeMemory,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "empty_port", mutate: func(c *Config) { c.HTTPPort = "" }, wantErr: true},
		{name: "empty_model", mutate: func(c *Config) { c.GeminiModel = "" }, wantErr: true},
		{name: "zero_gemini_timeout", mutate: func(c *Config) { c.GeminiTimeout = 0 }, wantErr: true},
		{name: "zero_ttl", mutate: func(c *Config) { c.InsightsTTL = 0 }, wantErr: true},
		{name: "negative_purge_interval", mutate: func(c *Config) { c.InsightsPurgeInterval = -time.Minute }, wantErr: true},
		{name: "purge_disabled", mutate: func(c *Config) { c.InsightsPurgeInterval = 0 }, wantErr: false},
		{name: "zero_concurrency", mutate: func(c *Config) { c.SummaryConcurrency = 0 }, wantErr: true},
		{name: "unknown_storage", mutate: func(c *Config) { c.StorageMode = "mongo" }, wantErr: true},
		{name: "postgres_storage", mutate: func(c *Config) { c.StorageMode = StorageModePostgres }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db",
		PostgresPort: "5432",
		PostgresUser: "u",
		PostgresPass: "p",
		PostgresDB:   "finsight",
		PostgresSSL:  "disable",
	}

	want := "host=db port=5432 user=u password=p dbname=finsight sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_ = logger.Sync()

	_, err = NewLogger("verbose")
	if err == nil {
		t.Error("expected error for invalid level")
	}

	_, err = NewLogger("")
	if err != nil {
		t.Errorf("expected empty level to default to info, got %v", err)
	}
}

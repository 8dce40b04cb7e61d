package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("LABEL_FILE", "labels.yaml")
	t.Setenv("THRESHOLD", "0.5")
	t.Setenv("RECENT_CALL_CAP", "25")
	t.Setenv("ANALYTICS_CACHE_TTL", "90s")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// Caching
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")

	// OTEL
	t.Setenv("OTEL_ENABLED", "on")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "off")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8088" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.ReadTimeout != 2*time.Second || cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("timeouts = %v/%v", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if cfg.MaxHeaderBytes != 8192 {
		t.Fatalf("MaxHeaderBytes = %d", cfg.MaxHeaderBytes)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q, want normalized release", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want normalized warn", cfg.LogLevel)
	}
	if !cfg.LogPretty {
		t.Fatalf("LogPretty = false, want true")
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Fatalf("APIBasePath = %q", cfg.APIBasePath)
	}
	if cfg.DBPath != "db.sqlite" || cfg.LabelFile != "labels.yaml" {
		t.Fatalf("paths = %q/%q", cfg.DBPath, cfg.LabelFile)
	}
	if cfg.Threshold != 0.5 {
		t.Fatalf("Threshold = %v", cfg.Threshold)
	}
	if cfg.RecentCallCap != 25 {
		t.Fatalf("RecentCallCap = %d", cfg.RecentCallCap)
	}
	if cfg.AnalyticsCacheTTL != 90*time.Second {
		t.Fatalf("AnalyticsCacheTTL = %v", cfg.AnalyticsCacheTTL)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate = %v/%d, want defaults on parse failure", cfg.RateRPS, cfg.RateBurst)
	}
	if want := []string{"https://a.com", "http://b"}; !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security = %+v", cfg.Security)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.DB != 2 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("otel = %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "app.db" {
		t.Fatalf("defaults = %q/%q", cfg.Port, cfg.DBPath)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("Redis.Addr default = %q, want empty (disabled)", cfg.Redis.Addr)
	}
	if cfg.RecentCallCap != 50 || cfg.AnalyticsCacheTTL != 5*time.Minute {
		t.Fatalf("app defaults = %d/%v", cfg.RecentCallCap, cfg.AnalyticsCacheTTL)
	}
}

// --- validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"negative timeout", "READ_TIMEOUT", "-1s", "timeouts"},
		{"threshold too big", "THRESHOLD", "1.5", "THRESHOLD"},
		{"zero call cap", "RECENT_CALL_CAP", "0", "RECENT_CALL_CAP"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"sampler out of range", "OTEL_TRACES_SAMPLER_ARG", "2", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("want error for %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"/api/v1": "/api/v1",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := NewOmsConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SrvAddr != ":8080" {
		t.Errorf("expected default address, got %q", cfg.SrvAddr)
	}
	if cfg.MaxBodySizeBytes != 10*1024*1024 {
		t.Errorf("expected 10 MiB, got %d", cfg.MaxBodySizeBytes)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected INFO, got %v", cfg.LogLevel)
	}
	if cfg.CacheTTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.CacheTTL)
	}
	if cfg.Bucket != "OMS_DECODED" {
		t.Errorf("expected default bucket, got %q", cfg.Bucket)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OMS_LOG_LEVEL", "DEBUG")
	t.Setenv("OMS_MAX_BODY_SIZE", "512KiB")
	t.Setenv("OMS_NATS_URL", "nats://localhost:4222")
	cfg, err := NewOmsConfigFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected DEBUG, got %v", cfg.LogLevel)
	}
	if cfg.MaxBodySizeBytes != 512*1024 {
		t.Errorf("expected 512 KiB, got %d", cfg.MaxBodySizeBytes)
	}
	if cfg.NatsUrl != "nats://localhost:4222" {
		t.Errorf("unexpected NATS URL %q", cfg.NatsUrl)
	}
}

func TestInvalidEnv(t *testing.T) {
	cases := map[string]string{
		"OMS_LOG_LEVEL":     "CHATTY",
		"OMS_MAX_BODY_SIZE": "a lot",
		"OMS_REPLICAS":      "0",
		"OMS_BUCKET":        "no.dots",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := NewOmsConfigFromEnv(); err == nil {
				t.Errorf("expected error for %s=%s", k, v)
			}
		})
	}
}

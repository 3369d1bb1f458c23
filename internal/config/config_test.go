package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.CacheBackend != BackendRedis || cfg.CacheCodec != CodecJSON {
		t.Fatalf("cache defaults: backend=%q codec=%q", cfg.CacheBackend, cfg.CacheCodec)
	}
	if cfg.CacheTTL != 300*time.Second {
		t.Fatalf("CacheTTL = %v", cfg.CacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("CACHE_CODEC", "msgpack")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheBackend != BackendMemory || cfg.CacheCodec != CodecMsgpack || cfg.CacheTTL != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownEnums(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memcached")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_CODEC", "xml")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown codec")
	}
}

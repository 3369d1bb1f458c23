// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backend selectors.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendOff    = "off"
)

// Snapshot codec selectors.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
	CodecCBOR    = "cbor"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`
	DBPath   string `env:"DB_PATH" envDefault:"book_reviews.db"`

	CacheBackend string        `env:"CACHE_BACKEND" envDefault:"redis"`
	RedisAddr    string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB      int           `env:"REDIS_DB" envDefault:"0"`
	CacheCodec   string        `env:"CACHE_CODEC" envDefault:"json"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"300s"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates enum-shaped fields.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.CacheBackend {
	case BackendRedis, BackendMemory, BackendOff:
	default:
		return Config{}, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
	switch cfg.CacheCodec {
	case CodecJSON, CodecMsgpack, CodecCBOR:
	default:
		return Config{}, fmt.Errorf("unknown CACHE_CODEC %q", cfg.CacheCodec)
	}
	return cfg, nil
}

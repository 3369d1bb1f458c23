package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/bookreviewd/internal/cache"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/codec"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/provider"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/provider/memory"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/provider/redis"
	"github.com/unkn0wn-root/bookreviewd/internal/cache/zaplog"
	"github.com/unkn0wn-root/bookreviewd/internal/catalog"
	"github.com/unkn0wn-root/bookreviewd/internal/config"
	"github.com/unkn0wn-root/bookreviewd/internal/server"
	"github.com/unkn0wn-root/bookreviewd/internal/storage/sqlite"
)

// Decoded snapshots larger than this are treated as corrupt.
const maxSnapshotBytes = 8 << 20

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("database ready", zap.String("path", cfg.DBPath))

	prov, err := newProvider(cfg)
	if err != nil {
		return err
	}
	gateway := cache.New(prov, zaplog.Logger{L: log.Named("cache")})
	gateway.Connect(ctx)
	defer gateway.Close(context.Background()) //nolint:errcheck

	snapshotCodec, err := newSnapshotCodec(cfg.CacheCodec)
	if err != nil {
		return err
	}

	svc, err := catalog.New(catalog.Options{
		Store: store,
		Cache: gateway,
		Codec: snapshotCodec,
		TTL:   cfg.CacheTTL,
		Log:   log.Named("catalog"),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(svc, log.Named("http"), cfg.CORSOrigins).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// newProvider selects the cache backend. A nil provider (backend off) leaves
// the gateway in the "not configured" state; the service runs uncached.
func newProvider(cfg config.Config) (provider.Provider, error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:         cfg.RedisAddr,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		return redis.New(redis.Config{Client: client, CloseClient: true})
	case config.BackendMemory:
		return memory.New(memory.Config{LifeWindow: cfg.CacheTTL})
	case config.BackendOff:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

func newSnapshotCodec(name string) (codec.Codec[[]catalog.Book], error) {
	var inner codec.Codec[[]catalog.Book]
	switch name {
	case config.CodecJSON:
		inner = codec.JSON[[]catalog.Book]{}
	case config.CodecMsgpack:
		inner = codec.Msgpack[[]catalog.Book]{}
	case config.CodecCBOR:
		c, err := codec.NewCBOR[[]catalog.Book]()
		if err != nil {
			return nil, err
		}
		inner = c
	default:
		return nil, fmt.Errorf("unknown snapshot codec %q", name)
	}
	return codec.Limit[[]catalog.Book]{Inner: inner, MaxDecode: maxSnapshotBytes}, nil
}

// Package cache keeps converted PDFs in Redis keyed by the input content.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docconvert/internal/logging"
)

const keyPrefix = "pdfcache:"

// PDFCache stores conversion output by key.
type PDFCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, pdf []byte) error
}

// Key derives a cache key from the input format and bytes.
func Key(format string, input []byte) string {
	h := sha256.New()
	h.Write([]byte(format))
	h.Write([]byte{0})
	h.Write(input)
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Redis is a PDFCache backed by a go-redis client.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	// per-operation timeout so a slow Redis never stalls a conversion
	opTimeout time.Duration
}

// NewRedis wraps rdb. A non-positive ttl falls back to one minute.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{rdb: rdb, ttl: ttl, opTimeout: time.Second}
}

// Connect opens a client for addr/db and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	cached, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil, err
	}
	logging.Debug("PDF cache hit", "key", key)
	return cached, nil
}

func (r *Redis) Set(ctx context.Context, key string, pdf []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if err := r.rdb.Set(ctx, key, pdf, r.ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
		return err
	}
	return nil
}

// Ping checks connectivity for health reporting.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/levilina/marine-data-backend/internal/clients/gfw"
	"github.com/levilina/marine-data-backend/internal/logger"
)

// LookupCache memoizes GFW vessel searches so re-runs over the same registry
// do not re-hit the rate-limited API.
type LookupCache interface {
	GetSearch(ctx context.Context, query string) ([]gfw.VesselEntry, bool, error)
	SetSearch(ctx context.Context, query string, entries []gfw.VesselEntry) error
	Close() error
}

type lookupCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLookupCache(log *logger.Logger) (LookupCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 24 * time.Hour
	if v := strings.TrimSpace(os.Getenv("REDIS_LOOKUP_TTL_HOURS")); v != "" {
		if d, err := time.ParseDuration(v + "h"); err == nil && d > 0 {
			ttl = d
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &lookupCache{
		log: log.With("client", "RedisLookupCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func searchKey(query string) string {
	return "gfw:search:" + strings.ToUpper(strings.TrimSpace(query))
}

func (c *lookupCache) GetSearch(ctx context.Context, query string) ([]gfw.VesselEntry, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, searchKey(query)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entries []gfw.VesselEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Stale or corrupt payload; treat as a miss.
		c.log.Warn("dropping undecodable cache entry", "query", query, "error", err)
		_ = c.rdb.Del(ctx, searchKey(query)).Err()
		return nil, false, nil
	}
	return entries, true, nil
}

func (c *lookupCache) SetSearch(ctx context.Context, query string, entries []gfw.VesselEntry) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, searchKey(query), raw, c.ttl).Err()
}

func (c *lookupCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

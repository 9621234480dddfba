// Package statscache is a read-through Redis cache in front of the stage statistics
// store. Statistics drift slowly, so the ETA of every poll does not need a database read.
//
// A cache failure never fails a read: the cache logs it and serves from the source.
// Loads of the same category are collapsed with singleflight.
package statscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tracking/internal/core/domain/model/stage"
	"tracking/internal/core/domain/model/stats"
	"tracking/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "tracking:stage-stats:"

// DefaultTTL bounds how long a statistic may stay stale after a missed invalidation.
const DefaultTTL = 5 * time.Minute

const defaultLoadTimeout = 5 * time.Second

type entryJSON struct {
	Stage          string  `json:"stage"`
	AverageSeconds float64 `json:"averageSeconds"`
	Samples        int     `json:"samples"`
}

// Cache implements ports.StatsReader and ports.StatsInvalidator.
type Cache struct {
	client      *redis.Client
	source      ports.StatsReader
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	logger      *slog.Logger
}

// NewClient creates a client from a URL of the form redis://[:password@]host[:port][/database].
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewCache(client *redis.Client, source ports.StatsReader, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client:      client,
		source:      source,
		ttl:         ttl,
		loadTimeout: defaultLoadTimeout,
		logger:      logger.With("component", "StatsCache"),
	}
}

func (c *Cache) GetByCategory(ctx context.Context, categoryID string) (stats.Table, error) {
	key := keyPrefix + categoryID

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		table, decodeErr := decode(categoryID, raw)
		if decodeErr == nil {
			return table, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable cache entry", "category", categoryID, "error", decodeErr)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "stats cache read failed", "category", categoryID, "error", err)
	}

	// Shared by every waiter on the key, so it must outlive the caller that started it.
	v, err, _ := c.group.Do(categoryID, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		table, loadErr := c.source.GetByCategory(loadCtx, categoryID)
		if loadErr != nil {
			return stats.Table{}, loadErr
		}
		if setErr := c.client.Set(loadCtx, key, encode(table), c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "stats cache write failed", "category", categoryID, "error", setErr)
		}
		return table, nil
	})
	if err != nil {
		return stats.Table{}, err
	}
	return v.(stats.Table), nil
}

// Invalidate drops the cached statistics of a category.
func (c *Cache) Invalidate(ctx context.Context, categoryID string) error {
	if err := c.client.Del(ctx, keyPrefix+categoryID).Err(); err != nil {
		return fmt.Errorf("failed to delete stats of %s: %w", categoryID, err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func encode(table stats.Table) []byte {
	entries := table.Entries()
	out := make([]entryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON{
			Stage:          e.StageKey().String(),
			AverageSeconds: e.Average().Seconds(),
			Samples:        e.Samples(),
		})
	}
	data, _ := json.Marshal(out)
	return data
}

func decode(categoryID string, raw []byte) (stats.Table, error) {
	var in []entryJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return stats.Table{}, err
	}

	entries := make([]stats.StageDuration, 0, len(in))
	for _, e := range in {
		entry, err := stats.NewStageDuration(
			categoryID,
			stage.Key(e.Stage),
			time.Duration(e.AverageSeconds*float64(time.Second)),
			e.Samples,
		)
		if err != nil {
			return stats.Table{}, err
		}
		entries = append(entries, entry)
	}
	return stats.NewTable(categoryID, entries), nil
}

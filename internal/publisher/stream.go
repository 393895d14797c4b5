// Package publisher writes totals-updated events and recalculation flags to
// Redis so downstream consumers and the recalc worker pick up new data.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtline/stat-engine/pkg/models"
)

// Stream and dirty-set keys shared with the recalc worker.
const (
	TotalsStream    = "stats.totals.updated"
	DirtyGamesKey   = "recalc:dirty:games"
	DirtyWeeksKey   = "recalc:dirty:weeks"
	DirtySeasonsKey = "recalc:dirty:seasons"
)

// StreamPublisher publishes computed-totals events to Redis Streams.
type StreamPublisher struct {
	redis *redis.Client
}

// NewStreamPublisher creates a new stream publisher.
func NewStreamPublisher(redisClient *redis.Client) *StreamPublisher {
	return &StreamPublisher{redis: redisClient}
}

// Publish publishes a totals-updated event.
func (p *StreamPublisher) Publish(ctx context.Context, updated *models.TotalsUpdated) error {
	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("error marshaling totals event: %w", err)
	}

	_, err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: TotalsStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", TotalsStream, err)
	}

	return nil
}

// MarkDirty flags the periods touched by an ingested entry so the recalc
// worker recomputes their awards on its next pass. Game, week, and season
// markers go into three Redis sets; members encode the period key.
func (p *StreamPublisher) MarkDirty(ctx context.Context, entry models.StatEntry, weekStart time.Time) error {
	pipe := p.redis.Pipeline()
	pipe.SAdd(ctx, DirtyGamesKey, entry.SeasonID+"|"+entry.GameID)
	pipe.SAdd(ctx, DirtyWeeksKey, entry.SeasonID+"|"+weekStart.Format("2006-01-02"))
	pipe.SAdd(ctx, DirtySeasonsKey, entry.SeasonID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error marking dirty periods: %w", err)
	}
	return nil
}

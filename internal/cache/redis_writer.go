// Package cache writes computed box scores and season leaderboards to Redis
// for the reporting layer. All values are JSON blobs with TTLs; the store
// remains the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtline/stat-engine/pkg/models"
)

// TTL constants
const (
	BoxScoreTTL    = 6 * time.Hour
	LeaderboardTTL = 24 * time.Hour
	AwardsTTL      = 24 * time.Hour
)

// BoxScore is the cached per-game view: both team lines and every player
// line, as computed by the aggregator.
type BoxScore struct {
	GameID  string                    `json:"game_id"`
	Teams   []models.TeamGameTotals   `json:"teams"`
	Players []models.PlayerGameTotals `json:"players"`
}

// LeaderboardEntry is one row of a cached season leaderboard.
type LeaderboardEntry struct {
	SubjectID string  `json:"subject_id"`
	Value     float64 `json:"value"`
}

// Writer handles writing computed stat data to Redis.
type Writer struct {
	client *redis.Client
}

// NewWriter creates a new cache writer.
func NewWriter(client *redis.Client) *Writer {
	return &Writer{client: client}
}

// WriteBoxScore stores the computed box score for a game.
func (w *Writer) WriteBoxScore(ctx context.Context, box *BoxScore) error {
	key := fmt.Sprintf("game:%s:boxscore", box.GameID)

	data, err := json.Marshal(box)
	if err != nil {
		return fmt.Errorf("marshaling box score: %w", err)
	}

	return w.client.Set(ctx, key, data, BoxScoreTTL).Err()
}

// ReadBoxScore retrieves a cached box score.
func (w *Writer) ReadBoxScore(ctx context.Context, gameID string) (*BoxScore, error) {
	key := fmt.Sprintf("game:%s:boxscore", gameID)

	data, err := w.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var box BoxScore
	if err := json.Unmarshal([]byte(data), &box); err != nil {
		return nil, fmt.Errorf("unmarshaling box score: %w", err)
	}

	return &box, nil
}

// WriteLeaderboard stores a ranked season leaderboard for one metric.
func (w *Writer) WriteLeaderboard(ctx context.Context, seasonID, metric string, entries []LeaderboardEntry) error {
	key := fmt.Sprintf("season:%s:leaderboard:%s", seasonID, metric)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling leaderboard: %w", err)
	}

	return w.client.Set(ctx, key, data, LeaderboardTTL).Err()
}

// ReadLeaderboard retrieves a cached season leaderboard.
func (w *Writer) ReadLeaderboard(ctx context.Context, seasonID, metric string) ([]LeaderboardEntry, error) {
	key := fmt.Sprintf("season:%s:leaderboard:%s", seasonID, metric)

	data, err := w.client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("unmarshaling leaderboard: %w", err)
	}

	return entries, nil
}

// WriteAwards stores the current award assignments for a season.
func (w *Writer) WriteAwards(ctx context.Context, seasonID string, assignments []models.AwardAssignment) error {
	key := fmt.Sprintf("season:%s:awards", seasonID)

	data, err := json.Marshal(assignments)
	if err != nil {
		return fmt.Errorf("marshaling awards: %w", err)
	}

	return w.client.Set(ctx, key, data, AwardsTTL).Err()
}

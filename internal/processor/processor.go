// Package processor turns consumed stat entries into persisted, cached
// totals: parse notation, aggregate the game, rebuild team totals, flag the
// touched periods for award recalculation.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/courtline/stat-engine/internal/cache"
	"github.com/courtline/stat-engine/internal/consumer"
	"github.com/courtline/stat-engine/internal/notation"
	"github.com/courtline/stat-engine/internal/publisher"
	"github.com/courtline/stat-engine/internal/stats"
	"github.com/courtline/stat-engine/pkg/models"
)

// StatEntriesStream is the input stream fed by the import/editing layer.
const StatEntriesStream = "stats.entries"

// Store is the slice of the persistence layer the processor writes through.
type Store interface {
	UpsertGame(ctx context.Context, gameID, seasonID string, gameDate time.Time) error
	UpsertPlayerGame(ctx context.Context, totals models.PlayerGameTotals) error
	UpsertTeamGame(ctx context.Context, totals models.TeamGameTotals) error
	GamePlayerTotals(ctx context.Context, gameID string) ([]models.PlayerGameTotals, error)
	GameTeamTotals(ctx context.Context, gameID string) ([]models.TeamGameTotals, error)
}

// Processor orchestrates ingestion of stat entries.
type Processor struct {
	consumer  *consumer.StreamConsumer
	publisher *publisher.StreamPublisher
	store     Store
	cache     *cache.Writer
	weekStart time.Weekday

	// Metrics
	processedCount int64
	errorCount     int64
	mu             sync.Mutex
}

// NewProcessor creates a new processor.
func NewProcessor(
	consumer *consumer.StreamConsumer,
	publisher *publisher.StreamPublisher,
	store Store,
	cacheWriter *cache.Writer,
	weekStart time.Weekday,
) *Processor {
	return &Processor{
		consumer:  consumer,
		publisher: publisher,
		store:     store,
		cache:     cacheWriter,
		weekStart: weekStart,
	}
}

// Start begins processing stat entries until the context is canceled.
func (p *Processor) Start(ctx context.Context) error {
	fmt.Printf("✓ Started processing stream: %s\n", StatEntriesStream)

	messageCh, errorCh := p.consumer.ConsumeStream(ctx, StatEntriesStream)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-errorCh:
			if err != nil {
				fmt.Printf("[Processor] stream error: %v\n", err)
			}

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}

			if err := p.processMessage(ctx, msg); err != nil {
				fmt.Printf("[Processor] error processing message %s: %v\n", msg.ID, err)
				p.incrementErrorCount()
			} else {
				p.incrementProcessedCount()
			}

			if err := p.consumer.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				fmt.Printf("[Processor] error acknowledging message %s: %v\n", msg.ID, err)
			}
		}
	}
}

// processMessage ingests a single stat entry. Parse and aggregation errors
// propagate: they indicate corrupt input that must be corrected at the
// source, never coerced.
func (p *Processor) processMessage(ctx context.Context, msg consumer.Message) error {
	entry := msg.Entry

	records, err := notation.ParseGame(entry.Quarters)
	if err != nil {
		return fmt.Errorf("parsing entry for player %s game %s: %w", entry.PlayerID, entry.GameID, err)
	}

	totals, err := stats.AggregateGame(entry.PlayerID, entry.GameID, entry.TeamID, records)
	if err != nil {
		return fmt.Errorf("aggregating entry for player %s game %s: %w", entry.PlayerID, entry.GameID, err)
	}

	if err := p.store.UpsertGame(ctx, entry.GameID, entry.SeasonID, entry.GameDate); err != nil {
		return err
	}
	if err := p.store.UpsertPlayerGame(ctx, totals); err != nil {
		return err
	}

	if err := p.rebuildTeamTotals(ctx, entry.GameID); err != nil {
		return err
	}

	if err := p.refreshBoxScore(ctx, entry.GameID); err != nil {
		// Cache refresh is best effort; the store already holds the truth.
		fmt.Printf("[Processor] error refreshing box score cache for game %s: %v\n", entry.GameID, err)
	}

	week := models.WeekOf(entry.GameDate, p.weekStart)
	if err := p.publisher.MarkDirty(ctx, entry, week.Start); err != nil {
		return err
	}

	return p.publisher.Publish(ctx, &models.TotalsUpdated{
		PlayerID:  entry.PlayerID,
		GameID:    entry.GameID,
		SeasonID:  entry.SeasonID,
		Points:    totals.Points(),
		UpdatedAt: time.Now().UTC(),
	})
}

// rebuildTeamTotals re-sums every team's roster lines for the game. The sum
// is cheap at roster sizes and keeps team rows consistent with whatever
// player rows exist after any edit.
func (p *Processor) rebuildTeamTotals(ctx context.Context, gameID string) error {
	players, err := p.store.GamePlayerTotals(ctx, gameID)
	if err != nil {
		return err
	}

	byTeam := make(map[string][]models.PlayerGameTotals)
	for _, pl := range players {
		byTeam[pl.TeamID] = append(byTeam[pl.TeamID], pl)
	}

	for teamID, roster := range byTeam {
		team := stats.AggregateTeam(teamID, gameID, roster)
		if err := p.store.UpsertTeamGame(ctx, team); err != nil {
			return err
		}
	}

	return nil
}

func (p *Processor) refreshBoxScore(ctx context.Context, gameID string) error {
	players, err := p.store.GamePlayerTotals(ctx, gameID)
	if err != nil {
		return err
	}
	teams, err := p.store.GameTeamTotals(ctx, gameID)
	if err != nil {
		return err
	}

	return p.cache.WriteBoxScore(ctx, &cache.BoxScore{
		GameID:  gameID,
		Teams:   teams,
		Players: players,
	})
}

func (p *Processor) incrementProcessedCount() {
	p.mu.Lock()
	p.processedCount++
	p.mu.Unlock()
}

func (p *Processor) incrementErrorCount() {
	p.mu.Lock()
	p.errorCount++
	p.mu.Unlock()
}

// GetMetrics returns current processing metrics.
func (p *Processor) GetMetrics() (processed, errors int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processedCount, p.errorCount
}

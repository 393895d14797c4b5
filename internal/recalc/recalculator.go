// Package recalc drives idempotent award recomputation. A poll loop picks
// up the periods flagged dirty by ingestion and replays the awards engine
// over each; one failed period never blocks the rest.
package recalc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtline/stat-engine/internal/awards"
	"github.com/courtline/stat-engine/internal/cache"
	"github.com/courtline/stat-engine/internal/publisher"
	"github.com/courtline/stat-engine/pkg/hoopmath"
	"github.com/courtline/stat-engine/pkg/models"
)

// leaderboardSize caps the cached season leaderboards.
const leaderboardSize = 10

// SeasonTotalsSource is the slice of the store the leaderboard refresh reads.
type SeasonTotalsSource interface {
	SeasonPlayerTotals(ctx context.Context, season models.Season) ([]models.PlayerSeasonTotals, error)
}

// AssignmentReader reads back stored assignments for cache refresh.
type AssignmentReader interface {
	Assignments(ctx context.Context, seasonID, awardID string) ([]models.AwardAssignment, error)
}

// Recalculator polls the dirty-period sets and recomputes awards.
type Recalculator struct {
	redis        *redis.Client
	engine       *awards.Engine
	source       SeasonTotalsSource
	assignments  AssignmentReader
	cache        *cache.Writer
	pollInterval time.Duration
}

// NewRecalculator creates a new recalculator.
func NewRecalculator(
	redisClient *redis.Client,
	engine *awards.Engine,
	source SeasonTotalsSource,
	assignments AssignmentReader,
	cacheWriter *cache.Writer,
	pollInterval time.Duration,
) *Recalculator {
	return &Recalculator{
		redis:        redisClient,
		engine:       engine,
		source:       source,
		assignments:  assignments,
		cache:        cacheWriter,
		pollInterval: pollInterval,
	}
}

// Start begins the recalculation polling loop.
func (r *Recalculator) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	// Run immediately on start
	if err := r.runOnce(ctx); err != nil {
		fmt.Printf("[Recalc] initial run error: %v\n", err)
	}

	for {
		select {
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				fmt.Printf("[Recalc] error: %v\n", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// runOnce drains the dirty sets once. Each period is recalculated and then
// removed from its set; a period that fails stays flagged for the next pass.
func (r *Recalculator) runOnce(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in recalculation: %v", rec)
			fmt.Printf("[Recalc] PANIC: %v\n", rec)
		}
	}()

	if err := r.drainGames(ctx); err != nil {
		return err
	}
	if err := r.drainWeeks(ctx); err != nil {
		return err
	}
	return r.drainSeasons(ctx)
}

func (r *Recalculator) drainGames(ctx context.Context) error {
	members, err := r.redis.SMembers(ctx, publisher.DirtyGamesKey).Result()
	if err != nil {
		return fmt.Errorf("reading dirty games: %w", err)
	}

	for _, member := range members {
		seasonID, gameID, ok := splitMember(member)
		if !ok {
			fmt.Printf("[Recalc] dropping malformed dirty game %q\n", member)
			r.redis.SRem(ctx, publisher.DirtyGamesKey, member)
			continue
		}

		period := awards.Period{Season: models.Season{ID: seasonID}, GameID: gameID}
		assignments, err := r.engine.Recalculate(ctx, models.ScopeGame, period)
		if err != nil {
			fmt.Printf("[Recalc] error recalculating game %s: %v\n", gameID, err)
			continue
		}

		fmt.Printf("[Recalc] game %s: %d award(s)\n", gameID, len(assignments))
		r.redis.SRem(ctx, publisher.DirtyGamesKey, member)
	}

	return nil
}

func (r *Recalculator) drainWeeks(ctx context.Context) error {
	members, err := r.redis.SMembers(ctx, publisher.DirtyWeeksKey).Result()
	if err != nil {
		return fmt.Errorf("reading dirty weeks: %w", err)
	}

	for _, member := range members {
		seasonID, dateStr, ok := splitMember(member)
		if !ok {
			fmt.Printf("[Recalc] dropping malformed dirty week %q\n", member)
			r.redis.SRem(ctx, publisher.DirtyWeeksKey, member)
			continue
		}

		start, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			fmt.Printf("[Recalc] dropping dirty week with bad date %q: %v\n", member, err)
			r.redis.SRem(ctx, publisher.DirtyWeeksKey, member)
			continue
		}

		week := models.Week{Start: start}
		period := awards.Period{Season: models.Season{ID: seasonID}, Week: &week}
		assignments, err := r.engine.Recalculate(ctx, models.ScopeWeekly, period)
		if err != nil {
			fmt.Printf("[Recalc] error recalculating week of %s: %v\n", dateStr, err)
			continue
		}

		fmt.Printf("[Recalc] week of %s: %d award(s)\n", dateStr, len(assignments))
		r.redis.SRem(ctx, publisher.DirtyWeeksKey, member)
	}

	return nil
}

func (r *Recalculator) drainSeasons(ctx context.Context) error {
	members, err := r.redis.SMembers(ctx, publisher.DirtySeasonsKey).Result()
	if err != nil {
		return fmt.Errorf("reading dirty seasons: %w", err)
	}

	for _, seasonID := range members {
		season := models.Season{ID: seasonID}
		period := awards.Period{Season: season}
		assignments, err := r.engine.Recalculate(ctx, models.ScopeSeason, period)
		if err != nil {
			fmt.Printf("[Recalc] error recalculating season %s: %v\n", seasonID, err)
			continue
		}

		fmt.Printf("[Recalc] season %s: %d award(s)\n", seasonID, len(assignments))

		if err := r.refreshSeasonCaches(ctx, season); err != nil {
			fmt.Printf("[Recalc] error refreshing caches for season %s: %v\n", seasonID, err)
		}

		r.redis.SRem(ctx, publisher.DirtySeasonsKey, seasonID)
	}

	return nil
}

// refreshSeasonCaches rebuilds the cached leaderboards and award list after
// a season recalculation.
func (r *Recalculator) refreshSeasonCaches(ctx context.Context, season models.Season) error {
	totals, err := r.source.SeasonPlayerTotals(ctx, season)
	if err != nil {
		return err
	}

	boards := map[string]func(models.PlayerSeasonTotals) float64{
		"points": func(t models.PlayerSeasonTotals) float64 { return float64(t.Points()) },
		"efg_pct": func(t models.PlayerSeasonTotals) float64 {
			return hoopmath.EFGPct(t.FG2Made, t.FG3Made, t.FG2Att, t.FG3Att)
		},
		"ts_pct": func(t models.PlayerSeasonTotals) float64 {
			return hoopmath.TSPct(t.Points(), t.FGAtt(), t.FTAtt)
		},
	}

	for metric, value := range boards {
		entries := make([]cache.LeaderboardEntry, 0, len(totals))
		for _, t := range totals {
			entries = append(entries, cache.LeaderboardEntry{SubjectID: t.PlayerID, Value: value(t)})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Value != entries[j].Value {
				return entries[i].Value > entries[j].Value
			}
			return entries[i].SubjectID < entries[j].SubjectID
		})
		if len(entries) > leaderboardSize {
			entries = entries[:leaderboardSize]
		}

		if err := r.cache.WriteLeaderboard(ctx, season.ID, metric, entries); err != nil {
			return err
		}
	}

	assignments, err := r.assignments.Assignments(ctx, season.ID, "")
	if err != nil {
		return err
	}
	return r.cache.WriteAwards(ctx, season.ID, assignments)
}

func splitMember(member string) (string, string, bool) {
	parts := strings.SplitN(member, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

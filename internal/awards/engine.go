// Package awards evaluates the award rule catalog against aggregated totals
// and replaces stored assignments idempotently per scope and period.
package awards

import (
	"context"
	"fmt"

	"github.com/courtline/stat-engine/pkg/models"
)

// Period identifies the exact slice of assignments one recalculation
// replaces. Exactly one of GameID / Week is set for game / weekly scope;
// season scope uses the season alone.
type Period struct {
	Season models.Season
	GameID string
	Week   *models.Week
}

// TotalsSource supplies aggregated totals restricted to the requested
// period. Implementations must return only subjects with qualifying games
// in the period — the evaluator never scans the full player universe and
// discards non-participants.
type TotalsSource interface {
	GamePlayerTotals(ctx context.Context, gameID string) ([]models.PlayerGameTotals, error)
	GameTeamTotals(ctx context.Context, gameID string) ([]models.TeamGameTotals, error)
	WeekPlayerGames(ctx context.Context, seasonID string, week models.Week) ([]models.PlayerGameTotals, error)
	SeasonPlayerTotals(ctx context.Context, season models.Season) ([]models.PlayerSeasonTotals, error)
	SeasonTeamTotals(ctx context.Context, season models.Season) ([]models.TeamSeasonTotals, error)
}

// AssignmentStore persists award assignments. Replace must clear the exact
// scope/period and insert the new set in a single atomic unit; callers must
// not run two replacements for the same scope/period concurrently.
type AssignmentStore interface {
	Replace(ctx context.Context, scope models.AwardScope, period Period, assignments []models.AwardAssignment) error
}

// Engine evaluates the award catalog. It holds no mutable state of its own;
// its only external effect is the bounded assignment replacement done
// through the store.
type Engine struct {
	catalog *Catalog
	source  TotalsSource
	store   AssignmentStore
}

// NewEngine creates an engine for a validated catalog.
func NewEngine(catalog *Catalog, source TotalsSource, store AssignmentStore) *Engine {
	return &Engine{catalog: catalog, source: source, store: store}
}

// Recalculate recomputes every award for one scope and period, replacing the
// previously stored assignments for exactly that scope/period. Repeated
// calls with unchanged inputs produce an identical assignment set. A rule
// that cannot be evaluated is logged and skipped; the rest still run.
func (e *Engine) Recalculate(ctx context.Context, scope models.AwardScope, period Period) ([]models.AwardAssignment, error) {
	rules := e.catalog.RulesForScope(scope)

	var assignments []models.AwardAssignment
	var errs []error
	var err error

	switch scope {
	case models.ScopeGame:
		if period.GameID == "" {
			return nil, fmt.Errorf("game scope requires a game ID")
		}
		assignments, errs, err = e.recalculateGame(ctx, rules, period)
	case models.ScopeWeekly:
		if period.Week == nil {
			return nil, fmt.Errorf("weekly scope requires a week window")
		}
		assignments, errs, err = e.recalculateWeek(ctx, rules, period)
	case models.ScopeSeason:
		assignments, errs, err = e.recalculateSeason(ctx, rules, period)
	default:
		return nil, fmt.Errorf("unknown award scope %q", scope)
	}
	if err != nil {
		return nil, err
	}

	for _, ruleErr := range errs {
		fmt.Printf("[Awards] skipping rule: %v\n", ruleErr)
	}

	if err := e.store.Replace(ctx, scope, period, assignments); err != nil {
		return nil, fmt.Errorf("replacing %s assignments: %w", scope, err)
	}

	return assignments, nil
}

func (e *Engine) recalculateGame(ctx context.Context, rules []models.AwardRule, period Period) ([]models.AwardAssignment, []error, error) {
	players, err := e.source.GamePlayerTotals(ctx, period.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading player totals for game %s: %w", period.GameID, err)
	}
	teams, err := e.source.GameTeamTotals(ctx, period.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading team totals for game %s: %w", period.GameID, err)
	}

	assignments, errs := EvaluateGame(rules, period.Season.ID, period.GameID, players, teams)
	return assignments, errs, nil
}

func (e *Engine) recalculateWeek(ctx context.Context, rules []models.AwardRule, period Period) ([]models.AwardAssignment, []error, error) {
	games, err := e.source.WeekPlayerGames(ctx, period.Season.ID, *period.Week)
	if err != nil {
		return nil, nil, fmt.Errorf("loading games for week of %s: %w", period.Week.Start.Format("2006-01-02"), err)
	}

	assignments, errs := EvaluateWeek(rules, period.Season.ID, *period.Week, games)
	return assignments, errs, nil
}

func (e *Engine) recalculateSeason(ctx context.Context, rules []models.AwardRule, period Period) ([]models.AwardAssignment, []error, error) {
	players, err := e.source.SeasonPlayerTotals(ctx, period.Season)
	if err != nil {
		return nil, nil, fmt.Errorf("loading season player totals: %w", err)
	}
	teams, err := e.source.SeasonTeamTotals(ctx, period.Season)
	if err != nil {
		return nil, nil, fmt.Errorf("loading season team totals: %w", err)
	}

	assignments, errs := EvaluateSeason(rules, period.Season, players, teams)
	return assignments, errs, nil
}

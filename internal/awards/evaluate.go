package awards

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/courtline/stat-engine/pkg/models"
)

// RuleEvaluationError reports that a single rule could not be evaluated
// against the supplied totals. The rule is skipped with a logged reason;
// sibling rules are unaffected.
type RuleEvaluationError struct {
	RuleID string
	Err    error
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("evaluating award rule %q: %v", e.RuleID, e.Err)
}

func (e *RuleEvaluationError) Unwrap() error { return e.Err }

// candidate is one subject's extracted values for a single rule.
type candidate struct {
	subjectID string
	gameID    string // weekly scope: the best game this value came from
	value     float64
	tieBreak  float64
}

// evaluateRule runs the selection pipeline for one rule over a prepared
// subject set: collect candidates meeting the minimum volume, rank by
// metric, resolve ties, return winners. The multi-winner flag is resolved
// here as an explicit step — never "first match found".
func evaluateRule(rule models.AwardRule, subjects []Subject) ([]candidate, error) {
	metric := metricRegistry[rule.Metric]

	candidates := make([]candidate, 0, len(subjects))
	for _, s := range subjects {
		ok, err := meetsMinVolume(rule, s)
		if err != nil {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
		}
		if !ok {
			continue
		}

		value, err := metric(s)
		if err != nil {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
		}

		c := candidate{subjectID: s.ID, value: value}
		if rule.TieBreakMetric != "" {
			tb, err := metricRegistry[rule.TieBreakMetric](s)
			if err != nil {
				return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
			}
			c.tieBreak = tb
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	// Threshold rules are not comparative: every candidate meeting the bar
	// wins, however many there are.
	if !rule.Comparative() {
		var winners []candidate
		for _, c := range candidates {
			if meetsThreshold(rule, c.value) {
				winners = append(winners, c)
			}
		}
		sortCandidates(winners)
		return winners, nil
	}

	return rankCandidates(rule, candidates), nil
}

// rankCandidates keeps everyone sharing the top value, then applies the
// rule's tie resolution.
func rankCandidates(rule models.AwardRule, candidates []candidate) []candidate {
	best := candidates[0].value
	for _, c := range candidates[1:] {
		if better(rule.Direction, c.value, best) {
			best = c.value
		}
	}

	var top []candidate
	for _, c := range candidates {
		if c.value == best {
			top = append(top, c)
		}
	}

	// All tied candidates win when the rule allows multiple winners.
	// Otherwise the declared tie-break metric decides, lower winning
	// (e.g. fewer attempts at the same percentage). A tie that survives
	// the tie-break is genuine and every remaining candidate is recorded.
	if !rule.MultiWinner && len(top) > 1 {
		bestTB := top[0].tieBreak
		for _, c := range top[1:] {
			if c.tieBreak < bestTB {
				bestTB = c.tieBreak
			}
		}
		var kept []candidate
		for _, c := range top {
			if c.tieBreak == bestTB {
				kept = append(kept, c)
			}
		}
		top = kept
	}

	sortCandidates(top)
	return top
}

func sortCandidates(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].subjectID < cs[j].subjectID })
}

func meetsMinVolume(rule models.AwardRule, s Subject) (bool, error) {
	if rule.MinVolumeMetric == "" {
		return true, nil
	}
	volume, err := metricRegistry[rule.MinVolumeMetric](s)
	if err != nil {
		return false, err
	}
	return volume >= rule.MinVolume, nil
}

func meetsThreshold(rule models.AwardRule, value float64) bool {
	if rule.Direction == models.DirectionMin {
		return value <= *rule.Threshold
	}
	return value >= *rule.Threshold
}

func better(dir models.AwardDirection, a, b float64) bool {
	if dir == models.DirectionMin {
		return a < b
	}
	return a > b
}

// assignment builds the stored record for one winner.
func assignment(rule models.AwardRule, c candidate, seasonID, gameID string, weekStart *time.Time) models.AwardAssignment {
	return models.AwardAssignment{
		ID:        uuid.NewString(),
		AwardID:   rule.ID,
		SubjectID: c.subjectID,
		SeasonID:  seasonID,
		GameID:    gameID,
		WeekStart: weekStart,
		Value:     c.value,
	}
}

// EvaluateGame evaluates every game-scope rule against a single game's
// totals. Player rules read the player lines, team rules the team lines.
// A failing rule is collected and skipped; the rest still evaluate.
func EvaluateGame(rules []models.AwardRule, seasonID, gameID string, players []models.PlayerGameTotals, teams []models.TeamGameTotals) ([]models.AwardAssignment, []error) {
	playerSubjects := make([]Subject, 0, len(players))
	for _, p := range players {
		playerSubjects = append(playerSubjects, Subject{ID: p.PlayerID, Line: p.StatLine})
	}

	teamSubjects := make([]Subject, 0, len(teams))
	for _, t := range teams {
		teamSubjects = append(teamSubjects, Subject{
			ID:               t.TeamID,
			Line:             t.StatLine,
			QuarterPoints:    t.QuarterPoints,
			HasQuarterPoints: true,
		})
	}

	var assignments []models.AwardAssignment
	var errs []error
	for _, rule := range rules {
		if rule.Scope != models.ScopeGame {
			continue
		}

		subjects := playerSubjects
		if rule.Team {
			subjects = teamSubjects
		}

		winners, err := evaluateRule(rule, subjects)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, w := range winners {
			assignments = append(assignments, assignment(rule, w, seasonID, gameID, nil))
		}
	}

	return assignments, errs
}

// EvaluateWeek evaluates weekly rules over every player game inside the week
// window. Each player is scored on their single best game for the rule's
// metric — never the sum of the week — so a player with two games competes
// on the better one.
func EvaluateWeek(rules []models.AwardRule, seasonID string, week models.Week, games []models.PlayerGameTotals) ([]models.AwardAssignment, []error) {
	weekStart := week.Start

	var assignments []models.AwardAssignment
	var errs []error
	for _, rule := range rules {
		if rule.Scope != models.ScopeWeekly {
			continue
		}

		best, err := bestGamePerPlayer(rule, games)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		winners := selectWeekly(rule, best)
		for _, w := range winners {
			assignments = append(assignments, assignment(rule, w, seasonID, w.gameID, &weekStart))
		}
	}

	return assignments, errs
}

// bestGamePerPlayer reduces the week's games to each player's single best
// qualifying game for the rule.
func bestGamePerPlayer(rule models.AwardRule, games []models.PlayerGameTotals) (map[string]candidate, error) {
	metric := metricRegistry[rule.Metric]

	best := make(map[string]candidate)
	for _, g := range games {
		s := Subject{ID: g.PlayerID, Line: g.StatLine}

		ok, err := meetsMinVolume(rule, s)
		if err != nil {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
		}
		if !ok {
			continue
		}

		value, err := metric(s)
		if err != nil {
			return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
		}

		c := candidate{subjectID: g.PlayerID, gameID: g.GameID, value: value}
		if rule.TieBreakMetric != "" {
			tb, err := metricRegistry[rule.TieBreakMetric](s)
			if err != nil {
				return nil, &RuleEvaluationError{RuleID: rule.ID, Err: err}
			}
			c.tieBreak = tb
		}

		prev, seen := best[g.PlayerID]
		if !seen || better(rule.Direction, c.value, prev.value) {
			best[g.PlayerID] = c
		}
	}

	return best, nil
}

// selectWeekly ranks the per-player best games with the shared pipeline.
func selectWeekly(rule models.AwardRule, best map[string]candidate) []candidate {
	if len(best) == 0 {
		return nil
	}

	candidates := make([]candidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}

	if !rule.Comparative() {
		var winners []candidate
		for _, c := range candidates {
			if meetsThreshold(rule, c.value) {
				winners = append(winners, c)
			}
		}
		sortCandidates(winners)
		return winners
	}

	return rankCandidates(rule, candidates)
}

// EvaluateSeason evaluates season rules against season totals. Rate rules
// enforce their minimum-volume thresholds before ranking, so a small-sample
// outlier never tops a percentage award.
func EvaluateSeason(rules []models.AwardRule, season models.Season, players []models.PlayerSeasonTotals, teams []models.TeamSeasonTotals) ([]models.AwardAssignment, []error) {
	playerSubjects := make([]Subject, 0, len(players))
	for _, p := range players {
		playerSubjects = append(playerSubjects, Subject{
			ID:             p.PlayerID,
			Line:           p.StatLine,
			GamesPlayed:    p.GamesPlayed,
			HasGamesPlayed: true,
		})
	}

	teamSubjects := make([]Subject, 0, len(teams))
	for _, t := range teams {
		teamSubjects = append(teamSubjects, Subject{
			ID:             t.TeamID,
			Line:           t.StatLine,
			GamesPlayed:    t.GamesPlayed,
			HasGamesPlayed: true,
		})
	}

	var assignments []models.AwardAssignment
	var errs []error
	for _, rule := range rules {
		if rule.Scope != models.ScopeSeason {
			continue
		}

		subjects := playerSubjects
		if rule.Team {
			subjects = teamSubjects
		}

		winners, err := evaluateRule(rule, subjects)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, w := range winners {
			assignments = append(assignments, assignment(rule, w, season.ID, "", nil))
		}
	}

	return assignments, errs
}

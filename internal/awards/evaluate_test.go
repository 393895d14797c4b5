package awards_test

import (
	"testing"
	"time"

	"github.com/courtline/stat-engine/internal/awards"
	"github.com/courtline/stat-engine/pkg/models"
)

func playerGame(playerID, gameID string, line models.StatLine) models.PlayerGameTotals {
	return models.PlayerGameTotals{
		PlayerID: playerID,
		GameID:   gameID,
		TeamID:   "t1",
		StatLine: line,
	}
}

func winners(assignments []models.AwardAssignment, awardID string) []models.AwardAssignment {
	var out []models.AwardAssignment
	for _, a := range assignments {
		if a.AwardID == awardID {
			out = append(out, a)
		}
	}
	return out
}

func TestEvaluateGameThresholdAllQualifiersWin(t *testing.T) {
	rule := models.AwardRule{
		ID:          "game-ten-threes",
		Scope:       models.ScopeGame,
		Category:    models.CategoryCounting,
		Metric:      "fg3_made",
		Direction:   models.DirectionMax,
		Threshold:   floatPtr(10),
		MultiWinner: true,
	}

	players := []models.PlayerGameTotals{
		playerGame("p1", "g1", models.StatLine{FG3Made: 12, FG3Att: 15}),
		playerGame("p2", "g1", models.StatLine{FG3Made: 10, FG3Att: 20}),
		playerGame("p3", "g1", models.StatLine{FG3Made: 11, FG3Att: 11}),
		playerGame("p4", "g1", models.StatLine{FG3Made: 9, FG3Att: 10}),
	}

	assignments, errs := awards.EvaluateGame([]models.AwardRule{rule}, "s1", "g1", players, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "game-ten-threes")
	if len(got) != 3 {
		t.Fatalf("got %d winners, want 3 (every qualifier must be recorded)", len(got))
	}
	for _, a := range got {
		if a.GameID != "g1" || a.SeasonID != "s1" {
			t.Errorf("assignment has wrong period keys: %+v", a)
		}
	}
}

func TestEvaluateGamePerfectGameNeedsVolume(t *testing.T) {
	rule := models.AwardRule{
		ID:              "game-perfect",
		Scope:           models.ScopeGame,
		Category:        models.CategoryCounting,
		Metric:          "shot_misses",
		Direction:       models.DirectionMin,
		Threshold:       floatPtr(0),
		MinVolumeMetric: "shot_att",
		MinVolume:       5,
		MultiWinner:     true,
	}

	players := []models.PlayerGameTotals{
		// 6 for 6 from the field, perfect
		playerGame("p1", "g1", models.StatLine{FG2Made: 4, FG2Att: 4, FG3Made: 2, FG3Att: 2}),
		// perfect but only two attempts, below volume
		playerGame("p2", "g1", models.StatLine{FG2Made: 2, FG2Att: 2}),
		// one miss
		playerGame("p3", "g1", models.StatLine{FG2Made: 5, FG2Att: 6}),
	}

	assignments, errs := awards.EvaluateGame([]models.AwardRule{rule}, "s1", "g1", players, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "game-perfect")
	if len(got) != 1 || got[0].SubjectID != "p1" {
		t.Fatalf("got %+v, want only p1", got)
	}
}

func TestEvaluateGameTeamQuarterRule(t *testing.T) {
	rule := models.AwardRule{
		ID:          "game-team-q4",
		Scope:       models.ScopeGame,
		Category:    models.CategoryQuarter,
		Metric:      "q4_points",
		Direction:   models.DirectionMax,
		Threshold:   floatPtr(30),
		MultiWinner: true,
		Team:        true,
	}

	teams := []models.TeamGameTotals{
		{TeamID: "t1", GameID: "g1", QuarterPoints: []int{20, 18, 25, 32}},
		{TeamID: "t2", GameID: "g1", QuarterPoints: []int{25, 25, 25, 12}},
	}

	assignments, errs := awards.EvaluateGame([]models.AwardRule{rule}, "s1", "g1", nil, teams)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "game-team-q4")
	if len(got) != 1 || got[0].SubjectID != "t1" || got[0].Value != 32 {
		t.Fatalf("got %+v, want t1 with 32", got)
	}
}

func TestEvaluateGameRuleErrorIsolation(t *testing.T) {
	// fouls_per_game needs games played, which game totals cannot supply.
	broken := models.AwardRule{
		ID:          "game-broken",
		Scope:       models.ScopeGame,
		Category:    models.CategoryCounting,
		Metric:      "fouls_per_game",
		Direction:   models.DirectionMax,
		Threshold:   floatPtr(1),
		MultiWinner: true,
	}
	working := models.AwardRule{
		ID:          "game-ten-threes",
		Scope:       models.ScopeGame,
		Category:    models.CategoryCounting,
		Metric:      "fg3_made",
		Direction:   models.DirectionMax,
		Threshold:   floatPtr(10),
		MultiWinner: true,
	}

	players := []models.PlayerGameTotals{
		playerGame("p1", "g1", models.StatLine{FG3Made: 10, FG3Att: 12}),
	}

	assignments, errs := awards.EvaluateGame([]models.AwardRule{broken, working}, "s1", "g1", players, nil)

	if len(errs) != 1 {
		t.Fatalf("expected exactly one rule error, got %v", errs)
	}
	if len(winners(assignments, "game-ten-threes")) != 1 {
		t.Error("working rule was not evaluated after sibling failure")
	}
}

func TestEvaluateWeekBestGameNotSum(t *testing.T) {
	rule := models.AwardRule{
		ID:             "weekly-top-scorer",
		Scope:          models.ScopeWeekly,
		Category:       models.CategoryCounting,
		Metric:         "points",
		Direction:      models.DirectionMax,
		TieBreakMetric: "shot_att",
	}

	week := models.Week{Start: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}

	games := []models.PlayerGameTotals{
		// p1 plays twice: 18 and 12 points. Best single game is 18.
		playerGame("p1", "g1", models.StatLine{FG2Made: 9, FG2Att: 12}),
		playerGame("p1", "g2", models.StatLine{FG2Made: 6, FG2Att: 10}),
		// p2 plays once: 20 points. Must beat p1's 18 even though p1's
		// weekly sum is 30.
		playerGame("p2", "g1", models.StatLine{FG2Made: 10, FG2Att: 14}),
	}

	assignments, errs := awards.EvaluateWeek([]models.AwardRule{rule}, "s1", week, games)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "weekly-top-scorer")
	if len(got) != 1 {
		t.Fatalf("got %d winners, want 1", len(got))
	}
	if got[0].SubjectID != "p2" || got[0].Value != 20 {
		t.Errorf("got %+v, want p2 with 20 (best game, not weekly sum)", got[0])
	}
	if got[0].WeekStart == nil || !got[0].WeekStart.Equal(week.Start) {
		t.Errorf("assignment missing week start: %+v", got[0])
	}
	if got[0].GameID != "g1" {
		t.Errorf("assignment should reference the best game, got %q", got[0].GameID)
	}
}

func TestEvaluateWeekTieBreakFewerAttempts(t *testing.T) {
	rule := models.AwardRule{
		ID:             "weekly-top-scorer",
		Scope:          models.ScopeWeekly,
		Category:       models.CategoryCounting,
		Metric:         "points",
		Direction:      models.DirectionMax,
		TieBreakMetric: "shot_att",
	}

	week := models.Week{Start: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}

	games := []models.PlayerGameTotals{
		// Both score 20; p1 needed 14 attempts, p2 only 11.
		playerGame("p1", "g1", models.StatLine{FG2Made: 10, FG2Att: 14}),
		playerGame("p2", "g1", models.StatLine{FG2Made: 10, FG2Att: 11}),
	}

	assignments, errs := awards.EvaluateWeek([]models.AwardRule{rule}, "s1", week, games)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "weekly-top-scorer")
	if len(got) != 1 || got[0].SubjectID != "p2" {
		t.Fatalf("got %+v, want p2 by fewer attempts", got)
	}
}

func TestEvaluateWeekMultiWinnerTie(t *testing.T) {
	rule := models.AwardRule{
		ID:          "weekly-top-scorer-shared",
		Scope:       models.ScopeWeekly,
		Category:    models.CategoryCounting,
		Metric:      "points",
		Direction:   models.DirectionMax,
		MultiWinner: true,
	}

	week := models.Week{Start: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}

	games := []models.PlayerGameTotals{
		playerGame("p1", "g1", models.StatLine{FG2Made: 10, FG2Att: 14}),
		playerGame("p2", "g1", models.StatLine{FG2Made: 10, FG2Att: 11}),
		playerGame("p3", "g1", models.StatLine{FG2Made: 9, FG2Att: 11}),
	}

	assignments, errs := awards.EvaluateWeek([]models.AwardRule{rule}, "s1", week, games)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "weekly-top-scorer-shared")
	if len(got) != 2 {
		t.Fatalf("got %d winners, want both tied players", len(got))
	}
}

func TestEvaluateSeasonRateMinVolume(t *testing.T) {
	rule := models.AwardRule{
		ID:              "season-ft-pct",
		Scope:           models.ScopeSeason,
		Category:        models.CategoryRate,
		Metric:          "ft_pct",
		Direction:       models.DirectionMax,
		MinVolumeMetric: "ft_att",
		MinVolume:       25,
		TieBreakMetric:  "ft_att",
	}

	season := models.Season{ID: "s1"}
	players := []models.PlayerSeasonTotals{
		// 100% on 4 attempts: below volume, must be excluded even though
		// the raw percentage ranks first.
		{PlayerID: "p1", SeasonID: "s1", StatLine: models.StatLine{FTMade: 4, FTAtt: 4}, GamesPlayed: 10},
		// 90% on 30 attempts: the legitimate winner.
		{PlayerID: "p2", SeasonID: "s1", StatLine: models.StatLine{FTMade: 27, FTAtt: 30}, GamesPlayed: 10},
		// 80% on 40 attempts.
		{PlayerID: "p3", SeasonID: "s1", StatLine: models.StatLine{FTMade: 32, FTAtt: 40}, GamesPlayed: 10},
	}

	assignments, errs := awards.EvaluateSeason([]models.AwardRule{rule}, season, players, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "season-ft-pct")
	if len(got) != 1 || got[0].SubjectID != "p2" {
		t.Fatalf("got %+v, want p2 (small sample excluded)", got)
	}
	if got[0].GameID != "" || got[0].WeekStart != nil {
		t.Errorf("season assignment carries game/week keys: %+v", got[0])
	}
}

func TestEvaluateSeasonFoulsPerGame(t *testing.T) {
	rule := models.AwardRule{
		ID:              "season-enforcer",
		Scope:           models.ScopeSeason,
		Category:        models.CategoryRate,
		Metric:          "fouls_per_game",
		Direction:       models.DirectionMax,
		MinVolumeMetric: "fouls",
		MinVolume:       10,
		TieBreakMetric:  "fouls",
	}

	season := models.Season{ID: "s1"}
	players := []models.PlayerSeasonTotals{
		{PlayerID: "p1", SeasonID: "s1", StatLine: models.StatLine{Fouls: 30}, GamesPlayed: 10}, // 3.0
		{PlayerID: "p2", SeasonID: "s1", StatLine: models.StatLine{Fouls: 28}, GamesPlayed: 7},  // 4.0
		{PlayerID: "p3", SeasonID: "s1", StatLine: models.StatLine{Fouls: 8}, GamesPlayed: 2},   // below volume
	}

	assignments, errs := awards.EvaluateSeason([]models.AwardRule{rule}, season, players, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := winners(assignments, "season-enforcer")
	if len(got) != 1 || got[0].SubjectID != "p2" || got[0].Value != 4.0 {
		t.Fatalf("got %+v, want p2 at 4.0 fouls per game", got)
	}
}

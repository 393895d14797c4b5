// Package stats rolls quarter records into game totals and game totals into
// season totals. All aggregation is a pure sum over in-memory collections;
// the quarter count per game is driven by the data (4 regulation quarters,
// up to 6 with overtime), never hard-coded.
package stats

import (
	"fmt"

	"github.com/courtline/stat-engine/pkg/models"
)

// AggregationInputError reports inconsistent upstream data: duplicate or
// out-of-range quarter indices, or a made count exceeding its attempted
// count. These indicate corrupt input that must be fixed at the source, so
// they always propagate to the caller.
type AggregationInputError struct {
	Reason string
}

func (e *AggregationInputError) Error() string {
	return "aggregation input: " + e.Reason
}

// AggregateGame sums an ordered list of quarter records into one player's
// game totals. An empty list yields all-zero totals, not an error; a game
// tied after regulation carries a 5th record (OT1), tied after OT1 a 6th
// (OT2).
func AggregateGame(playerID, gameID, teamID string, records []models.QuarterRecord) (models.PlayerGameTotals, error) {
	totals := models.PlayerGameTotals{
		PlayerID: playerID,
		GameID:   gameID,
		TeamID:   teamID,
	}

	seen := make(map[int]bool, len(records))
	for _, rec := range records {
		if rec.Quarter < models.FirstQuarter || rec.Quarter > models.MaxQuarter {
			return models.PlayerGameTotals{}, &AggregationInputError{
				Reason: fmt.Sprintf("quarter index %d out of range 1-%d", rec.Quarter, models.MaxQuarter),
			}
		}
		if seen[rec.Quarter] {
			return models.PlayerGameTotals{}, &AggregationInputError{
				Reason: fmt.Sprintf("duplicate quarter index %d", rec.Quarter),
			}
		}
		seen[rec.Quarter] = true

		if err := checkCounts(rec); err != nil {
			return models.PlayerGameTotals{}, err
		}

		totals.AddQuarter(rec)
		totals.Quarters = append(totals.Quarters, rec)
	}

	// Quarters must run 1..n with no gaps: a missing index means a quarter
	// was dropped somewhere upstream.
	for q := models.FirstQuarter; q <= len(records); q++ {
		if !seen[q] {
			return models.PlayerGameTotals{}, &AggregationInputError{
				Reason: fmt.Sprintf("missing quarter index %d", q),
			}
		}
	}

	return totals, nil
}

// checkCounts enforces made <= attempted per category.
func checkCounts(rec models.QuarterRecord) error {
	type category struct {
		name      string
		made, att int
	}
	for _, c := range []category{
		{"fg2", rec.FG2Made, rec.FG2Att},
		{"fg3", rec.FG3Made, rec.FG3Att},
		{"ft", rec.FTMade, rec.FTAtt},
	} {
		if c.made > c.att {
			return &AggregationInputError{
				Reason: fmt.Sprintf("quarter %d: %s made %d exceeds attempted %d", rec.Quarter, c.name, c.made, c.att),
			}
		}
	}
	return nil
}

// AggregateTeam sums player game totals across a roster into team totals.
// The sum is commutative, so input order does not matter; the roster-to-team
// mapping is the caller's. Per-quarter team points are derived from each
// player's quarter breakdown.
func AggregateTeam(teamID, gameID string, players []models.PlayerGameTotals) models.TeamGameTotals {
	team := models.TeamGameTotals{
		TeamID: teamID,
		GameID: gameID,
	}

	quarters := 0
	for _, p := range players {
		if len(p.Quarters) > quarters {
			quarters = len(p.Quarters)
		}
	}
	team.QuarterPoints = make([]int, quarters)

	for _, p := range players {
		team.Add(p.StatLine)
		for _, q := range p.Quarters {
			team.QuarterPoints[q.Quarter-1] += q.Points()
		}
	}

	return team
}

// AggregateSeason sums one player's game totals across a season. Games
// played is counted per input game, not inferred from totals, so a
// zero-attempt game still increments it.
func AggregateSeason(playerID, seasonID string, games []models.PlayerGameTotals) models.PlayerSeasonTotals {
	season := models.PlayerSeasonTotals{
		PlayerID: playerID,
		SeasonID: seasonID,
	}

	for _, g := range games {
		season.Add(g.StatLine)
		season.GamesPlayed++
	}

	return season
}

// AggregateTeamSeason sums one team's game totals across a season.
func AggregateTeamSeason(teamID, seasonID string, games []models.TeamGameTotals) models.TeamSeasonTotals {
	season := models.TeamSeasonTotals{
		TeamID:   teamID,
		SeasonID: seasonID,
	}

	for _, g := range games {
		season.Add(g.StatLine)
		season.GamesPlayed++
	}

	return season
}

package awards

import (
	"fmt"
	"sort"

	"github.com/courtline/stat-engine/pkg/hoopmath"
	"github.com/courtline/stat-engine/pkg/models"
)

// Subject is the uniform stat view a metric reads, built from whichever
// totals type the rule's scope targets. Fields a scope cannot supply are
// left at their zero value and flagged unavailable.
type Subject struct {
	ID   string
	Line models.StatLine

	GamesPlayed    int
	HasGamesPlayed bool // season scope only

	QuarterPoints    []int
	HasQuarterPoints bool // team game scope only
}

// metricFn extracts one ranked value from a subject. A subject that cannot
// supply a field the metric needs returns an error, which fails that single
// rule's evaluation without touching sibling rules.
type metricFn func(s Subject) (float64, error)

// metricRegistry maps catalog metric keys to extractors. Adding an award on
// a new stat means adding a row here and a rule in the catalog, not new
// control flow in the evaluator.
var metricRegistry = map[string]metricFn{
	"points":     counting(func(l models.StatLine) int { return l.Points() }),
	"fg2_made":   counting(func(l models.StatLine) int { return l.FG2Made }),
	"fg3_made":   counting(func(l models.StatLine) int { return l.FG3Made }),
	"ft_made":    counting(func(l models.StatLine) int { return l.FTMade }),
	"ft_att":     counting(func(l models.StatLine) int { return l.FTAtt }),
	"fg_att":     counting(func(l models.StatLine) int { return l.FGAtt() }),
	"fouls":      counting(func(l models.StatLine) int { return l.Fouls }),
	"shot_att":   counting(func(l models.StatLine) int { return l.FGAtt() + l.FTAtt }),
	"shot_misses": counting(func(l models.StatLine) int {
		return (l.FGAtt() - l.FGMade()) + (l.FTAtt - l.FTMade)
	}),

	"fg_pct": func(s Subject) (float64, error) {
		return hoopmath.FGPct(s.Line.FGMade(), s.Line.FGAtt()), nil
	},
	"ft_pct": func(s Subject) (float64, error) {
		return hoopmath.FGPct(s.Line.FTMade, s.Line.FTAtt), nil
	},
	"fg3_pct": func(s Subject) (float64, error) {
		return hoopmath.FGPct(s.Line.FG3Made, s.Line.FG3Att), nil
	},
	"efg_pct": func(s Subject) (float64, error) {
		return hoopmath.EFGPct(s.Line.FG2Made, s.Line.FG3Made, s.Line.FG2Att, s.Line.FG3Att), nil
	},
	"ts_pct": func(s Subject) (float64, error) {
		return hoopmath.TSPct(s.Line.Points(), s.Line.FGAtt(), s.Line.FTAtt), nil
	},

	"points_per_game": perGame(func(l models.StatLine) int { return l.Points() }),
	"fouls_per_game":  perGame(func(l models.StatLine) int { return l.Fouls }),

	"q4_points": quarterPoints(4),
}

func counting(f func(models.StatLine) int) metricFn {
	return func(s Subject) (float64, error) {
		return float64(f(s.Line)), nil
	}
}

func perGame(f func(models.StatLine) int) metricFn {
	return func(s Subject) (float64, error) {
		if !s.HasGamesPlayed {
			return 0, fmt.Errorf("games played not available for subject %s", s.ID)
		}
		return hoopmath.PerGame(f(s.Line), s.GamesPlayed), nil
	}
}

func quarterPoints(quarter int) metricFn {
	return func(s Subject) (float64, error) {
		if !s.HasQuarterPoints {
			return 0, fmt.Errorf("quarter points not available for subject %s", s.ID)
		}
		if quarter > len(s.QuarterPoints) {
			// Game ended before this quarter exists in the data.
			return 0, nil
		}
		return float64(s.QuarterPoints[quarter-1]), nil
	}
}

// knownMetric reports whether a metric key is registered. Used by catalog
// validation so a bad key fails at load time, not during evaluation.
func knownMetric(key string) bool {
	_, ok := metricRegistry[key]
	return ok
}

// metricKeys returns all registered keys, sorted, for error messages.
func metricKeys() []string {
	keys := make([]string, 0, len(metricRegistry))
	for k := range metricRegistry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

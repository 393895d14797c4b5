// Package hoopmath provides pure shooting-percentage and efficiency
// calculations over aggregated stat lines. All functions are deterministic,
// allocate nothing, and are safe for concurrent use.
package hoopmath

// Percentages are returned on a 0-100 scale. Internal math runs on 0-1 and
// scales exactly once here, so callers must never rescale.
const pctScale = 100.0

// FTAWeight is the standard possession weighting for free-throw attempts in
// true shooting. This constant is contract, not an approximation.
const FTAWeight = 0.44

// ThreeBonus is the extra credit a made three earns over a made two in
// effective field-goal percentage.
const ThreeBonus = 0.5

// FGPct returns made/attempted as a 0-100 percentage.
//
// A zero denominator returns 0.0 rather than an error: zero-volume players
// appear in the same display tables as everyone else.
func FGPct(made, attempted int) float64 {
	if attempted == 0 {
		return 0.0
	}
	return float64(made) / float64(attempted) * pctScale
}

// EFGPct returns effective field-goal percentage, which credits a made three
// with half an extra make:
//
//	eFG% = (FGM + 0.5*3PM) / FGA * 100
//
// Example: 10 FGA, 4 FGM of which 2 are threes -> (4 + 0.5*2)/10 = 50.0
func EFGPct(fg2Made, fg3Made, fg2Att, fg3Att int) float64 {
	fga := fg2Att + fg3Att
	if fga == 0 {
		return 0.0
	}
	fgm := fg2Made + fg3Made
	return (float64(fgm) + ThreeBonus*float64(fg3Made)) / float64(fga) * pctScale
}

// TSPct returns true-shooting percentage, which folds free throws into a
// single scoring-efficiency number:
//
//	TS% = Points / (2 * (FGA + 0.44*FTA)) * 100
func TSPct(points, fga, fta int) float64 {
	denom := 2.0 * (float64(fga) + FTAWeight*float64(fta))
	if denom == 0 {
		return 0.0
	}
	return float64(points) / denom * pctScale
}

// PerGame returns a per-game average. Zero games played returns 0.0.
func PerGame(total, gamesPlayed int) float64 {
	if gamesPlayed == 0 {
		return 0.0
	}
	return float64(total) / float64(gamesPlayed)
}

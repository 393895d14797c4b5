package models

// StatLine is the common shot-count shape shared by game and season totals.
// All aggregation is an elementwise sum of these fields.
type StatLine struct {
	FG2Made int `json:"fg2_made"`
	FG2Att  int `json:"fg2_att"`
	FG3Made int `json:"fg3_made"`
	FG3Att  int `json:"fg3_att"`
	FTMade  int `json:"ft_made"`
	FTAtt   int `json:"ft_att"`
	Fouls   int `json:"fouls"`
}

// Add accumulates another stat line into this one.
func (s *StatLine) Add(other StatLine) {
	s.FG2Made += other.FG2Made
	s.FG2Att += other.FG2Att
	s.FG3Made += other.FG3Made
	s.FG3Att += other.FG3Att
	s.FTMade += other.FTMade
	s.FTAtt += other.FTAtt
	s.Fouls += other.Fouls
}

// AddQuarter accumulates a quarter record into this line.
func (s *StatLine) AddQuarter(q QuarterRecord) {
	s.Add(StatLine{
		FG2Made: q.FG2Made,
		FG2Att:  q.FG2Att,
		FG3Made: q.FG3Made,
		FG3Att:  q.FG3Att,
		FTMade:  q.FTMade,
		FTAtt:   q.FTAtt,
		Fouls:   q.Fouls,
	})
}

// Points returns total points for the line.
func (s StatLine) Points() int {
	return s.FTMade + 2*s.FG2Made + 3*s.FG3Made
}

// FGMade returns combined two- and three-point makes.
func (s StatLine) FGMade() int {
	return s.FG2Made + s.FG3Made
}

// FGAtt returns combined two- and three-point attempts.
func (s StatLine) FGAtt() int {
	return s.FG2Att + s.FG3Att
}

// PlayerGameTotals is one player's full stat line for one game, with the
// per-quarter breakdown it was summed from. Quarters has length 4 for
// regulation-only games and up to 6 with overtime.
type PlayerGameTotals struct {
	PlayerID string          `json:"player_id"`
	GameID   string          `json:"game_id"`
	TeamID   string          `json:"team_id"`
	StatLine
	Quarters []QuarterRecord `json:"quarters"`
}

// TeamGameTotals is the roster sum for one team in one game, plus
// quarter-by-quarter team points for the scoreboard and quarter-stat awards.
type TeamGameTotals struct {
	TeamID string `json:"team_id"`
	GameID string `json:"game_id"`
	StatLine
	QuarterPoints []int `json:"quarter_points"` // indexed by quarter order, len 4-6
}

// PlayerSeasonTotals is one player's sum across every game in a season.
// GamesPlayed is a tracked count, not inferred from totals, because a
// zero-attempt game still counts as played.
type PlayerSeasonTotals struct {
	PlayerID string `json:"player_id"`
	SeasonID string `json:"season_id"`
	StatLine
	GamesPlayed int `json:"games_played"`
}

// TeamSeasonTotals is one team's sum across every game in a season.
type TeamSeasonTotals struct {
	TeamID   string `json:"team_id"`
	SeasonID string `json:"season_id"`
	StatLine
	GamesPlayed int `json:"games_played"`
}

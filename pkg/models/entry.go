package models

import "time"

// StatEntry is one player's validated quarter notation for one game, as
// produced by the external import/editing layer. Quarters is ordered,
// index 0 = Q1; entries 5 and 6 are overtime periods.
type StatEntry struct {
	PlayerID string    `json:"player_id"`
	TeamID   string    `json:"team_id"`
	GameID   string    `json:"game_id"`
	SeasonID string    `json:"season_id"`
	GameDate time.Time `json:"game_date"`
	Quarters []string  `json:"quarters"`
}

// TotalsUpdated is published after a stat entry has been aggregated and
// persisted, so downstream consumers can refresh their views.
type TotalsUpdated struct {
	PlayerID  string    `json:"player_id"`
	GameID    string    `json:"game_id"`
	SeasonID  string    `json:"season_id"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

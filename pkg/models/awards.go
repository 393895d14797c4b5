package models

import "time"

// AwardScope selects which totals source and grouping key a rule reads.
type AwardScope string

const (
	ScopeGame   AwardScope = "game"   // single game's player totals
	ScopeWeekly AwardScope = "weekly" // best single game inside a week window
	ScopeSeason AwardScope = "season" // season totals
)

// AwardCategory describes the kind of stat a rule ranks on.
type AwardCategory string

const (
	CategoryCounting AwardCategory = "counting" // raw totals (points, threes made)
	CategoryRate     AwardCategory = "rate"     // percentages and per-game averages
	CategoryQuarter  AwardCategory = "quarter"  // single-quarter team stats
)

// AwardDirection says whether the best value is the highest or the lowest.
type AwardDirection string

const (
	DirectionMax AwardDirection = "max"
	DirectionMin AwardDirection = "min"
)

// AwardRule is one entry in the static, versioned award catalog. Rules are
// fully resolved before evaluation begins; the engine never mutates them.
type AwardRule struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Scope     AwardScope     `json:"scope"`
	Category  AwardCategory  `json:"category"`
	Metric    string         `json:"metric"` // key into the metric registry
	Direction AwardDirection `json:"direction"`

	// Threshold is an absolute qualifying bar for non-comparative rules
	// (e.g. 10 threes in a game). Every player meeting it wins.
	Threshold *float64 `json:"threshold,omitempty"`

	// MinVolume excludes small samples from rate rankings (e.g. minimum
	// free-throw attempts for a season FT% award). Required for rate rules.
	MinVolumeMetric string  `json:"min_volume_metric,omitempty"`
	MinVolume       float64 `json:"min_volume,omitempty"`

	// TieBreakMetric decides single-winner ties (e.g. fewer attempts).
	// Ignored when MultiWinner is set: all players at the top value win.
	TieBreakMetric string `json:"tie_break_metric,omitempty"`
	MultiWinner    bool   `json:"multi_winner"`

	// Team marks rules evaluated against team totals instead of players.
	Team bool `json:"team,omitempty"`
}

// Comparative reports whether the rule ranks candidates against each other
// rather than against an absolute threshold.
func (r AwardRule) Comparative() bool {
	return r.Threshold == nil
}

// AwardAssignment is one awarded winner for one scope period. Unique per
// (award, subject, game|week|season) so recomputation can replace the exact
// prior set instead of appending.
type AwardAssignment struct {
	ID        string     `json:"id"`
	AwardID   string     `json:"award_id"`
	SubjectID string     `json:"subject_id"` // player or team ID per rule
	SeasonID  string     `json:"season_id"`
	GameID    string     `json:"game_id,omitempty"`    // set for game scope
	WeekStart *time.Time `json:"week_start,omitempty"` // set for weekly scope
	Value     float64    `json:"value"`
}

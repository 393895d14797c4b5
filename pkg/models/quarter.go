package models

import "fmt"

// Quarter index bounds. Indexes 1-4 are regulation, 5 is OT1, 6 is OT2.
// No further overtime is representable.
const (
	FirstQuarter   = 1
	LastRegulation = 4
	MaxQuarter     = 6
)

// QuarterRecord holds one player's parsed shot counts for a single quarter.
// Created once per parse call and immutable afterward; made never exceeds
// attempted in any category.
type QuarterRecord struct {
	Quarter int `json:"quarter"` // 1-4 regulation, 5-6 overtime
	FG2Made int `json:"fg2_made"`
	FG2Att  int `json:"fg2_att"`
	FG3Made int `json:"fg3_made"`
	FG3Att  int `json:"fg3_att"`
	FTMade  int `json:"ft_made"`
	FTAtt   int `json:"ft_att"`
	Fouls   int `json:"fouls"`
}

// Points returns the points scored in this quarter.
func (q QuarterRecord) Points() int {
	return q.FTMade + 2*q.FG2Made + 3*q.FG3Made
}

// QuarterLabel returns the display label for a quarter index.
func QuarterLabel(quarter int) string {
	switch quarter {
	case 1:
		return "Q1"
	case 2:
		return "Q2"
	case 3:
		return "Q3"
	case 4:
		return "Q4"
	default:
		if quarter > LastRegulation {
			return fmt.Sprintf("OT%d", quarter-LastRegulation)
		}
		return fmt.Sprintf("Q%d", quarter)
	}
}

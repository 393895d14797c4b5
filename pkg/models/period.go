package models

import "time"

// Season identifies one season's boundaries. Passed explicitly into
// aggregation and award calls; the engine never resolves the current season
// from ambient state.
type Season struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether a game date falls inside the season.
func (s Season) Contains(t time.Time) bool {
	return !t.Before(s.Start) && !t.After(s.End)
}

// Week is a seven-day award window anchored at a configured start day.
// The engine accepts the start date from the caller; it does not compute
// calendar boundaries itself.
type Week struct {
	Start time.Time `json:"start"` // midnight on the configured week start day
}

// End returns the exclusive end of the window.
func (w Week) End() time.Time {
	return w.Start.AddDate(0, 0, 7)
}

// Contains reports whether a game date falls inside the window.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End())
}

// WeekOf returns the week window containing t, given the configured start
// day of the week.
func WeekOf(t time.Time, startDay time.Weekday) Week {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) - int(startDay) + 7) % 7
	return Week{Start: day.AddDate(0, 0, -offset)}
}

package models_test

import (
	"testing"
	"time"

	"github.com/courtline/stat-engine/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		day       time.Time
		startDay  time.Weekday
		wantStart time.Time
	}{
		{"monday maps to itself", date(2026, 1, 5), time.Monday, date(2026, 1, 5)},
		{"sunday maps back to prior monday", date(2026, 1, 11), time.Monday, date(2026, 1, 5)},
		{"midweek", date(2026, 1, 7), time.Monday, date(2026, 1, 5)},
		{"sunday start day", date(2026, 1, 7), time.Sunday, date(2026, 1, 4)},
		{"saturday start day wraps", date(2026, 1, 5), time.Saturday, date(2026, 1, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.WeekOf(tt.day, tt.startDay)
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("WeekOf(%s, %s).Start = %s, want %s",
					tt.day.Format("2006-01-02"), tt.startDay,
					got.Start.Format("2006-01-02"), tt.wantStart.Format("2006-01-02"))
			}
		})
	}
}

func TestWeekContains(t *testing.T) {
	week := models.Week{Start: date(2026, 1, 5)}

	if !week.Contains(date(2026, 1, 5)) {
		t.Error("start day must be inside the window")
	}
	if !week.Contains(date(2026, 1, 11)) {
		t.Error("seventh day must be inside the window")
	}
	if week.Contains(date(2026, 1, 12)) {
		t.Error("window end is exclusive")
	}
	if week.Contains(date(2026, 1, 4)) {
		t.Error("day before start must be outside the window")
	}
}

func TestSeasonContains(t *testing.T) {
	season := models.Season{ID: "s1", Start: date(2025, 11, 1), End: date(2026, 3, 31)}

	if !season.Contains(date(2025, 11, 1)) || !season.Contains(date(2026, 3, 31)) {
		t.Error("season boundaries are inclusive")
	}
	if season.Contains(date(2026, 4, 1)) {
		t.Error("day after season end must be outside")
	}
}

func TestQuarterLabel(t *testing.T) {
	tests := []struct {
		quarter int
		want    string
	}{
		{1, "Q1"}, {4, "Q4"}, {5, "OT1"}, {6, "OT2"},
	}
	for _, tt := range tests {
		if got := models.QuarterLabel(tt.quarter); got != tt.want {
			t.Errorf("QuarterLabel(%d) = %q, want %q", tt.quarter, got, tt.want)
		}
	}
}

package hoopmath_test

import (
	"math"
	"testing"

	"github.com/courtline/stat-engine/pkg/hoopmath"
)

func TestFGPct(t *testing.T) {
	tests := []struct {
		name      string
		made      int
		attempted int
		want      float64
	}{
		{"zero attempts returns sentinel", 0, 0, 0.0},
		{"half", 5, 10, 50.0},
		{"perfect", 10, 10, 100.0},
		{"zero makes", 0, 8, 0.0},
		{"one of three", 1, 3, 33.333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hoopmath.FGPct(tt.made, tt.attempted)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("FGPct(%d, %d) = %f, want %f", tt.made, tt.attempted, got, tt.want)
			}
		})
	}
}

func TestEFGPct(t *testing.T) {
	tests := []struct {
		name                   string
		fg2m, fg3m, fg2a, fg3a int
		want                   float64
	}{
		// 10 FGA, 4 FGM of which 2 are threes -> (4 + 0.5*2)/10 = 50.0
		{"worked example", 2, 2, 6, 4, 50.0},
		{"no attempts", 0, 0, 0, 0, 0.0},
		{"twos only matches raw fg pct", 4, 0, 8, 0, 50.0},
		{"threes only", 0, 4, 0, 8, 75.0},
		{"perfect from deep", 0, 5, 0, 5, 150.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hoopmath.EFGPct(tt.fg2m, tt.fg3m, tt.fg2a, tt.fg3a)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("EFGPct(%d, %d, %d, %d) = %f, want %f",
					tt.fg2m, tt.fg3m, tt.fg2a, tt.fg3a, got, tt.want)
			}
		})
	}
}

func TestTSPct(t *testing.T) {
	tests := []struct {
		name             string
		points, fga, fta int
		want             float64
	}{
		// 25 / (2 * (20 + 0.44*10)) = 25 / 48.8
		{"worked example", 25, 20, 10, 51.229508},
		{"no volume", 0, 0, 0, 0.0},
		{"free throws only", 8, 0, 10, 90.909090},
		{"field goals only", 20, 20, 0, 50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hoopmath.TSPct(tt.points, tt.fga, tt.fta)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("TSPct(%d, %d, %d) = %f, want %f", tt.points, tt.fga, tt.fta, got, tt.want)
			}
		})
	}
}

func TestPerGame(t *testing.T) {
	tests := []struct {
		name         string
		total, games int
		want         float64
	}{
		{"zero games returns sentinel", 100, 0, 0.0},
		{"average", 100, 4, 25.0},
		{"fractional", 10, 3, 3.333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hoopmath.PerGame(tt.total, tt.games)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("PerGame(%d, %d) = %f, want %f", tt.total, tt.games, got, tt.want)
			}
		})
	}
}

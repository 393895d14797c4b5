package notation_test

import (
	"errors"
	"testing"

	"github.com/courtline/stat-engine/internal/notation"
	"github.com/courtline/stat-engine/pkg/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.QuarterRecord
	}{
		{
			name:  "empty quarter",
			input: "",
			want:  models.QuarterRecord{Quarter: 1},
		},
		{
			name:  "twos and free throws",
			input: "22-1x",
			want: models.QuarterRecord{
				Quarter: 1,
				FG2Made: 2, FG2Att: 3,
				FTMade: 1, FTAtt: 2,
			},
		},
		{
			name:  "three miss and a two",
			input: "3/2",
			want: models.QuarterRecord{
				Quarter: 1,
				FG3Made: 1, FG3Att: 2,
				FG2Made: 1, FG2Att: 1,
			},
		},
		{
			name:  "all token types",
			input: "1x2-3/f",
			want: models.QuarterRecord{
				Quarter: 1,
				FTMade:  1, FTAtt: 2,
				FG2Made: 1, FG2Att: 2,
				FG3Made: 1, FG3Att: 2,
				Fouls: 1,
			},
		},
		{
			name:  "missed everything",
			input: "x-/",
			want: models.QuarterRecord{
				Quarter: 1,
				FTAtt:   1, FG2Att: 1, FG3Att: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := notation.Parse(1, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePoints(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"22-1x", 5},
		{"3/2", 5},
		{"", 0},
		{"333", 9},
		{"111", 3},
	}

	for _, tt := range tests {
		rec, err := notation.Parse(1, tt.input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got := rec.Points(); got != tt.want {
			t.Errorf("Parse(%q).Points() = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseMadeNeverExceedsAttempted(t *testing.T) {
	inputs := []string{"", "1", "x", "2", "-", "3", "/", "22-1x", "3/2", "1x2-3/f", "123x-/"}

	for _, input := range inputs {
		rec, err := notation.Parse(1, input)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", input, err)
		}
		if rec.FG2Made > rec.FG2Att || rec.FG3Made > rec.FG3Att || rec.FTMade > rec.FTAtt {
			t.Errorf("Parse(%q) = %+v: made exceeds attempted", input, rec)
		}
	}
}

func TestParseInvalidToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantChar rune
		wantPos  int
	}{
		{"unknown letter", "22q1", 'q', 2},
		{"digit outside legend", "4", '4', 0},
		{"space", "2 2", ' ', 1},
		{"trailing bad token", "333!", '!', 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := notation.Parse(1, tt.input)
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}

			var notationErr *notation.NotationError
			if !errors.As(err, &notationErr) {
				t.Fatalf("expected NotationError, got %T", err)
			}
			if notationErr.Char != tt.wantChar || notationErr.Pos != tt.wantPos {
				t.Errorf("got char %q at %d, want %q at %d",
					notationErr.Char, notationErr.Pos, tt.wantChar, tt.wantPos)
			}
		})
	}
}

func TestParseGame(t *testing.T) {
	records, err := notation.ParseGame([]string{"22", "", "3/", "1x", "2", "-"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 6 {
		t.Fatalf("got %d records, want 6", len(records))
	}
	for i, rec := range records {
		if rec.Quarter != i+1 {
			t.Errorf("record %d has quarter %d, want %d", i, rec.Quarter, i+1)
		}
	}
}

func TestParseGameTooManyQuarters(t *testing.T) {
	_, err := notation.ParseGame([]string{"", "", "", "", "", "", ""})
	if err == nil {
		t.Fatal("expected error for seven quarters")
	}
}

func TestParseGameBadQuarterReported(t *testing.T) {
	_, err := notation.ParseGame([]string{"22", "3z"})
	if err == nil {
		t.Fatal("expected error")
	}

	var notationErr *notation.NotationError
	if !errors.As(err, &notationErr) {
		t.Fatalf("expected wrapped NotationError, got %T", err)
	}
}

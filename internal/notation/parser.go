// Package notation decodes the condensed per-quarter shot strings used by
// the stat-entry layer into quarter records.
//
// Legend:
//
//	1  made free throw
//	x  missed free throw
//	2  made two-point shot
//	-  missed two-point shot
//	3  made three-point shot
//	/  missed three-point shot
//	f  personal foul
//
// An empty string is a valid quarter with zero attempts. Any character
// outside the legend is a hard parse error, never a silent skip.
package notation

import (
	"fmt"

	"github.com/courtline/stat-engine/pkg/models"
)

// NotationError reports an unrecognized token and its position in the
// quarter string. Parsing stops at the first bad token.
type NotationError struct {
	Char rune
	Pos  int
}

func (e *NotationError) Error() string {
	return fmt.Sprintf("invalid shot notation %q at position %d", e.Char, e.Pos)
}

// Parse decodes one quarter's shot string into a QuarterRecord with the
// given quarter index. A made token increments both made and attempted for
// its category; a missed token increments only attempted. Pure and safe to
// call concurrently.
func Parse(quarter int, s string) (models.QuarterRecord, error) {
	rec := models.QuarterRecord{Quarter: quarter}

	for i, c := range s {
		switch c {
		case '1':
			rec.FTMade++
			rec.FTAtt++
		case 'x':
			rec.FTAtt++
		case '2':
			rec.FG2Made++
			rec.FG2Att++
		case '-':
			rec.FG2Att++
		case '3':
			rec.FG3Made++
			rec.FG3Att++
		case '/':
			rec.FG3Att++
		case 'f':
			rec.Fouls++
		default:
			return models.QuarterRecord{}, &NotationError{Char: c, Pos: i}
		}
	}

	return rec, nil
}

// ParseGame decodes an ordered list of quarter strings for one player in one
// game. The first four entries are regulation quarters; a fifth and sixth
// are overtime. More than six quarters is not representable.
func ParseGame(quarters []string) ([]models.QuarterRecord, error) {
	if len(quarters) > models.MaxQuarter {
		return nil, fmt.Errorf("game has %d quarters, maximum is %d", len(quarters), models.MaxQuarter)
	}

	records := make([]models.QuarterRecord, 0, len(quarters))
	for i, s := range quarters {
		rec, err := Parse(i+1, s)
		if err != nil {
			return nil, fmt.Errorf("quarter %s: %w", models.QuarterLabel(i+1), err)
		}
		records = append(records, rec)
	}

	return records, nil
}

package plan

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// DateSpan is a single whole-day span; End is always Start plus one day.
type DateSpan struct {
	Start civil.Date
	End   civil.Date
}

// DayOf returns the span covering d.
func DayOf(d civil.Date) DateSpan {
	return DateSpan{Start: d, End: d.AddDays(1)}
}

// Realign assigns dates to count ordered events so that the event at
// anchorIndex starts on anchorDate and every other event keeps its distance
// in days from it.
func Realign(count, anchorIndex int, anchorDate civil.Date) ([]DateSpan, error) {
	if count <= 0 {
		return nil, ErrNoEvents
	}
	if anchorIndex < 0 || anchorIndex >= count {
		return nil, fmt.Errorf("anchor index %d out of range [0, %d)", anchorIndex, count)
	}
	if !anchorDate.IsValid() {
		return nil, fmt.Errorf("invalid anchor date %v", anchorDate)
	}

	spans := make([]DateSpan, count)
	for i := range spans {
		spans[i] = DayOf(anchorDate.AddDays(i - anchorIndex))
	}
	return spans, nil
}

// Shift moves date by the number of days between from and to.
func Shift(date, from, to civil.Date) civil.Date {
	return date.AddDays(to.DaysSince(from))
}

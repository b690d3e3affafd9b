package plan

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// ErrNoEvents is returned when a source yields no events at all.
var ErrNoEvents = errors.New("no events found")

// LoadError wraps any failure that aborted a load, together with the source
// that was being loaded.
type LoadError struct {
	Kind   string // "file" or "calendar"
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v (%s: %s)", e.Err, e.Kind, e.Source)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ColumnMapConflictError reports a column mapping that would either map two
// source columns onto one target or silently overwrite an untouched column.
type ColumnMapConflictError struct {
	From, To string
	Existing bool // true when To is an existing, non-remapped column
}

func (e *ColumnMapConflictError) Error() string {
	if e.Existing {
		return fmt.Sprintf("cannot map column '%s' to '%s' because '%s' already exists and is not remapped", e.From, e.To, e.To)
	}
	return fmt.Sprintf("cannot map column '%s' to '%s' because '%s' is already mapped", e.From, e.To, e.To)
}

// MissingRequiredColumnError is returned when a record lacks a required
// column after remapping. Row is 1-based and excludes the header.
type MissingRequiredColumnError struct {
	Column string
	Row    int
}

func (e *MissingRequiredColumnError) Error() string {
	return fmt.Sprintf("expected column '%s', but none found (row %d)", e.Column, e.Row)
}

// AnchorAmbiguityError is returned when more than one event carries the
// anchor label. First and Second are 1-based entry numbers.
type AnchorAmbiguityError struct {
	Label         string
	First, Second int
}

func (e *AnchorAmbiguityError) Error() string {
	return fmt.Sprintf("multiple events with summary '%s' found; expected at most 1 (second found in entry %d)", e.Label, e.Second)
}

// AnchorNotFoundError is returned when no event carries the anchor label and
// the last event was not designated as the anchor.
type AnchorNotFoundError struct {
	Label string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("no race day detected; ensure that there is a single event with the summary '%s' or pass the --ends-on-race-day switch", e.Label)
}

// MultiDayEventError is returned by LoadCalendar for all-day events that span
// more than a single day.
type MultiDayEventError struct {
	Entry      int
	Summary    string
	Start, End civil.Date
}

func (e *MultiDayEventError) Error() string {
	return fmt.Sprintf("event %d ('%s') spans %s to %s; only single-day events are supported", e.Entry, e.Summary, e.Start, e.End)
}

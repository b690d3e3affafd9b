package types

import (
	"context"

	"golang.org/x/exp/slices"
)

// Source reads the events of an existing calendar, ordered by start date.
type Source interface {
	FetchEvents(ctx context.Context, calendarName string) ([]SourceEvent, error)
}

// Destination is a calendar service events can be written to. Calendars are
// addressed by display name when looked up and by ID afterwards.
type Destination interface {
	FindCalendar(ctx context.Context, name string) (id string, ok bool, err error)
	CreateCalendar(ctx context.Context, name string) (id string, err error)
	InsertEvent(ctx context.Context, calendarID string, event *Event, tag string) error
}

// Clearer removes previously generated events carrying tag.
type Clearer interface {
	ClearTagged(ctx context.Context, calendarID, tag string, dryRun bool) (int, error)
}

// Lister lists the display names of the calendars available to the user.
type Lister interface {
	ListCalendars(ctx context.Context) ([]string, error)
}

// sortByStart orders events by start date, keeping the source order of
// events on the same day.
func sortByStart(events []SourceEvent) {
	slices.SortStableFunc(events, func(a, b SourceEvent) int {
		switch {
		case a.Start.Before(b.Start):
			return -1
		case b.Start.Before(a.Start):
			return 1
		}
		return 0
	})
}

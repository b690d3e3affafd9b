package types

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"google.golang.org/api/calendar/v3"
)

// Properties kept on an Event; anything else is dropped when the event is
// constructed.
const (
	PropertySummary     = "summary"
	PropertyDescription = "description"
	PropertyNotes       = "notes"
)

// RetainedProperties is the allow-list applied by NewEvent.
var RetainedProperties = []string{PropertySummary, PropertyDescription, PropertyNotes}

// privateTagKey and privateNotesKey name the Google Calendar private extended
// properties used for the values the API has no field for.
const (
	privateTagKey   = "tag"
	privateNotesKey = "notes"
)

// Event is a single whole-day calendar event. It is immutable once built.
type Event struct {
	start      civil.Date
	end        civil.Date
	properties map[string]string
}

// NewEvent builds an event covering the single day start. Only retained
// properties are kept; a missing summary is an error.
func NewEvent(start civil.Date, properties map[string]string) (*Event, error) {
	if !start.IsValid() {
		return nil, fmt.Errorf("invalid start date %v", start)
	}
	props := make(map[string]string, len(RetainedProperties))
	for k, v := range properties {
		k = strings.ToLower(k)
		if slices.Contains(RetainedProperties, k) {
			props[k] = v
		}
	}
	if _, ok := props[PropertySummary]; !ok {
		return nil, errors.New("event has no summary")
	}
	return &Event{
		start:      start,
		end:        start.AddDays(1),
		properties: props,
	}, nil
}

func (e *Event) Start() civil.Date { return e.start }

func (e *Event) End() civil.Date { return e.end }

func (e *Event) Summary() string { return e.properties[PropertySummary] }

// Property returns the value of a retained property.
func (e *Event) Property(key string) (string, bool) {
	v, ok := e.properties[strings.ToLower(key)]
	return v, ok
}

// Properties returns a copy of the retained properties.
func (e *Event) Properties() map[string]string {
	return maps.Clone(e.properties)
}

// ToGoogleEvent converts the event to its Google Calendar representation. The
// tag, if not empty, is stored as a private extended property.
func (e *Event) ToGoogleEvent(tag string) *calendar.Event {
	ev := &calendar.Event{
		Summary:     e.properties[PropertySummary],
		Description: e.properties[PropertyDescription],
		Start:       &calendar.EventDateTime{Date: e.start.String()},
		End:         &calendar.EventDateTime{Date: e.end.String()},
	}

	private := make(map[string]string)
	if notes, ok := e.properties[PropertyNotes]; ok && notes != "" {
		private[privateNotesKey] = notes
	}
	if tag != "" {
		private[privateTagKey] = tag
	}
	if len(private) > 0 {
		ev.ExtendedProperties = &calendar.EventExtendedProperties{Private: private}
	}
	return ev
}

func (e *Event) String() string {
	keys := maps.Keys(e.properties)
	slices.Sort(keys)
	props := make([]string, len(keys))
	for i, k := range keys {
		props[i] = fmt.Sprintf("%s:'%s'", k, e.properties[k])
	}
	return fmt.Sprintf("Event(start:%s, end:%s, %s)", e.start, e.end, strings.Join(props, ", "))
}

// SourceEvent is an already-dated event read from a calendar source, before
// any shift has been applied.
type SourceEvent struct {
	Start      civil.Date
	End        civil.Date
	Properties map[string]string
}

func (s SourceEvent) Summary() string {
	return s.Properties[PropertySummary]
}

// ParseDate parses an ISO calendar date such as 2022-10-15.
func ParseDate(s string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: expected format YYYY-MM-DD", s)
	}
	return d, nil
}

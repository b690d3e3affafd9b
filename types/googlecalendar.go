package types

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const defaultMaxEvents = 2500

// GoogleCalendar reads and writes calendars through the Google Calendar API.
type GoogleCalendar struct {
	Service   *calendar.Service
	TimeZone  string // time zone of newly created calendars
	MaxEvents int    // upper bound on events read from a source calendar
	Logger    *slog.Logger
}

// NewGoogleCalendar creates a Google Calendar adapter using an authorized
// HTTP client. Extra client options are appended after the HTTP client.
func NewGoogleCalendar(ctx context.Context, client *http.Client, timeZone string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create Google Calendar service: %w", err)
	}
	return &GoogleCalendar{
		Service:   service,
		TimeZone:  timeZone,
		MaxEvents: defaultMaxEvents,
		Logger:    slog.Default(),
	}, nil
}

// calendarIDs maps the display name of every calendar in the user's list to
// its ID.
func (c *GoogleCalendar) calendarIDs(ctx context.Context) (map[string]string, error) {
	ids := make(map[string]string)
	pageToken := ""
	for {
		req := c.Service.CalendarList.List().Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		r, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("could not list calendars: %w", err)
		}
		for _, item := range r.Items {
			if _, ok := ids[item.Summary]; !ok {
				ids[item.Summary] = item.Id
			}
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return ids, nil
}

func (c *GoogleCalendar) ListCalendars(ctx context.Context) ([]string, error) {
	ids, err := c.calendarIDs(ctx)
	if err != nil {
		return nil, err
	}
	names := maps.Keys(ids)
	slices.Sort(names)
	return names, nil
}

func (c *GoogleCalendar) FindCalendar(ctx context.Context, name string) (string, bool, error) {
	ids, err := c.calendarIDs(ctx)
	if err != nil {
		return "", false, err
	}
	id, ok := ids[name]
	return id, ok, nil
}

func (c *GoogleCalendar) CreateCalendar(ctx context.Context, name string) (string, error) {
	created, err := c.Service.Calendars.Insert(&calendar.Calendar{
		Summary:  name,
		TimeZone: c.TimeZone,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("could not create calendar %q: %w", name, err)
	}
	c.Logger.Debug("created calendar", "name", name, "id", created.Id)
	return created.Id, nil
}

func (c *GoogleCalendar) InsertEvent(ctx context.Context, calendarID string, event *Event, tag string) error {
	_, err := c.Service.Events.Insert(calendarID, event.ToGoogleEvent(tag)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not insert event %q: %w", event.Summary(), err)
	}
	return nil
}

// FetchEvents returns the events of the calendar named calendarName ordered
// by start time. A calendar holding more than MaxEvents events is an error;
// a partial template would be anchored wrongly.
func (c *GoogleCalendar) FetchEvents(ctx context.Context, calendarName string) ([]SourceEvent, error) {
	id, ok, err := c.FindCalendar(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("calendar %q does not exist", calendarName)
	}

	max := c.MaxEvents
	if max <= 0 {
		max = defaultMaxEvents
	}

	var events []SourceEvent
	pageToken := ""
	for {
		req := c.Service.Events.List(id).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(250).
			Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		r, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("could not list events of %q: %w", calendarName, err)
		}
		for _, item := range r.Items {
			if item.Status == "cancelled" {
				continue
			}
			se, err := sourceEventFromGoogle(item)
			if err != nil {
				return nil, err
			}
			if len(events) == max {
				return nil, fmt.Errorf("calendar %q has more than %d events; raise max_events to read all of them", calendarName, max)
			}
			events = append(events, se)
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}

// ClearTagged deletes the events of calendarID whose private tag property
// equals tag. With dryRun set the events are only counted.
func (c *GoogleCalendar) ClearTagged(ctx context.Context, calendarID, tag string, dryRun bool) (int, error) {
	s := time.Now()
	var ids []string
	pageToken := ""
	for {
		req := c.Service.Events.List(calendarID).
			PrivateExtendedProperty(privateTagKey + "=" + tag).
			Context(ctx)
		if pageToken != "" {
			req.PageToken(pageToken)
		}
		r, err := req.Do()
		if err != nil {
			return 0, fmt.Errorf("could not list events: %w", err)
		}
		for _, item := range r.Items {
			if item.Status != "cancelled" {
				ids = append(ids, item.Id)
			}
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if dryRun {
		return len(ids), nil
	}
	for i, id := range ids {
		if err := c.Service.Events.Delete(calendarID, id).Context(ctx).Do(); err != nil {
			return i, fmt.Errorf("could not delete event %v: %w", id, err)
		}
	}
	c.Logger.Info("cleared tagged events", "tag", tag, "count", len(ids), "took", time.Since(s))
	return len(ids), nil
}

// sourceEventFromGoogle converts a Google Calendar event. Timed events are
// reduced to the date they start on, in their own offset.
func sourceEventFromGoogle(e *calendar.Event) (SourceEvent, error) {
	if e.Start == nil {
		return SourceEvent{}, fmt.Errorf("event %q has no start", e.Summary)
	}

	var se SourceEvent
	switch {
	case e.Start.Date != "":
		start, err := civil.ParseDate(e.Start.Date)
		if err != nil {
			return SourceEvent{}, fmt.Errorf("could not parse start date of %q: %w", e.Summary, err)
		}
		se.Start = start
		se.End = start.AddDays(1)
		if e.End != nil && e.End.Date != "" {
			end, err := civil.ParseDate(e.End.Date)
			if err != nil {
				return SourceEvent{}, fmt.Errorf("could not parse end date of %q: %w", e.Summary, err)
			}
			se.End = end
		}
	default:
		t, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return SourceEvent{}, fmt.Errorf("could not parse start time of %q: %w", e.Summary, err)
		}
		se.Start = civil.DateOf(t)
		se.End = se.Start.AddDays(1)
	}

	se.Properties = map[string]string{PropertySummary: e.Summary}
	if e.Description != "" {
		se.Properties[PropertyDescription] = e.Description
	}
	if e.ExtendedProperties != nil {
		if notes, ok := e.ExtendedProperties.Private[privateNotesKey]; ok {
			se.Properties[PropertyNotes] = notes
		}
	}
	return se, nil
}

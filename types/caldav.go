package types

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// CalDAV reads and writes calendars on a CalDAV server such as iCloud or
// Nextcloud. Calendars are matched on their display name.
type CalDAV struct {
	client *caldav.Client
}

// NewCalDAV connects to the server at endpoint with basic auth credentials.
func NewCalDAV(endpoint, username, password string) (*CalDAV, error) {
	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: 30 * time.Second}, username, password)
	client, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("could not connect to CalDAV server: %w", err)
	}
	return &CalDAV{client: client}, nil
}

func (c *CalDAV) calendars(ctx context.Context) ([]caldav.Calendar, error) {
	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not find principal: %w", err)
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar home set: %w", err)
	}
	cals, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("could not find calendars: %w", err)
	}
	return cals, nil
}

func (c *CalDAV) ListCalendars(ctx context.Context) ([]string, error) {
	cals, err := c.calendars(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cals))
	for _, cal := range cals {
		names = append(names, cal.Name)
	}
	slices.Sort(names)
	return names, nil
}

func (c *CalDAV) FindCalendar(ctx context.Context, name string) (string, bool, error) {
	cals, err := c.calendars(ctx)
	if err != nil {
		return "", false, err
	}
	for _, cal := range cals {
		if cal.Name == name {
			return cal.Path, true, nil
		}
	}
	return "", false, nil
}

// CreateCalendar is not supported over CalDAV; the calendar has to exist on
// the server already.
func (c *CalDAV) CreateCalendar(_ context.Context, name string) (string, error) {
	return "", fmt.Errorf("calendar %q does not exist; create it on the CalDAV server and run again", name)
}

func (c *CalDAV) InsertEvent(ctx context.Context, calendarPath string, event *Event, tag string) error {
	uid := uuid.NewString()

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	cal.Children = append(cal.Children, event.ToICalEvent(uid, tag).Component)

	p := calendarPath
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	if _, err := c.client.PutCalendarObject(ctx, p+uid+".ics", cal); err != nil {
		return fmt.Errorf("could not create event %q: %w", event.Summary(), err)
	}
	return nil
}

// FetchEvents returns every event of the named calendar ordered by start
// date.
func (c *CalDAV) FetchEvents(ctx context.Context, calendarName string) ([]SourceEvent, error) {
	p, ok, err := c.FindCalendar(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("calendar %q does not exist", calendarName)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompEvent}},
		},
	}
	objects, err := c.client.QueryCalendar(ctx, p, query)
	if err != nil {
		return nil, fmt.Errorf("could not query calendar %q: %w", calendarName, err)
	}

	var events []SourceEvent
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			se, err := sourceEventFromICal(ev)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", obj.Path, err)
			}
			events = append(events, se)
		}
	}
	sortByStart(events)
	return events, nil
}

package types

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

const (
	propCalendarName = "X-WR-CALNAME"
	icalProductID    = "-//trainingcal//trainingcal//EN"
)

// ToICalEvent converts the event to an all-day VEVENT. Notes are written as
// COMMENT and the tag, if any, as CATEGORIES.
func (e *Event) ToICalEvent(uid, tag string) *ical.Event {
	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, uid)
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	vevent.Props.SetText(ical.PropSummary, e.properties[PropertySummary])
	if v := e.properties[PropertyDescription]; v != "" {
		vevent.Props.SetText(ical.PropDescription, v)
	}
	if v := e.properties[PropertyNotes]; v != "" {
		vevent.Props.SetText(ical.PropComment, v)
	}
	if tag != "" {
		vevent.Props.SetText(ical.PropCategories, tag)
	}
	vevent.Props.SetDate(ical.PropDateTimeStart, e.start.In(time.UTC))
	vevent.Props.SetDate(ical.PropDateTimeEnd, e.end.In(time.UTC))
	return vevent
}

// ICalendarDir stores each calendar as an .ics file in Dir. A calendar named
// N lives in Dir/N.ics; its ID is that path.
type ICalendarDir struct {
	Dir string

	cals map[string]*ical.Calendar
}

func NewICalendarDir(dir string) *ICalendarDir {
	if dir == "" {
		dir = "."
	}
	return &ICalendarDir{Dir: dir, cals: make(map[string]*ical.Calendar)}
}

func (d *ICalendarDir) path(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
	return filepath.Join(d.Dir, name+".ics")
}

func (d *ICalendarDir) FindCalendar(_ context.Context, name string) (string, bool, error) {
	p := d.path(name)
	if _, ok := d.cals[p]; ok {
		return p, true, nil
	}
	_, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return p, true, nil
}

// CreateCalendar starts a new, empty calendar. The file is written with the
// first inserted event.
func (d *ICalendarDir) CreateCalendar(_ context.Context, name string) (string, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	// SetText would add VALUE=TEXT to an unknown X- property.
	cal.Props.Set(&ical.Prop{Name: propCalendarName, Params: make(ical.Params), Value: name})

	p := d.path(name)
	d.cals[p] = cal
	return p, nil
}

func (d *ICalendarDir) InsertEvent(_ context.Context, calendarID string, event *Event, tag string) error {
	cal, err := d.load(calendarID)
	if err != nil {
		return err
	}
	cal.Children = append(cal.Children, event.ToICalEvent(uuid.NewString(), tag).Component)
	return d.save(calendarID, cal)
}

// FetchEvents reads Dir/calendarName.ics and returns its events ordered by
// start date.
func (d *ICalendarDir) FetchEvents(_ context.Context, calendarName string) ([]SourceEvent, error) {
	cal, err := d.load(d.path(calendarName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("calendar %q does not exist", calendarName)
	}
	if err != nil {
		return nil, err
	}

	var events []SourceEvent
	for _, ev := range cal.Events() {
		se, err := sourceEventFromICal(ev)
		if err != nil {
			return nil, err
		}
		events = append(events, se)
	}
	sortByStart(events)
	return events, nil
}

// ClearTagged removes every event whose CATEGORIES equal tag.
func (d *ICalendarDir) ClearTagged(_ context.Context, calendarID, tag string, dryRun bool) (int, error) {
	cal, err := d.load(calendarID)
	if err != nil {
		return 0, err
	}

	kept := cal.Children[:0:0]
	removed := 0
	for _, child := range cal.Children {
		if child.Name == ical.CompEvent {
			if p := child.Props.Get(ical.PropCategories); p != nil {
				if v, err := p.Text(); err == nil && v == tag {
					removed++
					continue
				}
			}
		}
		kept = append(kept, child)
	}
	if dryRun || removed == 0 {
		return removed, nil
	}
	cal.Children = kept
	return removed, d.save(calendarID, cal)
}

func (d *ICalendarDir) ListCalendars(context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, "*.ics"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		if strings.HasPrefix(base, ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(base, ".ics"))
	}
	slices.Sort(names)
	return names, nil
}

func (d *ICalendarDir) load(p string) (*ical.Calendar, error) {
	if cal, ok := d.cals[p]; ok {
		return cal, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cal, err := ical.NewDecoder(f).Decode()
	if err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", p, err)
	}
	d.cals[p] = cal
	return cal, nil
}

// save writes the calendar atomically via a temp file in the same directory.
func (d *ICalendarDir) save(p string, cal *ical.Calendar) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".trainingcal-*.ics")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := ical.NewEncoder(tmp).Encode(cal); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// sourceEventFromICal reads a VEVENT. Timed events are reduced to the date
// they start on.
func sourceEventFromICal(ev ical.Event) (SourceEvent, error) {
	var se SourceEvent

	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return se, errors.New("event has no DTSTART")
	}
	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return se, fmt.Errorf("could not parse DTSTART: %w", err)
	}
	se.Start = civil.DateOf(start)
	se.End = se.Start.AddDays(1)
	if startProp.ValueType() == ical.ValueDate {
		end, err := ev.DateTimeEnd(time.UTC)
		if err != nil {
			return se, fmt.Errorf("could not parse DTEND: %w", err)
		}
		if !end.IsZero() {
			se.End = civil.DateOf(end)
		}
	}

	se.Properties = make(map[string]string)
	for prop, key := range map[string]string{
		ical.PropSummary:     PropertySummary,
		ical.PropDescription: PropertyDescription,
		ical.PropComment:     PropertyNotes,
	} {
		p := ev.Props.Get(prop)
		if p == nil {
			continue
		}
		v, err := p.Text()
		if err != nil {
			return se, fmt.Errorf("could not read %s: %w", prop, err)
		}
		se.Properties[key] = v
	}
	return se, nil
}

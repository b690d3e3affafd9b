package plan

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/civil"

	"github.com/mattismoel/trainingcal/types"
)

// Options controls how a sequence of template events is anchored in time.
type Options struct {
	// ColumnMap renames table columns before validation. Ignored for
	// calendar sources.
	ColumnMap ColumnMap
	// AnchorDate is the date the anchor event must land on.
	AnchorDate civil.Date
	// EndsOnAnchor designates the last event as the anchor. When set, labels
	// are not inspected at all.
	EndsOnAnchor bool
	// AnchorLabel is the summary identifying the anchor event. Defaults to
	// RaceDaySummary.
	AnchorLabel string
}

func (o Options) label() string {
	if o.AnchorLabel == "" {
		return RaceDaySummary
	}
	return o.AnchorLabel
}

func anchorIndex[T any](opts Options, items []T, summary func(T) string) (int, error) {
	if len(items) == 0 {
		return -1, ErrNoEvents
	}
	if opts.EndsOnAnchor {
		return len(items) - 1, nil
	}
	return FindAnchor(items, opts.label(), summary)
}

// LoadFile opens the table at source, loads it with Load and closes it.
func LoadFile(ctx context.Context, source string, opts Options) ([]*types.Event, error) {
	r, err := OpenTable(ctx, source)
	if err != nil {
		return nil, &LoadError{Kind: "file", Source: source, Err: err}
	}
	defer r.Close()
	return Load(r, source, opts)
}

// Load reads every record from r, remaps and validates it, then assigns
// dates so that the anchor record starts on opts.AnchorDate. Either every
// record becomes an event or an error is returned.
func Load(r RecordReader, source string, opts Options) ([]*types.Event, error) {
	fail := func(err error) ([]*types.Event, error) {
		return nil, &LoadError{Kind: "file", Source: source, Err: err}
	}

	var records []RawRecord
	for row := 1; ; row++ {
		raw, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Errorf("could not read row %d: %w", row, err))
		}
		rec, err := opts.ColumnMap.Apply(raw)
		if err != nil {
			return fail(err)
		}
		if _, ok := rec[types.PropertySummary]; !ok {
			return fail(&MissingRequiredColumnError{Column: types.PropertySummary, Row: row})
		}
		records = append(records, rec)
	}

	anchor, err := anchorIndex(opts, records, func(rec RawRecord) string {
		return rec[types.PropertySummary]
	})
	if err != nil {
		return fail(err)
	}

	spans, err := Realign(len(records), anchor, opts.AnchorDate)
	if err != nil {
		return fail(err)
	}

	events := make([]*types.Event, len(records))
	for i, rec := range records {
		ev, err := types.NewEvent(spans[i].Start, rec)
		if err != nil {
			return fail(fmt.Errorf("row %d: %w", i+1, err))
		}
		events[i] = ev
	}
	return events, nil
}

// LoadCalendar shifts already-dated events so that the anchor event starts on
// opts.AnchorDate. Timed events are expected to be normalized to the date they
// start on; all-day events longer than one day are rejected.
func LoadCalendar(src []types.SourceEvent, calendarName string, opts Options) ([]*types.Event, error) {
	fail := func(err error) ([]*types.Event, error) {
		return nil, &LoadError{Kind: "calendar", Source: calendarName, Err: err}
	}

	for i, se := range src {
		if se.End != se.Start && se.End != se.Start.AddDays(1) {
			return fail(&MultiDayEventError{Entry: i + 1, Summary: se.Summary(), Start: se.Start, End: se.End})
		}
	}

	anchor, err := anchorIndex(opts, src, types.SourceEvent.Summary)
	if err != nil {
		return fail(err)
	}

	from := src[anchor].Start
	events := make([]*types.Event, len(src))
	for i, se := range src {
		ev, err := types.NewEvent(Shift(se.Start, from, opts.AnchorDate), se.Properties)
		if err != nil {
			return fail(fmt.Errorf("entry %d: %w", i+1, err))
		}
		events[i] = ev
	}
	return events, nil
}

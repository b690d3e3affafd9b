package publish

import (
	"context"
	"fmt"
	"io"

	"github.com/mattismoel/trainingcal/types"
	"golang.org/x/exp/slog"
)

// Result summarizes a Publish call.
type Result struct {
	CalendarID      string
	CreatedCalendar bool
	Inserted        int
}

// Publisher writes generated events into a named calendar of a Destination.
type Publisher struct {
	Destination types.Destination
	Logger      *slog.Logger
	// Out receives one line per created event.
	Out io.Writer
	// DryRun logs what would be done without calling any mutating method.
	DryRun bool
}

// Publish reuses the calendar called name, creating it when missing, and
// inserts events one at a time in the given order. The first failure stops
// the run; events inserted before it stay in place.
func (p *Publisher) Publish(ctx context.Context, name string, events []*types.Event, tag string) (Result, error) {
	var res Result
	logger := p.logger().With("calendar", name)

	id, ok, err := p.Destination.FindCalendar(ctx, name)
	if err != nil {
		return res, fmt.Errorf("could not look up calendar %q: %w", name, err)
	}
	switch {
	case ok:
		logger.Info("Found existing calendar", "id", id)
	case p.DryRun:
		logger.Info("WHAT-IF: Creating new calendar")
		res.CreatedCalendar = true
	default:
		logger.Info("Creating new calendar")
		if id, err = p.Destination.CreateCalendar(ctx, name); err != nil {
			return res, fmt.Errorf("could not create calendar %q: %w", name, err)
		}
		res.CreatedCalendar = true
	}
	res.CalendarID = id

	for _, ev := range events {
		if p.DryRun {
			logger.Info(fmt.Sprintf("WHAT-IF: Copying event: %s (tag: %s)", ev, tagOrNone(tag)))
			continue
		}
		if err := p.Destination.InsertEvent(ctx, id, ev, tag); err != nil {
			return res, fmt.Errorf("could not insert event %q on %s: %w", ev.Summary(), ev.Start(), err)
		}
		res.Inserted++
		if p.Out != nil {
			fmt.Fprintf(p.Out, "Created event: %s %s\n", ev.Start(), ev.Summary())
		}
	}

	logger.Debug("Publish finished", "inserted", res.Inserted, "events", len(events), "dry_run", p.DryRun)
	return res, nil
}

func (p *Publisher) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func tagOrNone(tag string) string {
	if tag == "" {
		return "<NONE>"
	}
	return tag
}

/*
Copyright © 2023 Mattis Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"github.com/mattismoel/trainingcal/plan"
	"github.com/mattismoel/trainingcal/publish"
	"github.com/mattismoel/trainingcal/types"
	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = newCreateCmd()

func newCreateCmd() *cobra.Command {
	flags := &createFlags{}
	cmd := &cobra.Command{
		Use:   "create [NAME] [RACE_DAY]",
		Short: "Creates a training calendar ending on race day",
		Long: `Creates (or reuses) the calendar NAME and fills it with the events of a
training plan, shifted so the plan's RACE DAY event falls on RACE_DAY.

The plan is read either from a table (--file) whose rows are consecutive
days, or from an existing calendar (--template-calendar) whose events are
moved as a block.`,
		Example: `  trainingcal create "Chicago 2024" 2024-10-13 -f plans/marathon.csv
  trainingcal create -n "Half" -r 2024-04-21 -c "Half Template" --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, positional []string) error {
			if wantsHelp(positional) {
				return cmd.Help()
			}
			args, err := flags.resolve(positional)
			if err != nil {
				return err
			}
			return runCreate(cmd, args)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func runCreate(cmd *cobra.Command, args createArgs) error {
	ctx := cmd.Context()
	logger := current.logger.With("calendar", args.Name)

	opts := plan.Options{
		ColumnMap:    args.ColumnMap,
		AnchorDate:   args.RaceDay,
		EndsOnAnchor: args.EndsOnRaceDay,
	}

	var (
		b      backend
		events []*types.Event
		err    error
	)
	if args.File != "" {
		// The table is read before connecting so a bad plan fails without
		// an authorization prompt.
		if events, err = plan.LoadFile(ctx, args.File, opts); err != nil {
			return err
		}
		if b, err = openBackend(ctx, cmd, current); err != nil {
			return err
		}
	} else {
		if args.ColumnMapGiven {
			logger.Warn("--column-map is ignored for template calendars", "column_map", args.ColumnMap.String())
		}
		if b, err = openBackend(ctx, cmd, current); err != nil {
			return err
		}
		src, err := b.FetchEvents(ctx, args.TemplateCalendar)
		if err != nil {
			return err
		}
		if events, err = plan.LoadCalendar(src, args.TemplateCalendar, opts); err != nil {
			return err
		}
	}
	logger.Debug("Loaded training plan", "events", len(events), "race_day", args.RaceDay.String())

	p := &publish.Publisher{
		Destination: b,
		Logger:      current.logger,
		Out:         cmd.OutOrStdout(),
		DryRun:      args.DryRun,
	}
	res, err := p.Publish(ctx, args.Name, events, args.Tag)
	if err != nil {
		return err
	}
	if !args.DryRun {
		logger.Info("Complete!", "events", res.Inserted)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd)
}

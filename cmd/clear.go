/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"fmt"

	"github.com/mattismoel/trainingcal/types"
	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes generated events from a calendar",
	Long: `Removes the events created with the given tag from a calendar.
Only tagged events are targeted, leaving any personal events intact.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		tag, _ := cmd.Flags().GetString("tag")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if tag == "" {
			return &ArgumentError{Msg: "--tag must not be empty"}
		}

		ctx := cmd.Context()
		b, err := openBackend(ctx, cmd, current)
		if err != nil {
			return err
		}
		clearer, ok := b.(types.Clearer)
		if !ok {
			return fmt.Errorf("provider %s does not support clearing events", current.cfg.Provider)
		}

		id, ok, err := b.FindCalendar(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("calendar %q does not exist", name)
		}

		n, err := clearer.ClearTagged(ctx, id, tag, dryRun)
		if err != nil {
			return fmt.Errorf("could not clear calendar %q: %w", name, err)
		}
		if dryRun {
			current.logger.Info(fmt.Sprintf("WHAT-IF: Deleting %d events", n), "calendar", name, "tag", tag)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d events\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().StringP("name", "n", "", "name of the calendar to clear (required)")
	clearCmd.Flags().StringP("tag", "t", "", "tag of the events to delete (required)")
	clearCmd.Flags().Bool("dry-run", false, "count the events without deleting them")

	clearCmd.MarkFlagRequired("name")
	clearCmd.MarkFlagRequired("tag")
}

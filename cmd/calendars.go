/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// calendarsCmd represents the calendars command
var calendarsCmd = &cobra.Command{
	Use:   "calendars",
	Short: "Lists the calendars of the configured provider",
	Long: `Lists the display names of the calendars available with the configured
provider. These are the names accepted by --name and --template-calendar.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd.Context(), cmd, current)
		if err != nil {
			return err
		}
		names, err := b.ListCalendars(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not list calendars: %w", err)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calendarsCmd)
}

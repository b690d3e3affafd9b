package cmd

import (
	"fmt"

	"github.com/mattismoel/trainingcal/config"
	"github.com/mattismoel/trainingcal/util/googlecalendarutil"
	"github.com/spf13/cobra"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorizes access to Google Calendar",
	Long: `Runs the Google OAuth flow with the configured client credentials and
stores the resulting token, replacing any cached one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.cfg.Provider != config.ProviderGoogle {
			return fmt.Errorf("auth is only needed for the %s provider", config.ProviderGoogle)
		}
		oauthConfig, err := googlecalendarutil.Config(current.cfg.Credentials)
		if err != nil {
			return err
		}
		_, err = googlecalendarutil.Authorize(cmd.Context(), oauthConfig, current.cfg.Token, cmd.InOrStdin(), cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
}

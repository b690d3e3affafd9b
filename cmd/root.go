/*
Copyright © 2023 Mattis Møl Kristensen <mattismoel@gmail.com>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattismoel/trainingcal/config"
	"github.com/mattismoel/trainingcal/types"
	"github.com/mattismoel/trainingcal/util/googlecalendarutil"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

// app holds what every subcommand needs once the root command has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// backend is a calendar service usable both as template source and as
// destination.
type backend interface {
	types.Source
	types.Destination
	types.Lister
}

var (
	cfgPath  string
	provider string
	debug    bool

	current app

	// openBackend is replaced in tests.
	openBackend = newBackend
)

var rootCmd = &cobra.Command{
	Use:   "trainingcal",
	Short: "Creates training calendars that end on race day",
	Long: `Creates a calendar from a training plan template so that the plan's
RACE DAY lands on the date of your race. Templates are read from a CSV/TSV
file, an HTML table or an existing calendar.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		if cmd.Flags().Changed("provider") {
			cfg.Provider = provider
			cfg.Normalize()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		current = app{cfg: cfg, logger: newLogger(cmd.ErrOrStderr(), debug)}
		return nil
	},
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", config.ProviderGoogle, "calendar provider: google, caldav or ics")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newBackend connects to the configured provider. Google prompts for
// authorization on cmd's streams when no token is cached.
func newBackend(ctx context.Context, cmd *cobra.Command, a app) (backend, error) {
	switch a.cfg.Provider {
	case config.ProviderGoogle:
		oauthConfig, err := googlecalendarutil.Config(a.cfg.Credentials)
		if err != nil {
			return nil, err
		}
		client, err := googlecalendarutil.GetClient(ctx, oauthConfig, a.cfg.Token, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return nil, fmt.Errorf("could not get Google Calendar client: %w", err)
		}
		c, err := types.NewGoogleCalendar(ctx, client, a.cfg.Timezone)
		if err != nil {
			return nil, err
		}
		c.MaxEvents = a.cfg.MaxEvents
		c.Logger = a.logger
		return c, nil
	case config.ProviderCalDAV:
		c, err := types.NewCalDAV(a.cfg.CalDAV.URL, a.cfg.CalDAV.Username, a.cfg.CalDAV.Password)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderICS:
		return types.NewICalendarDir(a.cfg.ICSDir), nil
	}
	return nil, errors.New("unknown provider " + a.cfg.Provider)
}

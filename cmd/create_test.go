package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattismoel/trainingcal/config"
	"github.com/mattismoel/trainingcal/plan"
	"github.com/mattismoel/trainingcal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useICSDir points the commands at an ics provider in a temp directory and
// returns the directory plus the log buffer.
func useICSDir(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Provider = config.ProviderICS
	cfg.ICSDir = dir

	logs := &bytes.Buffer{}
	prev := current
	current = app{cfg: cfg, logger: newLogger(logs, true)}
	t.Cleanup(func() { current = prev })
	return dir, logs
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func golden(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "plan", "testdata", "golden.csv"))
	require.NoError(t, err)
	return p
}

func TestCreateFromFile(t *testing.T) {
	dir, _ := useICSDir(t)

	out, err := run(t, newCreateCmd(), "Marathon", "2022-10-15", "-f", golden(t), "-t", "chi")
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "Created event: "))
	assert.Contains(t, out, "Created event: 2022-10-15 RACE DAY")

	events, err := types.NewICalendarDir(dir).FetchEvents(context.Background(), "Marathon")
	require.NoError(t, err)
	require.Len(t, events, 6)
	assert.Equal(t, "2022-10-11", events[0].Start.String())
	assert.Equal(t, "2022-10-16", events[5].Start.String())
}

func TestCreateFromTemplateCalendar(t *testing.T) {
	_, logs := useICSDir(t)

	_, err := run(t, newCreateCmd(), "Template", "2022-10-15", "-f", golden(t))
	require.NoError(t, err)

	out, err := run(t, newCreateCmd(), "-n", "Half", "-r", "2023-04-23", "-c", "Template", "-m", "foo:bar")
	require.NoError(t, err)
	assert.Contains(t, out, "Created event: 2023-04-23 RACE DAY")
	assert.Contains(t, out, "Created event: 2023-04-19 Test0")
	assert.Contains(t, logs.String(), "--column-map is ignored")
}

func TestCreateDryRunWritesNothing(t *testing.T) {
	dir, logs := useICSDir(t)

	out, err := run(t, newCreateCmd(), "Marathon", "2022-10-15", "-f", golden(t), "--what-if")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, logs.String(), "WHAT-IF: Creating new calendar")

	names, err := types.NewICalendarDir(dir).ListCalendars(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCreateFailsBeforeConnecting(t *testing.T) {
	useICSDir(t)
	orig := openBackend
	openBackend = func(context.Context, *cobra.Command, app) (backend, error) {
		t.Fatal("backend opened for an invalid plan")
		return nil, nil
	}
	t.Cleanup(func() { openBackend = orig })

	missing := filepath.Join(filepath.Dir(golden(t)), "no-race-day.csv")
	_, err := run(t, newCreateCmd(), "Marathon", "2022-10-15", "-f", missing)

	var notFound *plan.AnchorNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestCreateArgumentError(t *testing.T) {
	useICSDir(t)

	_, err := run(t, newCreateCmd(), "Marathon", "2022-10-15")
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "exactly one of --file or --template-calendar required (got neither)", argErr.Msg)
}

func TestCreateHelpTokens(t *testing.T) {
	useICSDir(t)

	for _, tok := range []string{"help", "?"} {
		out, err := run(t, newCreateCmd(), "Marathon", tok)
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	}
}

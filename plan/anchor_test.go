package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func TestFindAnchor(t *testing.T) {
	i, err := FindAnchor([]string{"a", "b", RaceDaySummary, "c"}, RaceDaySummary, identity)
	require.NoError(t, err)
	assert.Equal(t, 2, i)
}

func TestFindAnchorIsCaseSensitive(t *testing.T) {
	_, err := FindAnchor([]string{"race day", "Race Day"}, RaceDaySummary, identity)

	var notFound *AnchorNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestFindAnchorAmbiguous(t *testing.T) {
	_, err := FindAnchor([]string{"a", RaceDaySummary, "b", RaceDaySummary, RaceDaySummary}, RaceDaySummary, identity)

	var amb *AnchorAmbiguityError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, 2, amb.First)
	assert.Equal(t, 4, amb.Second)
	assert.EqualError(t, err, "multiple events with summary 'RACE DAY' found; expected at most 1 (second found in entry 4)")
}

func TestFindAnchorNotFound(t *testing.T) {
	_, err := FindAnchor([]string{"a", "b"}, RaceDaySummary, identity)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no race day detected")
}

func TestAnchorIndexEndsOnAnchor(t *testing.T) {
	items := []string{RaceDaySummary, "a", RaceDaySummary}
	i, err := anchorIndex(Options{EndsOnAnchor: true}, items, identity)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	_, err = anchorIndex(Options{EndsOnAnchor: true}, []string{}, identity)
	assert.True(t, errors.Is(err, ErrNoEvents))
}

func TestAnchorIndexCustomLabel(t *testing.T) {
	i, err := anchorIndex(Options{AnchorLabel: "GOAL"}, []string{"a", "GOAL", RaceDaySummary}, identity)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

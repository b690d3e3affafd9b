package types

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = civil.Date{Year: 2022, Month: 10, Day: 15}

func TestNewEventFiltersProperties(t *testing.T) {
	props := map[string]string{
		"Summary":     "RACE DAY",
		"description": "26.2",
		"location":    "Chicago",
	}
	e, err := NewEvent(day, props)
	require.NoError(t, err)

	assert.Equal(t, day, e.Start())
	assert.Equal(t, civil.Date{Year: 2022, Month: 10, Day: 16}, e.End())
	assert.Equal(t, map[string]string{"summary": "RACE DAY", "description": "26.2"}, e.Properties())

	_, ok := e.Property("location")
	assert.False(t, ok)
	v, ok := e.Property("DESCRIPTION")
	assert.True(t, ok)
	assert.Equal(t, "26.2", v)
}

func TestEventIsImmutable(t *testing.T) {
	props := map[string]string{"summary": "Run"}
	e, err := NewEvent(day, props)
	require.NoError(t, err)

	props["summary"] = "Changed"
	e.Properties()["summary"] = "Changed"
	assert.Equal(t, "Run", e.Summary())
}

func TestNewEventErrors(t *testing.T) {
	_, err := NewEvent(day, map[string]string{"description": "no summary"})
	assert.EqualError(t, err, "event has no summary")

	_, err = NewEvent(civil.Date{}, map[string]string{"summary": "x"})
	assert.Error(t, err)
}

func TestEmptySummaryIsAllowed(t *testing.T) {
	e, err := NewEvent(day, map[string]string{"summary": ""})
	require.NoError(t, err)
	assert.Equal(t, "", e.Summary())
}

func TestToGoogleEvent(t *testing.T) {
	e, err := NewEvent(day, map[string]string{"summary": "Long run", "description": "20 miles", "notes": "bring gels"})
	require.NoError(t, err)

	g := e.ToGoogleEvent("marathon-2022")
	assert.Equal(t, "Long run", g.Summary)
	assert.Equal(t, "20 miles", g.Description)
	assert.Equal(t, "2022-10-15", g.Start.Date)
	assert.Equal(t, "2022-10-16", g.End.Date)
	assert.Empty(t, g.Start.DateTime)
	require.NotNil(t, g.ExtendedProperties)
	assert.Equal(t, map[string]string{"tag": "marathon-2022", "notes": "bring gels"}, g.ExtendedProperties.Private)
}

func TestToGoogleEventWithoutTag(t *testing.T) {
	e, err := NewEvent(day, map[string]string{"summary": "Rest"})
	require.NoError(t, err)
	assert.Nil(t, e.ToGoogleEvent("").ExtendedProperties)
}

func TestEventString(t *testing.T) {
	e, err := NewEvent(day, map[string]string{"summary": "Rest", "description": "off"})
	require.NoError(t, err)
	assert.Equal(t, "Event(start:2022-10-15, end:2022-10-16, description:'off', summary:'Rest')", e.String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2022-10-15 ")
	require.NoError(t, err)
	assert.Equal(t, day, d)

	for _, s := range []string{"", "10/15/2022", "2022-13-01", "2022-02-30"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

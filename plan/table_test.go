package plan

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r RecordReader) []RawRecord {
	t.Helper()
	defer r.Close()
	var out []RawRecord
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestOpenTableTSV(t *testing.T) {
	r, err := OpenTable(context.Background(), filepath.Join("testdata", "golden.tsv"))
	require.NoError(t, err)
	assert.Equal(t, []RawRecord{
		{"summary": "Test0", "description": "Desc0"},
		{"summary": "RACE DAY", "description": "Desc1"},
	}, readAll(t, r))
}

func TestOpenTableHTMLFile(t *testing.T) {
	r, err := OpenTable(context.Background(), filepath.Join("testdata", "golden.html"))
	require.NoError(t, err)
	recs := readAll(t, r)
	require.Len(t, recs, 4)
	assert.Equal(t, RawRecord{"summary": "RACE DAY", "description": "Desc2"}, recs[2])
}

func TestOpenTableStripsBOMAndPadsRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(p, []byte("\xef\xbb\xbfSummary,Notes,\nRun\nRACE DAY,fast,extra,more\n"), 0o644))

	r, err := OpenTable(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []RawRecord{
		{"summary": "Run", "notes": ""},
		{"summary": "RACE DAY", "notes": "fast"},
	}, readAll(t, r))
}

func TestOpenTableDuplicateHeader(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(p, []byte("Summary,summary\na,b\n"), 0o644))

	_, err := OpenTable(context.Background(), p)
	assert.EqualError(t, err, "duplicate column 'summary'")
}

func TestOpenTableEmptyFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	_, err := OpenTable(context.Background(), p)
	assert.EqualError(t, err, "missing header row")
}

func TestOpenTableURL(t *testing.T) {
	page, err := os.ReadFile(filepath.Join("testdata", "golden.html"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plan" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	}))
	defer srv.Close()

	events, err := LoadFile(context.Background(), srv.URL+"/plan", Options{AnchorDate: raceDay})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, raceDay, events[2].Start())
	assert.Equal(t, raceDay.AddDays(-2), events[0].Start())

	_, err = OpenTable(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestOpenTableURLWithoutTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.Copy(w, strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	}))
	defer srv.Close()

	_, err := OpenTable(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no <table> found")
}

func TestOpenTableURLHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := OpenTable(ctx, srv.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

package plan

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

// RecordReader streams table rows in source order. Read returns io.EOF after
// the last record.
type RecordReader interface {
	Read() (RawRecord, error)
	Close() error
}

// OpenTable opens the table at source. Local paths ending in .csv or .tsv are
// read as delimited text, .html and .htm as the first <table> in the
// document, and http(s) URLs as the first <table> on the fetched page.
func OpenTable(ctx context.Context, source string) (RecordReader, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return fetchHTMLTable(ctx, source)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".html", ".htm":
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return readHTMLTable(f)
	case ".tsv":
		return openDelimited(source, '\t')
	default:
		return openDelimited(source, ',')
	}
}

type delimitedReader struct {
	f      *os.File
	r      *csv.Reader
	header []string
}

func openDelimited(path string, comma rune) (RecordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		br.Discard(3)
	}

	r := csv.NewReader(br)
	r.Comma = comma
	r.FieldsPerRecord = -1

	row, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, err
	}
	header, err := normalizeHeader(row)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &delimitedReader{f: f, r: r, header: header}, nil
}

func (d *delimitedReader) Read() (RawRecord, error) {
	row, err := d.r.Read()
	if err != nil {
		return nil, err
	}
	return zipRecord(d.header, row), nil
}

func (d *delimitedReader) Close() error {
	return d.f.Close()
}

// sliceReader serves rows that had to be materialized up front.
type sliceReader struct {
	header []string
	rows   [][]string
}

func (s *sliceReader) Read() (RawRecord, error) {
	if len(s.rows) == 0 {
		return nil, io.EOF
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return zipRecord(s.header, row), nil
}

func (s *sliceReader) Close() error {
	return nil
}

func readHTMLTable(r io.Reader) (RecordReader, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not parse HTML: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no <table> found")
	}
	return tableFromSelection(table)
}

// ctxTransport ties every request of a collector to ctx.
type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func fetchHTMLTable(ctx context.Context, url string) (RecordReader, error) {
	var (
		table    RecordReader
		tableErr error
		found    bool
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector()
	c.WithTransport(ctxTransport{ctx: ctx, base: http.DefaultTransport})
	c.OnHTML("table", func(e *colly.HTMLElement) {
		if found {
			return
		}
		found = true
		table, tableErr = tableFromSelection(e.DOM)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			tableErr = fmt.Errorf("could not fetch %s: %s: %w", url, http.StatusText(r.StatusCode), err)
			return
		}
		tableErr = fmt.Errorf("could not fetch %s: %w", url, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("could not fetch %s: %w", url, err)
	}
	c.Wait()

	if tableErr != nil {
		return nil, tableErr
	}
	if !found {
		return nil, fmt.Errorf("no <table> found at %s", url)
	}
	return table, nil
}

func tableFromSelection(table *goquery.Selection) (RecordReader, error) {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	header, err := normalizeHeader(rows[0])
	if err != nil {
		return nil, err
	}
	return &sliceReader{header: header, rows: rows[1:]}, nil
}

func normalizeHeader(row []string) ([]string, error) {
	header := make([]string, len(row))
	seen := make(map[string]bool, len(row))
	for i, h := range row {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" && seen[h] {
			return nil, fmt.Errorf("duplicate column '%s'", h)
		}
		seen[h] = true
		header[i] = h
	}
	return header, nil
}

// zipRecord pairs header names with cell values. Missing cells become empty
// strings, surplus cells and unnamed columns are dropped.
func zipRecord(header, row []string) RawRecord {
	rec := make(RawRecord, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(row) {
			rec[h] = row[i]
		} else {
			rec[h] = ""
		}
	}
	return rec
}

// Package data loads historical bar files into market.BarSet values.
//
// Supported inputs:
//   - plain CSV:        time,open,high,low,close,volume
//   - xz-compressed:    *.csv.xz
//   - zip archives:     *.zip containing a single CSV
//
// Timestamps are RFC3339 or "2006-01-02 15:04:05" (UTC assumed).
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/niveshlab/nivesh/market"
)

const altLayout = "2006-01-02 15:04:05"

// LoadBars reads a bar file for symbol and returns a validated BarSet.
func LoadBars(symbol, path string) (*market.BarSet, error) {
	var (
		r   io.Reader
		err error
	)

	switch {
	case strings.HasSuffix(path, ".zip"):
		return loadZip(symbol, path)

	case strings.HasSuffix(path, ".xz"):
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, fmt.Errorf("open %s: %w", path, ferr)
		}
		defer f.Close()
		r, err = xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("xz reader %s: %w", path, err)
		}

	default:
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, fmt.Errorf("open %s: %w", path, ferr)
		}
		defer f.Close()
		r = f
	}

	return readBars(symbol, r)
}

// loadZip extracts the archive next to itself and loads the first CSV found.
func loadZip(symbol, path string) (*market.BarSet, error) {
	dir, err := os.MkdirTemp("", "nivesh-bars-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("unzip %s: %w", path, err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("unzip %s: no CSV inside archive", path)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBars(symbol, f)
}

func readBars(symbol string, r io.Reader) (*market.BarSet, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	var bars []market.Bar
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars line %d: %w", line+1, err)
		}
		line++

		// Skip a header row if present.
		if line == 1 && strings.EqualFold(rec[0], "time") {
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("read bars line %d: want 6 fields, got %d", line, len(rec))
		}

		t, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read bars line %d: %w", line, err)
		}

		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("read bars line %d field %d: %w", line, i+2, err)
			}
			vals[i] = v
		}

		bars = append(bars, market.Bar{
			Time:   t,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	bs := market.NewBarSet(symbol, bars)
	if err := bs.Validate(); err != nil {
		return nil, err
	}
	return bs, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(altLayout, s, time.UTC); err == nil {
		return t, nil
	}
	// Unix seconds as a last resort.
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

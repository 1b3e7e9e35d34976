package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"ovlmap/internal/compress"
	"ovlmap/internal/grid"
)

// ErrBadResult is returned for a result file that is not a result table.
var ErrBadResult = errors.New("storage: malformed result table")

// DefaultResultName is the export file name used when none is given. The
// suffix of ct is appended, so SaveResult compresses with ct.
func DefaultResultName(nx, ny int, ct compress.Type) string {
	return fmt.Sprintf("ovlx_ovly_results_%dx%d.csv%s", nx, ny, ct.Extension())
}

// WriteResult writes r as CSV with the header x,y,ovlx,ovly and no index
// column. NaN is written as an empty field; other values use the shortest
// representation that parses back to the same float64.
func WriteResult(w io.Writer, r *grid.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(grid.Columns); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	rec := make([]string, len(grid.Columns))
	for _, row := range r.Rows {
		rec[0] = formatFloat(row.X)
		rec[1] = formatFloat(row.Y)
		rec[2] = formatFloat(row.OVLX)
		rec[3] = formatFloat(row.OVLY)
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadResult reads a result table written by WriteResult. Columns may come
// in any order; empty fields read as NaN.
func ReadResult(r io.Reader) (*grid.Result, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrBadResult)
	}

	idx := make([]int, len(grid.Columns))
	for i, name := range grid.Columns {
		idx[i] = -1
		for j, h := range records[0] {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
				idx[i] = j
			}
		}
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: missing column %q", ErrBadResult, name)
		}
	}

	rows := make([]grid.Row, 0, len(records)-1)
	for n, rec := range records[1:] {
		var vals [4]float64
		for i, j := range idx {
			v, err := parseFloat(rec[j])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %s: %w", ErrBadResult, n+2, grid.Columns[i], err)
			}
			vals[i] = v
		}
		rows = append(rows, grid.Row{X: vals[0], Y: vals[1], OVLX: vals[2], OVLY: vals[3]})
	}

	res, err := grid.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResult, err)
	}
	return res, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// SaveResult writes r to filename. A .zst, .s2 or .lz4 extension
// compresses the CSV with that codec.
func SaveResult(filename string, r *grid.Result) error {
	var buf bytes.Buffer
	if err := WriteResult(&buf, r); err != nil {
		return err
	}
	codec, err := compress.GetCodec(compress.ForPath(filename))
	if err != nil {
		return err
	}
	data, err := codec.Compress(buf.Bytes())
	if err != nil {
		return fmt.Errorf("compress %s: %w", filename, err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// LoadResult reads a result table saved by SaveResult.
func LoadResult(filename string) (*grid.Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	codec, err := compress.GetCodec(compress.ForPath(filename))
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", filename, err)
	}
	return ReadResult(bytes.NewReader(raw))
}

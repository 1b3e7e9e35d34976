// Package storage reads coefficient tables and reads and writes result
// tables.
package storage

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"ovlmap/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("storage: unsupported file format")
	ErrNoHeader          = errors.New("storage: missing header row")
)

// LoadTable reads a coefficient table from a .csv or .xlsx file. sheet
// selects the worksheet of an .xlsx file; "" means the first one.
func LoadTable(filename, sheet string) (model.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return LoadCSV(filename)
	case ".xlsx", ".xlsm":
		return LoadXLSX(filename, sheet)
	}
	return model.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
}

// LoadCSV reads a coefficient table from a CSV file.
func LoadCSV(filename string) (model.Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	return ReadCSV(bufio.NewReader(f))
}

// xlsxMagic opens every .xlsx file, which is a zip archive.
var xlsxMagic = []byte("PK\x03\x04")

// ReadTable reads a coefficient table from a stream of unknown format: a
// zip archive is read as .xlsx with sheet, anything else as CSV.
func ReadTable(r io.Reader, sheet string) (model.Table, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(xlsxMagic)); bytes.Equal(head, xlsxMagic) {
		return ReadXLSX(br, sheet)
	}
	return ReadCSV(br)
}

// ReadCSV reads a coefficient table: the first record is the header, the
// rest are data rows. Blank lines are ignored.
func ReadCSV(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("error reading CSV: %w", err)
	}
	return tableFromRecords(records)
}

// LoadXLSX reads a coefficient table from a worksheet of an .xlsx file.
func LoadXLSX(filename, sheet string) (model.Table, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	return readWorkbook(f, sheet)
}

// ReadXLSX reads a coefficient table from an .xlsx stream.
func ReadXLSX(r io.Reader, sheet string) (model.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Table{}, err
	}
	defer f.Close()

	return readWorkbook(f, sheet)
}

func readWorkbook(f *excelize.File, sheet string) (model.Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return model.Table{}, fmt.Errorf("%w: workbook has no sheets", ErrNoHeader)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return model.Table{}, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return tableFromRecords(rows)
}

func tableFromRecords(records [][]string) (model.Table, error) {
	if len(records) == 0 {
		return model.Table{}, ErrNoHeader
	}
	cols := append([]string(nil), records[0]...)
	if len(cols) > 0 {
		cols[0] = strings.TrimPrefix(cols[0], "\ufeff")
	}
	t := model.Table{Columns: cols}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(cols))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// SaveTable writes t to filename as CSV, header first.
func SaveTable(t model.Table, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteTable(f, t); err != nil {
		return err
	}
	return f.Close()
}

// WriteTable writes t as CSV, header first.
func WriteTable(w io.Writer, t model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

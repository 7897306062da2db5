/*
Copyright © 2024 the IAMData authors.
This file is part of IAMData.

IAMData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IAMData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IAMData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package sheet reads and writes the rectangular tables that all of the
// data preparation steps consume and produce, from either CSV files or
// sheets within Microsoft Excel workbooks.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/spatialmodel/iamdata/internal/hash"
	"github.com/tealeg/xlsx"
)

// Table is a table of text cells with a header row.
type Table struct {
	Header []string
	Rows   [][]string
}

var (
	fileCache     *requestcache.Cache
	fileCacheOnce sync.Once
)

// loadFile loads a CSV or Excel file from disk, utilizing
// a cache to avoid loading the same file more than once.
// The result is either [][]string or *xlsx.File.
func loadFile(path string) (interface{}, error) {
	fileCacheOnce.Do(func() {
		fileCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			filename := req.(string)
			switch strings.ToLower(filepath.Ext(filename)) {
			case ".csv":
				f, err := os.Open(filename)
				if err != nil {
					return nil, fmt.Errorf("sheet: opening csv file: %v", err)
				}
				defer f.Close()
				r := csv.NewReader(f)
				r.FieldsPerRecord = -1
				r.LazyQuotes = true
				recs, err := r.ReadAll()
				if err != nil {
					return nil, fmt.Errorf("sheet: reading %s: %v", filename, err)
				}
				return recs, nil
			case ".xlsx":
				f, err := xlsx.OpenFile(filename)
				if err != nil {
					return nil, fmt.Errorf("sheet: opening xlsx file: %v", err)
				}
				return f, nil
			default:
				return nil, fmt.Errorf("sheet: unsupported file type %q", filename)
			}
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := fileCache.NewRequest(context.Background(), path, hash.File(path))
	return r.Result()
}

// Read reads the table in the file at path. For Excel files, sheetName
// selects the sheet; it is ignored for CSV files. Rows before headerRow
// (zero-based) are skipped and headerRow holds the column names.
func Read(path, sheetName string, headerRow int) (*Table, error) {
	return ReadFooter(path, sheetName, headerRow, 0)
}

// ReadFooter is like Read but also drops the last skipFooter rows,
// e.g. notes at the bottom of statistical yearbook extracts.
func ReadFooter(path, sheetName string, headerRow, skipFooter int) (*Table, error) {
	f, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	var recs [][]string
	switch f := f.(type) {
	case [][]string:
		recs = f
	case *xlsx.File:
		s, ok := f.Sheet[sheetName]
		if !ok {
			return nil, fmt.Errorf("sheet: reading %s: no sheet %s", path, sheetName)
		}
		recs = make([][]string, len(s.Rows))
		for i, row := range s.Rows {
			if row == nil {
				continue
			}
			recs[i] = make([]string, len(row.Cells))
			for j, c := range row.Cells {
				if c != nil {
					recs[i][j] = c.Value
				}
			}
		}
	}
	if headerRow >= len(recs) {
		return nil, fmt.Errorf("sheet: reading %s: header row %d beyond end of table", path, headerRow)
	}
	t := &Table{Header: trimAll(recs[headerRow])}
	body := recs[headerRow+1:]
	if skipFooter > 0 {
		if skipFooter > len(body) {
			skipFooter = len(body)
		}
		body = body[:len(body)-skipFooter]
	}
	for _, rec := range body {
		row := make([]string, len(t.Header))
		for j := 0; j < len(row) && j < len(rec); j++ {
			row[j] = strings.TrimSpace(rec[j])
		}
		t.Rows = append(t.Rows, row)
	}
	// Drop trailing empty rows.
	for len(t.Rows) > 0 && emptyRow(t.Rows[len(t.Rows)-1]) {
		t.Rows = t.Rows[:len(t.Rows)-1]
	}
	return t, nil
}

func trimAll(s []string) []string {
	o := make([]string, len(s))
	for i, v := range s {
		o[i] = strings.TrimSpace(v)
	}
	return o
}

func emptyRow(r []string) bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// New returns an empty table with the given column names.
func New(header ...string) *Table {
	return &Table{Header: header}
}

// Append adds a row to the table. Values are formatted with fmt.Sprint,
// except float64 values which use the shortest exact representation.
func (t *Table) Append(values ...interface{}) {
	row := make([]string, len(t.Header))
	for i := 0; i < len(row) && i < len(values); i++ {
		switch v := values[i].(type) {
		case float64:
			row[i] = FormatFloat(v)
		case string:
			row[i] = v
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	t.Rows = append(t.Rows, row)
}

// FormatFloat formats v for output; NaN becomes an empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Col returns the index of the named column.
func (t *Table) Col(name string) (int, error) {
	for i, h := range t.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("sheet: missing column %q", name)
}

// Cols returns the indices of the named columns.
func (t *Table) Cols(names ...string) ([]int, error) {
	o := make([]int, len(names))
	for i, n := range names {
		var err error
		if o[i], err = t.Col(n); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// HasCol returns whether the table has the named column.
func (t *Table) HasCol(name string) bool {
	_, err := t.Col(name)
	return err == nil
}

// Float returns the value at the given row and column as a number.
// Empty cells and the placeholders "...", "-" and "NaN" are returned as NaN.
func (t *Table) Float(row, col int) (float64, error) {
	return ParseFloat(t.Rows[row][col])
}

// ParseFloat parses a cell value, treating missing-value markers as NaN.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "...", "-", "nan", "na", "n/a":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", "", -1), 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("sheet: parsing number: %v", err)
	}
	return v, nil
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	o := &Table{Header: t.Header}
	for _, r := range t.Rows {
		if keep(r) {
			o.Rows = append(o.Rows, r)
		}
	}
	return o
}

// Len returns the number of rows in the table.
func (t *Table) Len() int { return len(t.Rows) }

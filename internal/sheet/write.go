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

package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

// Write writes t to path as CSV or, if path ends in ".xlsx", as the
// single sheet "data" of an Excel workbook.
func Write(path string, t *Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, t)
	case ".xlsx":
		return WriteXLSX(path, map[string]*Table{"data": t})
	default:
		return fmt.Errorf("sheet: unsupported output file type %q", path)
	}
}

func writeCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("sheet: creating output file: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("sheet: writing %s: %v", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return fmt.Errorf("sheet: writing %s: %v", path, err)
	}
	return f.Close()
}

// WriteXLSX writes each table to a sheet of an Excel workbook, with
// sheets in alphabetical order. Cells that parse as numbers are
// stored as numbers.
func WriteXLSX(path string, sheets map[string]*Table) error {
	names := make([]string, 0, len(sheets))
	for n := range sheets {
		names = append(names, n)
	}
	sort.Strings(names)

	f := xlsx.NewFile()
	for _, n := range names {
		t := sheets[n]
		s, err := f.AddSheet(n)
		if err != nil {
			return fmt.Errorf("sheet: adding sheet %s: %v", n, err)
		}
		addRow(s, t.Header, false)
		for _, r := range t.Rows {
			addRow(s, r, true)
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("sheet: saving %s: %v", path, err)
	}
	return nil
}

func addRow(s *xlsx.Sheet, values []string, numeric bool) {
	row := s.AddRow()
	for _, v := range values {
		c := row.AddCell()
		if numeric {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.SetFloat(f)
				continue
			}
		}
		c.SetString(v)
	}
}

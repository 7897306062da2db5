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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRead(t *testing.T) {
	tbl, err := Read("testdata/basic.csv", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	wantHeader := []string{"region", "year", "value"}
	if !reflect.DeepEqual(tbl.Header, wantHeader) {
		t.Errorf("header: have %v, want %v", tbl.Header, wantHeader)
	}
	if tbl.Len() != 3 {
		t.Fatalf("have %d rows, want 3", tbl.Len())
	}
	col, err := tbl.Col("value")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1.5, math.NaN(), 1200} {
		have, err := tbl.Float(i, col)
		if err != nil {
			t.Fatal(err)
		}
		if !(have == want || math.IsNaN(have) && math.IsNaN(want)) {
			t.Errorf("row %d: have %g, want %g", i, have, want)
		}
	}
	if _, err := tbl.Col("missing"); err == nil {
		t.Error("expected an error for a missing column")
	}
}

func TestReadFooter(t *testing.T) {
	tbl, err := ReadFooter("testdata/footer.csv", "", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"Beijing", "10", "11"}, {"Tianjin", "5", "6"}}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("have %v, want %v", tbl.Rows, want)
	}
}

func TestFilter(t *testing.T) {
	tbl := New("a", "b")
	tbl.Append("x", 1.0)
	tbl.Append("y", 2.5)
	tbl.Append("x", math.NaN())
	f := tbl.Filter(func(r []string) bool { return r[0] == "x" })
	want := [][]string{{"x", "1"}, {"x", ""}}
	if !reflect.DeepEqual(f.Rows, want) {
		t.Errorf("have %v, want %v", f.Rows, want)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "sheet")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	tbl := New("technology", "value")
	tbl.Append("coal_ppl", 1500.0)
	tbl.Append("wind_ppl", 1200.5)

	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "out"+ext)
			if err := Write(path, tbl); err != nil {
				t.Fatal(err)
			}
			have, err := Read(path, "data", 0)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(have.Header, tbl.Header) || have.Len() != tbl.Len() {
				t.Fatalf("have %v, want %v", have, tbl)
			}
			for i := range tbl.Rows {
				if have.Rows[i][0] != tbl.Rows[i][0] {
					t.Errorf("row %d: have %s, want %s", i, have.Rows[i][0], tbl.Rows[i][0])
				}
				h, _ := have.Float(i, 1)
				w, _ := tbl.Float(i, 1)
				if h != w {
					t.Errorf("row %d: have %g, want %g", i, h, w)
				}
			}
		})
	}
	if err := Write(filepath.Join(dir, "out.txt"), tbl); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
}

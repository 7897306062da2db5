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

package hash

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type key struct {
	A string
	B []float64
}

func TestHash(t *testing.T) {
	a := Hash(key{A: "x", B: []float64{1, 2}})
	b := Hash(key{A: "x", B: []float64{1, 2}})
	c := Hash(key{A: "y", B: []float64{1, 2}})
	if a != b {
		t.Errorf("identical objects: %s != %s", a, b)
	}
	if a == c {
		t.Errorf("different objects have the same hash %s", a)
	}
	if n := Hash(key{B: []float64{math.NaN()}}); n == "" {
		t.Error("empty hash for NaN value")
	}
}

func TestFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "hash")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "f.csv")
	if err := ioutil.WriteFile(path, []byte("a,b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	k1 := File(path)
	if k1 != File(path) {
		t.Error("key changed without modification")
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if k1 == File(path) {
		t.Error("key did not change after modification")
	}
}

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

// Package hash creates cache keys for input files and other objects.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		return fmt.Sprintf("%x", h.Sum(nil))
	}
	// gob cannot encode some values (e.g., nil pointers inside maps),
	// so fall back to a deterministic spew dump.
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	h.Reset()
	printer.Fprintf(h, "%#v", object)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// fileState identifies a version of a file on disk.
type fileState struct {
	Path    string
	Size    int64
	ModTime int64
}

// File returns a key for the file at path that changes whenever the
// file is modified. If the file cannot be inspected, the key depends
// on the path only.
func File(path string) string {
	s := fileState{Path: path}
	if fi, err := os.Stat(path); err == nil {
		s.Size = fi.Size()
		s.ModTime = fi.ModTime().UnixNano()
	}
	return Hash(s)
}

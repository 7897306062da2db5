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

package param

import (
	"fmt"
	"sort"
)

// Commodity identifies a commodity at a level, with the unit of flows of
// it.
type Commodity struct {
	Commodity, Level, Unit string
}

// MakeIO returns matching input and output data for a technology
// converting src into dest. The side named by on ("input" or "output")
// carries efficiency; the other side is 1.
func MakeIO(src, dest Commodity, efficiency float64, on string, index map[string]string) (input, output *Data, err error) {
	inVal, outVal := efficiency, 1.0
	switch on {
	case "input":
	case "output":
		inVal, outVal = 1.0, efficiency
	default:
		return nil, nil, fmt.Errorf("param: MakeIO: on must be input or output, not %q", on)
	}
	in := copyIndex(index)
	in["commodity"], in["level"] = src.Commodity, src.Level
	if input, err = New("input", in, inVal, src.Unit); err != nil {
		return nil, nil, err
	}
	out := copyIndex(index)
	out["commodity"], out["level"] = dest.Commodity, dest.Level
	if output, err = New("output", out, outVal, dest.Unit); err != nil {
		return nil, nil, err
	}
	return input, output, nil
}

func copyIndex(index map[string]string) map[string]string {
	o := make(map[string]string, len(index)+2)
	for k, v := range index {
		o[k] = v
	}
	return o
}

// Value is a parameter value with its unit.
type Value struct {
	Value float64
	Unit  string
}

// MakeMatched returns data for each parameter in values, with one row
// for each distinct combination of the index labels of base that the
// parameter shares.
func MakeMatched(base *Data, values map[string]Value) (map[string]*Data, error) {
	o := make(map[string]*Data, len(values))
	for name, v := range values {
		dims, ok := Dims[name]
		if !ok {
			return nil, fmt.Errorf("param: unknown parameter %q", name)
		}
		d := &Data{Name: name}
		for _, r := range base.Rows {
			idx := make(map[string]string)
			for _, dim := range dims {
				if l, ok := r.Index[dim]; ok {
					idx[dim] = l
				}
			}
			d.Rows = append(d.Rows, Row{Index: idx, Value: v.Value, Unit: v.Unit})
		}
		o[name] = d.Dedupe()
	}
	return o, nil
}

// Info describes the structure of a model scenario.
type Info struct {
	// Nodes are the model regions.
	Nodes []string
	// Years are all periods, including historical ones.
	Years []int
	// Y0 is the first model year.
	Y0 int
}

// ModelYears returns the years from Y0 on.
func (i *Info) ModelYears() []int {
	var o []int
	for _, y := range i.sortedYears() {
		if y >= i.Y0 {
			o = append(o, y)
		}
	}
	return o
}

func (i *Info) sortedYears() []int {
	y := append([]int{}, i.Years...)
	sort.Ints(y)
	return y
}

// YVYA returns every (vintage, activity) year pair of model years with
// activity no earlier than vintage.
func (i *Info) YVYA() [][2]int {
	my := i.ModelYears()
	var o [][2]int
	for _, yv := range my {
		for _, ya := range my {
			if ya >= yv {
				o = append(o, [2]int{yv, ya})
			}
		}
	}
	return o
}

// YearLabels formats years as index labels.
func YearLabels(years []int) []string {
	o := make([]string, len(years))
	for i, y := range years {
		o[i] = fmt.Sprint(y)
	}
	return o
}

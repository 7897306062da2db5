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

// Package param holds parameter data for the energy model: named tables
// indexed by model dimensions (node, technology, year, commodity, ...)
// with a value and a unit, along with helpers to construct them.
package param

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spatialmodel/iamdata/internal/sheet"
)

// Dims holds the index dimensions of each known parameter, in order.
var Dims = map[string][]string{
	"input":               {"node_loc", "technology", "year_vtg", "year_act", "mode", "node_origin", "commodity", "level", "time", "time_origin"},
	"output":              {"node_loc", "technology", "year_vtg", "year_act", "mode", "node_dest", "commodity", "level", "time", "time_dest"},
	"emission_factor":     {"node_loc", "technology", "year_vtg", "year_act", "mode", "emission"},
	"var_cost":            {"node_loc", "technology", "year_vtg", "year_act", "mode", "time"},
	"fix_cost":            {"node_loc", "technology", "year_vtg", "year_act"},
	"inv_cost":            {"node_loc", "technology", "year_vtg"},
	"capacity_factor":     {"node_loc", "technology", "year_vtg", "year_act", "time"},
	"technical_lifetime":  {"node_loc", "technology", "year_vtg"},
	"demand":              {"node", "commodity", "level", "year", "time"},
	"historical_activity": {"node_loc", "technology", "year_act", "mode", "time"},
	"growth_activity_lo":  {"node_loc", "technology", "year_act", "time"},
	"growth_activity_up":  {"node_loc", "technology", "year_act", "time"},
	"bound_activity_lo":   {"node_loc", "technology", "year_act", "mode", "time"},
	"bound_activity_up":   {"node_loc", "technology", "year_act", "mode", "time"},
	"relation_activity":   {"relation", "node_rel", "year_rel", "node_loc", "technology", "year_act", "mode"},
	"relation_upper":      {"relation", "node_rel", "year_rel"},
	"relation_lower":      {"relation", "node_rel", "year_rel"},
}

// Row is one entry of a parameter.
type Row struct {
	Index map[string]string
	Value float64
	Unit  string
}

func (r Row) clone() Row {
	idx := make(map[string]string, len(r.Index))
	for k, v := range r.Index {
		idx[k] = v
	}
	return Row{Index: idx, Value: r.Value, Unit: r.Unit}
}

// Data holds the rows of one parameter.
type Data struct {
	Name string
	Rows []Row
}

func checkDims(name string, index map[string]string) error {
	dims, ok := Dims[name]
	if !ok {
		return fmt.Errorf("param: unknown parameter %q", name)
	}
	for k := range index {
		if !contains(dims, k) {
			return fmt.Errorf("param: %s has no dimension %q", name, k)
		}
	}
	return nil
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// New returns data for parameter name with a single row.
// Dimensions missing from index can be filled later,
// e.g. with Broadcast.
func New(name string, index map[string]string, value float64, unit string) (*Data, error) {
	if err := checkDims(name, index); err != nil {
		return nil, err
	}
	r := Row{Index: map[string]string{}, Value: value, Unit: unit}
	for k, v := range index {
		r.Index[k] = v
	}
	return &Data{Name: name, Rows: []Row{r}}, nil
}

// Make returns data for parameter name with a single row, keeping only
// the entries of index that are dimensions of the parameter.
func Make(name string, index map[string]string, value float64, unit string) (*Data, error) {
	dims, ok := Dims[name]
	if !ok {
		return nil, fmt.Errorf("param: unknown parameter %q", name)
	}
	r := Row{Index: map[string]string{}, Value: value, Unit: unit}
	for k, v := range index {
		if contains(dims, k) {
			r.Index[k] = v
		}
	}
	return &Data{Name: name, Rows: []Row{r}}, nil
}

// NewSeries returns data for parameter name with one row per year,
// where the year label is stored in dimension yearDim.
func NewSeries(name string, index map[string]string, yearDim string, years []int, values []float64, unit string) (*Data, error) {
	if len(years) != len(values) {
		return nil, fmt.Errorf("param: %s: %d years but %d values", name, len(years), len(values))
	}
	if err := checkDims(name, index); err != nil {
		return nil, err
	}
	if !contains(Dims[name], yearDim) {
		return nil, fmt.Errorf("param: %s has no dimension %q", name, yearDim)
	}
	d := &Data{Name: name}
	for i, y := range years {
		r := Row{Index: map[string]string{yearDim: fmt.Sprint(y)}, Value: values[i], Unit: unit}
		for k, v := range index {
			r.Index[k] = v
		}
		d.Rows = append(d.Rows, r)
	}
	return d, nil
}

// Dims returns the dimensions of d.
func (d *Data) Dims() []string { return Dims[d.Name] }

// Len returns the number of rows.
func (d *Data) Len() int { return len(d.Rows) }

// Broadcast returns a copy of d where every row with an empty value for
// dim is replaced by one row per label.
func (d *Data) Broadcast(dim string, labels ...string) *Data {
	o := &Data{Name: d.Name}
	for _, r := range d.Rows {
		if r.Index[dim] != "" {
			o.Rows = append(o.Rows, r.clone())
			continue
		}
		for _, l := range labels {
			c := r.clone()
			c.Index[dim] = l
			o.Rows = append(o.Rows, c)
		}
	}
	return o
}

// BroadcastYears returns a copy of d where every row without
// year_vtg and year_act is replaced by one row per (vintage, activity)
// pair. For parameters indexed by only one of the two, rows are
// replaced by one row per distinct year of that kind.
func (d *Data) BroadcastYears(pairs [][2]int) *Data {
	hasVtg, hasAct := contains(d.Dims(), "year_vtg"), contains(d.Dims(), "year_act")
	var sel [][2]int
	seen := make(map[[2]int]bool)
	for _, p := range pairs {
		switch {
		case hasVtg && hasAct:
		case hasVtg:
			p[1] = 0
		case hasAct:
			p[0] = 0
		default:
			return d.copy()
		}
		if !seen[p] {
			seen[p] = true
			sel = append(sel, p)
		}
	}
	o := &Data{Name: d.Name}
	for _, r := range d.Rows {
		if r.Index["year_vtg"] != "" || r.Index["year_act"] != "" {
			o.Rows = append(o.Rows, r.clone())
			continue
		}
		for _, p := range sel {
			c := r.clone()
			if hasVtg {
				c.Index["year_vtg"] = fmt.Sprint(p[0])
			}
			if hasAct {
				c.Index["year_act"] = fmt.Sprint(p[1])
			}
			o.Rows = append(o.Rows, c)
		}
	}
	return o
}

func (d *Data) copy() *Data {
	o := &Data{Name: d.Name, Rows: make([]Row, len(d.Rows))}
	for i, r := range d.Rows {
		o.Rows[i] = r.clone()
	}
	return o
}

// Fill sets the given index values on every row where they are empty
// and returns d.
func (d *Data) Fill(index map[string]string) *Data {
	for _, r := range d.Rows {
		for k, v := range index {
			if r.Index[k] == "" && contains(d.Dims(), k) {
				r.Index[k] = v
			}
		}
	}
	return d
}

// CopyColumn copies the value of dimension from into dimension to on
// every row where to is empty, and returns d.
func (d *Data) CopyColumn(from, to string) *Data {
	if !contains(d.Dims(), to) {
		return d
	}
	for _, r := range d.Rows {
		if r.Index[to] == "" {
			r.Index[to] = r.Index[from]
		}
	}
	return d
}

// SameNode fills node_origin, node_dest and node_rel from node_loc.
func (d *Data) SameNode() *Data {
	for _, dim := range []string{"node_origin", "node_dest", "node_rel"} {
		d.CopyColumn("node_loc", dim)
	}
	return d
}

// SameTime fills time_origin and time_dest from time.
func (d *Data) SameTime() *Data {
	return d.CopyColumn("time", "time_origin").CopyColumn("time", "time_dest")
}

// Key returns a canonical string for the index of r.
func (d *Data) Key(r Row) string {
	dims := d.Dims()
	v := make([]string, len(dims))
	for i, dim := range dims {
		v[i] = r.Index[dim]
	}
	return strings.Join(v, "|")
}

// Complete returns an error if any row is missing a dimension.
func (d *Data) Complete() error {
	for i, r := range d.Rows {
		for _, dim := range d.Dims() {
			if r.Index[dim] == "" {
				return fmt.Errorf("param: %s row %d: missing dimension %s", d.Name, i, dim)
			}
		}
	}
	return nil
}

// Dedupe removes rows whose index repeats an earlier row's; the later
// value wins. Row order follows first appearance.
func (d *Data) Dedupe() *Data {
	pos := make(map[string]int)
	o := &Data{Name: d.Name}
	for _, r := range d.Rows {
		k := d.Key(r)
		if i, ok := pos[k]; ok {
			o.Rows[i] = r
			continue
		}
		pos[k] = len(o.Rows)
		o.Rows = append(o.Rows, r)
	}
	return o
}

// Select returns the rows of d that match every filter, where a filter
// maps a dimension to the accepted labels.
func (d *Data) Select(filters map[string][]string) *Data {
	o := &Data{Name: d.Name}
	for _, r := range d.Rows {
		if Match(r, filters) {
			o.Rows = append(o.Rows, r)
		}
	}
	return o
}

// Match returns whether r matches every filter.
func Match(r Row, filters map[string][]string) bool {
	for dim, labels := range filters {
		if len(labels) > 0 && !contains(labels, r.Index[dim]) {
			return false
		}
	}
	return true
}

// Table converts d to a table with one column per dimension
// followed by value and unit.
func (d *Data) Table() *sheet.Table {
	t := sheet.New(append(append([]string{}, d.Dims()...), "value", "unit")...)
	for _, r := range d.Rows {
		row := make([]interface{}, 0, len(t.Header))
		for _, dim := range d.Dims() {
			row = append(row, r.Index[dim])
		}
		row = append(row, r.Value, r.Unit)
		t.Append(row...)
	}
	return t
}

// FromTable reads parameter name from a table with columns named as in
// Table. Dimension columns that are absent are left empty.
func FromTable(name string, t *sheet.Table) (*Data, error) {
	dims, ok := Dims[name]
	if !ok {
		return nil, fmt.Errorf("param: unknown parameter %q", name)
	}
	valCol, err := t.Col("value")
	if err != nil {
		return nil, fmt.Errorf("param: reading %s: %v", name, err)
	}
	unitCol, _ := t.Col("unit")
	d := &Data{Name: name}
	for i, row := range t.Rows {
		v, err := t.Float(i, valCol)
		if err != nil {
			return nil, fmt.Errorf("param: reading %s: %v", name, err)
		}
		r := Row{Index: map[string]string{}, Value: v}
		if unitCol >= 0 {
			r.Unit = row[unitCol]
		}
		for _, dim := range dims {
			if c, err := t.Col(dim); err == nil {
				r.Index[dim] = row[c]
			}
		}
		d.Rows = append(d.Rows, r)
	}
	return d, nil
}

// Merge appends the rows of each parameter in src to the parameter of the
// same name in dst.
func Merge(dst map[string]*Data, src ...map[string]*Data) {
	for _, s := range src {
		for name, d := range s {
			if existing, ok := dst[name]; ok {
				existing.Rows = append(existing.Rows, d.Rows...)
				continue
			}
			dst[name] = &Data{Name: name, Rows: append([]Row{}, d.Rows...)}
		}
	}
}

// Names returns the sorted parameter names in m.
func Names(m map[string]*Data) []string {
	o := make([]string, 0, len(m))
	for n := range m {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

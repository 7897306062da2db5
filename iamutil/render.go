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

package iamutil

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spatialmodel/iamdata/costs"
	"github.com/spatialmodel/iamdata/material"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/store"
	"github.com/spatialmodel/iamdata/transport"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// renderData prints the number of rows of each parameter in data.
func renderData(w io.Writer, title string, data map[string]*param.Data) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Parameter", "Rows"})
	total := 0
	for _, name := range param.Names(data) {
		t.AppendRow(table.Row{name, data[name].Len()})
		total += data[name].Len()
	}
	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

type costRange struct{ min, max float64 }

func (r *costRange) add(v float64) {
	r.min = math.Min(r.min, v)
	r.max = math.Max(r.max, v)
}

// renderCosts prints, for each scenario version, scenario and technology,
// the range of investment costs across regions in the first and last
// projection years.
func renderCosts(w io.Writer, rows []costs.CostRow) {
	type key struct{ version, scenario, technology string }
	first := make(map[key]*costRange)
	last := make(map[key]*costRange)
	var keys []key
	for _, r := range rows {
		k := key{r.ScenarioVersion, r.Scenario, r.Technology}
		var m map[key]*costRange
		switch r.Year {
		case costs.FirstModelYear:
			m = first
		case costs.LastModelYear:
			m = last
		default:
			continue
		}
		if _, ok := first[k]; !ok {
			if _, ok := last[k]; !ok {
				keys = append(keys, k)
			}
		}
		if m[k] == nil {
			m[k] = &costRange{min: math.Inf(1), max: math.Inf(-1)}
		}
		m[k].add(r.InvCost)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].version != keys[j].version {
			return keys[i].version < keys[j].version
		}
		if keys[i].scenario != keys[j].scenario {
			return keys[i].scenario < keys[j].scenario
		}
		return keys[i].technology < keys[j].technology
	})
	t := newTable(w, "Investment costs ("+costs.Unit+")")
	t.AppendHeader(table.Row{"Version", "Scenario", "Technology",
		fmt.Sprint(costs.FirstModelYear), fmt.Sprint(costs.LastModelYear)})
	for _, k := range keys {
		t.AppendRow(table.Row{k.version, k.scenario, k.technology, first[k].String(), last[k].String()})
	}
	t.Render()
}

func (r *costRange) String() string {
	if r == nil {
		return "-"
	}
	if r.min == r.max {
		return fmt.Sprintf("%.0f", r.min)
	}
	return fmt.Sprintf("%.0f to %.0f", r.min, r.max)
}

// renderCommits prints a commit log.
func renderCommits(w io.Writer, scenario string, commits []store.Commit) {
	t := newTable(w, "Scenario "+scenario)
	t.AppendHeader(table.Row{"ID", "Time", "Comment"})
	for _, c := range commits {
		t.AppendRow(table.Row{c.ID, c.Time, c.Comment})
	}
	t.Render()
}

// renderShares prints industry final energy shares by region.
func renderShares(w io.Writer, sh *material.Shares) {
	regions := make(map[string]bool)
	for _, m := range []map[string]float64{sh.Spec, sh.Feed, sh.Therm} {
		for r := range m {
			regions[r] = true
		}
	}
	names := make([]string, 0, len(regions))
	for r := range regions {
		names = append(names, r)
	}
	sort.Strings(names)
	share := func(m map[string]float64, r string) string {
		if v, ok := m[r]; ok {
			return fmt.Sprintf("%.3f", v)
		}
		return "-"
	}
	t := newTable(w, "Industry final energy shares")
	t.AppendHeader(table.Row{"Region", "Specific", "Feedstock", "Thermal"})
	for _, r := range names {
		t.AppendRow(table.Row{r, share(sh.Spec, r), share(sh.Feed, r), share(sh.Therm, r)})
	}
	t.Render()
}

// renderTransport prints the number of values and the year range of each
// country and variable in rows.
func renderTransport(w io.Writer, rows []transport.Row) {
	type key struct{ iso, variable, units string }
	type span struct{ n, first, last int }
	spans := make(map[key]*span)
	var keys []key
	for _, r := range rows {
		k := key{r.ISO, r.Variable, r.Units}
		s, ok := spans[k]
		if !ok {
			s = &span{first: r.Year, last: r.Year}
			spans[k] = s
			keys = append(keys, k)
		}
		s.n++
		if r.Year < s.first {
			s.first = r.Year
		}
		if r.Year > s.last {
			s.last = r.Year
		}
	}
	t := newTable(w, "Transport statistics")
	t.AppendHeader(table.Row{"ISO Code", "Variable", "Units", "Values", "Years"})
	for _, k := range keys {
		s := spans[k]
		t.AppendRow(table.Row{k.iso, k.variable, k.units, s.n, fmt.Sprintf("%d-%d", s.first, s.last)})
	}
	t.Render()
}

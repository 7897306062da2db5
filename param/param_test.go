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
	"reflect"
	"testing"

	"github.com/kr/pretty"
)

func TestNew(t *testing.T) {
	if _, err := New("bogus", nil, 1, ""); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
	if _, err := New("inv_cost", map[string]string{"commodity": "coal"}, 1, ""); err == nil {
		t.Error("expected an error for an unknown dimension")
	}
	d, err := New("inv_cost", map[string]string{"technology": "coal_ppl"}, 1500, "USD/kWa")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 || d.Rows[0].Value != 1500 {
		t.Errorf("unexpected data %# v", pretty.Formatter(d))
	}
}

func TestBroadcast(t *testing.T) {
	d, err := NewSeries("demand", map[string]string{"commodity": "steel", "level": "demand", "time": "year"},
		"year", []int{2020, 2025}, []float64{1, 2}, "Mt")
	if err != nil {
		t.Fatal(err)
	}
	b := d.Broadcast("node", "R12_CHN", "R12_NAM")
	if b.Len() != 4 {
		t.Fatalf("have %d rows, want 4", b.Len())
	}
	if err := b.Complete(); err != nil {
		t.Error(err)
	}
	if err := d.Complete(); err == nil {
		t.Error("expected incomplete data before broadcasting")
	}
	// The original is unchanged.
	if d.Rows[0].Index["node"] != "" {
		t.Error("broadcast modified its receiver")
	}
}

func TestSameNodeSameTime(t *testing.T) {
	d, _ := New("input", map[string]string{"node_loc": "R12_AFR", "time": "year"}, 1, "")
	d.SameNode().SameTime()
	want := map[string]string{"node_loc": "R12_AFR", "node_origin": "R12_AFR",
		"time": "year", "time_origin": "year"}
	if !reflect.DeepEqual(d.Rows[0].Index, want) {
		t.Error(pretty.Diff(d.Rows[0].Index, want))
	}
}

func TestMakeIO(t *testing.T) {
	in, out, err := MakeIO(Commodity{"coal", "final", "GWa"}, Commodity{"electr", "secondary", "GWa"},
		0.4, "output", map[string]string{"technology": "coal_ppl"})
	if err != nil {
		t.Fatal(err)
	}
	if in.Rows[0].Value != 1 || out.Rows[0].Value != 0.4 {
		t.Errorf("have input %g output %g", in.Rows[0].Value, out.Rows[0].Value)
	}
	if in.Rows[0].Index["commodity"] != "coal" || out.Rows[0].Index["level"] != "secondary" {
		t.Errorf("wrong labels: %v %v", in.Rows[0].Index, out.Rows[0].Index)
	}
	if _, _, err := MakeIO(Commodity{}, Commodity{}, 1, "both", nil); err == nil {
		t.Error("expected an error")
	}
}

func TestMakeMatched(t *testing.T) {
	base, _ := New("output", map[string]string{"node_loc": "R12_AFR", "technology": "2W", "commodity": "transport"}, 1, "")
	base = base.Broadcast("year_act", "2020", "2025").Broadcast("year_vtg", "2020")
	m, err := MakeMatched(base, map[string]Value{
		"capacity_factor": {1, ""},
		"var_cost":        {1, "USD"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if m["capacity_factor"].Len() != 2 || m["var_cost"].Len() != 2 {
		t.Errorf("have %d, %d rows", m["capacity_factor"].Len(), m["var_cost"].Len())
	}
	if _, ok := m["var_cost"].Rows[0].Index["commodity"]; ok {
		t.Error("var_cost should not have a commodity dimension")
	}
}

func TestDedupe(t *testing.T) {
	d, _ := New("inv_cost", map[string]string{"node_loc": "a", "technology": "t", "year_vtg": "2020"}, 1, "")
	d2, _ := New("inv_cost", map[string]string{"node_loc": "a", "technology": "t", "year_vtg": "2020"}, 2, "")
	d.Rows = append(d.Rows, d2.Rows...)
	o := d.Dedupe()
	if o.Len() != 1 || o.Rows[0].Value != 2 {
		t.Errorf("have %# v", pretty.Formatter(o.Rows))
	}
}

func TestTableRoundTrip(t *testing.T) {
	d, _ := NewSeries("growth_activity_lo", map[string]string{"node_loc": "R11_CPA", "technology": "coal_i", "time": "year"},
		"year_act", []int{2020}, []float64{-0.05}, "-")
	have, err := FromTable(d.Name, d.Table())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, d) {
		t.Error(pretty.Diff(have, d))
	}
}

func TestInfo(t *testing.T) {
	i := &Info{Years: []int{2030, 2010, 2020}, Y0: 2020}
	if have, want := i.ModelYears(), []int{2020, 2030}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	want := [][2]int{{2020, 2020}, {2020, 2030}, {2030, 2030}}
	if have := i.YVYA(); !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestBroadcastYears(t *testing.T) {
	pairs := [][2]int{{2020, 2020}, {2020, 2030}, {2030, 2030}}
	for _, c := range []struct {
		name string
		want int
	}{
		{"fix_cost", 3},
		{"inv_cost", 2},
		{"growth_activity_lo", 2},
		{"relation_upper", 1},
	} {
		t.Run(c.name, func(t *testing.T) {
			d, err := Make(c.name, map[string]string{"technology": "t", "relation": "r"}, 1, "")
			if err != nil {
				t.Fatal(err)
			}
			if have := d.BroadcastYears(pairs).Len(); have != c.want {
				t.Errorf("have %d rows, want %d", have, c.want)
			}
		})
	}
}

func TestMake(t *testing.T) {
	d, err := Make("inv_cost", map[string]string{"technology": "t", "commodity": "c"}, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Rows[0].Index["commodity"]; ok {
		t.Error("Make kept a dimension inv_cost does not have")
	}
	if _, err := Make("bogus", nil, 1, ""); err == nil {
		t.Error("expected an error for an unknown parameter")
	}
}

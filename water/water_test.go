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

package water

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/store"
	"gonum.org/v1/gonum/floats/scalar"
)

func near(a, b float64) bool { return scalar.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) }

var (
	testInfo  = &param.Info{Nodes: []string{"World", "R11_AFR", "R11_CPA"}, Years: []int{2010, 2020, 2030}, Y0: 2020}
	testTechs = []string{"coal_ppl", "wind_ppl"}
)

func testPerformance(t *testing.T) []TechPerformance {
	perf, err := ReadTechPerformance("testdata/tech_water_performance.csv")
	if err != nil {
		t.Fatal(err)
	}
	return perf
}

func TestWaterIntensity(t *testing.T) {
	v, err := waterIntensity(1)
	if err != nil {
		t.Fatal(err)
	}
	if !near(v, 31.536) {
		t.Errorf("have %g MCM/GWa, want 31.536", v)
	}
}

func TestReadTechPerformance(t *testing.T) {
	perf := testPerformance(t)
	if len(perf) != 5 {
		t.Fatalf("have %d rows, want 5", len(perf))
	}
	p := perf[0]
	if p.Name != "coal_ppl__ot_fresh" || p.Parent != "coal_ppl" || p.Withdrawal != 1.5 || p.Parasitic != 0.01 {
		t.Errorf("have %+v", p)
	}
}

func TestNonCoolingTec(t *testing.T) {
	data, err := NonCoolingTec(testInfo, testPerformance(t), testTechs)
	if err != nil {
		t.Fatal(err)
	}
	in := data["input"]
	if in.Len() != 6 {
		t.Fatalf("have %d rows, want 6", in.Len())
	}
	if err := in.Complete(); err != nil {
		t.Error(err)
	}
	for _, r := range in.Rows {
		if r.Index["technology"] != "coal_ppl" || r.Index["commodity"] != "freshwater" || r.Unit != Unit {
			t.Errorf("row %v", r)
		}
		if !near(r.Value, 0.1*31.536) {
			t.Errorf("have %g", r.Value)
		}
	}
}

func TestNonCoolingTecMissingWithdrawal(t *testing.T) {
	perf := append(testPerformance(t), TechPerformance{
		Group: "non-cooling", Name: "wind_ppl", Parent: "wind_ppl",
		SupplyType: "freshwater_supply", Withdrawal: math.NaN(), Parasitic: math.NaN(),
	})
	data, err := NonCoolingTec(testInfo, perf, testTechs)
	if err != nil {
		t.Fatal(err)
	}
	in := data["input"]
	if in.Len() != 6 {
		t.Errorf("have %d rows, want 6", in.Len())
	}
	for _, r := range in.Rows {
		if r.Index["technology"] == "wind_ppl" || math.IsNaN(r.Value) {
			t.Errorf("row %v", r)
		}
	}
}

func TestCoolTech(t *testing.T) {
	data, err := CoolTech(testInfo, testPerformance(t), testTechs)
	if err != nil {
		t.Fatal(err)
	}
	for name, n := range map[string]int{"input": 18, "output": 12} {
		if data[name].Len() != n {
			t.Errorf("%s: have %d rows, want %d", name, data[name].Len(), n)
		}
		if err := data[name].Complete(); err != nil {
			t.Error(err)
		}
	}
	w := data["input"].Select(map[string][]string{"commodity": {"freshwater"}})
	if w.Len() != 6 || w.Rows[0].Index["technology"] != "coal_ppl__ot_fresh" {
		t.Errorf("water input: %v", w.Rows)
	}
	e := data["input"].Select(map[string][]string{"commodity": {"electr"}, "technology": {"coal_ppl__air"}})
	if e.Len() != 6 || e.Rows[0].Value != 0.05 {
		t.Errorf("parasitic electricity: %v", e.Rows)
	}
	for _, r := range data["output"].Rows {
		if r.Index["commodity"] != "cooling__coal_ppl" {
			t.Errorf("output %v", r.Index)
		}
	}
}

func TestAddData(t *testing.T) {
	dir, err := ioutil.TempDir("", "water")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	s, err := store.Open(filepath.Join(dir, "test.db"), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	log := logrus.New()
	log.Out = ioutil.Discard
	s.Log = log
	ctx := context.Background()
	if err := s.Transact(ctx, "technologies", func(tx *store.Tx) error {
		return tx.AddSet("technology", testTechs...)
	}); err != nil {
		t.Fatal(err)
	}
	perf := testPerformance(t)
	if err := AddData(ctx, s, testInfo, perf, "desalination", false, log); err == nil {
		t.Error("expected an error for an unknown function set")
	}
	if err := AddData(ctx, s, testInfo, perf, "nexus", false, log); err != nil {
		t.Fatal(err)
	}
	in, err := s.Par(ctx, "input", nil)
	if err != nil {
		t.Fatal(err)
	}
	if in.Len() != 24 {
		t.Errorf("have %d input rows, want 24", in.Len())
	}
	commits, err := s.Commits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 3 {
		t.Errorf("have %d commits, want 3", len(commits))
	}
}

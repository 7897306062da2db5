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

package costs

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats/scalar"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Scenario = "SSP2"
	log := logrus.New()
	log.Out = ioutil.Discard
	cfg.Log = log
	return cfg
}

func testInputs(t *testing.T, cfg Config) *Inputs {
	in, err := LoadInputs("testdata", cfg)
	if err != nil {
		t.Fatal(err)
	}
	return in
}

func near(a, b float64) bool { return scalar.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) }

func TestCheck(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Check(); err != nil {
		t.Fatal(err)
	}
	if cfg.RefRegion != "R12_NAM" {
		t.Errorf("default reference region: have %s, want R12_NAM", cfg.RefRegion)
	}
	bad := []func(c *Config){
		func(c *Config) { c.Node = "R5" },
		func(c *Config) { c.RefRegion = "R11_NAM" },
		func(c *Config) { c.Method = "magic" },
		func(c *Config) { c.Module = "buildings" },
		func(c *Config) { c.Scenario = "SSP9" },
		func(c *Config) { c.ScenarioVersion = "newest" },
		func(c *Config) { c.Format = "json" },
		func(c *Config) { c.ConvergenceYear = 2020 },
		func(c *Config) { c.ConvergenceYear = 2110 },
		func(c *Config) { c.FOMRate = -1 },
	}
	for i, f := range bad {
		c := DefaultConfig()
		f(&c)
		if err := c.Check(); err == nil {
			t.Errorf("case %d: expected an error", i)
		}
	}
	c := DefaultConfig()
	c.Scenario = "ssp3"
	c.Node = "r11"
	if err := c.Check(); err != nil {
		t.Fatal(err)
	}
	if c.Scenario != "SSP3" || c.RefRegion != "R11_NAM" {
		t.Errorf("have scenario %s, reference region %s", c.Scenario, c.RefRegion)
	}
	if s := c.Scenarios(); len(s) != 1 || s[0] != "SSP3" {
		t.Errorf("scenarios: have %v", s)
	}
	c.ScenarioVersion = "all"
	if v := c.ScenarioVersions(); len(v) != 2 {
		t.Errorf("scenario versions: have %v", v)
	}
}

func TestLoadInputs(t *testing.T) {
	cfg := testConfig()
	in := testInputs(t, cfg)
	if len(in.Regions) != 4 || in.RegionMap["R12_CHN"] != "China" {
		t.Errorf("regions: have %v %v", in.Regions, in.RegionMap)
	}
	if len(in.Technologies) != 3 || !math.IsNaN(in.Technologies[1].RefInvCost) {
		t.Errorf("technologies: have %+v", in.Technologies)
	}
	if in.Reductions["wind_ppl"]["high"] != 0.6 {
		t.Errorf("reductions: have %v", in.Reductions["wind_ppl"])
	}
	if in.LearningLevels["coal_ppl"]["SSP3"] != "high" {
		t.Errorf("learning levels: have %v", in.LearningLevels["coal_ppl"])
	}

	cfg.Module = "materials"
	in = testInputs(t, cfg)
	if len(in.Technologies) != 3 || in.Technologies[1].RefInvCost != 1400 {
		t.Errorf("materials technologies: have %+v", in.Technologies)
	}

	if _, err := LoadInputs("nonexistent", testConfig()); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestRegionalDifferentiation(t *testing.T) {
	cfg := testConfig()
	diff, err := RegionalDifferentiation(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff) != 8 {
		t.Fatalf("have %d rows, want 8 (nuclear has no reference region data)", len(diff))
	}
	want := map[string]RegionalDiff{
		"coal_ppl R12_NAM": {RegCostRatio: 1, FixRatio: 0.025, RegCostBaseYear: 2000},
		"coal_ppl R12_CHN": {RegCostRatio: 0.4, FixRatio: 0.025, RegCostBaseYear: 800},
		"coal_ppl R12_WEU": {RegCostRatio: 1.1, FixRatio: 60.0 / 2200, RegCostBaseYear: 2200},
		"coal_ppl R12_AFR": {RegCostRatio: 1, FixRatio: 0.025, RegCostBaseYear: 2000},
		"wind_ppl R12_CHN": {RegCostRatio: 0.8, FixRatio: 0.025, RegCostBaseYear: 1200},
	}
	for _, d := range diff {
		w, ok := want[d.Technology+" "+d.Region]
		if !ok {
			continue
		}
		if !near(d.RegCostRatio, w.RegCostRatio) || !near(d.FixRatio, w.FixRatio) || !near(d.RegCostBaseYear, w.RegCostBaseYear) {
			t.Errorf("%s %s: have %+v, want %+v", d.Technology, d.Region, d, w)
		}
	}
}

func TestRegionalDifferentiationRefCost(t *testing.T) {
	cfg := testConfig()
	cfg.Module = "materials"
	diff, err := RegionalDifferentiation(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range diff {
		if d.Technology == "wind_ppl" && d.Region == "R12_CHN" && !near(d.RegCostBaseYear, 1120) {
			t.Errorf("have %g, want 1120", d.RegCostBaseYear)
		}
	}
}

func TestRegionalDifferentiationBadRef(t *testing.T) {
	cfg := testConfig()
	cfg.RefRegion = "R12_XXX"
	if _, err := RegionalDifferentiation(testInputs(t, testConfig()), cfg); err == nil {
		t.Error("expected an error for an unmapped reference region")
	}
}

func TestLearningCurve(t *testing.T) {
	const c0 = 1000.0
	if v := LearningCurve(c0, 0.5, 2020, 2020); v != c0 {
		t.Errorf("first model year: have %g, want %g", v, c0)
	}
	if v := LearningCurve(c0, 0.5, 2020, 2100); !near(v, 500) {
		t.Errorf("last model year: have %g, want 500", v)
	}
	prev := c0
	for y := 2025; y <= 2100; y += 5 {
		v := LearningCurve(c0, 0.5, 2020, y)
		if v >= prev {
			t.Errorf("%d: cost %g did not fall from %g", y, v, prev)
		}
		prev = v
	}
	if v := LearningCurve(c0, 0, 2020, 2060); !near(v, c0) {
		t.Errorf("no reduction: have %g, want %g", v, c0)
	}
	// A later first year delays the decay.
	if a, b := LearningCurve(c0, 0.5, 2020, 2050), LearningCurve(c0, 0.5, 2030, 2050); !(b > a) {
		t.Errorf("delayed learning: %g should be greater than %g", b, a)
	}
}

func TestLearningProjections(t *testing.T) {
	cfg := testConfig()
	cfg.Scenario = "all"
	in := testInputs(t, cfg)
	diff, err := RegionalDifferentiation(in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	l, err := LearningProjections(diff, in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := len(l), 6*2*17; have != want {
		t.Errorf("have %d rows, want %d", have, want)
	}
	for _, r := range l {
		if r.Technology == "wind_ppl" && r.Scenario == "SSP1" && r.Year == 2100 && !near(r.InvCost, 1500*0.3) {
			t.Errorf("wind SSP1 2100: have %g, want %g", r.InvCost, 1500*0.3)
		}
	}

	in.Reductions["coal_ppl"]["medium"] = 1.5
	if _, err := LearningProjections(diff, in, testConfig()); err == nil {
		t.Error("expected an error for an invalid reduction")
	}
}

func TestAdjustCostRatiosWithGDP(t *testing.T) {
	cfg := testConfig()
	cfg.Node = "R11"
	cfg.RefRegion = "R11_NAM"
	gdp := func(region string, year int, pc float64) GDPRecord {
		return GDPRecord{ScenarioVersion: VersionUpdated, Scenario: "SSP2", Region: region, Year: year, GDP: pc, Population: 1}
	}
	in := &Inputs{GDP: []GDPRecord{
		gdp("R11_NAM", 2020, 1), gdp("R11_NAM", 2050, 1),
		gdp("R11_A", 2020, math.Exp(-1)), gdp("R11_A", 2050, math.Exp(-0.5)),
		gdp("R11_B", 2020, math.Exp(-0.25)), gdp("R11_B", 2050, math.Exp(-0.25)),
		gdp("R11_C", 2020, 0.5), // no 2050 data
	}}
	diff := []RegionalDiff{
		{Technology: "t", Region: "R11_NAM", RegCostRatio: 1},
		{Technology: "t", Region: "R11_A", RegCostRatio: 0.5},
		{Technology: "t", Region: "R11_B", RegCostRatio: 0.8},
	}
	rows, err := AdjustCostRatiosWithGDP(diff, in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	// slope = 0.3/0.75 = 0.4, intercept = 0.9.
	want := map[string]float64{
		"R11_NAM 2020": 1, "R11_NAM 2050": 1,
		"R11_A 2020": 0.5, "R11_A 2050": 0.7,
		"R11_B 2020": 0.8, "R11_B 2050": 0.8,
	}
	if len(rows) != len(want) {
		t.Fatalf("have %d rows, want %d", len(rows), len(want))
	}
	for _, r := range rows {
		k := r.Region + " " + map[int]string{2020: "2020", 2050: "2050"}[r.Year]
		if !near(r.RegCostRatioAdj, want[k]) {
			t.Errorf("%s: have %g, want %g", k, r.RegCostRatioAdj, want[k])
		}
	}
}

func TestAdjustCostRatiosNoFit(t *testing.T) {
	cfg := testConfig()
	in := &Inputs{GDP: []GDPRecord{
		{VersionUpdated, "SSP2", "R12_NAM", 2020, 1, 1},
		{VersionUpdated, "SSP2", "R12_CHN", 2020, 0.5, 1},
	}}
	diff := []RegionalDiff{
		{Technology: "t", Region: "R12_NAM", RegCostRatio: 1},
		{Technology: "t", Region: "R12_CHN", RegCostRatio: 0.3},
	}
	rows, err := AdjustCostRatiosWithGDP(diff, in, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if r.Region == "R12_CHN" && r.RegCostRatioAdj != 0.3 {
			t.Errorf("a single region cannot be fitted; have %g, want 0.3", r.RegCostRatioAdj)
		}
	}
}

func TestFitPolynomial(t *testing.T) {
	f := func(x float64) float64 { return 2 - 0.5*x + 0.01*x*x - 1e-4*x*x*x }
	var x, y []float64
	for v := 2020.0; v <= 2100; v += 10 {
		x = append(x, v)
		y = append(y, f(v))
	}
	p, err := FitPolynomial(x, y, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{2020, 2035, 2100} {
		if !scalar.EqualWithinAbsOrRel(p.Eval(v), f(v), 1e-6, 1e-9) {
			t.Errorf("%g: have %g, want %g", v, p.Eval(v), f(v))
		}
	}
	c := p.Coefficients()
	want := []float64{2, -0.5, 0.01, -1e-4}
	for i := range want {
		if !scalar.EqualWithinAbsOrRel(c[i], want[i], 1e-6, 1e-6) {
			t.Errorf("coefficient %d: have %g, want %g", i, c[i], want[i])
		}
	}

	line, err := FitPolynomial([]float64{2020, 2050}, []float64{100, 40}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(line.Coef) != 2 || !near(line.Eval(2035), 70) {
		t.Errorf("two points should give a line; have %+v", line)
	}
	if _, err := FitPolynomial(nil, nil, 3); err == nil {
		t.Error("expected an error with no points")
	}
}

func TestApplySplinesToConvergence(t *testing.T) {
	var rows []CostRow
	for y := 2020; y <= 2100; y += 5 {
		v := 500.0
		if y == 2020 {
			v = 900
		} else if y < 2050 {
			v = 2000 // a jump that smoothing removes
		}
		rows = append(rows, CostRow{Scenario: "SSP2", Technology: "t", Region: "r", Year: y, InvCost: v})
	}
	o := ApplySplinesToConvergence(rows, 2050, nil)
	for i, r := range o {
		switch {
		case r.Year == 2020 || r.Year >= 2050:
			if r.InvCost != rows[i].InvCost {
				t.Errorf("%d: have %g, want unchanged %g", r.Year, r.InvCost, rows[i].InvCost)
			}
		default:
			if r.InvCost >= 2000 || r.InvCost <= 0 {
				t.Errorf("%d: have %g, want a smoothed value", r.Year, r.InvCost)
			}
		}
	}
	if rows[1].InvCost != 2000 {
		t.Error("input rows were modified")
	}
}

func TestRegressProjections(t *testing.T) {
	f := func(x float64) float64 { return 1000 + 2*x - 0.001*x*x + 1e-7*x*x*x }
	var rows []CostRow
	for y := 2020; y <= 2100; y += 5 {
		rows = append(rows, CostRow{Scenario: "SSP1", Technology: "t", Region: "r", Year: y, InvCost: f(float64(y))})
	}
	reg, err := RegressProjections(rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(reg) != 1 {
		t.Fatalf("have %d rows, want 1", len(reg))
	}
	r := reg[0]
	for _, c := range [][2]float64{{r.Intercept, 1000}, {r.Beta1, 2}, {r.Beta2, -0.001}, {r.Beta3, 1e-7}} {
		if !scalar.EqualWithinAbsOrRel(c[0], c[1], 1e-6, 1e-5) {
			t.Errorf("have %g, want %g", c[0], c[1])
		}
	}
}

func costAt(rows []CostRow, tech, region string, year int) CostRow {
	for _, r := range rows {
		if r.Technology == tech && r.Region == region && r.Year == year {
			return r
		}
	}
	return CostRow{InvCost: math.NaN(), FixCost: math.NaN()}
}

func TestProjectLearning(t *testing.T) {
	cfg := testConfig()
	rows, err := ProjectLearning(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := len(rows), 2*4*17; have != want {
		t.Errorf("have %d rows, want %d", have, want)
	}
	if r := costAt(rows, "coal_ppl", "R12_CHN", 2020); r.InvCost != 800 || r.ScenarioVersion != VersionNotApplicable {
		t.Errorf("2020: have %+v", r)
	}
	r := costAt(rows, "coal_ppl", "R12_CHN", 2100)
	if !near(r.InvCost, 680) || !near(r.FixCost, 680*0.025) {
		t.Errorf("2100: have %+v, want inv 680", r)
	}
}

func TestProjectGDP(t *testing.T) {
	cfg := testConfig()
	rows, err := ProjectGDP(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := len(rows), 2*4*17; have != want {
		t.Errorf("have %d rows, want %d", have, want)
	}
	for _, r := range rows {
		if r.ScenarioVersion != VersionUpdated {
			t.Fatalf("unexpected scenario version %s", r.ScenarioVersion)
		}
		if r.InvCost <= 0 || math.IsNaN(r.InvCost) {
			t.Errorf("invalid cost %+v", r)
		}
	}
	// The reference region follows its learning curve.
	if r := costAt(rows, "coal_ppl", "R12_NAM", 2100); !near(r.InvCost, 1700) {
		t.Errorf("NAM 2100: have %g, want 1700", r.InvCost)
	}
	if r := costAt(rows, "coal_ppl", "R12_CHN", 2020); r.InvCost != 800 {
		t.Errorf("CHN 2020: have %g, want 800", r.InvCost)
	}

	cfg.ScenarioVersion = "all"
	rows, err = ProjectGDP(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if have, want := len(rows), 2*2*4*17; have != want {
		t.Errorf("all versions: have %d rows, want %d", have, want)
	}
}

func TestProjectConvergence(t *testing.T) {
	cfg := testConfig()
	cfg.Method = "convergence"
	rows, err := ProjectConvergence(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, y := range []int{2050, 2075, 2100} {
		chn := costAt(rows, "coal_ppl", "R12_CHN", y)
		nam := costAt(rows, "coal_ppl", "R12_NAM", y)
		if !near(chn.InvCost, nam.InvCost) {
			t.Errorf("%d: CHN %g has not converged to NAM %g", y, chn.InvCost, nam.InvCost)
		}
	}
	if r := costAt(rows, "coal_ppl", "R12_CHN", 2020); r.InvCost != 800 {
		t.Errorf("2020: have %g, want 800", r.InvCost)
	}
	mid := costAt(rows, "coal_ppl", "R12_CHN", 2035)
	if !(mid.InvCost > 800 && mid.InvCost < costAt(rows, "coal_ppl", "R12_NAM", 2035).InvCost*1.5) {
		t.Errorf("2035: have %g", mid.InvCost)
	}
	if !near(mid.FixCost, mid.InvCost*0.025) {
		t.Errorf("fixed cost: have %g, want %g", mid.FixCost, mid.InvCost*0.025)
	}
}

func TestCreateCostProjectionsIAMC(t *testing.T) {
	cfg := testConfig()
	cfg.Method = "learning"
	cfg.Format = "iamc"
	p, err := CreateCostProjections(testInputs(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.IAMCInv) != 2*4 {
		t.Errorf("have %d investment rows, want 8", len(p.IAMCInv))
	}
	inv, fix := p.Tables()
	if inv.Header[3] != "Variable" || !strings.HasPrefix(fix.Rows[0][3], "OM Cost|Electricity|") {
		t.Errorf("unexpected tables: %v / %v", inv.Header, fix.Rows[0])
	}

	dir, err := ioutil.TempDir("", "costs")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	if err := p.Write(filepath.Join(dir, "inv.csv"), filepath.Join(dir, "fix.xlsx")); err != nil {
		t.Fatal(err)
	}
	if err := PlotTrajectories(p.Costs, "coal_ppl", VersionNotApplicable, "SSP2", filepath.Join(dir, "coal.png")); err != nil {
		t.Fatal(err)
	}
	if err := PlotTrajectories(p.Costs, "none", VersionNotApplicable, "SSP2", filepath.Join(dir, "none.png")); err == nil {
		t.Error("expected an error plotting a missing technology")
	}
}

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

package material

import (
	"context"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/store"
	"gonum.org/v1/gonum/floats/scalar"
)

func near(a, b float64) bool { return scalar.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) }

func quiet() logrus.FieldLogger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/sectors.toml")
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Scenario: "baseline",
		Sectors: map[string]Sector{
			"steel":     {Technologies: []string{"bf_steel", "eaf_steel"}, Relations: []string{"max_scrap"}},
			"buildings": {Technology: "buildings", Commodity: "floor_area"},
		},
	}
	if diff := pretty.Diff(cfg, want); len(diff) > 0 {
		t.Error(strings.Join(diff, "\n"))
	}
	if _, err := cfg.Sector("cement"); err == nil {
		t.Error("expected an error for a missing sector")
	}
	if _, err := ReadConfig(strings.NewReader("scenario = ")); err == nil {
		t.Error("expected an error for invalid TOML")
	}
}

func TestParseParameterKey(t *testing.T) {
	for _, test := range []struct {
		key  string
		want ParameterKey
		err  bool
	}{
		{key: "input|iron_ore|primary|M1", want: ParameterKey{Name: "input", Commodity: "iron_ore", Level: "primary", Mode: "M1"}},
		{key: "emission_factor|CO2|M1", want: ParameterKey{Name: "emission_factor", Emission: "CO2", Mode: "M1"}},
		{key: "var_cost|M2", want: ParameterKey{Name: "var_cost", Mode: "M2"}},
		{key: "technical_lifetime", want: ParameterKey{Name: "technical_lifetime"}},
		{key: "output|steel|M1", err: true},
		{key: "fix_cost|a|b", err: true},
	} {
		t.Run(test.key, func(t *testing.T) {
			k, err := ParseParameterKey(test.key)
			if test.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if k != test.want {
				t.Errorf("have %+v, want %+v", k, test.want)
			}
		})
	}
}

func TestTimeseriesSheet(t *testing.T) {
	if s := TimeseriesSheet("NPi400"); s != "timeseries_NPi400" {
		t.Errorf("have %s", s)
	}
	if s := TimeseriesSheet("baseline"); s != "timeseries" {
		t.Errorf("have %s", s)
	}
}

func TestMockSteelDemand(t *testing.T) {
	d, err := MockSteelDemand([]int{2020, 2025, 2030})
	if err != nil {
		t.Fatal(err)
	}
	if len(d) != 3 {
		t.Fatalf("have %d values, want 3", len(d))
	}
	d0 := 537 * math.Pow(1+0.147718884937996/2, 5)
	d1 := d0 * math.Pow(1+0.121448215899944/2, 5)
	g := (0.121448215899944 + 0.0733079014579874) / 2
	d2 := d1 * math.Pow(1+g/2, 5)
	for i, want := range []float64{d0, d1, d2} {
		if !near(d[i], want) {
			t.Errorf("year %d: have %g, want %g", i, d[i], want)
		}
	}
	if d, _ := MockSteelDemand(nil); d != nil {
		t.Errorf("have %v for no years", d)
	}
}

// writeSteelWorkbook writes the steel sector data to a workbook in dir.
func writeSteelWorkbook(t *testing.T, dir string) string {
	data := sheet.New("Region", "Technology", "Parameter", "Level", "Commodity", "Mode", "Species", "Units", "Value")
	data.Append("CHN", "bf_steel", "input", "primary", "iron_ore", "M1", "", "t", 1.5)
	data.Append("CHN", "bf_steel", "output", "primary_material", "steel", "M1", "", "t", 1.0)
	data.Append("CHN", "bf_steel", "emission_factor", "", "", "M1", "CO2", "t", 2.1)
	data.Append("CHN", "bf_steel", "technical_lifetime", "", "", "", "", "y", 30.0)
	data.Append("CHN", "eaf_steel", "input", "secondary", "electr", "M1", "", "GWa", 0.5)
	data.Append("CHN", "eaf_steel", "capacity_factor", "", "", "", "", "-", "")
	data.Append("CHN", "dri_steel", "input", "primary", "iron_ore", "M1", "", "t", 1.4)

	ts := sheet.New("parameter", "region", "technology", "mode", "units", "2020", "2025")
	ts.Append("var_cost", "CHN", "eaf_steel", "M1", "USD/t", 5.0, "")

	rel := sheet.New("relation", "parameter", "technology", "value")
	rel.Append("max_scrap", "relation_activity", "eaf_steel", 1.0)
	rel.Append("max_scrap", "relation_activity", "bf_steel", -0.5)
	rel.Append("max_scrap", "relation_upper", "", 0.0)
	rel.Append("other", "relation_upper", "", 5.0)

	path := filepath.Join(dir, "steel.xlsx")
	if err := sheet.WriteXLSX(path, map[string]*sheet.Table{"steel": data, "timeseries": ts, "relations": rel}); err != nil {
		t.Fatal(err)
	}
	return path
}

func testInfo() *param.Info {
	return &param.Info{Nodes: []string{"World", "R12_NAM", "R12_CHN"}, Years: []int{2010, 2015, 2020, 2025, 2030}, Y0: 2020}
}

func TestGenDataSteel(t *testing.T) {
	dir, err := ioutil.TempDir("", "material")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeSteelWorkbook(t, dir)

	in, err := ReadSteelInputs(path, "baseline")
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Data) != 6 {
		t.Errorf("have %d sector data rows, want 6", len(in.Data))
	}
	if in.Data[0].Parameter != "input|iron_ore|primary|M1" || in.Data[2].Parameter != "emission_factor|CO2|M1" {
		t.Errorf("parameter keys: %s, %s", in.Data[0].Parameter, in.Data[2].Parameter)
	}
	if len(in.Timeseries) != 1 || in.Timeseries[0].Year != 2020 {
		t.Errorf("timeseries: %+v", in.Timeseries)
	}

	cfg := Sector{Technologies: []string{"bf_steel", "eaf_steel"}, Relations: []string{"max_scrap"}}
	data, err := GenDataSteel(testInfo(), cfg, in, quiet())
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"input":              24,
		"output":             12,
		"emission_factor":    12,
		"technical_lifetime": 6,
		"var_cost":           2,
		"relation_activity":  24,
		"relation_upper":     6,
		"demand":             6,
	}
	if len(data) != len(want) {
		t.Errorf("have parameters %v", param.Names(data))
	}
	for name, n := range want {
		d, ok := data[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if d.Len() != n {
			t.Errorf("%s: have %d rows, want %d", name, d.Len(), n)
		}
		if err := d.Complete(); err != nil {
			t.Error(err)
		}
	}
	for _, r := range data["input"].Rows {
		if r.Index["node_origin"] != r.Index["node_loc"] || r.Index["node_loc"] == "World" {
			t.Errorf("input nodes: %v", r.Index)
		}
	}
	pairs := make(map[[2]string]bool)
	for _, r := range data["relation_activity"].Rows {
		if r.Index["year_act"] != r.Index["year_rel"] {
			t.Errorf("relation years: %v", r.Index)
		}
		pairs[[2]string{r.Index["node_rel"], r.Index["node_loc"]}] = true
	}
	if len(pairs) != 4 {
		t.Errorf("relation node pairs: %v", pairs)
	}
	dem := data["demand"].Select(map[string][]string{"node": {"R12_CHN"}, "year": {"2020"}})
	if dem.Len() != 1 || !near(dem.Rows[0].Value, 537*math.Pow(1+0.147718884937996/2, 5)) {
		t.Errorf("demand: %v", dem.Rows)
	}
}

func TestReadBuildings(t *testing.T) {
	b, err := ReadBuildings("testdata/buildings.csv")
	if err != nil {
		t.Fatal(err)
	}
	// 18 years of steel demand and scrap and 17 of cement, for 2 regions.
	if len(b.Intensities) != 2*(18+18+17) {
		t.Errorf("have %d intensities", len(b.Intensities))
	}
	for _, in := range b.Intensities {
		if !strings.HasPrefix(in.Node, "R11_") {
			t.Errorf("node %s", in.Node)
		}
		var want float64
		switch {
		case in.Commodity == "steel" && in.Type == MaterialDemand:
			want = 0.5
		case in.Commodity == "steel" && in.Type == ScrapRelease:
			want = 0.1
		case in.Commodity == "cement":
			want = 1
		default:
			t.Errorf("unexpected intensity %+v", in)
		}
		if !near(in.Value, want) {
			t.Errorf("%+v: want %g", in, want)
		}
	}
	if len(b.Area) != 36 {
		t.Errorf("have %d floor area values", len(b.Area))
	}
	steel := b.BaseYearDemand("steel")
	want := []NodeValue{
		{Node: "R11_CHN", Year: 2020, Commodity: "steel", Value: 50},
		{Node: "R11_WEU", Year: 2020, Commodity: "steel", Value: 100},
	}
	if diff := pretty.Diff(steel, want); len(diff) > 0 {
		t.Error(strings.Join(diff, "\n"))
	}
}

func TestGenDataBuildings(t *testing.T) {
	b, err := ReadBuildings("testdata/buildings.csv")
	if err != nil {
		t.Fatal(err)
	}
	info := &param.Info{Years: []int{2015, 2020, 2025, 2030}, Y0: 2020}
	s := Sector{Technology: "buildings", Commodity: "floor_area"}
	data, err := GenDataBuildings(info, s, b)
	if err != nil {
		t.Fatal(err)
	}
	// Per region and year: steel and cement inputs; scrap and service outputs.
	for name, n := range map[string]int{"input": 12, "output": 12, "demand": 6} {
		if data[name].Len() != n {
			t.Errorf("%s: have %d rows, want %d", name, data[name].Len(), n)
		}
		if err := data[name].Complete(); err != nil {
			t.Error(err)
		}
	}
	svc := data["output"].Select(map[string][]string{"commodity": {"floor_area"}})
	if svc.Len() != 6 || svc.Rows[0].Value != 1 || svc.Rows[0].Index["level"] != "demand" {
		t.Errorf("service output: %v", svc.Rows)
	}
	scrap := data["output"].Select(map[string][]string{"level": {"old_scrap"}})
	if scrap.Len() != 6 || !near(scrap.Rows[0].Value, 0.1) {
		t.Errorf("scrap output: %v", scrap.Rows)
	}
	dem := data["demand"].Select(map[string][]string{"node": {"R11_WEU"}})
	if dem.Len() != 3 || dem.Rows[0].Value != 200 {
		t.Errorf("demand: %v", dem.Rows)
	}
	if _, err := GenDataBuildings(info, Sector{}, b); err == nil {
		t.Error("expected an error for an unconfigured sector")
	}
}

func TestIndustryShares(t *testing.T) {
	rows, err := ReadIndustryEnergy("testdata/industry.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 20 {
		t.Errorf("have %d rows, want 20", len(rows))
	}
	s, err := IndustryShares(rows)
	if err != nil {
		t.Fatal(err)
	}
	check := func(name string, have, want map[string]float64) {
		if len(have) != len(want) {
			t.Errorf("%s: have %v, want %v", name, have, want)
		}
		for r, w := range want {
			if !near(have[r], w) {
				t.Errorf("%s %s: have %g, want %g", name, r, have[r], w)
			}
		}
	}
	check("i_spec", s.Spec, map[string]float64{"CPA": 0.14 + 0.3 + 0.1 + 0.05, "WEU": 0.2})
	check("i_therm", s.Therm, map[string]float64{"CPA": 0.07 + 0.2 + 0.1, "WEU": 0.3})
	check("i_feed", s.Feed, map[string]float64{"CPA": 0.7})

	if _, err := IndustryShares([]EnergyRow{{Region: "AFR", Sector: sectorChemicals, Fuel: "electricity", Year: 2015, Value: 1}}); err == nil {
		t.Error("expected an error for a region without an electricity total")
	}
}

func TestModifyDemandAndHistActivity(t *testing.T) {
	dir, err := ioutil.TempDir("", "material")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	s, err := store.Open(filepath.Join(dir, "test.db"), "baseline")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Log = quiet()
	ctx := context.Background()

	mk := func(name string, index map[string]string, v float64) *param.Data {
		d, err := param.New(name, index, v, "GWa")
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	demand := func(node, com string) *param.Data {
		return mk("demand", map[string]string{"node": node, "commodity": com, "level": "useful", "year": "2020", "time": "year"}, 100)
	}
	hist := func(node, tec string) *param.Data {
		return mk("historical_activity", map[string]string{"node_loc": node, "technology": tec, "year_act": "2015", "mode": "M1", "time": "year"}, 10)
	}
	growth := func(tec, year string) *param.Data {
		return mk("growth_activity_lo", map[string]string{"node_loc": "R11_CPA", "technology": tec, "year_act": year, "time": "year"}, -0.05)
	}
	data := map[string]*param.Data{}
	param.Merge(data,
		map[string]*param.Data{"demand": demand("R11_CPA", "i_therm")},
		map[string]*param.Data{"demand": demand("R11_CPA", "i_spec")},
		map[string]*param.Data{"demand": demand("R11_WEU", "i_spec")},
		map[string]*param.Data{"demand": demand("R11_CPA", "i_feed")},
		map[string]*param.Data{"demand": demand("R11_AFR", "i_feed")},
		map[string]*param.Data{"historical_activity": hist("R11_CPA", "coal_i")},
		map[string]*param.Data{"historical_activity": hist("R11_WEU", "sp_el_I")},
		map[string]*param.Data{"growth_activity_lo": growth("coal_i", "2020")},
		map[string]*param.Data{"growth_activity_lo": growth("coal_i", "2025")},
		map[string]*param.Data{"growth_activity_lo": growth("biomass_i", "2020")},
	)
	if err := s.AddData(ctx, "initial data", data, false); err != nil {
		t.Fatal(err)
	}

	shares := &Shares{
		Spec:  map[string]float64{"CPA": 0.59, "WEU": 0.2},
		Therm: map[string]float64{"CPA": 0.37},
		Feed:  map[string]float64{"CPA": 0.7},
	}
	if err := ModifyDemandAndHistActivity(ctx, s, shares, quiet()); err != nil {
		t.Fatal(err)
	}

	d, err := s.Par(ctx, "demand", nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]float64{
		"R11_CPA|i_therm": 63,
		"R11_CPA|i_spec":  41,
		"R11_WEU|i_spec":  80,
		"R11_CPA|i_feed":  30,
		"R11_AFR|i_feed":  100,
	}
	if d.Len() != len(want) {
		t.Errorf("have %d demand rows, want %d", d.Len(), len(want))
	}
	for _, r := range d.Rows {
		k := r.Index["node"] + "|" + r.Index["commodity"]
		if !near(r.Value, want[k]) {
			t.Errorf("demand %s: have %g, want %g", k, r.Value, want[k])
		}
	}

	h, err := s.Par(ctx, "historical_activity", nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range h.Rows {
		w := map[string]float64{"coal_i": 6.3, "sp_el_I": 8}[r.Index["technology"]]
		if !near(r.Value, w) {
			t.Errorf("historical activity %v: have %g, want %g", r.Index, r.Value, w)
		}
	}

	g, err := s.Par(ctx, "growth_activity_lo", nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 {
		t.Errorf("have %d growth constraints, want 2", g.Len())
	}
	for _, r := range g.Rows {
		if r.Index["technology"] == "coal_i" && r.Index["year_act"] == "2020" {
			t.Error("coal_i 2020 growth constraint was not removed")
		}
	}

	commits, err := s.Commits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// initial data, demand, historical activity and one per growth technology
	if len(commits) != 3+len(growthTechnologies) {
		t.Errorf("have %d commits", len(commits))
	}
}

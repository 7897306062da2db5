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
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/param"
)

// Unit is the unit of investment and fixed costs.
const Unit = "USD/kWa"

// InvCost is an investment cost parameter value.
type InvCost struct {
	ScenarioVersion string
	Scenario        string
	NodeLoc         string
	Technology      string
	YearVtg         int
	Value           float64
	Unit            string
}

// FixCost is a fixed operating cost parameter value.
type FixCost struct {
	ScenarioVersion string
	Scenario        string
	NodeLoc         string
	Technology      string
	YearVtg         int
	YearAct         int
	Value           float64
	Unit            string
}

// keepYear reports whether a vintage or activity year is a model period:
// every five years through 2060 and every ten years after.
func keepYear(y int) bool { return y <= 2060 || y%10 == 0 }

func horizonYears() []int {
	var o []int
	for y := HorizonStart; y <= HorizonEnd; y += 5 {
		o = append(o, y)
	}
	return o
}

// MessageOutputs converts projected costs to investment and fixed cost
// parameter values for every vintage in the model horizon. Vintages up to
// the base year take first model year costs and vintages from the last
// model year on take last model year costs. Fixed costs of a vintage
// change by fomRate per year of activity after the later of the vintage
// and the base year. Series without first and last model year values are
// omitted, as are years without a projected cost.
func MessageOutputs(rows []CostRow, fomRate float64) ([]InvCost, []FixCost) {
	keys, idx := groupSeries(rows)
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.version != b.version {
			return a.version < b.version
		}
		if a.scenario != b.scenario {
			return a.scenario < b.scenario
		}
		if a.technology != b.technology {
			return a.technology < b.technology
		}
		return a.region < b.region
	})
	years := horizonYears()
	var inv []InvCost
	var fix []FixCost
	for _, k := range keys {
		byYear := make(map[int]CostRow)
		for _, i := range idx[k] {
			byYear[rows[i].Year] = rows[i]
		}
		first, ok1 := byYear[FirstModelYear]
		last, ok2 := byYear[LastModelYear]
		if !ok1 || !ok2 {
			continue
		}
		for _, yv := range years {
			r, ok := byYear[yv]
			switch {
			case yv <= BaseYear:
				r, ok = first, true
			case yv >= LastModelYear:
				r, ok = last, true
			}
			if !ok {
				continue
			}
			if keepYear(yv) && !math.IsNaN(r.InvCost) {
				inv = append(inv, InvCost{
					ScenarioVersion: k.version,
					Scenario:        k.scenario,
					NodeLoc:         k.region,
					Technology:      k.technology,
					YearVtg:         yv,
					Value:           r.InvCost,
					Unit:            Unit,
				})
			}
			if !keepYear(yv) || math.IsNaN(r.FixCost) {
				continue
			}
			for _, ya := range years {
				if ya < yv || !keepYear(ya) {
					continue
				}
				v := r.FixCost
				switch {
				case yv <= BaseYear && ya > BaseYear:
					v *= math.Pow(1+fomRate, float64(ya-BaseYear))
				case yv > BaseYear:
					v *= math.Pow(1+fomRate, float64(ya-yv))
				}
				fix = append(fix, FixCost{
					ScenarioVersion: k.version,
					Scenario:        k.scenario,
					NodeLoc:         k.region,
					Technology:      k.technology,
					YearVtg:         yv,
					YearAct:         ya,
					Value:           v,
					Unit:            Unit,
				})
			}
		}
	}
	return inv, fix
}

// IAMCRow is a row of a reporting table, with one value per year.
type IAMCRow struct {
	ScenarioVersion string
	Scenario        string
	Region          string
	Variable        string
	Unit            string
	Values          map[int]float64
}

type iamcKey struct {
	version, scenario, region, variable, unit string
}

type iamcAccumulator struct {
	keys []iamcKey
	sums map[iamcKey]map[int]float64
	ns   map[iamcKey]map[int]int
}

func newIAMCAccumulator() *iamcAccumulator {
	return &iamcAccumulator{sums: make(map[iamcKey]map[int]float64), ns: make(map[iamcKey]map[int]int)}
}

func (a *iamcAccumulator) add(k iamcKey, year int, v float64) {
	if _, ok := a.sums[k]; !ok {
		a.keys = append(a.keys, k)
		a.sums[k] = make(map[int]float64)
		a.ns[k] = make(map[int]int)
	}
	a.sums[k][year] += v
	a.ns[k][year]++
}

// rows returns the mean of the values added for each key and year.
func (a *iamcAccumulator) rows() []IAMCRow {
	o := make([]IAMCRow, len(a.keys))
	for i, k := range a.keys {
		r := IAMCRow{ScenarioVersion: k.version, Scenario: k.scenario, Region: k.region,
			Variable: k.variable, Unit: k.unit, Values: make(map[int]float64)}
		for y, s := range a.sums[k] {
			r.Values[y] = s / float64(a.ns[k][y])
		}
		o[i] = r
	}
	return o
}

// IAMCOutputs converts parameter values to reporting tables, with
// variables "Capital Cost|Electricity|<technology>" for investment costs
// by vintage and "OM Cost|Electricity|<technology>|Vintage=<year>" for
// fixed costs by activity year.
func IAMCOutputs(inv []InvCost, fix []FixCost) (invRows, fixRows []IAMCRow) {
	ai := newIAMCAccumulator()
	for _, r := range inv {
		ai.add(iamcKey{r.ScenarioVersion, r.Scenario, r.NodeLoc, "Capital Cost|Electricity|" + r.Technology, r.Unit}, r.YearVtg, r.Value)
	}
	af := newIAMCAccumulator()
	for _, r := range fix {
		v := fmt.Sprintf("OM Cost|Electricity|%s|Vintage=%d", r.Technology, r.YearVtg)
		af.add(iamcKey{r.ScenarioVersion, r.Scenario, r.NodeLoc, v, r.Unit}, r.YearAct, r.Value)
	}
	return ai.rows(), af.rows()
}

// InvTable returns investment costs as a table.
func InvTable(inv []InvCost) *sheet.Table {
	t := sheet.New("scenario_version", "scenario", "node_loc", "technology", "year_vtg", "value", "unit")
	for _, r := range inv {
		t.Append(r.ScenarioVersion, r.Scenario, r.NodeLoc, r.Technology, r.YearVtg, r.Value, r.Unit)
	}
	return t
}

// FixTable returns fixed costs as a table.
func FixTable(fix []FixCost) *sheet.Table {
	t := sheet.New("scenario_version", "scenario", "node_loc", "technology", "year_vtg", "year_act", "value", "unit")
	for _, r := range fix {
		t.Append(r.ScenarioVersion, r.Scenario, r.NodeLoc, r.Technology, r.YearVtg, r.YearAct, r.Value, r.Unit)
	}
	return t
}

// IAMCTable returns reporting rows as a wide table with one column per
// year.
func IAMCTable(rows []IAMCRow) *sheet.Table {
	yearSet := make(map[int]bool)
	for _, r := range rows {
		for y := range r.Values {
			yearSet[y] = true
		}
	}
	var years []int
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	header := []string{"SSP_Scenario_Version", "SSP_Scenario", "Region", "Variable", "Unit"}
	for _, y := range years {
		header = append(header, strconv.Itoa(y))
	}
	t := sheet.New(header...)
	for _, r := range rows {
		vals := []interface{}{r.ScenarioVersion, r.Scenario, r.Region, r.Variable, r.Unit}
		for _, y := range years {
			v, ok := r.Values[y]
			if !ok {
				v = math.NaN()
			}
			vals = append(vals, v)
		}
		t.Append(vals...)
	}
	return t
}

// CostTable returns projected costs as a table.
func CostTable(rows []CostRow) *sheet.Table {
	t := sheet.New("scenario_version", "scenario", "message_technology", "region", "year", "inv_cost", "fix_cost")
	for _, r := range rows {
		t.Append(r.ScenarioVersion, r.Scenario, r.Technology, r.Region, r.Year, r.InvCost, r.FixCost)
	}
	return t
}

// RegressionTable returns regression coefficients as a table.
func RegressionTable(rows []RegressionRow) *sheet.Table {
	t := sheet.New("scenario_version", "scenario", "message_technology", "region", "beta_1", "beta_2", "beta_3", "intercept")
	for _, r := range rows {
		t.Append(r.ScenarioVersion, r.Scenario, r.Technology, r.Region, r.Beta1, r.Beta2, r.Beta3, r.Intercept)
	}
	return t
}

// Tables returns the investment and fixed cost output tables in the
// configured format.
func (p *Projections) Tables() (inv, fix *sheet.Table) {
	if p.Config.Format == "iamc" {
		return IAMCTable(p.IAMCInv), IAMCTable(p.IAMCFix)
	}
	return InvTable(p.Inv), FixTable(p.Fix)
}

// Write writes the output tables to CSV or Excel files.
func (p *Projections) Write(invPath, fixPath string) error {
	inv, fix := p.Tables()
	if err := sheet.Write(invPath, inv); err != nil {
		return err
	}
	return sheet.Write(fixPath, fix)
}

// Parameters returns the inv_cost and fix_cost model parameters for one
// scenario version and scenario.
func (p *Projections) Parameters(version, scenario string) map[string]*param.Data {
	inv := &param.Data{Name: "inv_cost"}
	for _, r := range p.Inv {
		if r.ScenarioVersion != version || r.Scenario != scenario {
			continue
		}
		inv.Rows = append(inv.Rows, param.Row{
			Index: map[string]string{"node_loc": r.NodeLoc, "technology": r.Technology, "year_vtg": strconv.Itoa(r.YearVtg)},
			Value: r.Value,
			Unit:  r.Unit,
		})
	}
	fix := &param.Data{Name: "fix_cost"}
	for _, r := range p.Fix {
		if r.ScenarioVersion != version || r.Scenario != scenario {
			continue
		}
		fix.Rows = append(fix.Rows, param.Row{
			Index: map[string]string{"node_loc": r.NodeLoc, "technology": r.Technology,
				"year_vtg": strconv.Itoa(r.YearVtg), "year_act": strconv.Itoa(r.YearAct)},
			Value: r.Value,
			Unit:  r.Unit,
		})
	}
	return map[string]*param.Data{"inv_cost": inv, "fix_cost": fix}
}

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
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spatialmodel/iamdata/internal/sheet"
)

// SourceCost is a technology cost from the source cost database.
type SourceCost struct {
	SourceTechnology string
	SourceRegion     string
	// CostType is "inv_cost" or "fix_cost".
	CostType string
	Year     int
	Value    float64
}

// Technology maps a model technology to a source technology.
type Technology struct {
	Name             string
	SourceTechnology string
	FirstYear        int
	// RefInvCost, if not NaN, replaces the reference region's base
	// year investment cost.
	RefInvCost float64
}

// GDPRecord holds socioeconomic projections for a region.
type GDPRecord struct {
	ScenarioVersion string
	Scenario        string
	Region          string
	Year            int
	GDP             float64
	Population      float64
}

// ReductionLevels are the cost reduction levels, from least to most.
var ReductionLevels = []string{"very_low", "low", "medium", "high", "very_high"}

// Inputs hold the data a projection is computed from.
type Inputs struct {
	SourceCosts []SourceCost

	// Regions are the model regions, and RegionMap maps each of them to a
	// source region.
	Regions   []string
	RegionMap map[string]string

	Technologies []Technology

	// Reductions are the fractions of base year costs removed by
	// LastModelYear, by technology and reduction level.
	Reductions map[string]map[string]float64

	// LearningLevels are the reduction levels by technology and scenario.
	LearningLevels map[string]map[string]string

	GDP []GDPRecord
}

// InputTables returns the names of the tables LoadInputs reads for cfg.
func InputTables(cfg Config) []string {
	t := []string{"weo_costs", "regions_" + strings.ToLower(cfg.Node), "technologies",
		"cost_reduction", "learning_scenarios", "ssp_gdp"}
	if strings.EqualFold(cfg.Module, "materials") {
		t = append(t, "technologies_materials")
	}
	return t
}

// findFile returns the path to the CSV or Excel file for table name in dir.
func findFile(dir, name string) (string, error) {
	for _, ext := range []string{".csv", ".xlsx"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("costs: no %s.csv or %s.xlsx in %s", name, name, dir)
}

func readTable(dir, name string) (*sheet.Table, error) {
	p, err := findFile(dir, name)
	if err != nil {
		return nil, err
	}
	return sheet.Read(p, name, 0)
}

// LoadInputs reads the inputs for cfg from dir, which must hold the
// tables weo_costs, regions_<node>, technologies, cost_reduction,
// learning_scenarios and ssp_gdp, plus technologies_materials for the
// materials module.
func LoadInputs(dir string, cfg Config) (*Inputs, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	in := new(Inputs)
	var err error
	if in.SourceCosts, err = loadSourceCosts(dir); err != nil {
		return nil, err
	}
	if in.Regions, in.RegionMap, err = loadRegions(dir, cfg.Node); err != nil {
		return nil, err
	}
	if in.Technologies, err = loadTechnologies(dir, "technologies"); err != nil {
		return nil, err
	}
	if cfg.Module == "materials" {
		mat, err := loadTechnologies(dir, "technologies_materials")
		if err != nil {
			return nil, err
		}
		in.Technologies = mergeTechnologies(in.Technologies, mat)
	}
	if in.Reductions, err = loadReductions(dir); err != nil {
		return nil, err
	}
	if in.LearningLevels, err = loadLearningLevels(dir); err != nil {
		return nil, err
	}
	if in.GDP, err = loadGDP(dir); err != nil {
		return nil, err
	}
	return in, nil
}

// mergeTechnologies adds add to base, replacing technologies with the same
// name.
func mergeTechnologies(base, add []Technology) []Technology {
	pos := make(map[string]int)
	o := append([]Technology{}, base...)
	for i, t := range o {
		pos[t.Name] = i
	}
	for _, t := range add {
		if i, ok := pos[t.Name]; ok {
			o[i] = t
			continue
		}
		pos[t.Name] = len(o)
		o = append(o, t)
	}
	return o
}

func loadSourceCosts(dir string) ([]SourceCost, error) {
	t, err := readTable(dir, "weo_costs")
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("source_technology", "source_region", "cost_type", "year", "value")
	if err != nil {
		return nil, fmt.Errorf("costs: weo_costs: %v", err)
	}
	var o []SourceCost
	for i, r := range t.Rows {
		y, err := strconv.Atoi(r[c[3]])
		if err != nil {
			return nil, fmt.Errorf("costs: weo_costs row %d: %v", i, err)
		}
		v, err := t.Float(i, c[4])
		if err != nil {
			return nil, fmt.Errorf("costs: weo_costs row %d: %v", i, err)
		}
		if math.IsNaN(v) {
			continue
		}
		ct := r[c[2]]
		if ct != "inv_cost" && ct != "fix_cost" {
			return nil, fmt.Errorf("costs: weo_costs row %d: invalid cost type %q", i, ct)
		}
		o = append(o, SourceCost{
			SourceTechnology: r[c[0]],
			SourceRegion:     r[c[1]],
			CostType:         ct,
			Year:             y,
			Value:            v,
		})
	}
	return o, nil
}

func loadRegions(dir, node string) ([]string, map[string]string, error) {
	name := "regions_" + strings.ToLower(node)
	t, err := readTable(dir, name)
	if err != nil {
		return nil, nil, err
	}
	c, err := t.Cols("region", "source_region")
	if err != nil {
		return nil, nil, fmt.Errorf("costs: %s: %v", name, err)
	}
	m := make(map[string]string)
	var regions []string
	for _, r := range t.Rows {
		reg := strings.ToUpper(r[c[0]])
		if _, ok := m[reg]; !ok {
			regions = append(regions, reg)
		}
		m[reg] = r[c[1]]
	}
	return regions, m, nil
}

func loadTechnologies(dir, name string) ([]Technology, error) {
	t, err := readTable(dir, name)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("message_technology", "source_technology", "first_year")
	if err != nil {
		return nil, fmt.Errorf("costs: %s: %v", name, err)
	}
	refCol, _ := t.Col("ref_inv_cost")
	var o []Technology
	for i, r := range t.Rows {
		tech := Technology{Name: r[c[0]], SourceTechnology: r[c[1]], FirstYear: FirstModelYear, RefInvCost: math.NaN()}
		if r[c[2]] != "" {
			if tech.FirstYear, err = strconv.Atoi(r[c[2]]); err != nil {
				return nil, fmt.Errorf("costs: %s row %d: %v", name, i, err)
			}
		}
		if refCol >= 0 {
			if tech.RefInvCost, err = t.Float(i, refCol); err != nil {
				return nil, fmt.Errorf("costs: %s row %d: %v", name, i, err)
			}
		}
		o = append(o, tech)
	}
	return o, nil
}

func loadReductions(dir string) (map[string]map[string]float64, error) {
	t, err := readTable(dir, "cost_reduction")
	if err != nil {
		return nil, err
	}
	techCol, err := t.Col("message_technology")
	if err != nil {
		return nil, fmt.Errorf("costs: cost_reduction: %v", err)
	}
	levelCols, err := t.Cols(ReductionLevels...)
	if err != nil {
		return nil, fmt.Errorf("costs: cost_reduction: %v", err)
	}
	o := make(map[string]map[string]float64)
	for i, r := range t.Rows {
		m := make(map[string]float64)
		for j, l := range ReductionLevels {
			v, err := t.Float(i, levelCols[j])
			if err != nil {
				return nil, fmt.Errorf("costs: cost_reduction row %d: %v", i, err)
			}
			if math.IsNaN(v) {
				continue
			}
			if v < 0 || v >= 1 {
				return nil, fmt.Errorf("costs: cost_reduction for %s %s is %g; must be in [0, 1)", r[techCol], l, v)
			}
			m[l] = v
		}
		o[r[techCol]] = m
	}
	return o, nil
}

func loadLearningLevels(dir string) (map[string]map[string]string, error) {
	t, err := readTable(dir, "learning_scenarios")
	if err != nil {
		return nil, err
	}
	techCol, err := t.Col("message_technology")
	if err != nil {
		return nil, fmt.Errorf("costs: learning_scenarios: %v", err)
	}
	o := make(map[string]map[string]string)
	for _, r := range t.Rows {
		m := make(map[string]string)
		for _, s := range AllScenarios {
			if c, err := t.Col(s); err == nil && r[c] != "" {
				m[s] = strings.ToLower(r[c])
			}
		}
		o[r[techCol]] = m
	}
	return o, nil
}

func loadGDP(dir string) ([]GDPRecord, error) {
	t, err := readTable(dir, "ssp_gdp")
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("scenario_version", "scenario", "region", "year", "gdp_ppp", "population")
	if err != nil {
		return nil, fmt.Errorf("costs: ssp_gdp: %v", err)
	}
	var o []GDPRecord
	for i, r := range t.Rows {
		rec := GDPRecord{ScenarioVersion: r[c[0]], Scenario: strings.ToUpper(r[c[1]]), Region: strings.ToUpper(r[c[2]])}
		if rec.Year, err = strconv.Atoi(r[c[3]]); err != nil {
			return nil, fmt.Errorf("costs: ssp_gdp row %d: %v", i, err)
		}
		if rec.GDP, err = t.Float(i, c[4]); err != nil {
			return nil, fmt.Errorf("costs: ssp_gdp row %d: %v", i, err)
		}
		if rec.Population, err = t.Float(i, c[5]); err != nil {
			return nil, fmt.Errorf("costs: ssp_gdp row %d: %v", i, err)
		}
		o = append(o, rec)
	}
	return o, nil
}

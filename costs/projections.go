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
)

// CostRow is a projected cost of a technology in a region.
type CostRow struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Region          string
	Year            int
	InvCost         float64
	FixCost         float64
}

type learningKey struct {
	scenario, technology string
}

func indexLearning(l []LearningRow) (map[learningKey][]LearningRow, []string) {
	o := make(map[learningKey][]LearningRow)
	var scenarios []string
	seen := make(map[string]bool)
	for _, r := range l {
		k := learningKey{r.Scenario, r.Technology}
		o[k] = append(o[k], r)
		if !seen[r.Scenario] {
			seen[r.Scenario] = true
			scenarios = append(scenarios, r.Scenario)
		}
	}
	return o, scenarios
}

// project combines regional differences with reference region learning
// curves, using ratio to get the region's cost ratio in each year. Rows
// for which ratio reports false are omitted.
func project(diff []RegionalDiff, learning []LearningRow, version string,
	ratio func(d RegionalDiff, l LearningRow) (float64, bool)) []CostRow {
	byKey, scenarios := indexLearning(learning)
	var o []CostRow
	for _, s := range scenarios {
		for _, d := range diff {
			for _, l := range byKey[learningKey{s, d.Technology}] {
				r, ok := ratio(d, l)
				if !ok {
					continue
				}
				inv := l.InvCost * r
				if l.Year <= FirstModelYear {
					inv = d.RegCostBaseYear
				}
				o = append(o, CostRow{
					ScenarioVersion: version,
					Scenario:        s,
					Technology:      d.Technology,
					Region:          d.Region,
					Year:            l.Year,
					InvCost:         inv,
					FixCost:         inv * d.FixRatio,
				})
			}
		}
	}
	return o
}

func prepare(in *Inputs, cfg *Config) ([]RegionalDiff, []LearningRow, error) {
	if err := cfg.Check(); err != nil {
		return nil, nil, err
	}
	log := cfg.log()
	log.Info("calculating regional differentiation in base year and region")
	diff, err := RegionalDifferentiation(in, *cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("applying learning rates to reference region")
	learning, err := LearningProjections(diff, in, *cfg)
	if err != nil {
		return nil, nil, err
	}
	return diff, learning, nil
}

// ProjectLearning projects costs with the learning method: every region's
// cost follows the reference region's learning curve scaled by its base
// year cost ratio.
func ProjectLearning(in *Inputs, cfg Config) ([]CostRow, error) {
	diff, learning, err := prepare(in, &cfg)
	if err != nil {
		return nil, err
	}
	return dedupe(project(diff, learning, VersionNotApplicable, func(d RegionalDiff, _ LearningRow) (float64, bool) {
		return d.RegCostRatio, true
	})), nil
}

// ProjectGDP projects costs with the gdp method: like the learning method
// but with cost ratios that change with GDP per capita.
func ProjectGDP(in *Inputs, cfg Config) ([]CostRow, error) {
	diff, learning, err := prepare(in, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.log().Info("adjusting ratios using GDP data")
	adj, err := AdjustCostRatiosWithGDP(diff, in, cfg)
	if err != nil {
		return nil, err
	}
	type key struct {
		version, scenario, technology, region string
		year                                  int
	}
	ratios := make(map[key]float64, len(adj))
	for _, a := range adj {
		ratios[key{a.ScenarioVersion, a.Scenario, a.Technology, a.Region, a.Year}] = a.RegCostRatioAdj
	}
	var o []CostRow
	for _, v := range cfg.ScenarioVersions() {
		o = append(o, project(diff, learning, v, func(d RegionalDiff, l LearningRow) (float64, bool) {
			r, ok := ratios[key{v, l.Scenario, d.Technology, d.Region, l.Year}]
			return r, ok
		})...)
	}
	return dedupe(o), nil
}

// ProjectConvergence projects costs with the convergence method: regional
// costs approach the reference region's costs, reaching them in the
// convergence year, along a smoothed path.
func ProjectConvergence(in *Inputs, cfg Config) ([]CostRow, error) {
	diff, learning, err := prepare(in, &cfg)
	if err != nil {
		return nil, err
	}
	pre := project(diff, learning, VersionNotApplicable, func(d RegionalDiff, l LearningRow) (float64, bool) {
		if l.Year < cfg.ConvergenceYear {
			return d.RegCostRatio, true
		}
		return 1, true
	})
	cfg.log().Info("applying splines to converge")
	fixRatio := make(map[[2]string]float64)
	for _, d := range diff {
		fixRatio[[2]string{d.Technology, d.Region}] = d.FixRatio
	}
	o := ApplySplinesToConvergence(pre, cfg.ConvergenceYear, cfg.log())
	for i := range o {
		o[i].FixCost = o[i].InvCost * fixRatio[[2]string{o[i].Technology, o[i].Region}]
	}
	return dedupe(o), nil
}

// dedupe removes repeated rows, keeping the first.
func dedupe(rows []CostRow) []CostRow {
	seen := make(map[CostRow]bool, len(rows))
	o := rows[:0]
	for _, r := range rows {
		if seen[r] {
			continue
		}
		seen[r] = true
		o = append(o, r)
	}
	return o
}

// Projections are the results of a cost projection.
type Projections struct {
	Config Config

	// Costs are the projected costs in projection years.
	Costs []CostRow

	// Inv and Fix are model parameter data. They are set for both formats.
	Inv []InvCost
	Fix []FixCost

	// IAMCInv and IAMCFix are reporting tables, set for the iamc format.
	IAMCInv []IAMCRow
	IAMCFix []IAMCRow
}

// CreateCostProjections validates cfg, projects costs with the configured
// method and formats the output.
func CreateCostProjections(in *Inputs, cfg Config) (*Projections, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	cfg.log().WithFields(cfg.Fields()).Info("creating cost projections")

	var costs []CostRow
	var err error
	switch cfg.Method {
	case "learning":
		costs, err = ProjectLearning(in, cfg)
	case "gdp":
		costs, err = ProjectGDP(in, cfg)
	case "convergence":
		costs, err = ProjectConvergence(in, cfg)
	default:
		panic(fmt.Errorf("costs: invalid method %s", cfg.Method))
	}
	if err != nil {
		return nil, err
	}
	p := &Projections{Config: cfg, Costs: costs}
	cfg.log().Info("creating MESSAGE outputs")
	p.Inv, p.Fix = MessageOutputs(costs, cfg.FOMRate)
	if cfg.Format == "iamc" {
		cfg.log().Info("creating IAMC outputs")
		p.IAMCInv, p.IAMCFix = IAMCOutputs(p.Inv, p.Fix)
	}
	return p, nil
}

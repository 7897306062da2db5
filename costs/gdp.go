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
	"math"
	"sort"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
)

// GDPRow is the GDP-adjusted cost ratio of a technology in a region.
type GDPRow struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Region          string
	Year            int
	RegCostRatioAdj float64
}

// gdpRatios holds GDP per capita of each region relative to the reference
// region, indexed by region and year.
type gdpRatios map[string]map[int]float64

func gdpPerCapitaRatios(gdp []GDPRecord, version, scenario, ref string) (gdpRatios, []int) {
	pc := make(map[string]map[int]float64)
	yearSet := make(map[int]bool)
	for _, g := range gdp {
		if g.ScenarioVersion != version || g.Scenario != scenario || g.Population <= 0 {
			continue
		}
		if pc[g.Region] == nil {
			pc[g.Region] = make(map[int]float64)
		}
		pc[g.Region][g.Year] = g.GDP / g.Population
		yearSet[g.Year] = true
	}
	o := make(gdpRatios)
	for r, ys := range pc {
		o[r] = make(map[int]float64)
		for y, v := range ys {
			if refV, ok := pc[ref][y]; ok && refV > 0 {
				o[r][y] = v / refV
			}
		}
	}
	var years []int
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)
	return o, years
}

// regression is a fitted relation between the logarithm of the GDP per
// capita ratio and the regional cost ratio.
type regression struct {
	slope, intercept float64
	ok               bool
}

func fitGDPRegression(x, y []float64) regression {
	if len(x) < 2 {
		return regression{}
	}
	distinct := false
	for _, v := range x[1:] {
		if v != x[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return regression{}
	}
	slope, intercept, _, _, _, _ := stats.LinearRegression(x, y)
	if math.IsNaN(slope) || math.IsNaN(intercept) || math.IsInf(slope, 0) {
		return regression{}
	}
	return regression{slope: slope, intercept: intercept, ok: true}
}

// AdjustCostRatiosWithGDP adjusts the regional cost ratios in diff over
// time according to projected GDP per capita. For each technology, the
// base year cost ratios of the non-reference regions are regressed on the
// logarithm of their GDP per capita relative to the reference region; the
// fitted relation then gives each region's cost ratio in later years.
// The reference region's ratio is always 1. Where no relation can be
// fitted, or it gives a non-positive ratio, the base year ratio is kept.
func AdjustCostRatiosWithGDP(diff []RegionalDiff, in *Inputs, cfg Config) ([]GDPRow, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	log := cfg.log()

	byTech := make(map[string][]RegionalDiff)
	var techs []string
	for _, d := range diff {
		if _, ok := byTech[d.Technology]; !ok {
			techs = append(techs, d.Technology)
		}
		byTech[d.Technology] = append(byTech[d.Technology], d)
	}

	var o []GDPRow
	for _, version := range cfg.ScenarioVersions() {
		for _, s := range cfg.Scenarios() {
			ratios, years := gdpPerCapitaRatios(in.GDP, version, s, cfg.RefRegion)
			if len(years) == 0 {
				log.WithFields(logrus.Fields{"scenario_version": version, "scenario": s}).
					Warn("no GDP data")
				continue
			}
			baseYear := cfg.BaseYear
			if _, ok := ratios[cfg.RefRegion][baseYear]; !ok {
				baseYear = years[0]
				log.WithFields(logrus.Fields{"scenario_version": version, "scenario": s,
					"base_year": cfg.BaseYear, "used_year": baseYear}).
					Warn("base year not in GDP data; using earliest year")
			}
			for _, tech := range techs {
				var x, y []float64
				for _, d := range byTech[tech] {
					if d.Region == cfg.RefRegion {
						continue
					}
					r, ok := ratios[d.Region][baseYear]
					if !ok || r <= 0 {
						continue
					}
					x = append(x, math.Log(r))
					y = append(y, d.RegCostRatio)
				}
				reg := fitGDPRegression(x, y)
				if !reg.ok {
					log.WithFields(logrus.Fields{"technology": tech, "scenario": s}).
						Debug("cannot fit GDP regression; keeping base year cost ratios")
				}
				for _, d := range byTech[tech] {
					for _, yr := range years {
						if yr < FirstModelYear {
							continue
						}
						adj := d.RegCostRatio
						if d.Region == cfg.RefRegion {
							adj = 1
						} else if r, ok := ratios[d.Region][yr]; reg.ok && ok && r > 0 {
							if v := reg.slope*math.Log(r) + reg.intercept; v > 0 {
								adj = v
							}
						}
						o = append(o, GDPRow{
							ScenarioVersion: version,
							Scenario:        s,
							Technology:      tech,
							Region:          d.Region,
							Year:            yr,
							RegCostRatioAdj: adj,
						})
					}
				}
			}
		}
	}
	return o, nil
}

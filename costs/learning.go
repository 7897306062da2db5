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

	"github.com/sirupsen/logrus"
)

// LearningRow is the projected investment cost of a technology in the
// reference region.
type LearningRow struct {
	Scenario   string
	Technology string
	Year       int
	InvCost    float64
}

// LearningCurve returns the cost in year of a technology costing c0 in
// the first model year whose cost falls by the fraction reduction by the
// last model year. Costs decay exponentially, starting from firstYear,
// toward an asymptote just below the last model year cost.
func LearningCurve(c0, reduction float64, firstYear, year int) float64 {
	if year <= FirstModelYear || c0 <= 0 {
		return c0
	}
	c2100 := c0 * (1 - reduction)
	b := (1 - PreLastYearRate) * c2100
	r := math.Log((c2100-b)/(c0-b)) / float64(LastModelYear-FirstModelYear)
	if firstYear < FirstModelYear {
		firstYear = FirstModelYear
	}
	return (c0-b)*math.Exp(r*float64(year-firstYear)) + b
}

// LearningProjections projects the reference region investment cost of
// each technology in diff for each selected scenario.
func LearningProjections(diff []RegionalDiff, in *Inputs, cfg Config) ([]LearningRow, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	log := cfg.log()
	years := projectionYears()
	var o []LearningRow
	for _, s := range cfg.Scenarios() {
		for _, d := range diff {
			if d.Region != cfg.RefRegion {
				continue
			}
			level := in.LearningLevels[d.Technology][s]
			if level == "" {
				level = "medium"
			}
			red, ok := in.Reductions[d.Technology][level]
			if !ok {
				log.WithFields(logrus.Fields{"technology": d.Technology, "scenario": s, "level": level}).
					Debug("no cost reduction; assuming constant costs")
			}
			if red < 0 || red >= 1 {
				return nil, fmt.Errorf("costs: cost reduction %g for %s is not in [0, 1)", red, d.Technology)
			}
			for _, y := range years {
				o = append(o, LearningRow{
					Scenario:   s,
					Technology: d.Technology,
					Year:       y,
					InvCost:    LearningCurve(d.RegCostBaseYear, red, d.FirstYear, y),
				})
			}
		}
	}
	return o, nil
}

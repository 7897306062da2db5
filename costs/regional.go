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

// RegionalDiff holds the base year costs of a technology in a region
// relative to the reference region.
type RegionalDiff struct {
	Technology string
	Region     string
	FirstYear  int
	// RegCostRatio is the ratio of the region's investment cost to the
	// reference region's.
	RegCostRatio float64
	// FixRatio is the ratio of fixed to investment cost.
	FixRatio float64
	// RegCostBaseYear is the region's base year investment cost.
	RegCostBaseYear float64
}

// baseYearCosts returns the cost of each type for each source region for
// technology src, taken from the latest year no later than baseYear, or
// the earliest year if all data are later.
func baseYearCosts(costs []SourceCost, src string, baseYear int) map[string]map[string]float64 {
	type pick struct {
		year  int
		value float64
	}
	best := make(map[[2]string]pick)
	better := func(cur, y int) bool {
		switch {
		case cur <= baseYear && y <= baseYear:
			return y > cur
		case cur > baseYear && y > baseYear:
			return y < cur
		default:
			return y <= baseYear
		}
	}
	for _, c := range costs {
		if c.SourceTechnology != src {
			continue
		}
		k := [2]string{c.CostType, c.SourceRegion}
		if p, ok := best[k]; !ok || better(p.year, c.Year) {
			best[k] = pick{year: c.Year, value: c.Value}
		}
	}
	o := map[string]map[string]float64{"inv_cost": {}, "fix_cost": {}}
	for k, p := range best {
		o[k[0]][k[1]] = p.value
	}
	return o
}

// RegionalDifferentiation computes base year costs of every technology in
// every model region relative to the reference region. Regions without
// source data take the reference region's costs. Technologies without
// reference region data are skipped.
func RegionalDifferentiation(in *Inputs, cfg Config) ([]RegionalDiff, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	log := cfg.log()
	refSrc, ok := in.RegionMap[cfg.RefRegion]
	if !ok {
		return nil, fmt.Errorf("costs: reference region %s is not in the %s region mapping", cfg.RefRegion, cfg.Node)
	}
	var o []RegionalDiff
	for _, tech := range in.Technologies {
		c := baseYearCosts(in.SourceCosts, tech.SourceTechnology, cfg.BaseYear)
		refInv, ok := c["inv_cost"][refSrc]
		if !ok || refInv == 0 {
			log.WithFields(logrus.Fields{"technology": tech.Name, "source_technology": tech.SourceTechnology}).
				Warn("no reference region investment cost; skipping technology")
			continue
		}
		refFixRatio := 0.0
		if refFix, ok := c["fix_cost"][refSrc]; ok {
			refFixRatio = refFix / refInv
		}
		refCost := refInv
		if !math.IsNaN(tech.RefInvCost) {
			refCost = tech.RefInvCost
		}
		for _, region := range in.Regions {
			d := RegionalDiff{
				Technology: tech.Name,
				Region:     region,
				FirstYear:  tech.FirstYear,
				FixRatio:   refFixRatio,
			}
			inv, ok := c["inv_cost"][in.RegionMap[region]]
			if ok {
				d.RegCostRatio = inv / refInv
				if fix, ok := c["fix_cost"][in.RegionMap[region]]; ok && inv != 0 {
					d.FixRatio = fix / inv
				}
			} else {
				log.WithFields(logrus.Fields{"technology": tech.Name, "region": region}).
					Warn("no regional cost data; using reference region costs")
				d.RegCostRatio = 1
			}
			d.RegCostBaseYear = refCost * d.RegCostRatio
			o = append(o, d)
		}
	}
	return o, nil
}

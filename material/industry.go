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
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/iamdata/internal/sheet"
	"github.com/spatialmodel/iamdata/param"
	"github.com/spatialmodel/iamdata/store"
)

// IEA final energy sectors.
const (
	sectorPetrochem   = "feedstock (petrochemical industry)"
	sectorFeedstock   = "feedstock (total)"
	sectorChemicals   = "industry (chemicals)"
	sectorIronSteel   = "industry (iron and steel)"
	sectorNonFerrous  = "industry (non-ferrous metals)"
	sectorNonMetallic = "industry (non-metallic minerals)"
	sectorIndustry    = "industry (total)"
)

// EnergyRow is a final energy use value.
type EnergyRow struct {
	Region, Sector, Fuel string
	Year                 int
	Value                float64
}

// ReadIndustryEnergy reads industrial final energy use from the
// "Export Worksheet" sheet of the workbook at path, keeping the sectors
// needed by IndustryShares.
func ReadIndustryEnergy(path string) ([]EnergyRow, error) {
	t, err := sheet.Read(path, "Export Worksheet", 0)
	if err != nil {
		return nil, err
	}
	c, err := t.Cols("REGION", "SECTOR", "FUEL", "RYEAR", "RESULT")
	if err != nil {
		return nil, fmt.Errorf("material: reading industry energy: %v", err)
	}
	keep := map[string]bool{sectorPetrochem: true, sectorFeedstock: true, sectorChemicals: true,
		sectorIronSteel: true, sectorNonFerrous: true, sectorNonMetallic: true, sectorIndustry: true}
	var o []EnergyRow
	for i, r := range t.Rows {
		if !keep[r[c[1]]] {
			continue
		}
		y, err := t.Float(i, c[3])
		if err != nil {
			return nil, fmt.Errorf("material: reading industry energy row %d: %v", i, err)
		}
		v, err := t.Float(i, c[4])
		if err != nil {
			return nil, fmt.Errorf("material: reading industry energy row %d: %v", i, err)
		}
		o = append(o, EnergyRow{Region: r[c[0]], Sector: r[c[1]], Fuel: r[c[2]], Year: int(y), Value: v})
	}
	return o, nil
}

// Shares holds, per region, the share of each useful industrial energy
// demand that the material sectors account for.
type Shares struct {
	Spec, Feed, Therm map[string]float64
}

// IndustryShares calculates the shares of specific electricity (i_spec),
// feedstock (i_feed) and thermal (i_therm) demand in 2015 that belong to
// the material sectors.
func IndustryShares(rows []EnergyRow) (*Shares, error) {
	s := &Shares{Spec: map[string]float64{}, Feed: map[string]float64{}, Therm: map[string]float64{}}
	elecTotal := make(map[string]float64)
	thermTotal := make(map[string]float64)
	hasElecTotal := make(map[string]bool)
	for _, r := range rows {
		if r.Year != 2015 || r.Sector != sectorIndustry {
			continue
		}
		switch r.Fuel {
		case "electricity":
			elecTotal[r.Region] += r.Value
			hasElecTotal[r.Region] = true
		case "total":
		default:
			thermTotal[r.Region] += r.Value
		}
	}
	type regionSector struct{ region, sector string }
	therm := make(map[regionSector]float64)
	for _, r := range rows {
		if r.Year != 2015 {
			continue
		}
		switch r.Sector {
		case sectorIndustry, sectorFeedstock:
			continue
		case sectorPetrochem:
			if r.Fuel == "total" {
				s.Feed[r.Region] = 0.7
			}
			continue
		}
		switch r.Fuel {
		case "electricity":
			if !hasElecTotal[r.Region] || elecTotal[r.Region] == 0 {
				return nil, fmt.Errorf("material: no industry electricity total for region %s", r.Region)
			}
			v := r.Value / elecTotal[r.Region]
			if r.Sector == sectorChemicals {
				v *= 0.7
			}
			s.Spec[r.Region] += v
		case "total":
		default:
			if r.Sector != sectorNonFerrous {
				therm[regionSector{r.Region, r.Sector}] += r.Value
			}
		}
	}
	for k, v := range therm {
		total, ok := thermTotal[k.region]
		if !ok || total == 0 {
			return nil, fmt.Errorf("material: no industry thermal total for region %s", k.region)
		}
		share := v / total
		switch {
		case k.sector == sectorChemicals:
			share *= 0.7
		case k.sector == sectorIronSteel && k.region == "CPA":
			share = 0.2
		}
		s.Therm[k.region] += share
	}
	return s, nil
}

// Technologies providing useful industrial energy.
var (
	thermalTechnologies   = []string{"biomass_i", "coal_i", "elec_i", "eth_i", "foil_i", "gas_i", "h2_i", "heat_i", "hp_el_i", "hp_gas_i", "loil_i", "meth_i", "solar_i"}
	feedstockTechnologies = []string{"coal_fs", "ethanol_fs", "foil_fs", "gas_fs", "loil_fs", "methanol_fs"}
	specificTechnologies  = []string{"sp_coal_I", "sp_el_I", "sp_eth_I", "sp_liq_I", "sp_meth_I", "h2_fc_I"}
	// growthTechnologies have their 2020 lower growth constraint removed.
	growthTechnologies = []string{"coal_i", "elec_i", "gas_i", "heat_i", "loil_i", "solar_i"}
)

// scale multiplies the value of each row in a node with a share by
// (1 - share).
func scale(d *param.Data, nodeDim string, shares map[string]float64) {
	for i, r := range d.Rows {
		for region, sh := range shares {
			if r.Index[nodeDim] == "R11_"+region {
				d.Rows[i].Value *= 1 - sh
			}
		}
	}
}

// ModifyDemandAndHistActivity reduces useful industrial energy demand
// and the historical activity of the technologies supplying it by the
// shares of the material sectors, and removes the 2020 lower growth
// constraints of aggregate industry technologies.
func ModifyDemandAndHistActivity(ctx context.Context, s *store.Store, sh *Shares, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	groups := []struct {
		commodity    string
		technologies []string
		shares       map[string]float64
	}{
		{"i_therm", thermalTechnologies, sh.Therm},
		{"i_spec", specificTechnologies, sh.Spec},
		{"i_feed", feedstockTechnologies, sh.Feed},
	}
	var demand, hist []*param.Data
	for _, g := range groups {
		d, err := s.Par(ctx, "demand", map[string][]string{"commodity": {g.commodity}})
		if err != nil {
			return err
		}
		scale(d, "node", g.shares)
		demand = append(demand, d)
		h, err := s.Par(ctx, "historical_activity", map[string][]string{"technology": g.technologies})
		if err != nil {
			return err
		}
		scale(h, "node_loc", g.shares)
		hist = append(hist, h)
		log.WithFields(logrus.Fields{
			"commodity": g.commodity, "regions": sortedKeys(g.shares),
			"demand": d.Len(), "historical_activity": h.Len(),
		}).Info("material: adjusting industry demand")
	}
	if err := s.Transact(ctx, "Demand values adjusted", func(tx *store.Tx) error {
		for _, d := range demand {
			if err := tx.AddPar(d); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if err := s.Transact(ctx, "historical activity for useful level industry technologies adjusted", func(tx *store.Tx) error {
		for _, d := range hist {
			if err := tx.AddPar(d); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	for _, t := range growthTechnologies {
		d, err := s.Par(ctx, "growth_activity_lo", map[string][]string{"technology": {t}, "year_act": {"2020"}})
		if err != nil {
			return err
		}
		if err := s.Transact(ctx, "remove growth_lo constraints", func(tx *store.Tx) error {
			return tx.RemovePar(d)
		}); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

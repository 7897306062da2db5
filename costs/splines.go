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

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Polynomial is a polynomial in (x - Center) with coefficients Coef in
// ascending order of power.
type Polynomial struct {
	Coef   []float64
	Center float64
}

// Eval returns the value of p at x.
func (p *Polynomial) Eval(x float64) float64 {
	dx := x - p.Center
	v := 0.0
	for i := len(p.Coef) - 1; i >= 0; i-- {
		v = v*dx + p.Coef[i]
	}
	return v
}

// Coefficients returns the coefficients of p in powers of x rather than
// x - Center, in ascending order of power.
func (p *Polynomial) Coefficients() []float64 {
	o := make([]float64, len(p.Coef))
	for k, a := range p.Coef {
		// a(x-c)^k = a sum_j C(k,j) x^j (-c)^(k-j)
		for j := 0; j <= k; j++ {
			o[j] += a * binomial(k, j) * math.Pow(-p.Center, float64(k-j))
		}
	}
	return o
}

func binomial(n, k int) float64 {
	v := 1.0
	for i := 1; i <= k; i++ {
		v *= float64(n-k+i) / float64(i)
	}
	return v
}

// FitPolynomial fits a polynomial of the given degree to the points
// (x, y) by least squares. The degree is reduced to len(x)-1 if there
// are too few points. x is centered on its mean to keep the problem
// well conditioned for calendar years.
func FitPolynomial(x, y []float64, degree int) (*Polynomial, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("costs: fitting polynomial: %d x values but %d y values", n, len(y))
	}
	if n == 0 {
		return nil, fmt.Errorf("costs: fitting polynomial: no points")
	}
	if degree > n-1 {
		degree = n - 1
	}
	center := 0.0
	for _, v := range x {
		center += v
	}
	center /= float64(n)

	a := mat.NewDense(n, degree+1, nil)
	for i, v := range x {
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= v - center
		}
	}
	var qr mat.QR
	qr.Factorize(a)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, append([]float64{}, y...))); err != nil {
		return nil, fmt.Errorf("costs: fitting polynomial: %v", err)
	}
	coef := make([]float64, degree+1)
	for i := range coef {
		coef[i] = beta.AtVec(i)
	}
	return &Polynomial{Coef: coef, Center: center}, nil
}

type seriesKey struct {
	version, scenario, technology, region string
}

// groupSeries groups rows into time series sorted by year, returning the
// keys in first-appearance order.
func groupSeries(rows []CostRow) ([]seriesKey, map[seriesKey][]int) {
	idx := make(map[seriesKey][]int)
	var keys []seriesKey
	for i, r := range rows {
		k := seriesKey{r.ScenarioVersion, r.Scenario, r.Technology, r.Region}
		if _, ok := idx[k]; !ok {
			keys = append(keys, k)
		}
		idx[k] = append(idx[k], i)
	}
	for _, k := range keys {
		ii := idx[k]
		sort.SliceStable(ii, func(a, b int) bool { return rows[ii[a]].Year < rows[ii[b]].Year })
	}
	return keys, idx
}

// ApplySplinesToConvergence smooths the investment cost series in rows
// between the first model year and convergenceYear. For each series, a
// cubic polynomial is fitted through the first model year cost and the
// costs from convergenceYear on; years in between take the fitted value
// and all other years keep their cost. Series that cannot be fitted are
// returned unchanged.
func ApplySplinesToConvergence(rows []CostRow, convergenceYear int, log logrus.FieldLogger) []CostRow {
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := append([]CostRow{}, rows...)
	keys, idx := groupSeries(o)
	for _, k := range keys {
		var x, y []float64
		for _, i := range idx[k] {
			r := o[i]
			if (r.Year == FirstModelYear || r.Year >= convergenceYear) && !math.IsNaN(r.InvCost) {
				x = append(x, float64(r.Year))
				y = append(y, r.InvCost)
			}
		}
		p, err := FitPolynomial(x, y, 3)
		if err != nil {
			log.WithFields(logrus.Fields{"technology": k.technology, "region": k.region, "scenario": k.scenario}).
				Warnf("not smoothing cost convergence: %v", err)
			continue
		}
		for _, i := range idx[k] {
			if yr := o[i].Year; yr > FirstModelYear && yr < convergenceYear {
				o[i].InvCost = p.Eval(float64(yr))
			}
		}
	}
	return o
}

// RegressionRow holds the coefficients of a cubic polynomial in the year
// fitted to a projected investment cost series.
type RegressionRow struct {
	ScenarioVersion string
	Scenario        string
	Technology      string
	Region          string
	Beta1           float64
	Beta2           float64
	Beta3           float64
	Intercept       float64
}

// RegressProjections fits a cubic polynomial in the year to every
// investment cost series in rows.
func RegressProjections(rows []CostRow) ([]RegressionRow, error) {
	keys, idx := groupSeries(rows)
	var o []RegressionRow
	for _, k := range keys {
		var x, y []float64
		for _, i := range idx[k] {
			if !math.IsNaN(rows[i].InvCost) {
				x = append(x, float64(rows[i].Year))
				y = append(y, rows[i].InvCost)
			}
		}
		if len(x) == 0 {
			continue
		}
		p, err := FitPolynomial(x, y, 3)
		if err != nil {
			return nil, fmt.Errorf("costs: regression for %s in %s: %v", k.technology, k.region, err)
		}
		c := append(p.Coefficients(), 0, 0, 0)
		o = append(o, RegressionRow{
			ScenarioVersion: k.version,
			Scenario:        k.scenario,
			Technology:      k.technology,
			Region:          k.region,
			Intercept:       c[0],
			Beta1:           c[1],
			Beta2:           c[2],
			Beta3:           c[3],
		})
	}
	return o, nil
}

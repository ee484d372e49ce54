/*
Copyright © 2018 the romsproc authors.
This file is part of romsproc.

romsproc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

romsproc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with romsproc.  If not, see <http://www.gnu.org/licenses/>.
*/

package interp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// dupTol is the distance below which two sample points are considered
// the same point. Coincident points make the interpolation system
// singular, so later duplicates are dropped.
const dupTol = 1e-9

// RBF interpolates scattered 2-D samples with cubic radial basis
// functions plus a linear polynomial tail, reproducing linear fields
// exactly and varying smoothly between samples.
type RBF struct {
	x, y []float64
	// coef holds the basis weights followed by the three polynomial
	// coefficients.
	coef []float64
}

// NewRBF fits an interpolator through the samples (x[i], y[i], v[i]).
// Duplicate sample locations are collapsed to their first occurrence.
// At least three non-collinear points are required for the polynomial
// tail to be determined.
func NewRBF(x, y, v []float64) (*RBF, error) {
	if len(x) != len(y) || len(x) != len(v) {
		return nil, fmt.Errorf("romsproc: interp: mismatched sample lengths %d, %d, %d",
			len(x), len(y), len(v))
	}
	var xs, ys, vs []float64
	for i := range x {
		dup := false
		for j := range xs {
			if math.Hypot(x[i]-xs[j], y[i]-ys[j]) < dupTol {
				dup = true
				break
			}
		}
		if !dup {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
			vs = append(vs, v[i])
		}
	}
	m := len(xs)
	if m < 3 {
		return nil, fmt.Errorf("romsproc: interp: %d distinct points is too few for surface fitting", m)
	}
	// Assemble the symmetric system [Φ P; Pᵀ 0] where Φ holds the
	// pairwise basis values and P the linear monomials 1, x, y.
	dim := m + 3
	a := mat.NewDense(dim, dim, nil)
	b := mat.NewVecDense(dim, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			a.Set(i, j, cubicBasis(math.Hypot(xs[i]-xs[j], ys[i]-ys[j])))
		}
		a.Set(i, m, 1)
		a.Set(i, m+1, xs[i])
		a.Set(i, m+2, ys[i])
		a.Set(m, i, 1)
		a.Set(m+1, i, xs[i])
		a.Set(m+2, i, ys[i])
		b.SetVec(i, vs[i])
	}
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		// Radial basis systems are routinely ill-conditioned but the
		// computed inverse is still usable; only a singular system is
		// fatal.
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("romsproc: interp: singular interpolation system: %v", err)
		}
	}
	var c mat.VecDense
	c.MulVec(&inv, b)
	coef := make([]float64, dim)
	for i := range coef {
		coef[i] = c.AtVec(i)
	}
	return &RBF{x: xs, y: ys, coef: coef}, nil
}

// At evaluates the fitted surface at (x, y).
func (r *RBF) At(x, y float64) float64 {
	m := len(r.x)
	v := r.coef[m] + r.coef[m+1]*x + r.coef[m+2]*y
	for i := 0; i < m; i++ {
		v += r.coef[i] * cubicBasis(math.Hypot(x-r.x[i], y-r.y[i]))
	}
	return v
}

func cubicBasis(r float64) float64 {
	return r * r * r
}

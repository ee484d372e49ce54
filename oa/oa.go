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

// Package oa performs objective-analysis style vertical sampling of
// terrain-following model fields at a fixed depth. For every water column
// it selects the model layers nearest the target depth and combines them
// with distance-based Gaussian weights, so sampling a whole field is a
// single weighted pass once the per-column weights are known.
package oa

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/sparse"
)

// FillValue marks cells where no estimate can be made: land columns and
// columns whose vertical envelope does not contain the target depth.
// Consumers should treat any magnitude above 9.e10 as missing.
const FillValue = 9.99e10

// DefaultSamples is the number of vertical neighbors used per column.
const DefaultSamples = 5

type column struct {
	valid   bool
	layers  []int
	weights []float64
}

// ProfileMap holds per-column sampling layers and weights for one target
// depth on one set of layer depths. Building it is the expensive part;
// once built it can be applied to any number of fields that share the
// same depths, concurrently.
type ProfileMap struct {
	eta, xi int
	n       int
	cols    []column
}

// NewProfileMap precomputes sampling weights for the given target depth.
// depths has shape [n, eta, xi] with values negative below the sea
// surface and layer index 0 at the sea bed; mask has shape [eta, xi]
// with 1 for sea and 0 for land. target is negative below the surface.
// nsamp neighbors are used per column; if nsamp < 1, DefaultSamples is
// used.
func NewProfileMap(depths, mask *sparse.DenseArray, target float64, nsamp int) (*ProfileMap, error) {
	if len(depths.Shape) != 3 {
		return nil, fmt.Errorf("romsproc: oa: depths must be 3-D but has %d dimensions", len(depths.Shape))
	}
	n, eta, xi := depths.Shape[0], depths.Shape[1], depths.Shape[2]
	if len(mask.Shape) != 2 || mask.Shape[0] != eta || mask.Shape[1] != xi {
		return nil, fmt.Errorf("romsproc: oa: mask shape %v does not match depths shape %v",
			mask.Shape, depths.Shape)
	}
	if nsamp < 1 {
		nsamp = DefaultSamples
	}
	if nsamp > n {
		nsamp = n
	}
	pm := &ProfileMap{
		eta:  eta,
		xi:   xi,
		n:    n,
		cols: make([]column, eta*xi),
	}
	z := make([]float64, n)
	order := make([]int, n)
	for j := 0; j < eta; j++ {
		for i := 0; i < xi; i++ {
			col := &pm.cols[j*xi+i]
			if mask.Get(j, i) == 0 {
				continue
			}
			for k := 0; k < n; k++ {
				z[k] = depths.Get(k, j, i)
			}
			// Layer centers cannot bracket a target outside their
			// envelope; extrapolating there would invent water.
			if target < z[0] || target > z[n-1] {
				continue
			}
			for k := range order {
				order[k] = k
			}
			sort.SliceStable(order, func(a, b int) bool {
				return math.Abs(z[order[a]]-target) < math.Abs(z[order[b]]-target)
			})
			// The decorrelation length scales with the local layer
			// spacing so that resolution follows the stretching.
			length := (z[n-1] - z[0]) / float64(n-1)
			if length <= 0 {
				continue
			}
			col.layers = make([]int, nsamp)
			col.weights = make([]float64, nsamp)
			var sum float64
			for s := 0; s < nsamp; s++ {
				k := order[s]
				d := (z[k] - target) / length
				w := math.Exp(-d * d)
				col.layers[s] = k
				col.weights[s] = w
				sum += w
			}
			for s := range col.weights {
				col.weights[s] /= sum
			}
			col.valid = true
		}
	}
	return pm, nil
}

// Interpolate samples field (shape [n, eta, xi]) at the map's target
// depth, returning a [eta, xi] array holding FillValue in columns where
// no estimate exists.
func (pm *ProfileMap) Interpolate(field *sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(field.Shape) != 3 || field.Shape[0] != pm.n ||
		field.Shape[1] != pm.eta || field.Shape[2] != pm.xi {
		return nil, fmt.Errorf("romsproc: oa: field shape %v does not match profile map shape [%d %d %d]",
			field.Shape, pm.n, pm.eta, pm.xi)
	}
	out := sparse.ZerosDense(pm.eta, pm.xi)
	for j := 0; j < pm.eta; j++ {
		for i := 0; i < pm.xi; i++ {
			col := &pm.cols[j*pm.xi+i]
			if !col.valid {
				out.Set(FillValue, j, i)
				continue
			}
			var v float64
			for s, k := range col.layers {
				v += col.weights[s] * field.Get(k, j, i)
			}
			out.Set(v, j, i)
		}
	}
	return out, nil
}

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

package romsproc

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// DepthAverage computes the layer-thickness weighted average of a single
// record field between two depths. field has shape [n, eta, xi] on any
// staggering of g. depth and topDepth bound the averaging band; each may
// be given as a positive distance below the surface or a negative z
// coordinate, and they are swapped if given out of order. A topDepth of
// exactly 0 means "up to the uppermost model layer" at each cell.
// zeta optionally supplies the free surface displacement at rho points.
//
// Whole layers are selected by the proximity of their centers to the
// bounds rather than split at them, so the band edges land on layer
// boundaries that may not be exactly the requested depths.
//
// The result has shape [eta, xi]; cells over land or whose water column
// lies entirely outside the band are invalid.
func DepthAverage(field *sparse.DenseArray, g *Grid, depth, topDepth float64, zeta *sparse.DenseArray) (*Masked, error) {
	if depth > 0 {
		depth = -depth
	}
	if topDepth > 0 {
		topDepth = -topDepth
	}
	if depth > topDepth {
		depth, topDepth = topDepth, depth
	}
	if depth == topDepth && topDepth != 0 {
		return nil, fmt.Errorf("romsproc: depth average: bounds are both %g m; the band is empty", depth)
	}
	if len(field.Shape) != 3 {
		return nil, fmt.Errorf("romsproc: depth average: field must be 3-D but has %d dimensions", len(field.Shape))
	}
	if field.Shape[0] != g.N {
		return nil, fmt.Errorf("romsproc: depth average: field has %d layers but grid has %d",
			field.Shape[0], g.N)
	}
	stag, err := g.StaggerFromShape(field.Shape)
	if err != nil {
		return nil, err
	}
	if zeta != nil {
		if err := checkZetaShape(zeta, g, 3, 1); err != nil {
			return nil, err
		}
	}
	depths, thick, err := g.depthThickness(stag, zeta)
	if err != nil {
		return nil, err
	}
	mask := g.Mask(stag)
	eta, xi := field.Shape[1], field.Shape[2]
	out := newMasked(eta, xi)
	for j := 0; j < eta; j++ {
		for i := 0; i < xi; i++ {
			if mask.Get(j, i) == 0 {
				out.setInvalid(j, i)
				continue
			}
			topBound := topDepth
			if topDepth == 0 {
				topBound = depths.Get(g.N-1, j, i)
			}
			// The band runs from the deepest layer center at or below
			// the lower bound to the shallowest at or above the upper
			// bound, taking the first candidate on ties.
			kUp, kLow := 0, 0
			bestUp, bestLow := math.Inf(1), math.Inf(-1)
			for k := 0; k < g.N; k++ {
				z := depths.Get(k, j, i)
				if u := z - topBound; u >= 0 && u < bestUp {
					bestUp, kUp = u, k
				}
				if l := z - depth; l <= 0 && l > bestLow {
					bestLow, kLow = l, k
				}
			}
			var sum, sumThick float64
			for k := kLow; k <= kUp; k++ {
				t := thick.Get(k, j, i)
				sum += field.Get(k, j, i) * t
				sumThick += t
			}
			if sumThick == 0 {
				out.setInvalid(j, i)
				continue
			}
			out.Data.Set(sum/sumThick, j, i)
		}
	}
	return out, nil
}

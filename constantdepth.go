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
	"github.com/spatialmodel/romsproc/oa"
)

// missingMagnitude is the threshold above which sampled values are
// treated as missing; it sits just below oa.FillValue.
const missingMagnitude = 9.e10

// ConstantDepth resamples a terrain-following field at one fixed depth.
// field has shape [n, eta, xi] for a single record or [t, n, eta, xi]
// for a time series, on any staggering of g. depth may be given as a
// positive distance below the surface or as a negative z coordinate.
// zeta optionally supplies the free surface displacement at rho points,
// shaped [eta, xi] or [t, eta, xi] to match field; when nil the layer
// depths are taken at rest and shared across all records. Records are
// processed on nprocs workers (GOMAXPROCS if nprocs < 1).
//
// The result has shape [eta, xi] or [t, eta, xi]; cells over land or
// below the sea bed are invalid.
func ConstantDepth(field *sparse.DenseArray, g *Grid, depth float64, zeta *sparse.DenseArray, nprocs int) (*Masked, error) {
	if depth > 0 {
		depth = -depth
	}
	nd := len(field.Shape)
	if nd != 3 && nd != 4 {
		return nil, fmt.Errorf("romsproc: constant depth: field must be 3-D or 4-D but has %d dimensions", nd)
	}
	if field.Shape[nd-3] != g.N {
		return nil, fmt.Errorf("romsproc: constant depth: field has %d layers but grid has %d",
			field.Shape[nd-3], g.N)
	}
	stag, err := g.StaggerFromShape(field.Shape)
	if err != nil {
		return nil, err
	}
	nt := 1
	if nd == 4 {
		nt = field.Shape[0]
	}
	if zeta != nil {
		if err := checkZetaShape(zeta, g, nd, nt); err != nil {
			return nil, err
		}
	}

	// With a resting free surface the layer depths, and therefore the
	// sampling weights, are identical for every record.
	var shared *oa.ProfileMap
	if zeta == nil {
		depths, _, err := g.depthThickness(stag, nil)
		if err != nil {
			return nil, err
		}
		shared, err = oa.NewProfileMap(depths, g.Mask(stag), depth, oa.DefaultSamples)
		if err != nil {
			return nil, err
		}
	}

	job := func(t int) (*Masked, error) {
		field3 := field
		if nd == 4 {
			per := field.Shape[1] * field.Shape[2] * field.Shape[3]
			field3 = sparse.ZerosDense(field.Shape[1], field.Shape[2], field.Shape[3])
			copy(field3.Elements, field.Elements[t*per:(t+1)*per])
		}
		pm := shared
		if pm == nil {
			zeta2 := zeta
			if len(zeta.Shape) == 3 {
				per := zeta.Shape[1] * zeta.Shape[2]
				zeta2 = sparse.ZerosDense(zeta.Shape[1], zeta.Shape[2])
				copy(zeta2.Elements, zeta.Elements[t*per:(t+1)*per])
			}
			depths, _, err := g.depthThickness(stag, zeta2)
			if err != nil {
				return nil, err
			}
			pm, err = oa.NewProfileMap(depths, g.Mask(stag), depth, oa.DefaultSamples)
			if err != nil {
				return nil, err
			}
		}
		v, err := pm.Interpolate(field3)
		if err != nil {
			return nil, err
		}
		out := &Masked{Data: v, Mask: sparse.ZerosDenseInt(v.Shape...)}
		for ii, val := range v.Elements {
			if math.Abs(val) > missingMagnitude {
				out.Mask.Elements[ii] = 1
				v.Elements[ii] = 0
			}
		}
		return out, nil
	}

	results, err := parallelMap(nt, nprocs, job)
	if err != nil {
		return nil, err
	}
	if nd == 3 {
		return results[0], nil
	}
	eta, xi := field.Shape[2], field.Shape[3]
	out := newMasked(nt, eta, xi)
	for t, r := range results {
		for j := 0; j < eta; j++ {
			for i := 0; i < xi; i++ {
				out.Data.Set(r.Data.Get(j, i), t, j, i)
				out.Mask.Set(r.Mask.Get(j, i), t, j, i)
			}
		}
	}
	return out, nil
}

// checkZetaShape validates a free surface array against the grid and the
// record structure of the field it accompanies. zeta is always given at
// rho points.
func checkZetaShape(zeta *sparse.DenseArray, g *Grid, fieldDims, nt int) error {
	switch len(zeta.Shape) {
	case 2:
		if zeta.Shape[0] != g.Eta || zeta.Shape[1] != g.Xi {
			return fmt.Errorf("romsproc: free surface shape %v does not match grid (%d, %d)",
				zeta.Shape, g.Eta, g.Xi)
		}
	case 3:
		if fieldDims != 4 {
			return fmt.Errorf("romsproc: time-varying free surface given for a single-record field")
		}
		if zeta.Shape[0] != nt || zeta.Shape[1] != g.Eta || zeta.Shape[2] != g.Xi {
			return fmt.Errorf("romsproc: free surface shape %v does not match %d records on grid (%d, %d)",
				zeta.Shape, nt, g.Eta, g.Xi)
		}
	default:
		return fmt.Errorf("romsproc: free surface must be 2-D or 3-D but has %d dimensions", len(zeta.Shape))
	}
	return nil
}

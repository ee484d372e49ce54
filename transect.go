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
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/romsproc/interp"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371000.

// Transect interpolates layered data sampled along a waypoint path onto a
// regular (distance, depth) grid suitable for plotting a vertical slice.
// lon and lat give the waypoints; depth and data both have shape
// [layers, waypoints], with depths given either positive down or as
// negative z coordinates. nx and nz set the output resolution; zLevels,
// when non-nil, replaces the equidistant vertical axis and overrides nz.
//
// It returns the horizontal axis x [m from the first waypoint], the
// vertical axis z [m, negative down, ascending], and the interpolated
// values with shape [nz, nx]. Cells at or below the locally interpolated
// bottom depth are invalid.
func Transect(lon, lat []float64, depth, data *sparse.DenseArray, nx, nz int, zLevels []float64) (x, z []float64, vals *Masked, err error) {
	n := len(lon)
	if n < 2 {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: %d waypoints is too few to make a path", n)
	}
	if len(lat) != n {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: %d longitudes but %d latitudes", n, len(lat))
	}
	if len(depth.Shape) != 2 || depth.Shape[1] != n {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: depth shape %v does not match %d waypoints",
			depth.Shape, n)
	}
	if len(data.Shape) != 2 || data.Shape[0] != depth.Shape[0] || data.Shape[1] != n {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: data shape %v does not match depth shape %v",
			data.Shape, depth.Shape)
	}
	if nx < 2 {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: nx must be at least 2 but is %d", nx)
	}
	nlay := depth.Shape[0]

	// Work on a sign-normalized copy so caller data is untouched.
	dep := depth.Copy()
	for ii, v := range dep.Elements {
		if v > 0 {
			dep.Elements[ii] = -v
		}
	}
	minDepth, maxDepth := dep.Elements[0], dep.Elements[0]
	for _, v := range dep.Elements {
		minDepth = math.Min(minDepth, v)
		maxDepth = math.Max(maxDepth, v)
	}

	if zLevels == nil {
		if nz < 2 {
			return nil, nil, nil, fmt.Errorf("romsproc: transect: nz must be at least 2 but is %d", nz)
		}
		// Extend below the deepest sample so the bottom row is not an
		// extrapolation target.
		z = floats.Span(make([]float64, nz), minDepth-2, maxDepth)
	} else {
		z = make([]float64, len(zLevels))
		for i, v := range zLevels {
			if v > 0 {
				v = -v
			}
			z[i] = v
		}
		nz = len(z)
		if nz < 2 {
			return nil, nil, nil, fmt.Errorf("romsproc: transect: %d depth levels is too few", nz)
		}
	}
	var dz float64
	for i := 1; i < nz; i++ {
		dz += math.Abs(z[i] - z[i-1])
	}
	dz /= float64(nz - 1)

	// Cumulative great-circle distance along the path, first waypoint
	// at zero.
	dist := make([]float64, n)
	for i := 1; i < n; i++ {
		dist[i] = dist[i-1] + EarthDistance(lon[i-1], lat[i-1], lon[i], lat[i])
	}
	if dist[n-1] == 0 {
		return nil, nil, nil, fmt.Errorf("romsproc: transect: all waypoints coincide; the path has zero length")
	}
	dx := dist[n-1] / float64(n-1)

	// Bring horizontal and vertical units within a power of ten of each
	// other so the interpolation metric is not dominated by distance.
	zscale := math.Max(1, math.Pow(10, math.Floor(math.Log10(dx/dz))))

	x = floats.Span(make([]float64, nx), 0, dist[n-1])

	// Order the layers bottom-up by the first waypoint's depths and pad
	// the stack with a copy of the top layer at the surface and of the
	// bottom layer at twice the deepest depth, so targets near the
	// surface and the bed stay inside the sample hull.
	order := make([]int, nlay)
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		return dep.Get(order[a], 0) < dep.Get(order[b], 0)
	})
	var px, pz, pv []float64
	for i := 0; i < n; i++ {
		d := dist[i] / zscale
		px = append(px, d)
		pz = append(pz, 2*minDepth)
		pv = append(pv, data.Get(order[0], i))
		for _, k := range order {
			px = append(px, d)
			pz = append(pz, dep.Get(k, i))
			pv = append(pv, data.Get(k, i))
		}
		px = append(px, d)
		pz = append(pz, 0)
		pv = append(pv, data.Get(order[nlay-1], i))
	}

	rbf, err := interp.NewRBF(px, pz, pv)
	if err != nil {
		return nil, nil, nil, err
	}

	// The bottom mask follows the per-waypoint shallowest bathymetry,
	// interpolated along the path to a fractional vertical index and
	// truncated.
	bottom := make([]float64, n)
	for i := 0; i < n; i++ {
		b := dep.Get(0, i)
		for k := 1; k < nlay; k++ {
			b = math.Min(b, dep.Get(k, i))
		}
		bottom[i] = b
	}
	zIndex := make([]float64, nz)
	for k := range zIndex {
		zIndex[k] = float64(k)
	}
	bottomIdx := make([]float64, n)
	for i := range bottom {
		bottomIdx[i], err = interp.Linear(z, zIndex, bottom[i])
		if err != nil {
			return nil, nil, nil, err
		}
	}
	scaledDist := make([]float64, n)
	for i := range dist {
		scaledDist[i] = dist[i] / zscale
	}

	vals = newMasked(nz, nx)
	for i := 0; i < nx; i++ {
		xi := x[i] / zscale
		fidx, err := interp.Linear(scaledDist, bottomIdx, xi)
		if err != nil {
			return nil, nil, nil, err
		}
		idx := int(fidx)
		for k := 0; k < nz; k++ {
			vals.Data.Set(rbf.At(xi, z[k]), k, i)
			if k <= idx {
				vals.setInvalid(k, i)
			}
		}
	}
	return x, z, vals, nil
}

// EarthDistance returns the haversine great-circle distance in meters
// between two geographic points given in degrees.
func EarthDistance(lon1, lat1, lon2, lat2 float64) float64 {
	const deg2rad = math.Pi / 180
	dLat := (lat2 - lat1) * deg2rad
	dLon := (lon2 - lon1) * deg2rad
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1*deg2rad)*math.Cos(lat2*deg2rad)*math.Pow(math.Sin(dLon/2), 2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(a)))
}

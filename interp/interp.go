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

// Package interp provides the interpolation kernels used when resampling
// model output onto regular coordinates: clamped piecewise-linear
// interpolation in one dimension and radial basis function interpolation
// of scattered data in two.
package interp

import (
	"fmt"
	"sort"
)

// Linear evaluates the piecewise-linear function through the points
// (xs[i], ys[i]) at x. xs must be sorted in ascending order. Outside the
// range of xs the nearest endpoint value is returned.
func Linear(xs, ys []float64, x float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("romsproc: interp: mismatched lengths %d and %d", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return 0, fmt.Errorf("romsproc: interp: no points")
	}
	if x <= xs[0] {
		return ys[0], nil
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1], nil
	}
	i := sort.SearchFloat64s(xs, x)
	// xs[i-1] < x <= xs[i]
	frac := (x - xs[i-1]) / (xs[i] - xs[i-1])
	return ys[i-1] + frac*(ys[i]-ys[i-1]), nil
}

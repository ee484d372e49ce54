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

	"github.com/ctessum/sparse"
)

// Staggering identifies the horizontal grid point placement of a field on
// the Arakawa C-grid used by ROMS. Scalar (mass) quantities live on rho
// points; velocity components live on u and v points offset by half a grid
// cell in the xi and eta directions, respectively.
type Staggering int

// The supported staggering placements.
const (
	RhoPoint Staggering = iota
	UPoint
	VPoint
)

func (s Staggering) String() string {
	switch s {
	case RhoPoint:
		return "rho"
	case UPoint:
		return "u"
	case VPoint:
		return "v"
	default:
		return fmt.Sprintf("unknown staggering %d", int(s))
	}
}

// Grid is an immutable descriptor of a curvilinear ROMS model mesh: its
// horizontal dimensions, bathymetry, land/sea masks, vertical stretching
// parameters, and precomputed static depth and layer-thickness fields for
// the rho, u, and v staggerings. Create one with NewGrid or GridFromFile
// and do not modify its arrays afterwards; they are shared read-only
// between concurrent computations.
type Grid struct {
	// Eta and Xi are the horizontal dimensions at rho points, and N is
	// the number of vertical layers.
	Eta, Xi, N int

	// H is bathymetry [m, positive down] at rho points.
	H *sparse.DenseArray
	// MaskRho, MaskU, and MaskV are land/sea masks (1=sea, 0=land).
	MaskRho, MaskU, MaskV *sparse.DenseArray
	// LonRho and LatRho are geographic coordinates at rho points.
	// They may be nil when the grid has no georeference.
	LonRho, LatRho *sparse.DenseArray

	// Vertical stretching parameters.
	ThetaS, ThetaB, Hc      float64
	Vtransform, Vstretching int

	// SRho and CsR are the sigma coordinate and stretching curve at
	// layer centers; SW and CsW are the same at layer interfaces.
	SRho, CsR, SW, CsW []float64

	// Static (zeta=0) depth [m, negative down] and layer thickness [m]
	// fields with shape [N, eta, xi], sea bed at layer index 0.
	DepthRho, ThickRho *sparse.DenseArray
	DepthU, ThickU     *sparse.DenseArray
	DepthV, ThickV     *sparse.DenseArray
}

// NewGrid constructs a Grid from bathymetry h [eta, xi], a land/sea mask of
// the same shape, optional geographic coordinates, and the vertical
// stretching parameters, precomputing the static depth and thickness fields
// for all three staggerings.
func NewGrid(h, maskRho, lonRho, latRho *sparse.DenseArray, thetaS, thetaB, hc float64, vtransform, vstretching, n int) (*Grid, error) {
	if len(h.Shape) != 2 {
		return nil, fmt.Errorf("romsproc: grid: bathymetry must be 2-D but has %d dimensions", len(h.Shape))
	}
	if len(maskRho.Shape) != 2 || maskRho.Shape[0] != h.Shape[0] || maskRho.Shape[1] != h.Shape[1] {
		return nil, fmt.Errorf("romsproc: grid: mask shape %v does not match bathymetry shape %v",
			maskRho.Shape, h.Shape)
	}
	g := &Grid{
		Eta:         h.Shape[0],
		Xi:          h.Shape[1],
		N:           n,
		H:           h,
		MaskRho:     maskRho,
		LonRho:      lonRho,
		LatRho:      latRho,
		ThetaS:      thetaS,
		ThetaB:      thetaB,
		Hc:          hc,
		Vtransform:  vtransform,
		Vstretching: vstretching,
	}
	var err error
	g.SRho, g.CsR, err = Stretching(vstretching, thetaS, thetaB, n, false)
	if err != nil {
		return nil, err
	}
	g.SW, g.CsW, err = Stretching(vstretching, thetaS, thetaB, n, true)
	if err != nil {
		return nil, err
	}
	g.DepthRho, err = Depth(vtransform, h, hc, g.SRho, g.CsR, nil)
	if err != nil {
		return nil, err
	}
	g.ThickRho, err = Thickness(vtransform, h, hc, g.SW, g.CsW, nil)
	if err != nil {
		return nil, err
	}
	g.DepthU = rho2u(g.DepthRho)
	g.ThickU = rho2u(g.ThickRho)
	g.DepthV = rho2v(g.DepthRho)
	g.ThickV = rho2v(g.ThickRho)

	g.MaskU = sparse.ZerosDense(g.Eta, g.Xi-1)
	for j := 0; j < g.Eta; j++ {
		for i := 0; i < g.Xi-1; i++ {
			g.MaskU.Set(maskRho.Get(j, i)*maskRho.Get(j, i+1), j, i)
		}
	}
	g.MaskV = sparse.ZerosDense(g.Eta-1, g.Xi)
	for j := 0; j < g.Eta-1; j++ {
		for i := 0; i < g.Xi; i++ {
			g.MaskV.Set(maskRho.Get(j, i)*maskRho.Get(j+1, i), j, i)
		}
	}
	return g, nil
}

// rho2u transforms a 2-D or 3-D rho-point array to u points by averaging
// horizontally adjacent rho values in the xi direction.
func rho2u(a *sparse.DenseArray) *sparse.DenseArray {
	return averageAdjacent(a, len(a.Shape)-1)
}

// rho2v transforms a 2-D or 3-D rho-point array to v points by averaging
// horizontally adjacent rho values in the eta direction.
func rho2v(a *sparse.DenseArray) *sparse.DenseArray {
	return averageAdjacent(a, len(a.Shape)-2)
}

// averageAdjacent averages adjacent elements along dimension dim, shrinking
// that dimension by one.
func averageAdjacent(a *sparse.DenseArray, dim int) *sparse.DenseArray {
	shape := make([]int, len(a.Shape))
	copy(shape, a.Shape)
	shape[dim]--
	out := sparse.ZerosDense(shape...)
	index := make([]int, len(shape))
	for ii := range out.Elements {
		copy(index, out.IndexNd(ii))
		v1 := a.Get(index...)
		index[dim]++
		v2 := a.Get(index...)
		out.Elements[ii] = (v1 + v2) / 2
	}
	return out
}

// StaggerFromShape infers the staggering of a field from the horizontal
// extent of its trailing two dimensions. It is meant to be called once
// where a field enters a computation, never repeatedly inside loops.
func (g *Grid) StaggerFromShape(shape []int) (Staggering, error) {
	if len(shape) < 2 {
		return RhoPoint, fmt.Errorf("romsproc: grid: field must have at least 2 dimensions but has %d", len(shape))
	}
	eta, xi := shape[len(shape)-2], shape[len(shape)-1]
	switch {
	case eta == g.Eta && xi == g.Xi:
		return RhoPoint, nil
	case eta == g.Eta && xi == g.Xi-1:
		return UPoint, nil
	case eta == g.Eta-1 && xi == g.Xi:
		return VPoint, nil
	}
	return RhoPoint, fmt.Errorf("romsproc: grid: horizontal extent (%d, %d) matches no staggering of a %d x %d grid",
		eta, xi, g.Eta, g.Xi)
}

// Mask returns the land/sea mask for the given staggering.
func (g *Grid) Mask(stag Staggering) *sparse.DenseArray {
	switch stag {
	case UPoint:
		return g.MaskU
	case VPoint:
		return g.MaskV
	default:
		return g.MaskRho
	}
}

// depthThickness returns depth and layer thickness fields for the given
// staggering. When zeta is nil the precomputed static fields are returned
// and must be treated as read-only; otherwise both fields are recomputed
// for the displaced free surface.
func (g *Grid) depthThickness(stag Staggering, zeta *sparse.DenseArray) (depth, thick *sparse.DenseArray, err error) {
	if zeta == nil {
		switch stag {
		case UPoint:
			return g.DepthU, g.ThickU, nil
		case VPoint:
			return g.DepthV, g.ThickV, nil
		default:
			return g.DepthRho, g.ThickRho, nil
		}
	}
	depth, err = Depth(g.Vtransform, g.H, g.Hc, g.SRho, g.CsR, zeta)
	if err != nil {
		return nil, nil, err
	}
	thick, err = Thickness(g.Vtransform, g.H, g.Hc, g.SW, g.CsW, zeta)
	if err != nil {
		return nil, nil, err
	}
	switch stag {
	case UPoint:
		return rho2u(depth), rho2u(thick), nil
	case VPoint:
		return rho2v(depth), rho2v(thick), nil
	default:
		return depth, thick, nil
	}
}

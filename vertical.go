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

// Stretching computes the fractional vertical sigma coordinate s and its
// stretching curve C for the given ROMS vertical stretching scheme.
// Supported schemes are 1 (Song and Haidvogel 1994), 2 (Shchepetkin 2005),
// 4 (Shchepetkin 2010), and 5 (quadratic Legendre). When wGrid is true the
// returned coordinates are for the n+1 layer interfaces; otherwise they are
// for the n layer centers. s and C both run from -1 at the sea bed toward 0
// at the surface.
func Stretching(vstretching int, thetaS, thetaB float64, n int, wGrid bool) (s, c []float64, err error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("romsproc: stretching: invalid layer count %d", n)
	}
	nf := float64(n)
	if wGrid {
		s = make([]float64, n+1)
		for k := range s {
			s[k] = (float64(k) - nf) / nf
		}
	} else {
		s = make([]float64, n)
		for k := range s {
			s[k] = (float64(k) + 0.5 - nf) / nf
		}
	}
	if vstretching == 5 {
		// Quadratic Legendre polynomial sigma distribution.
		for k := range s {
			kf := float64(k)
			if !wGrid {
				kf += 0.5
			}
			s[k] = -(kf*kf-2*kf*nf+kf+nf*nf-nf)/(nf*nf-nf) -
				0.01*(kf*kf-kf*nf)/(1-nf)
		}
	}

	c = make([]float64, len(s))
	switch vstretching {
	case 1:
		if thetaS == 0 {
			copy(c, s)
			break
		}
		cff1 := 1 / math.Sinh(thetaS)
		cff2 := 0.5 / math.Tanh(0.5*thetaS)
		for k, sk := range s {
			c[k] = (1-thetaB)*cff1*math.Sinh(thetaS*sk) +
				thetaB*(cff2*math.Tanh(thetaS*(sk+0.5))-0.5)
		}
	case 2:
		const alpha, beta = 1.0, 1.0
		for k, sk := range s {
			var csur float64
			if thetaS > 0 {
				csur = (1 - math.Cosh(thetaS*sk)) / (math.Cosh(thetaS) - 1)
			} else {
				csur = -sk * sk
			}
			if thetaB > 0 {
				cbot := (math.Exp(thetaB*(sk+1))-1)/(math.Exp(thetaB)-1) - 1
				weight := math.Pow(sk+1, alpha) *
					(1 + (alpha/beta)*(1-math.Pow(sk+1, beta)))
				c[k] = weight*csur + (1-weight)*cbot
			} else {
				c[k] = csur
			}
		}
	case 4:
		for k, sk := range s {
			if thetaS > 0 {
				c[k] = (1 - math.Cosh(thetaS*sk)) / (math.Cosh(thetaS) - 1)
			} else {
				c[k] = -sk * sk
			}
			if thetaB > 0 {
				c[k] = (math.Exp(thetaB*c[k]) - 1) / (1 - math.Exp(-thetaB))
			}
		}
	case 5:
		for k, sk := range s {
			if thetaS > 0 {
				c[k] = (1 - math.Cosh(thetaS*sk)) / (math.Cosh(thetaS) - 1)
			} else {
				c[k] = -sk * sk
			}
			if thetaB > 0 {
				c[k] = (math.Exp(thetaB*(c[k]+1))-1)/(math.Exp(thetaB)-1) - 1
			}
		}
	default:
		return nil, nil, fmt.Errorf("romsproc: stretching: unsupported scheme %d", vstretching)
	}
	return s, c, nil
}

// Depth computes the physical depth [m, negative down] of each vertical
// coordinate level at each horizontal cell for the given ROMS vertical
// transform. h is bathymetry [m, positive down] with shape [eta, xi]; s and
// c are the sigma coordinate and stretching curve (layer centers or
// interfaces). zeta, if non-nil, is the free-surface height [m] with the
// same shape as h; when it is nil static (zeta=0) depths are returned.
// The result has shape [len(s), eta, xi] with the sea bed at index 0.
func Depth(vtransform int, h *sparse.DenseArray, hc float64, s, c []float64, zeta *sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(h.Shape) != 2 {
		return nil, fmt.Errorf("romsproc: depth: bathymetry must be 2-D but has %d dimensions", len(h.Shape))
	}
	if len(s) != len(c) {
		return nil, fmt.Errorf("romsproc: depth: s and C length mismatch: %d != %d", len(s), len(c))
	}
	if zeta != nil {
		if len(zeta.Shape) != 2 || zeta.Shape[0] != h.Shape[0] || zeta.Shape[1] != h.Shape[1] {
			return nil, fmt.Errorf("romsproc: depth: free surface shape %v does not match bathymetry shape %v",
				zeta.Shape, h.Shape)
		}
	}
	z := sparse.ZerosDense(len(s), h.Shape[0], h.Shape[1])
	for k := range s {
		for j := 0; j < h.Shape[0]; j++ {
			for i := 0; i < h.Shape[1]; i++ {
				hji := h.Get(j, i)
				var ssh float64
				if zeta != nil {
					ssh = zeta.Get(j, i)
				}
				switch vtransform {
				case 1:
					z0 := hc*s[k] + (hji-hc)*c[k]
					z.Set(z0+ssh*(1+z0/hji), k, j, i)
				case 2:
					z0 := (hc*s[k] + c[k]*hji) / (hc + hji)
					z.Set(ssh+(ssh+hji)*z0, k, j, i)
				default:
					return nil, fmt.Errorf("romsproc: depth: unsupported transform %d", vtransform)
				}
			}
		}
	}
	return z, nil
}

// Thickness computes the vertical thickness [m] of each model layer as the
// difference between consecutive interface depths. sW and cW must be the
// interface (w-grid) sigma coordinate and stretching curve with n+1 levels;
// the result has shape [n, eta, xi]. A non-nil zeta recomputes the
// thicknesses for the displaced free surface.
func Thickness(vtransform int, h *sparse.DenseArray, hc float64, sW, cW []float64, zeta *sparse.DenseArray) (*sparse.DenseArray, error) {
	zw, err := Depth(vtransform, h, hc, sW, cW, zeta)
	if err != nil {
		return nil, err
	}
	thick := sparse.ZerosDense(zw.Shape[0]-1, zw.Shape[1], zw.Shape[2])
	for k := 0; k < thick.Shape[0]; k++ {
		for j := 0; j < thick.Shape[1]; j++ {
			for i := 0; i < thick.Shape[2]; i++ {
				thick.Set(zw.Get(k+1, j, i)-zw.Get(k, j, i), k, j, i)
			}
		}
	}
	return thick, nil
}

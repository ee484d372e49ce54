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

package oa

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

// uniformColumn builds depths for n layers of water depth h at every
// cell, layer 0 at the bottom, and a field equal to the layer index.
func uniformColumn(n, eta, xi int, h float64) (depths, field *sparse.DenseArray) {
	depths = sparse.ZerosDense(n, eta, xi)
	field = sparse.ZerosDense(n, eta, xi)
	dz := h / float64(n)
	for k := 0; k < n; k++ {
		z := -h + (float64(k)+0.5)*dz
		for j := 0; j < eta; j++ {
			for i := 0; i < xi; i++ {
				depths.Set(z, k, j, i)
				field.Set(float64(k), k, j, i)
			}
		}
	}
	return depths, field
}

func allSea(eta, xi int) *sparse.DenseArray {
	m := sparse.ZerosDense(eta, xi)
	for i := range m.Elements {
		m.Elements[i] = 1
	}
	return m
}

func TestProfileMap(t *testing.T) {
	depths, field := uniformColumn(10, 2, 3, 100)
	mask := allSea(2, 3)

	// Halfway between two layer centers the linear profile gives the
	// midpoint value.
	pm, err := NewProfileMap(depths, mask, -50, 0)
	if err != nil {
		t.Fatal(err)
	}
	out, err := pm.Interpolate(field)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 2; j++ {
		for i := 0; i < 3; i++ {
			if got := out.Get(j, i); math.Abs(got-4.5) > 0.1 {
				t.Errorf("value at (%d, %d) = %g, want 4.5", j, i, got)
			}
		}
	}

	// Exactly at a layer center symmetric neighbors cancel.
	pm, err = NewProfileMap(depths, mask, -55, 0)
	if err != nil {
		t.Fatal(err)
	}
	out, err = pm.Interpolate(field)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Get(1, 2); math.Abs(got-4) > 0.05 {
		t.Errorf("value at a layer center = %g, want 4", got)
	}
}

func TestProfileMapEnvelope(t *testing.T) {
	depths, field := uniformColumn(10, 2, 2, 100)
	mask := allSea(2, 2)
	for _, target := range []float64{-200, -1, 1} {
		pm, err := NewProfileMap(depths, mask, target, 0)
		if err != nil {
			t.Fatal(err)
		}
		out, err := pm.Interpolate(field)
		if err != nil {
			t.Fatal(err)
		}
		if got := out.Get(0, 0); got != FillValue {
			t.Errorf("target %g outside the envelope gave %g, want the fill value", target, got)
		}
	}
}

func TestProfileMapLand(t *testing.T) {
	depths, field := uniformColumn(10, 2, 2, 100)
	mask := allSea(2, 2)
	mask.Elements[mask.Index1d(1, 0)] = 0
	pm, err := NewProfileMap(depths, mask, -50, 0)
	if err != nil {
		t.Fatal(err)
	}
	out, err := pm.Interpolate(field)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Get(1, 0); got != FillValue {
		t.Errorf("land column gave %g, want the fill value", got)
	}
	if got := out.Get(0, 0); got > 9.e10 {
		t.Error("sea column should hold a data value")
	}
}

func TestProfileMapValidation(t *testing.T) {
	depths, _ := uniformColumn(10, 2, 2, 100)
	mask := allSea(2, 2)
	if _, err := NewProfileMap(sparse.ZerosDense(10, 2), mask, -50, 0); err == nil {
		t.Error("expected an error for 2-D depths")
	}
	if _, err := NewProfileMap(depths, sparse.ZerosDense(3, 3), -50, 0); err == nil {
		t.Error("expected an error for a mismatched mask")
	}
	pm, err := NewProfileMap(depths, mask, -50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pm.Interpolate(sparse.ZerosDense(5, 2, 2)); err == nil {
		t.Error("expected an error for a mismatched field")
	}
}

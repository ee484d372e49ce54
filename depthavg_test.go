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
	"testing"

	"github.com/ctessum/sparse"
)

func TestDepthAverageFullColumn(t *testing.T) {
	g := testGrid(t, 4, 5, 10, 100)
	field := layerIndexField(10, 4, 5, 0)
	// Uniform layers make the whole-column average the plain mean of
	// the layer indices.
	out, err := DepthAverage(field, g, 100, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for j := 0; j < 4; j++ {
		for i := 0; i < 5; i++ {
			if !out.IsValid(j, i) {
				t.Fatalf("cell (%d, %d) should be valid", j, i)
			}
			if got := out.Data.Get(j, i); different(got, 4.5, 1e-9) {
				t.Errorf("average at (%d, %d) = %g, want 4.5", j, i, got)
			}
		}
	}
}

func TestDepthAverageBand(t *testing.T) {
	g := testGrid(t, 3, 3, 10, 100)
	field := layerIndexField(10, 3, 3, 0)
	// Whole layers are selected: centers -65 through -35 bracket the
	// -60 to -40 band, giving layers 3 through 6.
	out, err := DepthAverage(field, g, 60, 40, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Data.Get(1, 1); different(got, 4.5, 1e-9) {
		t.Errorf("band average = %g, want 4.5", got)
	}

	// Bound order must not matter.
	swapped, err := DepthAverage(field, g, 40, 60, nil)
	if err != nil {
		t.Fatal(err)
	}
	if different(swapped.Data.Get(1, 1), out.Data.Get(1, 1), 1e-12) {
		t.Error("swapped bounds changed the result")
	}

	// A constant field averages to itself over any band.
	constant := constantArray(5, 10, 3, 3)
	out, err = DepthAverage(constant, g, 80, 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Data.Get(0, 2); different(got, 5, 1e-9) {
		t.Errorf("constant field average = %g, want 5", got)
	}
}

func TestDepthAverageStaggered(t *testing.T) {
	g := testGrid(t, 4, 5, 10, 100)
	field := layerIndexField(10, 4, 4, 0) // u points
	out, err := DepthAverage(field, g, 100, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Data.Shape; got[0] != 4 || got[1] != 4 {
		t.Fatalf("unexpected u-point result shape %v", got)
	}
	if got := out.Data.Get(2, 2); different(got, 4.5, 1e-9) {
		t.Errorf("u-point average = %g, want 4.5", got)
	}
}

func TestDepthAverageLand(t *testing.T) {
	h := constantArray(100, 3, 3)
	mask := constantArray(1, 3, 3)
	mask.Elements[mask.Index1d(2, 0)] = 0
	g, err := NewGrid(h, mask, nil, nil, 0, 0, 0, 1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DepthAverage(layerIndexField(10, 3, 3, 0), g, 100, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.IsValid(2, 0) {
		t.Error("land cell should be invalid")
	}
	if !out.IsValid(0, 0) {
		t.Error("sea cell should be valid")
	}
}

func TestDepthAverageZeta(t *testing.T) {
	g := testGrid(t, 3, 3, 10, 100)
	constant := constantArray(3, 10, 3, 3)
	zeta := constantArray(1, 3, 3)
	out, err := DepthAverage(constant, g, 100, 0, zeta)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Data.Get(1, 1); different(got, 3, 1e-9) {
		t.Errorf("average with free surface = %g, want 3", got)
	}
}

func TestDepthAverageValidation(t *testing.T) {
	g := testGrid(t, 3, 3, 10, 100)
	field := layerIndexField(10, 3, 3, 0)
	if _, err := DepthAverage(field, g, 50, 50, nil); err == nil {
		t.Error("expected an error for an empty band")
	}
	if _, err := DepthAverage(sparse.ZerosDense(10, 3), g, 100, 0, nil); err == nil {
		t.Error("expected an error for a 2-D field")
	}
	if _, err := DepthAverage(sparse.ZerosDense(4, 3, 3), g, 100, 0, nil); err == nil {
		t.Error("expected an error for a wrong layer count")
	}
	if _, err := DepthAverage(field, g, 100, 0, sparse.ZerosDense(2, 2)); err == nil {
		t.Error("expected an error for a mismatched free surface")
	}
}

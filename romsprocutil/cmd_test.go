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

package romsprocutil

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"

	"github.com/spatialmodel/romsproc"
)

// writeVar writes data to variable name. Writing to the exact extent of
// a variable reports io.EOF, which is not a failure.
func writeVar(t *testing.T, f *cdf.File, name string, begin, end []int, data interface{}) {
	t.Helper()
	w := f.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil && err != io.EOF {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// writeTestROMS creates a history file over a flat 100 m deep basin with
// a uniform vertical grid, geographic coordinates spaced 0.1 degrees
// apart, and a single land cell at (0, 0).
func writeTestROMS(t *testing.T, filename string, nt, n, eta, xi int, val func(rec, k, j, i int) float64) {
	t.Helper()

	h := cdf.NewHeader(
		[]string{"ocean_time", "s_rho", "eta_rho", "xi_rho"},
		[]int{0, n, eta, xi})
	h.AddVariable("ocean_time", []string{"ocean_time"}, []float64{0})
	h.AddVariable("h", []string{"eta_rho", "xi_rho"}, []float64{0})
	h.AddVariable("mask_rho", []string{"eta_rho", "xi_rho"}, []float64{0})
	h.AddVariable("lon_rho", []string{"eta_rho", "xi_rho"}, []float64{0})
	h.AddVariable("lat_rho", []string{"eta_rho", "xi_rho"}, []float64{0})
	h.AddVariable("s_rho", []string{"s_rho"}, []float64{0})
	h.AddVariable("theta_s", nil, []float64{0})
	h.AddVariable("theta_b", nil, []float64{0})
	h.AddVariable("hc", nil, []float64{0})
	h.AddVariable("Vtransform", nil, []int32{0})
	h.AddVariable("Vstretching", nil, []int32{0})
	h.AddVariable("temp", []string{"ocean_time", "s_rho", "eta_rho", "xi_rho"}, []float64{0})
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}

	ff, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}

	hVals := make([]float64, eta*xi)
	maskVals := make([]float64, eta*xi)
	lonVals := make([]float64, eta*xi)
	latVals := make([]float64, eta*xi)
	for j := 0; j < eta; j++ {
		for i := 0; i < xi; i++ {
			hVals[j*xi+i] = 100
			maskVals[j*xi+i] = 1
			lonVals[j*xi+i] = 0.1 * float64(i)
			latVals[j*xi+i] = 0.1 * float64(j)
		}
	}
	maskVals[0] = 0
	writeVar(t, f, "h", []int{0, 0}, []int{eta, xi}, hVals)
	writeVar(t, f, "mask_rho", []int{0, 0}, []int{eta, xi}, maskVals)
	writeVar(t, f, "lon_rho", []int{0, 0}, []int{eta, xi}, lonVals)
	writeVar(t, f, "lat_rho", []int{0, 0}, []int{eta, xi}, latVals)

	s, _, err := romsproc.Stretching(1, 0, 0, n, false)
	if err != nil {
		t.Fatal(err)
	}
	writeVar(t, f, "s_rho", []int{0}, []int{n}, s)
	writeVar(t, f, "theta_s", nil, nil, []float64{0})
	writeVar(t, f, "theta_b", nil, nil, []float64{0})
	writeVar(t, f, "hc", nil, nil, []float64{0})
	writeVar(t, f, "Vtransform", nil, nil, []int32{1})
	writeVar(t, f, "Vstretching", nil, nil, []int32{1})

	temp := make([]float64, n*eta*xi)
	for rec := 0; rec < nt; rec++ {
		if err := f.FillRecord(rec); err != nil {
			t.Fatal(err)
		}
		writeVar(t, f, "ocean_time", []int{rec}, []int{rec + 1}, []float64{float64(rec)})
		for k := 0; k < n; k++ {
			for j := 0; j < eta; j++ {
				for i := 0; i < xi; i++ {
					temp[(k*eta+j)*xi+i] = val(rec, k, j, i)
				}
			}
		}
		writeVar(t, f, "temp", []int{rec, 0, 0, 0}, []int{rec + 1, 0, 0, 0}, temp)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
}

func TestVersionCmd(t *testing.T) {
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestConstantDepthCmd(t *testing.T) {
	const nt, n, eta, xi = 2, 10, 3, 3
	dir := t.TempDir()
	inFile := filepath.Join(dir, "hist.nc")
	outFile := filepath.Join(dir, "out.nc")
	// In a uniform 10-layer grid, -50 m falls midway between layers 4
	// and 5, so a field equal to the layer index samples to 4.5.
	writeTestROMS(t, inFile, nt, n, eta, xi,
		func(rec, k, j, i int) float64 { return float64(k + 10*rec) })

	Cfg.Set("InputFile", inFile)
	Cfg.Set("OutputFile", outFile)
	Cfg.Set("Variable", "temp")
	Cfg.Set("Depth", 50.0)
	Root.SetArgs([]string{"constant-depth"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	d, err := romsproc.OpenDataset(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	out, err := d.Read("temp")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Shape) != 3 || out.Shape[0] != nt || out.Shape[1] != eta || out.Shape[2] != xi {
		t.Fatalf("output has shape %v", out.Shape)
	}
	for rec := 0; rec < nt; rec++ {
		want := 4.5 + 10*float64(rec)
		if got := out.Get(rec, 1, 1); math.Abs(got-want) > 0.01 {
			t.Errorf("record %d value = %g, want %g", rec, got, want)
		}
		if got := out.Get(rec, 0, 0); got < 9e10 {
			t.Errorf("land cell in record %d = %g, want fill value", rec, got)
		}
	}
}

func TestDepthAvgCmd(t *testing.T) {
	const nt, n, eta, xi = 1, 10, 3, 3
	dir := t.TempDir()
	inFile := filepath.Join(dir, "hist.nc")
	outFile := filepath.Join(dir, "out.nc")
	writeTestROMS(t, inFile, nt, n, eta, xi,
		func(rec, k, j, i int) float64 { return float64(k) })

	Cfg.Set("InputFile", inFile)
	Cfg.Set("OutputFile", outFile)
	Cfg.Set("Variable", "temp")
	Cfg.Set("Depth", 100.0)
	Cfg.Set("TopDepth", 0.0)
	Cfg.Set("Record", 0)
	Root.SetArgs([]string{"depth-average"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	d, err := romsproc.OpenDataset(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	out, err := d.Read("temp")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Shape) != 2 || out.Shape[0] != eta || out.Shape[1] != xi {
		t.Fatalf("output has shape %v", out.Shape)
	}
	// The full-column thickness-weighted mean of the layer indices.
	if got := out.Get(1, 1); math.Abs(got-4.5) > 1e-3 {
		t.Errorf("average = %g, want 4.5", got)
	}
	if got := out.Get(0, 0); got < 9e10 {
		t.Errorf("land cell = %g, want fill value", got)
	}
}

func TestTransectCmd(t *testing.T) {
	const nt, n, eta, xi = 1, 10, 3, 3
	dir := t.TempDir()
	inFile := filepath.Join(dir, "hist.nc")
	outFile := filepath.Join(dir, "out.nc")
	writeTestROMS(t, inFile, nt, n, eta, xi,
		func(rec, k, j, i int) float64 { return float64(k) })

	Cfg.Set("InputFile", inFile)
	Cfg.Set("OutputFile", outFile)
	Cfg.Set("Variable", "temp")
	Cfg.Set("Record", 0)
	Cfg.Set("Lon", []string{"0", "0.2"})
	Cfg.Set("Lat", []string{"0.1", "0.1"})
	Cfg.Set("NX", 4)
	Cfg.Set("NZ", 5)
	Root.SetArgs([]string{"transect"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}

	d, err := romsproc.OpenDataset(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	x, err := d.Read("x")
	if err != nil {
		t.Fatal(err)
	}
	if len(x.Elements) != 4 || x.Elements[0] != 0 {
		t.Fatalf("unexpected distance axis %v", x.Elements)
	}
	// 0.2 degrees of longitude at latitude 0.1.
	if math.Abs(x.Elements[3]-22239) > 10 {
		t.Errorf("path length = %g, want about 22239", x.Elements[3])
	}
	z, err := d.Read("z")
	if err != nil {
		t.Fatal(err)
	}
	if len(z.Elements) != 5 || math.Abs(z.Elements[0]+97) > 1e-6 || math.Abs(z.Elements[4]+5) > 1e-6 {
		t.Fatalf("unexpected depth axis %v", z.Elements)
	}
	out, err := d.Read("temp")
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Shape) != 2 || out.Shape[0] != 5 || out.Shape[1] != 4 {
		t.Fatalf("output has shape %v", out.Shape)
	}
	for i := 0; i < 4; i++ {
		// The lowest row is below the deepest layer center.
		if got := out.Get(0, i); got < 9e10 {
			t.Errorf("cell (0, %d) = %g, want fill value", i, got)
		}
		for k := 1; k < 5; k++ {
			got := out.Get(k, i)
			if got > 9e10 {
				t.Fatalf("cell (%d, %d) is masked", k, i)
			}
			// The field equals the layer index, which varies
			// linearly with depth; the surface and bottom padding
			// rows bend the interpolant near the axis ends.
			want := (z.Elements[k] + 95) / 10
			tol := 0.05
			if i == 1 || i == 2 {
				tol = 1.5
			}
			if math.Abs(got-want) > tol {
				t.Errorf("cell (%d, %d) = %g, want about %g", k, i, got, want)
			}
		}
	}
}

func TestToFloats(t *testing.T) {
	got, err := toFloats([]string{"1.5", "-2", "3e2"})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, -2, 300}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %g, want %g", i, got[i], want[i])
		}
	}
	if got, err := toFloats(nil); err != nil || got != nil {
		t.Errorf("empty list gave %v, %v", got, err)
	}
	if _, err := toFloats([]string{"bad"}); err == nil {
		t.Error("no error for an unparseable value")
	}
}

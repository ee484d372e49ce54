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
	"fmt"
	"os"

	"github.com/ctessum/cdf"

	"github.com/spatialmodel/romsproc"
)

// fillValue marks invalid cells in output files.
const fillValue float32 = 9.99e10

// saveMasked writes m to a new NetCDF file as variable name on the
// given fixed dimensions, storing fillValue at invalid cells.
func saveMasked(filename, name string, m *romsproc.Masked, dims []string) error {
	if len(dims) != len(m.Data.Shape) {
		return fmt.Errorf("romsproc: saving %s: %d dimension names for a %d-D array",
			name, len(dims), len(m.Data.Shape))
	}
	h := cdf.NewHeader(dims, m.Data.Shape)
	h.AddVariable(name, dims, []float32{0})
	h.AddAttribute(name, "_FillValue", []float32{fillValue})
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	ff, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	if err := writeMaskedVar(f, name, m); err != nil {
		return err
	}
	return nil
}

// saveTransect writes a transect slice with its distance and depth axes.
func saveTransect(filename, name string, x, z []float64, vals *romsproc.Masked) error {
	h := cdf.NewHeader([]string{"z", "x"}, []int{len(z), len(x)})
	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "long_name", "distance along transect")
	h.AddAttribute("x", "units", "meter")
	h.AddVariable("z", []string{"z"}, []float64{0})
	h.AddAttribute("z", "long_name", "depth")
	h.AddAttribute("z", "units", "meter")
	h.AddVariable(name, []string{"z", "x"}, []float32{0})
	h.AddAttribute(name, "_FillValue", []float32{fillValue})
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	ff, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("romsproc: creating output file: %v", err)
	}
	for axis, data := range map[string][]float64{"x": x, "z": z} {
		w := f.Writer(axis, []int{0}, []int{len(data)})
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("romsproc: writing %s: %v", axis, err)
		}
	}
	return writeMaskedVar(f, name, vals)
}

// writeMaskedVar writes the whole of m to variable name, substituting
// fillValue at invalid cells.
func writeMaskedVar(f *cdf.File, name string, m *romsproc.Masked) error {
	buf := make([]float32, len(m.Data.Elements))
	for i, v := range m.Data.Elements {
		if m.Mask.Elements[i] != 0 {
			buf[i] = fillValue
			continue
		}
		buf[i] = float32(v)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("romsproc: writing %s: %v", name, err)
	}
	return nil
}

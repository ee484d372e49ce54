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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Dataset is an open NetCDF model output file.
type Dataset struct {
	File *cdf.File
	f    *os.File
}

// OpenDataset opens the NetCDF file at filename for reading.
func OpenDataset(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("romsproc: opening netcdf file: %v", err)
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("romsproc: reading netcdf file %s: %v", filename, err)
	}
	return &Dataset{File: ff, f: f}, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error {
	return d.f.Close()
}

// NumRecords returns the number of records held by variable name, or its
// leading dimension length if it is not a record variable.
func (d *Dataset) NumRecords(name string) (int, error) {
	dims := d.File.Header.Lengths(name)
	if len(dims) == 0 {
		return 0, fmt.Errorf("romsproc: read netcdf: variable %v not in file", name)
	}
	if dims[0] != 0 {
		return dims[0], nil
	}
	return d.numRecs()
}

// numRecs counts the records in the file from its size.
func (d *Dataset) numRecs() (int, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("romsproc: read netcdf: %v", err)
	}
	return int(d.File.Header.NumRecs(fi.Size())), nil
}

// Read reads the whole of variable name into a float64 array, resolving
// the record dimension to the number of records present.
func (d *Dataset) Read(name string) (*sparse.DenseArray, error) {
	dims := d.File.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("romsproc: read netcdf: variable %v not in file", name)
	}
	if dims[0] != 0 {
		r := d.File.Reader(name, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("romsproc: read netcdf variable %s: %v", name, err)
		}
		data := sparse.ZerosDense(dims...)
		if err := fill64(data.Elements, buf); err != nil {
			return nil, fmt.Errorf("romsproc: read netcdf variable %s: %v", name, err)
		}
		return data, nil
	}
	// A record variable is stored one slab at a time, so it is read
	// one record at a time.
	nrec, err := d.numRecs()
	if err != nil {
		return nil, err
	}
	per := 1
	for _, l := range dims[1:] {
		per *= l
	}
	dims = append([]int{nrec}, dims[1:]...)
	data := sparse.ZerosDense(dims...)
	for rec := 0; rec < nrec; rec++ {
		recData, err := d.ReadRecord(name, rec)
		if err != nil {
			return nil, err
		}
		copy(data.Elements[rec*per:(rec+1)*per], recData.Elements)
	}
	return data, nil
}

// ReadRecord reads record rec of variable name into a float64 array of
// the variable's non-record shape.
func (d *Dataset) ReadRecord(name string, rec int) (*sparse.DenseArray, error) {
	dims := d.File.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, fmt.Errorf("romsproc: read netcdf: variable %v not in file", name)
	}
	dims = dims[1:]
	nread := 1
	for _, l := range dims {
		nread *= l
	}
	start, end := make([]int, len(dims)+1), make([]int, len(dims)+1)
	start[0], end[0] = rec, rec+1
	r := d.File.Reader(name, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("romsproc: read netcdf variable %s record %d: %v", name, rec, err)
	}
	data := sparse.ZerosDense(dims...)
	if err := fill64(data.Elements, buf); err != nil {
		return nil, fmt.Errorf("romsproc: read netcdf variable %s: %v", name, err)
	}
	return data, nil
}

// ReadScalar reads a scalar (or length-1) numeric variable.
func (d *Dataset) ReadScalar(name string) (float64, error) {
	found := false
	for _, v := range d.File.Header.Variables() {
		if v == name {
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("romsproc: read netcdf: variable %v not in file", name)
	}
	r := d.File.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return 0, fmt.Errorf("romsproc: read netcdf variable %s: %v", name, err)
	}
	out := make([]float64, 1)
	if err := fill64(out, buf); err != nil {
		return 0, fmt.Errorf("romsproc: read netcdf variable %s: %v", name, err)
	}
	return out[0], nil
}

// fill64 converts a buffer returned by a cdf reader into dst, which must
// not be longer than the buffer.
func fill64(dst []float64, buf interface{}) error {
	switch b := buf.(type) {
	case []float64:
		copy(dst, b)
	case []float32:
		for i := range dst {
			dst[i] = float64(b[i])
		}
	case []int32:
		for i := range dst {
			dst[i] = float64(b[i])
		}
	case []int16:
		for i := range dst {
			dst[i] = float64(b[i])
		}
	case []int8:
		for i := range dst {
			dst[i] = float64(b[i])
		}
	default:
		return fmt.Errorf("unsupported netcdf data type %T", buf)
	}
	return nil
}

// timeNames are checked in order when locating a dataset's time
// coordinate before falling back to any variable containing "time".
var timeNames = []string{"ocean_time", "time", "bry_time", "frc_time", "clim_time"}

// TimeVar returns the name of the dataset's time coordinate variable.
func (d *Dataset) TimeVar() (string, error) {
	vars := d.File.Header.Variables()
	have := make(map[string]bool)
	for _, v := range vars {
		have[v] = true
	}
	for _, name := range timeNames {
		if have[name] {
			return name, nil
		}
	}
	for _, v := range vars {
		if strings.Contains(strings.ToLower(v), "time") {
			return v, nil
		}
	}
	return "", fmt.Errorf("romsproc: no time variable in file")
}

// GridFromFile builds a Grid from the bathymetry, mask, and vertical
// stretching variables of a ROMS grid, history, or averages file.
func GridFromFile(filename string) (*Grid, error) {
	d, err := OpenDataset(filename)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	h, err := d.Read("h")
	if err != nil {
		return nil, err
	}
	mask, err := d.Read("mask_rho")
	if err != nil {
		return nil, err
	}
	// Geographic coordinates are absent from idealized domains.
	lon, err := d.Read("lon_rho")
	if err != nil {
		lon = nil
	}
	lat, err := d.Read("lat_rho")
	if err != nil {
		lat = nil
	}

	thetaS, err := d.ReadScalar("theta_s")
	if err != nil {
		return nil, err
	}
	thetaB, err := d.ReadScalar("theta_b")
	if err != nil {
		return nil, err
	}
	hc, err := d.ReadScalar("hc")
	if err != nil {
		return nil, err
	}
	vtransform, err := d.ReadScalar("Vtransform")
	if err != nil {
		return nil, err
	}
	vstretching, err := d.ReadScalar("Vstretching")
	if err != nil {
		return nil, err
	}
	sRho, err := d.Read("s_rho")
	if err != nil {
		return nil, err
	}

	return NewGrid(h, mask, lon, lat, thetaS, thetaB, hc,
		int(vtransform), int(vstretching), sRho.Shape[0])
}

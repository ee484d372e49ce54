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

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/spatialmodel/romsproc"
)

// toFloats converts a list of flag strings to numbers.
func toFloats(s []string) ([]float64, error) {
	if len(s) == 0 {
		return nil, nil
	}
	out := make([]float64, len(s))
	for i, v := range s {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// runConstantDepth resamples variable v from inFile at the given depth
// for all records and writes the result to outFile.
func runConstantDepth(gridF, inFile, outFile, v string, depth float64, applyZeta bool, nprocs int) error {
	g, err := romsproc.GridFromFile(gridF)
	if err != nil {
		return err
	}
	d, err := romsproc.OpenDataset(inFile)
	if err != nil {
		return err
	}
	defer d.Close()
	field, err := d.Read(v)
	if err != nil {
		return err
	}
	var zeta *sparse.DenseArray
	if applyZeta {
		zeta, err = d.Read("zeta")
		if err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"variable": v,
		"depth":    depth,
		"records":  field.Shape[0],
	}).Info("resampling at constant depth")
	result, err := romsproc.ConstantDepth(field, g, depth, zeta, nprocs)
	if err != nil {
		return err
	}
	dims := []string{"eta", "xi"}
	if len(result.Data.Shape) == 3 {
		dims = []string{"time", "eta", "xi"}
	}
	return saveMasked(outFile, v, result, dims)
}

// runDepthAverage averages variable v from record rec of inFile between
// depth and topDepth and writes the result to outFile.
func runDepthAverage(gridF, inFile, outFile, v string, depth, topDepth float64, applyZeta bool, rec int) error {
	g, err := romsproc.GridFromFile(gridF)
	if err != nil {
		return err
	}
	d, err := romsproc.OpenDataset(inFile)
	if err != nil {
		return err
	}
	defer d.Close()
	field, err := d.ReadRecord(v, rec)
	if err != nil {
		return err
	}
	var zeta *sparse.DenseArray
	if applyZeta {
		zeta, err = d.ReadRecord("zeta", rec)
		if err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"variable": v,
		"depth":    depth,
		"topDepth": topDepth,
		"record":   rec,
	}).Info("computing depth average")
	result, err := romsproc.DepthAverage(field, g, depth, topDepth, zeta)
	if err != nil {
		return err
	}
	return saveMasked(outFile, v, result, []string{"eta", "xi"})
}

// runTransect extracts variable v at the grid cells nearest the waypoint
// path from record rec of inFile, interpolates the vertical slice, and
// writes it to outFile.
func runTransect(gridF, inFile, outFile, v string, lon, lat []float64, nx, nz int, zLevels []float64, rec int) error {
	if len(lon) < 2 || len(lon) != len(lat) {
		return fmt.Errorf("romsproc: transect needs matching Lon and Lat lists of at least 2 waypoints")
	}
	g, err := romsproc.GridFromFile(gridF)
	if err != nil {
		return err
	}
	if g.LonRho == nil || g.LatRho == nil {
		return fmt.Errorf("romsproc: the grid in %s has no geographic coordinates", gridF)
	}
	d, err := romsproc.OpenDataset(inFile)
	if err != nil {
		return err
	}
	defer d.Close()
	field, err := d.ReadRecord(v, rec)
	if err != nil {
		return err
	}
	if len(field.Shape) != 3 || field.Shape[1] != g.Eta || field.Shape[2] != g.Xi {
		return fmt.Errorf("romsproc: transect requires a 3-D field on cell centers but %s has shape %v",
			v, field.Shape)
	}
	depth, data := extractColumns(g, field, lon, lat)
	log.WithFields(logrus.Fields{
		"variable":  v,
		"waypoints": len(lon),
	}).Info("building transect")
	x, z, vals, err := romsproc.Transect(lon, lat, depth, data, nx, nz, zLevels)
	if err != nil {
		return err
	}
	return saveTransect(outFile, v, x, z, vals)
}

// extractColumns samples the water columns nearest each waypoint,
// falling back to the nearest sea cell when a waypoint lands ashore.
func extractColumns(g *romsproc.Grid, field *sparse.DenseArray, lon, lat []float64) (depth, data *sparse.DenseArray) {
	n := len(lon)
	depth = sparse.ZerosDense(g.N, n)
	data = sparse.ZerosDense(g.N, n)
	for p := 0; p < n; p++ {
		bj, bi := 0, 0
		best := -1.0
		for j := 0; j < g.Eta; j++ {
			for i := 0; i < g.Xi; i++ {
				if g.MaskRho.Get(j, i) == 0 {
					continue
				}
				dist := romsproc.EarthDistance(lon[p], lat[p],
					g.LonRho.Get(j, i), g.LatRho.Get(j, i))
				if best < 0 || dist < best {
					best, bj, bi = dist, j, i
				}
			}
		}
		for k := 0; k < g.N; k++ {
			depth.Set(g.DepthRho.Get(k, bj, bi), k, p)
			data.Set(field.Get(k, bj, bi), k, p)
		}
	}
	return depth, data
}

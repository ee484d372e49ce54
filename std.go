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
	"log"
	"math"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// DefaultFields are the prognostic model variables used for initial
// condition error estimates when no field list is given.
var DefaultFields = []string{"zeta", "temp", "salt", "u", "v"}

// DefaultForcingFields are the surface forcing variables used for
// forcing error estimates when no field list is given.
var DefaultForcingFields = []string{"sustr", "svstr", "shflux", "ssflux"}

// stdClamp is the threshold above which a windowed standard deviation is
// considered spun-up noise and zeroed in initial condition files.
const stdClamp = 10.

// GenStdI computes windowed standard deviations of prognostic fields
// from a long model run and writes them to stdFile, one record per
// window. The window advances stdWindow records at a time and is widened
// by pad records on each side; the first skip+pad records are ignored as
// model spinup. A nil fields list selects DefaultFields. Values above 10
// are replaced with 0.
func GenStdI(romsFile, stdFile string, stdWindow, pad, skip int, fields []string) error {
	if stdWindow < 1 {
		return fmt.Errorf("romsproc: std: window of %d records is too small", stdWindow)
	}
	if pad < 0 || skip < 0 {
		return fmt.Errorf("romsproc: std: pad and skip must not be negative")
	}
	if fields == nil {
		fields = DefaultFields
	}
	d, err := OpenDataset(romsFile)
	if err != nil {
		return err
	}
	defer d.Close()
	timeVar, times, fields, err := stdInputs(d, fields)
	if err != nil {
		return err
	}
	out, ff, err := createStdFile(d, stdFile, timeVar, fields)
	if err != nil {
		return err
	}
	defer ff.Close()

	rec := 0
	for t := skip + pad; t < len(times)-stdWindow-pad; t += stdWindow {
		idx := spanIndices(t-pad, t+stdWindow+pad)
		if err := out.FillRecord(rec); err != nil {
			return fmt.Errorf("romsproc: std: extending output file: %v", err)
		}
		if err := writeStdRecord(d, out, rec, timeVar, times, idx, fields, true); err != nil {
			return err
		}
		rec++
	}
	if rec == 0 {
		log.Printf("romsproc: std: %d records is too short for window %d with pad %d and skip %d; nothing written",
			len(times), stdWindow, pad, skip)
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("romsproc: std: finalizing output file: %v", err)
	}
	return nil
}

// GenStdF computes the standard deviation of surface forcing fields over
// the given records (all records if nil) and writes a single-record file
// to stdFile. A nil fields list selects DefaultForcingFields.
func GenStdF(romsFile, stdFile string, records []int, fields []string) error {
	if fields == nil {
		fields = DefaultForcingFields
	}
	d, err := OpenDataset(romsFile)
	if err != nil {
		return err
	}
	defer d.Close()
	timeVar, times, fields, err := stdInputs(d, fields)
	if err != nil {
		return err
	}
	if records == nil {
		records = spanIndices(0, len(times))
	} else {
		var keep []int
		for _, r := range records {
			if r >= 0 && r < len(times) {
				keep = append(keep, r)
			}
		}
		records = keep
	}
	if len(records) == 0 {
		return fmt.Errorf("romsproc: std: no records selected")
	}
	out, ff, err := createStdFile(d, stdFile, timeVar, fields)
	if err != nil {
		return err
	}
	defer ff.Close()
	if err := out.FillRecord(0); err != nil {
		return fmt.Errorf("romsproc: std: extending output file: %v", err)
	}
	if err := writeStdRecord(d, out, 0, timeVar, times, records, fields, false); err != nil {
		return err
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("romsproc: std: finalizing output file: %v", err)
	}
	return nil
}

// stdInputs locates the time coordinate and filters the requested fields
// down to time-varying variables present in the file, in sorted order.
func stdInputs(d *Dataset, fields []string) (timeVar string, times []float64, kept []string, err error) {
	timeVar, err = d.TimeVar()
	if err != nil {
		return "", nil, nil, err
	}
	timeArr, err := d.Read(timeVar)
	if err != nil {
		return "", nil, nil, err
	}
	times = timeArr.Elements
	timeDim := d.File.Header.Dimensions(timeVar)[0]
	have := make(map[string]bool)
	for _, v := range d.File.Header.Variables() {
		have[v] = true
	}
	for _, v := range fields {
		if !have[v] {
			continue
		}
		dims := d.File.Header.Dimensions(v)
		if len(dims) < 2 || dims[0] != timeDim {
			log.Printf("romsproc: std: skipping %s: not a time-varying field", v)
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return "", nil, nil, fmt.Errorf("romsproc: std: none of the requested fields are in the file")
	}
	sort.Strings(kept)
	return timeVar, times, kept, nil
}

// createStdFile creates stdFile with the time coordinate and the given
// fields laid out on the same dimensions they have in the input dataset.
func createStdFile(d *Dataset, stdFile, timeVar string, fields []string) (*cdf.File, *os.File, error) {
	timeDim := d.File.Header.Dimensions(timeVar)[0]
	dimNames := []string{timeDim}
	dimLens := []int{0}
	seen := map[string]bool{timeDim: true}
	for _, v := range fields {
		names := d.File.Header.Dimensions(v)
		lens := d.File.Header.Lengths(v)
		for i, name := range names {
			if !seen[name] {
				seen[name] = true
				dimNames = append(dimNames, name)
				dimLens = append(dimLens, lens[i])
			}
		}
	}
	h := cdf.NewHeader(dimNames, dimLens)
	h.AddVariable(timeVar, []string{timeDim}, []float64{0})
	h.AddAttribute(timeVar, "long_name", "window-averaged time")
	for _, v := range fields {
		h.AddVariable(v, d.File.Header.Dimensions(v), []float32{0})
		h.AddAttribute(v, "long_name", v+" standard deviation")
	}
	h.Define()
	for _, err := range h.Check() {
		return nil, nil, fmt.Errorf("romsproc: std: creating output file: %v", err)
	}
	ff, err := os.Create(stdFile)
	if err != nil {
		return nil, nil, fmt.Errorf("romsproc: std: creating output file: %v", err)
	}
	out, err := cdf.Create(ff, h)
	if err != nil {
		ff.Close()
		return nil, nil, fmt.Errorf("romsproc: std: creating output file: %v", err)
	}
	return out, ff, nil
}

// writeStdRecord computes the per-cell standard deviation of each field
// over the records in idx and writes it, with the mean of the matching
// times, as record rec of out. When clamp is set, deviations above
// stdClamp are zeroed.
func writeStdRecord(d *Dataset, out *cdf.File, rec int, timeVar string, times []float64, idx []int, fields []string, clamp bool) error {
	var tsum float64
	for _, i := range idx {
		tsum += times[i]
	}
	tw := out.Writer(timeVar, []int{rec}, []int{rec + 1})
	if _, err := tw.Write([]float64{tsum / float64(len(idx))}); err != nil {
		return fmt.Errorf("romsproc: std: writing %s: %v", timeVar, err)
	}
	for _, v := range fields {
		std, err := fieldStd(d, v, idx)
		if err != nil {
			return err
		}
		if clamp {
			for i, val := range std {
				if val > stdClamp {
					std[i] = 0
				}
			}
		}
		ndim := len(d.File.Header.Dimensions(v))
		begin, end := make([]int, ndim), make([]int, ndim)
		begin[0], end[0] = rec, rec+1
		w := out.Writer(v, begin, end)
		if _, err := w.Write(std); err != nil {
			return fmt.Errorf("romsproc: std: writing %s: %v", v, err)
		}
	}
	return nil
}

// fieldStd computes the per-cell population standard deviation of
// variable v over the records in idx.
func fieldStd(d *Dataset, v string, idx []int) ([]float32, error) {
	var sum, sumSq []float64
	for _, r := range idx {
		data, err := d.ReadRecord(v, r)
		if err != nil {
			return nil, err
		}
		if sum == nil {
			sum = make([]float64, len(data.Elements))
			sumSq = make([]float64, len(data.Elements))
		}
		for i, val := range data.Elements {
			sum[i] += val
			sumSq[i] += val * val
		}
	}
	nrec := float64(len(idx))
	out := make([]float32, len(sum))
	for i := range sum {
		mean := sum[i] / nrec
		variance := sumSq[i]/nrec - mean*mean
		if variance < 0 {
			variance = 0
		}
		out[i] = float32(math.Sqrt(variance))
	}
	return out, nil
}

// spanIndices returns the integers in [start, end).
func spanIndices(start, end int) []int {
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

/*
Copyright © 2018 the nchelpers authors.
This file is part of nchelpers.

nchelpers is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nchelpers is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nchelpers.  If not, see <http://www.gnu.org/licenses/>.
*/

package nchelpers

import (
	"fmt"

	"github.com/ctessum/cdf"
)

// FileSource adapts a NetCDF classic file opened with the cdf package
// to the Source interface. The caller retains ownership of the
// underlying reader and is responsible for closing it.
type FileSource struct {
	File *cdf.File
}

// OpenSource opens a NetCDF file for metadata interpretation.
func OpenSource(rw cdf.ReaderWriterAt) (*FileSource, error) {
	ff, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("nchelpers: opening NetCDF file: %v", err)
	}
	return &FileSource{File: ff}, nil
}

// Variables implements Source.
func (f *FileSource) Variables() []string { return f.File.Header.Variables() }

// Dimensions implements Source.
func (f *FileSource) Dimensions(v string) []string {
	return f.File.Header.Dimensions(v)
}

// Lengths implements Source.
func (f *FileSource) Lengths(v string) []int { return f.File.Header.Lengths(v) }

// Attributes implements Source.
func (f *FileSource) Attributes(v string) []string {
	return f.File.Header.Attributes(v)
}

// Attribute implements Source.
func (f *FileSource) Attribute(v, a string) interface{} {
	return f.File.Header.GetAttribute(v, a)
}

// BytesPerElement implements Source.
func (f *FileSource) BytesPerElement(v string) int {
	switch f.File.Header.ZeroValue(v, 1).(type) {
	case []uint8, string:
		return 1
	case []int16:
		return 2
	case []int32, []float32:
		return 4
	case []float64:
		return 8
	}
	return 0
}

// ReadSlice implements Source. The cdf package reads contiguous byte
// ranges, so the hyperslab is read as a sequence of contiguous runs:
// the maximal suffix of dimensions that are read in full (plus the
// partial dimension just before it) forms one run, and the remaining
// outer dimensions are stepped through one index at a time.
func (f *FileSource) ReadSlice(v string, begin, end []int) ([]float64, error) {
	if !hasVariable(f, v) {
		return nil, fmt.Errorf("nchelpers: variable %s not in file", v)
	}
	lengths := f.File.Header.Lengths(v)
	if len(begin) != len(lengths) || len(end) != len(lengths) {
		return nil, fmt.Errorf("nchelpers: reading %s: index vectors must "+
			"have %d dimensions", v, len(lengths))
	}
	total := 1
	for i := range lengths {
		if begin[i] < 0 || end[i] > lengths[i] || begin[i] >= end[i] {
			return nil, fmt.Errorf("nchelpers: reading %s: invalid range "+
				"[%d,%d) on dimension %d of length %d",
				v, begin[i], end[i], i, lengths[i])
		}
		total *= end[i] - begin[i]
	}

	// A scalar variable has no dimensions to slice; read its single
	// value directly.
	if len(lengths) == 0 {
		r := f.File.Reader(v, nil, nil)
		buf := r.Zero(1)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("nchelpers: reading variable %s: %v", v, err)
		}
		return widenValues(nil, buf, v)
	}

	// j is the outermost dimension of the contiguous run.
	j := len(lengths) - 1
	for j > 0 && begin[j] == 0 && end[j] == lengths[j] {
		j--
	}
	run := end[j] - begin[j]
	for i := j + 1; i < len(lengths); i++ {
		run *= lengths[i]
	}

	out := make([]float64, 0, total)
	idx := make([]int, j)
	copy(idx, begin[:j])
	for {
		bvec := make([]int, len(lengths))
		copy(bvec, idx)
		bvec[j] = begin[j]
		r := f.File.Reader(v, bvec, nil)
		buf := r.Zero(run)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("nchelpers: reading variable %s: %v", v, err)
		}
		var err error
		if out, err = widenValues(out, buf, v); err != nil {
			return nil, err
		}
		// Advance the odometer over the outer dimensions.
		i := j - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < end[i] {
				break
			}
			idx[i] = begin[i]
		}
		if i < 0 {
			break
		}
	}
	return out, nil
}

// widenValues appends one buffer of values, as read from the file in
// its on-disk type, onto out as float64.
func widenValues(out []float64, buf interface{}, v string) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return append(out, b...), nil
	case []float32:
		for _, x := range b {
			out = append(out, float64(x))
		}
	case []int32:
		for _, x := range b {
			out = append(out, float64(x))
		}
	case []int16:
		for _, x := range b {
			out = append(out, float64(x))
		}
	case []uint8:
		for _, x := range b {
			out = append(out, float64(x))
		}
	default:
		return nil, fmt.Errorf("nchelpers: variable %s is not numeric "+
			"(%T)", v, buf)
	}
	return out, nil
}

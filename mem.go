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

import "fmt"

// MemVar is a variable held by a MemSource.
type MemVar struct {
	// Dims is the ordered list of dimension names the variable's shape
	// is defined by.
	Dims []string
	// Attrs maps attribute names to values.
	Attrs map[string]interface{}
	// Data holds the variable's values in row-major order. It may be
	// nil for variables whose values are never read.
	Data []float64
}

// MemSource is an in-memory implementation of Source. It is useful for
// building synthetic datasets in tests and for callers that assemble
// metadata from somewhere other than a NetCDF file.
type MemSource struct {
	// Attrs maps global attribute names to values.
	Attrs map[string]interface{}
	// DimOrder lists dimension names in file order.
	DimOrder []string
	// DimLens maps dimension names to lengths.
	DimLens map[string]int
	// Vars maps variable names to their definitions.
	Vars map[string]*MemVar
}

// Variables implements Source.
func (m *MemSource) Variables() []string {
	names := make([]string, 0, len(m.Vars))
	for name := range m.Vars {
		names = append(names, name)
	}
	return names
}

// Dimensions implements Source.
func (m *MemSource) Dimensions(v string) []string {
	if v == "" {
		return m.DimOrder
	}
	mv, ok := m.Vars[v]
	if !ok {
		return nil
	}
	return mv.Dims
}

// Lengths implements Source.
func (m *MemSource) Lengths(v string) []int {
	dims := m.Dimensions(v)
	if dims == nil {
		return nil
	}
	lengths := make([]int, len(dims))
	for i, d := range dims {
		lengths[i] = m.DimLens[d]
	}
	return lengths
}

// Attributes implements Source.
func (m *MemSource) Attributes(v string) []string {
	attrs := m.Attrs
	if v != "" {
		mv, ok := m.Vars[v]
		if !ok {
			return nil
		}
		attrs = mv.Attrs
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	return names
}

// Attribute implements Source.
func (m *MemSource) Attribute(v, a string) interface{} {
	if v == "" {
		return m.Attrs[a]
	}
	mv, ok := m.Vars[v]
	if !ok {
		return nil
	}
	return mv.Attrs[a]
}

// BytesPerElement implements Source. All in-memory values are float64.
func (m *MemSource) BytesPerElement(v string) int {
	if _, ok := m.Vars[v]; !ok {
		return 0
	}
	return 8
}

// ReadSlice implements Source.
func (m *MemSource) ReadSlice(v string, begin, end []int) ([]float64, error) {
	mv, ok := m.Vars[v]
	if !ok {
		return nil, fmt.Errorf("nchelpers: variable %s not in file", v)
	}
	lengths := m.Lengths(v)
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
	strides := make([]int, len(lengths))
	s := 1
	for i := len(lengths) - 1; i >= 0; i-- {
		strides[i] = s
		s *= lengths[i]
	}

	out := make([]float64, 0, total)
	idx := make([]int, len(lengths))
	copy(idx, begin)
	for {
		offset := 0
		for i, x := range idx {
			offset += x * strides[i]
		}
		out = append(out, mv.Data[offset])
		i := len(idx) - 1
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

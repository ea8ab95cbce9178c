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
	"io"
	"math"

	"github.com/ctessum/sparse"
)

// A Chunk is one step of a memory-bounded iteration over a variable:
// the values of the index range [Begin, End) as a dense array whose
// shape is End-Begin elementwise.
type Chunk struct {
	Begin, End []int
	Data       *sparse.DenseArray
}

// chunkLens divides the sizes of the chunked dimensions as evenly as
// possible subject to the byte ceiling. shape and chunked are parallel:
// chunked[i] marks dimensions to partition, ordered outermost first in
// iteration order. base is the byte size of one element times the full
// sizes of all unchunked dimensions. Dimensions are sized innermost
// first so inner chunks stay as large as the budget allows.
func chunkLens(shape []int, chunkOrder []int, base, maxBytes int) ([]int, error) {
	lens := make([]int, len(shape))
	copy(lens, shape)
	if base > maxBytes {
		return nil, nil // signaled by caller as ChunkSizeError
	}
	for i := len(chunkOrder) - 1; i >= 0; i-- {
		dim := chunkOrder[i]
		size := shape[dim]
		maxLen := maxBytes / base
		if maxLen >= size {
			base *= size
			continue
		}
		nChunks := (size + maxLen - 1) / maxLen
		lens[dim] = (size + nChunks - 1) / nChunks
		base *= lens[dim]
	}
	return lens, nil
}

// Chunks returns a generator iterating over the named variable in
// chunks of at most maxBytes bytes of returned values. chunkDims names
// the dimensions to partition, outermost first; dimensions not named
// are always loaded in full. When no dimensions are named, all of the
// variable's dimensions are partitionable in declaration order. The
// generator yields each chunk exactly once, covering the variable's
// index space without gap or overlap, and returns io.EOF when done. The
// iteration is single-pass and holds no state beyond its cursor.
//
// A ChunkSizeError results when even a single element of the chunked
// dimensions, with the unchunked dimensions loaded in full, exceeds
// maxBytes.
func (d *CFDataset) Chunks(varName string, maxBytes int, chunkDims ...string) (func() (*Chunk, error), error) {
	if !hasVariable(d.src, varName) {
		return nil, fmt.Errorf("nchelpers: no variable %s in file", varName)
	}
	dims := d.src.Dimensions(varName)
	shape := d.src.Lengths(varName)

	dimIndex := map[string]int{}
	for i, name := range dims {
		dimIndex[name] = i
	}
	if len(chunkDims) == 0 {
		chunkDims = dims
	}
	chunkOrder := make([]int, len(chunkDims))
	seen := map[string]bool{}
	for i, name := range chunkDims {
		j, ok := dimIndex[name]
		if !ok {
			return nil, fmt.Errorf("nchelpers: variable %s has no dimension %s",
				varName, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("nchelpers: dimension %s named more than "+
				"once for chunking %s", name, varName)
		}
		seen[name] = true
		chunkOrder[i] = j
	}

	// Values are returned as float64 regardless of the on-disk type, so
	// the budget is accounted at 8 bytes per element.
	const bytesPerElem = 8
	base := bytesPerElem
	isChunked := map[int]bool{}
	for _, j := range chunkOrder {
		isChunked[j] = true
	}
	for i, size := range shape {
		if !isChunked[i] {
			base *= size
		}
	}
	lens, _ := chunkLens(shape, chunkOrder, base, maxBytes)
	if lens == nil {
		return nil, &ChunkSizeError{Var: varName, MaxBytes: maxBytes, RowBytes: base}
	}

	// Cursor over the chunked dimensions, in the supplied order.
	offsets := make([]int, len(chunkOrder))
	done := false
	first := true

	return func() (*Chunk, error) {
		if done {
			return nil, io.EOF
		}
		if !first {
			// Advance the cursor, innermost supplied dimension fastest.
			i := len(chunkOrder) - 1
			for ; i >= 0; i-- {
				dim := chunkOrder[i]
				offsets[i] += lens[dim]
				if offsets[i] < shape[dim] {
					break
				}
				offsets[i] = 0
			}
			if i < 0 {
				done = true
				return nil, io.EOF
			}
		}
		first = false
		if len(chunkOrder) == 0 {
			done = true
		}

		begin := make([]int, len(shape))
		end := make([]int, len(shape))
		copy(end, shape)
		chunkShape := make([]int, len(shape))
		copy(chunkShape, shape)
		for i, dim := range chunkOrder {
			begin[dim] = offsets[i]
			end[dim] = offsets[i] + lens[dim]
			if end[dim] > shape[dim] {
				end[dim] = shape[dim]
			}
			chunkShape[dim] = end[dim] - begin[dim]
		}

		vals, err := d.src.ReadSlice(varName, begin, end)
		if err != nil {
			return nil, fmt.Errorf("nchelpers: reading chunk %v:%v of %s: %v",
				begin, end, varName, err)
		}
		data := sparse.ZerosDense(chunkShape...)
		copy(data.Elements, vals)
		return &Chunk{Begin: begin, End: end, Data: data}, nil
	}, nil
}

// VarRange returns the minimum and maximum values of the named
// variable, ignoring NaNs, reading at most maxBytes of values at a
// time.
func (d *CFDataset) VarRange(varName string, maxBytes int) (float64, float64, error) {
	next, err := d.Chunks(varName, maxBytes)
	if err != nil {
		return 0, 0, err
	}
	rangeMin, rangeMax := math.Inf(1), math.Inf(-1)
	for {
		chunk, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0, err
		}
		for _, v := range chunk.Data.Elements {
			if math.IsNaN(v) {
				continue
			}
			if v < rangeMin {
				rangeMin = v
			}
			if v > rangeMax {
				rangeMax = v
			}
		}
	}
	return rangeMin, rangeMax, nil
}

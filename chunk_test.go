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
	"errors"
	"io"
	"math"
	"reflect"
	"testing"
)

// gridSource builds a file with a tasmax variable of the given
// time/lat/lon shape, valued by flat index.
func gridSource(nTime, nLat, nLon int) *MemSource {
	data := make([]float64, nTime*nLat*nLon)
	for i := range data {
		data[i] = float64(i)
	}
	timeValues := make([]float64, nTime)
	for i := range timeValues {
		timeValues[i] = float64(i)
	}
	return &MemSource{
		Attrs:    map[string]interface{}{},
		DimOrder: []string{"time", "lat", "lon"},
		DimLens:  map[string]int{"time": nTime, "lat": nLat, "lon": nLon},
		Vars: map[string]*MemVar{
			"time": {
				Dims: []string{"time"},
				Attrs: map[string]interface{}{
					"units":    "days since 1950-01-01",
					"calendar": "365_day",
				},
				Data: timeValues,
			},
			"tasmax": {
				Dims: []string{"time", "lat", "lon"},
				Data: data,
			},
		},
	}
}

// A budget of a quarter of the variable partitions the time dimension
// into four contiguous chunks that reconstruct the variable exactly.
func TestChunksAlongTime(t *testing.T) {
	src := gridSource(100, 50, 50)
	d := New(src)
	// 25 time steps of 50x50 float64 values.
	next, err := d.Chunks("tasmax", 8*25*50*50, "time")
	if err != nil {
		t.Fatal(err)
	}

	var reconstructed []float64
	prevEnd := 0
	n := 0
	for {
		chunk, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if chunk.Begin[0] != prevEnd {
			t.Errorf("chunk %d begins at %d, want %d", n, chunk.Begin[0], prevEnd)
		}
		wantShape := []int{chunk.End[0] - chunk.Begin[0], 50, 50}
		if !reflect.DeepEqual(chunk.Data.Shape, wantShape) {
			t.Errorf("chunk %d shape: have %v, want %v",
				n, chunk.Data.Shape, wantShape)
		}
		prevEnd = chunk.End[0]
		reconstructed = append(reconstructed, chunk.Data.Elements...)
		n++
	}
	if n != 4 {
		t.Errorf("have %d chunks, want 4", n)
	}
	if prevEnd != 100 {
		t.Errorf("chunks end at %d, want 100", prevEnd)
	}
	for i, v := range reconstructed {
		if v != float64(i) {
			t.Fatalf("reconstructed[%d] = %g, want %d", i, v, i)
		}
	}
}

// With all dimensions partitionable, every index is visited exactly
// once.
func TestChunksMultiDim(t *testing.T) {
	src := gridSource(4, 2, 3)
	d := New(src)
	next, err := d.Chunks("tasmax", 8*3)
	if err != nil {
		t.Fatal(err)
	}

	seen := make([]int, 4*2*3)
	for {
		chunk, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if len(chunk.Data.Elements) > 3 {
			t.Errorf("chunk %v:%v has %d elements, want at most 3",
				chunk.Begin, chunk.End, len(chunk.Data.Elements))
		}
		for it := chunk.Begin[0]; it < chunk.End[0]; it++ {
			for iy := chunk.Begin[1]; iy < chunk.End[1]; iy++ {
				for ix := chunk.Begin[2]; ix < chunk.End[2]; ix++ {
					seen[(it*2+iy)*3+ix]++
				}
			}
		}
	}
	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestChunksBudgetTooSmall(t *testing.T) {
	d := New(gridSource(3, 2, 2))
	// One time step of 2x2 float64 values needs 32 bytes.
	_, err := d.Chunks("tasmax", 31, "time")
	var sizeErr *ChunkSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("have %v, want *ChunkSizeError", err)
	}
	if sizeErr.RowBytes != 32 {
		t.Errorf("RowBytes: have %d, want 32", sizeErr.RowBytes)
	}
}

func TestChunksUnknownDimension(t *testing.T) {
	d := New(gridSource(3, 2, 2))
	if _, err := d.Chunks("tasmax", 1<<20, "depth"); err == nil {
		t.Error("expected error for unknown dimension, got nil")
	}
	if _, err := d.Chunks("nosuchvar", 1<<20); err == nil {
		t.Error("expected error for unknown variable, got nil")
	}
}

// A dimension named twice would double-advance the cursor and revisit
// indices, so it is rejected up front.
func TestChunksDuplicateDimension(t *testing.T) {
	d := New(gridSource(3, 2, 2))
	if _, err := d.Chunks("tasmax", 1<<20, "time", "time"); err == nil {
		t.Error("expected error for duplicated dimension, got nil")
	}
}

// A budget larger than the whole variable yields a single chunk.
func TestChunksSinglePass(t *testing.T) {
	d := New(gridSource(3, 2, 2))
	next, err := d.Chunks("tasmax", 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	chunk, err := next()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(chunk.Begin, []int{0, 0, 0}) ||
		!reflect.DeepEqual(chunk.End, []int{3, 2, 2}) {
		t.Errorf("have %v:%v, want [0 0 0]:[3 2 2]", chunk.Begin, chunk.End)
	}
	if _, err := next(); err != io.EOF {
		t.Errorf("have %v, want io.EOF", err)
	}
}

func TestBytesPerElement(t *testing.T) {
	src := gridSource(3, 2, 2)
	if have := src.BytesPerElement("tasmax"); have != 8 {
		t.Errorf("have %d, want 8", have)
	}
	if have := src.BytesPerElement("nosuchvar"); have != 0 {
		t.Errorf("unknown variable: have %d, want 0", have)
	}
}

func TestVarRange(t *testing.T) {
	src := gridSource(4, 2, 2)
	src.Vars["tasmax"].Data[5] = math.NaN()
	src.Vars["tasmax"].Data[0] = -3
	d := New(src)
	rangeMin, rangeMax, err := d.VarRange("tasmax", 64)
	if err != nil {
		t.Fatal(err)
	}
	if rangeMin != -3 || rangeMax != 15 {
		t.Errorf("have %g..%g, want -3..15", rangeMin, rangeMax)
	}
}

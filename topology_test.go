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
	"reflect"
	"testing"
)

// dsgSource builds a synthetic discrete-sampling-geometry file: model
// output at a set of stream outlets instead of on a grid.
func dsgSource() *MemSource {
	return &MemSource{
		Attrs: map[string]interface{}{
			"product":                  "streamflow model output",
			"project_id":               "CMIP5",
			"hydromodel__forcing_type": "downscaled gcm",
		},
		DimOrder: []string{"time", "outlets"},
		DimLens:  map[string]int{"time": 3, "outlets": 2},
		Vars: map[string]*MemVar{
			"time": {
				Dims: []string{"time"},
				Attrs: map[string]interface{}{
					"units":    "days since 1950-01-01",
					"calendar": "standard",
				},
				Data: []float64{0, 1, 2},
			},
			"outlet_name": {
				Dims:  []string{"outlets"},
				Attrs: map[string]interface{}{"cf_role": "timeseries_id"},
				Data:  []float64{0, 1},
			},
			"lat": {
				Dims: []string{"outlets"},
				Data: []float64{49.1, 50.3},
			},
			"lon": {
				Dims: []string{"outlets"},
				Data: []float64{-123.1, -122.5},
			},
			"streamflow": {
				Dims: []string{"time", "outlets"},
				Attrs: map[string]interface{}{
					"coordinates": "outlet_name lat lon",
				},
				Data: make([]float64, 6),
			},
		},
	}
}

func TestDimAxes(t *testing.T) {
	src := &MemSource{
		DimOrder: []string{"time", "plev", "yc", "xc", "rlat", "sfc"},
		DimLens: map[string]int{
			"time": 1, "plev": 1, "yc": 1, "xc": 1, "rlat": 1, "sfc": 1,
		},
		Vars: map[string]*MemVar{
			// Unrecognized name classified through its axis attribute.
			"rlat": {
				Dims:  []string{"rlat"},
				Attrs: map[string]interface{}{"axis": "Y"},
				Data:  []float64{0},
			},
			// Reduced-grid dimension marked by a compress attribute.
			"sfc": {
				Dims:  []string{"sfc"},
				Attrs: map[string]interface{}{"compress": "yc xc"},
				Data:  []float64{0},
			},
		},
	}
	d := New(src)
	want := map[string]string{
		"time": "T",
		"plev": "Z",
		"yc":   "Y",
		"xc":   "X",
		"rlat": "Y",
		"sfc":  "S",
	}
	if have := d.DimAxes(); !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestAxesDim(t *testing.T) {
	d := New(downscaledSource())
	want := map[string]string{"T": "time", "Y": "lat", "X": "lon"}
	if have := d.AxesDim(); !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestSamplingGeometry(t *testing.T) {
	t.Run("gridded", func(t *testing.T) {
		d := New(downscaledSource())
		have, err := d.SamplingGeometry()
		if err != nil {
			t.Fatal(err)
		}
		if have != GeometryGridded {
			t.Errorf("have %s, want %s", have, GeometryGridded)
		}
	})

	t.Run("declared featureType", func(t *testing.T) {
		src := dsgSource()
		src.Attrs["featureType"] = "timeSeries"
		d := New(src)
		have, err := d.SamplingGeometry()
		if err != nil {
			t.Fatal(err)
		}
		if have != "dsg.timeSeries" {
			t.Errorf("have %s, want dsg.timeSeries", have)
		}
	})

	t.Run("recognized instance dimension", func(t *testing.T) {
		d := New(dsgSource())
		have, err := d.SamplingGeometry()
		if err != nil {
			t.Fatal(err)
		}
		if have != GeometryDSGTimeSeries {
			t.Errorf("have %s, want %s", have, GeometryDSGTimeSeries)
		}
	})

	t.Run("unclassifiable", func(t *testing.T) {
		src := &MemSource{
			DimOrder: []string{"bogus"},
			DimLens:  map[string]int{"bogus": 1},
			Vars:     map[string]*MemVar{},
		}
		d := New(src)
		_, err := d.SamplingGeometry()
		var dimErr *DimensionalityError
		if !errors.As(err, &dimErr) {
			t.Errorf("have %v, want *DimensionalityError", err)
		}
	})

	t.Run("time-invariant observational", func(t *testing.T) {
		src := &MemSource{
			Attrs:    map[string]interface{}{"frequency": "fx"},
			DimOrder: []string{"cell"},
			DimLens:  map[string]int{"cell": 4},
			Vars: map[string]*MemVar{
				"elevation": {Dims: []string{"cell"}, Data: make([]float64, 4)},
			},
		}
		d := New(src)
		have, err := d.SamplingGeometry()
		if err != nil {
			t.Fatal(err)
		}
		if have != GeometryGridded {
			t.Errorf("have %s, want %s", have, GeometryGridded)
		}
	})
}

func TestIsTimeInvariant(t *testing.T) {
	cases := []struct {
		name string
		src  *MemSource
		want bool
	}{
		{
			name: "no time axis and frequency fx",
			src: &MemSource{
				Attrs:    map[string]interface{}{"frequency": "fx"},
				DimOrder: []string{"lat", "lon"},
				DimLens:  map[string]int{"lat": 1, "lon": 1},
				Vars:     map[string]*MemVar{},
			},
			want: true,
		},
		{
			name: "no time axis without frequency",
			src: &MemSource{
				DimOrder: []string{"lat", "lon"},
				DimLens:  map[string]int{"lat": 1, "lon": 1},
				Vars:     map[string]*MemVar{},
			},
			want: false,
		},
		{
			name: "time axis present",
			src:  downscaledSource(),
			want: false,
		},
	}
	for _, c := range cases {
		have, err := New(c.src).IsTimeInvariant()
		if err != nil {
			t.Errorf("%s: %v", c.name, err)
			continue
		}
		if have != c.want {
			t.Errorf("%s: have %v, want %v", c.name, have, c.want)
		}
	}
}

func TestDependentVarNames(t *testing.T) {
	src := downscaledSource()
	src.Vars["time_bnds"] = &MemVar{
		Dims: []string{"time", "bnds"},
		Data: make([]float64, 8),
	}
	src.Vars["time"].Attrs["bounds"] = "time_bnds"
	src.DimOrder = append(src.DimOrder, "bnds")
	src.DimLens["bnds"] = 2
	src.Vars["pr"] = &MemVar{
		Dims: []string{"time", "lat", "lon"},
		Data: make([]float64, 16),
	}
	src.Vars["elevation"] = &MemVar{
		Dims: []string{"lat", "lon"},
		Data: make([]float64, 4),
	}
	d := New(src)

	if have, want := d.DependentVarNames(), []string{"elevation", "pr", "tasmax"}; !reflect.DeepEqual(have, want) {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := d.DependentVarNames("time"), []string{"pr", "tasmax"}; !reflect.DeepEqual(have, want) {
		t.Errorf("time: have %v, want %v", have, want)
	}
	if have, want := d.DependentVarNamesExact("lat", "lon"), []string{"elevation"}; !reflect.DeepEqual(have, want) {
		t.Errorf("exact lat/lon: have %v, want %v", have, want)
	}
}

func TestDSGAccessors(t *testing.T) {
	d := New(dsgSource())

	coords, err := d.CoordinateVars("streamflow")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"outlet_name", "lat", "lon"}; !reflect.DeepEqual(coords, want) {
		t.Errorf("have %v, want %v", coords, want)
	}

	dim, n, err := d.InstanceDim("streamflow")
	if err != nil {
		t.Fatal(err)
	}
	if dim != "outlets" || n != 2 {
		t.Errorf("have %s/%d, want outlets/2", dim, n)
	}

	id, err := d.IdInstanceVar("streamflow")
	if err != nil {
		t.Fatal(err)
	}
	if id != "outlet_name" {
		t.Errorf("have %s, want outlet_name", id)
	}

	x, err := d.SpatialInstanceVar("streamflow", "X")
	if err != nil {
		t.Fatal(err)
	}
	if x != "lon" {
		t.Errorf("have %s, want lon", x)
	}

	// Coordinate variables are not defined for gridded files.
	if _, err := New(downscaledSource()).CoordinateVars("tasmax"); err == nil {
		t.Error("expected error for gridded file, got nil")
	}
}

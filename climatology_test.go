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
	"testing"

	"github.com/pacificclimate/nchelpers/calendar"
)

// timeSource builds a file with the given time values under a 365-day
// calendar.
func timeSource(timeValues []float64) *MemSource {
	return &MemSource{
		Attrs:    map[string]interface{}{},
		DimOrder: []string{"time", "lat", "lon"},
		DimLens: map[string]int{
			"time": len(timeValues), "lat": 2, "lon": 2,
		},
		Vars: map[string]*MemVar{
			"time": {
				Dims: []string{"time"},
				Attrs: map[string]interface{}{
					"units":    "days since 1971-01-01",
					"calendar": "365_day",
				},
				Data: timeValues,
			},
			"tasmax": {
				Dims: []string{"time", "lat", "lon"},
				Data: make([]float64, len(timeValues)*4),
			},
		},
	}
}

// addBounds attaches a time bounds variable holding the given flat
// (start, end) pairs, declared by the given attribute ("bounds" or
// "climatology") on the time variable.
func addBounds(src *MemSource, attr, name string, pairs []float64) {
	src.Vars["time"].Attrs[attr] = name
	src.DimLens["bnds"] = 2
	src.DimOrder = append(src.DimOrder, "bnds")
	src.Vars[name] = &MemVar{
		Dims: []string{"time", "bnds"},
		Data: pairs,
	}
}

// climoPairs returns n non-overlapping (start, end) pairs each spanning
// the given number of days.
func climoPairs(n int, span float64) []float64 {
	pairs := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		start := float64(i) * (span + 30)
		pairs = append(pairs, start, start+span)
	}
	return pairs
}

func midpoints(pairs []float64) []float64 {
	mids := make([]float64, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		mids = append(mids, (pairs[i]+pairs[i+1])/2)
	}
	return mids
}

func TestClimatologyBoundsVarNameStrict(t *testing.T) {
	pairs := climoPairs(12, 370)
	src := timeSource(midpoints(pairs))
	addBounds(src, "climatology", "climatology_bnds", pairs)

	have, err := NewStrict(src).ClimatologyBoundsVarName()
	if err != nil {
		t.Fatal(err)
	}
	if want := "climatology_bnds"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}

	// Without the climatology attribute, strict mode finds nothing,
	// even with a likely-named variable in the file.
	src = timeSource(midpoints(pairs))
	addBounds(src, "bounds", "climatology_bounds", pairs)
	_, err = NewStrict(src).ClimatologyBoundsVarName()
	var notFound *MetadataNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("have %v, want *MetadataNotFoundError", err)
	}
}

// A bounds (not climatology) attribute referencing plausible
// climatological bounds identifies the variable in heuristic mode only.
func TestClimatologyBoundsFromTimeBounds(t *testing.T) {
	pairs := climoPairs(12, 370)
	src := timeSource(midpoints(pairs))
	addBounds(src, "bounds", "time_bnds", pairs)

	have, err := New(src).ClimatologyBoundsVarName()
	if err != nil {
		t.Fatal(err)
	}
	if want := "time_bnds"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}

	mym, err := New(src).IsMultiYearMean()
	if err != nil {
		t.Fatal(err)
	}
	if !mym {
		t.Error("IsMultiYearMean: have false, want true")
	}

	strict, err := NewStrict(src).IsMultiYearMean()
	if err != nil {
		t.Fatal(err)
	}
	if strict {
		t.Error("strict IsMultiYearMean: have true, want false")
	}
}

func TestClimatologyBoundsImplausible(t *testing.T) {
	cases := []struct {
		name  string
		pairs []float64
	}{
		{"pairs span less than a year", climoPairs(12, 200)},
		{"overlapping pairs", []float64{0, 400, 300, 700}},
		{"decreasing pairs", []float64{800, 1200, 0, 400}},
	}
	for _, c := range cases {
		src := timeSource(midpoints(c.pairs))
		addBounds(src, "bounds", "time_bnds", c.pairs)
		_, err := New(src).ClimatologyBoundsVarName()
		var inconclusive *HeuristicInconclusiveError
		if !errors.As(err, &inconclusive) {
			t.Errorf("%s: have %v, want *HeuristicInconclusiveError", c.name, err)
		}
	}
}

func TestLikelyClimoBoundsNames(t *testing.T) {
	pairs := climoPairs(4, 10950)
	src := timeSource(midpoints(pairs))
	// Present but not referenced by any attribute.
	src.DimLens["bnds"] = 2
	src.DimOrder = append(src.DimOrder, "bnds")
	src.Vars["climo_bnds"] = &MemVar{
		Dims: []string{"time", "bnds"},
		Data: pairs,
	}

	have, err := New(src).ClimatologyBoundsVarName()
	if err != nil {
		t.Fatal(err)
	}
	if want := "climo_bnds"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
}

// mustNum converts a date to a numeric time value for the fixtures.
func mustNum(t *testing.T, d calendar.Date) float64 {
	t.Helper()
	v, err := calendar.DateToNum(d, "days since 1971-01-01", calendar.NoLeap)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// Twelve timestamps on mid-month dates are heuristically a multi-year
// mean even with no bounds variable at all.
func TestMultiYearMeanSuspiciousLength(t *testing.T) {
	values := make([]float64, 12)
	for m := 1; m <= 12; m++ {
		values[m-1] = mustNum(t, calendar.Date{Year: 1985, Month: m, Day: 15})
	}
	d := New(timeSource(values))
	have, err := d.IsMultiYearMean()
	if err != nil {
		t.Fatal(err)
	}
	if !have {
		t.Error("have false, want true")
	}

	// The same length with off-pattern days is not.
	for m := 1; m <= 12; m++ {
		values[m-1] = mustNum(t, calendar.Date{Year: 1985, Month: m, Day: 3})
	}
	d = New(timeSource(values))
	have, err = d.IsMultiYearMean()
	if err != nil {
		t.Fatal(err)
	}
	if have {
		t.Error("have true, want false")
	}
}

// Seventeen timestamps covering monthly, seasonal and yearly means in
// file order.
func TestMultiYearMeanConcatenated(t *testing.T) {
	var values []float64
	for m := 1; m <= 12; m++ {
		values = append(values, mustNum(t, calendar.Date{Year: 1985, Month: m, Day: 15}))
	}
	for _, m := range []int{1, 4, 7, 10} {
		values = append(values, mustNum(t, calendar.Date{Year: 1985, Month: m, Day: 16}))
	}
	values = append(values, mustNum(t, calendar.Date{Year: 1985, Month: 7, Day: 2}))

	d := New(timeSource(values))
	have, err := d.IsMultiYearMean()
	if err != nil {
		t.Fatal(err)
	}
	if !have {
		t.Error("have false, want true")
	}
}

func TestTimeBoundsVarName(t *testing.T) {
	pairs := []float64{0, 1, 1, 2, 2, 3}
	src := timeSource(midpoints(pairs))
	addBounds(src, "bounds", "time_bnds", pairs)

	for _, d := range []*CFDataset{New(src), NewStrict(src)} {
		have, err := d.TimeBoundsVarName()
		if err != nil {
			t.Fatal(err)
		}
		if want := "time_bnds"; have != want {
			t.Errorf("have %s, want %s", have, want)
		}
	}

	// Likely name with no declaring attribute: heuristic only.
	src = timeSource(midpoints(pairs))
	src.DimLens["bnds"] = 2
	src.Vars["time_bounds"] = &MemVar{Dims: []string{"time", "bnds"}, Data: pairs}
	if have, err := New(src).TimeBoundsVarName(); err != nil || have != "time_bounds" {
		t.Errorf("have %s/%v, want time_bounds/nil", have, err)
	}
	if _, err := NewStrict(src).TimeBoundsVarName(); err == nil {
		t.Error("strict: expected error, got nil")
	}
}

// Repeated queries on an unmutated dataset return identical values.
func TestMemoizedIdempotence(t *testing.T) {
	pairs := climoPairs(12, 370)
	src := timeSource(midpoints(pairs))
	addBounds(src, "bounds", "time_bnds", pairs)
	d := New(src)

	first, err1 := d.IsMultiYearMean()
	second, err2 := d.IsMultiYearMean()
	if first != second || (err1 == nil) != (err2 == nil) {
		t.Errorf("have %v/%v then %v/%v, want identical", first, err1, second, err2)
	}

	n1, _ := d.ClimatologyBoundsVarName()
	n2, _ := d.ClimatologyBoundsVarName()
	if n1 != n2 {
		t.Errorf("have %s then %s, want identical", n1, n2)
	}
}

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
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pacificclimate/nchelpers/calendar"
)

// secondsIn converts a count of the given unit to seconds. Units here
// are fixed-length by CF convention; months and years are never time
// coordinate units.
func secondsIn(x float64, unit calendar.Unit) float64 {
	s, err := calendar.TimeToSeconds(x, unit)
	if err != nil {
		panic(err) // unreachable for the fixed units used below
	}
	return s
}

// TimeVarName returns the name of the time coordinate variable. It
// fails with a TimeInvariantDatasetError on a dataset declared
// time-invariant, and with a plain error when no dimension is
// attributed with time information.
func (d *CFDataset) TimeVarName() (string, error) {
	return d.timeVarName.get(func() (string, error) {
		if inv, err := d.IsTimeInvariant(); err != nil {
			return "", err
		} else if inv {
			return "", &TimeInvariantDatasetError{Op: "time variable"}
		}
		dim, ok := d.AxesDim()["T"]
		if !ok {
			return "", fmt.Errorf("nchelpers: no axis is attributed with " +
				"time information")
		}
		if !hasVariable(d.src, dim) {
			return "", fmt.Errorf("nchelpers: time dimension %s has no "+
				"coordinate variable", dim)
		}
		return dim, nil
	})
}

// TimeValues returns the values of the time coordinate variable in the
// file's native numeric units.
func (d *CFDataset) TimeValues() ([]float64, error) {
	return d.timeValues.get(func() ([]float64, error) {
		name, err := d.TimeVarName()
		if err != nil {
			return nil, err
		}
		return d.readAll(name)
	})
}

// readAll reads the full index space of the named variable.
func (d *CFDataset) readAll(varName string) ([]float64, error) {
	lengths := d.src.Lengths(varName)
	begin := make([]int, len(lengths))
	vals, err := d.src.ReadSlice(varName, begin, lengths)
	if err != nil {
		return nil, fmt.Errorf("nchelpers: reading variable %s: %v",
			varName, err)
	}
	return vals, nil
}

// TimeUnits returns the units attribute of the time variable, a string
// of the form "<unit> since <reference time>".
func (d *CFDataset) TimeUnits() (string, error) {
	name, err := d.TimeVarName()
	if err != nil {
		return "", err
	}
	return d.VarAttrString(name, "units")
}

// TimeCalendar returns the calendar declared by the time variable,
// defaulting to the standard calendar when the attribute is absent.
func (d *CFDataset) TimeCalendar() (calendar.Calendar, error) {
	name, err := d.TimeVarName()
	if err != nil {
		return calendar.Standard, err
	}
	val := d.src.Attribute(name, "calendar")
	if val == nil {
		return calendar.Standard, nil
	}
	return calendar.Parse(attrToString(val))
}

// TimeSteps returns the time coordinate values converted to
// calendar-aware dates.
func (d *CFDataset) TimeSteps() ([]calendar.Date, error) {
	values, err := d.TimeValues()
	if err != nil {
		return nil, err
	}
	units, err := d.TimeUnits()
	if err != nil {
		return nil, err
	}
	c, err := d.TimeCalendar()
	if err != nil {
		return nil, err
	}
	dates := make([]calendar.Date, len(values))
	for i, v := range values {
		dates[i], err = calendar.NumToDate(v, units, c)
		if err != nil {
			return nil, err
		}
	}
	return dates, nil
}

// TimeRange returns the minimum and maximum time coordinate values in
// the file's native numeric units.
func (d *CFDataset) TimeRange() (float64, float64, error) {
	values, err := d.TimeValues()
	if err != nil {
		return 0, 0, err
	}
	if len(values) == 0 {
		return 0, 0, fmt.Errorf("nchelpers: time variable is empty")
	}
	return floats.Min(values), floats.Max(values), nil
}

// TimeRangeAsDates returns the minimum and maximum time coordinate
// values as calendar-aware dates.
func (d *CFDataset) TimeRangeAsDates() (calendar.Date, calendar.Date, error) {
	tMin, tMax, err := d.TimeRange()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	units, err := d.TimeUnits()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	c, err := d.TimeCalendar()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	dMin, err := calendar.NumToDate(tMin, units, c)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	dMax, err := calendar.NumToDate(tMax, units, c)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return dMin, dMax, nil
}

// TimeStepSize returns the median of the intervals between successive
// time steps, in seconds. The median tolerates irregular spacing near
// the ends of the record better than the mean does.
func (d *CFDataset) TimeStepSize() (float64, error) {
	return d.stepSize.get(func() (float64, error) {
		values, err := d.TimeValues()
		if err != nil {
			return 0, err
		}
		if len(values) < 2 {
			return 0, fmt.Errorf("nchelpers: cannot derive a time step from "+
				"%d time value(s)", len(values))
		}
		units, err := d.TimeUnits()
		if err != nil {
			return 0, err
		}
		unit, err := calendar.Scale(units)
		if err != nil {
			return 0, err
		}
		diffs := make([]float64, len(values)-1)
		for i := range diffs {
			diffs[i] = values[i+1] - values[i]
		}
		sort.Float64s(diffs)
		n := len(diffs)
		median := diffs[n/2]
		if n%2 == 0 {
			// Even count: average the middle pair, so that a record
			// half regular and half irregular still lands in the
			// right tolerance band.
			median = (diffs[n/2-1] + diffs[n/2]) / 2
		}
		return calendar.TimeToSeconds(median, unit)
	})
}

// multiYearMeanResolutions maps the length of the time dimension of a
// multi-year mean file to the resolution(s) of the means it contains.
var multiYearMeanResolutions = map[int]string{
	1:  "yearly",
	4:  "seasonal",
	5:  "seasonal,yearly",
	12: "monthly",
	13: "monthly,yearly",
	17: "monthly,seasonal,yearly",
}

// resolutionStandardName buckets a time resolution in seconds into a
// standard descriptive string. A month can have between 28 and 31 days
// and a season between 88 and 92, depending on calendar and
// leap-yearness, so for median values any length within those limits is
// accepted.
func resolutionStandardName(seconds float64) string {
	for _, m := range []float64{1, 2, 5, 15, 30} {
		if seconds == secondsIn(m, calendar.Minutes) {
			return fmt.Sprintf("%d-minute", int(m))
		}
	}
	for _, h := range []float64{1, 3, 6, 12} {
		if seconds == secondsIn(h, calendar.Hours) {
			return fmt.Sprintf("%d-hourly", int(h))
		}
	}
	if seconds == secondsIn(1, calendar.Days) {
		return "daily"
	}
	if secondsIn(28, calendar.Days) <= seconds &&
		seconds <= secondsIn(31, calendar.Days) {
		return "monthly"
	}
	if secondsIn(88, calendar.Days) <= seconds &&
		seconds <= secondsIn(92, calendar.Days) {
		return "seasonal"
	}
	for _, d := range []float64{360, 365, 366} {
		if seconds == secondsIn(d, calendar.Days) {
			return "yearly"
		}
	}
	return "other"
}

// TimeResolution returns a standard string describing the time
// resolution of the file: "<n>-minute", "<n>-hourly", "daily",
// "monthly", "seasonal", "yearly", a comma-joined combination for
// multi-year means mixing resolutions, or "other". It fails with a
// TimeInvariantDatasetError on a time-invariant dataset.
func (d *CFDataset) TimeResolution() (string, error) {
	if inv, err := d.IsTimeInvariant(); err != nil {
		return "", err
	} else if inv {
		return "", &TimeInvariantDatasetError{Op: "time resolution"}
	}
	if mym, err := d.IsMultiYearMean(); err != nil {
		return "", err
	} else if mym {
		values, err := d.TimeValues()
		if err != nil {
			return "", err
		}
		if res, ok := multiYearMeanResolutions[len(values)]; ok {
			return res, nil
		}
		return "other", nil
	}
	step, err := d.TimeStepSize()
	if err != nil {
		return "", err
	}
	return resolutionStandardName(step), nil
}

// tresToMIPTable maps time resolution strings to MIP table names,
// standard where possible. "1-hourly" and "12-hourly" get custom names
// that are neither MIP tables nor frequency standard terms.
var tresToMIPTable = map[string]string{
	"1-minute":  "subhr",
	"2-minute":  "subhr",
	"5-minute":  "subhr",
	"15-minute": "subhr",
	"30-minute": "subhr",
	"1-hourly":  "1hr",
	"3-hourly":  "3hr",
	"6-hourly":  "6hr",
	"12-hourly": "12hr",
	"daily":     "day",
	"monthly":   "mon",
	"yearly":    "yr",
	"fx":        "fx",
	"fixed":     "fx",
}

// MIPTable returns the MIP table name corresponding to the file's time
// resolution, or "" if the resolution has no MIP table. Time-invariant
// files report "fx".
func (d *CFDataset) MIPTable() (string, error) {
	if inv, err := d.IsTimeInvariant(); err != nil {
		return "", err
	} else if inv {
		return "fx", nil
	}
	res, err := d.TimeResolution()
	if err != nil {
		return "", err
	}
	return tresToMIPTable[res], nil
}

// standardClimoYears are the standard climatological averaging periods,
// keyed by conventional abbreviation ('6190' is 1961-1990).
var standardClimoYears = map[string][2]int{
	"6190": {1961, 1990},
	"7100": {1971, 2000},
	"8110": {1981, 2010},
	"2020": {2010, 2039},
	"2050": {2040, 2069},
	"2080": {2070, 2099},
}

// ClimoPeriod is a standard climatological averaging period.
type ClimoPeriod struct {
	Key        string
	Start, End calendar.Date
}

// StandardClimoPeriods returns the standard climatological periods
// under the given calendar, ordered by start year. Periods begin Jan 1
// and end Dec 31 (Dec 30 under the 360-day calendar).
func StandardClimoPeriods(c calendar.Calendar) []ClimoPeriod {
	endDay := 31
	if c == calendar.Day360 {
		endDay = 30
	}
	periods := make([]ClimoPeriod, 0, len(standardClimoYears))
	for key, years := range standardClimoYears {
		periods = append(periods, ClimoPeriod{
			Key:   key,
			Start: calendar.Date{Year: years[0], Month: 1, Day: 1},
			End:   calendar.Date{Year: years[1], Month: 12, Day: endDay},
		})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Year < periods[j].Start.Year
	})
	return periods
}

// ClimoPeriods returns the standard climatological periods wholly
// contained in the file's time range. For seasonal-resolution files the
// final December is not required: the winter spanning the period's last
// year boundary belongs to the next period.
func (d *CFDataset) ClimoPeriods() ([]ClimoPeriod, error) {
	units, err := d.TimeUnits()
	if err != nil {
		return nil, err
	}
	c, err := d.TimeCalendar()
	if err != nil {
		return nil, err
	}
	tMin, tMax, err := d.TimeRange()
	if err != nil {
		return nil, err
	}
	res, err := d.TimeResolution()
	if err != nil {
		return nil, err
	}

	lastRequired := func(end calendar.Date) (calendar.Date, error) {
		if res == "seasonal" && end.Month == 12 {
			end.Month = 11
		}
		return calendar.TruncateToResolution(end, res)
	}

	var held []ClimoPeriod
	for _, p := range StandardClimoPeriods(c) {
		start, err := calendar.DateToNum(p.Start, units, c)
		if err != nil {
			return nil, err
		}
		required, err := lastRequired(p.End)
		if err != nil {
			// Resolutions like "other" have no truncation; no period
			// can be confirmed for them.
			return nil, nil
		}
		end, err := calendar.DateToNum(required, units, c)
		if err != nil {
			return nil, err
		}
		if tMin <= start && end <= tMax {
			held = append(held, p)
		}
	}
	return held, nil
}

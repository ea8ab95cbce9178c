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
	"fmt"

	"github.com/pacificclimate/nchelpers/calendar"
)

// likelyClimoBoundsNames and likelyTimeBoundsNames are variable names
// that files in the wild use for climatological and ordinary time
// bounds when the declaring attribute is missing.
var (
	likelyClimoBoundsNames = []string{
		"climatology_bounds", "climatology_bnds", "climo_bounds", "climo_bnds",
	}
	likelyTimeBoundsNames = []string{"time_bounds", "time_bnds"}
)

// ClimatologyBoundsVarName returns the name of the climatological time
// bounds variable. In strict mode the time variable must carry a
// climatology attribute naming it; absence is a MetadataNotFoundError.
// In heuristic mode, candidates are tried in a fixed order after the
// strict rule: a variable with a likely climatology-bounds name; the
// variable named by a bounds attribute, provided its values are
// plausible climatological bounds; a variable with a likely time-bounds
// name passing the same plausibility test. Each rejected candidate is
// logged; exhaustion is a HeuristicInconclusiveError.
func (d *CFDataset) ClimatologyBoundsVarName() (string, error) {
	return d.climoBounds.get(func() (string, error) {
		timeVar, err := d.TimeVarName()
		if err != nil {
			return "", err
		}

		if val := d.src.Attribute(timeVar, "climatology"); val != nil {
			return attrToString(val), nil
		}
		if d.strict {
			return "", &MetadataNotFoundError{Name: "climatology", Var: timeVar}
		}

		type candidate struct {
			name string
			eval func(name string) (bool, string)
		}

		exists := func(name string) (bool, string) {
			if hasVariable(d.src, name) {
				return true, ""
			}
			return false, "no such variable"
		}
		plausible := func(name string) (bool, string) {
			if ok, reason := exists(name); !ok {
				return false, reason
			}
			ok, err := d.plausibleClimoBounds(name)
			if err != nil {
				return false, err.Error()
			}
			if !ok {
				return false, "values are not plausible climatological bounds"
			}
			return true, ""
		}

		var candidates []candidate
		for _, name := range likelyClimoBoundsNames {
			candidates = append(candidates, candidate{name, exists})
		}
		if val := d.src.Attribute(timeVar, "bounds"); val != nil {
			candidates = append(candidates, candidate{attrToString(val), plausible})
		}
		for _, name := range likelyTimeBoundsNames {
			candidates = append(candidates, candidate{name, plausible})
		}

		var rejected []string
		for _, c := range candidates {
			ok, reason := c.eval(c.name)
			if ok {
				return c.name, nil
			}
			logger.Debugf("nchelpers: climatology bounds candidate %s "+
				"rejected: %s", c.name, reason)
			rejected = append(rejected, c.name)
		}
		return "", &HeuristicInconclusiveError{
			Property: "climatology bounds variable",
			Rejected: rejected,
		}
	})
}

// plausibleClimoBounds reports whether the values of the named bounds
// variable could be climatological bounds: every pair spans at least
// one calendar year (day count taken from the declared calendar), the
// pairs do not overlap, and they are monotonically non-decreasing.
func (d *CFDataset) plausibleClimoBounds(name string) (bool, error) {
	lengths := d.src.Lengths(name)
	if len(lengths) != 2 || lengths[1] != 2 {
		return false, nil
	}
	bounds, err := d.readAll(name)
	if err != nil {
		return false, err
	}
	if len(bounds) == 0 {
		return false, nil
	}
	units, err := d.TimeUnits()
	if err != nil {
		return false, err
	}
	unit, err := calendar.Scale(units)
	if err != nil {
		return false, err
	}
	c, err := d.TimeCalendar()
	if err != nil {
		return false, err
	}
	minYear, err := calendar.TimeToSeconds(float64(c.MinDaysInYear()), calendar.Days)
	if err != nil {
		return false, err
	}
	prevEnd := bounds[0]
	for i := 0; i+1 < len(bounds); i += 2 {
		start, end := bounds[i], bounds[i+1]
		span, err := calendar.TimeToSeconds(end-start, unit)
		if err != nil {
			return false, err
		}
		if span < minYear {
			return false, nil
		}
		if i > 0 && start < prevEnd {
			return false, nil
		}
		prevEnd = end
	}
	return true, nil
}

// TimeBoundsVarName returns the name of the time bounds variable. In
// strict mode it must be named by a bounds attribute on the time
// variable and exist; otherwise a variable with a likely name is also
// accepted.
func (d *CFDataset) TimeBoundsVarName() (string, error) {
	return d.timeBounds.get(func() (string, error) {
		timeVar, err := d.TimeVarName()
		if err != nil {
			return "", err
		}
		if val := d.src.Attribute(timeVar, "bounds"); val != nil {
			name := attrToString(val)
			if hasVariable(d.src, name) {
				return name, nil
			}
		}
		if d.strict {
			return "", &MetadataNotFoundError{Name: "bounds", Var: timeVar}
		}
		var rejected []string
		for _, name := range likelyTimeBoundsNames {
			if hasVariable(d.src, name) {
				return name, nil
			}
			rejected = append(rejected, name)
		}
		return "", &HeuristicInconclusiveError{
			Property: "time bounds variable",
			Rejected: rejected,
		}
	})
}

// ClimatologyBoundsValues returns the values of the climatology bounds
// variable in the file's native numeric units, as flat (start, end)
// pairs.
func (d *CFDataset) ClimatologyBoundsValues() ([]float64, error) {
	name, err := d.ClimatologyBoundsVarName()
	if err != nil {
		return nil, err
	}
	if !hasVariable(d.src, name) {
		return nil, fmt.Errorf("nchelpers: climatology bounds variable %s "+
			"does not exist in file", name)
	}
	return d.readAll(name)
}

// IsMultiYearMean reports whether the file contains multi-year means,
// determined by the presence of a climatological time bounds variable
// (CF conventions section 7.4). In heuristic mode, failing that, a
// "suspiciously" short time axis whose timestamps land on
// period-representative dates (mid-month, mid-season, mid-year) also
// qualifies. Heuristic exhaustion counts as false, not as an error.
func (d *CFDataset) IsMultiYearMean() (bool, error) {
	return d.multiYear.get(func() (bool, error) {
		// Without a time axis there can be no temporal means.
		if _, err := d.TimeVarName(); err != nil {
			return false, nil
		}

		if name, err := d.ClimatologyBoundsVarName(); err == nil && name != "" {
			return true, nil
		} else if err != nil {
			var notFound *MetadataNotFoundError
			var inconclusive *HeuristicInconclusiveError
			if !errors.As(err, &notFound) && !errors.As(err, &inconclusive) {
				return false, err
			}
		}
		if d.strict {
			return false, nil
		}

		steps, err := d.TimeSteps()
		if err != nil {
			return false, nil
		}
		checks, ok := map[int][]func(*[]calendar.Date) bool{
			1:  {checkYearly},
			4:  {checkSeasonal},
			12: {checkMonthly},
			5:  {checkSeasonal, checkYearly},
			13: {checkMonthly, checkYearly},
			16: {checkMonthly, checkSeasonal},
			17: {checkMonthly, checkSeasonal, checkYearly},
		}[len(steps)]
		if !ok {
			return false, nil
		}
		for _, check := range checks {
			if !check(&steps) {
				return false, nil
			}
		}
		return true, nil
	})
}

// IsMultiYear is an alias for IsMultiYearMean: every multi-year file
// PCIC handles holds means.
func (d *CFDataset) IsMultiYear() (bool, error) {
	return d.IsMultiYearMean()
}

// The period-representative date checks below consume dates from the
// front of the slice, so concatenated monthly/seasonal/yearly means are
// checked in file order.

func checkMonthly(steps *[]calendar.Date) bool {
	for month := 1; month <= 12; month++ {
		t := (*steps)[0]
		*steps = (*steps)[1:]
		if t.Month != month || t.Day < 14 || t.Day > 16 {
			return false
		}
	}
	return true
}

func checkSeasonal(steps *[]calendar.Date) bool {
	for _, month := range []int{1, 4, 7, 10} {
		t := (*steps)[0]
		*steps = (*steps)[1:]
		if t.Month != month || t.Day < 15 || t.Day > 17 {
			return false
		}
	}
	return true
}

func checkYearly(steps *[]calendar.Date) bool {
	t := (*steps)[0]
	*steps = (*steps)[1:]
	return (t.Month == 6 && t.Day == 30) ||
		(t.Month == 7 && (t.Day == 1 || t.Day == 2))
}

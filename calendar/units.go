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

package calendar

import (
	"fmt"
	"regexp"
	"strconv"
)

// Unit is a time-coordinate unit recognized in CF units strings.
type Unit string

// Units recognized in "<unit> since <reference>" strings.
const (
	Seconds Unit = "seconds"
	Minutes Unit = "minutes"
	Hours   Unit = "hours"
	Days    Unit = "days"
)

var secondsPerUnit = map[Unit]float64{
	Seconds: 1,
	Minutes: 60,
	Hours:   3600,
	Days:    86400,
}

// TimeToSeconds returns the number of seconds equal to x units of time,
// e.g., 10 minutes -> 600.
func TimeToSeconds(x float64, u Unit) (float64, error) {
	s, ok := secondsPerUnit[u]
	if !ok {
		return 0, fmt.Errorf("calendar: no conversion available for unit '%s'", u)
	}
	return x * s, nil
}

// SecondsToTime returns the number of units equal to s seconds of time,
// e.g., 600 seconds -> 10 minutes.
func SecondsToTime(s float64, u Unit) (float64, error) {
	k, ok := secondsPerUnit[u]
	if !ok {
		return 0, fmt.Errorf("calendar: no conversion available for unit '%s'", u)
	}
	return s / k, nil
}

var unitsRe = regexp.MustCompile(
	`^\s*(days|hours|minutes|seconds)\s+since\s+` +
		`(\d{1,4})-(\d{1,2})-(\d{1,2})` +
		`(?:[T ](\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.\d+)?)?)?`)

// ParseUnits splits a CF time units string of the form
// "<unit> since <reference date>" into its unit and reference date.
func ParseUnits(units string) (Unit, Date, error) {
	m := unitsRe.FindStringSubmatch(units)
	if m == nil {
		return "", Date{}, fmt.Errorf("calendar: units must be a string of "+
			"the form '<time units> since <reference time>', got '%s'", units)
	}
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	origin := Date{
		Year: atoi(m[2]), Month: atoi(m[3]), Day: atoi(m[4]),
		Hour: atoi(m[5]), Minute: atoi(m[6]), Second: atoi(m[7]),
	}
	return Unit(m[1]), origin, nil
}

// Scale returns just the unit token of a CF time units string.
func Scale(units string) (Unit, error) {
	u, _, err := ParseUnits(units)
	return u, err
}

// NumToDate converts a numeric time-coordinate value with the given
// units string to a date under calendar c.
func NumToDate(value float64, units string, c Calendar) (Date, error) {
	u, origin, err := ParseUnits(units)
	if err != nil {
		return Date{}, err
	}
	secs, err := TimeToSeconds(value, u)
	if err != nil {
		return Date{}, err
	}
	return c.Add(origin, secs), nil
}

// DateToNum converts a date under calendar c to the numeric
// time-coordinate value with the given units string.
func DateToNum(d Date, units string, c Calendar) (float64, error) {
	u, origin, err := ParseUnits(units)
	if err != nil {
		return 0, err
	}
	return SecondsToTime(c.Diff(origin, d), u)
}

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

// Package calendar converts between the numeric time coordinates found
// in CF (climate and forecast) files and calendar-aware dates. CF files
// declare time as "<unit> since <reference date>" together with a
// calendar attribute; simulation calendars frequently drop leap days
// (noleap) or use twelve 30-day months (360_day), so conversions cannot
// assume Gregorian month or year lengths.
package calendar

import (
	"fmt"
	"math"
)

// Calendar identifies a CF calendar kind.
type Calendar int

const (
	// Standard is the mixed Gregorian/Julian calendar. Dates here are
	// treated as proleptic Gregorian, which is exact for all dates after
	// 1582 and adequate for climate data.
	Standard Calendar = iota
	// ProlepticGregorian extends the Gregorian calendar backward in time.
	ProlepticGregorian
	// Julian has a leap year every fourth year without exception.
	Julian
	// NoLeap has 365 days in every year.
	NoLeap
	// AllLeap has 366 days in every year.
	AllLeap
	// Day360 has twelve 30-day months in every year.
	Day360
)

var calendarNames = map[string]Calendar{
	"standard":            Standard,
	"gregorian":           Standard,
	"proleptic_gregorian": ProlepticGregorian,
	"julian":              Julian,
	"noleap":              NoLeap,
	"365_day":             NoLeap,
	"all_leap":            AllLeap,
	"366_day":             AllLeap,
	"360_day":             Day360,
}

// Parse returns the Calendar named by a CF calendar attribute value.
func Parse(name string) (Calendar, error) {
	c, ok := calendarNames[name]
	if !ok {
		return Standard, fmt.Errorf("calendar: '%s' is not a recognized "+
			"calendar name", name)
	}
	return c, nil
}

func (c Calendar) String() string {
	switch c {
	case Standard:
		return "standard"
	case ProlepticGregorian:
		return "proleptic_gregorian"
	case Julian:
		return "julian"
	case NoLeap:
		return "noleap"
	case AllLeap:
		return "all_leap"
	case Day360:
		return "360_day"
	}
	return "unknown"
}

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func (c Calendar) leapYear(year int) bool {
	switch c {
	case NoLeap, Day360:
		return false
	case AllLeap:
		return true
	case Julian:
		return year%4 == 0
	}
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of the given month (1-12) in the given
// year under calendar c.
func (c Calendar) DaysInMonth(year, month int) int {
	if c == Day360 {
		return 30
	}
	if month == 2 && c.leapYear(year) {
		return 29
	}
	return monthLengths[month-1]
}

// DaysInYear returns the length of the given year under calendar c.
func (c Calendar) DaysInYear(year int) int {
	switch {
	case c == Day360:
		return 360
	case c.leapYear(year):
		return 366
	}
	return 365
}

// MinDaysInYear returns the length of the shortest possible year under
// calendar c. It is the day count that one full year is guaranteed to
// meet or exceed.
func (c Calendar) MinDaysInYear() int {
	switch c {
	case Day360:
		return 360
	case AllLeap:
		return 366
	}
	return 365
}

// A Date is a calendar-aware date and time of day. It carries no
// calendar of its own; the Calendar that produced it defines its
// semantics.
type Date struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// Before reports whether d is earlier than e.
func (d Date) Before(e Date) bool {
	a := [6]int{d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second}
	b := [6]int{e.Year, e.Month, e.Day, e.Hour, e.Minute, e.Second}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// dayNumber returns the number of days from year 1 January 1 to the
// given date under calendar c. Climate time spans are a few centuries,
// so simple year-by-year accumulation is fast enough.
func (c Calendar) dayNumber(year, month, day int) int {
	n := 0
	switch {
	case year >= 1:
		for y := 1; y < year; y++ {
			n += c.DaysInYear(y)
		}
	default:
		for y := year; y < 1; y++ {
			n -= c.DaysInYear(y)
		}
	}
	for m := 1; m < month; m++ {
		n += c.DaysInMonth(year, m)
	}
	return n + day - 1
}

// dateOfDayNumber is the inverse of dayNumber.
func (c Calendar) dateOfDayNumber(n int) (year, month, day int) {
	year = 1
	for n < 0 {
		year--
		n += c.DaysInYear(year)
	}
	for n >= c.DaysInYear(year) {
		n -= c.DaysInYear(year)
		year++
	}
	month = 1
	for n >= c.DaysInMonth(year, month) {
		n -= c.DaysInMonth(year, month)
		month++
	}
	return year, month, n + 1
}

// Add returns the date that lies the given number of seconds after d
// under calendar c. Negative durations move backward.
func (c Calendar) Add(d Date, seconds float64) Date {
	total := int64(d.Hour)*3600 + int64(d.Minute)*60 + int64(d.Second) +
		int64(math.Round(seconds))
	days := total / 86400
	rem := total % 86400
	if rem < 0 {
		days--
		rem += 86400
	}
	y, m, dd := c.dateOfDayNumber(c.dayNumber(d.Year, d.Month, d.Day) + int(days))
	return Date{
		Year: y, Month: m, Day: dd,
		Hour:   int(rem / 3600),
		Minute: int(rem % 3600 / 60),
		Second: int(rem % 60),
	}
}

// Diff returns the number of seconds from a to b under calendar c.
func (c Calendar) Diff(a, b Date) float64 {
	days := c.dayNumber(b.Year, b.Month, b.Day) -
		c.dayNumber(a.Year, a.Month, a.Day)
	secs := (b.Hour-a.Hour)*3600 + (b.Minute-a.Minute)*60 + (b.Second - a.Second)
	return float64(days)*86400 + float64(secs)
}

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

var (
	minuteRe = regexp.MustCompile(`^(\d+)-minute$`)
	hourlyRe = regexp.MustCompile(`^(\d+)-hourly$`)
)

// TruncateToResolution returns the earliest date in the same
// resolution-sized interval as d, for resolution strings as produced by
// time-resolution classification ("daily", "monthly", "seasonal", ...).
// Useful for checking whether two timestamps fall in the same month,
// season, etc. With seasonal resolution, January and February dates
// truncate to December 1 of the previous year: winter crosses the year
// boundary.
func TruncateToResolution(d Date, resolution string) (Date, error) {
	if m := minuteRe.FindStringSubmatch(resolution); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch n {
		case 1, 2, 5, 15, 30:
			return Date{Year: d.Year, Month: d.Month, Day: d.Day,
				Hour: d.Hour, Minute: d.Minute - d.Minute%n}, nil
		}
	}
	if m := hourlyRe.FindStringSubmatch(resolution); m != nil {
		n, _ := strconv.Atoi(m[1])
		switch n {
		case 1, 3, 6, 12:
			return Date{Year: d.Year, Month: d.Month, Day: d.Day,
				Hour: d.Hour - d.Hour%n}, nil
		}
	}
	switch resolution {
	case "daily":
		return Date{Year: d.Year, Month: d.Month, Day: d.Day}, nil
	case "monthly":
		return Date{Year: d.Year, Month: d.Month, Day: 1}, nil
	case "seasonal":
		if d.Month <= 2 {
			return Date{Year: d.Year - 1, Month: 12, Day: 1}, nil
		}
		return Date{Year: d.Year, Month: d.Month - d.Month%3, Day: 1}, nil
	case "yearly":
		return Date{Year: d.Year, Month: 1, Day: 1}, nil
	}
	return Date{}, fmt.Errorf("calendar: unsupported time resolution: %s",
		resolution)
}

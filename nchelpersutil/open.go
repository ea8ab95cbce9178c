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

package nchelpersutil

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pacificclimate/nchelpers"
)

// openDataset opens the NetCDF file at path as a CFDataset in the mode
// given by the strict option. The caller closes the returned closer
// when done with the dataset.
func openDataset(path string) (*nchelpers.CFDataset, io.Closer, error) {
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, nil, fmt.Errorf("nchelpers: problem opening file: %v", err)
	}
	src, err := nchelpers.OpenSource(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("nchelpers: problem reading file header: %v", err)
	}
	if Cfg.GetBool("strict") {
		return nchelpers.NewStrict(src), f, nil
	}
	return nchelpers.New(src), f, nil
}

// valueRange returns the minimum and maximum of vals, ignoring NaNs.
func valueRange(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

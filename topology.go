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
	"sort"
	"strings"
)

// Sampling geometries recognized by this package. Sampling geometry
// indicates how the spatial coordinates of the dependent variables are
// defined: the familiar XY grid, or a CF discrete sampling geometry
// (DSG) where locations are an arbitrary set of stations indexed by an
// instance dimension.
const (
	GeometryGridded       = "gridded"
	GeometryDSGTimeSeries = "dsg.timeSeries"
)

// dimToAxis maps well-known dimension names to canonical axis letters:
// 'X' (longitude), 'Y' (latitude), 'Z' (level), 'T' (time).
var dimToAxis = map[string]string{
	"lat":       "Y",
	"latitude":  "Y",
	"lon":       "X",
	"longitude": "X",
	"xc":        "X",
	"yc":        "Y",
	"x":         "X",
	"y":         "Y",
	"time":      "T",
	"timeofyear": "T",
	"plev":      "Z",
	"lev":       "Z",
	"level":     "Z",
	"depth":     "Z",
}

// standardNameToAxis resolves ambiguous dimension names through the
// standard_name attribute of their coordinate variable.
var standardNameToAxis = map[string]string{
	"time":      "T",
	"latitude":  "Y",
	"longitude": "X",
	"depth":     "Z",
	"air_pressure": "Z",
	"height":    "Z",
}

// instanceDimNames are well-known names for the instance (station
// index) dimension of a discrete sampling geometry file.
var instanceDimNames = map[string]bool{
	"station":  true,
	"stations": true,
	"instance": true,
	"outlets":  true,
	"obs":      true,
	"platform": true,
}

// DimNames returns the names of the dimensions of the named variable,
// or of all dimensions in the file if varName is empty.
func (d *CFDataset) DimNames(varName string) []string {
	return d.src.Dimensions(varName)
}

// DimAxes maps the given dimension names (all dimensions in the file if
// none are given) to canonical axis letters: 'X' (longitude),
// 'Y' (latitude), 'Z' (level), 'S' (reduced XY grid), 'T' (time),
// 'I' (DSG instance). The name table gives the first guess; axis and
// standard_name attributes on a same-named coordinate variable override
// it, and a compress attribute marks a reduced ('S') grid dimension.
func (d *CFDataset) DimAxes(dimNames ...string) map[string]string {
	if len(dimNames) == 0 {
		dimNames = d.DimNames("")
	}
	axes := map[string]string{}
	for _, dim := range dimNames {
		if axis, ok := dimToAxis[dim]; ok {
			axes[dim] = axis
		} else if instanceDimNames[dim] {
			axes[dim] = "I"
		}
		if !hasVariable(d.src, dim) {
			continue
		}
		if val := d.src.Attribute(dim, "axis"); val != nil {
			axes[dim] = attrToString(val)
		} else if val := d.src.Attribute(dim, "standard_name"); val != nil {
			if axis, ok := standardNameToAxis[attrToString(val)]; ok {
				axes[dim] = axis
			}
		}
		if hasAttribute(d.src, dim, "compress") {
			axes[dim] = "S"
		}
	}
	return axes
}

// AxesDim inverts DimAxes, mapping canonical axis letters to dimension
// names. Assumes at most one dimension per axis; if a file violates
// that, one of the dimensions wins arbitrarily.
func (d *CFDataset) AxesDim(dimNames ...string) map[string]string {
	inverted := map[string]string{}
	for dim, axis := range d.DimAxes(dimNames...) {
		inverted[axis] = dim
	}
	return inverted
}

// SamplingGeometry classifies the file's spatial structure. It returns
// GeometryGridded for XY-gridded files, "dsg.<featureType>" for files
// declaring a CF discrete sampling geometry, GeometryDSGTimeSeries when
// an instance dimension with an identifying variable is recognized
// without a featureType declaration, and a DimensionalityError when no
// spatial or instance structure is recognized and the file is not
// declared time-invariant.
func (d *CFDataset) SamplingGeometry() (string, error) {
	return d.geometry.get(func() (string, error) {
		if val := d.src.Attribute("", "featureType"); val != nil {
			return "dsg." + attrToString(val), nil
		}
		axes := d.AxesDim()
		if _, ok := axes["X"]; ok {
			if _, ok := axes["Y"]; ok {
				return GeometryGridded, nil
			}
		}
		if _, ok := axes["S"]; ok {
			return GeometryGridded, nil
		}
		if dim, ok := axes["I"]; ok && d.idInstanceVarName(dim) != "" {
			return GeometryDSGTimeSeries, nil
		}
		if inv, _ := d.IsTimeInvariant(); inv {
			// Time-invariant observational data (elevation, soil) is
			// gridded by definition here.
			return GeometryGridded, nil
		}
		return "", &DimensionalityError{Dims: d.DimNames("")}
	})
}

// idInstanceVarName returns the name of a variable on the given
// instance dimension that identifies instances (cf_role timeseries_id),
// or "" if none exists.
func (d *CFDataset) idInstanceVarName(instanceDim string) string {
	for _, v := range d.src.Variables() {
		dims := d.src.Dimensions(v)
		if len(dims) != 1 || dims[0] != instanceDim {
			continue
		}
		if role := d.src.Attribute(v, "cf_role"); role != nil &&
			attrToString(role) == "timeseries_id" {
			return v
		}
	}
	return ""
}

// IsTimeInvariant reports whether the file holds time-independent data
// such as elevation or soil type. A file qualifies only if it lacks a
// time axis AND declares frequency "fx": mere lack of a time dimension
// could plausibly be an error, but the frequency attribute indicates
// positive intent.
func (d *CFDataset) IsTimeInvariant() (bool, error) {
	return d.timeInvar.get(func() (bool, error) {
		if _, ok := d.AxesDim()["T"]; ok {
			return false, nil
		}
		freq, err := d.AttrString("frequency")
		if err != nil {
			var notFound *MetadataNotFoundError
			if errors.As(err, &notFound) {
				return false, nil
			}
			return false, err
		}
		return freq == "fx", nil
	})
}

// DependentVarNames returns the names of the dependent variables in the
// file whose dimension set is a superset of dims (any dependent
// variable when dims is empty). A dependent variable is one that is not
// itself a dimension and whose shape is defined by one or more
// dimensions; bounds, climatology, grid_mapping and coordinate
// variables referenced by other variables are excluded. The result is
// sorted for deterministic output.
func (d *CFDataset) DependentVarNames(dims ...string) []string {
	return d.dependentVarNames(dims, false)
}

// DependentVarNamesExact is DependentVarNames requiring the variable's
// dimension set to equal dims exactly.
func (d *CFDataset) DependentVarNamesExact(dims ...string) []string {
	return d.dependentVarNames(dims, true)
}

func (d *CFDataset) dependentVarNames(dims []string, exact bool) []string {
	key := fmt.Sprintf("%v/%v", dims, exact)
	if names, ok := d.dependent[key]; ok {
		return names
	}

	want := map[string]bool{}
	for _, dim := range dims {
		want[dim] = true
	}

	excluded := map[string]bool{}
	for _, dim := range d.src.Dimensions("") {
		excluded[dim] = true
	}
	for _, v := range d.src.Variables() {
		for _, attr := range []string{"bounds", "climatology", "grid_mapping"} {
			if val := d.src.Attribute(v, attr); val != nil {
				excluded[attrToString(val)] = true
			}
		}
		if val := d.src.Attribute(v, "coordinates"); val != nil {
			for _, name := range strings.Fields(attrToString(val)) {
				excluded[name] = true
			}
		}
	}

	var names []string
	for _, v := range d.src.Variables() {
		vdims := d.src.Dimensions(v)
		if len(vdims) == 0 || excluded[v] {
			continue
		}
		have := map[string]bool{}
		for _, dim := range vdims {
			have[dim] = true
		}
		ok := true
		for dim := range want {
			if !have[dim] {
				ok = false
				break
			}
		}
		if exact && len(have) != len(want) {
			ok = false
		}
		if ok {
			names = append(names, v)
		}
	}
	sort.Strings(names)
	d.dependent[key] = names
	return names
}

// CoordinateVars returns the names of the coordinate (instance)
// variables associated with the named variable. Valid only for DSG
// files.
func (d *CFDataset) CoordinateVars(varName string) ([]string, error) {
	if err := d.checkDSG("coordinate variables"); err != nil {
		return nil, err
	}
	val, err := d.VarAttr(varName, "coordinates")
	if err != nil {
		return nil, err
	}
	return strings.Fields(attrToString(val)), nil
}

// InstanceDim returns the name and length of the instance dimension
// associated with the named variable. Valid only for DSG files.
func (d *CFDataset) InstanceDim(varName string) (string, int, error) {
	coords, err := d.CoordinateVars(varName)
	if err != nil {
		return "", 0, err
	}
	if len(coords) == 0 {
		return "", 0, fmt.Errorf("nchelpers: variable %s has no coordinate "+
			"variables", varName)
	}
	dims := d.src.Dimensions(coords[0])
	if len(dims) == 0 {
		return "", 0, fmt.Errorf("nchelpers: coordinate variable %s of %s "+
			"has no dimensions", coords[0], varName)
	}
	return dims[0], d.src.Lengths(coords[0])[0], nil
}

// IdInstanceVar returns the coordinate variable of the named variable
// that provides a unique id for its instances (cf_role timeseries_id).
// Valid only for DSG files.
func (d *CFDataset) IdInstanceVar(varName string) (string, error) {
	coords, err := d.CoordinateVars(varName)
	if err != nil {
		return "", err
	}
	for _, c := range coords {
		if role := d.src.Attribute(c, "cf_role"); role != nil &&
			attrToString(role) == "timeseries_id" {
			return c, nil
		}
	}
	return "", fmt.Errorf("nchelpers: no coordinate of variable %s has "+
		"attribute cf_role with value timeseries_id", varName)
}

// SpatialInstanceVar returns the coordinate variable of the named
// variable that provides the position of its instances on the given
// axis ('X' or 'Y'). Valid only for DSG files.
func (d *CFDataset) SpatialInstanceVar(varName, axis string) (string, error) {
	coordNames, ok := map[string][]string{
		"X": {"lon", "longitude"},
		"Y": {"lat", "latitude"},
	}[strings.ToUpper(axis)]
	if !ok {
		return "", fmt.Errorf("nchelpers: axis must be X or Y, but was %s", axis)
	}
	coords, err := d.CoordinateVars(varName)
	if err != nil {
		return "", err
	}
	for _, c := range coords {
		for _, name := range coordNames {
			if c == name {
				return c, nil
			}
		}
	}
	return "", fmt.Errorf("nchelpers: no coordinate of variable %s has a "+
		"recognized %s-axis name", varName, axis)
}

func (d *CFDataset) checkDSG(what string) error {
	gm, err := d.SamplingGeometry()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(gm, "dsg.") {
		return fmt.Errorf("nchelpers: %s are defined only for files with "+
			"discrete sampling geometry; this file is %s", what, gm)
	}
	return nil
}

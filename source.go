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

// Source is a read-only handle on an opened self-describing dataset.
// The handle is owned by the caller: this package never mutates it and
// never closes it. All derived values computed by this package assume
// the underlying file is not modified while the handle is in use.
//
// The empty string is used as the variable name for the global
// (file-level) scope throughout, matching the convention of the cdf
// package's Header methods.
type Source interface {
	// Variables returns the names of all variables in the file.
	Variables() []string

	// Dimensions returns the ordered dimension names of variable v, of
	// all dimensions in the file if v == "", or nil if v does not exist.
	Dimensions(v string) []string

	// Lengths returns the lengths of the dimensions of variable v, of
	// all dimensions in the file if v == "", or nil if v does not exist.
	Lengths(v string) []int

	// Attributes returns the attribute names of variable v, or the
	// global attribute names if v == "".
	Attributes(v string) []string

	// Attribute returns the value of attribute a of variable v (global
	// if v == ""), or nil if no such attribute exists. Values are
	// strings or slices of a numeric type.
	Attribute(v, a string) interface{}

	// BytesPerElement returns the storage size of one element of
	// variable v, or 0 if v does not exist.
	BytesPerElement(v string) int

	// ReadSlice reads the hyperslab of variable v bounded by the
	// half-open index ranges [begin[i], end[i]) on each dimension, in
	// row-major order, converting the values to float64.
	ReadSlice(v string, begin, end []int) ([]float64, error)
}

// hasVariable reports whether the source contains a variable named v.
func hasVariable(src Source, v string) bool {
	for _, name := range src.Variables() {
		if name == v {
			return true
		}
	}
	return false
}

// hasAttribute reports whether variable v (global scope if v == "") has
// an attribute named a.
func hasAttribute(src Source, v, a string) bool {
	return src.Attribute(v, a) != nil
}

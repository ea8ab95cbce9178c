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
	"strings"
)

// MetadataNotFoundError reports that a required attribute, possibly
// qualified by a process-role prefix chain, is not present in the file.
// It is never silently converted to a default value by this package.
type MetadataNotFoundError struct {
	// Name is the bare (unprefixed) attribute name that was requested.
	Name string
	// Chain is the role-prefix chain that was searched; empty for a
	// direct lookup.
	Chain PrefixChain
	// Var is the variable whose attributes were searched; empty for the
	// global (file-level) attributes.
	Var string
}

func (e *MetadataNotFoundError) Error() string {
	scope := "file"
	if e.Var != "" {
		scope = fmt.Sprintf("variable %s", e.Var)
	}
	if len(e.Chain) == 0 {
		return fmt.Sprintf("nchelpers: expected %s to have attribute '%s', "+
			"but no such attribute exists", scope, e.Name)
	}
	return fmt.Sprintf("nchelpers: expected %s to have attribute '%s' "+
		"(via role chain %v), but no such attribute exists",
		scope, e.Chain.Apply(e.Name), e.Chain)
}

// DimensionalityError reports that the dimensions of a file cannot be
// classified into any recognized sampling-geometry category.
type DimensionalityError struct {
	// Dims holds the names of the dimensions that were inspected.
	Dims []string
}

func (e *DimensionalityError) Error() string {
	return fmt.Sprintf("nchelpers: no spatial or instance dimension "+
		"recognized among %v; file cannot be classified", e.Dims)
}

// TimeInvariantDatasetError reports a time-dependent query issued
// against a file that holds time-invariant (fixed) data.
type TimeInvariantDatasetError struct {
	// Op names the query that was attempted.
	Op string
}

func (e *TimeInvariantDatasetError) Error() string {
	return fmt.Sprintf("nchelpers: %s is not defined for a "+
		"time-invariant file", e.Op)
}

// ChunkSizeError reports that a requested memory budget is too small to
// hold even one row of a variable along its unchunked dimensions, so no
// valid chunking exists.
type ChunkSizeError struct {
	Var      string
	MaxBytes int
	RowBytes int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("nchelpers: byte budget %d for variable %s is "+
		"smaller than one row (%d bytes); no valid chunking exists",
		e.MaxBytes, e.Var, e.RowBytes)
}

// GCMChainError reports that a file's type defines no chain of role
// prefixes under which GCM attributes could be resolved, either because
// the file is observation-forced or because no type was recognized.
type GCMChainError struct {
	// Kind describes the recognized file type, or "" when none was.
	Kind string
}

func (e *GCMChainError) Error() string {
	if e.Kind == "" {
		return "nchelpers: cannot derive a GCM attribute prefix for a " +
			"file without a recognized type"
	}
	return fmt.Sprintf("nchelpers: GCM attributes have no meaning for %s",
		e.Kind)
}

// HeuristicInconclusiveError reports that heuristic interpretation
// exhausted all of its fallback candidates for a property without
// reaching a plausible answer. This is distinct from the property being
// definitively false.
type HeuristicInconclusiveError struct {
	// Property names the derived property that could not be determined.
	Property string
	// Rejected lists each attempted candidate with its rejection reason.
	Rejected []string
}

func (e *HeuristicInconclusiveError) Error() string {
	return fmt.Sprintf("nchelpers: no plausible candidate found for %s "+
		"(rejected: %s)", e.Property, strings.Join(e.Rejected, "; "))
}

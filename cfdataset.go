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

// Package nchelpers classifies CF (climate and forecast) datasets by
// interpreting their embedded metadata, and provides memory-bounded
// iteration over variable values. It answers questions such as: is this
// file unprocessed GCM output, a downscaled product, Climdex statistics
// or hydrological model output; is it a multi-year mean; what is its
// time resolution; and which attributes describe the GCM that the file
// ultimately derives from, however many processing steps removed.
//
// A CFDataset wraps an externally-owned read-only Source handle. It
// never mutates the underlying file, and derived properties are
// memoized per instance on the assumption that the file does not change
// while the instance is in use.
package nchelpers

import "github.com/sirupsen/logrus"

// logger records heuristic candidate rejections at debug level.
var logger = logrus.StandardLogger()

// CFDataset interprets the metadata of a CF dataset.
//
// Interpretation runs in one of two modes, fixed at construction. In
// strict mode, metadata must adhere to CF and PCIC metadata standards.
// Otherwise, heuristics are applied when an attempt to interpret
// metadata according to the standards fails. The properties with
// distinct strict and heuristic behaviours are ClimatologyBoundsVarName
// and IsMultiYearMean; anything built on them inherits both behaviours.
type CFDataset struct {
	src    Source
	strict bool

	timeVarName  stringMemo
	timeValues   floatsMemo
	climoBounds  stringMemo
	timeBounds   stringMemo
	multiYear    boolMemo
	stepSize     floatMemo
	geometry     stringMemo
	timeInvar    boolMemo
	dependent    map[string][]string
	rolePrefixes map[ProcessRole]bool
}

// New returns a CFDataset interpreting src with heuristics enabled.
func New(src Source) *CFDataset {
	return &CFDataset{src: src, dependent: map[string][]string{}}
}

// NewStrict returns a CFDataset interpreting src strictly according to
// CF and PCIC metadata standards.
func NewStrict(src Source) *CFDataset {
	d := New(src)
	d.strict = true
	return d
}

// Source returns the wrapped handle.
func (d *CFDataset) Source() Source { return d.src }

// Strict reports whether metadata is interpreted strictly.
func (d *CFDataset) Strict() bool { return d.strict }

// Memoization for lazily derived properties. This package performs no
// concurrency coordination: a CFDataset is intended for use by a single
// goroutine, matching the synchronous, read-only contract of Source.

type stringMemo struct {
	done bool
	v    string
	err  error
}

func (m *stringMemo) get(f func() (string, error)) (string, error) {
	if !m.done {
		m.v, m.err = f()
		m.done = true
	}
	return m.v, m.err
}

type boolMemo struct {
	done bool
	v    bool
	err  error
}

func (m *boolMemo) get(f func() (bool, error)) (bool, error) {
	if !m.done {
		m.v, m.err = f()
		m.done = true
	}
	return m.v, m.err
}

type floatMemo struct {
	done bool
	v    float64
	err  error
}

func (m *floatMemo) get(f func() (float64, error)) (float64, error) {
	if !m.done {
		m.v, m.err = f()
		m.done = true
	}
	return m.v, m.err
}

type floatsMemo struct {
	done bool
	v    []float64
	err  error
}

func (m *floatsMemo) get(f func() ([]float64, error)) ([]float64, error) {
	if !m.done {
		m.v, m.err = f()
		m.done = true
	}
	return m.v, m.err
}

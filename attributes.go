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

	"github.com/spf13/cast"
)

// A ProcessRole identifies one step in the processing chain that
// produced a file. When a processing step (downscaling, Climdex, a
// hydrological model) consumes an input file, attributes describing the
// input are recorded in the output with the step's role token prepended,
// e.g. model_id becomes GCM__model_id after downscaling and
// downscaling__GCM__model_id after a hydrological model run on the
// downscaled data.
type ProcessRole int

// The recognized process roles.
const (
	GCM ProcessRole = iota
	Downscaling
	Climdex
	Hydro
)

// roleTokens maps each process role to its fixed attribute-prefix token.
var roleTokens = map[ProcessRole]string{
	GCM:         "GCM",
	Downscaling: "downscaling",
	Climdex:     "climdex",
	Hydro:       "hydromodel",
}

// Token returns the attribute-prefix token for the role.
func (r ProcessRole) Token() string { return roleTokens[r] }

func (r ProcessRole) String() string { return r.Token() }

// ParseRole returns the process role with the given prefix token.
func ParseRole(token string) (ProcessRole, error) {
	for role, tok := range roleTokens {
		if tok == token {
			return role, nil
		}
	}
	return 0, fmt.Errorf("nchelpers: unrecognized process role '%s'", token)
}

// prefixSep separates role tokens from each other and from the bare
// attribute name.
const prefixSep = "__"

// A PrefixChain is an ordered sequence of process roles, outermost
// (most recent processing step) first. Its length equals the number of
// processing steps between the described role and the file's own
// metadata.
type PrefixChain []ProcessRole

// Apply returns the attribute name qualified by the chain: the role
// tokens joined most-recent-first and prepended to name. An empty chain
// returns name unchanged.
func (c PrefixChain) Apply(name string) string {
	parts := make([]string, 0, len(c)+1)
	for _, r := range c {
		parts = append(parts, r.Token())
	}
	parts = append(parts, name)
	return strings.Join(parts, prefixSep)
}

func (c PrefixChain) String() string {
	tokens := make([]string, len(c))
	for i, r := range c {
		tokens[i] = r.Token()
	}
	return "[" + strings.Join(tokens, " ") + "]"
}

// Attr returns the value of the named global attribute, qualified by
// the given role chain if any. When a chain is given, only the fully
// prefixed name is tried: the presence of a chain means the value is
// specifically about that role, so falling back to the bare name would
// silently answer a different question. A MetadataNotFoundError is
// returned when the attribute is absent.
func (d *CFDataset) Attr(name string, chain ...ProcessRole) (interface{}, error) {
	return d.varAttr("", name, chain)
}

// VarAttr is Attr scoped to the attributes of the named variable.
func (d *CFDataset) VarAttr(varName, name string) (interface{}, error) {
	return d.varAttr(varName, name, nil)
}

func (d *CFDataset) varAttr(varName, name string, chain PrefixChain) (interface{}, error) {
	val := d.src.Attribute(varName, chain.Apply(name))
	if val == nil {
		return nil, &MetadataNotFoundError{Name: name, Chain: chain, Var: varName}
	}
	return val, nil
}

// AttrString returns a global attribute as a string, converting scalar
// numeric values as needed.
func (d *CFDataset) AttrString(name string, chain ...ProcessRole) (string, error) {
	val, err := d.Attr(name, chain...)
	if err != nil {
		return "", err
	}
	return attrToString(val), nil
}

// VarAttrString is AttrString scoped to the named variable.
func (d *CFDataset) VarAttrString(varName, name string) (string, error) {
	val, err := d.VarAttr(varName, name)
	if err != nil {
		return "", err
	}
	return attrToString(val), nil
}

// attrToString renders an attribute value as a string. Slice-valued
// attributes of length one are rendered as their single element.
func attrToString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []uint8:
		return string(v)
	case []int16:
		if len(v) == 1 {
			return cast.ToString(v[0])
		}
	case []int32:
		if len(v) == 1 {
			return cast.ToString(v[0])
		}
	case []float32:
		if len(v) == 1 {
			return cast.ToString(v[0])
		}
	case []float64:
		if len(v) == 1 {
			return cast.ToString(v[0])
		}
	}
	return cast.ToString(val)
}

// GCMChain returns the role chain under which attributes describing the
// originating GCM are recorded in this file. The chain is determined by
// the type of the file, so callers never assemble prefix strings by
// hand.
func (d *CFDataset) GCMChain() (PrefixChain, error) {
	switch {
	case d.is(d.IsUnprocessedGCMOutput):
		return nil, nil
	case d.is(d.IsDownscaledOutput):
		return PrefixChain{GCM}, nil
	case d.is(d.IsHydromodelDGCMOutput):
		return PrefixChain{Downscaling, GCM}, nil
	case d.is(d.IsHydromodelIObsOutput):
		return nil, &GCMChainError{
			Kind: "a hydrological model forced by observational data"}
	case d.is(d.IsStreamflowModelDGCMOutput):
		return PrefixChain{Hydro, Downscaling, GCM}, nil
	case d.is(d.IsStreamflowModelIObsOutput):
		return nil, &GCMChainError{
			Kind: "a streamflow model forced by observational data"}
	case d.is(d.IsClimdexDSGCMOutput):
		return PrefixChain{Downscaling, GCM}, nil
	case d.is(d.IsClimdexGCMOutput):
		return PrefixChain{GCM}, nil
	}
	return nil, &GCMChainError{}
}

// is collapses a classification property to false on error, for use in
// chained type dispatch where an unclassifiable alternative just means
// "not this kind".
func (d *CFDataset) is(prop func() (bool, error)) bool {
	v, err := prop()
	return err == nil && v
}

// GCMAttr returns a global attribute describing the originating GCM,
// resolved through the chain appropriate to this file's type.
func (d *CFDataset) GCMAttr(name string) (interface{}, error) {
	chain, err := d.GCMChain()
	if err != nil {
		return nil, err
	}
	return d.Attr(name, chain...)
}

// EnsembleMember returns the CMIP5 standard ensemble member code
// (r<N>i<N>p<N>) for the GCM run this file derives from.
func (d *CFDataset) EnsembleMember() (string, error) {
	chain, err := d.GCMChain()
	if err != nil {
		return "", err
	}
	components := make([]string, 3)
	for i, name := range []string{
		"realization", "initialization_method", "physics_version",
	} {
		val, err := d.Attr(name, chain...)
		if err != nil {
			return "", err
		}
		components[i] = attrToString(val)
	}
	return fmt.Sprintf("r%si%sp%s",
		components[0], components[1], components[2]), nil
}

// rolePrefixed reports which process roles occur as attribute-name
// prefixes anywhere in the global attribute namespace. A chained name
// such as downscaling__GCM__model_id contributes every role on its
// chain.
func (d *CFDataset) rolePrefixed() map[ProcessRole]bool {
	if d.rolePrefixes != nil {
		return d.rolePrefixes
	}
	found := map[ProcessRole]bool{}
	for _, name := range d.src.Attributes("") {
		tokens := strings.Split(name, prefixSep)
		for _, tok := range tokens[:len(tokens)-1] {
			for role, roleTok := range roleTokens {
				if tok == roleTok {
					found[role] = true
				}
			}
		}
	}
	d.rolePrefixes = found
	return found
}

// chainResolvable reports whether at least one attribute exists under
// the exact prefix formed by the chain.
func (d *CFDataset) chainResolvable(chain PrefixChain) bool {
	prefix := chain.Apply("")
	for _, name := range d.src.Attributes("") {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

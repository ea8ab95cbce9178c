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
	"strings"
)

// Products declared by the PCIC metadata standard in the global product
// attribute.
const (
	ProductGCMOutput  = "output"
	ProductDownscaled = "downscaled output"
	ProductHydromodel = "hydrological model output"
	ProductStreamflow = "streamflow model output"
	ProductClimdex    = "CLIMDEX output"
	ProductGriddedObs = "gridded observations"
)

// climdexMarkers are the ETCCDI climate index names. A dependent
// variable named for one of them marks a file as Climdex output when
// the product attribute is absent.
var climdexMarkers = []string{
	"cdd", "csdi", "cwd", "dtr", "fd", "gsl", "id", "prcptot",
	"r10mm", "r20mm", "r95ptot", "r99ptot", "rx1day", "rx5day",
	"sdii", "su", "tnn", "tr", "txx", "wsdi",
}

// attrEquals reports whether the named global attribute, resolved
// through chain, equals want. An absent attribute answers false rather
// than erroring: for classification, absence means the file is not the
// thing asked about.
func (d *CFDataset) attrEquals(name, want string, chain ...ProcessRole) (bool, error) {
	v, err := d.AttrString(name, chain...)
	if err != nil {
		var notFound *MetadataNotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return v == want, nil
}

// attrIn is attrEquals against a set of accepted values.
func (d *CFDataset) attrIn(name string, want ...string) (bool, error) {
	for _, w := range want {
		ok, err := d.attrEquals(name, w)
		if ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

// IsModelOutput reports whether the file holds simulation output of any
// kind, indicated by the presence of experiment or run identifiers
// (possibly GCM-prefixed). Files lacking both are observational.
func (d *CFDataset) IsModelOutput() (bool, error) {
	for _, name := range []string{"experiment_id", "realization"} {
		if hasAttribute(d.src, "", name) ||
			hasAttribute(d.src, "", PrefixChain{GCM}.Apply(name)) {
			return true, nil
		}
	}
	return false, nil
}

// IsGCMDerivative reports whether the file content is GCM output or a
// derivative of GCM output, however many processing steps removed.
// Strictly, the project_id attribute must name a CMIP project. The
// heuristic additionally accepts files whose attribute namespace
// records a GCM processing-role prefix, or that carry model-output
// identifiers at all.
func (d *CFDataset) IsGCMDerivative() (bool, error) {
	ok, err := d.attrIn("project_id", "CMIP3", "CMIP5")
	if ok || err != nil || d.strict {
		return ok, err
	}
	if d.rolePrefixed()[GCM] {
		return true, nil
	}
	return d.IsModelOutput()
}

// IsUnprocessedGCMOutput reports whether the file content is GCM output
// that no further process has transformed. Strictly, the product
// attribute must be "output". The heuristic accepts any GCM derivative
// whose attribute namespace records no processing-role prefixes.
func (d *CFDataset) IsUnprocessedGCMOutput() (bool, error) {
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	ok, err := d.attrEquals("product", ProductGCMOutput)
	if ok || err != nil || d.strict {
		return ok, err
	}
	// An explicit product attribute naming some other product settles
	// the question; the no-prefixes heuristic covers files that do not
	// declare a product at all.
	if hasAttribute(d.src, "", "product") {
		return false, nil
	}
	return len(d.rolePrefixed()) == 0, nil
}

// IsDownscaledOutput reports whether the file content is the output of
// downscaling a GCM. Strictly, the product attribute must be
// "downscaled output". The heuristic additionally accepts files
// declaring a downscaling method whose GCM-prefixed attributes resolve.
func (d *CFDataset) IsDownscaledOutput() (bool, error) {
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	ok, err := d.attrEquals("product", ProductDownscaled)
	if ok || err != nil || d.strict {
		return ok, err
	}
	if hasAttribute(d.src, "", "product") {
		return false, nil
	}
	if !d.chainResolvable(PrefixChain{GCM}) {
		return false, nil
	}
	for _, name := range []string{"downscaling_method", "downscaling_method_id", "method", "method_id"} {
		if hasAttribute(d.src, "", name) {
			return true, nil
		}
	}
	return false, nil
}

// IsHydromodelOutput reports whether the file content is hydrological
// model output of any kind.
func (d *CFDataset) IsHydromodelOutput() (bool, error) {
	return d.attrEquals("product", ProductHydromodel)
}

// IsHydromodelDGCMOutput reports whether the file content is output of
// a hydrological model forced by downscaled GCM data.
func (d *CFDataset) IsHydromodelDGCMOutput() (bool, error) {
	hydro, err := d.IsHydromodelOutput()
	if err != nil || !hydro {
		return false, err
	}
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	return d.attrEquals("forcing_type", "downscaled gcm")
}

// IsHydromodelIObsOutput reports whether the file content is output of
// a hydrological model forced by interpolated observational data.
func (d *CFDataset) IsHydromodelIObsOutput() (bool, error) {
	hydro, err := d.IsHydromodelOutput()
	if err != nil || !hydro {
		return false, err
	}
	return d.attrEquals("forcing_type", "gridded observations")
}

// IsStreamflowModelOutput reports whether the file content is
// streamflow model output of any kind. Strictly, the product attribute
// must be "streamflow model output". The heuristic additionally accepts
// discrete-sampling-geometry files whose attribute namespace records a
// hydrological-model processing role.
func (d *CFDataset) IsStreamflowModelOutput() (bool, error) {
	ok, err := d.attrEquals("product", ProductStreamflow)
	if ok || err != nil || d.strict {
		return ok, err
	}
	if hasAttribute(d.src, "", "product") {
		return false, nil
	}
	gm, err := d.SamplingGeometry()
	if err != nil {
		var dimErr *DimensionalityError
		if errors.As(err, &dimErr) {
			return false, nil
		}
		return false, err
	}
	return strings.HasPrefix(gm, "dsg.") && d.rolePrefixed()[Hydro], nil
}

// IsStreamflowModelDGCMOutput reports whether the file content is
// output of a streamflow model forced by downscaled GCM data. The
// forcing type of the hydrological model feeding the streamflow model
// is recorded under the hydromodel prefix.
func (d *CFDataset) IsStreamflowModelDGCMOutput() (bool, error) {
	sf, err := d.IsStreamflowModelOutput()
	if err != nil || !sf {
		return false, err
	}
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	return d.attrEquals("forcing_type", "downscaled gcm", Hydro)
}

// IsStreamflowModelIObsOutput reports whether the file content is
// output of a streamflow model forced by interpolated observational
// data.
func (d *CFDataset) IsStreamflowModelIObsOutput() (bool, error) {
	sf, err := d.IsStreamflowModelOutput()
	if err != nil || !sf {
		return false, err
	}
	return d.attrEquals("forcing_type", "gridded observations", Hydro)
}

// IsClimdexOutput reports whether the file content is the output of
// Climdex (climate index) processing. Strictly, the product attribute
// must be "CLIMDEX output". The heuristic additionally scans dependent
// variable names for ETCCDI index names.
func (d *CFDataset) IsClimdexOutput() (bool, error) {
	ok, err := d.attrEquals("product", ProductClimdex)
	if ok || err != nil || d.strict {
		return ok, err
	}
	if hasAttribute(d.src, "", "product") {
		return false, nil
	}
	for _, v := range d.DependentVarNames() {
		if isClimdexVarName(v) {
			return true, nil
		}
	}
	return false, nil
}

func isClimdexVarName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range climdexMarkers {
		if lower == marker ||
			strings.HasPrefix(lower, marker+"_") ||
			lower == marker+"etccdi" {
			return true
		}
	}
	return false
}

// IsClimdexDSGCMOutput reports whether the file content is the output
// of Climdex processing applied to downscaled GCM output. Strictly, the
// input_product attribute must be "downscaled output". The heuristic
// accepts Climdex files whose attribute namespace resolves the
// downscaling-then-GCM prefix chain.
func (d *CFDataset) IsClimdexDSGCMOutput() (bool, error) {
	cd, err := d.IsClimdexOutput()
	if err != nil || !cd {
		return false, err
	}
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	ok, err := d.attrEquals("input_product", ProductDownscaled)
	if ok || err != nil || d.strict {
		return ok, err
	}
	// An explicit input_product naming some other product settles the
	// question; the chain heuristic covers files that do not declare
	// their input at all.
	if hasAttribute(d.src, "", "input_product") {
		return false, nil
	}
	return d.chainResolvable(PrefixChain{Downscaling, GCM}), nil
}

// IsClimdexGCMOutput reports whether the file content is the output of
// Climdex processing applied to unprocessed GCM output. Exclusive with
// IsClimdexDSGCMOutput.
func (d *CFDataset) IsClimdexGCMOutput() (bool, error) {
	cd, err := d.IsClimdexOutput()
	if err != nil || !cd {
		return false, err
	}
	gcm, err := d.IsGCMDerivative()
	if err != nil || !gcm {
		return false, err
	}
	ok, err := d.attrEquals("input_product", ProductGCMOutput)
	if ok || err != nil || d.strict {
		return ok, err
	}
	if hasAttribute(d.src, "", "input_product") {
		return false, nil
	}
	ds, err := d.IsClimdexDSGCMOutput()
	if err != nil {
		return false, err
	}
	return !ds, nil
}

// IsGriddedObs reports whether the file content is gridded
// observational data.
func (d *CFDataset) IsGriddedObs() (bool, error) {
	return d.attrEquals("product", ProductGriddedObs)
}

// Classification aggregates the derived classification properties of a
// file into a single result, computed once.
type Classification struct {
	SamplingGeometry string `json:"sampling_geometry"`
	TimeInvariant    bool   `json:"time_invariant"`
	MultiYearMean    bool   `json:"multi_year_mean"`
	TimeResolution   string `json:"time_resolution"`

	ModelOutput          bool `json:"model_output"`
	GCMDerivative        bool `json:"gcm_derivative"`
	UnprocessedGCMOutput bool `json:"unprocessed_gcm_output"`
	DownscaledOutput     bool `json:"downscaled_output"`

	HydromodelOutput     bool `json:"hydromodel_output"`
	HydromodelDGCMOutput bool `json:"hydromodel_dgcm_output"`
	HydromodelIObsOutput bool `json:"hydromodel_iobs_output"`

	StreamflowModelOutput     bool `json:"streamflow_model_output"`
	StreamflowModelDGCMOutput bool `json:"streamflow_model_dgcm_output"`
	StreamflowModelIObsOutput bool `json:"streamflow_model_iobs_output"`

	ClimdexOutput      bool `json:"climdex_output"`
	ClimdexGCMOutput   bool `json:"climdex_gcm_output"`
	ClimdexDSGCMOutput bool `json:"climdex_dsgcm_output"`

	GriddedObs bool `json:"gridded_obs"`
}

// Classify computes every classification property of the file. Boolean
// properties whose deciding metadata is absent or malformed report
// false; structural failures (unclassifiable topology) are returned as
// errors. Time resolution is reported as "fixed" for time-invariant
// files and "unknown" where no recognized resolution can be derived.
func (d *CFDataset) Classify() (*Classification, error) {
	gm, err := d.SamplingGeometry()
	if err != nil {
		return nil, err
	}
	c := &Classification{SamplingGeometry: gm}

	c.TimeInvariant = d.is(d.IsTimeInvariant)
	if c.TimeInvariant {
		c.TimeResolution = "fixed"
	} else {
		res, err := d.TimeResolution()
		if err != nil {
			res = "unknown"
		}
		c.TimeResolution = res
		c.MultiYearMean = d.is(d.IsMultiYearMean)
	}

	c.ModelOutput = d.is(d.IsModelOutput)
	c.GCMDerivative = d.is(d.IsGCMDerivative)
	c.UnprocessedGCMOutput = d.is(d.IsUnprocessedGCMOutput)
	c.DownscaledOutput = d.is(d.IsDownscaledOutput)
	c.HydromodelOutput = d.is(d.IsHydromodelOutput)
	c.HydromodelDGCMOutput = d.is(d.IsHydromodelDGCMOutput)
	c.HydromodelIObsOutput = d.is(d.IsHydromodelIObsOutput)
	c.StreamflowModelOutput = d.is(d.IsStreamflowModelOutput)
	c.StreamflowModelDGCMOutput = d.is(d.IsStreamflowModelDGCMOutput)
	c.StreamflowModelIObsOutput = d.is(d.IsStreamflowModelIObsOutput)
	c.ClimdexOutput = d.is(d.IsClimdexOutput)
	c.ClimdexGCMOutput = d.is(d.IsClimdexGCMOutput)
	c.ClimdexDSGCMOutput = d.is(d.IsClimdexDSGCMOutput)
	c.GriddedObs = d.is(d.IsGriddedObs)
	return c, nil
}

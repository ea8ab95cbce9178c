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
	"regexp"
	"sort"
	"strings"

	"github.com/pacificclimate/nchelpers/calendar"
)

// cmorComponentOrder fixes the order of CMOR-style filename components.
// Components without a value are omitted; no rule beyond order is
// enforced.
var cmorComponentOrder = []string{
	"variable",
	"mip_table",
	"frequency",
	"downscaling_method",
	"hydromodel_method",
	"model",
	"experiment",
	"ensemble_member",
	"obs_dataset_id",
	"time_range",
	"geo_info",
}

var commaRe = regexp.MustCompile(`\s*,\s*`)

// replaceCommas joins the comma-delimited substrings of s with sep, so
// multi-valued attributes survive as single filename components.
func replaceCommas(s, sep string) string {
	return commaRe.ReplaceAllString(s, sep)
}

// cmorTypeFilename assembles a filename from component values following
// the CMOR-based filename standard used by PCIC.
func cmorTypeFilename(extension string, components map[string]string) string {
	var parts []string
	for _, name := range cmorComponentOrder {
		if v, ok := components[name]; ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "_") + extension
}

func formatYMD(d calendar.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// nominalTimeSpan returns the nominal time coverage of the file as
// dates. For multi-year means this is the extrema of the climatological
// bounds; otherwise the extrema of the time variable itself. Time
// bounds would be more natural for the latter but are not reliably
// present or correct in PCIC's files.
func (d *CFDataset) nominalTimeSpan() (calendar.Date, calendar.Date, error) {
	mym, err := d.IsMultiYearMean()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	if !mym {
		return d.TimeRangeAsDates()
	}
	bounds, err := d.ClimatologyBoundsValues()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	units, err := d.TimeUnits()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	c, err := d.TimeCalendar()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	tMin, tMax := bounds[0], bounds[0]
	for _, v := range bounds {
		if v < tMin {
			tMin = v
		}
		if v > tMax {
			tMax = v
		}
	}
	dMin, err := calendar.NumToDate(tMin, units, c)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	dMax, err := calendar.NumToDate(tMax, units, c)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	return dMin, dMax, nil
}

// attrFirst returns the first of the given global attribute names that
// resolves, "" if none does.
func (d *CFDataset) attrFirst(names ...string) string {
	for _, name := range names {
		if val := d.src.Attribute("", name); val != nil {
			return attrToString(val)
		}
	}
	return ""
}

// cmorFilenameComponents derives the filename components from the
// file's metadata and classification.
func (d *CFDataset) cmorFilenameComponents() (map[string]string, error) {
	components := map[string]string{
		"variable": strings.Join(d.DependentVarNames(), "+"),
		"geo_info": d.attrFirst("domain"),
	}

	if inv := d.is(d.IsTimeInvariant); !inv {
		dMin, dMax, err := d.nominalTimeSpan()
		if err != nil {
			return nil, err
		}
		components["time_range"] = formatYMD(dMin) + "-" + formatYMD(dMax)
	}

	if d.is(d.IsMultiYearMean) {
		components["frequency"] = d.attrFirst("frequency")
	} else if mip, err := d.MIPTable(); err == nil {
		components["mip_table"] = mip
	}

	if d.is(d.IsGCMDerivative) {
		if em, err := d.EnsembleMember(); err == nil {
			components["ensemble_member"] = em
		}
		if model, err := d.GCMAttr("model_id"); err == nil {
			components["model"] = attrToString(model)
		} else {
			components["model"] = d.attrFirst("model_id", "source")
		}
		if exp, err := d.GCMAttr("experiment_id"); err == nil {
			components["experiment"] = replaceCommas(attrToString(exp), "+")
		} else if v := d.attrFirst("experiment_id"); v != "" {
			components["experiment"] = replaceCommas(v, "+")
		}

		switch {
		case d.is(d.IsDownscaledOutput):
			components["downscaling_method"] = d.attrFirst("method_id", "method")
		case d.is(d.IsHydromodelDGCMOutput):
			components["hydromodel_method"] =
				replaceCommas(d.attrFirst("method_id", "method"), "+")
		case d.is(d.IsClimdexOutput):
			if v, err := d.AttrString("method_id", Downscaling); err == nil {
				components["downscaling_method"] = v
			}
		}
	} else {
		components["model"] = d.attrFirst("model_id")
		if v := d.attrFirst("experiment_id"); v != "" {
			components["experiment"] = replaceCommas(v, "+")
		}
		if d.is(d.IsHydromodelIObsOutput) {
			components["hydromodel_method"] =
				replaceCommas(d.attrFirst("method_id", "method"), "+")
			if v, err := d.AttrString("dataset_id"); err == nil {
				components["obs_dataset_id"] = v
			}
		}
	}
	return components, nil
}

// CMORFilename returns a CMOR standard filename for this file, built
// from its metadata.
func (d *CFDataset) CMORFilename() (string, error) {
	components, err := d.cmorFilenameComponents()
	if err != nil {
		return "", err
	}
	return cmorTypeFilename(".nc", components), nil
}

// UniqueID returns a unique id for this file based on its CMOR
// filename. Files with axes beyond the usual X/Y/Z/T get the extra axis
// letters appended so ids stay distinct across topologies.
func (d *CFDataset) UniqueID() (string, error) {
	components, err := d.cmorFilenameComponents()
	if err != nil {
		return "", err
	}
	id := cmorTypeFilename("", components)

	usual := map[string]bool{"X": true, "Y": true, "Z": true, "T": true}
	seen := map[string]bool{}
	var extra bool
	var axes []string
	for _, axis := range d.DimAxes() {
		if seen[axis] {
			continue
		}
		seen[axis] = true
		axes = append(axes, axis)
		if !usual[axis] {
			extra = true
		}
	}
	if extra {
		sort.Strings(axes)
		id += "_dim" + strings.Join(axes, "")
	}
	return strings.ReplaceAll(id, "+", "-"), nil
}

/*
Copyright © 2024 the fieldprep authors.
This file is part of fieldprep.

fieldprep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fieldprep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fieldprep.  If not, see <http://www.gnu.org/licenses/>.
*/

package rename

import (
	"fmt"
	"strings"

	"github.com/spatialmodel/fieldprep"
	"github.com/spatialmodel/fieldprep/bin"
)

// A Target is a standardized output column.
type Target struct {
	// Name is the output column name.
	Name string

	// Candidates are the raw column names that can supply the target,
	// most preferred first.
	Candidates []string

	// Optional targets are left out of the output if no candidate is
	// found. Otherwise a missing target is an error.
	Optional bool
}

// A BinRun is a run of bin columns that are renamed to bin.Names.
type BinRun struct {
	Label    bin.Label
	Matchers []Matcher
	Optional bool
}

// A Schema specifies the columns of a standardized table. The output
// holds the constant Organization and Campaign columns, then the Lead
// targets, the bin runs and the Trail targets, in order.
type Schema struct {
	Name  string
	Lead  []Target
	Bins  []BinRun
	Trail []Target
}

// Base candidate lists.
var (
	utc         = Target{Name: "UTC", Candidates: []string{"merge_time", "UTC", "START_UTC", "Time", "Time_Start", "Time_Mid"}}
	date        = Target{Name: "Date", Candidates: []string{"Date", "date"}}
	latitude    = Target{Name: "Latitude", Candidates: []string{"LATITUDE", "GPS_LAT", "Lat", "FMS_LAT"}}
	longitude   = Target{Name: "Longitude", Candidates: []string{"LONGITUDE", "GPS_LON", "Lon", "FMS_LON"}}
	altitude    = Target{Name: "Altitude", Candidates: []string{"GPS_ALT", "Alt", "FMS_ALT_PRES", "GPS_Altitude", "MSL_GPS_Altitude"}}
	temperature = Target{Name: "Temperature", Candidates: []string{"Static_Air_Temp", "T"}}
	humidity    = Target{Name: "Rel_humidity", Candidates: []string{"RH_amb", "Relative_Humidity"}}
	pressure    = Target{Name: "Pressure", Candidates: []string{"P", "Static_Pressure", "FMS_ALT_PRES"}}
	bcMass      = Target{Name: "BC_Mass", Candidates: []string{"BlackCarbonMassConcentration", "BC_Mass", "mBC",
		"BC_AccumMode_mass_HDSP2", "BC_mass_90_550_nm_HDSP2", "BlackCarbon_STP", "BC_mass_90_550_nm"}}

	optical = []Target{
		{Name: "Sc450_total", Candidates: []string{"totSc450_stdPT", "Sc450_total", "Scat450tot", "drySc450_stdPT"}},
		{Name: "Sc550_total", Candidates: []string{"totSc550_stdPT", "Sc550_total", "Scat550tot", "drySc550_stdPT"}},
		{Name: "Sc700_total", Candidates: []string{"totSc700_stdPT", "Sc700_total", "Scat700tot", "drySc700_stdPT"}},
		{Name: "Abs470_total", Candidates: []string{"absSc470_stdPT", "Abs470_total", "Abs470tot", "Abs470_stdPT"}},
		{Name: "Abs532_total", Candidates: []string{"absSc532_stdPT", "Abs532_total", "Abs532tot", "Abs532_stdPT"}},
		{Name: "Abs660_total", Candidates: []string{"absSc660_stdPT", "Abs660_total", "Abs660tot", "Abs660_stdPT"}},
	}

	windU    = Target{Name: "U", Candidates: []string{"U", "E/W Wind Speed", "U_ms-1"}}
	windV    = Target{Name: "V", Candidates: []string{"V", "N/S Wind Speed", "V_ms-1"}}
	windW    = Target{Name: "W", Candidates: []string{"W", "Vertical Wind Speed", "w_ms-1"}}
	supersat = Target{Name: "Supersaturation", Candidates: []string{"Supersaturation", "CCN_Supersaturation"}}
	number   = Target{Name: "Number_Concentration", Candidates: []string{"Number_Concentration"}}
	cn3      = Target{Name: "CNgt3nm", Candidates: []string{"CNgt3nm", "CN>3nm"}}
	cn10     = Target{Name: "CNgt10nm", Candidates: []string{"CNgt10nm", "CN>10nm"}}
	lwc      = Target{Name: "LWC", Candidates: []string{"lwc", "Liquid Water Content"}}

	aerosolBins = BinRun{Label: bin.Aerosol, Matchers: AerosolMatchers}
	cloudBins   = BinRun{Label: bin.Cloud, Matchers: CloudMatchers, Optional: true}
)

// Restricted returns the schema of the aerosol-only table, where
// every column is required.
func Restricted() Schema {
	return Schema{
		Name: "Restricted",
		Lead: []Target{utc, date, latitude, longitude, altitude, temperature, humidity,
			pressure, bcMass},
		Bins:  []BinRun{aerosolBins},
		Trail: append([]Target{}, optical...),
	}
}

// Comprehensive returns the schema of the table that holds every
// variable that is available, including cloud bins. Only the aerosol
// bins are required.
func Comprehensive() Schema {
	lead := []Target{utc, date, latitude, longitude, altitude, temperature, humidity, pressure,
		windU, windV, windW, supersat, number, cn3, cn10, bcMass, lwc}
	s := Schema{
		Name:  "Comprehensive",
		Lead:  lead,
		Bins:  []BinRun{cloudBins, aerosolBins},
		Trail: append([]Target{}, optical...),
	}
	for _, ts := range [][]Target{s.Lead, s.Trail} {
		for i := range ts {
			ts[i].Optional = true
		}
	}
	return s
}

// WithCandidates returns a copy of s where the candidates in extra,
// keyed by target name, are tried before the built-in candidates.
func (s Schema) WithCandidates(extra map[string][]string) Schema {
	o := s
	for _, p := range []*[]Target{&o.Lead, &o.Trail} {
		ts := make([]Target, len(*p))
		for i, t := range *p {
			if e, ok := extra[t.Name]; ok {
				t.Candidates = append(append([]string{}, e...), t.Candidates...)
			}
			ts[i] = t
		}
		*p = ts
	}
	return o
}

// Targets returns the names of all targets in s.
func (s Schema) Targets() []string {
	var o []string
	for _, ts := range [][]Target{s.Lead, s.Trail} {
		for _, t := range ts {
			o = append(o, t.Name)
		}
	}
	return o
}

func constColumn(name, value string, n int) *fieldprep.Column {
	v := make([]string, n)
	for i := range v {
		v[i] = value
	}
	return &fieldprep.Column{Name: name, Text: v}
}

// Apply returns a table holding the columns of t that s selects, renamed
// to their standardized names, led by constant Organization and Campaign
// columns. One raw column can supply more than one target. t is not
// modified.
func (s Schema) Apply(t *fieldprep.Table, organization, campaign string) (*fieldprep.Table, error) {
	names := t.Names()
	o := fieldprep.New()
	add := func(c *fieldprep.Column) error {
		if err := o.Insert(o.Width(), c); err != nil {
			return fmt.Errorf("rename: %s: %w", s.Name, err)
		}
		return nil
	}
	if err := add(constColumn("Organization", organization, t.Len())); err != nil {
		return nil, err
	}
	if err := add(constColumn("Campaign", campaign, t.Len())); err != nil {
		return nil, err
	}

	var missing []string
	addTargets := func(ts []Target) error {
		for _, tg := range ts {
			raw, ok := Resolve(tg.Candidates, names)
			if !ok {
				if !tg.Optional {
					missing = append(missing, tg.Name)
				}
				continue
			}
			if err := add(t.Column(raw).Copy(tg.Name)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := addTargets(s.Lead); err != nil {
		return nil, err
	}
	for _, run := range s.Bins {
		raw := DetectBins(names, run.Matchers...)
		if len(raw) == 0 && !run.Optional {
			missing = append(missing, run.Label.String()+" bins")
		}
		for i, n := range bin.Names(len(raw), run.Label) {
			if err := add(t.Column(raw[i]).Copy(n)); err != nil {
				return nil, err
			}
		}
	}
	if err := addTargets(s.Trail); err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("rename: %s: required columns not found: %s", s.Name, strings.Join(missing, ", "))
	}
	return o, nil
}

// Extra returns the columns of comprehensive that restricted does not
// have.
func Extra(restricted, comprehensive *fieldprep.Table) []string {
	var o []string
	for _, n := range comprehensive.Names() {
		if !restricted.Has(n) {
			o = append(o, n)
		}
	}
	return o
}

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

// Package merge aligns raw per-instrument ICARTT files from a field
// campaign on a common time key, one flight day at a time, and
// concatenates the days into one campaign-wide table.
//
// A campaign directory holds one subdirectory per instrument:
//
//	NAAMES/
//	  LAS/      NAAMES-LAS_C130_20151112_R0.ict ...
//	  OPTICAL/  ...
//	  SP2/      ...
//	  datasets/ (output)
package merge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/fieldprep"
	"github.com/spatialmodel/fieldprep/icartt"
)

// DefaultTimeCandidates are the time column names that are looked for,
// in order, ignoring case.
var DefaultTimeCandidates = []string{"time_mid", "time_start", "time", "utc_mid", "utc_start",
	"utc", "start_utc", "ut_time", "uhsas_mid_time", "time_utc", "time(utc)", "second",
	"start_time_(utc)"}

// DefaultDateExtensions are the extensions of the files that flight
// dates are taken from.
var DefaultDateExtensions = []string{".ict", ".csv", ".txt", ".dat"}

// Config specifies how to merge a campaign.
type Config struct {
	// CampaignDir is the directory holding the instrument directories.
	CampaignDir string

	// Campaign is the campaign name used in output file names.
	Campaign string

	// DatasetsDir is where the per-day merged files are written. It
	// defaults to the SkipDir directory within CampaignDir.
	DatasetsDir string

	// SkipDir is a directory within CampaignDir that is not an
	// instrument. It defaults to "datasets".
	SkipDir string

	// DateInstrument is the instrument whose files determine the
	// flight dates. It defaults to "SP2".
	DateInstrument string

	// PreferredBase is the instrument that other instruments are joined
	// onto. It defaults to "OPTICAL".
	PreferredBase string

	// BaseColumns, if set, are the only columns besides the time key
	// that are kept from the preferred base instrument.
	BaseColumns []string

	// FilePattern selects the instrument files to read, in doublestar
	// syntax. It defaults to "*.ict".
	FilePattern string

	// DateExtensions default to DefaultDateExtensions.
	DateExtensions []string

	// AverageWindow, if > 0, is the number of seconds that each
	// instrument's records are averaged over before joining.
	AverageWindow int

	// TimeCandidates default to DefaultTimeCandidates.
	TimeCandidates []string

	// Log receives progress messages. If it is nil, the logrus
	// standard logger is used.
	Log logrus.FieldLogger

	// Progress, if not nil, receives a progress bar.
	Progress io.Writer
}

func (c *Config) setDefaults() {
	if c.SkipDir == "" {
		c.SkipDir = "datasets"
	}
	if c.DatasetsDir == "" {
		c.DatasetsDir = filepath.Join(c.CampaignDir, c.SkipDir)
	}
	if c.DateInstrument == "" {
		c.DateInstrument = "SP2"
	}
	if c.PreferredBase == "" {
		c.PreferredBase = "OPTICAL"
	}
	if c.FilePattern == "" {
		c.FilePattern = "*.ict"
	}
	if len(c.DateExtensions) == 0 {
		c.DateExtensions = DefaultDateExtensions
	}
	if len(c.TimeCandidates) == 0 {
		c.TimeCandidates = DefaultTimeCandidates
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
}

// DayFile returns the path of the merged file for the given date.
func (c Config) DayFile(date string) string {
	c.setDefaults()
	return filepath.Join(c.DatasetsDir, fmt.Sprintf("%s_Merged_Data_%s.csv", c.Campaign, date))
}

// RawFile returns the path of the campaign-wide merged file.
func (c Config) RawFile() string {
	return filepath.Join(c.CampaignDir, c.Campaign+"_Raw.csv")
}

// Instruments returns the names of the immediate subdirectories of dir,
// sorted, leaving out skip, which is compared ignoring case.
func Instruments(dir, skip string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("merge: finding instruments: %w", err)
	}
	var o []string
	for _, e := range entries {
		if e.IsDir() && !strings.EqualFold(e.Name(), skip) {
			o = append(o, e.Name())
		}
	}
	sort.Strings(o)
	return o, nil
}

// TimeColumn returns the first of candidates that matches one of names,
// ignoring case.
func TimeColumn(names, candidates []string) (string, bool) {
	for _, c := range candidates {
		for _, n := range names {
			if strings.EqualFold(n, c) {
				return n, true
			}
		}
	}
	return "", false
}

// Run merges the campaign described by c. It writes one merged file per
// flight day and the campaign-wide file, and returns the campaign-wide
// table. If no day has any instrument data, it returns nil and writes
// no campaign-wide file.
func Run(c Config) (*fieldprep.Table, error) {
	c.setDefaults()
	insts, err := Instruments(c.CampaignDir, c.SkipDir)
	if err != nil {
		return nil, err
	}
	c.Log.WithField("instruments", insts).Info("merge: found instrument directories")

	dateDir := filepath.Join(c.CampaignDir, c.DateInstrument)
	if _, err := os.Stat(dateDir); err != nil {
		return nil, fmt.Errorf("merge: %s directory is required for flight dates: %w", c.DateInstrument, err)
	}
	dates, err := ScanDates(dateDir, c.DateExtensions)
	if err != nil {
		return nil, err
	}
	c.Log.WithField("dates", dates).Info("merge: found flight dates")

	var bar *progressbar.ProgressBar
	if c.Progress != nil {
		bar = progressbar.NewOptions(len(dates),
			progressbar.OptionSetWriter(c.Progress),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Processing dates"),
		)
	}

	var days []*fieldprep.Table
	for _, date := range dates {
		day, err := c.MergeDay(insts, date)
		if err != nil {
			return nil, err
		}
		if bar != nil {
			bar.Add(1) // nolint:errcheck
		}
		if day == nil {
			c.Log.WithField("date", date).Warn("merge: no instrument files loaded; skipping date")
			continue
		}
		if err := fieldprep.WriteCSVFile(c.DayFile(date), day); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		days = append(days, day)
	}
	if bar != nil {
		bar.Finish() // nolint:errcheck
	}
	if len(days) == 0 {
		c.Log.Warn("merge: no merged data to combine")
		return nil, nil
	}
	all := fieldprep.Concat(days...)
	if err := fieldprep.WriteCSVFile(c.RawFile(), all); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	c.Log.WithFields(logrus.Fields{
		"file":    c.RawFile(),
		"rows":    all.Len(),
		"columns": all.Width(),
	}).Info("merge: wrote campaign table")
	return all, nil
}

// MergeDay loads the data for one date from each of the given instrument
// directories and joins them onto the base instrument. It returns nil if
// no instrument has data for the date.
func (c Config) MergeDay(insts []string, date string) (*fieldprep.Table, error) {
	c.setDefaults()
	log := c.Log.WithField("date", date)

	var keys []string
	data := make(map[string]*fieldprep.Table)
	for _, inst := range insts {
		t := c.loadInstrument(inst, date)
		if t == nil {
			continue
		}
		key := strings.ToUpper(inst)
		if _, ok := data[key]; ok {
			log.WithField("instrument", inst).Warn("merge: instrument directory differs from another only in case; skipping it")
			continue
		}
		keys = append(keys, key)
		data[key] = t
	}
	if len(keys) == 0 {
		return nil, nil
	}

	baseKey := keys[0]
	base := data[baseKey]
	preferred := strings.ToUpper(c.PreferredBase)
	if b, ok := data[preferred]; ok {
		baseKey, base = preferred, b
		if len(c.BaseColumns) > 0 {
			var err error
			if base, err = b.Select(append([]string{TimeKey}, c.BaseColumns...)...); err != nil {
				return nil, fmt.Errorf("merge: %s base columns for %s: %w", baseKey, date, err)
			}
		}
	} else {
		log.WithField("instrument", baseKey).Info("merge: preferred base instrument not found; using another")
	}

	merged := base
	for _, key := range keys {
		if key == baseKey {
			continue
		}
		var err error
		if merged, err = fieldprep.LeftJoin(merged, data[key], TimeKey, "_"+key); err != nil {
			return nil, fmt.Errorf("merge: joining %s for %s: %w", key, date, err)
		}
		log.WithField("instrument", key).Debug("merge: joined instrument onto base")
	}
	if merged.Has("Date") {
		log.Debug("merge: replacing instrument Date column with the flight date")
		merged.Drop("Date")
	}
	if err := merged.AddConst("Date", date); err != nil {
		return nil, fmt.Errorf("merge: %s: %w", date, err)
	}
	return merged, nil
}

// loadInstrument reads and concatenates the files for one instrument
// and date, renames its time column to TimeKey and averages it. It
// returns nil if there is no usable data.
func (c Config) loadInstrument(inst, date string) *fieldprep.Table {
	log := c.Log.WithFields(logrus.Fields{"instrument": inst, "date": date})
	dir := filepath.Join(c.CampaignDir, inst)
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).Warn("merge: reading instrument directory")
		return nil
	}
	var tables []*fieldprep.Table
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ok, err := doublestar.Match(c.FilePattern, e.Name())
		if err != nil {
			log.WithError(err).Warn("merge: invalid file pattern")
			return nil
		}
		if d, hasDate := FileDate(e.Name()); !ok || !hasDate || d != date {
			continue
		}
		ds, err := icartt.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.WithError(err).WithField("file", e.Name()).Warn("merge: skipping unreadable file")
			continue
		}
		tables = append(tables, ds.Data)
	}
	if len(tables) == 0 {
		log.Debug("merge: no files found")
		return nil
	}
	t := tables[0]
	if len(tables) > 1 {
		t = fieldprep.Concat(tables...)
		log.WithField("files", len(tables)).Info("merge: combined files")
	}
	tc, ok := TimeColumn(t.Names(), c.TimeCandidates)
	if !ok {
		log.Warn("merge: time column not found; skipping instrument")
		return nil
	}
	if tc != TimeKey {
		t.Drop(TimeKey)
		if err := t.Rename(tc, TimeKey); err != nil {
			log.WithError(err).Warn("merge: skipping instrument")
			return nil
		}
	}
	if t.Column(TimeKey).IsText() {
		log.WithField("column", tc).Warn("merge: time column is not numeric; skipping instrument")
		return nil
	}
	t, err = AverageSeconds(t, c.AverageWindow)
	if err != nil {
		log.WithError(err).Warn("merge: skipping instrument")
		return nil
	}
	log.WithField("time_column", tc).Info("merge: loaded instrument")
	return t
}

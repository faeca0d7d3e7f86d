package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/hitfilter"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Reference, Output.Path,
// Output.ToDB, WithCache).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Filter.Mode
	if s != "" {
		res = append(res, OptFilterMode(s))
	}
	res = append(res,
		OptFilterBitscoreFraction(c.Filter.BitscoreFraction),
		OptFilterMinLength(c.Filter.MinLength),
		OptFilterMinBitscore(c.Filter.MinBitscore),
	)
	if len(c.Filter.IdentityCutoffs) > 0 {
		res = append(res, OptFilterIdentityCutoffs(c.Filter.IdentityCutoffs))
	}
	res = append(res, OptFilterRetainIdentity(c.Filter.RetainIdentity))

	if c.Resolve.ExceptionTokens != nil {
		res = append(res, OptResolveExceptionTokens(c.Resolve.ExceptionTokens))
	}
	s = c.Resolve.Delimiter
	if s != "" {
		res = append(res, OptResolveDelimiter(s))
	}
	s = c.Resolve.UnresolvedID
	if s != "" {
		res = append(res, OptResolveUnresolvedID(s))
	}
	res = append(res,
		OptResolveCanonicalNames(c.Resolve.CanonicalNames),
		OptResolveStripQualifiers(c.Resolve.StripQualifiers),
	)

	if len(c.Input.Ranks) > 0 {
		res = append(res, OptInputRanks(c.Input.Ranks))
	}
	s = c.Input.RowErrors
	if s != "" {
		res = append(res, OptInputRowErrors(s))
	}
	res = append(res, OptInputDropUnknown(c.Input.DropUnknown))

	s = c.Output.Format
	if s != "" {
		res = append(res, OptOutputFormat(s))
	}
	s = c.Output.Unresolved
	if s != "" {
		res = append(res, OptOutputUnresolved(s))
	}

	s = c.Database.Host
	if s != "" {
		res = append(res, OptDatabaseHost(s))
	}
	i = c.Database.Port
	if i > 0 {
		res = append(res, OptDatabasePort(i))
	}
	s = c.Database.User
	if s != "" {
		res = append(res, OptDatabaseUser(s))
	}
	s = c.Database.Password
	if s != "" {
		res = append(res, OptDatabasePassword(s))
	}
	s = c.Database.Database
	if s != "" {
		res = append(res, OptDatabaseDatabase(s))
	}
	s = c.Database.SSLMode
	if s != "" {
		res = append(res, OptDatabaseSSLMode(s))
	}
	i = c.Database.BatchSize
	if i > 0 {
		res = append(res, OptDatabaseBatchSize(i))
	}

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

// FilterParams converts filter settings to hitfilter.Params.
func (c *Config) FilterParams() hitfilter.Params {
	res := hitfilter.DefaultParams()
	res.Mode = hitfilter.NewMode(c.Filter.Mode)
	res.BitscoreFraction = c.Filter.BitscoreFraction
	res.MinLength = c.Filter.MinLength
	res.MinBitScore = c.Filter.MinBitscore
	if len(c.Filter.IdentityCutoffs) == hitfilter.TiersNum {
		copy(res.Cutoffs[:], c.Filter.IdentityCutoffs)
	}
	return res
}

// Schema returns the rank schema of hit tables.
func (c *Config) Schema() hit.Schema {
	return hit.NewSchema(c.Input.Ranks)
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidNonNegative(name string, f float64) bool {
	res := f >= 0
	if !res {
		gn.Warn("<em>%s</em> cannot be negative, ignoring %v", name, f)
	}
	return res
}

func isValidFraction(name string, f float64) bool {
	res := f >= 0 && f < 1
	if !res {
		gn.Warn("<em>%s</em> has to be within [0, 1), ignoring %v", name, f)
	}
	return res
}

func isValidCutoffs(ff []float64) bool {
	if len(ff) != hitfilter.TiersNum {
		gn.Warn(
			"<em>Identity Cutoffs</em> need exactly %d values, ignoring %v",
			hitfilter.TiersNum, ff,
		)
		return false
	}
	for i, v := range ff {
		if v < 0 || v > 100 {
			gn.Warn(
				"<em>Identity Cutoffs</em> have to be within 0-100, ignoring %v", ff,
			)
			return false
		}
		if i > 0 && v >= ff[i-1] {
			gn.Warn(
				"<em>Identity Cutoffs</em> have to be strictly decreasing, ignoring %v",
				ff,
			)
			return false
		}
	}
	return true
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Filter.Mode":     {"soft": s, "strict": s},
		"Input.RowErrors": {"skip": s, "abort": s},
		"Output.Format":   {"csv": s, "tsv": s, "json": s},
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}

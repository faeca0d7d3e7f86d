// Package config provides configuration management for GNlca.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Filter: mode, bitscore_fraction, min_length, min_bitscore,
//     identity_cutoffs, retain_identity
//   - Resolve: exception_tokens, delimiter, unresolved_id,
//     canonical_names, strip_qualifiers
//   - Input: ranks, row_errors, drop_unknown
//   - Output: format, unresolved
//   - Database: host, port, user, password, database, ssl_mode, batch_size
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Reference: primary and secondary tables, names.dmp, SFGA archive
//   - Output.Path, Output.ToDB, WithCache
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNLCA_ prefix with underscores for nesting:
//
//	GNLCA_FILTER_MODE=strict
//	GNLCA_FILTER_MIN_LENGTH=100
//	GNLCA_LOG_LEVEL=info
//	GNLCA_JOBS_NUMBER=8
package config

import (
	"runtime"

	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/resolver"
)

// Config represents the complete GNlca configuration.
type Config struct {
	// Filter contains HitFilter thresholds.
	Filter FilterConfig `mapstructure:"filter" yaml:"filter"`

	// Resolve contains NameResolver settings.
	Resolve ResolveConfig `mapstructure:"resolve" yaml:"resolve"`

	// Input describes hit tables.
	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Output describes result files.
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Reference lists name tables used to build NameIndex.
	// Runtime-only, set from CLI flags.
	Reference ReferenceConfig `mapstructure:"-" yaml:"-"`

	// Database contains PostgreSQL connection settings for the optional
	// database sink.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for parallel operations.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// WithCache enables reuse of a NameIndex snapshot stored in the cache
	// directory. Runtime-only.
	WithCache bool `mapstructure:"-" yaml:"-"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// FilterConfig contains HitFilter settings.
type FilterConfig struct {
	// Mode is "soft" (keep best bitscore hits) or "strict"
	// (thresholds, bitscore window and identity cutoffs).
	Mode string `mapstructure:"mode" yaml:"mode"`

	// BitscoreFraction is the width of the strict bitscore window.
	// Hits below max*(1-BitscoreFraction) are dropped.
	BitscoreFraction float64 `mapstructure:"bitscore_fraction" yaml:"bitscore_fraction"`

	// MinLength is the alignment length threshold of low-confidence hits.
	MinLength int `mapstructure:"min_length" yaml:"min_length"`

	// MinBitscore is the bitscore threshold of low-confidence hits.
	// A hit is low-confidence when both its length and bitscore are
	// below thresholds.
	MinBitscore float64 `mapstructure:"min_bitscore" yaml:"min_bitscore"`

	// IdentityCutoffs are six strictly decreasing percent identity
	// thresholds for species, genus, family, order, class and phylum.
	IdentityCutoffs []float64 `mapstructure:"identity_cutoffs" yaml:"identity_cutoffs"`

	// RetainIdentity adds the maximum supporting percent identity to
	// consensus records.
	RetainIdentity bool `mapstructure:"retain_identity" yaml:"retain_identity"`
}

// ResolveConfig contains NameResolver settings.
type ResolveConfig struct {
	// ExceptionTokens are words that disqualify a rank token from lookup.
	ExceptionTokens []string `mapstructure:"exception_tokens" yaml:"exception_tokens"`

	// Delimiter separates ranks in taxonomy paths.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// UnresolvedID is written for paths without a match, "NA" or "0".
	UnresolvedID string `mapstructure:"unresolved_id" yaml:"unresolved_id"`

	// CanonicalNames reduces names to canonical forms with gnparser
	// before they are indexed or looked up.
	CanonicalNames bool `mapstructure:"canonical_names" yaml:"canonical_names"`

	// StripQualifiers removes " <...>" qualifiers from names.
	StripQualifiers bool `mapstructure:"strip_qualifiers" yaml:"strip_qualifiers"`
}

// InputConfig describes hit tables.
type InputConfig struct {
	// Ranks are the rank columns of hit tables from the most general to
	// the most specific.
	Ranks []string `mapstructure:"ranks" yaml:"ranks"`

	// RowErrors is "skip" (warn and continue) or "abort" for rows with
	// malformed numbers.
	RowErrors string `mapstructure:"row_errors" yaml:"row_errors"`

	// DropUnknown removes hits with "Unknown" rank values, they mark
	// taxon ids that could not be translated.
	DropUnknown bool `mapstructure:"drop_unknown" yaml:"drop_unknown"`
}

// OutputConfig describes result files.
type OutputConfig struct {
	// Format is "csv", "tsv" or "json" (JSON lines).
	Format string `mapstructure:"format" yaml:"format"`

	// Unresolved is the text written for unresolved rank values.
	Unresolved string `mapstructure:"unresolved" yaml:"unresolved"`

	// Path is the output file, empty means STDOUT. Runtime-only.
	Path string `mapstructure:"-" yaml:"-"`

	// ToDB saves results to PostgreSQL as well. Runtime-only.
	ToDB bool `mapstructure:"-" yaml:"-"`
}

// ReferenceConfig lists name tables for NameIndex.
type ReferenceConfig struct {
	// Primary are two-column (name, id) tables with scientific names.
	Primary []string
	// Secondary are two-column (name, id) tables with synonyms and other
	// alternate names.
	Secondary []string
	// NamesDmp is an NCBI names.dmp file, scientific names go to the
	// primary tier, other name classes to the secondary one.
	NamesDmp string
	// SFGA is an SFGA SQLite archive, accepted names go to the primary
	// tier, synonyms to the secondary one.
	SFGA string
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// BatchSize is the number of rows sent in one COPY operation.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Filter: FilterConfig{
			Mode:             "soft",
			BitscoreFraction: 0.02,
			MinLength:        100,
			MinBitscore:      150,
			IdentityCutoffs:  []float64{98, 95, 90, 85, 80, 75},
		},
		Resolve: ResolveConfig{
			ExceptionTokens: append([]string(nil), resolver.DefaultExceptions...),
			Delimiter:       ";",
			UnresolvedID:    "NA",
			StripQualifiers: true,
		},
		Input: InputConfig{
			Ranks:       append([]string(nil), hit.DefaultRanks...),
			RowErrors:   "skip",
			DropUnknown: true,
		},
		Output: OutputConfig{
			Format:     "csv",
			Unresolved: "NA",
		},
		Database: DatabaseConfig{
			Host:      "localhost",
			Port:      5432,
			User:      "postgres",
			Password:  "postgres",
			Database:  "gnlca",
			SSLMode:   "disable",
			BatchSize: 50_000,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
		WithCache:  true,
	}

	return res
}

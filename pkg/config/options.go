package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptFilterMode sets the HitFilter algorithm.
// Valid values: "soft", "strict".
func OptFilterMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Filter.Mode", s) {
			c.Filter.Mode = s
		}
	}
}

// OptFilterBitscoreFraction sets the width of the strict bitscore window.
// The value has to be within [0, 1).
func OptFilterBitscoreFraction(f float64) Option {
	return func(c *Config) {
		if isValidFraction("Bitscore Fraction", f) {
			c.Filter.BitscoreFraction = f
		}
	}
}

// OptFilterMinLength sets the alignment length threshold of
// low-confidence hits.
func OptFilterMinLength(i int) Option {
	return func(c *Config) {
		if isValidNonNegative("Min Length", float64(i)) {
			c.Filter.MinLength = i
		}
	}
}

// OptFilterMinBitscore sets the bitscore threshold of low-confidence hits.
func OptFilterMinBitscore(f float64) Option {
	return func(c *Config) {
		if isValidNonNegative("Min Bitscore", f) {
			c.Filter.MinBitscore = f
		}
	}
}

// OptFilterIdentityCutoffs sets six percent identity cutoffs for species,
// genus, family, order, class and phylum. Values have to be within
// 0-100 and strictly decreasing.
func OptFilterIdentityCutoffs(ff []float64) Option {
	return func(c *Config) {
		if isValidCutoffs(ff) {
			c.Filter.IdentityCutoffs = append([]float64(nil), ff...)
		}
	}
}

// OptFilterRetainIdentity sets whether consensus records carry the
// supporting percent identity.
func OptFilterRetainIdentity(b bool) Option {
	return func(c *Config) {
		c.Filter.RetainIdentity = b
	}
}

// OptResolveExceptionTokens sets words that disqualify rank tokens from
// lookup. A nil slice is ignored, an empty one disables exceptions.
func OptResolveExceptionTokens(ss []string) Option {
	return func(c *Config) {
		if ss == nil {
			return
		}
		res := make([]string, 0, len(ss))
		for _, v := range ss {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				res = append(res, v)
			}
		}
		c.Resolve.ExceptionTokens = res
	}
}

// OptResolveDelimiter sets the rank delimiter of taxonomy paths.
func OptResolveDelimiter(s string) Option {
	return func(c *Config) {
		if isValidString("Resolve Delimiter", s) {
			c.Resolve.Delimiter = s
		}
	}
}

// OptResolveUnresolvedID sets the id written for unresolved paths,
// conventionally "NA" or "0".
func OptResolveUnresolvedID(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Unresolved ID", s) {
			c.Resolve.UnresolvedID = s
		}
	}
}

// OptResolveCanonicalNames sets whether names are reduced to canonical
// forms before indexing and lookup.
func OptResolveCanonicalNames(b bool) Option {
	return func(c *Config) {
		c.Resolve.CanonicalNames = b
	}
}

// OptResolveStripQualifiers sets whether " <...>" qualifiers are removed
// from names.
func OptResolveStripQualifiers(b bool) Option {
	return func(c *Config) {
		c.Resolve.StripQualifiers = b
	}
}

// OptInputRanks sets rank columns of hit tables, from the most general to
// the most specific.
func OptInputRanks(ss []string) Option {
	return func(c *Config) {
		var res []string
		for _, v := range ss {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "" {
				res = append(res, v)
			}
		}
		if len(res) == 0 {
			isValidString("Input Ranks", "")
			return
		}
		c.Input.Ranks = res
	}
}

// OptInputRowErrors sets the policy for malformed rows.
// Valid values: "skip", "abort".
func OptInputRowErrors(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Input.RowErrors", s) {
			c.Input.RowErrors = s
		}
	}
}

// OptInputDropUnknown sets whether hits with "Unknown" ranks are dropped.
func OptInputDropUnknown(b bool) Option {
	return func(c *Config) {
		c.Input.DropUnknown = b
	}
}

// OptOutputFormat sets the format of result files.
// Valid values: "csv", "tsv", "json".
func OptOutputFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Output.Format", s) {
			c.Output.Format = s
		}
	}
}

// OptOutputUnresolved sets the text written for unresolved ranks.
func OptOutputUnresolved(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Unresolved", s) {
			c.Output.Unresolved = s
		}
	}
}

// OptOutputPath sets the output file.
// Runtime-only field - not in ToOptions().
func OptOutputPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Path", s) {
			c.Output.Path = s
		}
	}
}

// OptOutputToDB enables saving results to PostgreSQL.
// Runtime-only field - not in ToOptions().
func OptOutputToDB(b bool) Option {
	return func(c *Config) {
		c.Output.ToDB = b
	}
}

// OptReferencePrimary sets primary (scientific names) tables.
// Runtime-only field - not in ToOptions().
func OptReferencePrimary(ss []string) Option {
	return func(c *Config) {
		c.Reference.Primary = cleanPaths(ss)
	}
}

// OptReferenceSecondary sets secondary (synonyms) tables.
// Runtime-only field - not in ToOptions().
func OptReferenceSecondary(ss []string) Option {
	return func(c *Config) {
		c.Reference.Secondary = cleanPaths(ss)
	}
}

// OptReferenceNamesDmp sets the NCBI names.dmp file.
// Runtime-only field - not in ToOptions().
func OptReferenceNamesDmp(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Names Dmp", s) {
			c.Reference.NamesDmp = s
		}
	}
}

// OptReferenceSFGA sets the SFGA SQLite archive.
// Runtime-only field - not in ToOptions().
func OptReferenceSFGA(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("SFGA", s) {
			c.Reference.SFGA = s
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptDatabaseBatchSize sets the number of rows per COPY batch.
func OptDatabaseBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Batch Size", i) {
			c.Database.BatchSize = i
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for parallel operations.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptWithCache sets whether a cached NameIndex snapshot is reused.
// Runtime-only field - not in ToOptions().
func OptWithCache(b bool) Option {
	return func(c *Config) {
		c.WithCache = b
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

func cleanPaths(ss []string) []string {
	var res []string
	for _, v := range ss {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}

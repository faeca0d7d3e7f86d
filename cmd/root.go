/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/internal/iofs"
	"github.com/gnames/gnlca/internal/iologger"
	gnlca "github.com/gnames/gnlca/pkg"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	homeDir   string
	opts      []config.Option
	cfg       *config.Config
	logCloser io.Closer
)

// getRootCmd creates the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", gnlca.Version, gnlca.Build),
		Use:     "gnlca",
		Short:   "GNlca assigns consensus taxonomy to sequence similarity hits",
		Long: `GNlca is a CLI tool for taxonomic assignment of amplicon and
metagenomic sequences.

It provides two commands:
  - resolve:   map taxonomy paths (e.g. SILVA "Bacteria;Firmicutes;...")
               to taxon IDs using scientific and synonym name tables,
               NCBI names.dmp or SFGA archives
  - consensus: reduce BLAST-like hits of every query to the lowest
               common ancestor, using soft or strict hit filtering

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GNLCA_*)
  3. Config file (~/.config/gnlca/config.yaml)
  4. Built-in defaults

Nested fields use underscores (filter.mode -> GNLCA_FILTER_MODE).
See 'go doc github.com/gnames/gnlca/pkg/config' for complete list.`,
		PersistentPreRunE:  bootstrap,
		PersistentPostRunE: teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "gnlca version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other gn projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for gnlca")

	rootCmd.AddCommand(getResolveCmd())
	rootCmd.AddCommand(getConsensusCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if logCloser, err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded configuration.
func reconfigureLogging(cfg *config.Config) error {
	if logCloser != nil {
		logCloser.Close()
	}
	var err error
	logCloser, err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log)
	return err
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Set environment variables we want.
	// We set them manually so we can see clearly which env variables are
	// allowed. These match the fields included in config.ToOptions().
	v.SetEnvPrefix("GNLCA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Filter configuration
	v.BindEnv("filter.mode", "GNLCA_FILTER_MODE")
	v.BindEnv("filter.bitscore_fraction", "GNLCA_FILTER_BITSCORE_FRACTION")
	v.BindEnv("filter.min_length", "GNLCA_FILTER_MIN_LENGTH")
	v.BindEnv("filter.min_bitscore", "GNLCA_FILTER_MIN_BITSCORE")
	v.BindEnv("filter.identity_cutoffs", "GNLCA_FILTER_IDENTITY_CUTOFFS")
	v.BindEnv("filter.retain_identity", "GNLCA_FILTER_RETAIN_IDENTITY")

	// Resolve configuration
	v.BindEnv("resolve.exception_tokens", "GNLCA_RESOLVE_EXCEPTION_TOKENS")
	v.BindEnv("resolve.delimiter", "GNLCA_RESOLVE_DELIMITER")
	v.BindEnv("resolve.unresolved_id", "GNLCA_RESOLVE_UNRESOLVED_ID")
	v.BindEnv("resolve.canonical_names", "GNLCA_RESOLVE_CANONICAL_NAMES")
	v.BindEnv("resolve.strip_qualifiers", "GNLCA_RESOLVE_STRIP_QUALIFIERS")

	// Input and output configuration
	v.BindEnv("input.ranks", "GNLCA_INPUT_RANKS")
	v.BindEnv("input.row_errors", "GNLCA_INPUT_ROW_ERRORS")
	v.BindEnv("input.drop_unknown", "GNLCA_INPUT_DROP_UNKNOWN")
	v.BindEnv("output.format", "GNLCA_OUTPUT_FORMAT")
	v.BindEnv("output.unresolved", "GNLCA_OUTPUT_UNRESOLVED")

	// Database configuration
	v.BindEnv("database.host", "GNLCA_DATABASE_HOST")
	v.BindEnv("database.port", "GNLCA_DATABASE_PORT")
	v.BindEnv("database.user", "GNLCA_DATABASE_USER")
	v.BindEnv("database.password", "GNLCA_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GNLCA_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GNLCA_DATABASE_SSL_MODE")
	v.BindEnv("database.batch_size", "GNLCA_DATABASE_BATCH_SIZE")

	// Log configuration
	v.BindEnv("log.level", "GNLCA_LOG_LEVEL")
	v.BindEnv("log.format", "GNLCA_LOG_FORMAT")
	v.BindEnv("log.destination", "GNLCA_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "GNLCA_JOBS_NUMBER")

	v.AutomaticEnv()
}

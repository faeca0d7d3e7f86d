package cmd

import (
	"github.com/gnames/gnlca/pkg/config"
	"github.com/spf13/cobra"
)

// outputFlags are shared by commands that write results.
type outputFlags struct {
	path   string
	format string
	toDB   bool
	jobs   int
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&f.path, "output", "o", "",
		"output file (default STDOUT)",
	)
	cmd.Flags().StringVarP(
		&f.format, "format", "f", "",
		"output format: csv, tsv or json",
	)
	cmd.Flags().BoolVar(
		&f.toDB, "db", false,
		"also save results to PostgreSQL",
	)
	cmd.Flags().IntVarP(
		&f.jobs, "jobs", "j", 0,
		"number of concurrent workers",
	)
}

// options converts explicitly set flags to config options.
func (f *outputFlags) options(cmd *cobra.Command) []config.Option {
	var res []config.Option
	if cmd.Flags().Changed("output") {
		res = append(res, config.OptOutputPath(f.path))
	}
	if cmd.Flags().Changed("format") {
		res = append(res, config.OptOutputFormat(f.format))
	}
	if cmd.Flags().Changed("db") {
		res = append(res, config.OptOutputToDB(f.toDB))
	}
	if cmd.Flags().Changed("jobs") {
		res = append(res, config.OptJobsNumber(f.jobs))
	}
	return res
}

// currentConfig returns the config loaded by bootstrap, or defaults when
// a command runs without the root command.
func currentConfig() *config.Config {
	if cfg == nil {
		cfg = config.New()
	}
	return cfg
}

package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlca/internal/iodb"
	"github.com/gnames/gnlca/internal/iohits"
	"github.com/gnames/gnlca/internal/ioout"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/consensus"
	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/hitfilter"
	"github.com/gnames/gnlca/pkg/lca"
	"github.com/spf13/cobra"
)

// progressMin is the smallest number of queries that gets a progress bar.
const progressMin = 10_000

// getConsensusCmd returns the consensus command.
func getConsensusCmd() *cobra.Command {
	var (
		mode             string
		bitscoreFraction float64
		minLength        int
		minBitscore      float64
		cutoffs          []float64
		retainIdentity   bool
		out              outputFlags
	)

	consensusCmd := &cobra.Command{
		Use:   "consensus HITS",
		Short: "Assign consensus taxonomy to query sequences",
		Long: `Assign consensus taxonomy (lowest common ancestor) to every query of a
hit table.

HITS is a CSV or TSV file with a header. Required columns are qseqid,
pident, length and bitscore (query_id, percent_identity and
alignment_length are accepted as well), plus one column per rank
(superkingdom, phylum, class, order, family, genus, species by default).
Use "-" to read from STDIN.

Filter modes:
  soft    only hits with the maximum bitscore of the query are used
  strict  hits that are too short or have low bitscore lose their
          taxonomy, hits outside of the bitscore window are dropped,
          and ranks are truncated by percent identity cutoffs

A rank gets a value only if all remaining hits agree on it.

Examples:
  gnlca consensus blast.tsv -o lca.csv
  gnlca consensus blast.tsv -m strict -b 0.05 -c 99,97,92,87,82,77
  gnlca consensus blast.tsv -m strict -i --db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var consensusOpts []config.Option
			if cmd.Flags().Changed("mode") {
				consensusOpts = append(consensusOpts,
					config.OptFilterMode(mode))
			}
			if cmd.Flags().Changed("bitscore-fraction") {
				consensusOpts = append(consensusOpts,
					config.OptFilterBitscoreFraction(bitscoreFraction))
			}
			if cmd.Flags().Changed("min-length") {
				consensusOpts = append(consensusOpts,
					config.OptFilterMinLength(minLength))
			}
			if cmd.Flags().Changed("min-bitscore") {
				consensusOpts = append(consensusOpts,
					config.OptFilterMinBitscore(minBitscore))
			}
			if cmd.Flags().Changed("cutoffs") {
				consensusOpts = append(consensusOpts,
					config.OptFilterIdentityCutoffs(cutoffs))
			}
			if cmd.Flags().Changed("retain-identity") {
				consensusOpts = append(consensusOpts,
					config.OptFilterRetainIdentity(retainIdentity))
			}
			consensusOpts = append(consensusOpts, out.options(cmd)...)

			c := currentConfig()
			c.Update(consensusOpts)

			err := runConsensus(cmd.Context(), c, args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	consensusCmd.Flags().StringVarP(
		&mode, "mode", "m", "",
		"filter mode: soft or strict",
	)
	consensusCmd.Flags().Float64VarP(
		&bitscoreFraction, "bitscore-fraction", "b", 0,
		"strict mode: keep hits within this fraction of the top bitscore",
	)
	consensusCmd.Flags().IntVarP(
		&minLength, "min-length", "l", 0,
		"strict mode: minimal alignment length of a confident hit",
	)
	consensusCmd.Flags().Float64VarP(
		&minBitscore, "min-bitscore", "s", 0,
		"strict mode: minimal bitscore of a confident hit",
	)
	consensusCmd.Flags().Float64SliceVarP(
		&cutoffs, "cutoffs", "c", nil,
		"strict mode: identity cutoffs for species, genus, family, order, class, phylum",
	)
	consensusCmd.Flags().BoolVarP(
		&retainIdentity, "retain-identity", "i", false,
		"add percentage similarity of supporting hits",
	)
	out.register(consensusCmd)

	return consensusCmd
}

func runConsensus(ctx context.Context, cfg *config.Config, hitsFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	hits, st, err := iohits.New(cfg).Read(hitsFile)
	if err != nil {
		return err
	}
	if st.Malformed > 0 {
		gn.Warn(
			"Skipped <em>%s</em> malformed rows of <em>%s</em>",
			humanize.Comma(int64(st.Malformed)), hitsFile,
		)
	}

	groups := hit.GroupBy(hits)
	schema := cfg.Schema()
	f := hitfilter.New(schema, cfg.FilterParams())
	slog.Info("Running consensus",
		"mode", cfg.Filter.Mode,
		"queries", len(groups),
		"hits", len(hits),
	)

	pipeOpts := []consensus.Option{
		consensus.OptJobsNumber(cfg.JobsNumber),
		consensus.OptRetainIdentity(cfg.Filter.RetainIdentity),
	}
	var bar *pb.ProgressBar
	if len(groups) >= progressMin {
		bar = newProgressBar(len(groups), "Queries: ")
		var done int
		pipeOpts = append(pipeOpts, consensus.OptProgress(func(n int) {
			bar.Add(n - done)
			done = n
		}))
	}

	aa, err := consensus.New(f, schema, pipeOpts...).Run(ctx, groups)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	w, err := ioout.New(cfg)
	if err != nil {
		return err
	}
	if err = w.WriteAssignments(aa); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	if cfg.Output.ToDB {
		if err = saveAssignments(ctx, cfg, aa); err != nil {
			return err
		}
	}

	var assigned int
	for _, v := range aa {
		if v.LCA != "" {
			assigned++
		}
	}
	gn.Info(
		"Assigned taxonomy to <em>%s</em> of <em>%s</em> queries in %s",
		humanize.Comma(int64(assigned)),
		humanize.Comma(int64(len(aa))),
		gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}

func saveAssignments(
	ctx context.Context,
	cfg *config.Config,
	aa []lca.Assignment,
) error {
	sink, err := iodb.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer sink.Close()

	n, err := sink.SaveAssignments(ctx, cfg.Schema().Ranks(), aa)
	if err != nil {
		return err
	}
	gn.Info(
		"Saved <em>%s</em> assignments to <em>%s</em>, run <em>%s</em>",
		humanize.Comma(int64(n)), cfg.Database.Database, sink.RunID(),
	)
	return nil
}

// newProgressBar creates a progress bar that disappears when finished.
func newProgressBar(total int, prefix string) *pb.ProgressBar {
	bar := pb.Full.Start(total)
	bar.Set("prefix", prefix)
	bar.Set(pb.CleanOnFinish, true)
	return bar
}

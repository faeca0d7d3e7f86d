package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlca/internal/iocache"
	"github.com/gnames/gnlca/internal/iodb"
	"github.com/gnames/gnlca/internal/ioout"
	"github.com/gnames/gnlca/internal/iopaths"
	"github.com/gnames/gnlca/internal/ioref"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnlca/pkg/parserpool"
	"github.com/gnames/gnlca/pkg/resolver"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// getResolveCmd returns the resolve command.
func getResolveCmd() *cobra.Command {
	var (
		primary   []string
		secondary []string
		namesDmp  string
		sfga      string
		noCache   bool
		out       outputFlags
	)

	resolveCmd := &cobra.Command{
		Use:   "resolve PATHS",
		Short: "Resolve taxonomy paths to taxon IDs",
		Long: `Resolve taxonomy paths to taxon IDs using reference name tables.

PATHS is a headerless tab-separated file with two columns: a key (for
example a SILVA accession) and a taxonomy path ("Bacteria;Firmicutes;...").
Use "-" to read from STDIN.

Every path is walked from the most specific token to the root. Tokens
with exception words (uncultured, metagenome, ...) are skipped. For every
other token scientific names (primary tier) are checked first, synonyms
(secondary tier) second, and the first match wins. Paths without matches
get the unresolved ID ("NA" by default).

Reference sources:
  - primary/secondary tables: headerless "name TAB id" files
  - NCBI names.dmp: scientific names are primary, other classes secondary
  - SFGA archive: accepted names are primary, synonyms secondary

The name index is cached in ~/.cache/gnlca/index and reused while
reference files and resolve settings stay the same.

Examples:
  gnlca resolve silva.tsv -p sci.tsv -s syn.tsv -o ids.csv
  gnlca resolve silva.tsv --names-dmp names.dmp -f json
  gnlca resolve silva.tsv --sfga col.sqlite --db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resolveOpts []config.Option
			if cmd.Flags().Changed("primary") {
				resolveOpts = append(resolveOpts,
					config.OptReferencePrimary(primary))
			}
			if cmd.Flags().Changed("secondary") {
				resolveOpts = append(resolveOpts,
					config.OptReferenceSecondary(secondary))
			}
			if cmd.Flags().Changed("names-dmp") {
				resolveOpts = append(resolveOpts,
					config.OptReferenceNamesDmp(namesDmp))
			}
			if cmd.Flags().Changed("sfga") {
				resolveOpts = append(resolveOpts,
					config.OptReferenceSFGA(sfga))
			}
			if cmd.Flags().Changed("no-cache") {
				resolveOpts = append(resolveOpts,
					config.OptWithCache(!noCache))
			}
			resolveOpts = append(resolveOpts, out.options(cmd)...)

			c := currentConfig()
			c.Update(resolveOpts)

			err := runResolve(cmd.Context(), c, args[0])
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	resolveCmd.Flags().StringSliceVarP(
		&primary, "primary", "p", nil,
		"tables with scientific names (name TAB id)",
	)
	resolveCmd.Flags().StringSliceVarP(
		&secondary, "secondary", "s", nil,
		"tables with synonyms (name TAB id)",
	)
	resolveCmd.Flags().StringVar(
		&namesDmp, "names-dmp", "",
		"NCBI taxonomy names.dmp file",
	)
	resolveCmd.Flags().StringVar(
		&sfga, "sfga", "",
		"SFGA SQLite archive",
	)
	resolveCmd.Flags().BoolVar(
		&noCache, "no-cache", false,
		"rebuild the name index even if it is cached",
	)
	out.register(resolveCmd)

	return resolveCmd
}

func runResolve(ctx context.Context, cfg *config.Config, pathsFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	var pool parserpool.Pool
	if cfg.Resolve.CanonicalNames || cfg.Reference.SFGA != "" {
		pool = parserpool.NewPool(cfg.JobsNumber)
		defer pool.Close()
	}

	idx, err := loadIndex(ctx, cfg, pool)
	if err != nil {
		return err
	}

	records, st, err := iopaths.Read(pathsFile)
	if err != nil {
		return err
	}
	if st.Malformed > 0 {
		gn.Warn(
			"Skipped <em>%s</em> malformed rows of <em>%s</em>",
			humanize.Comma(int64(st.Malformed)), pathsFile,
		)
	}

	res := resolver.New(idx, resolver.NewExceptionSet(cfg.Resolve.ExceptionTokens))
	rr, err := resolvePaths(ctx, cfg, res, records)
	if err != nil {
		return err
	}

	w, err := ioout.New(cfg)
	if err != nil {
		return err
	}
	if err = w.WriteResolutions(rr); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}

	if cfg.Output.ToDB {
		if err = saveResolutions(ctx, cfg, rr); err != nil {
			return err
		}
	}

	var found int
	for _, v := range rr {
		if v.Found {
			found++
		}
	}
	gn.Info(
		"Resolved <em>%s</em> of <em>%s</em> taxonomy paths in %s",
		humanize.Comma(int64(found)),
		humanize.Comma(int64(len(rr))),
		gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}

// loadIndex restores the name index from the cache or builds it from
// reference files.
func loadIndex(
	ctx context.Context,
	cfg *config.Config,
	pool parserpool.Pool,
) (*nameidx.Index, error) {
	loader := ioref.New(cfg, pool)
	norm := nameidx.OptNormalizer(loader.Normalizer())

	var cache *iocache.Cache
	var key uuid.UUID
	if cfg.WithCache && cfg.HomeDir != "" {
		var err error
		if key, err = iocache.Key(cfg); err != nil {
			slog.Warn("Cannot calculate cache key", "error", err)
		} else {
			cache = iocache.New(config.IndexCacheDir(cfg.HomeDir))
			snap, ok, err := cache.Load(key)
			if err != nil {
				slog.Warn("Cannot read cached name index", "error", err)
			}
			if ok {
				gn.Info("Name index restored from cache")
				return nameidx.FromSnapshot(snap, norm), nil
			}
		}
	}

	gn.Info("Building name index from reference files")
	idx, err := loader.Build(ctx)
	if err != nil {
		return nil, err
	}
	st := idx.Stats()
	gn.Info(
		"Name index has <em>%s</em> scientific names and <em>%s</em> synonyms",
		humanize.Comma(int64(st.Primary)),
		humanize.Comma(int64(st.Secondary)),
	)

	if cache != nil {
		if err = cache.Save(key, idx.Snapshot()); err != nil {
			slog.Warn("Cannot cache name index", "error", err)
		}
	}
	return idx, nil
}

// resolvePaths resolves records concurrently and keeps their order.
func resolvePaths(
	ctx context.Context,
	cfg *config.Config,
	res *resolver.Resolver,
	records []iopaths.Record,
) ([]ioout.Resolution, error) {
	out := make([]ioout.Resolution, len(records))
	jobs := max(cfg.JobsNumber, 1)
	chunk := (len(records) + jobs - 1) / jobs

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%ctxCheckRecords == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				r := res.ResolveString(records[i].Path, cfg.Resolve.Delimiter)
				out[i] = ioout.NewResolution(
					records[i].Key, r, cfg.Resolve.UnresolvedID,
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, resolveCancelledError(err)
	}
	return out, nil
}

func saveResolutions(
	ctx context.Context,
	cfg *config.Config,
	rr []ioout.Resolution,
) error {
	sink, err := iodb.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer sink.Close()

	n, err := sink.SaveResolutions(ctx, rr)
	if err != nil {
		return err
	}
	gn.Info(
		"Saved <em>%s</em> resolutions to <em>%s</em>, run <em>%s</em>",
		humanize.Comma(int64(n)), cfg.Database.Database, sink.RunID(),
	)
	return nil
}

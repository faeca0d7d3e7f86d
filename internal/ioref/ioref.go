// Package ioref reads reference name tables and builds a NameIndex out of
// them. Supported sources are two-column (name, id) tab-separated tables,
// NCBI names.dmp files and SFGA SQLite archives.
package ioref

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/ent/taxpath"
	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnlca/pkg/parserpool"
	"github.com/gnames/gnlca/pkg/resolver"
)

// ctxCheckRows is how often long readers check for cancellation.
const ctxCheckRows = 100_000

// Loader reads reference files listed in config.ReferenceConfig.
type Loader struct {
	cfg  *config.Config
	pool parserpool.Pool
	exc  resolver.ExceptionSet

	// malformed counts rows skipped because of a wrong number of fields.
	malformed int
}

// New creates a Loader. The pool is optional, without it names are never
// reduced to canonical forms.
func New(cfg *config.Config, pool parserpool.Pool) *Loader {
	return &Loader{
		cfg:  cfg,
		pool: pool,
		exc:  resolver.NewExceptionSet(cfg.Resolve.ExceptionTokens),
	}
}

// Normalizer returns the key function of the index: qualifiers are
// stripped and canonical forms taken according to settings, then the
// result goes through taxpath.Normalize.
func (l *Loader) Normalizer() nameidx.Normalizer {
	return NewNormalizer(
		l.cfg.Resolve.StripQualifiers,
		l.cfg.Resolve.CanonicalNames,
		l.pool,
	)
}

// NewNormalizer composes a nameidx.Normalizer.
func NewNormalizer(
	stripQualifiers, canonical bool,
	pool parserpool.Pool,
) nameidx.Normalizer {
	if !canonical {
		pool = nil
	}
	if !stripQualifiers && pool == nil {
		return taxpath.Normalize
	}
	return func(s string) string {
		if stripQualifiers {
			s = taxpath.StripQualifiers(s)
		}
		if pool != nil {
			s = pool.Canonical(s)
		}
		return taxpath.Normalize(s)
	}
}

// Malformed returns the number of rows skipped because of a wrong number
// of fields.
func (l *Loader) Malformed() int {
	return l.malformed
}

// Build reads all reference files and returns a frozen Index. Inside a
// tier, later rows overwrite earlier rows with the same key, files are
// read in the order primary tables, secondary tables, names.dmp, SFGA.
func (l *Loader) Build(ctx context.Context) (*nameidx.Index, error) {
	b := nameidx.NewBuilder(nameidx.OptNormalizer(l.Normalizer()))
	ref := l.cfg.Reference

	for _, v := range ref.Primary {
		if err := l.loadTable(ctx, b, nameidx.Primary, v); err != nil {
			return nil, err
		}
	}
	for _, v := range ref.Secondary {
		if err := l.loadTable(ctx, b, nameidx.Secondary, v); err != nil {
			return nil, err
		}
	}
	if ref.NamesDmp != "" {
		if err := l.loadNamesDmp(ctx, b, ref.NamesDmp); err != nil {
			return nil, err
		}
	}
	if ref.SFGA != "" {
		if err := l.loadSFGA(ctx, b, ref.SFGA); err != nil {
			return nil, err
		}
	}

	res := b.Build()
	st := res.Stats()
	if st.Primary+st.Secondary == 0 {
		return nil, EmptyIndexError()
	}

	slog.Info("Name index is ready",
		"primary", st.Primary,
		"secondary", st.Secondary,
		"overwritten", st.Overwritten,
		"shadowed", st.Shadowed,
		"rejected", st.Rejected,
		"malformed", l.malformed,
	)
	if l.malformed > 0 {
		slog.Warn("Some reference rows were malformed",
			"rows", humanize.Comma(int64(l.malformed)))
	}
	return res, nil
}

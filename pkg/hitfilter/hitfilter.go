// Package hitfilter prunes the alignment hits of one query before a
// consensus is computed.
//
// Soft mode keeps only the hits with the best bitscore. Strict mode runs
// three stages: low-confidence hits lose their ranks, hits outside of a
// bitscore window around the best hit are dropped, and ranks finer than
// the identity of a hit supports are nulled.
//
// Filtering never adds rank values and never moves hits between groups.
// The input group is not modified, Apply works on a copy.
package hitfilter

import (
	"strings"

	"github.com/gnames/gnlca/pkg/ent/hit"
)

// Mode selects the filtering algorithm.
type Mode int

const (
	// UnknownMode is the zero value.
	UnknownMode Mode = iota
	// Soft keeps hits with the maximum bitscore.
	Soft
	// Strict applies thresholds, a bitscore window and identity cutoffs.
	Strict
)

// NewMode converts "soft" or "strict" to Mode.
func NewMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soft":
		return Soft
	case "strict":
		return Strict
	default:
		return UnknownMode
	}
}

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case Soft:
		return "soft"
	case Strict:
		return "strict"
	default:
		return "unknown"
	}
}

// Identity tiers, in the order of the cutoff vector.
const (
	SpeciesTier = iota
	GenusTier
	FamilyTier
	OrderTier
	ClassTier
	PhylumTier
	TiersNum
)

// TierColumns maps every identity tier to the rank columns it nulls. This
// mapping is fixed; columns missing from a schema are ignored.
var TierColumns = [TiersNum][]string{
	SpeciesTier: {"species"},
	GenusTier:   {"genus"},
	FamilyTier:  {"family"},
	OrderTier:   {"order", "suborder", "infraorder"},
	ClassTier:   {"class", "subclass"},
	PhylumTier:  {"phylum", "subphylum"},
}

// Params are filtering thresholds.
type Params struct {
	// Mode is the filtering algorithm.
	Mode Mode
	// BitscoreFraction is the width of the strict bitscore window relative
	// to the best bitscore of a group.
	BitscoreFraction float64
	// MinLength is the alignment length below which a hit is low-confidence
	// (together with MinBitScore).
	MinLength int
	// MinBitScore is the bitscore below which a hit is low-confidence
	// (together with MinLength).
	MinBitScore float64
	// Cutoffs are percent identity thresholds for species, genus, family,
	// order, class and phylum tiers.
	Cutoffs [TiersNum]float64
}

// DefaultParams returns soft mode with default strict thresholds.
func DefaultParams() Params {
	return Params{
		Mode:             Soft,
		BitscoreFraction: 0.02,
		MinLength:        100,
		MinBitScore:      150,
		Cutoffs:          [TiersNum]float64{98, 95, 90, 85, 80, 75},
	}
}

// Filter applies Params to hit groups. It is read-only after creation
// and safe for concurrent use.
type Filter struct {
	params  Params
	tierIdx [TiersNum][]int
}

// New creates a Filter for hits that follow the schema.
func New(schema hit.Schema, p Params) *Filter {
	res := &Filter{params: p}
	for i, cols := range TierColumns {
		for _, c := range cols {
			if j, ok := schema.Index(c); ok {
				res.tierIdx[i] = append(res.tierIdx[i], j)
			}
		}
	}
	return res
}

// Params returns the thresholds of the filter.
func (f *Filter) Params() Params {
	return f.params
}

// Apply runs the configured mode on a copy of the group. Unknown mode
// returns the copy unchanged.
func (f *Filter) Apply(g hit.Group) hit.Group {
	switch f.params.Mode {
	case Soft:
		return KeepBest(g)
	case Strict:
		res := g.Clone()
		NullLowConfidence(&res, f.params.MinLength, f.params.MinBitScore)
		res = BitScoreWindow(res, f.params.BitscoreFraction)
		f.TruncateByIdentity(&res)
		return res
	default:
		return g.Clone()
	}
}

// KeepBest returns a copy of the group with hits that have the maximum
// bitscore. Ties are all kept.
func KeepBest(g hit.Group) hit.Group {
	res := hit.Group{QueryID: g.QueryID}
	maxScore, ok := g.MaxBitScore()
	if !ok {
		return res
	}
	for _, v := range g.Hits {
		if v.BitScore == maxScore {
			res.Hits = append(res.Hits, v.Clone())
		}
	}
	return res
}

// NullLowConfidence nulls every rank of hits that are both shorter than
// minLength and score lower than minBitScore. Such hits stay in the group.
func NullLowConfidence(g *hit.Group, minLength int, minBitScore float64) {
	for i := range g.Hits {
		h := &g.Hits[i]
		if h.Length < minLength && h.BitScore < minBitScore {
			h.NullRanks()
		}
	}
}

// BitScoreWindow drops hits with bitscore lower than
// max - max*fraction, where max is the best bitscore of the group.
// Returned hits share memory with the input.
func BitScoreWindow(g hit.Group, fraction float64) hit.Group {
	res := hit.Group{QueryID: g.QueryID}
	maxScore, ok := g.MaxBitScore()
	if !ok {
		return res
	}
	minScore := maxScore - maxScore*fraction
	for _, v := range g.Hits {
		if v.BitScore >= minScore {
			res.Hits = append(res.Hits, v)
		}
	}
	return res
}

// TruncateByIdentity nulls the rank columns of every tier whose cutoff is
// higher than the percent identity of a hit. Each hit is judged on its own
// identity.
func (f *Filter) TruncateByIdentity(g *hit.Group) {
	for i := range g.Hits {
		h := &g.Hits[i]
		for tier, cutoff := range f.params.Cutoffs {
			if h.PIdent >= cutoff {
				continue
			}
			for _, j := range f.tierIdx[tier] {
				if j < len(h.Ranks) {
					h.Ranks[j] = hit.Unresolved
				}
			}
		}
	}
}

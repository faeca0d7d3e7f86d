// Package hit contains alignment hit records, their grouping by query and
// the rank schema shared by filtering and consensus.
package hit

import (
	"slices"
	"strings"
)

// Unresolved is the in-memory value of a rank field without a taxonomic
// assignment. Readers convert input markers ("NA", empty cells) to it,
// writers render it with the configured sentinel.
const Unresolved = ""

// DefaultRanks is the rank column set of BLAST tables annotated with NCBI
// taxonomy, ordered from the most general to the most specific rank.
var DefaultRanks = []string{
	"superkingdom", "phylum", "class", "order", "family", "genus", "species",
}

// Hit is one alignment record of a query sequence.
type Hit struct {
	// QueryID is the identifier of the query sequence (qseqid).
	QueryID string `json:"queryId"`
	// PIdent is percent identity of the alignment, 0-100.
	PIdent float64 `json:"percentIdentity"`
	// Length is the alignment length.
	Length int `json:"alignmentLength"`
	// BitScore is alignment quality, higher is better.
	BitScore float64 `json:"bitscore"`
	// Ranks holds taxon names aligned with a Schema. Unresolved ranks
	// are empty strings.
	Ranks []string `json:"ranks"`
}

// Clone returns a copy of the hit that does not share its Ranks slice.
func (h Hit) Clone() Hit {
	h.Ranks = slices.Clone(h.Ranks)
	return h
}

// NullRanks marks every rank of the hit as unresolved.
func (h *Hit) NullRanks() {
	for i := range h.Ranks {
		h.Ranks[i] = Unresolved
	}
}

// Group is the set of all hits sharing one QueryID.
type Group struct {
	QueryID string
	Hits    []Hit
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	res := Group{QueryID: g.QueryID, Hits: make([]Hit, len(g.Hits))}
	for i := range g.Hits {
		res.Hits[i] = g.Hits[i].Clone()
	}
	return res
}

// MaxBitScore returns the highest bitscore of the group and false if the
// group is empty.
func (g Group) MaxBitScore() (float64, bool) {
	if len(g.Hits) == 0 {
		return 0, false
	}
	res := g.Hits[0].BitScore
	for _, v := range g.Hits[1:] {
		if v.BitScore > res {
			res = v.BitScore
		}
	}
	return res, true
}

// GroupBy partitions hits by QueryID. Groups are returned in the order in
// which their first hit appears, and hits keep their input order inside
// a group.
func GroupBy(hits []Hit) []Group {
	idx := make(map[string]int)
	var res []Group
	for _, v := range hits {
		i, ok := idx[v.QueryID]
		if !ok {
			i = len(res)
			idx[v.QueryID] = i
			res = append(res, Group{QueryID: v.QueryID})
		}
		res[i].Hits = append(res[i].Hits, v)
	}
	return res
}

// Schema is the ordered list of rank columns, from the most general to the
// most specific rank.
type Schema struct {
	ranks []string
	index map[string]int
}

// NewSchema creates a Schema from rank names. Names are lower-cased and
// duplicates are ignored.
func NewSchema(ranks []string) Schema {
	res := Schema{index: make(map[string]int)}
	for _, v := range ranks {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := res.index[v]; ok {
			continue
		}
		res.index[v] = len(res.ranks)
		res.ranks = append(res.ranks, v)
	}
	return res
}

// Ranks returns a copy of the rank names.
func (s Schema) Ranks() []string {
	return slices.Clone(s.ranks)
}

// Len returns the number of rank columns.
func (s Schema) Len() int {
	return len(s.ranks)
}

// Index returns the position of a rank column and false if the schema
// does not have it.
func (s Schema) Index(rank string) (int, bool) {
	i, ok := s.index[strings.ToLower(rank)]
	return i, ok
}

// Rank returns the name of the column at position i.
func (s Schema) Rank(i int) string {
	if i < 0 || i >= len(s.ranks) {
		return ""
	}
	return s.ranks[i]
}

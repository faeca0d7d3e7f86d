// Package lca reduces a filtered hit group to one consensus taxonomy.
package lca

import (
	"slices"

	"github.com/gnames/gnlca/pkg/ent/hit"
)

// Assignment is the consensus taxonomy of one query sequence.
type Assignment struct {
	// QueryID is the identifier of the query sequence.
	QueryID string `json:"queryId"`
	// Ranks are consensus values aligned with the schema used for the
	// reduction. Unresolved ranks are empty.
	Ranks []string `json:"ranks"`
	// LCA is the most specific resolved consensus value.
	LCA string `json:"lca"`
	// LCARank is the column name of LCA.
	LCARank string `json:"lcaRank"`
	// HitsNum is the number of hits that took part in the consensus.
	HitsNum int `json:"hitsNum"`
	// PIdent is the maximum percent identity of hits that survived
	// filtering. It is meaningful only when HasPIdent is true.
	PIdent float64 `json:"percentIdentity,omitempty"`
	// HasPIdent is true when identity retention was requested and at
	// least one hit survived filtering.
	HasPIdent bool `json:"-"`
}

// Reduce computes the consensus of a group. A rank gets a value only
// when every hit of the group carries the same non-empty value for it. A
// hit with an unresolved rank, or a second distinct value, leaves the rank
// unresolved. Ranks are evaluated independently of each other.
//
// When retainIdentity is true, the assignment gets the maximum percent
// identity of the group.
func Reduce(g hit.Group, schema hit.Schema, retainIdentity bool) Assignment {
	n := schema.Len()
	res := Assignment{
		QueryID: g.QueryID,
		Ranks:   make([]string, n),
		HitsNum: len(g.Hits),
	}

	for i := range n {
		res.Ranks[i] = consensusValue(g.Hits, i)
	}

	for i := n - 1; i >= 0; i-- {
		if res.Ranks[i] != hit.Unresolved {
			res.LCA = res.Ranks[i]
			res.LCARank = schema.Rank(i)
			break
		}
	}

	if retainIdentity && len(g.Hits) > 0 {
		res.PIdent, res.HasPIdent = maxIdentity(g), true
	}
	return res
}

// consensusValue returns the value of the rank i shared by all hits, or
// hit.Unresolved.
func consensusValue(hits []hit.Hit, i int) string {
	var res string
	for j, h := range hits {
		if i >= len(h.Ranks) || h.Ranks[i] == hit.Unresolved {
			return hit.Unresolved
		}
		if j == 0 {
			res = h.Ranks[i]
			continue
		}
		if h.Ranks[i] != res {
			return hit.Unresolved
		}
	}
	return res
}

func maxIdentity(g hit.Group) float64 {
	res := g.Hits[0].PIdent
	for _, h := range g.Hits[1:] {
		if h.PIdent > res {
			res = h.PIdent
		}
	}
	return res
}

// AsHit converts an assignment back to a single-hit group member, so that
// reduced records can be fed to Reduce again.
func (a Assignment) AsHit() hit.Hit {
	return hit.Hit{
		QueryID: a.QueryID,
		PIdent:  a.PIdent,
		Ranks:   slices.Clone(a.Ranks),
	}
}

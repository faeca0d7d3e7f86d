// Package resolver maps taxonomy paths to taxon identifiers using a
// two-tier name index.
package resolver

import (
	"github.com/gnames/gnlca/pkg/ent/taxpath"
	"github.com/gnames/gnlca/pkg/nameidx"
)

// Result is the outcome of resolving one path.
type Result struct {
	// Found is false for unresolved paths.
	Found bool
	// ID is the matched taxon id.
	ID string
	// Name is the matched reference name.
	Name string
	// Token is the path token that produced the match.
	Token string
	// Position is the index of Token in the root-to-leaf path, -1 when
	// nothing matched.
	Position int
	// Tier tells which name table produced the match.
	Tier nameidx.Tier
	// Skipped counts tokens ignored because of exception words.
	Skipped int
}

// Resolver walks taxonomy paths against a NameIndex. It holds no mutable
// state and can be shared between goroutines.
type Resolver struct {
	idx *nameidx.Index
	exc ExceptionSet
}

// New creates a Resolver.
func New(idx *nameidx.Index, exc ExceptionSet) *Resolver {
	return &Resolver{idx: idx, exc: exc}
}

// Resolve walks the path from the leaf to the root. Tokens with exception
// words are skipped without a lookup. For every other token the primary
// tier is consulted first, then the secondary tier, and the first hit
// stops the walk.
func (r *Resolver) Resolve(path taxpath.Path) Result {
	res := Result{Position: -1}
	for i := len(path) - 1; i >= 0; i-- {
		token := path[i]
		if r.exc.match(taxpath.Normalize(token)) {
			res.Skipped++
			continue
		}

		key := r.idx.Normalize(token)
		if key == "" {
			continue
		}

		for _, tier := range []nameidx.Tier{nameidx.Primary, nameidx.Secondary} {
			if e, ok := r.idx.Get(tier, key); ok {
				res.Found = true
				res.ID = e.ID
				res.Name = e.Name
				res.Token = token
				res.Position = i
				res.Tier = tier
				return res
			}
		}
	}
	return res
}

// ResolveString parses s with the delimiter and resolves the result.
func (r *Resolver) ResolveString(s, delim string) Result {
	return r.Resolve(taxpath.Parse(s, delim))
}

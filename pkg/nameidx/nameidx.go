// Package nameidx provides NameIndex, a read-only two-tier mapping from
// normalized taxon names to stable taxon identifiers.
//
// The primary tier holds canonical (scientific) names, the secondary tier
// holds alternate names: synonyms, misspellings, common names. An Index is
// built once with a Builder and is safe for concurrent reads afterwards.
//
// # Duplicate keys
//
// Reference tables often list the same name several times. Inside a tier
// the last added entry wins. This follows the order of NCBI names.dmp and
// SFGA dumps, where later rows carry the current assignment, and it is the
// documented policy of this package.
//
// A name can live in one tier only. When a key is present in both tiers
// the secondary entry is dropped during Build, so primary entries always
// win.
package nameidx

import (
	"maps"
	"strings"

	"github.com/gnames/gnlca/pkg/ent/taxpath"
)

// Tier is the priority level of a name table.
type Tier int

const (
	// NoTier is the zero value for entries that did not match.
	NoTier Tier = iota
	// Primary tier contains canonical scientific names.
	Primary
	// Secondary tier contains synonyms and other alternate names.
	Secondary
)

// String returns the tier label used in output files.
func (t Tier) String() string {
	switch t {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return ""
	}
}

// NewTier converts a label to Tier. Unknown labels return NoTier.
func NewTier(s string) Tier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "scientific", "1":
		return Primary
	case "secondary", "synonym", "2":
		return Secondary
	default:
		return NoTier
	}
}

// Entry is one name record of the index.
type Entry struct {
	// ID is the taxon identifier, for example an NCBI staxid.
	ID string
	// Name is the name as it was given to the Builder.
	Name string
	// Tier is the tier the entry belongs to.
	Tier Tier
}

// Stats summarizes the content of an Index.
type Stats struct {
	// Primary is the number of distinct primary keys.
	Primary int
	// Secondary is the number of distinct secondary keys after shadowed
	// entries were removed.
	Secondary int
	// Overwritten counts entries replaced by a later entry of the same key
	// in the same tier.
	Overwritten int
	// Shadowed counts secondary keys removed because the primary tier has
	// the same key.
	Shadowed int
	// Rejected counts entries with empty names or ids.
	Rejected int
}

// Normalizer converts a raw name to an index key.
type Normalizer func(string) string

// Option configures Builder and Index.
type Option func(*options)

type options struct {
	norm Normalizer
}

// OptNormalizer sets the function that creates keys out of names. It has
// to be safe for concurrent use. Default is taxpath.Normalize.
func OptNormalizer(fn Normalizer) Option {
	return func(o *options) {
		if fn != nil {
			o.norm = fn
		}
	}
}

func newOptions(opts []Option) options {
	res := options{norm: taxpath.Normalize}
	for _, opt := range opts {
		opt(&res)
	}
	return res
}

// Builder accumulates reference entries. It is not safe for concurrent
// use.
type Builder struct {
	opts      options
	primary   map[string]Entry
	secondary map[string]Entry
	stats     Stats
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		opts:      newOptions(opts),
		primary:   make(map[string]Entry),
		secondary: make(map[string]Entry),
	}
}

// Add inserts a name into the given tier. It returns false if the entry
// was rejected because of an unknown tier, an empty key or an empty id.
func (b *Builder) Add(tier Tier, name, id string) bool {
	id = strings.TrimSpace(id)
	key := b.opts.norm(name)
	if key == "" || id == "" {
		b.stats.Rejected++
		return false
	}

	var m map[string]Entry
	switch tier {
	case Primary:
		m = b.primary
	case Secondary:
		m = b.secondary
	default:
		b.stats.Rejected++
		return false
	}

	if _, ok := m[key]; ok {
		b.stats.Overwritten++
	}
	m[key] = Entry{ID: id, Name: strings.TrimSpace(name), Tier: tier}
	return true
}

// Build freezes accumulated entries into an Index. The Builder must not be
// used afterwards.
func (b *Builder) Build() *Index {
	stats := b.stats
	for k := range b.secondary {
		if _, ok := b.primary[k]; ok {
			delete(b.secondary, k)
			stats.Shadowed++
		}
	}
	stats.Primary = len(b.primary)
	stats.Secondary = len(b.secondary)

	res := &Index{
		norm:      b.opts.norm,
		primary:   b.primary,
		secondary: b.secondary,
		stats:     stats,
	}
	b.primary = nil
	b.secondary = nil
	return res
}

// Index is an immutable two-tier name index.
type Index struct {
	norm      Normalizer
	primary   map[string]Entry
	secondary map[string]Entry
	stats     Stats
}

// Normalize converts a name to the key form used by the index.
func (idx *Index) Normalize(name string) string {
	return idx.norm(name)
}

// Lookup normalizes the name and searches the primary tier, then the
// secondary one.
func (idx *Index) Lookup(name string) (Entry, bool) {
	key := idx.norm(name)
	if res, ok := idx.primary[key]; ok {
		return res, true
	}
	res, ok := idx.secondary[key]
	return res, ok
}

// Get searches one tier by an already normalized key.
func (idx *Index) Get(tier Tier, key string) (Entry, bool) {
	var res Entry
	var ok bool
	switch tier {
	case Primary:
		res, ok = idx.primary[key]
	case Secondary:
		res, ok = idx.secondary[key]
	}
	return res, ok
}

// LookupTier normalizes the name and searches one tier only.
func (idx *Index) LookupTier(tier Tier, name string) (Entry, bool) {
	return idx.Get(tier, idx.norm(name))
}

// Stats returns counters collected while the index was built.
func (idx *Index) Stats() Stats {
	return idx.stats
}

// Snapshot is a serializable copy of an Index.
type Snapshot struct {
	Primary   map[string]Entry
	Secondary map[string]Entry
	Stats     Stats
}

// Snapshot returns a copy of the index content.
func (idx *Index) Snapshot() Snapshot {
	return Snapshot{
		Primary:   maps.Clone(idx.primary),
		Secondary: maps.Clone(idx.secondary),
		Stats:     idx.stats,
	}
}

// FromSnapshot restores an Index. The normalizer given in options must be
// the same that created the snapshot keys.
func FromSnapshot(s Snapshot, opts ...Option) *Index {
	o := newOptions(opts)
	res := &Index{
		norm:      o.norm,
		primary:   maps.Clone(s.Primary),
		secondary: maps.Clone(s.Secondary),
		stats:     s.Stats,
	}
	if res.primary == nil {
		res.primary = make(map[string]Entry)
	}
	if res.secondary == nil {
		res.secondary = make(map[string]Entry)
	}
	return res
}

package hitfilter_test

import (
	"testing"

	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/hitfilter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schema = hit.NewSchema(hit.DefaultRanks)

func ranks(species string) []string {
	return []string{"Bacteria", "Firmicutes", "Bacilli", "Bacillales",
		"Bacillaceae", "Bacillus", species}
}

func TestNewMode(t *testing.T) {
	assert.Equal(t, hitfilter.Soft, hitfilter.NewMode("Soft"))
	assert.Equal(t, hitfilter.Strict, hitfilter.NewMode(" strict"))
	assert.Equal(t, hitfilter.UnknownMode, hitfilter.NewMode("lax"))
	assert.Equal(t, "strict", hitfilter.Strict.String())
}

func TestKeepBest(t *testing.T) {
	g := hit.Group{QueryID: "q1", Hits: []hit.Hit{
		{QueryID: "q1", BitScore: 200, Ranks: ranks("Bacillus subtilis")},
		{QueryID: "q1", BitScore: 198, Ranks: ranks("Bacillus cereus")},
		{QueryID: "q1", BitScore: 200, Ranks: ranks("Bacillus licheniformis")},
		{QueryID: "q1", BitScore: 12, Ranks: ranks("Bacillus anthracis")},
	}}

	res := hitfilter.KeepBest(g)
	require.Len(t, res.Hits, 2)
	for _, h := range res.Hits {
		assert.Equal(t, 200.0, h.BitScore)
	}
	assert.Equal(t, "Bacillus subtilis", res.Hits[0].Ranks[6])
	assert.Equal(t, "Bacillus licheniformis", res.Hits[1].Ranks[6])

	empty := hitfilter.KeepBest(hit.Group{QueryID: "q2"})
	assert.Equal(t, "q2", empty.QueryID)
	assert.Empty(t, empty.Hits)
}

// Soft output equals exactly the set of hits with the maximum bitscore.
func TestSoftMaxRetention(t *testing.T) {
	scores := [][]float64{
		{1}, {5, 5, 5}, {1, 2, 3, 3}, {300, 299.99, 0}, {},
	}
	f := hitfilter.New(schema, hitfilter.DefaultParams())
	for _, ss := range scores {
		g := hit.Group{QueryID: "q"}
		for _, s := range ss {
			g.Hits = append(g.Hits, hit.Hit{QueryID: "q", BitScore: s, Ranks: ranks("x")})
		}
		res := f.Apply(g)

		var want int
		maxScore, ok := g.MaxBitScore()
		for _, h := range g.Hits {
			if ok && h.BitScore == maxScore {
				want++
			}
		}
		assert.Len(t, res.Hits, want)
		for _, h := range res.Hits {
			assert.Equal(t, maxScore, h.BitScore)
		}
	}
}

func TestNullLowConfidence(t *testing.T) {
	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{Length: 50, BitScore: 140, Ranks: ranks("a")},
		{Length: 50, BitScore: 160, Ranks: ranks("b")},
		{Length: 120, BitScore: 140, Ranks: ranks("c")},
	}}
	hitfilter.NullLowConfidence(&g, 100, 150)

	require.Len(t, g.Hits, 3)
	for _, v := range g.Hits[0].Ranks {
		assert.Equal(t, hit.Unresolved, v)
	}
	assert.Equal(t, "b", g.Hits[1].Ranks[6])
	assert.Equal(t, "c", g.Hits[2].Ranks[6])
}

func TestBitScoreWindow(t *testing.T) {
	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{BitScore: 200}, {BitScore: 198}, {BitScore: 196}, {BitScore: 195.9},
	}}
	res := hitfilter.BitScoreWindow(g, 0.02)
	require.Len(t, res.Hits, 3)
	assert.Equal(t, 196.0, res.Hits[2].BitScore)

	assert.Empty(t, hitfilter.BitScoreWindow(hit.Group{}, 0.02).Hits)
}

func TestTruncateByIdentity(t *testing.T) {
	f := hitfilter.New(schema, hitfilter.DefaultParams())

	tests := []struct {
		msg    string
		pident float64
		kept   int
	}{
		{"above all", 99, 7},
		{"equal to species cutoff", 98, 7},
		{"family kept", 92, 5},
		{"order kept", 85, 4},
		{"class kept", 80, 3},
		{"phylum kept", 77, 2},
		{"superkingdom only", 60, 1},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			g := hit.Group{QueryID: "q", Hits: []hit.Hit{
				{PIdent: v.pident, Ranks: ranks("Bacillus subtilis")},
			}}
			f.TruncateByIdentity(&g)
			r := g.Hits[0].Ranks
			for i := range r {
				if i < v.kept {
					assert.NotEqual(t, hit.Unresolved, r[i], schema.Rank(i))
				} else {
					assert.Equal(t, hit.Unresolved, r[i], schema.Rank(i))
				}
			}
		})
	}
}

func TestTruncatePident92(t *testing.T) {
	f := hitfilter.New(schema, hitfilter.DefaultParams())
	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{PIdent: 92, Ranks: ranks("Bacillus subtilis")},
	}}
	f.TruncateByIdentity(&g)
	sp, _ := schema.Index("species")
	gen, _ := schema.Index("genus")
	fam, _ := schema.Index("family")
	assert.Equal(t, hit.Unresolved, g.Hits[0].Ranks[sp])
	assert.Equal(t, hit.Unresolved, g.Hits[0].Ranks[gen])
	assert.Equal(t, "Bacillaceae", g.Hits[0].Ranks[fam])
}

func TestTierColumnsMultiRank(t *testing.T) {
	s := hit.NewSchema([]string{"phylum", "subphylum", "class", "subclass",
		"order", "suborder", "infraorder", "family"})
	f := hitfilter.New(s, hitfilter.DefaultParams())
	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{PIdent: 79, Ranks: []string{"P", "SP", "C", "SC", "O", "SO", "IO", "F"}},
	}}
	f.TruncateByIdentity(&g)
	assert.Equal(t,
		[]string{"P", "SP", "", "", "", "", "", ""},
		g.Hits[0].Ranks)
}

func TestStrictApply(t *testing.T) {
	p := hitfilter.DefaultParams()
	p.Mode = hitfilter.Strict
	f := hitfilter.New(schema, p)

	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{PIdent: 99, Length: 300, BitScore: 500, Ranks: ranks("Bacillus subtilis")},
		{PIdent: 92, Length: 300, BitScore: 495, Ranks: ranks("Bacillus cereus")},
		{PIdent: 99, Length: 300, BitScore: 400, Ranks: ranks("Bacillus anthracis")},
	}}
	res := f.Apply(g)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, "Bacillus subtilis", res.Hits[0].Ranks[6])
	assert.Equal(t, hit.Unresolved, res.Hits[1].Ranks[6])
	assert.Equal(t, hit.Unresolved, res.Hits[1].Ranks[5])
	assert.Equal(t, "Bacillaceae", res.Hits[1].Ranks[4])

	// input is untouched
	assert.Equal(t, "Bacillus cereus", g.Hits[1].Ranks[6])
	assert.Len(t, g.Hits, 3)
}

// A low-confidence hit keeps its place in the group and still defines
// the bitscore window.
func TestStrictLowConfidenceStillCounts(t *testing.T) {
	p := hitfilter.DefaultParams()
	p.Mode = hitfilter.Strict
	f := hitfilter.New(schema, p)

	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{PIdent: 99, Length: 90, BitScore: 140, Ranks: ranks("Bacillus subtilis")},
		{PIdent: 99, Length: 90, BitScore: 100, Ranks: ranks("Bacillus cereus")},
	}}
	res := f.Apply(g)
	require.Len(t, res.Hits, 1)
	for _, v := range res.Hits[0].Ranks {
		assert.Equal(t, hit.Unresolved, v)
	}
}

func TestNoRankGained(t *testing.T) {
	p := hitfilter.DefaultParams()
	p.Mode = hitfilter.Strict
	f := hitfilter.New(schema, p)
	in := []string{"Bacteria", "", "Bacilli", "", "Bacillaceae", "", ""}
	g := hit.Group{QueryID: "q", Hits: []hit.Hit{
		{PIdent: 100, Length: 500, BitScore: 900, Ranks: in},
	}}
	res := f.Apply(g)
	require.Len(t, res.Hits, 1)
	for i, v := range res.Hits[0].Ranks {
		if in[i] == hit.Unresolved {
			assert.Equal(t, hit.Unresolved, v)
		}
	}
}

package lca_test

import (
	"testing"

	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/hitfilter"
	"github.com/gnames/gnlca/pkg/lca"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

var schema = hit.NewSchema([]string{"family", "genus", "species"})

func TestReduce(t *testing.T) {
	tests := []struct {
		msg  string
		hits []hit.Hit
		want lca.Assignment
	}{
		{
			msg: "species disagreement",
			hits: []hit.Hit{
				{QueryID: "Q1", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
				{QueryID: "Q1", Ranks: []string{"Bazidae", "Foo", "Foo baz"}},
			},
			want: lca.Assignment{
				QueryID: "Q1",
				Ranks:   []string{"Bazidae", "Foo", ""},
				LCA:     "Foo", LCARank: "genus", HitsNum: 2,
			},
		},
		{
			msg: "unresolved value breaks agreement",
			hits: []hit.Hit{
				{QueryID: "Q2", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
				{QueryID: "Q2", Ranks: []string{"Bazidae", "", ""}},
			},
			want: lca.Assignment{
				QueryID: "Q2",
				Ranks:   []string{"Bazidae", "", ""},
				LCA:     "Bazidae", LCARank: "family", HitsNum: 2,
			},
		},
		{
			msg: "ranks are independent",
			hits: []hit.Hit{
				{QueryID: "Q3", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
				{QueryID: "Q3", Ranks: []string{"Quxidae", "Foo", "Foo bar"}},
			},
			want: lca.Assignment{
				QueryID: "Q3",
				Ranks:   []string{"", "Foo", "Foo bar"},
				LCA:     "Foo bar", LCARank: "species", HitsNum: 2,
			},
		},
		{
			msg: "unresolved value of the first hit",
			hits: []hit.Hit{
				{QueryID: "Q5", Ranks: []string{"Bazidae", "", ""}},
				{QueryID: "Q5", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
				{QueryID: "Q5", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
			},
			want: lca.Assignment{
				QueryID: "Q5",
				Ranks:   []string{"Bazidae", "", ""},
				LCA:     "Bazidae", LCARank: "family", HitsNum: 3,
			},
		},
		{
			msg: "short rank vector",
			hits: []hit.Hit{
				{QueryID: "Q6", Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
				{QueryID: "Q6", Ranks: []string{"Bazidae", "Foo"}},
			},
			want: lca.Assignment{
				QueryID: "Q6",
				Ranks:   []string{"Bazidae", "Foo", ""},
				LCA:     "Foo", LCARank: "genus", HitsNum: 2,
			},
		},
		{
			msg:  "empty group",
			hits: nil,
			want: lca.Assignment{QueryID: "Q4", Ranks: []string{"", "", ""}},
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			g := hit.Group{QueryID: v.want.QueryID, Hits: v.hits}
			res := lca.Reduce(g, schema, false)
			if diff := cmp.Diff(v.want, res); diff != "" {
				t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduceIdempotent(t *testing.T) {
	g := hit.Group{QueryID: "Q1", Hits: []hit.Hit{
		{QueryID: "Q1", PIdent: 97, Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
		{QueryID: "Q1", PIdent: 99, Ranks: []string{"Bazidae", "Foo", "Foo baz"}},
	}}
	first := lca.Reduce(g, schema, true)
	second := lca.Reduce(hit.Group{QueryID: "Q1", Hits: []hit.Hit{first.AsHit()}},
		schema, true)

	assert.Equal(t, first.Ranks, second.Ranks)
	assert.Equal(t, first.PIdent, second.PIdent)
	assert.Equal(t, first.LCA, second.LCA)
}

func TestReduceUniformAgreement(t *testing.T) {
	vec := []string{"Bazidae", "Foo", "Foo bar"}
	g := hit.Group{QueryID: "Q1"}
	for range 5 {
		g.Hits = append(g.Hits, hit.Hit{QueryID: "Q1", Ranks: append([]string(nil), vec...)})
	}
	res := lca.Reduce(g, schema, false)
	assert.Equal(t, vec, res.Ranks)
}

func TestRetainIdentity(t *testing.T) {
	g := hit.Group{QueryID: "Q1", Hits: []hit.Hit{
		{QueryID: "Q1", PIdent: 96, Ranks: []string{"Bazidae", "Foo", ""}},
		{QueryID: "Q1", PIdent: 99, Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
		{QueryID: "Q1", PIdent: 97, Ranks: []string{"Bazidae", "Foo", ""}},
	}}
	res := lca.Reduce(g, schema, true)
	assert.Equal(t, []string{"Bazidae", "Foo", ""}, res.Ranks)
	assert.True(t, res.HasPIdent)
	assert.Equal(t, 99.0, res.PIdent)

	g.Hits = append(g.Hits, hit.Hit{QueryID: "Q1", PIdent: 100,
		Ranks: []string{"Bazidae", "Foo", "Foo baz"}})
	res = lca.Reduce(g, schema, true)
	assert.Equal(t, []string{"Bazidae", "Foo", ""}, res.Ranks)
	assert.Equal(t, 100.0, res.PIdent)

	res = lca.Reduce(g, schema, false)
	assert.False(t, res.HasPIdent)
	assert.Zero(t, res.PIdent)

	res = lca.Reduce(hit.Group{QueryID: "Q2"}, schema, true)
	assert.False(t, res.HasPIdent)
}

// A high identity hit cannot assert a rank that identity truncation
// removed from a co-surviving hit.
func TestStrictTruncatedRankUnresolved(t *testing.T) {
	g := hit.Group{QueryID: "Q1", Hits: []hit.Hit{
		{QueryID: "Q1", PIdent: 99, Length: 400, BitScore: 200,
			Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
		{QueryID: "Q1", PIdent: 97, Length: 400, BitScore: 199,
			Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
	}}
	p := hitfilter.DefaultParams()
	p.Mode = hitfilter.Strict
	f := hitfilter.New(schema, p)
	res := lca.Reduce(f.Apply(g), schema, true)
	assert.Equal(t, []string{"Bazidae", "Foo", ""}, res.Ranks)
	assert.Equal(t, "genus", res.LCARank)
	assert.Equal(t, 2, res.HitsNum)
	assert.Equal(t, 99.0, res.PIdent)
}

func TestEndToEndSoft(t *testing.T) {
	g := hit.Group{QueryID: "Q1", Hits: []hit.Hit{
		{QueryID: "Q1", BitScore: 200, Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
		{QueryID: "Q1", BitScore: 198, Ranks: []string{"Bazidae", "Foo", "Foo baz"}},
	}}
	f := hitfilter.New(schema, hitfilter.DefaultParams())
	res := lca.Reduce(f.Apply(g), schema, false)
	assert.Equal(t, []string{"Bazidae", "Foo", "Foo bar"}, res.Ranks)
	assert.Equal(t, 1, res.HitsNum)
}

func TestEndToEndStrictWideWindow(t *testing.T) {
	g := hit.Group{QueryID: "Q1", Hits: []hit.Hit{
		{QueryID: "Q1", PIdent: 99, Length: 400, BitScore: 200,
			Ranks: []string{"Bazidae", "Foo", "Foo bar"}},
		{QueryID: "Q1", PIdent: 99, Length: 400, BitScore: 198,
			Ranks: []string{"Bazidae", "Foo", "Foo baz"}},
	}}
	p := hitfilter.DefaultParams()
	p.Mode = hitfilter.Strict
	p.BitscoreFraction = 0.05
	f := hitfilter.New(schema, p)
	res := lca.Reduce(f.Apply(g), schema, false)
	assert.Equal(t, []string{"Bazidae", "Foo", ""}, res.Ranks)
	assert.Equal(t, "genus", res.LCARank)
}

package nameidx_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier(t *testing.T) {
	tests := []struct {
		input string
		res   nameidx.Tier
	}{
		{"primary", nameidx.Primary},
		{"Scientific", nameidx.Primary},
		{"secondary", nameidx.Secondary},
		{" synonym ", nameidx.Secondary},
		{"other", nameidx.NoTier},
	}
	for _, v := range tests {
		assert.Equal(t, v.res, nameidx.NewTier(v.input), v.input)
	}
	assert.Equal(t, "primary", nameidx.Primary.String())
	assert.Equal(t, "secondary", nameidx.Secondary.String())
	assert.Equal(t, "", nameidx.NoTier.String())
}

func TestBuildAndLookup(t *testing.T) {
	assert := assert.New(t)
	b := nameidx.NewBuilder()
	assert.True(b.Add(nameidx.Primary, "Homo sapiens", "9606"))
	assert.True(b.Add(nameidx.Secondary, "human", "9606"))
	assert.True(b.Add(nameidx.Primary, "Bacteria", "2"))
	idx := b.Build()

	res, ok := idx.Lookup("  HOMO  sapiens")
	assert.True(ok)
	assert.Equal("9606", res.ID)
	assert.Equal(nameidx.Primary, res.Tier)
	assert.Equal("Homo sapiens", res.Name)

	res, ok = idx.Lookup("Human")
	assert.True(ok)
	assert.Equal(nameidx.Secondary, res.Tier)

	_, ok = idx.LookupTier(nameidx.Primary, "human")
	assert.False(ok)

	_, ok = idx.Lookup("Archaea")
	assert.False(ok)
}

func TestLastWriteWins(t *testing.T) {
	b := nameidx.NewBuilder()
	b.Add(nameidx.Primary, "Morus", "3497")
	b.Add(nameidx.Primary, "morus", "1000")
	b.Add(nameidx.Secondary, "mulberry", "1")
	b.Add(nameidx.Secondary, "Mulberry", "3497")
	idx := b.Build()

	res, ok := idx.Lookup("Morus")
	require.True(t, ok)
	assert.Equal(t, "1000", res.ID)

	res, ok = idx.Lookup("mulberry")
	require.True(t, ok)
	assert.Equal(t, "3497", res.ID)
	assert.Equal(t, 2, idx.Stats().Overwritten)
}

func TestPrimaryShadowsSecondary(t *testing.T) {
	b := nameidx.NewBuilder()
	b.Add(nameidx.Secondary, "Homo sapiens", "1")
	b.Add(nameidx.Primary, "Homo sapiens", "9606")
	idx := b.Build()

	res, ok := idx.Lookup("homo sapiens")
	require.True(t, ok)
	assert.Equal(t, "9606", res.ID)

	_, ok = idx.LookupTier(nameidx.Secondary, "homo sapiens")
	assert.False(t, ok)

	st := idx.Stats()
	assert.Equal(t, 1, st.Primary)
	assert.Equal(t, 0, st.Secondary)
	assert.Equal(t, 1, st.Shadowed)
}

func TestRejected(t *testing.T) {
	b := nameidx.NewBuilder()
	assert.False(t, b.Add(nameidx.Primary, "  ", "1"))
	assert.False(t, b.Add(nameidx.Primary, "Bacteria", ""))
	assert.False(t, b.Add(nameidx.NoTier, "Bacteria", "2"))
	idx := b.Build()
	assert.Equal(t, 3, idx.Stats().Rejected)
	assert.Equal(t, 0, idx.Stats().Primary)
}

func TestNormalizerOption(t *testing.T) {
	norm := func(s string) string {
		return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), " sp."))
	}
	b := nameidx.NewBuilder(nameidx.OptNormalizer(norm))
	b.Add(nameidx.Primary, "Ficus sp.", "3493")
	idx := b.Build()

	res, ok := idx.Lookup("FICUS")
	assert.True(t, ok)
	assert.Equal(t, "3493", res.ID)
	assert.Equal(t, "ficus", idx.Normalize("Ficus sp."))
}

func TestSnapshot(t *testing.T) {
	b := nameidx.NewBuilder()
	b.Add(nameidx.Primary, "Bacteria", "2")
	b.Add(nameidx.Secondary, "Eubacteria", "2")
	idx := b.Build()

	snap := idx.Snapshot()
	restored := nameidx.FromSnapshot(snap)

	res, ok := restored.Lookup("eubacteria")
	assert.True(t, ok)
	assert.Equal(t, "2", res.ID)
	assert.Equal(t, idx.Stats(), restored.Stats())

	empty := nameidx.FromSnapshot(nameidx.Snapshot{})
	_, ok = empty.Lookup("bacteria")
	assert.False(t, ok)
}

func TestConcurrentLookup(t *testing.T) {
	b := nameidx.NewBuilder()
	b.Add(nameidx.Primary, "Bacteria", "2")
	idx := b.Build()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				res, ok := idx.Lookup("bacteria")
				assert.True(t, ok)
				assert.Equal(t, "2", res.ID)
			}
		}()
	}
	wg.Wait()
}

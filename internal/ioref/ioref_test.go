package ioref_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/internal/ioref"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/errcode"
	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnlca/pkg/parserpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuildTables(t *testing.T) {
	dir := t.TempDir()
	sci := writeFile(t, dir, "sci.tsv",
		"Bacteria\t2\n"+
			"Homo sapiens\t9606\n"+
			"broken row\n"+
			"Bacillus\t1386\n"+
			"bacillus\t55087\n"+
			"\n")
	syn := writeFile(t, dir, "syn.tsv",
		"Human\t9606\n"+
			"BACTERIA\t1\n"+
			"Firmicutes <phylum>\t1239\n")

	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptReferencePrimary([]string{sci}),
		config.OptReferenceSecondary([]string{syn}),
	})

	l := ioref.New(cfg, nil)
	idx, err := l.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Malformed())

	tests := []struct {
		msg  string
		name string
		id   string
		tier nameidx.Tier
		ok   bool
	}{
		{"primary", "homo sapiens", "9606", nameidx.Primary, true},
		{"last write wins", "Bacillus", "55087", nameidx.Primary, true},
		{"secondary", "human", "9606", nameidx.Secondary, true},
		{"shadowed secondary", "Bacteria", "2", nameidx.Primary, true},
		{"qualifier stripped", "Firmicutes", "1239", nameidx.Secondary, true},
		{"absent", "Archaea", "", nameidx.NoTier, false},
	}

	for _, v := range tests {
		res, ok := idx.Lookup(v.name)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.id, res.ID, v.msg)
		assert.Equal(t, v.tier, res.Tier, v.msg)
	}

	st := idx.Stats()
	assert.Equal(t, 3, st.Primary)
	assert.Equal(t, 2, st.Secondary)
	assert.Equal(t, 1, st.Shadowed)
	assert.Equal(t, 1, st.Overwritten)
}

func TestBuildNamesDmp(t *testing.T) {
	dir := t.TempDir()
	dmp := writeFile(t, dir, "names.dmp",
		"1\t|\tall\t|\t\t|\tsynonym\t|\n"+
			"1\t|\troot\t|\t\t|\tscientific name\t|\n"+
			"2\t|\tBacteria\t|\tBacteria <bacteria>\t|\tscientific name\t|\n"+
			"2\t|\teubacteria\t|\t\t|\tgenbank common name\t|\n"+
			"48479\t|\tenvironmental samples\t|\t\t|\tscientific name\t|\n"+
			"9606\t|\tHomo sapiens\t|\t\t|\tscientific name\t|\n"+
			"9606\t|\thuman\t|\t\t|\tgenbank common name\t|\n"+
			"bad line\n")

	cfg := config.New()
	cfg.Update([]config.Option{config.OptReferenceNamesDmp(dmp)})

	l := ioref.New(cfg, nil)
	idx, err := l.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Malformed())

	res, ok := idx.LookupTier(nameidx.Primary, "Bacteria")
	require.True(t, ok)
	assert.Equal(t, "2", res.ID)

	res, ok = idx.LookupTier(nameidx.Secondary, "Eubacteria")
	require.True(t, ok)
	assert.Equal(t, "2", res.ID)

	res, ok = idx.LookupTier(nameidx.Secondary, "human")
	require.True(t, ok)
	assert.Equal(t, "9606", res.ID)

	_, ok = idx.Lookup("environmental samples")
	assert.False(t, ok, "exception names are not indexed")

	st := idx.Stats()
	assert.Equal(t, 3, st.Primary)
	assert.Equal(t, 3, st.Secondary)
}

func createSFGA(t *testing.T, path, version string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE version (id TEXT)`,
		`CREATE TABLE name (
			col__id TEXT, col__scientific_name TEXT,
			gn__scientific_name_string TEXT)`,
		`CREATE TABLE taxon (col__id TEXT, col__name_id TEXT)`,
		`CREATE TABLE synonym (
			col__id TEXT, col__taxon_id TEXT, col__name_id TEXT)`,
		`INSERT INTO version VALUES ('` + version + `')`,
		`INSERT INTO name VALUES
			('n1', 'Homo sapiens', 'Homo sapiens Linnaeus, 1758'),
			('n2', 'Homo', 'Homo Linnaeus, 1758'),
			('n3', 'Homo sylvestris', 'Homo sylvestris Houttuyn, 1766')`,
		`INSERT INTO taxon VALUES ('t1', 'n1'), ('t2', 'n2')`,
		`INSERT INTO synonym VALUES ('s1', 't1', 'n3')`,
	}
	for _, v := range stmts {
		_, err = db.Exec(v)
		require.NoError(t, err, v)
	}
}

func TestBuildSFGA(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses SQLite file in short mode")
	}

	path := filepath.Join(t.TempDir(), "col.sqlite")
	createSFGA(t, path, "v0.4.0")

	cfg := config.New()
	cfg.Update([]config.Option{config.OptReferenceSFGA(path)})

	t.Run("bare names without parser", func(t *testing.T) {
		idx, err := ioref.New(cfg, nil).Build(context.Background())
		require.NoError(t, err)

		res, ok := idx.LookupTier(nameidx.Primary, "homo sapiens")
		require.True(t, ok)
		assert.Equal(t, "t1", res.ID)

		res, ok = idx.LookupTier(nameidx.Secondary, "Homo sylvestris")
		require.True(t, ok)
		assert.Equal(t, "t1", res.ID)
	})

	t.Run("canonical forms with parser", func(t *testing.T) {
		pool := parserpool.NewPool(2)
		defer pool.Close()

		idx, err := ioref.New(cfg, pool).Build(context.Background())
		require.NoError(t, err)

		res, ok := idx.LookupTier(nameidx.Primary, "Homo")
		require.True(t, ok)
		assert.Equal(t, "t2", res.ID)
		assert.Equal(t, "Homo", res.Name)
	})
}

func TestBuildSFGAVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses SQLite file in short mode")
	}

	tests := []struct {
		msg     string
		version string
		code    gn.ErrorCode
	}{
		{"too old", "v0.2.1", errcode.RefSFGAVersionTooOldError},
		{"not a version", "latest", errcode.RefSFGAVersionError},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "old.sqlite")
			createSFGA(t, path, v.version)

			cfg := config.New()
			cfg.Update([]config.Option{config.OptReferenceSFGA(path)})
			_, err := ioref.New(cfg, nil).Build(context.Background())
			require.Error(t, err)

			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, v.code, gnErr.Code)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg := config.New()
		cfg.Update([]config.Option{
			config.OptReferencePrimary([]string{filepath.Join(dir, "none.tsv")}),
		})
		_, err := ioref.New(cfg, nil).Build(context.Background())
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.RefOpenError, gnErr.Code)
	})

	t.Run("empty index", func(t *testing.T) {
		empty := writeFile(t, dir, "empty.tsv", "only one column\n")
		cfg := config.New()
		cfg.Update([]config.Option{config.OptReferencePrimary([]string{empty})})
		_, err := ioref.New(cfg, nil).Build(context.Background())
		require.Error(t, err)
		gnErr, ok := err.(*gn.Error)
		require.True(t, ok)
		assert.Equal(t, errcode.RefEmptyIndexError, gnErr.Code)
	})
}

func TestNewNormalizer(t *testing.T) {
	pool := parserpool.NewPool(1)
	defer pool.Close()

	tests := []struct {
		msg       string
		strip     bool
		canonical bool
		input     string
		res       string
	}{
		{"plain", false, false, "  Homo   Sapiens ", "homo sapiens"},
		{"qualifier kept", false, false, "Bacteria <bacteria>", "bacteria <bacteria>"},
		{"qualifier stripped", true, false, "Bacteria <bacteria>", "bacteria"},
		{"canonical", false, true, "Homo sapiens Linnaeus, 1758", "homo sapiens"},
		{"both", true, true, "Morus <angiosperm>", "morus"},
	}

	for _, v := range tests {
		fn := ioref.NewNormalizer(v.strip, v.canonical, pool)
		assert.Equal(t, v.res, fn(v.input), v.msg)
	}
}

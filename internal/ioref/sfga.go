package ioref

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnlib"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGo)
)

// loadSFGA reads names of an SFGA SQLite archive. Names of taxa go to the
// primary tier, names of synonyms to the secondary tier with the id of
// their accepted taxon.
func (l *Loader) loadSFGA(
	ctx context.Context,
	b *nameidx.Builder,
	path string,
) error {
	if _, err := os.Stat(path); err != nil {
		return OpenError(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return OpenError(path, err)
	}
	defer db.Close()

	if err = checkSFGAVersion(ctx, db, path); err != nil {
		return err
	}

	q := `
		SELECT n.gn__scientific_name_string, n.col__scientific_name, t.col__id
		FROM taxon t
		JOIN name n ON n.col__id = t.col__name_id
	`
	primary, err := l.loadSFGANames(ctx, db, b, nameidx.Primary, path, q)
	if err != nil {
		return err
	}

	var hasSynonyms bool
	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) > 0 FROM sqlite_master
		WHERE type='table' AND name='synonym'
	`).Scan(&hasSynonyms)
	if err != nil {
		return SFGAError(path, err)
	}

	var secondary int
	if hasSynonyms {
		q = `
			SELECT n.gn__scientific_name_string, n.col__scientific_name,
				s.col__taxon_id
			FROM synonym s
			JOIN name n ON n.col__id = s.col__name_id
		`
		secondary, err = l.loadSFGANames(ctx, db, b, nameidx.Secondary, path, q)
		if err != nil {
			return err
		}
	} else {
		slog.Info("No synonym table in SFGA, skipping synonyms", "file", path)
	}

	slog.Info("SFGA names loaded",
		"file", path, "taxa", primary, "synonyms", secondary)
	return nil
}

func (l *Loader) loadSFGANames(
	ctx context.Context,
	db *sql.DB,
	b *nameidx.Builder,
	tier nameidx.Tier,
	path, query string,
) (int, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, SFGAError(path, err)
	}
	defer rows.Close()

	var count int
	for rows.Next() {
		var full, bare sql.NullString
		var id string
		if err = rows.Scan(&full, &bare, &id); err != nil {
			return count, SFGAError(path, err)
		}

		name := l.sfgaName(full.String, bare.String)
		if name == "" {
			continue
		}
		if b.Add(tier, name, id) {
			count++
		}
	}
	if err = rows.Err(); err != nil {
		return count, SFGAError(path, err)
	}
	return count, nil
}

// sfgaName prefers the canonical form of the full name string, names with
// authorships would never meet bare names of taxonomy paths otherwise.
func (l *Loader) sfgaName(full, bare string) string {
	if full != "" && l.pool != nil {
		return l.pool.Canonical(full)
	}
	if bare != "" {
		return bare
	}
	return full
}

func checkSFGAVersion(ctx context.Context, db *sql.DB, path string) error {
	var version string
	row := db.QueryRowContext(ctx, "SELECT ID FROM VERSION LIMIT 1")
	if err := row.Scan(&version); err != nil {
		return SFGAVersionError(path, "", err)
	}
	if !gnlib.IsVersion(version) {
		return SFGAVersionError(path, version, nil)
	}
	if gnlib.CmpVersion(version, config.MinVersionSFGA) < 0 {
		return SFGAVersionTooOldError(path, version)
	}
	return nil
}

package ioref

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gnlca/pkg/nameidx"
)

// namesDmpSep separates fields of NCBI taxdump files.
const namesDmpSep = "\t|\t"

// scientificClass is the name class of NCBI scientific names.
const scientificClass = "scientific name"

// dmpRecord is one row of names.dmp.
type dmpRecord struct {
	taxID string
	name  string
	class string
}

// parseDmpLine splits "tax_id | name_txt | unique name | name class |".
func parseDmpLine(s string) (dmpRecord, bool) {
	s = strings.TrimRight(s, "\r")
	s = strings.TrimSuffix(s, "\t|")
	fields := strings.Split(s, namesDmpSep)
	if len(fields) != 4 {
		return dmpRecord{}, false
	}
	res := dmpRecord{
		taxID: strings.TrimSpace(fields[0]),
		name:  strings.TrimSpace(fields[1]),
		class: strings.TrimSpace(fields[3]),
	}
	return res, true
}

// loadNamesDmp reads NCBI names.dmp. Scientific names go to the primary
// tier, all other name classes to the secondary one. Names with exception
// words are not indexed.
func (l *Loader) loadNamesDmp(
	ctx context.Context,
	b *nameidx.Builder,
	path string,
) error {
	f, err := os.Open(path)
	if err != nil {
		return OpenError(path, err)
	}
	defer f.Close()

	var line, primary, secondary, excluded int
	sc := newScanner(f)
	for sc.Scan() {
		line++
		if line%ctxCheckRows == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}

		txt := sc.Text()
		if strings.TrimSpace(txt) == "" {
			continue
		}

		rec, ok := parseDmpLine(txt)
		if !ok {
			l.malformed++
			slog.Warn("Skipping malformed names.dmp row",
				"file", path, "line", line)
			continue
		}

		if l.exc.Match(rec.name) {
			excluded++
			continue
		}

		tier := nameidx.Secondary
		if rec.class == scientificClass {
			tier = nameidx.Primary
		}
		if !b.Add(tier, rec.name, rec.taxID) {
			continue
		}
		if tier == nameidx.Primary {
			primary++
		} else {
			secondary++
		}
	}
	if err = sc.Err(); err != nil {
		return ReadError(path, err)
	}

	slog.Info("NCBI names loaded",
		"file", path,
		"scientific", primary,
		"other", secondary,
		"excluded", excluded,
	)
	return nil
}

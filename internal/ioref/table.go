package ioref

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gnlca/pkg/nameidx"
)

// loadTable reads a headerless two-column table: name TAB id.
func (l *Loader) loadTable(
	ctx context.Context,
	b *nameidx.Builder,
	tier nameidx.Tier,
	path string,
) error {
	f, err := os.Open(path)
	if err != nil {
		return OpenError(path, err)
	}
	defer f.Close()

	var line, count int
	sc := newScanner(f)
	for sc.Scan() {
		line++
		if line%ctxCheckRows == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}

		txt := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(txt) == "" {
			continue
		}

		fields := strings.Split(txt, "\t")
		if len(fields) != 2 {
			l.malformed++
			slog.Warn("Skipping reference row with wrong number of columns",
				"file", path, "line", line, "columns", len(fields))
			continue
		}
		if b.Add(tier, fields[0], fields[1]) {
			count++
		}
	}
	if err = sc.Err(); err != nil {
		return ReadError(path, err)
	}

	slog.Info("Reference table loaded",
		"file", path, "tier", tier.String(), "names", count)
	return nil
}

func newScanner(f *os.File) *bufio.Scanner {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return sc
}

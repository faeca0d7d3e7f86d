// Package iopaths reads taxonomy path tables: headerless two-column files
// with a record key (for example a SILVA accession) and a delimited
// taxonomy path.
package iopaths

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// Record is one row of a path table.
type Record struct {
	// Key identifies the record.
	Key string
	// Path is the raw taxonomy path.
	Path string
}

// Stats summarizes one reading pass.
type Stats struct {
	// Records is the number of distinct keys.
	Records int
	// Duplicates counts rows that replaced the path of an earlier key.
	Duplicates int
	// Malformed counts rows with a wrong number of columns.
	Malformed int
}

// Read reads a path table from a file, "-" means STDIN.
func Read(path string) ([]Record, Stats, error) {
	if path == "-" {
		return ReadFrom(os.Stdin, "STDIN")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, OpenError(path, err)
	}
	defer f.Close()
	return ReadFrom(f, path)
}

// ReadFrom reads records from rd. A repeated key keeps its first position
// and takes the last path.
func ReadFrom(rd io.Reader, name string) ([]Record, Stats, error) {
	var st Stats
	var res []Record
	pos := make(map[string]int)

	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var line int
	for sc.Scan() {
		line++
		txt := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(txt) == "" {
			continue
		}

		fields := strings.Split(txt, "\t")
		if len(fields) != 2 || strings.TrimSpace(fields[0]) == "" {
			st.Malformed++
			slog.Warn("Skipping path row with wrong number of columns",
				"file", name, "line", line, "columns", len(fields))
			continue
		}

		rec := Record{
			Key:  strings.TrimSpace(fields[0]),
			Path: strings.TrimSpace(fields[1]),
		}
		if i, ok := pos[rec.Key]; ok {
			st.Duplicates++
			res[i] = rec
			continue
		}
		pos[rec.Key] = len(res)
		res = append(res, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, st, ReadError(name, err)
	}

	st.Records = len(res)
	slog.Info("Taxonomy paths loaded",
		"file", name,
		"records", st.Records,
		"duplicates", st.Duplicates,
		"malformed", st.Malformed,
	)
	return res, st, nil
}

// OpenError is returned when a path table cannot be opened.
func OpenError(path string, err error) error {
	msg := "Cannot open taxonomy paths file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.InputOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open %s: %w", path, err),
	}
}

// ReadError is returned when reading of a path table breaks.
func ReadError(path string, err error) error {
	msg := "Cannot read taxonomy paths file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

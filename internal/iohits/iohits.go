// Package iohits reads alignment hit tables (BLAST output annotated with
// taxonomy) into hit.Hit records.
//
// A table is CSV or TSV with a header. Required columns are qseqid, pident,
// length and bitscore, followed by rank columns of the configured schema.
// Other columns are ignored.
package iohits

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/ent/hit"
)

// unknownMark is written by taxonomy annotators for ids that could not be
// translated to names.
const unknownMark = "Unknown"

// aliases maps accepted header names to required fields.
var aliases = map[string]string{
	"qseqid":           "qseqid",
	"query_id":         "qseqid",
	"sequence_name":    "qseqid",
	"pident":           "pident",
	"percent_identity": "pident",
	"length":           "length",
	"alignment_length": "length",
	"bitscore":         "bitscore",
}

var required = []string{"qseqid", "pident", "length", "bitscore"}

// Stats summarizes one reading pass.
type Stats struct {
	// Rows is the number of data rows in the table.
	Rows int
	// Hits is the number of hits returned.
	Hits int
	// Malformed is the number of skipped malformed rows.
	Malformed int
	// Unknown is the number of hits dropped for "Unknown" ranks.
	Unknown int
}

// Reader converts hit tables to hits.
type Reader struct {
	schema      hit.Schema
	abort       bool
	dropUnknown bool
}

// New creates a Reader from input settings.
func New(cfg *config.Config) *Reader {
	return &Reader{
		schema:      cfg.Schema(),
		abort:       cfg.Input.RowErrors == "abort",
		dropUnknown: cfg.Input.DropUnknown,
	}
}

// Read reads a hit table from a file, "-" means STDIN.
func (r *Reader) Read(path string) ([]hit.Hit, Stats, error) {
	if path == "-" {
		return r.ReadFrom(os.Stdin, "STDIN")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, OpenError(path, err)
	}
	defer f.Close()
	return r.ReadFrom(f, path)
}

// ReadFrom reads a hit table from rd, name is used in messages.
func (r *Reader) ReadFrom(rd io.Reader, name string) ([]hit.Hit, Stats, error) {
	var st Stats
	br := bufio.NewReader(rd)
	sep, err := sniffSeparator(br)
	if err != nil {
		return nil, st, HeaderError(name, err)
	}

	cr := csv.NewReader(br)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, st, HeaderError(name, err)
	}
	cols, err := r.columns(header, name)
	if err != nil {
		return nil, st, err
	}

	var res []hit.Hit
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			st.Rows++
			if r.abort {
				return nil, st, RowError(name, pe.Line, pe.Err)
			}
			st.Malformed++
			slog.Warn("Skipping malformed hit row",
				"file", name, "line", pe.Line, "error", pe.Err)
			continue
		}
		if err != nil {
			return nil, st, ReadError(name, err)
		}
		line, _ := cr.FieldPos(0)
		st.Rows++

		h, unknown, err := r.parseRow(row, cols)
		if err != nil {
			if r.abort {
				return nil, st, RowError(name, line, err)
			}
			st.Malformed++
			slog.Warn("Skipping malformed hit row",
				"file", name, "line", line, "error", err)
			continue
		}
		if unknown && r.dropUnknown {
			st.Unknown++
			continue
		}
		res = append(res, h)
	}
	st.Hits = len(res)

	slog.Info("Hits loaded",
		"file", name,
		"rows", st.Rows,
		"hits", st.Hits,
		"malformed", st.Malformed,
		"unknown", st.Unknown,
	)
	return res, st, nil
}

// colIndex keeps positions of fields in a row.
type colIndex struct {
	qseqid, pident, length, bitscore int
	ranks                            []int
}

func (r *Reader) columns(header []string, name string) (colIndex, error) {
	pos := make(map[string]int)
	for i, v := range header {
		v = strings.ToLower(strings.TrimSpace(v))
		if i == 0 {
			v = strings.TrimPrefix(v, "\ufeff")
		}
		if f, ok := aliases[v]; ok {
			v = f
		}
		if _, ok := pos[v]; !ok {
			pos[v] = i
		}
	}

	var missing []string
	get := func(col string) int {
		i, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			return -1
		}
		return i
	}

	res := colIndex{
		qseqid:   get(required[0]),
		pident:   get(required[1]),
		length:   get(required[2]),
		bitscore: get(required[3]),
	}
	for _, v := range r.schema.Ranks() {
		res.ranks = append(res.ranks, get(v))
	}

	if len(missing) > 0 {
		return res, MissingColumnError(name, missing)
	}
	return res, nil
}

func field(row []string, i int) (string, error) {
	if i >= len(row) {
		return "", fmt.Errorf("row has %d fields, field %d is missing", len(row), i+1)
	}
	return strings.TrimSpace(row[i]), nil
}

func (r *Reader) parseRow(row []string, cols colIndex) (hit.Hit, bool, error) {
	var res hit.Hit
	var unknown bool

	id, err := field(row, cols.qseqid)
	if err != nil {
		return res, false, err
	}
	if id == "" {
		return res, false, errors.New("empty qseqid")
	}
	res.QueryID = id

	s, err := field(row, cols.pident)
	if err != nil {
		return res, false, err
	}
	if res.PIdent, err = strconv.ParseFloat(s, 64); err != nil {
		return res, false, fmt.Errorf("pident: %w", err)
	}
	if res.PIdent < 0 || res.PIdent > 100 {
		return res, false, fmt.Errorf("pident %v is outside of 0-100", res.PIdent)
	}

	s, err = field(row, cols.length)
	if err != nil {
		return res, false, err
	}
	if res.Length, err = parseLength(s); err != nil {
		return res, false, fmt.Errorf("length: %w", err)
	}

	s, err = field(row, cols.bitscore)
	if err != nil {
		return res, false, err
	}
	if res.BitScore, err = strconv.ParseFloat(s, 64); err != nil {
		return res, false, fmt.Errorf("bitscore: %w", err)
	}

	res.Ranks = make([]string, len(cols.ranks))
	for i, c := range cols.ranks {
		v, err := field(row, c)
		if err != nil {
			return res, false, err
		}
		if strings.Contains(v, unknownMark) {
			unknown = true
		}
		res.Ranks[i] = rankValue(v)
	}
	return res, unknown, nil
}

// parseLength accepts integers and whole floats ("150.0").
func parseLength(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("negative length %d", i)
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(int(f)) {
		return 0, fmt.Errorf("length %v is not a non-negative integer", f)
	}
	return int(f), nil
}

// rankValue converts empty and NA cells to hit.Unresolved.
func rankValue(s string) string {
	switch s {
	case "", "NA", "N/A", "nan", "NaN":
		return hit.Unresolved
	default:
		return s
	}
}

// sniffSeparator picks TAB when the header line has tabs and no commas,
// comma otherwise.
func sniffSeparator(br *bufio.Reader) (rune, error) {
	peek, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, err
	}
	if len(peek) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	first := string(peek)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	if strings.Contains(first, "\t") && !strings.Contains(first, ",") {
		return '\t', nil
	}
	return ',', nil
}

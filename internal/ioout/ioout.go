// Package ioout writes resolution and consensus records as CSV, TSV or
// JSON lines.
package ioout

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/ent/hit"
	"github.com/gnames/gnlca/pkg/lca"
)

// Writer renders records in the configured format. It is not safe for
// concurrent use.
type Writer struct {
	bw         *bufio.Writer
	file       *os.File
	name       string
	format     string
	unresolved string
	schema     hit.Schema
	identity   bool
	enc        gnfmt.GNjson
	header     bool
}

// New creates a Writer for cfg.Output.Path, or STDOUT when the path is
// empty.
func New(cfg *config.Config) (*Writer, error) {
	path := cfg.Output.Path
	if path == "" || path == "-" {
		return NewTo(os.Stdout, cfg), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, WriteError(path, err)
	}
	res := NewTo(f, cfg)
	res.file = f
	res.name = path
	return res, nil
}

// NewTo creates a Writer that writes to w.
func NewTo(w io.Writer, cfg *config.Config) *Writer {
	return &Writer{
		bw:         bufio.NewWriter(w),
		name:       "STDOUT",
		format:     cfg.Output.Format,
		unresolved: cfg.Output.Unresolved,
		schema:     cfg.Schema(),
		identity:   cfg.Filter.RetainIdentity,
	}
}

func (w *Writer) sep() rune {
	if w.format == "tsv" {
		return '\t'
	}
	return ','
}

func (w *Writer) row(fields []string) error {
	line := gnfmt.ToCSV(fields, w.sep())
	line = strings.TrimRight(line, "\r\n")
	if _, err := w.bw.WriteString(line + "\n"); err != nil {
		return WriteError(w.name, err)
	}
	return nil
}

func (w *Writer) jsonLine(obj any) error {
	data, err := w.enc.Encode(obj)
	if err != nil {
		return WriteError(w.name, err)
	}
	data = append(data, '\n')
	if _, err = w.bw.Write(data); err != nil {
		return WriteError(w.name, err)
	}
	return nil
}

// ResolutionHeader returns column names of resolution rows.
func ResolutionHeader() []string {
	return []string{"key", "id", "matched_name", "tier", "name_uuid"}
}

// WriteResolutions writes resolution records. CSV and TSV output gets a
// header before the first batch.
func (w *Writer) WriteResolutions(rr []Resolution) error {
	if w.format == "json" {
		for _, v := range rr {
			if err := w.jsonLine(v); err != nil {
				return err
			}
		}
		return nil
	}

	if !w.header {
		w.header = true
		if err := w.row(ResolutionHeader()); err != nil {
			return err
		}
	}
	for _, v := range rr {
		fields := []string{v.Key, v.ID, v.MatchedName, v.Tier, v.NameUUID}
		if err := w.row(fields); err != nil {
			return err
		}
	}
	return nil
}

// AssignmentHeader returns column names of consensus rows.
func (w *Writer) AssignmentHeader() []string {
	res := []string{"sequence_name"}
	res = append(res, w.schema.Ranks()...)
	res = append(res, "lca", "lca_rank", "hits_num")
	if w.identity {
		res = append(res, "percentage_similarity")
	}
	return res
}

// assignmentJSON is the JSON form of lca.Assignment with named ranks.
// Unresolved ranks are omitted.
type assignmentJSON struct {
	SequenceName         string            `json:"sequenceName"`
	Ranks                map[string]string `json:"ranks"`
	LCA                  string            `json:"lca,omitempty"`
	LCARank              string            `json:"lcaRank,omitempty"`
	HitsNum              int               `json:"hitsNum"`
	PercentageSimilarity *float64          `json:"percentageSimilarity,omitempty"`
}

// WriteAssignments writes consensus records.
func (w *Writer) WriteAssignments(aa []lca.Assignment) error {
	if w.format == "json" {
		for _, v := range aa {
			if err := w.jsonLine(w.toJSON(v)); err != nil {
				return err
			}
		}
		return nil
	}

	if !w.header {
		w.header = true
		if err := w.row(w.AssignmentHeader()); err != nil {
			return err
		}
	}
	for _, v := range aa {
		if err := w.row(w.assignmentFields(v)); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) render(s string) string {
	if s == hit.Unresolved {
		return w.unresolved
	}
	return s
}

func (w *Writer) assignmentFields(a lca.Assignment) []string {
	res := make([]string, 0, w.schema.Len()+5)
	res = append(res, a.QueryID)
	for i := range w.schema.Len() {
		var v string
		if i < len(a.Ranks) {
			v = a.Ranks[i]
		}
		res = append(res, w.render(v))
	}
	res = append(res,
		w.render(a.LCA),
		w.render(a.LCARank),
		strconv.Itoa(a.HitsNum),
	)
	if w.identity {
		s := w.unresolved
		if a.HasPIdent {
			s = strconv.FormatFloat(a.PIdent, 'f', -1, 64)
		}
		res = append(res, s)
	}
	return res
}

func (w *Writer) toJSON(a lca.Assignment) assignmentJSON {
	res := assignmentJSON{
		SequenceName: a.QueryID,
		Ranks:        make(map[string]string),
		LCA:          a.LCA,
		LCARank:      a.LCARank,
		HitsNum:      a.HitsNum,
	}
	for i, v := range a.Ranks {
		if v == hit.Unresolved || i >= w.schema.Len() {
			continue
		}
		res.Ranks[w.schema.Rank(i)] = v
	}
	if w.identity && a.HasPIdent {
		p := a.PIdent
		res.PercentageSimilarity = &p
	}
	return res
}

// Close flushes buffered output and closes the file.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return WriteError(w.name, err)
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return WriteError(w.name, err)
		}
	}
	return nil
}

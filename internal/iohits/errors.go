package iohits

import (
	"fmt"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// OpenError is returned when a hit table cannot be opened.
func OpenError(path string, err error) error {
	msg := "Cannot open hits file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.InputOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open %s: %w", path, err),
	}
}

// HeaderError is returned when the header of a hit table is unreadable.
func HeaderError(path string, err error) error {
	msg := "Cannot read header of <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.InputHeaderError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read header of %s: %w", path, err),
	}
}

// MissingColumnError is returned when required columns are absent.
func MissingColumnError(path string, cols []string) error {
	msg := "File <em>%s</em> misses required columns: <em>%s</em>"
	list := strings.Join(cols, ", ")
	vars := []any{path, list}
	return &gn.Error{
		Code: errcode.InputMissingColumnError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("missing columns in %s: %s", path, list),
	}
}

// RowError is returned for a malformed row when row errors abort reading.
func RowError(path string, line int, err error) error {
	msg := "Malformed row <em>%d</em> in <em>%s</em>"
	vars := []any{line, path}
	return &gn.Error{
		Code: errcode.InputRowError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("%s:%d: %w", path, line, err),
	}
}

// ReadError is returned when reading of a hit table breaks.
func ReadError(path string, err error) error {
	msg := "Cannot read hits file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read %s: %w", path, err),
	}
}

package ioout

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// WriteError is returned when output cannot be written.
func WriteError(path string, err error) error {
	msg := "Cannot write results to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.OutputWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write %s: %w", path, err),
	}
}

package iocache

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// ReadError is returned when a cached name index cannot be restored.
func ReadError(path string, err error) error {
	msg := "Cannot read cached name index <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.CacheReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read cache %s: %w", path, err),
	}
}

// WriteError is returned when a name index cannot be cached.
func WriteError(path string, err error) error {
	msg := "Cannot save name index to <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.CacheWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot write cache %s: %w", path, err),
	}
}

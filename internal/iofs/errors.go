package iofs

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// CreateDirError is returned when one of gnlca directories (config, cache,
// logs) cannot be created.
func CreateDirError(dir string, err error) error {
	msg := "Cannot create directory <em>%s</em>"
	vars := []any{dir}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CreateDirError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: mkdir %s: %w", fn.Name(), dir, err),
	}
}

// CopyFileError is returned when the default config.yaml cannot be
// written.
func CopyFileError(file string, err error) error {
	msg := "Cannot write default configuration to <em>%s</em>"
	vars := []any{file}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CopyFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: write %s: %w", fn.Name(), file, err),
	}
}

// ReadFileError is returned when config.yaml cannot be read or decoded.
func ReadFileError(path string, err error) error {
	msg := "Cannot read configuration <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadFileError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("from %s: read %s: %w", fn.Name(), path, err),
	}
}

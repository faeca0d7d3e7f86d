package ioref

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/errcode"
)

// OpenError is returned when a reference file cannot be opened.
func OpenError(path string, err error) error {
	msg := "Cannot open reference file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.RefOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open reference %s: %w", path, err),
	}
}

// ReadError is returned when reading of a reference file breaks.
func ReadError(path string, err error) error {
	msg := "Cannot read reference file <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.RefReadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read reference %s: %w", path, err),
	}
}

// SFGAError is returned when an SFGA archive cannot be queried.
func SFGAError(path string, err error) error {
	msg := "Cannot read names from SFGA archive <em>%s</em>"
	vars := []any{path}
	return &gn.Error{
		Code: errcode.RefSFGAError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("SFGA query failed for %s: %w", path, err),
	}
}

// SFGAVersionError is returned when the version of an SFGA archive is
// missing or malformed.
func SFGAVersionError(path, version string, err error) error {
	msg := "Cannot determine SFGA version of <em>%s</em>"
	vars := []any{path}
	if err == nil {
		err = fmt.Errorf("string '%s' is not a semantic version", version)
	}
	return &gn.Error{
		Code: errcode.RefSFGAVersionError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("SFGA version of %s: %w", path, err),
	}
}

// SFGAVersionTooOldError is returned for archives older than
// config.MinVersionSFGA.
func SFGAVersionTooOldError(path, version string) error {
	msg := `The SFGA <em>%s</em> of <em>%s</em> is not supported.
Supported SFGA versions are equal or greater than <em>%s</em>`
	vars := []any{version, path, config.MinVersionSFGA}
	return &gn.Error{
		Code: errcode.RefSFGAVersionTooOldError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("too old SFGA version '%s'", version),
	}
}

// EmptyIndexError is returned when reference files produced no names.
func EmptyIndexError() error {
	msg := "Reference files did not provide any names"
	return &gn.Error{
		Code: errcode.RefEmptyIndexError,
		Msg:  msg,
		Err:  fmt.Errorf("name index is empty"),
	}
}

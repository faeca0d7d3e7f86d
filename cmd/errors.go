package cmd

import (
	"context"
	"errors"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// ctxCheckRecords is how often resolution workers check for cancellation.
const ctxCheckRecords = 10_000

func resolveCancelledError(err error) error {
	if !errors.Is(err, context.Canceled) {
		return err
	}
	return &gn.Error{
		Code: errcode.ResolveCancelledError,
		Msg:  "Resolution of taxonomy paths was cancelled",
		Err:  err,
	}
}

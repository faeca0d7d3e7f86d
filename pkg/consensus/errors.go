package consensus

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// CancelledError creates an error for an interrupted consensus run.
func CancelledError(err error) error {
	msg := "Consensus calculation was cancelled"

	return &gn.Error{
		Code: errcode.ConsensusCancelledError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("consensus cancelled: %w", err),
	}
}

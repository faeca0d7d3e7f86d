package iofs

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied")

	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
		path string
	}{
		{"create dir", CreateDirError("/test/dir", cause),
			errcode.CreateDirError, "/test/dir"},
		{"copy file", CopyFileError("/test/config.yaml", cause),
			errcode.CopyFileError, "/test/config.yaml"},
		{"read file", ReadFileError("/test/config.yaml", cause),
			errcode.ReadFileError, "/test/config.yaml"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.ErrorAs(t, v.err, &gnErr)
			assert.Equal(t, v.code, gnErr.Code)
			assert.Equal(t, []any{v.path}, gnErr.Vars)
			assert.Contains(t, gnErr.Msg, "<em>%s</em>")
			assert.ErrorIs(t, gnErr.Err, cause)
			assert.Contains(t, gnErr.Err.Error(), "TestErrors")
		})
	}
}

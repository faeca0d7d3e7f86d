package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Configuration errors
	ConfigReadError
	ConfigInvalidFlagError

	// Reference table errors
	RefOpenError
	RefReadError
	RefSFGAError
	RefSFGAVersionError
	RefSFGAVersionTooOldError
	RefEmptyIndexError

	// Index cache errors
	CacheReadError
	CacheWriteError

	// Input table errors
	InputOpenError
	InputHeaderError
	InputMissingColumnError
	InputRowError

	// Output errors
	OutputWriteError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBCreateTableError
	DBCopyError

	// Processing errors
	ConsensusCancelledError
	ResolveCancelledError
)

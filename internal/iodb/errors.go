package iodb

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnlca/pkg/errcode"
)

// ConnectionError is returned when database connection fails.
func ConnectionError(host string, port int, database, user string, err error) error {
	msg := `Could not connect to PostgreSQL database <em>%s</em> at <em>%s:%d</em> as <em>%s</em>.
Check that PostgreSQL is running and the database section of config.yaml`
	vars := []any{database, host, port, user}
	return &gn.Error{
		Code: errcode.DBConnectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to connect to %s:%d/%s: %w",
			host, port, database, err),
	}
}

// NotConnectedError is returned when the sink is used without connection.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Database is not connected",
		Err:  fmt.Errorf("database pool is nil"),
	}
}

// CreateTableError is returned when result tables cannot be created.
func CreateTableError(table string, err error) error {
	msg := "Cannot create table <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBCreateTableError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("create table %s: %w", table, err),
	}
}

// CopyError is returned when rows cannot be copied to a table.
func CopyError(table string, err error) error {
	msg := "Cannot save results to table <em>%s</em>"
	vars := []any{table}
	return &gn.Error{
		Code: errcode.DBCopyError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("copy to %s: %w", table, err),
	}
}

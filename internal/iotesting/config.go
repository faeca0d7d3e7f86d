// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"strconv"

	"github.com/gnames/gnlca/pkg/config"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally write to production databases.
	TestDatabaseName = "gnlca_test"
)

// GetTestConfig returns a configuration suitable for integration tests.
// Database settings can be changed with GNLCA_DATABASE_HOST,
// GNLCA_DATABASE_PORT, GNLCA_DATABASE_USER and GNLCA_DATABASE_PASSWORD.
// The database name is always TestDatabaseName.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	var opts []config.Option
	if s := os.Getenv("GNLCA_DATABASE_HOST"); s != "" {
		opts = append(opts, config.OptDatabaseHost(s))
	}
	if s := os.Getenv("GNLCA_DATABASE_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if s := os.Getenv("GNLCA_DATABASE_USER"); s != "" {
		opts = append(opts, config.OptDatabaseUser(s))
	}
	if s := os.Getenv("GNLCA_DATABASE_PASSWORD"); s != "" {
		opts = append(opts, config.OptDatabasePassword(s))
	}
	opts = append(opts, config.OptDatabaseDatabase(TestDatabaseName))
	cfg := config.New()
	cfg.Update(opts)
	return cfg
}

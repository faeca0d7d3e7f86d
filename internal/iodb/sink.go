// Package iodb saves resolution and consensus results to PostgreSQL using
// pgxpool. Every run gets its own run_id, so results of several runs can
// live in the same tables.
package iodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gnames/gnlca/internal/ioout"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/lca"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// ResolutionsTable keeps resolved taxonomy paths.
	ResolutionsTable = "resolutions"
	// AssignmentsTable keeps consensus assignments.
	AssignmentsTable = "consensus_assignments"
)

var ddl = map[string]string{
	ResolutionsTable: `
		CREATE TABLE IF NOT EXISTS resolutions (
			run_id UUID NOT NULL,
			key TEXT NOT NULL,
			taxon_id TEXT NOT NULL,
			found BOOLEAN NOT NULL,
			matched_name TEXT,
			tier TEXT,
			name_uuid UUID
		)`,
	AssignmentsTable: `
		CREATE TABLE IF NOT EXISTS consensus_assignments (
			run_id UUID NOT NULL,
			sequence_name TEXT NOT NULL,
			rank_names TEXT[] NOT NULL,
			ranks TEXT[] NOT NULL,
			lca TEXT,
			lca_rank TEXT,
			hits_num INTEGER NOT NULL,
			percentage_similarity DOUBLE PRECISION
		)`,
}

// Sink writes results with pgx CopyFrom.
type Sink struct {
	pool      *pgxpool.Pool
	batchSize int
	runID     uuid.UUID
}

// DSN builds a connection string out of database settings.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)
}

// Connect creates a connection pool and verifies it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Sink, error) {
	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 50_000
	}

	res := &Sink{pool: pool, batchSize: batch, runID: uuid.New()}
	slog.Info("Connected to PostgreSQL",
		"host", cfg.Host, "database", cfg.Database, "run_id", res.runID)
	return res, nil
}

// RunID returns the identifier of rows written by this sink.
func (s *Sink) RunID() uuid.UUID {
	return s.runID
}

// Close releases all database connections.
func (s *Sink) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Sink) ensureTable(ctx context.Context, table string) error {
	if s.pool == nil {
		return NotConnectedError()
	}
	if _, err := s.pool.Exec(ctx, ddl[table]); err != nil {
		return CreateTableError(table, err)
	}
	return nil
}

func (s *Sink) copyRows(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
) (int, error) {
	var total int
	for i := 0; i < len(rows); i += s.batchSize {
		end := min(i+s.batchSize, len(rows))
		n, err := s.pool.CopyFrom(
			ctx,
			pgx.Identifier{table},
			columns,
			pgx.CopyFromRows(rows[i:end]),
		)
		if err != nil {
			return total, CopyError(table, err)
		}
		total += int(n)
	}
	slog.Info("Results saved to database", "table", table, "rows", total)
	return total, nil
}

// SaveResolutions copies resolution records to the resolutions table.
func (s *Sink) SaveResolutions(
	ctx context.Context,
	rr []ioout.Resolution,
) (int, error) {
	if err := s.ensureTable(ctx, ResolutionsTable); err != nil {
		return 0, err
	}

	columns := []string{
		"run_id", "key", "taxon_id", "found", "matched_name", "tier", "name_uuid",
	}
	rows := make([][]any, len(rr))
	for i, v := range rr {
		rows[i] = []any{
			s.runID,
			v.Key,
			v.ID,
			v.Found,
			nullString(v.MatchedName),
			nullString(v.Tier),
			nullUUID(v.NameUUID),
		}
	}
	return s.copyRows(ctx, ResolutionsTable, columns, rows)
}

// SaveAssignments copies consensus assignments. Rank names are stored
// with every row, unresolved ranks are NULL.
func (s *Sink) SaveAssignments(
	ctx context.Context,
	rankNames []string,
	aa []lca.Assignment,
) (int, error) {
	if err := s.ensureTable(ctx, AssignmentsTable); err != nil {
		return 0, err
	}

	columns := []string{
		"run_id", "sequence_name", "rank_names", "ranks",
		"lca", "lca_rank", "hits_num", "percentage_similarity",
	}
	rows := make([][]any, len(aa))
	for i, v := range aa {
		ranks := make([]*string, len(v.Ranks))
		for j := range v.Ranks {
			if v.Ranks[j] != "" {
				ranks[j] = &v.Ranks[j]
			}
		}
		var pident *float64
		if v.HasPIdent {
			p := v.PIdent
			pident = &p
		}
		rows[i] = []any{
			s.runID,
			v.QueryID,
			rankNames,
			ranks,
			nullString(v.LCA),
			nullString(v.LCARank),
			v.HitsNum,
			pident,
		}
	}
	return s.copyRows(ctx, AssignmentsTable, columns, rows)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &u
}

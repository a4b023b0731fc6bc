package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Beginner opens transactions. pgxpool.Pool and pgxmock pools satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ReplaceConfig describes a staged, whole-table replacement.
type ReplaceConfig struct {
	Table       string   // target table, optionally schema-qualified
	Setup       []string // statements run first in the same transaction (DDL)
	StageCols   []string // staging columns, in row order
	StageTypes  []string // SQL type per staging column
	TargetCols  []string // target columns filled from the stage
	SelectExprs []string // one expression over staging columns per target column
}

func (c ReplaceConfig) validate() error {
	if c.Table == "" {
		return eris.New("db: replace: no table specified")
	}
	if len(c.StageCols) == 0 {
		return eris.New("db: replace: no staging columns specified")
	}
	if len(c.StageCols) != len(c.StageTypes) {
		return eris.Errorf("db: replace: %d staging columns but %d types", len(c.StageCols), len(c.StageTypes))
	}
	if len(c.TargetCols) == 0 || len(c.TargetCols) != len(c.SelectExprs) {
		return eris.Errorf("db: replace: %d target columns but %d select expressions", len(c.TargetCols), len(c.SelectExprs))
	}
	return nil
}

// ReplaceAll swaps the contents of cfg.Table for rows in one transaction.
// 1. Runs cfg.Setup
// 2. Creates a temp stage table and COPYs rows into it
// 3. TRUNCATEs the target
// 4. INSERT INTO target SELECT exprs FROM stage
//
// Readers never observe a half-loaded table.
func ReplaceAll(ctx context.Context, pool Beginner, cfg ReplaceConfig, rows [][]any) (int64, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: replace: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, stmt := range cfg.Setup {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return 0, eris.Wrapf(err, "db: replace: setup for %s", cfg.Table)
		}
	}

	stage := stageTable(cfg.Table)
	defs := make([]string, len(cfg.StageCols))
	for i, c := range cfg.StageCols {
		defs[i] = pgx.Identifier{c}.Sanitize() + " " + cfg.StageTypes[i]
	}
	createSQL := fmt.Sprintf("CREATE TEMP TABLE %s (%s) ON COMMIT DROP",
		pgx.Identifier{stage}.Sanitize(), strings.Join(defs, ", "))
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: replace: create stage for %s", cfg.Table)
	}

	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{stage}, cfg.StageCols, pgx.CopyFromRows(rows)); err != nil {
			return 0, eris.Wrapf(err, "db: replace: COPY into stage for %s", cfg.Table)
		}
	}

	if _, err := tx.Exec(ctx, "TRUNCATE "+SanitizeTable(cfg.Table)); err != nil {
		return 0, eris.Wrapf(err, "db: replace: truncate %s", cfg.Table)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		SanitizeTable(cfg.Table),
		quoteAndJoin(cfg.TargetCols),
		strings.Join(cfg.SelectExprs, ", "),
		pgx.Identifier{stage}.Sanitize(),
	)
	tag, err := tx.Exec(ctx, insertSQL)
	if err != nil {
		return 0, eris.Wrapf(err, "db: replace: insert into %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: replace: commit tx")
	}
	return tag.RowsAffected(), nil
}

func stageTable(table string) string {
	return "_stage_" + strings.ReplaceAll(table, ".", "_")
}

// SanitizeTable quotes a possibly schema-qualified name like "public.zoning_parcels".
func SanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

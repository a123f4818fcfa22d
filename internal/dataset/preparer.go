package dataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/BartekS5/copybench/pkg/logger"
	"github.com/BartekS5/copybench/pkg/models"
)

// DefaultRows is the size of the synthetic source dataset.
const DefaultRows = 1_000_000

// Preparer brings both stores into the state a benchmark expects: a
// populated source table and an existing, empty destination table.
type Preparer struct {
	Source    *sql.DB
	Dest      *sql.DB
	Rows      int
	Generator *Generator
}

func NewPreparer(source, dest *sql.DB, rows int, gen *Generator) *Preparer {
	if rows <= 0 {
		rows = DefaultRows
	}
	return &Preparer{Source: source, Dest: dest, Rows: rows, Generator: gen}
}

// Prepare creates the source table if needed, recreates the destination
// table and seeds the source when it has no rows yet.
func (p *Preparer) Prepare(ctx context.Context) error {
	if _, err := p.Source.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create source table: %w", err)
	}
	if _, err := p.Dest.ExecContext(ctx, dropTableSQL); err != nil {
		return fmt.Errorf("drop destination table: %w", err)
	}
	if _, err := p.Dest.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create destination table: %w", err)
	}

	var populated bool
	if err := p.Source.QueryRowContext(ctx, hasRowsSQL).Scan(&populated); err != nil {
		return fmt.Errorf("check source table: %w", err)
	}
	if populated {
		logger.Infof("Source table already populated, skipping seed.")
		return nil
	}
	return p.Seed(ctx, p.Rows)
}

// Seed appends n synthetic records to the source in one transaction.
func (p *Preparer) Seed(ctx context.Context, n int) error {
	logger.Infof("Seeding source with %d rows...", n)

	tx, err := p.Source.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(models.MetricsTable, models.InsertColumns()...))
	if err != nil {
		return fmt.Errorf("prepare seed copy: %w", err)
	}

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, p.Generator.Next().Values()...); err != nil {
			stmt.Close()
			return fmt.Errorf("seed row %d: %w", i, err)
		}
	}
	// Flushes the buffered COPY data.
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flush seed copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close seed copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	logger.Infof("Seeded %d rows.", n)
	return nil
}

// Truncate empties the destination table.
func (p *Preparer) Truncate(ctx context.Context) error {
	_, err := p.Dest.ExecContext(ctx, truncateTableSQL)
	return err
}

// Count returns the number of rows in the metrics table of db.
func Count(ctx context.Context, db *sql.DB) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, countRowsSQL).Scan(&n)
	return n, err
}

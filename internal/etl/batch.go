package etl

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/copybench/pkg/models"
)

const (
	// DefaultBatchSize is the number of rows fetched and inserted per chunk.
	DefaultBatchSize = 10000

	// maxBindParams is PostgreSQL's limit on parameters in one statement.
	maxBindParams = 65535
)

// BatchLoader copies rows by decoding them into records and re-encoding
// them as multi-row INSERT statements, one transaction per chunk.
type BatchLoader struct {
	Source    *RowSource
	Dest      *sql.DB
	Table     string
	Identity  string
	BatchSize int
}

func NewBatchLoader(source *RowSource, dest *sql.DB, batchSize int) *BatchLoader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchLoader{
		Source:    source,
		Dest:      dest,
		Table:     models.MetricsTable,
		Identity:  models.IdentityColumn,
		BatchSize: batchSize,
	}
}

func (l *BatchLoader) Name() models.Strategy {
	return models.StrategyBatch
}

func (l *BatchLoader) Run(ctx context.Context, d models.QueryDescriptor) models.TransferResult {
	return measure(l.Name(), d, func() (int64, error) {
		return l.transfer(ctx, d)
	})
}

func (l *BatchLoader) transfer(ctx context.Context, d models.QueryDescriptor) (int64, error) {
	cursor, err := l.Source.Open(ctx, d)
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	conn, err := l.Dest.Conn(ctx)
	if err != nil {
		return 0, wrap(ErrDestinationWrite, err, "acquire destination connection")
	}
	defer conn.Close()

	mapper := NewMapper(d)
	stmt := newInsertBuilder(l.Table, d.Targets(), l.Identity)

	// One chunk of look-ahead: the next chunk is fetched and mapped while
	// the current one is being inserted.
	chunks := make(chan []map[string]interface{}, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chunks)
		for {
			rows, err := cursor.Fetch(l.BatchSize)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			records, err := mapper.MapChunk(rows)
			if err != nil {
				return err
			}
			select {
			case chunks <- records:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var total int64
	g.Go(func() error {
		for records := range chunks {
			if err := l.insertChunk(gctx, conn, stmt, records); err != nil {
				return err
			}
			total += int64(len(records))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// insertChunk writes one chunk atomically. Chunks too large for a single
// statement are split across several statements in the same transaction.
func (l *BatchLoader) insertChunk(ctx context.Context, conn *sql.Conn, b *insertBuilder, records []map[string]interface{}) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return wrap(ErrDestinationWrite, err, "begin")
	}

	perStmt := b.rowsPerStatement()
	for start := 0; start < len(records); start += perStmt {
		end := min(start+perStmt, len(records))
		query, args, err := b.build(records[start:end])
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			tx.Rollback()
			return wrap(ErrDestinationWrite, err, "insert %d rows into %s", end-start, l.Table)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrap(ErrDestinationWrite, err, "commit")
	}
	return nil
}

type insertBuilder struct {
	columns []string
	prefix  string
	suffix  string
}

func newInsertBuilder(table string, columns []string, identity string) *insertBuilder {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	b := &insertBuilder{
		columns: columns,
		prefix:  fmt.Sprintf("INSERT INTO %s (%s) VALUES ", pq.QuoteIdentifier(table), strings.Join(quoted, ", ")),
	}
	b.suffix = conflictClause(columns, identity)
	return b
}

// conflictClause replaces rows whose identity already exists. Without the
// identity column in the projection there is nothing to conflict on.
func conflictClause(columns []string, identity string) string {
	hasIdentity := false
	var sets []string
	for _, c := range columns {
		if c == identity {
			hasIdentity = true
			continue
		}
		q := pq.QuoteIdentifier(c)
		sets = append(sets, q+" = EXCLUDED."+q)
	}
	switch {
	case !hasIdentity:
		return ""
	case len(sets) == 0:
		return " ON CONFLICT (" + pq.QuoteIdentifier(identity) + ") DO NOTHING"
	default:
		return " ON CONFLICT (" + pq.QuoteIdentifier(identity) + ") DO UPDATE SET " + strings.Join(sets, ", ")
	}
}

func (b *insertBuilder) rowsPerStatement() int {
	return max(1, maxBindParams/len(b.columns))
}

func (b *insertBuilder) build(records []map[string]interface{}) (string, []interface{}, error) {
	var sb strings.Builder
	sb.WriteString(b.prefix)
	args := make([]interface{}, 0, len(records)*len(b.columns))

	for i, record := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, col := range b.columns {
			val, ok := record[col]
			if !ok {
				return "", nil, fmt.Errorf("%w: record is missing column %s", ErrMapping, col)
			}
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, val)
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteByte(')')
	}
	sb.WriteString(b.suffix)
	return sb.String(), args, nil
}

package etl

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/BartekS5/copybench/pkg/database"
	"github.com/BartekS5/copybench/pkg/models"
)

// RowSource runs query descriptors against the source store, either as a
// structured cursor or as a raw binary COPY export.
type RowSource struct {
	DB   *sql.DB
	Dial database.CopyDialer
}

// Cursor is a forward-only reader over a descriptor's result set. It owns a
// dedicated connection until Close.
type Cursor struct {
	conn    *sql.Conn
	rows    *sql.Rows
	columns []string
	done    bool
}

// Open executes d and returns a cursor positioned before the first row.
func (s *RowSource) Open(ctx context.Context, d models.QueryDescriptor) (*Cursor, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}

	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return nil, wrap(ErrSourceUnavailable, err, "acquire source connection")
	}

	rows, err := conn.QueryContext(ctx, d.Query())
	if err != nil {
		conn.Close()
		return nil, wrap(ErrQueryExecution, err, "query %s", d.Name)
	}

	columns, err := rows.Columns()
	if err == nil {
		err = NewValidator(d.Sources()).ValidateColumns(columns)
	}
	if err != nil {
		rows.Close()
		conn.Close()
		if !classified(err) {
			err = wrap(ErrQueryExecution, err, "columns of %s", d.Name)
		}
		return nil, err
	}

	return &Cursor{conn: conn, rows: rows, columns: columns}, nil
}

func (c *Cursor) Columns() []string {
	return c.columns
}

// Fetch reads up to n rows. An empty result means the cursor is exhausted.
func (c *Cursor) Fetch(n int) ([][]interface{}, error) {
	if c.done {
		return nil, nil
	}

	chunk := make([][]interface{}, 0, n)
	for len(chunk) < n {
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return nil, wrap(ErrQueryExecution, err, "fetch")
			}
			break
		}
		values := make([]interface{}, len(c.columns))
		pointers := make([]interface{}, len(c.columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := c.rows.Scan(pointers...); err != nil {
			return nil, wrap(ErrQueryExecution, err, "scan")
		}
		chunk = append(chunk, values)
	}
	return chunk, nil
}

// Close releases the result set and the connection.
func (c *Cursor) Close() error {
	rowsErr := c.rows.Close()
	connErr := c.conn.Close()
	if rowsErr != nil {
		return rowsErr
	}
	return connErr
}

// Export streams the server's binary encoding of d's result set into w.
func (s *RowSource) Export(ctx context.Context, d models.QueryDescriptor, w io.Writer) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}

	ch, err := s.Dial(ctx)
	if err != nil {
		return 0, wrap(ErrChannelOpen, err, "open source export channel")
	}
	defer ch.Close(context.Background())

	n, err := ch.CopyOut(ctx, w, CopyOutStatement(d))
	if err != nil {
		return 0, wrap(ErrStreamIO, err, "export %s", d.Name)
	}
	return n, nil
}

// CopyOutStatement wraps d's query into a binary COPY export.
func CopyOutStatement(d models.QueryDescriptor) string {
	return "COPY (" + d.Query() + ") TO STDOUT (FORMAT BINARY)"
}

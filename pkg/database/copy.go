package database

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/jackc/pgx/v5/pgconn"
)

// CopyChannel is a raw protocol-level connection able to run COPY in both
// directions without decoding rows.
type CopyChannel interface {
	// CopyOut runs a COPY ... TO STDOUT statement and writes the raw
	// COPY data to w. It returns the row count reported by the server.
	CopyOut(ctx context.Context, w io.Writer, stmt string) (int64, error)
	// CopyIn runs a COPY ... FROM STDIN statement fed from r.
	CopyIn(ctx context.Context, r io.Reader, stmt string) (int64, error)
	// Exec runs a simple statement such as BEGIN or COMMIT.
	Exec(ctx context.Context, stmt string) error
	Close(ctx context.Context) error
}

// CopyDialer opens a new CopyChannel. Every call yields a fresh connection
// owned by the caller.
type CopyDialer func(ctx context.Context) (CopyChannel, error)

// NewCopyDialer returns a dialer connecting to connString with pgconn.
func NewCopyDialer(connString string) CopyDialer {
	return func(ctx context.Context) (CopyChannel, error) {
		conn, err := pgconn.Connect(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("error opening copy connection to %s: %w", Redact(connString), err)
		}
		return &pgCopyChannel{conn: conn}, nil
	}
}

type pgCopyChannel struct {
	conn *pgconn.PgConn
}

func (c *pgCopyChannel) CopyOut(ctx context.Context, w io.Writer, stmt string) (int64, error) {
	tag, err := c.conn.CopyTo(ctx, w, stmt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgCopyChannel) CopyIn(ctx context.Context, r io.Reader, stmt string) (int64, error) {
	tag, err := c.conn.CopyFrom(ctx, r, stmt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgCopyChannel) Exec(ctx context.Context, stmt string) error {
	return c.conn.Exec(ctx, stmt).Close()
}

func (c *pgCopyChannel) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Redact hides the password of a URL-style connection string.
func Redact(connString string) string {
	u, err := url.Parse(connString)
	if err != nil || u.User == nil {
		return connString
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

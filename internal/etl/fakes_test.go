package etl

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/BartekS5/copybench/pkg/database"
	"github.com/BartekS5/copybench/pkg/models"
)

var (
	errConnReset = errors.New("connection reset by peer")
	errDiskFull  = errors.New("could not extend file: No space left on device")
)

// exportChannel plays the source server: CopyOut writes the frames one
// by one, optionally breaking after failAfter frames.
type exportChannel struct {
	frames    [][]byte
	failAfter int
	stmts     []string
	closed    bool
}

func newExportChannel(frames ...string) *exportChannel {
	ch := &exportChannel{failAfter: -1}
	for _, f := range frames {
		ch.frames = append(ch.frames, []byte(f))
	}
	return ch
}

func (c *exportChannel) CopyOut(_ context.Context, w io.Writer, stmt string) (int64, error) {
	c.stmts = append(c.stmts, stmt)
	for i, f := range c.frames {
		if i == c.failAfter {
			return 0, errConnReset
		}
		if _, err := w.Write(f); err != nil {
			return 0, err
		}
	}
	return int64(len(c.frames)), nil
}

func (c *exportChannel) CopyIn(context.Context, io.Reader, string) (int64, error) {
	return 0, errors.New("export channel cannot import")
}

func (c *exportChannel) Exec(_ context.Context, stmt string) error {
	c.stmts = append(c.stmts, stmt)
	return nil
}

func (c *exportChannel) Close(context.Context) error {
	c.closed = true
	return nil
}

// importChannel plays the destination server. Imported bytes stay pending
// until COMMIT; each '\n' terminated line counts as one row.
type importChannel struct {
	pending   bytes.Buffer
	committed []byte
	failAt    int
	stmts     []string
	closed    bool
}

func newImportChannel() *importChannel {
	return &importChannel{failAt: -1}
}

func (c *importChannel) CopyOut(context.Context, io.Writer, string) (int64, error) {
	return 0, errors.New("import channel cannot export")
}

func (c *importChannel) CopyIn(_ context.Context, r io.Reader, stmt string) (int64, error) {
	c.stmts = append(c.stmts, stmt)
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		c.pending.Write(buf[:n])
		if c.failAt >= 0 && c.pending.Len() >= c.failAt {
			return 0, errDiskFull
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	return int64(bytes.Count(c.pending.Bytes(), []byte("\n"))), nil
}

func (c *importChannel) Exec(_ context.Context, stmt string) error {
	c.stmts = append(c.stmts, stmt)
	switch stmt {
	case "BEGIN", "ROLLBACK":
		c.pending.Reset()
	case "COMMIT":
		c.committed = append(c.committed, c.pending.Bytes()...)
		c.pending.Reset()
	}
	return nil
}

func (c *importChannel) Close(context.Context) error {
	c.closed = true
	return nil
}

func dialTo(ch database.CopyChannel) database.CopyDialer {
	return func(context.Context) (database.CopyChannel, error) {
		return ch, nil
	}
}

func failingDial(err error) database.CopyDialer {
	return func(context.Context) (database.CopyChannel, error) {
		return nil, err
	}
}

func evenIDsDescriptor() models.QueryDescriptor {
	return models.QueryDescriptor{
		Name:    "even-ids",
		Columns: models.MetricColumns(),
		Where:   "id % 2 = 0",
	}
}

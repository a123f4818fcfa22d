package etl

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/lib/pq"

	"github.com/BartekS5/copybench/pkg/database"
	"github.com/BartekS5/copybench/pkg/logger"
	"github.com/BartekS5/copybench/pkg/models"
)

// DefaultBufferSize is the write buffer between the export and import
// channels.
const DefaultBufferSize = 1 << 20

var errImportAborted = errors.New("import aborted")

// StreamCopier relays the source's binary COPY output straight into a
// binary COPY on the destination. The destination side runs in a single
// transaction: either every row is committed or none.
type StreamCopier struct {
	Source     *RowSource
	Dial       database.CopyDialer
	Table      string
	BufferSize int
}

func NewStreamCopier(source *RowSource, dial database.CopyDialer, bufferSize int) *StreamCopier {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &StreamCopier{
		Source:     source,
		Dial:       dial,
		Table:      models.MetricsTable,
		BufferSize: bufferSize,
	}
}

func (c *StreamCopier) Name() models.Strategy {
	return models.StrategyStream
}

func (c *StreamCopier) Run(ctx context.Context, d models.QueryDescriptor) models.TransferResult {
	return measure(c.Name(), d, func() (int64, error) {
		return c.transfer(ctx, d)
	})
}

func (c *StreamCopier) transfer(ctx context.Context, d models.QueryDescriptor) (int64, error) {
	dest, err := c.Dial(ctx)
	if err != nil {
		return 0, wrap(ErrChannelOpen, err, "open destination import channel")
	}
	defer dest.Close(context.Background())

	if err := dest.Exec(ctx, "BEGIN"); err != nil {
		return 0, wrap(ErrChannelOpen, err, "begin destination transaction")
	}

	rows, err := c.relay(ctx, d, dest)
	if err != nil {
		if rbErr := dest.Exec(context.Background(), "ROLLBACK"); rbErr != nil {
			logger.Warnf("Rollback of %s failed: %v", d.Name, rbErr)
		}
		return 0, err
	}

	if err := dest.Exec(ctx, "COMMIT"); err != nil {
		return 0, wrap(ErrStreamIO, err, "commit destination transaction")
	}
	return rows, nil
}

// relay pumps the export into the import through a pipe. The exporter runs
// in its own goroutine; the importer runs in the caller's.
func (c *StreamCopier) relay(ctx context.Context, d models.QueryDescriptor, dest database.CopyChannel) (int64, error) {
	pr, pw := io.Pipe()
	exported := make(chan error, 1)

	go func() {
		bw := bufio.NewWriterSize(pw, c.BufferSize)
		_, err := c.Source.Export(ctx, d, bw)
		if err == nil {
			if err = bw.Flush(); err != nil {
				err = wrap(ErrStreamIO, err, "flush export buffer")
			}
		}
		// A nil error closes the pipe with io.EOF, which ends the import.
		pw.CloseWithError(err)
		exported <- err
	}()

	rows, importErr := dest.CopyIn(ctx, pr, CopyInStatement(c.Table, d))
	// Unblocks the exporter if the import stopped reading early.
	pr.CloseWithError(errImportAborted)
	exportErr := <-exported

	switch {
	case exportErr != nil && !errors.Is(exportErr, errImportAborted):
		return 0, exportErr
	case importErr != nil:
		return 0, wrap(ErrStreamIO, importErr, "import %s", d.Name)
	case exportErr != nil:
		return 0, exportErr
	}
	return rows, nil
}

// CopyInStatement is the binary COPY import into table for d's columns.
func CopyInStatement(table string, d models.QueryDescriptor) string {
	targets := d.Targets()
	quoted := make([]string, len(targets))
	for i, t := range targets {
		quoted[i] = pq.QuoteIdentifier(t)
	}
	return "COPY " + pq.QuoteIdentifier(table) + " (" + strings.Join(quoted, ", ") + ") FROM STDIN (FORMAT BINARY)"
}

package etl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/copybench/pkg/models"
)

func newTestCopier(src *exportChannel, dst *importChannel) *StreamCopier {
	source := &RowSource{Dial: dialTo(src)}
	c := NewStreamCopier(source, dialTo(dst), 4)
	return c
}

func TestStreamCopierRelaysFrames(t *testing.T) {
	src := newExportChannel("row-2\n", "row-4\n", "row-6\n")
	dst := newImportChannel()
	d := evenIDsDescriptor()

	res := newTestCopier(src, dst).Run(context.Background(), d)

	require.NoError(t, res.Err)
	assert.Equal(t, models.StrategyStream, res.Strategy)
	assert.Equal(t, "even-ids", res.Query)
	assert.Equal(t, int64(3), res.Rows)
	assert.Equal(t, "row-2\nrow-4\nrow-6\n", string(dst.committed))

	assert.Equal(t, []string{"COPY (SELECT id, metric_int1, metric_int2, metric_float1, metric_float2, metric_string, metric_binary FROM metrics WHERE id % 2 = 0) TO STDOUT (FORMAT BINARY)"}, src.stmts)
	assert.Equal(t, []string{
		"BEGIN",
		`COPY "metrics" ("id", "metric_int1", "metric_int2", "metric_float1", "metric_float2", "metric_string", "metric_binary") FROM STDIN (FORMAT BINARY)`,
		"COMMIT",
	}, dst.stmts)
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestStreamCopierEmptyResult(t *testing.T) {
	src := newExportChannel()
	dst := newImportChannel()

	res := newTestCopier(src, dst).Run(context.Background(), evenIDsDescriptor())

	require.NoError(t, res.Err)
	assert.Zero(t, res.Rows)
	assert.Equal(t, "COMMIT", dst.stmts[len(dst.stmts)-1])
}

func TestStreamCopierSourceFailureRollsBack(t *testing.T) {
	src := newExportChannel("row-2\n", "row-4\n", "row-6\n")
	src.failAfter = 2
	dst := newImportChannel()

	res := newTestCopier(src, dst).Run(context.Background(), evenIDsDescriptor())

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrStreamIO)
	assert.ErrorIs(t, res.Err, errConnReset)
	assert.Zero(t, res.Rows)
	assert.Empty(t, dst.committed, "nothing may be committed after a broken stream")
	assert.Equal(t, "ROLLBACK", dst.stmts[len(dst.stmts)-1])
	assert.NotContains(t, dst.stmts, "COMMIT")
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestStreamCopierDestinationFailureRollsBack(t *testing.T) {
	src := newExportChannel("row-2\n", "row-4\n", "row-6\n", "row-8\n")
	dst := newImportChannel()
	dst.failAt = 8

	res := newTestCopier(src, dst).Run(context.Background(), evenIDsDescriptor())

	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrStreamIO)
	assert.ErrorIs(t, res.Err, errDiskFull)
	assert.Empty(t, dst.committed)
	assert.Equal(t, "ROLLBACK", dst.stmts[len(dst.stmts)-1])
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestStreamCopierDestinationUnavailable(t *testing.T) {
	src := newExportChannel("row-2\n")
	source := &RowSource{Dial: dialTo(src)}
	c := NewStreamCopier(source, failingDial(errConnReset), 0)

	res := c.Run(context.Background(), evenIDsDescriptor())

	assert.ErrorIs(t, res.Err, ErrChannelOpen)
	assert.Empty(t, src.stmts, "source must not be touched without a destination")
	assert.Equal(t, DefaultBufferSize, c.BufferSize)
}

func TestStreamCopierSourceUnavailable(t *testing.T) {
	dst := newImportChannel()
	source := &RowSource{Dial: failingDial(errConnReset)}
	c := NewStreamCopier(source, dialTo(dst), 16)

	res := c.Run(context.Background(), evenIDsDescriptor())

	assert.ErrorIs(t, res.Err, ErrChannelOpen)
	assert.Empty(t, dst.committed)
	assert.Equal(t, "ROLLBACK", dst.stmts[len(dst.stmts)-1])
	assert.True(t, dst.closed)
}

func TestStreamCopierRelabeledTargets(t *testing.T) {
	src := newExportChannel("4|-17|even\n")
	dst := newImportChannel()

	res := newTestCopier(src, dst).Run(context.Background(), projectedDescriptor())

	require.NoError(t, res.Err)
	assert.Equal(t, `COPY "metrics" ("id", "metric_int1", "metric_string") FROM STDIN (FORMAT BINARY)`, dst.stmts[1])
	assert.Equal(t,
		"COPY (SELECT id, metric_int2, CASE WHEN id % 2 = 0 THEN 'even' ELSE 'odd' END AS parity FROM metrics) TO STDOUT (FORMAT BINARY)",
		src.stmts[0])
}

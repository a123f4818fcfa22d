// Package report renders and stores transfer measurements.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/BartekS5/copybench/pkg/models"
)

// LineReporter prints one human-readable line per result.
type LineReporter struct {
	Out io.Writer
}

func NewLineReporter(out io.Writer) *LineReporter {
	return &LineReporter{Out: out}
}

func (r *LineReporter) Begin(d models.QueryDescriptor) {
	fmt.Fprintf(r.Out, "Cur sql (%s):\n%s\n", d.Name, d.Query())
}

func (r *LineReporter) Report(_ context.Context, res models.TransferResult) {
	fmt.Fprintln(r.Out, FormatResult(res))
}

// FormatResult renders res as "<strategy>: <seconds> sec: <query>".
func FormatResult(res models.TransferResult) string {
	if !res.Succeeded() {
		return fmt.Sprintf("%s: FAILED after %.6f sec (%v): %s", res.Strategy, res.Elapsed.Seconds(), res.Err, res.SQL)
	}
	return fmt.Sprintf("%s: %.6f sec: %s", res.Strategy, res.Elapsed.Seconds(), res.SQL)
}

// Sink is anything receiving results; it mirrors etl.Reporter so this
// package does not depend on the engine.
type Sink interface {
	Begin(d models.QueryDescriptor)
	Report(ctx context.Context, res models.TransferResult)
}

// Multi fans results out to several sinks in order.
type Multi []Sink

func (m Multi) Begin(d models.QueryDescriptor) {
	for _, s := range m {
		s.Begin(d)
	}
}

func (m Multi) Report(ctx context.Context, res models.TransferResult) {
	for _, s := range m {
		s.Report(ctx, res)
	}
}

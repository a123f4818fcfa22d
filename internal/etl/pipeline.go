package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BartekS5/copybench/pkg/logger"
	"github.com/BartekS5/copybench/pkg/models"
)

// State is a step of one descriptor's comparison cycle.
type State int

const (
	Idle State = iota
	PreparedForBatch
	BatchRun
	Truncated
	PreparedForStream
	StreamRun
	Done
)

var stateNames = [...]string{
	Idle:              "idle",
	PreparedForBatch:  "prepared-for-batch",
	BatchRun:          "batch-run",
	Truncated:         "truncated",
	PreparedForStream: "prepared-for-stream",
	StreamRun:         "stream-run",
	Done:              "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Orchestrator runs the batch and stream strategies for each descriptor in
// turn against a destination that is emptied before every run.
type Orchestrator struct {
	Batch    Strategy
	Stream   Strategy
	Dest     Truncator
	Reporter Reporter
	// Pause, when set, is called after each descriptor's cycle.
	Pause func(ctx context.Context, d models.QueryDescriptor) error

	// OnTransition observes state changes; used by tests.
	OnTransition func(d models.QueryDescriptor, from, to State)
}

func NewOrchestrator(batch, stream Strategy, dest Truncator, reporter Reporter) *Orchestrator {
	return &Orchestrator{
		Batch:    batch,
		Stream:   stream,
		Dest:     dest,
		Reporter: reporter,
	}
}

// Run executes every descriptor strictly in order. Strategy failures are
// recorded and the benchmark moves on; a failed truncation stops it since
// later measurements would start from a dirty destination.
func (o *Orchestrator) Run(ctx context.Context, descriptors []models.QueryDescriptor) ([]models.TransferResult, error) {
	logger.Infof("Starting benchmark of %d queries.", len(descriptors))

	results := make([]models.TransferResult, 0, 2*len(descriptors))
	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		cycle, err := o.runCycle(ctx, d)
		results = append(results, cycle...)
		if err != nil {
			return results, err
		}
		if o.Pause != nil && i < len(descriptors)-1 {
			if err := o.Pause(ctx, d); err != nil {
				return results, err
			}
		}
	}

	logger.Info("Benchmark finished.")
	return results, nil
}

func (o *Orchestrator) runCycle(ctx context.Context, d models.QueryDescriptor) ([]models.TransferResult, error) {
	state := Idle
	move := func(to State) {
		logger.WithFields(logrus.Fields{"query": d.Name, "from": state, "to": to}).Debug("transition")
		if o.OnTransition != nil {
			o.OnTransition(d, state, to)
		}
		state = to
	}

	if o.Reporter != nil {
		o.Reporter.Begin(d)
	}
	results := make([]models.TransferResult, 0, 2)

	move(PreparedForBatch)
	move(BatchRun)
	results = append(results, o.record(ctx, o.Batch.Run(ctx, d)))

	if err := o.truncate(ctx, d); err != nil {
		return results, err
	}
	move(Truncated)

	move(PreparedForStream)
	move(StreamRun)
	results = append(results, o.record(ctx, o.Stream.Run(ctx, d)))
	move(Done)

	// Leaves the destination empty for the next cycle.
	if err := o.truncate(ctx, d); err != nil {
		return results, err
	}
	return results, nil
}

func (o *Orchestrator) truncate(ctx context.Context, d models.QueryDescriptor) error {
	if err := o.Dest.Truncate(ctx); err != nil {
		return fmt.Errorf("truncate destination after %s: %w", d.Name, err)
	}
	return nil
}

func (o *Orchestrator) record(ctx context.Context, r models.TransferResult) models.TransferResult {
	if o.Reporter != nil {
		o.Reporter.Report(ctx, r)
	}
	return r
}

// measure times fn and packs the outcome into a TransferResult.
func measure(strategy models.Strategy, d models.QueryDescriptor, fn func() (int64, error)) models.TransferResult {
	entry := logger.WithFields(logrus.Fields{"strategy": strategy, "query": d.Name})
	entry.Info("Run transfer")

	start := time.Now()
	rows, err := fn()
	r := models.TransferResult{
		Strategy: strategy,
		Query:    d.Name,
		SQL:      d.Query(),
		Started:  start,
		Elapsed:  time.Since(start),
		Rows:     rows,
		Err:      err,
	}

	entry = entry.WithFields(logrus.Fields{"rows": r.Rows, "seconds": r.Elapsed.Seconds()})
	if err != nil {
		entry.WithError(err).Error("Transfer failed")
	} else {
		entry.Infof("Transfer done. Rate: %.2f rows/sec", r.Rate())
	}
	return r
}

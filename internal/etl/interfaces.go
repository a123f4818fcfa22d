package etl

import (
	"context"

	"github.com/BartekS5/copybench/pkg/models"
)

// Strategy moves the rows selected by a descriptor into the destination and
// measures how long it took. Failures are carried in the result.
type Strategy interface {
	Name() models.Strategy
	Run(ctx context.Context, d models.QueryDescriptor) models.TransferResult
}

// Truncator empties the destination table between runs.
type Truncator interface {
	Truncate(ctx context.Context) error
}

// Reporter receives every result as soon as it is recorded.
type Reporter interface {
	Begin(d models.QueryDescriptor)
	Report(ctx context.Context, r models.TransferResult)
}

package models

import "time"

// Strategy identifies a transfer strategy.
type Strategy string

const (
	StrategyBatch  Strategy = "batch insert"
	StrategyStream Strategy = "binary copy"
)

// TransferResult is the measurement of one (descriptor, strategy) run.
type TransferResult struct {
	Strategy Strategy
	Query    string
	SQL      string
	Started  time.Time
	Elapsed  time.Duration
	Rows     int64
	Err      error
}

func (r TransferResult) Succeeded() bool {
	return r.Err == nil
}

// Rate returns transferred rows per second.
func (r TransferResult) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Rows) / r.Elapsed.Seconds()
}

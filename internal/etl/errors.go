package etl

import (
	"errors"
	"fmt"
)

// Failure classes of a transfer run. Errors returned by this package wrap
// exactly one of them; test with errors.Is.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrQueryExecution    = errors.New("query execution error")
	ErrMapping           = errors.New("mapping error")
	ErrDestinationWrite  = errors.New("destination write error")
	ErrChannelOpen       = errors.New("channel open error")
	ErrStreamIO          = errors.New("stream I/O error")
)

func wrap(kind error, err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", kind, fmt.Sprintf(format, args...), err)
}

// classified reports whether err already carries a failure class.
func classified(err error) bool {
	for _, kind := range []error{ErrSourceUnavailable, ErrQueryExecution, ErrMapping, ErrDestinationWrite, ErrChannelOpen, ErrStreamIO} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

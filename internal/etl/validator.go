package etl

import (
	"fmt"
	"strings"
)

type Validator struct {
	Expected []string
}

func NewValidator(expected []string) *Validator {
	return &Validator{Expected: expected}
}

// ValidateColumns checks that the labels returned by the source match the
// expected list by name and position.
func (v *Validator) ValidateColumns(got []string) error {
	if len(got) != len(v.Expected) {
		return fmt.Errorf("%w: got columns [%s], expected [%s]", ErrMapping,
			strings.Join(got, ", "), strings.Join(v.Expected, ", "))
	}
	for i := range got {
		if got[i] != v.Expected[i] {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrMapping, i, got[i], v.Expected[i])
		}
	}
	return nil
}

// ValidateRecord checks that a mapped record carries exactly the expected
// destination columns.
func (v *Validator) ValidateRecord(record map[string]interface{}) error {
	if len(record) != len(v.Expected) {
		return fmt.Errorf("%w: record has %d columns, expected %d", ErrMapping, len(record), len(v.Expected))
	}
	for _, col := range v.Expected {
		if _, ok := record[col]; !ok {
			return fmt.Errorf("%w: record is missing column %s", ErrMapping, col)
		}
	}
	return nil
}

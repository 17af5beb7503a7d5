package pipeline

import (
	"errors"
	"fmt"
)

// The two fatal error classes. Both abort the run before any artifact
// is written; per-row data defects are never errors, they accumulate as
// violation counts in the Summary.
var (
	// ErrConfiguration covers bad run configuration: missing inputs,
	// negative or unknown objective weights, data referencing
	// predicates the ontology never declared.
	ErrConfiguration = errors.New("configuration error")

	// ErrQuerySet covers definitional defects in the ontology, CQ
	// battery or shape set themselves, as opposed to defects in the
	// data they are applied to.
	ErrQuerySet = errors.New("query set malformed")
)

func configErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

func querySetErr(err error) error {
	return fmt.Errorf("%w: %w", ErrQuerySet, err)
}

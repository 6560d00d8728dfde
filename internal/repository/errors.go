package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Constraint violations surfaced by the database.
var (
	ErrDuplicate  = errors.New("duplicate record")
	ErrForeignKey = errors.New("referenced record does not exist")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// ConstraintError names the violated constraint.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
}

// Is matches the ErrDuplicate and ErrForeignKey sentinels.
func (e *ConstraintError) Is(target error) bool {
	return target == e.Kind
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// translate maps driver constraint violations onto sentinel errors and wraps
// everything else with the operation name.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", op, &ConstraintError{Kind: ErrDuplicate, Constraint: pqErr.Constraint, Err: err})
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, &ConstraintError{Kind: ErrForeignKey, Constraint: pqErr.Constraint, Err: err})
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

package astro

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed dates, times, timezones or
	// option values. It is the only error a caller can fix by changing input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedBody is returned when a position engine cannot place a body.
	ErrUnsupportedBody = errors.New("unsupported body")

	// ErrInvalidHouseInput is returned by PlacidusHouses for out-of-range
	// angles or seeds. Callers recover by falling back to EqualHouses.
	ErrInvalidHouseInput = errors.New("invalid house input")
)

// CalculationError wraps any failure at a public Calculator entry point.
// No partial result accompanies it.
type CalculationError struct {
	Op  string
	Err error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("calculate %s: %v", e.Op, e.Err)
}

func (e *CalculationError) Unwrap() error {
	return e.Err
}

func wrapCalculation(op string, err error) error {
	if err == nil {
		return nil
	}
	var calcErr *CalculationError
	if errors.As(err, &calcErr) && calcErr.Op == op {
		return err
	}
	return &CalculationError{Op: op, Err: err}
}

// recoverCalculation converts a panic inside the math into a CalculationError.
// It must be deferred directly by the entry point.
func recoverCalculation(op string, errp *error) {
	if r := recover(); r != nil {
		*errp = &CalculationError{Op: op, Err: fmt.Errorf("panic: %v", r)}
	}
}

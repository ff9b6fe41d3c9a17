package projection

import (
	"errors"
	"fmt"
)

var (
	ErrUndefinedMargin = errors.New("margin undefined: client price is zero")
	ErrUndefinedROI    = errors.New("roi undefined: total cost is zero")
	ErrUndefinedShare  = errors.New("cost share undefined: total cost is zero")
	ErrNoLineItems     = errors.New("no line items")
	ErrWrongItemCount  = errors.New("projection needs exactly three line items")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrNegativeMonths  = errors.New("negative months")
	ErrInvalidParams   = errors.New("invalid projection params")
)

// MarginError reports an undefined margin for a single row. It unwraps to
// ErrUndefinedMargin.
type MarginError struct {
	Row  int
	Name string
}

func (e *MarginError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row+1, e.Name, ErrUndefinedMargin)
}

func (e *MarginError) Unwrap() error {
	return ErrUndefinedMargin
}

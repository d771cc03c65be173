package selector

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions. Validation errors wrap one of these; errors raised by a
// filter expression are returned unchanged.
var (
	ErrInvalidSelectorType = errors.New("invalid selector type")
	ErrBounds              = errors.New("row selector out of bounds")
	ErrShape               = errors.New("invalid selector shape")
	ErrDtypeMismatch       = errors.New("selector dtype mismatch")
	ErrWraparound          = errors.New("wrap-around range")

	// Lifecycle errors
	ErrAlreadyBound     = errors.New("selector already bound")
	ErrAlreadyExecuted  = errors.New("selector already executed")
	ErrRowCountMismatch = errors.New("row count does not match bound selector")
	ErrNoFrame          = errors.New("work context has no frame")
)

// rows formats a row count as "1 row" or "n rows".
func rows(n int64) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

// formatShape renders a shape the way array libraries print it: (5,), (5, 2).
func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprint(d)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

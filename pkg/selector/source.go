package selector

import (
	"fmt"
	"math"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
)

// Unset marks an unspecified slice bound once a Slice has been compiled.
const Unset int64 = math.MinInt64

// Slice is a Python-style slice. A nil bound is unspecified; any other bound
// must be a Go integer.
//
//	Slice{}                  // :
//	Slice{Start: 2}          // 2:
//	Slice{Step: -1}          // ::-1
//	Slice{Start: 3, Stop: 4, Step: 0} // row 3, four times
type Slice struct {
	Start, Stop, Step any
}

func (s Slice) String() string {
	b := func(v any) string {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	if s.Step == nil {
		return b(s.Start) + ":" + b(s.Stop)
	}
	return b(s.Start) + ":" + b(s.Stop) + ":" + b(s.Step)
}

func (s Slice) trivial() bool {
	return s.Start == nil && s.Stop == nil && s.Step == nil
}

// bounds converts the slice bounds to int64, using Unset for nil. A bound
// that is not an integer is ErrDtypeMismatch; MinInt64 is reserved for Unset
// and is ErrBounds.
func (s Slice) bounds() (start, stop, step int64, err error) {
	var vals [3]int64
	for i, v := range [3]any{s.Start, s.Stop, s.Step} {
		if v == nil {
			vals[i] = Unset
			continue
		}
		x, ok := intValue(v)
		if !ok {
			return 0, 0, 0, fmt.Errorf("%w: slice %s is not integer-valued", ErrDtypeMismatch, s)
		}
		if x == Unset {
			return 0, 0, 0, fmt.Errorf("%w: slice %s has a bound of %d, which is out of range",
				ErrBounds, s, x)
		}
		vals[i] = x
	}
	return vals[0], vals[1], vals[2], nil
}

// Range is a Python-style range: no clipping, no defaults beyond those of
// NewRange.
type Range struct {
	Start, Stop, Step int64
}

// NewRange builds a Range from one, two or three arguments following the
// rules of Python's range(): (stop), (start, stop), (start, stop, step).
func NewRange(args ...int64) Range {
	switch len(args) {
	case 1:
		return Range{Start: 0, Stop: args[0], Step: 1}
	case 2:
		return Range{Start: args[0], Stop: args[1], Step: 1}
	case 3:
		return Range{Start: args[0], Stop: args[1], Step: args[2]}
	default:
		panic(fmt.Sprintf("selector.NewRange: expected 1 to 3 arguments, got %d", len(args)))
	}
}

func (r Range) String() string {
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}

// Ellipsis selects all rows, like nil.
type Ellipsis struct{}

func (Ellipsis) String() string { return "..." }

// FilterExpr is a row predicate evaluated against the frame being selected
// from. Compile takes ownership: the node closes the expression after
// execution, or when the selector is closed without executing.
type FilterExpr interface {
	// Resolve reports the result type of the expression over the frame.
	Resolve(wc *WorkContext) (column.Type, error)
	// EvaluateEager computes the expression for every row of the frame.
	EvaluateEager(wc *WorkContext) (dataframe.Series, error)
	// Close releases the expression.
	Close() error
}

// ArrayLike is an n-dimensional array that can be used as a row mask.
type ArrayLike interface {
	Shape() []int
	Dtype() string
	// Reshape returns the same data viewed as a one-dimensional array of n
	// elements.
	Reshape(n int) (ArrayLike, error)
	// Frame wraps the one-dimensional array as a single-column frame.
	Frame() (*dataframe.DataFrame, error)
}

// intValue converts a Go integer scalar to int64. Booleans are not integers.
func intValue(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return uintValue(x)
	default:
		return 0, false
	}
}

func uintValue(x uint64) (int64, bool) {
	if x > math.MaxInt64 {
		return 0, false
	}
	return int64(x), true
}

func isInt(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Package array provides a small row-major n-dimensional array that can be
// used as a row selector.
//
// Basic usage:
//
//	a, _ := array.FromBools([]bool{true, false, true}, 3, 1)
//	out, err := selector.Select(frame, a)
package array

import (
	"errors"
	"fmt"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
	"github.com/akhildatla/rowsel/pkg/selector"
)

// Error definitions
var (
	ErrShape      = errors.New("invalid array shape")
	ErrMixedTypes = errors.New("array columns must share one dtype")
)

// Dtype names reported by Dense.Dtype.
const (
	Bool    = "bool"
	Int64   = "int64"
	Float64 = "float64"
)

// ColumnName is the name of the single column produced by Frame.
const ColumnName = "C0"

// Dense is an immutable row-major array. Values hold bool, int64 or float64
// elements, or nil for a missing element.
type Dense struct {
	shape  []int
	dtype  string
	values []interface{}
}

var _ selector.ArrayLike = (*Dense)(nil)

// FromBools creates a boolean array. Without a shape the array is
// one-dimensional.
func FromBools(vals []bool, shape ...int) (*Dense, error) {
	return newDense(Bool, box(vals), shape)
}

// FromInts creates an int64 array.
func FromInts(vals []int64, shape ...int) (*Dense, error) {
	return newDense(Int64, box(vals), shape)
}

// FromFloats creates a float64 array.
func FromFloats(vals []float64, shape ...int) (*Dense, error) {
	return newDense(Float64, box(vals), shape)
}

// FromFrame creates a two-dimensional (rows, columns) array from the columns
// of df. All columns must classify to the same column type.
func FromFrame(df *dataframe.DataFrame) (*Dense, error) {
	if df == nil || len(df.Series) == 0 {
		return nil, fmt.Errorf("%w: frame has no columns", ErrShape)
	}
	want := column.TypeOf(df.Series[0])
	dtype, ok := dtypeOf(want)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported column type %s", ErrMixedTypes, want)
	}
	nrows := df.Series[0].NRows()
	ncols := len(df.Series)

	values := make([]interface{}, nrows*ncols)
	for j, s := range df.Series {
		if got := column.TypeOf(s); got != want {
			return nil, fmt.Errorf("%w: column %q is %s, expected %s", ErrMixedTypes, s.Name(), got, want)
		}
		for i := 0; i < nrows; i++ {
			values[i*ncols+j] = element(s, i, want)
		}
	}
	return &Dense{shape: []int{nrows, ncols}, dtype: dtype, values: values}, nil
}

func newDense(dtype string, values []interface{}, shape []int) (*Dense, error) {
	if len(shape) == 0 {
		shape = []int{len(values)}
	}
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		size *= d
	}
	if size != len(values) {
		return nil, fmt.Errorf("%w: %d elements do not fill shape %v", ErrShape, len(values), shape)
	}
	return &Dense{shape: append([]int(nil), shape...), dtype: dtype, values: values}, nil
}

func box[T bool | int64 | float64](vals []T) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

func dtypeOf(t column.Type) (string, bool) {
	switch t {
	case column.TypeBool:
		return Bool, true
	case column.TypeInt:
		return Int64, true
	case column.TypeFloat:
		return Float64, true
	}
	return "", false
}

// element reads row i of s as the element type of t.
func element(s dataframe.Series, i int, t column.Type) interface{} {
	switch t {
	case column.TypeBool:
		if v, ok := column.BoolValue(s, i); ok {
			return v
		}
		return nil
	case column.TypeInt:
		if v, ok := column.Int64Value(s, i); ok {
			return v
		}
		return nil
	default:
		v := s.Value(i)
		if v == nil {
			return nil
		}
		f, ok := v.(float64)
		if !ok {
			return nil
		}
		return f
	}
}

// Shape returns a copy of the array dimensions.
func (a *Dense) Shape() []int {
	return append([]int(nil), a.shape...)
}

// Dtype returns the element type name.
func (a *Dense) Dtype() string {
	return a.dtype
}

// Size returns the number of elements.
func (a *Dense) Size() int {
	return len(a.values)
}

// Reshape returns a one-dimensional view of the array with n elements. The
// element buffer is shared.
func (a *Dense) Reshape(n int) (selector.ArrayLike, error) {
	if n != len(a.values) {
		return nil, fmt.Errorf("%w: cannot reshape array of size %d into (%d,)", ErrShape, len(a.values), n)
	}
	return &Dense{shape: []int{n}, dtype: a.dtype, values: a.values}, nil
}

// Frame wraps a one-dimensional array as a single-column frame named C0.
func (a *Dense) Frame() (*dataframe.DataFrame, error) {
	if len(a.shape) != 1 {
		return nil, fmt.Errorf("%w: only a one-dimensional array converts to a frame, got %d dimensions",
			ErrShape, len(a.shape))
	}
	var s dataframe.Series
	switch a.dtype {
	case Bool:
		s = dataframe.NewSeriesGeneric(ColumnName, false, nil, a.values...)
	case Int64:
		s = dataframe.NewSeriesInt64(ColumnName, nil, a.values...)
	default:
		s = dataframe.NewSeriesFloat64(ColumnName, nil, a.values...)
	}
	return dataframe.NewDataFrame(s), nil
}

func (a *Dense) String() string {
	return fmt.Sprintf("Dense(%s, shape=%v)", a.dtype, a.shape)
}

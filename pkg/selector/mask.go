package selector

import (
	"fmt"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
)

// newFrameMask checks the parts of a mask frame that do not depend on the
// target frame: one column, boolean or integer.
func newFrameMask(df *dataframe.DataFrame) (Node, error) {
	if df == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidSelectorType)
	}
	if len(df.Series) != 1 {
		return nil, fmt.Errorf("%w: only a single-column frame may be used as a row selector, "+
			"instead got a frame with %d columns", ErrDtypeMismatch, len(df.Series))
	}
	s := df.Series[0]
	if t := column.TypeOf(s); !t.IsMask() {
		return nil, fmt.Errorf("%w: a frame used as a row selector should be either boolean or integer, "+
			"instead got `%s`", ErrDtypeMismatch, s.Type())
	}
	return FrameMask{Frame: df}, nil
}

// check validates the mask against n rows. A boolean mask must cover the
// frame exactly; an integer mask must hold rows in [-1, n).
func (m FrameMask) check(n int64) error {
	s := m.Frame.Series[0]
	if column.TypeOf(s) == column.TypeBool {
		if got := int64(s.NRows()); got != n {
			return fmt.Errorf("%w: a boolean column used as a row selector has %s, "+
				"but applied to a frame with %s", ErrBounds, rows(got), rows(n))
		}
		return nil
	}
	min, max, ok := column.MinMaxInt(s)
	if !ok {
		return nil
	}
	if min < -1 {
		return fmt.Errorf("%w: an integer column used as a row selector contains invalid negative index %d "+
			"(frame has %s)", ErrBounds, min, rows(n))
	}
	if max >= n {
		return fmt.Errorf("%w: an integer column used as a row selector contains index %d "+
			"which is not valid for a frame with %s", ErrBounds, max, rows(n))
	}
	return nil
}

// newArrayMask reduces an array to one dimension and wraps it as a mask
// frame.
func newArrayMask(a ArrayLike) (Node, error) {
	shape := a.Shape()
	orig := formatShape(shape)
	if len(shape) == 2 && (shape[0] == 1 || shape[1] == 1) {
		flat, err := a.Reshape(shape[0] * shape[1])
		if err != nil {
			return nil, fmt.Errorf("%w: cannot reshape array of shape %s: %v", ErrShape, orig, err)
		}
		a = flat
		shape = a.Shape()
	}
	if len(shape) != 1 {
		return nil, fmt.Errorf("%w: only a one-dimensional array may be used as a row selector, "+
			"got array of shape %s", ErrShape, orig)
	}
	dtype := a.Dtype()
	if !column.ClassifyDtype(dtype).IsMask() {
		return nil, fmt.Errorf("%w: either a boolean or an integer array expected for a row selector, "+
			"got array of dtype `%s`", ErrDtypeMismatch, dtype)
	}
	df, err := a.Frame()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot convert array to a frame: %v", ErrShape, err)
	}
	return newFrameMask(df)
}

// Package rowindex defines the canonical positional selection produced by the
// row selector: an arithmetic progression, an explicit list of rows, or a
// mask column.
//
// Basic usage:
//
//	ix, _ := rowindex.NewArithmetic(2, 3, 1) // rows 2, 3, 4
//	out, err := rowindex.Take(frame, ix)
package rowindex

import (
	"errors"
	"fmt"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
)

// Error definitions
var (
	ErrInvalidIndex = errors.New("invalid row index")
	ErrOutOfRange   = errors.New("row index out of range")
)

// Index is a resolved row selection. It is implemented by Arithmetic,
// Explicit and Mask only.
type Index interface {
	// Len returns the number of rows the index selects.
	Len() int
	// Positions materializes the selected row numbers in output order.
	Positions() []int64
	String() string
	isIndex()
}

// Arithmetic selects rows Start, Start+Step, ... for Count terms.
type Arithmetic struct {
	Start int
	Count int
	Step  int
}

// NewArithmetic validates and returns an arithmetic index.
// Step may be negative, but never zero unless Count is at most 1.
func NewArithmetic(start, count, step int) (Arithmetic, error) {
	if start < 0 || count < 0 {
		return Arithmetic{}, fmt.Errorf("%w: start=%d count=%d", ErrInvalidIndex, start, count)
	}
	if step == 0 && count > 1 {
		return Arithmetic{}, fmt.Errorf("%w: zero step with count=%d", ErrInvalidIndex, count)
	}
	if count > 0 && start+(count-1)*step < 0 {
		return Arithmetic{}, fmt.Errorf("%w: progression (%d, %d, %d) runs below zero",
			ErrInvalidIndex, start, count, step)
	}
	return Arithmetic{Start: start, Count: count, Step: step}, nil
}

func (Arithmetic) isIndex() {}

// Len implements Index.
func (a Arithmetic) Len() int { return a.Count }

// Positions implements Index.
func (a Arithmetic) Positions() []int64 {
	out := make([]int64, a.Count)
	for i := range out {
		out[i] = int64(a.Start + i*a.Step)
	}
	return out
}

func (a Arithmetic) String() string {
	return fmt.Sprintf("Arithmetic(start=%d, count=%d, step=%d)", a.Start, a.Count, a.Step)
}

// Explicit selects the listed rows in order. Duplicates are allowed.
type Explicit struct {
	Indices []int64
}

func (Explicit) isIndex() {}

// Len implements Index.
func (e Explicit) Len() int { return len(e.Indices) }

// Positions implements Index. The returned slice is shared with e.
func (e Explicit) Positions() []int64 { return e.Indices }

func (e Explicit) String() string {
	const preview = 8
	if len(e.Indices) <= preview {
		return fmt.Sprintf("Explicit%v", e.Indices)
	}
	return fmt.Sprintf("Explicit%v... (%d rows)", e.Indices[:preview], len(e.Indices))
}

// Mask selects rows through a column. A boolean column selects the rows where
// it is true; an integer column lists row numbers, with -1 (or nil) standing
// for a missing row.
type Mask struct {
	Column dataframe.Series
}

// NewMask validates that col is a boolean or integer column.
func NewMask(col dataframe.Series) (Mask, error) {
	if t := column.TypeOf(col); !t.IsMask() {
		return Mask{}, fmt.Errorf("%w: mask column must be bool or int, got %s", ErrInvalidIndex, t)
	}
	return Mask{Column: col}, nil
}

func (Mask) isIndex() {}

// IsBool reports whether the mask is a boolean column.
func (m Mask) IsBool() bool {
	return column.TypeOf(m.Column) == column.TypeBool
}

// Len implements Index.
func (m Mask) Len() int {
	if m.IsBool() {
		return column.BitmapOf(m.Column).PopCount()
	}
	return column.Len(m.Column)
}

// Positions implements Index.
func (m Mask) Positions() []int64 {
	if m.IsBool() {
		return column.BitmapOf(m.Column).Positions()
	}
	n := column.Len(m.Column)
	out := make([]int64, n)
	for i := 0; i < n; i++ {
		v, ok := column.Int64Value(m.Column, i)
		if !ok {
			v = -1
		}
		out[i] = v
	}
	return out
}

func (m Mask) String() string {
	return fmt.Sprintf("Mask(%s %s, %d rows)", column.TypeOf(m.Column), m.Column.Name(), column.Len(m.Column))
}

// Take applies ix to df and returns a new frame holding the selected rows.
// A nil index selects every row and returns df itself.
func Take(df *dataframe.DataFrame, ix Index) (*dataframe.DataFrame, error) {
	if ix == nil {
		return df, nil
	}
	nrows := frameRows(df)
	if m, ok := ix.(Mask); ok && m.IsBool() && column.Len(m.Column) != nrows {
		return nil, fmt.Errorf("%w: boolean mask has %d rows, frame has %d",
			ErrOutOfRange, column.Len(m.Column), nrows)
	}

	_, allowNA := ix.(Mask)
	rows := ix.Positions()
	for _, r := range rows {
		if r >= int64(nrows) || r < -1 || (r == -1 && !allowNA) {
			return nil, fmt.Errorf("%w: row %d for a frame with %d rows", ErrOutOfRange, r, nrows)
		}
	}

	if df == nil {
		return dataframe.NewDataFrame(), nil
	}
	series := make([]dataframe.Series, len(df.Series))
	for i, s := range df.Series {
		series[i] = column.Gather(s, rows)
	}
	return dataframe.NewDataFrame(series...), nil
}

func frameRows(df *dataframe.DataFrame) int {
	if df == nil || len(df.Series) == 0 {
		return 0
	}
	return df.Series[0].NRows()
}

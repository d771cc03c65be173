// Package selector compiles row selectors into positional row indices.
//
// A selector source may be a slice, a range, an integer, nil or Ellipsis, a
// single-column mask frame or series, an array, a filter expression, or a
// list mixing integers, slices and ranges. Resolution happens in three steps
// so that the dependence on the frame's row count is explicit:
//
//	u, err := selector.Compile([]any{0, selector.NewRange(1, 3), selector.Slice{Step: -1}})
//	b, err := u.Bind(frame.NRows())
//	wc := selector.NewWorkContext(frame)
//	err = b.Execute(wc)
//	out, err := wc.Result()
//
// Select runs all steps at once.
package selector

import (
	"fmt"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
	"github.com/akhildatla/rowsel/pkg/rowindex"
)

// Unbound is a compiled selector whose row-count dependent checks have not
// run yet.
type Unbound struct {
	node   Node
	rule   string
	bound  bool
	closed bool
}

// Compile classifies src into a selector node and performs every check that
// does not need the frame.
func Compile(src any) (*Unbound, error) {
	n, rule, err := dispatch(src)
	if err != nil {
		return nil, err
	}
	return &Unbound{node: n, rule: rule}, nil
}

// Node returns the compiled node.
func (u *Unbound) Node() Node {
	return u.node
}

// Rule returns the name of the dispatch rule that matched the source.
func (u *Unbound) Rule() string {
	return u.rule
}

// Close releases a filter expression owned by the selector. It is a no-op
// once Bind has succeeded, as ownership has moved to the Bound selector.
func (u *Unbound) Close() error {
	if u.bound || u.closed {
		return nil
	}
	u.closed = true
	return closeNode(u.node)
}

// Bound is a selector validated against a row count. It is immutable apart
// from being executed once.
type Bound struct {
	node     Node
	nrows    int64
	arith    rowindex.Arithmetic
	spans    []span
	executed bool
}

// Bind validates the selector against a frame of nrows rows. An Unbound may
// be bound once.
func (u *Unbound) Bind(nrows int) (*Bound, error) {
	if u.bound {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyBound, u.node)
	}
	if u.closed {
		return nil, fmt.Errorf("%w: %s was closed", ErrAlreadyExecuted, u.node)
	}
	if nrows < 0 {
		return nil, fmt.Errorf("%w: negative row count %d", ErrBounds, nrows)
	}
	b := &Bound{node: u.node, nrows: int64(nrows)}
	if err := b.bind(); err != nil {
		return nil, err
	}
	u.bound = true
	return b, nil
}

func (b *Bound) bind() error {
	n := b.nrows
	switch node := b.node.(type) {
	case AllRows, FilterExpression:
		return nil

	case OneRow:
		i := node.Index
		if i < -n || i >= n {
			return fmt.Errorf("%w: row `%d` is invalid for a frame with %s", ErrBounds, i, rows(n))
		}
		if i < 0 {
			i += n
		}
		return b.setArith(i, 1, 1)

	case RangeOrSlice:
		if node.Step == 0 {
			return fmt.Errorf("%w: %s has a zero step", ErrShape, node)
		}
		if !node.Strict {
			return b.setArith(normalizeSlice(n, node.Start, node.Stop, node.Step))
		}
		return b.bindRange(node)

	case FrameMask:
		return node.check(n)

	case MultiSelector:
		spans, err := node.resolve(n)
		if err != nil {
			return err
		}
		b.spans = spans
		return nil

	default:
		return fmt.Errorf("%w: unknown node %T", ErrInvalidSelectorType, b.node)
	}
}

// bindRange resolves a strict range: empty ranges select nothing, negative
// bounds count from the end, and the whole range must fit the frame.
func (b *Bound) bindRange(r RangeOrSlice) error {
	n := b.nrows
	count, last, ok := rangeTerms(r.Start, r.Stop, r.Step)
	if !ok {
		return b.setArith(0, 0, r.Step)
	}
	if err := checkWraparound(r.Start, r.Stop, r.Step, last); err != nil {
		return err
	}
	if rowsNeeded(r.Start) > n || rowsNeeded(last) > n {
		return fmt.Errorf("%w: range(%d, %d, %d) cannot be applied to a frame with %s",
			ErrBounds, r.Start, r.Stop, r.Step, rows(n))
	}
	start := r.Start
	if start < 0 {
		start += n
	}
	// Both ends lie inside the frame, so count is at most n.
	return b.setArith(start, int64(count), r.Step)
}

func (b *Bound) setArith(start, count, step int64) error {
	a, err := rowindex.NewArithmetic(int(start), int(count), int(step))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBounds, err)
	}
	b.arith = a
	return nil
}

// Node returns the bound node.
func (b *Bound) Node() Node {
	return b.node
}

// NRows returns the row count the selector was bound to.
func (b *Bound) NRows() int {
	return int(b.nrows)
}

// Execute resolves the selector into a row index and applies it to wc.
// It may run once, on a context with the bound row count. AllRows applies
// nothing.
func (b *Bound) Execute(wc *WorkContext) error {
	if b.executed {
		return fmt.Errorf("%w: %s", ErrAlreadyExecuted, b.node)
	}
	b.executed = true

	if wc.nrows != b.nrows {
		closeNode(b.node)
		return fmt.Errorf("%w: selector bound to a frame with %s, executed on a frame with %s",
			ErrRowCountMismatch, rows(b.nrows), rows(wc.nrows))
	}
	wc.logger.Debug("executing row selector", "node", b.node.String(), "rows", b.nrows)

	switch node := b.node.(type) {
	case AllRows:
		return nil
	case OneRow, RangeOrSlice:
		return wc.ApplyRowIndex(b.arith)
	case FilterExpression:
		return executeFilter(wc, node.Expr)
	case FrameMask:
		m, err := rowindex.NewMask(node.Frame.Series[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDtypeMismatch, err)
		}
		return wc.ApplyRowIndex(m)
	case MultiSelector:
		return wc.ApplyRowIndex(materialize(b.spans))
	default:
		return fmt.Errorf("%w: unknown node %T", ErrInvalidSelectorType, b.node)
	}
}

// Close releases a filter expression that was never executed.
func (b *Bound) Close() error {
	if b.executed {
		return nil
	}
	b.executed = true
	return closeNode(b.node)
}

// executeFilter checks the result type before evaluating anything, turns the
// evaluated column into an explicit index and closes the expression on every
// path.
func executeFilter(wc *WorkContext, f FilterExpr) (err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if wc.frame == nil {
		return fmt.Errorf("%w: a filter expression needs column data", ErrNoFrame)
	}
	t, err := f.Resolve(wc)
	if err != nil {
		return err
	}
	if t != column.TypeBool {
		return fmt.Errorf("%w: filter expression must be of `bool` type, instead it was of type `%s`",
			ErrDtypeMismatch, t)
	}
	col, err := f.EvaluateEager(wc)
	if err != nil {
		return err
	}
	if got := int64(column.Len(col)); got != wc.nrows {
		return fmt.Errorf("%w: filter expression produced %s for a frame with %s",
			ErrBounds, rows(got), rows(wc.nrows))
	}
	ix := rowindex.Explicit{Indices: column.BitmapOf(col).Positions()}
	return wc.ApplyRowIndex(ix)
}

func closeNode(n Node) error {
	if f, ok := n.(FilterExpression); ok && f.Expr != nil {
		return f.Expr.Close()
	}
	return nil
}

// Select compiles src, binds it to df and returns the selected rows.
func Select(df *dataframe.DataFrame, src any, opts ...Option) (*dataframe.DataFrame, error) {
	wc := NewWorkContext(df, opts...)
	if err := run(wc, src); err != nil {
		return nil, err
	}
	return wc.Result()
}

// Resolve compiles src and resolves it against a frame of nrows rows without
// touching column data. A nil index means all rows.
func Resolve(src any, nrows int, opts ...Option) (rowindex.Index, error) {
	wc := NewRowCountContext(nrows, opts...)
	if err := run(wc, src); err != nil {
		return nil, err
	}
	ix, _ := wc.RowIndex()
	return ix, nil
}

func run(wc *WorkContext, src any) error {
	u, err := Compile(src)
	if err != nil {
		return err
	}
	defer u.Close()
	wc.logger.Debug("row selector compiled", "rule", u.Rule(), "node", u.Node().String())

	b, err := u.Bind(wc.NRows())
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Execute(wc)
}

package selector

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/internal/testutil"
	"github.com/akhildatla/rowsel/pkg/column"
	"github.com/akhildatla/rowsel/pkg/rowindex"
)

// fakeArray is a minimal ArrayLike over bool or int64 data.
type fakeArray struct {
	shape []int
	dtype string
	bools []bool
	ints  []int64
}

func (a *fakeArray) Shape() []int  { return a.shape }
func (a *fakeArray) Dtype() string { return a.dtype }

func (a *fakeArray) Reshape(n int) (ArrayLike, error) {
	size := 1
	for _, d := range a.shape {
		size *= d
	}
	if size != n {
		return nil, fmt.Errorf("cannot reshape %d elements into %d", size, n)
	}
	return &fakeArray{shape: []int{n}, dtype: a.dtype, bools: a.bools, ints: a.ints}, nil
}

func (a *fakeArray) Frame() (*dataframe.DataFrame, error) {
	if a.bools != nil {
		return testutil.BoolFrame(a.bools...), nil
	}
	return testutil.IntFrame(a.ints...), nil
}

// fakeFilter records how the engine drives a filter expression.
type fakeFilter struct {
	typ       column.Type
	values    []bool
	evaluated int
	closed    int
}

func (f *fakeFilter) Resolve(*WorkContext) (column.Type, error) { return f.typ, nil }

func (f *fakeFilter) EvaluateEager(*WorkContext) (dataframe.Series, error) {
	f.evaluated++
	return column.NewBool("filter", f.values), nil
}

func (f *fakeFilter) Close() error {
	f.closed++
	return nil
}

func selectIDs(t *testing.T, n int, src any) []int64 {
	t.Helper()
	out, err := Select(testutil.MakeFrame(n), src)
	if err != nil {
		t.Fatalf("Select(%v) on %d rows failed: %v", src, n, err)
	}
	return testutil.IDs(t, out)
}

func seq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}

func TestDispatch_Order(t *testing.T) {
	var items iter.Seq[any] = func(yield func(any) bool) {
		_ = yield(1) && yield(2)
	}

	tests := []struct {
		name string
		src  any
		rule string
		node Node
	}{
		{"trivial slice", Slice{}, "trivial slice", AllRows{}},
		{"slice", Slice{Start: 2}, "slice", RangeOrSlice{Start: 2, Stop: Unset, Step: Unset}},
		{"zero step slice", Slice{Start: 1, Stop: 2, Step: 0}, "slice",
			MultiSelector{Items: []Item{{Kind: ItemSlice, Start: 1, Stop: 2, Step: 0}}}},
		{"int", 3, "integer", OneRow{Index: 3}},
		{"negative int8", int8(-2), "integer", OneRow{Index: -2}},
		{"nil", nil, "all rows", AllRows{}},
		{"ellipsis", Ellipsis{}, "all rows", AllRows{}},
		{"range", NewRange(5), "range", RangeOrSlice{Start: 0, Stop: 5, Step: 1, Strict: true}},
		{"list", []int{1, 2}, "iterable", MultiSelector{
			Items:   []Item{{Kind: ItemInt, Start: 1}, {Kind: ItemInt, Start: 2}},
			MinRows: 3,
		}},
		{"seq", items, "iterable", MultiSelector{
			Items:   []Item{{Kind: ItemInt, Start: 1}, {Kind: ItemInt, Start: 2}},
			MinRows: 3,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			if u.Rule() != tt.rule {
				t.Errorf("expected rule %q, got %q", tt.rule, u.Rule())
			}
			if diff := cmp.Diff(tt.node, u.Node()); diff != "" {
				t.Errorf("node mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatch_FrameBeforeIterable(t *testing.T) {
	u, err := Compile(testutil.BoolFrame(true, false))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := u.Node().(FrameMask); !ok {
		t.Errorf("expected FrameMask, got %T", u.Node())
	}

	u, err = Compile(dataframe.NewSeriesInt64("rows", nil, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := u.Node().(FrameMask); !ok {
		t.Errorf("expected FrameMask for a series, got %T", u.Node())
	}

	u, err = Compile(&fakeArray{shape: []int{2}, dtype: "bool", bools: []bool{true, false}})
	if err != nil {
		t.Fatal(err)
	}
	if u.Rule() != "array" {
		t.Errorf("expected array rule, got %q", u.Rule())
	}
}

func TestDispatch_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want error
	}{
		{"bool", true, ErrInvalidSelectorType},
		{"string", "rows", ErrInvalidSelectorType},
		{"float", 1.5, ErrInvalidSelectorType},
		{"map", map[string]int{}, ErrInvalidSelectorType},
		{"float slice bound", Slice{Start: 1.5}, ErrDtypeMismatch},
		{"string slice bound", Slice{Stop: "a"}, ErrDtypeMismatch},
		{"huge uint", uint64(1 << 63), ErrBounds},
		{"zero step range", Range{Start: 0, Stop: 5, Step: 0}, ErrShape},
		{"wraparound range", NewRange(-3, 2), ErrWraparound},
		{"zero step slice without start", Slice{Stop: 3, Step: 0}, ErrShape},
		{"zero step slice negative stop", Slice{Start: 1, Stop: -1, Step: 0}, ErrShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAllRows(t *testing.T) {
	for n := 0; n <= 6; n++ {
		for _, src := range []any{nil, Ellipsis{}, Slice{}} {
			if diff := cmp.Diff(seq(n), selectIDs(t, n, src)); diff != "" {
				t.Errorf("n=%d src=%v (-want +got):\n%s", n, src, diff)
			}
		}
	}
}

func TestAllRows_LeavesFrameUntouched(t *testing.T) {
	df := testutil.MakeFrame(4)
	wc := NewWorkContext(df)
	u, _ := Compile(nil)
	b, err := u.Bind(wc.NRows())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Execute(wc); err != nil {
		t.Fatal(err)
	}
	if _, ok := wc.RowIndex(); ok {
		t.Error("all-rows selector should not apply an index")
	}
	out, err := wc.Result()
	if err != nil {
		t.Fatal(err)
	}
	if out != df || wc.NRows() != 4 {
		t.Error("all-rows selector must return the frame unchanged")
	}
}

func TestOneRow(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for i := -n - 2; i < n+2; i++ {
			ix, err := Resolve(i, n)
			if i < -n || i >= n {
				if !errors.Is(err, ErrBounds) {
					t.Errorf("n=%d i=%d: expected ErrBounds, got %v", n, i, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("n=%d i=%d: %v", n, i, err)
			}
			want := int64(i)
			if i < 0 {
				want += int64(n)
			}
			if diff := cmp.Diff(rowindex.Arithmetic{Start: int(want), Count: 1, Step: 1}, ix); diff != "" {
				t.Errorf("n=%d i=%d (-want +got):\n%s", n, i, diff)
			}
		}
	}
}

func TestOneRow_ErrorMessage(t *testing.T) {
	_, err := Resolve(7, 5)
	if err == nil || err.Error() != "row selector out of bounds: row `7` is invalid for a frame with 5 rows" {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		slice Slice
		want  []int64
	}{
		{"unbounded", 5, Slice{Start: nil, Stop: nil, Step: 1}, []int64{0, 1, 2, 3, 4}},
		{"from two", 5, Slice{Start: 2}, []int64{2, 3, 4}},
		{"reverse", 4, Slice{Step: -1}, []int64{3, 2, 1, 0}},
		{"negative start", 5, Slice{Start: -2}, []int64{3, 4}},
		{"stop clipped", 3, Slice{Start: 1, Stop: 100}, []int64{1, 2}},
		{"start clipped", 3, Slice{Start: -100, Stop: 2}, []int64{0, 1}},
		{"stride", 10, Slice{Start: 1, Stop: 8, Step: 3}, []int64{1, 4, 7}},
		{"reverse stride", 10, Slice{Start: 8, Stop: 1, Step: -3}, []int64{8, 5, 2}},
		{"reverse clipped", 3, Slice{Start: 50, Stop: -50, Step: -1}, []int64{2, 1, 0}},
		{"empty", 5, Slice{Start: 3, Stop: 1}, []int64{}},
		{"past end", 5, Slice{Start: 7}, []int64{}},
		{"empty frame", 0, Slice{Start: 1, Step: -1}, []int64{}},
		{"zero step repeats", 5, Slice{Start: 3, Stop: 4, Step: 0}, []int64{3, 3, 3, 3}},
		{"zero step negative start", 5, Slice{Start: -1, Stop: 2, Step: 0}, []int64{4, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, selectIDs(t, tt.n, tt.slice)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestSlice_EquivalentToTrivial(t *testing.T) {
	for n := 0; n <= 5; n++ {
		ix, err := Resolve(Slice{Start: nil, Stop: nil, Step: -1}, n)
		if err != nil {
			t.Fatal(err)
		}
		if ix.Len() != n {
			t.Errorf("n=%d: expected %d rows, got %d", n, n, ix.Len())
		}
		// A fully unspecified slice with an explicit step of 1 is the identity.
		ix, err = Resolve(Slice{Step: 1}, n)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(seq(n), ix.Positions()); diff != "" {
			t.Errorf("n=%d (-want +got):\n%s", n, diff)
		}
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		name string
		n    int
		r    Range
		want []int64
	}{
		{"stride", 100, NewRange(0, 10, 3), []int64{0, 3, 6, 9}},
		{"reverse to zero", 5, NewRange(4, -1, -1), []int64{4, 3, 2, 1, 0}},
		{"negative", 5, NewRange(-1, -4, -1), []int64{4, 3, 2}},
		{"negative forward", 5, NewRange(-3, -1), []int64{2, 3}},
		{"empty", 5, NewRange(3, 3), []int64{}},
		{"empty backward", 5, NewRange(0, 3, -1), []int64{}},
		{"whole frame", 3, NewRange(3), []int64{0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, selectIDs(t, tt.n, tt.r)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestRange_Errors(t *testing.T) {
	u, err := Compile(NewRange(0, 10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Bind(5); !errors.Is(err, ErrBounds) {
		t.Errorf("expected ErrBounds for range past the frame, got %v", err)
	}

	u, err = Compile(NewRange(-6, -1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Bind(5); !errors.Is(err, ErrBounds) {
		t.Errorf("expected ErrBounds for negative range past the frame, got %v", err)
	}

	if _, err := Compile(NewRange(-3, 2, 1)); !errors.Is(err, ErrWraparound) {
		t.Errorf("expected ErrWraparound, got %v", err)
	}
	if _, err := Compile(NewRange(2, -3, -1)); !errors.Is(err, ErrWraparound) {
		t.Errorf("expected ErrWraparound for descending range, got %v", err)
	}
}

func TestMultiSelector(t *testing.T) {
	tests := []struct {
		name string
		n    int
		src  any
		want []int64
	}{
		{"mixed", 4, []any{0, NewRange(1, 3), Slice{Step: -1}}, []int64{0, 1, 2, 3, 2, 1, 0}},
		{"duplicates", 3, []int{2, 2, 0}, []int64{2, 2, 0}},
		{"negative ints", 5, []int64{-1, -5}, []int64{4, 0}},
		{"empty range skipped", 3, []any{NewRange(5, 0), 1}, []int64{1}},
		{"negative range", 5, []any{NewRange(-1, -4, -1)}, []int64{4, 3, 2}},
		{"clipped slice", 3, []any{Slice{Start: 1, Stop: 10}}, []int64{1, 2}},
		{"zero step", 4, []any{Slice{Start: 1, Stop: 3, Step: 0}, 0}, []int64{1, 1, 1, 0}},
		{"zero step zero times", 2, []any{Slice{Start: 9, Stop: 0, Step: 0}}, []int64{}},
		{"empty list", 3, []any{}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, selectIDs(t, tt.n, tt.src)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestMultiSelector_ExplicitIndex(t *testing.T) {
	ix, err := Resolve([]any{0, NewRange(1, 3), Slice{Step: -1}}, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := rowindex.Explicit{Indices: []int64{0, 1, 2, 3, 2, 1, 0}}
	if diff := cmp.Diff(want, ix); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestMultiSelector_MinRows(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		minRows int64
	}{
		{"positive int", []int{4}, 5},
		{"negative int", []int{-3}, 3},
		{"range end", []any{NewRange(2, 7, 2)}, 7},
		{"negative range", []any{NewRange(-2, -6, -1)}, 5},
		{"slices do not count", []any{Slice{Start: 50}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Compile(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			m := u.Node().(MultiSelector)
			if m.MinRows != tt.minRows {
				t.Errorf("expected MinRows %d, got %d", tt.minRows, m.MinRows)
			}
		})
	}

	u, _ := Compile([]int{0, 4})
	_, err := u.Bind(4)
	if !errors.Is(err, ErrBounds) {
		t.Fatalf("expected ErrBounds, got %v", err)
	}
	want := "row selector out of bounds: row selector is valid for a frame with at least 5 rows, got a frame with 4 rows"
	if err.Error() != want {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestMultiSelector_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want error
	}{
		{"bool item", []any{0, true}, ErrInvalidSelectorType},
		{"string item", []any{"a"}, ErrInvalidSelectorType},
		{"nested list", []any{[]int{1}}, ErrInvalidSelectorType},
		{"wraparound range", []any{NewRange(-2, 2)}, ErrWraparound},
		{"zero step range", []any{Range{Start: 1, Stop: 2}}, ErrShape},
		{"zero step slice missing stop", []any{Slice{Start: 1, Step: 0}}, ErrShape},
		{"float slice", []any{Slice{Step: 0.5}}, ErrDtypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.src); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	u, err := Compile([]any{Slice{Start: 5, Stop: 2, Step: 0}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Bind(3); !errors.Is(err, ErrBounds) {
		t.Errorf("expected ErrBounds for repeated row outside the frame, got %v", err)
	}
}

func TestFrameMask(t *testing.T) {
	boolIDs := selectIDs(t, 4, testutil.BoolFrame(true, false, false, true))
	if diff := cmp.Diff([]int64{0, 3}, boolIDs); diff != "" {
		t.Errorf("bool mask (-want +got):\n%s", diff)
	}

	intIDs := selectIDs(t, 4, testutil.IntFrame(3, 3, -1, 0))
	if diff := cmp.Diff([]int64{3, 3, -1, 0}, intIDs); diff != "" {
		t.Errorf("int mask (-want +got):\n%s", diff)
	}

	ix, err := Resolve(testutil.IntFrame(1, 0), 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ix.(rowindex.Mask); !ok {
		t.Errorf("expected a Mask index, got %T", ix)
	}
}

func TestFrameMask_Errors(t *testing.T) {
	twoCols := dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("a", nil, 1),
		dataframe.NewSeriesInt64("b", nil, 1),
	)
	floats := dataframe.NewDataFrame(dataframe.NewSeriesFloat64("f", nil, 1.0))

	if _, err := Compile(twoCols); !errors.Is(err, ErrDtypeMismatch) {
		t.Errorf("expected ErrDtypeMismatch for two columns, got %v", err)
	}
	if _, err := Compile(floats); !errors.Is(err, ErrDtypeMismatch) {
		t.Errorf("expected ErrDtypeMismatch for float column, got %v", err)
	}

	tests := []struct {
		name string
		mask *dataframe.DataFrame
		n    int
		msg  string
	}{
		{"bool length", testutil.BoolFrame(true, false, true), 5,
			"row selector out of bounds: a boolean column used as a row selector has 3 rows, but applied to a frame with 5 rows"},
		{"int max equals n", testutil.IntFrame(0, 5), 5,
			"row selector out of bounds: an integer column used as a row selector contains index 5 which is not valid for a frame with 5 rows"},
		{"int below sentinel", testutil.IntFrame(-2, 1), 5,
			"row selector out of bounds: an integer column used as a row selector contains invalid negative index -2 (frame has 5 rows)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Compile(tt.mask)
			if err != nil {
				t.Fatal(err)
			}
			_, err = u.Bind(tt.n)
			if !errors.Is(err, ErrBounds) {
				t.Fatalf("expected ErrBounds, got %v", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("unexpected message:\n got: %s\nwant: %s", err, tt.msg)
			}
		})
	}
}

func TestArrayAdapter(t *testing.T) {
	vals := []bool{true, false, true, true, false}
	column2D := &fakeArray{shape: []int{5, 1}, dtype: "bool", bools: vals}
	row2D := &fakeArray{shape: []int{1, 5}, dtype: "bool", bools: vals}

	want := selectIDs(t, 5, testutil.BoolFrame(vals...))
	for _, a := range []*fakeArray{column2D, row2D} {
		got := selectIDs(t, 5, a)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("shape %v (-want +got):\n%s", a.shape, diff)
		}
	}

	ints := &fakeArray{shape: []int{3}, dtype: "int32", ints: []int64{2, 0, 2}}
	if diff := cmp.Diff([]int64{2, 0, 2}, selectIDs(t, 3, ints)); diff != "" {
		t.Errorf("int array (-want +got):\n%s", diff)
	}
}

func TestArrayAdapter_Errors(t *testing.T) {
	_, err := Compile(&fakeArray{shape: []int{5, 2}, dtype: "bool"})
	if !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape, got %v", err)
	}
	if want := "invalid selector shape: only a one-dimensional array may be used as a row selector, got array of shape (5, 2)"; err.Error() != want {
		t.Errorf("unexpected message: %v", err)
	}

	if _, err := Compile(&fakeArray{shape: []int{2, 2, 1}, dtype: "bool"}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape for 3-D array, got %v", err)
	}

	_, err = Compile(&fakeArray{shape: []int{3}, dtype: "float64"})
	if !errors.Is(err, ErrDtypeMismatch) {
		t.Fatalf("expected ErrDtypeMismatch, got %v", err)
	}
	if want := "selector dtype mismatch: either a boolean or an integer array expected for a row selector, got array of dtype `float64`"; err.Error() != want {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestFilterExpression(t *testing.T) {
	f := &fakeFilter{typ: column.TypeBool, values: []bool{false, true, true, false}}
	if diff := cmp.Diff([]int64{1, 2}, selectIDs(t, 4, f)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if f.closed != 1 {
		t.Errorf("expected the expression to be closed once, got %d", f.closed)
	}
}

func TestFilterExpression_NotBool(t *testing.T) {
	f := &fakeFilter{typ: column.TypeInt}
	_, err := Select(testutil.MakeFrame(3), f)
	if !errors.Is(err, ErrDtypeMismatch) {
		t.Fatalf("expected ErrDtypeMismatch, got %v", err)
	}
	if f.evaluated != 0 {
		t.Errorf("expression must not be evaluated, got %d evaluations", f.evaluated)
	}
	if f.closed != 1 {
		t.Errorf("expected the expression to be closed once, got %d", f.closed)
	}
}

func TestFilterExpression_ClosedWithoutExecute(t *testing.T) {
	f := &fakeFilter{typ: column.TypeBool}
	u, err := Compile(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Close(); err != nil {
		t.Fatal(err)
	}
	if err := u.Close(); err != nil {
		t.Fatal(err)
	}
	if f.closed != 1 {
		t.Errorf("expected one Close, got %d", f.closed)
	}

	f = &fakeFilter{typ: column.TypeBool}
	u, _ = Compile(f)
	b, err := u.Bind(2)
	if err != nil {
		t.Fatal(err)
	}
	u.Close()
	if f.closed != 0 {
		t.Error("Unbound.Close must not release an expression owned by a Bound selector")
	}
	b.Close()
	if f.closed != 1 {
		t.Errorf("expected one Close, got %d", f.closed)
	}
}

func TestFilterExpression_NeedsFrame(t *testing.T) {
	f := &fakeFilter{typ: column.TypeBool, values: []bool{true}}
	if _, err := Resolve(f, 1); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}
	if f.closed != 1 {
		t.Errorf("expected the expression to be closed, got %d", f.closed)
	}
}

func TestLifecycle(t *testing.T) {
	u, err := Compile(1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := u.Bind(3)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Bind(3); !errors.Is(err, ErrAlreadyBound) {
		t.Errorf("expected ErrAlreadyBound, got %v", err)
	}

	if err := b.Execute(NewRowCountContext(4)); !errors.Is(err, ErrRowCountMismatch) {
		t.Errorf("expected ErrRowCountMismatch, got %v", err)
	}
	if err := b.Execute(NewRowCountContext(3)); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("expected ErrAlreadyExecuted, got %v", err)
	}

	u, _ = Compile(0)
	b, _ = u.Bind(3)
	wc := NewRowCountContext(3)
	if err := b.Execute(wc); err != nil {
		t.Fatal(err)
	}
	if err := b.Execute(wc); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("expected ErrAlreadyExecuted, got %v", err)
	}
	if _, err := wc.Result(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}
}

func TestWorkContext_SingleIndex(t *testing.T) {
	wc := NewWorkContext(testutil.MakeFrame(3))
	if err := wc.ApplyRowIndex(rowindex.Explicit{Indices: []int64{0}}); err != nil {
		t.Fatal(err)
	}
	if err := wc.ApplyRowIndex(rowindex.Explicit{Indices: []int64{1}}); !errors.Is(err, ErrAlreadyExecuted) {
		t.Errorf("expected ErrAlreadyExecuted, got %v", err)
	}
}

func TestRangeTerms(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step int64
		count             uint64
		last              int64
		ok                bool
	}{
		{"simple", 0, 10, 3, 4, 9, true},
		{"backward", 4, -1, -1, 5, 0, true},
		{"empty", 3, 3, 1, 0, 0, false},
		{"empty backward", 0, 3, -1, 0, 0, false},
		{"full int64 span", math.MinInt64, math.MaxInt64, 1, math.MaxUint64, math.MaxInt64 - 1, true},
		{"wide backward", math.MaxInt64, math.MinInt64, -1, math.MaxUint64, math.MinInt64 + 1, true},
		{"min step", -1, math.MinInt64, math.MinInt64, 1, -1, true},
		{"max step", 0, math.MaxInt64, math.MaxInt64, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, last, ok := rangeTerms(tt.start, tt.stop, tt.step)
			if ok != tt.ok || count != tt.count || (ok && last != tt.last) {
				t.Errorf("rangeTerms(%d, %d, %d) = (%d, %d, %v), expected (%d, %d, %v)",
					tt.start, tt.stop, tt.step, count, last, ok, tt.count, tt.last, tt.ok)
			}
		})
	}
}

func TestRange_WideBounds(t *testing.T) {
	wide := Range{Start: -9_000_000_000_000_000_000, Stop: 9_000_000_000_000_000_000, Step: 1}
	if _, err := Compile(wide); !errors.Is(err, ErrWraparound) {
		t.Errorf("expected ErrWraparound, got %v", err)
	}
	if _, err := Resolve([]any{0, wide}, 5); !errors.Is(err, ErrWraparound) {
		t.Errorf("expected ErrWraparound inside a list, got %v", err)
	}
	if _, err := Compile(Range{Start: math.MaxInt64, Stop: math.MinInt64, Step: -1}); !errors.Is(err, ErrWraparound) {
		t.Errorf("expected ErrWraparound for a backward range, got %v", err)
	}

	u, err := Compile(Range{Start: 0, Stop: math.MaxInt64, Step: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := u.Bind(5); !errors.Is(err, ErrBounds) {
		t.Errorf("expected ErrBounds, got %v", err)
	}

	ix, err := Resolve(Range{Start: -1, Stop: math.MinInt64, Step: math.MinInt64}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{4}, ix.Positions()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSlice_ReservedBound(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"start", Slice{Start: int64(math.MinInt64), Step: -1}},
		{"stop", Slice{Stop: int64(math.MinInt64)}},
		{"step", Slice{Step: int64(math.MinInt64)}},
		{"in a list", []any{1, Slice{Start: int64(math.MinInt64), Step: -1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.src); !errors.Is(err, ErrBounds) {
				t.Errorf("expected ErrBounds, got %v", err)
			}
		})
	}

	ix, err := Resolve(Slice{Start: int64(math.MinInt64 + 1), Step: -1}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if ix.Len() != 0 {
		t.Errorf("expected an empty selection, got %s", ix)
	}
}

func TestMultiSelector_ExtremeItems(t *testing.T) {
	for _, v := range []int64{math.MaxInt64, math.MinInt64} {
		u, err := Compile([]any{v})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := u.Bind(5); !errors.Is(err, ErrBounds) {
			t.Errorf("item %d: expected ErrBounds, got %v", v, err)
		}
	}
}

func TestMultiSelector_TooManyRows(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"huge repeat", Slice{Start: 0, Stop: int64(1) << 62, Step: 0}},
		{"repeat plus int", []any{Slice{Start: 0, Stop: int64(math.MaxInt32), Step: 0}, 1}},
		{"two repeats", []any{
			Slice{Start: 0, Stop: int64(math.MaxInt32), Step: 0},
			Slice{Start: 1, Stop: int64(math.MaxInt32), Step: 0},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(tt.src, 5); !errors.Is(err, ErrBounds) {
				t.Errorf("expected ErrBounds, got %v", err)
			}
		})
	}
}

func TestMultiSelector_ClosesRejectedFilters(t *testing.T) {
	tests := []struct {
		name  string
		items func(f *fakeFilter) []any
	}{
		{"filter item", func(f *fakeFilter) []any { return []any{0, f} }},
		{"earlier bad item", func(f *fakeFilter) []any { return []any{true, f} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFilter{typ: column.TypeBool}
			if _, err := Compile(tt.items(f)); !errors.Is(err, ErrInvalidSelectorType) {
				t.Fatalf("expected ErrInvalidSelectorType, got %v", err)
			}
			if f.closed != 1 {
				t.Errorf("expected the expression to be closed once, got %d", f.closed)
			}
		})
	}
}

func TestFrameMask_BoolSeries(t *testing.T) {
	mask := column.NewBool("keep", []bool{false, true, true})

	ix, err := Resolve(mask, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int64{1, 2}, ix.Positions()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	if _, err := Resolve(mask, 4); !errors.Is(err, ErrBounds) {
		t.Errorf("expected ErrBounds for a length mismatch, got %v", err)
	}

	flat, err := Resolve(&fakeArray{shape: []int{3, 1}, dtype: "bool", bools: []bool{false, true, true}}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ix.Positions(), flat.Positions()); diff != "" {
		t.Errorf("(3, 1) array differs from the mask (-want +got):\n%s", diff)
	}
}

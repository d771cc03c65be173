package selector

import (
	"fmt"
	"iter"
	"reflect"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// rule pairs a source predicate with the constructor for its node. Rules are
// tried in order and the first match wins, since a source can satisfy several
// predicates (a frame is also iterable, a slice value may be trivial).
type rule struct {
	name  string
	match func(src any) bool
	build func(src any) (Node, error)
}

var rules = []rule{
	{"trivial slice", isTrivialSlice, func(any) (Node, error) { return AllRows{}, nil }},
	{"slice", isSlice, func(src any) (Node, error) { return newSlice(src.(Slice)) }},
	{"filter expression", isFilterExpr, func(src any) (Node, error) { return FilterExpression{Expr: src.(FilterExpr)}, nil }},
	{"frame", isFrame, newFrameMaskFrom},
	{"integer", isInt, newOneRow},
	{"all rows", isAllRows, func(any) (Node, error) { return AllRows{}, nil }},
	{"array", isArray, func(src any) (Node, error) { return newArrayMask(src.(ArrayLike)) }},
	{"range", isRange, func(src any) (Node, error) { return newRange(src.(Range)) }},
	{"iterable", isIterable, newMultiSelector},
	{"bool", isBool, func(any) (Node, error) {
		return nil, fmt.Errorf("%w: a boolean value cannot be used as a row selector", ErrInvalidSelectorType)
	}},
}

// dispatch classifies src into exactly one node.
func dispatch(src any) (Node, string, error) {
	for _, r := range rules {
		if r.match(src) {
			n, err := r.build(src)
			return n, r.name, err
		}
	}
	return nil, "", fmt.Errorf("%w: %T cannot be used as a row selector", ErrInvalidSelectorType, src)
}

func isTrivialSlice(src any) bool {
	s, ok := src.(Slice)
	return ok && s.trivial()
}

func isSlice(src any) bool {
	_, ok := src.(Slice)
	return ok
}

func isFilterExpr(src any) bool {
	_, ok := src.(FilterExpr)
	return ok
}

func isFrame(src any) bool {
	switch src.(type) {
	case *dataframe.DataFrame, dataframe.Series:
		return true
	}
	return false
}

func isAllRows(src any) bool {
	if src == nil {
		return true
	}
	_, ok := src.(Ellipsis)
	return ok
}

func isArray(src any) bool {
	_, ok := src.(ArrayLike)
	return ok
}

func isRange(src any) bool {
	_, ok := src.(Range)
	return ok
}

func isBool(src any) bool {
	_, ok := src.(bool)
	return ok
}

func asSeq(src any) (iter.Seq[any], bool) {
	switch f := src.(type) {
	case iter.Seq[any]:
		return f, true
	case func(func(any) bool):
		return f, true
	}
	return nil, false
}

func isIterable(src any) bool {
	if _, ok := asSeq(src); ok {
		return true
	}
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

// elements yields the items of an iterable source with their position.
func elements(src any) iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		if seq, ok := asSeq(src); ok {
			i := 0
			for v := range seq {
				if !yield(i, v) {
					return
				}
				i++
			}
			return
		}
		v := reflect.ValueOf(src)
		for i := 0; i < v.Len(); i++ {
			if !yield(i, v.Index(i).Interface()) {
				return
			}
		}
	}
}

func newOneRow(src any) (Node, error) {
	v, ok := intValue(src)
	if !ok {
		return nil, fmt.Errorf("%w: row `%v` does not fit a 64-bit index", ErrBounds, src)
	}
	return OneRow{Index: v}, nil
}

func newSlice(s Slice) (Node, error) {
	start, stop, step, err := s.bounds()
	if err != nil {
		return nil, err
	}
	if step == 0 {
		// A zero step repeats a row; only the explicit row list can hold that.
		it, err := sliceItem(start, stop, step, s)
		if err != nil {
			return nil, err
		}
		return MultiSelector{Items: []Item{it}}, nil
	}
	return RangeOrSlice{Start: start, Stop: stop, Step: step}, nil
}

func newRange(r Range) (Node, error) {
	if r.Step == 0 {
		return nil, fmt.Errorf("%w: %s has a zero step", ErrShape, r)
	}
	if _, last, ok := rangeTerms(r.Start, r.Stop, r.Step); ok {
		if err := checkWraparound(r.Start, r.Stop, r.Step, last); err != nil {
			return nil, err
		}
	}
	return RangeOrSlice{Start: r.Start, Stop: r.Stop, Step: r.Step, Strict: true}, nil
}

func newFrameMaskFrom(src any) (Node, error) {
	switch v := src.(type) {
	case *dataframe.DataFrame:
		return newFrameMask(v)
	case dataframe.Series:
		return newFrameMask(dataframe.NewDataFrame(v))
	}
	return nil, fmt.Errorf("%w: %T is not a frame", ErrInvalidSelectorType, src)
}

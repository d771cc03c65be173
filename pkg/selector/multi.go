package selector

import (
	"fmt"
	"math"

	"github.com/akhildatla/rowsel/pkg/rowindex"
)

// newMultiSelector classifies every element of an iterable source. Bounds
// that do not depend on the frame are checked here; the rest waits for Bind.
// Filter expressions cannot be list items; any found in a rejected list are
// closed, since Compile owns them.
func newMultiSelector(src any) (Node, error) {
	var items []any
	for _, elem := range elements(src) {
		items = append(items, elem)
	}
	m, err := classifyItems(items)
	if err != nil {
		for _, elem := range items {
			if f, ok := elem.(FilterExpr); ok {
				f.Close()
			}
		}
		return nil, err
	}
	return m, nil
}

func classifyItems(items []any) (MultiSelector, error) {
	var m MultiSelector
	for i, elem := range items {
		switch v := elem.(type) {
		case Range:
			if v.Step == 0 {
				return m, fmt.Errorf("%w: %s at index %d has a zero step", ErrShape, v, i)
			}
			count, last, ok := rangeTerms(v.Start, v.Stop, v.Step)
			if !ok {
				// A valid but empty range contributes nothing.
				continue
			}
			if err := checkWraparound(v.Start, v.Stop, v.Step, last); err != nil {
				return m, err
			}
			m.MinRows = max(m.MinRows, rowsNeeded(v.Start), rowsNeeded(last))
			m.Items = append(m.Items, Item{Kind: ItemRange, Start: v.Start, Stop: v.Stop, Step: v.Step, Count: int64(count)})

		case Slice:
			start, stop, step, err := v.bounds()
			if err != nil {
				return m, fmt.Errorf("%w (at index %d)", err, i)
			}
			it, err := sliceItem(start, stop, step, v)
			if err != nil {
				return m, err
			}
			m.Items = append(m.Items, it)

		default:
			if isBool(elem) || !isInt(elem) {
				return m, fmt.Errorf("%w: invalid item %v (%T) at index %d in the row selector list",
					ErrInvalidSelectorType, elem, elem, i)
			}
			value, ok := intValue(elem)
			if !ok {
				return m, fmt.Errorf("%w: item %v at index %d does not fit a 64-bit index", ErrBounds, elem, i)
			}
			m.MinRows = max(m.MinRows, rowsNeeded(value))
			m.Items = append(m.Items, Item{Kind: ItemInt, Start: value})
		}
	}
	return m, nil
}

// sliceItem validates a slice entry. A zero step needs both bounds, and a
// non-negative stop, because stop is the repeat count.
func sliceItem(start, stop, step int64, src Slice) (Item, error) {
	if step == 0 {
		if start == Unset || stop == Unset || stop < 0 {
			return Item{}, fmt.Errorf("%w: slice %s: when step is 0, both start and stop must be present, "+
				"and stop must be non-negative", ErrShape, src)
		}
	} else if step == Unset {
		step = 1
	}
	return Item{Kind: ItemSlice, Start: start, Stop: stop, Step: step}, nil
}

// maxSelectedRows caps the length of the explicit index a MultiSelector
// materializes.
const maxSelectedRows = math.MaxInt32

// span is one item resolved against a row count: count terms starting at
// start with the given step. A zero step repeats start.
type span struct {
	start, count, step int64
}

// resolve checks the selector against n rows and turns every item into a
// span.
func (m MultiSelector) resolve(n int64) ([]span, error) {
	if n < m.MinRows {
		return nil, fmt.Errorf("%w: row selector is valid for a frame with at least %s, got a frame with %s",
			ErrBounds, rows(m.MinRows), rows(n))
	}
	spans := make([]span, 0, len(m.Items))
	var total int64
	for _, it := range m.Items {
		switch it.Kind {
		case ItemInt:
			v := it.Start
			if v < 0 {
				v += n
			}
			spans = append(spans, span{start: v, count: 1, step: 1})

		case ItemRange:
			start := it.Start
			if start < 0 {
				start += n
			}
			spans = append(spans, span{start: start, count: it.Count, step: it.Step})

		case ItemSlice:
			if it.Step != 0 {
				start, count, step := normalizeSlice(n, it.Start, it.Stop, it.Step)
				spans = append(spans, span{start: start, count: count, step: step})
				break
			}
			start := it.Start
			if start < 0 {
				start += n
			}
			if it.Stop > 0 && (start < 0 || start >= n) {
				return nil, fmt.Errorf("%w: slice %s repeats row %d, which is invalid for a frame with %s",
					ErrBounds, it, it.Start, rows(n))
			}
			spans = append(spans, span{start: start, count: it.Stop})
		}

		c := spans[len(spans)-1].count
		if c > maxSelectedRows-total {
			return nil, fmt.Errorf("%w: row selector produces more than %d rows", ErrBounds, maxSelectedRows)
		}
		total += c
	}
	return spans, nil
}

// materialize fills one explicit index buffer with every span in order.
func materialize(spans []span) rowindex.Explicit {
	var total int64
	for _, s := range spans {
		total += s.count
	}
	indices := make([]int64, 0, total)
	for _, s := range spans {
		v := s.start
		for k := int64(0); k < s.count; k++ {
			indices = append(indices, v)
			v += s.step
		}
	}
	return rowindex.Explicit{Indices: indices}
}

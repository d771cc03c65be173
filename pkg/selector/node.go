package selector

import (
	"fmt"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
)

// Node is a compiled row selector. The set of implementations is closed:
// AllRows, OneRow, RangeOrSlice, FilterExpression, FrameMask and
// MultiSelector.
type Node interface {
	fmt.Stringer
	node()
}

// AllRows selects every row and leaves the frame untouched.
type AllRows struct{}

// OneRow selects a single row. Index may be negative, counting from the end.
type OneRow struct {
	Index int64
}

// RangeOrSlice selects an arithmetic progression of rows. With Strict unset
// it follows slice semantics: bounds default by the sign of Step and are
// clipped into the frame. With Strict set it follows range semantics:
// bounds are used as given and must fit the frame.
type RangeOrSlice struct {
	Start, Stop, Step int64
	Strict            bool
}

// FilterExpression selects the rows where Expr evaluates to true. The node
// owns Expr.
type FilterExpression struct {
	Expr FilterExpr
}

// FrameMask selects rows through the single column of Frame. Frame is
// borrowed from the caller and is never modified or released by the node.
type FrameMask struct {
	Frame *dataframe.DataFrame
}

// ItemKind classifies one entry of a MultiSelector.
type ItemKind uint8

const (
	ItemInt ItemKind = iota
	ItemSlice
	ItemRange
)

// Item is one entry of a MultiSelector. For ItemInt only Start is used; for
// ItemRange, Count holds the precomputed number of terms.
type Item struct {
	Kind              ItemKind
	Start, Stop, Step int64
	Count             int64
}

// MultiSelector concatenates ints, slices and ranges into one explicit row
// list, keeping their order and any duplicates.
type MultiSelector struct {
	Items []Item
	// MinRows is the smallest frame every int and range item fits into.
	MinRows int64
}

func (AllRows) node()          {}
func (OneRow) node()           {}
func (RangeOrSlice) node()     {}
func (FilterExpression) node() {}
func (FrameMask) node()        {}
func (MultiSelector) node()    {}

func (AllRows) String() string { return "AllRows" }

func (n OneRow) String() string { return fmt.Sprintf("OneRow(%d)", n.Index) }

func (n RangeOrSlice) String() string {
	if n.Strict {
		return fmt.Sprintf("Range(%d, %d, %d)", n.Start, n.Stop, n.Step)
	}
	return fmt.Sprintf("Slice(%s, %s, %s)", bound(n.Start), bound(n.Stop), bound(n.Step))
}

func (n FilterExpression) String() string {
	if s, ok := n.Expr.(fmt.Stringer); ok {
		return fmt.Sprintf("FilterExpression(%s)", s)
	}
	return fmt.Sprintf("FilterExpression(%T)", n.Expr)
}

func (n FrameMask) String() string {
	s := n.Frame.Series[0]
	return fmt.Sprintf("FrameMask(%s: %s, %d rows)", s.Name(), column.TypeOf(s), s.NRows())
}

func (n MultiSelector) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return fmt.Sprintf("MultiSelector[%s] (min rows %d)", strings.Join(parts, ", "), n.MinRows)
}

func (it Item) String() string {
	switch it.Kind {
	case ItemInt:
		return fmt.Sprint(it.Start)
	case ItemRange:
		return fmt.Sprintf("range(%d, %d, %d)", it.Start, it.Stop, it.Step)
	default:
		return fmt.Sprintf("%s:%s:%s", bound(it.Start), bound(it.Stop), bound(it.Step))
	}
}

func bound(v int64) string {
	if v == Unset {
		return "None"
	}
	return fmt.Sprint(v)
}

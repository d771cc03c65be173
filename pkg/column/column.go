// Package column classifies and reads dataframe-go series the way the row
// selector needs them: by storage type, by integer extrema, and by gathering
// rows into a new series of the same type.
package column

import (
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Type is the storage type family of a column.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

// String returns the string representation of the column type.
func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// IsMask reports whether a column of this type may be used as a row mask.
func (t Type) IsMask() bool {
	return t == TypeBool || t == TypeInt
}

// ClassifyDtype maps a dtype name such as "bool", "int32", "uint8" or
// "float64" onto a column type family.
func ClassifyDtype(name string) Type {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(name, "bool"):
		return TypeBool
	case strings.HasPrefix(name, "int"), strings.HasPrefix(name, "uint"):
		return TypeInt
	case strings.HasPrefix(name, "float"):
		return TypeFloat
	case name == "string", name == "str":
		return TypeString
	default:
		return TypeUnknown
	}
}

// TypeOf returns the type family of a series. A SeriesGeneric reports its
// concrete Go type as "generic(bool)", "generic(int32)" and so on; the
// wrapped name is classified.
func TypeOf(s dataframe.Series) Type {
	if s == nil {
		return TypeUnknown
	}
	switch s.(type) {
	case *dataframe.SeriesInt64:
		return TypeInt
	case *dataframe.SeriesFloat64:
		return TypeFloat
	case *dataframe.SeriesString:
		return TypeString
	case *dataframe.SeriesGeneric:
		return ClassifyDtype(genericElem(s.Type()))
	}
	return ClassifyDtype(s.Type())
}

// genericElem unwraps "generic(T)" into "T".
func genericElem(name string) string {
	inner, ok := strings.CutPrefix(name, "generic(")
	if !ok {
		return name
	}
	return strings.TrimSuffix(inner, ")")
}

// Len returns the number of rows in a series.
func Len(s dataframe.Series) int {
	if s == nil {
		return 0
	}
	return s.NRows()
}

// Int64Value extracts an integer value from a series at row i.
// Returns (value, ok) where ok is false if nil or not an integer.
func Int64Value(s dataframe.Series, i int) (int64, bool) {
	if s == nil || i < 0 || i >= s.NRows() {
		return 0, false
	}
	switch v := s.Value(i).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		return int64(v), true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

// BoolValue extracts a bool value from a series at row i.
func BoolValue(s dataframe.Series, i int) (bool, bool) {
	if s == nil || i < 0 || i >= s.NRows() {
		return false, false
	}
	b, ok := s.Value(i).(bool)
	return b, ok
}

// MinMaxInt returns the smallest and largest non-nil integer in s.
// ok is false when the series holds no integer values at all.
func MinMaxInt(s dataframe.Series) (min, max int64, ok bool) {
	n := Len(s)
	for i := 0; i < n; i++ {
		v, valid := Int64Value(s, i)
		if !valid {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// NewBool creates a SeriesGeneric holding bool values.
func NewBool(name string, data []bool) dataframe.Series {
	vals := make([]interface{}, len(data))
	for i, v := range data {
		vals[i] = v
	}
	return dataframe.NewSeriesGeneric(name, false, nil, vals...)
}

// Gather builds a series of the same type as s from the listed rows.
// A negative row produces a nil value.
func Gather(s dataframe.Series, rows []int64) dataframe.Series {
	vals := make([]interface{}, len(rows))
	for i, r := range rows {
		if r >= 0 {
			vals[i] = s.Value(int(r))
		}
	}
	return withValues(s, vals)
}

func withValues(s dataframe.Series, vals []interface{}) dataframe.Series {
	name := s.Name()
	switch s.(type) {
	case *dataframe.SeriesInt64:
		return dataframe.NewSeriesInt64(name, nil, vals...)
	case *dataframe.SeriesFloat64:
		return dataframe.NewSeriesFloat64(name, nil, vals...)
	case *dataframe.SeriesString:
		return dataframe.NewSeriesString(name, nil, vals...)
	}
	// Generic and other series keep their concrete type through Copy.
	out := s.Copy()
	out.Reset()
	for _, v := range vals {
		out.Append(v)
	}
	return out
}

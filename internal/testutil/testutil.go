// Package testutil provides testing utilities for rowsel tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// SalesCSV returns standard test CSV content for sales data.
func SalesCSV() string {
	return `price,quantity,category
10.5,5,A
20.0,15,B
5.0,3,A
30.0,20,C
15.0,8,B`
}

// MakeFrame creates an n-row frame with an "id" column holding 0..n-1 and a
// "name" column holding "r0".."rN".
func MakeFrame(n int) *dataframe.DataFrame {
	ids := make([]interface{}, n)
	names := make([]interface{}, n)
	for i := 0; i < n; i++ {
		ids[i] = int64(i)
		names[i] = fmt.Sprintf("r%d", i)
	}
	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("id", nil, ids...),
		dataframe.NewSeriesString("name", nil, names...),
	)
}

// MakeSalesFrame creates a standard sales test frame.
func MakeSalesFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesFloat64("price", nil, 10.5, 20.0, 5.0, 30.0, 15.0),
		dataframe.NewSeriesInt64("quantity", nil, 5, 15, 3, 20, 8),
		dataframe.NewSeriesString("category", nil, "A", "B", "A", "C", "B"),
	)
}

// BoolFrame creates a single-column boolean frame.
func BoolFrame(vals ...bool) *dataframe.DataFrame {
	iv := make([]interface{}, len(vals))
	for i, v := range vals {
		iv[i] = v
	}
	return dataframe.NewDataFrame(dataframe.NewSeriesGeneric("mask", false, nil, iv...))
}

// IntFrame creates a single-column int64 frame.
func IntFrame(vals ...int64) *dataframe.DataFrame {
	iv := make([]interface{}, len(vals))
	for i, v := range vals {
		iv[i] = v
	}
	return dataframe.NewDataFrame(dataframe.NewSeriesInt64("rows", nil, iv...))
}

// IDs returns the "id" column of a frame built by MakeFrame. Nil rows are
// reported as -1.
func IDs(t *testing.T, df *dataframe.DataFrame) []int64 {
	t.Helper()
	idx, err := df.NameToColumn("id")
	if err != nil {
		t.Fatalf("frame has no id column: %v", err)
	}
	s := df.Series[idx]
	out := make([]int64, s.NRows())
	for i := range out {
		v := s.Value(i)
		if v == nil {
			out[i] = -1
			continue
		}
		out[i] = v.(int64)
	}
	return out
}

// Package loader reads frames from CSV, TSV, JSON and Parquet files. The CLI
// uses it for the data being selected from and for mask files.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// Error definitions
var (
	ErrEmptyFile         = errors.New("empty data file")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNotMask           = errors.New("file is not a single-column mask")
)

// Format is a supported file format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatTSV
	FormatJSON
	FormatParquet
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// FormatOf detects the format of path from its extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".json", ".jsonl", ".ndjson":
		return FormatJSON
	case ".parquet", ".pq":
		return FormatParquet
	default:
		return FormatUnknown
	}
}

// Load reads path into a frame, choosing the reader by file extension.
func Load(ctx context.Context, path string) (*dataframe.DataFrame, error) {
	switch f := FormatOf(path); f {
	case FormatCSV:
		return LoadCSV(ctx, path)
	case FormatTSV:
		return LoadCSV(ctx, path, WithComma('\t'))
	case FormatJSON:
		return LoadJSON(ctx, path)
	case FormatParquet:
		return LoadParquet(ctx, path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// MaskLoader returns a function that loads mask files relative to dir.
// Absolute paths are used as given.
func MaskLoader(ctx context.Context, dir string) func(path string) (*dataframe.DataFrame, error) {
	return func(path string) (*dataframe.DataFrame, error) {
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return LoadMask(ctx, path)
	}
}

package loader

import (
	"context"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// CSVOption configures LoadCSV.
type CSVOption func(*imports.CSVLoadOptions)

// WithComma sets the field separator.
func WithComma(r rune) CSVOption {
	return func(o *imports.CSVLoadOptions) {
		o.Comma = r
	}
}

// LoadCSV reads a CSV file and returns a DataFrame using dataframe-go.
// - First row is header (column names)
// - Column types are inferred (int64, float64, string)
// - Empty values become nil
func LoadCSV(ctx context.Context, path string, opts ...CSVOption) (*dataframe.DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	o := imports.CSVLoadOptions{
		InferDataTypes: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	df, err := imports.LoadFromCSV(ctx, file, o)
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}

	return df, nil
}

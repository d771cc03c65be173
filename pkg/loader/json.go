package loader

import (
	"bytes"
	"context"
	"os"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
)

// LoadJSON reads a JSON array of objects, or one object per line, and
// returns a DataFrame. Column types are inferred automatically.
func LoadJSON(ctx context.Context, path string) (*dataframe.DataFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	df, err := imports.LoadFromJSON(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}

	return df, nil
}

package loader

import (
	"context"
	"fmt"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
)

// LoadMask loads a single-column frame for use as a row mask. A text column
// holding only true/false values (and blanks) is converted to a boolean
// column.
func LoadMask(ctx context.Context, path string) (*dataframe.DataFrame, error) {
	df, err := Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(df.Series) != 1 {
		return nil, fmt.Errorf("%w: %s has %d columns", ErrNotMask, path, len(df.Series))
	}
	s := df.Series[0]
	if column.TypeOf(s) != column.TypeString {
		return df, nil
	}
	b, ok := parseBools(s)
	if !ok {
		return nil, fmt.Errorf("%w: column %q of %s is neither boolean nor integer", ErrNotMask, s.Name(), path)
	}
	return dataframe.NewDataFrame(b), nil
}

// parseBools converts a text column of true/false values. Blank and nil
// values stay nil.
func parseBools(s dataframe.Series) (dataframe.Series, bool) {
	n := s.NRows()
	vals := make([]interface{}, n)
	for i := 0; i < n; i++ {
		v := s.Value(i)
		if v == nil {
			continue
		}
		str, _ := v.(string)
		switch strings.ToLower(strings.TrimSpace(str)) {
		case "true", "t":
			vals[i] = true
		case "false", "f":
			vals[i] = false
		case "":
		default:
			return nil, false
		}
	}
	return dataframe.NewSeriesGeneric(s.Name(), false, nil, vals...), true
}

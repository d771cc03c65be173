package selector

import (
	"fmt"
	"io"
	"log/slog"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/rowindex"
)

// WorkContext binds a selector to one frame. It receives the resolved row
// index and applies it to the frame on demand. Column data is never modified.
type WorkContext struct {
	frame   *dataframe.DataFrame
	nrows   int64
	index   rowindex.Index
	applied bool
	logger  *slog.Logger
}

// Option configures a WorkContext.
type Option func(*WorkContext)

// WithLogger sets the logger used for debug records. By default nothing is
// logged.
func WithLogger(l *slog.Logger) Option {
	return func(wc *WorkContext) {
		if l != nil {
			wc.logger = l
		}
	}
}

// NewWorkContext creates a work context over df.
func NewWorkContext(df *dataframe.DataFrame, opts ...Option) *WorkContext {
	wc := newWorkContext(opts)
	wc.frame = df
	if df != nil && len(df.Series) > 0 {
		wc.nrows = int64(df.Series[0].NRows())
	}
	return wc
}

// NewRowCountContext creates a work context that knows only a row count.
// It resolves every selector that does not need column data, which excludes
// filter expressions.
func NewRowCountContext(nrows int, opts ...Option) *WorkContext {
	wc := newWorkContext(opts)
	wc.nrows = int64(nrows)
	return wc
}

func newWorkContext(opts []Option) *WorkContext {
	wc := &WorkContext{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(wc)
	}
	return wc
}

// Frame returns the frame being selected from, or nil for a row-count
// context.
func (wc *WorkContext) Frame() *dataframe.DataFrame {
	return wc.frame
}

// NRows returns the row count of the frame.
func (wc *WorkContext) NRows() int {
	return int(wc.nrows)
}

// Logger returns the context logger.
func (wc *WorkContext) Logger() *slog.Logger {
	return wc.logger
}

// ApplyRowIndex records the resolved index. A context accepts one index.
func (wc *WorkContext) ApplyRowIndex(ix rowindex.Index) error {
	if wc.applied {
		return fmt.Errorf("%w: work context already holds %s", ErrAlreadyExecuted, wc.index)
	}
	wc.index = ix
	wc.applied = true
	wc.logger.Debug("row index applied", "index", ix.String(), "rows", ix.Len(), "frame_rows", wc.nrows)
	return nil
}

// RowIndex returns the applied index. ok is false when no index was applied,
// meaning all rows are selected in their original order.
func (wc *WorkContext) RowIndex() (ix rowindex.Index, ok bool) {
	return wc.index, wc.index != nil
}

// Result returns the selected frame. Without an applied index the original
// frame is returned as is.
func (wc *WorkContext) Result() (*dataframe.DataFrame, error) {
	if wc.frame == nil {
		return nil, fmt.Errorf("%w: row count %d", ErrNoFrame, wc.nrows)
	}
	return rowindex.Take(wc.frame, wc.index)
}

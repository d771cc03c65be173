// Package repl provides an interactive shell that applies row selectors to
// loaded frames.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/filter"
	"github.com/akhildatla/rowsel/pkg/literal"
	"github.com/akhildatla/rowsel/pkg/loader"
	"github.com/akhildatla/rowsel/pkg/selector"
)

const promptFmt = "rowsel[%s]> "

// Mode controls what the REPL prints for a selector.
type Mode int

const (
	ModeRows  Mode = iota // Print the selected rows
	ModeIndex             // Print the resolved row index
)

// REPL provides an interactive Read-Eval-Print Loop.
type REPL struct {
	ctx     context.Context
	mode    Mode
	frames  map[string]*dataframe.DataFrame
	current string
	maskDir string
	history []string
	logger  *slog.Logger
}

// New creates a new REPL instance.
func New(ctx context.Context) *REPL {
	return &REPL{
		ctx:     ctx,
		mode:    ModeRows,
		frames:  make(map[string]*dataframe.DataFrame),
		history: []string{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetFrames sets predeclared frames available in the REPL. The first frame
// by name becomes current.
func (r *REPL) SetFrames(frames map[string]*dataframe.DataFrame) {
	r.frames = frames
	names := r.frameNames()
	if len(names) > 0 {
		r.current = names[0]
	}
}

// SetMode sets the REPL output mode.
func (r *REPL) SetMode(mode Mode) {
	r.mode = mode
}

// SetMaskDir sets the directory mask("...") paths are resolved against.
func (r *REPL) SetMaskDir(dir string) {
	r.maskDir = dir
}

// SetLogger sets the logger passed to every selection.
func (r *REPL) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Start runs the loop until in is exhausted or quit is entered.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "rowsel REPL - Python-style row selectors")
	fmt.Fprintln(out, "Type 'help' for available commands, 'quit' to exit")
	fmt.Fprintln(out)

	for {
		fmt.Fprintf(out, promptFmt, r.current)

		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		if quit := r.handleCommand(line, out); quit {
			return
		}
	}
}

// handleCommand runs one input line. It reports whether the REPL should
// stop.
func (r *REPL) handleCommand(line string, out io.Writer) bool {
	trimmed := strings.TrimSpace(line)
	parts := strings.Fields(trimmed)

	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(out, "Goodbye!")
		return true

	case "help", "h", "?":
		r.printHelp(out)

	case "mode":
		if len(parts) > 1 {
			switch parts[1] {
			case "rows":
				r.mode = ModeRows
				fmt.Fprintln(out, "Printing selected rows")
			case "index":
				r.mode = ModeIndex
				fmt.Fprintln(out, "Printing resolved row index")
			default:
				fmt.Fprintln(out, "Unknown mode. Use 'rows' or 'index'")
			}
		} else if r.mode == ModeRows {
			fmt.Fprintln(out, "Current mode: rows")
		} else {
			fmt.Fprintln(out, "Current mode: index")
		}

	case "frames":
		r.listFrames(out)

	case "use":
		if len(parts) != 2 {
			fmt.Fprintln(out, "Usage: use <name>")
		} else if _, ok := r.frames[parts[1]]; !ok {
			fmt.Fprintf(out, "Unknown frame '%s'\n", parts[1])
		} else {
			r.current = parts[1]
		}

	case "load":
		if len(parts) == 3 {
			r.loadFrame(parts[1], parts[2], out)
		} else {
			fmt.Fprintln(out, "Usage: load <name> <path>")
		}

	case "history":
		for i, cmd := range r.history {
			fmt.Fprintf(out, "%3d: %s\n", i+1, cmd)
		}

	default:
		r.eval(trimmed, out)
	}
	return false
}

func (r *REPL) eval(input string, out io.Writer) {
	r.history = append(r.history, input)

	df, ok := r.frames[r.current]
	if !ok {
		fmt.Fprintln(out, "Error: no frame selected; use 'load <name> <path>' first")
		return
	}

	src, err := literal.Parse(input, literal.Options{
		NewFilter: func(s string) selector.FilterExpr { return filter.New(s) },
		LoadFrame: loader.MaskLoader(r.ctx, r.maskDir),
	})
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	if r.mode == ModeIndex {
		r.printIndex(df, src, out)
		return
	}
	result, err := selector.Select(df, src, selector.WithLogger(r.logger))
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	fmt.Fprint(out, result.Table())
	fmt.Fprintf(out, "(%d of %d rows)\n", result.NRows(), df.NRows())
}

func (r *REPL) printIndex(df *dataframe.DataFrame, src any, out io.Writer) {
	wc := selector.NewWorkContext(df, selector.WithLogger(r.logger))
	u, err := selector.Compile(src)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	defer u.Close()

	b, err := u.Bind(wc.NRows())
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	defer b.Close()
	if err := b.Execute(wc); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(out, "=> %s\n", u.Node())
	if ix, ok := wc.RowIndex(); ok {
		fmt.Fprintf(out, "=> %s\n", ix)
	} else {
		fmt.Fprintln(out, "=> all rows")
	}
}

func (r *REPL) loadFrame(name, path string, out io.Writer) {
	frame, err := loader.Load(r.ctx, path)
	if err != nil {
		fmt.Fprintf(out, "Error loading %s: %v\n", path, err)
		return
	}

	r.frames[name] = frame
	r.current = name
	fmt.Fprintf(out, "Loaded frame '%s' from %s (%d rows, %d columns)\n",
		name, path, frame.NRows(), len(frame.Series))
}

func (r *REPL) frameNames() []string {
	names := make([]string, 0, len(r.frames))
	for name := range r.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *REPL) listFrames(out io.Writer) {
	if len(r.frames) == 0 {
		fmt.Fprintln(out, "No frames loaded")
		return
	}

	fmt.Fprintln(out, "Loaded frames:")
	for _, name := range r.frameNames() {
		frame := r.frames[name]
		marker := " "
		if name == r.current {
			marker = "*"
		}
		fmt.Fprintf(out, " %s%s: %d rows, %d columns\n",
			marker, name, frame.NRows(), len(frame.Series))
	}
}

func (r *REPL) printHelp(out io.Writer) {
	help := `
rowsel REPL Commands:
  help, h, ?        Show this help message
  quit, exit, q     Exit the REPL
  mode [rows|index] Show or set what a selector prints
  frames            List loaded frames (* marks the current one)
  use <name>        Select rows from another frame
  load <n> <path>   Load a CSV, TSV, JSON or Parquet file as frame
  history           Show selector history

Anything else is a selector applied to the current frame:
  5                 one row
  2:8:2             a slice
  range(0, 10, 3)   a range
  0, 1:3, ::-1      a list
  filter("x > 1")   a CEL expression over the columns
  mask("m.csv")     a single-column mask file
`
	fmt.Fprint(out, help)
}

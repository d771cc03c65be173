// Package main provides the CLI entry point for rowsel.
//
// Usage:
//
//	rowsel select -i "0, 2:5, ::-1" data.csv         # Print the selected rows
//	rowsel select -i 'filter("price > 10")' data.csv # Filter with an expression
//	rowsel select -i 'mask("keep.csv")' data.csv     # Select through a mask file
//	rowsel select -i "range(0, 10, 3)" -o out.csv data.parquet
//	rowsel explain -i "[0, -1]" -n 5                 # Show how a selector resolves
//	rowsel repl -example-frames                      # Interactive selector shell
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"

	"github.com/akhildatla/rowsel/pkg/filter"
	"github.com/akhildatla/rowsel/pkg/literal"
	"github.com/akhildatla/rowsel/pkg/loader"
	"github.com/akhildatla/rowsel/pkg/repl"
	"github.com/akhildatla/rowsel/pkg/selector"
)

// Version info set by GoReleaser via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return printUsage(stdout)
	}

	switch cmd := args[0]; cmd {
	case "select":
		return selectCommand(ctx, args[1:], stdout, stderr)
	case "explain":
		return explainCommand(ctx, args[1:], stdout, stderr)
	case "repl":
		return replCommand(ctx, args[1:], os.Stdin, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "rowsel version %s\n", version)
		if commit != "none" {
			fmt.Fprintf(stdout, "  commit: %s\n", commit)
		}
		if date != "unknown" {
			fmt.Fprintf(stdout, "  built:  %s\n", date)
		}
		return nil
	case "help", "-h", "--help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// newLogger writes text records to w. Verbose output lowers the level to
// debug so the selector's compile and apply records are shown.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseSelector parses selector text with filter expressions and mask files
// enabled. Mask paths are resolved against maskDir.
func parseSelector(ctx context.Context, text, maskDir string) (any, error) {
	return literal.Parse(text, literal.Options{
		NewFilter: func(src string) selector.FilterExpr { return filter.New(src) },
		LoadFrame: loader.MaskLoader(ctx, maskDir),
	})
}

// loadFrame loads the data file, or a built-in example frame when name is
// set.
func loadFrame(ctx context.Context, path, name string) (*dataframe.DataFrame, error) {
	if name != "" {
		df, ok := loadExampleFrames()[name]
		if !ok {
			return nil, fmt.Errorf("unknown example frame: %s", name)
		}
		return df, nil
	}
	return loader.Load(ctx, path)
}

func selectCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sel := fs.String("i", "", "row selector (default: all rows)")
	verbose := fs.Bool("v", false, "verbose output")
	output := fs.String("o", "", "write the selected rows as CSV to this file (\"-\" for stdout)")
	maskDir := fs.String("mask-dir", "", "directory for mask(\"...\") files (default: the data file's directory)")
	example := fs.String("example", "", "use a built-in example frame (sales, people) instead of a file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 && *example == "" {
		return fmt.Errorf("usage: rowsel select -i <selector> <data file>")
	}

	logger := newLogger(stderr, *verbose)

	var path string
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	df, err := loadFrame(ctx, path, *example)
	if err != nil {
		return err
	}
	logger.Debug("frame loaded", "path", path, "rows", df.NRows(), "columns", len(df.Series))

	dir := *maskDir
	if dir == "" && path != "" {
		dir = filepath.Dir(path)
	}
	src, err := parseSelector(ctx, *sel, dir)
	if err != nil {
		return err
	}

	out, err := selector.Select(df, src, selector.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debug("rows selected", "rows", out.NRows())

	switch *output {
	case "":
		fmt.Fprint(stdout, out.Table())
		return nil
	case "-":
		return exports.ExportToCSV(ctx, stdout, out)
	default:
		return writeCSV(ctx, *output, out)
	}
}

func writeCSV(ctx context.Context, path string, df *dataframe.DataFrame) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return exports.ExportToCSV(ctx, f, df)
}

func explainCommand(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sel := fs.String("i", "", "row selector (default: all rows)")
	nrows := fs.Int("n", -1, "row count to resolve against (default: the data file's row count)")
	verbose := fs.Bool("v", false, "verbose output")
	maskDir := fs.String("mask-dir", ".", "directory for mask(\"...\") files")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, *verbose)

	src, err := parseSelector(ctx, *sel, *maskDir)
	if err != nil {
		return err
	}
	u, err := selector.Compile(src)
	if err != nil {
		return err
	}
	defer u.Close()

	fmt.Fprintf(stdout, "rule:  %s\n", u.Rule())
	fmt.Fprintf(stdout, "node:  %s\n", u.Node())

	var wc *selector.WorkContext
	switch {
	case fs.NArg() > 0:
		df, err := loader.Load(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		wc = selector.NewWorkContext(df, selector.WithLogger(logger))
	case *nrows >= 0:
		wc = selector.NewRowCountContext(*nrows, selector.WithLogger(logger))
	default:
		return nil
	}

	b, err := u.Bind(wc.NRows())
	if err != nil {
		return err
	}
	defer b.Close()
	if err := b.Execute(wc); err != nil {
		if errors.Is(err, selector.ErrNoFrame) {
			return fmt.Errorf("%w (pass a data file instead of -n)", err)
		}
		return err
	}

	fmt.Fprintf(stdout, "rows:  %d\n", wc.NRows())
	if ix, ok := wc.RowIndex(); ok {
		fmt.Fprintf(stdout, "index: %s\n", ix)
		fmt.Fprintf(stdout, "count: %d\n", ix.Len())
	} else {
		fmt.Fprintln(stdout, "index: all rows")
		fmt.Fprintf(stdout, "count: %d\n", wc.NRows())
	}
	return nil
}

func replCommand(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	useExampleFrames := fs.Bool("example-frames", false, "load built-in example frames (sales, people)")
	index := fs.Bool("index", false, "print the resolved row index instead of the rows")
	maskDir := fs.String("mask-dir", ".", "directory for mask(\"...\") files")
	verbose := fs.Bool("v", false, "verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	r := repl.New(ctx)
	r.SetMaskDir(*maskDir)
	r.SetLogger(newLogger(stderr, *verbose))
	if *useExampleFrames {
		r.SetFrames(loadExampleFrames())
	}
	if *index {
		r.SetMode(repl.ModeIndex)
	}
	r.Start(stdin, stdout)
	return nil
}

func printUsage(w io.Writer) error {
	fmt.Fprintln(w, `rowsel - select frame rows with Python-style selectors

Usage:
  rowsel <command> [arguments]

Commands:
  select <data file>    Print the rows of a CSV, TSV, JSON or Parquet file picked by a selector
  explain [data file]   Show how a selector compiles and which rows it resolves to
  repl                  Start an interactive selector shell
  version               Print version information
  help                  Show this help message

Select Options:
  -i <selector>         Row selector (default: all rows)
  -o <file>             Write the result as CSV ("-" for stdout) instead of a table
  -mask-dir <dir>       Directory for mask("...") files (default: the data file's directory)
  -example <name>       Use a built-in example frame (sales, people) instead of a file
  -v                    Verbose output

Explain Options:
  -i <selector>         Row selector
  -n <rows>             Resolve against a frame of this many rows
  -mask-dir <dir>       Directory for mask("...") files
  -v                    Verbose output

REPL Options:
  -example-frames       Load built-in example frames
  -index                Print the resolved row index instead of the rows
  -mask-dir <dir>       Directory for mask("...") files
  -v                    Verbose output

Selectors:
  5, -1                 One row
  2:8:2, ::-1, 3:4:0    Slices; a zero step repeats the start row stop times
  range(0, 10, 3)       A range that must fit the frame
  None, ..., :          All rows
  0, 1:3, range(4, 6)   A list of rows, slices and ranges
  filter("price > 10")  A CEL expression over the columns
  mask("keep.csv")      A single boolean or integer column from a file

Examples:
  rowsel select -i "0, 2:5" data.csv
  rowsel select -i 'filter("category == \"A\"")' -example sales
  rowsel select -i "::-1" -o reversed.csv data.parquet
  rowsel explain -i "[0, range(1, 3), ::-1]" -n 4
  rowsel repl -example-frames`)
	return nil
}

// loadExampleFrames constructs the built-in frames usable with -example.
func loadExampleFrames() map[string]*dataframe.DataFrame {
	frames := make(map[string]*dataframe.DataFrame)

	frames["sales"] = dataframe.NewDataFrame(
		dataframe.NewSeriesString("category", nil, "A", "B", "A", "C"),
		dataframe.NewSeriesFloat64("amount", nil, 10.0, 25.0, 7.5, 40.0),
	)

	frames["people"] = dataframe.NewDataFrame(
		dataframe.NewSeriesString("name", nil, "Johnson", "Anderson", "Lee", "Jackson", "Kim"),
		dataframe.NewSeriesInt64("age", nil, 34, 29, 41, 22, 37),
	)

	return frames
}

// Package filter evaluates CEL predicates over the rows of a frame.
//
// Every column whose name is a valid CEL identifier is exposed as a variable
// of the matching CEL type, so a frame with columns price and category can be
// filtered with:
//
//	f := filter.New(`price > 10.0 && category != "C"`)
//	out, err := selector.Select(frame, f)
package filter

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/column"
	"github.com/akhildatla/rowsel/pkg/selector"
)

// Error definitions
var (
	ErrClosed  = errors.New("filter expression is closed")
	ErrCompile = errors.New("filter expression does not compile")
	ErrNoFrame = errors.New("filter expression needs a frame")
)

// Expr is a CEL predicate. It is compiled against the columns of the frame
// it is resolved on and evaluated row by row.
type Expr struct {
	source string
	prg    cel.Program
	out    column.Type
	vars   []variable
	frame  *dataframe.DataFrame
	closed bool
}

type variable struct {
	name   string
	series dataframe.Series
}

var _ selector.FilterExpr = (*Expr)(nil)

// New returns an unresolved expression. Compilation happens in Resolve, once
// the column types are known.
func New(source string) *Expr {
	return &Expr{source: source}
}

func (e *Expr) String() string {
	return fmt.Sprintf("%q", e.source)
}

// Source returns the expression text.
func (e *Expr) Source() string {
	return e.source
}

// Resolve compiles the expression against the frame of wc and reports its
// result type.
func (e *Expr) Resolve(wc *selector.WorkContext) (column.Type, error) {
	if e.closed {
		return column.TypeUnknown, ErrClosed
	}
	df := wc.Frame()
	if df == nil {
		return column.TypeUnknown, ErrNoFrame
	}
	if e.prg != nil && e.frame == df {
		return e.out, nil
	}

	var (
		opts []cel.EnvOption
		vars []variable
	)
	for _, s := range df.Series {
		name := s.Name()
		if !isIdentifier(name) {
			wc.Logger().Debug("column not visible to filter", "column", name)
			continue
		}
		opts = append(opts, cel.Variable(name, celType(column.TypeOf(s))))
		vars = append(vars, variable{name: name, series: s})
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return column.TypeUnknown, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	ast, issues := env.Compile(e.source)
	if issues != nil && issues.Err() != nil {
		return column.TypeUnknown, fmt.Errorf("%w: %v", ErrCompile, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return column.TypeUnknown, fmt.Errorf("%w: %v", ErrCompile, err)
	}

	e.prg = prg
	e.vars = vars
	e.frame = df
	e.out = columnType(ast.OutputType().String())
	wc.Logger().Debug("filter compiled", "expr", e.source, "type", e.out.String(), "columns", len(vars))
	return e.out, nil
}

// EvaluateEager evaluates the expression for every row and returns a boolean
// column. A row whose evaluation fails, for instance because a referenced
// column is null there, is not selected.
func (e *Expr) EvaluateEager(wc *selector.WorkContext) (dataframe.Series, error) {
	if e.closed {
		return nil, ErrClosed
	}
	t, err := e.Resolve(wc)
	if err != nil {
		return nil, err
	}
	if t != column.TypeBool {
		return nil, fmt.Errorf("%w: expression %q is of type %s", selector.ErrDtypeMismatch, e.source, t)
	}

	n := wc.NRows()
	result := make([]bool, n)
	failed := 0
	for i := 0; i < n; i++ {
		activation := make(map[string]any, len(e.vars))
		for _, v := range e.vars {
			if val := v.series.Value(i); val != nil {
				activation[v.name] = val
			}
		}
		out, _, err := e.prg.Eval(activation)
		if err != nil {
			failed++
			continue
		}
		b, ok := out.Value().(bool)
		result[i] = ok && b
	}
	if failed > 0 {
		wc.Logger().Debug("filter rows not evaluated", "expr", e.source, "rows", failed)
	}
	return column.NewBool("filter", result), nil
}

// Close releases the compiled program. Further use returns ErrClosed.
func (e *Expr) Close() error {
	e.closed = true
	e.prg = nil
	e.vars = nil
	e.frame = nil
	return nil
}

func celType(t column.Type) *cel.Type {
	switch t {
	case column.TypeBool:
		return cel.BoolType
	case column.TypeInt:
		return cel.IntType
	case column.TypeFloat:
		return cel.DoubleType
	case column.TypeString:
		return cel.StringType
	default:
		return cel.DynType
	}
}

func columnType(name string) column.Type {
	switch name {
	case "bool":
		return column.TypeBool
	case "int", "uint":
		return column.TypeInt
	case "double":
		return column.TypeFloat
	case "string":
		return column.TypeString
	default:
		return column.TypeUnknown
	}
}

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// isIdentifier reports whether name can be referenced from CEL.
func isIdentifier(name string) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

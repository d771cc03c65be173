// Package literal parses the textual form of a row selector into the source
// value accepted by selector.Compile.
//
// The syntax follows Python indexing:
//
//	5                    one row
//	-1                   the last row
//	2:8:2                a slice; any part may be omitted or None
//	range(0, 10, 3)      a strict range
//	None, ..., :         all rows
//	0, 1:3, ::-1         a list; brackets are optional at the top level
//	[0, range(4, 6)]     a list
//	filter("price > 10") a filter expression
//	mask("keep.csv")     a single-column frame loaded from a file
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/rowsel/pkg/selector"
)

// Error definitions
var (
	ErrSyntax      = errors.New("selector syntax error")
	ErrUnsupported = errors.New("selector form not supported")
)

// Options supplies the constructors for selector forms that need outside
// resources.
type Options struct {
	// LoadFrame loads the frame named by mask("...").
	LoadFrame func(path string) (*dataframe.DataFrame, error)
	// NewFilter builds the expression for filter("...").
	NewFilter func(source string) selector.FilterExpr
}

// Parser parses selector text.
type Parser struct {
	tokens []Token
	pos    int
	opts   Options
}

// NewParser creates a new parser for the given input.
func NewParser(input string, opts Options) *Parser {
	return &Parser{
		tokens: NewLexer(input).Tokenize(),
		opts:   opts,
	}
}

// Parse parses input into a selector source.
func Parse(input string, opts Options) (any, error) {
	return NewParser(input, opts).Parse()
}

// Parse parses the entire input. A single item is returned as is; a
// comma-separated sequence becomes a []any list.
func (p *Parser) Parse() (any, error) {
	if p.peek().Type == TokenEOF {
		return nil, nil
	}

	first, err := p.parseItem()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == TokenEOF {
		return first, nil
	}

	items := []any{first}
	for p.peek().Type == TokenComma {
		p.pos++
		if p.peek().Type == TokenEOF {
			break // trailing comma
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return items, nil
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != t {
		return tok, fmt.Errorf("%w: col %d: expected %s, got %s", ErrSyntax, tok.Pos, t, describe(tok))
	}
	return tok, nil
}

func (p *Parser) unexpected(tok Token) error {
	return fmt.Errorf("%w: col %d: unexpected %s", ErrSyntax, tok.Pos, describe(tok))
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Value)
}

// parseItem parses a slice or an atom.
func (p *Parser) parseItem() (any, error) {
	if p.peek().Type == TokenColon {
		return p.parseSlice(nil)
	}
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == TokenColon {
		return p.parseSlice(atom)
	}
	return atom, nil
}

// parseSlice parses the remainder of start:stop[:step]. start is the already
// parsed lower bound.
func (p *Parser) parseSlice(start any) (any, error) {
	if start != nil {
		if _, ok := start.(int64); !ok {
			return nil, fmt.Errorf("%w: slice bound %v is not an integer", ErrSyntax, start)
		}
	}
	s := selector.Slice{Start: start}

	p.pos++ // Consume first colon
	stop, err := p.parseBound()
	if err != nil {
		return nil, err
	}
	s.Stop = stop

	if p.peek().Type == TokenColon {
		p.pos++
		step, err := p.parseBound()
		if err != nil {
			return nil, err
		}
		s.Step = step
	}
	return s, nil
}

// parseBound parses an optional integer slice bound; None or nothing is nil.
func (p *Parser) parseBound() (any, error) {
	tok := p.peek()
	switch {
	case tok.Type == TokenInt:
		p.pos++
		return parseInt(tok)
	case tok.Type == TokenIdent && tok.Value == "None":
		p.pos++
		return nil, nil
	case tok.Type == TokenColon, tok.Type == TokenComma, tok.Type == TokenRBracket, tok.Type == TokenEOF:
		return nil, nil
	default:
		return nil, p.unexpected(tok)
	}
}

func (p *Parser) parseAtom() (any, error) {
	tok := p.next()

	switch tok.Type {
	case TokenInt:
		return parseInt(tok)

	case TokenEllipsis:
		return selector.Ellipsis{}, nil

	case TokenLBracket:
		return p.parseList()

	case TokenIdent:
		switch tok.Value {
		case "None":
			return nil, nil
		case "True":
			return true, nil
		case "False":
			return false, nil
		case "range":
			return p.parseRange()
		case "filter":
			return p.parseFilter()
		case "mask":
			return p.parseMask()
		}
		return nil, fmt.Errorf("%w: col %d: unknown name %q", ErrSyntax, tok.Pos, tok.Value)

	default:
		return nil, p.unexpected(tok)
	}
}

// parseList parses the items of [a, b, ...] after the opening bracket.
func (p *Parser) parseList() (any, error) {
	items := []any{}
	for {
		if p.peek().Type == TokenRBracket {
			p.pos++
			return items, nil
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		switch tok := p.next(); tok.Type {
		case TokenComma:
		case TokenRBracket:
			return items, nil
		default:
			return nil, fmt.Errorf("%w: col %d: expected \",\" or \"]\", got %s", ErrSyntax, tok.Pos, describe(tok))
		}
	}
}

func (p *Parser) parseRange() (any, error) {
	open, err := p.expect(TokenLParen)
	if err != nil {
		return nil, err
	}
	var args []int64
	for p.peek().Type != TokenRParen {
		tok, err := p.expect(TokenInt)
		if err != nil {
			return nil, err
		}
		v, err := parseInt(tok)
		if err != nil {
			return nil, err
		}
		args = append(args, v.(int64))
		if p.peek().Type != TokenRParen {
			if _, err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}
	p.pos++ // Consume ")"

	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("%w: col %d: range expects 1 to 3 arguments, got %d", ErrSyntax, open.Pos, len(args))
	}
	return selector.NewRange(args...), nil
}

func (p *Parser) parseCallString() (Token, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return Token{}, err
	}
	arg, err := p.expect(TokenString)
	if err != nil {
		return Token{}, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return Token{}, err
	}
	return arg, nil
}

func (p *Parser) parseFilter() (any, error) {
	arg, err := p.parseCallString()
	if err != nil {
		return nil, err
	}
	if p.opts.NewFilter == nil {
		return nil, fmt.Errorf("%w: filter expressions are not enabled", ErrUnsupported)
	}
	return p.opts.NewFilter(arg.Value), nil
}

func (p *Parser) parseMask() (any, error) {
	arg, err := p.parseCallString()
	if err != nil {
		return nil, err
	}
	if p.opts.LoadFrame == nil {
		return nil, fmt.Errorf("%w: mask files are not enabled", ErrUnsupported)
	}
	df, err := p.opts.LoadFrame(arg.Value)
	if err != nil {
		return nil, fmt.Errorf("mask(%q): %w", arg.Value, err)
	}
	return df, nil
}

func parseInt(tok Token) (any, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(tok.Value, "_", ""), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: col %d: invalid integer: %s", ErrSyntax, tok.Pos, tok.Value)
	}
	return v, nil
}

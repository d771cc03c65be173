package literal

import (
	"strings"
	"unicode"
)

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF      TokenType = iota
	TokenIllegal            // Unrecognized input
	TokenIdent              // None, True, range, filter, ...
	TokenInt                // Integer literals, optionally negative
	TokenString             // "quoted" or 'quoted' strings
	TokenComma              // ,
	TokenColon              // :
	TokenLBracket           // [
	TokenRBracket           // ]
	TokenLParen             // (
	TokenRParen             // )
	TokenEllipsis           // ...
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenString:
		return "STRING"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenLBracket:
		return "LBRACKET"
	case TokenRBracket:
		return "RBRACKET"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenEllipsis:
		return "ELLIPSIS"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token. Pos is the 1-based column of its first
// character.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Lexer tokenizes selector text.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input and returns the tokens. Unrecognized
// characters become TokenIllegal so the parser can report them.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == ',':
			l.emit(TokenComma, ",")
		case ch == ':':
			l.emit(TokenColon, ":")
		case ch == '[':
			l.emit(TokenLBracket, "[")
		case ch == ']':
			l.emit(TokenRBracket, "]")
		case ch == '(':
			l.emit(TokenLParen, "(")
		case ch == ')':
			l.emit(TokenRParen, ")")

		case strings.HasPrefix(l.input[l.pos:], "..."):
			l.emit(TokenEllipsis, "...")

		case ch == '"' || ch == '\'':
			l.scanString(ch)

		case unicode.IsDigit(rune(ch)) || (ch == '-' && l.pos+1 < len(l.input) && unicode.IsDigit(rune(l.input[l.pos+1]))):
			l.scanNumber()

		case unicode.IsLetter(rune(ch)) || ch == '_':
			l.scanIdent()

		default:
			l.emit(TokenIllegal, string(ch))
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Value: "", Pos: l.pos + 1})
	return l.tokens
}

func (l *Lexer) emit(t TokenType, value string) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Pos: l.pos + 1})
	l.pos += len(value)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.pos++
		} else {
			break
		}
	}
}

// scanString reads a string delimited by quote. A backslash escapes the next
// character. An unterminated string is illegal.
func (l *Lexer) scanString(quote byte) {
	start := l.pos
	l.pos++ // Skip opening quote

	var sb strings.Builder
	for l.pos < len(l.input) && l.input[l.pos] != quote {
		if l.input[l.pos] == '\\' && l.pos+1 < len(l.input) {
			l.pos++
		}
		sb.WriteByte(l.input[l.pos])
		l.pos++
	}

	if l.pos >= len(l.input) {
		l.tokens = append(l.tokens, Token{Type: TokenIllegal, Value: l.input[start:], Pos: start + 1})
		return
	}
	l.pos++ // Skip closing quote
	l.tokens = append(l.tokens, Token{Type: TokenString, Value: sb.String(), Pos: start + 1})
}

func (l *Lexer) scanNumber() {
	start := l.pos

	// Handle negative sign
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && (unicode.IsDigit(rune(l.input[l.pos])) || l.input[l.pos] == '_') {
		l.pos++
	}

	// A number running into letters or a decimal point is not an integer.
	if l.pos < len(l.input) && (l.input[l.pos] == '.' && !strings.HasPrefix(l.input[l.pos:], "...") ||
		unicode.IsLetter(rune(l.input[l.pos]))) {
		for l.pos < len(l.input) && (unicode.IsLetter(rune(l.input[l.pos])) ||
			unicode.IsDigit(rune(l.input[l.pos])) || l.input[l.pos] == '.') {
			l.pos++
		}
		l.tokens = append(l.tokens, Token{Type: TokenIllegal, Value: l.input[start:l.pos], Pos: start + 1})
		return
	}

	l.tokens = append(l.tokens, Token{Type: TokenInt, Value: l.input[start:l.pos], Pos: start + 1})
}

func (l *Lexer) scanIdent() {
	start := l.pos

	// First character
	l.pos++

	// Continue with alphanumeric or underscore
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			l.pos++
		} else {
			break
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenIdent, Value: l.input[start:l.pos], Pos: start + 1})
}

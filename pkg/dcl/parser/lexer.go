package parser

import (
	"strconv"
	"strings"

	"driftwatch-io/driftwatch/pkg/dcl/ast"
)

// tokenKind identifies the lexical class of a token.
type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent           // bare identifier or dotted path
	tokenString          // quoted string literal (decoded)
	tokenNumber          // numeric literal
	tokenRegex           // /pattern/ literal (delimiters stripped)
	tokenLParen
	tokenRParen
	tokenEq      // ==
	tokenNeq     // !=
	tokenLt      // <
	tokenLte     // <=
	tokenGt      // >
	tokenGte     // >=
	tokenWhen
	tokenThen
	tokenAnd
	tokenOr
	tokenNot
	tokenContains
	tokenMatches
	tokenAssert
	tokenSet
	tokenApply
	tokenTemplate
	tokenIs
	tokenTo
	tokenTrue
	tokenFalse
	tokenNull
)

// keywords maps case-sensitive keyword spellings to token kinds.
// Word operators and structural keywords are uppercase; literal keywords
// are lowercase, matching the DCL surface syntax exactly.
var keywords = map[string]tokenKind{
	"WHEN":     tokenWhen,
	"THEN":     tokenThen,
	"AND":      tokenAnd,
	"OR":       tokenOr,
	"NOT":      tokenNot,
	"CONTAINS": tokenContains,
	"MATCHES":  tokenMatches,
	"ASSERT":   tokenAssert,
	"SET":      tokenSet,
	"APPLY":    tokenApply,
	"TEMPLATE": tokenTemplate,
	"IS":       tokenIs,
	"TO":       tokenTo,
	"true":     tokenTrue,
	"false":    tokenFalse,
	"null":     tokenNull,
}

// token is a single lexeme with its source location.
type token struct {
	kind tokenKind
	text string  // identifier text, decoded string, or regex body
	num  float64 // numeric value for tokenNumber
	loc  ast.Location
}

func (t token) describe() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return strconv.Quote(t.text)
	case tokenRegex:
		return "/" + t.text + "/"
	default:
		return strconv.Quote(t.text)
	}
}

// lexer scans DCL source text into tokens, tracking line and column.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) location() ast.Location {
	return ast.Location{Line: l.line, Column: l.col}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

// skipSpace consumes whitespace and line comments ('#' or '//').
func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '#':
			l.skipLine()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			l.skipLine()
		default:
			return
		}
	}
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// next returns the next token, or a ParseError on malformed input.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	loc := l.location()

	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, loc: loc}, nil
	}

	c := l.peek()
	switch {
	case c == '(':
		l.advance()
		return token{kind: tokenLParen, text: "(", loc: loc}, nil
	case c == ')':
		l.advance()
		return token{kind: tokenRParen, text: ")", loc: loc}, nil
	case c == '=':
		l.advance()
		if l.peek() != '=' {
			return token{}, errorAt(loc, "unexpected character %q (did you mean \"==\"?)", string(c))
		}
		l.advance()
		return token{kind: tokenEq, text: "==", loc: loc}, nil
	case c == '!':
		l.advance()
		if l.peek() != '=' {
			return token{}, errorAt(loc, "unexpected character %q (did you mean \"!=\"?)", string(c))
		}
		l.advance()
		return token{kind: tokenNeq, text: "!=", loc: loc}, nil
	case c == '<':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenLte, text: "<=", loc: loc}, nil
		}
		return token{kind: tokenLt, text: "<", loc: loc}, nil
	case c == '>':
		l.advance()
		if l.peek() == '=' {
			l.advance()
			return token{kind: tokenGte, text: ">=", loc: loc}, nil
		}
		return token{kind: tokenGt, text: ">", loc: loc}, nil
	case c == '"' || c == '\'':
		return l.scanString(loc)
	case c == '/':
		return l.scanRegex(loc)
	case c == '-' || isDigit(c):
		return l.scanNumber(loc)
	case isIdentStart(c):
		return l.scanIdent(loc), nil
	default:
		return token{}, errorAt(loc, "unexpected character %q", string(c))
	}
}

// scanString scans a single- or double-quoted string literal, decoding
// common backslash escapes.
func (l *lexer) scanString(loc ast.Location) (token, error) {
	quote := l.advance()
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.advance()
		if c == quote {
			return token{kind: tokenString, text: sb.String(), loc: loc}, nil
		}
		if c == '\\' {
			if l.pos >= len(l.src) {
				break
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'':
				sb.WriteByte(esc)
			default:
				// Unknown escape: keep the character as written.
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(c)
	}
	return token{}, errorAt(loc, "unterminated string literal")
}

// scanRegex scans a /pattern/ literal. An escaped '/' inside the body is
// unescaped; every other backslash sequence is preserved verbatim for the
// regexp compiler.
func (l *lexer) scanRegex(loc ast.Location) (token, error) {
	l.advance() // opening '/'
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.advance()
		if c == '/' {
			return token{kind: tokenRegex, text: sb.String(), loc: loc}, nil
		}
		if c == '\\' && l.peek() == '/' {
			sb.WriteByte(l.advance())
			continue
		}
		if c == '\\' && l.pos < len(l.src) {
			sb.WriteByte(c)
			sb.WriteByte(l.advance())
			continue
		}
		if c == '\n' {
			break
		}
		sb.WriteByte(c)
	}
	return token{}, errorAt(loc, "unterminated regex literal")
}

// scanNumber scans an integer or decimal literal with an optional leading '-'.
func (l *lexer) scanNumber(loc ast.Location) (token, error) {
	start := l.pos
	if l.peek() == '-' {
		l.advance()
	}
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		l.advance()
		for l.pos < len(l.src) && isDigit(l.peek()) {
			l.advance()
		}
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, errorAt(loc, "invalid number %q", text)
	}
	return token{kind: tokenNumber, text: text, num: n, loc: loc}, nil
}

// scanIdent scans an identifier or dotted path; keywords are classified
// after scanning. Dotted paths ("custom_data.vlan") lex as one token.
func (l *lexer) scanIdent(loc ast.Location) token {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.peek()
		if isIdentPart(c) {
			l.advance()
			continue
		}
		// A dot continues the path only when followed by another segment.
		if c == '.' && l.pos+1 < len(l.src) && isIdentStart(l.src[l.pos+1]) {
			l.advance()
			continue
		}
		break
	}
	text := l.src[start:l.pos]
	if kind, ok := keywords[text]; ok {
		return token{kind: kind, text: text, loc: loc}
	}
	return token{kind: tokenIdent, text: text, loc: loc}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '-'
}

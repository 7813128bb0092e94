// Package reader is a small s-expression front end for Sable. It turns source
// text into syntax trees:
//
//	(= (let x) 1)            application
//	[1 2 3]                  (__list__ 1 2 3)
//	{(= x 1) y}              (__record__ (= x 1) y)
//	@test                    attribute on the next expression
//	(@ test)                 the same attribute through the @ form
//	; comment
package reader

import (
	"fmt"

	"github.com/sable-lang/sable/internal/position"
)

// tokenType represents the type of a token
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenLBrace
	tokenRBrace
	tokenAt
	tokenIdentifier
	tokenOperator
	tokenInteger
	tokenFloat
	tokenString
)

var tokenNames = map[tokenType]string{
	tokenEOF:        "end of input",
	tokenLParen:     "'('",
	tokenRParen:     "')'",
	tokenLBracket:   "'['",
	tokenRBracket:   "']'",
	tokenLBrace:     "'{'",
	tokenRBrace:     "'}'",
	tokenAt:         "'@'",
	tokenIdentifier: "identifier",
	tokenOperator:   "operator",
	tokenInteger:    "integer",
	tokenFloat:      "float",
	tokenString:     "string",
}

func (tt tokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

type token struct {
	typ     tokenType
	literal string
	span    position.Span
}

// lexer scans one source file. Line and column are tracked incrementally.
type lexer struct {
	input    string
	filename string
	position int  // current position in input (points to current char)
	readPos  int  // current reading position in input (after current char)
	ch       byte // current char under examination
	line     int
	column   int
}

func newLexer(input, filename string) *lexer {
	l := &lexer{input: input, filename: filename, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.position = l.readPos
	l.readPos++
	l.column++
}

func (l *lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *lexer) pos() position.Position {
	return position.Position{Filename: l.filename, Line: l.line, Column: l.column, Offset: l.position}
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == ',':
			l.readChar()
		case l.ch == ';':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipWhitespaceAndComments()
	start := l.pos()

	single := func(tt tokenType) token {
		lit := string(l.ch)
		l.readChar()
		return token{typ: tt, literal: lit, span: position.Span{Start: start, End: l.pos()}}
	}

	switch {
	case l.ch == 0 && l.position >= len(l.input):
		return token{typ: tokenEOF, span: position.Span{Start: start, End: start}}, nil
	case l.ch == '(':
		return single(tokenLParen), nil
	case l.ch == ')':
		return single(tokenRParen), nil
	case l.ch == '[':
		return single(tokenLBracket), nil
	case l.ch == ']':
		return single(tokenRBracket), nil
	case l.ch == '{':
		return single(tokenLBrace), nil
	case l.ch == '}':
		return single(tokenRBrace), nil
	case l.ch == '@' && endsToken(l.peekChar()):
		// A lone @ names the attribute form, as in (@ test).
		return single(tokenOperator), nil
	case l.ch == '@':
		return single(tokenAt), nil
	case l.ch == '"':
		return l.readString(start)
	case isDigit(l.ch), l.ch == '-' && isDigit(l.peekChar()):
		return l.readNumber(start), nil
	case isLetter(l.ch):
		lit := l.readWhile(isIdentChar)
		return token{typ: tokenIdentifier, literal: lit, span: position.Span{Start: start, End: l.pos()}}, nil
	case isOperatorChar(l.ch):
		lit := l.readWhile(isOperatorChar)
		return token{typ: tokenOperator, literal: lit, span: position.Span{Start: start, End: l.pos()}}, nil
	default:
		ch := l.ch
		l.readChar()
		return token{}, &Error{Span: position.Span{Start: start, End: l.pos()}, Message: fmt.Sprintf("unexpected character %q", ch)}
	}
}

func (l *lexer) readWhile(pred func(byte) bool) string {
	start := l.position
	for pred(l.ch) && l.position < len(l.input) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *lexer) readNumber(start position.Position) token {
	begin := l.position
	isFloat := false
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '-' || next == '+' {
			isFloat = true
			l.readChar()
			if l.ch == '-' || l.ch == '+' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	tt := tokenInteger
	if isFloat {
		tt = tokenFloat
	}
	return token{typ: tt, literal: l.input[begin:l.position], span: position.Span{Start: start, End: l.pos()}}
}

func (l *lexer) readString(start position.Position) (token, error) {
	l.readChar() // opening quote
	var out []byte
	for {
		switch l.ch {
		case 0:
			if l.position >= len(l.input) {
				return token{}, &Error{Span: position.Span{Start: start, End: l.pos()}, Message: "unterminated string"}
			}
			out = append(out, l.ch)
		case '"':
			l.readChar()
			return token{typ: tokenString, literal: string(out), span: position.Span{Start: start, End: l.pos()}}, nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '"', '\\':
				out = append(out, l.ch)
			default:
				return token{}, &Error{Span: position.Span{Start: start, End: l.pos()}, Message: fmt.Sprintf("unknown escape \\%c", l.ch)}
			}
		default:
			out = append(out, l.ch)
		}
		l.readChar()
	}
}

// endsToken reports whether ch cannot start the body of an @ attribute.
func endsToken(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\n', '\r', ',', ';', ')', ']', '}':
		return true
	}
	return false
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '?' || ch == '!' || ch == '\''
}

func isOperatorChar(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '=', '!', '<', '>', '&', '|', '.', '%', '^', '~', ':', '$', '#':
		return true
	}
	return false
}

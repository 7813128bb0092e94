package reader

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/syntax"
)

// Error is a read failure with the span of the offending input.
type Error struct {
	Span    position.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}

// Names the bracket sugars expand to.
const (
	ListForm   = "__list__"
	RecordForm = "__record__"
)

type parser struct {
	lex *lexer
	cur token
}

// ParseString reads every top-level expression in src.
func ParseString(filename, src string) (*syntax.Module, error) {
	p := &parser{lex: newLexer(src, filename)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	mod := &syntax.Module{
		Name:   strings.TrimSuffix(filename, ".sb"),
		Source: position.NewSourceFile(filename, src),
	}
	for p.cur.typ != tokenEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		mod.Items = append(mod.Items, expr)
	}
	return mod, nil
}

// ParseExpr reads exactly one expression.
func ParseExpr(src string) (syntax.Expr, error) {
	mod, err := ParseString("", src)
	if err != nil {
		return nil, err
	}
	if len(mod.Items) != 1 {
		return nil, fmt.Errorf("expected one expression, found %d", len(mod.Items))
	}
	return mod.Items[0], nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) parseExpr() (syntax.Expr, error) {
	tok := p.cur
	switch tok.typ {
	case tokenLParen:
		return p.parseSequence(tokenRParen, "")
	case tokenLBracket:
		return p.parseSequence(tokenRBracket, ListForm)
	case tokenLBrace:
		return p.parseSequence(tokenRBrace, RecordForm)
	case tokenAt:
		if err := p.advance(); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &syntax.Attribute{Span: tok.span.Union(body.GetSpan()), Body: body}, nil
	case tokenIdentifier:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &syntax.Ident{Span: tok.span, Name: tok.literal}, nil
	case tokenOperator:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &syntax.Operator{Span: tok.span, Op: tok.literal}, nil
	case tokenInteger:
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, ok := new(big.Int).SetString(strings.ReplaceAll(tok.literal, "_", ""), 10)
		if !ok {
			return nil, &Error{Span: tok.span, Message: fmt.Sprintf("malformed integer %q", tok.literal)}
		}
		return &syntax.Literal{Span: tok.span, LitKind: syntax.LiteralInteger, Value: n, Raw: tok.literal}, nil
	case tokenFloat:
		if err := p.advance(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok.literal, 64)
		if err != nil {
			return nil, &Error{Span: tok.span, Message: fmt.Sprintf("malformed float %q", tok.literal)}
		}
		return &syntax.Literal{Span: tok.span, LitKind: syntax.LiteralFloat, Value: f, Raw: tok.literal}, nil
	case tokenString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &syntax.Literal{Span: tok.span, LitKind: syntax.LiteralString, Value: tok.literal, Raw: strconv.Quote(tok.literal)}, nil
	default:
		return nil, &Error{Span: tok.span, Message: fmt.Sprintf("unexpected %s", tok.typ)}
	}
}

// parseSequence reads items up to the closing token. With a non-empty
// sugar name the items become arguments of that form; otherwise the first
// item is the head of an application and `()` reads as nil.
func (p *parser) parseSequence(closing tokenType, sugar string) (syntax.Expr, error) {
	open := p.cur
	if err := p.advance(); err != nil {
		return nil, err
	}

	var items []syntax.Expr
	for p.cur.typ != closing {
		if p.cur.typ == tokenEOF {
			return nil, &Error{Span: open.span, Message: fmt.Sprintf("unclosed %s", open.typ)}
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	span := position.Span{Start: open.span.Start, End: p.cur.span.End}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if sugar != "" {
		head := &syntax.Ident{Span: open.span, Name: sugar}
		return &syntax.Apply{Span: span, Head: head, Args: items}, nil
	}
	if len(items) == 0 {
		return &syntax.Literal{Span: span, LitKind: syntax.LiteralNil, Raw: "nil"}, nil
	}
	return &syntax.Apply{Span: span, Head: items[0], Args: items[1:]}, nil
}

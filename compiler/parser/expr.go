package parser

import (
	"context"

	"github.com/ifjlang/ifjc/compiler/scanner"
)

// Expression grammar, ascending precedence, each level strictly left
// associative:
//
//	isExpr   := relation ('is' type)?
//	relation := simple (relOp simple)*
//	simple   := term (('+'|'-') term)*
//	term     := factor (('*'|'/') factor)*
//	factor   := id | __id | int | float | string | 'null' | '(' expr ')'
//
// Every completed level leaves exactly one value on the stack.

func (p *Parser) parseExpression(ctx context.Context) {
	p.parseIsExpr(ctx)
}

func (p *Parser) parseIsExpr(ctx context.Context) {
	p.parseRelation(ctx)
	p.parseIsTail(ctx)
}

func (p *Parser) parseIsTail(ctx context.Context) {
	if p.err != nil || !p.accept(scanner.Is) {
		return
	}

	p.next(ctx)

	if !isTypeToken(p.tok.Kind) {
		p.fail(ctx, StatusSyntax, "expected type after is operator")
		return
	}

	typeTok := p.tok.Kind
	p.next(ctx)

	p.genIsOp(ctx, typeTok)
}

func (p *Parser) parseRelation(ctx context.Context) {
	p.parseSimple(ctx)
	p.relationLoop(ctx)
}

func (p *Parser) relationLoop(ctx context.Context) {
	for isRelOp(p.tok.Kind) && p.err == nil {
		op := p.tok.Kind
		p.next(ctx)

		p.parseSimple(ctx)

		p.genRelationalOp(ctx, op)
	}
}

func (p *Parser) parseSimple(ctx context.Context) {
	p.parseTerm(ctx)
	p.simpleLoop(ctx)
}

func (p *Parser) simpleLoop(ctx context.Context) {
	for (p.accept(scanner.Plus) || p.accept(scanner.Minus)) && p.err == nil {
		op := p.tok.Kind
		p.next(ctx)

		p.parseTerm(ctx)

		p.genBinaryOp(ctx, op)
	}
}

func (p *Parser) parseTerm(ctx context.Context) {
	p.parseFactor(ctx)
	p.termLoop(ctx)
}

func (p *Parser) termLoop(ctx context.Context) {
	for (p.accept(scanner.Star) || p.accept(scanner.Slash)) && p.err == nil {
		op := p.tok.Kind
		p.next(ctx)

		p.parseFactor(ctx)

		p.genBinaryOp(ctx, op)
	}
}

func (p *Parser) parseFactor(ctx context.Context) {
	switch p.tok.Kind {
	case scanner.Ident:
		id := p.tok
		p.next(ctx)

		p.identFactor(ctx, id)
	case scanner.GlobalIdent:
		// globals always resolve, an uninitialized one reads as null
		p.gen.emitf("PUSHS GF@%s", p.tok.Text)
		p.next(ctx)
	case scanner.IntLit:
		p.gen.emitf("PUSHS int@%s", p.tok.Text)
		p.next(ctx)
	case scanner.FloatLit:
		p.gen.emitf("PUSHS float@%s", p.tok.Text)
		p.next(ctx)
	case scanner.StringLit:
		p.gen.emitf("PUSHS string@%s", p.tok.Text)
		p.next(ctx)
	case scanner.Null:
		p.gen.emitf("PUSHS nil@nil")
		p.next(ctx)
	case scanner.LParen:
		p.next(ctx)

		p.parseExpression(ctx)

		if !p.expect(ctx, scanner.RParen) {
			return
		}
		p.next(ctx)
	default:
		p.fail(ctx, StatusSyntax, "invalid factor in expression")
	}
}

// identFactor emits the load for an already consumed identifier token.
// The name must exist in the open function's local table.
func (p *Parser) identFactor(ctx context.Context, id scanner.Token) {
	if _, ok := p.locals.Find(id.Text); !ok {
		p.failAt(ctx, StatusUndefined, "undefined variable "+id.Text, id.Line, id.Col)
		return
	}

	p.gen.emitf("PUSHS LF@%s", id.Text)
}

func isRelOp(k scanner.Kind) bool {
	switch k {
	case scanner.Eq, scanner.NotEq, scanner.Less, scanner.Greater, scanner.LessEq, scanner.GreaterEq:
		return true
	}

	return false
}

func isTypeToken(k scanner.Kind) bool {
	switch k {
	case scanner.NumType, scanner.StringType, scanner.NullType:
		return true
	}

	return false
}

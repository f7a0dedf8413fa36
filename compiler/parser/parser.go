// Package parser is a syntax-directed translator for IFJ25: a recursive
// descent parser fused with code emission. No syntax tree is materialized,
// instructions are emitted as productions complete, so the emitted frame,
// label and stack structure must be right on first pass.
package parser

import (
	"context"
	"io"

	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/ifjlang/ifjc/compiler/scanner"
	"github.com/ifjlang/ifjc/compiler/symtab"
)

type Parser struct {
	sc  *scanner.Scanner
	tok scanner.Token

	globals *symtab.Table // callables keyed name_arity
	locals  *symtab.Table // variables of the open function, replaced wholesale

	gen emitter

	err *Error // first error wins

	labelCounter int
	tempCounter  int

	curFunc  string // empty at top level
	curArity int
}

func New(src []byte, out io.Writer) *Parser {
	return &Parser{
		sc:      scanner.New(src),
		globals: symtab.New(),
		gen:     emitter{w: out},
	}
}

// Translate consumes the whole token stream and streams the instruction
// text to the output writer. It returns nil or the first latched *Error.
func (p *Parser) Translate(ctx context.Context) error {
	p.next(ctx)
	p.parseProgram(ctx)

	if p.err != nil {
		return p.err
	}

	if p.gen.err != nil {
		return &Error{Code: StatusInternal, Msg: "write output: " + p.gen.err.Error()}
	}

	return nil
}

func (p *Parser) next(ctx context.Context) {
	p.tok = p.sc.Next()

	if tr := tlog.SpanFromContext(ctx); tr.If("next_token") {
		tr.Printw("next token",
			"kind", p.tok.Kind, "text", p.tok.Text,
			"line", p.tok.Line, "col", p.tok.Col,
			"from", loc.Callers(1, 3))
	}

	if p.tok.Kind == scanner.Error {
		p.failf(ctx, StatusLexical, "invalid character %q", p.tok.Text)
	}
}

func (p *Parser) accept(kind scanner.Kind) bool {
	return p.tok.Kind == kind
}

func (p *Parser) expect(ctx context.Context, kind scanner.Kind) bool {
	if p.accept(kind) {
		return true
	}

	p.failf(ctx, StatusSyntax, "expected %v, got %v", kind, p.tok.Kind)

	return false
}

// program := prolog class '{' EOL function* '}'
func (p *Parser) parseProgram(ctx context.Context) {
	p.genProlog()

	p.parseProlog(ctx)
	if p.err != nil {
		return
	}

	p.parseClass(ctx)
	if p.err != nil {
		return
	}

	p.parseFunctions(ctx)
	if p.err != nil {
		return
	}

	p.genEpilog(ctx)
}

// prolog := 'import' '"ifj25"' 'for' 'Ifj' EOL
func (p *Parser) parseProlog(ctx context.Context) {
	if !p.expect(ctx, scanner.Import) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.StringLit) {
		return
	}

	if p.tok.Text != "ifj25" {
		p.fail(ctx, StatusSyntax, `expected string "ifj25" in import`)
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.For) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.IfjNamespace) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.EOL) {
		return
	}
	p.next(ctx)
}

// class := 'class' 'Program' '{' EOL
func (p *Parser) parseClass(ctx context.Context) {
	if !p.expect(ctx, scanner.Class) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.Ident) {
		return
	}

	if p.tok.Text != "Program" {
		p.fail(ctx, StatusSyntax, "expected 'Program' as class name")
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.LBrace) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.EOL) {
		return
	}
	p.next(ctx)
}

func (p *Parser) parseFunctions(ctx context.Context) {
	for !p.accept(scanner.RBrace) && p.err == nil {
		switch {
		case p.accept(scanner.Static):
			p.parseFunction(ctx)
		case p.accept(scanner.EOL):
			p.next(ctx)
		default:
			p.fail(ctx, StatusSyntax, "expected function definition or end of class")
			return
		}
	}

	if p.err != nil {
		return
	}

	if !p.expect(ctx, scanner.RBrace) {
		return
	}
	p.next(ctx)
}

// Three definition forms share the 'static name' prefix and are told apart
// by one token of lookahead: '{' opens a getter, '=' opens a setter,
// anything else must be a plain function's parameter list.
func (p *Parser) parseFunction(ctx context.Context) {
	p.next(ctx) // static

	if !p.expect(ctx, scanner.Ident) {
		return
	}

	name := p.tok.Text
	p.next(ctx)

	if p.accept(scanner.LBrace) {
		p.parseGetter(ctx, name)
		return
	}

	if p.accept(scanner.Assign) {
		p.parseSetter(ctx, name)
		return
	}

	if !p.expect(ctx, scanner.LParen) {
		return
	}
	p.next(ctx)

	var params []string

	if !p.accept(scanner.RParen) {
		if !p.expect(ctx, scanner.Ident) {
			return
		}

		params = append(params, p.tok.Text)
		p.next(ctx)

		for p.accept(scanner.Comma) {
			p.next(ctx)

			if !p.expect(ctx, scanner.Ident) {
				return
			}

			params = append(params, p.tok.Text)
			p.next(ctx)
		}
	}

	if !p.expect(ctx, scanner.RParen) {
		return
	}
	p.next(ctx)

	if !p.declareCallable(ctx, name, symtab.Callable{Kind: symtab.Func, Arity: len(params), Params: params}) {
		return
	}

	p.openFunction(ctx, name, len(params))
	p.parseBlock(ctx)
	p.closeFunction()
}

// getter := 'static' name block, a zero-arity callable.
func (p *Parser) parseGetter(ctx context.Context, name string) {
	if !p.declareCallable(ctx, name, symtab.Callable{Kind: symtab.Getter}) {
		return
	}

	p.openFunction(ctx, name, 0)
	p.parseBlock(ctx)
	p.closeFunction()
}

// setter := 'static' name '=' '(' id ')' block, a one-arity callable whose
// parameter is pre-registered as a local before the body parses.
func (p *Parser) parseSetter(ctx context.Context, name string) {
	p.next(ctx) // =

	if !p.expect(ctx, scanner.LParen) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.Ident) {
		return
	}

	param := p.tok.Text
	p.next(ctx)

	if !p.expect(ctx, scanner.RParen) {
		return
	}
	p.next(ctx)

	if !p.declareCallable(ctx, name, symtab.Callable{Kind: symtab.Setter, Arity: 1, Params: []string{param}}) {
		return
	}

	p.openFunction(ctx, name, 1)
	p.locals.Insert(param, symtab.Variable{Type: symtab.TypeNull})

	p.parseBlock(ctx)
	p.closeFunction()
}

func (p *Parser) declareCallable(ctx context.Context, name string, c symtab.Callable) bool {
	key := symtab.Key(name, c.Arity)

	if _, ok := p.globals.Find(key); ok {
		p.failf(ctx, StatusRedefinition, "%s redefined", name)
		return false
	}

	p.globals.Insert(key, c)

	return true
}

// openFunction emits the callable's prolog and replaces the local table.
// Locals never survive a function boundary.
func (p *Parser) openFunction(ctx context.Context, name string, arity int) {
	p.genFuncProlog(name, arity)

	p.curFunc = name
	p.curArity = arity
	p.locals = symtab.New()

	tlog.SpanFromContext(ctx).Printw("function", "name", name, "arity", arity)
}

func (p *Parser) closeFunction() {
	p.genFuncEpilog()

	p.curFunc = ""
	p.curArity = 0
}

// block := '{' EOL (statement EOL)* statement? '}'
//
// Blocks do not open a new scope: a var declared inside an if or while body
// lands in the function's one local table.
func (p *Parser) parseBlock(ctx context.Context) {
	if !p.expect(ctx, scanner.LBrace) {
		return
	}
	p.next(ctx)

	if !p.expect(ctx, scanner.EOL) {
		return
	}
	p.next(ctx)

	for !p.accept(scanner.RBrace) && p.err == nil {
		p.parseStatement(ctx)

		if !p.accept(scanner.RBrace) {
			if !p.expect(ctx, scanner.EOL) {
				return
			}
			p.next(ctx)
		}
	}

	if p.err != nil {
		return
	}

	if !p.expect(ctx, scanner.RBrace) {
		return
	}
	p.next(ctx)
}

func (p *Parser) parseStatement(ctx context.Context) {
	switch {
	case p.accept(scanner.Var):
		p.parseVarDecl(ctx)
	case p.accept(scanner.If):
		p.parseIf(ctx)
	case p.accept(scanner.While):
		p.parseWhile(ctx)
	case p.accept(scanner.Return):
		p.parseReturn(ctx)
	case p.accept(scanner.Ident), p.accept(scanner.GlobalIdent):
		name := p.tok.Text
		global := p.tok.Kind == scanner.GlobalIdent

		p.next(ctx)

		if !p.accept(scanner.Assign) {
			p.fail(ctx, StatusSemOther, "function call without assignment not supported")
			return
		}
		p.next(ctx)

		p.parseAssignment(ctx, name, global)
	default:
		p.fail(ctx, StatusSyntax, "invalid statement")
	}
}

// var id: declares a local, null-initialized in the emitted code.
func (p *Parser) parseVarDecl(ctx context.Context) {
	p.next(ctx) // var

	if !p.expect(ctx, scanner.Ident) {
		return
	}

	name := p.tok.Text

	if _, ok := p.locals.Find(name); ok {
		p.failf(ctx, StatusRedefinition, "variable %s redefined", name)
		return
	}

	p.locals.Insert(name, symtab.Variable{Type: symtab.TypeNull})
	p.genVarDecl(name, false)

	p.next(ctx)
}

// parseAssignment handles the right side after 'name =' was consumed.
// Assigning to an undeclared local is an error; a global target needs no
// declaration, uninitialized globals read as null.
func (p *Parser) parseAssignment(ctx context.Context, name string, global bool) {
	if !global {
		if _, ok := p.locals.Find(name); !ok {
			p.failf(ctx, StatusUndefined, "undefined local variable %s", name)
			return
		}
	}

	p.parseAssignRHS(ctx)

	if p.err != nil {
		return
	}

	p.genAssign(name, global)
}

// The right side is either a function call or an expression, told apart by
// whether a leading identifier is followed by '('. That is the only place
// a call can occur.
func (p *Parser) parseAssignRHS(ctx context.Context) {
	switch {
	case p.accept(scanner.IfjNamespace):
		p.next(ctx)

		if !p.expect(ctx, scanner.Dot) {
			return
		}
		p.next(ctx)

		if !p.expect(ctx, scanner.Ident) {
			return
		}

		name := "Ifj." + p.tok.Text
		p.next(ctx)

		p.parseCall(ctx, name)
	case p.accept(scanner.Ident):
		id := p.tok
		p.next(ctx)

		if p.accept(scanner.LParen) {
			p.parseCall(ctx, id.Text)
			return
		}

		// not a call: the identifier was the first factor of an
		// expression, pick up the grammar from the term level
		p.identFactor(ctx, id)
		p.termLoop(ctx)
		p.simpleLoop(ctx)
		p.relationLoop(ctx)
		p.parseIsTail(ctx)
	default:
		p.parseExpression(ctx)
	}
}

// call := '(' (expr (',' expr)*)? ')'
//
// Arity is whatever was actually parsed: resolution composes name_argCount,
// so a wrong argument count reads as an undefined function.
func (p *Parser) parseCall(ctx context.Context, name string) {
	if !p.expect(ctx, scanner.LParen) {
		return
	}
	p.next(ctx)

	args := 0

	if !p.accept(scanner.RParen) {
		p.parseExpression(ctx)
		args++

		for p.accept(scanner.Comma) && p.err == nil {
			p.next(ctx)
			p.parseExpression(ctx)
			args++
		}
	}

	if p.err != nil {
		return
	}

	if !p.expect(ctx, scanner.RParen) {
		return
	}
	p.next(ctx)

	builtin := isBuiltin(name)

	if !builtin {
		if _, ok := p.globals.Find(symtab.Key(name, args)); !ok {
			p.failf(ctx, StatusUndefined, "function %s with %d arguments not defined", name, args)
			return
		}
	}

	p.genCall(name, builtin)
}

// Builtins live under the Ifj namespace and bypass the symbol table.
func isBuiltin(name string) bool {
	return len(name) > 4 && name[:4] == "Ifj."
}

// if := 'if' '(' expr ')' block 'else' block; the else branch is mandatory.
func (p *Parser) parseIf(ctx context.Context) {
	elseLabel := p.newLabel()
	endLabel := p.newLabel()

	p.next(ctx) // if

	if !p.expect(ctx, scanner.LParen) {
		return
	}
	p.next(ctx)

	p.parseExpression(ctx)

	cond := p.newTemp()
	p.gen.emitf("POPS LF@%s", cond)
	p.gen.emitf("JUMPIFEQ %s LF@%s bool@false", elseLabel, cond)

	if !p.expect(ctx, scanner.RParen) {
		return
	}
	p.next(ctx)

	p.parseBlock(ctx)

	p.gen.emitf("JUMP %s", endLabel)
	p.gen.emitf("LABEL %s", elseLabel)

	if !p.accept(scanner.Else) {
		p.fail(ctx, StatusSyntax, "expected else in if statement")
		return
	}
	p.next(ctx)

	p.parseBlock(ctx)

	p.gen.emitf("LABEL %s", endLabel)
}

// while := 'while' '(' expr ')' block
func (p *Parser) parseWhile(ctx context.Context) {
	startLabel := p.newLabel()
	endLabel := p.newLabel()

	p.gen.emitf("LABEL %s", startLabel)

	p.next(ctx) // while

	if !p.expect(ctx, scanner.LParen) {
		return
	}
	p.next(ctx)

	p.parseExpression(ctx)

	cond := p.newTemp()
	p.gen.emitf("POPS LF@%s", cond)
	p.gen.emitf("JUMPIFEQ %s LF@%s bool@false", endLabel, cond)

	if !p.expect(ctx, scanner.RParen) {
		return
	}
	p.next(ctx)

	p.parseBlock(ctx)

	p.gen.emitf("JUMP %s", startLabel)
	p.gen.emitf("LABEL %s", endLabel)
}

// return := 'return' expr; the value is left on the stack for the caller.
func (p *Parser) parseReturn(ctx context.Context) {
	p.next(ctx) // return

	p.parseExpression(ctx)
}

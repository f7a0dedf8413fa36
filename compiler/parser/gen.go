package parser

import (
	"context"
	"io"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/ifjlang/ifjc/compiler/scanner"
	"github.com/ifjlang/ifjc/compiler/symtab"
)

// emitter streams the instruction text line by line. Nothing is buffered
// beyond the line being formatted.
type emitter struct {
	w io.Writer

	buf []byte
	err error // first write error
}

func (g *emitter) emitf(format string, args ...interface{}) {
	g.buf = hfmt.Appendf(g.buf[:0], format, args...)
	g.buf = append(g.buf, '\n')

	if g.err != nil {
		return
	}

	_, g.err = g.w.Write(g.buf)
}

func (p *Parser) newLabel() string {
	l := hfmt.Appendf(nil, "label_%d", p.labelCounter)
	p.labelCounter++

	return string(l)
}

// Scratch slot names are monotonic and never reused, so a slot belongs to
// exactly one emission.
func (p *Parser) newTemp() string {
	t := hfmt.Appendf(nil, "temp_%d", p.tempCounter)
	p.tempCounter++

	return string(t)
}

// The program prolog creates and pushes a frame before any user code runs.
func (p *Parser) genProlog() {
	p.gen.emitf(".IFJcode25")
	p.gen.emitf("CREATEFRAME")
	p.gen.emitf("PUSHFRAME")
}

// The epilog calls the entry point and terminates with success status. The
// entry point check is deliberately late: it runs only after the whole class
// body translated.
func (p *Parser) genEpilog(ctx context.Context) {
	if _, ok := p.globals.Find(symtab.Key("main", 0)); !ok {
		p.fail(ctx, StatusUndefined, "main function not defined")
		return
	}

	p.gen.emitf("CALL $main")
	p.gen.emitf("EXIT int@0")
}

// Arguments are pushed by the caller left to right, so the last declared
// parameter is on top of the stack and slots are popped in reverse.
func (p *Parser) genFuncProlog(name string, arity int) {
	p.gen.emitf("LABEL $%s", name)
	p.gen.emitf("CREATEFRAME")
	p.gen.emitf("PUSHFRAME")

	for i := arity - 1; i >= 0; i-- {
		p.gen.emitf("DEFVAR LF@param%d", i)
		p.gen.emitf("POPS LF@param%d", i)
	}
}

// Only main gets an implicit nil result when no explicit value was pushed.
// Other callables falling off the end leave the stack as is; that asymmetry
// is inherited behavior.
func (p *Parser) genFuncEpilog() {
	if p.curFunc == "main" {
		p.gen.emitf("PUSHS nil@nil")
	}

	p.gen.emitf("POPFRAME")
	p.gen.emitf("RETURN")
}

func (p *Parser) genVarDecl(name string, global bool) {
	p.gen.emitf("DEFVAR %s@%s", frame(global), name)
	p.gen.emitf("MOVE %s@%s nil@nil", frame(global), name)
}

// The assigned value is on the stack from expression evaluation.
func (p *Parser) genAssign(name string, global bool) {
	p.gen.emitf("POPS %s@%s", frame(global), name)
}

func (p *Parser) genCall(name string, builtin bool) {
	if builtin {
		// arguments stay on the stack; the runtime binds builtins itself
		p.gen.emitf("# Call to built-in function %s", name)
		return
	}

	p.gen.emitf("CALL $%s", name)
}

func (p *Parser) genBinaryOp(ctx context.Context, op scanner.Kind) {
	switch op {
	case scanner.Plus:
		p.gen.emitf("ADDS")
	case scanner.Minus:
		p.gen.emitf("SUBS")
	case scanner.Star:
		p.gen.emitf("MULS")
	case scanner.Slash:
		p.gen.emitf("DIVS")
	default:
		p.fail(ctx, StatusInternal, "unknown binary operator")
	}
}

// Only == and < exist as stack ops. The other four comparisons are
// synthesized from them by negation and by reordering the operands through
// scratch slots.
func (p *Parser) genRelationalOp(ctx context.Context, op scanner.Kind) {
	switch op {
	case scanner.Eq:
		p.gen.emitf("EQS")
	case scanner.NotEq:
		p.gen.emitf("EQS")
		p.gen.emitf("NOTS")
	case scanner.Less:
		p.gen.emitf("LTS")
	case scanner.Greater:
		// a > b  ==  b < a
		p.genSwapTops()
		p.gen.emitf("LTS")
	case scanner.LessEq:
		// a <= b  ==  !(b < a)
		p.genSwapTops()
		p.gen.emitf("LTS")
		p.gen.emitf("NOTS")
	case scanner.GreaterEq:
		// a >= b  ==  !(a < b)
		p.gen.emitf("LTS")
		p.gen.emitf("NOTS")
	default:
		p.fail(ctx, StatusInternal, "unknown relational operator")
	}
}

func (p *Parser) genSwapTops() {
	t2 := p.newTemp()
	t1 := p.newTemp()

	p.gen.emitf("POPS LF@%s", t2)
	p.gen.emitf("POPS LF@%s", t1)
	p.gen.emitf("PUSHS LF@%s", t2)
	p.gen.emitf("PUSHS LF@%s", t1)
}

// The is test compares the runtime type tag of the operand, as a string,
// against the tag the type token stands for.
func (p *Parser) genIsOp(ctx context.Context, typeTok scanner.Kind) {
	var expected string

	switch typeTok {
	case scanner.NumType:
		expected = "float"
	case scanner.StringType:
		expected = "string"
	case scanner.NullType:
		expected = "nil"
	default:
		p.fail(ctx, StatusSyntax, "invalid type in is expression")
		return
	}

	v := p.newTemp()
	t := p.newTemp()

	p.gen.emitf("POPS LF@%s", v)
	p.gen.emitf("TYPE LF@%s LF@%s", t, v)
	p.gen.emitf("PUSHS string@%s", expected)
	p.gen.emitf("PUSHS LF@%s", t)
	p.gen.emitf("EQS")
}

func frame(global bool) string {
	if global {
		return "GF"
	}

	return "LF"
}

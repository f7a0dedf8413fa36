package parser

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// Completion status codes. The process exit status is 0 on success or the
// first latched code on failure.
const (
	StatusOK           = 0
	StatusLexical      = 1  // malformed token at the scanner boundary
	StatusSyntax       = 2  // unexpected token against the grammar
	StatusUndefined    = 3  // reference with no matching declaration/arity
	StatusRedefinition = 4  // duplicate declaration at the same name+arity
	StatusArgCount     = 5  // reserved; subsumed by StatusUndefined via key miss
	StatusTypeIncompat = 6  // reserved; not raised by this core
	StatusSemOther     = 10 // other semantic errors
	StatusInternal     = 99 // translator bookkeeping failure
)

// Error is a latched diagnostic: the first one wins and determines the
// completion status.
type Error struct {
	Code int
	Msg  string

	Line, Col int
}

func (e *Error) Error() string {
	return fmt.Sprintf("error %d at line %d, column %d: %s", e.Code, e.Line, e.Col, e.Msg)
}

// StatusOf maps an error returned by Translate to a completion status.
func StatusOf(err error) int {
	if err == nil {
		return StatusOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return StatusInternal
}

// fail latches the first error and reports every diagnostic immediately.
// Parsing is not guaranteed to halt: productions after the latch may still
// run and emit instructions, so output must be discarded on nonzero status.
func (p *Parser) fail(ctx context.Context, code int, msg string) {
	p.failAt(ctx, code, msg, p.tok.Line, p.tok.Col)
}

func (p *Parser) failf(ctx context.Context, code int, format string, args ...interface{}) {
	p.fail(ctx, code, fmt.Sprintf(format, args...))
}

// failAt is fail with an explicit position, for tokens already consumed.
func (p *Parser) failAt(ctx context.Context, code int, msg string, line, col int) {
	tlog.SpanFromContext(ctx).Printw("diagnostic",
		"code", code, "msg", msg, "line", line, "col", col)

	if p.err != nil {
		return
	}

	p.err = &Error{Code: code, Msg: msg, Line: line, Col: col}
}

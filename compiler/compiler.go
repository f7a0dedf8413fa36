// Package compiler translates IFJ25 source into IFJcode25 stack-machine text
// in a single pass.
package compiler

import (
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ifjlang/ifjc/compiler/parser"
)

// CompileFile translates one source file into out.
func CompileFile(ctx context.Context, name string, out io.Writer) error {
	text, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, text, out)
}

// Compile streams the instruction text for src into out. Translation is
// fully synchronous, from first token to final byte or first fatal error.
// On a non-nil error the written output is garbage and must be discarded.
func Compile(ctx context.Context, src []byte, out io.Writer) error {
	p := parser.New(src, out)

	err := p.Translate(ctx)
	if err != nil {
		return errors.Wrap(err, "translate")
	}

	return nil
}

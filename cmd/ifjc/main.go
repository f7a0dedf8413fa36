package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ifjlang/ifjc/compiler"
	"github.com/ifjlang/ifjc/compiler/parser"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "translate IFJ25 source to IFJcode25",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "ifjc",
		Description: "ifjc is a single-pass compiler from IFJ25 to IFJcode25",
		Action:      compileAct,
		Args:        cli.Args{},
		Commands: []*cli.Command{
			compileCmd,
		},
	}

	err := cli.Run(app, os.Args, os.Environ())
	if err == nil {
		return
	}

	// diagnostics were already reported; the exit status carries the
	// latched error code
	code := parser.StatusOf(err)
	if code == parser.StatusInternal {
		fmt.Fprintf(os.Stderr, "ifjc: %v\n", err)
	}

	os.Exit(code)
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	if len(c.Args) == 0 {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}

		return compiler.Compile(ctx, src, os.Stdout)
	}

	for _, a := range c.Args {
		err = compiler.CompileFile(ctx, a, os.Stdout)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}
	}

	return nil
}

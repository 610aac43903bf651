package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

const usageText = `aql - evaluate model queries

Usage:
  aql eval -model <file> [-b name=value]... <expr>   Evaluate one expression tree
  aql run [-j n] <suite>...                           Run query suites
  aql types <model>                                   Show type hierarchies

Expressions are JSON or YAML expression trees. A binding value naming an
object id binds that object; {value: x} binds a literal.

Examples:
  aql eval -model shapes.yml -b self=c1 query.yml
  aql run -j 4 testdata/shapes/suite.yml
  aql types shapes.yml`

// Root returns the root command for aql.
func Root() *cli.Command {
	return cli.NewCommand("aql").
		WithSynopsis("aql - evaluate model queries").
		WithDescription(usageText).
		WithSubs(
			EvalCommand(),
			RunCommand(),
			TypesCommand())
}

type palette struct {
	enabled          bool
	pass, fail, kind *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		enabled: enabled,
		pass:    color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		kind:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.pass, p.fail, p.kind} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func useColor(forced bool, w io.Writer) bool {
	if forced {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

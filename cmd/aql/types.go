package main

import (
	"fmt"
	"io"
	"strings"

	"aql/interpreter-go/pkg/model"

	"github.com/scott-cotton/cli"
)

type typesConfig struct {
	*cli.Command
	Direct bool `cli:"name=direct desc='show direct supertypes only'"`
}

// TypesCommand returns the types subcommand.
func TypesCommand() *cli.Command {
	cfg := &typesConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "types").
		WithAliases("t").
		WithSynopsis("types [-direct] <model>").
		WithDescription("List the types of a model with their supertypes, nearest first.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *typesConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: types requires one model file", cli.ErrUsage)
	}
	m, err := model.Load(args[0])
	if err != nil {
		return err
	}
	return writeTypes(cc.Out, m.Types(), cfg.Direct)
}

func writeTypes(w io.Writer, types *model.TypeRegistry, direct bool) error {
	for _, name := range types.Types() {
		supers := types.Supertypes(name)
		if !direct {
			closure, err := types.Closure(name)
			if err != nil {
				return err
			}
			supers = closure
		}
		if len(supers) == 0 {
			fmt.Fprintln(w, name)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", name, strings.Join(supers, ", "))
	}
	return nil
}

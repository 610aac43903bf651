package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"aql/interpreter-go/pkg/ast"
	"aql/interpreter-go/pkg/debug"
	"aql/interpreter-go/pkg/interpreter"
	"aql/interpreter-go/pkg/model"
	"aql/interpreter-go/pkg/runtime"

	"github.com/scott-cotton/cli"
	"gopkg.in/yaml.v3"
)

type evalConfig struct {
	*cli.Command
	Model    string `cli:"name=model aliases=m desc='model file'"`
	Kind     bool   `cli:"name=k desc='also print the result kind'"`
	MaxDepth int    `cli:"name=depth desc='maximum expression nesting'"`
	Verbose  bool   `cli:"name=v desc='log evaluation steps'"`
	Color    bool   `cli:"name=color desc='force colored output'"`

	bindings map[string]any
}

// EvalCommand returns the eval subcommand.
func EvalCommand() *cli.Command {
	cfg := &evalConfig{bindings: map[string]any{}}
	opts, _ := cli.StructOpts(cfg)
	opts = append(opts, &cli.Opt{
		Name:        "b",
		Description: "bind a variable; repeatable",
		Type:        cli.NamedFuncOpt(cli.FuncOpt(bindingOptFunc(cfg.bindings)), "(name=value)"),
	})
	return cli.NewCommandAt(&cfg.Command, "eval").
		WithAliases("e").
		WithSynopsis("eval -model <file> [-b name=value]... <expr>").
		WithDescription("Evaluate an expression tree against a model.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func bindingOptFunc(bindings map[string]any) func(*cli.Context, string) (any, error) {
	return func(_ *cli.Context, a string) (any, error) {
		name, raw, err := parseBinding(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		bindings[name] = raw
		return 0, nil
	}
}

// parseBinding splits name=value and decodes value as YAML.
func parseBinding(a string) (string, any, error) {
	name, text, ok := strings.Cut(a, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("binding %q must be name=value", a)
	}
	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return "", nil, fmt.Errorf("binding %s: %w", name, err)
	}
	return name, raw, nil
}

func (cfg *evalConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: eval requires one expression file, or - for stdin", cli.ErrUsage)
	}
	if cfg.Model == "" {
		return fmt.Errorf("%w: eval requires -model", cli.ErrUsage)
	}
	if cfg.Verbose {
		debug.EnableAll()
	}
	var in io.Reader = cc.In
	format := ".yml"
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
		format = filepath.Ext(args[0])
	}
	expr, err := readExpression(in, format)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	m, err := model.Load(cfg.Model)
	if err != nil {
		return err
	}
	var opts []interpreter.Option
	if cfg.MaxDepth > 0 {
		opts = append(opts, interpreter.WithMaxDepth(cfg.MaxDepth))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	v, err := evaluate(ctx, interpreter.New(opts...), m, expr, cfg.bindings)
	if err != nil {
		return err
	}
	p := newPalette(useColor(cfg.Color, cc.Out))
	if cfg.Kind {
		fmt.Fprintf(cc.Out, "%s %s\n", runtime.Render(v), p.kind.Sprint(runtime.KindName(v)))
		return nil
	}
	fmt.Fprintln(cc.Out, runtime.Render(v))
	return nil
}

func readExpression(r io.Reader, ext string) (ast.Expression, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(ext, ".json") {
		return ast.DecodeJSON(data)
	}
	return ast.DecodeYAML(data)
}

func evaluate(ctx context.Context, interp *interpreter.Interpreter, m *model.Model, expr ast.Expression, bindings map[string]any) (runtime.Value, error) {
	ec := runtime.NewContext(m)
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := m.BindingValue(bindings[name])
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", name, err)
		}
		ec.Define(name, v)
	}
	if debug.Eval() {
		for _, name := range ec.Current().Keys() {
			v, _ := ec.Lookup(name)
			debug.Logf("binding %s = %s\n", name, runtime.Render(v))
		}
	}
	return interp.Evaluate(ctx, expr, ec)
}

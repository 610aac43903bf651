package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"aql/interpreter-go/pkg/debug"
	"aql/interpreter-go/pkg/driver"
	"aql/interpreter-go/pkg/interpreter"

	"github.com/scott-cotton/cli"
)

type runConfig struct {
	*cli.Command
	Jobs    int  `cli:"name=j desc='queries evaluated at once per suite'"`
	Quiet   bool `cli:"name=q desc='only report failures'"`
	Verbose bool `cli:"name=v desc='log evaluation steps'"`
	Color   bool `cli:"name=color desc='force colored output'"`
}

// RunCommand returns the run subcommand.
func RunCommand() *cli.Command {
	cfg := &runConfig{}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "run").
		WithAliases("r").
		WithSynopsis("run [-j n] [-q] <suite>...").
		WithDescription("Run query suites and compare results with their expectations.").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *runConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: run requires at least one suite file", cli.ErrUsage)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("%w: -j must not be negative", cli.ErrUsage)
	}
	if cfg.Verbose {
		debug.EnableAll()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	failed, err := runSuites(ctx, cc.Out, args, suiteReport{
		jobs:    cfg.Jobs,
		quiet:   cfg.Quiet,
		palette: newPalette(useColor(cfg.Color, cc.Out)),
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d queries failed", failed)
	}
	return nil
}

type suiteReport struct {
	jobs    int
	quiet   bool
	palette *palette
}

// runSuites runs each suite in turn, writes a report to w and returns the
// number of failed queries.
func runSuites(ctx context.Context, w io.Writer, paths []string, report suiteReport) (int, error) {
	if report.palette == nil {
		report.palette = newPalette(false)
	}
	interp := interpreter.New()
	total := 0
	for _, path := range paths {
		suite, err := driver.LoadSuite(path)
		if err != nil {
			return total, err
		}
		outcomes, err := driver.Run(ctx, suite, driver.Options{Interpreter: interp, Concurrency: report.jobs})
		if err != nil {
			return total, err
		}
		for _, o := range outcomes {
			if o.Passed {
				if !report.quiet {
					fmt.Fprintf(w, "%s %s\n", report.palette.pass.Sprint("PASS"), o.Name)
				}
				continue
			}
			fmt.Fprintf(w, "%s %s: expected %s, got %s\n", report.palette.fail.Sprint("FAIL"), o.Name, o.Expected, o.Rendered)
			fmt.Fprintf(w, "  %s\n", o.Diff(report.palette.enabled))
		}
		failed := driver.Failed(outcomes)
		total += failed
		fmt.Fprintf(w, "%s: %d passed, %d failed\n", suite.Name, len(outcomes)-failed, failed)
	}
	return total, nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/config"
	"github.com/sable-lang/sable/internal/diagnostic"
	"github.com/sable-lang/sable/internal/eval"
	"github.com/sable-lang/sable/internal/ir"
	"github.com/sable-lang/sable/internal/opt"
	"github.com/sable-lang/sable/internal/position"
	"github.com/sable-lang/sable/internal/reader"
	"github.com/sable-lang/sable/internal/value"
)

// maxParallel bounds how many files `sable run` evaluates at once.
const maxParallel = 8

type driver struct {
	cfg    *config.Config
	logger *cli.Logger
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// fileResult is everything produced by evaluating one file. Output is
// buffered so concurrent files can be printed in argument order.
type fileResult struct {
	path   string
	source *position.SourceFile
	state  *eval.CompilerState
	values []value.Value
	output bytes.Buffer
	diags  []diagnostic.Diagnostic
	module *ir.Module
	sweeps int
}

func (r *fileResult) hasErrors() bool {
	for _, d := range r.diags {
		if d.Level == diagnostic.DiagnosticError {
			return true
		}
	}
	return false
}

// printable reports whether a top-level result is echoed by `sable run`.
// Definitions evaluate to callables or types and stay silent.
func printable(v value.Value) bool {
	switch v.Kind() {
	case value.KindNil, value.KindUserFunction, value.KindBuiltinFn, value.KindBuiltinMacro,
		value.KindSpecialForm, value.KindStructConstructor, value.KindType, value.KindUnitConstructor:
		return false
	}
	return true
}

func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// evalFile reads, evaluates and, when withIR is set, lowers and optimizes
// one file. A read or parse failure is returned as an error; evaluation
// problems end up in the result's diagnostics.
func (d *driver) evalFile(ctx context.Context, path string, withIR bool) (*fileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	mod, err := reader.ParseString(path, string(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	res := &fileResult{path: path, source: mod.Source}
	state := eval.NewCompilerState(eval.StateConfig{
		Out:         &res.output,
		Logger:      d.logger,
		Diagnostics: d.cfg.DiagnosticConfig(),
	})
	if withIR {
		state.EnableInference()
		state.EnableIR(moduleName(path))
	}

	d.logger.Debug("evaluating %s (%d items)", path, len(mod.Items))
	res.values = state.EvalModule(eval.NewGlobalEnvironment(), mod)
	res.state = state

	if withIR {
		passes, err := d.cfg.Pipeline()
		if err != nil {
			return nil, err
		}
		res.module = state.IR.Module()
		pipeline := opt.NewPipeline(d.logger, passes...)
		res.sweeps = pipeline.Run(res.module, d.cfg.Optimize.MaxIterations)
		for _, st := range pipeline.Stats() {
			d.logger.Info("%s: %s", path, st)
		}
		if err := ir.VerifyModule(res.module); err != nil {
			return nil, fmt.Errorf("%s: optimized IR is malformed: %w", path, err)
		}
	}

	res.diags = state.Drain()
	return res, nil
}

func (d *driver) report(res *fileResult) {
	if len(res.diags) == 0 {
		return
	}
	show := d.cfg.DiagnosticConfig().ShowTrace
	f := &diagnostic.Formatter{Source: res.source, ShowTrace: show, Color: d.color}
	fmt.Fprintln(d.stderr, f.Format(res.diags))
}

// runFiles evaluates every file concurrently, each with its own state,
// and prints results in argument order.
func (d *driver) runFiles(ctx context.Context, paths []string, withIR bool) int {
	results := make([]*fileResult, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, path := range paths {
		g.Go(func() error {
			res, err := d.evalFile(gctx, path, withIR)
			if err != nil {
				// Other files still run; a broken file only fails itself.
				failures[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cli.PrintError(d.stderr, err)
		return 1
	}

	code := 0
	for i, res := range results {
		if failures[i] != nil {
			cli.PrintError(d.stderr, failures[i])
			code = 1
			continue
		}
		if len(paths) > 1 {
			fmt.Fprintf(d.stdout, "== %s\n", res.path)
		}
		io.Copy(d.stdout, &res.output)
		for _, v := range res.values {
			if !printable(v) {
				continue
			}
			fmt.Fprintln(d.stdout, v.String())
		}
		if res.module != nil {
			fmt.Fprint(d.stdout, res.module.String())
		}
		d.report(res)
		if res.hasErrors() {
			code = 1
		}
	}
	return code
}

func (d *driver) printIR(path string) int {
	res, err := d.evalFile(context.Background(), path, true)
	if err != nil {
		cli.PrintError(d.stderr, err)
		return 1
	}
	d.logger.Info("%s: optimizer changed the module in %d sweeps", path, res.sweeps)
	fmt.Fprint(d.stdout, res.module.String())
	d.report(res)
	if res.hasErrors() {
		return 1
	}
	return 0
}

func (d *driver) runTests(path string) int {
	res, err := d.evalFile(context.Background(), path, false)
	if err != nil {
		cli.PrintError(d.stderr, err)
		return 1
	}
	d.report(res)
	if res.hasErrors() {
		return 1
	}

	results := res.state.RunTests(res.source)
	failed := 0
	for _, r := range results {
		if r.Passed {
			fmt.Fprintf(d.stdout, "ok    %s (%s)\n", r.Name, r.Duration)
			continue
		}
		failed++
		fmt.Fprintf(d.stdout, "FAIL  %s (%s)\n", r.Name, r.Duration)
		diag := diagnostic.FromError(r.Err)
		f := &diagnostic.Formatter{Source: res.source, ShowTrace: true, Color: d.color}
		fmt.Fprintln(d.stdout, f.FormatOne(diag))
	}
	fmt.Fprintf(d.stdout, "%d passed, %d failed\n", len(results)-failed, failed)
	if failed > 0 {
		return 1
	}
	return 0
}

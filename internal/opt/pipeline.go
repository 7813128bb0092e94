// Package opt implements the IR optimization pipeline: constant folding,
// common subexpression elimination and dead code elimination, iterated
// until no pass changes the module.
package opt

import (
	"fmt"
	"time"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/ir"
)

// Pass is a single in-place transformation of an IR module. Passes are
// idempotent and each is safe to skip.
type Pass interface {
	// Name returns a short identifier used in configuration and logs
	Name() string

	// Run rewrites m and reports whether anything changed
	Run(m *ir.Module) bool
}

// PassStats accumulates what one pass did over a pipeline run.
type PassStats struct {
	Name     string
	Runs     int
	Changes  int
	Duration time.Duration
}

func (ps PassStats) String() string {
	return fmt.Sprintf("Pass: %s, Runs: %d, Changed: %d, Time: %s", ps.Name, ps.Runs, ps.Changes, ps.Duration)
}

// Pipeline applies its passes in order, sweep after sweep.
type Pipeline struct {
	passes []Pass
	stats  []PassStats
	logger *cli.Logger
}

// NewPipeline creates a pipeline with the given passes. logger may be nil.
func NewPipeline(logger *cli.Logger, passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes, logger: logger}
}

// DefaultPasses returns folding, CSE and DCE in that order.
func DefaultPasses() []Pass {
	return []Pass{&ConstantFolding{}, &CSE{}, &DCE{}}
}

// PassByName returns a fresh pass for a configuration name.
func PassByName(name string) (Pass, error) {
	switch name {
	case "fold", "constant-folding":
		return &ConstantFolding{}, nil
	case "cse":
		return &CSE{}, nil
	case "dce":
		return &DCE{}, nil
	default:
		return nil, fmt.Errorf("unknown optimization pass %q", name)
	}
}

// AddPass appends a pass to the pipeline
func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run sweeps the passes over m at most maxIterations times, stopping at the
// first sweep in which no pass reports a change. It returns the number of
// sweeps that changed something; 0 means m was already a fixpoint.
func (p *Pipeline) Run(m *ir.Module, maxIterations int) int {
	p.stats = make([]PassStats, len(p.passes))
	for i, pass := range p.passes {
		p.stats[i].Name = pass.Name()
	}

	changedSweeps := 0
	for sweep := 0; sweep < maxIterations; sweep++ {
		changed := false
		for i, pass := range p.passes {
			start := time.Now()
			c := pass.Run(m)
			p.stats[i].Runs++
			p.stats[i].Duration += time.Since(start)
			if c {
				p.stats[i].Changes++
				changed = true
			}
		}
		if !changed {
			p.logger.Debug("optimizer reached a fixpoint after %d sweep(s)", sweep)
			break
		}
		changedSweeps++
		p.logger.Debug("optimizer sweep %d changed the module", sweep+1)
	}

	for _, s := range p.stats {
		p.logger.Debug("%s", s)
	}
	return changedSweeps
}

// Stats returns per-pass statistics of the last Run.
func (p *Pipeline) Stats() []PassStats {
	return p.stats
}

// Package optimizer runs dead-code elimination, constant folding, and
// common-subexpression elimination over an ir.Pipeline to a fixpoint
// (spec.md §4.6).
package optimizer

import "github.com/vledicfranco/constellation-compiler/internal/ir"

// Pass is one optimization pass; Run reports whether it changed the
// pipeline so the driver can detect a fixpoint.
type Pass interface {
	Name() string
	Run(p *ir.Pipeline) bool
}

// Config selects which passes run and how many times the whole
// sequence may repeat.
type Config struct {
	DeadCodeElimination      bool
	ConstantFolding          bool
	CommonSubexpressionElim  bool
	MaxIterations            int
}

// Named presets from spec.md §4.6.
var (
	None                = Config{MaxIterations: 0}
	Default             = Config{DeadCodeElimination: true, ConstantFolding: true, CommonSubexpressionElim: true, MaxIterations: 3}
	Aggressive          = Config{DeadCodeElimination: true, ConstantFolding: true, CommonSubexpressionElim: true, MaxIterations: 10}
	DCEOnly             = Config{DeadCodeElimination: true, MaxIterations: 3}
	ConstantFoldingOnly = Config{ConstantFolding: true, MaxIterations: 3}
	CSEOnly             = Config{CommonSubexpressionElim: true, MaxIterations: 3}
)

// Stats reports the effect of a Run.
type Stats struct {
	NodesBefore           int
	NodesAfter            int
	NodesEliminated       int
	Iterations            int
	EliminationPercentage float64
}

func (c Config) passes() []Pass {
	var out []Pass
	if c.DeadCodeElimination {
		out = append(out, deadCodePass{})
	}
	if c.ConstantFolding {
		out = append(out, constantFoldingPass{})
	}
	if c.CommonSubexpressionElim {
		out = append(out, csePass{})
	}
	return out
}

// Run applies cfg's passes, in declared order, repeating the full
// sequence until no pass changes the pipeline or MaxIterations is hit.
func Run(p *ir.Pipeline, cfg Config) Stats {
	before := len(p.Nodes)
	passes := cfg.passes()

	iterations := 0
	for iterations < cfg.MaxIterations {
		iterations++
		changedThisRound := false
		for _, pass := range passes {
			if pass.Run(p) {
				changedThisRound = true
			}
		}
		if !changedThisRound {
			break
		}
	}

	after := len(p.Nodes)
	eliminated := before - after
	pct := 0.0
	if before > 0 {
		pct = float64(eliminated) / float64(before) * 100
	}
	return Stats{
		NodesBefore: before, NodesAfter: after, NodesEliminated: eliminated,
		Iterations: iterations, EliminationPercentage: pct,
	}
}

package optimizer

import "github.com/vledicfranco/constellation-compiler/internal/ir"

type deadCodePass struct{}

func (deadCodePass) Name() string { return "dce" }

// Run keeps only the nodes reachable backward from a declared output
// (spec.md §4.6): every intermediate assignment that never feeds an
// output, along with its unreferenced producers, is dropped.
func (deadCodePass) Run(p *ir.Pipeline) bool {
	reachable := map[string]bool{}
	var visit func(id string)
	visit = func(id string) {
		if id == "" || reachable[id] {
			return
		}
		n, ok := p.Nodes[id]
		if !ok {
			return
		}
		reachable[id] = true
		for _, prod := range n.Producers() {
			visit(prod)
		}
	}
	for _, id := range p.OutputBindings {
		visit(id)
	}

	before := len(p.Nodes)
	for id := range p.Nodes {
		if !reachable[id] {
			delete(p.Nodes, id)
		}
	}
	if before == len(p.Nodes) {
		return false
	}

	inputs := p.Inputs[:0:0]
	for _, id := range p.Inputs {
		if reachable[id] {
			inputs = append(inputs, id)
		}
	}
	p.Inputs = inputs

	for name, id := range p.Bindings {
		if !reachable[id] {
			delete(p.Bindings, name)
		}
	}
	return true
}

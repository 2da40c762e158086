package ir

import "sort"

// TopologicalOrder returns every node ID once, each emitted only after
// all of its producers (Kahn-style), breaking ties by ID for
// determinism (spec.md §5: identical sources/registries must allocate
// identical node-ID sets, but emission order must still be stable for
// any caller that iterates it).
func (p *Pipeline) TopologicalOrder() []string {
	inDegree := map[string]int{}
	dependents := map[string][]string{}
	for id := range p.Nodes {
		inDegree[id] = 0
	}
	for id, n := range p.Nodes {
		seen := map[string]bool{}
		for _, prod := range n.Producers() {
			if prod == "" || seen[prod] {
				continue
			}
			seen[prod] = true
			inDegree[id]++
			dependents[prod] = append(dependents[prod], id)
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(p.Nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		next := append([]string{}, dependents[id]...)
		sort.Strings(next)
		for _, d := range next {
			inDegree[d]--
			if inDegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	return order
}

// TopologicalLayers partitions nodes into minimum-depth parallel
// layers: layer 0 holds every node with no producers, layer k+1 holds
// every node whose producers are all in layers <= k and at least one is
// in layer k exactly (spec.md §3, testable property 5).
func (p *Pipeline) TopologicalLayers() [][]string {
	layerOf := map[string]int{}
	remaining := map[string][]string{}
	for id, n := range p.Nodes {
		remaining[id] = n.Producers()
	}

	assigned := 0
	var layers [][]string
	for assigned < len(p.Nodes) {
		var layer []string
		for id, prods := range remaining {
			if _, done := layerOf[id]; done {
				continue
			}
			ready := true
			for _, prod := range prods {
				if _, ok := layerOf[prod]; !ok {
					ready = false
					break
				}
			}
			if ready {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			// A cycle or a dangling producer reference; both are IR-build
			// bugs that should never reach the optimizer.
			fail("ir: topological layering stalled with %d of %d nodes placed", assigned, len(p.Nodes))
		}
		sort.Strings(layer)
		for _, id := range layer {
			layerOf[id] = len(layers)
		}
		layers = append(layers, layer)
		assigned += len(layer)
	}
	return layers
}

// CriticalPathLength is the number of topological layers.
func (p *Pipeline) CriticalPathLength() int {
	return len(p.TopologicalLayers())
}

// MaxParallelism is the size of the largest topological layer.
func (p *Pipeline) MaxParallelism() int {
	max := 0
	for _, layer := range p.TopologicalLayers() {
		if len(layer) > max {
			max = len(layer)
		}
	}
	return max
}

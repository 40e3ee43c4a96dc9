package graph

import "github.com/sjorsgeenen/odoo-stockgraph/internal/product"

// DependencyClosure computes the transitive set of ancestors a set of
// requested products needs for their availability to be computable: for
// each requested product, its dependencies and their dependencies,
// following edges backwards (child -> parent becomes "pull in the
// child"). A requested product absent from the graph is still included
// in the closure; it simply becomes a no-op during propagation.
func DependencyClosure(g *Graph, requested []product.ID) map[product.ID]struct{} {
	closure := make(map[product.ID]struct{}, len(requested))
	stack := append([]product.ID(nil), requested...)

	for len(stack) > 0 {
		n := len(stack) - 1
		id := stack[n]
		stack = stack[:n]

		if _, already := closure[id]; already {
			continue
		}
		closure[id] = struct{}{}

		if !g.HasNode(id) {
			continue
		}

		for _, edge := range g.InEdges(id) {
			stack = append(stack, edge.From)
		}
	}

	return closure
}

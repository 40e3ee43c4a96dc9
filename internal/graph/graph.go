// Package graph implements the directed product-dependency graph the
// propagation engine walks: nodes are product ids, edges run child to
// parent, weighted by how many units of the child one unit of the
// parent's build consumes.
package graph

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// Edge is one in-edge: Weight units of From are required to produce one
// output unit of the node the edge points to.
type Edge struct {
	From   product.ID
	Weight decimal.Decimal
}

// Graph is a directed graph keyed by product.ID. It is built once (via
// AddNode/AddEdge) and read many times; nothing in this package mutates
// it after the caller stops calling Add*.
type Graph struct {
	nodes   map[product.ID]struct{}
	inEdges map[product.ID][]Edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[product.ID]struct{}),
		inEdges: make(map[product.ID][]Edge),
	}
}

// AddNode inserts id if absent. Idempotent.
func (g *Graph) AddNode(id product.ID) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = struct{}{}
}

// HasNode reports whether id has been added.
func (g *Graph) HasNode(id product.ID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge records that `to` depends on `weight` units of `from`. Both
// endpoints must already be nodes; if either is missing the edge is
// silently dropped, matching the source data's habit of referencing
// products that were filtered out of the catalogue for being inactive
// or non-stockable.
func (g *Graph) AddEdge(from, to product.ID, weight decimal.Decimal) {
	if !g.HasNode(from) || !g.HasNode(to) {
		return
	}
	g.inEdges[to] = append(g.inEdges[to], Edge{From: from, Weight: weight})
}

// InEdges returns the dependencies of id: the set of (child, required_qty)
// pairs that feed into id's own availability.
func (g *Graph) InEdges(id product.ID) []Edge {
	return g.inEdges[id]
}

// Nodes returns every node currently in the graph, in no particular order.
func (g *Graph) Nodes() []product.ID {
	ids := make([]product.ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// CycleError is raised when Toposort finds the graph isn't a DAG. It names
// one node still stuck with unresolved in-edges, enough for a diagnostic
// to point at the offending BoM.
type CycleError struct {
	Node product.ID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("product dependency graph has a cycle reachable from product_id=%d", e.Node)
}

// Toposort returns the nodes in an order where every dependency appears
// before the products that consume it, using Kahn's algorithm. A cycle in
// the source data is a fatal programming error, not a recoverable one.
func (g *Graph) Toposort() ([]product.ID, error) {
	// remaining[node] is the node's in-degree: how many of its in-edges
	// come from dependencies not yet emitted. dependents[node] lists the
	// nodes that consume it.
	remaining := make(map[product.ID]int, len(g.nodes))
	dependents := make(map[product.ID][]product.ID, len(g.nodes))

	for node := range g.nodes {
		remaining[node] = 0
	}
	for to, edges := range g.inEdges {
		for _, edge := range edges {
			remaining[to]++
			dependents[edge.From] = append(dependents[edge.From], to)
		}
	}

	queue := make([]product.ID, 0, len(g.nodes))
	for node, count := range remaining {
		if count == 0 {
			queue = append(queue, node)
		}
	}
	slices.Sort(queue)

	order := make([]product.ID, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		ready := make([]product.ID, 0)
		for _, dependent := range dependents[node] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
		slices.Sort(ready)
		queue = append(queue, ready...)
	}

	if len(order) != len(g.nodes) {
		for node, count := range remaining {
			if count > 0 {
				return nil, &CycleError{Node: node}
			}
		}
		// Unreachable: len(order) != len(nodes) implies some node has
		// count > 0.
		return nil, &CycleError{Node: 0}
	}

	return order, nil
}

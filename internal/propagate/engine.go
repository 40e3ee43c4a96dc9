// Package propagate implements the single topological sweep that turns
// raw per-product quants into derived availabilities, combining a node's
// dependencies according to its product kind.
package propagate

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/graph"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// divisionPrecision is the number of fractional digits kept by
// intermediate per-edge divisions before the final Truncate to a
// product's own dp. It only needs to be large enough that truncating to
// any realistic UoM precision (rarely above 6) never loses a significant
// digit to accumulated division error.
const divisionPrecision = 34

// MissingCatalogueEntryError means a node reachable in the graph has no
// matching catalogue row, a fatal invariant violation: the source
// adapter is required to insert one catalogue entry per graph node.
type MissingCatalogueEntryError struct {
	Product product.ID
}

func (e *MissingCatalogueEntryError) Error() string {
	return fmt.Sprintf("product_id=%d is present in the dependency graph but has no catalogue entry", e.Product)
}

// Collect walks topo (a topological ordering of g's nodes) once, filling
// in an Availability for every node not excluded by scope. scope == nil
// means unconstrained: every node in topo is computed. defaultDP is the
// warehouse-wide decimal precision used for the zero value substituted
// when a node has no dependencies to aggregate.
func Collect(
	g *graph.Graph,
	catalogue map[product.ID]product.Product,
	rawQuants map[product.ID]product.Quant,
	topo []product.ID,
	scope map[product.ID]struct{},
	defaultDP int32,
) (map[product.ID]product.Availability, error) {
	zero := decimal.Zero.Truncate(defaultDP)
	avail := make(map[product.ID]product.Availability, len(topo))

	for _, id := range topo {
		if scope != nil {
			if _, ok := scope[id]; !ok {
				continue
			}
		}

		if _, already := avail[id]; already {
			log.Printf("propagate: product_id=%d already present in availability map, skipping re-computation", id)
			continue
		}

		info, ok := catalogue[id]
		if !ok {
			return nil, &MissingCatalogueEntryError{Product: id}
		}

		if info.IsSimple() {
			avail[id] = simpleAvailability(rawQuants[id])
			continue
		}

		switch info.Kind {
		case product.KindPhantom:
			quantity, reserved, incoming, outgoing := dividedDependencyFields(g, avail, id)
			avail[id] = phantomAvailability(info, quantity, reserved, incoming, outgoing, zero)
		case product.KindNormal:
			buildable := normalBuildableRatios(g, avail, id)
			avail[id] = normalAvailability(info, rawQuants[id], buildable, zero)
		case product.KindCommingled:
			quantity, reserved, incoming, outgoing, buildable := summedDependencyFields(g, avail, id)
			avail[id] = commingledAvailability(info, quantity, reserved, incoming, outgoing, buildable, zero)
		default:
			return nil, fmt.Errorf("product_id=%d has unhandled kind %v", id, info.Kind)
		}
	}

	return avail, nil
}

// dividedDependencyFields collects, for a Phantom parent, each
// dependency's quantity/reserved/incoming/outgoing divided by the edge's
// required_qty. The field-wise minimum of these is the basis of the
// Phantom formula.
func dividedDependencyFields(
	g *graph.Graph,
	avail map[product.ID]product.Availability,
	id product.ID,
) (quantity, reserved, incoming, outgoing []decimal.Decimal) {
	for _, edge := range g.InEdges(id) {
		dep, ok := avail[edge.From]
		if !ok {
			continue
		}
		quantity = append(quantity, dep.Quantity.DivRound(edge.Weight, divisionPrecision))
		reserved = append(reserved, dep.Reserved.DivRound(edge.Weight, divisionPrecision))
		incoming = append(incoming, dep.Incoming.DivRound(edge.Weight, divisionPrecision))
		outgoing = append(outgoing, dep.Outgoing.DivRound(edge.Weight, divisionPrecision))
	}
	return
}

// normalBuildableRatios collects, for a Normal parent, each dependency's
// (buildable + free_immediately) divided by the edge's required_qty: a
// parent can be assembled from either existing free stock of a child or
// from deeper buildable capacity of that child.
func normalBuildableRatios(
	g *graph.Graph,
	avail map[product.ID]product.Availability,
	id product.ID,
) (buildable []decimal.Decimal) {
	for _, edge := range g.InEdges(id) {
		dep, ok := avail[edge.From]
		if !ok {
			continue
		}
		sum := dep.Buildable.Add(dep.FreeImmediately())
		buildable = append(buildable, sum.DivRound(edge.Weight, divisionPrecision))
	}
	return
}

// summedDependencyFields collects, for a Commingled parent, each
// dependency's raw field values with no per-edge divisor: commingled
// edges always carry weight one, and the aggregate is a plain sum.
func summedDependencyFields(
	g *graph.Graph,
	avail map[product.ID]product.Availability,
	id product.ID,
) (quantity, reserved, incoming, outgoing, buildable []decimal.Decimal) {
	for _, edge := range g.InEdges(id) {
		dep, ok := avail[edge.From]
		if !ok {
			continue
		}
		quantity = append(quantity, dep.Quantity)
		reserved = append(reserved, dep.Reserved)
		incoming = append(incoming, dep.Incoming)
		outgoing = append(outgoing, dep.Outgoing)
		buildable = append(buildable, dep.Buildable)
	}
	return
}

func simpleAvailability(raw product.Quant) product.Availability {
	return product.Availability{
		Quantity:  raw.Quantity,
		Reserved:  raw.Reserved,
		Incoming:  raw.Incoming,
		Outgoing:  raw.Outgoing,
		Buildable: decimal.Zero,
	}
}

func minOrZero(values []decimal.Decimal, zero decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return zero
	}
	min := values[0]
	for _, v := range values[1:] {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}

func sumOrZero(values []decimal.Decimal, zero decimal.Decimal) decimal.Decimal {
	sum := zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}

func phantomAvailability(info product.Product, quantity, reserved, incoming, outgoing []decimal.Decimal, zero decimal.Decimal) product.Availability {
	return product.Availability{
		Quantity:  minOrZero(quantity, zero).Mul(info.OutputQty).Truncate(info.DP),
		Reserved:  minOrZero(reserved, zero).Mul(info.OutputQty).Truncate(info.DP),
		Incoming:  minOrZero(incoming, zero).Mul(info.OutputQty).Truncate(info.DP),
		Outgoing:  minOrZero(outgoing, zero).Mul(info.OutputQty).Truncate(info.DP),
		Buildable: decimal.Zero,
	}
}

func normalAvailability(info product.Product, raw product.Quant, buildable []decimal.Decimal, zero decimal.Decimal) product.Availability {
	return product.Availability{
		Quantity:  raw.Quantity,
		Reserved:  raw.Reserved,
		Incoming:  raw.Incoming,
		Outgoing:  raw.Outgoing,
		Buildable: minOrZero(buildable, zero).Mul(info.OutputQty).Truncate(info.DP),
	}
}

func commingledAvailability(info product.Product, quantity, reserved, incoming, outgoing, buildable []decimal.Decimal, zero decimal.Decimal) product.Availability {
	return product.Availability{
		Quantity:  sumOrZero(quantity, zero).Truncate(info.DP),
		Reserved:  sumOrZero(reserved, zero).Truncate(info.DP),
		Incoming:  sumOrZero(incoming, zero).Truncate(info.DP),
		Outgoing:  sumOrZero(outgoing, zero).Truncate(info.DP),
		Buildable: sumOrZero(buildable, zero).Truncate(info.DP),
	}
}

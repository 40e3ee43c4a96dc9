// Package pipeline wires version detection, adapter construction,
// catalogue/graph loading, and propagation into the single call
// cmd/stockgraph drives.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/graph"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/odoo"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/propagate"
)

// Options are the caller-supplied parameters for one run.
type Options struct {
	WarehouseID       product.WarehouseID
	RequestedProducts []product.ID // nil/empty means "every computed product"
}

// Result is the read-only outcome of a run: the resolved warehouse, the
// availability of every computed product, and the computed product ids
// sorted ascending (useful for deterministic iteration when the caller
// wants "every computed product").
type Result struct {
	Warehouse     product.Warehouse
	Availability  map[product.ID]product.Availability
	ComputedOrder []product.ID
}

// Get returns the availability for id and whether it was computed,
// mirroring the "missing availability for product_id" check the CLI
// performs for each explicitly requested product.
func (r Result) Get(id product.ID) (product.Availability, bool) {
	a, ok := r.Availability[id]
	return a, ok
}

// Run executes one end-to-end pass: detect the Odoo version, build the
// matching source adapter, load the warehouse and decimal precision,
// load the product catalogue and dependency graph, topologically sort
// it, resolve scope (if requested products were given), load raw
// quants, and propagate.
func Run(ctx context.Context, db *sql.DB, opts Options) (Result, error) {
	major, err := odoo.DetectVersion(ctx, db)
	if err != nil {
		return Result{}, fmt.Errorf("detecting Odoo version: %w", err)
	}

	src, err := odoo.Dialect(ctx, major, db)
	if err != nil {
		return Result{}, fmt.Errorf("building source adapter: %w", err)
	}

	warehouse, err := src.Warehouse(ctx, db, opts.WarehouseID)
	if err != nil {
		return Result{}, fmt.Errorf("loading warehouse: %w", err)
	}

	defaultDP, err := odoo.DecimalPrecision(ctx, db)
	if err != nil {
		return Result{}, err
	}

	catalogue := make(map[product.ID]product.Product)
	g := graph.New()
	if err := src.Products(ctx, db, catalogue, g); err != nil {
		return Result{}, fmt.Errorf("loading products: %w", err)
	}
	if err := src.Relations(ctx, db, g); err != nil {
		return Result{}, fmt.Errorf("loading product relations: %w", err)
	}

	topo, err := g.Toposort()
	if err != nil {
		return Result{}, err
	}

	var scope map[product.ID]struct{}
	adapterScope := adapter.Scope{Filtered: false}
	if len(opts.RequestedProducts) > 0 {
		scope = graph.DependencyClosure(g, opts.RequestedProducts)
		scopedIDs := make([]product.ID, 0, len(scope))
		for id := range scope {
			scopedIDs = append(scopedIDs, id)
		}
		adapterScope = adapter.Scope{Products: scopedIDs, Filtered: true}
	}

	rawQuants := make(map[product.ID]product.Quant)
	if err := src.Quants(ctx, db, warehouse.LocationPath, adapterScope, defaultDP, rawQuants); err != nil {
		return Result{}, fmt.Errorf("loading raw quants: %w", err)
	}

	availability, err := propagate.Collect(g, catalogue, rawQuants, topo, scope, defaultDP)
	if err != nil {
		return Result{}, err
	}

	computedOrder := make([]product.ID, 0, len(availability))
	for id := range availability {
		computedOrder = append(computedOrder, id)
	}
	slices.Sort(computedOrder)

	return Result{
		Warehouse:     warehouse,
		Availability:  availability,
		ComputedOrder: computedOrder,
	}, nil
}

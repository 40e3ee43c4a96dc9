// Package adapter declares the capability a per-Odoo-version source
// implementation must provide to feed the dependency graph and
// propagation engine.
package adapter

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/graph"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// Major is an Odoo major version number, e.g. 15 for "15.0+e". It lives
// here, not in package odoo, so that concrete adapters (which must
// report their own Major) don't need to import back up to the dispatch
// package that selects them.
type Major int

func (m Major) String() string {
	return strconv.Itoa(int(m))
}

// Scope narrows Quants to a subset of products. Filtered == false means
// unconstrained (load every product's quant); Filtered == true with an
// empty Products means "no rows", never silently promoted to "all".
type Scope struct {
	Products []product.ID
	Filtered bool
}

// SourceAdapter is the per-Odoo-major implementation of the four
// catalogue/graph/quant-loading operations the pipeline drives.
type SourceAdapter interface {
	Major() Major

	// Warehouse loads the single warehouse identified by id.
	Warehouse(ctx context.Context, db *sql.DB, id product.WarehouseID) (product.Warehouse, error)

	// Products populates catalogue and adds every stockable product as a
	// node in g.
	Products(ctx context.Context, db *sql.DB, catalogue map[product.ID]product.Product, g *graph.Graph) error

	// Relations adds BoM and commingled edges to g, dropping any edge
	// whose endpoint isn't already a node.
	Relations(ctx context.Context, db *sql.DB, g *graph.Graph) error

	// Quants loads raw on-hand/incoming/outgoing quantities for products
	// under locationPath into out, truncated to dp fractional digits.
	Quants(ctx context.Context, db *sql.DB, locationPath string, scope Scope, dp int32, out map[product.ID]product.Quant) error
}

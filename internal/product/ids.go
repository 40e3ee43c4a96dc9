// Package product holds the stockable-product data model: opaque
// identities, the closed set of BoM/commingling kinds, and the raw and
// derived per-product quantity records the propagation engine operates on.
package product

// ID identifies a stockable product. Values come straight from Odoo's
// product_product.id and are never generated locally.
type ID int32

// WarehouseID identifies a stock_warehouse row.
type WarehouseID int32

// Warehouse is the subset of stock_warehouse/stock_location the pipeline
// needs to scope every quant and stock-move query to one warehouse's
// storage subtree.
type Warehouse struct {
	ID   WarehouseID
	Name string

	// LocationPath is stock_location.parent_path with a trailing '%',
	// used verbatim as the right-hand side of a SQL LIKE.
	LocationPath string
}

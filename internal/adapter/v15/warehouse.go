package v15

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// NotFoundError means no active warehouse with an active internal stock
// location matched the requested id.
type NotFoundError struct {
	ID product.WarehouseID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("warehouse_id=%d not found (or not active)", e.ID)
}

// Warehouse loads the single warehouse matching id, requiring both the
// warehouse and its stock location to be active.
func (a *Adapter) Warehouse(ctx context.Context, db *sql.DB, id product.WarehouseID) (product.Warehouse, error) {
	var w product.Warehouse
	err := db.QueryRowContext(ctx, `
		SELECT
			stock_warehouse.id,
			stock_location.parent_path || '%' AS location_path,
			stock_warehouse.name
		FROM stock_warehouse
		INNER JOIN stock_location ON stock_location.id = stock_warehouse.lot_stock_id
		WHERE
			stock_warehouse.id = $1
			AND stock_warehouse.active is true
			AND stock_location.active is true
			AND stock_location.usage = 'internal'
	`, id).Scan(&w.ID, &w.LocationPath, &w.Name)
	if err == sql.ErrNoRows {
		return product.Warehouse{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return product.Warehouse{}, fmt.Errorf("loading warehouse %d: %w", id, err)
	}
	return w, nil
}

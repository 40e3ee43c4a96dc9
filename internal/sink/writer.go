package sink

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// Row is one output row a sink statement can bind: a product's projected
// availability at one warehouse.
type Row struct {
	ProductID product.ID
	Output    product.OutputAvailability
}

// ExecutionError wraps a row's bind/exec failure with the identifiers
// needed to find which row caused it.
type ExecutionError struct {
	ProductID   product.ID
	WarehouseID product.WarehouseID
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed executing --sink-stmt for product_id=%d, warehouse_id=%d: %v", e.ProductID, e.WarehouseID, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func bindValue(p Placeholder, warehouse product.Warehouse, row Row) any {
	switch p {
	case ProductID:
		return row.ProductID
	case WarehouseID:
		return warehouse.ID
	case Quantity:
		return row.Output.Quantity
	case Reserved:
		return row.Output.Reserved
	case Incoming:
		return row.Output.Incoming
	case Outgoing:
		return row.Output.Outgoing
	case Buildable:
		return row.Output.Buildable
	case FreeImmediately:
		return row.Output.FreeImmediately
	case VirtualAvailable:
		return row.Output.VirtualAvailable
	default:
		return nil
	}
}

// Write executes tmpl once per row inside a single transaction, binding
// each row's placeholders positionally. Any row failure aborts the whole
// transaction via the deferred rollback.
func Write(ctx context.Context, db *sql.DB, tmpl Template, warehouse product.Warehouse, rows []Row) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sink transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, tmpl.SQL)
	if err != nil {
		return fmt.Errorf("preparing sink statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, len(tmpl.Placeholders))
		for i, p := range tmpl.Placeholders {
			args[i] = bindValue(p, warehouse, row)
		}
		if _, execErr := stmt.ExecContext(ctx, args...); execErr != nil {
			err = &ExecutionError{ProductID: row.ProductID, WarehouseID: warehouse.ID, Err: execErr}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing sink transaction: %w", err)
	}
	return nil
}

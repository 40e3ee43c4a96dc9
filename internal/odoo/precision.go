package odoo

import (
	"context"
	"database/sql"
	"fmt"
)

// DecimalPrecision reads the warehouse-wide decimal precision Odoo applies
// to product units of measure. It is the default precision the
// propagation engine falls back to for a node with no dependencies to
// aggregate.
func DecimalPrecision(ctx context.Context, db *sql.DB) (int32, error) {
	var digits int32
	err := db.QueryRowContext(ctx, `
		SELECT digits FROM decimal_precision WHERE name = 'Product Unit of Measure' LIMIT 1
	`).Scan(&digits)
	if err != nil {
		return 0, fmt.Errorf("loading Product Unit of Measure decimal precision: %w", err)
	}
	return digits, nil
}

package odoo

import (
	"context"
	"database/sql"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter/v15"
)

// Dialect constructs the source adapter matching major, probing the
// database for optional features the adapter needs to know about up
// front (e.g. whether mrp_bom exists at all).
func Dialect(ctx context.Context, major Major, db *sql.DB) (adapter.SourceAdapter, error) {
	switch major {
	case 15:
		return v15.New(ctx, db)
	default:
		return nil, &UnsupportedVersionError{Major: major}
	}
}

// Package v15 is the source adapter for Odoo 15 databases: raw SQL
// queries against product_product/product_template/mrp_bom/stock_quant
// and friends, feature-probed for modules (mrp, product_commingled) that
// might not be installed.
package v15

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/graph"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// Adapter is the Odoo 15 SourceAdapter. Its two feature flags are probed
// once at construction so every later query knows without re-probing
// whether mrp and product_commingled are installed in this database.
type Adapter struct {
	hasMRPBom            bool
	hasProductCommingled bool
}

// New probes information_schema.tables for the optional modules this
// adapter's queries depend on and returns a ready-to-use Adapter.
func New(ctx context.Context, db *sql.DB) (*Adapter, error) {
	hasMRPBom, err := tableExists(ctx, db, "mrp_bom")
	if err != nil {
		return nil, fmt.Errorf("probing for mrp_bom: %w", err)
	}
	hasProductCommingled, err := tableExists(ctx, db, "product_commingled")
	if err != nil {
		return nil, fmt.Errorf("probing for product_commingled: %w", err)
	}
	return &Adapter{
		hasMRPBom:            hasMRPBom,
		hasProductCommingled: hasProductCommingled,
	}, nil
}

func tableExists(ctx context.Context, db *sql.DB, tableName string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

// Major reports the Odoo major version this adapter targets.
func (a *Adapter) Major() adapter.Major {
	return 15
}

// Products loads every stockable product as a catalogue entry and graph
// node: plain Simple products first, then Commingled products (if the
// module is installed), then BoM-backed Phantom/Normal products (if mrp
// is installed). Each later pass overwrites an earlier catalogue entry
// for the same id, matching how the three queries partition Odoo's
// product_product rows into disjoint kinds by construction.
func (a *Adapter) Products(ctx context.Context, db *sql.DB, catalogue map[product.ID]product.Product, g *graph.Graph) error {
	if err := a.simpleProducts(ctx, db, catalogue, g); err != nil {
		return fmt.Errorf("loading simple products: %w", err)
	}
	if a.hasProductCommingled {
		if err := a.commingledProducts(ctx, db, catalogue, g); err != nil {
			return fmt.Errorf("loading commingled products: %w", err)
		}
	}
	if a.hasMRPBom {
		if err := a.bomProducts(ctx, db, catalogue, g); err != nil {
			return fmt.Errorf("loading BoM products: %w", err)
		}
	}
	return nil
}

func (a *Adapter) simpleProducts(ctx context.Context, db *sql.DB, catalogue map[product.ID]product.Product, g *graph.Graph) error {
	query := `
		SELECT
			product_product.id,
			-log(uom_uom.rounding)::int
		FROM product_product
		INNER JOIN product_template ON product_product.product_tmpl_id = product_template.id
		INNER JOIN uom_uom ON uom_uom.id = product_template.uom_id
		WHERE
			product_product.active is true
			AND product_template.type = 'product'
			AND product_template.active is true
	`
	if a.hasMRPBom {
		query += `
			AND NOT EXISTS (
				SELECT 1
				FROM mrp_bom
				WHERE
					active is true
					AND (
						(product_tmpl_id = product_template.id AND product_id IS NULL)
						OR product_id = product_product.id
					)
			)
		`
	}
	if a.hasProductCommingled {
		query += ` AND COALESCE(product_product.commingled_ok, false) is false`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id product.ID
		var dp int32
		if err := rows.Scan(&id, &dp); err != nil {
			return err
		}
		catalogue[id] = product.NewSimple(dp)
		g.AddNode(id)
	}
	return rows.Err()
}

func (a *Adapter) commingledProducts(ctx context.Context, db *sql.DB, catalogue map[product.ID]product.Product, g *graph.Graph) error {
	rows, err := db.QueryContext(ctx, `
		SELECT
			product_product.id,
			-log(uom_uom.rounding)::int
		FROM product_product
		INNER JOIN product_template ON product_product.product_tmpl_id = product_template.id
		INNER JOIN uom_uom ON uom_uom.id = product_template.uom_id
		WHERE
			product_product.active is true
			AND product_template.active is true
			AND product_product.commingled_ok is true
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id product.ID
		var dp int32
		if err := rows.Scan(&id, &dp); err != nil {
			return err
		}
		catalogue[id] = product.NewCommingled(dp)
		g.AddNode(id)
	}
	return rows.Err()
}

func (a *Adapter) bomProducts(ctx context.Context, db *sql.DB, catalogue map[product.ID]product.Product, g *graph.Graph) error {
	query := `
		SELECT
			DISTINCT ON (product_product.id)
			product_product.id,
			mrp_bom.type,
			round(
				mrp_bom.product_qty / mrp_uom.factor * product_uom.factor,
				-log(product_uom.rounding)::int
			) AS product_qty,
			-log(product_uom.rounding)::int
		FROM product_product
		INNER JOIN product_template ON product_product.product_tmpl_id = product_template.id
		INNER JOIN uom_uom AS product_uom ON product_uom.id = product_template.uom_id
		INNER JOIN mrp_bom ON (mrp_bom.product_tmpl_id = product_template.id AND mrp_bom.product_id IS NULL) OR mrp_bom.product_id = product_product.id
		INNER JOIN uom_uom AS mrp_uom ON mrp_uom.id = mrp_bom.product_uom_id
		WHERE
			product_product.active is true
			AND product_template.active is true
			AND product_template.type = 'product'
			AND mrp_bom.active is true
			AND mrp_bom.type in ('normal', 'phantom')
	`
	if a.hasProductCommingled {
		query += ` AND COALESCE(product_product.commingled_ok, false) is false`
	}
	query += ` ORDER BY product_product.id, mrp_bom.sequence ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id product.ID
		var bomType string
		var quantity decimal.Decimal
		var dp int32
		if err := rows.Scan(&id, &bomType, &quantity, &dp); err != nil {
			return err
		}

		var p product.Product
		switch bomType {
		case "phantom":
			p = product.NewPhantom(quantity, dp)
		case "normal":
			p = product.NewNormal(quantity, dp)
		default:
			return fmt.Errorf("product_id=%d has unhandled mrp_bom.type %q", id, bomType)
		}
		catalogue[id] = p
		g.AddNode(id)
	}
	return rows.Err()
}

// Relations adds BoM-line edges (from mrp_bom_line) and commingled-pair
// edges (from product_commingled), dropping any edge whose endpoint
// isn't already a graph node; this happens when the other side was
// filtered out of the catalogue for being inactive or non-stockable.
func (a *Adapter) Relations(ctx context.Context, db *sql.DB, g *graph.Graph) error {
	if a.hasMRPBom {
		if err := a.bomEdges(ctx, db, g); err != nil {
			return fmt.Errorf("loading BoM edges: %w", err)
		}
	}
	if a.hasProductCommingled {
		if err := a.commingledEdges(ctx, db, g); err != nil {
			return fmt.Errorf("loading commingled edges: %w", err)
		}
	}
	return nil
}

func (a *Adapter) bomEdges(ctx context.Context, db *sql.DB, g *graph.Graph) error {
	query := `
		SELECT
			mrp_bom.product_id AS parent_product_id,
			mrp_bom_line.product_id AS child_product_id,
			trunc(
				COALESCE(mrp_bom_line.product_qty, 1) / line_uom.factor * line_product_uom.factor,
				-log(line_product_uom.rounding)::int
			) AS child_qty
		FROM mrp_bom_line
		INNER JOIN mrp_bom ON mrp_bom.id = mrp_bom_line.bom_id
		INNER JOIN product_template ON product_template.id = mrp_bom.product_tmpl_id
		INNER JOIN product_product ON product_product.id = mrp_bom.product_id
		INNER JOIN product_product AS line_product_product ON line_product_product.id = mrp_bom_line.product_id
		INNER JOIN product_template AS line_product_template ON line_product_template.id = line_product_product.product_tmpl_id
		INNER JOIN uom_uom AS line_uom ON line_uom.id = mrp_bom_line.product_uom_id
		INNER JOIN uom_uom AS line_product_uom ON line_product_uom.id = line_product_template.uom_id
		WHERE
			product_template.type = 'product'
			AND product_template.active is true
			AND product_product.active is true
			AND mrp_bom.active is true
			AND line_product_product.active is true
			AND line_product_template.type = 'product'
			AND line_product_template.active is true
	`
	if a.hasProductCommingled {
		// A product classified as commingled keeps that classification
		// even if it also carries a BoM; its stock is the pool sum, so
		// its BoM lines must not become edges.
		query += ` AND COALESCE(product_product.commingled_ok, false) is false`
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var parent, child product.ID
		var childQty decimal.Decimal
		if err := rows.Scan(&parent, &child, &childQty); err != nil {
			return err
		}
		g.AddEdge(child, parent, childQty)
	}
	return rows.Err()
}

func (a *Adapter) commingledEdges(ctx context.Context, db *sql.DB, g *graph.Graph) error {
	rows, err := db.QueryContext(ctx, `
		SELECT
			parent_product_id,
			product_id AS child_product_id
		FROM product_commingled
		INNER JOIN product_product ON product_product.id = product_commingled.parent_product_id
		INNER JOIN product_template ON product_template.id = product_product.product_tmpl_id
		INNER JOIN product_product AS child_product_product ON child_product_product.id = product_commingled.product_id
		INNER JOIN product_template AS child_product_template ON child_product_template.id = child_product_product.product_tmpl_id
		WHERE
			product_product.active is true
			AND product_template.type = 'product'
			AND child_product_product.active is true
			AND child_product_template.type = 'product'
			AND child_product_template.active is true
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var parent, child product.ID
		if err := rows.Scan(&parent, &child); err != nil {
			return err
		}
		g.AddEdge(child, parent, decimal.NewFromInt(1))
	}
	return rows.Err()
}

// moveStatesClause is the fixed set of stock_move states counted as
// pending incoming/outgoing movement. Not configurable.
const moveStatesClause = `('waiting', 'confirmed', 'assigned', 'partially_available')`

// Quants loads on-hand quantity/reserved (grouped from stock_quant) and
// incoming/outgoing pending move totals (grouped from stock_move), all
// scoped to locationPath and, when scope.Filtered, to scope.Products.
// An empty, filtered scope short-circuits before any query runs.
func (a *Adapter) Quants(ctx context.Context, db *sql.DB, locationPath string, scope adapter.Scope, dp int32, out map[product.ID]product.Quant) error {
	if scope.Filtered && len(scope.Products) == 0 {
		return nil
	}

	if err := a.onHandQuants(ctx, db, locationPath, scope, dp, out); err != nil {
		return fmt.Errorf("loading on-hand quants: %w", err)
	}
	if err := a.moveQuants(ctx, db, locationPath, scope, "stock_move.location_dest_id", dp, func(q *product.Quant, v decimal.Decimal) { q.Incoming = v }, out); err != nil {
		return fmt.Errorf("loading incoming moves: %w", err)
	}
	if err := a.moveQuants(ctx, db, locationPath, scope, "stock_move.location_id", dp, func(q *product.Quant, v decimal.Decimal) { q.Outgoing = v }, out); err != nil {
		return fmt.Errorf("loading outgoing moves: %w", err)
	}
	return nil
}

func (a *Adapter) onHandQuants(ctx context.Context, db *sql.DB, locationPath string, scope adapter.Scope, dp int32, out map[product.ID]product.Quant) error {
	query := `
		SELECT
			stock_quant.product_id,
			SUM(COALESCE(stock_quant.quantity, 0)) AS quantity,
			SUM(COALESCE(stock_quant.reserved_quantity, 0)) AS reserved
		FROM stock_quant
		INNER JOIN stock_location ON stock_location.id = stock_quant.location_id
		WHERE stock_location.parent_path LIKE $1
	`
	args := []any{locationPath}
	if scope.Filtered {
		query += ` AND stock_quant.product_id = ANY($2)`
		args = append(args, pq.Array(scopeArray(scope.Products)))
	}
	query += ` GROUP BY stock_quant.product_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id product.ID
		var quantity, reserved decimal.Decimal
		if err := rows.Scan(&id, &quantity, &reserved); err != nil {
			return err
		}
		out[id] = product.Quant{
			Quantity: quantity.Truncate(dp),
			Reserved: reserved.Truncate(dp),
		}
	}
	return rows.Err()
}

func (a *Adapter) moveQuants(
	ctx context.Context,
	db *sql.DB,
	locationPath string,
	scope adapter.Scope,
	locationColumn string,
	dp int32,
	assign func(*product.Quant, decimal.Decimal),
	out map[product.ID]product.Quant,
) error {
	query := fmt.Sprintf(`
		SELECT product_id, SUM(product_qty)
		FROM stock_move
		INNER JOIN stock_location ON stock_location.id = %s
		WHERE
			stock_move.state IN %s
			AND stock_location.parent_path LIKE $1
	`, locationColumn, moveStatesClause)
	args := []any{locationPath}
	if scope.Filtered {
		query += ` AND stock_move.product_id = ANY($2)`
		args = append(args, pq.Array(scopeArray(scope.Products)))
	}
	query += ` GROUP BY product_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id product.ID
		var quantity decimal.Decimal
		if err := rows.Scan(&id, &quantity); err != nil {
			return err
		}
		entry := out[id]
		assign(&entry, quantity.Truncate(dp))
		out[id] = entry
	}
	return rows.Err()
}

func scopeArray(ids []product.ID) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

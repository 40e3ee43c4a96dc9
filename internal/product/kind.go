package product

import "github.com/shopspring/decimal"

// Kind is the closed set of stock-derivation rules a product can carry.
// It is intentionally a small enum rather than an interface hierarchy:
// every place a Kind is dispatched uses a switch over all four kinds.
// TestKindStringCoversEveryVariant checks that each kind listed in its
// allKinds table has its own String() label; a constant missing from
// that table, or a missing case in another switch, is not caught by it.
type Kind uint8

const (
	// KindSimple products are passthrough: availability equals raw stock.
	KindSimple Kind = iota

	// KindPhantom products are virtual assemblies, never stocked
	// themselves; availability is derived entirely from dependencies.
	KindPhantom

	// KindNormal products are real, stocked assemblies whose buildable
	// field is derived from dependencies.
	KindNormal

	// KindCommingled products are aggregate pools whose stock is the sum
	// of their dependencies' stock.
	KindCommingled
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindPhantom:
		return "phantom"
	case KindNormal:
		return "normal"
	case KindCommingled:
		return "commingled"
	default:
		return "unknown"
	}
}

// Product is a catalogue entry: one stock-derivation rule per product id.
// DP is the decimal precision of the product's unit of measure. OutputQty
// is how many units a single BoM build produces; it is the zero value for
// Simple and Commingled kinds, which have no BoM.
type Product struct {
	Kind      Kind
	DP        int32
	OutputQty decimal.Decimal
}

// NewSimple builds a passthrough product with unit-of-measure precision dp.
func NewSimple(dp int32) Product {
	return Product{Kind: KindSimple, DP: dp}
}

// NewPhantom builds a virtual-assembly product. outputQty is the BoM's
// output quantity per build.
func NewPhantom(outputQty decimal.Decimal, dp int32) Product {
	return Product{Kind: KindPhantom, DP: dp, OutputQty: outputQty}
}

// NewNormal builds a real, stocked assembly product.
func NewNormal(outputQty decimal.Decimal, dp int32) Product {
	return Product{Kind: KindNormal, DP: dp, OutputQty: outputQty}
}

// NewCommingled builds an aggregate-pool product.
func NewCommingled(dp int32) Product {
	return Product{Kind: KindCommingled, DP: dp}
}

// IsNormalBOM reports whether p is a real, stocked assembly (KindNormal).
func (p Product) IsNormalBOM() bool {
	return p.Kind == KindNormal
}

// IsSimple reports whether p is a plain passthrough product.
func (p Product) IsSimple() bool {
	return p.Kind == KindSimple
}

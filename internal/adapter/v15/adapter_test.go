package v15

import (
	"context"
	"testing"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/adapter"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// A filtered scope with no product ids means "no rows", never "all
// rows". The short-circuit must happen before any query is issued;
// passing a nil *sql.DB proves no query ran.
func TestQuantsEmptyFilteredScopeShortCircuits(t *testing.T) {
	a := &Adapter{hasMRPBom: true, hasProductCommingled: true}
	out := make(map[product.ID]product.Quant)

	err := a.Quants(context.Background(), nil, "1/2/%", adapter.Scope{Filtered: true}, 2, out)
	if err != nil {
		t.Fatalf("Quants() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no quant rows for an empty filtered scope, got %v", out)
	}
}

func TestScopeArrayConvertsProductIDs(t *testing.T) {
	got := scopeArray([]product.ID{3, 1, 2})
	want := []int32{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("scopeArray() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("scopeArray()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

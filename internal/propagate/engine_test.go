package propagate

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/graph"
	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad test decimal %q: %v", s, err)
	}
	return v
}

func quant(t *testing.T, quantity, reserved, incoming, outgoing string) product.Quant {
	return product.Quant{
		Quantity: d(t, quantity),
		Reserved: d(t, reserved),
		Incoming: d(t, incoming),
		Outgoing: d(t, outgoing),
	}
}

func assertAvail(t *testing.T, got product.Availability, quantity, reserved, incoming, outgoing, buildable string) {
	t.Helper()
	want := product.Availability{
		Quantity:  d(t, quantity),
		Reserved:  d(t, reserved),
		Incoming:  d(t, incoming),
		Outgoing:  d(t, outgoing),
		Buildable: d(t, buildable),
	}
	if !got.Quantity.Equal(want.Quantity) {
		t.Errorf("Quantity = %s, want %s", got.Quantity, want.Quantity)
	}
	if !got.Reserved.Equal(want.Reserved) {
		t.Errorf("Reserved = %s, want %s", got.Reserved, want.Reserved)
	}
	if !got.Incoming.Equal(want.Incoming) {
		t.Errorf("Incoming = %s, want %s", got.Incoming, want.Incoming)
	}
	if !got.Outgoing.Equal(want.Outgoing) {
		t.Errorf("Outgoing = %s, want %s", got.Outgoing, want.Outgoing)
	}
	if !got.Buildable.Equal(want.Buildable) {
		t.Errorf("Buildable = %s, want %s", got.Buildable, want.Buildable)
	}
}

func TestSimpleProductUsesRawQuantValues(t *testing.T) {
	g := graph.New()
	g.AddNode(1)

	catalogue := map[product.ID]product.Product{1: product.NewSimple(2)}
	raw := map[product.ID]product.Quant{1: quant(t, "10", "2", "3", "1")}

	avail, err := Collect(g, catalogue, raw, []product.ID{1}, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	assertAvail(t, avail[1], "10", "2", "3", "1", "0")
}

// Phantom availability is the field-wise minimum over dependencies,
// each divided by its required quantity, times the BoM output quantity.
func TestPhantomProductUsesDependencyMinsForAllFields(t *testing.T) {
	depA, depB, phantom := product.ID(1), product.ID(2), product.ID(3)

	g := graph.New()
	g.AddNode(depA)
	g.AddNode(depB)
	g.AddNode(phantom)
	g.AddEdge(depA, phantom, d(t, "1"))
	g.AddEdge(depB, phantom, d(t, "1"))

	catalogue := map[product.ID]product.Product{
		depA:    product.NewSimple(2),
		depB:    product.NewSimple(2),
		phantom: product.NewPhantom(d(t, "1"), 2),
	}
	raw := map[product.ID]product.Quant{
		depA: quant(t, "10", "4", "6", "1"),
		depB: quant(t, "8", "2", "3", "5"),
	}

	topo, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort() error = %v", err)
	}
	avail, err := Collect(g, catalogue, raw, topo, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	assertAvail(t, avail[phantom], "8", "2", "3", "1", "0")
}

// Buildable is min((dep.buildable + dep.free_immediately) / required_qty)
// times the BoM output quantity; the other four fields carry through raw.
func TestNormalBOMProductUsesRawQuantAndBuildableMin(t *testing.T) {
	depA, depB, normal := product.ID(1), product.ID(2), product.ID(3)

	g := graph.New()
	g.AddNode(depA)
	g.AddNode(depB)
	g.AddNode(normal)
	g.AddEdge(depA, normal, d(t, "1"))
	g.AddEdge(depB, normal, d(t, "1"))

	catalogue := map[product.ID]product.Product{
		depA:   product.NewSimple(2),
		depB:   product.NewSimple(2),
		normal: product.NewNormal(d(t, "2"), 2),
	}
	raw := map[product.ID]product.Quant{
		depA:   quant(t, "10", "3", "1", "0"),
		depB:   quant(t, "5", "1", "2", "0"),
		normal: quant(t, "9", "2", "4", "1"),
	}

	topo, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort() error = %v", err)
	}
	avail, err := Collect(g, catalogue, raw, topo, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	assertAvail(t, avail[normal], "9", "2", "4", "1", "8")
}

// Commingled sums truncate toward zero, not half-even.
func TestCommingledProductSumsDependenciesWithTruncation(t *testing.T) {
	depA, depB, commingled := product.ID(1), product.ID(2), product.ID(3)

	g := graph.New()
	g.AddNode(depA)
	g.AddNode(depB)
	g.AddNode(commingled)
	g.AddEdge(depA, commingled, decimal.NewFromInt(1))
	g.AddEdge(depB, commingled, decimal.NewFromInt(1))

	catalogue := map[product.ID]product.Product{
		depA:       product.NewSimple(2),
		depB:       product.NewSimple(2),
		commingled: product.NewCommingled(2),
	}
	raw := map[product.ID]product.Quant{
		depA: quant(t, "1.239", "0.101", "0.009", "0.001"),
		depB: quant(t, "2.455", "1.208", "0.111", "0.019"),
	}

	topo, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort() error = %v", err)
	}
	avail, err := Collect(g, catalogue, raw, topo, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	assertAvail(t, avail[commingled], "3.69", "1.30", "0.12", "0.02", "0")
}

func TestScopeOnlyComputesRequestedAncestors(t *testing.T) {
	productA, productB := product.ID(1), product.ID(2)

	g := graph.New()
	g.AddNode(productA)
	g.AddNode(productB)

	catalogue := map[product.ID]product.Product{
		productA: product.NewSimple(2),
		productB: product.NewSimple(2),
	}
	raw := map[product.ID]product.Quant{
		productA: quant(t, "1", "0", "0", "0"),
		productB: quant(t, "2", "0", "0", "0"),
	}

	scope := map[product.ID]struct{}{productA: {}}

	avail, err := Collect(g, catalogue, raw, []product.ID{productA, productB}, scope, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if _, ok := avail[productA]; !ok {
		t.Error("expected product A to be computed")
	}
	if _, ok := avail[productB]; ok {
		t.Error("expected product B to be excluded by scope")
	}
}

func TestScopeNilComputesEveryNode(t *testing.T) {
	productA, productB := product.ID(1), product.ID(2)

	g := graph.New()
	g.AddNode(productA)
	g.AddNode(productB)

	catalogue := map[product.ID]product.Product{
		productA: product.NewSimple(2),
		productB: product.NewSimple(2),
	}
	raw := map[product.ID]product.Quant{
		productA: quant(t, "1", "0", "0", "0"),
		productB: quant(t, "2", "0", "0", "0"),
	}

	avail, err := Collect(g, catalogue, raw, []product.ID{productA, productB}, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if _, ok := avail[productA]; !ok {
		t.Error("expected product A to be computed")
	}
	if _, ok := avail[productB]; !ok {
		t.Error("expected product B to be computed when scope is unconstrained")
	}
}

func TestMissingCatalogueEntryIsFatal(t *testing.T) {
	g := graph.New()
	g.AddNode(1)

	_, err := Collect(g, map[product.ID]product.Product{}, map[product.ID]product.Quant{}, []product.ID{1}, nil, 2)
	if err == nil {
		t.Fatal("expected MissingCatalogueEntryError, got nil")
	}
	if _, ok := err.(*MissingCatalogueEntryError); !ok {
		t.Fatalf("expected *MissingCatalogueEntryError, got %T", err)
	}
}

func TestCommingledSumsBuildableFromDependencies(t *testing.T) {
	// A commingled parent whose dependency is a Normal assembly with
	// nonzero buildable must carry that buildable into its own sum.
	depA, normalDep, commingled := product.ID(1), product.ID(2), product.ID(3)

	g := graph.New()
	g.AddNode(depA)
	g.AddNode(normalDep)
	g.AddNode(commingled)
	g.AddEdge(depA, normalDep, decimal.NewFromInt(1))
	g.AddEdge(normalDep, commingled, decimal.NewFromInt(1))

	catalogue := map[product.ID]product.Product{
		depA:       product.NewSimple(2),
		normalDep:  product.NewNormal(decimal.NewFromInt(1), 2),
		commingled: product.NewCommingled(2),
	}
	raw := map[product.ID]product.Quant{
		depA:      quant(t, "10", "0", "0", "0"),
		normalDep: quant(t, "0", "0", "0", "0"),
	}

	topo, err := g.Toposort()
	if err != nil {
		t.Fatalf("Toposort() error = %v", err)
	}
	avail, err := Collect(g, catalogue, raw, topo, nil, 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if !avail[normalDep].Buildable.Equal(d(t, "10")) {
		t.Fatalf("normalDep buildable = %s, want 10", avail[normalDep].Buildable)
	}
	if !avail[commingled].Buildable.Equal(d(t, "10")) {
		t.Fatalf("commingled buildable = %s, want 10 (summed from normal dependency)", avail[commingled].Buildable)
	}
}

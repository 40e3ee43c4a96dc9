package product

import "github.com/shopspring/decimal"

// Quant is the raw, pre-propagation snapshot for a product at one
// warehouse. All fields default to zero when a product has no matching
// rows; absence is not an error.
type Quant struct {
	Quantity decimal.Decimal
	Reserved decimal.Decimal
	Incoming decimal.Decimal
	Outgoing decimal.Decimal
}

// Availability is the post-propagation result for a product.
type Availability struct {
	Quantity  decimal.Decimal
	Reserved  decimal.Decimal
	Incoming  decimal.Decimal
	Outgoing  decimal.Decimal
	Buildable decimal.Decimal
}

// FreeImmediately is stock on hand not yet committed.
func (a Availability) FreeImmediately() decimal.Decimal {
	return a.Quantity.Sub(a.Reserved)
}

// VirtualAvailable is the projected on-hand quantity after pending moves
// settle.
func (a Availability) VirtualAvailable() decimal.Decimal {
	return a.Quantity.Add(a.Incoming).Sub(a.Outgoing)
}

// OutputMode selects whether negative output fields are clamped to zero
// or passed through signed. It is a presentation choice only; it never
// feeds back into propagation.
type OutputMode uint8

const (
	// ClampToZero replaces any negative output field with zero.
	ClampToZero OutputMode = iota
	// Signed passes every field through unmodified.
	Signed
)

// OutputModeFromAllowNegative maps the CLI's --allow-negative flag onto
// an OutputMode.
func OutputModeFromAllowNegative(allowNegative bool) OutputMode {
	if allowNegative {
		return Signed
	}
	return ClampToZero
}

func (m OutputMode) project(value decimal.Decimal) decimal.Decimal {
	if m == ClampToZero && value.IsNegative() {
		return decimal.Zero
	}
	return value
}

// OutputAvailability is the seven-field row callers and boundary
// formatters consume.
type OutputAvailability struct {
	Quantity         decimal.Decimal
	Reserved         decimal.Decimal
	Incoming         decimal.Decimal
	Outgoing         decimal.Decimal
	Buildable        decimal.Decimal
	FreeImmediately  decimal.Decimal
	VirtualAvailable decimal.Decimal
}

// Output projects an Availability into its seven reported fields under
// the given mode. The two derived fields are computed before clamping is
// applied, exactly once.
func (a Availability) Output(mode OutputMode) OutputAvailability {
	freeImmediately := a.FreeImmediately()
	virtualAvailable := a.VirtualAvailable()

	return OutputAvailability{
		Quantity:         mode.project(a.Quantity),
		Reserved:         mode.project(a.Reserved),
		Incoming:         mode.project(a.Incoming),
		Outgoing:         mode.project(a.Outgoing),
		Buildable:        mode.project(a.Buildable),
		FreeImmediately:  mode.project(freeImmediately),
		VirtualAvailable: mode.project(virtualAvailable),
	}
}

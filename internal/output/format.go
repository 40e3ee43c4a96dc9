// Package output formats a computed product availability for the two
// boundary formats the CLI supports: a one-line human summary and a
// JSONL row with every decimal field serialized as a string, never a
// float.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sjorsgeenen/odoo-stockgraph/internal/product"
)

// jsonlRow mirrors the boundary JSONL shape: decimal fields are strings
// so no JSON decoder silently rounds them through float64.
type jsonlRow struct {
	ProductID        int32  `json:"product_id"`
	WarehouseID      int32  `json:"warehouse_id"`
	WarehouseName    string `json:"warehouse_name"`
	Quantity         string `json:"quantity"`
	Reserved         string `json:"reserved"`
	Incoming         string `json:"incoming"`
	Outgoing         string `json:"outgoing"`
	Buildable        string `json:"buildable"`
	FreeImmediately  string `json:"free_immediately"`
	VirtualAvailable string `json:"virtual_available"`
}

// WriteHuman writes one line of the form
// "ProductId(<id>), <warehouse name>: free=<d>, quantity=<d>, reserved=<d>, incoming=<d>, outgoing=<d>, buildable=<d>, virtual_available=<d>".
func WriteHuman(w io.Writer, id product.ID, warehouse product.Warehouse, out product.OutputAvailability) error {
	_, err := fmt.Fprintf(w, "ProductId(%d), %s: free=%s, quantity=%s, reserved=%s, incoming=%s, outgoing=%s, buildable=%s, virtual_available=%s\n",
		id, warehouse.Name,
		out.FreeImmediately, out.Quantity, out.Reserved, out.Incoming, out.Outgoing,
		out.Buildable, out.VirtualAvailable,
	)
	return err
}

// WriteJSONL writes one JSON object per call, newline-terminated.
func WriteJSONL(w io.Writer, id product.ID, warehouse product.Warehouse, out product.OutputAvailability) error {
	row := jsonlRow{
		ProductID:        int32(id),
		WarehouseID:      int32(warehouse.ID),
		WarehouseName:    warehouse.Name,
		Quantity:         out.Quantity.String(),
		Reserved:         out.Reserved.String(),
		Incoming:         out.Incoming.String(),
		Outgoing:         out.Outgoing.String(),
		Buildable:        out.Buildable.String(),
		FreeImmediately:  out.FreeImmediately.String(),
		VirtualAvailable: out.VirtualAvailable.String(),
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

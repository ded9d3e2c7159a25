package stocknotes

import (
	"errors"
	"strings"

	"github.com/brickline-erp/brickline-erp/internal/procurement"
)

// Receipt statuses as stored. Comparisons are case-insensitive and trimmed
// because imported rows carry inconsistent casing.
const (
	StatusReceived = "Received"
	StatusShipment = "Shipment"
)

// ReceiptNoteItem records goods received against one PO/CO line item.
type ReceiptNoteItem struct {
	UUID            string                `json:"uuid"`
	CorporationUUID string                `json:"corporation_uuid"`
	ProjectUUID     string                `json:"project_uuid"`
	OrderUUID       string                `json:"order_uuid"`
	OrderKind       procurement.OrderKind `json:"order_kind"`
	OrderItemUUID   string                `json:"order_item_uuid"`
	Status          string                `json:"status"`
	ReceivedQty     float64               `json:"received_quantity"`
	UnitCost        float64               `json:"unit_cost"`
	VendorUUID      string                `json:"vendor_uuid"`
	ReceivedDate    string                `json:"received_date"`
	InvoiceNumber   string                `json:"invoice_number"`
	InvoiceDate     string                `json:"invoice_date"`
	IsActive        bool                  `json:"is_active"`
}

// Received reports whether the row counts toward current stock rather than
// in-shipment quantity.
func (r ReceiptNoteItem) Received() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusReceived)
}

// ReturnNoteItem records goods sent back against one PO/CO line item.
type ReturnNoteItem struct {
	UUID            string                `json:"uuid"`
	CorporationUUID string                `json:"corporation_uuid"`
	ProjectUUID     string                `json:"project_uuid"`
	OrderUUID       string                `json:"order_uuid"`
	OrderKind       procurement.OrderKind `json:"order_kind"`
	OrderItemUUID   string                `json:"order_item_uuid"`
	ReturnedQty     float64               `json:"returned_quantity"`
	IsActive        bool                  `json:"is_active"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("stocknotes: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("stocknotes: invalid input")
)

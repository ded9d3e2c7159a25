package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distinguishes purchase orders from change orders. Line items,
// receipt notes and return notes carry the kind alongside the order UUID.
type OrderKind string

const (
	KindPurchaseOrder OrderKind = "purchase_order"
	KindChangeOrder   OrderKind = "change_order"
)

// OrderStatus is the purchase/change order lifecycle status.
type OrderStatus string

const (
	StatusDraft             OrderStatus = "Draft"
	StatusApproved          OrderStatus = "Approved"
	StatusPartiallyReceived OrderStatus = "Partially_Received"
	StatusCompleted         OrderStatus = "Completed"
	StatusCancelled         OrderStatus = "Cancelled"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusApproved, StatusPartiallyReceived, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Receivable reports whether goods may be received against this status.
// Draft and cancelled orders are excluded from stock reports.
func (s OrderStatus) Receivable() bool {
	switch s {
	case StatusApproved, StatusPartiallyReceived, StatusCompleted:
		return true
	}
	return false
}

// POTypeLabor marks labor-only orders, excluded from the PO-wise stock report.
const POTypeLabor = "labor"

// PurchaseOrder is a procurement document against a project and vendor.
type PurchaseOrder struct {
	UUID            string             `json:"uuid"`
	CorporationUUID string             `json:"corporation_uuid"`
	ProjectUUID     string             `json:"project_uuid"`
	VendorUUID      string             `json:"vendor_uuid"`
	Number          string             `json:"po_number"`
	Status          OrderStatus        `json:"status"`
	POType          string             `json:"po_type"`
	Breakdown       FinancialBreakdown `json:"financial_breakdown"`
	IsActive        bool               `json:"is_active"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ChangeOrder amends an existing purchase order. Same lifecycle as a PO.
type ChangeOrder struct {
	UUID              string             `json:"uuid"`
	CorporationUUID   string             `json:"corporation_uuid"`
	ProjectUUID       string             `json:"project_uuid"`
	VendorUUID        string             `json:"vendor_uuid"`
	PurchaseOrderUUID string             `json:"purchase_order_uuid"`
	Number            string             `json:"co_number"`
	Status            OrderStatus        `json:"status"`
	Breakdown         FinancialBreakdown `json:"financial_breakdown"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
}

// OrderItem is a PO/CO line item referencing a catalog item ("project item")
// by UUID. The catalog item UUID is the aggregation key across orders.
type OrderItem struct {
	UUID       string    `json:"uuid"`
	OrderUUID  string    `json:"order_uuid"`
	OrderKind  OrderKind `json:"order_kind"`
	ItemUUID   string    `json:"item_uuid"`
	OrderedQty float64   `json:"ordered_quantity"`
	UnitPrice  float64   `json:"unit_price"`
	IsActive   bool      `json:"is_active"`
}

// Invoice is a vendor invoice recorded against a purchase order. Advance
// invoices may later be adjusted against a regular invoice.
type Invoice struct {
	UUID                  string          `json:"uuid"`
	CorporationUUID       string          `json:"corporation_uuid"`
	PurchaseOrderUUID     string          `json:"purchase_order_uuid"`
	Number                string          `json:"invoice_number"`
	Date                  string          `json:"invoice_date"`
	Amount                decimal.Decimal `json:"amount"`
	AgainstAdvancePayment bool            `json:"against_advance_payment"`
	AdjustedInvoiceUUID   string          `json:"adjusted_invoice_uuid,omitempty"`
	IsActive              bool            `json:"is_active"`
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("procurement: not found")
	// ErrPONotFound is the explicit domain message for a missing purchase order.
	ErrPONotFound = errors.New("purchase order not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("procurement: invalid state transition")
)

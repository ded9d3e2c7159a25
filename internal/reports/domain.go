package reports

import "errors"

// StockRow is one aggregated inventory row, keyed by catalog item across all
// purchase and change orders of a project.
type StockRow struct {
	ItemUUID         string  `json:"itemUuid"`
	ItemCode         string  `json:"itemCode"`
	ItemName         string  `json:"itemName"`
	Unit             string  `json:"unit"`
	CostCode         string  `json:"costCode"`
	Vendor           string  `json:"vendor"`
	CurrentStock     float64 `json:"currentStock"`
	InShipment       float64 `json:"inShipment"`
	ReturnedQty      float64 `json:"returnedQty"`
	UnitCost         float64 `json:"unitCost"`
	TotalValue       float64 `json:"totalValue"`
	ReorderLevel     float64 `json:"reorderLevel"`
	LastPurchaseDate string  `json:"lastPurchaseDate"`
	LastStockUpdate  string  `json:"lastStockUpdate"`
}

// StockTotals are the grand totals across all stock rows.
type StockTotals struct {
	CurrentStock float64 `json:"currentStock"`
	TotalValue   float64 `json:"totalValue"`
	ReorderLevel float64 `json:"reorderLevel"`
	InShipment   float64 `json:"inShipment"`
	ReturnedQty  float64 `json:"returnedQty"`
}

// StockReport is the full stock report payload.
type StockReport struct {
	Items  []StockRow  `json:"items"`
	Totals StockTotals `json:"totals"`
}

// POWiseRow is one line of the PO-wise stock report.
type POWiseRow struct {
	OrderItemUUID string  `json:"orderItemUuid"`
	ItemUUID      string  `json:"itemUuid"`
	OrderedQty    float64 `json:"orderedQty"`
	ReceivedQty   float64 `json:"receivedQty"`
	UnitPrice     float64 `json:"unitPrice"`
	Value         float64 `json:"value"`
	Status        string  `json:"status"`
	InvoiceNumber string  `json:"invoiceNumber"`
	InvoiceDate   string  `json:"invoiceDate"`
}

// POWiseSubtotal sums one purchase order's rows.
type POWiseSubtotal struct {
	OrderedQty  float64 `json:"orderedQty"`
	ReceivedQty float64 `json:"receivedQty"`
	Value       float64 `json:"value"`
}

// POWiseGroup is one purchase order's section of the report.
type POWiseGroup struct {
	POUUID   string         `json:"poUuid"`
	PONumber string         `json:"poNumber"`
	Vendor   string         `json:"vendor"`
	Status   string         `json:"status"`
	Rows     []POWiseRow    `json:"rows"`
	Subtotal POWiseSubtotal `json:"subtotal"`
}

// POWiseReport is the full PO-wise report payload.
type POWiseReport struct {
	Orders []POWiseGroup  `json:"orders"`
	Totals POWiseSubtotal `json:"totals"`
}

// InvoiceSummary carries the invoicing position of one purchase order.
type InvoiceSummary struct {
	PurchaseOrderUUID   string  `json:"purchaseOrderUuid"`
	TotalPOValue        float64 `json:"total_po_value"`
	AdvancePaid         float64 `json:"advance_paid"`
	InvoicedValue       float64 `json:"invoiced_value"`
	BalanceToBeInvoiced float64 `json:"balance_to_be_invoiced"`
}

var (
	// ErrValidation indicates a required report parameter is missing.
	ErrValidation = errors.New("reports: invalid input")
)

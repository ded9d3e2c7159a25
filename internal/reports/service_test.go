package reports

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/brickline-erp/brickline-erp/internal/masterdata"
	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/stocknotes"
)

const (
	testCorp    = "8a0c7f4e-8e1a-4f8e-bd5c-0a7d6e5f4c3b"
	testProject = "2b1d8e5f-9f2b-4a9f-ce6d-1b8e7f6a5d4c"
)

type fakeNotes struct {
	receipts    []stocknotes.ReceiptNoteItem
	returns     []stocknotes.ReturnNoteItem
	receiptsErr error
	returnsErr  error
}

func (f *fakeNotes) ListReceiptItemsByProject(context.Context, string, string) ([]stocknotes.ReceiptNoteItem, error) {
	return f.receipts, f.receiptsErr
}

func (f *fakeNotes) ListReturnItemsByProject(context.Context, string, string) ([]stocknotes.ReturnNoteItem, error) {
	return f.returns, f.returnsErr
}

type fakeMaster struct {
	vendors   []masterdata.Vendor
	costCodes []masterdata.CostCode
	catalog   []masterdata.CatalogItem
}

func (f *fakeMaster) ListVendors(context.Context, string) ([]masterdata.Vendor, error) {
	return f.vendors, nil
}

func (f *fakeMaster) ListCostCodes(context.Context, string) ([]masterdata.CostCode, error) {
	return f.costCodes, nil
}

func (f *fakeMaster) ListCatalogItems(context.Context, string, string) ([]masterdata.CatalogItem, error) {
	return f.catalog, nil
}

type fakeOrders struct {
	pos      []procurement.PurchaseOrder
	cos      []procurement.ChangeOrder
	items    []procurement.OrderItem
	invoices []procurement.Invoice
}

func (f *fakeOrders) ListPOsByProject(context.Context, string, string) ([]procurement.PurchaseOrder, error) {
	return f.pos, nil
}

func (f *fakeOrders) ListCOsByProject(context.Context, string, string) ([]procurement.ChangeOrder, error) {
	return f.cos, nil
}

func (f *fakeOrders) GetOrderItemsByProject(context.Context, string, string) ([]procurement.OrderItem, error) {
	return f.items, nil
}

func (f *fakeOrders) GetOrderItems(_ context.Context, kind procurement.OrderKind, orderUUID string) ([]procurement.OrderItem, error) {
	var out []procurement.OrderItem
	for _, it := range f.items {
		if it.OrderKind == kind && it.OrderUUID == orderUUID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetPO(_ context.Context, uuid string) (procurement.PurchaseOrder, error) {
	for _, po := range f.pos {
		if po.UUID == uuid {
			return po, nil
		}
	}
	return procurement.PurchaseOrder{}, procurement.ErrPONotFound
}

func (f *fakeOrders) ListInvoicesByPO(_ context.Context, poUUID string) ([]procurement.Invoice, error) {
	var out []procurement.Invoice
	for _, inv := range f.invoices {
		if inv.PurchaseOrderUUID == poUUID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func newTestService(notes *fakeNotes, master *fakeMaster, orders *fakeOrders) *Service {
	return NewService(slog.Default(), notes, master, orders, NewCache(nil, 0))
}

// stockFixture wires two POs over three catalog items: one with a sequence
// code, one with only a model number, one with neither (placeholder code).
func stockFixture() (*fakeNotes, *fakeMaster, *fakeOrders) {
	master := &fakeMaster{
		vendors: []masterdata.Vendor{
			{UUID: "v-1", Name: "Acme Steel", IsActive: true},
			{UUID: "v-2", Name: "Bright Cement", IsActive: true},
		},
		costCodes: []masterdata.CostCode{
			{UUID: "cc-1", Number: "03-100", Name: "Concrete", IsActive: true},
		},
		catalog: []masterdata.CatalogItem{
			{UUID: "cat-1", Name: "Rebar 12mm", SequenceCode: "SEQ-100", Unit: "kg", CostCodeUUID: "cc-1", IsActive: true},
			{UUID: "cat-2", Name: "Cement 50kg", ModelNumber: "MDL-7", Unit: "bag", IsActive: true},
			{UUID: "cat-3", Name: "Loose Gravel", Unit: "t", IsActive: true},
		},
	}
	orders := &fakeOrders{
		pos: []procurement.PurchaseOrder{
			{UUID: "po-1", VendorUUID: "v-1", Number: "PO-001", Status: procurement.StatusApproved, IsActive: true},
			{UUID: "po-2", VendorUUID: "v-2", Number: "PO-002", Status: procurement.StatusApproved, IsActive: true},
		},
		items: []procurement.OrderItem{
			{UUID: "oi-1", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-1", OrderedQty: 100, UnitPrice: 5, IsActive: true},
			{UUID: "oi-2", OrderUUID: "po-2", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-1", OrderedQty: 40, UnitPrice: 6, IsActive: true},
			{UUID: "oi-3", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-2", OrderedQty: 20, UnitPrice: 10, IsActive: true},
			{UUID: "oi-4", OrderUUID: "po-2", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-3", OrderedQty: 8, UnitPrice: 30, IsActive: true},
		},
	}
	notes := &fakeNotes{
		receipts: []stocknotes.ReceiptNoteItem{
			// cat-1 received from two different vendors at two prices.
			{UUID: "r-1", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-1", Status: "Received", ReceivedQty: 60, UnitCost: 5, VendorUUID: "v-1", ReceivedDate: "2026-02-01", IsActive: true},
			{UUID: "r-2", OrderUUID: "po-2", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-2", Status: " received ", ReceivedQty: 40, UnitCost: 6, VendorUUID: "v-2", ReceivedDate: "2026-03-15", IsActive: true},
			// cat-2 split between received and in-shipment.
			{UUID: "r-3", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-3", Status: "Received", ReceivedQty: 12, UnitCost: 10, VendorUUID: "v-1", ReceivedDate: "2026-01-20", IsActive: true},
			{UUID: "r-4", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-3", Status: "Shipment", ReceivedQty: 8, UnitCost: 10, VendorUUID: "v-1", ReceivedDate: "2026-02-10", IsActive: true},
			// cat-3 has no catalog code, vendor resolved via the order.
			{UUID: "r-5", OrderUUID: "po-2", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-4", Status: "Shipment", ReceivedQty: 8, UnitCost: 30, ReceivedDate: "2026-04-02", IsActive: true},
			// Soft-deleted row that must not count anywhere.
			{UUID: "r-6", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-1", Status: "Received", ReceivedQty: 999, UnitCost: 5, VendorUUID: "v-1", ReceivedDate: "2026-05-01", IsActive: false},
		},
		returns: []stocknotes.ReturnNoteItem{
			{UUID: "rt-1", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-1", ReturnedQty: 10, IsActive: true},
			{UUID: "rt-2", OrderUUID: "po-2", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-2", ReturnedQty: 5, IsActive: true},
			// Soft-deleted return, excluded.
			{UUID: "rt-3", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-3", ReturnedQty: 100, IsActive: false},
		},
	}
	return notes, master, orders
}

func TestStockReportRequiresIdentifiers(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, &fakeOrders{})

	_, err := svc.StockReport(context.Background(), "", testProject)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.StockReport(context.Background(), testCorp, "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestStockReportAggregation(t *testing.T) {
	notes, master, orders := stockFixture()
	svc := newTestService(notes, master, orders)

	report, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Len(t, report.Items, 3)

	// Sorted lexicographically by item code: ITM001 < MDL-7 < SEQ-100.
	require.Equal(t, "ITM001", report.Items[0].ItemCode)
	require.Equal(t, "MDL-7", report.Items[1].ItemCode)
	require.Equal(t, "SEQ-100", report.Items[2].ItemCode)

	rebar := report.Items[2]
	require.Equal(t, 100.0, rebar.CurrentStock) // 60 + 40, dead row excluded
	require.Equal(t, 15.0, rebar.ReturnedQty)   // 10 + 5 across both POs
	require.Equal(t, "Multiple", rebar.Vendor)
	require.Equal(t, "2026-03-15", rebar.LastPurchaseDate)
	require.Equal(t, "03-100 Concrete", rebar.CostCode)
	// Weighted average: (60*5 + 40*6) / 100.
	require.InDelta(t, 5.4, rebar.UnitCost, 1e-9)

	cement := report.Items[1]
	require.Equal(t, 12.0, cement.CurrentStock)
	require.Equal(t, 8.0, cement.InShipment)
	require.Equal(t, "Acme Steel", cement.Vendor)

	gravel := report.Items[0]
	require.Equal(t, 8.0, gravel.InShipment)
	// No receipt-level vendor: resolved through the owning order.
	require.Equal(t, "Bright Cement", gravel.Vendor)
}

func TestStockReportWeightedAverageInvariant(t *testing.T) {
	notes, master, orders := stockFixture()
	svc := newTestService(notes, master, orders)

	report, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	for _, row := range report.Items {
		require.InDelta(t, row.TotalValue, row.UnitCost*(row.CurrentStock+row.InShipment), 1e-9, "item %s", row.ItemCode)
	}
}

func TestStockReportTotalsEqualSumOfRows(t *testing.T) {
	notes, master, orders := stockFixture()
	svc := newTestService(notes, master, orders)

	report, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)

	var want StockTotals
	for _, row := range report.Items {
		want.CurrentStock += row.CurrentStock
		want.TotalValue += row.TotalValue
		want.ReorderLevel += row.ReorderLevel
		want.InShipment += row.InShipment
		want.ReturnedQty += row.ReturnedQty
	}
	require.Equal(t, want, report.Totals)
	require.Zero(t, report.Totals.ReorderLevel)
}

func TestStockReportIdempotent(t *testing.T) {
	notes, master, orders := stockFixture()
	svc := newTestService(notes, master, orders)

	first, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	second, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestStockReportDegradesOnSubFetchFailure(t *testing.T) {
	notes, master, orders := stockFixture()
	notes.returnsErr = errors.New("timeout")
	svc := newTestService(notes, master, orders)

	report, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	// Returns degraded to empty: no returned quantity anywhere.
	require.Zero(t, report.Totals.ReturnedQty)
	require.Len(t, report.Items, 3)
}

func TestStockReportDegradedBuildIsNotCached(t *testing.T) {
	notes, master, orders := stockFixture()
	notes.receiptsErr = errors.New("timeout")
	notes.returnsErr = errors.New("timeout")
	svc := NewService(slog.Default(), notes, master, orders, newTestCache(t))

	report, err := svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Empty(t, report.Items)

	// Once the sources recover, the next call must rebuild rather than
	// serve the empty build for the rest of the TTL.
	notes.receiptsErr = nil
	notes.returnsErr = nil
	report, err = svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Len(t, report.Items, 3)

	// A clean build is cached as usual.
	notes.receiptsErr = errors.New("timeout")
	report, err = svc.StockReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Len(t, report.Items, 3)
}

func TestPOWiseReportRequiresIdentifiers(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, &fakeOrders{})

	_, err := svc.POWiseReport(context.Background(), "", testProject)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPOWiseReportEmptyIsNotAnError(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, &fakeOrders{})

	report, err := svc.POWiseReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Empty(t, report.Orders)
}

func TestPOWiseReportFiltersDraftAndLabor(t *testing.T) {
	notes, master, orders := stockFixture()
	orders.pos = append(orders.pos,
		procurement.PurchaseOrder{UUID: "po-3", Number: "PO-003", Status: procurement.StatusDraft, IsActive: true},
		procurement.PurchaseOrder{UUID: "po-4", Number: "PO-004", Status: procurement.StatusApproved, POType: "labor", IsActive: true},
	)
	svc := newTestService(notes, master, orders)

	report, err := svc.POWiseReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Len(t, report.Orders, 2)
	for _, group := range report.Orders {
		require.NotEqual(t, "PO-003", group.PONumber)
		require.NotEqual(t, "PO-004", group.PONumber)
	}
}

func TestPOWiseReportInvoiceCollapsing(t *testing.T) {
	master := &fakeMaster{vendors: []masterdata.Vendor{{UUID: "v-1", Name: "Acme Steel"}}}
	orders := &fakeOrders{
		pos: []procurement.PurchaseOrder{
			{UUID: "po-1", VendorUUID: "v-1", Number: "PO-001", Status: procurement.StatusPartiallyReceived, IsActive: true},
		},
		items: []procurement.OrderItem{
			{UUID: "oi-1", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-1", OrderedQty: 30, UnitPrice: 4, IsActive: true},
			{UUID: "oi-2", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, ItemUUID: "cat-2", OrderedQty: 10, UnitPrice: 2, IsActive: true},
		},
	}
	notes := &fakeNotes{
		receipts: []stocknotes.ReceiptNoteItem{
			{UUID: "r-1", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-1", Status: "Shipment", ReceivedQty: 10, InvoiceNumber: "INV-7", InvoiceDate: "2026-01-02", IsActive: true},
			{UUID: "r-2", OrderUUID: "po-1", OrderKind: procurement.KindPurchaseOrder, OrderItemUUID: "oi-1", Status: "Received", ReceivedQty: 20, InvoiceNumber: "INV-9", InvoiceDate: "2026-01-30", IsActive: true},
		},
	}
	svc := newTestService(notes, master, orders)

	report, err := svc.POWiseReport(context.Background(), testCorp, testProject)
	require.NoError(t, err)
	require.Len(t, report.Orders, 1)
	group := report.Orders[0]
	require.Equal(t, "Acme Steel", group.Vendor)
	require.Len(t, group.Rows, 2)

	withReceipts := group.Rows[0]
	require.Equal(t, 30.0, withReceipts.OrderedQty)
	require.Equal(t, 30.0, withReceipts.ReceivedQty)
	require.Equal(t, "Received", withReceipts.Status) // any Received row wins
	require.Equal(t, "Multiple", withReceipts.InvoiceNumber)
	require.Equal(t, "2026-01-30", withReceipts.InvoiceDate) // lexicographic max

	bare := group.Rows[1]
	require.Equal(t, "In Shipment", bare.Status)
	require.Equal(t, "NA", bare.InvoiceNumber)
	require.Equal(t, "NA", bare.InvoiceDate)

	require.Equal(t, group.Subtotal, report.Totals)
	require.Equal(t, 40.0, report.Totals.OrderedQty)
	require.Equal(t, 30.0, report.Totals.ReceivedQty)
	require.Equal(t, 120.0, report.Totals.Value)
}

func invoiceFixture() *fakeOrders {
	po := procurement.PurchaseOrder{
		UUID:            "po-1",
		CorporationUUID: testCorp,
		Number:          "PO-001",
		Status:          procurement.StatusApproved,
		IsActive:        true,
		Breakdown: procurement.FinancialBreakdown{
			Totals: procurement.BreakdownTotals{TotalPOAmount: 10000},
		},
	}
	return &fakeOrders{
		pos: []procurement.PurchaseOrder{po},
		invoices: []procurement.Invoice{
			{UUID: "adv-1", PurchaseOrderUUID: "po-1", Amount: decimal.RequireFromString("240.00"), AgainstAdvancePayment: true, AdjustedInvoiceUUID: "inv-current", IsActive: true},
			{UUID: "adv-2", PurchaseOrderUUID: "po-1", Amount: decimal.RequireFromString("100.00"), AgainstAdvancePayment: true, IsActive: true},
			{UUID: "inv-1", PurchaseOrderUUID: "po-1", Amount: decimal.RequireFromString("5000.00"), IsActive: true},
		},
	}
}

func TestInvoiceSummaryWithCurrentInvoice(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, invoiceFixture())

	summary, err := svc.InvoiceSummary(context.Background(), "po-1", "inv-current")
	require.NoError(t, err)
	require.Equal(t, 10000.0, summary.TotalPOValue)
	require.Equal(t, 340.0, summary.AdvancePaid) // adjusted-to-current + unadjusted
	require.Equal(t, 5000.0, summary.InvoicedValue)
	require.Equal(t, 4660.0, summary.BalanceToBeInvoiced)
}

func TestInvoiceSummaryWithoutCurrentInvoice(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, invoiceFixture())

	summary, err := svc.InvoiceSummary(context.Background(), "po-1", "")
	require.NoError(t, err)
	require.Equal(t, 100.0, summary.AdvancePaid) // only the unadjusted advance
	require.Equal(t, 5000.0, summary.InvoicedValue)
	require.Equal(t, 4900.0, summary.BalanceToBeInvoiced)
}

func TestInvoiceSummaryBalanceMayGoNegative(t *testing.T) {
	orders := invoiceFixture()
	orders.invoices = append(orders.invoices, procurement.Invoice{
		UUID: "inv-2", PurchaseOrderUUID: "po-1", Amount: decimal.RequireFromString("9000.00"), IsActive: true,
	})
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, orders)

	summary, err := svc.InvoiceSummary(context.Background(), "po-1", "")
	require.NoError(t, err)
	require.Equal(t, -4100.0, summary.BalanceToBeInvoiced)
}

func TestInvoiceSummaryMissingParam(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, invoiceFixture())

	_, err := svc.InvoiceSummary(context.Background(), "", "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestInvoiceSummaryUnknownPO(t *testing.T) {
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, invoiceFixture())

	_, err := svc.InvoiceSummary(context.Background(), "po-missing", "")
	require.ErrorIs(t, err, procurement.ErrPONotFound)
}

func TestInvoiceSummaryIgnoresInactiveInvoices(t *testing.T) {
	orders := invoiceFixture()
	orders.invoices = append(orders.invoices, procurement.Invoice{
		UUID: "dead", PurchaseOrderUUID: "po-1", Amount: decimal.RequireFromString("777.00"), IsActive: false,
	})
	svc := newTestService(&fakeNotes{}, &fakeMaster{}, orders)

	summary, err := svc.InvoiceSummary(context.Background(), "po-1", "")
	require.NoError(t, err)
	require.Equal(t, 5000.0, summary.InvoicedValue)
}

package procurement

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreatePO(ctx context.Context, po PurchaseOrder) (string, error)
	CreateCO(ctx context.Context, co ChangeOrder) (string, error)
	InsertOrderItem(ctx context.Context, item OrderItem) error
	UpdateOrderStatus(ctx context.Context, kind OrderKind, orderUUID string, status OrderStatus) error
	CreateInvoice(ctx context.Context, inv Invoice) (string, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// GetPO returns a purchase order with its parsed financial breakdown.
func (r *Repository) GetPO(ctx context.Context, uuid string) (PurchaseOrder, error) {
	var po PurchaseOrder
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT uuid, corporation_uuid, project_uuid, COALESCE(vendor_uuid,''), po_number, status, COALESCE(po_type,''), financial_breakdown, is_active, created_at
FROM purchase_orders WHERE uuid = $1`, uuid).
		Scan(&po.UUID, &po.CorporationUUID, &po.ProjectUUID, &po.VendorUUID, &po.Number, &po.Status, &po.POType, &raw, &po.IsActive, &po.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, ErrPONotFound
		}
		return PurchaseOrder{}, err
	}
	po.Breakdown, err = ParseFinancialBreakdown(raw)
	if err != nil {
		return PurchaseOrder{}, err
	}
	return po, nil
}

// GetCO returns a change order with its parsed financial breakdown.
func (r *Repository) GetCO(ctx context.Context, uuid string) (ChangeOrder, error) {
	var co ChangeOrder
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT uuid, corporation_uuid, project_uuid, COALESCE(vendor_uuid,''), COALESCE(purchase_order_uuid,''), co_number, status, financial_breakdown, is_active, created_at
FROM change_orders WHERE uuid = $1`, uuid).
		Scan(&co.UUID, &co.CorporationUUID, &co.ProjectUUID, &co.VendorUUID, &co.PurchaseOrderUUID, &co.Number, &co.Status, &raw, &co.IsActive, &co.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChangeOrder{}, ErrNotFound
		}
		return ChangeOrder{}, err
	}
	co.Breakdown, err = ParseFinancialBreakdown(raw)
	if err != nil {
		return ChangeOrder{}, err
	}
	return co, nil
}

// ListPOsByProject returns active purchase orders for a project.
func (r *Repository) ListPOsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]PurchaseOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, project_uuid, COALESCE(vendor_uuid,''), po_number, status, COALESCE(po_type,''), financial_breakdown, is_active, created_at
FROM purchase_orders WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE
ORDER BY po_number`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		var raw []byte
		if err := rows.Scan(&po.UUID, &po.CorporationUUID, &po.ProjectUUID, &po.VendorUUID, &po.Number, &po.Status, &po.POType, &raw, &po.IsActive, &po.CreatedAt); err != nil {
			return nil, err
		}
		if po.Breakdown, err = ParseFinancialBreakdown(raw); err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

// ListCOsByProject returns active change orders for a project.
func (r *Repository) ListCOsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]ChangeOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, project_uuid, COALESCE(vendor_uuid,''), COALESCE(purchase_order_uuid,''), co_number, status, financial_breakdown, is_active, created_at
FROM change_orders WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE
ORDER BY co_number`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []ChangeOrder
	for rows.Next() {
		var co ChangeOrder
		var raw []byte
		if err := rows.Scan(&co.UUID, &co.CorporationUUID, &co.ProjectUUID, &co.VendorUUID, &co.PurchaseOrderUUID, &co.Number, &co.Status, &raw, &co.IsActive, &co.CreatedAt); err != nil {
			return nil, err
		}
		if co.Breakdown, err = ParseFinancialBreakdown(raw); err != nil {
			return nil, err
		}
		orders = append(orders, co)
	}
	return orders, rows.Err()
}

// GetOrderItems returns active line items of one order.
func (r *Repository) GetOrderItems(ctx context.Context, kind OrderKind, orderUUID string) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, order_uuid, order_kind, item_uuid, ordered_quantity, unit_price, is_active
FROM order_items WHERE order_uuid = $1 AND order_kind = $2 AND is_active = TRUE`, orderUUID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

// GetOrderItemsByProject returns all active line items for a project's
// purchase and change orders, used by the report aggregators.
func (r *Repository) GetOrderItemsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT oi.uuid, oi.order_uuid, oi.order_kind, oi.item_uuid, oi.ordered_quantity, oi.unit_price, oi.is_active
FROM order_items oi
WHERE oi.is_active = TRUE AND (
  oi.order_uuid IN (SELECT uuid FROM purchase_orders WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE)
  OR oi.order_uuid IN (SELECT uuid FROM change_orders WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE)
)`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrderItems(rows)
}

// ListInvoicesByPO returns active invoices recorded against a purchase order.
func (r *Repository) ListInvoicesByPO(ctx context.Context, poUUID string) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, purchase_order_uuid, COALESCE(invoice_number,''), COALESCE(invoice_date,''), amount::text, against_advance_payment, COALESCE(adjusted_invoice_uuid,''), is_active
FROM invoices WHERE purchase_order_uuid = $1 AND is_active = TRUE ORDER BY invoice_date`, poUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var amount string
		if err := rows.Scan(&inv.UUID, &inv.CorporationUUID, &inv.PurchaseOrderUUID, &inv.Number, &inv.Date, &amount, &inv.AgainstAdvancePayment, &inv.AdjustedInvoiceUUID, &inv.IsActive); err != nil {
			return nil, err
		}
		if inv.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanOrderItems(rows pgx.Rows) ([]OrderItem, error) {
	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.UUID, &it.OrderUUID, &it.OrderKind, &it.ItemUUID, &it.OrderedQty, &it.UnitPrice, &it.IsActive); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (tx *txRepo) CreatePO(ctx context.Context, po PurchaseOrder) (string, error) {
	var id string
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_orders (uuid, corporation_uuid, project_uuid, vendor_uuid, po_number, status, po_type, financial_breakdown, is_active, created_at)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, NULLIF($4,''), $5, $6, $7, $8, TRUE, NOW())
RETURNING uuid`, po.UUID, po.CorporationUUID, po.ProjectUUID, po.VendorUUID, po.Number, string(po.Status), po.POType, po.Breakdown).Scan(&id)
	return id, err
}

func (tx *txRepo) CreateCO(ctx context.Context, co ChangeOrder) (string, error) {
	var id string
	err := tx.tx.QueryRow(ctx, `INSERT INTO change_orders (uuid, corporation_uuid, project_uuid, vendor_uuid, purchase_order_uuid, co_number, status, financial_breakdown, is_active, created_at)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, NULLIF($4,''), NULLIF($5,''), $6, $7, $8, TRUE, NOW())
RETURNING uuid`, co.UUID, co.CorporationUUID, co.ProjectUUID, co.VendorUUID, co.PurchaseOrderUUID, co.Number, string(co.Status), co.Breakdown).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertOrderItem(ctx context.Context, item OrderItem) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO order_items (uuid, order_uuid, order_kind, item_uuid, ordered_quantity, unit_price, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, TRUE)`,
		item.UUID, item.OrderUUID, string(item.OrderKind), item.ItemUUID, item.OrderedQty, item.UnitPrice)
	return err
}

func (tx *txRepo) UpdateOrderStatus(ctx context.Context, kind OrderKind, orderUUID string, status OrderStatus) error {
	table := "purchase_orders"
	if kind == KindChangeOrder {
		table = "change_orders"
	}
	tag, err := tx.tx.Exec(ctx, `UPDATE `+table+` SET status = $2 WHERE uuid = $1`, orderUUID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) CreateInvoice(ctx context.Context, inv Invoice) (string, error) {
	var id string
	err := tx.tx.QueryRow(ctx, `INSERT INTO invoices (uuid, corporation_uuid, purchase_order_uuid, invoice_number, invoice_date, amount, against_advance_payment, adjusted_invoice_uuid, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, NULLIF($8,''), TRUE)
RETURNING uuid`, inv.UUID, inv.CorporationUUID, inv.PurchaseOrderUUID, inv.Number, inv.Date, inv.Amount.String(), inv.AgainstAdvancePayment, inv.AdjustedInvoiceUUID).Scan(&id)
	return id, err
}

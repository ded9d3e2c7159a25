package stocknotes

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickline-erp/brickline-erp/internal/procurement"
)

// undefinedColumn is the SQLSTATE Postgres reports for a missing column.
const undefinedColumn = "42703"

// Repository provides PostgreSQL backed persistence for receipt and return
// note items.
//
// Deployments migrated at different times: older schemas lack the
// vendor_uuid column on receipt_note_items. Rather than matching on error
// text, the repository probes information_schema once at startup and keeps a
// capability flag; a narrow one-shot retry on SQLSTATE 42703 covers the case
// where the probe raced a migration.
type Repository struct {
	pool      *pgxpool.Pool
	logger    *slog.Logger
	hasVendor atomic.Bool
}

// NewRepository constructs a repository and probes the receipt_note_items
// schema for the vendor_uuid column.
func NewRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	r := &Repository{pool: pool, logger: logger}
	r.hasVendor.Store(true)
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (
  SELECT 1 FROM information_schema.columns
  WHERE table_name = 'receipt_note_items' AND column_name = 'vendor_uuid')`).Scan(&exists)
	if err != nil {
		logger.Warn("[StockReturnNotes] schema probe failed, assuming vendor_uuid present", slog.Any("error", err))
		return r
	}
	r.hasVendor.Store(exists)
	if !exists {
		logger.Warn("[StockReturnNotes] receipt_note_items.vendor_uuid absent, using reduced column list")
	}
	return r
}

// CreateReceiptItem inserts a receipt note item, retrying once without the
// vendor_uuid column if the schema turns out not to have it.
func (r *Repository) CreateReceiptItem(ctx context.Context, item ReceiptNoteItem) (string, error) {
	if r.hasVendor.Load() {
		id, err := r.insertReceiptFull(ctx, item)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == undefinedColumn {
			r.hasVendor.Store(false)
			r.logger.Warn("[StockReturnNotes] vendor_uuid rejected by schema, retrying without it", slog.Any("error", err))
			return r.insertReceiptReduced(ctx, item)
		}
		return id, err
	}
	return r.insertReceiptReduced(ctx, item)
}

func (r *Repository) insertReceiptFull(ctx context.Context, item ReceiptNoteItem) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `INSERT INTO receipt_note_items
  (uuid, corporation_uuid, project_uuid, order_uuid, order_kind, order_item_uuid, status, received_quantity, unit_cost, vendor_uuid, received_date, invoice_number, invoice_date, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''), NULLIF($11,''), NULLIF($12,''), NULLIF($13,''), TRUE)
RETURNING uuid`,
		item.UUID, item.CorporationUUID, item.ProjectUUID, item.OrderUUID, string(item.OrderKind), item.OrderItemUUID,
		item.Status, item.ReceivedQty, item.UnitCost, item.VendorUUID, item.ReceivedDate, item.InvoiceNumber, item.InvoiceDate).Scan(&id)
	return id, err
}

func (r *Repository) insertReceiptReduced(ctx context.Context, item ReceiptNoteItem) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `INSERT INTO receipt_note_items
  (uuid, corporation_uuid, project_uuid, order_uuid, order_kind, order_item_uuid, status, received_quantity, unit_cost, received_date, invoice_number, invoice_date, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10,''), NULLIF($11,''), NULLIF($12,''), TRUE)
RETURNING uuid`,
		item.UUID, item.CorporationUUID, item.ProjectUUID, item.OrderUUID, string(item.OrderKind), item.OrderItemUUID,
		item.Status, item.ReceivedQty, item.UnitCost, item.ReceivedDate, item.InvoiceNumber, item.InvoiceDate).Scan(&id)
	return id, err
}

// CreateReturnItem inserts a return note item.
func (r *Repository) CreateReturnItem(ctx context.Context, item ReturnNoteItem) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `INSERT INTO return_note_items
  (uuid, corporation_uuid, project_uuid, order_uuid, order_kind, order_item_uuid, returned_quantity, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, TRUE)
RETURNING uuid`,
		item.UUID, item.CorporationUUID, item.ProjectUUID, item.OrderUUID, string(item.OrderKind), item.OrderItemUUID, item.ReturnedQty).Scan(&id)
	return id, err
}

// SoftDeleteReceiptItem flags a receipt note item inactive.
func (r *Repository) SoftDeleteReceiptItem(ctx context.Context, uuid string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE receipt_note_items SET is_active = FALSE WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteReturnItem flags a return note item inactive.
func (r *Repository) SoftDeleteReturnItem(ctx context.Context, uuid string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE return_note_items SET is_active = FALSE WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReceiptItemsByOrder returns active receipt rows of one order.
func (r *Repository) ListReceiptItemsByOrder(ctx context.Context, kind procurement.OrderKind, orderUUID string) ([]ReceiptNoteItem, error) {
	rows, err := r.pool.Query(ctx, receiptSelect+` WHERE order_uuid = $1 AND order_kind = $2 AND is_active = TRUE`, orderUUID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReceiptItems(rows)
}

// ListReceiptItemsByProject returns active receipt rows of a project, used by
// the report aggregators.
func (r *Repository) ListReceiptItemsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]ReceiptNoteItem, error) {
	rows, err := r.pool.Query(ctx, receiptSelect+` WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE ORDER BY received_date`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReceiptItems(rows)
}

// ListReturnItemsByOrder returns active return rows of one order.
func (r *Repository) ListReturnItemsByOrder(ctx context.Context, kind procurement.OrderKind, orderUUID string) ([]ReturnNoteItem, error) {
	rows, err := r.pool.Query(ctx, returnSelect+` WHERE order_uuid = $1 AND order_kind = $2 AND is_active = TRUE`, orderUUID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReturnItems(rows)
}

// ListReturnItemsByProject returns active return rows of a project.
func (r *Repository) ListReturnItemsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]ReturnNoteItem, error) {
	rows, err := r.pool.Query(ctx, returnSelect+` WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReturnItems(rows)
}

const receiptSelect = `SELECT uuid, corporation_uuid, project_uuid, order_uuid, order_kind, order_item_uuid, status, received_quantity, unit_cost, COALESCE(vendor_uuid,''), COALESCE(received_date,''), COALESCE(invoice_number,''), COALESCE(invoice_date,''), is_active
FROM receipt_note_items`

const returnSelect = `SELECT uuid, corporation_uuid, project_uuid, order_uuid, order_kind, order_item_uuid, returned_quantity, is_active
FROM return_note_items`

func scanReceiptItems(rows pgx.Rows) ([]ReceiptNoteItem, error) {
	var items []ReceiptNoteItem
	for rows.Next() {
		var it ReceiptNoteItem
		if err := rows.Scan(&it.UUID, &it.CorporationUUID, &it.ProjectUUID, &it.OrderUUID, &it.OrderKind, &it.OrderItemUUID,
			&it.Status, &it.ReceivedQty, &it.UnitCost, &it.VendorUUID, &it.ReceivedDate, &it.InvoiceNumber, &it.InvoiceDate, &it.IsActive); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanReturnItems(rows pgx.Rows) ([]ReturnNoteItem, error) {
	var items []ReturnNoteItem
	for rows.Next() {
		var it ReturnNoteItem
		if err := rows.Scan(&it.UUID, &it.CorporationUUID, &it.ProjectUUID, &it.OrderUUID, &it.OrderKind, &it.OrderItemUUID,
			&it.ReturnedQty, &it.IsActive); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

package stocknotes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brickline-erp/brickline-erp/internal/procurement"
	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	CreateReceiptItem(ctx context.Context, item ReceiptNoteItem) (string, error)
	CreateReturnItem(ctx context.Context, item ReturnNoteItem) (string, error)
	SoftDeleteReceiptItem(ctx context.Context, uuid string) error
	SoftDeleteReturnItem(ctx context.Context, uuid string) error
	ListReceiptItemsByOrder(ctx context.Context, kind procurement.OrderKind, orderUUID string) ([]ReceiptNoteItem, error)
	ListReturnItemsByOrder(ctx context.Context, kind procurement.OrderKind, orderUUID string) ([]ReturnNoteItem, error)
}

// OrdersPort exposes the procurement operations the completion check needs.
type OrdersPort interface {
	OrderItems(ctx context.Context, kind procurement.OrderKind, orderUUID string) ([]procurement.OrderItem, error)
	MarkCompleted(ctx context.Context, kind procurement.OrderKind, orderUUID string) error
}

// AuditPort records audit entries for note mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// InvalidatorPort invalidates cached report data for a corporation.
type InvalidatorPort interface {
	Invalidate(ctx context.Context, corporationUUID string) error
}

// Service handles receipt and return note flows, including the automatic
// order completion transition after returns.
type Service struct {
	repo   RepositoryPort
	orders OrdersPort
	audit  AuditPort
	cache  InvalidatorPort
	logger *slog.Logger
}

// NewService constructs the stock notes service.
func NewService(logger *slog.Logger, repo RepositoryPort, orders OrdersPort, audit AuditPort, cache InvalidatorPort) *Service {
	return &Service{repo: repo, orders: orders, audit: audit, cache: cache, logger: logger}
}

// CreateReceiptItem validates and persists a receipt note item.
func (s *Service) CreateReceiptItem(ctx context.Context, item ReceiptNoteItem) (ReceiptNoteItem, error) {
	if strings.TrimSpace(item.CorporationUUID) == "" || strings.TrimSpace(item.ProjectUUID) == "" {
		return ReceiptNoteItem{}, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	if item.OrderItemUUID == "" {
		return ReceiptNoteItem{}, fmt.Errorf("%w: order_item_uuid required", ErrValidation)
	}
	if item.ReceivedQty <= 0 {
		return ReceiptNoteItem{}, fmt.Errorf("%w: received_quantity must be positive", ErrValidation)
	}
	status := strings.TrimSpace(item.Status)
	if !strings.EqualFold(status, StatusReceived) && !strings.EqualFold(status, StatusShipment) {
		return ReceiptNoteItem{}, fmt.Errorf("%w: status must be Received or Shipment", ErrValidation)
	}
	item.IsActive = true
	id, err := s.repo.CreateReceiptItem(ctx, item)
	if err != nil {
		return ReceiptNoteItem{}, err
	}
	item.UUID = id
	s.recordAudit(ctx, "RECEIPT_CREATE", id, map[string]any{"order_item": item.OrderItemUUID, "qty": item.ReceivedQty})
	s.invalidate(ctx, item.CorporationUUID)
	return item, nil
}

// CreateReturnItem persists a return note item and then runs the order
// completion check. The check never blocks or rolls back the insert: any
// failure inside it is logged and the saved note is returned as success.
func (s *Service) CreateReturnItem(ctx context.Context, item ReturnNoteItem) (ReturnNoteItem, error) {
	if strings.TrimSpace(item.CorporationUUID) == "" || strings.TrimSpace(item.ProjectUUID) == "" {
		return ReturnNoteItem{}, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	if item.OrderItemUUID == "" {
		return ReturnNoteItem{}, fmt.Errorf("%w: order_item_uuid required", ErrValidation)
	}
	if item.ReturnedQty <= 0 {
		return ReturnNoteItem{}, fmt.Errorf("%w: returned_quantity must be positive", ErrValidation)
	}
	item.IsActive = true
	id, err := s.repo.CreateReturnItem(ctx, item)
	if err != nil {
		return ReturnNoteItem{}, err
	}
	item.UUID = id
	s.recordAudit(ctx, "RETURN_CREATE", id, map[string]any{"order_item": item.OrderItemUUID, "qty": item.ReturnedQty})
	s.invalidate(ctx, item.CorporationUUID)

	if item.OrderUUID != "" && (item.OrderKind == procurement.KindPurchaseOrder || item.OrderKind == procurement.KindChangeOrder) {
		if err := s.checkCompletion(ctx, item.OrderKind, item.OrderUUID); err != nil {
			s.logger.Error("[StockReturnNotes] completion check failed",
				slog.String("order_uuid", item.OrderUUID),
				slog.String("order_kind", string(item.OrderKind)),
				slog.Any("error", err))
		}
	}
	return item, nil
}

// RecheckOrder re-runs the completion check for one order. Used by the
// background sweep to catch orders whose inline check failed.
func (s *Service) RecheckOrder(ctx context.Context, kind procurement.OrderKind, orderUUID string) error {
	return s.checkCompletion(ctx, kind, orderUUID)
}

// checkCompletion flips the order to Completed when every line item's
// shortfall (ordered minus received minus returned) is zero or below.
func (s *Service) checkCompletion(ctx context.Context, kind procurement.OrderKind, orderUUID string) error {
	items, err := s.orders.OrderItems(ctx, kind, orderUUID)
	if err != nil {
		return fmt.Errorf("fetch order items: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	receipts, err := s.repo.ListReceiptItemsByOrder(ctx, kind, orderUUID)
	if err != nil {
		return fmt.Errorf("fetch receipt items: %w", err)
	}
	returns, err := s.repo.ListReturnItemsByOrder(ctx, kind, orderUUID)
	if err != nil {
		return fmt.Errorf("fetch return items: %w", err)
	}

	received := make(map[string]float64)
	for _, row := range receipts {
		if !row.IsActive {
			continue
		}
		received[noteKey(row.OrderItemUUID)] += row.ReceivedQty
	}
	returned := make(map[string]float64)
	for _, row := range returns {
		if !row.IsActive {
			continue
		}
		returned[noteKey(row.OrderItemUUID)] += row.ReturnedQty
	}

	for _, item := range items {
		key := noteKey(item.UUID)
		shortfall := item.OrderedQty - received[key] - returned[key]
		if shortfall > 0 {
			return nil
		}
	}
	if err := s.orders.MarkCompleted(ctx, kind, orderUUID); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

// SoftDeleteReceiptItem flags a receipt note item inactive.
func (s *Service) SoftDeleteReceiptItem(ctx context.Context, corporationUUID, uuid string) error {
	if err := s.repo.SoftDeleteReceiptItem(ctx, uuid); err != nil {
		return err
	}
	s.recordAudit(ctx, "RECEIPT_DELETE", uuid, nil)
	s.invalidate(ctx, corporationUUID)
	return nil
}

// SoftDeleteReturnItem flags a return note item inactive.
func (s *Service) SoftDeleteReturnItem(ctx context.Context, corporationUUID, uuid string) error {
	if err := s.repo.SoftDeleteReturnItem(ctx, uuid); err != nil {
		return err
	}
	s.recordAudit(ctx, "RETURN_DELETE", uuid, nil)
	s.invalidate(ctx, corporationUUID)
	return nil
}

func noteKey(uuid string) string {
	return strings.ToLower(strings.TrimSpace(uuid))
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "stocknotes", EntityID: entityID, Meta: meta})
}

func (s *Service) invalidate(ctx context.Context, corporationUUID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, corporationUUID)
}

package procurement

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetPO(ctx context.Context, uuid string) (PurchaseOrder, error)
	GetCO(ctx context.Context, uuid string) (ChangeOrder, error)
	ListPOsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]PurchaseOrder, error)
	ListCOsByProject(ctx context.Context, corporationUUID, projectUUID string) ([]ChangeOrder, error)
	GetOrderItems(ctx context.Context, kind OrderKind, orderUUID string) ([]OrderItem, error)
	ListInvoicesByPO(ctx context.Context, poUUID string) ([]Invoice, error)
}

// AuditPort records audit entries for order mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// InvalidatorPort invalidates cached report data for a corporation.
type InvalidatorPort interface {
	Invalidate(ctx context.Context, corporationUUID string) error
}

// Service orchestrates purchase and change order flows.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache InvalidatorPort
}

// NewService constructs the procurement service.
func NewService(repo RepositoryPort, audit AuditPort, cache InvalidatorPort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache}
}

// OrderItemInput describes one line of a new order.
type OrderItemInput struct {
	ItemUUID   string
	OrderedQty float64
	UnitPrice  float64
}

// CreatePOInput describes purchase order creation payload.
type CreatePOInput struct {
	CorporationUUID string
	ProjectUUID     string
	VendorUUID      string
	Number          string
	POType          string
	Breakdown       FinancialBreakdown
	Items           []OrderItemInput
}

// CreatePO persists a purchase order with its line items in Draft status.
func (s *Service) CreatePO(ctx context.Context, input CreatePOInput) (PurchaseOrder, error) {
	if strings.TrimSpace(input.CorporationUUID) == "" || strings.TrimSpace(input.ProjectUUID) == "" {
		return PurchaseOrder{}, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	if len(input.Items) == 0 {
		return PurchaseOrder{}, fmt.Errorf("%w: at least one line item required", ErrValidation)
	}
	po := PurchaseOrder{
		CorporationUUID: input.CorporationUUID,
		ProjectUUID:     input.ProjectUUID,
		VendorUUID:      input.VendorUUID,
		Number:          input.Number,
		Status:          StatusDraft,
		POType:          input.POType,
		Breakdown:       input.Breakdown,
		IsActive:        true,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreatePO(ctx, po)
		if err != nil {
			return err
		}
		po.UUID = id
		for _, line := range input.Items {
			if line.ItemUUID == "" || line.OrderedQty <= 0 {
				return fmt.Errorf("%w: item_uuid and positive quantity required", ErrValidation)
			}
			item := OrderItem{
				OrderUUID:  id,
				OrderKind:  KindPurchaseOrder,
				ItemUUID:   line.ItemUUID,
				OrderedQty: line.OrderedQty,
				UnitPrice:  line.UnitPrice,
				IsActive:   true,
			}
			if err := tx.InsertOrderItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", po.UUID, map[string]any{"number": po.Number})
	s.invalidate(ctx, po.CorporationUUID)
	return po, nil
}

// CreateCOInput describes change order creation payload.
type CreateCOInput struct {
	CorporationUUID   string
	ProjectUUID       string
	VendorUUID        string
	PurchaseOrderUUID string
	Number            string
	Breakdown         FinancialBreakdown
	Items             []OrderItemInput
}

// CreateCO persists a change order amending an existing purchase order.
func (s *Service) CreateCO(ctx context.Context, input CreateCOInput) (ChangeOrder, error) {
	if strings.TrimSpace(input.CorporationUUID) == "" || strings.TrimSpace(input.ProjectUUID) == "" {
		return ChangeOrder{}, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	if strings.TrimSpace(input.PurchaseOrderUUID) != "" {
		if _, err := s.repo.GetPO(ctx, input.PurchaseOrderUUID); err != nil {
			return ChangeOrder{}, err
		}
	}
	if len(input.Items) == 0 {
		return ChangeOrder{}, fmt.Errorf("%w: at least one line item required", ErrValidation)
	}
	co := ChangeOrder{
		CorporationUUID:   input.CorporationUUID,
		ProjectUUID:       input.ProjectUUID,
		VendorUUID:        input.VendorUUID,
		PurchaseOrderUUID: input.PurchaseOrderUUID,
		Number:            input.Number,
		Status:            StatusDraft,
		Breakdown:         input.Breakdown,
		IsActive:          true,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateCO(ctx, co)
		if err != nil {
			return err
		}
		co.UUID = id
		for _, line := range input.Items {
			if line.ItemUUID == "" || line.OrderedQty <= 0 {
				return fmt.Errorf("%w: item_uuid and positive quantity required", ErrValidation)
			}
			item := OrderItem{
				OrderUUID:  id,
				OrderKind:  KindChangeOrder,
				ItemUUID:   line.ItemUUID,
				OrderedQty: line.OrderedQty,
				UnitPrice:  line.UnitPrice,
				IsActive:   true,
			}
			if err := tx.InsertOrderItem(ctx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ChangeOrder{}, err
	}
	s.recordAudit(ctx, "CO_CREATE", co.UUID, map[string]any{"number": co.Number, "amends": co.PurchaseOrderUUID})
	s.invalidate(ctx, co.CorporationUUID)
	return co, nil
}

// ApprovePO transitions a draft purchase order to Approved.
func (s *Service) ApprovePO(ctx context.Context, poUUID string) error {
	po, err := s.repo.GetPO(ctx, poUUID)
	if err != nil {
		return err
	}
	if po.Status != StatusDraft {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, KindPurchaseOrder, poUUID, StatusApproved)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_APPROVE", poUUID, map[string]any{"number": po.Number})
	s.invalidate(ctx, po.CorporationUUID)
	return nil
}

// ApproveCO transitions a draft change order to Approved.
func (s *Service) ApproveCO(ctx context.Context, coUUID string) error {
	co, err := s.repo.GetCO(ctx, coUUID)
	if err != nil {
		return err
	}
	if co.Status != StatusDraft {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, KindChangeOrder, coUUID, StatusApproved)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "CO_APPROVE", coUUID, map[string]any{"number": co.Number})
	s.invalidate(ctx, co.CorporationUUID)
	return nil
}

// UpdatePOStatus sets an explicit status on a purchase order.
func (s *Service) UpdatePOStatus(ctx context.Context, poUUID string, status OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	po, err := s.repo.GetPO(ctx, poUUID)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, KindPurchaseOrder, poUUID, status)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PO_STATUS", poUUID, map[string]any{"from": string(po.Status), "to": string(status)})
	s.invalidate(ctx, po.CorporationUUID)
	return nil
}

// OrderItems returns the active line items of a purchase or change order.
func (s *Service) OrderItems(ctx context.Context, kind OrderKind, orderUUID string) ([]OrderItem, error) {
	return s.repo.GetOrderItems(ctx, kind, orderUUID)
}

// MarkCompleted sets an order's status to Completed. Used by the return-note
// completion check once every line item's shortfall reaches zero.
func (s *Service) MarkCompleted(ctx context.Context, kind OrderKind, orderUUID string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateOrderStatus(ctx, kind, orderUUID, StatusCompleted)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "ORDER_COMPLETE", orderUUID, map[string]any{"kind": string(kind)})
	return nil
}

// GetPO fetches one purchase order with its line items.
func (s *Service) GetPO(ctx context.Context, poUUID string) (PurchaseOrder, []OrderItem, error) {
	po, err := s.repo.GetPO(ctx, poUUID)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	items, err := s.repo.GetOrderItems(ctx, KindPurchaseOrder, poUUID)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	return po, items, nil
}

// ListPOs lists a project's purchase orders.
func (s *Service) ListPOs(ctx context.Context, corporationUUID, projectUUID string) ([]PurchaseOrder, error) {
	if strings.TrimSpace(corporationUUID) == "" || strings.TrimSpace(projectUUID) == "" {
		return nil, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	return s.repo.ListPOsByProject(ctx, corporationUUID, projectUUID)
}

// ListCOs lists a project's change orders.
func (s *Service) ListCOs(ctx context.Context, corporationUUID, projectUUID string) ([]ChangeOrder, error) {
	if strings.TrimSpace(corporationUUID) == "" || strings.TrimSpace(projectUUID) == "" {
		return nil, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	return s.repo.ListCOsByProject(ctx, corporationUUID, projectUUID)
}

// CreateInvoiceInput describes invoice creation payload.
type CreateInvoiceInput struct {
	CorporationUUID       string
	PurchaseOrderUUID     string
	Number                string
	Date                  string
	Amount                decimal.Decimal
	AgainstAdvancePayment bool
	AdjustedInvoiceUUID   string
}

// CreateInvoice records a vendor invoice against a purchase order.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (Invoice, error) {
	if strings.TrimSpace(input.PurchaseOrderUUID) == "" {
		return Invoice{}, fmt.Errorf("%w: purchase_order_uuid required", ErrValidation)
	}
	if input.Amount.IsNegative() {
		return Invoice{}, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	po, err := s.repo.GetPO(ctx, input.PurchaseOrderUUID)
	if err != nil {
		return Invoice{}, err
	}
	inv := Invoice{
		CorporationUUID:       po.CorporationUUID,
		PurchaseOrderUUID:     po.UUID,
		Number:                input.Number,
		Date:                  input.Date,
		Amount:                input.Amount,
		AgainstAdvancePayment: input.AgainstAdvancePayment,
		AdjustedInvoiceUUID:   input.AdjustedInvoiceUUID,
		IsActive:              true,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateInvoice(ctx, inv)
		if err != nil {
			return err
		}
		inv.UUID = id
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.recordAudit(ctx, "INVOICE_CREATE", inv.UUID, map[string]any{"number": inv.Number, "amount": inv.Amount.String()})
	s.invalidate(ctx, inv.CorporationUUID)
	return inv, nil
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "procurement", EntityID: entityID, Meta: meta})
}

func (s *Service) invalidate(ctx context.Context, corporationUUID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, corporationUUID)
}

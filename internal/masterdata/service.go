package masterdata

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListVendors(ctx context.Context, corporationUUID string) ([]Vendor, error)
	CreateVendor(ctx context.Context, v Vendor) (Vendor, error)
	GetVendor(ctx context.Context, uuid string) (Vendor, error)
	ListCostCodes(ctx context.Context, corporationUUID string) ([]CostCode, error)
	CreateCostCode(ctx context.Context, c CostCode) (CostCode, error)
	ListCatalogItems(ctx context.Context, corporationUUID, projectUUID string) ([]CatalogItem, error)
	CreateCatalogItem(ctx context.Context, it CatalogItem) (CatalogItem, error)
	GetCatalogItem(ctx context.Context, uuid string) (CatalogItem, error)
}

// Service coordinates master data operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListVendors lists active vendors per corporation.
func (s *Service) ListVendors(ctx context.Context, corporationUUID string) ([]Vendor, error) {
	if strings.TrimSpace(corporationUUID) == "" {
		return nil, fmt.Errorf("%w: corporation_uuid required", ErrValidation)
	}
	return s.repo.ListVendors(ctx, corporationUUID)
}

// CreateVendor validates and stores a vendor.
func (s *Service) CreateVendor(ctx context.Context, v Vendor) (Vendor, error) {
	if strings.TrimSpace(v.CorporationUUID) == "" || strings.TrimSpace(v.Name) == "" {
		return Vendor{}, fmt.Errorf("%w: corporation_uuid and name required", ErrValidation)
	}
	return s.repo.CreateVendor(ctx, v)
}

// GetVendor fetches a single vendor.
func (s *Service) GetVendor(ctx context.Context, uuid string) (Vendor, error) {
	if strings.TrimSpace(uuid) == "" {
		return Vendor{}, fmt.Errorf("%w: uuid required", ErrValidation)
	}
	return s.repo.GetVendor(ctx, uuid)
}

// ListCostCodes lists active cost code configurations per corporation.
func (s *Service) ListCostCodes(ctx context.Context, corporationUUID string) ([]CostCode, error) {
	if strings.TrimSpace(corporationUUID) == "" {
		return nil, fmt.Errorf("%w: corporation_uuid required", ErrValidation)
	}
	return s.repo.ListCostCodes(ctx, corporationUUID)
}

// CreateCostCode validates and stores a cost code configuration.
func (s *Service) CreateCostCode(ctx context.Context, c CostCode) (CostCode, error) {
	if strings.TrimSpace(c.CorporationUUID) == "" || strings.TrimSpace(c.Number) == "" {
		return CostCode{}, fmt.Errorf("%w: corporation_uuid and cost_code_number required", ErrValidation)
	}
	return s.repo.CreateCostCode(ctx, c)
}

// ListCatalogItems lists active catalog items per project.
func (s *Service) ListCatalogItems(ctx context.Context, corporationUUID, projectUUID string) ([]CatalogItem, error) {
	if strings.TrimSpace(corporationUUID) == "" || strings.TrimSpace(projectUUID) == "" {
		return nil, fmt.Errorf("%w: corporation_uuid and project_uuid required", ErrValidation)
	}
	return s.repo.ListCatalogItems(ctx, corporationUUID, projectUUID)
}

// CreateCatalogItem validates and stores a catalog item.
func (s *Service) CreateCatalogItem(ctx context.Context, it CatalogItem) (CatalogItem, error) {
	if strings.TrimSpace(it.CorporationUUID) == "" || strings.TrimSpace(it.ProjectUUID) == "" || strings.TrimSpace(it.Name) == "" {
		return CatalogItem{}, fmt.Errorf("%w: corporation_uuid, project_uuid and item_name required", ErrValidation)
	}
	return s.repo.CreateCatalogItem(ctx, it)
}

// GetCatalogItem fetches a catalog item.
func (s *Service) GetCatalogItem(ctx context.Context, uuid string) (CatalogItem, error) {
	if strings.TrimSpace(uuid) == "" {
		return CatalogItem{}, fmt.Errorf("%w: uuid required", ErrValidation)
	}
	return s.repo.GetCatalogItem(ctx, uuid)
}

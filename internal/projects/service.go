package projects

import (
	"context"
	"fmt"
	"strings"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, uuid string) (Project, error)
	List(ctx context.Context, corporationUUID string, limit, offset int) ([]Project, int, error)
}

// AuditPort records audit entries for project mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// InvalidatorPort invalidates cached report data for a corporation.
type InvalidatorPort interface {
	Invalidate(ctx context.Context, corporationUUID string) error
}

// Service orchestrates project lifecycle operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	cache InvalidatorPort
}

// NewService constructs the project service.
func NewService(repo RepositoryPort, audit AuditPort, cache InvalidatorPort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache}
}

// CreateInput describes project creation payload.
type CreateInput struct {
	CorporationUUID string
	Name            string
	Status          Status
	Addresses       []Address
}

// Create persists a project and its addresses.
func (s *Service) Create(ctx context.Context, input CreateInput) (Project, error) {
	if strings.TrimSpace(input.CorporationUUID) == "" || strings.TrimSpace(input.Name) == "" {
		return Project{}, fmt.Errorf("%w: corporation_uuid and name required", ErrValidation)
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if !input.Status.Valid() {
		return Project{}, ErrInvalidStatus
	}
	p := Project{CorporationUUID: input.CorporationUUID, Name: input.Name, Status: input.Status, IsActive: true}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateProject(ctx, p)
		if err != nil {
			return err
		}
		p.UUID = id
		for _, a := range input.Addresses {
			a.ProjectUUID = id
			if err := tx.InsertAddress(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Project{}, err
	}
	s.recordAudit(ctx, "PROJECT_CREATE", p.UUID, map[string]any{"name": p.Name})
	s.invalidate(ctx, p.CorporationUUID)
	return p, nil
}

// UpdateInput describes project update payload.
type UpdateInput struct {
	UUID   string
	Name   string
	Status Status
}

// Update changes name and status of an existing project.
func (s *Service) Update(ctx context.Context, input UpdateInput) (Project, error) {
	current, err := s.repo.Get(ctx, input.UUID)
	if err != nil {
		return Project{}, err
	}
	if input.Name != "" {
		current.Name = input.Name
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return Project{}, ErrInvalidStatus
		}
		current.Status = input.Status
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateProject(ctx, current)
	})
	if err != nil {
		return Project{}, err
	}
	s.recordAudit(ctx, "PROJECT_UPDATE", current.UUID, map[string]any{"status": string(current.Status)})
	s.invalidate(ctx, current.CorporationUUID)
	return current, nil
}

// Get fetches one project with addresses.
func (s *Service) Get(ctx context.Context, uuid string) (Project, error) {
	if strings.TrimSpace(uuid) == "" {
		return Project{}, fmt.Errorf("%w: uuid required", ErrValidation)
	}
	return s.repo.Get(ctx, uuid)
}

// List returns active projects for a corporation.
func (s *Service) List(ctx context.Context, corporationUUID string, limit, offset int) ([]Project, int, error) {
	if strings.TrimSpace(corporationUUID) == "" {
		return nil, 0, fmt.Errorf("%w: corporation_uuid required", ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, corporationUUID, limit, offset)
}

// SoftDelete flags a project inactive, leaving its documents in place.
func (s *Service) SoftDelete(ctx context.Context, uuid string) error {
	p, err := s.repo.Get(ctx, uuid)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SoftDeleteProject(ctx, uuid)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PROJECT_SOFT_DELETE", uuid, nil)
	s.invalidate(ctx, p.CorporationUUID)
	return nil
}

// HardDelete removes a project and its addresses permanently. Projects are
// the only entity with a physical delete path.
func (s *Service) HardDelete(ctx context.Context, uuid string) error {
	p, err := s.repo.Get(ctx, uuid)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteAddresses(ctx, uuid); err != nil {
			return err
		}
		return tx.HardDeleteProject(ctx, uuid)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, "PROJECT_HARD_DELETE", uuid, map[string]any{"name": p.Name})
	s.invalidate(ctx, p.CorporationUUID)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "projects", EntityID: entityID, Meta: meta})
}

func (s *Service) invalidate(ctx context.Context, corporationUUID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, corporationUUID)
}

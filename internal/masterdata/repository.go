package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for lookup entities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListVendors returns active vendors for a corporation.
func (r *Repository) ListVendors(ctx context.Context, corporationUUID string) ([]Vendor, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, name, is_active
FROM vendors WHERE corporation_uuid = $1 AND is_active = TRUE ORDER BY name`, corporationUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.UUID, &v.CorporationUUID, &v.Name, &v.IsActive); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// CreateVendor inserts a vendor and returns the stored row.
func (r *Repository) CreateVendor(ctx context.Context, v Vendor) (Vendor, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO vendors (uuid, corporation_uuid, name, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, TRUE)
RETURNING uuid, corporation_uuid, name, is_active`, v.UUID, v.CorporationUUID, v.Name).
		Scan(&v.UUID, &v.CorporationUUID, &v.Name, &v.IsActive)
	return v, err
}

// GetVendor fetches one vendor by UUID.
func (r *Repository) GetVendor(ctx context.Context, uuid string) (Vendor, error) {
	var v Vendor
	err := r.pool.QueryRow(ctx, `SELECT uuid, corporation_uuid, name, is_active FROM vendors WHERE uuid = $1`, uuid).
		Scan(&v.UUID, &v.CorporationUUID, &v.Name, &v.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vendor{}, ErrNotFound
	}
	return v, err
}

// ListCostCodes returns active cost code configurations for a corporation.
func (r *Repository) ListCostCodes(ctx context.Context, corporationUUID string) ([]CostCode, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, cost_code_number, cost_code_name, is_active
FROM cost_code_configurations WHERE corporation_uuid = $1 AND is_active = TRUE ORDER BY cost_code_number`, corporationUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []CostCode
	for rows.Next() {
		var c CostCode
		if err := rows.Scan(&c.UUID, &c.CorporationUUID, &c.Number, &c.Name, &c.IsActive); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// CreateCostCode inserts a cost code configuration.
func (r *Repository) CreateCostCode(ctx context.Context, c CostCode) (CostCode, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO cost_code_configurations (uuid, corporation_uuid, cost_code_number, cost_code_name, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, TRUE)
RETURNING uuid, corporation_uuid, cost_code_number, cost_code_name, is_active`, c.UUID, c.CorporationUUID, c.Number, c.Name).
		Scan(&c.UUID, &c.CorporationUUID, &c.Number, &c.Name, &c.IsActive)
	return c, err
}

// ListCatalogItems returns active catalog items for a project.
func (r *Repository) ListCatalogItems(ctx context.Context, corporationUUID, projectUUID string) ([]CatalogItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, project_uuid, item_name,
COALESCE(item_sequence, ''), COALESCE(manufacturer_model_number, ''), COALESCE(unit, ''), COALESCE(cost_code_uuid, ''), is_active
FROM project_items WHERE corporation_uuid = $1 AND project_uuid = $2 AND is_active = TRUE ORDER BY item_sequence`, corporationUUID, projectUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var it CatalogItem
		if err := rows.Scan(&it.UUID, &it.CorporationUUID, &it.ProjectUUID, &it.Name,
			&it.SequenceCode, &it.ModelNumber, &it.Unit, &it.CostCodeUUID, &it.IsActive); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateCatalogItem inserts a catalog item.
func (r *Repository) CreateCatalogItem(ctx context.Context, it CatalogItem) (CatalogItem, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO project_items (uuid, corporation_uuid, project_uuid, item_name, item_sequence, manufacturer_model_number, unit, cost_code_uuid, is_active)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, NULLIF($8,''), TRUE)
RETURNING uuid`, it.UUID, it.CorporationUUID, it.ProjectUUID, it.Name, it.SequenceCode, it.ModelNumber, it.Unit, it.CostCodeUUID).
		Scan(&it.UUID)
	if err != nil {
		return CatalogItem{}, err
	}
	it.IsActive = true
	return it, nil
}

// GetCatalogItem fetches one catalog item by UUID.
func (r *Repository) GetCatalogItem(ctx context.Context, uuid string) (CatalogItem, error) {
	var it CatalogItem
	err := r.pool.QueryRow(ctx, `SELECT uuid, corporation_uuid, project_uuid, item_name,
COALESCE(item_sequence, ''), COALESCE(manufacturer_model_number, ''), COALESCE(unit, ''), COALESCE(cost_code_uuid, ''), is_active
FROM project_items WHERE uuid = $1`, uuid).
		Scan(&it.UUID, &it.CorporationUUID, &it.ProjectUUID, &it.Name,
			&it.SequenceCode, &it.ModelNumber, &it.Unit, &it.CostCodeUUID, &it.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return CatalogItem{}, ErrNotFound
	}
	return it, err
}

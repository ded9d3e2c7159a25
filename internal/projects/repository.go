package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
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
	CreateProject(ctx context.Context, p Project) (string, error)
	InsertAddress(ctx context.Context, a Address) error
	UpdateProject(ctx context.Context, p Project) error
	SoftDeleteProject(ctx context.Context, uuid string) error
	DeleteAddresses(ctx context.Context, projectUUID string) error
	HardDeleteProject(ctx context.Context, uuid string) error
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

// Get returns one project with addresses.
func (r *Repository) Get(ctx context.Context, uuid string) (Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `SELECT uuid, corporation_uuid, name, status, is_active, created_at, updated_at
FROM projects WHERE uuid = $1`, uuid).
		Scan(&p.UUID, &p.CorporationUUID, &p.Name, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT uuid, project_uuid, kind, line1, COALESCE(line2,''), city, state, postal_code
FROM project_addresses WHERE project_uuid = $1 ORDER BY kind`, uuid)
	if err != nil {
		return Project{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.UUID, &a.ProjectUUID, &a.Kind, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode); err != nil {
			return Project{}, err
		}
		p.Addresses = append(p.Addresses, a)
	}
	return p, rows.Err()
}

// List returns active projects for a corporation with total count.
func (r *Repository) List(ctx context.Context, corporationUUID string, limit, offset int) ([]Project, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects WHERE corporation_uuid = $1 AND is_active = TRUE`, corporationUUID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT uuid, corporation_uuid, name, status, is_active, created_at, updated_at
FROM projects WHERE corporation_uuid = $1 AND is_active = TRUE
ORDER BY created_at DESC LIMIT $2 OFFSET $3`, corporationUUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.UUID, &p.CorporationUUID, &p.Name, &p.Status, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (tx *txRepo) CreateProject(ctx context.Context, p Project) (string, error) {
	var id string
	err := tx.tx.QueryRow(ctx, `INSERT INTO projects (uuid, corporation_uuid, name, status, is_active, created_at, updated_at)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, TRUE, NOW(), NOW())
RETURNING uuid`, p.UUID, p.CorporationUUID, p.Name, string(p.Status)).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertAddress(ctx context.Context, a Address) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO project_addresses (uuid, project_uuid, kind, line1, line2, city, state, postal_code)
VALUES (COALESCE(NULLIF($1,''), gen_random_uuid()::text), $2, $3, $4, $5, $6, $7, $8)`,
		a.UUID, a.ProjectUUID, a.Kind, a.Line1, a.Line2, a.City, a.State, a.PostalCode)
	return err
}

func (tx *txRepo) UpdateProject(ctx context.Context, p Project) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE projects SET name = $2, status = $3, updated_at = NOW() WHERE uuid = $1`,
		p.UUID, p.Name, string(p.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) SoftDeleteProject(ctx context.Context, uuid string) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE projects SET is_active = FALSE, updated_at = NOW() WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) DeleteAddresses(ctx context.Context, projectUUID string) error {
	_, err := tx.tx.Exec(ctx, `DELETE FROM project_addresses WHERE project_uuid = $1`, projectUUID)
	return err
}

func (tx *txRepo) HardDeleteProject(ctx context.Context, uuid string) error {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM projects WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

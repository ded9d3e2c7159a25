package projects

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brickline-erp/brickline-erp/internal/shared"
)

type memRepo struct {
	projects  map[string]Project
	addresses map[string][]Address
	seq       int
}

func newMemRepo() *memRepo {
	return &memRepo{projects: map[string]Project{}, addresses: map[string][]Address{}}
}

func (m *memRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("proj-%d", m.seq)
}

func (m *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memRepo) CreateProject(_ context.Context, p Project) (string, error) {
	p.UUID = m.nextID()
	m.projects[p.UUID] = p
	return p.UUID, nil
}

func (m *memRepo) InsertAddress(_ context.Context, a Address) error {
	m.addresses[a.ProjectUUID] = append(m.addresses[a.ProjectUUID], a)
	return nil
}

func (m *memRepo) UpdateProject(_ context.Context, p Project) error {
	if _, ok := m.projects[p.UUID]; !ok {
		return ErrNotFound
	}
	m.projects[p.UUID] = p
	return nil
}

func (m *memRepo) SoftDeleteProject(_ context.Context, uuid string) error {
	p, ok := m.projects[uuid]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	m.projects[uuid] = p
	return nil
}

func (m *memRepo) DeleteAddresses(_ context.Context, projectUUID string) error {
	delete(m.addresses, projectUUID)
	return nil
}

func (m *memRepo) HardDeleteProject(_ context.Context, uuid string) error {
	if _, ok := m.projects[uuid]; !ok {
		return ErrNotFound
	}
	delete(m.projects, uuid)
	return nil
}

func (m *memRepo) Get(_ context.Context, uuid string) (Project, error) {
	p, ok := m.projects[uuid]
	if !ok {
		return Project{}, ErrNotFound
	}
	p.Addresses = m.addresses[uuid]
	return p, nil
}

func (m *memRepo) List(_ context.Context, corp string, limit, offset int) ([]Project, int, error) {
	var out []Project
	for _, p := range m.projects {
		if p.CorporationUUID == corp && p.IsActive {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

type memAudit struct{ entries []shared.AuditLog }

func (a *memAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.entries = append(a.entries, log)
	return nil
}

type memInvalidator struct{ calls []string }

func (i *memInvalidator) Invalidate(_ context.Context, corp string) error {
	i.calls = append(i.calls, corp)
	return nil
}

const testCorp = "8a0c7f4e-8e1a-4f8e-bd5c-0a7d6e5f4c3b"

func TestCreateProjectWithAddresses(t *testing.T) {
	repo := newMemRepo()
	audit := &memAudit{}
	inv := &memInvalidator{}
	svc := NewService(repo, audit, inv)

	p, err := svc.Create(context.Background(), CreateInput{
		CorporationUUID: testCorp,
		Name:            "Riverside Tower",
		Addresses: []Address{
			{Kind: "site", Line1: "1 Embankment Rd", City: "Leeds"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, p.Status)
	require.Len(t, repo.addresses[p.UUID], 1)
	require.Equal(t, []string{testCorp}, inv.calls)
	require.Len(t, audit.entries, 1)
}

func TestCreateProjectRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		CorporationUUID: testCorp,
		Name:            "Bad Status",
		Status:          Status("Paused"),
	})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateProjectStatus(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)

	p, err := svc.Create(context.Background(), CreateInput{CorporationUUID: testCorp, Name: "Depot"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateInput{UUID: p.UUID, Status: StatusInProgress})
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, updated.Status)

	_, err = svc.Update(context.Background(), UpdateInput{UUID: p.UUID, Status: Status("Nope")})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSoftDeleteExcludesFromList(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)

	p, err := svc.Create(context.Background(), CreateInput{CorporationUUID: testCorp, Name: "Old Yard"})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), p.UUID))
	list, total, err := svc.List(context.Background(), testCorp, 20, 0)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Zero(t, total)

	// Soft-deleted projects are still fetchable directly.
	got, err := svc.Get(context.Background(), p.UUID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestHardDeleteRemovesProjectAndAddresses(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)

	p, err := svc.Create(context.Background(), CreateInput{
		CorporationUUID: testCorp,
		Name:            "Teardown",
		Addresses:       []Address{{Kind: "site", Line1: "2 Quarry Ln"}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.HardDelete(context.Background(), p.UUID))
	_, err = svc.Get(context.Background(), p.UUID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, repo.addresses[p.UUID])
}

func TestListRequiresCorporation(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)

	_, _, err := svc.List(context.Background(), "", 20, 0)
	require.ErrorIs(t, err, ErrValidation)
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/rowstore"
)

func TestTenantCreateRejectsDuplicateID(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowTenantRepository(store, nil)
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.Tenant{ID: "001", Name: "EE Central"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := repo.Create(ctx, &domain.Tenant{ID: "001", Name: "Outra Escola"})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestTenantGetAndDelete(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowTenantRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, &domain.Tenant{ID: "001", Name: "EE Central", RecoveryDigest: "digest"})

	got, err := repo.GetByID(ctx, "001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "EE Central" || got.RecoveryDigest != "digest" {
		t.Fatalf("unexpected tenant: %+v", got)
	}

	if err := repo.Delete(ctx, "001"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, "001"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAccountLookupIsTenantScoped(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowAccountRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, &domain.Account{Login: "root", PasswordDigest: "d1", Name: "Ana", Role: "Diretor", TenantID: "001"})
	repo.Create(ctx, &domain.Account{Login: "root", PasswordDigest: "d2", Name: "Bia", Role: "Diretor", TenantID: "002"})

	got, err := repo.Get(ctx, "002", "root")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.PasswordDigest != "d2" || got.Name != "Bia" {
		t.Fatalf("expected the second tenant's account, got %+v", got)
	}

	if _, err := repo.Get(ctx, "003", "root"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown tenant, got %v", err)
	}
}

func TestUpdatePasswordTouchesOnlyOwnTenant(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowAccountRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, &domain.Account{Login: "root", PasswordDigest: "d1", TenantID: "001"})
	repo.Create(ctx, &domain.Account{Login: "root", PasswordDigest: "d2", TenantID: "002"})

	if err := repo.UpdatePassword(ctx, "002", "root", "novo"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	a1, _ := repo.Get(ctx, "001", "root")
	a2, _ := repo.Get(ctx, "002", "root")
	if a1.PasswordDigest != "d1" {
		t.Fatalf("first tenant's digest changed to %q", a1.PasswordDigest)
	}
	if a2.PasswordDigest != "novo" {
		t.Fatalf("second tenant's digest not updated, got %q", a2.PasswordDigest)
	}
}

func TestAssetLifecycle(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowAssetRepository(store, nil)
	ctx := context.Background()

	asset := &domain.Asset{
		Type: "Chromebook", Model: "Samsung XE501", Serial: "SN-1",
		Status: "Operacional", CreatedAt: "01/02/2026", Author: "Ana", TenantID: "001",
	}
	if err := repo.Create(ctx, asset); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Same serial under another tenant must not collide
	repo.Create(ctx, &domain.Asset{Type: "Notebook", Serial: "SN-1", Status: "Operacional", TenantID: "002"})

	got, err := repo.GetBySerial(ctx, "001", "SN-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Type != "Chromebook" {
		t.Fatalf("expected tenant 001's asset, got %+v", got)
	}

	updated := *got
	updated.Status = "Com Avaria"
	updated.Problem = "tela trincada"
	if err := repo.Replace(ctx, "001", "SN-1", &updated); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, _ = repo.GetBySerial(ctx, "001", "SN-1")
	if got.Status != "Com Avaria" || got.Problem != "tela trincada" {
		t.Fatalf("replace did not stick: %+v", got)
	}

	if err := repo.Delete(ctx, "001", "SN-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.GetBySerial(ctx, "001", "SN-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// The other tenant's record is untouched
	other, err := repo.GetBySerial(ctx, "002", "SN-1")
	if err != nil || other.Type != "Notebook" {
		t.Fatalf("other tenant's asset affected: %+v, %v", other, err)
	}
}

func TestListByTenantKeepsStorageOrder(t *testing.T) {
	store := rowstore.NewMemoryStore()
	repo := NewRowAssetRepository(store, nil)
	ctx := context.Background()

	repo.Create(ctx, &domain.Asset{Serial: "SN-1", TenantID: "001"})
	repo.Create(ctx, &domain.Asset{Serial: "SN-9", TenantID: "002"})
	repo.Create(ctx, &domain.Asset{Serial: "SN-2", TenantID: "001"})

	out, err := repo.ListByTenant(ctx, "001")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(out) != 2 || out[0].Serial != "SN-1" || out[1].Serial != "SN-2" {
		t.Fatalf("expected [SN-1 SN-2], got %+v", out)
	}
}

// racingStore lets a competing session's delete win just before the first
// keyed delete is applied, the worst interleaving two admin sessions can
// produce against the same table.
type racingStore struct {
	*rowstore.MemoryStore
	raced bool
}

func (s *racingStore) DeleteWhere(ctx context.Context, table string, match rowstore.Row) error {
	if !s.raced {
		s.raced = true
		s.MemoryStore.DeleteWhere(ctx, table, rowstore.Row{"cie": "001", "serial": "SN-1"})
	}
	return s.MemoryStore.DeleteWhere(ctx, table, match)
}

func TestDeleteSurvivesCompetingDelete(t *testing.T) {
	store := &racingStore{MemoryStore: rowstore.NewMemoryStore()}
	repo := NewRowAssetRepository(store, nil)
	ctx := context.Background()

	for _, sn := range []string{"SN-1", "SN-2", "SN-3"} {
		repo.Create(ctx, &domain.Asset{Serial: sn, TenantID: "001"})
	}

	// Another session removes SN-1 while this one deletes SN-2. The delete
	// is keyed by (tenant, serial), so the row shift cannot redirect it.
	if err := repo.Delete(ctx, "001", "SN-2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	out, _ := repo.ListByTenant(ctx, "001")
	if len(out) != 1 || out[0].Serial != "SN-3" {
		t.Fatalf("expected only SN-3 to remain, got %+v", out)
	}
}

// brokenStore fails every read with a connectivity error.
type brokenStore struct {
	rowstore.Store
}

func (brokenStore) ReadAll(ctx context.Context, table string) ([]rowstore.Row, error) {
	return nil, domain.ErrStoreUnavailable
}

func TestListFailsSoftWhenStoreUnavailable(t *testing.T) {
	repo := NewRowAssetRepository(brokenStore{}, nil)
	out, err := repo.ListByTenant(context.Background(), "001")
	if err != nil {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty list, got %+v", out)
	}
}

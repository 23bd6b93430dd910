package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/repository"
	"github.com/yourorg/inventario/internal/rowstore"
	"github.com/yourorg/inventario/internal/security"
	"github.com/yourorg/inventario/internal/security/audit"
	"github.com/yourorg/inventario/internal/security/credential"
)

var (
	adminIdentity   = domain.Identity{Login: "root", Name: "Maria", Role: "Diretor", TenantID: "001"}
	teacherIdentity = domain.Identity{Login: "ze", Name: "José", Role: "Professor", TenantID: "001"}
	otherTenant     = domain.Identity{Login: "ana", Name: "Ana", Role: "PROATI", TenantID: "002"}
)

func newAssetEnv(t *testing.T, events *Broadcaster) *AssetService {
	t.Helper()
	store := rowstore.NewMemoryStore()
	tenants := repository.NewRowTenantRepository(store, nil)
	assets := repository.NewRowAssetRepository(store, nil)
	auditLog := audit.NewLogger(nil)

	tenantSvc := NewTenantService(tenants, repository.NewRowAccountRepository(store, nil), credential.SHA256Hasher{}, auditLog, nil)
	if err := tenantSvc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	return NewAssetService(assets, tenants, security.NewAuthorizationService(nil), events, auditLog, nil)
}

func chromebook(serial string) AssetInput {
	return AssetInput{
		Type:        "Chromebook",
		Model:       "Samsung XE501",
		Serial:      serial,
		PropertyTag: "PAT-77",
		Invoice:     "NF-123",
		Status:      "Operacional",
	}
}

func TestCreateStampsRecord(t *testing.T) {
	svc := newAssetEnv(t, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }

	asset, err := svc.Create(context.Background(), adminIdentity, chromebook("SN-1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if asset.CreatedAt != "01/02/2026" {
		t.Fatalf("expected DD/MM/YYYY stamp, got %q", asset.CreatedAt)
	}
	if asset.Author != "Maria" || asset.TenantID != "001" {
		t.Fatalf("record not stamped with author and tenant: %+v", asset)
	}
}

func TestCreateRejectsDuplicateSerial(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminIdentity, chromebook("SN-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := svc.Create(ctx, adminIdentity, chromebook("SN-1"))
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// The same serial is fine under another tenant
	if _, err := svc.Create(ctx, otherTenant, chromebook("SN-1")); err != nil {
		t.Fatalf("cross-tenant create failed: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	noSerial := chromebook("")
	if _, err := svc.Create(ctx, adminIdentity, noSerial); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty serial, got %v", err)
	}

	badType := chromebook("SN-2")
	badType.Type = "Geladeira"
	if _, err := svc.Create(ctx, adminIdentity, badType); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}

	badStatus := chromebook("SN-3")
	badStatus.Status = "Quebrado"
	if _, err := svc.Create(ctx, adminIdentity, badStatus); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestReadOnlyRoleCannotMutate(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminIdentity, chromebook("SN-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Create(ctx, teacherIdentity, chromebook("SN-2")); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on create, got %v", err)
	}
	if _, err := svc.Update(ctx, teacherIdentity, "SN-1", chromebook("SN-1")); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on update, got %v", err)
	}
	if err := svc.Delete(ctx, teacherIdentity, "SN-1"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on delete, got %v", err)
	}

	// Reading is allowed
	assets, err := svc.List(ctx, teacherIdentity, "")
	if err != nil {
		t.Fatalf("read-only list failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(assets))
	}
}

func TestListIsTenantScopedAndFiltered(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	svc.Create(ctx, adminIdentity, chromebook("SN-1"))
	notebook := chromebook("SN-2")
	notebook.Type = "Notebook"
	notebook.Model = "Dell Latitude"
	svc.Create(ctx, adminIdentity, notebook)
	svc.Create(ctx, otherTenant, chromebook("SN-9"))

	all, err := svc.List(ctx, adminIdentity, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 assets for tenant 001, got %d", len(all))
	}

	// Case-insensitive contains over any field
	filtered, _ := svc.List(ctx, adminIdentity, "dell")
	if len(filtered) != 1 || filtered[0].Serial != "SN-2" {
		t.Fatalf("expected SN-2 for filter 'dell', got %+v", filtered)
	}
	none, _ := svc.List(ctx, adminIdentity, "impressora")
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestUpdatePreservesCreationStamps(t *testing.T) {
	svc := newAssetEnv(t, nil)
	svc.now = func() time.Time { return time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	created, err := svc.Create(ctx, adminIdentity, chromebook("SN-1"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }
	input := chromebook("SN-1")
	input.Status = "Com Avaria"
	input.Problem = "tela trincada"

	updated, err := svc.Update(ctx, domain.Identity{Login: "other", Name: "Outro", Role: "PROATI", TenantID: "001"}, "SN-1", input)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != "Com Avaria" || updated.Problem != "tela trincada" {
		t.Fatalf("update did not apply: %+v", updated)
	}
	if updated.CreatedAt != created.CreatedAt || updated.Author != "Maria" {
		t.Fatalf("creation stamps must survive updates: %+v", updated)
	}

	if _, err := svc.Update(ctx, adminIdentity, "SN-404", input); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown serial, got %v", err)
	}
}

func TestDeleteByTenantAndSerial(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	svc.Create(ctx, adminIdentity, chromebook("SN-1"))
	svc.Create(ctx, otherTenant, chromebook("SN-1"))

	if err := svc.Delete(ctx, adminIdentity, "SN-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.Delete(ctx, adminIdentity, "SN-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	// The other tenant's record with the same serial survives
	others, _ := svc.List(ctx, otherTenant, "")
	if len(others) != 1 {
		t.Fatalf("other tenant's asset was deleted")
	}
}

func TestCreateEncodesPhotoThumbnail(t *testing.T) {
	svc := newAssetEnv(t, nil)

	input := chromebook("SN-1")
	input.Photo = testPNG(t, 800, 600)

	asset, err := svc.Create(context.Background(), adminIdentity, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if asset.PhotoB64 == "" {
		t.Fatalf("expected an encoded thumbnail")
	}

	garbage := chromebook("SN-2")
	garbage.Photo = []byte("not an image")
	if _, err := svc.Create(context.Background(), adminIdentity, garbage); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for a non-image photo, got %v", err)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	events := NewBroadcaster()
	svc := newAssetEnv(t, events)
	ctx := context.Background()

	ch, cancel := events.Subscribe("001")
	defer cancel()

	svc.Create(ctx, adminIdentity, chromebook("SN-1"))
	input := chromebook("SN-1")
	input.Status = "Com Avaria"
	svc.Update(ctx, adminIdentity, "SN-1", input)
	svc.Delete(ctx, adminIdentity, "SN-1")

	want := []string{"created", "updated", "deleted"}
	for _, action := range want {
		select {
		case ev := <-ch:
			if ev.Action != action || ev.Serial != "SN-1" || ev.TenantID != "001" {
				t.Fatalf("expected %s for SN-1, got %+v", action, ev)
			}
		default:
			t.Fatalf("missing %s event", action)
		}
	}

	// Other tenants hear nothing
	other, cancelOther := events.Subscribe("002")
	defer cancelOther()
	svc.Create(ctx, adminIdentity, chromebook("SN-2"))
	select {
	case ev := <-other:
		t.Fatalf("tenant 002 received tenant 001's event: %+v", ev)
	default:
	}
}

func TestReportRendersPDF(t *testing.T) {
	svc := newAssetEnv(t, nil)
	ctx := context.Background()

	svc.Create(ctx, adminIdentity, chromebook("SN-1"))

	doc, err := svc.Report(ctx, adminIdentity, "")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", doc[:min(len(doc), 8)])
	}
}

// testPNG renders a solid-color PNG of the given size
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/yourorg/inventario/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
}

func TestRenderProducesPDF(t *testing.T) {
	r := &Renderer{Now: fixedNow}
	records := []*domain.Asset{
		{Type: "Chromebook", Model: "Samsung XE501", Serial: "SN-1", PropertyTag: "PAT-77", Invoice: "NF-123", Status: "Operacional"},
		{Type: "Impressora", Model: "HP LaserJet", Serial: "SN-2", Status: "Com Avaria", Problem: "atolando papel"},
	}

	doc, err := r.Render(records, "EE Central (001)", "Maria", "Diretor")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header")
	}
	if len(doc) < 500 {
		t.Fatalf("document suspiciously small: %d bytes", len(doc))
	}
}

func TestRenderEmptyInventory(t *testing.T) {
	r := &Renderer{Now: fixedNow}
	doc, err := r.Render(nil, "EE Central (001)", "Maria", "Diretor")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("output does not start with a PDF header")
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	r := &Renderer{Now: fixedNow}
	records := []*domain.Asset{{Type: "Tablet", Serial: "SN-1", Status: "Operacional"}}

	a, err := r.Render(records, "EE Central (001)", "Maria", "Diretor")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, err := r.Render(records, "EE Central (001)", "Maria", "Diretor")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("same inputs produced different documents")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Operacional", 20); got != "Operacional" {
		t.Fatalf("short value should pass through, got %q", got)
	}
	if got := truncate("Samsung Chromebook XE501C13", 20); got != "Samsung Chromebook X" {
		t.Fatalf("unexpected truncation %q", got)
	}
	// Rune-aware: accented characters are one budget unit each
	if got := truncate("Situação", 7); got != "Situaçã" {
		t.Fatalf("expected rune truncation, got %q", got)
	}
}

package llm

import (
	"errors"
	"testing"
)

func TestCheckImageMIME(t *testing.T) {
	if err := checkImageMIME("image/png"); err != nil {
		t.Fatalf("png: %v", err)
	}
	if err := checkImageMIME("image/jpeg"); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	if err := checkImageMIME("application/pdf"); !errors.Is(err, ErrUnsupportedMIMEType) {
		t.Fatalf("pdf: got %v, want ErrUnsupportedMIMEType", err)
	}
}

func TestParseLineItems(t *testing.T) {
	raw := `[{"name":"Arroz 5kg","quantity":2,"unit_price":24.9,"category":"alimentos"}]`

	items, err := parseLineItems(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Name != "Arroz 5kg" || items[0].Quantity != 2 || items[0].UnitPrice != 24.9 {
		t.Errorf("unexpected item: %+v", items[0])
	}
}

func TestParseLineItemsCodeFence(t *testing.T) {
	raw := "```json\n[{\"name\":\"Caneta\",\"quantity\":10,\"unit_price\":1.5}]\n```"

	items, err := parseLineItems(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Caneta" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestParseLineItemsRejectsProse(t *testing.T) {
	if _, err := parseLineItems("Here are the items you asked for"); err == nil {
		t.Fatal("expected parse error for non-JSON response")
	}
}

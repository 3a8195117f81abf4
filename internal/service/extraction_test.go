package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/balcaohq/platform/internal/llm"
)

// fakeLLM records the request it was handed and returns canned items.
type fakeLLM struct {
	lastReq *llm.ExtractionRequest
	items   []llm.LineItem
	err     error
}

func (f *fakeLLM) ExtractLineItems(_ context.Context, req *llm.ExtractionRequest) ([]llm.LineItem, error) {
	f.lastReq = req
	return f.items, f.err
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return nil }

func TestExtractRejectsPdfDocuments(t *testing.T) {
	svc := NewExtractionService(&fakeLLM{}, testLogger())

	_, err := svc.Extract(context.Background(), "user-1", &ExtractRequest{
		Data:     base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		FileType: "pdf",
	})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("got %v, want ErrUnsupportedFileType", err)
	}
}

func TestExtractRejectsOversizedDocument(t *testing.T) {
	svc := NewExtractionService(&fakeLLM{}, testLogger())

	_, err := svc.Extract(context.Background(), "user-1", &ExtractRequest{
		Data:     base64.StdEncoding.EncodeToString(make([]byte, maxDocumentSize+1)),
		FileType: "png",
	})
	if !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("got %v, want ErrDocumentTooLarge", err)
	}
}

func TestExtractPassesDecodedImageToProvider(t *testing.T) {
	client := &fakeLLM{items: []llm.LineItem{{Name: "Caderno", Quantity: 3, UnitPrice: 7.5}}}
	svc := NewExtractionService(client, testLogger())

	items, err := svc.Extract(context.Background(), "user-1", &ExtractRequest{
		Data:     base64.StdEncoding.EncodeToString([]byte("fake-image-bytes")),
		FileType: "jpg",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Caderno" {
		t.Fatalf("items = %+v", items)
	}
	if client.lastReq == nil {
		t.Fatal("provider never called")
	}
	if client.lastReq.MIMEType != "image/jpeg" {
		t.Fatalf("mime = %q, want image/jpeg", client.lastReq.MIMEType)
	}
	if string(client.lastReq.Data) != "fake-image-bytes" {
		t.Fatal("document bytes not decoded before the provider call")
	}
}

func TestExtractRequiresActor(t *testing.T) {
	svc := NewExtractionService(&fakeLLM{}, testLogger())

	_, err := svc.Extract(context.Background(), "", &ExtractRequest{
		Data:     base64.StdEncoding.EncodeToString([]byte("x")),
		FileType: "png",
	})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
}

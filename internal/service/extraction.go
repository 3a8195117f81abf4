package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/llm"
	"github.com/balcaohq/platform/pkg/logger"
	"github.com/balcaohq/platform/pkg/metrics"
)

// maxDocumentSize caps uploaded invoice documents at 10MB decoded.
const maxDocumentSize = 10 << 20

// ErrUnsupportedFileType is returned for document types the extractor
// cannot read. The vision APIs behind llm.Client only take raster images,
// so PDFs are rejected here instead of failing on the provider call.
var ErrUnsupportedFileType = errors.New("unsupported file type: use png or jpeg")

// ErrDocumentTooLarge is returned when the decoded document exceeds the
// size cap.
var ErrDocumentTooLarge = errors.New("document exceeds the 10MB limit")

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// ExtractionService turns invoice documents into structured line items by
// way of an LLM provider.
type ExtractionService struct {
	client llm.Client
	logger *logger.Logger
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(client llm.Client, log *logger.Logger) *ExtractionService {
	return &ExtractionService{client: client, logger: log}
}

// ExtractRequest is a base64-encoded invoice document upload.
type ExtractRequest struct {
	Data     string `json:"data"`
	FileType string `json:"file_type"`
}

// Extract decodes the uploaded document and asks the model for its line
// items.
func (s *ExtractionService) Extract(ctx context.Context, actor string, req *ExtractRequest) ([]llm.LineItem, error) {
	if actor == "" {
		return nil, ErrNotAuthenticated
	}

	mime, ok := mimeTypes[req.FileType]
	if !ok {
		return nil, ErrUnsupportedFileType
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	start := time.Now()
	items, err := s.client.ExtractLineItems(ctx, &llm.ExtractionRequest{
		Data:     data,
		MIMEType: mime,
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordExtraction(s.client.Name(), status, time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("extraction failed",
			zap.String("provider", s.client.Name()), zap.Error(err))
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	s.logger.Info("invoice extracted",
		zap.String("provider", s.client.Name()),
		zap.Int("line_items", len(items)),
	)
	return items, nil
}

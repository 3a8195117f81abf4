// Package llm provides LLM client interfaces and implementations used for
// invoice line-item extraction.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedMIMEType is returned for documents the vision endpoints
// cannot take. Both providers accept only raster image media types.
var ErrUnsupportedMIMEType = errors.New("unsupported document mime type")

func checkImageMIME(mime string) error {
	if !strings.HasPrefix(mime, "image/") {
		return fmt.Errorf("%w: %s", ErrUnsupportedMIMEType, mime)
	}
	return nil
}

// LineItem is one extracted invoice line.
type LineItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category,omitempty"`
}

// ExtractionRequest carries the document to extract line items from.
type ExtractionRequest struct {
	Data      []byte
	MIMEType  string
	Model     string
	MaxTokens int
}

// Client is the interface for LLM providers.
type Client interface {
	// ExtractLineItems reads an invoice document and returns its line items.
	ExtractLineItems(ctx context.Context, req *ExtractionRequest) ([]LineItem, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	default:
		return NewOpenAIClient(apiKey)
	}
}

// extractionPrompt instructs the model to return a bare JSON array.
const extractionPrompt = `Extract every line item from this invoice document. ` +
	`Respond with only a JSON array, no prose. Each element must have the ` +
	`fields "name" (string), "quantity" (number), "unit_price" (number), ` +
	`and "category" (string, best guess). Use 1 for quantity when it is ` +
	`not printed.`

// parseLineItems decodes the model's response, tolerating code fences.
func parseLineItems(text string) ([]LineItem, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("failed to parse line items: %w", err)
	}
	return items, nil
}

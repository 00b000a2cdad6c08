package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rezonia/invoice-builder/internal/model"
)

// ErrNoItems is returned when the reply contains no usable line items
var ErrNoItems = errors.New("no line items found")

// Extractor turns free text or receipt images into line item drafts
type Extractor struct {
	client      *Client
	model       string
	visionModel string
}

// ExtractorOption configures the extractor
type ExtractorOption func(*Extractor)

// WithModel sets the model for text extraction
func WithModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.model = model
	}
}

// WithVisionModel sets the model for image extraction
func WithVisionModel(model string) ExtractorOption {
	return func(e *Extractor) {
		e.visionModel = model
	}
}

// NewExtractor creates an extractor on top of client
func NewExtractor(client *Client, opts ...ExtractorOption) *Extractor {
	e := &Extractor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	if e.visionModel == "" {
		e.visionModel = e.model
	}
	return e
}

// itemsResponse is the JSON shape requested by the prompts
type itemsResponse struct {
	Items []itemResponse `json:"items"`
}

type itemResponse struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ExtractItems asks the model for the line items described by text
func (e *Extractor) ExtractItems(ctx context.Context, text string) ([]model.ItemDraft, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoItems
	}

	reply, err := e.client.ChatText(ctx, e.model, SystemPromptItemExtractor, fmt.Sprintf(UserPromptTextItems, text))
	if err != nil {
		return nil, err
	}
	return ParseItems(reply)
}

// ExtractItemsFromImage asks the model for the line items on a receipt image
func (e *Extractor) ExtractItemsFromImage(ctx context.Context, data []byte, mimeType string) ([]model.ItemDraft, error) {
	if len(data) == 0 {
		return nil, ErrNoItems
	}

	reply, err := e.client.ChatWithImage(ctx, e.visionModel, SystemPromptItemExtractor, UserPromptImageItems, data, mimeType)
	if err != nil {
		return nil, err
	}
	return ParseItems(reply)
}

// ParseItems decodes a model reply into drafts. Rows without a name are
// skipped; quantities and prices go through the same checks as manual edits.
func ParseItems(reply string) ([]model.ItemDraft, error) {
	var resp itemsResponse
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	drafts := make([]model.ItemDraft, 0, len(resp.Items))
	for i, item := range resp.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}

		qty := item.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		quantity, err := model.ParseQuantity(qty.String())
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, name, err)
		}
		price, err := model.ParsePrice(item.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, name, err)
		}

		drafts = append(drafts, model.ItemDraft{
			Name:      name,
			Quantity:  quantity,
			UnitPrice: price,
		})
	}

	if len(drafts) == 0 {
		return nil, ErrNoItems
	}
	return drafts, nil
}

package server

import (
	"github.com/rezonia/invoice-builder/internal/model"
)

// InvoiceResponse is the current draft with its totals
type InvoiceResponse struct {
	*model.Snapshot
	ExportState string `json:"export_state"`
}

// UpdateInvoiceRequest changes header fields. Omitted fields are left alone.
type UpdateInvoiceRequest struct {
	InvoiceNumber   *string `json:"invoice_number,omitempty"`
	CashierName     *string `json:"cashier_name,omitempty"`
	CustomerName    *string `json:"customer_name,omitempty"`
	TaxPercent      *string `json:"tax_percent,omitempty"`
	DiscountPercent *string `json:"discount_percent,omitempty"`
}

// EditItemRequest sets one field of a line item from its text value
type EditItemRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// ImportRequest carries free text to extract line items from
type ImportRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportResponse lists the rows added by an import
type ImportResponse struct {
	Items   []model.LineItem `json:"items"`
	Summary model.Summary    `json:"summary"`
}

// NextResponse is returned after advancing to the next invoice
type NextResponse struct {
	InvoiceNumber string `json:"invoice_number"`
}

// ExportStatusResponse reports the state of the most recent export
type ExportStatusResponse struct {
	State string `json:"state"`
	Busy  bool   `json:"busy"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
	ItemID  string `json:"item_id,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

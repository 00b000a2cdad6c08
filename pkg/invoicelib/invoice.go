// Package invoicelib provides a public API for building invoices and
// exporting them as paginated PDF documents.
//
// Example usage:
//
//	draft := invoicelib.NewDraft()
//	item := draft.Items()[0]
//	draft.EditItem(item.ID, invoicelib.SetName{Value: "Widget"})
//	draft.EditItem(item.ID, invoicelib.SetQty{Raw: "3"})
//	doc, err := invoicelib.ExportPDF(ctx, draft.Snapshot(), invoicelib.DefaultExportOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(doc.FileName, doc.Data, 0o644)
package invoicelib

import (
	"github.com/rezonia/invoice-builder/internal/export"
	"github.com/rezonia/invoice-builder/internal/model"
	"github.com/rezonia/invoice-builder/internal/paginator"
)

// Re-export core types for public API
type (
	Draft       = model.Draft
	DraftOption = model.DraftOption
	DraftFile   = model.DraftFile
	LineItem    = model.LineItem
	ItemDraft   = model.ItemDraft
	Summary     = model.Summary
	Snapshot    = model.Snapshot
	ItemUpdate  = model.ItemUpdate
	SetName     = model.SetName
	SetQty      = model.SetQty
	SetPrice    = model.SetPrice
)

// Re-export pagination types
type (
	PageSize    = paginator.PageSize
	Layout      = paginator.Layout
	Slice       = paginator.Slice
	ImageFormat = paginator.ImageFormat
)

// Re-export image formats
const (
	FormatPNG  = paginator.FormatPNG
	FormatJPEG = paginator.FormatJPEG
)

// Re-export error types
type (
	InvalidFieldError = model.InvalidFieldError
	CaptureError      = model.CaptureError
	ExportError       = model.ExportError
)

// Re-export sentinel errors
var (
	ErrItemNotFound     = model.ErrItemNotFound
	ErrExportInProgress = export.ErrExportInProgress
	ErrInvalidGeometry  = paginator.ErrInvalidGeometry
)

// NewDraft starts an invoice with number 1 and one blank item
func NewDraft(opts ...DraftOption) *Draft {
	return model.NewDraft(opts...)
}

// Plan computes how a raster of the given size is cut into pages
func Plan(width, height int, size PageSize) (*Layout, error) {
	return paginator.Plan(width, height, size)
}

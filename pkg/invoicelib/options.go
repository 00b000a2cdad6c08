package invoicelib

import (
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/preview"
)

// ExportOptions configures ExportPDF
type ExportOptions struct {
	PageSize     PageSize    // Page size in inches (default: 5.5 x 8.5)
	ImageFormat  ImageFormat // Encoding of the page images (default: PNG)
	PreviewWidth int         // Width of the captured preview in pixels (default: 800)

	// Validate every document with pdfcpu before returning it
	Verify bool
}

// DefaultExportOptions returns default export options
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		PageSize:     paginator.DefaultPageSize,
		ImageFormat:  paginator.FormatPNG,
		PreviewWidth: preview.DefaultWidth,
		Verify:       true,
	}
}

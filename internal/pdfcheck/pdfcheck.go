// Package pdfcheck validates exported documents and reports their page
// geometry using pdfcpu.
package pdfcheck

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpu reports dimensions in points
const pointsPerInch = 72.0

func init() {
	// Never create or read a pdfcpu config directory in the user's home
	api.DisableConfigDir()
}

// PageDim is one page's physical size
type PageDim struct {
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

// Report summarizes a validated document
type Report struct {
	Pages int       `json:"pages"`
	Dims  []PageDim `json:"dims"`
	Size  int       `json:"size"`
}

// Checker validates PDF documents
type Checker struct {
	conf *model.Configuration
}

// New creates a checker using relaxed validation
func New() *Checker {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Checker{conf: conf}
}

// Verify parses and validates data and returns its page report
func (c *Checker) Verify(ctx context.Context, data []byte) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), c.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("page dimensions: %w", err)
	}

	report := &Report{
		Pages: pdfCtx.PageCount,
		Dims:  make([]PageDim, 0, len(dims)),
		Size:  len(data),
	}
	for _, d := range dims {
		report.Dims = append(report.Dims, PageDim{
			WidthIn:  d.Width / pointsPerInch,
			HeightIn: d.Height / pointsPerInch,
		})
	}

	return report, nil
}

// VerifyFile reads and verifies a document on disk
func (c *Checker) VerifyFile(ctx context.Context, path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.Verify(ctx, data)
}

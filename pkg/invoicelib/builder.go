package invoicelib

import (
	"context"
	"fmt"

	"github.com/rezonia/invoice-builder/internal/export"
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/pdfcheck"
	"github.com/rezonia/invoice-builder/internal/preview"
)

// Document is an exported invoice held in memory
type Document struct {
	FileName string
	Data     []byte
	Layout   *Layout
}

// ExportPDF renders snap and returns the finished PDF
func ExportPDF(ctx context.Context, snap *Snapshot, opts ExportOptions) (*Document, error) {
	exporter, err := newExporter(opts)
	if err != nil {
		return nil, err
	}

	sink := &export.BufferSink{}
	result, err := exporter.Export(ctx, snap, sink)
	if err != nil {
		return nil, err
	}

	return &Document{
		FileName: result.FileName,
		Data:     sink.Bytes(),
		Layout:   result.Layout,
	}, nil
}

// SavePDF renders snap into dir/invoice-<number>.pdf and returns the file
// name. The file only appears once it is completely written.
func SavePDF(ctx context.Context, snap *Snapshot, dir string, opts ExportOptions) (string, error) {
	exporter, err := newExporter(opts)
	if err != nil {
		return "", err
	}

	result, err := exporter.Export(ctx, snap, export.DirSink{Dir: dir})
	if err != nil {
		return "", err
	}
	return result.FileName, nil
}

// ExportBatch exports several snapshots concurrently. Results keep the
// order of snaps; the first error is returned alongside partial results.
func ExportBatch(ctx context.Context, snaps []*Snapshot, opts ExportOptions) ([]*Document, error) {
	docs := make([]*Document, len(snaps))
	errCh := make(chan error, len(snaps))

	for i, snap := range snaps {
		go func(idx int, s *Snapshot) {
			doc, err := ExportPDF(ctx, s, opts)
			if err != nil {
				errCh <- err
				return
			}
			docs[idx] = doc
			errCh <- nil
		}(i, snap)
	}

	var firstErr error
	for range snaps {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return docs, firstErr
}

func newExporter(opts ExportOptions) (*export.Exporter, error) {
	var previewOpts []preview.Option
	if opts.PreviewWidth > 0 {
		previewOpts = append(previewOpts, preview.WithWidth(opts.PreviewWidth))
	}
	renderer, err := preview.New(previewOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview renderer: %w", err)
	}

	var renderOpts []paginator.Option
	if opts.PageSize.WidthIn > 0 || opts.PageSize.HeightIn > 0 {
		renderOpts = append(renderOpts, paginator.WithPageSize(opts.PageSize))
	}
	if opts.ImageFormat != "" {
		renderOpts = append(renderOpts, paginator.WithImageFormat(opts.ImageFormat))
	}

	exporterOpts := []export.Option{export.WithRenderOptions(renderOpts...)}
	if opts.Verify {
		exporterOpts = append(exporterOpts, export.WithVerifier(pdfcheck.New()))
	}
	return export.New(renderer, exporterOpts...), nil
}

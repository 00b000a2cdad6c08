// Package export turns an invoice snapshot into a saved PDF:
// capture the preview raster, slice it into pages, then write the document.
package export

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync/atomic"

	"github.com/rezonia/invoice-builder/internal/model"
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/pdfcheck"
)

// Stage names carried by model.ExportError
const (
	StageSlicing = "slicing"
	StageWriting = "writing"
)

// ErrExportInProgress is returned when Export is called while another
// export on the same Exporter has not finished.
var ErrExportInProgress = errors.New("export already in progress")

// Capturer rasterizes the printable preview of a snapshot
type Capturer interface {
	Capture(ctx context.Context, snap *model.Snapshot) (image.Image, error)
}

// Verifier checks a finished document before it is saved
type Verifier interface {
	Verify(ctx context.Context, data []byte) (*pdfcheck.Report, error)
}

// Result describes a saved document
type Result struct {
	FileName string            `json:"file_name"`
	Layout   *paginator.Layout `json:"layout"`
	Report   *pdfcheck.Report  `json:"report,omitempty"`
	Size     int               `json:"size"`
}

// Exporter runs the capture, slice, write sequence. Only one export runs at
// a time; a second call returns ErrExportInProgress instead of queueing.
type Exporter struct {
	capturer   Capturer
	verifier   Verifier
	renderOpts []paginator.Option

	observers []func(State)

	busy  atomic.Bool
	state atomic.Int32
}

// Option configures an Exporter
type Option func(*Exporter)

// WithVerifier validates every document before it reaches the sink
func WithVerifier(v Verifier) Option {
	return func(e *Exporter) {
		e.verifier = v
	}
}

// WithRenderOptions passes options through to the paginator
func WithRenderOptions(opts ...paginator.Option) Option {
	return func(e *Exporter) {
		e.renderOpts = append(e.renderOpts, opts...)
	}
}

// WithStateObserver registers fn to be called on every state change
func WithStateObserver(fn func(State)) Option {
	return func(e *Exporter) {
		e.observers = append(e.observers, fn)
	}
}

// New creates an exporter around capturer
func New(capturer Capturer, opts ...Option) *Exporter {
	e := &Exporter{capturer: capturer}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the state of the current or most recent export
func (e *Exporter) State() State {
	return State(e.state.Load())
}

// Busy reports whether an export is running
func (e *Exporter) Busy() bool {
	return e.busy.Load()
}

// FileName returns the download name for an invoice number.
// Characters that cannot appear in a file name are replaced by '-'.
func FileName(number string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`/\:*?"<>|`, r):
			return '-'
		}
		return r
	}, strings.TrimSpace(number))
	return "invoice-" + safe + ".pdf"
}

// Export captures snap, paginates it and hands the document to sink.
// Capture failures are returned as *model.CaptureError, everything after
// as *model.ExportError. Nothing reaches sink unless every earlier stage
// succeeded.
func (e *Exporter) Export(ctx context.Context, snap *model.Snapshot, sink Sink) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.busy.Store(false)

	e.transition(StateIdle)

	if snap == nil {
		return nil, e.fail(model.NewCaptureError("no snapshot to capture", nil))
	}
	name := FileName(snap.Number)

	e.transition(StateCapturing)
	img, err := e.capturer.Capture(ctx, snap)
	if err != nil {
		return nil, e.fail(model.NewCaptureError("render preview", err))
	}

	e.transition(StateSlicing)
	opts := append([]paginator.Option{paginator.WithTitle(strings.TrimSuffix(name, ".pdf"))}, e.renderOpts...)
	doc, err := paginator.Render(ctx, img, opts...)
	if err != nil {
		return nil, e.fail(model.NewExportError(StageSlicing, "paginate preview", err))
	}

	e.transition(StateWriting)
	result := &Result{
		FileName: name,
		Layout:   doc.Layout,
		Size:     len(doc.Data),
	}
	if e.verifier != nil {
		report, err := e.verifier.Verify(ctx, doc.Data)
		if err != nil {
			return nil, e.fail(model.NewExportError(StageWriting, "verify document", err))
		}
		result.Report = report
	}
	if sink != nil {
		if err := sink.Save(ctx, name, doc.Data); err != nil {
			return nil, e.fail(model.NewExportError(StageWriting, "save "+name, err))
		}
	}

	e.transition(StateDone)
	return result, nil
}

func (e *Exporter) fail(err error) error {
	e.transition(StateFailed)
	return err
}

func (e *Exporter) transition(s State) {
	e.state.Store(int32(s))
	for _, fn := range e.observers {
		fn(s)
	}
}

package export_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-builder/internal/export"
	"github.com/rezonia/invoice-builder/internal/model"
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/pdfcheck"
	"github.com/rezonia/invoice-builder/internal/preview"
)

type capturerFunc func(ctx context.Context, snap *model.Snapshot) (image.Image, error)

func (f capturerFunc) Capture(ctx context.Context, snap *model.Snapshot) (image.Image, error) {
	return f(ctx, snap)
}

func solid(w, h int) capturerFunc {
	return func(context.Context, *model.Snapshot) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 200, A: 255}), image.Point{}, draw.Src)
		return img, nil
	}
}

func snapshot(number string) *model.Snapshot {
	items := []model.LineItem{{ID: "a", Name: "Widget", Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")}}
	return &model.Snapshot{
		Number:  number,
		Items:   items,
		Summary: model.ComputeSummary(items, decimal.NewFromInt(10), decimal.Zero),
	}
}

func recordStates() (*[]export.State, export.Option) {
	var states []export.State
	return &states, export.WithStateObserver(func(s export.State) {
		states = append(states, s)
	})
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "invoice-1.pdf", export.FileName("1"))
	assert.Equal(t, "invoice-A100.pdf", export.FileName("A100"))
	assert.Equal(t, "invoice-AA-23E.pdf", export.FileName("AA/23E"))
	assert.Equal(t, "invoice-a-b.pdf", export.FileName(` a\b `))
}

func TestExport_WritesFile(t *testing.T) {
	dir := t.TempDir()
	states, observe := recordStates()
	e := export.New(solid(800, 2150), export.WithVerifier(pdfcheck.New()), observe)

	result, err := e.Export(context.Background(), snapshot("7"), export.DirSink{Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, "invoice-7.pdf", result.FileName)
	assert.Equal(t, 2, result.Layout.PageCount())
	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.Pages)

	data, err := os.ReadFile(filepath.Join(dir, "invoice-7.pdf"))
	require.NoError(t, err)
	assert.Equal(t, result.Size, len(data))

	assert.Equal(t, []export.State{
		export.StateIdle,
		export.StateCapturing,
		export.StateSlicing,
		export.StateWriting,
		export.StateDone,
	}, *states)
	assert.Equal(t, export.StateDone, e.State())
	assert.False(t, e.Busy())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExport_WithPreviewRenderer(t *testing.T) {
	r, err := preview.New()
	require.NoError(t, err)

	sink := &export.BufferSink{}
	e := export.New(r,
		export.WithVerifier(pdfcheck.New()),
		export.WithRenderOptions(paginator.WithImageFormat(paginator.FormatJPEG)),
	)

	result, err := e.Export(context.Background(), snapshot("12"), sink)
	require.NoError(t, err)

	assert.Equal(t, "invoice-12.pdf", sink.Name())
	assert.Equal(t, result.Size, len(sink.Bytes()))
	assert.Equal(t, 1, result.Report.Pages)
}

func TestExport_CaptureFailure(t *testing.T) {
	dir := t.TempDir()
	states, observe := recordStates()
	boom := errors.New("unsupported content")
	e := export.New(capturerFunc(func(context.Context, *model.Snapshot) (image.Image, error) {
		return nil, boom
	}), observe)

	_, err := e.Export(context.Background(), snapshot("3"), export.DirSink{Dir: dir})

	var ce *model.CaptureError
	require.ErrorAs(t, err, &ce)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, export.StateFailed, e.State())
	assert.Equal(t, []export.State{export.StateIdle, export.StateCapturing, export.StateFailed}, *states)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_SlicingFailure(t *testing.T) {
	e := export.New(solid(1, 10), export.WithRenderOptions(
		paginator.WithPageSize(paginator.PageSize{WidthIn: 10, HeightIn: 1}),
	))
	sink := &export.BufferSink{}

	_, err := e.Export(context.Background(), snapshot("3"), sink)

	var ee *model.ExportError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, export.StageSlicing, ee.Stage)
	require.ErrorIs(t, err, paginator.ErrInvalidGeometry)
	assert.Nil(t, sink.Bytes())
}

func TestExport_VerifyFailure(t *testing.T) {
	sink := &export.BufferSink{}
	e := export.New(solid(100, 100), export.WithVerifier(verifierFunc(func(context.Context, []byte) (*pdfcheck.Report, error) {
		return nil, errors.New("corrupt")
	})))

	_, err := e.Export(context.Background(), snapshot("3"), sink)

	var ee *model.ExportError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, export.StageWriting, ee.Stage)
	assert.Nil(t, sink.Bytes(), "nothing is saved when verification fails")
}

func TestExport_SinkFailure(t *testing.T) {
	e := export.New(solid(100, 100))
	_, err := e.Export(context.Background(), snapshot("3"), export.SinkFunc(func(context.Context, string, []byte) error {
		return errors.New("disk full")
	}))

	var ee *model.ExportError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, export.StageWriting, ee.Stage)
	assert.Equal(t, export.StateFailed, e.State())
}

func TestExport_DirSinkMissingDir(t *testing.T) {
	e := export.New(solid(100, 100))
	_, err := e.Export(context.Background(), snapshot("3"), export.DirSink{Dir: filepath.Join(t.TempDir(), "missing")})

	var ee *model.ExportError
	require.ErrorAs(t, err, &ee)
}

func TestExport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := export.New(solid(100, 100))
	_, err := e.Export(ctx, snapshot("3"), &export.BufferSink{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, export.StateFailed, e.State())
}

func TestExport_NilSnapshot(t *testing.T) {
	e := export.New(solid(100, 100))
	_, err := e.Export(context.Background(), nil, &export.BufferSink{})

	var ce *model.CaptureError
	require.ErrorAs(t, err, &ce)
}

func TestExport_RejectsReentry(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	e := export.New(capturerFunc(func(ctx context.Context, snap *model.Snapshot) (image.Image, error) {
		close(started)
		<-release
		return solid(100, 100)(ctx, snap)
	}))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = e.Export(context.Background(), snapshot("1"), &export.BufferSink{})
	}()

	<-started
	assert.True(t, e.Busy())
	assert.Equal(t, export.StateCapturing, e.State())

	_, err := e.Export(context.Background(), snapshot("1"), &export.BufferSink{})
	require.ErrorIs(t, err, export.ErrExportInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.False(t, e.Busy())

	_, err = e.Export(context.Background(), snapshot("2"), &export.BufferSink{})
	require.NoError(t, err, "a finished export frees the exporter")
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    export.State
		expected string
		terminal bool
	}{
		{export.StateIdle, "idle", false},
		{export.StateCapturing, "capturing", false},
		{export.StateSlicing, "slicing", false},
		{export.StateWriting, "writing", false},
		{export.StateDone, "done", true},
		{export.StateFailed, "failed", true},
		{export.State(42), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
			assert.Equal(t, tt.terminal, tt.state.Terminal())
		})
	}
}

type verifierFunc func(ctx context.Context, data []byte) (*pdfcheck.Report, error)

func (f verifierFunc) Verify(ctx context.Context, data []byte) (*pdfcheck.Report, error) {
	return f(ctx, data)
}

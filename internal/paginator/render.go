package paginator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ImageFormat selects how page slices are embedded
type ImageFormat string

const (
	FormatPNG  ImageFormat = "PNG"
	FormatJPEG ImageFormat = "JPG"
)

// Document is a rendered PDF held in memory until it is saved
type Document struct {
	Layout *Layout
	Data   []byte
}

// Option configures Render
type Option func(*options)

type options struct {
	pageSize     PageSize
	format       ImageFormat
	title        string
	creator      string
	creationDate time.Time
}

// WithPageSize sets the physical page size
func WithPageSize(size PageSize) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithImageFormat sets the embedded image format
func WithImageFormat(format ImageFormat) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithCreator sets the document creator
func WithCreator(creator string) Option {
	return func(o *options) {
		o.creator = creator
	}
}

// WithCreationDate pins the creation date, making output reproducible
func WithCreationDate(t time.Time) Option {
	return func(o *options) {
		o.creationDate = t
	}
}

// Render slices img into pages and returns the PDF bytes. Pages are
// produced in order; ctx is checked before each one.
func Render(ctx context.Context, img image.Image, opts ...Option) (*Document, error) {
	o := &options{
		pageSize: DefaultPageSize,
		format:   FormatPNG,
		creator:  "invoice-builder",
	}
	for _, opt := range opts {
		opt(o)
	}

	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidGeometry)
	}
	b := img.Bounds()
	layout, err := Plan(b.Dx(), b.Dy(), o.pageSize)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           gofpdf.SizeType{Wd: o.pageSize.WidthIn, Ht: o.pageSize.HeightIn},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(o.creator, true)
	if o.title != "" {
		pdf.SetTitle(o.title, true)
	}
	if !o.creationDate.IsZero() {
		pdf.SetCreationDate(o.creationDate)
	}

	imgOpts := gofpdf.ImageOptions{ImageType: string(o.format)}

	for _, s := range layout.Slices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := encodeSlice(Crop(img, s), o.format)
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", s.Index, err)
		}

		name := fmt.Sprintf("page-%d", s.Index)
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: s.WidthIn, Ht: s.HeightIn})
		pdf.ImageOptions(name, 0, 0, s.WidthIn, s.HeightIn, false, imgOpts, 0, "")

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("add page %d: %w", s.Index, err)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	return &Document{
		Layout: layout,
		Data:   out.Bytes(),
	}, nil
}

// Crop copies the rows of s onto an opaque white canvas of the slice size.
// Transparent source pixels come out white.
func Crop(img image.Image, s Slice) *image.RGBA {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), s.Height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, image.Pt(b.Min.X, b.Min.Y+s.Y), draw.Over)
	return canvas
}

func encodeSlice(canvas *image.RGBA, format ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 100})
	default:
		err = png.Encode(&buf, canvas)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package preview draws the printable invoice preview into a raster image.
package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	money "github.com/rezonia/invoice-builder/internal/decimal"
	"github.com/rezonia/invoice-builder/internal/model"
)

const (
	DefaultWidth = 800
	MinWidth     = 240
)

var (
	textDark   = color.RGBA{R: 31, G: 41, B: 55, A: 255}
	textMuted  = color.RGBA{R: 75, G: 85, B: 99, A: 255}
	borderGray = color.RGBA{R: 209, G: 213, B: 219, A: 255}
)

// ErrNoSnapshot is returned when there is nothing to draw
var ErrNoSnapshot = errors.New("no invoice snapshot")

// Renderer draws invoice snapshots. It is safe for concurrent use; font
// faces are created per call.
type Renderer struct {
	width   int
	scale   float64
	regular *opentype.Font
	bold    *opentype.Font
}

// Option configures a Renderer
type Option func(*Renderer)

// WithWidth sets the raster width in pixels
func WithWidth(px int) Option {
	return func(r *Renderer) {
		r.width = px
	}
}

// WithScale multiplies font sizes and spacing, like a device pixel ratio
func WithScale(scale float64) Option {
	return func(r *Renderer) {
		r.scale = scale
	}
}

// New parses the Go fonts and returns a renderer
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		width: DefaultWidth,
		scale: 1,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", r.scale)
	}
	if r.width < int(MinWidth*r.scale) {
		return nil, fmt.Errorf("width %d is below the minimum of %d", r.width, int(MinWidth*r.scale))
	}

	var err error
	if r.regular, err = opentype.Parse(goregular.TTF); err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	if r.bold, err = opentype.Parse(gobold.TTF); err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return r, nil
}

// Width returns the raster width in pixels
func (r *Renderer) Width() int {
	return r.width
}

// Capture renders snap. It satisfies the export pipeline's capturer.
func (r *Renderer) Capture(ctx context.Context, snap *model.Snapshot) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Render(snap)
}

// metrics are the scaled vertical measurements of the layout
type metrics struct {
	pad, title, gridRow, gap, tableHead, row, summaryRow, totalRow int
}

func (r *Renderer) metrics() metrics {
	s := func(v float64) int { return int(math.Round(v * r.scale)) }
	return metrics{
		pad:        s(48),
		title:      s(56),
		gridRow:    s(30),
		gap:        s(24),
		tableHead:  s(36),
		row:        s(34),
		summaryRow: s(30),
		totalRow:   s(40),
	}
}

// Height returns the raster height for an invoice with n rows
func (r *Renderer) Height(n int) int {
	m := r.metrics()
	return m.pad + m.title + 3*m.gridRow + m.gap + m.tableHead + n*m.row + m.gap + 3*m.summaryRow + m.totalRow + m.pad
}

// Render draws snap into a new white RGBA image
func (r *Renderer) Render(snap *model.Snapshot) (*image.RGBA, error) {
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	fc, err := r.newFaces()
	if err != nil {
		return nil, err
	}
	defer fc.close()

	m := r.metrics()
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.Height(len(snap.Items))))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	c := &canvas{img: img}
	left := m.pad
	right := r.width - m.pad
	inner := right - left

	y := m.pad
	c.text(fc.title, textDark, "INVOICE", (r.width-c.measure(fc.title, "INVOICE"))/2, y+m.title*2/3)
	y += m.title

	valueX := left + inner/2
	grid := [][2]string{
		{"Invoice Number:", snap.Number},
		{"Cashier:", snap.CashierName},
		{"Customer:", snap.CustomerName},
	}
	for _, g := range grid {
		base := y + m.gridRow*2/3
		c.text(fc.bold, textMuted, g[0], left, base)
		c.text(fc.regular, textDark, fit(fc.regular, g[1], right-valueX), valueX, base)
		y += m.gridRow
	}
	y += m.gap

	// ITEM | QTY | PRICE | AMOUNT
	qtyCenter := left + inner*55/100
	priceRight := left + inner*78/100
	itemWidth := qtyCenter - left - inner*8/100

	c.hline(left, right, y, r.stroke())
	base := y + m.tableHead*2/3
	c.text(fc.bold, textMuted, "ITEM", left, base)
	c.textCenter(fc.bold, textMuted, "QTY", qtyCenter, base)
	c.textRight(fc.bold, textMuted, "PRICE", priceRight, base)
	c.textRight(fc.bold, textMuted, "AMOUNT", right, base)
	y += m.tableHead
	c.hline(left, right, y, r.stroke())

	for _, item := range snap.Items {
		base := y + m.row*2/3
		c.text(fc.regular, textDark, fit(fc.regular, item.Name, itemWidth), left, base)
		c.textCenter(fc.regular, textDark, fmt.Sprintf("%d", item.Quantity), qtyCenter, base)
		c.textRight(fc.regular, textDark, usd(money.Fixed2(item.UnitPrice)), priceRight, base)
		c.textRight(fc.regular, textDark, usd(money.Fixed2(item.Amount())), right, base)
		y += m.row
		c.hline(left, right, y-r.stroke(), r.stroke())
	}
	y += m.gap

	c.hline(left, right, y, r.stroke())
	summary := [][2]string{
		{"Subtotal:", usd(money.Fixed2(snap.Summary.Subtotal))},
		{"Discount:", usd(money.Fixed2(snap.Summary.DiscountRate))},
		{"Tax:", usd(money.Fixed2(snap.Summary.TaxRate))},
	}
	for _, s := range summary {
		base := y + m.summaryRow*2/3
		c.text(fc.bold, textMuted, s[0], left, base)
		c.textRight(fc.regular, textDark, s[1], right, base)
		y += m.summaryRow
	}

	c.hline(left, right, y, r.stroke())
	base = y + m.totalRow*2/3
	c.text(fc.bold, textDark, "Total:", left, base)
	c.textRight(fc.bold, textDark, usd(money.WholeOrFixed2(snap.Summary.Total)), right, base)
	y += m.totalRow
	c.hline(left, right, y-r.stroke(), r.stroke())

	return img, nil
}

func (r *Renderer) stroke() int {
	if s := int(math.Round(r.scale)); s > 1 {
		return s
	}
	return 1
}

func usd(amount string) string {
	return model.PreviewCurrencySymbol + amount
}

type faceSet struct {
	title, bold, regular font.Face
}

func (f *faceSet) close() {
	for _, face := range []font.Face{f.title, f.bold, f.regular} {
		if face != nil {
			face.Close()
		}
	}
}

func (r *Renderer) newFaces() (*faceSet, error) {
	newFace := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{
			Size:    size * r.scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	var (
		fs  = &faceSet{}
		err error
	)
	if fs.title, err = newFace(r.bold, 26); err != nil {
		return nil, fmt.Errorf("title face: %w", err)
	}
	if fs.bold, err = newFace(r.bold, 15); err != nil {
		fs.close()
		return nil, fmt.Errorf("bold face: %w", err)
	}
	if fs.regular, err = newFace(r.regular, 15); err != nil {
		fs.close()
		return nil, fmt.Errorf("regular face: %w", err)
	}
	return fs, nil
}

// canvas wraps the destination image with text and rule helpers
type canvas struct {
	img *image.RGBA
}

func (c *canvas) measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func (c *canvas) text(face font.Face, col color.Color, s string, x, baseline int) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func (c *canvas) textRight(face font.Face, col color.Color, s string, right, baseline int) {
	c.text(face, col, s, right-c.measure(face, s), baseline)
}

func (c *canvas) textCenter(face font.Face, col color.Color, s string, center, baseline int) {
	c.text(face, col, s, center-c.measure(face, s)/2, baseline)
}

func (c *canvas) hline(x0, x1, y, thickness int) {
	rect := image.Rect(x0, y, x1, y+thickness)
	draw.Draw(c.img, rect, image.NewUniform(borderGray), image.Point{}, draw.Src)
}

// fit shortens s with an ellipsis until it is at most maxWidth pixels wide
func fit(face font.Face, s string, maxWidth int) string {
	if font.MeasureString(face, s).Ceil() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "…"
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return ""
}

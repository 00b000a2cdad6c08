// Package paginator slices a raster image into fixed aspect ratio pages and
// assembles them into a PDF document.
package paginator

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is returned for empty rasters or degenerate page sizes
var ErrInvalidGeometry = errors.New("invalid page geometry")

// PageSize is a physical page size in inches
type PageSize struct {
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

// DefaultPageSize is a half-letter portrait page
var DefaultPageSize = PageSize{WidthIn: 5.5, HeightIn: 8.5}

// floorEpsilon absorbs float error when W*h/w lands on an integer
const floorEpsilon = 1e-9

// Slice is one page worth of raster rows
type Slice struct {
	Index    int     `json:"index"`
	Y        int     `json:"y"`
	Height   int     `json:"height"`
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
}

// Layout is the page plan for one raster
type Layout struct {
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	PagePixelHeight int      `json:"page_pixel_height"`
	PageSize        PageSize `json:"page_size"`
	Slices          []Slice  `json:"slices"`
}

// PageCount returns the number of pages in the plan
func (l *Layout) PageCount() int {
	return len(l.Slices)
}

// PagePixelHeight returns floor(width * HeightIn / WidthIn): the
// number of raster rows that fill one page when the raster width is mapped
// to the page width.
func PagePixelHeight(width int, size PageSize) int {
	return int(math.Floor(float64(width)*size.HeightIn/size.WidthIn + floorEpsilon))
}

// Plan computes the page slices for a width x height raster. Every page but
// the last holds PagePixelHeight rows; a shorter remainder goes on a last
// page whose physical height is scaled down to match.
func Plan(width, height int, size PageSize) (*Layout, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raster %dx%d", ErrInvalidGeometry, width, height)
	}
	if size.WidthIn <= 0 || size.HeightIn <= 0 {
		return nil, fmt.Errorf("%w: page %gx%gin", ErrInvalidGeometry, size.WidthIn, size.HeightIn)
	}

	ph := PagePixelHeight(width, size)
	if ph <= 0 {
		return nil, fmt.Errorf("%w: page pixel height is zero for width %d", ErrInvalidGeometry, width)
	}

	n := (height + ph - 1) / ph
	layout := &Layout{
		Width:           width,
		Height:          height,
		PagePixelHeight: ph,
		PageSize:        size,
		Slices:          make([]Slice, 0, n),
	}

	for p := 0; p < n; p++ {
		s := Slice{
			Index:    p,
			Y:        p * ph,
			Height:   ph,
			WidthIn:  size.WidthIn,
			HeightIn: size.HeightIn,
		}
		if p == n-1 && height%ph != 0 {
			s.Height = height % ph
			s.HeightIn = float64(s.Height) * size.WidthIn / float64(width)
		}
		layout.Slices = append(layout.Slices, s)
	}

	return layout, nil
}

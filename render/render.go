// Package render places composited GIF frames onto a fixed-size display
// surface: stretched to fill it, centred at 1:1, or tiled from the
// top-left corner.
package render

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/transform"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Mode selects how a frame is laid out on the surface.
type Mode int

const (
	Stretch Mode = iota
	Center
	Tile
)

func (m Mode) String() string {
	switch m {
	case Stretch:
		return "stretch"
	case Center:
		return "center"
	case Tile:
		return "tile"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "stretch", "center" or "tile".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stretch":
		return Stretch, nil
	case "center", "centre":
		return Center, nil
	case "tile":
		return Tile, nil
	}
	return 0, fmt.Errorf("render: unknown mode %q (want stretch, center or tile)", s)
}

// Filter selects the resampling kernel used by Stretch.
type Filter int

const (
	// Bilinear is computed in row bands, one goroutine per band.
	Bilinear Filter = iota
	Nearest
	Lanczos
)

func (f Filter) String() string {
	switch f {
	case Bilinear:
		return "bilinear"
	case Nearest:
		return "nearest"
	case Lanczos:
		return "lanczos"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter accepts "bilinear", "nearest" or "lanczos".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "bilinear":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	case "lanczos":
		return Lanczos, nil
	}
	return 0, fmt.Errorf("render: unknown filter %q (want bilinear, nearest or lanczos)", s)
}

// DefaultWorkers is the number of row bands a bilinear stretch is split
// into when Options.Workers is zero.
const DefaultWorkers = 4

// Options configures a Renderer.
type Options struct {
	// Width and Height are the surface size in pixels.
	Width  int
	Height int

	Mode   Mode
	Filter Filter

	// Workers is the number of concurrent row bands for a bilinear
	// stretch. Zero means DefaultWorkers.
	Workers int
}

var ErrSurfaceSize = errors.New("render: invalid surface size")

// Renderer draws frames onto one reusable surface.
//
// A Renderer is not safe for concurrent use; the surface returned by
// Render is overwritten by the next call.
type Renderer struct {
	opts    Options
	surface *image.RGBA
}

// New returns a Renderer for opts.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSurfaceSize, opts.Width, opts.Height)
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Renderer{
		opts:    opts,
		surface: image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}, nil
}

// Options returns the options in effect, defaults filled in.
func (r *Renderer) Options() Options { return r.opts }

// Render clears the surface to black, draws src onto it and returns it.
func (r *Renderer) Render(src image.Image) *image.RGBA {
	dst := r.surface
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)

	sr := src.Bounds()
	if sr.Empty() {
		return dst
	}
	switch r.opts.Mode {
	case Center:
		r.center(dst, src)
	case Tile:
		r.tile(dst, src)
	default:
		r.stretch(dst, src)
	}
	return dst
}

func (r *Renderer) center(dst *image.RGBA, src image.Image) {
	sr := src.Bounds()
	off := image.Pt((r.opts.Width-sr.Dx())/2, (r.opts.Height-sr.Dy())/2)
	draw.Draw(dst, image.Rectangle{Min: off, Max: off.Add(sr.Size())}, src, sr.Min, draw.Src)
}

func (r *Renderer) tile(dst *image.RGBA, src image.Image) {
	sr := src.Bounds()
	for y := 0; y < r.opts.Height; y += sr.Dy() {
		for x := 0; x < r.opts.Width; x += sr.Dx() {
			draw.Draw(dst, image.Rect(x, y, x+sr.Dx(), y+sr.Dy()), src, sr.Min, draw.Src)
		}
	}
}

func (r *Renderer) stretch(dst *image.RGBA, src image.Image) {
	w, h := r.opts.Width, r.opts.Height
	switch r.opts.Filter {
	case Nearest:
		draw.Draw(dst, dst.Bounds(), transform.Resize(src, w, h, transform.NearestNeighbor), image.Point{}, draw.Src)
	case Lanczos:
		draw.Draw(dst, dst.Bounds(), resize.Resize(uint(w), uint(h), src, resize.Lanczos3), image.Point{}, draw.Src)
	default:
		r.bilinear(dst, src)
	}
}

// bilinear scales src over the whole surface. Each worker owns a band of
// destination rows and writes only into its own sub-image.
func (r *Renderer) bilinear(dst *image.RGBA, src image.Image) {
	sr := src.Bounds()
	sx := float64(r.opts.Width) / float64(sr.Dx())
	sy := float64(r.opts.Height) / float64(sr.Dy())
	s2d := f64.Aff3{
		sx, 0, -sx * float64(sr.Min.X),
		0, sy, -sy * float64(sr.Min.Y),
	}

	var wg sync.WaitGroup
	for _, band := range bands(r.opts.Height, r.opts.Workers) {
		sub := dst.SubImage(image.Rect(0, band[0], r.opts.Width, band[1])).(*image.RGBA)
		wg.Add(1)
		go func() {
			defer wg.Done()
			draw.BiLinear.Transform(sub, s2d, src, sr, draw.Src, nil)
		}()
	}
	wg.Wait()
}

// bands splits height rows into at most n [start, end) ranges. The last
// band takes the remainder.
func bands(height, n int) [][2]int {
	if n > height {
		n = height
	}
	if n < 1 {
		n = 1
	}
	per := height / n
	out := make([][2]int, n)
	for i := range out {
		out[i] = [2]int{i * per, (i + 1) * per}
	}
	out[n-1][1] = height
	return out
}

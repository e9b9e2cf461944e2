package gifwall

import (
	"image"
	"image/color"
	"time"
)

// Frame is one composited animation step: the full canvas in RGB plus how
// long to show it.
//
// Pix belongs to the Decoder and is overwritten by the next call to
// NextFrame. Copy it, or finish with it, before asking for another frame.
type Frame struct {
	Width  int
	Height int
	// Pix holds 3 bytes per pixel, row-major, no padding.
	Pix []byte

	Delay time.Duration

	// Index counts frames from 0 within the current pass over the file.
	Index int
	// Loop counts completed passes over the file.
	Loop int

	Descriptor ImageDescriptor
	// Disposal is the method the file asked for. It is informational:
	// every method is composited as "leave in place".
	Disposal     DisposalMethod
	Transparent  bool
	LocalPalette bool
}

func (f *Frame) ColorModel() color.Model { return color.RGBAModel }

func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f *Frame) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(f.Bounds())) {
		return color.RGBA{}
	}
	i := (y*f.Width + x) * 3
	return color.RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], 0xFF}
}

// ToRGBA converts the frame into dst, allocating a new image when dst is
// nil or the wrong size.
func (f *Frame) ToRGBA(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect != f.Bounds() {
		dst = image.NewRGBA(f.Bounds())
	}
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Width*3 : (y+1)*f.Width*3]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			row[x*4] = src[x*3]
			row[x*4+1] = src[x*3+1]
			row[x*4+2] = src[x*3+2]
			row[x*4+3] = 0xFF
		}
	}
	return dst
}

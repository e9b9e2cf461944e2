package gifwall

import "image"

// IndexPlane is one decoded image: palette indices in top-to-bottom row
// order, placed on the canvas at Rect.
type IndexPlane struct {
	Rect image.Rectangle
	Pix  []byte
	// Decoded is how many indices the data stream delivered, counted in
	// stream order. Pixels past it were never decoded and leave the canvas
	// alone. A complete image has Decoded == len(Pix).
	Decoded int
	// Interlaced tells how stream order maps onto rows.
	Interlaced bool
}

// Compositor keeps the canvas of palette indices that frames are drawn
// onto and turns it into RGB frames.
//
// Every disposal method is treated as "leave in place": whatever a frame
// did not overwrite stays visible under the next one.
type Compositor struct {
	width, height int
	canvas        []byte
	rgb           []byte
	lut           [256]RGB
}

// NewCompositor returns a compositor for a width x height canvas with
// every pixel at index 0.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		width:  width,
		height: height,
		canvas: make([]byte, width*height),
		rgb:    make([]byte, width*height*3),
	}
}

// Reset blanks the canvas back to index 0.
func (c *Compositor) Reset() {
	clear(c.canvas)
}

// Compose draws plane onto the canvas and returns the whole canvas in RGB,
// three bytes per pixel, resolved through pal. gce may be nil.
//
// The returned slice is reused by the next call.
func (c *Compositor) Compose(plane *IndexPlane, pal Palette, gce *GraphicsControl) []byte {
	c.draw(plane, gce)

	pal.lookup(&c.lut)
	for i, idx := range c.canvas {
		col := c.lut[idx]
		c.rgb[i*3] = col.Red
		c.rgb[i*3+1] = col.Green
		c.rgb[i*3+2] = col.Blue
	}
	return c.rgb
}

func (c *Compositor) draw(plane *IndexPlane, gce *GraphicsControl) {
	r := plane.Rect.Intersect(image.Rect(0, 0, c.width, c.height))
	if r.Empty() {
		return
	}
	pw := plane.Rect.Dx()

	// streamRow[y] is the position of frame row y in the data stream.
	var streamRow []int
	if plane.Interlaced {
		streamRow = make([]int, plane.Rect.Dy())
		for i, y := range interlaceRows(plane.Rect.Dy()) {
			streamRow[y] = i
		}
	}

	transparent := gce != nil && gce.Transparent
	for y := r.Min.Y; y < r.Max.Y; y++ {
		fy := y - plane.Rect.Min.Y
		srow := fy
		if streamRow != nil {
			srow = streamRow[fy]
		}
		// Number of leading pixels of this row the stream reached.
		valid := plane.Decoded - srow*pw
		if valid <= 0 {
			continue
		}

		src := plane.Pix[fy*pw : (fy+1)*pw]
		dst := c.canvas[y*c.width : (y+1)*c.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			fx := x - plane.Rect.Min.X
			if fx >= valid {
				break
			}
			idx := src[fx]
			if transparent && idx == gce.TransparentIndex {
				continue
			}
			dst[x] = idx
		}
	}
}

// Package gifwall decodes animated GIF files into an endless sequence of
// composited RGB frames, the way a looping wallpaper player shows them.
//
// A Decoder reads one block at a time. Extensions are skipped except for
// the Graphics Control Extension, which supplies the delay and
// transparency of the image after it. Each image is LZW-decoded,
// deinterlaced when needed, and drawn onto a persistent canvas of palette
// indices; the canvas is then resolved to RGB and handed out as a Frame.
// When the trailer (or the end of the file) is reached the decoder seeks
// back to the first block and starts over with a blank canvas.
package gifwall

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/illusionman1212/gifwall/internal/lzw"
)

// Option configures a Decoder.
type Option func(*Decoder)

// WithLoop sets whether the decoder starts over after the trailer (the
// default) or stops with io.EOF after one pass.
func WithLoop(loop bool) Option {
	return func(d *Decoder) { d.loop = loop }
}

// Decoder walks the blocks of a GIF file and produces frames.
type Decoder struct {
	rs    io.ReadSeeker
	r     *bufio.Reader
	start int64 // offset of the first block after the global palette

	header Header
	global Palette
	loop   bool

	pending *GraphicsControl
	lzw     lzw.Decoder
	comp    *Compositor

	compressed []byte
	indices    []byte
	ordered    []byte
	frame      Frame

	frames int // frames produced in the current pass
	loops  int
	err    error // sticky
}

// NewDecoder reads the header, logical screen descriptor and global color
// table from rs. It returns an error wrapping ErrNotAGif if rs does not
// hold a GIF.
func NewDecoder(rs io.ReadSeeker, opts ...Option) (*Decoder, error) {
	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("gifwall: locating stream start: %w", err)
	}

	d := &Decoder{
		rs:   rs,
		r:    bufio.NewReader(rs),
		loop: true,
	}
	for _, opt := range opts {
		opt(d)
	}

	headerData := make([]byte, headerSize)
	if _, err := io.ReadFull(d.r, headerData); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrNotAGif, err)
	}
	if err := binary.Read(bytes.NewReader(headerData), binary.LittleEndian, &d.header); err != nil {
		return nil, fmt.Errorf("%w: parsing header: %v", ErrNotAGif, err)
	}
	if string(d.header.Signature[:]) != "GIF" {
		return nil, fmt.Errorf("%w: signature %q", ErrNotAGif, d.header.Signature[:])
	}

	d.start = base + headerSize
	if d.header.HasGlobalTable() {
		entries := d.header.GlobalTableEntries()
		d.global, err = readPalette(d.r, entries)
		if err != nil {
			return nil, fmt.Errorf("gifwall: reading global color table: %w", err)
		}
		d.start += int64(entries * 3)
	}

	d.comp = NewCompositor(d.Width(), d.Height())
	return d, nil
}

// Header returns the file header and logical screen descriptor.
func (d *Decoder) Header() Header { return d.header }

// Version returns "87a" or "89a" as written in the file.
func (d *Decoder) Version() string { return string(d.header.Version[:]) }

// Width returns the canvas width.
func (d *Decoder) Width() int { return int(d.header.ScreenWidth) }

// Height returns the canvas height.
func (d *Decoder) Height() int { return int(d.header.ScreenHeight) }

// Global returns the global color table, or nil if the file has none.
func (d *Decoder) Global() Palette { return d.global }

// Loops returns how many full passes over the file have completed.
func (d *Decoder) Loops() int { return d.loops }

// NextFrame decodes blocks up to and including the next image and returns
// the composited canvas.
//
// Errors wrapping ErrTruncatedStream come with a valid frame when the file
// ends inside image data, and with a nil frame when it ends inside a
// descriptor, color table or extension; either way the next call carries
// on as if the trailer had been reached. Errors wrapping ErrCorruptStream
// drop the image but leave the decoder on the next block, so NextFrame can
// be called again. ErrUnsupportedBlock and ErrNoFrames are final, as is
// io.EOF when looping is off.
func (d *Decoder) NextFrame() (*Frame, error) {
	if d.err != nil {
		return nil, d.err
	}
	for {
		tag, err := d.r.ReadByte()
		if err == io.EOF {
			tag = TRAILER
		} else if err != nil {
			return nil, fmt.Errorf("gifwall: reading block tag: %w", err)
		}

		switch tag {
		case IMAGE_DESCRIPTOR:
			return d.readImage()
		case EXTENSION_BLOCK:
			if err := d.readExtension(); err != nil {
				return nil, err
			}
		case TRAILER:
			if err := d.rewind(); err != nil {
				return nil, err
			}
		default:
			d.err = fmt.Errorf("%w: tag 0x%02X", ErrUnsupportedBlock, tag)
			return nil, d.err
		}
	}
}

// rewind ends a pass over the file.
func (d *Decoder) rewind() error {
	if !d.loop {
		d.err = io.EOF
		return d.err
	}
	if d.frames == 0 {
		d.err = ErrNoFrames
		return d.err
	}
	if _, err := d.rs.Seek(d.start, io.SeekStart); err != nil {
		d.err = fmt.Errorf("gifwall: rewinding: %w", err)
		return d.err
	}
	d.r.Reset(d.rs)
	d.comp.Reset()
	d.pending = nil
	d.frames = 0
	d.loops++
	return nil
}

func (d *Decoder) readExtension() error {
	label, err := readByte(d.r)
	if err != nil {
		return truncated("reading extension label", err)
	}
	if label != GRAPHICS_CONTROL_BLOCK {
		if err := skipSubBlocks(d.r); err != nil {
			return truncated(fmt.Sprintf("skipping extension 0x%02X", label), err)
		}
		return nil
	}

	size, err := readByte(d.r)
	if err != nil {
		return truncated("reading graphics control", err)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return truncated("reading graphics control", err)
	}
	// A short block replaces any earlier control that no image consumed.
	d.pending = nil
	if size >= GRAPHICS_CONTROL_BLOCK_SIZE {
		block := GraphicsControlBlock{}
		if err := binary.Read(bytes.NewReader(data[:GRAPHICS_CONTROL_BLOCK_SIZE]), binary.LittleEndian, &block); err != nil {
			return truncated("parsing graphics control", err)
		}
		d.pending = block.parse()
	}
	// The terminator, plus anything an odd encoder appended.
	if err := skipSubBlocks(d.r); err != nil {
		return truncated("reading graphics control", err)
	}
	return nil
}

func (d *Decoder) readImage() (*Frame, error) {
	gce := d.pending
	d.pending = nil

	var desc ImageDescriptor
	if err := binary.Read(d.r, binary.LittleEndian, &desc); err != nil {
		return nil, truncated("reading image descriptor", err)
	}

	pal := d.global
	if desc.HasLocalTable() {
		local, err := readPalette(d.r, desc.LocalTableEntries())
		if err != nil {
			return nil, truncated("reading local color table", err)
		}
		pal = local
	}

	litWidth, err := readByte(d.r)
	if err != nil {
		return nil, truncated("reading LZW minimum code size", err)
	}
	// A file cut off inside the image data still gets what it holds
	// decoded; the short stream shows up as truncated LZW data.
	d.compressed, err = readSubBlocks(d.r, d.compressed[:0])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("gifwall: reading image data: %w", err)
	}

	w, h := int(desc.Width), int(desc.Height)
	n := w * h
	d.indices = grow(d.indices, n)
	decoded, err := d.lzw.Decode(d.indices, d.compressed, int(litWidth))
	if errors.Is(err, lzw.ErrCorrupt) {
		return nil, fmt.Errorf("%w: image %d: %w", ErrCorruptStream, d.frames, err)
	}
	clear(d.indices[decoded:])

	plane := IndexPlane{
		Rect:       image.Rect(int(desc.Left), int(desc.Top), int(desc.Left)+w, int(desc.Top)+h),
		Pix:        d.indices,
		Decoded:    decoded,
		Interlaced: desc.Interlaced(),
	}
	if plane.Interlaced {
		d.ordered = grow(d.ordered, n)
		Deinterlace(d.ordered, d.indices, w, h)
		plane.Pix = d.ordered
	}

	d.frame = Frame{
		Width:        d.Width(),
		Height:       d.Height(),
		Pix:          d.comp.Compose(&plane, pal, gce),
		Delay:        DefaultDelay,
		Index:        d.frames,
		Loop:         d.loops,
		Descriptor:   desc,
		LocalPalette: desc.HasLocalTable(),
	}
	if gce != nil {
		d.frame.Delay = gce.Delay
		d.frame.Disposal = gce.Disposal
		d.frame.Transparent = gce.Transparent
	}
	d.frames++

	if err != nil {
		return &d.frame, fmt.Errorf("%w: image %d: %w", ErrTruncatedStream, d.frame.Index, err)
	}
	return &d.frame, nil
}

// truncated classifies a failed read. Running out of input is a frame
// error: the next NextFrame call sees the end of the file and rewinds.
func truncated(what string, err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: %w", ErrTruncatedStream, what, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("gifwall: %s: %w", what, err)
}

// grow returns b resized to n, reusing its storage when it is big enough.
func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}

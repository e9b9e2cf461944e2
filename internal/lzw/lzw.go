// Package lzw implements the variable-width LZW decompression used by GIF
// image data.
//
// Unlike compress/lzw, the Decoder works over a complete in-memory
// compressed buffer, reports how many indices it produced when the stream
// ends early, and keeps its code table in the Decoder value so one Decoder
// can be reused frame after frame without allocating.
package lzw

import (
	"errors"
	"fmt"

	"github.com/illusionman1212/gifwall/internal/bitio"
)

const (
	maxWidth = bitio.MaxCodeWidth
	// TableSize is the number of codes addressable at maxWidth.
	TableSize = 1 << maxWidth

	noCode = -1
)

var (
	// ErrCorrupt is returned for codes that are neither in the table nor
	// the next code to be assigned, and for invalid minimum code sizes.
	ErrCorrupt = errors.New("lzw: corrupt stream")
	// ErrTruncated is returned when the stream ends, by End Code or by
	// running out of data, before the output quota is reached.
	ErrTruncated = errors.New("lzw: truncated stream")
)

type entry struct {
	prefix int16
	suffix byte
}

// Decoder holds the code table and decode state for one stream at a time.
// The zero value is ready to use.
type Decoder struct {
	table [TableSize]entry
	// stack is the scratch arena a code's byte sequence is rebuilt in,
	// last byte first. A sequence never exceeds TableSize bytes.
	stack [TableSize]byte

	br bitio.LSBReader

	minCodeSize int
	clear       int
	end         int
	size        int // table entries in use, including literals and control codes
	width       uint
	prev        int

	out []byte
	n   int
}

// Decode decompresses src, coded with the given minimum code size, into
// dst and returns the number of indices written. Decoding stops as soon as
// dst is full; whatever the stream still holds is ignored.
//
// When the stream stops short of len(dst), n reports the indices decoded
// and the error wraps ErrTruncated. Invalid codes return an error wrapping
// ErrCorrupt.
func (d *Decoder) Decode(dst, src []byte, minCodeSize int) (n int, err error) {
	if minCodeSize < 1 || minCodeSize > 8 {
		return 0, fmt.Errorf("%w: minimum code size %d", ErrCorrupt, minCodeSize)
	}
	d.init(dst, minCodeSize)
	d.br.Reset(src)

	for d.n < len(d.out) {
		code, ok := d.br.Read(d.width)
		if !ok {
			return d.n, fmt.Errorf("%w: data exhausted after %d of %d indices", ErrTruncated, d.n, len(d.out))
		}
		if code == d.end {
			return d.n, fmt.Errorf("%w: end code after %d of %d indices", ErrTruncated, d.n, len(d.out))
		}
		if err := d.step(code); err != nil {
			return d.n, err
		}
	}
	return d.n, nil
}

func (d *Decoder) init(dst []byte, minCodeSize int) {
	d.minCodeSize = minCodeSize
	d.clear = 1 << minCodeSize
	d.end = d.clear + 1
	for i := 0; i < d.clear; i++ {
		d.table[i] = entry{prefix: noCode, suffix: byte(i)}
	}
	d.out = dst
	d.n = 0
	d.reset()
}

// reset handles a Clear Code.
func (d *Decoder) reset() {
	d.width = uint(d.minCodeSize + 1)
	d.size = d.end + 1
	d.prev = noCode
}

// step consumes one code other than End Code.
func (d *Decoder) step(code int) error {
	switch {
	case code == d.clear:
		d.reset()
		return nil
	case code < d.size && code != d.end:
		first := d.emit(code)
		if d.prev != noCode {
			d.add(d.prev, first)
		}
	case code == d.size && d.prev != noCode:
		// KwKwK: the code being defined right now. Its sequence is the
		// previous sequence followed by that sequence's first byte.
		first := d.firstByte(d.prev)
		d.add(d.prev, first)
		d.emit(code)
	default:
		return fmt.Errorf("%w: code %d with table size %d", ErrCorrupt, code, d.size)
	}
	d.prev = code
	return nil
}

// emit writes the sequence for code to the output, stopping at the quota,
// and returns the sequence's first byte.
func (d *Decoder) emit(code int) byte {
	sp := 0
	for code >= d.clear {
		e := d.table[code]
		d.stack[sp] = e.suffix
		sp++
		code = int(e.prefix)
	}
	first := byte(code)
	d.stack[sp] = first
	sp++

	for sp > 0 && d.n < len(d.out) {
		sp--
		d.out[d.n] = d.stack[sp]
		d.n++
	}
	return first
}

func (d *Decoder) firstByte(code int) byte {
	for code >= d.clear {
		code = int(d.table[code].prefix)
	}
	return byte(code)
}

// add appends an entry and widens codes once the table outgrows the
// current width. A full table stops growing until the next Clear Code.
func (d *Decoder) add(prefix int, suffix byte) {
	if d.size >= TableSize {
		return
	}
	d.table[d.size] = entry{prefix: int16(prefix), suffix: suffix}
	d.size++
	if d.size > 1<<d.width-1 && d.width < maxWidth {
		d.width++
	}
}

// Package bitio reads the variable-width codes of a GIF LZW stream.
package bitio

// MaxCodeWidth is the widest code a GIF LZW stream can carry.
const MaxCodeWidth = 12

// LSBReader extracts codes packed least-significant-bit first.
//
// GIF packs each code starting at the lowest unused bit of the current
// byte, spilling into the next byte when it runs out. The reader keeps the
// not-yet-consumed bits of the bytes it has loaded in acc.
type LSBReader struct {
	buf   []byte // compressed input
	pos   int    // next byte to load
	acc   uint32 // loaded bits, lowest first
	nbits uint   // number of valid bits in acc
}

// NewLSBReader creates an LSBReader over data.
func NewLSBReader(data []byte) *LSBReader {
	return &LSBReader{buf: data}
}

// Reset points the reader at data and drops any buffered bits.
func (br *LSBReader) Reset(data []byte) {
	br.buf = data
	br.pos = 0
	br.acc = 0
	br.nbits = 0
}

// Read returns the next width-bit code (1..12). ok is false when the
// buffer does not hold width more bits or width is out of range; no bits
// are consumed in that case.
func (br *LSBReader) Read(width uint) (code int, ok bool) {
	if width == 0 || width > MaxCodeWidth {
		return 0, false
	}
	for br.nbits < width {
		if br.pos >= len(br.buf) {
			return 0, false
		}
		br.acc |= uint32(br.buf[br.pos]) << br.nbits
		br.pos++
		br.nbits += 8
	}
	code = int(br.acc & (1<<width - 1))
	br.acc >>= width
	br.nbits -= width
	return code, true
}

// BitsLeft reports how many unread bits remain, buffered or not.
func (br *LSBReader) BitsLeft() int {
	return int(br.nbits) + 8*(len(br.buf)-br.pos)
}

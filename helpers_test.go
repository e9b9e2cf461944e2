package gifwall

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"math/bits"
	"testing"
)

var blackRed = Palette{{0, 0, 0}, {255, 0, 0}}

// testGIF assembles GIF files block by block.
type testGIF struct {
	bytes.Buffer
}

func tableSizeBits(p Palette) byte {
	return byte(bits.Len(uint(len(p)-1)) - 1)
}

func newTestGIF(width, height int, global Palette) *testGIF {
	g := &testGIF{}
	var packed byte
	if global != nil {
		packed = 0x80 | tableSizeBits(global)
	}
	binary.Write(g, binary.LittleEndian, Header{
		Signature:    [3]byte{'G', 'I', 'F'},
		Version:      [3]byte{'8', '9', 'a'},
		ScreenWidth:  uint16(width),
		ScreenHeight: uint16(height),
		Packed:       packed,
	})
	if global != nil {
		data, _ := global.MarshalBinary()
		g.Write(data)
	}
	return g
}

func (g *testGIF) gce(packed byte, delay uint16, transparent byte) *testGIF {
	g.Write([]byte{EXTENSION_BLOCK, GRAPHICS_CONTROL_BLOCK, GRAPHICS_CONTROL_BLOCK_SIZE, packed})
	binary.Write(g, binary.LittleEndian, delay)
	g.Write([]byte{transparent, 0})
	return g
}

func (g *testGIF) extension(label byte, payload []byte) *testGIF {
	g.Write([]byte{EXTENSION_BLOCK, label})
	g.subBlocks(payload)
	return g
}

func (g *testGIF) subBlocks(data []byte) {
	for len(data) > 0 {
		n := len(data)
		if n > 255 {
			n = 255
		}
		g.WriteByte(byte(n))
		g.Write(data[:n])
		data = data[n:]
	}
	g.WriteByte(0)
}

// image writes an image descriptor, optional local table, minimum code
// size and the compressed data.
func (g *testGIF) image(rect [4]int, interlaced bool, local Palette, litWidth byte, data []byte) *testGIF {
	g.WriteByte(IMAGE_DESCRIPTOR)
	var packed byte
	if local != nil {
		packed |= 0x80 | tableSizeBits(local)
	}
	if interlaced {
		packed |= 0x40
	}
	binary.Write(g, binary.LittleEndian, ImageDescriptor{
		Left: uint16(rect[0]), Top: uint16(rect[1]),
		Width: uint16(rect[2]), Height: uint16(rect[3]),
		Packed: packed,
	})
	if local != nil {
		b, _ := local.MarshalBinary()
		g.Write(b)
	}
	g.WriteByte(litWidth)
	g.subBlocks(data)
	return g
}

func (g *testGIF) trailer() *testGIF {
	g.WriteByte(TRAILER)
	return g
}

func (g *testGIF) decoder(t *testing.T, opts ...Option) *Decoder {
	t.Helper()
	d, err := NewDecoder(bytes.NewReader(g.Bytes()), opts...)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	return d
}

// compress LZW-encodes indices with the standard library encoder.
func compress(t *testing.T, indices []byte, litWidth int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.LSB, litWidth)
	if _, err := w.Write(indices); err != nil {
		t.Fatalf("lzw encode: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzw encode: %v", err)
	}
	return buf.Bytes()
}

func rgbOf(p Palette, indices ...byte) []byte {
	out := make([]byte, 0, len(indices)*3)
	for _, i := range indices {
		out = append(out, p[i].Red, p[i].Green, p[i].Blue)
	}
	return out
}

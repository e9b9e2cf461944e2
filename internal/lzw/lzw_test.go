package lzw

import (
	"bytes"
	stdlzw "compress/lzw"
	"errors"
	"math/rand"
	"testing"
)

// codeWriter packs codes LSB-first the way a GIF encoder does.
type codeWriter struct {
	buf []byte
	acc uint32
	n   uint
}

func (w *codeWriter) write(code int, width uint) {
	w.acc |= uint32(code) << w.n
	w.n += width
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc))
		w.acc >>= 8
		w.n -= 8
	}
}

func (w *codeWriter) bytes() []byte {
	if w.n > 0 {
		return append(w.buf, byte(w.acc))
	}
	return w.buf
}

func encode(t *testing.T, data []byte, litWidth int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := stdlzw.NewWriter(&buf, stdlzw.LSB, litWidth)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("reference encoder: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("reference encoder close: %v", err)
	}
	return buf.Bytes()
}

func TestDecode_HandPacked(t *testing.T) {
	// Clear, 0, 1, 1 at width 3; the table reaches 8 entries so 0 and End
	// are written at width 4.
	src := []byte{0x44, 0x02, 0x05}
	dst := make([]byte, 4)
	var d Decoder
	n, err := d.Decode(dst, src, 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	if !bytes.Equal(dst, []byte{0, 1, 1, 0}) {
		t.Errorf("dst = %v, want [0 1 1 0]", dst)
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var d Decoder
	for litWidth := 2; litWidth <= 8; litWidth++ {
		for _, size := range []int{1, 2, 17, 300, 5000, 70000} {
			data := make([]byte, size)
			for i := range data {
				// Skew towards runs so the table gets long sequences.
				if i > 0 && rng.Intn(3) > 0 {
					data[i] = data[i-1]
				} else {
					data[i] = byte(rng.Intn(1 << litWidth))
				}
			}
			src := encode(t, data, litWidth)
			dst := make([]byte, size)
			n, err := d.Decode(dst, src, litWidth)
			if err != nil {
				t.Fatalf("litWidth=%d size=%d: Decode: %v", litWidth, size, err)
			}
			if n != size || !bytes.Equal(dst, data) {
				t.Fatalf("litWidth=%d size=%d: round trip mismatch (n=%d)", litWidth, size, n)
			}
		}
	}
}

func TestDecode_DoubleClear(t *testing.T) {
	var w codeWriter
	w.write(4, 3)
	w.write(4, 3)
	w.write(0, 3)
	w.write(1, 3)
	w.write(1, 3)
	w.write(0, 4)
	w.write(5, 4)

	dst := make([]byte, 4)
	var d Decoder
	n, err := d.Decode(dst, w.bytes(), 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 4 || !bytes.Equal(dst, []byte{0, 1, 1, 0}) {
		t.Errorf("dst = %v (n=%d), want [0 1 1 0]", dst, n)
	}
}

func TestDecode_KwKwK(t *testing.T) {
	var w codeWriter
	w.write(4, 3)
	w.write(0, 3)
	w.write(6, 3) // not yet in the table
	w.write(5, 3)

	dst := make([]byte, 3)
	var d Decoder
	n, err := d.Decode(dst, w.bytes(), 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 3 || !bytes.Equal(dst, []byte{0, 0, 0}) {
		t.Errorf("dst = %v (n=%d), want [0 0 0]", dst, n)
	}
}

func TestDecode_QuotaDropsExcess(t *testing.T) {
	src := []byte{0x44, 0x02, 0x05}
	dst := make([]byte, 2)
	var d Decoder
	n, err := d.Decode(dst, src, 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 2 || !bytes.Equal(dst, []byte{0, 1}) {
		t.Errorf("dst = %v (n=%d), want [0 1]", dst, n)
	}

	// A single code whose sequence overruns the quota is cut mid-sequence.
	var w codeWriter
	w.write(4, 3)
	w.write(0, 3)
	w.write(6, 3) // expands to 0 0
	dst = make([]byte, 2)
	n, err = d.Decode(dst, w.bytes(), 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestDecode_Truncated(t *testing.T) {
	tests := []struct {
		name  string
		codes [][2]int
		want  int
	}{
		{"data exhausted", [][2]int{{4, 3}, {0, 3}}, 1},
		{"early end code", [][2]int{{4, 3}, {1, 3}, {5, 3}}, 1},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w codeWriter
			for _, c := range tt.codes {
				w.write(c[0], uint(c[1]))
			}
			dst := make([]byte, 4)
			var d Decoder
			n, err := d.Decode(dst, w.bytes(), 2)
			if !errors.Is(err, ErrTruncated) {
				t.Fatalf("err = %v, want ErrTruncated", err)
			}
			if n != tt.want {
				t.Errorf("n = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name  string
		codes [][2]int
	}{
		{"code past next entry", [][2]int{{4, 3}, {0, 3}, {7, 3}}},
		{"next entry without previous code", [][2]int{{4, 3}, {6, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w codeWriter
			for _, c := range tt.codes {
				w.write(c[0], uint(c[1]))
			}
			dst := make([]byte, 4)
			var d Decoder
			if _, err := d.Decode(dst, w.bytes(), 2); !errors.Is(err, ErrCorrupt) {
				t.Errorf("err = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestDecode_InvalidMinCodeSize(t *testing.T) {
	var d Decoder
	for _, m := range []int{0, 9, 12} {
		if _, err := d.Decode(make([]byte, 1), []byte{0}, m); !errors.Is(err, ErrCorrupt) {
			t.Errorf("minCodeSize=%d: err = %v, want ErrCorrupt", m, err)
		}
	}
}

func TestDecoder_ClearResetsState(t *testing.T) {
	var d Decoder
	d.init(make([]byte, 1024), 4)
	for i := 0; i < 40; i++ {
		if err := d.step(i % 16); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if d.width == 5 {
		t.Fatalf("width did not grow after 40 codes")
	}
	if err := d.step(d.clear); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if d.width != 5 {
		t.Errorf("width after clear = %d, want 5", d.width)
	}
	if d.size != d.clear+2 {
		t.Errorf("size after clear = %d, want %d", d.size, d.clear+2)
	}
	if d.prev != noCode {
		t.Errorf("prev after clear = %d, want none", d.prev)
	}
}

func TestDecoder_WidthGrowthBoundaries(t *testing.T) {
	expected := func(size int) uint {
		switch {
		case size <= 1<<9-1:
			return 9
		case size <= 1<<10-1:
			return 10
		case size <= 1<<11-1:
			return 11
		default:
			return 12
		}
	}

	var d Decoder
	d.init(make([]byte, 1<<16), 8)
	grewAt := map[uint]int{}
	last := d.width
	for i := 0; i < 5000; i++ {
		if err := d.step(i % 256); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if d.size > TableSize {
			t.Fatalf("table size %d exceeds %d", d.size, TableSize)
		}
		if d.width != expected(d.size) {
			t.Fatalf("size %d: width = %d, want %d", d.size, d.width, expected(d.size))
		}
		if d.width != last {
			grewAt[d.width] = d.size
			last = d.width
		}
	}
	want := map[uint]int{10: 512, 11: 1024, 12: 2048}
	for w, size := range want {
		if grewAt[w] != size {
			t.Errorf("width %d reached at table size %d, want %d", w, grewAt[w], size)
		}
	}
	if d.size != TableSize || d.width != 12 {
		t.Errorf("final size=%d width=%d, want %d and 12", d.size, d.width, TableSize)
	}
}

func TestDecoder_Reuse(t *testing.T) {
	var d Decoder
	first := encode(t, bytes.Repeat([]byte{3, 1, 2}, 500), 2)
	dst := make([]byte, 1500)
	if _, err := d.Decode(dst, first, 2); err != nil {
		t.Fatalf("first Decode: %v", err)
	}

	data := []byte{9, 9, 200, 7, 9, 9, 200}
	dst = make([]byte, len(data))
	if _, err := d.Decode(dst, encode(t, data, 8), 8); err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if !bytes.Equal(dst, data) {
		t.Errorf("dst = %v, want %v", dst, data)
	}
}

package gifwall

import (
	"fmt"
	"io"
)

func (v Palette) UnmarshalBinary(data []byte) error {
	if len(v)*3 != len(data) {
		return fmt.Errorf("len is not valid. required: %d, actual: %d", len(v)*3, len(data))
	}
	for i := 0; i < len(v); i++ {
		v[i].Red = data[i*3]
		v[i].Green = data[i*3+1]
		v[i].Blue = data[i*3+2]
	}
	return nil
}

func (v Palette) MarshalBinary() ([]byte, error) {
	data := make([]byte, len(v)*3)

	for i := 0; i < len(v); i++ {
		data[i*3] = v[i].Red
		data[i*3+1] = v[i].Green
		data[i*3+2] = v[i].Blue
	}

	return data, nil
}

// readPalette reads a color table of the given number of entries.
func readPalette(r io.Reader, entries int) (Palette, error) {
	data := make([]byte, entries*3)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	p := make(Palette, entries)
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// lookup expands p to a full 256-entry table. Indices the palette does not
// cover map to black.
func (v Palette) lookup(dst *[256]RGB) {
	n := copy(dst[:], v)
	for i := n; i < len(dst); i++ {
		dst[i] = RGB{}
	}
}

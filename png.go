package gifwall

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"io"
	"os"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// writeChunk writes one PNG chunk: length, type, data and the CRC-32 of
// type and data.
func writeChunk(w io.Writer, chunkType string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(data)))
	copy(header[4:8], chunkType)

	hash := make([]byte, 4)
	binary.BigEndian.PutUint32(hash, crc32.Update(crc32.ChecksumIEEE(header[4:8]), crc32.IEEETable, data))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(hash)
	return err
}

func writeIHDR(w io.Writer, width, height int) error {
	bitDepth := byte(0x8)          // bits per sample
	colorType := byte(0x2)         // 2 is truecolor: three samples per pixel, no alpha
	compressionMethod := byte(0x0) // always 0
	filterMethod := byte(0x0)      // always 0
	interlaceMethod := byte(0x0)   // 0 or 1

	chunkData := make([]byte, 13)
	binary.BigEndian.PutUint32(chunkData[0:4], uint32(width))
	binary.BigEndian.PutUint32(chunkData[4:8], uint32(height))
	chunkData[8] = bitDepth
	chunkData[9] = colorType
	chunkData[10] = compressionMethod
	chunkData[11] = filterMethod
	chunkData[12] = interlaceMethod

	return writeChunk(w, "IHDR", chunkData)
}

// serialize prefixes every row of packed RGB with filter type 0.
func serialize(img image.Image) []byte {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	out := make([]byte, 0, (width*3+1)*height)

	switch src := img.(type) {
	case *Frame:
		for y := 0; y < height; y++ {
			out = append(out, 0)
			out = append(out, src.Pix[y*width*3:(y+1)*width*3]...)
		}
	case *image.RGBA:
		for y := 0; y < height; y++ {
			out = append(out, 0)
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < width; x++ {
				out = append(out, row[x*4], row[x*4+1], row[x*4+2])
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			out = append(out, 0)
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, _ := img.At(x, y).RGBA()
				out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8))
			}
		}
	}
	return out
}

func writeIDAT(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buf, zlib.BestSpeed)
	if err != nil {
		return err
	}
	if _, err := writer.Write(serialize(img)); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	return writeChunk(w, "IDAT", buf.Bytes())
}

func writeIEND(w io.Writer) error {
	return writeChunk(w, "IEND", nil)
}

// EncodePNG writes img as an 8-bit truecolor PNG. Alpha is dropped.
func EncodePNG(w io.Writer, img image.Image) error {
	b := img.Bounds()
	if _, err := w.Write(pngSignature); err != nil {
		return err
	}
	if err := writeIHDR(w, b.Dx(), b.Dy()); err != nil {
		return err
	}
	if err := writeIDAT(w, img); err != nil {
		return err
	}
	return writeIEND(w)
}

// WriteToPNG writes img to a PNG file at fileName, replacing any existing
// file.
func WriteToPNG(img image.Image, fileName string) error {
	pngFile, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := EncodePNG(pngFile, img); err != nil {
		pngFile.Close()
		return err
	}
	return pngFile.Close()
}

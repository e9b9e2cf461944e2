package gifwall

import "io"

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	n, err := r.Read(buf[:])
	if n == 0 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return buf[0], nil
}

func (v *blockReader) readNextBlock() error {
	v.bufLen, v.bufNext = 0, 0
	blockSize, err := readByte(v.r)
	if err != nil {
		return err
	}
	if blockSize == 0 {
		return io.EOF
	}
	n, err := io.ReadFull(v.r, v.buf[:blockSize])
	v.bufLen = n
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Read implements io.Reader over the payload of a sub-block run. It
// returns io.EOF at the zero-length terminator and io.ErrUnexpectedEOF if
// the input ends first.
func (v *blockReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if v.bufNext >= v.bufLen {
		err = v.readNextBlock()
		if err != nil {
			return 0, err
		}
	}
	n = copy(p, v.buf[v.bufNext:v.bufLen])
	v.bufNext += n
	return
}

// blockReader streams the payload bytes of a run of GIF data sub-blocks.
type blockReader struct {
	buf     [255]byte
	bufLen  int
	bufNext int
	r       io.Reader
}

func newBlockReader(r io.Reader) *blockReader {
	return &blockReader{
		r: r,
	}
}

// readSubBlocks appends the concatenated payload of a sub-block run to dst.
// On a short input it returns what was gathered along with the error.
func readSubBlocks(r io.Reader, dst []byte) ([]byte, error) {
	br := newBlockReader(r)
	for {
		if br.bufNext >= br.bufLen {
			if err := br.readNextBlock(); err != nil {
				if err == io.EOF {
					return dst, nil
				}
				// Keep whatever part of the last block arrived.
				return append(dst, br.buf[:br.bufLen]...), err
			}
		}
		dst = append(dst, br.buf[br.bufNext:br.bufLen]...)
		br.bufNext = br.bufLen
	}
}

// skipSubBlocks discards a sub-block run, terminator included.
func skipSubBlocks(r io.Reader) error {
	_, err := io.Copy(io.Discard, newBlockReader(r))
	return err
}

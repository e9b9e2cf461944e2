package gifwall

import "errors"

var (
	// ErrNotAGif means the stream does not start with a GIF signature.
	// Nothing is decoded.
	ErrNotAGif = errors.New("gifwall: not a gif file")
	// ErrUnsupportedBlock means a top-level block tag was not an image,
	// an extension or the trailer. The stream position is lost, so the
	// decoder stops for good.
	ErrUnsupportedBlock = errors.New("gifwall: unsupported block")
	// ErrCorruptStream means an image's LZW data is invalid. Only that
	// image is dropped; decoding can continue with the next block.
	ErrCorruptStream = errors.New("gifwall: corrupt image data")
	// ErrTruncatedStream means the file ended early. Inside image data the
	// frame is still composited from what was decoded; anywhere else no
	// frame is returned. The next call starts the following pass.
	ErrTruncatedStream = errors.New("gifwall: truncated image data")
	// ErrNoFrames means a whole pass over the file produced no image.
	ErrNoFrames = errors.New("gifwall: no frames")
)

// IsFrameError reports whether err only concerns a single frame, so the
// caller can keep asking for frames.
func IsFrameError(err error) bool {
	return errors.Is(err, ErrCorruptStream) || errors.Is(err, ErrTruncatedStream)
}

package gifwall

import "time"

const (
	EXTENSION_BLOCK = 0x21

	GRAPHICS_CONTROL_BLOCK      = 0xF9
	GRAPHICS_CONTROL_BLOCK_SIZE = 0x04

	PLAINTEXT_BLOCK   = 0x01
	APPLICATION_BLOCK = 0xFF
	COMMENT_BLOCK     = 0xFE

	IMAGE_DESCRIPTOR = 0x2C
	TRAILER          = 0x3B
)

const (
	headerSize = 13

	// DefaultDelay is how long a frame without a Graphics Control
	// Extension is shown.
	DefaultDelay = 100 * time.Millisecond
	// MinDelay is the shortest frame duration handed out, whatever the
	// file declares.
	MinDelay = 20 * time.Millisecond
)

/*
HeaderPacked {
	0-2: 	GlobalColorTableSize
	  3: 	ColorTableSortFlag   | Only valid under 89a, 87a always sets it to 0
	4-6:	ColorResolution
	  7:	GlobalColorTableFlag
}
*/

type Header struct {
	Signature [3]byte // "GIF"
	Version   [3]byte // "87a" or "89a"

	// Logical Screen Descriptor
	ScreenWidth     uint16
	ScreenHeight    uint16
	Packed          byte
	BackgroundColor byte // unused if GlobalColorTableFlag is unset
	AspectRatio     byte
}

// HasGlobalTable reports whether a global color table follows the header.
func (h Header) HasGlobalTable() bool { return h.Packed&0x80 != 0 }

// GlobalTableEntries is the number of RGB entries in the global color table.
func (h Header) GlobalTableEntries() int { return 1 << ((h.Packed & 7) + 1) }

// RGB is one color table entry.
type RGB struct {
	Red   byte
	Green byte
	Blue  byte
}

// Palette is a color table: 2 to 256 entries, always a power of two when
// read from a file.
type Palette []RGB

/*
ImageDescriptorPacked {
	7:   LocalColorTableFlag | this flag is set (1) if the image contains a local color table
	6:   InterlaceFlag       | this flag is set (1) if the image is interlaced
	5:   SortFlag            | this flag is set (1) if the color table is sorted by importance (frequency of occurrence). only available on 89a
	3-4: Reserved
	0-2: LocalColorTableEntrySize
}
*/

type ImageDescriptor struct {
	Left   uint16 // X position of image
	Top    uint16 // Y position of image
	Width  uint16 // width of image in pixels
	Height uint16 // height of image in pixels
	Packed byte   // image and color table data information
}

func (d ImageDescriptor) HasLocalTable() bool { return d.Packed&0x80 != 0 }
func (d ImageDescriptor) Interlaced() bool { return d.Packed&0x40 != 0 }
func (d ImageDescriptor) LocalTableEntries() int { return 1 << ((d.Packed & 7) + 1) }

/*
GraphicsControlPacked {
	0:   TransparentColorFlag
	1:   UserInputFlag
	2-4: DisposalMethod
	5-7: Reserved
}
*/

type GraphicsControlBlock struct {
	Packed                byte   // method of graphics disposal to use
	DelayTime             uint16 // delay to wait, in hundredths of a second
	TransparentColorIndex byte   // transparent color index
}

// DisposalMethod is what a frame asks to happen to its rectangle before
// the next frame is drawn.
type DisposalMethod byte

const (
	DisposalUnspecified DisposalMethod = 0
	DisposalNone        DisposalMethod = 1 // leave in place
	DisposalBackground  DisposalMethod = 2 // restore to background
	DisposalPrevious    DisposalMethod = 3 // restore to previous
)

func (m DisposalMethod) String() string {
	switch m {
	case DisposalUnspecified:
		return "unspecified"
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	}
	return "reserved"
}

// GraphicsControl is a parsed Graphics Control Extension. It applies to
// the first image that follows it and to no other.
type GraphicsControl struct {
	Disposal         DisposalMethod
	UserInput        bool
	Transparent      bool
	TransparentIndex byte
	// Delay is already clamped to MinDelay.
	Delay time.Duration
}

func (b GraphicsControlBlock) parse() *GraphicsControl {
	delay := time.Duration(b.DelayTime) * 10 * time.Millisecond
	if delay < MinDelay {
		delay = MinDelay
	}
	return &GraphicsControl{
		Disposal:         DisposalMethod((b.Packed >> 2) & 7),
		UserInput:        b.Packed&0x02 != 0,
		Transparent:      b.Packed&0x01 != 0,
		TransparentIndex: b.TransparentColorIndex,
		Delay:            delay,
	}
}

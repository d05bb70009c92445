package console

import (
	"io"
	"moonkernel/device/video/console/font"
	"moonkernel/kernel"
	"moonkernel/kernel/kfmt"
	"sync/atomic"
	"unsafe"
)

var errUnsupportedDepth = &kernel.Error{Module: "fb_console", Message: "unsupported framebuffer depth; only 32bpp is supported"}

// FbConsole is a text console that renders glyphs from a bitmap font onto a
// linear 32bpp framebuffer.
type FbConsole struct {
	bpp    uint32
	fbAddr uintptr
	fb     []uint8

	// Console dimensions in pixels
	width  uint32
	height uint32

	// Size of a row in bytes
	pitch uint32

	// Console dimensions in characters
	font          *font.Font
	widthInChars  uint32
	heightInChars uint32

	defaultFg Color
	defaultBg Color
}

// Init sets up the console for a framebuffer with the supplied geometry.
// The framebuffer contents only become accessible after a call to
// DriverInit. The pitch is trusted as reported by the boot loader.
func (cons *FbConsole) Init(width, height, pitch uint32, bpp uint8, fbAddr uintptr) {
	*cons = FbConsole{
		bpp:       uint32(bpp),
		fbAddr:    fbAddr,
		width:     width,
		height:    height,
		pitch:     pitch,
		defaultFg: LightGrey,
		defaultBg: Black,
	}
}

// SetFont selects a bitmap font to be used by the console.
func (cons *FbConsole) SetFont(f *font.Font) {
	if f == nil || f.GlyphWidth == 0 || f.GlyphHeight == 0 {
		return
	}

	cons.font = f
	cons.widthInChars = cons.width / f.GlyphWidth
	cons.heightInChars = cons.height / f.GlyphHeight
}

// Dimensions returns the console width and height in the specified dimension.
func (cons *FbConsole) Dimensions(dim Dimension) (uint32, uint32) {
	switch dim {
	case Characters:
		return cons.widthInChars, cons.heightInChars
	default:
		return cons.width, cons.height
	}
}

// DefaultColors returns the default foreground and background colors
// used by this console.
func (cons *FbConsole) DefaultColors() (fg, bg Color) {
	return cons.defaultFg, cons.defaultBg
}

// Fill sets the pixels of the cell rectangle with top-left cell (x, y) to
// bg. The rectangle is clipped to the console.
func (cons *FbConsole) Fill(x, y, width, height uint32, bg Color) {
	if cons.font == nil || x >= cons.widthInChars || y >= cons.heightInChars {
		return
	}

	if x+width > cons.widthInChars {
		width = cons.widthInChars - x
	}

	if y+height > cons.heightInChars {
		height = cons.heightInChars - y
	}

	var (
		pW          = width * cons.font.GlyphWidth
		pH          = height * cons.font.GlyphHeight
		fbRowOffset = cons.fbOffset(x*cons.font.GlyphWidth, y*cons.font.GlyphHeight)
	)

	for ; pH > 0; pH, fbRowOffset = pH-1, fbRowOffset+cons.pitch {
		for pX, fbOffset := uint32(0), fbRowOffset; pX < pW; pX, fbOffset = pX+1, fbOffset+4 {
			cons.writePixel(fbOffset, bg)
		}
	}
}

// Scroll moves the text area of the console up by the requested number of
// lines. Glyph row r receives the contents of glyph row r+lines. The caller
// is responsible for clearing the rows at the bottom that were vacated.
func (cons *FbConsole) Scroll(lines uint32) {
	if cons.font == nil || lines == 0 || lines > cons.heightInChars {
		return
	}

	var (
		rowBytes  = cons.font.GlyphHeight * cons.pitch
		textBytes = cons.heightInChars * rowBytes
		offset    = lines * rowBytes
	)

	// copy handles the overlapping source and destination ranges.
	copy(cons.fb[:textBytes-offset], cons.fb[offset:textBytes])
}

// Write renders ch at the cell with coordinates (x, y) repainting every pixel
// of the cell: set glyph bits get fg and clear bits get bg. Coordinates
// outside the console are ignored.
func (cons *FbConsole) Write(ch byte, fg, bg Color, x, y uint32) {
	if x >= cons.widthInChars || y >= cons.heightInChars || cons.font == nil {
		return
	}

	var (
		glyphLen    = cons.font.BytesPerRow * cons.font.GlyphHeight
		fontOffset  = uint32(ch) * glyphLen
		fbRowOffset = cons.fbOffset(x*cons.font.GlyphWidth, y*cons.font.GlyphHeight)
		fbOffset    uint32
		fontRowData uint8
		pX, pY      uint32
		mask        uint8
	)

	for pY = 0; pY < cons.font.GlyphHeight; pY, fbRowOffset = pY+1, fbRowOffset+cons.pitch {
		fbOffset = fbRowOffset
		fontRowData = cons.glyphByte(fontOffset)
		fontOffset++
		mask = 1 << 7
		for pX = 0; pX < cons.font.GlyphWidth; pX, fbOffset, mask = pX+1, fbOffset+4, mask>>1 {
			// Fonts wider than 8 pixels use more than one byte per
			// glyph row.
			if mask == 0 {
				fontRowData = cons.glyphByte(fontOffset)
				fontOffset++
				mask = 1 << 7
			}

			if (fontRowData & mask) != 0 {
				cons.writePixel(fbOffset, fg)
			} else {
				cons.writePixel(fbOffset, bg)
			}
		}
	}
}

// glyphByte returns the font bitmap byte at offset. Glyphs missing from a
// truncated font render as blank cells.
func (cons *FbConsole) glyphByte(offset uint32) uint8 {
	if offset >= uint32(len(cons.font.Data)) {
		return 0
	}
	return cons.font.Data[offset]
}

// writePixel stores c at the framebuffer byte offset. The atomic store
// guarantees that the compiler neither elides nor reorders the write to
// device memory.
func (cons *FbConsole) writePixel(offset uint32, c Color) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&cons.fb[offset])), uint32(c))
}

// fbOffset returns the linear offset into the framebuffer that corresponds to
// the pixel at (x,y).
func (cons *FbConsole) fbOffset(x, y uint32) uint32 {
	return (y * cons.pitch) + (x * cons.bpp >> 3)
}

// DriverName returns the name of this driver.
func (cons *FbConsole) DriverName() string {
	return "limine_fb_console"
}

// DriverVersion returns the version of this driver.
func (cons *FbConsole) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver. The boot loader has already mapped
// the framebuffer into the higher half so it is overlaid directly.
func (cons *FbConsole) DriverInit(w io.Writer) *kernel.Error {
	if cons.bpp != 32 {
		kfmt.Fprintf(w, "framebuffer depth %d is not supported\n", cons.bpp)
		return errUnsupportedDepth
	}

	fbSize := int(cons.height * cons.pitch)
	cons.fb = unsafe.Slice((*uint8)(unsafe.Pointer(cons.fbAddr)), fbSize)

	kfmt.Fprintf(w, "framebuffer at 0x%x (%dx%d, pitch %d)\n", cons.fbAddr, cons.width, cons.height, cons.pitch)
	return nil
}

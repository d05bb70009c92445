// Package font describes the bitmap fonts that can be used by console
// devices.
package font

// psf1HeaderLen is the size of the PSF1 header that precedes the glyph
// bitmaps of a font module. The header is skipped without being parsed.
const psf1HeaderLen = 4

// Font describes a bitmap font that can be used by a console device.
type Font struct {
	// The name of the font
	Name string

	// The width of each glyph in pixels.
	GlyphWidth uint32

	// The height of each glyph in pixels.
	GlyphHeight uint32

	// The number of bytes describing a row in a glyph.
	BytesPerRow uint32

	// The font bitmap. Each character consists of BytesPerRow * Height
	// bytes where each bit indicates whether a pixel should be set to the
	// foreground or the background color.
	Data []byte
}

// LoadPSF1 initializes f from the contents of an 8x16 PSF1 font module.
// Glyph i occupies the 16 bytes starting at offset i*16 past the header.
// Modules too short to hold the header produce a font without glyph data.
func (f *Font) LoadPSF1(name string, module []byte) {
	f.Name = name
	f.GlyphWidth = 8
	f.GlyphHeight = 16
	f.BytesPerRow = 1
	f.Data = nil
	if len(module) > psf1HeaderLen {
		f.Data = module[psf1HeaderLen:]
	}
}

// GlyphCount returns the number of complete glyphs in the font bitmap.
func (f *Font) GlyphCount() uint32 {
	glyphLen := f.GlyphHeight * f.BytesPerRow
	if glyphLen == 0 {
		return 0
	}
	return uint32(len(f.Data)) / glyphLen
}

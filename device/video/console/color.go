package console

// Color is a 32bpp pixel value in 0xRRGGBB format. The top byte is ignored
// by the framebuffer.
type Color uint32

// Colors used by the kernel console.
const (
	Black     Color = 0x000000
	LightGrey Color = 0xAAAAAA
	Red       Color = 0xFF0000
	Yellow    Color = 0xFFFF00
	White     Color = 0xFFFFFF
)

// RGBA implements color.Color. Colors are always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(uint8(c>>16)) * 0x101
	g = uint32(uint8(c>>8)) * 0x101
	b = uint32(uint8(c)) * 0x101
	return r, g, b, 0xffff
}

// Package console provides console devices that render glyphs onto video
// hardware.
package console

import "moonkernel/device/video/console/font"

// Dimension defines the types of dimensions that can be queried off a device.
type Dimension uint8

const (
	// Characters describes the number of characters in
	// the console depending on the currently active
	// font.
	Characters Dimension = iota

	// Pixels describes the number of pixels in the console framebuffer.
	Pixels
)

// The Device interface is implemented by objects that can function as system
// consoles. All coordinates are 0-based character cells (the top-left cell
// has coordinates 0,0).
type Device interface {
	// Dimensions returns the width and height of the console
	// using a particular dimension.
	Dimensions(Dimension) (uint32, uint32)

	// DefaultColors returns the default foreground and background colors
	// used by this console.
	DefaultColors() (fg, bg Color)

	// Fill sets the contents of the specified rectangular region to the
	// requested background color.
	Fill(x, y, width, height uint32, bg Color)

	// Scroll moves the console contents up by the requested number of
	// lines. The caller is responsible for updating (e.g. clear or
	// replace) the contents of the region that was scrolled.
	Scroll(lines uint32)

	// Write a char to the specified location.
	Write(ch byte, fg, bg Color, x, y uint32)
}

// FontSetter is an interface implemented by console devices that
// support loadable bitmap fonts.
//
// SetFont selects a bitmap font to be used by the console.
type FontSetter interface {
	SetFont(*font.Font)
}

// Package tty provides terminals that track a cursor on top of a console
// device.
package tty

import (
	"io"
	"moonkernel/device/video/console"
)

// Device is implemented by objects that can be used as a terminal device.
type Device interface {
	io.Writer
	io.ByteWriter

	// AttachTo connects a TTY to a console instance.
	AttachTo(console.Device)

	// CursorPosition returns the current cursor x,y coordinates. Both
	// coordinates are 0-based (top-left corner has coordinates 0,0).
	CursorPosition() (uint32, uint32)

	// WriteStringColor writes s using the fg color. Bytes other than
	// printable ASCII and '\n' are rendered as '*'.
	WriteStringColor(s string, fg console.Color)

	// PrintlnInfo, PrintlnWarning and PrintlnError write s on its own
	// line, prefixed by its severity and colored accordingly.
	PrintlnInfo(s string)
	PrintlnWarning(s string)
	PrintlnError(s string)
}

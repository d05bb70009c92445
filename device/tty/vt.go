package tty

import (
	"io"
	"moonkernel/device"
	"moonkernel/device/video/console"
	"moonkernel/kernel"
)

const (
	infoPrefix    = "[info]: "
	warningPrefix = "[warning]: "
	errorPrefix   = "[error]: "

	// replacementChar is rendered in place of bytes that are not
	// printable ASCII.
	replacementChar = '*'
)

// Vt implements a terminal without scrollback that renders straight to the
// attached console. The terminal interprets '\n' as a line feed; all other
// bytes are rendered as glyphs. Output wraps to the next line once a line
// is full and the console scrolls up by one line whenever a line feed is
// issued on the last line.
//
// The cursor column ranges from 0 to the terminal width inclusive: a
// column equal to the width marks a full line that is wrapped before the
// next glyph is rendered.
type Vt struct {
	cons console.Device

	// Terminal dimensions in characters.
	width  uint32
	height uint32

	defaultFg console.Color
	defaultBg console.Color

	curX uint32
	curY uint32
}

// AttachTo connects the terminal to a console instance and resets the
// cursor to the top-left corner.
func (t *Vt) AttachTo(cons console.Device) {
	if cons == nil {
		return
	}

	t.cons = cons
	t.width, t.height = cons.Dimensions(console.Characters)
	t.defaultFg, t.defaultBg = cons.DefaultColors()
	t.curX, t.curY = 0, 0
}

// CursorPosition returns the current cursor position.
func (t *Vt) CursorPosition() (uint32, uint32) {
	return t.curX, t.curY
}

// Dimensions returns the terminal width and height in characters.
func (t *Vt) Dimensions() (uint32, uint32) {
	return t.width, t.height
}

// Write implements io.Writer. Data is rendered using the default
// foreground color of the attached console.
func (t *Vt) Write(data []byte) (int, error) {
	for count, b := range data {
		if err := t.WriteByte(b); err != nil {
			return count, err
		}
	}

	return len(data), nil
}

// WriteByte implements io.ByteWriter. Bytes other than printable ASCII and
// '\n' are rendered as '*'.
func (t *Vt) WriteByte(b byte) error {
	if t.cons == nil {
		return io.ErrClosedPipe
	}

	t.WriteByteColor(sanitize(b), t.defaultFg)
	return nil
}

// WriteStringColor writes s using the fg color. Bytes other than printable
// ASCII and '\n' are rendered as '*'.
func (t *Vt) WriteStringColor(s string, fg console.Color) {
	for i := 0; i < len(s); i++ {
		t.WriteByteColor(sanitize(s[i]), fg)
	}
}

// WriteByteColor renders b at the cursor position using the fg color and
// advances the cursor. A '\n' moves the cursor to the start of the next
// line instead. Unlike WriteStringColor, b is rendered as-is.
func (t *Vt) WriteByteColor(b byte, fg console.Color) {
	if t.cons == nil || t.width == 0 || t.height == 0 {
		return
	}

	if b == '\n' {
		t.lf()
		return
	}

	if t.curX == t.width {
		t.lf()
	}

	t.cons.Write(b, fg, t.defaultBg, t.curX, t.curY)
	t.curX++
}

// PrintlnInfo writes s on its own line using the info prefix and color.
func (t *Vt) PrintlnInfo(s string) {
	t.println(infoPrefix, s, console.White)
}

// PrintlnWarning writes s on its own line using the warning prefix and
// color.
func (t *Vt) PrintlnWarning(s string) {
	t.println(warningPrefix, s, console.Yellow)
}

// PrintlnError writes s on its own line using the error prefix and color.
func (t *Vt) PrintlnError(s string) {
	t.println(errorPrefix, s, console.Red)
}

func (t *Vt) println(prefix, s string, fg console.Color) {
	t.WriteStringColor(prefix, fg)
	t.WriteStringColor(s, fg)
	t.WriteByteColor('\n', fg)
}

// lf moves the cursor to the start of the next line. If the cursor is on
// the last line, the console contents are scrolled up by one line and the
// last line is cleared.
func (t *Vt) lf() {
	t.curX = 0

	if t.curY+1 < t.height {
		t.curY++
		return
	}

	t.cons.Scroll(1)
	t.cons.Fill(0, t.height-1, t.width, 1, t.defaultBg)
}

// sanitize maps bytes that are neither printable ASCII nor '\n' to the
// replacement character.
func sanitize(b byte) byte {
	if b == '\n' || (b >= 0x20 && b <= 0x7e) {
		return b
	}
	return replacementChar
}

// DriverName returns the name of this driver.
func (t *Vt) DriverName() string {
	return "vt"
}

// DriverVersion returns the version of this driver.
func (t *Vt) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit initializes this driver.
func (t *Vt) DriverInit(_ io.Writer) *kernel.Error { return nil }

var (
	// vt is statically allocated as probing runs before any memory
	// allocator is available.
	vt Vt

	probeFuncs = [...]device.ProbeFn{
		probeForVt,
	}
)

// HWProbes returns a slice of device.ProbeFn that can be used by the hal
// package to probe for TTY devices.
func HWProbes() []device.ProbeFn {
	return probeFuncs[:]
}

func probeForVt() device.Driver {
	return &vt
}

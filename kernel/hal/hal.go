// Package hal brings up the devices the kernel needs to produce output
// using the hardware information provided by the boot loader.
package hal

import (
	"moonkernel/device"
	"moonkernel/device/tty"
	"moonkernel/device/video/console"
	"moonkernel/device/video/console/font"
	"moonkernel/kernel"
	"moonkernel/kernel/hal/limine"
	"moonkernel/kernel/kfmt"
	"strings"
)

// consoleFontKey is the boot command line key that selects the font module
// by a suffix of its path, e.g. consoleFont=ter-116n.psf
const consoleFontKey = "consoleFont"

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole console.Device
	activeTTY     tty.Device
}

var (
	devices managedDevices

	// consoleFont holds the font loaded from the selected boot module.
	consoleFont font.Font

	// The kernel has no heap allocator. State shared with the probe and
	// boot data visitors lives in package variables so that taking its
	// address never moves it to the heap.

	// strBuf holds the log prefix for the driver being initialized.
	strBuf prefixBuffer

	// probeWriter prefixes the output of the driver being initialized.
	probeWriter kfmt.PrefixWriter

	// requestedFont and selectedFont are populated by the command line and
	// module visitors invoked by selectFontModule.
	requestedFont string
	selectedFont  *limine.File

	errNoConsole    = &kernel.Error{Module: "hal", Message: "no usable framebuffer console found"}
	errNoFontModule = &kernel.Error{Module: "hal", Message: "no font module loaded by the boot loader"}

	// The following functions are mocked by tests.
	consoleProbesFn    = console.HWProbes
	ttyProbesFn        = tty.HWProbes
	moduleFn           = limine.Module
	visitModulesFn     = limine.VisitModules
	visitBootCmdLineFn = limine.VisitBootCmdLine
	filePathFn         = (*limine.File).Path
)

// ActiveTTY returns the currently active TTY
func ActiveTTY() tty.Device {
	return devices.activeTTY
}

// InitConsole loads the console font from the boot modules, probes for a
// framebuffer console and attaches a terminal to it. Once the terminal is
// attached it becomes the kfmt output sink and any output buffered so far
// is flushed to it.
func InitConsole() *kernel.Error {
	fontModule := selectFontModule()
	if fontModule == nil {
		return errNoFontModule
	}
	consoleFont.LoadPSF1(filePathFn(fontModule), fontModule.Data())

	probe(consoleProbesFn())
	if devices.activeConsole == nil {
		return errNoConsole
	}

	probe(ttyProbesFn())
	return nil
}

// selectFontModule returns the module requested via the consoleFont command
// line key. If no module matches the request, the first module is returned.
func selectFontModule() *limine.File {
	requestedFont, selectedFont = "", nil

	visitBootCmdLineFn(recordFontRequest)

	if requestedFont != "" {
		visitModulesFn(matchFontModule)

		if selectedFont == nil {
			kfmt.Printf("[hal] font module %s not found; using the first module\n", requestedFont)
		}
	}

	if selectedFont == nil {
		selectedFont = moduleFn(0)
	}

	return selectedFont
}

func recordFontRequest(key, value string) {
	if key == consoleFontKey {
		requestedFont = value
	}
}

func matchFontModule(_ uint64, mod *limine.File) bool {
	if strings.HasSuffix(filePathFn(mod), requestedFont) {
		selectedFont = mod
		return false
	}
	return true
}

// probe executes each probe function and invokes onDriverInit for each
// successfully initialized driver.
func probe(probeFns []device.ProbeFn) {
	probeWriter = kfmt.PrefixWriter{Sink: kfmt.GetOutputSink()}

	for _, probeFn := range probeFns {
		drv := probeFn()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		probeWriter.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&probeWriter); err != nil {
			kfmt.Fprintf(&probeWriter, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&probeWriter, "initialized\n")
		onDriverInit(drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized.
func onDriverInit(drv device.Driver) {
	switch drvImpl := drv.(type) {
	case console.Device:
		onConsoleInit(drvImpl)
	case tty.Device:
		if devices.activeTTY != nil {
			return
		}

		devices.activeTTY = drvImpl
		if devices.activeConsole != nil {
			linkTTYToConsole()
		}
	}
}

// onConsoleInit is invoked whenever a console is initialized. If this is the
// first found console it automatically becomes the active console and, if
// it supports fonts, it is set up to use the boot font.
func onConsoleInit(cons console.Device) {
	if devices.activeConsole != nil {
		return
	}

	devices.activeConsole = cons

	if fontSetter, ok := cons.(console.FontSetter); ok {
		fontSetter.SetFont(&consoleFont)
	}

	if devices.activeTTY != nil {
		linkTTYToConsole()
	}
}

// linkTTYToConsole connects the active TTY device to the active console
// device and redirects kfmt output to it.
func linkTTYToConsole() {
	devices.activeTTY.AttachTo(devices.activeConsole)
	kfmt.SetOutputSink(devices.activeTTY)
}

// prefixBuffer is a fixed-size io.Writer used for building driver log
// prefixes without allocating memory. Writes beyond its capacity are
// truncated.
type prefixBuffer struct {
	data [64]byte
	len  int
}

func (b *prefixBuffer) Write(p []byte) (int, error) {
	b.len += copy(b.data[b.len:], p)
	return len(p), nil
}

func (b *prefixBuffer) Reset() {
	b.len = 0
}

func (b *prefixBuffer) Bytes() []byte {
	return b.data[:b.len]
}

package console

import (
	"moonkernel/device"
	"moonkernel/kernel/hal/limine"
)

var (
	getFramebufferFn = limine.GetFramebuffer

	// fbConsole is statically allocated as probing runs before any
	// memory allocator is available.
	fbConsole FbConsole

	probeFuncs = [...]device.ProbeFn{
		probeForFbConsole,
	}
)

// HWProbes returns a slice of device.ProbeFn that can be used by the hal
// package to probe for console device hardware.
func HWProbes() []device.ProbeFn {
	return probeFuncs[:]
}

// probeForFbConsole checks whether the boot loader has set up a framebuffer
// and returns a console driver for the first one.
func probeForFbConsole() device.Driver {
	fbInfo := getFramebufferFn(0)
	if fbInfo == nil {
		return nil
	}

	fbConsole.Init(uint32(fbInfo.Width), uint32(fbInfo.Height), uint32(fbInfo.Pitch), uint8(fbInfo.Bpp), fbInfo.Address)
	return &fbConsole
}

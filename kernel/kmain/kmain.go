package kmain

import (
	"moonkernel/kernel"
	"moonkernel/kernel/cpu"
	"moonkernel/kernel/gdt"
	"moonkernel/kernel/hal"
	"moonkernel/kernel/hal/limine"
	"moonkernel/kernel/kfmt"
)

var (
	errUnsupportedRevision = &kernel.Error{Module: "kmain", Message: "boot loader does not support the requested Limine base revision"}
	errKmainReturned       = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

	// gdtLogWriter is a package variable as no heap is available while
	// Kmain runs.
	gdtLogWriter = kfmt.PrefixWriter{Prefix: []byte("[kmain] ")}

	// The following functions are mocked by tests.
	disableInterruptsFn     = cpu.DisableInterrupts
	baseRevisionSupportedFn = limine.BaseRevisionSupported
	initConsoleFn           = hal.InitConsole
	activeTTYFn             = hal.ActiveTTY
	loadGDTFn               = gdt.Load
	cpuHaltFn               = cpu.Halt
	panicFn                 = kfmt.Panic
)

// Kmain is the only Go symbol that is visible (exported) from the entry
// code. It is invoked after the boot loader has transferred control to the
// kernel with a valid stack and the Limine requests filled in.
//
// Kmain brings up the descriptor table and the framebuffer console, reports
// the boot status on the console and halts the CPU. Errors during bring-up
// are fatal.
//
// Kmain is not expected to return. If it does, the entry code will halt the
// CPU.
//
//go:noinline
func Kmain() {
	// No interrupt descriptor table is installed.
	disableInterruptsFn()

	if !baseRevisionSupportedFn() {
		panicFn(errUnsupportedRevision)
		return
	}

	table := gdt.Init()

	if err := initConsoleFn(); err != nil {
		panicFn(err)
		return
	}

	loadGDTFn(table)

	ptr := table.Pointer()
	kfmt.Printf("[kmain] cpu vendor: %s\n", cpuVendor())
	kfmt.Printf("[kmain] loaded GDT at 0x%x (limit %d)\n", ptr.Base(), ptr.Limit())
	gdtLogWriter.Sink = kfmt.GetOutputSink()
	table.DumpTo(&gdtLogWriter)

	term := activeTTYFn()
	term.PrintlnError("test error")
	term.PrintlnWarning("test warning")
	term.PrintlnInfo("test info")
	term.PrintlnInfo("kernel hlt")

	cpuHaltFn()

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	panicFn(errKmainReturned)
}

func cpuVendor() string {
	switch {
	case cpu.IsIntel():
		return "intel"
	case cpu.IsAMD():
		return "amd"
	default:
		return "unknown"
	}
}

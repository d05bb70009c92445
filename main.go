package main

import "moonkernel/kernel/kmain"

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code.
//
// The entry glue and linker script that turn this module into a bootable
// kernel are supplied by the kernel build. The entry glue sets up a stack
// and calls kmain.Kmain directly, so main itself is never executed.
func main() {
	kmain.Kmain()
}

package gdt

import (
	"encoding/binary"
	"io"
	"math"
	"moonkernel/kernel/cpu"
	"moonkernel/kernel/kfmt"
	"unsafe"
)

// Table slots. A selector for a slot is its index multiplied by 8, so the
// order below is relied upon by every selector value used in the kernel.
const (
	// Null is the mandatory null descriptor.
	Null = iota
	KernelCode
	KernelData
	KernelTLS
	UserCode
	UserData
	UserTLS

	// TSS holds the low half of the 16-byte TSS descriptor and TSSHigh
	// holds bits 32-63 of the TSS base address.
	TSS
	TSSHigh

	// EntryCount is the number of slots in the table.
	EntryCount
)

// Table is the global descriptor table.
type Table [EntryCount]Entry

// Comptime check that the table limit fits in the 16-bit GDTR limit.
var _ = [math.MaxUint16]struct{}{}[math.MaxUint16-unsafe.Sizeof(Table{})]

// Pointer is the 10-byte operand of the LGDT instruction: a little-endian
// 16-bit limit (table size in bytes minus one) followed by the little-endian
// 64-bit linear address of the table.
type Pointer [10]byte

// Limit returns the table limit encoded in the pointer.
func (p Pointer) Limit() uint16 {
	return binary.LittleEndian.Uint16(p[:2])
}

// Base returns the table address encoded in the pointer.
func (p Pointer) Base() uint64 {
	return binary.LittleEndian.Uint64(p[2:])
}

var (
	// loadGDTFn is mocked by tests.
	loadGDTFn = cpu.LoadGDT

	// The boot table and its pointer must live at a fixed address for as
	// long as the GDTR references them. They are only reachable through
	// the handle returned by Init.
	bootTable   Table
	bootPointer Pointer
	loaded      bool
)

// Init populates the boot descriptor table with flat kernel and user
// segments and an available TSS descriptor whose base and limit are zero
// until SetTSS is invoked. It returns the only handle to the table.
func Init() *Table {
	const (
		code = AccessPresent | AccessCodeOrData | AccessExecutable | AccessReadWrite
		data = AccessPresent | AccessCodeOrData | AccessReadWrite
		flat = 0xfffff
	)

	bootTable = Table{
		Null:       0,
		KernelCode: NewEntry(0, flat, code|AccessRing0, FlagGranularity4K|FlagLongMode),
		KernelData: NewEntry(0, flat, data|AccessRing0, FlagGranularity4K),
		KernelTLS:  NewEntry(0, flat, data|AccessRing0, FlagGranularity4K),
		UserCode:   NewEntry(0, flat, code|AccessRing3, FlagGranularity4K|FlagLongMode),
		UserData:   NewEntry(0, flat, data|AccessRing3, FlagGranularity4K),
		UserTLS:    NewEntry(0, flat, data|AccessRing3, FlagGranularity4K),
		TSS:        NewEntry(0, 0, AccessPresent|AccessTSSAvailable, 0),
		TSSHigh:    0,
	}

	return &bootTable
}

// SetTSS points the TSS descriptor to a task state segment located at base.
// The high 32 bits of base are stored in the TSSHigh slot.
func (t *Table) SetTSS(base uint64, limit uint32) {
	t[TSS].SetBase(uint32(base))
	t[TSS].SetLimit(limit)
	t[TSSHigh] = Entry(base >> 32)
}

// Pointer returns the GDTR operand describing t.
func (t *Table) Pointer() Pointer {
	var p Pointer
	binary.LittleEndian.PutUint16(p[:2], uint16(unsafe.Sizeof(*t)-1))
	binary.LittleEndian.PutUint64(p[2:], uint64(uintptr(unsafe.Pointer(t))))
	return p
}

// DumpTo outputs the raw table contents to w.
func (t *Table) DumpTo(w io.Writer) {
	for index, entry := range t {
		kfmt.Fprintf(w, "gdt[%d] = 0x%16x\n", index, uint64(entry))
	}
}

// Load computes the table pointer and loads it into the GDTR. The pointer is
// computed and loaded exactly once; later calls are no-ops. Entries changed
// after Load only take effect once the CPU re-reads the descriptor.
//
// Load does not reload any segment register. CS and SS keep the selectors
// of the boot loader table (0x28 and 0x30 for Limine) which index user
// segments in this table. Code that reloads a segment register, including
// an iretq, must first switch to the KernelCode and KernelData selectors.
func Load(t *Table) {
	if loaded {
		return
	}

	bootPointer = t.Pointer()
	loadGDTFn(uintptr(unsafe.Pointer(&bootPointer)))
	loaded = true
}

// Selector returns the segment selector for the table slot at index with the
// requested privilege level (0-3) in its low bits.
func Selector(index int, rpl uint8) uint16 {
	return uint16(index)<<3 | uint16(rpl&3)
}

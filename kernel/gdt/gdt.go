// Package gdt builds the global descriptor table (GDT) and loads it into the
// CPU. In 64-bit mode segmentation is mostly disabled, but the CPU still
// consults the GDT for the privilege level of code and data segments and for
// the location of the task state segment (TSS).
package gdt

import "encoding/binary"

// Access describes the access byte of a segment descriptor.
type Access uint8

// Access byte bits. Descriptors must be composed only from these constants.
const (
	// AccessAccessed is set by the CPU when the segment is accessed.
	AccessAccessed Access = 1 << 0

	// AccessReadWrite marks code segments as readable and data segments
	// as writable.
	AccessReadWrite Access = 1 << 1

	// AccessDirectionConforming marks data segments as growing down and
	// code segments as conforming.
	AccessDirectionConforming Access = 1 << 2

	// AccessExecutable marks the segment as a code segment.
	AccessExecutable Access = 1 << 3

	// AccessCodeOrData is set for code/data segments and clear for system
	// segments such as the TSS.
	AccessCodeOrData Access = 1 << 4

	// Descriptor privilege level; ring 0 is the most privileged.
	AccessRing0 Access = 0 << 5
	AccessRing1 Access = 1 << 5
	AccessRing2 Access = 2 << 5
	AccessRing3 Access = 3 << 5

	// AccessPresent must be set for all valid descriptors.
	AccessPresent Access = 1 << 7

	// System descriptor types for a 64-bit TSS.
	AccessTSSAvailable Access = 0x9
	AccessTSSBusy      Access = 0xb
)

// Flags describes the upper nibble of the flags/limit byte of a descriptor.
type Flags uint8

// Flag bits. The low nibble of a Flags value is never stored.
const (
	// FlagLongMode marks a 64-bit code segment.
	FlagLongMode Flags = 1 << 5

	// FlagProtectedMode32 selects 32-bit default operand size.
	FlagProtectedMode32 Flags = 1 << 6

	// FlagGranularity4K scales the limit by 4 KiB instead of 1 byte.
	FlagGranularity4K Flags = 1 << 7
)

const (
	baseMask  Entry = 0xff0000ffffff0000
	limitMask Entry = 0x000f00000000ffff
)

// Entry is a packed 8-byte segment descriptor. Its bits, stored in
// little-endian order, follow the hardware layout:
//
//	bits  0-15  limit 0-15
//	bits 16-31  base 0-15
//	bits 32-39  base 16-23
//	bits 40-47  access byte
//	bits 48-51  limit 16-19
//	bits 52-55  flags
//	bits 56-63  base 24-31
type Entry uint64

// NewEntry packs a descriptor. Only the low 20 bits of limit and the high 4
// bits of flags are retained; any other input bits are silently dropped.
func NewEntry(base, limit uint32, access Access, flags Flags) Entry {
	e := Entry(uint64(access)<<40 | uint64(flags&0xf0)<<48)
	e.SetBase(base)
	e.SetLimit(limit)
	return e
}

// SetBase updates the segment base address leaving all other bits untouched.
func (e *Entry) SetBase(base uint32) {
	*e = *e&^baseMask |
		Entry(uint64(base&0xffff)<<16|uint64(base>>16&0xff)<<32|uint64(base>>24)<<56)
}

// SetLimit updates the 20-bit segment limit leaving all other bits untouched.
func (e *Entry) SetLimit(limit uint32) {
	*e = *e&^limitMask |
		Entry(uint64(limit&0xffff)|uint64(limit>>16&0x0f)<<48)
}

// LimitLow returns the low 16 bits of the segment limit.
func (e Entry) LimitLow() uint16 { return uint16(e) }

// BaseLow returns the low 16 bits of the segment base.
func (e Entry) BaseLow() uint16 { return uint16(e >> 16) }

// BaseMid returns bits 16-23 of the segment base.
func (e Entry) BaseMid() uint8 { return uint8(e >> 32) }

// Access returns the access byte.
func (e Entry) Access() Access { return Access(e >> 40) }

// FlagsLimitHigh returns the byte holding the flags (high nibble) and bits
// 16-19 of the limit (low nibble).
func (e Entry) FlagsLimitHigh() uint8 { return uint8(e >> 48) }

// BaseHigh returns bits 24-31 of the segment base.
func (e Entry) BaseHigh() uint8 { return uint8(e >> 56) }

// Base returns the 32-bit segment base.
func (e Entry) Base() uint32 {
	return uint32(e.BaseLow()) | uint32(e.BaseMid())<<16 | uint32(e.BaseHigh())<<24
}

// Limit returns the 20-bit segment limit.
func (e Entry) Limit() uint32 {
	return uint32(e.LimitLow()) | uint32(e.FlagsLimitHigh()&0x0f)<<16
}

// Flags returns the descriptor flags.
func (e Entry) Flags() Flags {
	return Flags(e.FlagsLimitHigh() & 0xf0)
}

// Bytes returns the descriptor as it appears in memory.
func (e Entry) Bytes() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(e))
	return b
}

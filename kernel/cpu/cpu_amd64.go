package cpu

var (
	cpuidFn = ID
)

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt disables interrupts and stops instruction execution. Halt never
// returns.
func Halt()

// LoadGDT loads the global descriptor table register from the 10-byte
// descriptor (16-bit limit followed by the 64-bit base address) located at
// gdtrAddr. Segment registers are not reloaded.
func LoadGDT(gdtrAddr uintptr)

// ID returns information about the CPU and its features. It
// is implemented as a CPUID instruction with EAX=leaf and
// returns the values in EAX, EBX, ECX and EDX.
func ID(leaf uint32) (eax, ebx, ecx, edx uint32)

// IsIntel returns true if the code is running on an Intel processor.
func IsIntel() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x756e6547 && // "Genu"
		edx == 0x49656e69 && // "ineI"
		ecx == 0x6c65746e // "ntel"
}

// IsAMD returns true if the code is running on an AMD processor.
func IsAMD() bool {
	_, ebx, ecx, edx := cpuidFn(0)
	return ebx == 0x68747541 && // "Auth"
		edx == 0x69746e65 && // "enti"
		ecx == 0x444d4163 // "cAMD"
}

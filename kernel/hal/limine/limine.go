// Package limine declares the Limine boot protocol requests used by the
// kernel and decodes the responses filled in by the boot loader.
//
// The boot loader locates each request by scanning the kernel image for its
// 8-byte aligned identifier and stores a pointer to its response in the
// request. All response data lives in memory mapped by the boot loader into
// the higher half, so pointers can be dereferenced directly.
package limine

import "unsafe"

const (
	commonMagic0 = 0xc7b1dd30df4c8b88
	commonMagic1 = 0x0a82e883a194f07b
)

// request is the common header shared by all Limine requests.
type request struct {
	id       [4]uint64
	revision uint64

	// response is populated by the boot loader; zero means that the
	// request was not honored.
	response uintptr
}

// responseHeader describes the layout shared by the framebuffer and module
// responses: a revision followed by a count and a pointer to an array of
// count entry pointers.
type responseHeader struct {
	revision uint64
	count    uint64
	entries  uintptr
}

// kernelFileResponse describes the response to the kernel file request.
type kernelFileResponse struct {
	revision   uint64
	kernelFile uintptr
}

var (
	// baseRevision declares the protocol revision supported by the
	// kernel. The boot loader sets the last element to zero if it
	// supports the requested revision.
	baseRevision = [3]uint64{0xf9562b2d5c95a6c8, 0x6a7b384944536bdc, 2}

	framebufferRequest = request{
		id: [4]uint64{commonMagic0, commonMagic1, 0x9d5827dcd881dd75, 0xa3148604f6fab11b},
	}

	moduleRequest = request{
		id: [4]uint64{commonMagic0, commonMagic1, 0x3e7e279702be32af, 0xca1c4f3bd1280cee},
	}

	kernelFileRequest = request{
		id: [4]uint64{commonMagic0, commonMagic1, 0xad97e90e83f1ed67, 0x31eb5d1c5ff23b69},
	}
)

// MemoryModelRGB is the only framebuffer memory model defined by the
// protocol.
const MemoryModelRGB = 1

// Framebuffer describes a framebuffer set up by the boot loader.
type Framebuffer struct {
	// The virtual address of the framebuffer.
	Address uintptr

	// Width and height in pixels.
	Width, Height uint64

	// Row pitch in bytes.
	Pitch uint64

	// Bits per pixel.
	Bpp uint16

	MemoryModel uint8

	// The width and position (in bits) of each color component.
	RedMaskSize, RedMaskShift     uint8
	GreenMaskSize, GreenMaskShift uint8
	BlueMaskSize, BlueMaskShift   uint8

	_ [7]uint8

	// The size and address of the monitor EDID blob, if available.
	EdidSize uint64
	Edid     uintptr
}

// MediaType describes the medium a File was loaded from.
type MediaType uint32

// The list of supported media types.
const (
	MediaTypeGeneric MediaType = iota
	MediaTypeOptical
	MediaTypeTFTP
)

// File describes a file (the kernel image or a module) loaded by the boot
// loader.
type File struct {
	Revision uint64

	// The address and size of the file contents in memory.
	Address uintptr
	Size    uint64

	// Pointers to NULL-terminated strings holding the file path and the
	// command line associated with the file.
	path    uintptr
	cmdline uintptr

	MediaType MediaType
	_         uint32

	TftpIP         uint32
	TftpPort       uint32
	PartitionIndex uint32
	MbrDiskID      uint32
	GptDiskUUID    [16]byte
	GptPartUUID    [16]byte
	PartUUID       [16]byte
}

// Data returns a slice that overlays the file contents in memory.
func (f *File) Data() []byte {
	if f.Address == 0 || f.Size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(f.Address)), f.Size)
}

// Path returns the path of the file on its boot medium.
func (f *File) Path() string {
	return cString(f.path)
}

// CmdLine returns the command line associated with the file.
func (f *File) CmdLine() string {
	return cString(f.cmdline)
}

// BaseRevisionSupported returns true if the boot loader supports the
// protocol revision requested by the kernel.
func BaseRevisionSupported() bool {
	return baseRevision[2] == 0
}

// FramebufferCount returns the number of framebuffers reported by the boot
// loader.
func FramebufferCount() uint64 {
	return responseCount(&framebufferRequest)
}

// GetFramebuffer returns the framebuffer with the specified index or nil if
// no such framebuffer exists.
func GetFramebuffer(index uint64) *Framebuffer {
	return (*Framebuffer)(unsafe.Pointer(responseEntry(&framebufferRequest, index)))
}

// ModuleCount returns the number of modules loaded by the boot loader.
func ModuleCount() uint64 {
	return responseCount(&moduleRequest)
}

// Module returns the module with the specified index or nil if no such
// module exists.
func Module(index uint64) *File {
	return (*File)(unsafe.Pointer(responseEntry(&moduleRequest, index)))
}

// VisitModules invokes visitor for each module loaded by the boot loader.
// The visitor must return true to continue or false to abort the scan.
func VisitModules(visitor func(index uint64, mod *File) bool) {
	for i, count := uint64(0), ModuleCount(); i < count; i++ {
		if !visitor(i, Module(i)) {
			return
		}
	}
}

// KernelFile returns the kernel image file or nil if the boot loader did
// not honor the kernel file request.
func KernelFile() *File {
	if kernelFileRequest.response == 0 {
		return nil
	}

	resp := (*kernelFileResponse)(unsafe.Pointer(kernelFileRequest.response))
	return (*File)(unsafe.Pointer(resp.kernelFile))
}

// VisitBootCmdLine invokes visitor for each whitespace-separated entry of the
// kernel command line. Entries in "key=value" form are split at the first
// '='; any other entry is passed as both key and value. The strings passed
// to the visitor view boot loader memory.
func VisitBootCmdLine(visitor func(key, value string)) {
	kf := KernelFile()
	if kf == nil {
		return
	}

	cmdLine := kf.CmdLine()
	for start := 0; start < len(cmdLine); {
		for start < len(cmdLine) && isSpace(cmdLine[start]) {
			start++
		}

		end := start
		for end < len(cmdLine) && !isSpace(cmdLine[end]) {
			end++
		}

		if end > start {
			visitPair(cmdLine[start:end], visitor)
		}

		start = end
	}
}

func visitPair(pair string, visitor func(key, value string)) {
	for i := 0; i < len(pair); i++ {
		if pair[i] == '=' {
			visitor(pair[:i], pair[i+1:])
			return
		}
	}

	visitor(pair, pair)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

// responseCount returns the entry count of a framebuffer or module
// response; zero if the request was not honored.
func responseCount(req *request) uint64 {
	if req.response == 0 {
		return 0
	}
	return (*responseHeader)(unsafe.Pointer(req.response)).count
}

// responseEntry returns the address of the entry with the specified index
// in a framebuffer or module response; zero if the entry does not exist.
func responseEntry(req *request, index uint64) uintptr {
	if index >= responseCount(req) {
		return 0
	}

	hdr := (*responseHeader)(unsafe.Pointer(req.response))
	return *(*uintptr)(unsafe.Pointer(hdr.entries + uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

// cString returns a string that views the NULL-terminated string at ptr.
func cString(ptr uintptr) string {
	if ptr == 0 {
		return ""
	}

	var n uintptr
	for *(*byte)(unsafe.Pointer(ptr + n)) != 0 {
		n++
	}

	return unsafe.String((*byte)(unsafe.Pointer(ptr)), n)
}

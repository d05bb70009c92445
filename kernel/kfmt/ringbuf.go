package kfmt

import "io"

// ringBufferSize defines the size of the ring buffer that captures Printf
// output before the console is available. It must be a power of 2 and is
// large enough to hold a few screens worth of early boot messages.
const ringBufferSize = 4096

// ringBuffer is a fixed-size ring buffer. When full, new writes overwrite
// the oldest unread bytes.
type ringBuffer struct {
	buffer         [ringBufferSize]byte
	rIndex, wIndex int
}

// Write writes len(p) bytes from p to the ringBuffer.
func (rb *ringBuffer) Write(p []byte) (int, error) {
	const mask = ringBufferSize - 1

	for _, b := range p {
		rb.buffer[rb.wIndex] = b
		if rb.wIndex = (rb.wIndex + 1) & mask; rb.wIndex == rb.rIndex {
			rb.rIndex = (rb.rIndex + 1) & mask
		}
	}

	return len(p), nil
}

// Read reads up to len(p) bytes into p. It returns io.EOF once all buffered
// data has been consumed.
func (rb *ringBuffer) Read(p []byte) (int, error) {
	if rb.rIndex == rb.wIndex {
		return 0, io.EOF
	}

	// Read the contiguous block that starts at rIndex; a wrapped buffer is
	// drained by the following call.
	end := rb.wIndex
	if rb.rIndex > rb.wIndex {
		end = len(rb.buffer)
	}

	n := copy(p, rb.buffer[rb.rIndex:end])
	rb.rIndex = (rb.rIndex + n) & (ringBufferSize - 1)

	return n, nil
}

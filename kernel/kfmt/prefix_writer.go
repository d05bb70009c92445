package kfmt

import "io"

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	// midLine is set while the sink is in the middle of a line that has
	// already received its prefix.
	midLine bool
}

// Write writes len(p) bytes from p to the underlying sink, injecting the
// configured prefix at the start of every line. The injected prefix is not
// included in the returned byte count. A prefix is only emitted when there
// is line content to follow it.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written, lineStart int

	for lineStart < len(p) {
		if !w.midLine {
			w.Sink.Write(w.Prefix)
			w.midLine = true
		}

		lineEnd := len(p)
		for i := lineStart; i < len(p); i++ {
			if p[i] == '\n' {
				lineEnd = i + 1
				w.midLine = false
				break
			}
		}

		n, err := w.Sink.Write(p[lineStart:lineEnd])
		written += n
		if err != nil {
			return written, err
		}

		lineStart = lineEnd
	}

	return written, nil
}

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"moonkernel/device/video/console/font"
)

const (
	psf1Magic0 = 0x36
	psf1Magic1 = 0x04

	// psf1Mode512 marks fonts with 512 glyphs instead of 256.
	psf1Mode512 = 0x01

	consoleGlyphHeight = 16
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[psfdump] error: %s\n", err.Error())
	os.Exit(1)
}

// validatePSF1 checks that data holds a PSF1 font the kernel console can
// render: 8x16 glyphs and at least 256 of them.
func validatePSF1(data []byte) error {
	if len(data) < 4 || data[0] != psf1Magic0 || data[1] != psf1Magic1 {
		return errors.New("not a PSF1 font")
	}

	if charSize := int(data[3]); charSize != consoleGlyphHeight {
		return fmt.Errorf("glyph height should be %d; got %d", consoleGlyphHeight, charSize)
	}

	glyphCount := 256
	if data[2]&psf1Mode512 != 0 {
		glyphCount = 512
	}

	if exp, got := 4+glyphCount*consoleGlyphHeight, len(data); got < exp {
		return fmt.Errorf("font is truncated; expected at least %d bytes; got %d", exp, got)
	}

	return nil
}

// renderText renders text using f the same way the kernel console does: set
// glyph bits are printed as '#', clear bits as '.', a '\n' starts a new row
// of glyphs and other bytes outside printable ASCII are replaced by '*'.
func renderText(f *font.Font, text string) string {
	var buf bytes.Buffer

	for _, line := range strings.Split(text, "\n") {
		renderLine(&buf, f, line)
	}

	return buf.String()
}

func renderLine(buf *bytes.Buffer, f *font.Font, line string) {
	glyphLen := f.GlyphHeight * f.BytesPerRow
	for row := uint32(0); row < f.GlyphHeight; row++ {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if ch < 0x20 || ch > 0x7e {
				ch = '*'
			}

			offset := uint32(ch)*glyphLen + row*f.BytesPerRow
			for x := uint32(0); x < f.GlyphWidth; x++ {
				rowData := f.Data[offset+x/8]
				if rowData&(0x80>>(x%8)) != 0 {
					buf.WriteByte('#')
				} else {
					buf.WriteByte('.')
				}
			}
		}
		buf.WriteByte('\n')
	}
}

func runTool() error {
	text := flag.String("text", "Hello, gopher!", "the text to render")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "psfdump: check that a PSF1 font can be used as the console font module and render some text with it\n\n")
		fmt.Fprint(os.Stderr, "Usage: psfdump [options] font.psf\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		exit(errors.New("missing font file argument"))
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		return err
	}

	if err = validatePSF1(data); err != nil {
		return err
	}

	var f font.Font
	f.LoadPSF1(flag.Arg(0), data)

	fmt.Fprintf(os.Stdout, "%s: %d glyphs (%dx%d)\n\n", f.Name, f.GlyphCount(), f.GlyphWidth, f.GlyphHeight)
	fmt.Fprint(os.Stdout, renderText(&f, *text))
	return nil
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}

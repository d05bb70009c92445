package font

import "testing"

func TestLoadPSF1(t *testing.T) {
	specs := []struct {
		module        []byte
		expDataLen    int
		expGlyphCount uint32
	}{
		{nil, 0, 0},
		{[]byte{0x36, 0x04, 0x00}, 0, 0},
		{make([]byte, 4+256*16), 256 * 16, 256},
		{make([]byte, 4+17), 17, 1},
	}

	for specIndex, spec := range specs {
		var f Font
		f.LoadPSF1("default8x16", spec.module)

		if f.Name != "default8x16" {
			t.Errorf("[spec %d] expected font name to be default8x16; got %q", specIndex, f.Name)
		}

		if f.GlyphWidth != 8 || f.GlyphHeight != 16 || f.BytesPerRow != 1 {
			t.Errorf("[spec %d] expected an 8x16 font with 1 byte per row; got %dx%d with %d", specIndex, f.GlyphWidth, f.GlyphHeight, f.BytesPerRow)
		}

		if got := len(f.Data); got != spec.expDataLen {
			t.Errorf("[spec %d] expected glyph data length to be %d; got %d", specIndex, spec.expDataLen, got)
		}

		if got := f.GlyphCount(); got != spec.expGlyphCount {
			t.Errorf("[spec %d] expected glyph count to be %d; got %d", specIndex, spec.expGlyphCount, got)
		}
	}
}

func TestLoadPSF1SkipsHeader(t *testing.T) {
	module := []byte{0x36, 0x04, 0x00, 0x10, 0xaa, 0xbb}

	var f Font
	f.LoadPSF1("test", module)

	if f.Data[0] != 0xaa || f.Data[1] != 0xbb {
		t.Fatalf("expected glyph data to start after the 4-byte header; got % x", f.Data)
	}

	// The font views the module memory instead of copying it
	module[4] = 0xcc
	if f.Data[0] != 0xcc {
		t.Fatal("expected glyph data to alias the module bytes")
	}
}

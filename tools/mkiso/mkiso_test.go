package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenLimineConf(t *testing.T) {
	specs := []struct {
		cmdline string
		exp     string
	}{
		{
			"",
			"timeout: 0\n\n/moonkernel\n    protocol: limine\n    kernel_path: boot():/boot/kernel.elf\n    module_path: boot():/boot/font.psf\n",
		},
		{
			"  consoleFont=font.psf quiet ",
			"timeout: 0\n\n/moonkernel\n    protocol: limine\n    kernel_path: boot():/boot/kernel.elf\n    cmdline: consoleFont=font.psf quiet\n    module_path: boot():/boot/font.psf\n",
		},
	}

	for specIndex, spec := range specs {
		if got := genLimineConf(spec.cmdline); got != spec.exp {
			t.Errorf("[spec %d] expected to get:\n%s\ngot:\n%s", specIndex, spec.exp, got)
		}
	}
}

func TestImageLayout(t *testing.T) {
	layout := imageLayout(options{kernel: "k.elf", font: "f.psf", limineDir: "lim"})

	expDst := map[string]string{
		"/boot/kernel.elf":                "k.elf",
		"/boot/font.psf":                  "f.psf",
		"/boot/limine/limine-bios-cd.bin": filepath.Join("lim", "limine-bios-cd.bin"),
		"/EFI/BOOT/BOOTX64.EFI":           filepath.Join("lim", "BOOTX64.EFI"),
	}

	for dst, expSrc := range expDst {
		var found bool
		for _, item := range layout {
			if item.dst == dst {
				found = true
				if item.src != expSrc {
					t.Errorf("expected %s to be copied from %s; got %s", dst, expSrc, item.src)
				}
			}
		}

		if !found {
			t.Errorf("expected image layout to contain %s", dst)
		}
	}
}

func TestImageSize(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a", 1000)
	writeTestFile(t, dir, "b", 3000)

	size, err := imageSize([]fileCopy{
		{filepath.Join(dir, "a"), "/a"},
		{filepath.Join(dir, "b"), "/b"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if exp := int64(metadataSlack + 2*2048); size != exp {
		t.Fatalf("expected image size to be %d; got %d", exp, size)
	}

	if _, err = imageSize([]fileCopy{{filepath.Join(dir, "missing"), "/missing"}}); err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

func TestBuildISO(t *testing.T) {
	dir := t.TempDir()
	limineDir := filepath.Join(dir, "limine")
	if err := os.Mkdir(limineDir, 0755); err != nil {
		t.Fatal(err)
	}

	writeTestFile(t, dir, "kernel.elf", 8192)
	writeTestFile(t, dir, "font.psf", 4+256*16)
	for _, name := range []string{"limine-bios.sys", "limine-bios-cd.bin", "limine-uefi-cd.bin", "BOOTX64.EFI"} {
		writeTestFile(t, limineDir, name, 4096)
	}

	opts := options{
		kernel:    filepath.Join(dir, "kernel.elf"),
		font:      filepath.Join(dir, "font.psf"),
		limineDir: limineDir,
		cmdline:   "consoleFont=font.psf",
		volume:    "MOONKERNEL",
		out:       filepath.Join(dir, "out.iso"),
	}

	t.Run("missing input", func(t *testing.T) {
		badOpts := opts
		badOpts.kernel = filepath.Join(dir, "missing.elf")
		if err := buildISO(badOpts); err == nil {
			t.Fatal("expected an error for a missing kernel image")
		}
	})

	t.Run("success", func(t *testing.T) {
		if err := buildISO(opts); err != nil {
			t.Fatal(err)
		}

		data, err := os.ReadFile(opts.out)
		if err != nil {
			t.Fatal(err)
		}

		// The primary volume descriptor lives in sector 16
		const pvdOffset = 16 * 2048
		if len(data) < pvdOffset+6 || !bytes.Equal(data[pvdOffset+1:pvdOffset+6], []byte("CD001")) {
			t.Fatal("expected output to contain an ISO9660 primary volume descriptor")
		}

		if !bytes.Contains(data, []byte("kernel_path: boot():/boot/kernel.elf")) {
			t.Fatal("expected output to contain the generated limine.conf")
		}

		if !strings.Contains(string(data[pvdOffset:pvdOffset+2048]), "MOONKERNEL") {
			t.Fatal("expected the volume identifier to be set")
		}
	})
}

func writeTestFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), bytes.Repeat([]byte{0xaa}, size), 0644); err != nil {
		t.Fatal(err)
	}
}

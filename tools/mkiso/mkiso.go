package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
	diskpkg "github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/iso9660"
	"github.com/diskfs/go-diskfs/partition/gpt"
)

const (
	blockSize = diskfs.SectorSize(2048)

	// Space reserved on top of the size of the copied files for the
	// file system metadata.
	metadataSlack = 4 << 20

	// Blocks left free at each end of the disk for the primary and
	// backup GPT headers.
	partitionMargin = 64

	isoKernelPath = "/boot/kernel.elf"
	isoFontPath   = "/boot/font.psf"
	isoConfPath   = "/boot/limine.conf"
)

// options describes the inputs for building a boot image.
type options struct {
	kernel    string
	font      string
	limineDir string
	cmdline   string
	volume    string
	out       string
}

// fileCopy describes a host file that gets copied into the image.
type fileCopy struct {
	src string
	dst string
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[mkiso] error: %s\n", err.Error())
	os.Exit(1)
}

// genLimineConf returns the contents of a limine.conf file that boots the
// kernel using the Limine protocol and loads the font as the first module.
func genLimineConf(cmdline string) string {
	var buf bytes.Buffer

	fmt.Fprint(&buf, "timeout: 0\n\n")
	fmt.Fprint(&buf, "/moonkernel\n")
	fmt.Fprint(&buf, "    protocol: limine\n")
	fmt.Fprintf(&buf, "    kernel_path: boot():%s\n", isoKernelPath)
	if cmdline = strings.TrimSpace(cmdline); cmdline != "" {
		fmt.Fprintf(&buf, "    cmdline: %s\n", cmdline)
	}
	fmt.Fprintf(&buf, "    module_path: boot():%s\n", isoFontPath)

	return buf.String()
}

// imageLayout returns the list of host files that are copied into the
// image. The Limine files are expected in the layout of a Limine binary
// release.
func imageLayout(opts options) []fileCopy {
	return []fileCopy{
		{opts.kernel, isoKernelPath},
		{opts.font, isoFontPath},
		{filepath.Join(opts.limineDir, "limine-bios.sys"), "/boot/limine/limine-bios.sys"},
		{filepath.Join(opts.limineDir, "limine-bios-cd.bin"), "/boot/limine/limine-bios-cd.bin"},
		{filepath.Join(opts.limineDir, "limine-uefi-cd.bin"), "/boot/limine/limine-uefi-cd.bin"},
		{filepath.Join(opts.limineDir, "BOOTX64.EFI"), "/EFI/BOOT/BOOTX64.EFI"},
	}
}

// imageSize returns the size of an image that can hold the files in layout
// rounded up to the block size.
func imageSize(layout []fileCopy) (int64, error) {
	size := int64(metadataSlack)
	for _, item := range layout {
		info, err := os.Stat(item.src)
		if err != nil {
			return 0, err
		}
		size += info.Size()
	}

	bs := int64(blockSize)
	return (size + bs - 1) / bs * bs, nil
}

// buildISO writes a hybrid ISO9660 image to opts.out that boots the kernel
// via El Torito on both BIOS and UEFI machines.
func buildISO(opts options) error {
	layout := imageLayout(opts)
	diskSize, err := imageSize(layout)
	if err != nil {
		return err
	}

	if err = os.Remove(opts.out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	disk, err := diskfs.Create(opts.out, diskSize, diskfs.Raw, blockSize)
	if err != nil {
		return fmt.Errorf("create image: %w", err)
	}

	table := &gpt.Table{
		Partitions: []*gpt.Partition{
			{
				Start: partitionMargin,
				End:   uint64(diskSize/int64(blockSize)) - partitionMargin,
				Type:  gpt.EFISystemPartition,
				Name:  "EFI System",
			},
		},
	}
	if err = disk.Partition(table); err != nil {
		return fmt.Errorf("write partition table: %w", err)
	}

	fs, err := disk.CreateFilesystem(diskpkg.FilesystemSpec{Partition: 0, FSType: filesystem.TypeISO9660, VolumeLabel: opts.volume})
	if err != nil {
		return fmt.Errorf("create file system: %w", err)
	}

	for _, dir := range []string{"/boot/limine", "/EFI/BOOT"} {
		if err = fs.Mkdir(dir); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	for _, item := range layout {
		if err = copyFile(fs, item); err != nil {
			return err
		}
	}

	if err = writeFile(fs, isoConfPath, strings.NewReader(genLimineConf(opts.cmdline))); err != nil {
		return err
	}

	iso, ok := fs.(*iso9660.FileSystem)
	if !ok {
		return errors.New("unexpected file system type")
	}

	return iso.Finalize(iso9660.FinalizeOptions{
		VolumeIdentifier: opts.volume,
		RockRidge:        true,
		ElTorito: &iso9660.ElTorito{
			BootCatalog: "/boot/boot.cat",
			Entries: []*iso9660.ElToritoEntry{
				{
					Platform:  iso9660.BIOS,
					Emulation: iso9660.NoEmulation,
					BootFile:  "/boot/limine/limine-bios-cd.bin",
					BootTable: true,
					LoadSize:  4,
				},
				{
					Platform:  iso9660.EFI,
					Emulation: iso9660.NoEmulation,
					BootFile:  "/boot/limine/limine-uefi-cd.bin",
				},
			},
		},
	})
}

func copyFile(fs filesystem.FileSystem, item fileCopy) error {
	src, err := os.Open(item.src)
	if err != nil {
		return err
	}
	defer src.Close()

	return writeFile(fs, item.dst, src)
}

func writeFile(fs filesystem.FileSystem, path string, r io.Reader) error {
	dst, err := fs.OpenFile(path, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func runTool() error {
	var opts options
	flag.StringVar(&opts.kernel, "kernel", "build/kernel.elf", "the kernel image to boot")
	flag.StringVar(&opts.font, "font", "build/font.psf", "an 8x16 PSF1 font that is loaded as the console font module")
	flag.StringVar(&opts.limineDir, "limine", "limine", "a folder containing the Limine binary release files")
	flag.StringVar(&opts.cmdline, "cmdline", "", "the kernel command line")
	flag.StringVar(&opts.volume, "volume", "MOONKERNEL", "the ISO volume identifier")
	flag.StringVar(&opts.out, "out", "build/moonkernel.iso", "the ISO image to create")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, "mkiso: pack the kernel and its boot files into a bootable ISO image\n\n")
		fmt.Fprint(os.Stderr, "Usage: mkiso [options]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		exit(errors.New("unexpected arguments; see mkiso -h for usage"))
	}

	return buildISO(opts)
}

func main() {
	if err := runTool(); err != nil {
		exit(err)
	}
}

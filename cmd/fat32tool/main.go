package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/fat32"
)

// fileDevice adapts an *os.File to blockdev.Device for images that live on
// the host filesystem rather than an embedded MSD controller.
type fileDevice struct {
	f *os.File
}

func openFileDevice(path string) (*fileDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &fileDevice{f: f}, nil
}

func (d *fileDevice) Initialize() errorsx.DriverError { return nil }
func (d *fileDevice) Status() bool                    { return d.f != nil }

func (d *fileDevice) ReadSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError {
	off := int64(lba) * blockdev.SectorSize
	if _, err := d.f.ReadAt(buf[:int64(count)*blockdev.SectorSize], off); err != nil {
		return errorsx.ErrIOFailed.WrapError(err)
	}
	return nil
}

func (d *fileDevice) WriteSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError {
	off := int64(lba) * blockdev.SectorSize
	if _, err := d.f.WriteAt(buf[:int64(count)*blockdev.SectorSize], off); err != nil {
		return errorsx.ErrIOFailed.WrapError(err)
	}
	return nil
}

// mountFirst opens imagePath and mounts it, returning the driver and the
// letter of the first (and for a single-partition image, only) volume found.
func mountFirst(imagePath string) (*fat32.Driver, rune, error) {
	dev, err := openFileDevice(imagePath)
	if err != nil {
		return nil, 0, err
	}

	d := fat32.New()
	volumes, err := d.Mount(dev)
	if err != nil {
		return nil, 0, err
	}
	if len(volumes) == 0 {
		return nil, 0, fmt.Errorf("no FAT32 volume found in %s", imagePath)
	}
	return d, volumes[0].Letter, nil
}

// withLetter qualifies a bare path ("/a/b") with the mounted volume's drive
// letter, leaving an already-qualified path ("C:/a/b") untouched.
func withLetter(letter rune, path string) string {
	if len(path) >= 2 && path[1] == ':' {
		return path
	}
	if len(path) == 0 || path[0] != '/' {
		path = "/" + path
	}
	return string(letter) + ":" + path
}

func main() {
	app := cli.App{
		Usage: "Inspect and edit FAT32 disk images",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List the entries in a directory",
				ArgsUsage: "IMAGE_FILE PATH",
				Action:    listDirectory,
			},
			{
				Name:      "cat",
				Usage:     "Print a file's contents to stdout",
				ArgsUsage: "IMAGE_FILE PATH",
				Action:    catFile,
			},
			{
				Name:      "rename",
				Usage:     "Rename a file or directory",
				ArgsUsage: "IMAGE_FILE PATH NEW_NAME",
				Action:    renameEntry,
			},
			{
				Name:      "label",
				Usage:     "Print or set a volume's label",
				ArgsUsage: "IMAGE_FILE [NEW_LABEL]",
				Action:    volumeLabel,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func listDirectory(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: ls IMAGE_FILE PATH", 1)
	}
	d, letter, err := mountFirst(c.Args().Get(0))
	if err != nil {
		return err
	}

	dir, derr := d.OpenDir(withLetter(letter, c.Args().Get(1)))
	if derr != nil {
		return derr
	}
	defer dir.Close()

	for {
		info, eof, rerr := dir.Read()
		if rerr != nil {
			return rerr
		}
		if eof {
			return nil
		}

		kind := "-"
		if info.IsDirectory() {
			kind = "d"
		}
		fmt.Printf("%s %10s  %s\n", kind, humanize.Bytes(uint64(info.Size)), info.Name)
	}
}

func catFile(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: cat IMAGE_FILE PATH", 1)
	}
	d, letter, err := mountFirst(c.Args().Get(0))
	if err != nil {
		return err
	}

	f, oerr := d.OpenFile(withLetter(letter, c.Args().Get(1)))
	if oerr != nil {
		return oerr
	}
	defer f.Close()

	buf := make([]byte, 4096)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := os.Stdout.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr != nil {
			return rerr
		}
		if n == 0 {
			return nil
		}
	}
}

func renameEntry(c *cli.Context) error {
	if c.Args().Len() != 3 {
		return cli.Exit("usage: rename IMAGE_FILE PATH NEW_NAME", 1)
	}
	d, letter, err := mountFirst(c.Args().Get(0))
	if err != nil {
		return err
	}

	return d.Rename(withLetter(letter, c.Args().Get(1)), c.Args().Get(2))
}

func volumeLabel(c *cli.Context) error {
	if c.Args().Len() != 1 && c.Args().Len() != 2 {
		return cli.Exit("usage: label IMAGE_FILE [NEW_LABEL]", 1)
	}
	d, letter, err := mountFirst(c.Args().Get(0))
	if err != nil {
		return err
	}

	if c.Args().Len() == 2 {
		if serr := d.SetLabel(letter, c.Args().Get(1)); serr != nil {
			return serr
		}
	}

	label, lerr := d.GetLabel(letter)
	if lerr != nil {
		return lerr
	}
	fmt.Println(string(label[:]))
	return nil
}

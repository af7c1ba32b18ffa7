// Package fat32 is the public API surface of the driver: mount/eject a
// disk, enumerate mounted volumes, get/set volume labels, open/read/close
// directories and files, and rename entries.
package fat32

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/direntry"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/file"
	"github.com/embeddedfs/fat32/mount"
	"github.com/embeddedfs/fat32/path"
	"github.com/embeddedfs/fat32/volume"
)

// Driver is the process-wide handle a host embeds: one volume registry
// shared across every disk mounted through it.
type Driver struct {
	Registry *volume.Registry
	Flags    mount.MountFlags
}

// New constructs an empty Driver with no mounted volumes, permitting both
// read and write operations.
func New() *Driver {
	return &Driver{
		Registry: volume.NewRegistry(),
		Flags:    mount.MountFlagsAllowRead | mount.MountFlagsAllowWrite,
	}
}

// Mount scans dev for FAT32 partitions and registers each one under a
// freshly-assigned drive letter. A disk with zero valid partitions mounts
// successfully with zero volumes: per-partition validation failures (an
// unreadable BPB, a partition that isn't FAT32) are never fatal and are
// simply skipped. The returned error is non-nil only for whole-disk
// failures — the device not being ready or a missing/bad MBR signature.
func (d *Driver) Mount(dev blockdev.Device) ([]*volume.Volume, error) {
	candidates, _, err := mount.Mount(dev)
	if err != nil {
		return nil, err
	}

	var added []*volume.Volume
	for _, cand := range candidates {
		v := volume.New(dev, cand)
		if aerr := d.Registry.Add(v); aerr != nil {
			continue
		}
		added = append(added, v)
	}
	return added, nil
}

// Eject removes the volume mounted under letter, if any.
func (d *Driver) Eject(letter rune) {
	d.Registry.Remove(letter)
}

// Volumes lists every currently-mounted volume, ordered by letter.
func (d *Driver) Volumes() []*volume.Volume {
	return d.Registry.List()
}

// FirstVolume mirrors the source's volume_get_first(): the lowest-lettered
// mounted volume, or nil if none are mounted.
func (d *Driver) FirstVolume() *volume.Volume {
	return d.Registry.First()
}

// GetLabel returns the space-padded 11-byte label of the volume mounted
// under letter.
func (d *Driver) GetLabel(letter rune) ([11]byte, errorsx.DriverError) {
	v := d.Registry.Get(letter)
	if v == nil {
		return [11]byte{}, errorsx.ErrNoVolume
	}
	cur := direntry.NewRootCursor(v)
	label, found, err := direntry.GetLabel(&cur)
	if err != nil {
		return [11]byte{}, err
	}
	if !found {
		return [11]byte{}, errorsx.ErrNotFound
	}
	return label, nil
}

// SetLabel overwrites the label of the volume mounted under letter.
func (d *Driver) SetLabel(letter rune, name string) errorsx.DriverError {
	if !d.Flags.CanWrite() {
		return errorsx.ErrNotSupported
	}
	v := d.Registry.Get(letter)
	if v == nil {
		return errorsx.ErrNoVolume
	}
	cur := direntry.NewRootCursor(v)
	found, err := direntry.SetLabel(&cur, name)
	if err != nil {
		return err
	}
	if !found {
		return errorsx.ErrNotFound
	}
	return nil
}

// Dir is an open directory, ready to be read one entry at a time.
type Dir struct {
	cur *direntry.Cursor
}

// OpenDir resolves path ("L:/a/b/") to a directory and returns a Dir
// positioned at its first record.
func (d *Driver) OpenDir(p string) (*Dir, errorsx.DriverError) {
	cur, err := path.Resolve(d.Registry, p)
	if err != nil {
		return nil, err
	}
	return &Dir{cur: cur}, nil
}

// Read returns the next in-use entry in the directory. eof is true once
// every record has been consumed, at which point info is the zero value
// and err is nil: end of directory is a soft condition, not an error.
func (dd *Dir) Read() (info direntry.Info, eof bool, err errorsx.DriverError) {
	return dd.cur.ReadEntry()
}

// Close flushes the volume's sector cache.
func (dd *Dir) Close() errorsx.DriverError {
	return dd.cur.Vol.Cache.Flush()
}

// OpenFile resolves path to a file and returns a cursor over it.
func (d *Driver) OpenFile(p string) (*file.Cursor, errorsx.DriverError) {
	return file.Open(d.Registry, p)
}

// Rename changes the name of the entry at path (best-effort: it can fail
// to grow a too-short entry chain).
func (d *Driver) Rename(p string, newName string) errorsx.DriverError {
	if !d.Flags.CanWrite() {
		return errorsx.ErrNotSupported
	}
	cur, err := path.LocateRecord(d.Registry, p)
	if err != nil {
		return err
	}
	return cur.Rename(newName)
}

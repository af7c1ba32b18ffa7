// Package cache implements the per-volume single-sector write-through
// buffer that mediates every FAT, FSInfo, directory and data sector read or
// write. Apart from the mount pipeline's own scratch-sector reads, it is the
// only component in this driver that talks to the block device directly.
package cache

import (
	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
)

// InvalidLBA marks a cache with no sector currently loaded.
const InvalidLBA = ^uint32(0)

// SectorCache is a single 512-byte buffer shared by every reader/writer of
// one volume. It is not safe for concurrent use; callers must serialize
// access per volume.
type SectorCache struct {
	dev       blockdev.Device
	buffer    [blockdev.SectorSize]byte
	bufferLBA uint32
	dirty     bool
}

// New creates an empty cache bound to dev. No sector is loaded until the
// first Read.
func New(dev blockdev.Device) *SectorCache {
	return &SectorCache{dev: dev, bufferLBA: InvalidLBA}
}

// Buffer returns the live 512-byte buffer. Any mutation made through this
// slice MUST be followed by a call to MarkDirty, or the change will be lost
// silently the next time a different LBA is read.
func (c *SectorCache) Buffer() []byte {
	return c.buffer[:]
}

// MarkDirty flags the currently cached sector as modified.
func (c *SectorCache) MarkDirty() {
	c.dirty = true
}

// CurrentLBA returns the LBA currently resident in the cache, or InvalidLBA
// if nothing has been read yet.
func (c *SectorCache) CurrentLBA() uint32 {
	return c.bufferLBA
}

// Read ensures the cache holds the sector at lba. If a different sector is
// already cached and dirty, it is written back first. If lba is already the
// cached sector, this is a no-op.
func (c *SectorCache) Read(lba uint32) errorsx.DriverError {
	if c.bufferLBA == lba {
		return nil
	}
	if err := c.Flush(); err != nil {
		return err
	}
	if err := c.dev.ReadSectors(lba, 1, c.buffer[:]); err != nil {
		return errorsx.ErrIOFailed.WrapError(err)
	}
	c.bufferLBA = lba
	c.dirty = false
	return nil
}

// Flush writes the buffer back to its cached LBA if dirty, and clears the
// dirty flag. It is a no-op if the buffer is clean. A failed write leaves
// the dirty flag set so a later retry can re-attempt the write.
func (c *SectorCache) Flush() errorsx.DriverError {
	if !c.dirty {
		return nil
	}
	if c.bufferLBA == InvalidLBA {
		c.dirty = false
		return nil
	}
	if err := c.dev.WriteSectors(c.bufferLBA, 1, c.buffer[:]); err != nil {
		return errorsx.ErrIOFailed.WrapError(err)
	}
	c.dirty = false
	return nil
}

// Package fat32test provides shared test fixtures for the FAT32 driver: an
// in-memory block device and a synthetic on-disk image builder.
package fat32test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
)

// MemoryDisk is a blockdev.Device backed entirely by a byte slice, for tests
// that need a real (if tiny) FAT32 image without a physical MSD.
type MemoryDisk struct {
	Data  []byte
	Ready bool
}

// NewMemoryDisk wraps data as a block device. data's length must be a
// multiple of blockdev.SectorSize.
func NewMemoryDisk(data []byte) *MemoryDisk {
	return &MemoryDisk{Data: data, Ready: true}
}

// CreateRandomImage allocates totalSectors sectors of random data. It either
// returns a usable slice or fails t.
func CreateRandomImage(totalSectors uint, t *testing.T) []byte {
	buf := make([]byte, totalSectors*blockdev.SectorSize)
	_, err := rand.Read(buf)
	require.NoErrorf(t, err, "failed to fill %d random sectors", totalSectors)
	return buf
}

func (m *MemoryDisk) Initialize() errorsx.DriverError {
	m.Ready = true
	return nil
}

func (m *MemoryDisk) Status() bool {
	return m.Ready
}

func (m *MemoryDisk) ReadSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError {
	start := uint64(lba) * blockdev.SectorSize
	end := start + uint64(count)*blockdev.SectorSize
	if end > uint64(len(m.Data)) {
		return errorsx.ErrIOFailed.WithMessage("read past end of image")
	}
	copy(buf, m.Data[start:end])
	return nil
}

func (m *MemoryDisk) WriteSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError {
	start := uint64(lba) * blockdev.SectorSize
	end := start + uint64(count)*blockdev.SectorSize
	if end > uint64(len(m.Data)) {
		return errorsx.ErrIOFailed.WithMessage("write past end of image")
	}
	copy(m.Data[start:end], buf)
	return nil
}

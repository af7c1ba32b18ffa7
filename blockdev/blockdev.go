// Package blockdev defines the block-oriented Mass Storage Device interface
// the FAT32 driver sits on top of. It is the only external collaborator the
// driver talks to disk through; everything above it (cache, FAT engine,
// directory engine, file cursor) is written in terms of this interface.
//
// Implementations are synchronous and must not perform partial transfers: a
// call either reads/writes every requested sector or fails outright.
package blockdev

import "github.com/embeddedfs/fat32/errorsx"

// SectorSize is the only sector size this driver supports. FAT12/FAT16 and
// non-512-byte sectors are out of scope.
const SectorSize = 512

// Device is a synchronous, sector-addressed block device such as an SD card
// accessed through an MSD controller.
type Device interface {
	// Initialize prepares the device for use (spin-up, bus reset, etc).
	Initialize() errorsx.DriverError

	// Status reports whether the device is present and ready.
	Status() bool

	// ReadSectors fills buf with count sectors of data starting at lba.
	// len(buf) must equal count*SectorSize.
	ReadSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError

	// WriteSectors writes count sectors of data from buf starting at lba.
	// len(buf) must equal count*SectorSize.
	WriteSectors(lba uint32, count uint32, buf []byte) errorsx.DriverError
}

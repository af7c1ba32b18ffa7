package direntry_test

import (
	"testing"

	"github.com/embeddedfs/fat32/direntry"
	"github.com/embeddedfs/fat32/fat32test"
	"github.com/embeddedfs/fat32/volume"
)

// newRootVolume builds a tiny in-memory volume with a single-sector root
// directory cluster, ready to have raw directory records poked into it.
func newRootVolume(t *testing.T) (*volume.Volume, *fat32test.MemoryDisk) {
	t.Helper()
	spec := fat32test.DefaultImageSpec()
	spec.VolumeLabel = ""
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))
	v := fat32test.NewVolume(disk, spec)
	return v, disk
}

// sfnRecord lays out an 11-byte base+ext name, attribute, starting cluster
// and size into a raw 32-byte SFN directory record.
func sfnRecord(base, ext string, attr byte, cluster, size uint32) [32]byte {
	var rec [32]byte
	for i := 0; i < 8; i++ {
		if i < len(base) {
			rec[i] = base[i]
		} else {
			rec[i] = ' '
		}
	}
	for i := 0; i < 3; i++ {
		if i < len(ext) {
			rec[8+i] = ext[i]
		} else {
			rec[8+i] = ' '
		}
	}
	rec[11] = attr
	rec[20] = byte(cluster >> 16)
	rec[21] = byte(cluster >> 24)
	rec[26] = byte(cluster)
	rec[27] = byte(cluster >> 8)
	rec[28] = byte(size)
	rec[29] = byte(size >> 8)
	rec[30] = byte(size >> 16)
	rec[31] = byte(size >> 24)
	return rec
}

// lfnRecord lays out one LFN slot for a 1-based sequence index carrying up
// to 13 UCS-2 code units from name (padded with 0x0000 then 0xFFFF).
func lfnRecord(seqIndex int, isLast bool, checksum byte, name []rune) [32]byte {
	var rec [32]byte
	seq := byte(seqIndex)
	if isLast {
		seq |= 0x40
	}
	rec[0] = seq
	rec[11] = direntry.AttrLFN
	rec[13] = checksum

	offsets := [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
	start := (seqIndex - 1) * 13
	for i, off := range offsets {
		pos := start + i
		var unit uint16
		if pos < len(name) {
			unit = uint16(name[pos])
		} else if pos == len(name) {
			unit = 0x0000
		} else {
			unit = 0xFFFF
		}
		rec[off] = byte(unit)
		rec[off+1] = byte(unit >> 8)
	}
	return rec
}

// putRecords writes records sequentially starting at the volume's root
// directory, followed by an end-of-directory marker, directly into the
// backing disk image (bypassing the cache, modeling pre-existing on-disk
// content).
func putRecords(disk *fat32test.MemoryDisk, v *volume.Volume, records ...[32]byte) {
	base := uint64(v.RootLBA) * 512
	for i, rec := range records {
		copy(disk.Data[base+uint64(i*32):], rec[:])
	}
	end := base + uint64(len(records)*32)
	disk.Data[end] = direntry.StateEndOfDirectory
}

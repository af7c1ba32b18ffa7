// Package mount implements the FAT32 mount pipeline: MBR parsing, partition
// scan, BPB validation and volume geometry construction.
package mount

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/bytesextra"

	"github.com/embeddedfs/fat32/blockdev"
	"github.com/embeddedfs/fat32/errorsx"
)

// MountFlags is the mount-time configuration bitmask, trimmed down to what
// a FAT32 read/write driver needs.
type MountFlags int

const (
	// MountFlagsAllowRead permits read operations against the mounted volume.
	MountFlagsAllowRead = MountFlags(1 << iota)
	// MountFlagsAllowWrite permits write/rename operations against the
	// mounted volume; without it, fat32.Driver's Rename and SetLabel return
	// ErrNotSupported. file.Cursor.Write does not consult this flag.
	MountFlagsAllowWrite
	// MountFlagsPreserveTimestamps is not consulted by any operation: a
	// rename always keeps an entry's existing date/time fields untouched,
	// whether or not this flag is set.
	MountFlagsPreserveTimestamps
)

// CanRead reports whether flags permits read operations.
func (flags MountFlags) CanRead() bool {
	return flags&MountFlagsAllowRead != 0
}

// CanWrite reports whether flags permits write operations.
func (flags MountFlags) CanWrite() bool {
	return flags&MountFlagsAllowWrite != 0
}

// Geometry is the fully-resolved layout of one FAT32 volume, ready to be
// handed to the volume registry for registration.
type Geometry struct {
	SectorSize  uint32
	ClusterSize uint32
	TotalSize   uint32
	InfoLBA     uint32
	FatLBA      uint32
	DataLBA     uint32
	RootLBA     uint32
	RootCluster uint32
}

// Candidate is a partition table entry together with its resolved geometry,
// ready for volume construction.
type Candidate struct {
	Partition Partition
	BPB       BPB
	Geometry  Geometry
}

// BuildGeometry computes a volume's LBAs from its partition entry and BPB.
// data_lba is always computed before root_lba, since root_lba's
// cluster-to-sector conversion depends on it (root_lba ordering, see
// DESIGN.md).
func BuildGeometry(p Partition, b BPB) Geometry {
	clusterSize := uint32(b.ClusterSize)
	fatLBA := p.LBA + uint32(b.RsvdCnt)
	dataLBA := fatLBA + uint32(b.NumFATs)*b.FATSizeSectors()
	rootLBA := (b.RootCluster-2)*clusterSize + dataLBA

	return Geometry{
		SectorSize:  uint32(b.SectorSize),
		ClusterSize: clusterSize,
		TotalSize:   b.TotalSectorCount(),
		InfoLBA:     p.LBA + uint32(b.FSInfoSect),
		FatLBA:      fatLBA,
		DataLBA:     dataLBA,
		RootLBA:     rootLBA,
		RootCluster: b.RootCluster,
	}
}

// readScratchSector reads one sector from dev into a fresh scratch buffer,
// also exposed as an io.ReadWriteSeeker over the same backing array. This
// models the original driver's stack-local mount_buffer: a single 512-byte
// scratch area reused across the MBR and each candidate BPB read, scoped to
// the Mount call instead of held as global state.
func readScratchSector(dev blockdev.Device, lba uint32) ([]byte, *bytesextra.ReadWriteSeeker, errorsx.DriverError) {
	buf := make([]byte, blockdev.SectorSize)
	if err := dev.ReadSectors(lba, 1, buf); err != nil {
		return nil, nil, errorsx.ErrIOFailed.WrapError(err)
	}
	return buf, bytesextra.NewReadWriteSeeker(buf), nil
}

// bootSignatureFrom reads the trailing 0xAA55 out of a scratch sector through
// encoding/binary instead of a manual offset load, the one place the mount
// pipeline goes through io.ReadWriteSeeker rather than direct indexing.
func bootSignatureFrom(scratch *bytesextra.ReadWriteSeeker) (uint16, error) {
	if _, err := scratch.Seek(bootSignatureOffset, io.SeekStart); err != nil {
		return 0, err
	}
	var sig uint16
	if err := binary.Read(scratch, binary.LittleEndian, &sig); err != nil {
		return 0, err
	}
	return sig, nil
}

// Mount runs the full pipeline against dev: status check, initialize, read
// LBA 0, parse the MBR, and validate each non-empty partition entry as a
// FAT32 BPB. A disk with no partitioning or no FAT32 partitions is not an
// error: it simply yields zero candidates, matching disk_mount, which
// returns success unconditionally once the MBR signature checks out and
// silently skips any partition fat_search rejects.
//
// err is reserved for whole-disk failures: the device not being ready,
// Initialize failing, or a missing/bad MBR boot signature. Per-partition
// validation problems (an unreadable BPB sector, a malformed BPB, a
// partition that isn't FAT32) are never fatal; they are accumulated into
// diagnostics (via go-multierror) and returned alongside whatever
// candidates did validate. Callers that only care whether the mount as a
// whole succeeded should check err; diagnostics is an optional side-channel
// for logging why particular partitions were skipped.
func Mount(dev blockdev.Device) (candidates []Candidate, diagnostics error, err error) {
	if !dev.Status() {
		return nil, nil, errorsx.ErrDiskNotReady
	}
	if ierr := dev.Initialize(); ierr != nil {
		return nil, nil, errorsx.ErrDiskNotReady.WrapError(ierr)
	}

	mbrBuf, mbrScratch, rerr := readScratchSector(dev, 0)
	if rerr != nil {
		return nil, nil, rerr
	}
	if sig, sigErr := bootSignatureFrom(mbrScratch); sigErr != nil || sig != bootSignature {
		return nil, nil, errorsx.ErrBadSignature
	}

	partitions, perr := ParseMBR(mbrBuf)
	if perr != nil {
		return nil, nil, perr
	}

	var diag *multierror.Error

	for i, p := range partitions {
		if p.LBA == 0 {
			continue
		}

		bpbBuf, _, berr := readScratchSector(dev, p.LBA)
		if berr != nil {
			diag = multierror.Append(diag, fmt.Errorf("partition %d: %w", i, berr))
			continue
		}

		bpb, perr := ParseBPB(bpbBuf)
		if perr != nil {
			diag = multierror.Append(diag, fmt.Errorf("partition %d: %w", i, perr))
			continue
		}

		if !IsFAT32(bpbBuf, bpb) {
			diag = multierror.Append(diag, fmt.Errorf("partition %d: %w", i, errorsx.ErrUnsupportedFS))
			continue
		}

		candidates = append(candidates, Candidate{
			Partition: p,
			BPB:       bpb,
			Geometry:  BuildGeometry(p, bpb),
		})
	}

	return candidates, diag.ErrorOrNil(), nil
}

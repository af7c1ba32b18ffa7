package fat32_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/direntry"
	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/fat32"
	"github.com/embeddedfs/fat32/fat32test"
)

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

func writeRecordsAt(disk *fat32test.MemoryDisk, sector uint32, records ...[32]byte) {
	base := uint64(sector) * 512
	for i, rec := range records {
		copy(disk.Data[base+uint64(i*32):], rec[:])
	}
	end := base + uint64(len(records)*32)
	disk.Data[end] = direntry.StateEndOfDirectory
}

func TestMountRegistersOneVolumeUnderFirstLetter(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	d := fat32.New()
	added, err := d.Mount(disk)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, 'C', added[0].Letter)
	assert.Same(t, added[0], d.FirstVolume())
	assert.Equal(t, added, d.Volumes())
}

func TestMountOnDiskWithNoPartitionsYieldsNoVolumes(t *testing.T) {
	img := make([]byte, 4*512)
	img[510] = 0x55
	img[511] = 0xAA
	disk := fat32test.NewMemoryDisk(img)

	d := fat32.New()
	added, err := d.Mount(disk)
	assert.NoError(t, err)
	assert.Empty(t, added)
	assert.Nil(t, d.FirstVolume())
}

func TestEjectRemovesVolume(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	d := fat32.New()
	added, err := d.Mount(disk)
	require.NoError(t, err)
	letter := added[0].Letter

	d.Eject(letter)
	assert.Empty(t, d.Volumes())
}

func TestGetSetLabel(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	spec.VolumeLabel = "ORIGINAL"
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	d := fat32.New()
	added, err := d.Mount(disk)
	require.NoError(t, err)
	letter := added[0].Letter

	label, lerr := d.GetLabel(letter)
	require.NoError(t, lerr)
	assert.Equal(t, "ORIGINAL   ", string(label[:]))

	require.NoError(t, d.SetLabel(letter, "RENAMED"))

	label2, lerr2 := d.GetLabel(letter)
	require.NoError(t, lerr2)
	assert.Equal(t, "RENAMED    ", string(label2[:]))
}

func TestGetLabelUnknownVolume(t *testing.T) {
	d := fat32.New()
	_, err := d.GetLabel('Z')
	assert.Equal(t, errorsx.ErrNoVolume, err)
}

func TestOpenDirAndReadFile(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	d := fat32.New()
	added, err := d.Mount(disk)
	require.NoError(t, err)
	v := added[0]

	content := []byte("contents of the file")
	fileCluster := spec.RootCluster + 5
	sfn := sfnRecord("DOC~1", "TXT", direntry.AttrArchive, fileCluster, uint32(len(content)))
	checksum := direntry.SFNChecksum(sfn[:11])
	lfn := lfnRecord(1, true, checksum, []rune("DOC.TXT"))
	writeRecordsAt(disk, v.RootLBA, lfn, sfn)
	copy(disk.Data[uint64(v.ClusterToSector(fileCluster))*512:], content)

	dir, derr := d.OpenDir("C:/")
	require.NoError(t, derr)
	info, eof, rerr := dir.Read()
	require.NoError(t, rerr)
	require.False(t, eof)
	assert.Equal(t, "DOC.TXT", info.Name)
	assert.Equal(t, uint32(len(content)), info.Size)
	require.NoError(t, dir.Close())

	f, oerr := d.OpenFile("C:/DOC.TXT")
	require.NoError(t, oerr)
	buf := make([]byte, len(content))
	n, readErr := f.Read(buf)
	require.NoError(t, readErr)
	assert.Equal(t, len(content), n)
	assert.Equal(t, content, buf)
}

func TestRenameEntry(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	d := fat32.New()
	added, err := d.Mount(disk)
	require.NoError(t, err)
	v := added[0]

	fileCluster := spec.RootCluster + 5
	sfn := sfnRecord("DOC~1", "TXT", direntry.AttrArchive, fileCluster, 3)
	checksum := direntry.SFNChecksum(sfn[:11])
	lfn := lfnRecord(1, true, checksum, []rune("DOC.TXT"))
	writeRecordsAt(disk, v.RootLBA, lfn, sfn)

	require.NoError(t, d.Rename("C:/DOC.TXT", "NEW.TXT"))

	dir, derr := d.OpenDir("C:/")
	require.NoError(t, derr)
	info, eof, rerr := dir.Read()
	require.NoError(t, rerr)
	require.False(t, eof)
	assert.Equal(t, "NEW.TXT", info.Name)
}

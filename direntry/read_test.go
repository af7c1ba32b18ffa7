package direntry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/direntry"
)

func TestReadEntrySFNOnly(t *testing.T) {
	v, disk := newRootVolume(t)
	putRecords(disk, v, sfnRecord("HELLO", "TXT", direntry.AttrArchive, 10, 42))

	cur := direntry.NewRootCursor(v)
	info, eof, err := cur.ReadEntry()
	require.NoError(t, err)
	require.False(t, eof)
	assert.Equal(t, "HELLO.TXT", info.Name)
	assert.Equal(t, uint32(42), info.Size)
	assert.False(t, info.IsDirectory())

	_, eof, err = cur.ReadEntry()
	require.NoError(t, err)
	assert.True(t, eof)
}

func TestReadEntryReconstructsLFNName(t *testing.T) {
	v, disk := newRootVolume(t)

	name := []rune("longname.txt")
	sfn := sfnRecord("LONGNA~1", "TXT", direntry.AttrArchive, 11, 7)
	checksum := direntry.SFNChecksum(sfn[:11])
	lfn := lfnRecord(1, true, checksum, name)

	putRecords(disk, v, lfn, sfn)

	cur := direntry.NewRootCursor(v)
	info, eof, err := cur.ReadEntry()
	require.NoError(t, err)
	require.False(t, eof)
	assert.Equal(t, "longname.txt", info.Name)
	assert.Equal(t, 12, info.NameLength)
}

func TestReadEntrySkipsDeletedRecords(t *testing.T) {
	v, disk := newRootVolume(t)
	deleted := sfnRecord("GONE", "TXT", direntry.AttrArchive, 5, 1)
	deleted[0] = direntry.StateDeleted
	live := sfnRecord("HERE", "TXT", direntry.AttrArchive, 6, 2)
	putRecords(disk, v, deleted, live)

	cur := direntry.NewRootCursor(v)
	info, eof, err := cur.ReadEntry()
	require.NoError(t, err)
	require.False(t, eof)
	assert.Equal(t, "HERE.TXT", info.Name)
}

func TestReadEntryEmptyDirectory(t *testing.T) {
	v, _ := newRootVolume(t)
	cur := direntry.NewRootCursor(v)
	_, eof, err := cur.ReadEntry()
	require.NoError(t, err)
	assert.True(t, eof)
}

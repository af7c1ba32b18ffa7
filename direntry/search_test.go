package direntry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/direntry"
)

func TestSearchMatchesSFNBaseCaseInsensitive(t *testing.T) {
	v, disk := newRootVolume(t)
	putRecords(disk, v, sfnRecord("HELLO", "TXT", direntry.AttrArchive, 10, 123))

	cur := direntry.NewRootCursor(v)
	found, err := cur.Search("hello")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint32(123), cur.Size)
}

func TestSearchIgnoresDeletedRecords(t *testing.T) {
	v, disk := newRootVolume(t)
	deleted := sfnRecord("HELLO", "TXT", direntry.AttrArchive, 10, 1)
	deleted[0] = direntry.StateDeleted
	live := sfnRecord("HELLO", "DAT", direntry.AttrArchive, 20, 2)
	putRecords(disk, v, deleted, live)

	cur := direntry.NewRootCursor(v)
	found, err := cur.Search("HELLO")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(2), cur.Size)
}

func TestSearchNotFound(t *testing.T) {
	v, disk := newRootVolume(t)
	putRecords(disk, v, sfnRecord("FOO", "TXT", direntry.AttrArchive, 10, 1))

	cur := direntry.NewRootCursor(v)
	found, err := cur.Search("BAR")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchMatchesViaLFNChecksum(t *testing.T) {
	v, disk := newRootVolume(t)

	name := []rune("longname.txt")
	sfn := sfnRecord("ALONGF~1", "TXT", direntry.AttrArchive, 30, 99)
	checksum := direntry.SFNChecksum(sfn[:11])

	lfn := lfnRecord(1, true, checksum, name)
	putRecords(disk, v, lfn, sfn)

	cur := direntry.NewRootCursor(v)
	found, err := cur.Search(string(name))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(99), cur.Size)
}

package direntry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/direntry"
)

func TestEntriesRequired(t *testing.T) {
	assert.Equal(t, 1, direntry.EntriesRequired(1))
	assert.Equal(t, 1, direntry.EntriesRequired(8))
	assert.Equal(t, 2, direntry.EntriesRequired(9))
	assert.Equal(t, 2, direntry.EntriesRequired(13))
	assert.Equal(t, 3, direntry.EntriesRequired(14))
	assert.Equal(t, 3, direntry.EntriesRequired(26))
}

func TestRenameInPlaceWhenNameFits(t *testing.T) {
	v, disk := newRootVolume(t)
	putRecords(disk, v, sfnRecord("OLDNAME", "TXT", direntry.AttrArchive, 10, 5))

	cur := direntry.NewRootCursor(v)
	found, err := cur.Search("OLDNAME")
	require.NoError(t, err)
	require.True(t, found)

	locate := direntry.NewRootCursor(v)
	found, err = locate.LocateRecord("OLDNAME")
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, locate.Rename("A.TXT"))

	check := direntry.NewRootCursor(v)
	info, eof, err := check.ReadEntry()
	require.NoError(t, err)
	require.False(t, eof)
	assert.Equal(t, "A.TXT", info.Name)
}

func TestRenameGrowsChainWhenNameNoLongerFits(t *testing.T) {
	v, disk := newRootVolume(t)
	putRecords(disk, v, sfnRecord("SHORT", "TXT", direntry.AttrArchive, 10, 5))

	locate := direntry.NewRootCursor(v)
	found, err := locate.LocateRecord("SHORT")
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, locate.Rename("areallylongfilename.txt"))

	check := direntry.NewRootCursor(v)
	info, eof, err := check.ReadEntry()
	require.NoError(t, err)
	require.False(t, eof)
	assert.Equal(t, "areallylongfilename.txt", info.Name)
}

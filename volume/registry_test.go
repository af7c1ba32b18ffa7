package volume_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/volume"
)

func TestAddAssignsLettersFromC(t *testing.T) {
	reg := volume.NewRegistry()

	v1 := &volume.Volume{}
	v2 := &volume.Volume{}
	require.NoError(t, reg.Add(v1))
	require.NoError(t, reg.Add(v2))

	assert.Equal(t, 'C', v1.Letter)
	assert.Equal(t, 'D', v2.Letter)
}

func TestRemoveFreesLetterForReuse(t *testing.T) {
	reg := volume.NewRegistry()
	v1 := &volume.Volume{}
	require.NoError(t, reg.Add(v1))

	reg.Remove('C')
	assert.Nil(t, reg.Get('C'))

	v2 := &volume.Volume{}
	require.NoError(t, reg.Add(v2))
	assert.Equal(t, 'C', v2.Letter)
}

func TestListOrdersByLetter(t *testing.T) {
	reg := volume.NewRegistry()
	var vols []*volume.Volume
	for i := 0; i < 3; i++ {
		v := &volume.Volume{}
		require.NoError(t, reg.Add(v))
		vols = append(vols, v)
	}

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, 'C', list[0].Letter)
	assert.Equal(t, 'D', list[1].Letter)
	assert.Equal(t, 'E', list[2].Letter)
	assert.Same(t, list[0], reg.First())
}

func TestAddExhaustsLetters(t *testing.T) {
	reg := volume.NewRegistry()
	for i := 0; i < volume.MaxVolumes; i++ {
		require.NoError(t, reg.Add(&volume.Volume{}))
	}

	err := reg.Add(&volume.Volume{})
	assert.Equal(t, errorsx.ErrNoFreeLetters, err)
}

func TestFirstOnEmptyRegistry(t *testing.T) {
	reg := volume.NewRegistry()
	assert.Nil(t, reg.First())
}

package bytesx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/embeddedfs/fat32/internal/bytesx"
)

func TestLoadStoreRoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	bytesx.StoreU16(buf, 0, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), bytesx.LoadU16(buf, 0))

	bytesx.StoreU32(buf, 2, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), bytesx.LoadU32(buf, 2))
}

func TestEqual(t *testing.T) {
	assert.True(t, bytesx.Equal([]byte("abc"), []byte("abc")))
	assert.False(t, bytesx.Equal([]byte("abc"), []byte("abd")))
	assert.False(t, bytesx.Equal([]byte("abc"), []byte("ab")))
}

func TestUpperASCII(t *testing.T) {
	assert.Equal(t, byte('A'), bytesx.UpperASCII('a'))
	assert.Equal(t, byte('Z'), bytesx.UpperASCII('z'))
	assert.Equal(t, byte('9'), bytesx.UpperASCII('9'))
	assert.Equal(t, byte('_'), bytesx.UpperASCII('_'))
}

func TestEqualFoldASCII(t *testing.T) {
	assert.True(t, bytesx.EqualFoldASCII([]byte("HELLO"), []byte("hello")))
	assert.False(t, bytesx.EqualFoldASCII([]byte("HELLO"), []byte("world")))
	assert.False(t, bytesx.EqualFoldASCII([]byte("HI"), []byte("HELLO")))
}

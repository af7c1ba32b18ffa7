package volume_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/embeddedfs/fat32/volume"
)

func TestRecommendedClusterSizeTableBoundaries(t *testing.T) {
	cases := []struct {
		totalSectors uint32
		want         uint8
	}{
		{1000, 0},
		{66600, 0},
		{66601, 1},
		{532480, 1},
		{532481, 8},
		{67108864, 32},
		{0xFFFFFFFF, 64},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, volume.RecommendedClusterSize(c.totalSectors), "totalSectors=%d", c.totalSectors)
	}
}

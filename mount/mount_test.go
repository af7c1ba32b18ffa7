package mount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedfs/fat32/errorsx"
	"github.com/embeddedfs/fat32/fat32test"
	"github.com/embeddedfs/fat32/mount"
)

func TestMountRejectsTooFewDataClusters(t *testing.T) {
	spec := fat32test.DefaultImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	candidates, diagnostics, err := mount.Mount(disk)
	assert.Empty(t, candidates)
	assert.NoError(t, err)
	assert.Error(t, diagnostics)
}

func TestMountAcceptsValidFAT32Partition(t *testing.T) {
	spec := fat32test.LargeImageSpec()
	disk := fat32test.NewMemoryDisk(fat32test.BuildImage(spec))

	candidates, diagnostics, err := mount.Mount(disk)
	require.NoError(t, err)
	require.NoError(t, diagnostics)
	require.Len(t, candidates, 1)

	cand := candidates[0]
	assert.Equal(t, spec.PartitionLBA, cand.Partition.LBA)
	assert.Equal(t, spec.RootCluster, cand.BPB.RootCluster)
	assert.Equal(t, spec.RootCluster, cand.Geometry.RootCluster)
}

func TestMountFailsOnBadSignature(t *testing.T) {
	disk := fat32test.NewMemoryDisk(make([]byte, 4*512))
	_, _, err := mount.Mount(disk)
	assert.Equal(t, errorsx.ErrBadSignature, err)
}

func TestMountNoPartitionsYieldsZeroVolumes(t *testing.T) {
	img := make([]byte, 4*512)
	img[510] = 0x55
	img[511] = 0xAA
	disk := fat32test.NewMemoryDisk(img)

	candidates, diagnostics, err := mount.Mount(disk)
	assert.NoError(t, err)
	assert.NoError(t, diagnostics)
	assert.Empty(t, candidates)
}

func TestBuildGeometryOrdersDataBeforeRoot(t *testing.T) {
	p := mount.Partition{LBA: 1}
	b := mount.BPB{RsvdCnt: 32, NumFATs: 2, FATSize32: 8, ClusterSize: 1, RootCluster: 2}

	geo := mount.BuildGeometry(p, b)
	assert.Equal(t, uint32(1+32+2*8), geo.DataLBA)
	assert.Equal(t, geo.DataLBA, geo.RootLBA)
}

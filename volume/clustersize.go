package volume

import (
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// clusterSizeRow is one row of the Microsoft-recommended cluster-size table,
// reproduced from the original driver's cluster_size_lut: the largest
// total sector count this cluster size applies
// to, for a volume with 512-byte sectors, 32 reserved sectors and 2 FATs.
type clusterSizeRow struct {
	MaxSectorCount uint32 `csv:"max_sector_count"`
	ClusterSize    uint8  `csv:"cluster_size"`
}

// clusterSizeLUTCSV is parsed the same way a larger embedded-CSV geometry
// table would be, except this table is small enough to keep inline rather
// than as a separate embedded asset.
const clusterSizeLUTCSV = `max_sector_count,cluster_size
66600,0
532480,1
16777216,8
33554432,16
67108864,32
4294967295,64
`

var clusterSizeLUT []clusterSizeRow

func init() {
	reader := strings.NewReader(clusterSizeLUTCSV)
	if err := gocsv.UnmarshalToCallback(reader, func(row clusterSizeRow) error {
		clusterSizeLUT = append(clusterSizeLUT, row)
		return nil
	}); err != nil {
		panic(fmt.Sprintf("volume: malformed cluster size table: %s", err))
	}
}

// RecommendedClusterSize returns the Microsoft-recommended sectors-per-
// cluster value for a freshly formatted volume of totalSectors sectors,
// reproducing the original driver's cluster_size_lut. A return of 0 means
// the volume is too small for FAT32 (it would be formatted FAT12/16
// instead, out of scope here).
func RecommendedClusterSize(totalSectors uint32) uint8 {
	for _, row := range clusterSizeLUT {
		if totalSectors <= row.MaxSectorCount {
			return row.ClusterSize
		}
	}
	return clusterSizeLUT[len(clusterSizeLUT)-1].ClusterSize
}

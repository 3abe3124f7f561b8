package hash

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the Castagnoli CRC of data. A data set stores one per
// section, over the stored (possibly compressed) bytes, and one over its
// metadata block. S3 uploads send the same value as the object checksum.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

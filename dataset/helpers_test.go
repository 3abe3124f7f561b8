package dataset

import "github.com/hupe1980/imecore/internal/hash"

func crc(b []byte) uint32 { return hash.CRC32C(b) }

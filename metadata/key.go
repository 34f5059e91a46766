package metadata

import (
	"hash/crc32"
	"strings"
)

// Key hashes a filename into the fixed-width lookup key used by the
// index. Filenames are folded to upper case first so lookups survive the
// case mangling of FAT-style filesystems.
func Key(filename string) uint32 {
	return crc32.ChecksumIEEE([]byte(strings.ToUpper(filename)))
}

// Key hashing for cache file names.
//
// A wildcard key can contain path separators and arbitrary Unicode, so it
// is never used as a file name directly. Its 16 hex character hash is,
// using the algorithm selected by Config.HashAlgorithm.
package lazyline

import (
	"encoding/binary"
	"encoding/hex"
	"hash/fnv"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// hash returns the 16 hex character name of key. Unknown algorithms fall
// back to xxHash3 so a cache path can always be formed.
func hash(key string, alg int) string {
	var sum [8]byte
	switch alg {
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write([]byte(key))
		binary.BigEndian.PutUint64(sum[:], h.Sum64())
	case AlgBlake2b:
		h, _ := blake2b.New(len(sum), nil)
		h.Write([]byte(key))
		h.Sum(sum[:0])
	default:
		binary.BigEndian.PutUint64(sum[:], xxh3.HashString(key))
	}
	return hex.EncodeToString(sum[:])
}

// Optional zstd framing for cache blobs.
//
// Offsets of a text file grow in small, regular steps, so a blob
// compresses well. Compression is opt-in per Store; on load the zstd frame
// magic decides whether to decompress, so plain and compressed caches can
// share a directory.
package lazyline

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder, safe for concurrent use. Concurrency 1 keeps
// them from starting background goroutines; only EncodeAll and DecodeAll
// are used.
var (
	zstdEncoder, _ = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(MaxLines)*12+maxFingerprint+64))
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, make([]byte, 0, len(data)/4))
}

func compressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

func decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptCache, err)
	}
	return out, nil
}

// Per-key build locks.
//
// Builds for the same key must be serialized while builds for different
// keys run in parallel. A lock per key would grow with every name ever
// requested, so keys are spread over a fixed table of mutexes instead.
// Two keys that share a shard serialize their builds; that only costs
// latency, never correctness.
package lazyline

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultLockShards is the size of the build lock table.
const DefaultLockShards = 64

type lockTable struct {
	shards []sync.Mutex
}

func newLockTable(n int) *lockTable {
	if n <= 0 {
		n = DefaultLockShards
	}
	return &lockTable{shards: make([]sync.Mutex, n)}
}

// lock acquires the shard for key and returns its unlock function.
func (t *lockTable) lock(key string) func() {
	m := &t.shards[hashShard(key, uint64(len(t.shards)))]
	m.Lock()
	return m.Unlock
}

func hashShard(key string, n uint64) uint64 {
	return xxhash.Sum64String(key) % n
}

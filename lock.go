// Cross-process build locks.
//
// The sharded mutex table in shard.go keeps one process from scanning the
// same file twice. Several processes sharing a cache directory need the
// same guarantee, so an index build also holds an exclusive flock(2) /
// LockFileEx lock on a sidecar ".lock" file next to the cache blob. The
// second process blocks until the first has published its blob and then
// loads it instead of scanning.
//
// OS locks need a real file descriptor, so they are only taken when the
// store runs on the OS filesystem.
package lazyline

import (
	"fmt"
	"os"
	"path/filepath"
)

const lockExt = ".lock"

// fileLock is an exclusive OS-level lock held on an open sidecar file.
// It is owned by the build that acquired it.
type fileLock struct {
	f *os.File
}

// acquireFileLock opens (creating if needed) the sidecar for the cache
// file at path and blocks until it holds an exclusive lock on it.
func acquireFileLock(path string) (*fileLock, error) {
	lockPath := path + lockExt
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("file lock: %w", err)
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file lock: %w", err)
	}
	l := &fileLock{f: f}
	if err := l.lock(); err != nil {
		f.Close()
		return nil, fmt.Errorf("file lock %s: %w", lockPath, err)
	}
	return l, nil
}

// release unlocks and closes the sidecar. The sidecar itself is left in
// place; deleting it while another process waits on it would let a third
// process lock a fresh inode and race the waiter.
func (l *fileLock) release() error {
	if l.f == nil {
		return nil
	}
	err := l.unlock()
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

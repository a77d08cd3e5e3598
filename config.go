package lazyline

import (
	"github.com/flanksource/commons/logger"
	"github.com/spf13/afero"
)

// Logger is the logging surface a Store uses. logger.Logger from
// flanksource/commons satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Config controls a Store. Zero values are replaced by defaults in Open.
type Config struct {
	Fs        afero.Fs // Filesystem for sources and caches (default OS)
	SourceDir string   // Catalog root; empty means names are registered by hand
	Include   []string // Doublestar patterns relative to SourceDir (default **/*.txt)
	Exclude   []string // Doublestar patterns removed from the catalog

	CacheDir      string // Index cache directory; empty disables persistence
	CompressCache bool   // zstd-compress cache blobs
	HashAlgorithm int    // Cache file naming: 1=xxHash3, 2=FNV1a, 3=Blake2b

	// LargeFileThreshold is the size in bytes from which a file is served
	// lazily from disk. Smaller files are materialized in memory once
	// indexed. Zero means DefaultLargeFileThresholdMB; negative means
	// every file is lazy.
	LargeFileThreshold int64

	ReadBuffer int    // Scan chunk size (default 1MB)
	LockShards int    // Build lock table size (default 64)
	Logger     Logger // Default logger.StandardLogger()
}

// DefaultInclude is the catalog pattern used when Config.Include is empty.
var DefaultInclude = []string{"**/*.txt"}

func (c *Config) defaults() {
	if c.Fs == nil {
		c.Fs = afero.NewOsFs()
	}
	if len(c.Include) == 0 {
		c.Include = DefaultInclude
	}
	if c.HashAlgorithm == 0 {
		c.HashAlgorithm = AlgXXHash3
	}
	if c.LargeFileThreshold == 0 {
		c.LargeFileThreshold = DefaultLargeFileThresholdMB * mb
	}
	if c.ReadBuffer == 0 {
		c.ReadBuffer = DefaultReadBuffer
	}
	if c.LockShards == 0 {
		c.LockShards = DefaultLockShards
	}
	if c.Logger == nil {
		c.Logger = logger.StandardLogger()
	}
}

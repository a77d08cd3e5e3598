// Persisted user settings.
//
// Settings are the small JSON document an operator edits: whether the
// engine is enabled, where the dump files live and from what size a file
// counts as large. The key names match the settings file written by
// earlier releases so existing files keep working.
package lazyline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// DefaultLargeFileThresholdMB is the default size, in megabytes, from
// which a file is served lazily.
const DefaultLargeFileThresholdMB = 50

const mb = 1024 * 1024

// Settings is the persisted configuration document.
type Settings struct {
	Enabled              bool   `json:"enabled"`
	DumpFolder           string `json:"datadumpFolder"`
	LargeFileThresholdMB int64  `json:"largeFileSizeThresholdMB"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{LargeFileThresholdMB: DefaultLargeFileThresholdMB}
}

// LoadSettings reads settings from path. A missing file yields
// DefaultSettings; fields absent from the file keep their defaults.
func LoadSettings(fsys afero.Fs, path string) (Settings, error) {
	s := DefaultSettings()
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("load settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("load settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings validates s and writes it to path as indented JSON.
func SaveSettings(fsys afero.Fs, path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := afero.WriteFile(fsys, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Validate rejects a threshold below one megabyte.
func (s Settings) Validate() error {
	if s.LargeFileThresholdMB < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, s.LargeFileThresholdMB)
	}
	return nil
}

// Active reports whether the engine should serve wildcards at all.
func (s Settings) Active() bool {
	return s.Enabled && strings.TrimSpace(s.DumpFolder) != ""
}

// Threshold returns the large file threshold in bytes.
func (s Settings) Threshold() int64 {
	return s.LargeFileThresholdMB * mb
}

// Apply copies the dump folder and threshold into cfg.
func (s Settings) Apply(cfg *Config) {
	if dir := strings.TrimSpace(s.DumpFolder); dir != "" {
		cfg.SourceDir = dir
	}
	if s.LargeFileThresholdMB > 0 {
		cfg.LargeFileThreshold = s.Threshold()
	}
}

// IsLarge reports whether a file of size bytes is served lazily under
// threshold. A non-positive threshold makes every file large.
func IsLarge(size, threshold int64) bool {
	return threshold <= 0 || size >= threshold
}

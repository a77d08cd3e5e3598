package main

import (
	"fmt"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/jpl-au/lazyline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options is the effective configuration after flags, environment,
// config file and settings file have been merged.
type options struct {
	Source      string   `toml:"source" mapstructure:"source"`
	Cache       string   `toml:"cache" mapstructure:"cache"`
	Include     []string `toml:"include" mapstructure:"include"`
	Exclude     []string `toml:"exclude" mapstructure:"exclude"`
	ThresholdMB int64    `toml:"threshold_mb" mapstructure:"threshold-mb"`
	Compress    bool     `toml:"compress" mapstructure:"compress"`
	Hash        string   `toml:"hash" mapstructure:"hash"`
	Settings    string   `toml:"settings,omitempty" mapstructure:"settings"`
}

var hashAlgorithms = map[string]int{
	"xxh3":    lazyline.AlgXXHash3,
	"fnv1a":   lazyline.AlgFNV1a,
	"blake2b": lazyline.AlgBlake2b,
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "lazyline",
		Short: "Random lines from very large wildcard files",
		Long: `lazyline builds compact line indexes for large text files and draws
random or seed-deterministic lines from them without loading the files
into memory. Indexes are cached on disk and reused until a file changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.String("source", "", "wildcard source directory")
	pf.String("cache", "", "index cache directory (empty disables caching)")
	pf.StringSlice("include", nil, "glob patterns of wildcard files (default **/*.txt)")
	pf.StringSlice("exclude", nil, "glob patterns to leave out")
	pf.Int64("threshold-mb", 0, "file size in MB from which lines are read from disk")
	pf.Bool("compress", false, "zstd-compress index caches")
	pf.String("hash", "xxh3", "cache file naming hash: xxh3, fnv1a or blake2b")
	pf.String("settings", "", "settings JSON file supplying source folder and threshold")
	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}
	logger.BindFlags(pf)

	root.AddCommand(
		newIndexCmd(v),
		newSampleCmd(v),
		newWarmCmd(v),
		newListCmd(v),
		newStatsCmd(v),
		newConfigCmd(v),
		newSettingsCmd(v),
		newWatchCmd(v),
	)
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("lazyline")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	logger.Debugf("Using config file: %s", v.ConfigFileUsed())
	return nil
}

// loadOptions merges viper state with the settings file, if any. Flags
// and environment win over the settings file.
func loadOptions(v *viper.Viper) (options, error) {
	var o options
	if err := v.Unmarshal(&o); err != nil {
		return o, fmt.Errorf("config: %w", err)
	}
	if _, ok := hashAlgorithms[o.Hash]; !ok {
		return o, fmt.Errorf("config: unknown hash %q", o.Hash)
	}
	if o.Settings == "" {
		return o, nil
	}

	s, err := lazyline.LoadSettings(afero.NewOsFs(), o.Settings)
	if err != nil {
		return o, err
	}
	if o.Source == "" {
		o.Source = s.DumpFolder
	}
	if o.ThresholdMB == 0 {
		o.ThresholdMB = s.LargeFileThresholdMB
	}
	return o, nil
}

func (o options) config() lazyline.Config {
	cfg := lazyline.Config{
		SourceDir:     o.Source,
		Include:       o.Include,
		Exclude:       o.Exclude,
		CacheDir:      o.Cache,
		CompressCache: o.Compress,
		HashAlgorithm: hashAlgorithms[o.Hash],
	}
	if o.ThresholdMB > 0 {
		cfg.LargeFileThreshold = o.ThresholdMB * 1024 * 1024
	}
	return cfg
}

func openStore(v *viper.Viper) (*lazyline.Store, error) {
	o, err := loadOptions(v)
	if err != nil {
		return nil, err
	}
	return lazyline.Open(o.config())
}

package main

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/jpl-au/lazyline"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSettingsCmd(v *viper.Viper) *cobra.Command {
	var (
		enabled   bool
		folder    string
		threshold int64
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or update the settings file given by --settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := v.GetString("settings")
			if path == "" {
				return errors.New("settings: --settings is required")
			}
			fs := afero.NewOsFs()
			s, err := lazyline.LoadSettings(fs, path)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			changed := false
			if f.Changed("enabled") {
				s.Enabled, changed = enabled, true
			}
			if f.Changed("dump-folder") {
				s.DumpFolder, changed = folder, true
			}
			if f.Changed("large-threshold-mb") {
				s.LargeFileThresholdMB, changed = threshold, true
			}
			if changed {
				if err := lazyline.SaveSettings(fs, path, s); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&enabled, "enabled", false, "enable the engine")
	f.StringVar(&folder, "dump-folder", "", "folder holding the dump files")
	f.Int64Var(&threshold, "large-threshold-mb", lazyline.DefaultLargeFileThresholdMB, "large file threshold in MB (at least 1)")
	return cmd
}

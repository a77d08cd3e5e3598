package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWarmCmd(v *viper.Viper) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Index every wildcard in the source directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			start := time.Now()
			if err := store.Warm(cmd.Context(), jobs); err != nil {
				return err
			}
			st := store.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %d wildcards in %s (%d scanned, %d from cache)\n",
				st.Ready, time.Since(start).Round(time.Millisecond), st.Scans, st.CacheHits)
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "parallel builds")
	return cmd
}

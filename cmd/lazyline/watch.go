package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/jpl-au/lazyline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var (
		debounce time.Duration
		warm     bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep indexes in step with the source directory until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := store.Watch(ctx,
				lazyline.WithDebounce(debounce),
				lazyline.WithSyncHook(func(res lazyline.SyncResult, err error) {
					if err != nil {
						return
					}
					if !warm || len(res.Added)+len(res.Changed) == 0 {
						return
					}
					if err := store.Warm(ctx, 0); err != nil && ctx.Err() == nil {
						logger.Warnf("warm after sync: %v", err)
					}
				}))
			if err != nil {
				return err
			}
			defer w.Close()

			logger.Infof("watching %s", store.Catalog().Root())
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", lazyline.DefaultDebounce, "quiet period before a sync")
	cmd.Flags().BoolVar(&warm, "warm", false, "rebuild changed indexes right after each sync")
	return cmd
}

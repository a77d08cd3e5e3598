package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"
	"github.com/jpl-au/lazyline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List wildcards in the source directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			var all []lazyline.Listing
			for l, err := range store.List() {
				if err != nil {
					return err
				}
				all = append(all, l)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSIZE\tPATH")
			for _, l := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.Name, humanize.IBytes(uint64(l.Size)), l.Path)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newStatsCmd(v *viper.Viper) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Index everything and report cache effectiveness as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Warm(cmd.Context(), jobs); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.Stats())
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "parallel builds")
	return cmd
}

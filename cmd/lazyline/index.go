package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newIndexCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "index <name|file>...",
		Short: "Build (or load) line indexes and report their size",
		Long: `Build the line index for each argument. An argument naming an existing
file is registered under its base name; anything else is looked up in the
source directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLINES\tSOURCE\tRESIDENT")
			for _, arg := range args {
				name := arg
				if info, err := os.Stat(arg); err == nil && !info.IsDir() {
					name = strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
					if _, err := store.Register(name, arg); err != nil {
						return err
					}
				}
				idx, err := store.Index(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%v\n", idx.Name, idx.Len(), idx.Source, idx.Resident())
			}
			return w.Flush()
		},
	}
}

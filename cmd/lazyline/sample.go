package main

import (
	"fmt"

	"github.com/jpl-au/lazyline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSampleCmd(v *viper.Viper) *cobra.Command {
	var (
		count int
		sep   string
		seed  int64
		mode  string
		not   []string
	)
	cmd := &cobra.Command{
		Use:   "sample <tag>",
		Short: "Draw lines from a wildcard",
		Long: `Draw lines from a wildcard. The tag accepts the wildcard syntax
"name,not=a|b" to exclude lines; --not adds further exclusions.`,
		Example: `  lazyline sample colors -n 3
  lazyline sample "colors,not=red|blue" --mode index --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := lazyline.Request{Count: count, Separator: sep, Seed: seed}
			switch mode {
			case "random":
				req.Mode = lazyline.ModeRandom
			case "index":
				req.Mode = lazyline.ModeIndex
			default:
				return fmt.Errorf("unknown mode %q (want random or index)", mode)
			}

			name, exclude := lazyline.ParseTag(args[0])
			req.Exclude = append(exclude, not...)

			store, err := openStore(v)
			if err != nil {
				return err
			}
			defer store.Close()

			out, err := store.Sample(name, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&count, "count", "n", 1, "number of lines")
	f.StringVar(&sep, "sep", ", ", "separator between lines")
	f.Int64Var(&seed, "seed", 0, "seed for index mode")
	f.StringVar(&mode, "mode", "random", "random or index")
	f.StringSliceVar(&not, "not", nil, "lines to exclude")
	return cmd
}

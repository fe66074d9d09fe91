//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/markkurossi/stitch/netlist"
	"github.com/spf13/cobra"
)

func main() {
	var output string
	var seed uint64
	params := netlist.RandomParams{
		Prefix: "GTP_LUT",
	}

	cmd := &cobra.Command{
		Use:   "lutgen [flags]",
		Short: "Generate random LUT netlists",
		Long: `The lutgen generates a random acyclic LUT netlist in the Yosys
JSON format. The same seed always produces the same netlist.

    $ lutgen --luts 5000 --seed 42 -o random.json
`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := netlist.NewDesign()
			d.Creator = "lutgen"
			m := netlist.Random("top", seed, params)
			d.Modules[m.Name] = m

			if output == "-" {
				return d.WriteJSON(os.Stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := d.WriteJSON(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "-",
		"output netlist file, - for stdout")
	flags.Uint64Var(&seed, "seed", 1, "random seed")
	flags.IntVar(&params.Inputs, "inputs", 16, "number of input bits")
	flags.IntVar(&params.Outputs, "outputs", 16, "number of output bits")
	flags.IntVar(&params.LUTs, "luts", 1000, "number of LUTs")
	flags.IntVar(&params.Window, "window", 12,
		"pick LUT inputs from this many most recent signals")
	flags.StringVar(&params.Prefix, "prefix", "GTP_LUT",
		"LUT cell type prefix")

	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "lutgen: %s\n", err)
		os.Exit(1)
	}
}

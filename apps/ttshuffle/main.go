//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/markkurossi/stitch/lut"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:   "ttshuffle [old-weights table new-weights]",
		Short: "Reorder the inputs of a LUT truth table",
		Long: `The ttshuffle converts a truth table between two input weight
orders. Character i of a weight string names the input with the
address weight 2^i. The table is an MSB first binary value prefixed
with 'b' or a hex value prefixed with 'h'.

    $ ttshuffle ABCD hD9 BCDA

Without arguments, the values are read from standard input.
`,
		Args:          cobra.RangeArgs(0, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return errors.Errorf("expected 0 or 3 arguments, got %d",
					len(args))
			}
			if len(args) == 0 {
				var err error
				args, err = prompt(os.Stdin, os.Stdout)
				if err != nil {
					return err
				}
			}
			return shuffle(os.Stdout, args[0], args[1], args[2])
		},
	}
	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "ttshuffle: %s\n", err)
		os.Exit(1)
	}
}

func prompt(in io.Reader, out io.Writer) ([]string, error) {
	questions := []string{
		"Enter original weight relationship (e.g., ABCD): ",
		"Enter original truth table (e.g., b11011001 or hD9): ",
		"Enter new weight relationship (e.g., BCDA): ",
	}
	r := bufio.NewReader(in)
	var result []string
	for _, q := range questions {
		fmt.Fprint(out, q)
		var value string
		if _, err := fmt.Fscan(r, &value); err != nil {
			return nil, err
		}
		result = append(result, value)
	}
	return result, nil
}

func shuffle(out io.Writer, from, table, to string) error {
	order, err := lut.WeightOrder(from, to)
	if err != nil {
		return err
	}
	tt, err := lut.ParseTruthTable(table, len(from))
	if err != nil {
		return err
	}
	result, err := tt.Permute(order)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	fmt.Fprintf(out, "Original Weights: %s\n", from)
	fmt.Fprintf(out, "New Weights:      %s\n", to)
	bold.Fprintf(out, "New Truth Table (binary): %s\n", result.Binary())
	bold.Fprintf(out, "New Truth Table (hex):    %s\n", result.Hex())
	return nil
}

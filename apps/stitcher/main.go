//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/markkurossi/stitch/netlist"
	"github.com/markkurossi/stitch/stitch"
	"github.com/markkurossi/stitch/utils"
	"github.com/markkurossi/tabulate"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type options struct {
	output         string
	config         string
	dump           string
	metrics        string
	timing         bool
	verify         string
	filter         string
	prefix         string
	fusedType      string
	layerThreshold int
	verbose        bool
	debug          bool
}

func main() {
	opts := new(options)

	cmd := &cobra.Command{
		Use:   "stitcher [flags] netlist.json",
		Short: "Merge LUT pairs into dual-output LUT6D cells",
		Long: `The stitcher reads a Yosys JSON netlist, merges pairs of LUT1-6
cells into dual-output GTP_LUT6D cells, and writes the resulting
netlist.

    $ stitcher -o out.json --verify all in.json
`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "-",
		"output netlist file, - for stdout")
	flags.StringVarP(&opts.config, "config", "c", "", "YAML config file")
	flags.StringVar(&opts.dump, "dump", "",
		"dump collected LUTs to the file, - for stderr")
	flags.StringVar(&opts.metrics, "metrics", "",
		"write pass metrics to the file")
	flags.BoolVar(&opts.timing, "timing", false, "print timing report")
	flags.StringVar(&opts.verify, "verify", string(utils.VerifyNone),
		"verify merges: none, sim, sat, or all")
	flags.StringVar(&opts.filter, "filter", "",
		"collect only LUTs matching the expression")
	flags.StringVar(&opts.prefix, "prefix", "GTP_LUT", "LUT cell type prefix")
	flags.StringVar(&opts.fusedType, "fused-type", "GTP_LUT6D",
		"merged LUT cell type")
	flags.IntVar(&opts.layerThreshold, "layer-threshold", 2000,
		"LUT count above which the search is layered, 0 forces layered, -1 global")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "debug output")

	if err := cmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "stitcher: %s\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts *options, input string) error {
	params, err := makeParams(cmd, opts)
	if err != nil {
		return err
	}
	defer params.Close()

	design, err := netlist.ReadJSONFile(input)
	if err != nil {
		return errors.Wrap(err, input)
	}
	top, err := design.Top()
	if err != nil {
		return errors.Wrap(err, input)
	}

	result, err := stitch.Run(top, params)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		err = design.WriteJSON(os.Stdout)
	} else {
		err = writeDesign(design, opts.output)
	}
	if err != nil {
		return err
	}

	if params.Timing != nil {
		style := tabulate.ASCII
		if isatty.IsTerminal(os.Stderr.Fd()) {
			style = tabulate.UnicodeLight
		}
		params.Timing.Print(os.Stderr, style)
	}
	if params.Metrics != nil {
		if err := params.Metrics.WriteFile(opts.metrics); err != nil {
			return err
		}
	}
	summary(os.Stderr, top, result)
	return nil
}

func makeParams(cmd *cobra.Command, opts *options) (*utils.Params, error) {
	var params *utils.Params
	var err error

	if len(opts.config) > 0 {
		params, err = utils.LoadParams(opts.config)
		if err != nil {
			return nil, err
		}
	} else {
		params = utils.NewParams()
	}

	flags := cmd.Flags()
	if flags.Changed("verify") {
		params.Verify = utils.VerifyMode(opts.verify)
	}
	if flags.Changed("filter") {
		params.Filter = opts.filter
	}
	if flags.Changed("prefix") {
		params.LUTPrefix = opts.prefix
	}
	if flags.Changed("fused-type") {
		params.FusedType = opts.fusedType
	}
	if flags.Changed("layer-threshold") {
		params.LayerThreshold = opts.layerThreshold
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	level := logrus.WarnLevel
	if opts.verbose || params.Diagnostics {
		level = logrus.InfoLevel
	}
	logger := utils.NewLogger(os.Stderr, opts.debug)
	if !opts.debug {
		logger.SetLevel(level)
	}
	params.Logger = logger

	switch opts.dump {
	case "":
	case "-":
		params.DumpOut = nopCloser{os.Stderr}
	default:
		f, err := os.Create(opts.dump)
		if err != nil {
			return nil, err
		}
		params.DumpOut = f
	}
	if opts.timing {
		params.Timing = utils.NewTiming()
	}
	if len(opts.metrics) > 0 {
		params.Metrics = utils.NewMetrics()
	}
	return params, nil
}

type nopCloser struct {
	io.Writer
}

func (c nopCloser) Close() error {
	return nil
}

func writeDesign(design *netlist.Design, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := design.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func summary(out io.Writer, m *netlist.Module, result *stitch.Result) {
	var shared, absorb int
	for _, plan := range result.Plans {
		if plan.Template == stitch.Absorb {
			absorb++
		} else {
			shared++
		}
	}
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	bold.Fprintf(out, "%s: ", m.Name)
	if len(result.Plans) == 0 {
		color.New(color.FgYellow).Fprintf(out, "no valid merges found")
	} else {
		green.Fprintf(out, "%d merges", len(result.Plans))
	}
	fmt.Fprintf(out,
		" (%d LUTs, %d shared, %d absorb, %d candidates, %d discarded)\n",
		len(result.Nodes), shared, absorb, result.Candidates,
		result.Discarded)
}

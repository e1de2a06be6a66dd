package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/waitstate/benchmarks"
)

type benchOptions struct {
	csv     bool
	json    bool
	verbose bool

	profile profileOptions
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Schedule the built-in kernels and check their documented padding",
		Long: `Schedule the built-in kernels and check their documented padding.

Each benchmark kernel is written for one target and documents how many wait
states it needs there. The command fails if any kernel schedules differently.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.csv, "csv", false, "print results as CSV")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "print padding per rule")
	opts.profile.addFlags(cmd)

	return cmd
}

func runBench(cmd *cobra.Command, rootOpts *RootOptions, opts *benchOptions) error {
	if opts.csv && opts.json {
		return NewExitError(ExitCommandError, "--csv and --json are mutually exclusive")
	}

	stop, err := opts.profile.start()
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot profile", err)
	}
	defer stop()

	h := benchmarks.NewHarness(benchmarks.HarnessConfig{
		Config:  rootOpts.Config,
		Output:  cmd.OutOrStdout(),
		Verbose: opts.verbose,
	})
	h.AddBenchmarks(benchmarks.GetKernelBenchmarks())

	results := h.RunAll()
	switch {
	case opts.csv:
		h.PrintCSV(results)
	case opts.json:
		if err := h.WriteJSON(results); err != nil {
			return WrapExitError(ExitFailure, "cannot write results", err)
		}
	default:
		h.PrintResults(results)
	}

	var failed int
	for _, r := range results {
		if !r.Matches() {
			failed++
		}
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d benchmarks did not match", failed, len(results)))
	}
	return nil
}

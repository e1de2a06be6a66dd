package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/sarchlab/waitstate/loader"
	"github.com/sarchlab/waitstate/timing/core"
)

type scheduleOptions struct {
	stats  bool
	output string
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule <kernel.yaml>",
		Short: "Pad one kernel and print the scheduled listing",
		Long: `Pad one kernel and print the scheduled listing.

Inserted no-ops are printed as "s_nop 0 // <hazard>". With --output the
scheduled stream is also written as a kernel file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print hazard statistics after the listing")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the scheduled kernel to this YAML file")

	return cmd
}

func runSchedule(cmd *cobra.Command, rootOpts *RootOptions, opts *scheduleOptions, path string) error {
	k, err := loadKernel(cmd, rootOpts, path)
	if err != nil {
		return err
	}

	res, err := core.Compile(cmd.Context(), rootOpts.Config, k)
	if err != nil {
		return WrapExitError(ExitFailure, "scheduling failed", err)
	}

	w := cmd.OutOrStdout()
	printListing(w, res)
	if opts.stats {
		printStats(w, res, rootOpts.Config)
	}

	if opts.output != "" {
		out := &loader.Kernel{
			Name:         res.Name,
			Target:       res.Target.String(),
			Instructions: res.Instructions,
		}
		if err := loader.Save(opts.output, out); err != nil {
			return WrapExitError(ExitCommandError, "cannot write output", err)
		}
	}
	return nil
}

func loadKernel(cmd *cobra.Command, rootOpts *RootOptions, path string) (*loader.Kernel, error) {
	k, err := loader.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid kernel", err)
	}
	if target := rootOpts.targetOverride(cmd); target != "" {
		k.Target = target
	}
	return k, nil
}

func printListing(w io.Writer, res *core.Result) {
	_, _ = fmt.Fprintf(w, "// kernel: %s\n", res.Name)
	_, _ = fmt.Fprintf(w, "// target: %s (%s)\n", res.Target, res.Target.Family())
	for _, inst := range res.Instructions {
		_, _ = fmt.Fprintln(w, inst)
	}
}

func printStats(w io.Writer, res *core.Result, cfg *core.Config) {
	s := res.Stats
	_, _ = fmt.Fprintf(w, "// instructions: %d\n", s.Instructions)
	_, _ = fmt.Fprintf(w, "// hazards: %d\n", s.Hazards)
	_, _ = fmt.Fprintf(w, "// wait states: %d (%v at %g MHz)\n", s.Padding, s.PaddingTime, cfg.ClockMHz)
	for _, rule := range slices.Sorted(maps.Keys(s.PaddingByRule)) {
		_, _ = fmt.Fprintf(w, "//   %s: %d\n", rule, s.PaddingByRule[rule])
	}
}

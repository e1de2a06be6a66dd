package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sarchlab/waitstate/loader"
	"github.com/sarchlab/waitstate/timing/core"
)

type batchOptions struct {
	workers  int
	progress bool
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <kernel.yaml>...",
		Short: "Schedule many kernels concurrently and summarize them",
		Long: `Schedule many kernels concurrently and summarize them.

Kernels are independent compilations. One summary line is printed per kernel
in the order the files were given, followed by a total.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "number of kernels scheduled at once (default from config)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "show a progress bar on stderr")

	return cmd
}

func runBatch(cmd *cobra.Command, rootOpts *RootOptions, opts *batchOptions, paths []string) error {
	cfg := rootOpts.Config.Clone()
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
		if err := cfg.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
	}

	kernels := make([]*loader.Kernel, 0, len(paths))
	for _, path := range paths {
		k, err := loadKernel(cmd, rootOpts, path)
		if err != nil {
			return err
		}
		kernels = append(kernels, k)
	}

	var done func(*core.Result)
	if opts.progress {
		bar := progressbar.NewOptions(len(kernels),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("scheduling"),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		done = func(*core.Result) { _ = bar.Add(1) }
	}

	results, err := core.RunBatch(cmd.Context(), cfg, kernels, done)
	if err != nil {
		return WrapExitError(ExitFailure, "scheduling failed", err)
	}

	w := cmd.OutOrStdout()
	var instructions, padding int64
	for _, res := range results {
		s := res.Stats
		_, _ = fmt.Fprintf(w, "%s: %s, %s instructions, %d hazards, %s wait states\n",
			res.Name, res.Target,
			humanize.Comma(int64(s.Instructions)), s.Hazards, humanize.Comma(int64(s.Padding)))
		instructions += int64(s.Instructions)
		padding += int64(s.Padding)
	}
	_, _ = fmt.Fprintf(w, "total: %d kernels, %s instructions, %s wait states\n",
		len(results), humanize.Comma(instructions), humanize.Comma(padding))
	return nil
}

package main

import (
	"flag"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/sarchlab/waitstate/timing/core"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Target     string

	// Config is resolved before any subcommand runs.
	Config *core.Config
}

// NewRootCommand creates the root command of the waitstate CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "waitstate",
		Short: "GPU instruction hazard scheduler",
		Long: `Insert the wait states GPU hardware requires between dependent instructions.

Kernels are read from YAML instruction streams. Every hazard rule the target
architecture requires observes the stream; each instruction is preceded by the
largest padding any rule asks for.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.Target, "target", "", "target architecture, overrides config and kernel files (e.g. gfx90a)")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewRulesCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))

	return cmd
}

// resolve loads the configuration and applies flag overrides.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg := core.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := core.LoadConfig(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("target") {
		cfg.Target = o.Target
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	return nil
}

// targetOverride returns the target forced on the command line, or an
// empty string if kernel files may choose their own.
func (o *RootOptions) targetOverride(cmd *cobra.Command) string {
	if cmd.Flags().Changed("target") {
		return o.Target
	}
	return ""
}

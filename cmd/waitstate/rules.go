package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/timing/hazard"
)

type rulesOptions struct {
	all bool
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rulesOptions{}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the hazard catalogue and the rules a target activates",
		Args:  cobra.NoArgs,
		Long: `List the hazard catalogue and the rules a target activates.

With --all, print the active rules of every known target and verify that no
target activates two rules documenting the same hazard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.all {
				return runRulesMatrix(cmd.OutOrStdout())
			}
			return runRules(cmd.OutOrStdout(), rootOpts)
		},
	}

	cmd.Flags().BoolVar(&opts.all, "all", false, "list the active rules of every known target")

	return cmd
}

func runRules(w io.Writer, rootOpts *RootOptions) error {
	target, err := arch.Parse(rootOpts.Config.Target)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid target", err)
	}

	_, _ = fmt.Fprintf(w, "target: %s (%s)\n", target, target.Family())
	for _, r := range hazard.Catalogue() {
		status := "-"
		switch {
		case r.IsRequired(target) && slices.Contains(rootOpts.Config.DisabledRules, r.Name):
			status = "disabled"
		case r.IsRequired(target):
			status = "active"
		}
		_, _ = fmt.Fprintf(w, "  %-18s %-8s %s\n", r.Name, status, r.Comment)
	}
	return nil
}

func runRulesMatrix(w io.Writer) error {
	for _, t := range arch.Known() {
		var names []string
		for _, r := range hazard.Required(t) {
			names = append(names, r.Name)
		}
		if len(names) == 0 {
			names = []string{"-"}
		}
		_, _ = fmt.Fprintf(w, "%-8s %-8s %s\n", t, t.Family(), strings.Join(names, ", "))
	}

	if overlaps := hazard.CheckPartition(arch.Known(), hazard.ExclusiveGroups()); len(overlaps) > 0 {
		for _, o := range overlaps {
			_, _ = fmt.Fprintf(w, "overlap: %s activates %s\n", o.Target, strings.Join(o.Rules, ", "))
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d target(s) activate overlapping rules", len(overlaps)))
	}
	return nil
}

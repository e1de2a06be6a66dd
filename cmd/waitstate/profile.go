package main

import (
	"os"
	"runtime/pprof"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// profileOptions enables pprof profiling of a command.
type profileOptions struct {
	cpuProfile string
	memProfile string
}

func (p *profileOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	cmd.Flags().StringVar(&p.memProfile, "memprofile", "", "write a heap profile to this file when done")
}

// start begins CPU profiling if requested. The returned function stops it
// and writes the heap profile.
func (p *profileOptions) start() (func(), error) {
	var cpu *os.File
	if p.cpuProfile != "" {
		f, err := os.Create(p.cpuProfile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "failed to start CPU profile")
		}
		cpu = f
	}

	return func() {
		if cpu != nil {
			pprof.StopCPUProfile()
			_ = cpu.Close()
		}
		if p.memProfile != "" {
			if err := writeHeapProfile(p.memProfile); err != nil {
				klog.Errorf("%v", err)
			}
		}
	}, nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create memory profile")
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Wrap(err, "failed to write memory profile")
	}
	return nil
}

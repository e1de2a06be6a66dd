// Package core runs the hazard scheduler over whole kernels.
//
// A Compilation is the context of one kernel: it resolves the target once,
// owns a hazard registry for the duration of one scheduling pass and
// reports statistics. Compilations are independent, so RunBatch can
// schedule many kernels concurrently.
package core

import (
	"context"
	"iter"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/loader"
	"github.com/sarchlab/waitstate/timing/hazard"
	"github.com/sarchlab/waitstate/timing/latency"
)

// checkEvery is how many instructions are scheduled between two checks of
// the context.
const checkEvery = 1024

// Stats holds the statistics of one compilation.
type Stats struct {
	hazard.Stats

	// PaddingTime is the time the inserted padding occupies at the
	// configured clock.
	PaddingTime time.Duration
}

// Result is a scheduled kernel.
type Result struct {
	Name         string
	Target       arch.Target
	Instructions []insts.Instruction
	Stats        Stats
}

// Compilation schedules one kernel for one target.
type Compilation struct {
	// ID identifies the compilation in logs.
	ID     uuid.UUID
	Name   string
	Target arch.Target

	registry *hazard.Registry
	cost     latency.CostModel
}

// NewCompilation creates a compilation. The kernel's own target, if any,
// takes precedence over the configured one.
func NewCompilation(cfg *Config, k *loader.Kernel) (*Compilation, error) {
	id := k.Target
	if id == "" {
		id = cfg.Target
	}
	target, err := arch.Parse(id)
	if err != nil {
		return nil, errors.Wrapf(err, "kernel %s", k.Name)
	}

	c := &Compilation{
		ID:     uuid.New(),
		Name:   k.Name,
		Target: target,
		cost:   latency.NewCostModel(cfg.ClockMHz),
	}
	c.registry = hazard.NewRegistry(target,
		hazard.WithDisabled(cfg.DisabledRules...),
		hazard.WithName(c.label()),
	)

	klog.V(1).Infof("%s: compiling %d instructions for %s (%s)",
		c.label(), len(k.Instructions), target, target.Family())
	return c, nil
}

// Rules returns the hazard rules active for the compilation.
func (c *Compilation) Rules() []*hazard.Rule {
	return c.registry.Rules()
}

// Schedule returns the lazily padded stream. See hazard.Registry.Schedule.
func (c *Compilation) Schedule(stream iter.Seq[insts.Instruction]) iter.Seq2[insts.Instruction, error] {
	return c.registry.Schedule(stream)
}

// Run schedules a complete stream. It stops with the context's error if
// the context is cancelled.
func (c *Compilation) Run(ctx context.Context, stream []insts.Instruction) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "kernel %s", c.Name)
	}

	out := make([]insts.Instruction, 0, len(stream))
	for inst, err := range c.Schedule(slices.Values(stream)) {
		if err != nil {
			return nil, errors.Wrapf(err, "kernel %s", c.Name)
		}
		out = append(out, inst)

		if len(out)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrapf(err, "kernel %s", c.Name)
			}
		}
	}

	stats := c.Stats()
	klog.V(1).Infof("%s: %d instructions, %d hazards, %d wait states inserted (%v)",
		c.label(), stats.Instructions, stats.Hazards, stats.Padding, stats.PaddingTime)

	return &Result{
		Name:         c.Name,
		Target:       c.Target,
		Instructions: out,
		Stats:        stats,
	}, nil
}

// Stats returns the statistics of the compilation so far.
func (c *Compilation) Stats() Stats {
	s := c.registry.Stats()
	return Stats{
		Stats:       s,
		PaddingTime: c.cost.Duration(s.Padding),
	}
}

// Compile schedules one kernel with a fresh compilation.
func Compile(ctx context.Context, cfg *Config, k *loader.Kernel) (*Result, error) {
	c, err := NewCompilation(cfg, k)
	if err != nil {
		return nil, err
	}
	return c.Run(ctx, k.Instructions)
}

func (c *Compilation) label() string {
	return c.Name + "/" + c.ID.String()[:8]
}

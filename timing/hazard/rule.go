// Package hazard inserts the wait states GPU hardware requires between
// instructions whose fixed pipeline latencies would otherwise produce wrong
// results.
//
// Each documented hardware timing table is a Rule: a stateless record of
// predicates and latency tables. An Observer runs one rule over an
// instruction stream and tracks the hazard windows the rule opens. A Registry
// selects the rules that apply to a target, drives every instruction through
// all of their observers and emits the maximum padding any of them requires.
package hazard

import (
	"github.com/gomlx/exceptions"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/timing/latency"
)

// WindowPolicy decides what happens to a window once it resolved a conflict.
type WindowPolicy int

const (
	// WindowPersist keeps the window decaying after a conflict, so later
	// conflicts of a more demanding kind are still padded.
	WindowPersist WindowPolicy = iota
	// WindowCloseOnHazard closes the window after its first conflict.
	// Only valid for rules with a single requirement per latency class.
	WindowCloseOnHazard
)

func (p WindowPolicy) String() string {
	if p == WindowCloseOnHazard {
		return "close-on-hazard"
	}
	return "persist"
}

// Rule is one hardware hazard, described as data.
type Rule struct {
	// Name identifies the rule, e.g. XDLWrite908.
	Name string
	// Comment is attached to every padding instruction the rule causes.
	Comment string

	// Required reports whether the rule applies to a target.
	Required func(t arch.Target) bool

	// WriteTrigger is true if the window opens on the registers an
	// instruction writes, false if it opens on the registers it reads.
	WriteTrigger bool
	// Trigger reports whether an instruction opens a window.
	Trigger func(inst insts.Instruction) bool
	// TriggerRegs selects the registers the window tracks. Defaults to Dst
	// for write triggers and Src for read triggers.
	TriggerRegs func(inst insts.Instruction) []insts.Register

	// MaxNops is the window size per latency class of the trigger: the
	// largest separation any conflict may require.
	MaxNops latency.Table

	// Hazard reports whether inst conflicts with an open window and, if so,
	// the separation from the trigger that the conflict requires.
	Hazard func(w *Window, inst insts.Instruction) (nops int, ok bool)

	Policy WindowPolicy
}

// IsRequired reports whether the rule applies to the target.
func (r *Rule) IsRequired(t arch.Target) bool {
	return r.Required != nil && r.Required(t)
}

// Triggers reports whether inst opens a window of this rule.
func (r *Rule) Triggers(inst insts.Instruction) bool {
	if r.WriteTrigger && len(inst.Dst) == 0 {
		return false
	}
	if !r.WriteTrigger && len(inst.Src) == 0 {
		return false
	}
	return r.Trigger(inst)
}

// MaxNopsFor returns the window size for a triggering instruction.
func (r *Rule) MaxNopsFor(inst insts.Instruction) (int, error) {
	nops, ok := r.MaxNops.Lookup(inst.LatencyClass())
	if !ok {
		return 0, invariantf("%s: latency class %d of %s not in table {%s}",
			r.Name, inst.LatencyClass(), inst.Name, r.MaxNops)
	}
	return nops, nil
}

// Nops returns the separation conflict needs from trigger, or false if the
// pair is not a hazard for this rule.
func (r *Rule) Nops(trigger, conflict insts.Instruction) (int, bool, error) {
	if !r.Triggers(trigger) {
		return 0, false, nil
	}
	size, err := r.MaxNopsFor(trigger)
	if err != nil {
		return 0, false, err
	}
	w := newWindow(trigger, r.trackedRegs(trigger), size)
	return r.check(w, conflict)
}

func (r *Rule) trackedRegs(inst insts.Instruction) []insts.Register {
	if r.TriggerRegs != nil {
		return r.TriggerRegs(inst)
	}
	if r.WriteTrigger {
		return inst.Dst
	}
	return inst.Src
}

// check evaluates Hazard, turning table defects raised inside it into
// invariant violations.
func (r *Rule) check(w *Window, inst insts.Instruction) (nops int, ok bool, err error) {
	if caught := exceptions.TryCatch[error](func() {
		nops, ok = r.Hazard(w, inst)
	}); caught != nil {
		return 0, false, invariantf("%s: %v", r.Name, caught)
	}

	if !ok {
		return 0, false, nil
	}
	if nops < 0 {
		return 0, false, invariantf("%s: negative requirement %d", r.Name, nops)
	}
	if nops > w.Max {
		return 0, false, invariantf("%s: %s after %s needs %d wait states, window holds %d",
			r.Name, inst.Name, w.Trigger.Name, nops, w.Max)
	}
	return nops, true, nil
}

// validate checks that a rule record is complete.
func (r *Rule) validate() error {
	switch {
	case r.Name == "":
		return invariantf("rule without name")
	case r.Comment == "":
		return invariantf("%s: no diagnostic comment", r.Name)
	case r.Required == nil || r.Trigger == nil || r.Hazard == nil:
		return invariantf("%s: missing predicate", r.Name)
	case r.MaxNops.Len() == 0:
		return invariantf("%s: empty latency table", r.Name)
	}
	return nil
}

// lookup reads a conflict table inside a Hazard function. A missing class
// is a catalogue defect.
func lookup(t latency.Table, class int) int {
	nops, ok := t.Lookup(class)
	if !ok {
		exceptions.Panicf("latency class %d not in table {%s}", class, t)
	}
	return nops
}

// need accumulates the largest requirement of several conflict kinds.
type need struct {
	nops int
	hit  bool
}

func (n *need) add(nops int) {
	if !n.hit || nops > n.nops {
		n.nops = nops
	}
	n.hit = true
}

func (n need) result() (int, bool) {
	return n.nops, n.hit
}

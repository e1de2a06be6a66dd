package hazard

import "github.com/sarchlab/waitstate/insts"

// Window is an open hazard: the wait states still owed after a triggering
// instruction.
type Window struct {
	Trigger insts.Instruction
	Class   int              // Latency class of the trigger
	Regs    []insts.Register // Registers the window tracks

	// Elapsed counts wait states issued since the trigger, padding included.
	Elapsed int
	// Max is the largest separation any conflict can require.
	Max int
}

func newWindow(trigger insts.Instruction, regs []insts.Register, size int) *Window {
	return &Window{
		Trigger: trigger,
		Class:   trigger.LatencyClass(),
		Regs:    regs,
		Max:     size,
	}
}

// Remaining returns the padding a conflict requiring nops still needs.
func (w *Window) Remaining(nops int) int {
	if r := nops - w.Elapsed; r > 0 {
		return r
	}
	return 0
}

// Inert reports whether no conflict can require padding any more.
func (w *Window) Inert() bool {
	return w.Elapsed >= w.Max
}

// Overlaps reports whether any tracked register overlaps r.
func (w *Window) Overlaps(r insts.Register) bool {
	for _, x := range w.Regs {
		if x.Overlaps(r) {
			return true
		}
	}
	return false
}

// Same reports whether r is exactly one of the tracked ranges.
func (w *Window) Same(r insts.Register) bool {
	for _, x := range w.Regs {
		if x.Same(r) {
			return true
		}
	}
	return false
}

func (w *Window) tracks(regs []insts.Register) bool {
	if len(regs) != len(w.Regs) {
		return false
	}
	for i := range regs {
		if !regs[i].Same(w.Regs[i]) {
			return false
		}
	}
	return true
}

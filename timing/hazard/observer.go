package hazard

import (
	"github.com/sarchlab/waitstate/insts"
)

// Observer runs one rule over an instruction stream. It belongs to a single
// compilation and must not be shared between goroutines.
type Observer struct {
	rule    *Rule
	windows []*Window
}

// NewObserver creates an observer with no open windows.
func NewObserver(rule *Rule) *Observer {
	return &Observer{rule: rule}
}

// Rule returns the rule the observer applies.
func (o *Observer) Rule() *Rule {
	return o.rule
}

// Windows returns a snapshot of the open windows.
func (o *Observer) Windows() []Window {
	out := make([]Window, len(o.windows))
	for i, w := range o.windows {
		out[i] = *w
	}
	return out
}

// Peek returns the padding inst needs before it can issue, without changing
// any state.
func (o *Observer) Peek(inst insts.Instruction) (int, error) {
	padding := 0
	for _, w := range o.windows {
		nops, hit, err := o.rule.check(w, inst)
		if err != nil {
			return 0, err
		}
		if hit && w.Remaining(nops) > padding {
			padding = w.Remaining(nops)
		}
	}
	return padding, nil
}

// Observe commits inst to the observer after padding no-ops were issued in
// front of it. Padding below what Peek reported is an error.
func (o *Observer) Observe(inst insts.Instruction, padding int) error {
	issued := padding + inst.WaitStates()

	kept := o.windows[:0]
	for _, w := range o.windows {
		nops, hit, err := o.rule.check(w, inst)
		if err != nil {
			return err
		}
		if hit && w.Remaining(nops) > padding {
			return invariantf("%s: %s committed with %d wait states, %d required",
				o.rule.Name, inst.Name, padding, w.Remaining(nops))
		}

		w.Elapsed += issued
		if hit && o.rule.Policy == WindowCloseOnHazard {
			continue
		}
		if w.Inert() {
			continue
		}
		kept = append(kept, w)
	}
	for i := len(kept); i < len(o.windows); i++ {
		o.windows[i] = nil
	}
	o.windows = kept

	if !o.rule.Triggers(inst) {
		return nil
	}
	return o.open(inst)
}

// Step is Peek followed by Observe with the observer's own padding.
func (o *Observer) Step(inst insts.Instruction) (int, error) {
	padding, err := o.Peek(inst)
	if err != nil {
		return 0, err
	}
	if err := o.Observe(inst, padding); err != nil {
		return 0, err
	}
	return padding, nil
}

func (o *Observer) open(inst insts.Instruction) error {
	size, err := o.rule.MaxNopsFor(inst)
	if err != nil {
		return err
	}

	regs := o.rule.trackedRegs(inst)
	if len(regs) == 0 {
		return malformedf("%s: %s triggers the rule but has no tracked registers",
			o.rule.Name, inst.Name)
	}
	if size == 0 {
		return nil
	}

	w := newWindow(inst, regs, size)
	for i, old := range o.windows {
		if old.tracks(regs) {
			o.windows[i] = w
			return nil
		}
	}
	o.windows = append(o.windows, w)
	return nil
}

package hazard

import (
	"iter"
	"slices"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
)

// Stats summarizes one scheduling pass.
type Stats struct {
	// Instructions is the number of input instructions scheduled.
	Instructions int
	// Hazards is the number of input instructions that needed padding.
	Hazards int
	// Padding is the number of padding instructions inserted.
	Padding int
	// PaddingByRule credits inserted padding to the rules that required it.
	// Rules tying for the maximum are all credited.
	PaddingByRule map[string]int
}

// Option configures a Registry.
type Option func(r *Registry)

// WithRules replaces the catalogue the registry selects from.
func WithRules(rules ...*Rule) Option {
	return func(r *Registry) {
		r.candidates = rules
	}
}

// WithDisabled drops the named rules even if the target requires them.
func WithDisabled(names ...string) Option {
	return func(r *Registry) {
		for _, n := range names {
			r.disabled[n] = true
		}
	}
}

// WithName labels the registry in log output.
func WithName(name string) Option {
	return func(r *Registry) {
		r.name = name
	}
}

// Registry drives one instruction stream through every rule a target
// requires. A registry schedules exactly one stream and must not be shared
// between goroutines.
type Registry struct {
	name       string
	target     arch.Target
	candidates []*Rule
	disabled   map[string]bool
	observers  []*Observer
	consumed   bool
	stats      Stats
}

// NewRegistry selects the rules the target requires and creates one
// observer per rule.
func NewRegistry(target arch.Target, opts ...Option) *Registry {
	r := &Registry{
		target:     target,
		candidates: catalogue,
		disabled:   make(map[string]bool),
		stats:      Stats{PaddingByRule: make(map[string]int)},
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, rule := range r.candidates {
		if !rule.IsRequired(target) {
			continue
		}
		if r.disabled[rule.Name] {
			klog.Warningf("%s: hazard rule %s disabled for %s, kernel may be under-padded",
				r.label(), rule.Name, target)
			continue
		}
		r.observers = append(r.observers, NewObserver(rule))
	}

	if klog.V(1).Enabled() {
		klog.Infof("%s: target %s activates %d hazard rules: %s",
			r.label(), target, len(r.observers), strings.Join(r.ruleNames(), ", "))
	}
	return r
}

// Target returns the target the registry was built for.
func (r *Registry) Target() arch.Target {
	return r.target
}

// Rules returns the active rules.
func (r *Registry) Rules() []*Rule {
	out := make([]*Rule, len(r.observers))
	for i, o := range r.observers {
		out[i] = o.Rule()
	}
	return out
}

// Stats returns the statistics of the pass so far.
func (r *Registry) Stats() Stats {
	s := r.stats
	s.PaddingByRule = make(map[string]int, len(r.stats.PaddingByRule))
	for k, v := range r.stats.PaddingByRule {
		s.PaddingByRule[k] = v
	}
	return s
}

// Schedule returns the padded stream. The returned sequence is lazy and
// single-pass: instructions are pulled from stream as the result is
// consumed. On a fatal error it yields one *ScheduleError and stops; any
// instructions already yielded must then be discarded.
func (r *Registry) Schedule(stream iter.Seq[insts.Instruction]) iter.Seq2[insts.Instruction, error] {
	return func(yield func(insts.Instruction, error) bool) {
		if r.consumed {
			yield(insts.Instruction{}, ErrRegistryConsumed)
			return
		}
		r.consumed = true

		pos := 0
		for inst := range stream {
			padding, comment, err := r.step(pos, inst)
			if err != nil {
				yield(insts.Instruction{}, err)
				return
			}

			for range padding {
				if !yield(insts.NewPadding(comment), nil) {
					return
				}
			}
			if !yield(inst, nil) {
				return
			}
			pos++
		}
	}
}

// ScheduleAll schedules a complete stream. Either the whole padded stream
// or an error is returned.
func (r *Registry) ScheduleAll(stream []insts.Instruction) ([]insts.Instruction, error) {
	out := make([]insts.Instruction, 0, len(stream))
	for inst, err := range r.Schedule(slices.Values(stream)) {
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func (r *Registry) step(pos int, inst insts.Instruction) (int, string, error) {
	// Without active rules no metadata is needed and the stream passes
	// through unchanged.
	if len(r.observers) == 0 {
		r.stats.Instructions++
		return 0, "", nil
	}

	if err := inst.Validate(); err != nil {
		return 0, "", &ScheduleError{
			Position: pos,
			Inst:     inst,
			Err:      malformedf("%v", err),
		}
	}

	padding := 0
	var winners []*Rule
	for _, o := range r.observers {
		nops, err := o.Peek(inst)
		if err != nil {
			return 0, "", &ScheduleError{Position: pos, Inst: inst, Rule: o.Rule().Name, Err: err}
		}
		switch {
		case nops > padding:
			padding = nops
			winners = append(winners[:0], o.Rule())
		case nops == padding && nops > 0:
			winners = append(winners, o.Rule())
		}
	}

	for _, o := range r.observers {
		if err := o.Observe(inst, padding); err != nil {
			return 0, "", &ScheduleError{Position: pos, Inst: inst, Rule: o.Rule().Name, Err: err}
		}
	}
	if klog.V(3).Enabled() {
		r.logWindows(pos)
	}

	r.stats.Instructions++
	if padding == 0 {
		return 0, "", nil
	}

	r.stats.Hazards++
	r.stats.Padding += padding
	for _, w := range winners {
		r.stats.PaddingByRule[w.Name] += padding
	}

	comment := paddingComment(winners)
	if klog.V(2).Enabled() {
		klog.Infof("%s: %d wait states before instruction %d (%s): %s",
			r.label(), padding, pos, inst.Name, comment)
	}
	return padding, comment, nil
}

// paddingComment names the winning rule, or lists every distinct comment
// when several rules require the same padding. The result does not depend on
// the order rules were registered in.
func paddingComment(winners []*Rule) string {
	seen := make(map[string]bool, len(winners))
	var comments []string
	for _, w := range winners {
		if !seen[w.Comment] {
			seen[w.Comment] = true
			comments = append(comments, w.Comment)
		}
	}

	if len(comments) == 1 {
		return comments[0]
	}
	sort.Strings(comments)
	return "Wait State Hazards: " + strings.Join(comments, ", ")
}

func (r *Registry) logWindows(pos int) {
	for _, o := range r.observers {
		for _, w := range o.Windows() {
			klog.Infof("%s: after instruction %d: %s window of %s on %v, %d of %d wait states elapsed",
				r.label(), pos, o.Rule().Name, w.Trigger.Name, w.Regs, w.Elapsed, w.Max)
		}
	}
}

func (r *Registry) ruleNames() []string {
	names := make([]string, len(r.observers))
	for i, o := range r.observers {
		names[i] = o.Rule().Name
	}
	return names
}

func (r *Registry) label() string {
	if r.name != "" {
		return r.name
	}
	return "hazard"
}

package hazard

import (
	"sort"

	"github.com/sarchlab/waitstate/arch"
)

var catalogue = []*Rule{
	XDLReadSrcC908,
	XDLReadSrcC90a,
	XDLReadSrcC94x,
	XDLWrite908,
	XDLWrite90a,
	XDLWrite94x,
	XDLWrite950,
	VALUWriteSGPRVMEM,
	VALUWriteVCC,
	CMPXWriteExec,
	VALUTransUse94x,
	SALUWriteM0,
}

// exclusiveGroups lists rules that document the same hazard for different
// generations. No target may activate two rules of one group.
var exclusiveGroups = [][]*Rule{
	{XDLReadSrcC908, XDLReadSrcC90a, XDLReadSrcC94x},
	{XDLWrite908, XDLWrite90a, XDLWrite94x, XDLWrite950},
}

// Catalogue returns every known rule in catalogue order.
func Catalogue() []*Rule {
	out := make([]*Rule, len(catalogue))
	copy(out, catalogue)
	return out
}

// ExclusiveGroups returns the groups of mutually exclusive rules.
func ExclusiveGroups() [][]*Rule {
	out := make([][]*Rule, len(exclusiveGroups))
	for i, g := range exclusiveGroups {
		out[i] = append([]*Rule(nil), g...)
	}
	return out
}

// Lookup finds a catalogue rule by name.
func Lookup(name string) (*Rule, bool) {
	for _, r := range catalogue {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Required returns the catalogue rules that apply to a target.
func Required(t arch.Target) []*Rule {
	var out []*Rule
	for _, r := range catalogue {
		if r.IsRequired(t) {
			out = append(out, r)
		}
	}
	return out
}

// Overlap is a target that activates more than one rule of an exclusive
// group.
type Overlap struct {
	Target arch.Target
	Rules  []string
}

// CheckPartition reports every target that activates more than one rule of
// the same exclusive group. An overlap means the target predicates of the
// catalogue are ambiguous and must be fixed there.
func CheckPartition(targets []arch.Target, groups [][]*Rule) []Overlap {
	var overlaps []Overlap
	for _, t := range targets {
		for _, g := range groups {
			var active []string
			for _, r := range g {
				if r.IsRequired(t) {
					active = append(active, r.Name)
				}
			}
			if len(active) > 1 {
				sort.Strings(active)
				overlaps = append(overlaps, Overlap{Target: t, Rules: active})
			}
		}
	}
	return overlaps
}

// ValidateCatalogue checks that every rule record is complete and that rule
// names are unique.
func ValidateCatalogue(rules []*Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return err
		}
		if seen[r.Name] {
			return invariantf("duplicate rule %s", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

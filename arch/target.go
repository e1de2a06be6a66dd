// Package arch identifies the GPU generation a kernel is compiled for.
//
// A Target is resolved once per compilation and never changes afterwards.
// Hazard rules select themselves through the family predicates.
package arch

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownTarget is returned when a processor name is not recognized.
var ErrUnknownTarget = errors.New("unknown GPU architecture target")

// Family groups processors that share hazard behavior.
type Family int

// GPU families.
const (
	FamilyUnknown Family = iota
	FamilyCDNA1
	FamilyCDNA2
	FamilyCDNA3
	FamilyCDNA35
	FamilyRDNA3
	FamilyRDNA4
)

func (f Family) String() string {
	switch f {
	case FamilyCDNA1:
		return "CDNA1"
	case FamilyCDNA2:
		return "CDNA2"
	case FamilyCDNA3:
		return "CDNA3"
	case FamilyCDNA35:
		return "CDNA3.5"
	case FamilyRDNA3:
		return "RDNA3"
	case FamilyRDNA4:
		return "RDNA4"
	default:
		return "unknown"
	}
}

var processors = map[string]Family{
	"gfx908":  FamilyCDNA1,
	"gfx90a":  FamilyCDNA2,
	"gfx940":  FamilyCDNA3,
	"gfx941":  FamilyCDNA3,
	"gfx942":  FamilyCDNA3,
	"gfx950":  FamilyCDNA35,
	"gfx1100": FamilyRDNA3,
	"gfx1101": FamilyRDNA3,
	"gfx1102": FamilyRDNA3,
	"gfx1200": FamilyRDNA4,
	"gfx1201": FamilyRDNA4,
}

// Target is one resolved GPU architecture.
type Target struct {
	// Processor is the LLVM processor name, e.g. gfx942.
	Processor string

	// Xnack and Sramecc record the feature suffixes of the target id.
	Xnack   bool
	Sramecc bool

	family Family
}

// Parse resolves a target id such as "gfx90a" or "gfx942:sramecc+:xnack-".
func Parse(id string) (Target, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(id)), ":")

	family, ok := processors[parts[0]]
	if !ok {
		return Target{}, errors.Wrapf(ErrUnknownTarget, "%q", id)
	}

	t := Target{Processor: parts[0], family: family}
	for _, feature := range parts[1:] {
		switch feature {
		case "xnack+":
			t.Xnack = true
		case "xnack-":
			t.Xnack = false
		case "sramecc+":
			t.Sramecc = true
		case "sramecc-":
			t.Sramecc = false
		default:
			return Target{}, errors.Errorf("target %q: unknown feature %q", id, feature)
		}
	}
	return t, nil
}

// MustParse is like Parse but panics on unknown targets.
func MustParse(id string) Target {
	t, err := Parse(id)
	if err != nil {
		panic(err)
	}
	return t
}

// Known returns every recognized processor name in sorted order.
func Known() []Target {
	names := make([]string, 0, len(processors))
	for name := range processors {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		targets = append(targets, Target{Processor: name, family: processors[name]})
	}
	return targets
}

// Family returns the family of the target.
func (t Target) Family() Family {
	return t.family
}

// IsCDNA1GPU returns true for MI100 class hardware (gfx908).
func (t Target) IsCDNA1GPU() bool {
	return t.family == FamilyCDNA1
}

// IsCDNA2GPU returns true for MI200 class hardware (gfx90a).
func (t Target) IsCDNA2GPU() bool {
	return t.family == FamilyCDNA2
}

// IsCDNA3GPU returns true for MI300 class hardware (gfx940, gfx941, gfx942).
func (t Target) IsCDNA3GPU() bool {
	return t.family == FamilyCDNA3
}

// IsCDNA35GPU returns true for MI350 class hardware (gfx950).
func (t Target) IsCDNA35GPU() bool {
	return t.family == FamilyCDNA35
}

// IsCDNAGPU returns true for any compute (CDNA) generation.
func (t Target) IsCDNAGPU() bool {
	return t.IsCDNA1GPU() || t.IsCDNA2GPU() || t.IsCDNA3GPU() || t.IsCDNA35GPU()
}

// IsRDNA3GPU returns true for gfx11 hardware.
func (t Target) IsRDNA3GPU() bool {
	return t.family == FamilyRDNA3
}

// IsRDNA4GPU returns true for gfx12 hardware.
func (t Target) IsRDNA4GPU() bool {
	return t.family == FamilyRDNA4
}

// String returns the target id including feature suffixes that are set.
func (t Target) String() string {
	if t.Processor == "" {
		return "<unknown>"
	}

	s := t.Processor
	if t.Sramecc {
		s += ":sramecc+"
	}
	if t.Xnack {
		s += ":xnack+"
	}
	return s
}

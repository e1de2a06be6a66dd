package insts

import (
	"fmt"

	"github.com/pkg/errors"
)

// RegisterKind identifies a register file.
type RegisterKind uint8

// Register files.
const (
	KindNone RegisterKind = iota
	KindVGPR              // Vector general purpose registers (v)
	KindAGPR              // Accumulation registers (a)
	KindSGPR              // Scalar general purpose registers (s)
	KindVCC               // Vector condition code
	KindEXEC              // Execution mask
	KindM0                // Memory descriptor register
)

// Register is a contiguous range of registers in one register file.
type Register struct {
	Kind  RegisterKind
	Index int // First register of the range
	Count int // Number of 32-bit registers in the range
}

// Special registers.
var (
	VCC  = Register{Kind: KindVCC, Count: 2}
	EXEC = Register{Kind: KindEXEC, Count: 2}
	M0   = Register{Kind: KindM0, Count: 1}
)

// V returns the VGPR range v[index:index+count-1].
func V(index, count int) Register {
	return Register{Kind: KindVGPR, Index: index, Count: count}
}

// A returns the AGPR range a[index:index+count-1].
func A(index, count int) Register {
	return Register{Kind: KindAGPR, Index: index, Count: count}
}

// S returns the SGPR range s[index:index+count-1].
func S(index, count int) Register {
	return Register{Kind: KindSGPR, Index: index, Count: count}
}

// Last returns the index of the last register in the range.
func (r Register) Last() int {
	return r.Index + r.Count - 1
}

// Overlaps returns true if the two ranges share at least one register.
func (r Register) Overlaps(o Register) bool {
	if r.Kind != o.Kind || r.Kind == KindNone {
		return false
	}
	if r.isSpecial() {
		return true
	}
	return r.Index <= o.Last() && o.Index <= r.Last()
}

// Same returns true if both ranges cover exactly the same registers.
func (r Register) Same(o Register) bool {
	if r.Kind != o.Kind || r.Kind == KindNone {
		return false
	}
	if r.isSpecial() {
		return true
	}
	return r.Index == o.Index && r.Count == o.Count
}

func (r Register) isSpecial() bool {
	return r.Kind == KindVCC || r.Kind == KindEXEC || r.Kind == KindM0
}

func (r Register) prefix() string {
	switch r.Kind {
	case KindVGPR:
		return "v"
	case KindAGPR:
		return "a"
	case KindSGPR:
		return "s"
	default:
		return ""
	}
}

// String formats the range the way the assembler spells it.
func (r Register) String() string {
	switch r.Kind {
	case KindVCC:
		return "vcc"
	case KindEXEC:
		return "exec"
	case KindM0:
		return "m0"
	case KindNone:
		return "<none>"
	}

	if r.Count == 1 {
		return fmt.Sprintf("%s%d", r.prefix(), r.Index)
	}
	return fmt.Sprintf("%s[%d:%d]", r.prefix(), r.Index, r.Last())
}

// Validate checks that the range is well formed.
func (r Register) Validate() error {
	if r.Kind == KindNone {
		return errors.New("register has no kind")
	}
	if r.Index < 0 {
		return errors.Errorf("register %s has negative index", r)
	}
	if r.Count <= 0 {
		return errors.Errorf("register %s%d has non-positive count %d",
			r.prefix(), r.Index, r.Count)
	}
	return nil
}

package insts

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MFMA operand slots in Src.
const (
	SrcA = 0
	SrcB = 1
	SrcC = 2
)

// Instruction represents one lowered GPU instruction.
//
// Instructions are values. The scheduler reads them and inserts padding
// around them but never modifies them; callers must not modify the Dst and
// Src slices after handing an instruction to the scheduler either.
type Instruction struct {
	Op   Op     // Opcode class
	Name string // Mnemonic, e.g. v_mfma_f32_32x32x8f16

	Dst []Register // Registers written
	Src []Register // Registers read, in operand-slot order

	// Passes is the latency class of the instruction: the pass count of an
	// MFMA. Zero for single-issue instructions.
	Passes int

	// Count is the number of wait states an explicit s_nop consumes.
	// Zero is treated as one.
	Count int

	// Comment is attached to the instruction in the generated assembly.
	Comment string

	// Padding is set on no-ops inserted by the hazard scheduler.
	Padding bool
}

// New creates an instruction of the given class.
func New(op Op, name string, dst []Register, src []Register) Instruction {
	if name == "" {
		name = defaultMnemonic[op]
	}
	return Instruction{Op: op, Name: name, Dst: dst, Src: src}
}

// NewMFMA creates a matrix multiply-accumulate instruction
// dst = a * b + c with the given pass count.
func NewMFMA(name string, passes int, dst, a, b, c Register) Instruction {
	inst := New(OpMFMA, name, []Register{dst}, []Register{a, b, c})
	inst.Passes = passes
	return inst
}

// NewVALU creates a vector ALU instruction.
func NewVALU(name string, dst Register, src ...Register) Instruction {
	return New(OpVALU, name, []Register{dst}, src)
}

// NewAccVGPRRead creates v_accvgpr_read dst, src which moves an AGPR into a
// VGPR.
func NewAccVGPRRead(dst, src Register) Instruction {
	return New(OpAccVGPRRead, "", []Register{dst}, []Register{src})
}

// NewAccVGPRWrite creates v_accvgpr_write dst, src which moves a VGPR into an
// AGPR.
func NewAccVGPRWrite(dst, src Register) Instruction {
	return New(OpAccVGPRWrite, "", []Register{dst}, []Register{src})
}

// NewNop creates an explicit s_nop consuming count wait states.
func NewNop(count int) Instruction {
	inst := New(OpNop, "", nil, nil)
	inst.Count = count
	return inst
}

// NewPadding creates a single wait-state no-op inserted by the scheduler.
func NewPadding(comment string) Instruction {
	inst := NewNop(1)
	inst.Comment = comment
	inst.Padding = true
	return inst
}

// LatencyClass returns the key used to index hazard latency tables.
func (i Instruction) LatencyClass() int {
	return i.Passes
}

// WaitStates returns the number of issue slots the instruction occupies.
func (i Instruction) WaitStates() int {
	if i.Op == OpNop && i.Count > 1 {
		return i.Count
	}
	return 1
}

// IsMFMA returns true for matrix multiply-accumulate instructions.
func (i Instruction) IsMFMA() bool {
	return i.Op == OpMFMA
}

// IsVALU returns true for vector ALU instructions, excluding MFMA.
func (i Instruction) IsVALU() bool {
	switch i.Op {
	case OpVALU, OpVALUTrans, OpVCMPX, OpVDivFmas, OpAccVGPRRead, OpAccVGPRWrite:
		return true
	default:
		return false
	}
}

// IsVMEM returns true for vector memory instructions.
func (i Instruction) IsVMEM() bool {
	return i.Op == OpVMEMLoad || i.Op == OpVMEMStore
}

// IsLDS returns true for local data share instructions.
func (i Instruction) IsLDS() bool {
	return i.Op == OpLDS
}

// IsSALU returns true for scalar ALU instructions.
func (i Instruction) IsSALU() bool {
	return i.Op == OpSALU
}

// Reads returns true if any source operand overlaps r.
func (i Instruction) Reads(r Register) bool {
	return anyOverlap(i.Src, r)
}

// Writes returns true if any destination operand overlaps r.
func (i Instruction) Writes(r Register) bool {
	return anyOverlap(i.Dst, r)
}

// ReadsAny returns true if any source operand overlaps any of regs.
func (i Instruction) ReadsAny(regs []Register) bool {
	for _, r := range regs {
		if i.Reads(r) {
			return true
		}
	}
	return false
}

// WritesAny returns true if any destination operand overlaps any of regs.
func (i Instruction) WritesAny(regs []Register) bool {
	for _, r := range regs {
		if i.Writes(r) {
			return true
		}
	}
	return false
}

// WritesKind returns true if any destination lives in the given register file.
func (i Instruction) WritesKind(kind RegisterKind) bool {
	for _, d := range i.Dst {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Operand returns the source operand in the given slot.
func (i Instruction) Operand(slot int) (Register, bool) {
	if slot < 0 || slot >= len(i.Src) {
		return Register{}, false
	}
	return i.Src[slot], true
}

// Validate checks that the instruction carries the register metadata its
// opcode class requires.
func (i Instruction) Validate() error {
	for _, r := range i.Dst {
		if err := r.Validate(); err != nil {
			return errors.Wrapf(err, "%s: invalid destination", i.Name)
		}
	}
	for _, r := range i.Src {
		if err := r.Validate(); err != nil {
			return errors.Wrapf(err, "%s: invalid source", i.Name)
		}
	}

	switch i.Op {
	case OpUnknown:
		return errors.Errorf("%s: unknown opcode class", i.Name)
	case OpMFMA:
		if len(i.Dst) != 1 || len(i.Src) != 3 {
			return errors.Errorf("%s: MFMA needs 1 destination and 3 sources, got %d and %d",
				i.Name, len(i.Dst), len(i.Src))
		}
		if i.Passes <= 0 {
			return errors.Errorf("%s: MFMA without pass count", i.Name)
		}
	case OpAccVGPRRead:
		if len(i.Dst) != 1 || len(i.Src) != 1 ||
			i.Src[0].Kind != KindAGPR || i.Dst[0].Kind != KindVGPR {
			return errors.Errorf("%s: expected vN, aN operands", i.Name)
		}
	case OpAccVGPRWrite:
		if len(i.Dst) != 1 || len(i.Src) != 1 || i.Dst[0].Kind != KindAGPR {
			return errors.Errorf("%s: expected aN, vN operands", i.Name)
		}
	case OpNop:
		if len(i.Dst) != 0 || len(i.Src) != 0 {
			return errors.Errorf("%s: no-op with register operands", i.Name)
		}
		if i.Count < 0 {
			return errors.Errorf("%s: negative wait-state count %d", i.Name, i.Count)
		}
	}

	if i.Op != OpMFMA && i.Passes < 0 {
		return errors.Errorf("%s: negative pass count %d", i.Name, i.Passes)
	}
	return nil
}

// String formats the instruction as an assembly line with its comment.
func (i Instruction) String() string {
	var sb strings.Builder

	sb.WriteString(i.Name)
	if i.Op == OpNop {
		n := i.Count - 1
		if n < 0 {
			n = 0
		}
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(n))
	}

	sep := " "
	for _, r := range i.Dst {
		sb.WriteString(sep)
		sb.WriteString(r.String())
		sep = ", "
	}
	for _, r := range i.Src {
		sb.WriteString(sep)
		sb.WriteString(r.String())
		sep = ", "
	}

	if i.Comment != "" {
		sb.WriteString(" // ")
		sb.WriteString(i.Comment)
	}
	return sb.String()
}

func anyOverlap(regs []Register, r Register) bool {
	for _, x := range regs {
		if x.Overlaps(r) {
			return true
		}
	}
	return false
}

package hazard_test

import (
	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/timing/hazard"
	"github.com/sarchlab/waitstate/timing/latency"
)

func mfma(passes int, dst, a, b, c insts.Register) insts.Instruction {
	return insts.NewMFMA("v_mfma_f32_32x32x8f16", passes, dst, a, b, c)
}

// accMFMA accumulates into a[0:15] from v[0:1] and v[2:3].
func accMFMA(passes int) insts.Instruction {
	return mfma(passes, insts.A(0, 16), insts.V(0, 2), insts.V(2, 2), insts.A(0, 16))
}

// unrelated returns an instruction touching none of the registers used by
// the other helpers.
func unrelated(i int) insts.Instruction {
	return insts.NewVALU("v_add_u32", insts.V(100+i, 1), insts.V(200, 1), insts.V(201, 1))
}

func countPadding(stream []insts.Instruction) int {
	n := 0
	for _, inst := range stream {
		if inst.Padding {
			n++
		}
	}
	return n
}

func paddingComments(stream []insts.Instruction) []string {
	var out []string
	for _, inst := range stream {
		if inst.Padding {
			out = append(out, inst.Comment)
		}
	}
	return out
}

func withUnrelated(first insts.Instruction, n int, last insts.Instruction) []insts.Instruction {
	stream := []insts.Instruction{first}
	for i := 0; i < n; i++ {
		stream = append(stream, unrelated(i))
	}
	return append(stream, last)
}

// scalarRule is a synthetic rule: an SALU write followed by an SMEM read of
// the same SGPRs needs nops wait states.
func scalarRule(name, comment string, nops int) *hazard.Rule {
	table := latency.Uniform(nops)
	return &hazard.Rule{
		Name:         name,
		Comment:      comment,
		Required:     func(arch.Target) bool { return true },
		WriteTrigger: true,
		Trigger:      func(inst insts.Instruction) bool { return inst.IsSALU() },
		MaxNops:      table,
		Hazard: func(w *hazard.Window, inst insts.Instruction) (int, bool) {
			if inst.Op == insts.OpSMEM && inst.ReadsAny(w.Regs) {
				return nops, true
			}
			return 0, false
		},
	}
}

func salu(dst insts.Register) insts.Instruction {
	return insts.New(insts.OpSALU, "s_mov_b32", []insts.Register{dst}, []insts.Register{insts.S(90, 1)})
}

func smem(src insts.Register) insts.Instruction {
	return insts.New(insts.OpSMEM, "s_load_dword", []insts.Register{insts.S(80, 1)}, []insts.Register{src})
}

// bufferLoad writes dst from memory addressed by v2 and s[4:7].
func bufferLoad(dst insts.Register) insts.Instruction {
	return insts.New(insts.OpVMEMLoad, "buffer_load_dword", []insts.Register{dst},
		[]insts.Register{insts.V(2, 1), insts.S(4, 4)})
}

// dsRead writes dst from LDS addressed by v0.
func dsRead(dst insts.Register) insts.Instruction {
	return insts.New(insts.OpLDS, "ds_read_b32", []insts.Register{dst},
		[]insts.Register{insts.V(0, 1)})
}

package hazard

import (
	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/timing/latency"
)

// Rules in this file have one requirement per trigger, so a window is done
// once it resolved a conflict.

func onlyKind(kind insts.RegisterKind) func(insts.Instruction) []insts.Register {
	return func(inst insts.Instruction) []insts.Register {
		var regs []insts.Register
		for _, d := range inst.Dst {
			if d.Kind == kind {
				regs = append(regs, d)
			}
		}
		return regs
	}
}

func only(r insts.Register) func(insts.Instruction) []insts.Register {
	return func(insts.Instruction) []insts.Register {
		return []insts.Register{r}
	}
}

func uniformHazard(table latency.Table, match func(w *Window, inst insts.Instruction) bool) func(*Window, insts.Instruction) (int, bool) {
	return func(w *Window, inst insts.Instruction) (int, bool) {
		if match(w, inst) {
			return lookup(table, w.Class), true
		}
		return 0, false
	}
}

var valuWriteSGPRVMEMNops = latency.Uniform(5)

// VALUWriteSGPRVMEM covers an SGPR produced by a VALU and consumed as an
// address or descriptor operand by a memory instruction.
//
//	| Arch | 1st Inst          | 2nd Inst             | NOPs |
//	| ---- | ----------------- | -------------------- | ---- |
//	| CDNA | v_* write SGPR    | vmem/lds read SGPR   | 5    |
var VALUWriteSGPRVMEM = &Rule{
	Name:         "VALUWriteSGPRVMEM",
	Comment:      "VALU Write SGPR -> VMEM Read Hazard",
	Required:     arch.Target.IsCDNAGPU,
	WriteTrigger: true,
	Trigger: func(inst insts.Instruction) bool {
		return inst.IsVALU() && inst.WritesKind(insts.KindSGPR)
	},
	TriggerRegs: onlyKind(insts.KindSGPR),
	MaxNops:     valuWriteSGPRVMEMNops,
	Hazard: uniformHazard(valuWriteSGPRVMEMNops, func(w *Window, inst insts.Instruction) bool {
		return (inst.IsVMEM() || inst.IsLDS()) && inst.ReadsAny(w.Regs)
	}),
	Policy: WindowCloseOnHazard,
}

var valuWriteVCCNops = latency.Uniform(4)

// VALUWriteVCC covers v_div_fmas, which reads VCC implicitly.
//
//	| Arch | 1st Inst      | 2nd Inst    | NOPs |
//	| ---- | ------------- | ----------- | ---- |
//	| CDNA | v_* write VCC | v_div_fmas* | 4    |
var VALUWriteVCC = &Rule{
	Name:         "VALUWriteVCC",
	Comment:      "VALU Write VCC -> v_div_fmas Hazard",
	Required:     arch.Target.IsCDNAGPU,
	WriteTrigger: true,
	Trigger: func(inst insts.Instruction) bool {
		return inst.IsVALU() && inst.Writes(insts.VCC)
	},
	TriggerRegs: only(insts.VCC),
	MaxNops:     valuWriteVCCNops,
	Hazard: uniformHazard(valuWriteVCCNops, func(_ *Window, inst insts.Instruction) bool {
		return inst.Op == insts.OpVDivFmas
	}),
	Policy: WindowCloseOnHazard,
}

var cmpxWriteExecNops = latency.Uniform(4)

// CMPXWriteExec covers an EXEC mask produced by v_cmpx and consumed by the
// matrix core, which reads EXEC without interlock.
//
//	| Arch          | 1st Inst           | 2nd Inst | NOPs |
//	| ------------- | ------------------ | -------- | ---- |
//	| 90a, 94x, 950 | v_cmpx* write EXEC | v_mfma*  | 4    |
var CMPXWriteExec = &Rule{
	Name:    "CMPXWriteExec",
	Comment: "VCMPX Write EXEC -> MFMA Hazard",
	Required: func(t arch.Target) bool {
		return t.IsCDNA2GPU() || t.IsCDNA3GPU() || t.IsCDNA35GPU()
	},
	WriteTrigger: true,
	Trigger: func(inst insts.Instruction) bool {
		return inst.Op == insts.OpVCMPX && inst.Writes(insts.EXEC)
	},
	TriggerRegs: only(insts.EXEC),
	MaxNops:     cmpxWriteExecNops,
	Hazard: uniformHazard(cmpxWriteExecNops, func(_ *Window, inst insts.Instruction) bool {
		return inst.IsMFMA()
	}),
	Policy: WindowCloseOnHazard,
}

var valuTransUseNops = latency.Uniform(1)

// VALUTransUse94x covers a transcendental result consumed by a regular VALU.
//
//	| Arch | 1st Inst          | 2nd Inst                 | NOPs |
//	| ---- | ----------------- | ------------------------ | ---- |
//	| 94x  | v_exp/log/rcp...  | non-trans v_* read VGPR  | 1    |
var VALUTransUse94x = &Rule{
	Name:    "VALUTransUse94x",
	Comment: "VALU Trans Use Hazard",
	Required: func(t arch.Target) bool {
		return t.IsCDNA3GPU() || t.IsCDNA35GPU()
	},
	WriteTrigger: true,
	Trigger: func(inst insts.Instruction) bool {
		return inst.Op == insts.OpVALUTrans
	},
	TriggerRegs: onlyKind(insts.KindVGPR),
	MaxNops:     valuTransUseNops,
	Hazard: uniformHazard(valuTransUseNops, func(w *Window, inst insts.Instruction) bool {
		return inst.IsVALU() && inst.Op != insts.OpVALUTrans && inst.ReadsAny(w.Regs)
	}),
	Policy: WindowCloseOnHazard,
}

var saluWriteM0Nops = latency.Uniform(1)

// SALUWriteM0 covers M0 written by the scalar unit and read by LDS or
// s_sendmsg.
//
//	| Arch | 1st Inst     | 2nd Inst                | NOPs |
//	| ---- | ------------ | ----------------------- | ---- |
//	| CDNA | s_* write M0 | lds / s_sendmsg read M0 | 1    |
var SALUWriteM0 = &Rule{
	Name:         "SALUWriteM0",
	Comment:      "SALU Write M0 Hazard",
	Required:     arch.Target.IsCDNAGPU,
	WriteTrigger: true,
	Trigger: func(inst insts.Instruction) bool {
		return inst.IsSALU() && inst.Writes(insts.M0)
	},
	TriggerRegs: only(insts.M0),
	MaxNops:     saluWriteM0Nops,
	Hazard: uniformHazard(saluWriteM0Nops, func(_ *Window, inst insts.Instruction) bool {
		return (inst.IsLDS() || inst.Op == insts.OpSendMsg) && inst.Reads(insts.M0)
	}),
	Policy: WindowCloseOnHazard,
}

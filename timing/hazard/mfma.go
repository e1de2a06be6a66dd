package hazard

import (
	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/timing/latency"
)

func srcC(inst insts.Instruction) []insts.Register {
	if c, ok := inst.Operand(insts.SrcC); ok {
		return []insts.Register{c}
	}
	return nil
}

func isMFMA(inst insts.Instruction) bool {
	return inst.IsMFMA()
}

var (
	xdlReadSrcC908Nops = latency.NewTable(map[int]int{2: 0, 8: 5, 16: 13})
	xdlReadSrcC90aNops = latency.NewTable(map[int]int{2: 1, 8: 7, 16: 15})
	xdlReadSrcC94xNops = latency.NewTable(map[int]int{2: 1, 4: 3, 8: 7, 16: 15})
)

// XDLReadSrcC908 covers reads of SrcC followed by an accumulator write (WAR).
//
//	| Arch | 1st Inst                    | 2nd Inst             | NOPs |
//	| ---- | --------------------------- | -------------------- | ---- |
//	| 908  | v_mfma* read SrcC (2 pass)  | v_accvgpr_write      | 0    |
//	| 908  | v_mfma* read SrcC (8 pass)  | v_accvgpr_write      | 5    |
//	| 908  | v_mfma* read SrcC (16 pass) | v_accvgpr_write      | 13   |
var XDLReadSrcC908 = &Rule{
	Name:         "XDLReadSrcC908",
	Comment:      "XDL Read Hazard",
	Required:     arch.Target.IsCDNA1GPU,
	WriteTrigger: false,
	Trigger:      isMFMA,
	TriggerRegs:  srcC,
	MaxNops:      xdlReadSrcC908Nops,
	Hazard: func(w *Window, inst insts.Instruction) (int, bool) {
		if inst.Op == insts.OpAccVGPRWrite && inst.WritesAny(w.Regs) {
			return lookup(xdlReadSrcC908Nops, w.Class), true
		}
		return 0, false
	},
}

// XDLReadSrcC90a covers reads of SrcC followed by a VALU write (WAR).
//
//	| Arch | 1st Inst                    | 2nd Inst  | NOPs |
//	| ---- | --------------------------- | --------- | ---- |
//	| 90a  | v_mfma* read SrcC (2 pass)  | v_* write | 1    |
//	| 90a  | v_mfma* read SrcC (8 pass)  | v_* write | 7    |
//	| 90a  | v_mfma* read SrcC (16 pass) | v_* write | 15   |
var XDLReadSrcC90a = &Rule{
	Name:         "XDLReadSrcC90a",
	Comment:      "XDL Read Hazard",
	Required:     arch.Target.IsCDNA2GPU,
	WriteTrigger: false,
	Trigger:      isMFMA,
	TriggerRegs:  srcC,
	MaxNops:      xdlReadSrcC90aNops,
	Hazard:       valuWritesSrcC(xdlReadSrcC90aNops),
}

// XDLReadSrcC94x covers reads of SrcC followed by a VALU write (WAR).
//
//	| Arch | 1st Inst                    | 2nd Inst  | NOPs |
//	| ---- | --------------------------- | --------- | ---- |
//	| 94x  | v_mfma* read SrcC (2 pass)  | v_* write | 1    |
//	| 94x  | v_mfma* read SrcC (4 pass)  | v_* write | 3    |
//	| 94x  | v_mfma* read SrcC (8 pass)  | v_* write | 7    |
//	| 94x  | v_mfma* read SrcC (16 pass) | v_* write | 15   |
var XDLReadSrcC94x = &Rule{
	Name:    "XDLReadSrcC94x",
	Comment: "XDL Read Hazard",
	Required: func(t arch.Target) bool {
		return t.IsCDNA3GPU() || t.IsCDNA35GPU()
	},
	WriteTrigger: false,
	Trigger:      isMFMA,
	TriggerRegs:  srcC,
	MaxNops:      xdlReadSrcC94xNops,
	Hazard:       valuWritesSrcC(xdlReadSrcC94xNops),
}

// valuWritesSrcC matches a non-MFMA vector instruction overwriting SrcC.
// Back-to-back MFMAs accumulating into the same registers are covered by the
// write rules.
func valuWritesSrcC(table latency.Table) func(*Window, insts.Instruction) (int, bool) {
	return func(w *Window, inst insts.Instruction) (int, bool) {
		if inst.IsVALU() && inst.WritesAny(w.Regs) {
			return lookup(table, w.Class), true
		}
		return 0, false
	}
}

var (
	xdlWrite908AccRead  = latency.NewTable(map[int]int{2: 4, 8: 10, 16: 18})
	xdlWrite908AccWrite = latency.NewTable(map[int]int{2: 1, 8: 7, 16: 15})
)

const (
	xdlWrite908SrcCOverlapped = 2
	xdlWrite908SrcAB          = 4
)

// XDLWrite908 covers MFMA results consumed too early.
//
//	| Arch | 1st Inst                | 2nd Inst                     | NOPs |
//	| ---- | ----------------------- | ---------------------------- | ---- |
//	| 908  | v_mfma* write           | v_mfma* read SrcC same       | 0    |
//	| 908  | v_mfma* write           | v_mfma* read SrcC overlapped | 2    |
//	| 908  | v_mfma* write           | v_mfma* read SrcA/B          | 4    |
//	| 908  | v_mfma* write (2 pass)  | v_accvgpr_read read          | 4    |
//	| 908  | v_mfma* write (8 pass)  | v_accvgpr_read read          | 10   |
//	| 908  | v_mfma* write (16 pass) | v_accvgpr_read read          | 18   |
//	| 908  | v_mfma* write (2 pass)  | v_accvgpr_write write        | 1    |
//	| 908  | v_mfma* write (8 pass)  | v_accvgpr_write write        | 7    |
//	| 908  | v_mfma* write (16 pass) | v_accvgpr_write write        | 15   |
var XDLWrite908 = &Rule{
	Name:         "XDLWrite908",
	Comment:      "XDL Write Hazard",
	Required:     arch.Target.IsCDNA1GPU,
	WriteTrigger: true,
	Trigger:      isMFMA,
	MaxNops:      latency.NewTable(map[int]int{2: 4, 8: 10, 16: 18}),
	Hazard: func(w *Window, inst insts.Instruction) (int, bool) {
		var n need
		switch inst.Op {
		case insts.OpMFMA:
			addMFMAConflicts(&n, w, inst, 0, xdlWrite908SrcCOverlapped, xdlWrite908SrcAB)
		case insts.OpAccVGPRRead:
			if inst.ReadsAny(w.Regs) {
				n.add(lookup(xdlWrite908AccRead, w.Class))
			}
		case insts.OpAccVGPRWrite:
			if inst.WritesAny(w.Regs) {
				n.add(lookup(xdlWrite908AccWrite, w.Class))
			}
		}
		return n.result()
	},
}

// xdlWriteTables describes the MFMA write hazards of gfx90a and later, where
// every conflict kind scales with the pass count of the producer.
type xdlWriteTables struct {
	srcCOverlapped latency.Table
	srcAB          latency.Table
	other          latency.Table // v_*, vmem, lds read (RAW) or v_* write (WAW)
}

func (t xdlWriteTables) hazard(w *Window, inst insts.Instruction) (int, bool) {
	var n need
	if inst.IsMFMA() {
		addMFMAConflicts(&n, w, inst, 0,
			lookup(t.srcCOverlapped, w.Class), lookup(t.srcAB, w.Class))
		return n.result()
	}
	if inst.ReadsAny(w.Regs) || (inst.IsVALU() && inst.WritesAny(w.Regs)) {
		n.add(lookup(t.other, w.Class))
	}
	return n.result()
}

// addMFMAConflicts adds the requirements of a dependent MFMA reading the
// window's registers through its SrcC or SrcA/B operands.
func addMFMAConflicts(n *need, w *Window, inst insts.Instruction, same, overlapped, srcAB int) {
	if c, ok := inst.Operand(insts.SrcC); ok && w.Overlaps(c) {
		if w.Same(c) {
			n.add(same)
		} else {
			n.add(overlapped)
		}
	}
	for _, slot := range []int{insts.SrcA, insts.SrcB} {
		if r, ok := inst.Operand(slot); ok && w.Overlaps(r) {
			n.add(srcAB)
		}
	}
}

var xdlWrite90aTables = xdlWriteTables{
	srcCOverlapped: latency.NewTable(map[int]int{2: 2, 8: 8, 16: 16}),
	srcAB:          latency.NewTable(map[int]int{2: 5, 8: 11, 16: 19}),
	other:          latency.NewTable(map[int]int{2: 5, 8: 11, 16: 19}),
}

// XDLWrite90a covers MFMA results consumed too early.
//
//	| Arch | 1st Inst                | 2nd Inst                         | NOPs |
//	| ---- | ----------------------- | -------------------------------- | ---- |
//	| 90a  | v_mfma* write           | v_mfma* read SrcC same           | 0    |
//	| 90a  | v_mfma* write (2 pass)  | v_mfma* read SrcC overlapped     | 2    |
//	| 90a  | v_mfma* write (8 pass)  | v_mfma* read SrcC overlapped     | 8    |
//	| 90a  | v_mfma* write (16 pass) | v_mfma* read SrcC overlapped     | 16   |
//	| 90a  | v_mfma* write (2 pass)  | v_mfma* read SrcA/B              | 5    |
//	| 90a  | v_mfma* write (8 pass)  | v_mfma* read SrcA/B              | 11   |
//	| 90a  | v_mfma* write (16 pass) | v_mfma* read SrcA/B              | 19   |
//	| 90a  | v_mfma* write (2 pass)  | v_*, vmem, lds read or v_* write | 5    |
//	| 90a  | v_mfma* write (8 pass)  | v_*, vmem, lds read or v_* write | 11   |
//	| 90a  | v_mfma* write (16 pass) | v_*, vmem, lds read or v_* write | 19   |
var XDLWrite90a = &Rule{
	Name:         "XDLWrite90a",
	Comment:      "XDL Write Hazard",
	Required:     arch.Target.IsCDNA2GPU,
	WriteTrigger: true,
	Trigger:      isMFMA,
	MaxNops:      latency.NewTable(map[int]int{2: 5, 8: 11, 16: 19}),
	Hazard:       xdlWrite90aTables.hazard,
}

var xdlPasses = []int{2, 4, 8, 16}

var xdlWrite94xTables = xdlWriteTables{
	srcCOverlapped: latency.Linear(1, xdlPasses...),
	srcAB:          latency.Linear(3, xdlPasses...),
	other:          latency.Linear(3, xdlPasses...),
}

// XDLWrite94x covers MFMA results consumed too early. Requirements scale
// with the pass count N of the producer.
//
//	| Arch | 1st Inst      | 2nd Inst                         | NOPs  |
//	| ---- | ------------- | -------------------------------- | ----- |
//	| 94x  | v_mfma* write | v_mfma* read SrcC same           | 0     |
//	| 94x  | v_mfma* write | v_mfma* read SrcC overlapped     | N + 1 |
//	| 94x  | v_mfma* write | v_mfma* read SrcA/B              | N + 3 |
//	| 94x  | v_mfma* write | v_*, vmem, lds read or v_* write | N + 3 |
var XDLWrite94x = &Rule{
	Name:         "XDLWrite94x",
	Comment:      "XDL Write Hazard",
	Required:     arch.Target.IsCDNA3GPU,
	WriteTrigger: true,
	Trigger:      isMFMA,
	MaxNops:      latency.Linear(3, xdlPasses...),
	Hazard:       xdlWrite94xTables.hazard,
}

var xdlWrite950Tables = xdlWriteTables{
	srcCOverlapped: latency.Linear(2, xdlPasses...),
	srcAB:          latency.Linear(4, xdlPasses...),
	other:          latency.Linear(4, xdlPasses...),
}

// XDLWrite950 is XDLWrite94x with one extra wait state on every non-zero
// requirement.
//
//	| Arch | 1st Inst      | 2nd Inst                         | NOPs  |
//	| ---- | ------------- | -------------------------------- | ----- |
//	| 950  | v_mfma* write | v_mfma* read SrcC same           | 0     |
//	| 950  | v_mfma* write | v_mfma* read SrcC overlapped     | N + 2 |
//	| 950  | v_mfma* write | v_mfma* read SrcA/B              | N + 4 |
//	| 950  | v_mfma* write | v_*, vmem, lds read or v_* write | N + 4 |
var XDLWrite950 = &Rule{
	Name:         "XDLWrite950",
	Comment:      "XDL Write Hazard",
	Required:     arch.Target.IsCDNA35GPU,
	WriteTrigger: true,
	Trigger:      isMFMA,
	MaxNops:      latency.Linear(4, xdlPasses...),
	Hazard:       xdlWrite950Tables.hazard,
}

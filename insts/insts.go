// Package insts provides the GPU instruction model consumed by the hazard
// scheduler.
//
// An Instruction is an already-lowered machine instruction annotated with the
// registers it reads and writes and the latency class that hazard tables are
// indexed by. It carries no encoding: the scheduler only needs to classify
// instructions and compare their register operands.
//
// Usage:
//
//	mfma := insts.NewMFMA("v_mfma_f32_32x32x8f16", 16,
//		insts.A(0, 16), insts.V(0, 2), insts.V(2, 2), insts.A(0, 16))
//	read := insts.NewAccVGPRRead(insts.V(4, 1), insts.A(3, 1))
//	fmt.Println(mfma, read)
package insts

// Op represents the opcode class of a GPU instruction.
type Op uint16

// Opcode classes.
const (
	OpUnknown Op = iota
	OpNop
	OpSALU
	OpSMEM
	OpSendMsg
	OpVALU
	OpVALUTrans // Transcendental VALU (v_exp, v_log, v_rcp, v_rsq, v_sqrt, v_sin, v_cos)
	OpVCMPX     // VALU compare that writes EXEC
	OpVDivFmas  // v_div_fmas, implicitly reads VCC
	OpMFMA      // Matrix fused multiply-add (XDL)
	OpAccVGPRRead
	OpAccVGPRWrite
	OpVMEMLoad
	OpVMEMStore
	OpLDS
)

var opNames = map[Op]string{
	OpUnknown:      "unknown",
	OpNop:          "nop",
	OpSALU:         "salu",
	OpSMEM:         "smem",
	OpSendMsg:      "sendmsg",
	OpVALU:         "valu",
	OpVALUTrans:    "valu_trans",
	OpVCMPX:        "vcmpx",
	OpVDivFmas:     "vdiv_fmas",
	OpMFMA:         "mfma",
	OpAccVGPRRead:  "accvgpr_read",
	OpAccVGPRWrite: "accvgpr_write",
	OpVMEMLoad:     "vmem_load",
	OpVMEMStore:    "vmem_store",
	OpLDS:          "lds",
}

// String returns the short class name used in kernel stream files.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// defaultMnemonic is used when an instruction is built without a name.
var defaultMnemonic = map[Op]string{
	OpNop:          "s_nop",
	OpSALU:         "s_mov_b32",
	OpSMEM:         "s_load_dword",
	OpSendMsg:      "s_sendmsg",
	OpVALU:         "v_mov_b32",
	OpVALUTrans:    "v_exp_f32",
	OpVCMPX:        "v_cmpx_eq_u32",
	OpVDivFmas:     "v_div_fmas_f32",
	OpMFMA:         "v_mfma_f32_32x32x8f16",
	OpAccVGPRRead:  "v_accvgpr_read_b32",
	OpAccVGPRWrite: "v_accvgpr_write_b32",
	OpVMEMLoad:     "buffer_load_dword",
	OpVMEMStore:    "buffer_store_dword",
	OpLDS:          "ds_read_b32",
}

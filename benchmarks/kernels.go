// Package benchmarks provides synthetic kernel streams for measuring and
// validating the hazard scheduler.
package benchmarks

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/waitstate/insts"
)

// GetKernelBenchmarks returns the standard set of kernel benchmarks.
// Each benchmark exercises one family of hazards on one target.
func GetKernelBenchmarks() []Benchmark {
	return []Benchmark{
		accumulateChain908(),
		gemmTile942(),
		srcCOverwrite942(),
		scalarSetup90a(),
		gemmTile1100(),
	}
}

// 1. Accumulate Chain - back-to-back MFMAs into the same AGPRs, then an
// epilogue reading every accumulator
func accumulateChain908() Benchmark {
	acc := insts.A(0, 16)

	var stream []insts.Instruction
	for k := 0; k < 8; k++ {
		stream = append(stream, insts.NewMFMA("v_mfma_f32_32x32x8f16", 16,
			acc, insts.V(2*k, 2), insts.V(16+2*k, 2), acc))
	}
	for i := 0; i < 16; i++ {
		stream = append(stream, insts.NewAccVGPRRead(insts.V(40+i, 1), insts.A(i, 1)))
	}

	return Benchmark{
		Name:            "accumulate_chain_908",
		Description:     "8 chained 16-pass MFMAs, 16 accvgpr reads - XDL write on the first read",
		Target:          "gfx908",
		Kernel:          stream,
		ExpectedPadding: 18,
	}
}

// 2. GEMM Tile - two interleaved accumulators in VGPRs and a conversion
// epilogue
func gemmTile942() Benchmark {
	return Benchmark{
		Name:            "gemm_tile_942",
		Description:     "4 K-steps over 2 accumulators, 32 VALU reads - XDL write on the first read",
		Target:          "gfx942",
		Kernel:          GEMMTile(4),
		ExpectedPadding: 18,
	}
}

// 3. SrcC Overwrite - a VALU reuses the C buffer while the MFMA still reads
// it, then the result is consumed
func srcCOverwrite942() Benchmark {
	stream := []insts.Instruction{
		insts.NewMFMA("v_mfma_f32_16x16x16f16", 8,
			insts.V(20, 4), insts.V(0, 2), insts.V(2, 2), insts.V(10, 4)),
		insts.NewVALU("v_mov_b32", insts.V(10, 1), insts.V(50, 1)),
		insts.NewVALU("v_cvt_f16_f32", insts.V(60, 1), insts.V(20, 1)),
	}

	return Benchmark{
		Name:            "srcc_overwrite_942",
		Description:     "8-pass MFMA, VALU write to SrcC (7), VALU read of the result (3)",
		Target:          "gfx942",
		Kernel:          stream,
		ExpectedPadding: 10,
	}
}

// 4. Scalar Setup - M0, SGPR and EXEC producers right before their
// consumers
func scalarSetup90a() Benchmark {
	stream := []insts.Instruction{
		insts.New(insts.OpSALU, "s_mov_b32", []insts.Register{insts.M0}, []insts.Register{insts.S(0, 1)}),
		insts.New(insts.OpLDS, "ds_read_b32", []insts.Register{insts.V(1, 1)}, []insts.Register{insts.V(0, 1), insts.M0}),
		insts.New(insts.OpVALU, "v_readfirstlane_b32", []insts.Register{insts.S(4, 1)}, []insts.Register{insts.V(0, 1)}),
		insts.New(insts.OpVMEMLoad, "buffer_load_dword", []insts.Register{insts.V(30, 1)}, []insts.Register{insts.V(2, 1), insts.S(4, 4)}),
		insts.New(insts.OpVCMPX, "v_cmpx_gt_u32", []insts.Register{insts.EXEC}, []insts.Register{insts.V(3, 1), insts.V(4, 1)}),
		insts.NewMFMA("v_mfma_f32_32x32x4f16", 8, insts.A(0, 16), insts.V(8, 2), insts.V(10, 2), insts.A(0, 16)),
	}

	return Benchmark{
		Name:            "scalar_setup_90a",
		Description:     "M0 -> LDS (1), VALU SGPR -> VMEM (5), v_cmpx EXEC -> MFMA (4)",
		Target:          "gfx90a",
		Kernel:          stream,
		ExpectedPadding: 10,
	}
}

// 5. GEMM Tile on RDNA - the same stream needs no padding
func gemmTile1100() Benchmark {
	return Benchmark{
		Name:            "gemm_tile_1100",
		Description:     "GEMM tile on a target without matrix-core hazards",
		Target:          "gfx1100",
		Kernel:          GEMMTile(4),
		ExpectedPadding: 0,
	}
}

// GEMMTile builds k steps of a two-accumulator 16-pass MFMA loop followed
// by an epilogue converting both accumulators.
func GEMMTile(k int) []insts.Instruction {
	acc0 := insts.V(32, 16)
	acc1 := insts.V(48, 16)

	stream := make([]insts.Instruction, 0, 2*k+32)
	for i := 0; i < k; i++ {
		a := insts.V(4*(i%4), 2)
		b := insts.V(4*(i%4)+2, 2)
		stream = append(stream,
			insts.NewMFMA("v_mfma_f32_32x32x8f16", 16, acc0, a, b, acc0),
			insts.NewMFMA("v_mfma_f32_32x32x8f16", 16, acc1, a, b, acc1),
		)
	}
	for i := 0; i < 16; i++ {
		stream = append(stream, insts.NewVALU("v_cvt_f16_f32", insts.V(64+i, 1), insts.V(32+i, 1)))
	}
	for i := 0; i < 16; i++ {
		stream = append(stream, insts.NewVALU("v_cvt_f16_f32", insts.V(80+i, 1), insts.V(48+i, 1)))
	}
	return stream
}

// GEMMLoop builds a long stream of n GEMM tiles, for throughput
// measurements.
func GEMMLoop(n int) []insts.Instruction {
	var stream []insts.Instruction
	for i := 0; i < n; i++ {
		stream = append(stream, GEMMTile(4)...)
	}
	return stream
}

// Named returns a benchmark by name.
func Named(name string) (Benchmark, error) {
	for _, b := range GetKernelBenchmarks() {
		if b.Name == name {
			return b, nil
		}
	}
	return Benchmark{}, errors.Errorf("unknown benchmark %q", name)
}

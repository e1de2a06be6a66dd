package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/waitstate/insts"
)

var _ = Describe("Register", func() {
	It("should detect overlapping ranges", func() {
		Expect(insts.A(0, 16).Overlaps(insts.A(12, 4))).To(BeTrue())
		Expect(insts.A(0, 16).Overlaps(insts.A(16, 4))).To(BeFalse())
		Expect(insts.V(3, 1).Overlaps(insts.V(0, 4))).To(BeTrue())
	})

	It("should not overlap across register files", func() {
		Expect(insts.A(0, 4).Overlaps(insts.V(0, 4))).To(BeFalse())
		Expect(insts.S(0, 2).Overlaps(insts.VCC)).To(BeFalse())
	})

	It("should treat special registers as a single resource", func() {
		Expect(insts.EXEC.Overlaps(insts.EXEC)).To(BeTrue())
		Expect(insts.VCC.Same(insts.VCC)).To(BeTrue())
		Expect(insts.M0.Overlaps(insts.EXEC)).To(BeFalse())
	})

	It("should distinguish same from overlapped", func() {
		Expect(insts.A(0, 16).Same(insts.A(0, 16))).To(BeTrue())
		Expect(insts.A(0, 16).Same(insts.A(0, 4))).To(BeFalse())
	})

	It("should format like the assembler", func() {
		Expect(insts.V(4, 1).String()).To(Equal("v4"))
		Expect(insts.A(0, 16).String()).To(Equal("a[0:15]"))
		Expect(insts.S(2, 2).String()).To(Equal("s[2:3]"))
		Expect(insts.EXEC.String()).To(Equal("exec"))
	})

	It("should reject empty ranges", func() {
		Expect(insts.V(0, 0).Validate()).To(HaveOccurred())
		Expect(insts.Register{}.Validate()).To(HaveOccurred())
		Expect(insts.V(-1, 2).Validate()).To(HaveOccurred())
	})
})

var _ = Describe("Instruction", func() {
	var mfma insts.Instruction

	BeforeEach(func() {
		mfma = insts.NewMFMA("v_mfma_f32_32x32x8f16", 16,
			insts.A(0, 16), insts.V(0, 2), insts.V(2, 2), insts.A(0, 16))
	})

	It("should expose operand slots", func() {
		c, ok := mfma.Operand(insts.SrcC)
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(insts.A(0, 16)))

		_, ok = mfma.Operand(3)
		Expect(ok).To(BeFalse())
	})

	It("should use the pass count as latency class", func() {
		Expect(mfma.LatencyClass()).To(Equal(16))
		Expect(insts.NewVALU("v_add_f32", insts.V(0, 1)).LatencyClass()).To(Equal(0))
	})

	It("should report reads and writes", func() {
		Expect(mfma.Writes(insts.A(15, 1))).To(BeTrue())
		Expect(mfma.Reads(insts.V(3, 1))).To(BeTrue())
		Expect(mfma.Reads(insts.V(4, 1))).To(BeFalse())
		Expect(mfma.WritesKind(insts.KindAGPR)).To(BeTrue())
		Expect(mfma.WritesKind(insts.KindVGPR)).To(BeFalse())
	})

	It("should classify opcode classes", func() {
		Expect(mfma.IsMFMA()).To(BeTrue())
		Expect(mfma.IsVALU()).To(BeFalse())
		Expect(insts.NewAccVGPRRead(insts.V(0, 1), insts.A(0, 1)).IsVALU()).To(BeTrue())
		Expect(insts.New(insts.OpVMEMLoad, "", nil, nil).IsVMEM()).To(BeTrue())
	})

	It("should count wait states of explicit no-ops", func() {
		Expect(insts.NewNop(4).WaitStates()).To(Equal(4))
		Expect(insts.NewNop(0).WaitStates()).To(Equal(1))
		Expect(mfma.WaitStates()).To(Equal(1))
	})

	It("should mark scheduler padding", func() {
		pad := insts.NewPadding("XDL Write Hazard")
		Expect(pad.Padding).To(BeTrue())
		Expect(pad.Op).To(Equal(insts.OpNop))
		Expect(pad.String()).To(Equal("s_nop 0 // XDL Write Hazard"))
	})

	It("should format as an assembly line", func() {
		Expect(mfma.String()).To(Equal(
			"v_mfma_f32_32x32x8f16 a[0:15], v[0:1], v[2:3], a[0:15]"))
		Expect(insts.NewNop(3).String()).To(Equal("s_nop 2"))
	})

	Describe("Validate", func() {
		It("should accept well formed instructions", func() {
			Expect(mfma.Validate()).To(Succeed())
			Expect(insts.NewAccVGPRRead(insts.V(0, 1), insts.A(0, 1)).Validate()).To(Succeed())
			Expect(insts.NewPadding("x").Validate()).To(Succeed())
		})

		It("should reject an MFMA without pass count", func() {
			mfma.Passes = 0
			Expect(mfma.Validate()).To(MatchError(ContainSubstring("pass count")))
		})

		It("should reject an MFMA with missing operands", func() {
			bad := insts.New(insts.OpMFMA, "v_mfma_f32_4x4x1f32",
				[]insts.Register{insts.A(0, 4)}, []insts.Register{insts.V(0, 1)})
			bad.Passes = 2
			Expect(bad.Validate()).To(HaveOccurred())
		})

		It("should reject accvgpr moves with the wrong register files", func() {
			bad := insts.NewAccVGPRRead(insts.A(0, 1), insts.V(0, 1))
			Expect(bad.Validate()).To(HaveOccurred())
		})

		It("should reject unknown opcode classes", func() {
			Expect(insts.Instruction{Name: "foo"}.Validate()).To(HaveOccurred())
		})
	})
})

package loader_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/insts"
	"github.com/sarchlab/waitstate/loader"
)

var _ = Describe("Kernel loader", func() {
	It("should load a kernel file", func() {
		k, err := loader.Load(filepath.Join("testdata", "gemm_tile.yaml"))
		Expect(err).ToNot(HaveOccurred())

		Expect(k.Name).To(Equal("gemm_tile"))
		Expect(k.Target).To(Equal("gfx908"))
		Expect(k.Instructions).To(HaveLen(4))

		mfma := k.Instructions[0]
		Expect(mfma.Op).To(Equal(insts.OpMFMA))
		Expect(mfma.Passes).To(Equal(16))
		Expect(mfma.Dst).To(Equal([]insts.Register{insts.A(0, 16)}))
		Expect(mfma.Src).To(Equal([]insts.Register{insts.V(0, 2), insts.V(2, 2), insts.A(0, 16)}))

		nop := k.Instructions[2]
		Expect(nop.Name).To(Equal("s_nop"))
		Expect(nop.WaitStates()).To(Equal(4))

		read := k.Instructions[3]
		Expect(read.Name).To(Equal("v_accvgpr_read_b32"))
		Expect(read.Comment).To(Equal("epilogue"))
	})

	It("should name an unnamed kernel after its file", func() {
		k, err := loader.Load(filepath.Join("testdata", "unnamed.yaml"))
		Expect(err).ToNot(HaveOccurred())
		Expect(k.Name).To(Equal("unnamed"))
		Expect(k.Target).To(BeEmpty())
		Expect(k.Instructions[0].Dst).To(Equal([]insts.Register{insts.M0}))
	})

	It("should report a missing file", func() {
		_, err := loader.Load(filepath.Join("testdata", "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("failed to read kernel file")))
	})

	It("should reject an empty document", func() {
		_, err := loader.Parse(nil)
		Expect(err).To(MatchError("empty kernel file"))
	})

	It("should reject unknown fields", func() {
		_, err := loader.Parse([]byte("name: k\ninstrs: []\n"))
		Expect(err).To(MatchError(ContainSubstring("failed to parse kernel YAML")))
	})

	It("should reject unknown targets", func() {
		_, err := loader.Parse([]byte("name: k\ntarget: gfx000\ninstructions: []\n"))
		Expect(errors.Is(err, arch.ErrUnknownTarget)).To(BeTrue())
	})

	DescribeTable("malformed instructions",
		func(doc, message string) {
			_, err := loader.Parse([]byte(doc))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(message))
		},
		Entry("unknown opcode class", `
instructions:
  - {op: valu, dst: [v0], src: [v1]}
  - {op: bogus}
`, "instruction 1: unknown opcode class"),
		Entry("bad destination", `
instructions:
  - {op: valu, dst: ["v[3:1]"], src: [v1]}
`, "instruction 0: dst: empty register range"),
		Entry("bad source", `
instructions:
  - {op: valu, dst: [v0], src: [x1]}
`, "instruction 0: src: unknown register file"),
		Entry("MFMA without passes", `
instructions:
  - {op: mfma, dst: ["a[0:3]"], src: [v0, v1, "a[0:3]"]}
`, "instruction 0: v_mfma_f32_32x32x8f16: MFMA without pass count"),
	)

	It("should round-trip a scheduled stream", func() {
		k := &loader.Kernel{
			Name:   "round_trip",
			Target: "gfx90a",
			Instructions: []insts.Instruction{
				insts.NewMFMA("v_mfma_f32_16x16x16f16", 8, insts.A(0, 4), insts.V(0, 2), insts.V(2, 2), insts.A(0, 4)),
				insts.NewPadding("XDL Write Hazard"),
				insts.NewAccVGPRRead(insts.V(4, 1), insts.A(1, 1)),
				insts.New(insts.OpVCMPX, "", []insts.Register{insts.EXEC}, []insts.Register{insts.V(5, 1), insts.S(2, 2)}),
			},
		}

		data, err := loader.Marshal(k)
		Expect(err).ToNot(HaveOccurred())

		back, err := loader.Parse(data)
		Expect(err).ToNot(HaveOccurred())
		Expect(back).To(Equal(k))
	})

	It("should save a kernel file that loads back", func() {
		path := filepath.Join(GinkgoT().TempDir(), "saved.yaml")
		k := &loader.Kernel{
			Name:         "saved",
			Instructions: []insts.Instruction{insts.NewNop(3)},
		}
		Expect(loader.Save(path, k)).To(Succeed())

		back, err := loader.Load(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(back).To(Equal(k))
	})
})

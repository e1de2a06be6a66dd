package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/waitstate/insts"
)

var _ = Describe("Parser", func() {
	DescribeTable("ParseRegister",
		func(text string, expected insts.Register) {
			r, err := insts.ParseRegister(text)
			Expect(err).ToNot(HaveOccurred())
			Expect(r).To(Equal(expected))
		},
		Entry("single VGPR", "v4", insts.V(4, 1)),
		Entry("AGPR range", "a[0:15]", insts.A(0, 16)),
		Entry("SGPR pair", "s[2:3]", insts.S(2, 2)),
		Entry("upper case", " V[8:9] ", insts.V(8, 2)),
		Entry("vcc", "vcc", insts.VCC),
		Entry("exec", "exec", insts.EXEC),
		Entry("m0", "m0", insts.M0),
	)

	DescribeTable("ParseRegister errors",
		func(text string) {
			_, err := insts.ParseRegister(text)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("unknown file", "x3"),
		Entry("no index", "v"),
		Entry("reversed range", "v[4:2]"),
		Entry("missing colon", "a[0]"),
		Entry("unterminated", "a[0:3"),
	)

	It("should round trip the register formatter", func() {
		for _, r := range []insts.Register{insts.V(0, 1), insts.A(4, 4), insts.S(10, 2), insts.M0} {
			parsed, err := insts.ParseRegister(r.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(r))
		}
	})

	It("should parse opcode classes", func() {
		op, err := insts.ParseOp("MFMA")
		Expect(err).ToNot(HaveOccurred())
		Expect(op).To(Equal(insts.OpMFMA))

		op, err = insts.ParseOp("accvgpr_read")
		Expect(err).ToNot(HaveOccurred())
		Expect(op).To(Equal(insts.OpAccVGPRRead))

		_, err = insts.ParseOp("unknown")
		Expect(err).To(HaveOccurred())
	})

	It("should parse register lists", func() {
		regs, err := insts.ParseRegisters([]string{"v[0:1]", "v[2:3]", "a[0:15]"})
		Expect(err).ToNot(HaveOccurred())
		Expect(regs).To(HaveLen(3))

		regs, err = insts.ParseRegisters(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(regs).To(BeNil())
	})
})

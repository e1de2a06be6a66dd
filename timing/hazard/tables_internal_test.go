package hazard

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/waitstate/timing/latency"
)

var _ = Describe("Latency tables", func() {
	DescribeTable("conflict tables stay inside the window",
		func(conflict, window latency.Table) {
			Expect(conflict.Bounded(window)).To(BeTrue())
		},
		Entry("XDLReadSrcC908", xdlReadSrcC908Nops, XDLReadSrcC908.MaxNops),
		Entry("XDLReadSrcC90a", xdlReadSrcC90aNops, XDLReadSrcC90a.MaxNops),
		Entry("XDLReadSrcC94x", xdlReadSrcC94xNops, XDLReadSrcC94x.MaxNops),
		Entry("XDLWrite908 accvgpr_read", xdlWrite908AccRead, XDLWrite908.MaxNops),
		Entry("XDLWrite908 accvgpr_write", xdlWrite908AccWrite, XDLWrite908.MaxNops),
		Entry("XDLWrite90a SrcC", xdlWrite90aTables.srcCOverlapped, XDLWrite90a.MaxNops),
		Entry("XDLWrite90a SrcA/B", xdlWrite90aTables.srcAB, XDLWrite90a.MaxNops),
		Entry("XDLWrite90a other", xdlWrite90aTables.other, XDLWrite90a.MaxNops),
		Entry("XDLWrite94x SrcC", xdlWrite94xTables.srcCOverlapped, XDLWrite94x.MaxNops),
		Entry("XDLWrite94x SrcA/B", xdlWrite94xTables.srcAB, XDLWrite94x.MaxNops),
		Entry("XDLWrite94x other", xdlWrite94xTables.other, XDLWrite94x.MaxNops),
		Entry("XDLWrite950 SrcC", xdlWrite950Tables.srcCOverlapped, XDLWrite950.MaxNops),
		Entry("XDLWrite950 SrcA/B", xdlWrite950Tables.srcAB, XDLWrite950.MaxNops),
		Entry("XDLWrite950 other", xdlWrite950Tables.other, XDLWrite950.MaxNops),
	)

	It("should keep the fixed gfx908 MFMA requirements inside every window", func() {
		for _, class := range XDLWrite908.MaxNops.Classes() {
			size, _ := XDLWrite908.MaxNops.Lookup(class)
			Expect(xdlWrite908SrcAB).To(BeNumerically("<=", size))
			Expect(xdlWrite908SrcCOverlapped).To(BeNumerically("<=", size))
		}
	})

	It("should define the same latency classes for all XDL write tables", func() {
		for _, tables := range []xdlWriteTables{xdlWrite90aTables, xdlWrite94xTables, xdlWrite950Tables} {
			Expect(tables.srcCOverlapped.Classes()).To(Equal(tables.srcAB.Classes()))
			Expect(tables.srcAB.Classes()).To(Equal(tables.other.Classes()))
		}
	})

	It("should merge requirements by maximum", func() {
		var n need
		_, hit := n.result()
		Expect(hit).To(BeFalse())

		n.add(0)
		n.add(4)
		n.add(2)
		nops, hit := n.result()
		Expect(hit).To(BeTrue())
		Expect(nops).To(Equal(4))
	})

	It("should format the tie comment independently of rule order", func() {
		a := &Rule{Name: "A", Comment: "B Hazard"}
		b := &Rule{Name: "B", Comment: "A Hazard"}
		c := &Rule{Name: "C", Comment: "A Hazard"}

		Expect(paddingComment([]*Rule{a})).To(Equal("B Hazard"))
		Expect(paddingComment([]*Rule{b, c})).To(Equal("A Hazard"))
		Expect(paddingComment([]*Rule{a, b, c})).To(Equal("Wait State Hazards: A Hazard, B Hazard"))
		Expect(paddingComment([]*Rule{c, a})).To(Equal("Wait State Hazards: A Hazard, B Hazard"))
	})
})

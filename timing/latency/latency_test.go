package latency_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/waitstate/timing/latency"
)

var _ = Describe("Latency", func() {
	Describe("Table", func() {
		var table latency.Table

		BeforeEach(func() {
			table = latency.NewTable(map[int]int{2: 4, 8: 10, 16: 18})
		})

		It("should look up defined classes", func() {
			nops, ok := table.Lookup(8)
			Expect(ok).To(BeTrue())
			Expect(nops).To(Equal(10))
		})

		It("should report missing classes", func() {
			_, ok := table.Lookup(4)
			Expect(ok).To(BeFalse())
		})

		It("should track the maximum", func() {
			Expect(table.Max()).To(Equal(18))
			Expect(table.Len()).To(Equal(3))
		})

		It("should list classes in ascending order", func() {
			Expect(table.Classes()).To(Equal([]int{2, 8, 16}))
		})

		It("should not share storage with its source map", func() {
			src := map[int]int{2: 1}
			t := latency.NewTable(src)
			src[2] = 100
			nops, _ := t.Lookup(2)
			Expect(nops).To(Equal(1))
		})

		It("should panic on negative entries", func() {
			Expect(func() { latency.NewTable(map[int]int{2: -1}) }).To(Panic())
		})

		It("should build linear tables", func() {
			t := latency.Linear(3, 2, 4, 8, 16)
			Expect(t.Classes()).To(Equal([]int{2, 4, 8, 16}))
			for _, passes := range t.Classes() {
				nops, _ := t.Lookup(passes)
				Expect(nops).To(Equal(passes + 3))
			}
		})

		It("should build uniform tables keyed by class 0", func() {
			t := latency.Uniform(5)
			nops, ok := t.Lookup(0)
			Expect(ok).To(BeTrue())
			Expect(nops).To(Equal(5))
		})

		It("should check bounds per class", func() {
			Expect(latency.NewTable(map[int]int{2: 1, 8: 7}).Bounded(table)).To(BeTrue())
			Expect(latency.NewTable(map[int]int{2: 5}).Bounded(table)).To(BeFalse())
			Expect(latency.NewTable(map[int]int{4: 1}).Bounded(table)).To(BeFalse())
		})

		It("should format entries", func() {
			Expect(table.String()).To(Equal("2p:4 8p:10 16p:18"))
			Expect(latency.Uniform(5).String()).To(Equal("5"))
		})
	})

	Describe("CostModel", func() {
		It("should convert wait states to time", func() {
			m := latency.NewCostModel(1000)
			Expect(m.Duration(10)).To(Equal(10 * time.Nanosecond))
			Expect(m.Duration(0)).To(BeZero())
		})

		It("should report nothing for a zero clock", func() {
			m := latency.NewCostModel(0)
			Expect(m.Duration(100)).To(BeZero())
		})
	})
})

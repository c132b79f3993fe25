package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get the period", func() {
		var f Freq = 1 * GHz
		Expect(float64(f.Period())).To(BeNumerically("~", 1e-9, 1e-15))
	})

	It("should convert time to cycles", func() {
		var f Freq = 1 * GHz
		Expect(f.Cycle(2e-9)).To(Equal(uint64(2)))
	})

	It("should get this tick", func() {
		var f Freq = 1 * GHz
		Expect(float64(f.ThisTick(1.1e-9))).
			To(BeNumerically("~", 2e-9, 1e-15))
		Expect(float64(f.ThisTick(2e-9))).
			To(BeNumerically("~", 2e-9, 1e-15))
	})

	It("should get the next tick", func() {
		var f Freq = 1 * GHz
		Expect(float64(f.NextTick(1.1e-9))).
			To(BeNumerically("~", 2e-9, 1e-15))
		Expect(float64(f.NextTick(2e-9))).
			To(BeNumerically("~", 3e-9, 1e-15))
	})

	It("should get the time after n cycles", func() {
		var f Freq = 1 * GHz
		Expect(float64(f.NCyclesLater(3, 1e-9))).
			To(BeNumerically("~", 4e-9, 1e-15))
	})
})

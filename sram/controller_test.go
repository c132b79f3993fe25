package sram

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Controller", func() {
	var (
		cfg  Config
		ctrl *Controller
	)

	BeforeEach(func() {
		cfg = validConfig()
	})

	JustBeforeEach(func() {
		var err error
		ctrl, err = NewController(cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	readInput := func(addr uint64, sel Mask) BusInput {
		return BusInput{
			CycleValid:  true,
			StrobeValid: true,
			Address:     addr,
			ByteSelect:  sel,
		}
	}

	writeInput := func(addr, data uint64, sel Mask) BusInput {
		return BusInput{
			CycleValid:  true,
			StrobeValid: true,
			WriteEnable: true,
			Address:     addr,
			WriteData:   data,
			ByteSelect:  sel,
		}
	}

	It("should stay idle without a qualified request", func() {
		out, frame := ctrl.Step(BusInput{})

		Expect(out).To(Equal(BusOutput{}))
		Expect(frame).To(Equal(cfg.IdleFrame()))
		Expect(ctrl.State()).To(Equal(StateIdle))
	})

	It("should not sample a request with only one valid line", func() {
		out, _ := ctrl.Step(BusInput{CycleValid: true, Address: 0x10})

		Expect(out).To(Equal(BusOutput{}))
		Expect(ctrl.State()).To(Equal(StateIdle))
	})

	Context("single-lane read", func() {
		It("should acknowledge after the read-active phase", func() {
			out, frame := ctrl.Step(readInput(0x10, 0x3))
			Expect(out).To(Equal(BusOutput{Stall: true}))
			Expect(frame.Address).To(Equal(uint64(0x20)))
			Expect(frame.OEn).To(BeFalse())
			Expect(frame.WEn).To(BeTrue())
			Expect(frame.CEn).To(Equal(uint32(0)))
			Expect(frame.BEn).To(Equal(uint32(0)))
			Expect(ctrl.State()).To(Equal(StateRead))

			out, _ = ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{Stall: true}))

			out, frame = ctrl.Step(BusInput{DataIn: 0xbeef})
			Expect(out).To(Equal(BusOutput{Ack: true, ReadData: 0xbeef}))
			Expect(frame).To(Equal(cfg.IdleFrame()))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should mask unselected byte-enable lines", func() {
			_, frame := ctrl.Step(readInput(0x10, 0x1))

			Expect(frame.BEn).To(Equal(uint32(0b10)))
		})

		It("should insert extra turnaround cycles", func() {
			cfg2 := cfg
			cfg2.ReadTurnaround = 3
			c, err := NewController(cfg2)
			Expect(err).ToNot(HaveOccurred())

			c.Step(readInput(0x10, 0x3))
			c.Step(BusInput{})
			out, _ := c.Step(BusInput{DataIn: 0xbeef})
			Expect(out.Ack).To(BeTrue())
			Expect(c.State()).To(Equal(StateReadTurnaround))

			// The turnaround runs to completion even with a request waiting.
			out, _ = c.Step(readInput(0x11, 0x3))
			Expect(out).To(Equal(BusOutput{}))
			Expect(c.State()).To(Equal(StateReadTurnaround))

			out, _ = c.Step(readInput(0x11, 0x3))
			Expect(out).To(Equal(BusOutput{}))
			Expect(c.State()).To(Equal(StateIdle))
		})
	})

	Context("multi-lane read", func() {
		It("should visit the lanes in increasing order", func() {
			_, frame := ctrl.Step(readInput(0x10, 0xf))
			Expect(frame.Address).To(Equal(uint64(0x20)))

			ctrl.Step(BusInput{})

			out, frame := ctrl.Step(BusInput{DataIn: 0x5678})
			Expect(out).To(Equal(BusOutput{
				Stall:    true,
				Ack:      true,
				ReadData: 0x5678,
			}))
			Expect(frame.Address).To(Equal(uint64(0x21)))
			Expect(ctrl.State()).To(Equal(StateRead))

			ctrl.Step(BusInput{})

			out, _ = ctrl.Step(BusInput{DataIn: 0x1234})
			Expect(out).To(Equal(BusOutput{
				Ack:      true,
				ReadData: 0x12345678,
			}))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should skip unoccupied lanes", func() {
			_, frame := ctrl.Step(readInput(0x10, 0xc))

			// Only lane 1 holds selected granules.
			Expect(frame.Address).To(Equal(uint64(0x21)))

			ctrl.Step(BusInput{})
			out, _ := ctrl.Step(BusInput{DataIn: 0x1234})
			Expect(out).To(Equal(BusOutput{
				Ack:      true,
				ReadData: 0x12340000,
			}))
		})
	})

	Context("single-lane write", func() {
		It("should acknowledge on the acceptance tick", func() {
			out, frame := ctrl.Step(writeInput(0x10, 0xbeef, 0x3))

			Expect(out).To(Equal(BusOutput{Stall: true, Ack: true}))
			Expect(frame.Address).To(Equal(uint64(0x20)))
			Expect(frame.Data).To(Equal(uint64(0xbeef)))
			Expect(frame.DriveData).To(BeTrue())
			Expect(frame.WEn).To(BeFalse())
			Expect(frame.OEn).To(BeTrue())
			Expect(ctrl.State()).To(Equal(StateWriteActive))
		})

		It("should release the strobes after the active phase", func() {
			ctrl.Step(writeInput(0x10, 0xbeef, 0x3))

			out, _ := ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{Stall: true}))

			out, frame := ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{}))
			Expect(frame.WEn).To(BeTrue())
			Expect(frame.DriveData).To(BeFalse())
			Expect(frame.Address).To(Equal(uint64(0x20)))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})
	})

	Context("multi-lane write", func() {
		It("should write the lanes in increasing order", func() {
			_, frame := ctrl.Step(writeInput(0x10, 0x12345678, 0xf))
			Expect(frame.Address).To(Equal(uint64(0x20)))
			Expect(frame.Data).To(Equal(uint64(0x5678)))

			ctrl.Step(BusInput{})

			out, _ := ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{Stall: true}))
			Expect(ctrl.State()).To(Equal(StateWriteTurnaround))

			out, frame = ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{Stall: true}))
			Expect(frame.Address).To(Equal(uint64(0x21)))
			Expect(frame.Data).To(Equal(uint64(0x1234)))
			Expect(ctrl.State()).To(Equal(StateWriteActive))

			ctrl.Step(BusInput{})

			out, _ = ctrl.Step(BusInput{})
			Expect(out).To(Equal(BusOutput{}))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})
	})

	Context("fast-read chaining", func() {
		BeforeEach(func() {
			cfg.FastRead = true
			cfg.ReadActive = 3
		})

		It("should chain a waiting read without lowering stall", func() {
			ctrl.Step(readInput(0x10, 0x3))
			ctrl.Step(BusInput{})
			ctrl.Step(BusInput{})

			next := readInput(0x11, 0x3)
			next.DataIn = 0xbeef
			out, frame := ctrl.Step(next)

			Expect(out).To(Equal(BusOutput{
				Stall:    true,
				Ack:      true,
				ReadData: 0xbeef,
			}))
			Expect(frame.Address).To(Equal(uint64(0x22)))
			Expect(ctrl.State()).To(Equal(StateRead))

			ctrl.Step(BusInput{})
			ctrl.Step(BusInput{})

			out, _ = ctrl.Step(BusInput{DataIn: 0xcafe})
			Expect(out).To(Equal(BusOutput{Ack: true, ReadData: 0xcafe}))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should not chain a write request", func() {
			ctrl.Step(readInput(0x10, 0x3))
			ctrl.Step(BusInput{})
			ctrl.Step(BusInput{})

			next := writeInput(0x11, 0xcafe, 0x3)
			next.DataIn = 0xbeef
			out, _ := ctrl.Step(next)

			Expect(out).To(Equal(BusOutput{Ack: true, ReadData: 0xbeef}))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should not chain when no request is waiting", func() {
			ctrl.Step(readInput(0x10, 0x3))
			ctrl.Step(BusInput{})
			ctrl.Step(BusInput{})

			out, _ := ctrl.Step(BusInput{DataIn: 0xbeef})
			Expect(out).To(Equal(BusOutput{Ack: true, ReadData: 0xbeef}))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})
	})

	Context("zero-lane transfer", func() {
		It("should acknowledge a read without touching the chip bus", func() {
			out, frame := ctrl.Step(readInput(0x10, 0x0))

			Expect(out).To(Equal(BusOutput{Ack: true}))
			Expect(frame).To(Equal(cfg.IdleFrame()))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should acknowledge a write without touching the chip bus", func() {
			out, frame := ctrl.Step(writeInput(0x10, 0xbeef, 0x0))

			Expect(out).To(Equal(BusOutput{Ack: true}))
			Expect(frame).To(Equal(cfg.IdleFrame()))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})
	})

	Context("reset", func() {
		It("should abandon an in-flight read", func() {
			ctrl.Step(readInput(0x10, 0xf))
			Expect(ctrl.State()).To(Equal(StateRead))

			out, frame := ctrl.Step(BusInput{Reset: true})

			Expect(out).To(Equal(BusOutput{}))
			Expect(frame).To(Equal(cfg.IdleFrame()))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should abandon an in-flight write", func() {
			ctrl.Step(writeInput(0x10, 0xbeef, 0xf))
			Expect(ctrl.State()).To(Equal(StateWriteActive))

			out, frame := ctrl.Step(BusInput{Reset: true})

			Expect(out).To(Equal(BusOutput{}))
			Expect(frame).To(Equal(cfg.IdleFrame()))
			Expect(ctrl.State()).To(Equal(StateIdle))
		})

		It("should accept a new request on the tick after reset", func() {
			ctrl.Step(readInput(0x10, 0xf))
			ctrl.Step(BusInput{Reset: true})

			out, _ := ctrl.Step(readInput(0x11, 0x3))
			Expect(out).To(Equal(BusOutput{Stall: true}))
			Expect(ctrl.State()).To(Equal(StateRead))
		})
	})

	Context("without byte-enable pins", func() {
		BeforeEach(func() {
			cfg.ByteEnable = false
		})

		It("should fold byte selection into the chip enables", func() {
			_, frame := ctrl.Step(readInput(0x10, 0x1))

			Expect(frame.CEn).To(Equal(uint32(0b10)))
			Expect(frame.BEn).To(Equal(uint32(0b11)))
		})
	})
})

package sramctrl

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/sramsim/bus"
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
	"github.com/sarchlab/sramsim/sramchip"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		topPort  *MockPort
		ctrlPort *MockPort
		srcPort  *MockPort
		c        *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		topPort = NewMockPort(mockCtrl)
		ctrlPort = NewMockPort(mockCtrl)
		srcPort = NewMockPort(mockCtrl)

		cfg := sram.Config{
			AddrWidth:       18,
			DataWidth:       32,
			LaneWidth:       16,
			ByteEnable:      true,
			ReadActive:      2,
			ReadTurnaround:  1,
			WriteActive:     2,
			WriteTurnaround: 1,
		}

		ctrl, err := sram.NewController(cfg)
		Expect(err).ToNot(HaveOccurred())

		c = &Comp{
			ctrl: ctrl,
			chip: sramchip.New(cfg, nil),
		}
		c.TickingComponent = sim.NewTickingComponent(
			"Ctrl", sim.NewSerialEngine(), 100*sim.MHz, c)
		c.outDelay = sram.NewDelayLine(0, cfg.IdleFrame())
		c.inDelay = sram.NewDelayLine(0, uint64(0))
		c.topPort = topPort
		c.ctrlPort = ctrlPort
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should acknowledge a write on the acceptance tick", func() {
		req := bus.WriteReqBuilder{}.
			WithSrc(srcPort).
			WithDst(topPort).
			WithAddress(0x10).
			WithData(0xbeef).
			WithByteSelect(0x3).
			Build()

		ctrlPort.EXPECT().RetrieveIncoming().Return(nil).AnyTimes()
		topPort.EXPECT().PeekIncoming().Return(req)
		topPort.EXPECT().RetrieveIncoming().Return(req)

		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateWriteActive))
		Expect(c.respondQueue).To(HaveLen(1))

		rsp := c.respondQueue[0].(*bus.WriteDoneRsp)
		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Dst).To(BeIdenticalTo(sim.Port(srcPort)))

		topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()
		topPort.EXPECT().Send(rsp).Return(nil)

		Expect(c.Tick()).To(BeTrue())
		Expect(c.respondQueue).To(BeEmpty())
	})

	It("should complete a read with the stored data", func() {
		storage := c.chip.Storage()
		Expect(storage.WriteByte(0x40, 0xef)).To(Succeed())
		Expect(storage.WriteByte(0x41, 0xbe)).To(Succeed())

		req := bus.ReadReqBuilder{}.
			WithSrc(srcPort).
			WithDst(topPort).
			WithAddress(0x10).
			WithByteSelect(0x3).
			Build()

		ctrlPort.EXPECT().RetrieveIncoming().Return(nil).AnyTimes()
		topPort.EXPECT().PeekIncoming().Return(req)
		topPort.EXPECT().RetrieveIncoming().Return(req)
		topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()

		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateRead))

		Expect(c.Tick()).To(BeTrue())
		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateIdle))
		Expect(c.respondQueue).To(HaveLen(1))

		rsp := c.respondQueue[0].(*bus.DataReadyRsp)
		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Data).To(Equal(uint64(0xbeef)))

		topPort.EXPECT().Send(rsp).Return(nil)
		Expect(c.Tick()).To(BeTrue())
	})

	It("should complete a zero-lane read immediately", func() {
		req := bus.ReadReqBuilder{}.
			WithSrc(srcPort).
			WithDst(topPort).
			WithAddress(0x10).
			WithByteSelect(0x0).
			Build()

		ctrlPort.EXPECT().RetrieveIncoming().Return(nil).AnyTimes()
		topPort.EXPECT().PeekIncoming().Return(req)
		topPort.EXPECT().RetrieveIncoming().Return(req)

		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateIdle))
		Expect(c.respondQueue).To(HaveLen(1))

		rsp := c.respondQueue[0].(*bus.DataReadyRsp)
		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Data).To(BeZero())
	})

	It("should reset on a control message", func() {
		req := bus.ReadReqBuilder{}.
			WithSrc(srcPort).
			WithDst(topPort).
			WithAddress(0x10).
			WithByteSelect(0xf).
			Build()
		resetMsg := bus.ControlMsgBuilder{}.
			WithSrc(srcPort).
			WithDst(ctrlPort).
			ToReset().
			Build()

		ctrlPort.EXPECT().RetrieveIncoming().Return(nil)
		topPort.EXPECT().PeekIncoming().Return(req)
		topPort.EXPECT().RetrieveIncoming().Return(req)

		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateRead))

		ctrlPort.EXPECT().RetrieveIncoming().Return(resetMsg)
		topPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()

		Expect(c.Tick()).To(BeTrue())
		Expect(c.ctrl.State()).To(Equal(sram.StateIdle))
		Expect(c.currentRead).To(BeNil())
		Expect(c.respondQueue).To(BeEmpty())
	})

	It("should make no progress while idle", func() {
		ctrlPort.EXPECT().RetrieveIncoming().Return(nil)
		topPort.EXPECT().PeekIncoming().Return(nil)

		Expect(c.Tick()).To(BeFalse())
	})
})

// Package sramctrl wraps the pure sram timing core into a message-driven
// simulation component. The component translates bus request messages into
// the per-tick signal inputs of the controller, routes the chip signal frames
// through the boundary delay stages to a behavioral chip model, and collects
// acknowledges back into response messages.
package sramctrl

import (
	"log"
	"math/bits"
	"reflect"

	"github.com/sarchlab/sramsim/bus"
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
	"github.com/sarchlab/sramsim/sramchip"
)

// HookPosFrame marks the chip signal frame computed on a tick.
var HookPosFrame = &sim.HookPos{Name: "SRAMCtrl Frame"}

// FrameRecord is the hook payload describing one tick of controller activity.
type FrameRecord struct {
	Cycle   uint64
	State   string
	Address uint64
	Data    uint64
	Drive   bool
	CEn     uint32
	BEn     uint32
	OEn     bool
	WEn     bool
	Stall   bool
	Ack     bool
}

// Comp is the bridge controller component. It owns the chip bus exclusively;
// requesters interact with it only through messages on the top port.
type Comp struct {
	*sim.TickingComponent

	topPort  sim.Port
	ctrlPort sim.Port

	ctrl *sram.Controller
	chip *sramchip.Chip

	outDelay *sram.DelayLine[sram.ChipFrame]
	inDelay  *sram.DelayLine[uint64]

	dataIn       uint64
	resetPending bool
	drainTicks   int

	currentRead *bus.ReadReq
	lanesLeft   int

	respondQueue []sim.Msg
}

// TopPort returns the bus-side port of the component.
func (c *Comp) TopPort() sim.Port {
	return c.topPort
}

// CtrlPort returns the control port of the component.
func (c *Comp) CtrlPort() sim.Port {
	return c.ctrlPort
}

// Controller returns the timing core of the component.
func (c *Comp) Controller() *sram.Controller {
	return c.ctrl
}

// Chip returns the chip model behind the controller.
func (c *Comp) Chip() *sramchip.Chip {
	return c.chip
}

// Tick updates the component state by one cycle.
func (c *Comp) Tick() bool {
	madeProgress := c.sendRsp()
	madeProgress = c.processCtrl() || madeProgress
	madeProgress = c.step() || madeProgress

	return madeProgress
}

func (c *Comp) sendRsp() bool {
	if len(c.respondQueue) == 0 {
		return false
	}

	rsp := c.respondQueue[0]
	if err := c.topPort.Send(rsp); err != nil {
		return false
	}

	c.respondQueue = c.respondQueue[1:]

	return true
}

func (c *Comp) processCtrl() bool {
	msg := c.ctrlPort.RetrieveIncoming()
	if msg == nil {
		return false
	}

	ctrlMsg, ok := msg.(*bus.ControlMsg)
	if !ok {
		log.Panicf("cannot handle message of type %s", reflect.TypeOf(msg))
	}

	if ctrlMsg.Reset {
		c.resetPending = true
	}

	return true
}

func (c *Comp) step() bool {
	reset := c.resetPending
	c.resetPending = false

	busIn := sram.BusInput{Reset: reset, DataIn: c.dataIn}
	presented := c.presentRequest(&busIn)

	if !reset && presented == nil &&
		c.ctrl.State() == sram.StateIdle && c.drainTicks == 0 {
		return false
	}

	if reset {
		// In-flight state is discarded on reset; data loss is acceptable by
		// contract.
		c.currentRead = nil
		c.lanesLeft = 0
		c.dataIn = 0
	}

	wasState := c.ctrl.State()
	out, frame := c.ctrl.Step(busIn)

	// The frame reaches the chip after T_CO; the read data comes back after
	// T_IDELAY.
	delayed := c.outDelay.Push(frame)
	chipData := c.chip.Access(delayed)
	c.dataIn = c.inDelay.Push(chipData)

	if c.ctrl.State() != sram.StateIdle {
		c.drainTicks = c.outDelay.Latency() + c.inDelay.Latency()
	} else if c.drainTicks > 0 {
		c.drainTicks--
	}

	c.invokeFrameHook(frame, out)

	if !reset {
		c.bookkeep(wasState, presented, out)
	}

	return true
}

// presentRequest holds the head request of the top port on the bus-side
// input lines. The request stays queued until the controller samples it; the
// controller only does so when it is legal.
func (c *Comp) presentRequest(busIn *sram.BusInput) sim.Msg {
	head := c.topPort.PeekIncoming()
	if head == nil {
		return nil
	}

	switch req := head.(type) {
	case *bus.ReadReq:
		busIn.CycleValid = true
		busIn.StrobeValid = true
		busIn.Address = req.Address
		busIn.ByteSelect = req.ByteSelect
	case *bus.WriteReq:
		busIn.CycleValid = true
		busIn.StrobeValid = true
		busIn.WriteEnable = true
		busIn.Address = req.Address
		busIn.WriteData = req.Data
		busIn.ByteSelect = req.ByteSelect
	default:
		log.Panicf("cannot handle request of type %s", reflect.TypeOf(head))
	}

	return head
}

func (c *Comp) bookkeep(
	wasState sram.State,
	presented sim.Msg,
	out sram.BusOutput,
) {
	if wasState == sram.StateIdle && c.currentRead == nil && presented != nil {
		c.bookkeepAcceptance(presented, out)
		return
	}

	c.bookkeepReadProgress(presented, out)
}

func (c *Comp) bookkeepAcceptance(presented sim.Msg, out sram.BusOutput) {
	switch req := presented.(type) {
	case *bus.WriteReq:
		// Pipelined acknowledge: the write is done as far as the bus side is
		// concerned, even though the chip phases are still running.
		c.topPort.RetrieveIncoming()
		c.queueRsp(bus.WriteDoneRspBuilder{}.
			WithSrc(c.topPort).
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build())
	case *bus.ReadReq:
		c.topPort.RetrieveIncoming()
		c.currentRead = req
		c.lanesLeft = c.laneCount(req.ByteSelect)

		if c.lanesLeft == 0 && out.Ack {
			// Zero-lane no-op read completes on the acceptance tick.
			c.respondRead(out.ReadData)
		}
	}
}

func (c *Comp) bookkeepReadProgress(presented sim.Msg, out sram.BusOutput) {
	if c.currentRead == nil || !out.Ack {
		return
	}

	c.lanesLeft--
	if c.lanesLeft > 0 {
		return
	}

	c.respondRead(out.ReadData)

	// The controller staying in Read with stall up after the final lane
	// means it chained the presented follow-up read.
	if out.Stall && c.ctrl.State() == sram.StateRead {
		if req, ok := presented.(*bus.ReadReq); ok {
			c.topPort.RetrieveIncoming()
			c.currentRead = req
			c.lanesLeft = c.laneCount(req.ByteSelect)
		}
	}
}

func (c *Comp) respondRead(data uint64) {
	c.queueRsp(bus.DataReadyRspBuilder{}.
		WithSrc(c.topPort).
		WithDst(c.currentRead.Src).
		WithRspTo(c.currentRead.ID).
		WithData(data).
		Build())
	c.currentRead = nil
}

func (c *Comp) queueRsp(rsp sim.Msg) {
	c.respondQueue = append(c.respondQueue, rsp)
}

func (c *Comp) laneCount(sel sram.Mask) int {
	occ := c.ctrl.Decomposer().Occupancy(sel)
	return bits.OnesCount64(uint64(occ))
}

func (c *Comp) invokeFrameHook(frame sram.ChipFrame, out sram.BusOutput) {
	if c.NumHooks() == 0 {
		return
	}

	rec := FrameRecord{
		Cycle:   c.Freq.Cycle(c.CurrentTime()),
		State:   c.ctrl.State().String(),
		Address: frame.Address,
		Data:    frame.Data,
		Drive:   frame.DriveData,
		CEn:     frame.CEn,
		BEn:     frame.BEn,
		OEn:     frame.OEn,
		WEn:     frame.WEn,
		Stall:   out.Stall,
		Ack:     out.Ack,
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosFrame,
		Item:   rec,
	})
}

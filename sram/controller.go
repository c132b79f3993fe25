package sram

// State enumerates the sequencer states.
type State int

// The sequencer is a perpetual server: it has an initial state, StateIdle,
// but no terminal state.
const (
	StateIdle State = iota
	StateRead
	StateReadTurnaround
	StateWriteActive
	StateWriteTurnaround
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRead:
		return "Read"
	case StateReadTurnaround:
		return "ReadTurnaround"
	case StateWriteActive:
		return "WriteActive"
	case StateWriteTurnaround:
		return "WriteTurnaround"
	default:
		return "Unknown"
	}
}

// request is a latched transaction. It is immutable once accepted and owned
// exclusively by the controller until the transaction completes.
type request struct {
	address uint64
	data    uint64
	sel     Mask
	isWrite bool
}

// A Controller is the timing sequencer of the bridge. It is a synchronous
// automaton: Step must be called exactly once per clock tick, and at most one
// transaction is in flight at a time. The Stall output is the sole admission
// control; the bus side must not present a request while it is asserted.
type Controller struct {
	cfg Config
	dec Decomposer

	state    State
	counter  int
	req      request
	residual LaneMask
	lane     int
	readBuf  uint64
	frame    ChipFrame
}

// NewController creates a Controller. The configuration is validated once
// here; a validly configured controller cannot fail at runtime.
func NewController(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg: cfg,
		dec: NewDecomposer(cfg),
	}
	c.reset()

	return c, nil
}

// Config returns the controller configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns the current sequencer state.
func (c *Controller) State() State {
	return c.state
}

// Frame returns the chip signal frame currently driven by the sequencer,
// before the output delay stage.
func (c *Controller) Frame() ChipFrame {
	return c.frame
}

// Decomposer returns the transfer decomposer of the controller.
func (c *Controller) Decomposer() Decomposer {
	return c.dec
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.counter = 0
	c.req = request{}
	c.residual = 0
	c.lane = 0
	c.readBuf = 0
	c.frame = c.cfg.IdleFrame()
}

// Step advances the automaton by one clock tick. It returns the bus-side
// handshake lines and the chip signal frame computed this tick. The frame
// still has to pass the T_CO delay stage before it is observable at the
// physical boundary.
func (c *Controller) Step(in BusInput) (BusOutput, ChipFrame) {
	if in.Reset {
		c.reset()
		return BusOutput{}, c.frame
	}

	var out BusOutput

	switch c.state {
	case StateIdle:
		out = c.stepIdle(in)
	case StateRead:
		out = c.stepRead(in)
	case StateReadTurnaround:
		out = c.stepReadTurnaround()
	case StateWriteActive:
		out = c.stepWriteActive()
	case StateWriteTurnaround:
		out = c.stepWriteTurnaround()
	}

	return out, c.frame
}

func (c *Controller) stepIdle(in BusInput) BusOutput {
	if !(in.CycleValid && in.StrobeValid) {
		c.frame = c.cfg.IdleFrame()
		return BusOutput{}
	}

	return c.accept(in)
}

func (c *Controller) accept(in BusInput) BusOutput {
	c.req = request{
		address: in.Address,
		data:    in.WriteData & c.cfg.wordMask(),
		sel:     in.ByteSelect,
		isWrite: in.WriteEnable,
	}
	c.readBuf = 0

	occ := c.dec.Occupancy(in.ByteSelect)
	if occ == 0 {
		// Zero-lane no-op: acknowledge on the acceptance tick without ever
		// touching the chip bus.
		c.frame = c.cfg.IdleFrame()
		return BusOutput{Ack: true}
	}

	c.lane = c.dec.SelectLane(occ)
	c.residual = c.dec.NextMask(occ)

	if c.req.isWrite {
		c.driveWriteLane()
		c.counter = c.cfg.WriteActive - 1
		c.state = StateWriteActive

		// The acknowledge is pipelined: the bus side is told the write is
		// accepted before the physical write completes.
		return BusOutput{Stall: true, Ack: true}
	}

	c.driveReadLane()
	c.counter = c.cfg.ReadActive - 1
	c.state = StateRead

	return BusOutput{Stall: true}
}

func (c *Controller) stepRead(in BusInput) BusOutput {
	if c.counter > 0 {
		c.counter--
		return BusOutput{Stall: true}
	}

	// The lane access expires this tick; capture the sampled chip data into
	// the lane's slot of the response buffer.
	c.readBuf = c.mergeLane(c.readBuf, in.DataIn, c.lane)

	if c.residual != 0 {
		c.lane = c.dec.SelectLane(c.residual)
		c.residual = c.dec.NextMask(c.residual)
		c.driveReadLane()
		c.counter = c.cfg.ReadActive - 1

		return BusOutput{Stall: true, Ack: true, ReadData: c.readBuf}
	}

	data := c.readBuf

	if c.canChainRead(in) {
		occ := c.dec.Occupancy(in.ByteSelect)
		c.req = request{address: in.Address, sel: in.ByteSelect}
		c.readBuf = 0
		c.lane = c.dec.SelectLane(occ)
		c.residual = c.dec.NextMask(occ)
		c.driveReadLane()
		c.counter = c.cfg.ReadActive - 1

		// Chained read: the next transaction starts without leaving the
		// Read state and without lowering stall, saving one idle cycle.
		return BusOutput{Stall: true, Ack: true, ReadData: data}
	}

	c.frame = c.cfg.IdleFrame()
	if c.cfg.ReadTurnaround == 1 {
		c.state = StateIdle
	} else {
		c.counter = c.cfg.ReadTurnaround - 2
		c.state = StateReadTurnaround
	}

	return BusOutput{Ack: true, ReadData: data}
}

// canChainRead tells whether a follow-up read request is present on the very
// tick the current read completes.
func (c *Controller) canChainRead(in BusInput) bool {
	if !c.cfg.FastRead {
		return false
	}

	if !(in.CycleValid && in.StrobeValid) || in.WriteEnable {
		return false
	}

	return c.dec.Occupancy(in.ByteSelect) != 0
}

func (c *Controller) stepReadTurnaround() BusOutput {
	if c.counter > 0 {
		c.counter--
		return BusOutput{}
	}

	c.state = StateIdle
	return BusOutput{}
}

func (c *Controller) stepWriteActive() BusOutput {
	if c.counter > 0 {
		c.counter--
		return BusOutput{Stall: true}
	}

	// The active phase expires: release the data bus and the strobes. The
	// address may linger through the turnaround.
	addr := c.frame.Address
	c.frame = c.cfg.IdleFrame()
	c.frame.Address = addr

	if c.cfg.WriteTurnaround == 1 && c.residual == 0 {
		c.state = StateIdle
		return BusOutput{}
	}

	c.counter = c.cfg.WriteTurnaround - 1
	c.state = StateWriteTurnaround

	return BusOutput{Stall: true}
}

func (c *Controller) stepWriteTurnaround() BusOutput {
	if c.counter > 0 {
		c.counter--
		return BusOutput{Stall: true}
	}

	if c.residual == 0 {
		c.frame = c.cfg.IdleFrame()
		c.state = StateIdle
		return BusOutput{}
	}

	c.lane = c.dec.SelectLane(c.residual)
	c.residual = c.dec.NextMask(c.residual)
	c.driveWriteLane()
	c.counter = c.cfg.WriteActive - 1
	c.state = StateWriteActive

	return BusOutput{Stall: true}
}

func (c *Controller) driveWriteLane() {
	c.frame = ChipFrame{
		Address:   c.dec.LaneAddress(c.req.address, c.lane),
		Data:      c.dec.LaneData(c.req.data, c.lane),
		DriveData: true,
		CEn:       c.dec.LaneChipEnable(c.req.sel, c.lane),
		BEn:       c.dec.LaneByteEnable(c.req.sel, c.lane),
		OEn:       true,
		WEn:       false,
	}
}

func (c *Controller) driveReadLane() {
	c.frame = ChipFrame{
		Address: c.dec.LaneAddress(c.req.address, c.lane),
		CEn:     c.dec.LaneChipEnable(c.req.sel, c.lane),
		BEn:     c.dec.LaneByteEnable(c.req.sel, c.lane),
		OEn:     false,
		WEn:     true,
	}
}

func (c *Controller) mergeLane(buf, dataIn uint64, lane int) uint64 {
	shift := uint(lane * c.cfg.LaneWidth)
	laneMask := c.cfg.laneDataMask() << shift

	return buf&^laneMask | dataIn<<shift&laneMask
}

// Package traffic provides a random traffic generator that exercises a
// bridge controller component and checks every read response against a
// shadow model of the memory content.
package traffic

import (
	"log"
	"math/rand"
	"reflect"

	"github.com/sarchlab/sramsim/bus"
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
)

// Comp issues a configured number of random read and write transactions to
// the controller and validates the data that comes back. A data mismatch is
// a simulation bug, so it fails loudly.
type Comp struct {
	*sim.TickingComponent

	port    sim.Port
	ctrlDst sim.Port

	cfg          sram.Config
	rand         *rand.Rand
	numTransfers int
	maxAddress   uint64

	issued    int
	completed int
	reads     int
	writes    int

	shadow   map[uint64]uint64
	expected map[string]uint64
}

// Port returns the request port of the generator.
func (c *Comp) Port() sim.Port {
	return c.port
}

// SetControllerPort sets the destination port that requests are sent to.
func (c *Comp) SetControllerPort(dst sim.Port) {
	c.ctrlDst = dst
}

// Done reports whether all the issued transactions have completed.
func (c *Comp) Done() bool {
	return c.completed == c.numTransfers
}

// TransferCounts returns the number of completed reads and writes.
func (c *Comp) TransferCounts() (reads, writes int) {
	return c.reads, c.writes
}

// Tick updates the generator state by one cycle.
func (c *Comp) Tick() bool {
	madeProgress := c.processRsps()
	madeProgress = c.issue() || madeProgress

	return madeProgress
}

func (c *Comp) issue() bool {
	if c.issued >= c.numTransfers {
		return false
	}

	if !c.port.CanSend() {
		return false
	}

	if c.rand.Intn(2) == 0 {
		c.issueWrite()
	} else {
		c.issueRead()
	}
	c.issued++

	return true
}

func (c *Comp) issueWrite() {
	addr := c.randAddress()
	data := c.rand.Uint64() & c.wordMask()
	sel := c.randSelect()

	req := bus.WriteReqBuilder{}.
		WithSrc(c.port).
		WithDst(c.ctrlDst).
		WithAddress(addr).
		WithData(data).
		WithByteSelect(sel).
		Build()

	if err := c.port.Send(req); err != nil {
		log.Panic("send must not fail after CanSend")
	}

	lanes := expand(sel, c.cfg.BytesPerWord())
	c.shadow[addr] = c.shadow[addr]&^lanes | data&lanes
}

func (c *Comp) issueRead() {
	addr := c.randAddress()
	sel := c.randSelect()

	req := bus.ReadReqBuilder{}.
		WithSrc(c.port).
		WithDst(c.ctrlDst).
		WithAddress(addr).
		WithByteSelect(sel).
		Build()

	if err := c.port.Send(req); err != nil {
		log.Panic("send must not fail after CanSend")
	}

	// Unselected byte granules come back as zero: the chip never drives
	// them and the controller captures the whole lane.
	c.expected[req.ID] = c.shadow[addr] & expand(sel, c.cfg.BytesPerWord())
}

func (c *Comp) processRsps() bool {
	msg := c.port.RetrieveIncoming()
	if msg == nil {
		return false
	}

	switch rsp := msg.(type) {
	case *bus.WriteDoneRsp:
		c.writes++
		c.completed++
	case *bus.DataReadyRsp:
		c.checkReadData(rsp)
		c.reads++
		c.completed++
	default:
		log.Panicf("cannot handle response of type %s", reflect.TypeOf(msg))
	}

	return true
}

func (c *Comp) checkReadData(rsp *bus.DataReadyRsp) {
	want, found := c.expected[rsp.RespondTo]
	if !found {
		log.Panicf("response %s does not match any request", rsp.RespondTo)
	}
	delete(c.expected, rsp.RespondTo)

	if rsp.Data != want {
		log.Panicf("read data mismatch: got %#x, want %#x", rsp.Data, want)
	}
}

func (c *Comp) randAddress() uint64 {
	return uint64(c.rand.Int63n(int64(c.maxAddress)))
}

// randSelect draws a non-empty byte-select mask. Empty masks are legal
// no-ops, but they do not move data and are tested separately.
func (c *Comp) randSelect() sram.Mask {
	full := int64(1)<<uint(c.cfg.BytesPerWord()) - 1

	sel := sram.Mask(0)
	for sel == 0 {
		sel = sram.Mask(c.rand.Int63n(full + 1))
	}

	return sel
}

func (c *Comp) wordMask() uint64 {
	if c.cfg.DataWidth >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(c.cfg.DataWidth) - 1
}

// expand widens a byte-select mask into a data mask with one full byte per
// selected granule.
func expand(sel sram.Mask, bytesPerWord int) uint64 {
	var m uint64
	for i := 0; i < bytesPerWord; i++ {
		if sel>>uint(i)&1 == 1 {
			m |= 0xff << uint(8*i)
		}
	}

	return m
}

// Builder can build traffic generators.
type Builder struct {
	engine       sim.Engine
	freq         sim.Freq
	cfg          sram.Config
	numTransfers int
	maxAddress   uint64
	seed         int64
}

// MakeBuilder returns a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:         100 * sim.MHz,
		numTransfers: 1000,
		maxAddress:   256,
		seed:         1,
	}
}

// WithEngine sets the engine that drives the generator.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency of the generator.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets the controller configuration the traffic is shaped for.
func (b Builder) WithConfig(cfg sram.Config) Builder {
	b.cfg = cfg
	return b
}

// WithNumTransfers sets the number of transactions to issue.
func (b Builder) WithNumTransfers(n int) Builder {
	b.numTransfers = n
	return b
}

// WithMaxAddress limits the address range. A small range provokes
// read-after-write collisions, which is the interesting case.
func (b Builder) WithMaxAddress(addr uint64) Builder {
	b.maxAddress = addr
	return b
}

// WithSeed sets the random seed, keeping runs reproducible.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// Build builds a new traffic generator.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		cfg:          b.cfg,
		rand:         rand.New(rand.NewSource(b.seed)),
		numTransfers: b.numTransfers,
		maxAddress:   b.maxAddress,
		shadow:       make(map[uint64]uint64),
		expected:     make(map[string]uint64),
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.port = sim.NewPort(c, 4, 4, name+".Port")
	c.AddPort("Mem", c.port)

	return c
}

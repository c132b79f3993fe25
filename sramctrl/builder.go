package sramctrl

import (
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
	"github.com/sarchlab/sramsim/sramchip"
)

// Builder can build bridge controller components.
type Builder struct {
	engine     sim.Engine
	freq       sim.Freq
	cfg        sram.Config
	storage    *sramchip.Storage
	topBufSize int
}

// MakeBuilder returns a Builder with default parameters: a 32-bit bus in
// front of two 16-bit byte-enable-capable chips.
func MakeBuilder() Builder {
	return Builder{
		freq:       100 * sim.MHz,
		topBufSize: 16,
		cfg: sram.Config{
			AddrWidth:       18,
			DataWidth:       32,
			LaneWidth:       16,
			ByteEnable:      true,
			ReadActive:      2,
			ReadTurnaround:  1,
			WriteActive:     2,
			WriteTurnaround: 1,
		},
	}
}

// WithEngine sets the engine that drives the component.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the clock frequency of the component.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithConfig sets the timing configuration of the controller.
func (b Builder) WithConfig(cfg sram.Config) Builder {
	b.cfg = cfg
	return b
}

// WithStorage sets the backing storage of the chip model. When unset, a
// storage covering the full address range is allocated.
func (b Builder) WithStorage(storage *sramchip.Storage) Builder {
	b.storage = storage
	return b
}

// WithTopBufSize sets the size of the top port buffers.
func (b Builder) WithTopBufSize(topBufSize int) Builder {
	b.topBufSize = topBufSize
	return b
}

// Build builds a new Comp. It panics when the configuration is invalid; all
// error conditions are construction-time.
func (b Builder) Build(name string) *Comp {
	ctrl, err := sram.NewController(b.cfg)
	if err != nil {
		panic(err)
	}

	c := &Comp{
		ctrl: ctrl,
		chip: sramchip.New(b.cfg, b.storage),
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.outDelay = sram.NewDelayLine(b.cfg.OutputDelay, b.cfg.IdleFrame())
	c.inDelay = sram.NewDelayLine(b.cfg.InputDelay, uint64(0))

	c.topPort = sim.NewPort(c, b.topBufSize, b.topBufSize, name+".TopPort")
	c.AddPort("Top", c.topPort)

	c.ctrlPort = sim.NewPort(c, 1, 1, name+".CtrlPort")
	c.AddPort("Ctrl", c.ctrlPort)

	return c
}

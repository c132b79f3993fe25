// Package sram provides a cycle-accurate timing model of a bridge controller
// that adapts a wide, pipelined, split-transaction bus to one or more narrow
// asynchronous SRAM chips.
//
// The model is a pure automaton. It is advanced exactly once per clock tick
// through Controller.Step and depends on nothing but its inputs, which makes
// the produced control-signal sequence exactly reproducible.
package sram

import (
	"fmt"
	"math/bits"
)

// Config carries the construction-time parameters of the controller. A Config
// is immutable after validation; the controller never reconfigures at
// runtime.
type Config struct {
	// AddrWidth is the width of the bus-side word address in bits.
	AddrWidth int

	// DataWidth is the width of the bus data word in bits. It must be a
	// multiple of LaneWidth and at most 64.
	DataWidth int

	// LaneWidth is the width of one chip access in bits. One lane is the
	// minimal independently addressable chip data unit.
	LaneWidth int

	// ByteEnable tells whether the chips have independent byte-enable pins.
	// Without byte-enable pins, byte selection folds into one chip-enable
	// line per byte.
	ByteEnable bool

	// Phase durations in clock ticks. All must be at least 1.
	ReadActive      int
	ReadTurnaround  int
	WriteActive     int
	WriteTurnaround int

	// FastRead enables chaining of back-to-back read transactions without
	// returning to idle. Requires ReadActive > 1, as the controller needs a
	// cycle to check for a following request.
	FastRead bool

	// OutputDelay is the number of ticks the chip-side signals take to reach
	// the physical boundary (T_CO). InputDelay is the number of ticks the
	// inbound read data takes to reach the controller (T_IDELAY). Both may
	// be zero for a pure protocol model.
	OutputDelay int
	InputDelay  int
}

// Lanes returns the number of narrow accesses a full-width word decomposes
// into.
func (c Config) Lanes() int {
	return c.DataWidth / c.LaneWidth
}

// BytesPerLane returns the number of byte granules in one lane.
func (c Config) BytesPerLane() int {
	return c.LaneWidth / 8
}

// BytesPerWord returns the number of byte granules in one bus word, which is
// also the width of the bus byte-select mask.
func (c Config) BytesPerWord() int {
	return c.DataWidth / 8
}

// laneBits returns the number of low address bits that encode the lane index.
func (c Config) laneBits() int {
	return bits.Len(uint(c.Lanes() - 1))
}

// chipEnableWidth returns the number of chip-enable lines driven per access.
func (c Config) chipEnableWidth() int {
	if c.ByteEnable {
		return 1
	}
	return c.BytesPerLane()
}

func (c Config) laneDataMask() uint64 {
	if c.LaneWidth >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(c.LaneWidth) - 1
}

func (c Config) wordMask() uint64 {
	if c.DataWidth >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(c.DataWidth) - 1
}

// IdleFrame returns the chip signal frame with every line de-asserted. All
// control lines are active low, so the idle frame reads all ones.
func (c Config) IdleFrame() ChipFrame {
	return ChipFrame{
		CEn: allOnes(c.chipEnableWidth()),
		BEn: allOnes(c.BytesPerLane()),
		OEn: true,
		WEn: true,
	}
}

// Validate checks the configuration. All error conditions are
// construction-time; a validated controller cannot fail at runtime.
func (c Config) Validate() error {
	if c.DataWidth <= 0 || c.DataWidth > 64 || c.DataWidth%8 != 0 {
		return fmt.Errorf(
			"data width must be a positive multiple of 8 up to 64, got %d",
			c.DataWidth)
	}

	if c.LaneWidth <= 0 || c.LaneWidth%8 != 0 {
		return fmt.Errorf(
			"lane width must be a positive multiple of 8, got %d",
			c.LaneWidth)
	}

	if c.DataWidth%c.LaneWidth != 0 {
		return fmt.Errorf(
			"data width %d is not a multiple of lane width %d",
			c.DataWidth, c.LaneWidth)
	}

	if lanes := c.Lanes(); lanes&(lanes-1) != 0 {
		return fmt.Errorf(
			"lane count must be a power of two, got %d", lanes)
	}

	if c.AddrWidth <= 0 || c.AddrWidth+c.laneBits() > 64 {
		return fmt.Errorf("invalid address width %d", c.AddrWidth)
	}

	if err := c.validatePhases(); err != nil {
		return err
	}

	if c.FastRead && c.ReadActive == 1 {
		return fmt.Errorf(
			"fast-read chaining requires a read-active duration of " +
				"at least 2 cycles")
	}

	if c.OutputDelay < 0 || c.InputDelay < 0 {
		return fmt.Errorf("delay constants cannot be negative")
	}

	return nil
}

func (c Config) validatePhases() error {
	phases := []struct {
		name  string
		value int
	}{
		{"read-active", c.ReadActive},
		{"read-turnaround", c.ReadTurnaround},
		{"write-active", c.WriteActive},
		{"write-turnaround", c.WriteTurnaround},
	}

	for _, p := range phases {
		if p.value < 1 {
			return fmt.Errorf(
				"%s duration must be at least 1 cycle, got %d",
				p.name, p.value)
		}
	}

	return nil
}

func allOnes(width int) uint32 {
	return 1<<uint(width) - 1
}

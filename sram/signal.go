package sram

// Mask is the bus byte-select mask. Bit i marks the i-th byte granule of the
// wide word as participating in the transfer, counting from the
// least-significant byte.
type Mask uint64

// LaneMask marks lanes that still need to be serviced within the current
// transaction. Bit i corresponds to lane i.
type LaneMask uint64

// BusInput is the set of bus-side lines sampled by the controller on one
// clock tick.
type BusInput struct {
	// Reset forces the controller back to idle synchronously, discarding any
	// in-flight transaction.
	Reset bool

	// CycleValid and StrobeValid together qualify a request. The request
	// fields below are only sampled while both are set and the controller is
	// idle and not stalling.
	CycleValid  bool
	StrobeValid bool

	// WriteEnable selects the transfer direction. Address is the word-aligned
	// base address. WriteData carries the write payload.
	WriteEnable bool
	Address     uint64
	WriteData   uint64
	ByteSelect  Mask

	// DataIn is the chip-side read data as visible to the controller, after
	// the input delay stage.
	DataIn uint64
}

// BusOutput is the set of bus-side lines produced by the controller on one
// clock tick.
type BusOutput struct {
	// Stall asserted means the requester must not present a new transaction.
	Stall bool

	// Ack pulses once per accepted write transaction (at acceptance) and
	// once per completed lane of a read transaction. ReadData is valid on
	// the tick Ack pulses for a read.
	Ack      bool
	ReadData uint64
}

// ChipFrame is the image of the chip-side lines produced on one tick. All
// control lines are active low: a bit value of 1 means the line is
// de-asserted. Vector widths follow the configuration: CEn has one bit per
// chip-enable line, BEn one bit per byte granule of the lane.
type ChipFrame struct {
	Address uint64

	// Data is the driven value of the bidirectional data bus. It is only
	// meaningful while DriveData is set; otherwise the controller leaves the
	// bus in high impedance.
	Data      uint64
	DriveData bool

	CEn uint32
	BEn uint32
	OEn bool
	WEn bool
}

// FrameActive reports whether any chip-enable line of the frame is asserted
// under this configuration.
func (c Config) FrameActive(f ChipFrame) bool {
	return f.CEn != allOnes(c.chipEnableWidth())
}

// Package sramchip provides a behavioral model of a bank of asynchronous
// SRAM chips. The model consumes chip signal frames and produces read data
// combinationally; it has no clock of its own, which matches the
// asynchronous nature of the part.
package sramchip

import (
	"log"

	"github.com/sarchlab/sramsim/sram"
)

// A Chip models the bank of SRAM chips behind the bridge controller. The
// bank is as wide as one lane; byte granules within the lane are gated by
// the chip-enable or byte-enable lines, depending on the configuration.
type Chip struct {
	cfg     sram.Config
	storage *Storage
}

// New creates a chip bank for the given controller configuration. When
// storage is nil a storage covering the full address range is allocated.
func New(cfg sram.Config, storage *Storage) *Chip {
	if storage == nil {
		words := uint64(1) << uint(cfg.AddrWidth)
		storage = NewStorage(words * uint64(cfg.BytesPerWord()))
	}

	return &Chip{
		cfg:     cfg,
		storage: storage,
	}
}

// Storage returns the backing storage of the chip bank.
func (c *Chip) Storage() *Storage {
	return c.storage
}

// Access applies one signal frame to the chip bank and returns the data the
// bank drives back. Writes commit while the write-enable line is asserted;
// re-committing the same value on consecutive ticks is harmless for an
// asynchronous part. The returned data is only meaningful while the
// output-enable line is asserted.
func (c *Chip) Access(f sram.ChipFrame) uint64 {
	if !c.cfg.FrameActive(f) {
		return 0
	}

	if !f.WEn {
		c.commitWrite(f)
		return 0
	}

	if !f.OEn {
		return c.readWord(f)
	}

	return 0
}

func (c *Chip) commitWrite(f sram.ChipFrame) {
	if !f.DriveData {
		return
	}

	base := f.Address * uint64(c.cfg.BytesPerLane())
	for j := 0; j < c.cfg.BytesPerLane(); j++ {
		if !c.byteEnabled(f, j) {
			continue
		}

		b := byte(f.Data >> uint(8*j))
		if err := c.storage.WriteByte(base+uint64(j), b); err != nil {
			log.Panic(err)
		}
	}
}

func (c *Chip) readWord(f sram.ChipFrame) uint64 {
	var word uint64

	base := f.Address * uint64(c.cfg.BytesPerLane())
	for j := 0; j < c.cfg.BytesPerLane(); j++ {
		if !c.byteEnabled(f, j) {
			continue
		}

		b, err := c.storage.ReadByte(base + uint64(j))
		if err != nil {
			log.Panic(err)
		}
		word |= uint64(b) << uint(8*j)
	}

	return word
}

// byteEnabled tells whether byte granule j of the lane participates in the
// access. With byte-enable-capable chips the byte-enable lines gate the
// granules; otherwise each granule has its own chip-enable line.
func (c *Chip) byteEnabled(f sram.ChipFrame, j int) bool {
	if c.cfg.ByteEnable {
		return f.CEn&1 == 0 && f.BEn>>uint(j)&1 == 0
	}

	return f.CEn>>uint(j)&1 == 0
}

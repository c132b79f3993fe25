package sram

import "math/bits"

// A Decomposer splits a wide bus transaction into narrow chip accesses. Given
// the byte-select mask of a transaction, it determines which lane to act on
// next, the chip-level address and enable pattern of that lane, and the
// residual mask after the lane is consumed.
//
// Lanes are always visited lowest-index-first, each exactly once, in strictly
// increasing order, until the mask is exhausted.
type Decomposer struct {
	cfg Config
}

// NewDecomposer creates a Decomposer for the given configuration. The
// configuration must already be validated.
func NewDecomposer(cfg Config) Decomposer {
	return Decomposer{cfg: cfg}
}

// Occupancy folds the byte-select mask into a lane mask. A lane is occupied
// if any of its byte granules is selected.
func (d Decomposer) Occupancy(sel Mask) LaneMask {
	var occ LaneMask
	bpl := uint(d.cfg.BytesPerLane())
	laneSel := Mask(allOnes(int(bpl)))

	for lane := 0; lane < d.cfg.Lanes(); lane++ {
		if sel&(laneSel<<(uint(lane)*bpl)) != 0 {
			occ |= 1 << uint(lane)
		}
	}

	return occ
}

// SelectLane returns the lowest-indexed lane whose bit is set in the mask.
// The result for an empty mask is 0; callers must never pass an empty mask.
func (d Decomposer) SelectLane(m LaneMask) int {
	if m == 0 {
		return 0
	}
	return bits.TrailingZeros64(uint64(m))
}

// NextMask clears the bit of the selected lane, leaving all other bits
// untouched.
func (d Decomposer) NextMask(m LaneMask) LaneMask {
	return m &^ (1 << uint(d.SelectLane(m)))
}

// LaneAddress computes the chip-facing address of a lane by concatenating
// the word base address with the lane index in the low bits.
func (d Decomposer) LaneAddress(base uint64, lane int) uint64 {
	return base<<uint(d.cfg.laneBits()) | uint64(lane)
}

// LaneData extracts the slice of the write payload that belongs to the lane.
func (d Decomposer) LaneData(data uint64, lane int) uint64 {
	return data >> uint(lane*d.cfg.LaneWidth) & d.cfg.laneDataMask()
}

// LaneByteEnable inverts the still-selected byte granules of the lane into an
// active-low byte-enable pattern. When the chips have no byte-enable pins the
// pattern stays all ones; selection folds into the chip-enable lines instead.
func (d Decomposer) LaneByteEnable(sel Mask, lane int) uint32 {
	if !d.cfg.ByteEnable {
		return allOnes(d.cfg.BytesPerLane())
	}

	return d.laneSelectLow(sel, lane)
}

// LaneChipEnable computes the active-low chip-enable vector for the lane.
// With byte-enable-capable chips a single chip-enable line is asserted; the
// byte granularity rides on the byte-enable pins. Without them, each byte
// granule has its own chip and its own enable line.
func (d Decomposer) LaneChipEnable(sel Mask, lane int) uint32 {
	if d.cfg.ByteEnable {
		return 0
	}

	return d.laneSelectLow(sel, lane)
}

func (d Decomposer) laneSelectLow(sel Mask, lane int) uint32 {
	bpl := d.cfg.BytesPerLane()
	laneBytes := uint32(sel>>uint(lane*bpl)) & allOnes(bpl)

	return allOnes(bpl) &^ laneBytes
}

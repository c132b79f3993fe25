package sram

// A DelayLine models a fixed signal-propagation latency as a ring buffer of
// the last N values. Pushing a value returns the value pushed N ticks
// earlier. A latency of zero is a passthrough.
//
// The controller itself is delay-free; delay lines wrap the chip-side
// boundary when exact physical timing matters (T_CO on the outbound frame,
// T_IDELAY on the inbound read data).
type DelayLine[T any] struct {
	buf  []T
	head int
}

// NewDelayLine creates a delay line of the given latency. Every slot starts
// holding the fill value, so the first latency pushes return fill.
func NewDelayLine[T any](latency int, fill T) *DelayLine[T] {
	if latency < 0 {
		panic("delay line latency cannot be negative")
	}

	d := &DelayLine[T]{}
	d.buf = make([]T, latency)
	for i := range d.buf {
		d.buf[i] = fill
	}

	return d
}

// Push inserts the value for this tick and returns the delayed value.
func (d *DelayLine[T]) Push(v T) T {
	if len(d.buf) == 0 {
		return v
	}

	old := d.buf[d.head]
	d.buf[d.head] = v
	d.head = (d.head + 1) % len(d.buf)

	return old
}

// Latency returns the length of the delay line in ticks.
func (d *DelayLine[T]) Latency() int {
	return len(d.buf)
}

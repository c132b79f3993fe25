package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	log   *[]string
	label string
}

func (h *recordingHandler) Handle(_ Event) error {
	*h.log = append(*h.log, h.label)
	return nil
}

var _ = Describe("SerialEngine", func() {
	var (
		engine *SerialEngine
		log    []string
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		log = nil
	})

	It("should run events in time order", func() {
		h := &recordingHandler{log: &log, label: "e"}

		engine.Schedule(MakeTickEvent(h, 2e-9))
		engine.Schedule(MakeTickEvent(h, 1e-9))
		engine.Schedule(MakeTickEvent(h, 3e-9))

		Expect(engine.Run()).To(Succeed())
		Expect(log).To(HaveLen(3))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(3e-9)))
	})

	It("should run same-time secondary events after primary events", func() {
		primary := &recordingHandler{log: &log, label: "primary"}
		secondary := &recordingHandler{log: &log, label: "secondary"}

		secondaryEvt := MakeTickEvent(secondary, 1e-9)
		secondaryEvt.secondary = true
		engine.Schedule(secondaryEvt)
		engine.Schedule(MakeTickEvent(primary, 1e-9))

		Expect(engine.Run()).To(Succeed())
		Expect(log).To(Equal([]string{"primary", "secondary"}))
	})

	It("should refuse to schedule an event in the past", func() {
		h := &recordingHandler{log: &log, label: "e"}
		engine.Schedule(MakeTickEvent(h, 1e-9))
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(MakeTickEvent(h, 0.5e-9))
		}).To(Panic())
	})
})

type countingTicker struct {
	remaining int
	ticks     int
}

func (t *countingTicker) Tick() bool {
	t.ticks++
	if t.remaining == 0 {
		return false
	}

	t.remaining--
	return true
}

var _ = Describe("TickingComponent", func() {
	It("should tick until no more progress is made", func() {
		engine := NewSerialEngine()
		ticker := &countingTicker{remaining: 3}
		comp := NewTickingComponent("Comp", engine, 1*GHz, ticker)

		comp.TickLater()
		Expect(engine.Run()).To(Succeed())

		Expect(ticker.ticks).To(Equal(4))
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(4e-9)))
	})
})

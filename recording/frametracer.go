package recording

import (
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sramctrl"
)

// A FrameTracer is a hook that records every chip signal frame the bridge
// controller computes into a data recorder table.
type FrameTracer struct {
	recorder DataRecorder
	table    string
}

// NewFrameTracer creates a FrameTracer writing to the given table.
func NewFrameTracer(recorder DataRecorder, tableName string) *FrameTracer {
	recorder.CreateTable(tableName, sramctrl.FrameRecord{})

	return &FrameTracer{
		recorder: recorder,
		table:    tableName,
	}
}

// Func records the frame carried by the hook context.
func (t *FrameTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sramctrl.HookPosFrame {
		return
	}

	t.recorder.InsertData(t.table, ctx.Item.(sramctrl.FrameRecord))
}

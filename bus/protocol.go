// Package bus defines the messages exchanged between bus-side requesters and
// the bridge controller component.
package bus

import (
	"github.com/sarchlab/sramsim/sim"
	"github.com/sarchlab/sramsim/sram"
)

var accessReqByteOverhead = 12
var accessRspByteOverhead = 4

// A ReadReq asks the controller to fetch one wide word.
type ReadReq struct {
	sim.MsgMeta

	Address    uint64
	ByteSelect sram.Mask
}

// Meta returns the message meta.
func (r *ReadReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// ReadReqBuilder can build read requests.
type ReadReqBuilder struct {
	src, dst   sim.Port
	address    uint64
	byteSelect sram.Mask
}

// WithSrc sets the source of the request to build.
func (b ReadReqBuilder) WithSrc(src sim.Port) ReadReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ReadReqBuilder) WithDst(dst sim.Port) ReadReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the word address of the request to build.
func (b ReadReqBuilder) WithAddress(address uint64) ReadReqBuilder {
	b.address = address
	return b
}

// WithByteSelect sets the byte-select mask of the request to build.
func (b ReadReqBuilder) WithByteSelect(sel sram.Mask) ReadReqBuilder {
	b.byteSelect = sel
	return b
}

// Build creates a new ReadReq.
func (b ReadReqBuilder) Build() *ReadReq {
	r := &ReadReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = accessReqByteOverhead
	r.Address = b.address
	r.ByteSelect = b.byteSelect

	return r
}

// A WriteReq asks the controller to store one wide word.
type WriteReq struct {
	sim.MsgMeta

	Address    uint64
	Data       uint64
	ByteSelect sram.Mask
}

// Meta returns the message meta.
func (r *WriteReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// WriteReqBuilder can build write requests.
type WriteReqBuilder struct {
	src, dst   sim.Port
	address    uint64
	data       uint64
	byteSelect sram.Mask
}

// WithSrc sets the source of the request to build.
func (b WriteReqBuilder) WithSrc(src sim.Port) WriteReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b WriteReqBuilder) WithDst(dst sim.Port) WriteReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the word address of the request to build.
func (b WriteReqBuilder) WithAddress(address uint64) WriteReqBuilder {
	b.address = address
	return b
}

// WithData sets the payload of the request to build.
func (b WriteReqBuilder) WithData(data uint64) WriteReqBuilder {
	b.data = data
	return b
}

// WithByteSelect sets the byte-select mask of the request to build.
func (b WriteReqBuilder) WithByteSelect(sel sram.Mask) WriteReqBuilder {
	b.byteSelect = sel
	return b
}

// Build creates a new WriteReq.
func (b WriteReqBuilder) Build() *WriteReq {
	r := &WriteReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8 + accessReqByteOverhead
	r.Address = b.address
	r.Data = b.data
	r.ByteSelect = b.byteSelect

	return r
}

// A DataReadyRsp carries the data of a completed read back to the requester.
type DataReadyRsp struct {
	sim.MsgMeta

	RespondTo string
	Data      uint64
}

// Meta returns the message meta.
func (r *DataReadyRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// GetRspTo returns the ID of the request the response is responding to.
func (r *DataReadyRsp) GetRspTo() string {
	return r.RespondTo
}

// DataReadyRspBuilder can build data-ready responses.
type DataReadyRspBuilder struct {
	src, dst sim.Port
	rspTo    string
	data     uint64
}

// WithSrc sets the source of the response to build.
func (b DataReadyRspBuilder) WithSrc(src sim.Port) DataReadyRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b DataReadyRspBuilder) WithDst(dst sim.Port) DataReadyRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request the response is responding to.
func (b DataReadyRspBuilder) WithRspTo(id string) DataReadyRspBuilder {
	b.rspTo = id
	return b
}

// WithData sets the data carried by the response to build.
func (b DataReadyRspBuilder) WithData(data uint64) DataReadyRspBuilder {
	b.data = data
	return b
}

// Build creates a new DataReadyRsp.
func (b DataReadyRspBuilder) Build() *DataReadyRsp {
	r := &DataReadyRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = 8 + accessRspByteOverhead
	r.RespondTo = b.rspTo
	r.Data = b.data

	return r
}

// A WriteDoneRsp marks a write request as accepted. The acknowledge is
// pipelined; the physical write may still be draining when it arrives.
type WriteDoneRsp struct {
	sim.MsgMeta

	RespondTo string
}

// Meta returns the message meta.
func (r *WriteDoneRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// GetRspTo returns the ID of the request the response is responding to.
func (r *WriteDoneRsp) GetRspTo() string {
	return r.RespondTo
}

// WriteDoneRspBuilder can build write-done responses.
type WriteDoneRspBuilder struct {
	src, dst sim.Port
	rspTo    string
}

// WithSrc sets the source of the response to build.
func (b WriteDoneRspBuilder) WithSrc(src sim.Port) WriteDoneRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b WriteDoneRspBuilder) WithDst(dst sim.Port) WriteDoneRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request the response is responding to.
func (b WriteDoneRspBuilder) WithRspTo(id string) WriteDoneRspBuilder {
	b.rspTo = id
	return b
}

// Build creates a new WriteDoneRsp.
func (b WriteDoneRspBuilder) Build() *WriteDoneRsp {
	r := &WriteDoneRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = accessRspByteOverhead
	r.RespondTo = b.rspTo

	return r
}

// A ControlMsg controls the controller component. Currently it only carries
// the reset pulse.
type ControlMsg struct {
	sim.MsgMeta

	Reset bool
}

// Meta returns the message meta.
func (m *ControlMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// ControlMsgBuilder can build control messages.
type ControlMsgBuilder struct {
	src, dst sim.Port
	reset    bool
}

// WithSrc sets the source of the message to build.
func (b ControlMsgBuilder) WithSrc(src sim.Port) ControlMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the message to build.
func (b ControlMsgBuilder) WithDst(dst sim.Port) ControlMsgBuilder {
	b.dst = dst
	return b
}

// ToReset sets the reset bit of the message to build.
func (b ControlMsgBuilder) ToReset() ControlMsgBuilder {
	b.reset = true
	return b
}

// Build creates a new ControlMsg.
func (b ControlMsgBuilder) Build() *ControlMsg {
	m := &ControlMsg{}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = b.src
	m.Dst = b.dst
	m.Reset = b.reset

	return m
}

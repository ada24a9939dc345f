// Package protocol implements the Robstride CAN protocol.
//
// Every message is a 29-bit extended frame. The identifier packs three
// fields, least significant byte first on the wire:
//
//	bits 24-28  communication type ("mux")
//	bits  8-23  a 16-bit data field (host id on requests; target id, fault
//	            and mode bits on responses)
//	bits  0-7   target actuator id on requests, host id on responses
package protocol

import "github.com/strideworks/robstride/pkg/canbus"

// DefaultHostID is the host node id actuators reply to.
const DefaultHostID uint16 = 0xFD

// Communication types.
const (
	MuxObtainID   uint8 = 0x00
	MuxControl    uint8 = 0x01
	MuxFeedback   uint8 = 0x02
	MuxEnable     uint8 = 0x03
	MuxZero       uint8 = 0x06
	MuxParamRead  uint8 = 0x11
	MuxParamWrite uint8 = 0x12
	MuxParamDump  uint8 = 0x13
	MuxSave       uint8 = 0x16
)

// Mux extracts the communication type from a frame.
func Mux(f canbus.Frame) uint8 {
	return uint8(f.ID>>24) & 0x1F
}

func requestID(mux uint8, data16 uint16, target uint8) uint32 {
	return uint32(mux&0x1F)<<24 | uint32(data16)<<8 | uint32(target)
}

func newRequest(mux uint8, host uint16, target uint8) canbus.Frame {
	return canbus.Frame{
		ID:       requestID(mux, host, target),
		Len:      canbus.MaxDataLen,
		Extended: true,
	}
}

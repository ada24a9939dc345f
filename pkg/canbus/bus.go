// Package canbus provides CAN transports for talking to Robstride actuators,
// over either a Linux SocketCAN interface or an SLCAN USB adapter.
package canbus

import (
	"context"
	"strings"
)

// MaxDataLen is the CAN 2.0 payload limit.
const MaxDataLen = 8

// Frame is a single CAN frame. The Robstride protocol uses 29-bit extended
// identifiers exclusively.
type Frame struct {
	ID       uint32 // 29-bit identifier, without the EFF flag
	Len      uint8
	Extended bool
	Data     [MaxDataLen]byte
}

// Bus is a point-to-point CAN connection.
type Bus interface {
	// Send writes a single frame to the bus.
	Send(ctx context.Context, f Frame) error
	// Recv blocks until a frame arrives, the context is done, or the
	// transport fails.
	Recv(ctx context.Context) (Frame, error)
	// Name returns the interface or port name the bus was opened on.
	Name() string
	Close() error
}

// Open connects to a CAN bus by name. Names of the form "canN" or "vcanN"
// are opened as SocketCAN interfaces; anything else is treated as the serial
// port of an SLCAN adapter.
func Open(name string) (Bus, error) {
	if strings.HasPrefix(name, "can") || strings.HasPrefix(name, "vcan") {
		return OpenSocketCAN(name)
	}
	return OpenSLCAN(name, DefaultSLCANBaudRate)
}

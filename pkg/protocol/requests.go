package protocol

import (
	"encoding/binary"

	"github.com/strideworks/robstride/pkg/canbus"
)

// NewObtainID builds the id handshake request. The response carries the
// actuator's MCU UID, which ReadAllParams requires.
func NewObtainID(host uint16, target uint8) canbus.Frame {
	return newRequest(MuxObtainID, host, target)
}

// NewEnable builds the motor enable request.
func NewEnable(host uint16, target uint8) canbus.Frame {
	return newRequest(MuxEnable, host, target)
}

// NewFeedbackRequest asks the actuator for a feedback frame.
func NewFeedbackRequest(host uint16, target uint8) canbus.Frame {
	return newRequest(MuxFeedback, host, target)
}

// NewControl builds an MIT-mode control frame. The torque scale rides in the
// identifier's data field; the payload carries the remaining scales as
// big-endian u16 values.
func NewControl(target uint8, torque, angle, velocity, kp, kd uint16) canbus.Frame {
	f := canbus.Frame{
		ID:       requestID(MuxControl, torque, target),
		Len:      canbus.MaxDataLen,
		Extended: true,
	}
	binary.BigEndian.PutUint16(f.Data[0:2], angle)
	binary.BigEndian.PutUint16(f.Data[2:4], velocity)
	binary.BigEndian.PutUint16(f.Data[4:6], kp)
	binary.BigEndian.PutUint16(f.Data[6:8], kd)
	return f
}

// NewZeroPosition builds the set-mechanical-zero request.
func NewZeroPosition(host uint16, target uint8) canbus.Frame {
	f := newRequest(MuxZero, host, target)
	// Fixed payload per the Robstride manual.
	f.Data[0] = 0x01
	f.Data[1] = 0x01
	f.Data[2] = 0xCD
	return f
}

// NewSave builds the persist-parameters request.
func NewSave(host uint16, target uint8) canbus.Frame {
	f := newRequest(MuxSave, host, target)
	copy(f.Data[:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	return f
}

// NewParamRead builds a single parameter read request.
func NewParamRead(host uint16, target uint8, index uint16) canbus.Frame {
	f := newRequest(MuxParamRead, host, target)
	binary.LittleEndian.PutUint16(f.Data[0:2], index)
	return f
}

// NewParamWrite builds a single parameter write request. The value is the
// parameter's raw 4-byte little-endian representation.
func NewParamWrite(host uint16, target uint8, index uint16, value uint32) canbus.Frame {
	f := newRequest(MuxParamWrite, host, target)
	binary.LittleEndian.PutUint16(f.Data[0:2], index)
	binary.LittleEndian.PutUint32(f.Data[4:8], value)
	return f
}

// NewParamDump builds the read-all-parameters request. The actuator streams
// back fragment frames covering its whole parameter space. The handshake UID
// from ObtainID is required.
func NewParamDump(host uint16, target uint8, mcuUID uint64) canbus.Frame {
	// Unlike the other requests this one carries an 8-bit host id.
	f := canbus.Frame{
		ID:       requestID(MuxParamDump, uint16(uint8(host)), target),
		Len:      canbus.MaxDataLen,
		Extended: true,
	}
	binary.LittleEndian.PutUint64(f.Data[:], mcuUID)
	return f
}

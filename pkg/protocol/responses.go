package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/strideworks/robstride/pkg/canbus"
)

// ObtainIDResponse is the reply to NewObtainID.
type ObtainIDResponse struct {
	ActuatorID uint8
	MCUID      uint64
}

// ParseObtainID decodes an id handshake response.
func ParseObtainID(f canbus.Frame) (ObtainIDResponse, error) {
	if m := Mux(f); m != MuxObtainID {
		return ObtainIDResponse{}, fmt.Errorf("not an obtain-id response (mux 0x%02x)", m)
	}
	return ObtainIDResponse{
		ActuatorID: uint8(f.ID >> 8),
		MCUID:      binary.LittleEndian.Uint64(f.Data[:]),
	}, nil
}

// Feedback is the decoded wire form of a feedback frame. All scales are raw
// u16 values; physical interpretation depends on the actuator model.
type Feedback struct {
	ActuatorID    uint8
	AngleScale    uint16
	VelocityScale uint16
	TorqueScale   uint16
	TempDeciC     uint16 // 0.1 °C units
	Faults        uint8  // 6 fault bits from the identifier
	Mode          uint8  // 2 mode bits from the identifier
}

// ParseFeedback decodes a feedback response.
func ParseFeedback(f canbus.Frame) (Feedback, error) {
	if m := Mux(f); m != MuxFeedback {
		return Feedback{}, fmt.Errorf("not a feedback response (mux 0x%02x)", m)
	}
	status := uint8(f.ID >> 16)
	return Feedback{
		ActuatorID:    uint8(f.ID >> 8),
		AngleScale:    binary.BigEndian.Uint16(f.Data[0:2]),
		VelocityScale: binary.BigEndian.Uint16(f.Data[2:4]),
		TorqueScale:   binary.BigEndian.Uint16(f.Data[4:6]),
		TempDeciC:     binary.BigEndian.Uint16(f.Data[6:8]),
		Faults:        status & 0x3F,
		Mode:          status >> 6,
	}, nil
}

// ParamReadResponse is the reply to NewParamRead.
type ParamReadResponse struct {
	ActuatorID uint8
	OK         bool
	Index      uint16
	Value      [4]byte // little-endian raw value
}

// ParseParamRead decodes a single parameter read response.
func ParseParamRead(f canbus.Frame) (ParamReadResponse, error) {
	if m := Mux(f); m != MuxParamRead {
		return ParamReadResponse{}, fmt.Errorf("not a param read response (mux 0x%02x)", m)
	}
	r := ParamReadResponse{
		ActuatorID: uint8(f.ID >> 8),
		OK:         uint8(f.ID>>16) == 0x00,
		Index:      binary.LittleEndian.Uint16(f.Data[0:2]),
	}
	copy(r.Value[:], f.Data[4:8])
	return r, nil
}

// ParamDumpFragment is one frame of a read-all-parameters stream. Fragments
// for multi-frame parameters share an index and arrive in marker order.
type ParamDumpFragment struct {
	ActuatorID uint8
	Marker     uint8
	Index      uint16
	Data       [6]byte
}

// ParseParamDumpFragment decodes one fragment of a parameter dump.
func ParseParamDumpFragment(f canbus.Frame) (ParamDumpFragment, error) {
	if m := Mux(f); m != MuxParamDump {
		return ParamDumpFragment{}, fmt.Errorf("not a param dump fragment (mux 0x%02x)", m)
	}
	frag := ParamDumpFragment{
		ActuatorID: uint8(f.ID >> 8),
		Marker:     uint8(f.ID >> 16),
		Index:      binary.LittleEndian.Uint16(f.Data[0:2]),
	}
	copy(frag.Data[:], f.Data[2:8])
	return frag, nil
}

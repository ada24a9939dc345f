package params

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Value is a decoded parameter value.
type Value struct {
	Kind  Type
	Str   string
	Uint  uint64
	Int   int64
	Float float64
}

func (v Value) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Uint8, Uint16, Uint32:
		return fmt.Sprintf("%d", v.Uint)
	case Int16, Int32:
		return fmt.Sprintf("%d", v.Int)
	case Float:
		return fmt.Sprintf("%.6g", v.Float)
	}
	return "?"
}

// Decode interprets raw little-endian parameter bytes as the given type.
func Decode(t Type, raw []byte) (Value, error) {
	switch t {
	case String:
		end := bytes.IndexByte(raw, 0)
		if end < 0 {
			end = len(raw)
		}
		return Value{Kind: String, Str: string(raw[:end])}, nil
	case Uint8:
		if len(raw) < 1 {
			return Value{}, fmt.Errorf("uint8 needs 1 byte, have %d", len(raw))
		}
		return Value{Kind: Uint8, Uint: uint64(raw[0])}, nil
	case Uint16:
		if len(raw) < 2 {
			return Value{}, fmt.Errorf("uint16 needs 2 bytes, have %d", len(raw))
		}
		return Value{Kind: Uint16, Uint: uint64(binary.LittleEndian.Uint16(raw))}, nil
	case Uint32:
		if len(raw) < 4 {
			return Value{}, fmt.Errorf("uint32 needs 4 bytes, have %d", len(raw))
		}
		return Value{Kind: Uint32, Uint: uint64(binary.LittleEndian.Uint32(raw))}, nil
	case Int16:
		if len(raw) < 2 {
			return Value{}, fmt.Errorf("int16 needs 2 bytes, have %d", len(raw))
		}
		return Value{Kind: Int16, Int: int64(int16(binary.LittleEndian.Uint16(raw)))}, nil
	case Int32:
		if len(raw) < 4 {
			return Value{}, fmt.Errorf("int32 needs 4 bytes, have %d", len(raw))
		}
		return Value{Kind: Int32, Int: int64(int32(binary.LittleEndian.Uint32(raw)))}, nil
	case Float:
		if len(raw) < 4 {
			return Value{}, fmt.Errorf("float needs 4 bytes, have %d", len(raw))
		}
		return Value{Kind: Float, Float: float64(math.Float32frombits(binary.LittleEndian.Uint32(raw)))}, nil
	}
	return Value{}, fmt.Errorf("unknown parameter type %d", t)
}

// EncodeFloat packs a float parameter for a write request.
func EncodeFloat(v float32) uint32 { return math.Float32bits(v) }

// EncodeUint packs an integer parameter for a write request.
func EncodeUint(v uint32) uint32 { return v }

// FirmwareVersion extracts the version string from a raw AppCodeVersion
// dump. The dump interleaves null-separated fields; the second field carries
// a single type-prefix character followed by the "0.x.y.z" version.
func FirmwareVersion(raw []byte) (string, bool) {
	var fields [][]byte
	for _, part := range bytes.Split(raw, []byte{0}) {
		if len(part) > 0 {
			fields = append(fields, part)
		}
	}
	if len(fields) < 2 {
		return "", false
	}
	second := fields[1]
	if len(second) < 2 || bytes.IndexByte([]byte("isvtf"), second[0]) < 0 {
		return "", false
	}
	version := string(second[1:])
	if len(version) < 5 || version[0] < '0' || version[0] > '9' {
		return "", false
	}
	return version, true
}

package actuator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Range is a closed interval of physical or wire values.
type Range struct {
	Min float64
	Max float64
}

// Scale maps a value from this range onto the target range, linearly.
func (r Range) Scale(value float64, to Range) float64 {
	proportion := (value - r.Min) / (r.Max - r.Min)
	return to.Min + proportion*(to.Max-to.Min)
}

// Clamp limits a value to the range.
func (r Range) Clamp(value float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, value))
}

// RangeSet groups the ranges of every commandable quantity.
type RangeSet struct {
	Angle    Range
	Velocity Range
	Torque   Range
	Kp       Range
	Kd       Range
}

// Model identifies a Robstride actuator type.
type Model int

const (
	RS00 Model = iota // 14 Nm
	RS01              // 17 Nm
	RS02              // 17 Nm
	RS03              // 60 Nm
	RS04              // 120 Nm
)

// AllModels returns every known model, in probe order.
func AllModels() []Model {
	return []Model{RS01, RS00, RS02, RS03, RS04}
}

func (m Model) String() string {
	switch m {
	case RS00:
		return "RS00"
	case RS01:
		return "RS01"
	case RS02:
		return "RS02"
	case RS03:
		return "RS03"
	case RS04:
		return "RS04"
	}
	return fmt.Sprintf("RS(%d)", int(m))
}

// CANRanges returns the wire ranges: every quantity is a u16 scale.
func (m Model) CANRanges() RangeSet {
	full := Range{Min: 0, Max: 65535}
	return RangeSet{Angle: full, Velocity: full, Torque: full, Kp: full, Kd: full}
}

// Ranges returns the physical ranges for the model, in SI units.
func (m Model) Ranges() RangeSet {
	angle := Range{Min: -4 * math.Pi, Max: 4 * math.Pi}
	switch m {
	case RS00:
		return RangeSet{
			Angle:    angle,
			Velocity: Range{Min: -33, Max: 33},
			Torque:   Range{Min: -14, Max: 14},
			Kp:       Range{Min: 0, Max: 500},
			Kd:       Range{Min: 0, Max: 5},
		}
	case RS03:
		return RangeSet{
			Angle:    angle,
			Velocity: Range{Min: -20, Max: 20},
			Torque:   Range{Min: -60, Max: 60},
			Kp:       Range{Min: 0, Max: 5000},
			Kd:       Range{Min: 0, Max: 100},
		}
	case RS04:
		return RangeSet{
			Angle:    angle,
			Velocity: Range{Min: -15, Max: 15},
			Torque:   Range{Min: -120, Max: 120},
			Kp:       Range{Min: 0, Max: 5000},
			Kd:       Range{Min: 0, Max: 100},
		}
	default: // RS01 and RS02 share limits
		return RangeSet{
			Angle:    angle,
			Velocity: Range{Min: -44, Max: 44},
			Torque:   Range{Min: -17, Max: 17},
			Kp:       Range{Min: 0, Max: 500},
			Kd:       Range{Min: 0, Max: 5},
		}
	}
}

// ParseModel maps a model name such as "RS02" to the Model.
func ParseModel(name string) (Model, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "RS00":
		return RS00, nil
	case "RS01":
		return RS01, nil
	case "RS02":
		return RS02, nil
	case "RS03":
		return RS03, nil
	case "RS04":
		return RS04, nil
	}
	return 0, fmt.Errorf("unknown actuator model %q", name)
}

// DetectModel maps a firmware version string such as "0.2.3.9" to the
// actuator model. The minor version encodes the model family.
func DetectModel(version string) (Model, error) {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) != 4 {
		return 0, fmt.Errorf("invalid firmware version %q", version)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid firmware version %q", version)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid firmware version %q", version)
	}
	if major != 0 {
		return 0, fmt.Errorf("unknown firmware major version %d", major)
	}
	switch minor {
	case 0:
		return RS00, nil
	case 1:
		return RS01, nil
	case 2:
		return RS02, nil
	case 3:
		return RS03, nil
	case 4:
		return RS04, nil
	}
	return 0, fmt.Errorf("no model for firmware version %q", version)
}

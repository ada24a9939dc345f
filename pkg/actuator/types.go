// Package actuator provides models, commands and feedback types for
// Robstride actuators.
package actuator

import "strings"

// Command is a full MIT-mode control target in SI units.
type Command struct {
	Position float64 // rad
	Velocity float64 // rad/s
	Torque   float64 // Nm, feedforward
	Kp       float64 // position gain
	Kd       float64 // velocity gain
}

// Feedback holds the values last reported by an actuator.
type Feedback struct {
	Position    float64 // rad
	Velocity    float64 // rad/s
	Torque      float64 // Nm
	Temperature float64 // °C
	Faults      FaultFlags
	Mode        RunMode
}

// State pairs the latest feedback with the last command sent.
type State struct {
	Feedback Feedback
	Command  Command
}

// ApplyFeedback replaces the feedback half of the state.
func (s *State) ApplyFeedback(fb Feedback) {
	s.Feedback = fb
}

// SetCommand records the last command sent to the actuator.
func (s *State) SetCommand(cmd Command) {
	s.Command = cmd
}

// RunMode is the actuator mode reported in feedback frames.
type RunMode uint8

const (
	ModeReset       RunMode = 0
	ModeCalibration RunMode = 1
	ModeRun         RunMode = 2
)

func (m RunMode) String() string {
	switch m {
	case ModeReset:
		return "reset"
	case ModeCalibration:
		return "calibration"
	case ModeRun:
		return "run"
	}
	return "unknown"
}

// FaultFlags are the six fault bits carried in feedback frame IDs.
type FaultFlags uint8

const (
	FaultUndervoltage FaultFlags = 1 << 0
	FaultOvercurrent  FaultFlags = 1 << 1
	FaultOverTemp     FaultFlags = 1 << 2
	FaultEncoder      FaultFlags = 1 << 3
	FaultHall         FaultFlags = 1 << 4
	FaultUncalibrated FaultFlags = 1 << 5
)

var faultNames = []struct {
	flag FaultFlags
	name string
}{
	{FaultUndervoltage, "undervoltage"},
	{FaultOvercurrent, "overcurrent"},
	{FaultOverTemp, "over-temperature"},
	{FaultEncoder, "encoder fault"},
	{FaultHall, "hall fault"},
	{FaultUncalibrated, "uncalibrated"},
}

func (f FaultFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range faultNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, ",")
}

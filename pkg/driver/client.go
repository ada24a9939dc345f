package driver

import (
	"github.com/strideworks/robstride/pkg/actuator"
	"github.com/strideworks/robstride/pkg/canbus"
	"github.com/strideworks/robstride/pkg/protocol"
)

// client tracks per-actuator state: the model's scaling ranges, the MCU UID
// learned from the id handshake, and the last command sent.
type client struct {
	id     uint8
	model  actuator.Model
	phys   actuator.RangeSet
	wire   actuator.RangeSet
	mcuUID uint64
	state  actuator.State
}

func newClient(id uint8, model actuator.Model) *client {
	return &client{
		id:    id,
		model: model,
		phys:  model.Ranges(),
		wire:  model.CANRanges(),
	}
}

// setModel rebinds the scaling ranges, e.g. after firmware detection.
func (c *client) setModel(model actuator.Model) {
	c.model = model
	c.phys = model.Ranges()
	c.wire = model.CANRanges()
}

// controlFrame scales a physical command onto the wire and builds the
// control frame. Out-of-range targets are clamped to the model's limits.
func (c *client) controlFrame(cmd actuator.Command) canbus.Frame {
	scale := func(r actuator.Range, w actuator.Range, v float64) uint16 {
		return uint16(r.Scale(r.Clamp(v), w))
	}
	return protocol.NewControl(
		c.id,
		scale(c.phys.Torque, c.wire.Torque, cmd.Torque),
		scale(c.phys.Angle, c.wire.Angle, cmd.Position),
		scale(c.phys.Velocity, c.wire.Velocity, cmd.Velocity),
		scale(c.phys.Kp, c.wire.Kp, cmd.Kp),
		scale(c.phys.Kd, c.wire.Kd, cmd.Kd),
	)
}

// feedback converts a wire feedback message to physical units.
func (c *client) feedback(fb protocol.Feedback) actuator.Feedback {
	return actuator.Feedback{
		Position:    c.wire.Angle.Scale(float64(fb.AngleScale), c.phys.Angle),
		Velocity:    c.wire.Velocity.Scale(float64(fb.VelocityScale), c.phys.Velocity),
		Torque:      c.wire.Torque.Scale(float64(fb.TorqueScale), c.phys.Torque),
		Temperature: float64(fb.TempDeciC) / 10,
		Faults:      actuator.FaultFlags(fb.Faults),
		Mode:        actuator.RunMode(fb.Mode),
	}
}

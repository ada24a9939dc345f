// Package driver provides high-level control of Robstride actuators over a
// CAN bus: discovery, enable/disable, MIT-mode commands, feedback, and the
// firmware parameter interface.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/strideworks/robstride/pkg/actuator"
	"github.com/strideworks/robstride/pkg/canbus"
	"github.com/strideworks/robstride/pkg/protocol"
)

// Response wait windows, matching actuator firmware timing.
const (
	pingTimeout     = 100 * time.Millisecond
	responseTimeout = time.Second
	dumpWindow      = 2 * time.Second
	dumpIdle        = 100 * time.Millisecond
)

// ErrNotFound is returned for operations on an unregistered actuator id.
var ErrNotFound = errors.New("actuator not found")

// ErrTimeout is returned when an actuator does not answer in time.
var ErrTimeout = errors.New("timeout waiting for response")

// Driver controls the actuators reachable on a single CAN bus.
type Driver struct {
	bus     canbus.Bus
	hostID  uint16
	clients map[uint8]*client
	log     zerolog.Logger
}

// New wraps an open bus. The zero logger disables frame tracing.
func New(bus canbus.Bus, log zerolog.Logger) *Driver {
	return &Driver{
		bus:     bus,
		hostID:  protocol.DefaultHostID,
		clients: make(map[uint8]*client),
		log:     log.With().Str("interface", bus.Name()).Logger(),
	}
}

// Open connects to a CAN interface by name and wraps it in a driver.
func Open(name string, log zerolog.Logger) (*Driver, error) {
	bus, err := canbus.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return New(bus, log), nil
}

// Close closes the underlying bus.
func (d *Driver) Close() error { return d.bus.Close() }

// InterfaceName returns the name of the bus this driver is attached to.
func (d *Driver) InterfaceName() string { return d.bus.Name() }

// AddActuator registers an actuator with an explicit model. The caller is
// responsible for knowing which model answers on which id.
func (d *Driver) AddActuator(id uint8, model actuator.Model) {
	d.clients[id] = newClient(id, model)
}

// SetModel rebinds a registered actuator's scaling ranges.
func (d *Driver) SetModel(id uint8, model actuator.Model) error {
	c, ok := d.clients[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	c.setModel(model)
	return nil
}

// Registered returns the ids of all registered actuators.
func (d *Driver) Registered() []uint8 {
	ids := make([]uint8, 0, len(d.clients))
	for id := range d.clients {
		ids = append(ids, id)
	}
	return ids
}

// Has reports whether an actuator id is registered.
func (d *Driver) Has(id uint8) bool {
	_, ok := d.clients[id]
	return ok
}

// Model returns the registered model for an actuator.
func (d *Driver) Model(id uint8) (actuator.Model, error) {
	c, ok := d.clients[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.model, nil
}

// Ping sends an id handshake and registers the actuator on success.
// Newly discovered actuators default to the RS01 model until detection
// (see the dump path) says otherwise.
func (d *Driver) Ping(ctx context.Context, id uint8) (bool, error) {
	if err := d.send(ctx, protocol.NewObtainID(d.hostID, id)); err != nil {
		return false, err
	}

	frame, err := d.recvMatch(ctx, pingTimeout, protocol.MuxObtainID, id)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return false, nil
		}
		return false, err
	}

	resp, err := protocol.ParseObtainID(frame)
	if err != nil {
		return false, nil
	}

	c, ok := d.clients[id]
	if !ok {
		c = newClient(id, actuator.RS01)
		d.clients[id] = c
	}
	c.mcuUID = resp.MCUID
	d.log.Debug().Uint8("id", id).Uint64("mcu_uid", resp.MCUID).Msg("actuator answered ping")
	return true, nil
}

// Scan pings every id in [start, end] and returns those that answered.
func (d *Driver) Scan(ctx context.Context, start, end uint8) ([]uint8, error) {
	var found []uint8
	for id := start; ; id++ {
		ok, err := d.Ping(ctx, id)
		if err != nil {
			return found, err
		}
		if ok {
			found = append(found, id)
		}
		if id == end {
			break
		}
	}
	return found, nil
}

// ScanInterfaces scans several CAN interfaces and returns discovered ids per
// interface name. Interfaces that fail to open are skipped.
func ScanInterfaces(ctx context.Context, names []string, start, end uint8, log zerolog.Logger) map[string][]uint8 {
	found := make(map[string][]uint8)
	for _, name := range names {
		d, err := Open(name, log)
		if err != nil {
			log.Warn().Str("interface", name).Err(err).Msg("skipping interface")
			continue
		}
		ids, err := d.Scan(ctx, start, end)
		if err != nil {
			log.Warn().Str("interface", name).Err(err).Msg("scan failed")
		}
		if len(ids) > 0 {
			found[name] = ids
		}
		d.Close()
	}
	return found
}

// Enable turns on the motor and waits for the acknowledging feedback frame.
func (d *Driver) Enable(ctx context.Context, id uint8) error {
	c, ok := d.clients[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, protocol.NewEnable(d.hostID, id)); err != nil {
		return err
	}
	frame, err := d.recvMatch(ctx, responseTimeout, protocol.MuxFeedback, id)
	if err != nil {
		return err
	}
	d.applyFeedback(c, frame)
	return nil
}

// Disable commands zero torque with zero gains, leaving the motor limp.
func (d *Driver) Disable(ctx context.Context, id uint8) error {
	return d.Move(ctx, id, actuator.Command{})
}

// Move sends an MIT-mode control frame. No acknowledgement is awaited; the
// actuator answers with a feedback frame that later State calls absorb.
func (d *Driver) Move(ctx context.Context, id uint8, cmd actuator.Command) error {
	c, ok := d.clients[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, c.controlFrame(cmd)); err != nil {
		return err
	}
	c.state.SetCommand(cmd)
	return nil
}

// State requests a feedback frame and returns the actuator state.
func (d *Driver) State(ctx context.Context, id uint8) (actuator.State, error) {
	c, ok := d.clients[id]
	if !ok {
		return actuator.State{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, protocol.NewFeedbackRequest(d.hostID, id)); err != nil {
		return actuator.State{}, err
	}
	frame, err := d.recvMatch(ctx, responseTimeout, protocol.MuxFeedback, id)
	if err != nil {
		return actuator.State{}, err
	}
	if err := d.applyFeedback(c, frame); err != nil {
		return actuator.State{}, err
	}
	return c.state, nil
}

// ZeroPosition sets the current position as the mechanical zero.
func (d *Driver) ZeroPosition(ctx context.Context, id uint8) error {
	c, ok := d.clients[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, protocol.NewZeroPosition(d.hostID, id)); err != nil {
		return err
	}
	frame, err := d.recvMatch(ctx, responseTimeout, protocol.MuxFeedback, id)
	if err != nil {
		return err
	}
	d.applyFeedback(c, frame)
	return nil
}

// SaveParameters persists the actuator's settings to flash.
func (d *Driver) SaveParameters(ctx context.Context, id uint8) error {
	if _, ok := d.clients[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return d.send(ctx, protocol.NewSave(d.hostID, id))
}

// ReadParameter reads a single parameter's raw 4-byte value.
func (d *Driver) ReadParameter(ctx context.Context, id uint8, index uint16) ([4]byte, error) {
	if _, ok := d.clients[id]; !ok {
		return [4]byte{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, protocol.NewParamRead(d.hostID, id, index)); err != nil {
		return [4]byte{}, err
	}
	frame, err := d.recvMatch(ctx, responseTimeout, protocol.MuxParamRead, id)
	if err != nil {
		return [4]byte{}, err
	}
	resp, err := protocol.ParseParamRead(frame)
	if err != nil {
		return [4]byte{}, err
	}
	if !resp.OK {
		return [4]byte{}, fmt.Errorf("parameter 0x%04X read rejected by actuator %d", index, id)
	}
	if resp.Index != index {
		return [4]byte{}, fmt.Errorf("parameter read answered for 0x%04X, wanted 0x%04X", resp.Index, index)
	}
	return resp.Value, nil
}

// WriteParameter writes a single parameter's raw 4-byte value.
func (d *Driver) WriteParameter(ctx context.Context, id uint8, index uint16, value uint32) error {
	if _, ok := d.clients[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err := d.send(ctx, protocol.NewParamWrite(d.hostID, id, index, value)); err != nil {
		return err
	}
	// The actuator acknowledges writes with a feedback frame.
	_, err := d.recvMatch(ctx, responseTimeout, protocol.MuxFeedback, id)
	return err
}

// DumpParameters streams the actuator's whole parameter space and returns
// raw bytes per parameter code, with multi-frame fragments concatenated.
// Requires a prior Ping for the MCU UID handshake.
func (d *Driver) DumpParameters(ctx context.Context, id uint8) (map[uint16][]byte, error) {
	c, ok := d.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if c.mcuUID == 0 {
		return nil, fmt.Errorf("actuator %d: no MCU UID, ping it first", id)
	}

	if err := d.send(ctx, protocol.NewParamDump(d.hostID, id, c.mcuUID)); err != nil {
		return nil, err
	}

	dump := make(map[uint16][]byte)
	deadline := time.Now().Add(dumpWindow)
	for time.Now().Before(deadline) {
		frame, err := d.recvMatch(ctx, dumpIdle, protocol.MuxParamDump, id)
		if err != nil {
			if errors.Is(err, ErrTimeout) {
				// Fragments trickle in; a quiet gap after data means done.
				if len(dump) > 0 {
					break
				}
				continue
			}
			return dump, err
		}
		frag, err := protocol.ParseParamDumpFragment(frame)
		if err != nil {
			continue
		}
		dump[frag.Index] = append(dump[frag.Index], frag.Data[:]...)
	}

	d.log.Debug().Uint8("id", id).Int("parameters", len(dump)).Msg("parameter dump complete")
	return dump, nil
}

// DetectModel dumps the firmware version parameter and rebinds the
// actuator's scaling ranges to the detected model.
func (d *Driver) DetectModel(ctx context.Context, id uint8) (actuator.Model, error) {
	dump, err := d.DumpParameters(ctx, id)
	if err != nil {
		return 0, err
	}
	return d.DetectModelFromDump(id, dump)
}

func (d *Driver) applyFeedback(c *client, frame canbus.Frame) error {
	fb, err := protocol.ParseFeedback(frame)
	if err != nil {
		return err
	}
	c.state.ApplyFeedback(c.feedback(fb))
	return nil
}

func (d *Driver) send(ctx context.Context, f canbus.Frame) error {
	d.log.Debug().
		Uint32("can_id", f.ID).
		Hex("data", f.Data[:f.Len]).
		Msg("tx")
	return d.bus.Send(ctx, f)
}

// recvMatch reads frames until one matches the wanted mux and actuator id,
// or the window elapses. Frames for other actuators are dropped.
func (d *Driver) recvMatch(ctx context.Context, window time.Duration, mux uint8, id uint8) (canbus.Frame, error) {
	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	for {
		frame, err := d.bus.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return canbus.Frame{}, ErrTimeout
			}
			return canbus.Frame{}, err
		}
		d.log.Debug().
			Uint32("can_id", frame.ID).
			Hex("data", frame.Data[:frame.Len]).
			Msg("rx")
		if protocol.Mux(frame) == mux && uint8(frame.ID>>8) == id {
			return frame, nil
		}
	}
}

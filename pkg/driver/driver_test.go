package driver

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/robstride/pkg/actuator"
	"github.com/strideworks/robstride/pkg/canbus"
	"github.com/strideworks/robstride/pkg/protocol"
)

// scriptBus replays canned response frames and records everything sent.
type scriptBus struct {
	sent      []canbus.Frame
	responses []canbus.Frame
}

func (b *scriptBus) Send(ctx context.Context, f canbus.Frame) error {
	b.sent = append(b.sent, f)
	return nil
}

func (b *scriptBus) Recv(ctx context.Context) (canbus.Frame, error) {
	if len(b.responses) == 0 {
		<-ctx.Done()
		return canbus.Frame{}, ctx.Err()
	}
	f := b.responses[0]
	b.responses = b.responses[1:]
	return f, nil
}

func (b *scriptBus) Name() string { return "testbus" }
func (b *scriptBus) Close() error { return nil }

func (b *scriptBus) queue(f canbus.Frame) { b.responses = append(b.responses, f) }

func respID(mux uint8, status uint8, actuatorID uint8) uint32 {
	return uint32(mux)<<24 | uint32(status)<<16 | uint32(actuatorID)<<8 | uint32(protocol.DefaultHostID&0xFF)
}

func obtainIDResponse(id uint8, mcuUID uint64) canbus.Frame {
	f := canbus.Frame{ID: respID(protocol.MuxObtainID, 0, id), Len: 8, Extended: true}
	binary.LittleEndian.PutUint64(f.Data[:], mcuUID)
	return f
}

func feedbackResponse(id uint8, angle, vel, torque, temp uint16, status uint8) canbus.Frame {
	f := canbus.Frame{ID: respID(protocol.MuxFeedback, status, id), Len: 8, Extended: true}
	binary.BigEndian.PutUint16(f.Data[0:2], angle)
	binary.BigEndian.PutUint16(f.Data[2:4], vel)
	binary.BigEndian.PutUint16(f.Data[4:6], torque)
	binary.BigEndian.PutUint16(f.Data[6:8], temp)
	return f
}

func newTestDriver() (*Driver, *scriptBus) {
	bus := &scriptBus{}
	return New(bus, zerolog.Nop()), bus
}

func TestPingRegistersActuator(t *testing.T) {
	d, bus := newTestDriver()
	bus.queue(obtainIDResponse(11, 0xDEADBEEF))

	ok, err := d.Ping(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, d.Has(11))

	model, err := d.Model(11)
	require.NoError(t, err)
	require.Equal(t, actuator.RS01, model)

	// The request goes to the target with our host id in the data field.
	require.Len(t, bus.sent, 1)
	require.Equal(t, uint32(0x00<<24|0xFD<<8|11), bus.sent[0].ID)
}

func TestPingTimeout(t *testing.T) {
	d, _ := newTestDriver()
	ok, err := d.Ping(context.Background(), 42)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, d.Has(42))
}

func TestScanCollectsResponders(t *testing.T) {
	d, bus := newTestDriver()
	bus.queue(obtainIDResponse(11, 1))

	found, err := d.Scan(context.Background(), 11, 11)
	require.NoError(t, err)
	require.Equal(t, []uint8{11}, found)

	// Nothing queued: the whole range times out quietly.
	found, err = d.Scan(context.Background(), 20, 21)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestMoveScalesToWire(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)

	err := d.Move(context.Background(), 11, actuator.Command{})
	require.NoError(t, err)
	require.Len(t, bus.sent, 1)

	f := bus.sent[0]
	require.Equal(t, protocol.MuxControl, protocol.Mux(f))
	// Zero torque sits at the midpoint of the u16 scale.
	require.Equal(t, uint16(32767), uint16(f.ID>>8))
	// Zero position and velocity are midpoints; zero gains are the bottom
	// of their one-sided ranges.
	require.Equal(t, uint16(32767), binary.BigEndian.Uint16(f.Data[0:2]))
	require.Equal(t, uint16(32767), binary.BigEndian.Uint16(f.Data[2:4]))
	require.Equal(t, uint16(0), binary.BigEndian.Uint16(f.Data[4:6]))
	require.Equal(t, uint16(0), binary.BigEndian.Uint16(f.Data[6:8]))
}

func TestMoveClampsToModelLimits(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01) // torque limit ±17 Nm

	err := d.Move(context.Background(), 11, actuator.Command{Torque: 1000})
	require.NoError(t, err)
	require.Equal(t, uint16(65535), uint16(bus.sent[0].ID>>8))
}

func TestMoveUnknownActuator(t *testing.T) {
	d, _ := newTestDriver()
	err := d.Move(context.Background(), 99, actuator.Command{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStateConvertsFeedback(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)
	// Midpoint angle/velocity/torque, 35.0 °C, overcurrent fault, run mode.
	bus.queue(feedbackResponse(11, 32767, 65535, 0, 350, 0x02|2<<6))

	st, err := d.State(context.Background(), 11)
	require.NoError(t, err)
	require.InDelta(t, 0, st.Feedback.Position, 0.001)
	require.InDelta(t, 44, st.Feedback.Velocity, 0.001)
	require.InDelta(t, -17, st.Feedback.Torque, 0.001)
	require.InDelta(t, 35.0, st.Feedback.Temperature, 0.001)
	require.Equal(t, actuator.FaultOvercurrent, st.Feedback.Faults)
	require.Equal(t, actuator.ModeRun, st.Feedback.Mode)
}

func TestStateSkipsOtherActuators(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)
	bus.queue(feedbackResponse(12, 1, 2, 3, 4, 0)) // someone else's frame
	bus.queue(feedbackResponse(11, 32767, 32767, 32767, 250, 0))

	st, err := d.State(context.Background(), 11)
	require.NoError(t, err)
	require.InDelta(t, 25.0, st.Feedback.Temperature, 0.001)
}

func TestDisableSendsZeroCommand(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)

	require.NoError(t, d.Disable(context.Background(), 11))
	f := bus.sent[0]
	require.Equal(t, protocol.MuxControl, protocol.Mux(f))
	require.Equal(t, uint16(0), binary.BigEndian.Uint16(f.Data[4:6])) // kp
	require.Equal(t, uint16(0), binary.BigEndian.Uint16(f.Data[6:8])) // kd
}

func TestReadParameter(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)

	resp := canbus.Frame{ID: respID(protocol.MuxParamRead, 0, 11), Len: 8, Extended: true}
	binary.LittleEndian.PutUint16(resp.Data[0:2], 0x2007)
	copy(resp.Data[4:8], []byte{0xCD, 0xCC, 0x8C, 0x40})
	bus.queue(resp)

	raw, err := d.ReadParameter(context.Background(), 11, 0x2007)
	require.NoError(t, err)
	require.Equal(t, [4]byte{0xCD, 0xCC, 0x8C, 0x40}, raw)
}

func TestReadParameterRejected(t *testing.T) {
	d, bus := newTestDriver()
	d.AddActuator(11, actuator.RS01)

	resp := canbus.Frame{ID: respID(protocol.MuxParamRead, 0x01, 11), Len: 8, Extended: true}
	binary.LittleEndian.PutUint16(resp.Data[0:2], 0x2007)
	bus.queue(resp)

	_, err := d.ReadParameter(context.Background(), 11, 0x2007)
	require.ErrorContains(t, err, "rejected")
}

func TestDumpParameters(t *testing.T) {
	d, bus := newTestDriver()
	bus.queue(obtainIDResponse(11, 0xABCD)) // the dump needs the MCU UID
	ok, err := d.Ping(context.Background(), 11)
	require.NoError(t, err)
	require.True(t, ok)

	frag := func(marker uint8, index uint16, data []byte) canbus.Frame {
		f := canbus.Frame{ID: respID(protocol.MuxParamDump, marker, 11), Len: 8, Extended: true}
		binary.LittleEndian.PutUint16(f.Data[0:2], index)
		copy(f.Data[2:8], data)
		return f
	}
	bus.queue(frag(1, 0x1003, []byte("a\x00v0.2")))
	bus.queue(frag(2, 0x1003, []byte(".3.9\x00\x00")))
	bus.queue(frag(1, 0x200A, []byte{0x0B, 0, 0, 0, 0, 0}))

	dump, err := d.DumpParameters(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, []byte("a\x00v0.2.3.9\x00\x00"), dump[0x1003])
	require.Equal(t, []byte{0x0B, 0, 0, 0, 0, 0}, dump[0x200A])

	// The dump payload carries the handshake UID.
	dumpReq := bus.sent[len(bus.sent)-1]
	require.Equal(t, protocol.MuxParamDump, protocol.Mux(dumpReq))
	require.Equal(t, uint64(0xABCD), binary.LittleEndian.Uint64(dumpReq.Data[:]))
}

func TestDumpParametersNeedsPing(t *testing.T) {
	d, _ := newTestDriver()
	d.AddActuator(11, actuator.RS01)
	_, err := d.DumpParameters(context.Background(), 11)
	require.ErrorContains(t, err, "ping")
}

func TestDetectModelFromDump(t *testing.T) {
	d, _ := newTestDriver()
	d.AddActuator(11, actuator.RS01)

	dump := map[uint16][]byte{
		0x1003: []byte("boot\x00v0.3.1.4\x00"),
	}
	model, err := d.DetectModelFromDump(11, dump)
	require.NoError(t, err)
	require.Equal(t, actuator.RS03, model)

	got, err := d.Model(11)
	require.NoError(t, err)
	require.Equal(t, actuator.RS03, got)
}

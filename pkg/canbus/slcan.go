package canbus

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultSLCANBaudRate is the serial baud rate used for USB SLCAN adapters.
const DefaultSLCANBaudRate = 1_000_000

// slcanBitrateCode selects 1 Mbit/s on the CAN side ("S8" in the Lawicel
// command set), which is what Robstride actuators ship with.
const slcanBitrateCode = "S8"

const slcanReadPoll = 50 * time.Millisecond

// slcanBus speaks the Lawicel SLCAN ASCII protocol over a serial port.
type slcanBus struct {
	port serial.Port
	name string
	buf  []byte
}

// OpenSLCAN opens an SLCAN adapter on the given serial port.
func OpenSLCAN(portName string, baudRate int) (Bus, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portName, err)
	}

	b := &slcanBus{port: port, name: portName}

	// Reset the channel, set bitrate, open. Adapters answer each command
	// with CR or BEL; replies are skipped during Recv.
	for _, cmd := range []string{"C", slcanBitrateCode, "O"} {
		if _, err := port.Write([]byte(cmd + "\r")); err != nil {
			port.Close()
			return nil, fmt.Errorf("slcan init %q on %s: %w", cmd, portName, err)
		}
	}

	return b, nil
}

func (b *slcanBus) Name() string { return b.name }

func (b *slcanBus) Close() error {
	b.port.Write([]byte("C\r"))
	return b.port.Close()
}

func (b *slcanBus) Send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.port.Write(encodeSLCANFrame(f)); err != nil {
		return fmt.Errorf("send frame on %s: %w", b.name, err)
	}
	return nil
}

func (b *slcanBus) Recv(ctx context.Context) (Frame, error) {
	b.port.SetReadTimeout(slcanReadPoll)
	chunk := make([]byte, 64)

	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}

		// Hand back the next complete line already buffered, if any.
		for i, c := range b.buf {
			if c != '\r' {
				continue
			}
			line := b.buf[:i]
			b.buf = b.buf[i+1:]
			f, err := decodeSLCANFrame(line)
			if err != nil {
				// Command echo or status byte, not a frame.
				break
			}
			return f, nil
		}

		n, err := b.port.Read(chunk)
		if err != nil {
			return Frame{}, fmt.Errorf("recv frame on %s: %w", b.name, err)
		}
		b.buf = append(b.buf, chunk[:n]...)
	}
}

// encodeSLCANFrame renders a frame in Lawicel ASCII form, CR terminated.
func encodeSLCANFrame(f Frame) []byte {
	var out []byte
	if f.Extended {
		out = fmt.Appendf(nil, "T%08X%d", f.ID&0x1FFFFFFF, f.Len)
	} else {
		out = fmt.Appendf(nil, "t%03X%d", f.ID&0x7FF, f.Len)
	}
	out = fmt.Appendf(out, "%X", f.Data[:f.Len])
	return append(out, '\r')
}

// decodeSLCANFrame parses a single CR-stripped SLCAN line.
func decodeSLCANFrame(line []byte) (Frame, error) {
	if len(line) == 0 {
		return Frame{}, fmt.Errorf("empty slcan line")
	}

	var f Frame
	var idLen int
	switch line[0] {
	case 'T':
		f.Extended = true
		idLen = 8
	case 't':
		idLen = 3
	default:
		return Frame{}, fmt.Errorf("unsupported slcan record %q", line[0])
	}

	if len(line) < 1+idLen+1 {
		return Frame{}, fmt.Errorf("short slcan line %q", line)
	}

	var id uint32
	if _, err := fmt.Sscanf(string(line[1:1+idLen]), "%X", &id); err != nil {
		return Frame{}, fmt.Errorf("bad slcan id in %q: %w", line, err)
	}
	f.ID = id

	dlc := line[1+idLen] - '0'
	if dlc > MaxDataLen {
		return Frame{}, fmt.Errorf("bad slcan dlc in %q", line)
	}
	f.Len = dlc

	data := line[1+idLen+1:]
	if len(data) != int(dlc)*2 {
		return Frame{}, fmt.Errorf("slcan payload length mismatch in %q", line)
	}
	if _, err := hex.Decode(f.Data[:dlc], data); err != nil {
		return Frame{}, fmt.Errorf("bad slcan payload in %q: %w", line, err)
	}
	return f, nil
}

//go:build linux

package canbus

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// socketCANFrameSize is the size of struct can_frame in linux/can.h.
const socketCANFrameSize = 16

// socketCANBus is a raw AF_CAN socket bound to a single interface.
type socketCANBus struct {
	file *os.File
	name string
}

// OpenSocketCAN binds a raw CAN socket to the named network interface.
func OpenSocketCAN(name string) (Bus, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("interface %s not found: %w", name, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("open CAN socket: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", name, err)
	}

	// Nonblocking so the runtime poller handles deadlines.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set nonblocking: %w", err)
	}

	return &socketCANBus{
		file: os.NewFile(uintptr(fd), name),
		name: name,
	}, nil
}

func (b *socketCANBus) Name() string { return b.name }

func (b *socketCANBus) Close() error { return b.file.Close() }

func (b *socketCANBus) Send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok {
		b.file.SetWriteDeadline(dl)
	} else {
		b.file.SetWriteDeadline(time.Time{})
	}

	buf := marshalSocketCANFrame(f)
	if _, err := b.file.Write(buf[:]); err != nil {
		if os.IsTimeout(err) {
			return context.DeadlineExceeded
		}
		return fmt.Errorf("send frame on %s: %w", b.name, err)
	}
	return nil
}

func (b *socketCANBus) Recv(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if dl, ok := ctx.Deadline(); ok {
		b.file.SetReadDeadline(dl)
	} else {
		b.file.SetReadDeadline(time.Time{})
	}

	buf := make([]byte, socketCANFrameSize)
	for {
		n, err := b.file.Read(buf)
		if err != nil {
			if os.IsTimeout(err) {
				return Frame{}, context.DeadlineExceeded
			}
			return Frame{}, fmt.Errorf("recv frame on %s: %w", b.name, err)
		}
		if n < socketCANFrameSize {
			continue
		}
		return unmarshalSocketCANFrame(buf), nil
	}
}

func marshalSocketCANFrame(f Frame) [socketCANFrameSize]byte {
	var buf [socketCANFrameSize]byte
	id := f.ID
	if f.Extended {
		id |= unix.CAN_EFF_FLAG
	}
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:], f.Data[:])
	return buf
}

func unmarshalSocketCANFrame(buf []byte) Frame {
	var f Frame
	id := binary.LittleEndian.Uint32(buf[0:4])
	f.Extended = id&unix.CAN_EFF_FLAG != 0
	f.ID = id &^ uint32(unix.CAN_EFF_FLAG|unix.CAN_RTR_FLAG|unix.CAN_ERR_FLAG)
	f.Len = buf[4]
	if f.Len > MaxDataLen {
		f.Len = MaxDataLen
	}
	copy(f.Data[:], buf[8:8+MaxDataLen])
	return f
}

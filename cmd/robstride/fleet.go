package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/strideworks/robstride/pkg/canbus"
	"github.com/strideworks/robstride/pkg/driver"
)

// fleet lazily opens one driver per CAN interface and remembers which
// interface each actuator answered on.
type fleet struct {
	names   []string
	log     zerolog.Logger
	drivers map[string]*driver.Driver
	byID    map[uint8]*driver.Driver
}

func newFleet(names []string, log zerolog.Logger) *fleet {
	return &fleet{
		names:   names,
		log:     log,
		drivers: make(map[string]*driver.Driver),
		byID:    make(map[uint8]*driver.Driver),
	}
}

func (f *fleet) Close() {
	for _, d := range f.drivers {
		d.Close()
	}
}

// driverFor opens (or reuses) the driver for an interface name.
func (f *fleet) driverFor(name string) (*driver.Driver, error) {
	if d, ok := f.drivers[name]; ok {
		return d, nil
	}
	d, err := openDriver(name, f.log)
	if err != nil {
		return nil, err
	}
	f.drivers[name] = d
	return d, nil
}

// openDriver connects to a CAN interface. Serial SLCAN adapters honor the
// configured baud rate; SocketCAN names go straight through.
func openDriver(name string, log zerolog.Logger) (*driver.Driver, error) {
	if strings.HasPrefix(name, "can") || strings.HasPrefix(name, "vcan") {
		return driver.Open(name, log)
	}
	bus, err := canbus.OpenSLCAN(name, configSLCANBaud())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return driver.New(bus, log), nil
}

// find locates the actuator on any configured interface, pinging each in
// turn. The result is cached for the rest of the command.
func (f *fleet) find(ctx context.Context, id uint8) (*driver.Driver, error) {
	if d, ok := f.byID[id]; ok {
		return d, nil
	}

	fmt.Fprintf(os.Stderr, "Discovering actuator %d...\n", id)
	for _, name := range f.names {
		d, err := f.driverFor(name)
		if err != nil {
			f.log.Warn().Str("interface", name).Err(err).Msg("cannot open interface")
			continue
		}
		ok, err := d.Ping(ctx, id)
		if err != nil {
			f.log.Warn().Str("interface", name).Err(err).Msg("ping failed")
			continue
		}
		if ok {
			fmt.Fprintf(os.Stderr, "Found actuator %d on %s\n", id, name)
			f.byID[id] = d
			return d, nil
		}
	}
	return nil, fmt.Errorf("actuator %d not found on any interface (%s)", id, strings.Join(f.names, ", "))
}

// parseIDs parses a comma-separated actuator id list such as "11,12,13".
func parseIDs(s string) ([]uint8, error) {
	var ids []uint8
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid actuator id %q", part)
		}
		ids = append(ids, uint8(n))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no actuator ids given")
	}
	return ids, nil
}

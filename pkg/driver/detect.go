package driver

import (
	"errors"
	"fmt"

	"github.com/strideworks/robstride/pkg/actuator"
	"github.com/strideworks/robstride/pkg/params"
)

// DetectModelFromDump rebinds an actuator's scaling ranges from an
// already-collected parameter dump, sparing a second dump round trip.
func (d *Driver) DetectModelFromDump(id uint8, dump map[uint16][]byte) (actuator.Model, error) {
	c, ok := d.clients[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	model, err := modelFromDump(dump)
	if err != nil {
		return 0, fmt.Errorf("actuator %d: %w", id, err)
	}
	c.setModel(model)
	return model, nil
}

// modelFromDump extracts the firmware version from a parameter dump and maps
// it to the actuator model.
func modelFromDump(dump map[uint16][]byte) (actuator.Model, error) {
	raw, ok := dump[params.CodeAppVersion]
	if !ok {
		return 0, errors.New("dump has no AppCodeVersion parameter")
	}
	version, ok := params.FirmwareVersion(raw)
	if !ok {
		return 0, errors.New("unreadable firmware version in dump")
	}
	model, err := actuator.DetectModel(version)
	if err != nil {
		return 0, fmt.Errorf("detect model: %w", err)
	}
	return model, nil
}

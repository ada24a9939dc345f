//go:build !linux

package canbus

import "fmt"

// OpenSocketCAN is only available on Linux. Use an SLCAN adapter elsewhere.
func OpenSocketCAN(name string) (Bus, error) {
	return nil, fmt.Errorf("socketcan interface %s: not supported on this platform", name)
}

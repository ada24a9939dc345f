// Package robstride provides CAN-based control of Robstride actuators.
//
// This is a Go driver and CLI for the Robstride RS00-RS04 servo actuators,
// covering discovery, MIT-mode control, feedback, and the firmware parameter
// interface, over either SocketCAN or an SLCAN USB adapter.
//
// # Installation
//
//	go install github.com/strideworks/robstride/cmd/robstride@latest
//
// # Usage
//
// Scan the bus for actuators:
//
//	robstride scan
//
// Then send a command:
//
//	robstride move --ids 11 --pos 0.5
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/robstride: CLI with scan, state, move, dump and related commands
//   - cmd/torque-sweep: fixed torque ramp harness for bench testing
//   - pkg/actuator: actuator models, commands, feedback and range scaling
//   - pkg/protocol: Robstride CAN frame encoding and decoding
//   - pkg/canbus: SocketCAN and SLCAN transports
//   - pkg/driver: high-level actuator driver
//   - pkg/params: firmware parameter table and value codec
//   - pkg/replay: policy log replay
//   - pkg/sweep: torque sweep runner
package robstride

package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
)

type Options struct {
	Interface string `short:"i" long:"interface" description:"CAN interface(s) to use, comma separated (default: can0,can1,can2,can3,can4)"`
	Verbose   bool   `short:"v" long:"verbose" description:"Trace CAN frames to stderr"`

	Scan    ScanCommand    `command:"scan" description:"Scan CAN interfaces for actuators"`
	State   StateCommand   `command:"state" description:"Get current state of actuators"`
	Enable  EnableCommand  `command:"enable" description:"Enable actuators for operation"`
	Disable DisableCommand `command:"disable" description:"Disable actuators (zero torque and gains)"`
	Move    MoveCommand    `command:"move" description:"Send movement commands to actuators"`
	Zero    ZeroCommand    `command:"zero" description:"Set the current position as mechanical zero"`
	Dump    DumpCommand    `command:"dump" description:"Dump actuator parameters with decoding"`
	Sine    SineCommand    `command:"sine" alias:"sine-test" description:"Run a sine wave position test"`
	Replay  ReplayCommand  `command:"replay" description:"Replay a recorded policy log as torque commands"`
	Watch   WatchCommand   `command:"watch" description:"Live view of actuator feedback"`
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Robstride actuator command line interface"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// setup loads the optional config file and builds the logger. Every command
// calls it first.
func setup() zerolog.Logger {
	loadConfig()

	level := zerolog.WarnLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// interfaces resolves the CAN interface list: flag, then config file, then
// the builtin default.
func (o *Options) interfaces() []string {
	raw := o.Interface
	if raw == "" {
		raw = configInterfaces()
	}
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Package params describes the Robstride firmware parameter space and
// decodes raw parameter data into typed values.
package params

// Type is the wire type of a parameter value.
type Type int

const (
	String Type = iota
	Uint8
	Uint16
	Uint32
	Int16
	Int32
	Float
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float:
		return "float"
	}
	return "unknown"
}

// Access describes who may change a parameter.
type Access int

const (
	ReadOnly Access = iota
	ReadWrite
	Settings // persisted, takes effect after save+reboot
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "R"
	case ReadWrite:
		return "RW"
	case Settings:
		return "S"
	}
	return "?"
}

// Info describes one firmware parameter.
type Info struct {
	Code        uint16
	Name        string
	Type        Type
	Access      Access
	Description string
}

// CodeAppVersion is the AppCodeVersion parameter, used to detect the
// actuator model from its firmware version.
const CodeAppVersion uint16 = 0x1003

var table = map[uint16]Info{
	// Device identification
	0x0000: {0x0000, "Name", String, ReadWrite, "Device name"},
	0x0001: {0x0001, "BarCode", String, ReadWrite, "Device barcode / serial"},

	// Boot / firmware info
	0x1000: {0x1000, "BootCodeVersion", String, ReadOnly, "Bootloader version string"},
	0x1001: {0x1001, "BootBuildDate", String, ReadOnly, "Bootloader build date"},
	0x1002: {0x1002, "BootBuildTime", String, ReadOnly, "Bootloader build time"},
	0x1003: {0x1003, "AppCodeVersion", String, ReadOnly, "Application firmware version"},
	0x1004: {0x1004, "AppGitVersion", String, ReadOnly, "Git commit hash of firmware"},
	0x1005: {0x1005, "AppBuildDate", String, ReadOnly, "Application build date"},
	0x1006: {0x1006, "AppBuildTime", String, ReadOnly, "Application build time"},
	0x1007: {0x1007, "AppCodeName", String, ReadOnly, "Firmware code name"},

	// Configuration
	0x2004: {0x2004, "echoFreHz", Uint32, ReadWrite, "Echo frequency (Hz)"},
	0x2005: {0x2005, "MechOffset", Float, Settings, "Mechanical encoder offset"},
	0x2007: {0x2007, "limit_torque", Float, ReadWrite, "Maximum torque limit (Nm)"},
	0x2008: {0x2008, "I_FW_MAX", Float, ReadWrite, "Field-weakening current max"},
	0x2009: {0x2009, "motor_baud", Uint8, Settings, "Baud-rate configuration flag"},
	0x200A: {0x200A, "CAN_ID", Uint8, Settings, "Node CAN id"},
	0x200B: {0x200B, "CAN_MASTER", Uint8, Settings, "Master CAN id"},
	0x200C: {0x200C, "CAN_TIMEOUT", Uint32, ReadWrite, "CAN timeout threshold (us)"},
	0x2011: {0x2011, "cur_filt_gain", Float, ReadWrite, "Current-loop filter gain"},
	0x2012: {0x2012, "cur_kp", Float, ReadWrite, "Current-loop Kp"},
	0x2013: {0x2013, "cur_ki", Float, ReadWrite, "Current-loop Ki"},
	0x2014: {0x2014, "spd_kp", Float, ReadWrite, "Speed-loop Kp"},
	0x2015: {0x2015, "spd_ki", Float, ReadWrite, "Speed-loop Ki"},
	0x2016: {0x2016, "loc_kp", Float, ReadWrite, "Position-loop Kp"},
	0x2017: {0x2017, "spd_filt_gain", Float, ReadWrite, "Speed-loop filter gain"},
	0x2018: {0x2018, "limit_spd", Float, ReadWrite, "Maximum speed limit (location mode)"},
	0x2019: {0x2019, "limit_cur", Float, ReadWrite, "Current limit (loc/vel modes)"},
	0x201C: {0x201C, "position_offset", Float, ReadWrite, "High-speed segment offset"},
	0x201D: {0x201D, "chasu_angle_offset", Float, ReadWrite, "Low-speed segment offset"},
	0x201E: {0x201E, "zero_sta", Float, ReadWrite, "Zero-marker status"},

	// Timing diagnostics
	0x3000: {0x3000, "timeUse0", Float, ReadOnly, "Benchmark timer 0 (us)"},
	0x3001: {0x3001, "timeUse1", Float, ReadOnly, "Benchmark timer 1 (us)"},
	0x3002: {0x3002, "timeUse2", Uint16, ReadOnly, "Benchmark timer 2 (us)"},
	0x3003: {0x3003, "timeUse3", Uint16, ReadOnly, "Benchmark timer 3 (us)"},

	// Telemetry
	0x3004: {0x3004, "encoderRaw", Uint16, ReadOnly, "Magnetic encoder raw sample"},
	0x3005: {0x3005, "mcuTemp", Uint16, ReadOnly, "MCU internal temperature (x0.1 C)"},
	0x3006: {0x3006, "motorTemp", Int16, ReadOnly, "Motor NTC temperature (x0.1 C)"},
	0x3007: {0x3007, "vBus_mv", Int16, ReadOnly, "Bus voltage (mV)"},
	0x300A: {0x300A, "adc1Raw", Int32, ReadOnly, "ADC channel 1 raw value"},
	0x300B: {0x300B, "adc2Raw", Int32, ReadOnly, "ADC channel 2 raw value"},
	0x300C: {0x300C, "VBUS", Uint16, ReadOnly, "Bus voltage mirror (mV)"},
	0x300E: {0x300E, "cmdIq", Float, ReadOnly, "Commanded iq (A)"},
	0x300F: {0x300F, "cmdLocRef", Float, ReadOnly, "Commanded position reference"},
	0x3010: {0x3010, "cmdSpdRef", Float, ReadOnly, "Commanded speed reference"},
	0x3011: {0x3011, "cmdTorque", Float, ReadOnly, "Commanded torque (Nm)"},
}

// Lookup returns the descriptor for a parameter code.
func Lookup(code uint16) (Info, bool) {
	info, ok := table[code]
	return info, ok
}

// Codes returns every known parameter code, unsorted.
func Codes() []uint16 {
	codes := make([]uint16, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	return codes
}

// Package sweep steps an actuator through a fixed torque ramp by invoking
// the robstride CLI once per step. It reproduces the bench script used to
// verify torque response: ramp up in 0.5 Nm steps to 7 Nm, then drop back
// to zero.
package sweep

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// TorqueSequence is the fixed ramp, consumed in order exactly once per run.
var TorqueSequence = []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 5.5, 6, 6.5, 7, 0}

const (
	// DefaultExecutable is the control CLI invoked for each step.
	DefaultExecutable = "robstride"
	// DefaultActuatorID is the bench actuator.
	DefaultActuatorID = 11
	// DefaultPause is the settle time after each step, including the last.
	DefaultPause = time.Second
)

// Runner performs a torque sweep. Exec and Sleep are injectable so tests can
// record invocations without spawning processes or waiting.
type Runner struct {
	Executable string
	ActuatorID int
	Pause      time.Duration
	Sequence   []float64
	Out        io.Writer

	Exec  func(name string, args ...string) error
	Sleep func(d time.Duration)
}

// New returns a Runner with the bench defaults.
func New() *Runner {
	return &Runner{
		Executable: DefaultExecutable,
		ActuatorID: DefaultActuatorID,
		Pause:      DefaultPause,
		Sequence:   TorqueSequence,
		Out:        os.Stdout,
		Exec:       runCommand,
		Sleep:      time.Sleep,
	}
}

// Run executes the sweep. Each step invokes the control CLI with zero gains
// and the step's feedforward torque, then pauses. Step failures are ignored
// so a flaky bus never leaves the ramp half done; the exit status of the
// final invocation is returned, shell-style.
func (r *Runner) Run() int {
	id := strconv.Itoa(r.ActuatorID)

	var lastErr error
	for _, torque := range r.Sequence {
		value := formatTorque(torque)
		fmt.Fprintf(r.Out, "Setting torque to %s\n", value)
		// The doubled --kp mirrors the original bench script verbatim;
		// the CLI takes the last occurrence, so both zeros are harmless.
		lastErr = r.Exec(r.Executable,
			"move", "--ids", id, "--kp", "0", "--kp", "0", "--torque", value)
		r.Sleep(r.Pause)
	}
	return exitCode(lastErr)
}

// formatTorque renders values the way the bench script wrote them: no
// trailing zeros, so 0.5 but plain 7.
func formatTorque(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func runCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

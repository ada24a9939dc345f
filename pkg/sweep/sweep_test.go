package sweep

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type call struct {
	name string
	args []string
}

func testRunner() (*Runner, *[]call, *[]time.Duration, *bytes.Buffer) {
	r := New()
	var calls []call
	var sleeps []time.Duration
	var out bytes.Buffer
	r.Out = &out
	r.Exec = func(name string, args ...string) error {
		calls = append(calls, call{name, args})
		return nil
	}
	r.Sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return r, &calls, &sleeps, &out
}

func TestRunInvokesEveryStepInOrder(t *testing.T) {
	r, calls, _, _ := testRunner()

	if code := r.Run(); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}

	want := []string{"0", "0.5", "1", "1.5", "2", "2.5", "3", "3.5", "4", "4.5", "5", "5.5", "6", "6.5", "7", "0"}
	if len(*calls) != len(want) {
		t.Fatalf("got %d invocations, want %d", len(*calls), len(want))
	}
	for i, c := range *calls {
		if c.name != "robstride" {
			t.Errorf("step %d: executable %q, want robstride", i, c.name)
		}
		wantArgs := []string{"move", "--ids", "11", "--kp", "0", "--kp", "0", "--torque", want[i]}
		if len(c.args) != len(wantArgs) {
			t.Fatalf("step %d: args %v, want %v", i, c.args, wantArgs)
		}
		for j := range wantArgs {
			if c.args[j] != wantArgs[j] {
				t.Errorf("step %d arg %d: %q, want %q", i, j, c.args[j], wantArgs[j])
			}
		}
	}
}

func TestRunPausesAfterEveryStep(t *testing.T) {
	r, _, sleeps, _ := testRunner()
	r.Run()

	// One pause per step, including the final one.
	if len(*sleeps) != len(TorqueSequence) {
		t.Fatalf("got %d pauses, want %d", len(*sleeps), len(TorqueSequence))
	}
	for i, d := range *sleeps {
		if d != time.Second {
			t.Errorf("pause %d = %v, want 1s", i, d)
		}
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	r, calls, _, _ := testRunner()
	base := r.Exec
	r.Exec = func(name string, args ...string) error {
		base(name, args...)
		if len(*calls) == 5 {
			return errors.New("bus glitch")
		}
		return nil
	}

	if code := r.Run(); code != 0 {
		t.Fatalf("Run() = %d, want 0 (last step succeeded)", code)
	}
	if len(*calls) != len(TorqueSequence) {
		t.Errorf("got %d invocations, want %d despite the mid-run failure", len(*calls), len(TorqueSequence))
	}
}

func TestRunReturnsLastExitStatus(t *testing.T) {
	r, _, _, _ := testRunner()
	r.Exec = func(name string, args ...string) error {
		return errors.New("not an ExitError")
	}
	if code := r.Run(); code != 1 {
		t.Errorf("Run() = %d, want 1 for non-exit errors", code)
	}
}

func TestRunPrintsEachValue(t *testing.T) {
	r, _, _, out := testRunner()
	r.Run()

	for _, v := range []string{"0", "0.5", "7"} {
		line := fmt.Sprintf("Setting torque to %s\n", v)
		if !strings.Contains(out.String(), line) {
			t.Errorf("output missing %q", line)
		}
	}
	if strings.Contains(out.String(), "7.0") {
		t.Error("whole torques should print without a decimal part")
	}
}

func TestFormatTorque(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{0.5, "0.5"},
		{7, "7"},
		{6.5, "6.5"},
	}
	for _, tt := range tests {
		if got := formatTorque(tt.v); got != tt.want {
			t.Errorf("formatTorque(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

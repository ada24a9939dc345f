package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/robstride/pkg/actuator"
)

const testMapping = `{
	"kinfer2motorid": {"0": 11, "1": 12},
	"motorid2type": {"11": "RS02", "12": "RS03"},
	"motortype2ktNmA": {"RS02": 1.4, "RS03": 2.5}
}`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping(writeMapping(t, testMapping))
	require.NoError(t, err)

	require.Equal(t, uint8(11), m.JointToMotor[0])
	require.Equal(t, uint8(12), m.JointToMotor[1])
	require.Equal(t, actuator.RS02, m.MotorModel[11])
	require.Equal(t, actuator.RS03, m.MotorModel[12])
	require.Equal(t, 1.4, m.MotorKt[11])
	require.Equal(t, 2.5, m.MotorKt[12])
}

func TestLoadMappingUnknownModel(t *testing.T) {
	bad := `{
		"kinfer2motorid": {"0": 11},
		"motorid2type": {"11": "RS99"},
		"motortype2ktNmA": {"RS99": 1.0}
	}`
	_, err := LoadMapping(writeMapping(t, bad))
	require.ErrorContains(t, err, "unknown actuator model")
}

func TestLoadMappingMissingKt(t *testing.T) {
	bad := `{
		"kinfer2motorid": {"0": 11},
		"motorid2type": {"11": "RS02"},
		"motortype2ktNmA": {}
	}`
	_, err := LoadMapping(writeMapping(t, bad))
	require.ErrorContains(t, err, "torque constant")
}

func loadTestMapping(t *testing.T) Mapping {
	t.Helper()
	m, err := LoadMapping(writeMapping(t, testMapping))
	require.NoError(t, err)
	return m
}

func TestParsePolicy(t *testing.T) {
	m := loadTestMapping(t)
	log := `{"t_us": 1000000, "joint_amps": [1.0, -0.5]}
{"t_us": 1020000, "joint_amps": [2.0, 0.0]}

{"t_us": 1040000, "joint_amps": [0.0, 1.0]}
`
	samples, err := ParsePolicy(strings.NewReader(log), m, 1.0)
	require.NoError(t, err)
	require.Len(t, samples, 3)

	// Timestamps are relative to the first row.
	require.Equal(t, time.Duration(0), samples[0].At)
	require.Equal(t, 20*time.Millisecond, samples[1].At)
	require.Equal(t, 40*time.Millisecond, samples[2].At)

	// Torque = amps * scale * Kt for the mapped motor.
	require.InDelta(t, 1.0*1.4, samples[0].Torques[11], 1e-9)
	require.InDelta(t, -0.5*2.5, samples[0].Torques[12], 1e-9)
	require.InDelta(t, 2.0*1.4, samples[1].Torques[11], 1e-9)
}

func TestParsePolicyScale(t *testing.T) {
	m := loadTestMapping(t)
	log := `{"t_us": 0, "joint_amps": [1.0, 1.0]}`
	samples, err := ParsePolicy(strings.NewReader(log), m, 0.5)
	require.NoError(t, err)
	require.InDelta(t, 0.5*1.4, samples[0].Torques[11], 1e-9)
}

func TestParsePolicyUnmappedJoint(t *testing.T) {
	m := loadTestMapping(t)
	log := `{"t_us": 0, "joint_amps": [1.0, 1.0, 1.0]}`
	_, err := ParsePolicy(strings.NewReader(log), m, 1.0)
	require.ErrorContains(t, err, "no motor mapping")
}

func TestParsePolicyInconsistentMotorSet(t *testing.T) {
	m := loadTestMapping(t)
	log := `{"t_us": 0, "joint_amps": [1.0, 1.0]}
{"t_us": 20000, "joint_amps": [1.0]}`
	_, err := ParsePolicy(strings.NewReader(log), m, 1.0)
	require.ErrorContains(t, err, "drives")
}

func TestParsePolicyEmpty(t *testing.T) {
	m := loadTestMapping(t)
	_, err := ParsePolicy(strings.NewReader(""), m, 1.0)
	require.ErrorContains(t, err, "empty")
}

func TestMotors(t *testing.T) {
	m := loadTestMapping(t)
	log := `{"t_us": 0, "joint_amps": [1.0, 1.0]}`
	samples, err := ParsePolicy(strings.NewReader(log), m, 1.0)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint8{11, 12}, Motors(samples))
}

type recordingCommander struct {
	moves []struct {
		id  uint8
		cmd actuator.Command
	}
	fail map[uint8]bool
}

func (c *recordingCommander) Move(ctx context.Context, id uint8, cmd actuator.Command) error {
	c.moves = append(c.moves, struct {
		id  uint8
		cmd actuator.Command
	}{id, cmd})
	if c.fail[id] {
		return context.DeadlineExceeded
	}
	return nil
}

func TestRunSendsTorqueCommands(t *testing.T) {
	samples := []Sample{
		{At: 0, Torques: map[uint8]float64{11: 1.5}},
		{At: time.Millisecond, Torques: map[uint8]float64{11: -2.0}},
	}
	c := &recordingCommander{}
	require.NoError(t, Run(context.Background(), c, samples, zerolog.Nop()))

	require.Len(t, c.moves, 2)
	require.Equal(t, uint8(11), c.moves[0].id)
	require.Equal(t, actuator.Command{Torque: 1.5}, c.moves[0].cmd)
	require.Equal(t, actuator.Command{Torque: -2.0}, c.moves[1].cmd)
}

func TestRunContinuesPastCommandFailures(t *testing.T) {
	samples := []Sample{
		{At: 0, Torques: map[uint8]float64{11: 1.0}},
		{At: time.Millisecond, Torques: map[uint8]float64{11: 2.0}},
	}
	c := &recordingCommander{fail: map[uint8]bool{11: true}}
	require.NoError(t, Run(context.Background(), c, samples, zerolog.Nop()))
	require.Len(t, c.moves, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	samples := []Sample{
		{At: 0, Torques: map[uint8]float64{11: 1.0}},
		{At: time.Hour, Torques: map[uint8]float64{11: 2.0}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &recordingCommander{}

	done := make(chan error, 1)
	go func() { done <- Run(ctx, c, samples, zerolog.Nop()) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-done, context.Canceled)
	require.Len(t, c.moves, 1)
}

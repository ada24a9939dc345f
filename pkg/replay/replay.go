// Package replay feeds recorded policy outputs back to actuators as timed
// torque commands.
//
// A policy log is NDJSON: one row per control tick, with a "t_us" microsecond
// timestamp and a "joint_amps" array of per-joint phase currents. A mapping
// file relates policy joint indices to motor ids, motor ids to actuator
// models, and models to torque constants (Nm/A) so currents become torques.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/strideworks/robstride/pkg/actuator"
)

// Mapping relates policy joint indices to physical actuators.
type Mapping struct {
	JointToMotor map[int]uint8
	MotorModel   map[uint8]actuator.Model
	MotorKt      map[uint8]float64 // Nm per A
}

// rawMapping is the params.json wire form: JSON objects force string keys.
type rawMapping struct {
	JointToMotor map[string]int     `json:"kinfer2motorid"`
	MotorToType  map[string]string  `json:"motorid2type"`
	TypeToKt     map[string]float64 `json:"motortype2ktNmA"`
}

// LoadMapping reads a params.json mapping file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mapping{}, fmt.Errorf("read mapping file: %w", err)
	}

	var raw rawMapping
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mapping{}, fmt.Errorf("parse mapping file: %w", err)
	}

	m := Mapping{
		JointToMotor: make(map[int]uint8, len(raw.JointToMotor)),
		MotorModel:   make(map[uint8]actuator.Model, len(raw.MotorToType)),
		MotorKt:      make(map[uint8]float64, len(raw.MotorToType)),
	}

	for joint, motor := range raw.JointToMotor {
		idx, err := strconv.Atoi(joint)
		if err != nil {
			return Mapping{}, fmt.Errorf("joint index %q: %w", joint, err)
		}
		m.JointToMotor[idx] = uint8(motor)
	}

	for motor, typeName := range raw.MotorToType {
		id, err := strconv.Atoi(motor)
		if err != nil {
			return Mapping{}, fmt.Errorf("motor id %q: %w", motor, err)
		}
		model, err := actuator.ParseModel(typeName)
		if err != nil {
			return Mapping{}, fmt.Errorf("motor %s: %w", motor, err)
		}
		kt, ok := raw.TypeToKt[typeName]
		if !ok {
			return Mapping{}, fmt.Errorf("no torque constant for model %s", typeName)
		}
		m.MotorModel[uint8(id)] = model
		m.MotorKt[uint8(id)] = kt
	}

	return m, nil
}

// Sample is one tick of the replay schedule.
type Sample struct {
	At      time.Duration // relative to the first row
	Torques map[uint8]float64
}

type policyRow struct {
	TimeUS    int64     `json:"t_us"`
	JointAmps []float64 `json:"joint_amps"`
}

// ParsePolicy reads an NDJSON policy log into a timed schedule. Currents are
// converted to torques through the mapping's Kt and scaled by scale.
func ParsePolicy(r io.Reader, m Mapping, scale float64) ([]Sample, error) {
	var samples []Sample
	var t0 int64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}

		var row policyRow
		if err := json.Unmarshal(text, &row); err != nil {
			return nil, fmt.Errorf("policy line %d: %w", line, err)
		}

		if len(samples) == 0 {
			t0 = row.TimeUS
		}

		s := Sample{
			At:      time.Duration(row.TimeUS-t0) * time.Microsecond,
			Torques: make(map[uint8]float64, len(row.JointAmps)),
		}
		for joint, amps := range row.JointAmps {
			motor, ok := m.JointToMotor[joint]
			if !ok {
				return nil, fmt.Errorf("policy line %d: joint %d has no motor mapping", line, joint)
			}
			s.Torques[motor] = amps * scale * m.MotorKt[motor]
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("policy log is empty")
	}

	// Every row must drive the same motor set, or the replay would leave
	// some motors coasting mid-schedule.
	for i, s := range samples {
		if len(s.Torques) != len(samples[0].Torques) {
			return nil, fmt.Errorf("policy line %d drives %d motors, first line drives %d",
				i+1, len(s.Torques), len(samples[0].Torques))
		}
	}

	return samples, nil
}

// Motors returns the set of motor ids a schedule drives.
func Motors(samples []Sample) []uint8 {
	if len(samples) == 0 {
		return nil
	}
	ids := make([]uint8, 0, len(samples[0].Torques))
	for id := range samples[0].Torques {
		ids = append(ids, id)
	}
	return ids
}

// Commander is the slice of the driver a replay needs.
type Commander interface {
	Move(ctx context.Context, id uint8, cmd actuator.Command) error
}

// Run plays a schedule against the commander, pacing commands to the
// recorded timestamps. Individual command failures are logged and skipped so
// one unreachable motor does not desync the rest of the schedule.
func Run(ctx context.Context, c Commander, samples []Sample, log zerolog.Logger) error {
	start := time.Now()
	for _, s := range samples {
		if wait := s.At - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		for id, torque := range s.Torques {
			if err := c.Move(ctx, id, actuator.Command{Torque: torque}); err != nil {
				log.Warn().Uint8("id", id).Err(err).Msg("replay command failed")
			}
		}
	}
	return nil
}

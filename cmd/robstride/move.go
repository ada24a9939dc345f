package main

import (
	"context"
	"fmt"

	"github.com/strideworks/robstride/pkg/actuator"
)

type MoveCommand struct {
	IDs    string   `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Pos    *float64 `long:"pos" description:"Target position (rad)"`
	Vel    *float64 `long:"vel" description:"Target velocity (rad/s)"`
	Torque *float64 `long:"torque" description:"Feedforward torque (Nm)"`
	Kp     *float64 `long:"kp" description:"Position gain (default 50, only with --pos)"`
	Kd     *float64 `long:"kd" description:"Damping gain (default 2, only with --pos or --vel)"`
}

func (c *MoveCommand) Execute(args []string) error {
	log := setup()
	ctx := context.Background()

	if c.Pos == nil && c.Vel == nil && c.Torque == nil {
		return fmt.Errorf("nothing to do: give at least one of --pos, --vel, --torque")
	}

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}

	var cmd actuator.Command
	if c.Pos != nil {
		cmd.Position = *c.Pos
	}
	if c.Vel != nil {
		cmd.Velocity = *c.Vel
	}
	if c.Torque != nil {
		cmd.Torque = *c.Torque
	}

	// Gains only make sense when there is a target to track. A bare torque
	// command with default gains would fight the feedforward.
	if c.Pos != nil {
		cmd.Kp = 50
		if c.Kp != nil {
			cmd.Kp = *c.Kp
		}
	}
	if c.Pos != nil || c.Vel != nil {
		cmd.Kd = 2
		if c.Kd != nil {
			cmd.Kd = *c.Kd
		}
	}

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	for _, id := range ids {
		d, err := f.find(ctx, id)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		if err := d.Move(ctx, id, cmd); err != nil {
			fmt.Printf("Actuator %d move failed: %v\n", id, err)
			continue
		}
		fmt.Printf("Actuator %d: pos=%.3f vel=%.3f torque=%.3f kp=%.1f kd=%.1f\n",
			id, cmd.Position, cmd.Velocity, cmd.Torque, cmd.Kp, cmd.Kd)
	}
	return nil
}

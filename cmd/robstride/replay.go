package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/strideworks/robstride/pkg/actuator"
	"github.com/strideworks/robstride/pkg/replay"
)

type ReplayCommand struct {
	Policy  string  `long:"policy" required:"true" description:"NDJSON policy log to replay"`
	Mapping string  `long:"mapping" required:"true" description:"params.json joint/motor mapping file"`
	Scale   float64 `long:"scale" default:"1.0" description:"Torque scale factor applied to every command"`
	DryRun  bool    `long:"dry-run" description:"Parse and report the schedule without touching motors"`
}

func (c *ReplayCommand) Execute(args []string) error {
	log := setup()

	mapping, err := replay.LoadMapping(c.Mapping)
	if err != nil {
		return err
	}

	file, err := os.Open(c.Policy)
	if err != nil {
		return fmt.Errorf("open policy log: %w", err)
	}
	defer file.Close()

	samples, err := replay.ParsePolicy(file, mapping, c.Scale)
	if err != nil {
		return err
	}

	motors := replay.Motors(samples)
	duration := samples[len(samples)-1].At
	fmt.Printf("Loaded %d samples over %s driving motors %v\n", len(samples), duration, motors)

	if c.DryRun {
		fmt.Println("Dry run, not sending commands.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	fc := &fleetCommander{fleet: f}
	for _, id := range motors {
		d, err := f.find(ctx, id)
		if err != nil {
			return err
		}
		if model, ok := mapping.MotorModel[id]; ok {
			if err := d.SetModel(id, model); err != nil {
				return err
			}
		}
		if err := d.Enable(ctx, id); err != nil {
			return fmt.Errorf("enable actuator %d: %w", id, err)
		}
	}

	defer func() {
		for _, id := range motors {
			if d, err := f.find(context.Background(), id); err == nil {
				d.Disable(context.Background(), id)
			}
		}
		fmt.Println("Motors disabled.")
	}()

	fmt.Println("Replaying... (ctrl-c to stop)")
	if err := replay.Run(ctx, fc, samples, log); err != nil {
		if err == context.Canceled {
			fmt.Println("Interrupted.")
			return nil
		}
		return err
	}
	fmt.Println(successStyle.Render("Replay complete."))
	return nil
}

// fleetCommander routes replay commands to whichever interface each motor
// answered on.
type fleetCommander struct {
	fleet *fleet
}

func (fc *fleetCommander) Move(ctx context.Context, id uint8, cmd actuator.Command) error {
	d, err := fc.fleet.find(ctx, id)
	if err != nil {
		return err
	}
	return d.Move(ctx, id, cmd)
}

package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/strideworks/robstride/pkg/actuator"
)

type SineCommand struct {
	IDs       string  `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Amplitude float64 `long:"amplitude" default:"0.5" description:"Peak position excursion (rad)"`
	Frequency float64 `long:"frequency" default:"0.5" description:"Oscillation frequency (Hz)"`
	Duration  float64 `long:"duration" default:"10" description:"Test duration in seconds (0 = until interrupted)"`
	Kp        float64 `long:"kp" default:"50" description:"Position gain"`
	Kd        float64 `long:"kd" default:"2" description:"Damping gain"`
}

func (c *SineCommand) Execute(args []string) error {
	log := setup()

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}
	if c.Amplitude <= 0 || c.Frequency <= 0 {
		return fmt.Errorf("amplitude and frequency must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.Duration*float64(time.Second)))
		defer cancel()
	}

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	// Enable everything up front; a motor that can't be reached shouldn't
	// leave the others half-running.
	for _, id := range ids {
		d, err := f.find(ctx, id)
		if err != nil {
			return err
		}
		if err := d.Enable(ctx, id); err != nil {
			return fmt.Errorf("enable actuator %d: %w", id, err)
		}
	}

	fmt.Printf("Sine test: %.2f rad @ %.2f Hz on %v (ctrl-c to stop)\n", c.Amplitude, c.Frequency, ids)

	// Leave the motors limp whatever way the loop ends.
	defer func() {
		for _, id := range ids {
			if d, err := f.find(context.Background(), id); err == nil {
				d.Disable(context.Background(), id)
			}
		}
		fmt.Println("Motors disabled.")
	}()

	start := time.Now()
	lastStatus := start
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			pos := c.Amplitude * math.Sin(2*math.Pi*c.Frequency*t)
			cmd := actuator.Command{Position: pos, Kp: c.Kp, Kd: c.Kd}
			for _, id := range ids {
				d, err := f.find(ctx, id)
				if err != nil {
					continue
				}
				if err := d.Move(ctx, id, cmd); err != nil {
					log.Warn().Uint8("id", id).Err(err).Msg("sine command failed")
				}
			}
			if now.Sub(lastStatus) >= time.Second {
				fmt.Printf("  t=%5.1fs  target=%+.3f rad\n", t, pos)
				lastStatus = now
			}
		}
	}
}

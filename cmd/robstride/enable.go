package main

import (
	"context"
	"fmt"
)

type EnableCommand struct {
	IDs string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
}

func (c *EnableCommand) Execute(args []string) error {
	return togglePower(c.IDs, true)
}

type DisableCommand struct {
	IDs string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
}

func (c *DisableCommand) Execute(args []string) error {
	return togglePower(c.IDs, false)
}

func togglePower(idList string, enable bool) error {
	log := setup()
	ctx := context.Background()

	ids, err := parseIDs(idList)
	if err != nil {
		return err
	}

	verb, done, summary := "Disabling", "disabled", "Disabled"
	if enable {
		verb, done, summary = "Enabling", "enabled", "Enabled"
	}
	fmt.Printf("%s actuators: %v\n", verb, ids)

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	succeeded := 0
	for _, id := range ids {
		d, err := f.find(ctx, id)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		if enable {
			err = d.Enable(ctx, id)
		} else {
			err = d.Disable(ctx, id)
		}
		if err != nil {
			fmt.Printf("Actuator %d %s failed: %v\n", id, done, err)
			continue
		}
		fmt.Printf("Actuator %d %s on %s\n", id, done, d.InterfaceName())
		succeeded++
	}

	fmt.Printf("%s %d/%d actuators\n", summary, succeeded, len(ids))
	return nil
}

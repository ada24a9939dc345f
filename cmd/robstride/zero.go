package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

type ZeroCommand struct {
	IDs  string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Yes  bool   `short:"y" long:"yes" description:"Skip the confirmation prompt"`
	Save bool   `long:"save" description:"Persist the new zero to flash afterwards"`
}

func (c *ZeroCommand) Execute(args []string) error {
	log := setup()
	ctx := context.Background()

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}

	if !c.Yes {
		var confirmed bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Set the current position of actuators %v as mechanical zero?", ids)).
					Description("Hold the joints where you want zero to be.").
					Affirmative("Zero them").
					Negative("Cancel").
					Value(&confirmed),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Cancelled.")
			return nil
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
		if err := d.ZeroPosition(ctx, id); err != nil {
			fmt.Printf("Actuator %d zero failed: %v\n", id, err)
			continue
		}
		if c.Save {
			if err := d.SaveParameters(ctx, id); err != nil {
				fmt.Printf("Actuator %d zeroed, but save failed: %v\n", id, err)
				continue
			}
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Actuator %d zeroed", id)))
	}
	return nil
}

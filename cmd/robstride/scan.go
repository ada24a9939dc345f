package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/strideworks/robstride/pkg/driver"
)

type ScanCommand struct {
	StartID int    `long:"start-id" description:"Start of scan range (default from config, 10)"`
	EndID   int    `long:"end-id" description:"End of scan range (default from config, 50)"`
	Format  string `long:"format" choice:"table" choice:"json" default:"table" description:"Output format"`
}

func (c *ScanCommand) Execute(args []string) error {
	log := setup()
	ctx := context.Background()

	start, end := c.StartID, c.EndID
	if start == 0 && end == 0 {
		start, end = configScanRange()
	}
	if start < 0 || end > 0xFF || start > end {
		return fmt.Errorf("invalid scan range %d-%d", start, end)
	}

	if c.Format == "json" {
		found := driver.ScanInterfaces(ctx, opts.interfaces(), uint8(start), uint8(end), log)
		return json.NewEncoder(os.Stdout).Encode(found)
	}

	found := make(map[string][]uint8)
	total := 0
	for _, name := range opts.interfaces() {
		d, err := openDriver(name, log)
		if err != nil {
			fmt.Printf("  %s\n", dimStyle.Render(fmt.Sprintf("%s: %v", name, err)))
			continue
		}

		fmt.Printf("Scanning %s (IDs %d-%d)...\n", name, start, end)
		ids, err := d.Scan(ctx, uint8(start), uint8(end))
		d.Close()
		if err != nil {
			log.Warn().Str("interface", name).Err(err).Msg("scan failed")
		}

		if len(ids) > 0 {
			found[name] = ids
			total += len(ids)
			fmt.Printf("  Found %d actuators: %v\n", len(ids), ids)
		} else {
			fmt.Println("  No actuators found")
		}
	}

	fmt.Println()
	fmt.Printf("Scan complete: found %d actuators across %d interfaces\n", total, len(found))
	if total == 0 {
		fmt.Println("Make sure CAN interfaces are up: sudo ip link set can0 up")
	} else {
		fmt.Println(successStyle.Render("Done."))
	}
	return nil
}

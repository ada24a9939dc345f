package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/strideworks/robstride/pkg/driver"
	"github.com/strideworks/robstride/pkg/params"
)

type DumpCommand struct {
	IDs    string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Param  string `long:"param" description:"Read a single parameter by hex code (e.g. 0x2007) instead of dumping"`
	Filter string `long:"filter" description:"Only show parameters whose name contains this substring"`
	Format string `long:"format" choice:"table" choice:"json" choice:"raw" default:"table" description:"Output format"`
}

type paramRow struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Access string `json:"access"`
	Value  string `json:"value"`
	Raw    string `json:"raw,omitempty"`
}

func (c *DumpCommand) Execute(args []string) error {
	log := setup()
	ctx := context.Background()

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	for _, id := range ids {
		d, err := f.find(ctx, id)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		if c.Param != "" {
			if err := c.readOne(ctx, d, id); err != nil {
				fmt.Printf("Actuator %d: %v\n", id, err)
			}
			continue
		}
		if err := c.dumpAll(ctx, d, id); err != nil {
			fmt.Printf("Actuator %d: %v\n", id, err)
		}
	}
	return nil
}

func (c *DumpCommand) readOne(ctx context.Context, d *driver.Driver, id uint8) error {
	code, err := parseParamCode(c.Param)
	if err != nil {
		return err
	}
	raw, err := d.ReadParameter(ctx, id, code)
	if err != nil {
		return err
	}
	row := decodeRow(code, raw[:])
	if c.Format == "json" {
		return json.NewEncoder(os.Stdout).Encode(map[string]paramRow{fmt.Sprintf("%d", id): row})
	}
	fmt.Printf("Actuator %d %s (%s) = %s\n", id, row.Name, row.Code, row.Value)
	return nil
}

func (c *DumpCommand) dumpAll(ctx context.Context, d *driver.Driver, id uint8) error {
	dump, err := d.DumpParameters(ctx, id)
	if err != nil {
		return err
	}
	if len(dump) == 0 {
		return fmt.Errorf("no parameters received")
	}

	// The dump carries the firmware version; use it to pin the model so
	// later move/state commands scale correctly.
	if model, err := d.DetectModelFromDump(id, dump); err == nil {
		fmt.Fprintf(os.Stderr, "Actuator %d identified as %s\n", id, model)
	}

	codes := make([]uint16, 0, len(dump))
	for code := range dump {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	var rows []paramRow
	for _, code := range codes {
		row := decodeRow(code, dump[code])
		if c.Filter != "" && !strings.Contains(strings.ToLower(row.Name), strings.ToLower(c.Filter)) {
			continue
		}
		rows = append(rows, row)
	}

	switch c.Format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(rows)
	case "raw":
		for _, row := range rows {
			fmt.Printf("%s %s %s\n", row.Code, row.Name, row.Raw)
		}
		return nil
	}

	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	var data [][]string
	for _, row := range rows {
		data = append(data, []string{row.Code, row.Name, row.Type, row.Access, row.Value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Code", "Name", "Type", "Access", "Value").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})

	fmt.Println(headerStyle.Render(fmt.Sprintf("Actuator %d parameters (%d)", id, len(rows))))
	fmt.Println(t.Render())
	return nil
}

func decodeRow(code uint16, raw []byte) paramRow {
	row := paramRow{
		Code: fmt.Sprintf("0x%04X", code),
		Raw:  fmt.Sprintf("%x", raw),
	}
	info, known := params.Lookup(code)
	if !known {
		row.Name = "(unknown)"
		row.Type = "?"
		row.Access = "?"
		row.Value = row.Raw
		return row
	}
	row.Name = info.Name
	row.Type = info.Type.String()
	row.Access = info.Access.String()
	if v, err := params.Decode(info.Type, raw); err == nil {
		row.Value = v.String()
	} else {
		row.Value = row.Raw
	}
	return row
}

func parseParamCode(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid parameter code %q (want hex, e.g. 0x2007)", s)
	}
	return uint16(n), nil
}

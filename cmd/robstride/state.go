package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type StateCommand struct {
	IDs    string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Format string `long:"format" choice:"table" choice:"json" default:"table" description:"Output format"`
}

type stateRow struct {
	Interface   string  `json:"interface,omitempty"`
	Position    float64 `json:"position"`
	Velocity    float64 `json:"velocity"`
	Torque      float64 `json:"torque"`
	Temperature float64 `json:"temperature"`
	Faults      string  `json:"faults"`
	Mode        string  `json:"mode"`
	Kp          float64 `json:"kp"`
	Kd          float64 `json:"kd"`
	Error       string  `json:"error,omitempty"`
}

func (c *StateCommand) Execute(args []string) error {
	log := setup()
	ctx := context.Background()

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	rows := make(map[uint8]stateRow, len(ids))
	for _, id := range ids {
		d, err := f.find(ctx, id)
		if err != nil {
			rows[id] = stateRow{Error: err.Error()}
			continue
		}
		st, err := d.State(ctx, id)
		if err != nil {
			rows[id] = stateRow{Interface: d.InterfaceName(), Error: err.Error()}
			continue
		}
		rows[id] = stateRow{
			Interface:   d.InterfaceName(),
			Position:    st.Feedback.Position,
			Velocity:    st.Feedback.Velocity,
			Torque:      st.Feedback.Torque,
			Temperature: st.Feedback.Temperature,
			Faults:      st.Feedback.Faults.String(),
			Mode:        st.Feedback.Mode.String(),
			Kp:          st.Command.Kp,
			Kd:          st.Command.Kd,
		}
	}

	if c.Format == "json" {
		keyed := make(map[string]stateRow, len(rows))
		for id, row := range rows {
			keyed[fmt.Sprintf("%d", id)] = row
		}
		return json.NewEncoder(os.Stdout).Encode(keyed)
	}

	headerCell := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	var data [][]string
	for _, id := range ids {
		row := rows[id]
		if row.Error != "" {
			data = append(data, []string{fmt.Sprintf("%d", id), row.Interface,
				errorStyle.Render(row.Error), "", "", "", "", ""})
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%d", id),
			row.Interface,
			fmt.Sprintf("%6.3f", row.Position),
			fmt.Sprintf("%6.3f", row.Velocity),
			fmt.Sprintf("%6.3f", row.Torque),
			fmt.Sprintf("%5.1f", row.Temperature),
			row.Faults,
			row.Mode,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "Interface", "Pos (rad)", "Vel (rad/s)", "Torque (Nm)", "Temp (°C)", "Faults", "Mode").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		})

	fmt.Println(headerStyle.Render("Actuator States"))
	fmt.Println(t.Render())
	return nil
}

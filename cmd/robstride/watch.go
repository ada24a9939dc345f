package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/strideworks/robstride/pkg/actuator"
)

type WatchCommand struct {
	IDs string `long:"ids" required:"true" description:"Comma-separated actuator IDs (e.g. 11,12,13)"`
	Hz  int    `long:"hz" default:"20" description:"Feedback polling frequency"`
}

const (
	watchHeaderHeight = 2 // title + blank line
	watchLegendHeight = 2 // legend row + blank
	watchFooterHeight = 8 // value table
	watchBorderSize   = 2 // chart border
)

// One distinct color per actuator, assigned in id order.
var watchPalette = []string{"196", "208", "226", "46", "51", "201", "93", "214"}

var (
	watchTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	watchChartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	watchStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type feedbackMsg struct {
	id uint8
	fb actuator.Feedback
}

type pollErrMsg struct {
	id  uint8
	err error
}

type watchModel struct {
	ids      []uint8
	colors   map[uint8]string
	feedback chan tea.Msg
	chart    *streamlinechart.Model
	latest   map[uint8]actuator.Feedback
	errs     map[uint8]string
	width    int
	height   int
	quitting bool
}

func waitForFeedback(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

func (m *watchModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 16
	}
	width = m.width - watchBorderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - watchHeaderHeight - watchLegendHeight - watchFooterHeight - watchBorderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func initialWatchModel(ids []uint8, feedback chan tea.Msg) watchModel {
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(-4*math.Pi, 4*math.Pi),
	)

	colors := make(map[uint8]string, len(ids))
	for i, id := range ids {
		color := watchPalette[i%len(watchPalette)]
		colors[id] = color
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(fmt.Sprintf("%d", id), runes.ThinLineStyle, style)
	}

	return watchModel{
		ids:      ids,
		colors:   colors,
		feedback: feedback,
		chart:    &chart,
		latest:   make(map[uint8]actuator.Feedback),
		errs:     make(map[uint8]string),
	}
}

func (m watchModel) Init() tea.Cmd {
	return waitForFeedback(m.feedback)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case feedbackMsg:
		m.latest[msg.id] = msg.fb
		delete(m.errs, msg.id)
		m.chart.PushDataSet(fmt.Sprintf("%d", msg.id), msg.fb.Position)
		m.chart.DrawAll()
		return m, waitForFeedback(m.feedback)

	case pollErrMsg:
		m.errs[msg.id] = msg.err.Error()
		return m, waitForFeedback(m.feedback)
	}

	return m, nil
}

func (m watchModel) View() string {
	if m.quitting {
		return "Watch stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(watchTitleStyle.Render("Robstride Watch"))
	sb.WriteString(fmt.Sprintf(" - %d actuators", len(m.ids)))
	if m.width > 0 {
		sb.WriteString(watchStatusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(watchChartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(m.renderLegend())
	sb.WriteString("\n\n")

	sb.WriteString(m.renderValues())
	sb.WriteString("\n")
	sb.WriteString(watchStatusStyle.Render("Press 'q' to quit"))
	sb.WriteString("\n")

	return sb.String()
}

func (m watchModel) renderLegend() string {
	var items []string
	for _, id := range m.ids {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[id])).Bold(true)
		items = append(items, colorStyle.Render("━━")+fmt.Sprintf(" actuator %d", id))
	}
	return strings.Join(items, "  ")
}

func (m watchModel) renderValues() string {
	var lines []string
	for _, id := range m.ids {
		if errText, ok := m.errs[id]; ok {
			lines = append(lines, fmt.Sprintf("%3d  %s", id, errorStyle.Render(errText)))
			continue
		}
		fb, ok := m.latest[id]
		if !ok {
			lines = append(lines, fmt.Sprintf("%3d  %s", id, watchStatusStyle.Render("waiting...")))
			continue
		}
		lines = append(lines, fmt.Sprintf("%3d  pos %+7.3f  vel %+7.3f  tq %+7.3f  %5.1f°C  %s",
			id, fb.Position, fb.Velocity, fb.Torque, fb.Temperature, fb.Faults))
	}
	return strings.Join(lines, "\n")
}

func (c *WatchCommand) Execute(args []string) error {
	log := setup()

	ids, err := parseIDs(c.IDs)
	if err != nil {
		return err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if c.Hz < 1 || c.Hz > 200 {
		return fmt.Errorf("polling frequency must be 1-200 Hz")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFleet(opts.interfaces(), log)
	defer f.Close()

	// Discover before entering the alt screen so the progress lines stay
	// visible.
	for _, id := range ids {
		if _, err := f.find(ctx, id); err != nil {
			return err
		}
	}

	feedback := make(chan tea.Msg)
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(c.Hz))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			for _, id := range ids {
				d, err := f.find(ctx, id)
				if err != nil {
					continue
				}
				st, err := d.State(ctx, id)
				var msg tea.Msg
				if err != nil {
					msg = pollErrMsg{id: id, err: err}
				} else {
					msg = feedbackMsg{id: id, fb: st.Feedback}
				}
				select {
				case feedback <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	p := tea.NewProgram(initialWatchModel(ids, feedback), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		os.Exit(1)
	}
	return nil
}

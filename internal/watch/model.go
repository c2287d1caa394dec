package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/goe/goecharger"
)

// DefaultInterval is the default poll interval for the dashboard
const DefaultInterval = 5 * time.Second

// Messages for async operations
type tickMsg time.Time

type statusMsg struct {
	status goecharger.Status
	err    error
}

// keyMap defines key bindings for the dashboard
type keyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Quit},
	}
}

var defaultKeys = keyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the bubbletea model for the live status dashboard. It polls the
// charger on a fixed interval and renders the default status selection.
type Model struct {
	charger  *goecharger.Charger
	interval time.Duration

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	status    goecharger.Status
	err       error
	lastFetch time.Time
	loading   bool
}

// NewModel creates a dashboard model for the given charger
func NewModel(charger *goecharger.Charger, interval time.Duration) Model {
	if interval <= 0 {
		interval = DefaultInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = titleStyle

	return Model{
		charger:  charger,
		interval: interval,
		spinner:  s,
		help:     help.New(),
		keys:     defaultKeys,
		loading:  true,
	}
}

// Init starts the spinner and the first status fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchStatus())
}

// fetchStatus returns a command that polls the charger once
func (m Model) fetchStatus() tea.Cmd {
	charger := m.charger
	interval := m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		status, err := charger.GetStatus(ctx, goecharger.StatusDefault...)
		return statusMsg{status: status, err: err}
	}
}

// scheduleTick arms the next poll
func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.fetchStatus()
		}

	case statusMsg:
		m.loading = false
		m.lastFetch = time.Now()
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		return m, m.scheduleTick()

	case tickMsg:
		m.loading = true
		return m, m.fetchStatus()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("go-eCharger") + "  " + hostStyle.Render(m.charger.Host)
	if m.loading {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("✗ "+goecharger.ShortMessage(m.err)) + "\n")
		if m.status != nil {
			b.WriteString(hostStyle.Render("showing last known status") + "\n\n")
			b.WriteString(m.renderStatus())
		}
	case m.status == nil:
		b.WriteString(hostStyle.Render("waiting for first status...") + "\n")
	default:
		b.WriteString(m.renderStatus())
	}

	if !m.lastFetch.IsZero() {
		b.WriteString("\n" + footerStyle.Render(fmt.Sprintf("updated %s", m.lastFetch.Format("15:04:05"))) + "\n")
	}
	b.WriteString(m.help.View(m.keys))

	return boxStyle.Render(b.String())
}

// renderStatus renders the decoded status fields as label/value rows
func (m Model) renderStatus() string {
	var b strings.Builder

	row := func(label string, rendered string) {
		b.WriteString(labelStyle.Render(label) + rendered + "\n")
	}

	if v, ok := m.status["car_state"].(string); ok {
		row("Car", carStateStyle(v).Render(v))
	}
	if v, ok := m.status["error"].(string); ok && v != "" {
		row("Error", errorStyle.Render(v))
	}
	if v, ok := m.status["charging_mode"].(string); ok {
		row("Charging mode", valueStyle.Render(v))
	}
	if v, ok := m.status["phase_mode"].(string); ok {
		row("Phase mode", valueStyle.Render(v))
	}
	if v, ok := m.status["cable_lock_mode"].(string); ok {
		row("Cable lock", valueStyle.Render(v))
	}
	if v, ok := m.status["ampere"].(float64); ok {
		row("Ampere", valueStyle.Render(fmt.Sprintf("%.0f A", v)))
	}
	if v, ok := m.status["ampere_device_maximum"].(float64); ok {
		row("Device maximum", valueStyle.Render(fmt.Sprintf("%.0f A", v)))
	}
	if v, present := m.status["charge_limit"]; present {
		if limit, ok := v.(float64); ok {
			row("Charge limit", valueStyle.Render(fmt.Sprintf("%.0f Wh", limit)))
		} else {
			row("Charge limit", hostStyle.Render("disabled"))
		}
	}
	if v, ok := m.status["temperature"].(float64); ok {
		row("Temperature", valueStyle.Render(fmt.Sprintf("%.1f °C", v)))
	}
	if v, ok := m.status["device_model"].(string); ok {
		row("Model", valueStyle.Render(v))
	}

	if e, ok := m.status["energy"].(*goecharger.Energy); ok && e != nil {
		b.WriteString("\n")
		row("Power", chargingStyle.Render(fmt.Sprintf("%.0f W", e.Power.Total)))
		row("Voltage", valueStyle.Render(fmt.Sprintf("L1 %.0fV  L2 %.0fV  L3 %.0fV", e.Voltage.L1, e.Voltage.L2, e.Voltage.L3)))
		row("Current", valueStyle.Render(fmt.Sprintf("L1 %.1fA  L2 %.1fA  L3 %.1fA", e.Current.L1, e.Current.L2, e.Current.L3)))
	}

	return b.String()
}

// Run starts the dashboard and blocks until the user quits
func Run(charger *goecharger.Charger, interval time.Duration) error {
	p := tea.NewProgram(NewModel(charger, interval))
	_, err := p.Run()
	return err
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/atmoskit/metkit/internal/met"
)

// Dashboard panel indices.
const (
	panelSummary = iota
	panelRecords
	panelCount
)

// recordsShown caps the records panel at the most recent entries.
const recordsShown = 12

type dashboardModel struct {
	sourcePath  string
	activePanel int
	width       int
	height      int

	describe string
	obs      []met.Observation

	loading bool
	err     error
}

// sourceLoadedMsg carries loaded observations back to the model.
type sourceLoadedMsg struct {
	describe string
	obs      []met.Observation
	err      error
}

var (
	dashTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	dashPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	dashActivePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	dashHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	dashPresentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dashMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dashErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dashHelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(sourcePath string) dashboardModel {
	return dashboardModel{
		sourcePath:  sourcePath,
		activePanel: panelSummary,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadSource(m.sourcePath)
}

// loadSource reads the met source off the UI loop.
func loadSource(path string) tea.Cmd {
	return func() tea.Msg {
		source, err := met.LoadSource(path)
		if err != nil {
			return sourceLoadedMsg{err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		obs, err := source.Read(ctx, met.Window{})
		if err != nil {
			return sourceLoadedMsg{describe: source.Describe(), err: err}
		}
		return sourceLoadedMsg{describe: source.Describe(), obs: obs}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadSource(m.sourcePath)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sourceLoadedMsg:
		m.loading = false
		m.describe = msg.describe
		m.err = msg.err
		if msg.err == nil {
			m.obs = msg.obs
		}
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := dashTitleStyle.Render("metkit source dashboard")
	help := dashHelpStyle.Render("tab: switch panel | r: reload | q: quit")

	var body string
	switch {
	case m.loading:
		body = dashPanelStyle.Render("Reading source...")
	case m.err != nil:
		body = dashPanelStyle.Render(dashErrorStyle.Render("error: " + m.err.Error()))
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.panel(panelSummary, "Summary", m.summaryView()),
			m.panel(panelRecords, "Recent records", m.recordsView()),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body, help)
}

func (m dashboardModel) panel(idx int, header, content string) string {
	style := dashPanelStyle
	if m.activePanel == idx {
		style = dashActivePanelStyle
	}
	return style.Width(m.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, dashHeaderStyle.Render(header), content))
}

func (m dashboardModel) summaryView() string {
	if len(m.obs) == 0 {
		return "no observations"
	}

	first, last := m.obs[0].Time, m.obs[0].Time
	withTemp, withHumid := 0, 0
	for _, o := range m.obs {
		if o.Time.Before(first) {
			first = o.Time
		}
		if o.Time.After(last) {
			last = o.Time
		}
		if o.Temperature != nil {
			withTemp++
		}
		if o.Humidity != nil {
			withHumid++
		}
	}

	n := len(m.obs)
	lines := []string{
		fmt.Sprintf("%-14s %s", "Source:", m.describe),
		fmt.Sprintf("%-14s %d", "Records:", n),
		fmt.Sprintf("%-14s %s to %s", "Span:", first.Format(met.TimeLayout), last.Format(met.TimeLayout)),
		fmt.Sprintf("%-14s temperature %d/%d, humidity %d/%d", "Coverage:", withTemp, n, withHumid, n),
	}
	return strings.Join(lines, "\n")
}

func (m dashboardModel) recordsView() string {
	if len(m.obs) == 0 {
		return "no observations"
	}

	start := len(m.obs) - recordsShown
	if start < 0 {
		start = 0
	}

	lines := []string{fmt.Sprintf("%-26s %10s %10s %10s", "TIME", "PRES", "TEMP", "RH")}
	for _, o := range m.obs[start:] {
		lines = append(lines, fmt.Sprintf("%-26s %10.2f %10s %10s",
			o.Time.Format(met.TimeLayout),
			o.Pressure,
			renderOptional(o.Temperature),
			renderOptional(o.Humidity)))
	}
	return strings.Join(lines, "\n")
}

func renderOptional(v *float64) string {
	if v == nil {
		return dashMissingStyle.Render("-")
	}
	return dashPresentStyle.Render(fmt.Sprintf("%.1f", *v))
}

var (
	dashboardSource string
	dashboardDate   string
	dashboardSite   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive summary of a met source",
	Long: `Open an interactive view of a met source: record count, time span,
field coverage, and the most recent records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveSourcePath(dashboardSource, dashboardDate, dashboardSite)
		if err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(path), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().StringVarP(&dashboardSource, "source", "s", "", "met source config JSON (may contain {DATE}/{SITE_ID})")
	dashboardCmd.Flags().StringVar(&dashboardDate, "date", "", "date substituted for {DATE} (YYYY-MM-DD, default today)")
	dashboardCmd.Flags().StringVar(&dashboardSite, "site", "", "site ID substituted for {SITE_ID}")
	rootCmd.AddCommand(dashboardCmd)
}

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"

	"dict2file/internal/config"
	"dict2file/internal/dict2file/styles"
	"dict2file/internal/ui/colorize"
)

type viewMode int

const (
	viewOverview viewMode = iota
	viewFunctions
	viewFunction
)

type functionItem struct {
	report *functionReport
}

func (i functionItem) FilterValue() string { return i.report.demangled }

type functionDelegate struct{}

func (d functionDelegate) Height() int                               { return 1 }
func (d functionDelegate) Spacing() int                              { return 0 }
func (d functionDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d functionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(functionItem)
	if !ok {
		return
	}

	indicator := " "
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Squid.Hex()))
	if index == m.Index() {
		indicator = ">"
		countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Charple.Hex()))
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		countStyle.Render(fmt.Sprintf("%3d", len(i.report.sites))),
		i.report.demangled)
}

type inspectModel struct {
	overview  viewport.Model
	functions list.Model
	detail    viewport.Model
	spinner   spinner.Model
	mode      viewMode
	path      string
	cfg       config.Config
	report    *moduleReport
	err       error
	loading   bool
	width     int
	height    int
}

type reportMsg struct {
	report *moduleReport
	err    error
}

func loadReportCmd(path string, cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		rep, err := inspectModule(path, cfg)
		return reportMsg{report: rep, err: err}
	}
}

func newInspectModel(path string, cfg config.Config) inspectModel {
	ovp := viewport.New()
	ovp.SetWidth(80)
	ovp.SetHeight(24)
	dvp := viewport.New()
	dvp.SetWidth(80)
	dvp.SetHeight(24)

	functions := list.New([]list.Item{}, functionDelegate{}, 80, 24)
	functions.SetShowStatusBar(false)
	functions.SetFilteringEnabled(true)
	functions.Title = "Functions"
	functions.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color(charmtone.Malibu.Hex())).
		MarginLeft(2)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Charple.Hex()))

	m := inspectModel{
		overview:  ovp,
		functions: functions,
		detail:    dvp,
		spinner:   s,
		mode:      viewOverview,
		path:      path,
		cfg:       cfg,
		loading:   true,
		width:     80,
		height:    24,
	}
	m.updateOverview()
	return m
}

func (m inspectModel) Init() tea.Cmd {
	return tea.Batch(loadReportCmd(m.path, m.cfg), m.spinner.Tick)
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case reportMsg:
		m.loading = false
		m.report, m.err = msg.report, msg.err
		if m.report != nil {
			items := make([]list.Item, 0, len(m.report.functions))
			for _, fr := range m.report.functions {
				items = append(items, functionItem{report: fr})
			}
			m.functions.SetItems(items)
			m.functions.Title = fmt.Sprintf("Functions (%d total)", len(items))
		}
		m.updateOverview()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateOverview()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, vp := range []*viewport.Model{&m.overview, &m.detail} {
			vp.SetWidth(msg.Width)
			vp.SetHeight(msg.Height - 2)
		}
		m.functions.SetWidth(msg.Width)
		m.functions.SetHeight(msg.Height - 2)
		m.updateOverview()

	case tea.KeyMsg:
		if m.mode == viewFunctions && m.functions.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "o":
			m.mode = viewOverview
			return m, nil
		case "f", "esc":
			if m.report != nil {
				m.mode = viewFunctions
			}
			return m, nil
		case "enter":
			if m.mode != viewFunctions {
				return m, nil
			}
			if item, ok := m.functions.SelectedItem().(functionItem); ok {
				m.detail.SetContent(m.renderFunction(item.report))
				m.detail.GotoTop()
				m.mode = viewFunction
			}
			return m, nil
		case "tab":
			if m.report != nil {
				m.mode = (m.mode + 1) % 2
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewFunctions:
		m.functions, cmd = m.functions.Update(msg)
	case viewFunction:
		m.detail, cmd = m.detail.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return m, cmd
}

func (m inspectModel) View() string {
	var content, menu string
	switch m.mode {
	case viewFunctions:
		content = m.functions.View()
		menu = " Enter: show function • O: overview • Tab: cycle • Q: quit "
	case viewFunction:
		content = m.detail.View()
		menu = " Esc: functions • O: overview • Q: quit "
	default:
		content = m.overview.View()
		if m.report != nil {
			menu = " F: functions • Tab: cycle • Q: quit "
		} else {
			menu = " Q: quit "
		}
	}

	menuStyle := lipgloss.NewStyle().
		Background(lipgloss.Color(charmtone.Charcoal.Hex())).
		Foreground(lipgloss.Color(charmtone.Smoke.Hex())).
		Padding(0, 1).
		Width(m.width)

	return content + "\n" + menuStyle.Render(menu)
}

func (m *inspectModel) render(markdown string) string {
	width := m.width
	if width == 0 {
		width = 80
	}
	renderer, err := styles.GetMarkdownRenderer(width - 2)
	if err != nil {
		return markdown
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimSuffix(rendered, "\n")
}

func (m *inspectModel) updateOverview() {
	m.overview.SetContent(m.render(overviewMarkdown(m.path, m.report, m.err, m.loading, m.spinner.View())))
}

// overviewMarkdown describes the module and the totals of its scan.
func overviewMarkdown(path string, rep *moduleReport, err error, loading bool, spin string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n```\n; %s\n```\n", filepath.Base(path), path)
	switch {
	case loading:
		fmt.Fprintf(&sb, "\n%s Scanning module...\n", spin)
	case err != nil:
		fmt.Fprintf(&sb, "\n**Error:** %s\n", err)
	case rep != nil:
		r := rep.result
		sb.WriteString("\n| | |\n|---|---:|\n")
		for _, row := range []struct {
			label string
			n     int
		}{
			{"Functions scanned", r.Functions},
			{"Functions ignored", r.Ignored},
			{"Comparisons", r.Comparisons},
			{"Copies", r.Copies},
			{"Ambiguous", r.Ambiguous},
			{"Out of bounds", r.OutOfBounds},
			{"Entries", r.Entries},
		} {
			fmt.Fprintf(&sb, "| %s | %d |\n", row.label, row.n)
		}
	}
	return sb.String()
}

// renderFunction shows the sites of fr above its highlighted IR.
func (m *inspectModel) renderFunction(fr *functionReport) string {
	text := functionIR(fr.fn)
	if !colorize.Disabled() {
		if colored, err := colorize.ColorizeIR(text); err == nil {
			text = colored
		}
	}
	return m.render(functionMarkdown(fr)) + "\n\n" + text
}

// functionMarkdown tabulates the sites of one function.
func functionMarkdown(fr *functionReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", fr.demangled)
	if len(fr.sites) == 0 {
		sb.WriteString("*No comparison sites.*\n")
		return sb.String()
	}
	sb.WriteString("| Kind | Entry | Status |\n|---|---|---|\n")
	for _, s := range fr.sites {
		fmt.Fprintf(&sb, "| %s | `%s` | %s |\n", s.Kind, escapeCell(siteEntry(s)), siteStatus(s))
	}
	return sb.String()
}

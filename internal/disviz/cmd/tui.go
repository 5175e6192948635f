package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"disviz/internal/disviz/styles"
	"disviz/internal/layout"
	"disviz/internal/render"
	"disviz/internal/symbols"
)

type viewMode int

const (
	viewOrder viewMode = iota
	viewFunctions
	viewSummary
)

type functionItem struct {
	name    string
	short   string
	summary render.FunctionSummary
}

func (i functionItem) Title() string       { return i.short }
func (i functionItem) Description() string { return "" }
func (i functionItem) FilterValue() string { return i.short + " " + i.name }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(functionItem)
	if !ok {
		return
	}

	indicator := " "
	countStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}

	counts := fmt.Sprintf("%4d blocks %3d loops %3d pseudo", i.summary.Blocks, i.summary.Loops, i.summary.Pseudo)
	fmt.Fprintf(w, " %s  %s  %s", indicator, countStyle.Render(counts), styles.BlockName.Render(i.short))
}

type layoutMsg struct {
	session *session
	err     error
}

type model struct {
	viewport  viewport.Model
	functions list.Model
	summary   viewport.Model
	spinner   spinner.Model
	mode      viewMode

	path    string
	load    func() (*session, error)
	session *session
	err     error
	loading bool

	order      string
	function   string // selected function, "" for all
	showHidden bool
	width      int
	height     int
}

func newModel(load func() (*session, error), path string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	functions := list.New([]list.Item{}, itemDelegate{}, 80, 24)
	functions.SetShowStatusBar(false)
	functions.SetFilteringEnabled(true)
	functions.Title = "Functions"
	functions.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)
	functions.SetShowHelp(true)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	sv := viewport.New()
	sv.SetWidth(80)
	sv.SetHeight(24)

	m := model{
		viewport:  vp,
		functions: functions,
		summary:   sv,
		spinner:   s,
		mode:      viewOrder,
		path:      path,
		load:      load,
		loading:   true,
		order:     loopOrder,
		width:     80,
		height:    24,
	}
	m.updateContent()
	return m
}

func (m model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		s, err := m.load()
		return layoutMsg{session: s, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case layoutMsg:
		m.loading = false
		m.session = msg.session
		m.err = msg.err
		m.updateFunctions()
		m.updateContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateContent()
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.functions.SetWidth(msg.Width)
			m.functions.SetHeight(msg.Height - 2)
			m.summary.SetWidth(msg.Width)
			m.summary.SetHeight(msg.Height - 2)
			m.updateContent()
		}

	case tea.KeyMsg:
		if m.mode == viewFunctions && m.functions.FilterState() == list.Filtering {
			if k := msg.String(); k == "ctrl+c" {
				return m, tea.Quit
			}
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.mode = (m.mode + 1) % 3
			return m, nil
		case "shift+tab":
			m.mode = (m.mode + 2) % 3
			return m, nil
		case "o":
			if m.order == loopOrder {
				m.order = memoryOrder
			} else {
				m.order = loopOrder
			}
			m.updateContent()
			return m, nil
		case "h":
			m.showHidden = !m.showHidden
			m.updateContent()
			return m, nil
		case "a":
			m.function = ""
			m.mode = viewOrder
			m.updateContent()
			return m, nil
		case "enter":
			if m.mode == viewFunctions {
				if it, ok := m.functions.SelectedItem().(functionItem); ok {
					m.function = it.name
					m.mode = viewOrder
					m.updateContent()
				}
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewFunctions:
		m.functions, cmd = m.functions.Update(msg)
	case viewSummary:
		m.summary, cmd = m.summary.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content string
	switch m.mode {
	case viewFunctions:
		content = m.functions.View()
	case viewSummary:
		content = m.summary.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewFunctions:
		menu = " Enter: show function • /: filter • Tab: cycle • Q: quit "
	case viewSummary:
		menu = " Tab: cycle • O: toggle order • Q: quit "
	default:
		menu = fmt.Sprintf(" %s • O: toggle order • H: hidden ranges • A: all functions • Tab: cycle • Q: quit ", m.order)
	}
	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}

// entries returns the ordering shown in the order view.
func (m *model) entries() layout.Ordering {
	o, _, _ := m.session.order(m.order)
	if m.function == "" {
		return o
	}
	var out layout.Ordering
	for i := range o {
		if o[i].Function == m.function {
			out = append(out, o[i])
		}
	}
	return out
}

func (m *model) updateFunctions() {
	if m.session == nil {
		return
	}
	sums := render.Summarize(m.session.res)
	items := make([]list.Item, 0, len(sums))
	for _, s := range sums {
		items = append(items, functionItem{
			name:    s.Name,
			short:   symbols.Short(s.Name),
			summary: s,
		})
	}
	m.functions.SetItems(items)
}

func (m *model) updateContent() {
	width := m.width
	if width == 0 {
		width = 80
	}

	var md string
	switch {
	case m.loading:
		md = fmt.Sprintf("# Disviz\n\n```\n; %s\n```\n\n%s Laying out blocks...", m.path, m.spinner.View())
	case m.err != nil:
		md = fmt.Sprintf("# Disviz\n\n```\n; %s\n```\n\n**Error:** %s", m.path, m.err)
	default:
		md = render.Report(m.path, m.session.res, m.session.idx)
	}
	rendered, err := render.RenderMarkdown(md, width-2)
	if err != nil {
		rendered = md
	}
	rendered = strings.TrimSuffix(rendered, "\n")
	m.summary.SetContent(rendered)

	if m.session == nil {
		m.viewport.SetContent(rendered)
		return
	}
	var b strings.Builder
	if err := render.Text(&b, m.entries(), render.TextOptions{Instructions: true, Color: true, ShowHidden: m.showHidden}); err != nil {
		b.WriteString(err.Error())
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// Package ui renders build progress, either as a Bubble Tea view or as
// plain lines for pipes and CI logs.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sfcc/internal/buildpipeline"
)

// stageInfo is the verb shown while a file is in a stage and the share of
// the file's work done once the stage starts.
var stageInfo = map[buildpipeline.Stage]struct {
	verb   string
	weight float64
}{
	buildpipeline.StageParse:    {"parsing", 0.1},
	buildpipeline.StageCompile:  {"compiling", 0.4},
	buildpipeline.StageAssemble: {"assembling", 0.7},
	buildpipeline.StageWrite:    {"writing", 0.9},
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const statusWidth = 12

type fileRow struct {
	path   string
	status buildpipeline.Status
	stage  buildpipeline.Stage
	err    string
}

func (r fileRow) label() string {
	if r.status == buildpipeline.StatusWorking {
		return stageInfo[r.stage].verb
	}
	return string(r.status)
}

func (r fileRow) settled() bool {
	return r.status == buildpipeline.StatusDone || r.status == buildpipeline.StatusError
}

func (r fileRow) style() lipgloss.Style {
	switch r.status {
	case buildpipeline.StatusDone:
		return okStyle
	case buildpipeline.StatusError:
		return errStyle
	case buildpipeline.StatusWorking:
		return busyStyle
	}
	return idleStyle
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	index   map[string]int
	overall string // label of the last build-wide event
	width   int
	height  int // 0 until the terminal reports its size
	done    bool
	aborted bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by the build's events.
// files must use the same display paths as the events.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = fileRow{path: f, status: buildpipeline.StatusQueued}
		m.index[f] = i
	}
	return m
}

// Aborted reports whether the user left the progress view before the
// build finished.
func Aborted(model tea.Model) bool {
	m, ok := model.(*progressModel)
	return ok && m.aborted && !m.done
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
		m.height = msg.Height
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusWorking {
			m.overall = stageInfo[ev.Stage].verb
		} else {
			m.overall = string(ev.Status)
		}
		return nil
	}
	i, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.status, row.stage = ev.Status, ev.Stage
	if ev.Err != nil {
		row.err = firstLine(ev.Err.Error())
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) counts() (done, failed int) {
	for _, r := range m.rows {
		switch r.status {
		case buildpipeline.StatusDone:
			done++
		case buildpipeline.StatusError:
			failed++
		}
	}
	return done, failed
}

// percent counts settled files as whole and the rest by stage weight.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		if r.settled() {
			sum++
		} else if r.status == buildpipeline.StatusWorking {
			sum += stageInfo[r.stage].weight
		}
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	done, failed := m.counts()
	header := fmt.Sprintf("%s [%d/%d]", m.title, done+failed, len(m.rows))
	if m.overall != "" {
		header += " (" + m.overall + ")"
	}
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusWidth-4, 20)
	hidden := m.hiddenRows()
	for _, r := range m.rows {
		if hidden > 0 && r.status == buildpipeline.StatusDone {
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", r.style().Render(fmt.Sprintf("%*s", statusWidth, r.label())), truncate(r.path, nameWidth))
		if r.err != "" {
			b.WriteString(strings.Repeat(" ", statusWidth+3))
			b.WriteString(errStyle.Render(truncate(r.err, nameWidth)))
			b.WriteByte('\n')
		}
	}
	if hidden > 0 {
		fmt.Fprintf(&b, "  %s\n", okStyle.Render(fmt.Sprintf("%*s", statusWidth, fmt.Sprintf("+%d done", hidden))))
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// hiddenRows is the number of finished files folded into one line when the
// list does not fit the terminal. Failed and pending files stay visible.
func (m *progressModel) hiddenRows() int {
	const chrome = 5 // header, blank lines, bar
	if m.height <= 0 || len(m.rows)+chrome <= m.height {
		return 0
	}
	done, _ := m.counts()
	return done
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

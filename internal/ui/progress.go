// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tensa/internal/buildpipeline"
)

const labelWidth = 10

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noteStyle  = lipgloss.NewStyle().Faint(true)

	labelStyles = map[string]lipgloss.Style{
		"done":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"error": errStyle,
	}
	busyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

var stageVerbs = map[buildpipeline.Stage]string{
	buildpipeline.StageParse:    "parsing",
	buildpipeline.StageCheck:    "checking",
	buildpipeline.StageGenerate: "generating",
	buildpipeline.StagePrint:    "generating",
	buildpipeline.StageWrite:    "writing",
}

type row struct {
	path   string
	stage  buildpipeline.Stage
	status buildpipeline.Status
	err    error
}

// label is what the status column shows for the row.
func (r row) label() string {
	return statusLabel(r.stage, r.status)
}

type buildModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []row
	index   map[string]int
	width   int
	// overall is the status of the last event without a file
	overall buildpipeline.Status
	closed  bool
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel shows one row per file and a bar for the whole build.
// The program quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(busyStyle))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(76))

	m := &buildModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]row, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = row{path: file, status: buildpipeline.StatusQueued}
		m.index[file] = i
	}
	return m
}

func (m *buildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one event from the build.
func (m *buildModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *buildModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		m.overall = ev.Status
		return nil
	}
	i, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	m.rows[i] = row{path: ev.File, stage: ev.Stage, status: ev.Status, err: ev.Err}
	return m.bar.SetPercent(m.fraction())
}

// fraction is the share of the build behind us.
func (m *buildModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	var sum float64
	for _, r := range m.rows {
		if r.status.Finished() {
			sum++
		} else if r.status == buildpipeline.StatusWorking {
			sum += r.stage.Progress()
		}
	}
	return sum / float64(len(m.rows))
}

func (m *buildModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.status.Finished() {
			finished++
		}
		if r.status == buildpipeline.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *buildModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-labelWidth-4, 20)
	for _, r := range m.rows {
		label := r.label()
		fmt.Fprintf(&b, "  %s %s", styleFor(label).Render(fmt.Sprintf("%*s", labelWidth, label)), truncate(r.path, nameWidth))
		if r.err != nil {
			b.WriteString(" " + noteStyle.Render(truncate(r.err.Error(), nameWidth)))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.closed || m.overall.Finished() {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *buildModel) header() string {
	finished, failed := m.counts()
	status := fmt.Sprintf("%d/%d files", finished, len(m.rows))
	if failed > 0 {
		status += ", " + errStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	if m.closed || m.overall.Finished() {
		return fmt.Sprintf("%s: %s", m.title, status)
	}
	return fmt.Sprintf("%s %s: %s", m.spinner.View(), m.title, status)
}

func statusLabel(stage buildpipeline.Stage, status buildpipeline.Status) string {
	if status == buildpipeline.StatusWorking {
		return stageVerbs[stage]
	}
	return string(status)
}

func styleFor(label string) lipgloss.Style {
	if st, ok := labelStyles[label]; ok {
		return st
	}
	if label == string(buildpipeline.StatusQueued) {
		return idleStyle
	}
	return busyStyle
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

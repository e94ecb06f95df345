// Package ui renders live conversion progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"codeshift/internal/pipeline"
)

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	width   int
	done    bool
}

type fileItem struct {
	path     string
	stage    pipeline.Stage
	accuracy float64
}

type eventMsg pipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per file. It quits
// when events is closed.
func NewProgressModel(title string, files []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, len(files))
	for i, f := range files {
		items[i] = fileItem{path: f, stage: pipeline.StageQueued}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listen())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(pipeline.Event(msg)), m.listen())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
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
			m.prog.Width = max(10, msg.Width-4)
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	nameWidth := max(20, m.width-statusWidth-14)
	for _, it := range m.items {
		status := styleStatus(it.stage).Render(fmt.Sprintf("%*s", statusWidth, it.stage))
		fmt.Fprintf(&b, "  %s %s", status, truncate(it.path, nameWidth))
		if it.stage == pipeline.StageDone {
			fmt.Fprintf(&b, "  %5.1f%%", it.accuracy*100)
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.prog.ViewAs(1))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteByte('\n')
	return b.String()
}

const statusWidth = 8

func (m *progressModel) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) apply(ev pipeline.Event) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	it := &m.items[ev.Index]
	if it.stage.Terminal() {
		return nil
	}
	it.stage = ev.Stage
	it.accuracy = ev.Accuracy
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	total := 0.0
	for _, it := range m.items {
		total += stageProgress(it.stage)
	}
	return total / float64(len(m.items))
}

func stageProgress(s pipeline.Stage) float64 {
	switch s {
	case pipeline.StageDetect:
		return 0.1
	case pipeline.StageAnalyze:
		return 0.3
	case pipeline.StageScore:
		return 0.5
	case pipeline.StageConvert:
		return 0.7
	case pipeline.StageDone, pipeline.StageSkipped, pipeline.StageFailed:
		return 1
	}
	return 0
}

func styleStatus(s pipeline.Stage) lipgloss.Style {
	switch s {
	case pipeline.StageDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case pipeline.StageFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case pipeline.StageSkipped:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case pipeline.StageQueued:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
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

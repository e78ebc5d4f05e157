package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUIRenderer provides rich terminal UI using bubbletea.
type TUIRenderer struct {
	mu      sync.Mutex
	cfg     Config
	program *tea.Program
	model   *runModel
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// NewTUIRenderer creates a TUI renderer. Returns an error when the output
// is not a TTY.
func NewTUIRenderer(cfg Config) (*TUIRenderer, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}

	model := newRunModel(cfg.CorpusDir)
	if cfg.NoColor || DetectNoColor() {
		model.styles = NoColorStyles()
	}

	return &TUIRenderer{
		cfg:   cfg,
		model: model,
		done:  make(chan struct{}),
	}, nil
}

// Start implements Renderer.
func (r *TUIRenderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	_, r.cancel = context.WithCancel(ctx)

	var opts []tea.ProgramOption
	if f, ok := r.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	r.program = tea.NewProgram(r.model, opts...)
	r.started = true

	go func() {
		defer close(r.done)
		_, _ = r.program.Run()
	}()

	return nil
}

// UpdateProgress implements Renderer.
func (r *TUIRenderer) UpdateProgress(event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(progressUpdateMsg(event))
	}
}

// AddError implements Renderer.
func (r *TUIRenderer) AddError(event ErrorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(errorMsg(event))
	}
}

// Complete implements Renderer.
func (r *TUIRenderer) Complete(stats CompletionStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(completeMsg(stats))
	}
}

// Stop implements Renderer.
func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
	}

	if r.program != nil {
		r.program.Quit()

		// Bounded wait so an unresponsive TUI cannot hang shutdown.
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
		}
	}

	return nil
}

type progressUpdateMsg ProgressEvent
type errorMsg ErrorEvent
type completeMsg CompletionStats

// runModel is the bubbletea model for one index run.
type runModel struct {
	width       int
	quitting    bool
	complete    bool
	stats       CompletionStats
	stage       Stage
	current     int
	total       int
	currentFile string
	warnCount   int
	errorCount  int
	spinner     spinner.Model
	progressBar progress.Model
	styles      Styles
	corpusDir   string
}

func newRunModel(corpusDir string) *runModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan))

	p := progress.New(
		progress.WithSolidFill(ColorCyan),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	return &runModel{
		spinner:     s,
		progressBar: p,
		styles:      DefaultStyles(),
		width:       80,
		corpusDir:   corpusDir,
	}
}

// Init implements tea.Model.
func (m *runModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = msg.Width - 20
		if m.progressBar.Width < 20 {
			m.progressBar.Width = 20
		}

	case progressUpdateMsg:
		m.stage = msg.Stage
		m.current = msg.Current
		m.total = msg.Total
		m.currentFile = msg.CurrentFile
		return m, nil

	case errorMsg:
		if msg.IsWarn {
			m.warnCount++
		} else {
			m.errorCount++
		}
		return m, nil

	case completeMsg:
		m.complete = true
		m.stats = CompletionStats(msg)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m *runModel) View() string {
	if m.quitting {
		return "Cancelled.\n"
	}
	if m.complete {
		return m.renderComplete()
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var sections []string
	sections = append(sections, m.renderStages())
	sections = append(sections, m.renderDivider(contentWidth))
	sections = append(sections, m.renderProgress())

	if m.currentFile != "" {
		sections = append(sections, m.renderDivider(contentWidth))
		sections = append(sections, m.styles.Dim.Render(truncatePath(m.currentFile, contentWidth-2)))
	}

	content := strings.Join(sections, "\n")

	title := "wordex"
	if m.corpusDir != "" {
		title = fmt.Sprintf("wordex: %s", m.corpusDir)
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDarkGray)).
		Padding(0, 1).
		Width(contentWidth)

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(title),
		panel.Render(content),
	)

	return body + "\n" + m.renderStatusBar()
}

func (m *runModel) renderStages() string {
	stages := []struct {
		stage Stage
		name  string
	}{
		{StageScanning, "Scan"},
		{StageTokenizing, "Tokenize"},
		{StageFlushing, "Flush"},
	}

	var parts []string
	for _, s := range stages {
		var icon string
		var style lipgloss.Style
		switch {
		case s.stage < m.stage:
			icon = "●"
			style = m.styles.Success
		case s.stage == m.stage:
			icon = m.spinner.View()
			style = m.styles.Active
		default:
			icon = "○"
			style = m.styles.Dim
		}
		parts = append(parts, style.Render(icon+" "+s.name))
	}

	sep := m.styles.Dim.Render(" > ")
	return strings.Join(parts, sep)
}

func (m *runModel) renderProgress() string {
	if m.total == 0 {
		return fmt.Sprintf("%s %s...", m.spinner.View(), m.stage.String())
	}

	percent := float64(m.current) / float64(m.total)
	bar := m.progressBar.ViewAs(percent)
	pctStr := m.styles.Active.Render(fmt.Sprintf("%3.0f%%", percent*100))
	countLine := m.styles.Label.Render(fmt.Sprintf("%d / %d documents", m.current, m.total))

	return fmt.Sprintf("%s  %s\n%s", bar, pctStr, countLine)
}

func (m *runModel) renderDivider(width int) string {
	return m.styles.Border.Render(strings.Repeat("─", width))
}

func (m *runModel) renderStatusBar() string {
	var parts []string
	if m.warnCount > 0 {
		parts = append(parts, m.styles.Warning.Render(fmt.Sprintf("%d skipped", m.warnCount)))
	}
	if m.errorCount > 0 {
		parts = append(parts, m.styles.Error.Render(fmt.Sprintf("%d errors", m.errorCount)))
	}
	if len(parts) == 0 {
		return m.styles.Dim.Render("q to quit")
	}
	sep := m.styles.Dim.Render("  |  ")
	return strings.Join(parts, sep) + sep + m.styles.Dim.Render("q to quit")
}

func (m *runModel) renderComplete() string {
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var lines []string
	lines = append(lines, m.styles.Success.Render("✓ Index Complete"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("%s %s",
		m.styles.Label.Render("Documents:"),
		m.styles.Active.Render(fmt.Sprintf("%d", m.stats.Documents))))
	lines = append(lines, fmt.Sprintf("%s     %s",
		m.styles.Label.Render("Words:"),
		m.styles.Active.Render(fmt.Sprintf("%d", m.stats.Words))))
	lines = append(lines, fmt.Sprintf("%s   %s",
		m.styles.Label.Render("Buckets:"),
		m.styles.Active.Render(fmt.Sprintf("%d", m.stats.Buckets))))
	lines = append(lines, fmt.Sprintf("%s  %s",
		m.styles.Label.Render("Duration:"),
		m.styles.Active.Render(formatDuration(m.stats.Duration))))

	if m.stats.Skipped > 0 || m.stats.Errors > 0 {
		lines = append(lines, "")
		if m.stats.Skipped > 0 {
			lines = append(lines, m.styles.Warning.Render(fmt.Sprintf("%d documents skipped", m.stats.Skipped)))
		}
		if m.stats.Errors > 0 {
			lines = append(lines, m.styles.Error.Render(fmt.Sprintf("%d errors", m.stats.Errors)))
		}
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorCyan)).
		Padding(1, 2).
		Width(contentWidth)

	return panel.Render(strings.Join(lines, "\n")) + "\n"
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, mins)
}

func truncatePath(path string, maxLen int) string {
	if path == "" || len(path) <= maxLen {
		return path
	}
	if maxLen < 4 {
		return "..."
	}
	return "..." + path[len(path)-maxLen+3:]
}

var _ Renderer = (*TUIRenderer)(nil)

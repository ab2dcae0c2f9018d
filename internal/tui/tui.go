// Package tui provides a Bubble Tea terminal user interface for the downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sorrow446/Yandex-Music-Downloader/internal/audio"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/config"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/download"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/model"
	"github.com/Sorrow446/Yandex-Music-Downloader/internal/yandex"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateResolving
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	resolved  []string
	report    *model.RunReport
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	orchestrator *download.Orchestrator
	tracks       []*model.TrackDescriptor
	events       chan download.ProgressEvent

	// Download progress
	totalTracks   int32
	doneTracks    int32
	receivedBytes int64

	// Options
	lyrics   bool
	original bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	ti := textinput.New()
	ti.Placeholder = "https://music.yandex.ru/album/123456"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		settings = config.DefaultSettings()
	}

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		lyrics:    settings.WriteLyrics,
		original:  settings.OriginalCovers,
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan download.ProgressEvent, 256),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one orchestrator progress event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ResolveDoneMsg is sent when reference resolution completes.
	ResolveDoneMsg struct {
		Resolved     []string
		Tracks       []*model.TrackDescriptor
		Orchestrator *download.Orchestrator
		Err          error
	}

	// DownloadDoneMsg is sent when the run finishes.
	DownloadDoneMsg struct {
		Report *model.RunReport
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateResolving {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateResolving
				return m, tea.Batch(m.resolveReferences(), m.spinner.Tick)
			}

		case "l":
			if m.state == StateInput {
				m.lyrics = !m.lyrics
			}

		case "o":
			if m.state == StateInput {
				m.original = !m.original
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.resolved = nil
				m.report = nil
				m.err = nil
				m.doneTracks = 0
				m.totalTracks = 0
				m.receivedBytes = 0
				m.orchestrator = nil
				m.tracks = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, m.listenEvents()
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}
		cmds = append(cmds, m.listenEvents())

	case ResolveDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.resolved = msg.Resolved
			m.tracks = msg.Tracks
			m.orchestrator = msg.Orchestrator
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress(), m.listenEvents())
		}

	case DownloadDoneMsg:
		m.report = msg.Report
		if m.orchestrator != nil {
			m.receivedBytes, m.doneTracks, m.totalTracks = m.orchestrator.GetProgress()
		}
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.orchestrator != nil && m.state == StateDownloading {
			received, done, total := m.orchestrator.GetProgress()
			m.receivedBytes = received
			m.doneTracks = done
			m.totalTracks = total

			var percent float64
			if total > 0 {
				percent = float64(done) / float64(total)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// listenEvents waits for the next orchestrator progress event.
func (m Model) listenEvents() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Yandex Music Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download music from Yandex Music"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter album, track, artist or playlist URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	lyricsCheck := "[ ]"
	if m.lyrics {
		lyricsCheck = "[x]"
	}
	originalCheck := "[ ]"
	if m.original {
		originalCheck = "[x]"
	}
	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[x]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Write synced lyrics (l)\n", lyricsCheck))
	b.WriteString(fmt.Sprintf("  %s Original-resolution covers (o)\n", originalCheck))
	b.WriteString(fmt.Sprintf("  %s Verbose output (v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Quality: %s | Output: %s", m.settings.Tier(), m.settings.OutPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Resolving tracks..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.resolved) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Resolved %d reference(s):", len(m.resolved))))
		b.WriteString("\n")
		for _, line := range m.resolved {
			b.WriteString(trackStyle.Render(fmt.Sprintf("  ♪ %s", line)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalTracks > 0 {
		percent = float64(m.doneTracks) / float64(m.totalTracks)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Tracks: %d/%d | Downloaded: %.2f MB",
		m.doneTracks,
		m.totalTracks,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	success, failed, skipped := 0, 0, 0
	if m.report != nil {
		success, failed, skipped = m.report.Counts()
	}

	return boxStyle.Render(fmt.Sprintf(
		"Download complete!\n\n"+
			"Succeeded: %d\n"+
			"Failed: %d\n"+
			"Skipped: %d\n"+
			"Size: %.2f MB",
		success, failed, skipped,
		float64(m.receivedBytes)/1024/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • l: lyrics • o: original covers • v: verbose • esc: quit"
	case StateResolving, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// resolveReferences classifies the input URL, signs in and expands the
// reference into track descriptors.
func (m *Model) resolveReferences() tea.Cmd {
	input := m.textInput.Value()
	settings := m.settings
	settings.WriteLyrics = m.lyrics
	settings.OriginalCovers = m.original
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		if err := settings.Validate(); err != nil {
			return ResolveDoneMsg{Err: err}
		}

		ref, err := yandex.Classify(strings.TrimSpace(input))
		if err != nil {
			return ResolveDoneMsg{Err: err}
		}

		client, err := yandex.NewClient(ctx, settings.Token)
		if err != nil {
			return ResolveDoneMsg{Err: err}
		}
		if ref.Kind == model.KindFavourites && ref.Owner == "" {
			ref.Owner = client.Login()
		}

		resolver := yandex.NewResolver(client, settings.MaxConcurrentResolves)
		res := resolver.Resolve(ctx, ref)
		if res.Err != nil {
			return ResolveDoneMsg{Err: res.Err}
		}
		if len(res.Tracks) == 0 {
			return ResolveDoneMsg{Err: fmt.Errorf("nothing to download for %s", ref.Describe())}
		}

		assembler := audio.NewAssembler(audio.Options{
			OutputRoot:     settings.OutPath,
			Template:       settings.TrackTemplate,
			WriteCovers:    settings.WriteCovers,
			KeepCovers:     settings.KeepCovers,
			OriginalCovers: settings.OriginalCovers,
			WriteLyrics:    settings.WriteLyrics,
		})
		orchestrator := download.NewOrchestrator(settings, client, yandex.NewNegotiator(client), assembler,
			func(event download.ProgressEvent) {
				select {
				case events <- event:
				default:
				}
			})

		resolved := []string{fmt.Sprintf("%s (%d tracks)", ref.Describe(), len(res.Tracks))}
		if res.Warning != "" {
			resolved = append(resolved, res.Warning)
		}

		return ResolveDoneMsg{
			Resolved:     resolved,
			Tracks:       res.Tracks,
			Orchestrator: orchestrator,
		}
	}
}

// startDownload runs the orchestrator in the background.
func (m *Model) startDownload() tea.Cmd {
	orchestrator := m.orchestrator
	tracks := m.tracks
	ctx := m.ctx

	return func() tea.Msg {
		if orchestrator == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("nothing resolved")}
		}
		report, err := orchestrator.Run(ctx, tracks)
		return DownloadDoneMsg{Report: report, Err: err}
	}
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Alaminislam-stack/wash2gather/internal/negotiation"
	"github.com/Alaminislam-stack/wash2gather/internal/playback"
	"github.com/Alaminislam-stack/wash2gather/internal/session"
	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

const (
	updateBuffer = 100
	pollInterval = 500 * time.Millisecond
	maxLines     = 500

	// header, player bar, input and help line
	chromeHeight = 6
)

// Controller is what the chat screen drives. *session.Session satisfies it.
type Controller interface {
	SendChat(text string) error
	LoadVideo(url string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	Snapshot() (session.Snapshot, error)
}

type (
	statusUpdate string
	chatUpdate   session.ChatLine
	videoUpdate  struct{ id, url string }
	errorUpdate  struct{ err error }
	snapshotMsg  session.Snapshot
	pollMsg      time.Time
	systemLine   string
)

// ChatUI is the interactive watch-together screen. It implements
// session.View; updates are queued and never block the caller.
type ChatUI struct {
	model   *chatModel
	updates chan tea.Msg
}

var _ session.View = (*ChatUI)(nil)

// NewChatUI creates the screen for room, labelling our own lines with name.
func NewChatUI(room, name string) *ChatUI {
	updates := make(chan tea.Msg, updateBuffer)
	return &ChatUI{
		model:   newChatModel(room, name, updates),
		updates: updates,
	}
}

// Bind attaches the controller used for input. Call before Run.
func (u *ChatUI) Bind(ctrl Controller) {
	u.model.ctrl = ctrl
}

// Run blocks until the user quits or ctx ends.
func (u *ChatUI) Run(ctx context.Context) error {
	p := tea.NewProgram(u.model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (u *ChatUI) push(msg tea.Msg) {
	select {
	case u.updates <- msg:
	default:
	}
}

func (u *ChatUI) Status(text string)              { u.push(statusUpdate(text)) }
func (u *ChatUI) Chat(line session.ChatLine)      { u.push(chatUpdate(line)) }
func (u *ChatUI) VideoLoaded(videoID, url string) { u.push(videoUpdate{id: videoID, url: url}) }
func (u *ChatUI) Error(err error)                 { u.push(errorUpdate{err: err}) }

type chatModel struct {
	room string
	name string
	ctrl Controller

	status string
	snap   session.Snapshot
	lines  []string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	updates  chan tea.Msg

	width    int
	quitting bool
}

func newChatModel(room, name string, updates chan tea.Msg) *chatModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ti := textinput.New()
	ti.Placeholder = "Say something, or /help"
	ti.Prompt = IconChat + " "
	ti.CharLimit = 1000
	ti.Focus()

	return &chatModel{
		room:     room,
		name:     name,
		status:   "Connecting...",
		viewport: viewport.New(80, 18),
		input:    ti,
		spinner:  s,
		updates:  updates,
		width:    80,
	}
}

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.waitForUpdates(),
		pollCmd(),
	)
}

func (m *chatModel) waitForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			value := m.input.Value()
			m.input.Reset()
			if cmd := m.submit(value); cmd != nil {
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(3, msg.Height-chromeHeight)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case pollMsg:
		if m.quitting {
			return m, nil
		}
		cmds = append(cmds, m.snapshotCmd(), pollCmd())

	case snapshotMsg:
		m.snap = session.Snapshot(msg)

	case statusUpdate:
		m.status = string(msg)
		m.appendLine(SystemLineStyle.Render("* " + string(msg)))
		cmds = append(cmds, m.waitForUpdates())

	case chatUpdate:
		m.appendLine(formatChatLine(session.ChatLine(msg)))
		cmds = append(cmds, m.waitForUpdates())

	case videoUpdate:
		m.snap.VideoID = msg.id
		m.snap.URL = msg.url
		m.appendLine(SystemLineStyle.Render(fmt.Sprintf("%s Loaded %s", IconVideo, msg.id)))
		cmds = append(cmds, m.waitForUpdates())

	case errorUpdate:
		m.appendLine(FormatError(msg.err))
		cmds = append(cmds, m.waitForUpdates())

	case systemLine:
		m.appendLine(SystemLineStyle.Render(string(msg)))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles one line of input. Session calls block on the session loop,
// so they run as commands off the UI goroutine.
func (m *chatModel) submit(value string) tea.Cmd {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	cmd, err := ParseCommand(value)
	if err != nil {
		m.appendLine(FormatError(err))
		return nil
	}

	switch cmd.Kind {
	case CmdQuit:
		m.quitting = true
		return tea.Quit
	case CmdHelp:
		m.appendLine(MutedStyle.Render(HelpText))
		return nil
	case CmdStatus:
		m.appendLine(SnapshotView(m.snap))
		return nil
	}

	if m.ctrl == nil {
		return nil
	}
	ctrl := m.ctrl

	return func() tea.Msg {
		var err error
		switch cmd.Kind {
		case CmdChat:
			err = ctrl.SendChat(cmd.Text)
		case CmdLoad:
			err = ctrl.LoadVideo(cmd.Text)
		case CmdPlay:
			err = ctrl.Play()
		case CmdPause:
			err = ctrl.Pause()
		case CmdSeek:
			err = ctrl.Seek(cmd.Position)
		}
		if err != nil {
			return systemLine(fmt.Sprintf("%s %v", IconError, err))
		}
		return nil
	}
}

func (m *chatModel) snapshotCmd() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctrl := m.ctrl
	return func() tea.Msg {
		snap, err := ctrl.Snapshot()
		if err != nil {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m *chatModel) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
	m.refresh()
}

func (m *chatModel) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func formatChatLine(line session.ChatLine) string {
	user := PeerUserStyle.Render(line.User)
	if line.Local {
		user = LocalUserStyle.Render(line.User)
	}
	return fmt.Sprintf("%s %s: %s", TimestampStyle.Render("["+line.Timestamp+"]"), user, line.Text)
}

func (m *chatModel) playerBar() string {
	if m.snap.VideoID == "" {
		return PlayerBarStyle.Render(MutedStyle.Render("No video. /load <youtube url>"))
	}

	icon := IconPause
	if m.snap.PlayerState == playback.Playing {
		icon = IconPlay
	}
	bar := fmt.Sprintf("%s %s  %s  %s",
		icon,
		m.snap.VideoID,
		utils.FormatPosition(m.snap.Position),
		MutedStyle.Render(m.snap.PlayerState.String()),
	)
	return PlayerBarStyle.Render(bar)
}

func (m *chatModel) header() string {
	status := m.status
	if !m.snap.ChannelOpen && m.snap.State != negotiation.Stalled {
		status = m.spinner.View() + " " + status
	}
	if m.snap.ChannelOpen {
		status = IconPeer + " " + status
	}
	title := TitleStyle.Render(fmt.Sprintf("%s %s", IconRoom, m.room))
	return fmt.Sprintf("%s  %s  %s", title, StatusStyle.Render(m.name), status)
}

func (m *chatModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.header() + "\n\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.playerBar() + "\n")
	b.WriteString(m.input.View() + "\n")
	b.WriteString(MutedStyle.Render("Enter to send  PgUp/PgDn to scroll  Esc to leave"))
	return b.String()
}

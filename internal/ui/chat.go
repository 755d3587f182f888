package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/parley-app/parley/internal/call"
	"github.com/parley-app/parley/internal/chat"
)

// Controller is what the chat view drives: the wiring layer connects it
// to the signaling client and the call session.
type Controller interface {
	SendText(body string) (chat.Message, error)
	SendImage(path string) (chat.Message, error)
	NotifyTyping()
	StartCall() error
	AcceptCall() error
	DeclineCall() error
	HangUp()
	ToggleMute() bool
}

// Messages delivered into the model via Program.Send.
type (
	// MessageReceived is a chat message relayed from a peer.
	MessageReceived chat.Message

	// TypingIndicator updates the typing line; empty clears it.
	TypingIndicator string

	// CallStateChanged reports a call session transition.
	CallStateChanged struct {
		State      call.State
		RemoteUser string
	}

	// RemoteMuteChanged reports the peer's mute toggle.
	RemoteMuteChanged bool

	// ConnectionLost means the relay connection dropped; the view shuts
	// down since there is no reconnection protocol.
	ConnectionLost struct{}

	// callFailed carries a failed call command result back into Update.
	// A struct rather than a bare error so the type switch matches only
	// our own command results.
	callFailed struct{ err error }
)

const (
	imageCommand      = "/img "
	stopwatchInterval = time.Second
)

// ringBell sounds the terminal bell for an incoming call, the closest
// terminal equivalent of a ringtone.
func ringBell() tea.Msg {
	fmt.Print("\a")
	return nil
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ChatModel is the room view: message feed, input line, typing
// indicator and the call banner or ringing overlay.
type ChatModel struct {
	room       string
	user       string
	controller Controller

	input textinput.Model
	sw    stopwatch.Model

	messages    []chat.Message
	typing      string
	callState   call.State
	remoteUser  string
	muted       bool
	remoteMuted bool
	status      string
	quitting    bool
}

// NewChatModel creates the room view.
func NewChatModel(room, user string, controller Controller) *ChatModel {
	input := textinput.New()
	input.Placeholder = "Aa"
	input.CharLimit = 2000
	input.Width = 60
	input.Focus()

	return &ChatModel{
		room:       room,
		user:       user,
		controller: controller,
		input:      input,
		sw:         stopwatch.NewWithInterval(stopwatchInterval),
	}
}

func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case MessageReceived:
		m.messages = append(m.messages, chat.Message(msg))

	case TypingIndicator:
		m.typing = string(msg)

	case CallStateChanged:
		cmds = append(cmds, m.applyCallState(msg)...)

	case RemoteMuteChanged:
		m.remoteMuted = bool(msg)

	case ConnectionLost:
		m.status = ErrorStyle.Render("connection to server lost")
		m.quitting = true
		return m, tea.Quit

	case callFailed:
		m.status = ErrorStyle.Render(msg.err.Error())

	case stopwatch.TickMsg, stopwatch.StartStopMsg, stopwatch.ResetMsg:
		var cmd tea.Cmd
		m.sw, cmd = m.sw.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.controller.HangUp()
		m.quitting = true
		return m, tea.Quit

	case "ctrl+t":
		return m, m.toggleCall()

	case "ctrl+u":
		if m.callState == call.StateConnected {
			m.muted = m.controller.ToggleMute()
		}
		return m, nil

	case "enter":
		if m.callState == call.StateRinging {
			return m, m.acceptCall()
		}
		return m, m.submitInput()

	case "esc":
		if m.callState == call.StateRinging {
			return m, m.declineCall()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.controller.NotifyTyping()
	}
	return m, cmd
}

func (m *ChatModel) submitInput() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.status = ""

	if strings.HasPrefix(text, imageCommand) {
		path := strings.TrimSpace(strings.TrimPrefix(text, imageCommand))
		sent, err := m.controller.SendImage(path)
		if err != nil {
			m.status = ErrorStyle.Render(err.Error())
			return nil
		}
		m.messages = append(m.messages, sent)
		return nil
	}

	sent, err := m.controller.SendText(text)
	if err != nil {
		m.status = ErrorStyle.Render(err.Error())
		return nil
	}
	m.messages = append(m.messages, sent)
	return nil
}

func (m *ChatModel) toggleCall() tea.Cmd {
	switch m.callState {
	case call.StateIdle:
		// Start blocks on media acquisition and offer generation; run
		// it off the update loop.
		return func() tea.Msg {
			if err := m.controller.StartCall(); err != nil {
				return callFailed{err}
			}
			return nil
		}
	case call.StateCalling, call.StateConnected:
		m.controller.HangUp()
	}
	return nil
}

func (m *ChatModel) acceptCall() tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.AcceptCall(); err != nil {
			return callFailed{err}
		}
		return nil
	}
}

func (m *ChatModel) declineCall() tea.Cmd {
	return func() tea.Msg {
		if err := m.controller.DeclineCall(); err != nil {
			return callFailed{err}
		}
		return nil
	}
}

func (m *ChatModel) applyCallState(msg CallStateChanged) []tea.Cmd {
	m.callState = msg.State
	if msg.RemoteUser != "" {
		m.remoteUser = msg.RemoteUser
	}

	switch msg.State {
	case call.StateRinging:
		return []tea.Cmd{ringBell}
	case call.StateConnected:
		return []tea.Cmd{m.sw.Reset(), m.sw.Start()}
	case call.StateIdle:
		m.muted = false
		m.remoteMuted = false
		m.remoteUser = ""
		return []tea.Cmd{m.sw.Stop(), m.sw.Reset()}
	}
	return nil
}

func (m *ChatModel) View() string {
	if m.quitting {
		return m.status + "\n"
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	for _, msg := range m.messages {
		b.WriteString(m.messageView(msg))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.typing != "" {
		b.WriteString(TypingStyle.Render(m.typing))
	}
	b.WriteString("\n")

	if m.callState == call.StateRinging {
		b.WriteString(m.ringingView())
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	b.WriteString("\n")

	return b.String()
}

func (m *ChatModel) headerView() string {
	header := TitleStyle.Render(fmt.Sprintf("Room: %s", m.room)) +
		MutedStyle.Render(fmt.Sprintf("  (%s)", m.user))

	switch m.callState {
	case call.StateCalling:
		header += "  " + WarningStyle.Render(IconCall+" Calling...")
	case call.StateConnected:
		banner := fmt.Sprintf("%s In call %s", IconCall, formatDuration(m.sw.Elapsed()))
		if m.remoteUser != "" {
			banner = fmt.Sprintf("%s In call with %s %s", IconCall, m.remoteUser, formatDuration(m.sw.Elapsed()))
		}
		if m.muted {
			banner += " " + IconMuted
		}
		if m.remoteMuted {
			banner += MutedStyle.Render(" (peer muted)")
		}
		header += "  " + CallBannerStyle.Render(banner)
	}

	return header
}

func (m *ChatModel) messageView(msg chat.Message) string {
	author := AuthorStyle.Render(msg.Author)
	if msg.Author == m.user {
		author = SelfAuthorStyle.Render(msg.Author)
	}

	body := msg.Body
	if msg.IsImage() {
		body = MutedStyle.Render(fmt.Sprintf("%s [image, %d bytes]", IconImage, len(msg.Image)))
	}

	return fmt.Sprintf("%s %s: %s", TimestampStyle.Render(msg.Timestamp), author, body)
}

func (m *ChatModel) ringingView() string {
	from := m.remoteUser
	if from == "" {
		from = "someone"
	}
	return RingingBoxStyle.Render(fmt.Sprintf(
		"%s Incoming call from %s\n\nenter: accept   esc: decline",
		IconCall, BoldStyle.Render(from),
	))
}

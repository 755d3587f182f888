package ui

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// SessionInfo describes the joined room, shown once before the chat
// starts.
type SessionInfo struct {
	Room        string
	User        string
	ServerURL   string
	STUNServers int
}

// RenderSessionInfo prints the session summary table.
func RenderSessionInfo(info SessionInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgHiCyan, text.Bold}

	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"Room", info.Room},
		{"User", info.User},
		{"Server", info.ServerURL},
		{"STUN servers", strconv.Itoa(info.STUNServers)},
	})

	t.Render()
}

// RenderKeyHelp prints the chat keybindings table.
func RenderKeyHelp() {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendRows([]table.Row{
		{"enter", "send message (accept call while ringing)"},
		{"esc", "decline incoming call"},
		{"ctrl+t", "start / end audio call"},
		{"ctrl+u", "toggle mute during a call"},
		{"/img <path>", "send an image"},
		{"ctrl+c", "leave the room"},
	})

	t.Render()
}

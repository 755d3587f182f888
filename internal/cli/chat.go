package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/parley-app/parley/internal/call"
	"github.com/parley-app/parley/internal/chat"
	"github.com/parley-app/parley/internal/config"
	"github.com/parley-app/parley/internal/signaling"
	"github.com/parley-app/parley/internal/ui"
)

var (
	flagRoom   string
	flagName   string
	flagServer string
	flagSTUN   string
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"c"},
	Short:   "Join a chat room",
	Long: `Join a named room on the relay server and start chatting.

Examples:
  parley chat --room lobby --name alice
  parley chat -r lobby -n alice --server ws://chat.example.com/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagRoom == "" || flagName == "" {
			return fmt.Errorf("both --room and --name are required")
		}
		return runChat(flagRoom, flagName)
	},
}

func runChat(room, user string) error {
	cfg, err := config.Load(config.Options{
		ServerURL: flagServer,
		STUN:      flagSTUN,
	})
	if err != nil {
		return err
	}

	sp := ui.NewConnectionSpinner("Connecting to relay...")
	sp.Start()
	client := signaling.NewClient(cfg.ServerURL)
	if err := client.Connect(); err != nil {
		sp.Error("Could not reach " + cfg.ServerURL)
		return err
	}
	defer client.Close()
	sp.Success("Connected to " + cfg.ServerURL)

	handler := signaling.NewHandler(client)
	go func() {
		handler.Start()
		handler.Close()
	}()

	client.JoinRoom(room)

	ui.RenderSessionInfo(ui.SessionInfo{
		Room:        room,
		User:        user,
		ServerURL:   cfg.ServerURL,
		STUNServers: len(cfg.STUNServers),
	})
	ui.RenderKeyHelp()

	session := call.NewSession(client, call.Config{
		Room:        room,
		User:        user,
		STUNServers: cfg.STUNServers,
	})

	controller := newController(client, session, room, user)
	model := ui.NewChatModel(room, user, controller)
	program := tea.NewProgram(model)

	session.SetOnStateChange(func(state call.State) {
		program.Send(ui.CallStateChanged{State: state, RemoteUser: session.RemoteUser()})
	})
	session.SetOnRemoteMute(func(muted bool) {
		program.Send(ui.RemoteMuteChanged(muted))
	})

	tracker := chat.NewTypingTracker(user, func(indicator string) {
		program.Send(ui.TypingIndicator(indicator))
	})
	defer tracker.Stop()

	go pumpEvents(handler, session, tracker, user, program)

	if _, err := program.Run(); err != nil {
		return err
	}

	session.HangUp()
	ui.PrintSuccessf("Left room %s", room)
	return nil
}

// pumpEvents moves relay events into the call session and the view
// until the connection closes.
func pumpEvents(
	handler *signaling.Handler,
	session *call.Session,
	tracker *chat.TypingTracker,
	user string,
	program *tea.Program,
) {
	for {
		select {
		case msg, ok := <-handler.Messages:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			if msg.Author != user {
				program.Send(ui.MessageReceived(msg))
			}

		case name, ok := <-handler.Typing:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			tracker.Touch(name)

		case incoming, ok := <-handler.CallIncoming:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			session.HandleIncomingOffer(incoming.Signal, incoming.From)

		case answer, ok := <-handler.CallAccepted:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			session.HandleAnswer(answer)

		case candidate, ok := <-handler.Candidates:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			session.HandleCandidate(candidate)

		case _, ok := <-handler.CallEnded:
			if !ok {
				program.Send(ui.ConnectionLost{})
				return
			}
			session.HandleRemoteEnd()
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&flagRoom, "room", "r", "", "Room to join")
	chatCmd.Flags().StringVarP(&flagName, "name", "n", "", "Your display name")
	chatCmd.Flags().StringVar(&flagServer, "server", "", "Relay server websocket URL")
	chatCmd.Flags().StringVar(&flagSTUN, "stun", "", "Comma-separated STUN server URLs")
}

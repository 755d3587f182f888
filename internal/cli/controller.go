package cli

import (
	"github.com/parley-app/parley/internal/call"
	"github.com/parley-app/parley/internal/chat"
	"github.com/parley-app/parley/internal/signaling"
)

// sessionController connects the chat view to the signaling client and
// the call session.
type sessionController struct {
	client  *signaling.Client
	session *call.Session
	room    string
	user    string
}

func newController(client *signaling.Client, session *call.Session, room, user string) *sessionController {
	return &sessionController{
		client:  client,
		session: session,
		room:    room,
		user:    user,
	}
}

func (c *sessionController) SendText(body string) (chat.Message, error) {
	msg := chat.NewMessage(c.room, c.user, body)
	if err := c.client.SendChat(msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

func (c *sessionController) SendImage(path string) (chat.Message, error) {
	dataURL, err := chat.EncodeImageFile(path)
	if err != nil {
		return chat.Message{}, err
	}
	msg := chat.NewImageMessage(c.room, c.user, dataURL)
	if err := c.client.SendChat(msg); err != nil {
		return chat.Message{}, err
	}
	return msg, nil
}

func (c *sessionController) NotifyTyping() {
	_ = c.client.SendTyping(c.user, c.room)
}

func (c *sessionController) StartCall() error {
	return c.session.Start()
}

func (c *sessionController) AcceptCall() error {
	return c.session.Accept()
}

func (c *sessionController) DeclineCall() error {
	return c.session.Decline()
}

func (c *sessionController) HangUp() {
	c.session.HangUp()
}

func (c *sessionController) ToggleMute() bool {
	return c.session.ToggleMute()
}

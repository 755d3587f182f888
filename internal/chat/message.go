package chat

import (
	"time"

	"github.com/google/uuid"
)

// TypeImage marks a message whose body is an inline image (data URL).
const TypeImage = "image"

// Message is one chat event. Immutable once created; the id is generated
// by the sending client and only used as a rendering key, never for
// deduplication.
type Message struct {
	Room      string `json:"room"`
	Author    string `json:"author"`
	Body      string `json:"message,omitempty"`
	Image     string `json:"image,omitempty"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp"`
	ID        string `json:"id"`
}

// NewMessage builds a text message stamped with the local wall clock.
func NewMessage(room, author, body string) Message {
	return Message{
		Room:      room,
		Author:    author,
		Body:      body,
		Timestamp: time.Now().Format("15:04"),
		ID:        uuid.NewString(),
	}
}

// NewImageMessage builds an image message. The image is carried inline as
// a data URL, exactly as it will be rendered on the other side.
func NewImageMessage(room, author, dataURL string) Message {
	return Message{
		Room:      room,
		Author:    author,
		Image:     dataURL,
		Type:      TypeImage,
		Timestamp: time.Now().Format("15:04"),
		ID:        uuid.NewString(),
	}
}

// IsImage reports whether the message carries an image body.
func (m Message) IsImage() bool {
	return m.Type == TypeImage
}

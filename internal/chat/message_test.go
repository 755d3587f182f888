package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage("lobby", "alice", "hello there")

	require.Equal(t, "lobby", msg.Room)
	require.Equal(t, "alice", msg.Author)
	require.Equal(t, "hello there", msg.Body)
	require.NotEmpty(t, msg.ID)
	require.Regexp(t, `^\d{2}:\d{2}$`, msg.Timestamp)
	require.False(t, msg.IsImage())
}

func TestNewImageMessage(t *testing.T) {
	msg := NewImageMessage("lobby", "alice", "data:image/png;base64,aGk=")

	require.Equal(t, TypeImage, msg.Type)
	require.Empty(t, msg.Body)
	require.Equal(t, "data:image/png;base64,aGk=", msg.Image)
	require.True(t, msg.IsImage())
}

func TestMessageIDsAreUnique(t *testing.T) {
	a := NewMessage("lobby", "alice", "one")
	b := NewMessage("lobby", "alice", "one")
	require.NotEqual(t, a.ID, b.ID)
}

func TestMessageWireFieldNames(t *testing.T) {
	raw, err := json.Marshal(NewMessage("lobby", "alice", "hi"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.Contains(t, fields, "room")
	require.Contains(t, fields, "author")
	require.Contains(t, fields, "message")
	require.Contains(t, fields, "timestamp")
	require.Contains(t, fields, "id")
	// Empty image and type are omitted from text messages.
	require.NotContains(t, fields, "image")
	require.NotContains(t, fields, "type")
}

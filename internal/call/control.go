package call

import (
	"log/slog"

	"github.com/pion/webrtc/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// ControlChannelLabel names the data channel that rides alongside the
// audio for in-call control traffic.
const ControlChannelLabel = "call-control"

const frameTypeMute = "mute"

// controlFrame is the envelope for all control channel traffic.
type controlFrame struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// MutePayload syncs one side's mute toggle to the other.
type MutePayload struct {
	Muted bool `msgpack:"muted"`
}

// Control wraps the call-control data channel. Frames are msgpack
// encoded. Frames for a session that has already ended are dropped by
// the owning session's generation check.
type Control struct {
	dc     *webrtc.DataChannel
	onMute func(bool)
}

// NewControl attaches to a data channel and decodes incoming frames.
func NewControl(dc *webrtc.DataChannel, onMute func(bool)) *Control {
	c := &Control{dc: dc, onMute: onMute}

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		c.handle(msg.Data)
	})

	return c
}

func (c *Control) handle(data []byte) {
	var frame controlFrame
	if err := msgpack.Unmarshal(data, &frame); err != nil {
		slog.Debug("dropping malformed control frame", slog.Any("error", err))
		return
	}

	switch frame.Type {
	case frameTypeMute:
		var p MutePayload
		if err := msgpack.Unmarshal(frame.Payload, &p); err != nil {
			slog.Debug("dropping malformed mute payload", slog.Any("error", err))
			return
		}
		if c.onMute != nil {
			c.onMute(p.Muted)
		}

	default:
		slog.Debug("ignoring unknown control frame", slog.String("type", frame.Type))
	}
}

// SendMute announces the local mute state to the peer. A channel that is
// not open yet silently drops the frame; mute is resynced on toggle.
func (c *Control) SendMute(muted bool) error {
	if c.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return nil
	}

	payload, err := msgpack.Marshal(MutePayload{Muted: muted})
	if err != nil {
		return newError("encode mute frame", err)
	}
	frame, err := msgpack.Marshal(controlFrame{Type: frameTypeMute, Payload: payload})
	if err != nil {
		return newError("encode control frame", err)
	}

	return c.dc.Send(frame)
}

// Close releases the underlying data channel.
func (c *Control) Close() {
	c.dc.Close()
}

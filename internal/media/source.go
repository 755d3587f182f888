package media

import (
	"errors"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// ErrUnavailable is returned when local audio capture cannot be acquired.
// It is reported to the local user only; nothing is sent to the peer.
var ErrUnavailable = errors.New("local audio unavailable")

const frameDuration = 20 * time.Millisecond

// FrameProvider produces one encoded Opus frame per call, paced by the
// source. It is the capture backend: a microphone encoder in production,
// canned frames in tests.
type FrameProvider func() ([]byte, error)

// Source is the local media handle attached to a call. The call session
// is its only owner and closes it on every exit path.
type Source interface {
	Track() webrtc.TrackLocal
	Start() error
	Close() error
}

// sampleSource feeds a static sample track from a FrameProvider at the
// Opus frame rate.
type sampleSource struct {
	track    *webrtc.TrackLocalStaticSample
	provider FrameProvider

	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// NewSource builds an audio source backed by the given provider.
func NewSource(provider FrameProvider) (Source, error) {
	if provider == nil {
		return nil, ErrUnavailable
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{
			MimeType:  webrtc.MimeTypeOpus,
			ClockRate: 48000,
			Channels:  2,
		},
		"audio", "parley",
	)
	if err != nil {
		return nil, err
	}

	return &sampleSource{
		track:    track,
		provider: provider,
		done:     make(chan struct{}),
	}, nil
}

func (s *sampleSource) Track() webrtc.TrackLocal {
	return s.track
}

// Start begins pushing frames onto the track. Idempotent.
func (s *sampleSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	go s.pump()
	return nil
}

func (s *sampleSource) pump() {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			frame, err := s.provider()
			if err != nil {
				return
			}
			if err := s.track.WriteSample(media.Sample{Data: frame, Duration: frameDuration}); err != nil {
				return
			}
		}
	}
}

// Close stops the frame pump. Idempotent.
func (s *sampleSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
	return nil
}

// silentFrame is a minimal Opus frame decoding to silence. Used when no
// capture backend is wired up, so negotiation still carries a live track.
var silentFrame = []byte{0xf8, 0xff, 0xfe}

// Silence returns a provider that produces silent Opus frames.
func Silence() FrameProvider {
	return func() ([]byte, error) {
		return silentFrame, nil
	}
}

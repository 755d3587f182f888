package call

// State is the session's position in the negotiation sequence. Exactly
// one State is held at a time.
type State int

const (
	// StateIdle means no call activity.
	StateIdle State = iota

	// StateCalling means we sent an offer and are waiting for an answer.
	StateCalling

	// StateRinging means a remote offer is waiting for Accept or Decline.
	StateRinging

	// StateConnected means descriptions are exchanged and media flows
	// directly between the peers.
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalling:
		return "calling"
	case StateRinging:
		return "ringing"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

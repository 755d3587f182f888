package chat

import (
	"sync"
	"time"
)

// QuietWindow is how long a typing indicator stays visible after the
// last keystroke. There is no "stopped typing" event on the wire; the
// indicator is cleared by this local timer.
const QuietWindow = 2 * time.Second

// TypingTracker turns the stateless typing event stream into a single
// indicator line. Each received event restarts the quiet-window timer;
// events announcing the local user are ignored.
type TypingTracker struct {
	mu       sync.Mutex
	self     string
	quiet    time.Duration
	current  string
	timer    *time.Timer
	onChange func(indicator string)
}

// NewTypingTracker creates a tracker for the given local user name.
// onChange is invoked with the indicator text, or "" when it clears.
func NewTypingTracker(self string, onChange func(string)) *TypingTracker {
	return &TypingTracker{
		self:     self,
		quiet:    QuietWindow,
		onChange: onChange,
	}
}

// Touch records a typing event from userName.
func (t *TypingTracker) Touch(userName string) {
	if userName == "" || userName == t.self {
		return
	}

	t.mu.Lock()
	t.current = userName + " is typing..."
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.quiet, t.expire)
	indicator := t.current
	t.mu.Unlock()

	t.onChange(indicator)
}

// Indicator returns the current indicator text, or "".
func (t *TypingTracker) Indicator() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Stop cancels any pending expiry. The indicator is left as-is.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *TypingTracker) expire() {
	t.mu.Lock()
	t.current = ""
	t.timer = nil
	t.mu.Unlock()

	t.onChange("")
}

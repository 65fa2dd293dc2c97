package dispatch

import (
	"sync"
	"time"
)

// DefaultClearDelay is how long a failure notice stays visible.
const DefaultClearDelay = 2 * time.Second

// Notice is the transient failure flag. Raise shows it and schedules a clear
// after the delay. Raising again while a clear is pending does not restart the
// countdown, and nothing else cancels it.
type Notice struct {
	mu       sync.Mutex
	active   bool
	pending  bool
	delay    time.Duration
	schedule func(time.Duration, func())
}

// NewNotice returns a lowered notice that clears delay after being raised. A
// non-positive delay selects DefaultClearDelay.
func NewNotice(delay time.Duration) *Notice {
	if delay <= 0 {
		delay = DefaultClearDelay
	}
	return &Notice{
		delay: delay,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

// Raise shows the notice and schedules its clear unless one is pending.
func (n *Notice) Raise() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.active = true
	if n.pending {
		return
	}
	n.pending = true
	n.schedule(n.delay, n.clear)
}

// Active reports whether the notice is currently shown.
func (n *Notice) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

func (n *Notice) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = false
	n.pending = false
}

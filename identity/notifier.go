package identity

import "sync"

// sessionNotifier owns a gateway adapter's view of the signed-in identity and
// fans change notifications out to subscribers. Notifications are dispatched
// under the lock so subscribers observe changes in arrival order; callbacks
// must not re-enter the gateway.
type sessionNotifier struct {
	mu      sync.Mutex
	current *Identity
	subs    map[int]ChangeFunc
	nextID  int
}

func newSessionNotifier() *sessionNotifier {
	return &sessionNotifier{subs: make(map[int]ChangeFunc)}
}

// subscribe registers fn and invokes it immediately with the current identity.
func (n *sessionNotifier) subscribe(fn ChangeFunc) UnsubscribeFunc {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	fn(n.current.Clone())

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// set replaces the current identity and notifies every subscriber.
func (n *sessionNotifier) set(id *Identity) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.current = id.Clone()
	for _, fn := range n.subs {
		fn(n.current.Clone())
	}
}

// snapshot returns a copy of the current identity.
func (n *sessionNotifier) snapshot() *Identity {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.Clone()
}

package purchase

import "sync"

// FlowState is where a user is in the purchase flow
type FlowState string

const (
	StateBrowsing          FlowState = "browsing"
	StateContactRequested  FlowState = "contact_requested"
	StateContactCaptured   FlowState = "contact_captured"
	StateCheckoutInitiated FlowState = "checkout_initiated"
	StateResolved          FlowState = "resolved"
)

// Tracker keeps the flow state of every user in memory
type Tracker struct {
	mu     sync.RWMutex
	states map[int64]FlowState
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		states: make(map[int64]FlowState),
	}
}

// Set sets a user's state
func (t *Tracker) Set(chatID int64, state FlowState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[chatID] = state
}

// Get returns a user's state; users never seen are browsing
func (t *Tracker) Get(chatID int64) FlowState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.states[chatID]; ok {
		return s
	}
	return StateBrowsing
}

// Clear puts a user back to browsing
func (t *Tracker) Clear(chatID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, chatID)
}

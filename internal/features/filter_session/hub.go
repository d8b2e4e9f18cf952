package filter_session

import "sync"

const subscriberBuffer = 8

// Hub fans session snapshots out to websocket subscribers
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Snapshot]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Snapshot]struct{})}
}

// Subscribe returns a channel of snapshots for sessionID and a cancel func
// that must be called once the subscriber is gone.
func (h *Hub) Subscribe(sessionID string) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)

	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan Snapshot]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[sessionID]; ok {
				if _, live := set[ch]; live {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, sessionID)
				}
			}
		})
	}
}

// Publish delivers snap to every subscriber of its session. Slow subscribers
// miss snapshots instead of blocking the publisher.
func (h *Hub) Publish(snap Snapshot) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := 0
	for ch := range h.subs[snap.ID] {
		select {
		case ch <- snap:
			delivered++
		default:
		}
	}
	return delivered
}

// Close disconnects every subscriber of sessionID
func (h *Hub) Close(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		close(ch)
	}
	delete(h.subs, sessionID)
}

func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}

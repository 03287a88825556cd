package realtime

import "sync"

// Hub tracks the open live streams of each user. A user may have several (tabs, devices).
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[chan string]struct{})}
}

func (h *Hub) Subscribe(userID string) chan string {
	ch := make(chan string, 10)
	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[chan string]struct{})
	}
	h.clients[userID][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(userID string, ch chan string) {
	h.mu.Lock()
	if set, ok := h.clients[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()
}

// Send makes one non-blocking attempt per open stream of the user and reports whether at
// least one took the event.
func (h *Hub) Send(userID string, evt string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	delivered := false
	for ch := range h.clients[userID] {
		select {
		case ch <- evt:
			delivered = true
		default:
			// drop if slow, the poller picks it up
		}
	}
	return delivered
}

func (h *Hub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

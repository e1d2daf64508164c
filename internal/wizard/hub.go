package wizard

import "sync"

// hub fans progress events out to job subscribers. Slow subscribers drop
// events rather than stall the import.
type hub struct {
	mu   sync.Mutex
	subs map[string][]chan Event
}

func newHub() *hub {
	return &hub{subs: make(map[string][]chan Event)}
}

func (h *hub) subscribe(jobID string) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[jobID] = append(h.subs[jobID], ch)
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(jobID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.subs[jobID]
	for i, c := range subs {
		if c == ch {
			h.subs[jobID] = append(subs[:i], subs[i+1:]...)
			close(c)
			break
		}
	}
	if len(h.subs[jobID]) == 0 {
		delete(h.subs, jobID)
	}
}

func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[ev.JobID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

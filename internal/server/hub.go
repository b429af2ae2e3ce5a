package server

import (
	"sort"
	"sync"

	"github.com/ayusman/handfusion/internal/fusion"
)

// Hub holds the latest encoded frames and hand summary published by the
// tracking loop, and fans summaries out to subscribers.
type Hub struct {
	mu      sync.RWMutex
	seq     int64
	frames  map[string][]byte
	summary fusion.Summary
	viewers map[string]int
	subs    map[chan fusion.Summary]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		frames:  make(map[string][]byte),
		viewers: make(map[string]int),
		subs:    make(map[chan fusion.Summary]struct{}),
	}
}

// Publish replaces the current frames and summary. Views missing from frames
// are no longer available. Slow subscribers only see the latest summary.
func (h *Hub) Publish(frames map[string][]byte, s fusion.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	h.frames = frames
	h.summary = s

	for ch := range h.subs {
		select {
		case ch <- s:
		default:
			// Drop the stale summary and replace it
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Frame returns the latest encoded frame for view and the publish sequence
// it belongs to.
func (h *Hub) Frame(view string) ([]byte, int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, ok := h.frames[view]
	return b, h.seq, ok
}

// Summary returns the latest summary and its publish sequence.
func (h *Hub) Summary() (fusion.Summary, int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.summary, h.seq
}

// Watch registers a viewer of view. The returned function unregisters it.
func (h *Hub) Watch(view string) func() {
	h.mu.Lock()
	h.viewers[view]++
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if h.viewers[view]--; h.viewers[view] <= 0 {
				delete(h.viewers, view)
			}
		})
	}
}

// WatchedViews returns the views with at least one viewer, sorted.
func (h *Hub) WatchedViews() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	views := make([]string, 0, len(h.viewers))
	for v := range h.viewers {
		views = append(views, v)
	}
	sort.Strings(views)
	return views
}

// Subscribe returns a channel receiving each published summary and a
// function that cancels the subscription.
func (h *Hub) Subscribe() (<-chan fusion.Summary, func()) {
	ch := make(chan fusion.Summary, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

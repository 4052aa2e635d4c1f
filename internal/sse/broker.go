// Package sse streams vault, lock and view-mode events to HTTP clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	TypeNoteCreated     = "note.created"
	TypeNoteUpdated     = "note.updated"
	TypeNoteDeleted     = "note.deleted"
	TypeLockChanged     = "lock.changed"
	TypeModeApplied     = "mode.applied"
	TypeNotice          = "notice"
	TypeExplorerUpdated = "explorer.updated"
)

const (
	clientBuffer      = 64
	keepAliveInterval = 15 * time.Second
)

var (
	explorerFrame  = []byte("event: " + TypeExplorerUpdated + "\ndata: {}\n\n")
	keepAliveFrame = []byte(": ping\n\n")
)

// Event is one server-sent event. Data is encoded as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Frame renders e in text/event-stream framing.
func Frame(e Event) ([]byte, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("sse: encode %s: %w", e.Type, err)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", e.Type, payload), nil
}

// hub is the state owned by the broker loop.
type hub struct {
	clients     map[chan []byte]struct{}
	lastRefresh time.Time
}

// broadcast hands frame to every client whose buffer has room.
func (h *hub) broadcast(frame []byte) {
	for ch := range h.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (h *hub) refreshDue(every time.Duration, now time.Time) bool {
	if now.Sub(h.lastRefresh) < every {
		return false
	}
	h.lastRefresh = now
	return true
}

// Broker fans events out to subscribed clients. Every change to the client
// set runs as an op on the loop goroutine.
type Broker struct {
	refreshMin time.Duration

	ops     chan func(*hub)
	done    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits explorer.updated at most once per
// refreshThrottle.
func NewBroker(refreshThrottle time.Duration) *Broker {
	if refreshThrottle <= 0 {
		refreshThrottle = 2 * time.Second
	}
	b := &Broker{
		refreshMin: refreshThrottle,
		ops:        make(chan func(*hub)),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.stopped)

	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.done:
			for ch := range h.clients {
				close(ch)
			}
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// do runs op on the loop. It reports false once the broker is closed.
func (b *Broker) do(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	select {
	case b.ops <- op:
		return true
	case <-b.stopped:
		return false
	}
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.done)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed on
// Unsubscribe or Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.do(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.do(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	if !b.do(func(h *hub) { resp <- len(h.clients) }) {
		return 0
	}
	return <-resp
}

func (b *Broker) emit(e Event, refresh bool) {
	frame, err := Frame(e)
	if err != nil {
		return
	}
	b.do(func(h *hub) {
		h.broadcast(frame)
		if refresh && h.refreshDue(b.refreshMin, time.Now()) {
			h.broadcast(explorerFrame)
		}
	})
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(e Event) {
	b.emit(e, false)
}

// PublishNoteEvent publishes a watcher change (kind is created, updated or
// deleted) followed by a throttled explorer.updated.
func (b *Broker) PublishNoteEvent(kind, path string) {
	var typ string
	switch kind {
	case "created":
		typ = TypeNoteCreated
	case "updated":
		typ = TypeNoteUpdated
	case "deleted":
		typ = TypeNoteDeleted
	default:
		return
	}
	b.emit(Event{Type: typ, Data: map[string]string{"path": path}}, true)
}

// LockChange is the payload of lock.changed.
type LockChange struct {
	Target string `json:"target"`
	Path   string `json:"path"`
	Rule   string `json:"rule,omitempty"`
	Locked bool   `json:"locked"`
}

// PublishLockChanged announces a lock or unlock and refreshes explorers.
func (b *Broker) PublishLockChanged(c LockChange) {
	b.emit(Event{Type: TypeLockChanged, Data: c}, true)
}

// PublishNotice sends a user-facing notice.
func (b *Broker) PublishNotice(text string) {
	b.emit(Event{Type: TypeNotice, Data: map[string]string{"text": text}}, false)
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes. Idle streams get a comment line every keepAliveInterval.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(keepAliveInterval)
	defer ping.Stop()

	for {
		var frame []byte
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			frame = keepAliveFrame
		case msg, ok := <-ch:
			if !ok {
				return
			}
			frame = msg
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		flusher.Flush()
	}
}

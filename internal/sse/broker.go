// Package sse streams export notifications to preview clients as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event names sent on the stream.
const (
	EventExportCompleted = "export.completed"
	EventExportFailed    = "export.failed"
	EventSiteReload      = "site.reload"
)

// ExportSummary is the payload of export events.
type ExportSummary struct {
	Written int    `json:"written"`
	Pruned  int    `json:"pruned"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// Broker fans export summaries out to connected clients. A single loop
// goroutine owns the client set, the last summary and the reload throttle.
type Broker struct {
	reloadMin time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	exports chan ExportSummary
	count   chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. site.reload is sent at most once per
// reloadThrottle.
func NewBroker(reloadThrottle time.Duration) *Broker {
	if reloadThrottle <= 0 {
		reloadThrottle = time.Second
	}
	b := &Broker{
		reloadMin: reloadThrottle,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		exports:   make(chan ExportSummary, 16),
		count:     make(chan chan int),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go b.loop()
	return b
}

func frame(event string, data any) []byte {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event, payload)
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var last []byte
	var lastReload time.Time

	send := func(msg []byte) {
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// slow client; it catches up on the next export
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}
			if last != nil {
				ch <- last
			}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case sum := <-b.exports:
			event := EventExportCompleted
			if sum.Error != "" {
				event = EventExportFailed
			}
			last = frame(event, sum)
			send(last)
			if now := time.Now(); now.Sub(lastReload) >= b.reloadMin {
				lastReload = now
				send(frame(EventSiteReload, struct{}{}))
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the loop and closes every client channel. It is safe to call
// more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. A client joining after an export first
// receives that export's event.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
		return <-resp
	case <-b.stopped:
		return 0
	}
}

// PublishExport announces a finished export, followed by a throttled
// site.reload.
func (b *Broker) PublishExport(sum ExportSummary) {
	if b.closed.Load() {
		return
	}
	select {
	case b.exports <- sum:
	case <-b.stopped:
	}
}

// ServeHTTP streams events until the client disconnects or the broker is
// closed.
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
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

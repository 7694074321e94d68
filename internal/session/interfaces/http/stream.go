package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"roastlog/internal/alarms"
	"roastlog/internal/eventbus"
	"roastlog/internal/session/application/events"
)

type streamMessage struct {
	event   string
	payload []byte
}

// Broker fans session events out to connected SSE clients.
type Broker struct {
	mu      sync.Mutex
	clients map[chan streamMessage]struct{}
}

// NewBroker constructs a broker.
func NewBroker() *Broker {
	return &Broker{clients: make(map[chan streamMessage]struct{})}
}

// Wire subscribes the broker to session and alarm events on the bus. Every
// boundary crossing reaches the stream, including ones fired while a prior
// reading prompt is unresolved; clients decide whether to queue or coalesce
// prompts.
func (b *Broker) Wire(bus eventbus.Bus) {
	eventbus.On(bus, func(_ context.Context, e events.ClockTicked) error {
		b.send("tick", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.BoundaryCrossed) error {
		b.send("boundary", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.ReadingRecorded) error {
		b.send("reading", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.ReadingRemoved) error {
		b.send("reading-removed", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.SessionStarted) error {
		b.send("session-started", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.SessionStopped) error {
		b.send("session-stopped", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e events.SessionReset) error {
		b.send("session-reset", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e alarms.Tripped) error {
		b.send("alarm", e)
		return nil
	})
	eventbus.On(bus, func(_ context.Context, e alarms.Cleared) error {
		b.send("alarm-cleared", e)
		return nil
	})
}

func (b *Broker) send(event string, data any) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	// Sends stay under the lock so a concurrent Unsubscribe cannot close a
	// channel mid-broadcast; slow clients are skipped, never waited on.
	b.mu.Lock()
	for ch := range b.clients {
		select {
		case ch <- streamMessage{event: event, payload: payload}:
		default:
		}
	}
	b.mu.Unlock()
}

// Subscribe registers a new client channel.
func (b *Broker) Subscribe() chan streamMessage {
	if b == nil {
		return nil
	}
	ch := make(chan streamMessage, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client channel.
func (b *Broker) Unsubscribe(ch chan streamMessage) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

// StreamHandler serves the live session SSE stream.
type StreamHandler struct {
	broker *Broker
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *Broker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// ServeHTTP handles GET /api/v1/session/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.broker.Subscribe()
	if ch == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	defer h.broker.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case message, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write([]byte("event: " + message.event + "\n"))
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(message.payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

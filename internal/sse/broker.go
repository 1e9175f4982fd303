// Package sse streams catalog change notifications as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultQueueSize = 64
	defaultHeartbeat = 15 * time.Second
)

// Change is the payload of an entity change event.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

type subscriber struct {
	frames   chan []byte
	entities map[string]bool // empty: every entity
}

func (s *subscriber) wants(entity string) bool {
	return len(s.entities) == 0 || s.entities[entity]
}

// Broker fans change events out to subscribers. The subscriber set belongs to
// one goroutine; a subscriber whose queue is full misses events rather than
// stalling the others.
type Broker struct {
	join    chan *subscriber
	leave   chan *subscriber
	changes chan Change

	queueSize int
	heartbeat time.Duration

	done     chan struct{}
	finished chan struct{}
	stopOnce sync.Once
}

// Option configures a Broker.
type Option func(*Broker)

// WithQueueSize sets how many frames a subscriber may have pending.
func WithQueueSize(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithHeartbeat sets the interval of keep-alive comments on open streams.
// Zero disables them.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// NewBroker starts a broker.
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		join:      make(chan *subscriber),
		leave:     make(chan *subscriber),
		changes:   make(chan Change, 256),
		queueSize: defaultQueueSize,
		heartbeat: defaultHeartbeat,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.loop()
	return b
}

func (b *Broker) loop() {
	defer close(b.finished)

	subs := make(map[*subscriber]struct{})
	var seq uint64

	for {
		select {
		case <-b.done:
			for s := range subs {
				close(s.frames)
			}
			return

		case s := <-b.join:
			subs[s] = struct{}{}

		case s := <-b.leave:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.frames)
			}

		case c := <-b.changes:
			seq++
			frame, err := encodeFrame(seq, c)
			if err != nil {
				slog.Error("sse: encode change", slog.String("error", err.Error()))
				continue
			}
			for s := range subs {
				if !s.wants(c.Entity) {
					continue
				}
				select {
				case s.frames <- frame:
				default:
					slog.Debug("sse: subscriber queue full, change dropped",
						slog.String("event", c.Entity+"."+c.Action))
				}
			}
		}
	}
}

func encodeFrame(seq uint64, c Change) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s.%s\ndata: %s\n\n", seq, c.Entity, c.Action, data), nil
}

// PublishChange broadcasts "<entity>.<action>", e.g. "artist.created".
// It is a no-op once the broker is closed.
func (b *Broker) PublishChange(entity, action string, id int64) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.changes <- Change{Entity: entity, Action: action, ID: id}:
	case <-b.done:
	}
}

// Subscribe registers a subscriber for the given entities (all when none are
// named). Frames arrive on the returned channel until cancel is called or the
// broker closes.
func (b *Broker) Subscribe(entities ...string) (frames <-chan []byte, cancel func()) {
	s := &subscriber{frames: make(chan []byte, b.queueSize)}
	if len(entities) > 0 {
		s.entities = make(map[string]bool, len(entities))
		for _, e := range entities {
			s.entities[e] = true
		}
	}

	select {
	case b.join <- s:
	case <-b.done:
		close(s.frames)
		return s.frames, func() {}
	}

	var once sync.Once
	return s.frames, func() {
		once.Do(func() {
			select {
			case b.leave <- s:
			case <-b.finished:
			}
		})
	}
}

// Close ends every stream and stops the broker.
func (b *Broker) Close() {
	b.stopOnce.Do(func() { close(b.done) })
	<-b.finished
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). The optional
// "entity" query parameter, repeated or comma separated, limits the stream to
// those entities.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames, cancel := b.Subscribe(entityFilter(r)...)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var tick <-chan time.Time
	if b.heartbeat > 0 {
		ticker := time.NewTicker(b.heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
		case <-tick:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func entityFilter(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["entity"] {
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				out = append(out, e)
			}
		}
	}
	return out
}

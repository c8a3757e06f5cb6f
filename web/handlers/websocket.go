package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket" //nolint:staticcheck // TODO: migrate to github.com/coder/websocket

	"github.com/scrypster/schemaground/internal/engine"
)

// ActivityHub fans grounding activity events out to websocket subscribers.
// The grounder publishes one event per pipeline stage; each event is encoded
// once and delivered to every subscriber on /ws as a JSON text frame.
type ActivityHub struct {
	subscribers map[*subscriber]struct{}
	events      chan engine.ActivityEvent
	attach      chan *subscriber
	detach      chan *subscriber
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// subscriber is one delivery queue. conn is nil for hub-level tests that
// read frames directly.
type subscriber struct {
	frames chan []byte
	conn   *websocket.Conn //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
}

func (s *subscriber) closeConn() {
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "") //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
	}
}

// NewActivityHub creates a hub. Call Run before publishing.
func NewActivityHub() *ActivityHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActivityHub{
		subscribers: make(map[*subscriber]struct{}),
		events:      make(chan engine.ActivityEvent, 256),
		attach:      make(chan *subscriber),
		detach:      make(chan *subscriber),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run dispatches events and subscription changes until Stop is called.
func (h *ActivityHub) Run() {
	for {
		select {
		case sub := <-h.attach:
			h.mu.Lock()
			h.subscribers[sub] = struct{}{}
			n := len(h.subscribers)
			h.mu.Unlock()
			log.Printf("Activity feed subscriber connected (total: %d)", n)

		case sub := <-h.detach:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.frames)
			}
			n := len(h.subscribers)
			h.mu.Unlock()
			log.Printf("Activity feed subscriber disconnected (total: %d)", n)

		case event := <-h.events:
			frame, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: Failed to encode activity event %s: %v",
					event.GroundingID, err)
				continue
			}
			h.mu.Lock()
			for sub := range h.subscribers {
				select {
				case sub.frames <- frame:
				default:
					// Subscriber cannot keep up, drop it.
					close(sub.frames)
					delete(h.subscribers, sub)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			log.Println("Activity feed hub stopping...")
			return
		}
	}
}

// Stop shuts down the hub and disconnects every subscriber.
func (h *ActivityHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for sub := range h.subscribers {
		close(sub.frames)
		sub.closeConn()
	}
	h.subscribers = make(map[*subscriber]struct{})
	h.mu.Unlock()
}

// Publish queues a grounding activity event for broadcast. It implements
// engine.EventSink and never blocks the grounding pipeline.
func (h *ActivityHub) Publish(event engine.ActivityEvent) {
	select {
	case h.events <- event:
	default:
		log.Printf("WARNING: Activity feed backlog full, dropping event %s/%s",
			event.GroundingID, event.Stage)
	}
}

func (h *ActivityHub) subscribe(sub *subscriber) {
	select {
	case h.attach <- sub:
	case <-h.ctx.Done():
	}
}

func (h *ActivityHub) unsubscribe(sub *subscriber) {
	select {
	case h.detach <- sub:
	case <-h.ctx.Done():
	}
}

// ServeHTTP upgrades the request to a websocket and streams activity events
// until the client disconnects.
func (h *ActivityHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != "" {
		allowed := map[string]bool{
			"http://localhost:6470": true,
			"http://127.0.0.1:6470": true,
		}
		if !allowed[origin] {
			http.Error(w, "Forbidden: invalid origin", http.StatusForbidden)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{ //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		OriginPatterns: []string{"localhost:6470", "127.0.0.1:6470"},
	})
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		frames: make(chan []byte, 256),
		conn:   conn,
	}
	h.subscribe(sub)

	go h.writePump(sub)
	go h.readPump(sub)
}

// writePump forwards queued frames to the connection.
func (h *ActivityHub) writePump(sub *subscriber) {
	defer func() {
		h.unsubscribe(sub)
		sub.closeConn()
	}()

	for frame := range sub.frames {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := sub.conn.Write(ctx, websocket.MessageText, frame) //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
		cancel()

		if err != nil {
			log.Printf("ERROR: WebSocket write failed: %v", err)
			return
		}
	}
}

// readPump drains the connection to notice disconnects. The feed is one-way;
// nothing a subscriber sends is interpreted.
func (h *ActivityHub) readPump(sub *subscriber) {
	defer func() {
		h.unsubscribe(sub)
		sub.closeConn()
	}()

	for {
		if _, _, err := sub.conn.Read(context.Background()); err != nil { //nolint:staticcheck // TODO: migrate to github.com/coder/websocket
			return
		}
	}
}

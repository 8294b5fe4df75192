package stream

import (
	"sync"

	jsonutil "pivotdash/utils/json"
)

// Event is the wire shape pushed over SSE.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans events out to SSE clients. Each client gets a buffered channel;
// slow clients drop events instead of blocking the producers. The latest
// event per (type, key) is kept for replay on connect.
type Hub struct {
	mu      sync.Mutex
	clients map[chan []byte]bool

	latest     map[string][]byte
	latestKeys []string
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[chan []byte]bool),
		latest:  make(map[string][]byte),
	}
}

// Publish broadcasts an event. key dedupes the replay snapshot, e.g.
// "ticker:KRW-BTC" so a new client only sees the latest ticker per pair.
func (h *Hub) Publish(typ, key string, data interface{}) {
	payload := jsonutil.SerializeMessageBody(Event{Type: typ, Data: data})

	h.mu.Lock()
	defer h.mu.Unlock()

	snapshotKey := typ + ":" + key
	if _, ok := h.latest[snapshotKey]; !ok {
		h.latestKeys = append(h.latestKeys, snapshotKey)
	}
	h.latest[snapshotKey] = payload

	for ch := range h.clients {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribe registers a client and returns its channel, the replay snapshot
// and an unsubscribe func.
func (h *Hub) Subscribe() (chan []byte, [][]byte, func()) {
	ch := make(chan []byte, 50)

	h.mu.Lock()
	h.clients[ch] = true
	snapshot := make([][]byte, 0, len(h.latestKeys))
	for _, key := range h.latestKeys {
		snapshot = append(snapshot, h.latest[key])
	}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		if h.clients[ch] {
			delete(h.clients, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, snapshot, unsubscribe
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

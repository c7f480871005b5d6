// Package ws implements the realtime gateway: a topic-based hub fanning
// containment-graph events out to WebSocket subscribers. Delivery is best
// effort; a slow subscriber loses frames, never blocks a publisher.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Frame is the wire envelope for one event delivery.
type Frame struct {
	Event string `json:"event"`
	Topic string `json:"topic"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks subscriptions and fans published events out to subscribers.
// One hub serves the whole process; services publish through it and the
// gateway handler registers connections with it.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	clients map[*Client]map[string]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		topics:  make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]map[string]struct{}),
	}
}

// Publish sends an event to every client subscribed to topic. The frame is
// marshalled once and the bytes shared across subscribers. Clients whose
// send buffers are full are skipped.
func (h *Hub) Publish(topic, event string, payload any) {
	frame, err := json.Marshal(Frame{Event: event, Topic: topic, Data: payload})
	if err != nil {
		h.logger.Error("event marshal failed",
			zap.String("event", event),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	eventsPublished.WithLabelValues(event).Inc()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.topics[topic] {
		select {
		case client.send <- frame:
			eventsDelivered.Inc()
		default:
			eventsDropped.Inc()
			h.logger.Warn("dropping event for slow client",
				zap.String("event", event),
				zap.String("topic", topic),
				zap.String("user_id", client.userID),
			)
		}
	}
}

// register adds a connected client to the hub.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = make(map[string]struct{})
	connectionsGauge.Inc()
	return true
}

// unregister drops a client and all its subscriptions, and closes its send
// channel so the write pump exits.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[c]
	if !ok {
		return
	}
	for topic := range subs {
		h.dropSubscription(c, topic)
	}
	delete(h.clients, c)
	close(c.send)
	connectionsGauge.Dec()
}

// subscribe adds the client to each named topic. Any authenticated
// connection may subscribe to any topic; membership is enforced on reads and
// writes, not on event delivery.
func (h *Hub) subscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[c]
	if !ok {
		return
	}
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		set, ok := h.topics[topic]
		if !ok {
			set = make(map[*Client]struct{})
			h.topics[topic] = set
		}
		set[c] = struct{}{}
		subs[topic] = struct{}{}
	}
}

// unsubscribe removes the client from each named topic.
func (h *Hub) unsubscribe(c *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[c]
	if !ok {
		return
	}
	for _, topic := range topics {
		delete(subs, topic)
		h.dropSubscription(c, topic)
	}
}

// dropSubscription removes c from a topic set, pruning the set when it
// empties. Caller holds h.mu.
func (h *Hub) dropSubscription(c *Client, topic string) {
	set, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.topics, topic)
	}
}

// SubscriberCount returns how many clients are subscribed to topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Shutdown closes every connection and rejects further registrations.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}

	h.logger.Info("gateway hub shut down", zap.Int("connections_closed", len(clients)))
}

package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestClient registers a hub-only client with no real connection. Frames
// are read straight off the send channel.
func newTestClient(t *testing.T, h *Hub, buffer int) *Client {
	t.Helper()
	c := &Client{
		hub:    h,
		send:   make(chan []byte, buffer),
		userID: "u1",
		logger: zap.NewNop(),
	}
	require.True(t, h.register(c))
	return c
}

func receiveFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var f Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	default:
		t.Fatal("no frame queued")
		return Frame{}
	}
}

func TestPublish_DeliversToSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop())
	subscribed := newTestClient(t, h, 4)
	other := newTestClient(t, h, 4)

	h.subscribe(subscribed, []string{"guild-1"})
	h.subscribe(other, []string{"guild-2"})

	h.Publish("guild-1", "message", map[string]string{"id": "m1"})

	frame := receiveFrame(t, subscribed)
	assert.Equal(t, "message", frame.Event)
	assert.Equal(t, "guild-1", frame.Topic)

	assert.Empty(t, other.send)
}

func TestPublish_NoSubscribersIsANoOp(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Publish("guild-1", "message", nil)
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(t, h, 1)
	h.subscribe(c, []string{"guild-1"})

	h.Publish("guild-1", "message", map[string]string{"id": "m1"})
	// Buffer is full now; this one is dropped, not blocked on.
	h.Publish("guild-1", "message", map[string]string{"id": "m2"})

	var f Frame
	require.NoError(t, json.Unmarshal(<-c.send, &f))
	assert.Empty(t, c.send)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(t, h, 4)

	h.subscribe(c, []string{"guild-1", "guild-2", ""})
	assert.Equal(t, 1, h.SubscriberCount("guild-1"))
	assert.Equal(t, 1, h.SubscriberCount("guild-2"))
	assert.Equal(t, 0, h.SubscriberCount(""))

	h.unsubscribe(c, []string{"guild-1"})
	assert.Equal(t, 0, h.SubscriberCount("guild-1"))

	h.Publish("guild-1", "message", nil)
	assert.Empty(t, c.send)
}

func TestUnregister_DropsAllSubscriptions(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(t, h, 4)
	h.subscribe(c, []string{"guild-1", "guild-2"})

	h.unregister(c)

	assert.Equal(t, 0, h.SubscriberCount("guild-1"))
	assert.Equal(t, 0, h.SubscriberCount("guild-2"))

	// The send channel is closed so the write pump exits.
	_, open := <-c.send
	assert.False(t, open)

	// Double unregister is safe.
	h.unregister(c)
}

func TestShutdown_RejectsNewRegistrations(t *testing.T) {
	h := NewHub(zap.NewNop())
	h.Shutdown()

	c := &Client{hub: h, send: make(chan []byte, 1), logger: zap.NewNop()}
	assert.False(t, h.register(c))
}

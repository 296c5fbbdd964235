package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defrag-racing/DefragLive-WebSocket-Bridge-Server/internal/domain"
)

type fakeConn struct {
	mu   sync.Mutex
	id   string
	sent [][]byte
	fail bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection closed")
	}
	c.sent = append(c.sent, data)
	return nil
}

func (c *fakeConn) Close() error { return nil }

var _ domain.Connection = (*fakeConn)(nil)

func (c *fakeConn) received() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	h := New()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	h.Register(c1)
	h.Register(c2)
	require.Equal(t, 2, h.Len())

	h.Broadcast(map[string]string{"action": "message"})

	assert.Equal(t, 1, c1.received())
	assert.Equal(t, 1, c2.received())
}

func TestHub_BroadcastSerializesOnce(t *testing.T) {
	h := New()
	c := &fakeConn{id: "c1"}
	h.Register(c)

	h.Broadcast(map[string]any{"action": "serverstate", "message": map[string]any{"players": 3}})

	require.Equal(t, 1, c.received())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(c.sent[0], &decoded))
	assert.Equal(t, "serverstate", decoded["action"])
}

func TestHub_UnregisteredConnectionGetsNoBroadcasts(t *testing.T) {
	h := New()
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}
	h.Register(c1)
	h.Register(c2)

	h.Unregister(c1)
	h.Broadcast(map[string]string{"action": "message"})

	assert.Zero(t, c1.received())
	assert.Equal(t, 1, c2.received())
	assert.Equal(t, 1, h.Len())
}

func TestHub_SendFailureDoesNotAbortBroadcast(t *testing.T) {
	h := New()
	broken := &fakeConn{id: "broken", fail: true}
	healthy := &fakeConn{id: "healthy"}
	h.Register(broken)
	h.Register(healthy)

	h.Broadcast(map[string]string{"action": "message"})

	assert.Equal(t, 1, healthy.received())
	// Send failure alone does not unregister the broken connection.
	assert.Equal(t, 2, h.Len())
}

func TestHub_MarkBot(t *testing.T) {
	h := New()
	viewer := &fakeConn{id: "viewer"}
	bot := &fakeConn{id: "bot"}
	h.Register(viewer)
	h.Register(bot)

	assert.Empty(t, h.BotConnections())

	h.MarkBot(bot)
	bots := h.BotConnections()
	require.Len(t, bots, 1)
	assert.Equal(t, "bot", bots[0].ID())
}

func TestHub_UnregisterClearsBotFlag(t *testing.T) {
	h := New()
	bot := &fakeConn{id: "bot"}
	h.Register(bot)
	h.MarkBot(bot)

	h.Unregister(bot)
	assert.Empty(t, h.BotConnections())
}

func TestHub_MarkBotIgnoresUnregisteredConnection(t *testing.T) {
	h := New()
	stranger := &fakeConn{id: "stranger"}

	h.MarkBot(stranger)
	assert.Empty(t, h.BotConnections())
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	h := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c := &fakeConn{id: string(rune('a' + i))}
			h.Register(c)
			h.Unregister(c)
		}(i)
		go func() {
			defer wg.Done()
			h.Broadcast(map[string]string{"action": "message"})
		}()
	}
	wg.Wait()
	assert.Zero(t, h.Len())
}

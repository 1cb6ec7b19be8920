package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRoutesByUser(t *testing.T) {
	h := NewHub()
	alice := NewClient(1)
	bob := NewClient(2)
	all := NewClient(0)
	h.Register(alice)
	h.Register(bob)
	h.Register(all)
	require.Equal(t, 3, h.ClientCount())

	require.NoError(t, h.Publish("task.completed", 1, map[string]string{"status": "success"}))

	require.Len(t, alice.MessageChan, 1)
	assert.Len(t, bob.MessageChan, 0)
	require.Len(t, all.MessageChan, 1)

	msg := <-alice.MessageChan
	assert.Equal(t, "task.completed", msg.Event)
	var data map[string]string
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, "success", data["status"])
}

func TestSendToClient(t *testing.T) {
	h := NewHub()
	c := NewClient(1)
	h.Register(c)

	assert.ErrorIs(t, h.SendToClient("nope", NewMessage("x", nil)), ErrClientNotFound)

	for i := 0; i < clientBuffer; i++ {
		require.NoError(t, h.SendToClient(c.ClientID, NewMessage("x", nil)))
	}
	assert.ErrorIs(t, h.SendToClient(c.ClientID, NewMessage("x", nil)), ErrChannelFull)
}

func TestUnregisterClosesChannel(t *testing.T) {
	h := NewHub()
	c := NewClient(1)
	h.Register(c)
	h.Unregister(c.ClientID)

	_, open := <-c.MessageChan
	assert.False(t, open)
	assert.Equal(t, 0, h.ClientCount())

	h.Register(NewClient(2))
	h.Stop()
	assert.Equal(t, 0, h.ClientCount())
}

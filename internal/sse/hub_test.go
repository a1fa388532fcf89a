package sse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/levilina/marine-data-backend/internal/logger"
)

func newTestHub(t *testing.T) *SSEHub {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return NewSSEHub(log)
}

func TestBroadcastReachesSubscribers(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.NewSSEClient()
	hub.AddChannel(sub, "analysis")
	other := hub.NewSSEClient()
	hub.AddChannel(other, "other-channel")

	msg := SSEMessage{
		Channel: "analysis",
		Event:   SSEEventAnalysisProgress,
		Data:    map[string]any{"progress": 50},
	}
	hub.Broadcast(msg)

	select {
	case got := <-sub.Outbound:
		require.Equal(t, SSEEventAnalysisProgress, got.Event)
	default:
		t.Fatal("subscriber did not receive broadcast")
	}

	require.Empty(t, other.Outbound, "message leaked to another channel")
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)

	slow := hub.NewSSEClient()
	hub.AddChannel(slow, "analysis")

	// Fill the outbound buffer; further broadcasts must not block.
	for i := 0; i < cap(slow.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "analysis", Event: SSEEventAnalysisProgress})
	}
	require.Len(t, slow.Outbound, cap(slow.Outbound))
}

func TestRemoveClient(t *testing.T) {
	hub := newTestHub(t)

	c := hub.NewSSEClient()
	hub.AddChannel(c, "analysis")
	hub.RemoveClient(c)

	hub.Broadcast(SSEMessage{Channel: "analysis", Event: SSEEventAnalysisCompleted})
	require.Empty(t, c.Outbound)
}

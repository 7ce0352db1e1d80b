package sse

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellhookapp/shellhook-server/internal/reaction"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(func() {
		cancel()
		m.Shutdown()
	})
	return m
}

func TestNewResultEvent_Success(t *testing.T) {
	result := reaction.Result{
		Success:   true,
		PluginID:  "rct_ok",
		ReactorID: "pipeline",
		Event: reaction.Event{
			UUID:     "evt_1",
			Type:     reaction.EventAdd,
			FullPath: "/srv/drop/new.txt",
		},
		Message: "executed 1 command(s)",
	}

	event := NewResultEvent(result)
	assert.Equal(t, EventReactionCompleted, event.Type)
	assert.Equal(t, "rct_ok", event.PluginID)
	assert.Equal(t, "pipeline", event.ReactorID)
	assert.Equal(t, "evt_1", event.EventUUID)
	assert.Equal(t, "add", event.EventKind)
	assert.Equal(t, "/srv/drop/new.txt", event.Path)
	assert.Empty(t, event.Error)
	assert.False(t, event.Timestamp.IsZero())
}

func TestNewResultEvent_Failure(t *testing.T) {
	result := reaction.Result{
		Success:  false,
		PluginID: "rct_bad",
		Event:    reaction.Event{Type: reaction.EventChange, FullPath: "/srv/drop/x.txt"},
		Message:  "command production failed",
		Err:      errors.New("template exploded"),
	}

	event := NewResultEvent(result)
	assert.Equal(t, EventReactionFailed, event.Type)
	assert.Equal(t, "template exploded", event.Error)
}

func TestManager_BroadcastToClients(t *testing.T) {
	m := newTestManager(t)

	first, err := m.Connect()
	require.NoError(t, err)
	second, err := m.Connect()
	require.NoError(t, err)

	m.Emit(Event{Type: EventReactionCompleted, PluginID: "rct_x"})

	for _, client := range []*Client{first, second} {
		select {
		case event := <-client.EventChan:
			assert.Equal(t, EventReactionCompleted, event.Type)
			assert.Equal(t, "rct_x", event.PluginID)
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s did not receive the event", client.ID)
		}
	}
}

func TestManager_DisconnectStopsDelivery(t *testing.T) {
	m := newTestManager(t)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Disconnect(client.ID)

	select {
	case <-client.Done:
	case <-time.After(time.Second):
		t.Fatal("Done channel not closed on disconnect")
	}

	// Disconnecting twice is harmless.
	m.Disconnect(client.ID)
}

func TestManager_EmitAfterShutdownIsDropped(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	m.Shutdown()

	// Must not panic on the closed channel.
	m.Emit(Event{Type: EventHeartbeat})

	// Shutdown is idempotent.
	m.Shutdown()
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	client, err := m.Connect()
	require.NoError(t, err)

	m.Shutdown()

	select {
	case <-client.Done:
	case <-time.After(2 * time.Second):
		t.Fatal("client not closed on shutdown")
	}
}

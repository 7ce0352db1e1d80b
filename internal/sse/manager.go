// Package sse implements Server-Sent Events for streaming reaction results
// to connected clients.
package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shellhookapp/shellhook-server/internal/id"
	"github.com/shellhookapp/shellhook-server/internal/reaction"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventReactionCompleted represents a successful reaction.
	EventReactionCompleted EventType = "reaction.completed"
	// EventReactionFailed represents a failed reaction.
	EventReactionFailed EventType = "reaction.failed"
	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message broadcast to connected clients.
type Event struct {
	Type      EventType `json:"type"`
	PluginID  string    `json:"plugin_id,omitempty"`
	ReactorID string    `json:"reactor_id,omitempty"`
	EventUUID string    `json:"event_uuid,omitempty"`
	EventKind string    `json:"event_kind,omitempty"`
	Path      string    `json:"path,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewResultEvent converts a reaction result into an SSE event.
func NewResultEvent(result reaction.Result) Event {
	event := Event{
		Type:      EventReactionCompleted,
		PluginID:  result.PluginID,
		ReactorID: result.ReactorID,
		EventUUID: result.Event.UUID,
		EventKind: result.Event.Type.String(),
		Path:      result.Event.FullPath,
		Message:   result.Message,
		Timestamp: time.Now(),
	}
	if !result.Success {
		event.Type = EventReactionFailed
		if result.Err != nil {
			event.Error = result.Err.Error()
		}
	}
	return event
}

// NewHeartbeatEvent creates a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}

// Client represents a connected SSE client.
type Client struct {
	ID          string
	ConnectedAt time.Time
	EventChan   chan Event
	Done        chan struct{}
}

// Manager manages SSE connections and broadcasts events.
type Manager struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	events chan Event
	wg     sync.WaitGroup

	shutdownMu sync.RWMutex
	shutdown   bool
}

// NewManager creates a new SSE Manager.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:  logger,
		clients: make(map[string]*Client),
		events:  make(chan Event, 256),
	}
}

// Start begins the broadcast loop. Call once, in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	defer m.wg.Done()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-m.events:
			if !ok {
				m.closeAllClients()
				return
			}
			m.broadcast(event)

		case <-heartbeat.C:
			m.broadcast(NewHeartbeatEvent())

		case <-ctx.Done():
			m.closeAllClients()
			return
		}
	}
}

// Emit queues an event for broadcast. Events are dropped when the buffer is
// full or the manager is shut down.
func (m *Manager) Emit(event Event) {
	m.shutdownMu.RLock()
	defer m.shutdownMu.RUnlock()

	if m.shutdown {
		return
	}

	select {
	case m.events <- event:
	default:
		m.logger.Warn("SSE event buffer full, dropping event", "type", string(event.Type))
	}
}

// Connect registers a new client.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	client := &Client{
		ID:          clientID,
		ConnectedAt: time.Now(),
		EventChan:   make(chan Event, 32),
		Done:        make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[clientID] = client
	m.mu.Unlock()

	m.logger.Debug("SSE client connected", "client_id", clientID)
	return client, nil
}

// Disconnect removes a client.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	m.mu.Unlock()

	if ok {
		close(client.Done)
		m.logger.Debug("SSE client disconnected", "client_id", clientID)
	}
}

// Shutdown stops accepting events and closes all clients.
func (m *Manager) Shutdown() {
	m.shutdownMu.Lock()
	if m.shutdown {
		m.shutdownMu.Unlock()
		return
	}
	m.shutdown = true
	close(m.events)
	m.shutdownMu.Unlock()

	m.wg.Wait()
}

// broadcast delivers an event to every connected client. Slow clients have
// the event dropped rather than blocking the loop.
func (m *Manager) broadcast(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.EventChan <- event:
		default:
			m.logger.Debug("SSE client buffer full, dropping event", "client_id", client.ID)
		}
	}
}

func (m *Manager) closeAllClients() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for clientID, client := range m.clients {
		close(client.Done)
		delete(m.clients, clientID)
	}
}

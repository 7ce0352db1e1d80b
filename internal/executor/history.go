package executor

import (
	"slices"
	"sync"
	"time"
)

// HistoryEntry records one executed command.
type HistoryEntry struct {
	Command    string    `json:"command"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// history is a bounded ring of executed commands, oldest entries evicted first.
type history struct {
	mu      sync.Mutex
	max     int
	buf     []HistoryEntry
	next    int
	wrapped bool
}

func newHistory(max int) *history {
	return &history{
		max: max,
		buf: make([]HistoryEntry, max),
	}
}

func (h *history) add(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = entry
	h.next++
	if h.next == h.max {
		h.next = 0
		h.wrapped = true
	}
}

// entries returns a snapshot in execution order, oldest first.
func (h *history) entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.wrapped {
		return slices.Clone(h.buf[:h.next])
	}

	out := make([]HistoryEntry, 0, h.max)
	out = append(out, h.buf[h.next:]...)
	out = append(out, h.buf[:h.next]...)
	return out
}

package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/pkg/domain"
)

// streamBuffer is how many events a slow subscriber may lag behind.
const streamBuffer = 64

// StreamManager fans run events out to SSE subscribers, keyed by prompt id.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // PromptID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for the prompt's events. The returned
// function unregisters and closes it.
func (sm *StreamManager) Subscribe(promptID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.subscribers[promptID]; !ok {
		sm.subscribers[promptID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[promptID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[promptID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, promptID)
			}
		}
	}
}

// Subscribers reports how many channels listen to a prompt.
func (sm *StreamManager) Subscribers(promptID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[promptID])
}

// Broadcast sends msg to every subscriber of the prompt. Slow clients miss
// messages instead of blocking the run.
func (sm *StreamManager) Broadcast(promptID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if subs, ok := sm.subscribers[promptID]; ok {
		for ch := range subs {
			select {
			case ch <- msg:
			default:
				sm.logger.Warn("SSE: Client buffer full, dropping message", "prompt_id", promptID)
			}
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event as JSON.
// Pass them to the engine that serves the API.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	send := func(promptID string, v any) {
		if promptID == "" {
			return
		}
		data, err := json.Marshal(v)
		if err != nil {
			sm.logger.Warn("SSE: event encode failed", "err", err)
			return
		}
		sm.Broadcast(promptID, string(data))
	}
	return domain.LifecycleHooks{
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) { send(e.PromptID, e) },
		OnNodeDone:  func(_ context.Context, e *domain.NodeEvent) { send(e.PromptID, e) },
		OnExpand:    func(_ context.Context, e *domain.ExpansionEvent) { send(e.PromptID, e) },
	}
}

package service

import (
	"sync"
	"time"

	"whatsapp-disparador/internal/model"
)

// Notifier delivers instance status changes to subscribers.
// The returned function cancels the subscription and is safe to call twice.
type Notifier interface {
	OnChange(callback func(model.InstanceStatus)) (cancel func())
}

// InstanceHub fans instance status changes out to in-process subscribers
type InstanceHub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(model.InstanceStatus)
	last   model.InstanceStatus
}

// NewInstanceHub creates a hub whose initial state is disconnected
func NewInstanceHub() *InstanceHub {
	return &InstanceHub{
		subs: make(map[int]func(model.InstanceStatus)),
		last: model.InstanceStatus{Status: model.InstanceDisconnected, UpdatedAt: time.Now().UTC()},
	}
}

// OnChange implements Notifier
func (h *InstanceHub) OnChange(callback func(model.InstanceStatus)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = callback
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish records status and calls every subscriber outside the lock
func (h *InstanceHub) Publish(status model.InstanceStatus) {
	if status.UpdatedAt.IsZero() {
		status.UpdatedAt = time.Now().UTC()
	}

	h.mu.Lock()
	h.last = status
	callbacks := make([]func(model.InstanceStatus), 0, len(h.subs))
	for _, cb := range h.subs {
		callbacks = append(callbacks, cb)
	}
	h.mu.Unlock()

	for _, cb := range callbacks {
		cb(status)
	}
}

// Last returns the most recently published status
func (h *InstanceHub) Last() model.InstanceStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Subscribers returns the number of active subscriptions
func (h *InstanceHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

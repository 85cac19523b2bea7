package zonewatch

import (
	"sync"

	"github.com/zonewatch/zonewatch/pkg/wire"
)

// AlertHook is called for every alert-type notification seen on any
// notification stream opened by the client.
type AlertHook func(wire.Notification)

// hooks manages alert callbacks across streams.
type hooks struct {
	mu      sync.RWMutex
	onAlert []AlertHook
}

// newHooks creates a new hooks instance.
func newHooks() *hooks {
	return &hooks{}
}

// OnAlert registers a callback for alert-type notifications.
func (h *hooks) OnAlert(fn AlertHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAlert = append(h.onAlert, fn)
}

// triggerAlerts invokes the registered hooks for each alert in a delivered
// notification batch.
func (h *hooks) triggerAlerts(notis []wire.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.onAlert) == 0 {
		return
	}
	for _, n := range notis {
		if n.NotiType != wire.NotiTypeAlert {
			continue
		}
		for _, hook := range h.onAlert {
			hook(n)
		}
	}
}

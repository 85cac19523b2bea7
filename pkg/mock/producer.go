package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zonewatch/zonewatch/pkg/sse"
)

// Producer is one mock stream. From the caller's side it is
// indistinguishable from a real connection: an open callback after the
// artificial round trip, a message per tick, and idempotent teardown.
type Producer struct {
	id       string
	url      string
	kind     Kind
	zoneID   string
	handlers sse.Handlers
	interval time.Duration
	sim      *Simulator

	state     atomic.Int32
	closed    atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// newProducer builds a producer; start launches its emission loop.
func newProducer(s *Simulator, rawURL string, kind Kind, zoneID string, h sse.Handlers) *Producer {
	p := &Producer{
		id:       uuid.NewString(),
		url:      rawURL,
		kind:     kind,
		zoneID:   zoneID,
		handlers: h,
		interval: s.interval(kind),
		sim:      s,
		done:     make(chan struct{}),
	}
	p.state.Store(int32(sse.StateConnecting))
	return p
}

// start launches the emission goroutine.
func (p *Producer) start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx)
}

// run waits out the artificial round trip, reports open, then emits one
// envelope per interval. Every delivery re-checks the closed flag because a
// tick that already fired cannot be uncancelled.
func (p *Producer) run(ctx context.Context) {
	defer close(p.done)

	select {
	case <-time.After(p.sim.openDelay):
	case <-ctx.Done():
		return
	}
	if p.closed.Load() {
		return
	}

	p.state.Store(int32(sse.StateConnected))
	if p.handlers.OnOpen != nil {
		p.handlers.OnOpen()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if p.closed.Load() {
				return
			}
			p.emit()
		case <-ctx.Done():
			return
		}
	}
}

// emit synthesizes and delivers one envelope.
func (p *Producer) emit() {
	env := p.sim.envelopeFor(p.kind, p.zoneID)
	if p.handlers.OnMessage != nil && !p.closed.Load() {
		p.handlers.OnMessage(env)
	}
}

// Close cancels the emission loop and makes any already-queued tick a
// no-op. Idempotent; no callback fires after it returns.
func (p *Producer) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.cancel()
		p.state.Store(int32(sse.StateDisconnected))
		p.sim.remove(p.id)
	})
	return nil
}

// ID returns the producer's unique identifier.
func (p *Producer) ID() string {
	return p.id
}

// State returns the mock connection's lifecycle state.
func (p *Producer) State() sse.ConnState {
	return sse.ConnState(p.state.Load())
}

// Done closes when the emission goroutine has stopped.
func (p *Producer) Done() <-chan struct{} {
	return p.done
}

// Compile-time interface check to ensure proper implementation.
var _ sse.Producer = (*Producer)(nil)

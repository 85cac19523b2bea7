// Package zonewatch provides the real-time streaming layer of a facility
// monitoring dashboard. It maintains one long-lived server-push connection
// per dashboard view, survives server restarts and network blips with a
// bounded-retry reconnection policy, coalesces update bursts through a
// debounce window, folds partial reading sets into persistent per-view
// state, and can degrade to a self-contained simulated event source that
// reproduces the real service's wire contract.
//
// Example usage:
//
//	client, err := zonewatch.New(
//	    zonewatch.WithBaseURL("https://dash.example.com/api"),
//	    zonewatch.WithTokenStore(session.Token),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	stop, err := client.OpenZone("A01", zonewatch.Handlers{
//	    OnReadings: func(state map[wire.SensorType][]wire.Reading) {
//	        render(state)
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stop()
//
// Running fully offline only takes a simulator:
//
//	client, err := zonewatch.New(zonewatch.WithSimulator(mock.NewSimulator()))
package zonewatch

import (
	"sync"

	"github.com/zonewatch/zonewatch/pkg/streamerr"
)

// CloseFunc tears down one open stream. Idempotent; after it returns no
// further callback fires for that stream.
type CloseFunc func()

// Client composes stream connections, debouncers and mergers into the
// per-view values a dashboard consumes. Each open stream is exclusively
// owned by the view that opened it.
type Client interface {
	// Open starts a stream of the given kind. Params carries the zone ID
	// for zone streams and is ignored otherwise.
	Open(kind StreamKind, params Params, h Handlers) (CloseFunc, error)

	// OpenStatus starts the dashboard-wide zone-status stream.
	OpenStatus(h Handlers) (CloseFunc, error)

	// OpenZone starts a per-zone sensor stream.
	OpenZone(zoneID string, h Handlers) (CloseFunc, error)

	// OpenNotifications starts the notification stream.
	OpenNotifications(h Handlers) (CloseFunc, error)

	// OnAlert registers a callback invoked for every alert-type
	// notification on any notification stream.
	OnAlert(AlertHook)

	// Close tears down every open stream. Idempotent.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	hooks   *hooks

	mu      sync.Mutex
	streams map[string]*pipeline
	closed  bool
}

// New creates a Client with the given options. Without a simulator a base
// URL is required; with one, the client runs fully offline.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	if o.simulator == nil && o.baseURL == "" {
		return nil, streamerr.New("a base URL or a simulator is required")
	}
	if o.reporter == nil {
		log := o.logger
		o.reporter = func(class streamerr.Class, err error) {
			log.Warn().Str("class", class.String()).Err(err).Msg("Stream error")
		}
	}

	return &client{
		options: o,
		hooks:   newHooks(),
		streams: make(map[string]*pipeline),
	}, nil
}

// OnAlert registers a callback for alert-type notifications.
func (c *client) OnAlert(fn AlertHook) {
	c.hooks.OnAlert(fn)
}

// Close tears down every open stream. Idempotent.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pipelines := make([]*pipeline, 0, len(c.streams))
	for _, p := range c.streams {
		pipelines = append(pipelines, p)
	}
	c.streams = make(map[string]*pipeline)
	c.mu.Unlock()

	for _, p := range pipelines {
		p.close()
	}
	return nil
}

// remove drops a closed pipeline from the registry.
func (c *client) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.streams, id)
}

package zonewatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zonewatch/zonewatch/pkg/constants"
	"github.com/zonewatch/zonewatch/pkg/debounce"
	"github.com/zonewatch/zonewatch/pkg/merge"
	"github.com/zonewatch/zonewatch/pkg/sse"
	"github.com/zonewatch/zonewatch/pkg/streamerr"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

// StreamKind selects which push endpoint a stream subscribes to.
type StreamKind string

// Stream kinds exposed to views.
const (
	StreamStatus       StreamKind = "status"
	StreamZone         StreamKind = "zone"
	StreamNotification StreamKind = "notification"
)

// Params carries per-kind stream parameters.
type Params struct {
	// ZoneID identifies the zone for StreamZone; ignored otherwise.
	ZoneID string
}

// Handlers carries the view-facing callbacks for a stream. Only the handler
// matching the stream kind receives payloads; the others may be left nil.
// All callbacks for one stream are invoked sequentially, never concurrently
// with each other.
type Handlers struct {
	// OnOpen fires once per successful (re)connection.
	OnOpen func()

	// OnStatus receives the merged zone-status map for StreamStatus.
	OnStatus func(map[string]wire.ZoneStatus)

	// OnReadings receives the merged per-type reading map for StreamZone.
	OnReadings func(map[wire.SensorType][]wire.Reading)

	// OnNotifications receives each delivered notification batch for
	// StreamNotification.
	OnNotifications func([]wire.Notification)

	// OnError fires once when the stream gives up reconnecting or hits a
	// fatal auth failure. The last merged state stays in place.
	OnError func(error)
}

// pipeline is one open stream: its connection (real or mock), debouncer,
// and the per-view merged state the merger folds into.
type pipeline struct {
	id       string
	kind     StreamKind
	client   *client
	handlers Handlers
	report   streamerr.Reporter

	producer sse.Producer
	deb      *debounce.Debouncer[*wire.Envelope]

	// Merged state, owned by the pipeline, rebuilt empty on every open.
	// Never cleared on error: a permanently failed stream degrades its
	// view to last known state.
	mu       sync.Mutex
	statuses map[string]wire.ZoneStatus
	readings map[wire.SensorType][]wire.Reading

	closeOnce sync.Once
}

// OpenStatus starts the dashboard-wide zone-status stream.
func (c *client) OpenStatus(h Handlers) (CloseFunc, error) {
	return c.Open(StreamStatus, Params{}, h)
}

// OpenZone starts a per-zone sensor stream.
func (c *client) OpenZone(zoneID string, h Handlers) (CloseFunc, error) {
	return c.Open(StreamZone, Params{ZoneID: zoneID}, h)
}

// OpenNotifications starts the notification stream.
func (c *client) OpenNotifications(h Handlers) (CloseFunc, error) {
	return c.Open(StreamNotification, Params{}, h)
}

// Open starts a stream and registers it with the client. The returned
// CloseFunc is the only way to stop it short of closing the whole client.
func (c *client) Open(kind StreamKind, params Params, h Handlers) (CloseFunc, error) {
	url, delay, err := c.streamTarget(kind, params)
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		id:       uuid.NewString(),
		kind:     kind,
		client:   c,
		handlers: h,
		report:   c.options.reporter,
		statuses: make(map[string]wire.ZoneStatus),
		readings: make(map[wire.SensorType][]wire.Reading),
	}
	p.deb = debounce.New[*wire.Envelope](delay)
	p.deb.AddCallback(p.deliver)

	connHandlers := sse.Handlers{
		OnOpen:    h.OnOpen,
		OnMessage: p.deb.Update,
		OnError:   h.OnError,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		p.deb.Destroy()
		return nil, streamerr.ErrStreamClosed
	}

	if sim := c.options.simulator; sim != nil {
		p.producer, err = sim.Open(url, connHandlers)
	} else {
		token := ""
		if c.options.tokenStore != nil {
			token = c.options.tokenStore()
		}
		p.producer, err = sse.Dial(context.Background(), url, token, connHandlers,
			sse.WithMaxRetries(c.options.maxRetries),
			sse.WithRetryDelay(c.options.retryDelay),
			sse.WithReporter(c.options.reporter),
			sse.WithLogger(c.options.logger),
			sse.WithHTTPClient(c.options.httpClient),
		)
	}
	if err != nil {
		c.mu.Unlock()
		p.deb.Destroy()
		return nil, err
	}

	c.streams[p.id] = p
	c.mu.Unlock()

	c.options.logger.Debug().
		Str("stream_id", p.id).
		Str("kind", string(kind)).
		Msg("Stream opened")

	return func() {
		p.close()
		c.remove(p.id)
	}, nil
}

// streamTarget resolves the URL and debounce window for a stream kind.
func (c *client) streamTarget(kind StreamKind, params Params) (string, time.Duration, error) {
	switch kind {
	case StreamStatus:
		return c.options.baseURL + constants.StatusPath, c.options.statusDebounce, nil
	case StreamZone:
		if params.ZoneID == "" {
			return "", 0, streamerr.New("zone stream requires a zone ID")
		}
		return c.options.baseURL + constants.ZonePath + "?zoneId=" + params.ZoneID,
			c.options.zoneDebounce, nil
	case StreamNotification:
		base := c.options.notificationURL
		if base == "" {
			base = c.options.baseURL
		}
		return base + constants.NotificationPath, c.options.notiDebounce, nil
	default:
		return "", 0, fmt.Errorf("unknown stream kind %q", kind)
	}
}

// deliver is the debouncer's callback: it decodes the settled envelope,
// folds it into the view state, and invokes the matching handler.
func (p *pipeline) deliver(env *wire.Envelope) {
	if !env.OK() {
		p.report(streamerr.ClassUnknown,
			fmt.Errorf("backend fault frame: %s", env.Message))
		return
	}

	switch p.kind {
	case StreamStatus:
		entries, err := env.ZoneStatuses()
		if err != nil {
			p.report(streamerr.ClassParse, streamerr.NewFrameError("status", err))
			return
		}
		p.mu.Lock()
		p.statuses = merge.ZoneStatuses(p.statuses, entries)
		state := p.statuses
		p.mu.Unlock()
		if p.handlers.OnStatus != nil {
			p.handlers.OnStatus(state)
		}

	case StreamZone:
		snaps, err := env.Snapshots()
		if err != nil {
			p.report(streamerr.ClassParse, streamerr.NewFrameError("zone", err))
			return
		}
		p.mu.Lock()
		p.readings = merge.Readings(p.readings, snaps)
		state := p.readings
		p.mu.Unlock()
		if p.handlers.OnReadings != nil {
			p.handlers.OnReadings(state)
		}

	case StreamNotification:
		notis, err := env.Notifications()
		if err != nil {
			p.report(streamerr.ClassParse, streamerr.NewFrameError("notification", err))
			return
		}
		if p.handlers.OnNotifications != nil {
			p.handlers.OnNotifications(notis)
		}
		p.client.hooks.triggerAlerts(notis)
	}
}

// close tears down the pipeline's connection and debouncer. Idempotent.
func (p *pipeline) close() {
	p.closeOnce.Do(func() {
		_ = p.producer.Close()
		p.deb.Destroy()
	})
}

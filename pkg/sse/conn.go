package sse

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zonewatch/zonewatch/pkg/constants"
	"github.com/zonewatch/zonewatch/pkg/logging"
	"github.com/zonewatch/zonewatch/pkg/streamerr"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

// Handlers carries the three lifecycle callbacks for a connection. OnOpen
// fires exactly once per successful (re)connection, OnMessage once per
// parsed envelope, and OnError once when the connection gives up. Any
// handler may be nil.
type Handlers struct {
	OnOpen    func()
	OnMessage func(*wire.Envelope)
	OnError   func(error)
}

// scanBufSize bounds a single SSE line; catch-up frames after a reconnect
// can carry several snapshots.
const scanBufSize = 1 << 20

// Conn is one push connection to one URL. A Conn is exclusively owned by
// the view that created it.
type Conn struct {
	id       string
	url      string // full URL including token, never logged
	redacted string
	handlers Handlers

	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
	report     streamerr.Reporter
	log        zerolog.Logger

	state   connState
	retries atomic.Int32
	closed  atomic.Bool

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Option configures a connection.
type Option func(*Conn)

// WithMaxRetries overrides the bounded reconnect attempt count.
func WithMaxRetries(n int) Option {
	return func(c *Conn) { c.maxRetries = n }
}

// WithRetryDelay overrides the fixed wait between reconnect attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Conn) { c.retryDelay = d }
}

// WithHTTPClient overrides the HTTP client used to open the stream.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Conn) { c.httpClient = client }
}

// WithReporter sets the classified-error reporter.
func WithReporter(r streamerr.Reporter) Option {
	return func(c *Conn) {
		if r != nil {
			c.report = r
		}
	}
}

// WithLogger sets the connection's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Conn) { c.log = log }
}

// defaultHTTPClient bounds the handshake but leaves the established stream
// open indefinitely.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: constants.DialTimeout,
			}).DialContext,
			ResponseHeaderTimeout: constants.DialTimeout,
		},
	}
}

// Dial opens a push connection to rawURL, appending the token as a query
// parameter when one is supplied. It returns immediately with the
// connection in CONNECTING state; the reader goroutine drives the rest of
// the lifecycle through the handlers.
func Dial(ctx context.Context, rawURL, token string, h Handlers, opts ...Option) (*Conn, error) {
	full := AppendToken(rawURL, token)
	c := &Conn{
		id:         uuid.NewString(),
		url:        full,
		redacted:   Redact(full),
		handlers:   h,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay,
		report:     streamerr.NopReporter,
		log:        *logging.Default(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = defaultHTTPClient()
	}
	c.log = c.log.With().Str("conn_id", c.id).Str("url", c.redacted).Logger()

	if _, err := http.NewRequest(http.MethodGet, c.url, nil); err != nil {
		return nil, streamerr.NewTransportError(c.redacted, 0, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state.store(StateConnecting)

	go c.run(runCtx)
	return c, nil
}

// run owns the connect/read/retry loop. It is the only goroutine that
// invokes handlers, which gives every connection run-to-completion callback
// semantics.
func (c *Conn) run(ctx context.Context) {
	defer close(c.done)

	bo := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxRetries))

	for {
		opened, err := c.stream(ctx)
		if c.closed.Load() || ctx.Err() != nil {
			return
		}
		if opened {
			// The failed session had connected, so its retry budget
			// was spent and the counter starts over.
			bo.Reset()
			c.retries.Store(0)
		}

		class := streamerr.Classify(err)
		c.report(class, err)
		c.state.store(StateError)

		if class == streamerr.ClassAuth {
			c.log.Warn().Msg("Stream rejected token; giving up")
			c.fail(err)
			return
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			c.fail(&streamerr.RetryExhaustedError{
				URL:      c.redacted,
				Attempts: c.maxRetries,
				Err:      err,
			})
			return
		}

		c.retries.Add(1)
		c.log.Debug().
			Int32("retry", c.retries.Load()).
			Dur("delay", wait).
			Msg("Reconnecting stream")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
		c.state.store(StateConnecting)
	}
}

// stream performs one connect-and-read session. It reports whether the
// session reached CONNECTED, and the transport failure that ended it.
func (c *Conn) stream(ctx context.Context) (opened bool, err error) {
	attempt := int(c.retries.Load())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false, streamerr.NewTransportError(c.redacted, attempt, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, streamerr.NewTransportError(c.redacted, attempt, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Debug().Err(cerr).Msg("Closing stream body")
		}
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, streamerr.NewAuthError(resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, &streamerr.TransportError{
			URL:     c.redacted,
			Attempt: attempt,
			Status:  resp.StatusCode,
			Err:     streamerr.New("unexpected status"),
		}
	}

	c.state.store(StateConnected)
	c.log.Info().Msg("Stream connected")
	if c.handlers.OnOpen != nil && !c.closed.Load() {
		c.handlers.OnOpen()
	}

	return true, c.readFrames(ctx, resp.Body)
}

// readFrames scans the event stream until it ends, dispatching each
// complete frame. A server that closes the stream, or a broken pipe, ends
// the session with a transport error; frame parse failures are reported and
// dropped without ending the session.
func (c *Conn) readFrames(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufSize)

	var event string
	var data bytes.Buffer

	for scanner.Scan() {
		if c.closed.Load() {
			return streamerr.ErrStreamClosed
		}
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				c.dispatch(event, data.Bytes())
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
		// id: and retry: fields are not used by the backend
	}

	if ctx.Err() != nil {
		return streamerr.ErrStreamClosed
	}
	if err := scanner.Err(); err != nil {
		return streamerr.NewTransportError(c.redacted, int(c.retries.Load()), err)
	}
	return streamerr.NewTransportError(c.redacted, int(c.retries.Load()), io.EOF)
}

// dispatch parses one frame and hands it to the message handler. Parse
// failures are not transport errors: the frame is dropped, the failure is
// reported, and the session continues with its retry budget intact.
func (c *Conn) dispatch(event string, frame []byte) {
	env, err := wire.ParseEnvelope(frame)
	if err != nil {
		c.report(streamerr.ClassParse, streamerr.NewFrameError(event, err))
		c.log.Debug().Str("event", event).Msg("Dropped malformed frame")
		return
	}
	if c.handlers.OnMessage != nil && !c.closed.Load() {
		c.handlers.OnMessage(env)
	}
}

// fail marks the connection terminally errored and surfaces the error once.
func (c *Conn) fail(err error) {
	c.state.store(StateError)
	if c.handlers.OnError != nil && !c.closed.Load() {
		c.handlers.OnError(err)
	}
}

// Close tears down the connection: the reader goroutine stops, any pending
// retry timer is cancelled, and no further callback fires. Idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.cancel()
		c.state.store(StateDisconnected)
	})
	return nil
}

// ID returns the connection's unique identifier.
func (c *Conn) ID() string {
	return c.id
}

// URL returns the connection URL with the token redacted.
func (c *Conn) URL() string {
	return c.redacted
}

// State returns the current lifecycle state.
func (c *Conn) State() ConnState {
	return c.state.load()
}

// Retries returns the reconnect attempts made since the last successful
// open.
func (c *Conn) Retries() int {
	return int(c.retries.Load())
}

// Done closes when the reader goroutine has fully stopped, either after
// Close or after the connection gave up.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Compile-time interface check to ensure proper implementation.
var _ Producer = (*Conn)(nil)

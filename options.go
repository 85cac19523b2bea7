package zonewatch

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/zonewatch/zonewatch/pkg/constants"
	"github.com/zonewatch/zonewatch/pkg/logging"
	"github.com/zonewatch/zonewatch/pkg/mock"
	"github.com/zonewatch/zonewatch/pkg/streamerr"
)

// Option is a function that configures a Client.
type Option func(*options) error

// TokenStore supplies the current bearer token, or "" when no session is
// active. Token issuance and refresh live outside this layer; the streaming
// layer only ever sees the current string.
type TokenStore func() string

// options holds the configured state for a Client.
type options struct {
	baseURL         string
	notificationURL string
	tokenStore      TokenStore
	reporter        streamerr.Reporter
	maxRetries      int
	retryDelay      time.Duration
	statusDebounce  time.Duration
	zoneDebounce    time.Duration
	notiDebounce    time.Duration
	simulator       *mock.Simulator
	httpClient      *http.Client
	logger          zerolog.Logger
}

// defaults returns the default options.
func defaults() *options {
	return &options{
		maxRetries:     constants.MaxRetries,
		retryDelay:     constants.RetryDelay,
		statusDebounce: constants.StatusDebounce,
		zoneDebounce:   constants.ZoneDebounce,
		notiDebounce:   constants.NotificationDebounce,
		logger:         *logging.Default(),
	}
}

// apply runs every option against o.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithBaseURL sets the dashboard backend base URL, e.g.
// "https://dash.example.com/api". Status and zone streams hang off it; so
// do notifications unless WithNotificationURL overrides them.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		o.baseURL = url
		return nil
	}
}

// WithNotificationURL sets a separate base URL for the notification stream.
func WithNotificationURL(url string) Option {
	return func(o *options) error {
		o.notificationURL = url
		return nil
	}
}

// WithTokenStore sets the external session store consulted for a bearer
// token each time a stream opens.
func WithTokenStore(store TokenStore) Option {
	return func(o *options) error {
		o.tokenStore = store
		return nil
	}
}

// WithReporter sets the unified error reporter. Reports are for logging and
// telemetry only and never affect control flow.
func WithReporter(r streamerr.Reporter) Option {
	return func(o *options) error {
		o.reporter = r
		return nil
	}
}

// WithMaxRetries overrides the bounded reconnect attempt count.
func WithMaxRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return streamerr.New("max retries must not be negative")
		}
		o.maxRetries = n
		return nil
	}
}

// WithRetryDelay overrides the fixed wait between reconnect attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return streamerr.New("retry delay must be positive")
		}
		o.retryDelay = d
		return nil
	}
}

// WithStatusDebounce overrides the dashboard-wide status debounce window.
func WithStatusDebounce(d time.Duration) Option {
	return func(o *options) error {
		o.statusDebounce = d
		return nil
	}
}

// WithZoneDebounce overrides the per-zone sensor debounce window.
func WithZoneDebounce(d time.Duration) Option {
	return func(o *options) error {
		o.zoneDebounce = d
		return nil
	}
}

// WithNotificationDebounce overrides the notification debounce window.
func WithNotificationDebounce(d time.Duration) Option {
	return func(o *options) error {
		o.notiDebounce = d
		return nil
	}
}

// WithSimulator runs every stream against the given mock simulator instead
// of the backend. The simulator is only ever used through this explicit
// opt-in.
func WithSimulator(sim *mock.Simulator) Option {
	return func(o *options) error {
		o.simulator = sim
		return nil
	}
}

// WithHTTPClient overrides the HTTP client used for real stream
// connections.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		o.httpClient = client
		return nil
	}
}

// WithLogger sets the client's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = log
		return nil
	}
}

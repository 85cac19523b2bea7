// Package constants provides shared constants used throughout the zonewatch
// codebase. This includes retry bounds, debounce windows, mock emission
// intervals, and other configuration defaults that should be consistent
// across the application.
package constants

import "time"

// Connection constants define the reconnection policy defaults. Both are
// overridable through client options; these values match the backend's
// documented behavior.
const (
	// MaxRetries is the bounded number of reconnect attempts before a
	// stream surfaces a terminal error
	MaxRetries = 3

	// RetryDelay is the fixed wait between reconnect attempts
	RetryDelay = 2 * time.Second

	// DialTimeout bounds the TCP/TLS handshake for a stream connection.
	// The established stream itself has no deadline.
	DialTimeout = 10 * time.Second
)

// Debounce constants define the quiet-period windows per view.
const (
	// ZoneDebounce is the window for per-zone sensor detail views
	ZoneDebounce = 300 * time.Millisecond

	// StatusDebounce is the coarser window for the dashboard-wide
	// status view
	StatusDebounce = 2 * time.Second

	// NotificationDebounce is the window for the notification feed
	NotificationDebounce = 300 * time.Millisecond
)

// Mock producer constants define the synthetic emission behavior.
const (
	// MockOpenDelay simulates the network round trip before a mock
	// stream reports open
	MockOpenDelay = 100 * time.Millisecond

	// MockStatusInterval is the emission period for the dashboard-wide
	// status stream
	MockStatusInterval = 10 * time.Second

	// MockZoneInterval is the emission period for a per-zone sensor
	// stream
	MockZoneInterval = 15 * time.Second

	// MockNotificationInterval is the emission period for the
	// notification stream
	MockNotificationInterval = 20 * time.Second
)

// Weight constants define the mock's randomized generation. A single
// weighting is used for both zone and per-sensor status draws.
const (
	// GreenWeight, YellowWeight and RedWeight are percentage weights for
	// status draws; they must sum to 100
	GreenWeight  = 60
	YellowWeight = 30
	RedWeight    = 10

	// WarningProbability is the chance a sensor value is escalated into
	// its warning band to exercise alerting paths
	WarningProbability = 0.10

	// AlertProbability is the chance a synthetic notification is emitted
	// as type "alert" rather than "message"
	AlertProbability = 0.20
)

// Stream path constants define the backend's push endpoints.
const (
	// StatusPath is the dashboard-wide zone-status stream path
	StatusPath = "/home/status"

	// ZonePath is the per-zone sensor stream path; zoneId is appended as
	// a query parameter
	ZonePath = "/home/zone"

	// NotificationPath is the notification stream path
	NotificationPath = "/noti/sse/subscribe"
)

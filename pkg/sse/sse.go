// Package sse maintains one long-lived server-push connection per stream.
// A Conn owns a single text/event-stream subscription to one URL, delivers
// every successfully parsed wire envelope to a caller-supplied handler, and
// recovers from transport failures without caller intervention up to a
// bounded number of attempts.
//
// All callbacks for a connection fire from its single reader goroutine, so
// no two callbacks for the same connection ever run concurrently and each
// runs to completion before the next.
package sse

import (
	"net/url"
	"strings"
	"sync/atomic"
)

// ConnState is the lifecycle state of a stream connection.
type ConnState int32

// Connection lifecycle states. A connection is created CONNECTING, becomes
// CONNECTED on first successful open, moves to ERROR on transport fault
// (either transiently between retries or terminally once the budget is
// spent), and reaches DISCONNECTED only through caller-initiated teardown.
const (
	StateConnecting ConnState = iota
	StateConnected
	StateError
	StateDisconnected
)

// String returns the state name for logging.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateError:
		return "ERROR"
	case StateDisconnected:
		return "DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// connState is an atomic holder for ConnState.
type connState struct {
	v atomic.Int32
}

func (s *connState) load() ConnState      { return ConnState(s.v.Load()) }
func (s *connState) store(next ConnState) { s.v.Store(int32(next)) }

// Producer is the caller-facing surface shared by real connections and the
// mock stand-in, so composition is transport-agnostic.
type Producer interface {
	// Close tears down the producer. Idempotent; no callback fires after
	// it returns.
	Close() error

	// State returns the current lifecycle state.
	State() ConnState
}

// AppendToken appends a bearer token as a query parameter, using ? or &
// depending on whether the URL already carries a query string. The token is
// never logged; use Redact for anything user-visible.
func AppendToken(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "token=" + url.QueryEscape(token)
}

// Redact strips the token query parameter from a URL for logging.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

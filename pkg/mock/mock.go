// Package mock provides a drop-in stand-in for the real push endpoint. A
// Simulator owns a set of zone definitions and the mock producers opened
// against it; each producer reports open after a short artificial delay and
// then emits schema-valid synthetic envelopes on a per-stream interval, with
// weighted-random content and occasional simulated faults.
//
// Nothing in this package runs unless a Simulator is explicitly constructed
// and passed to the client; importing it never starts synthetic emission.
package mock

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zonewatch/zonewatch/pkg/constants"
	"github.com/zonewatch/zonewatch/pkg/logging"
	"github.com/zonewatch/zonewatch/pkg/sse"
	"github.com/zonewatch/zonewatch/pkg/streamerr"
)

// Kind is the stream kind a mock producer emits, selected from the URL.
type Kind int

// Stream kinds recognized by the simulator.
const (
	KindStatus Kind = iota
	KindZone
	KindNotification
)

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindZone:
		return "zone"
	default:
		return "notification"
	}
}

// Simulator is an explicit registry of zone definitions and live mock
// producers. It is not a process-wide singleton: independent simulators
// never interfere, so tests can run several side by side.
type Simulator struct {
	mu        sync.Mutex
	zones     []Zone
	producers map[string]*Producer
	closed    bool

	rngMu sync.Mutex
	rng   *rand.Rand

	openDelay      time.Duration
	statusInterval time.Duration
	zoneInterval   time.Duration
	notiInterval   time.Duration
	faultProb      float64
	alertProb      float64
	log            zerolog.Logger
}

// Option configures a simulator.
type Option func(*Simulator)

// WithZones replaces the embedded zone definitions.
func WithZones(zones []Zone) Option {
	return func(s *Simulator) {
		if len(zones) > 0 {
			s.zones = zones
		}
	}
}

// WithSeed makes the simulator's randomness reproducible.
func WithSeed(seed int64) Option {
	return func(s *Simulator) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithOpenDelay overrides the artificial round trip before a producer
// reports open.
func WithOpenDelay(d time.Duration) Option {
	return func(s *Simulator) { s.openDelay = d }
}

// WithIntervals overrides the per-kind emission intervals. Tests compress
// these to keep wall time down.
func WithIntervals(status, zone, noti time.Duration) Option {
	return func(s *Simulator) {
		s.statusInterval = status
		s.zoneInterval = zone
		s.notiInterval = noti
	}
}

// WithFaultProbability overrides the chance a tick emits a simulated fault
// envelope instead of data.
func WithFaultProbability(p float64) Option {
	return func(s *Simulator) { s.faultProb = p }
}

// WithAlertProbability overrides the chance a synthetic notification is an
// alert.
func WithAlertProbability(p float64) Option {
	return func(s *Simulator) { s.alertProb = p }
}

// WithLogger sets the simulator's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// NewSimulator creates a simulator with the embedded zone definitions and
// production-like intervals.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		zones:          DefaultZones(),
		producers:      make(map[string]*Producer),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		openDelay:      constants.MockOpenDelay,
		statusInterval: constants.MockStatusInterval,
		zoneInterval:   constants.MockZoneInterval,
		notiInterval:   constants.MockNotificationInterval,
		faultProb:      0.05,
		alertProb:      constants.AlertProbability,
		log:            *logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Zones returns the simulator's zone definitions.
func (s *Simulator) Zones() []Zone {
	return s.zones
}

// kindForURL selects the stream kind, and for zone streams the zone ID,
// from the URL the caller would have used against the real backend.
func kindForURL(rawURL string) (Kind, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, "", err
	}
	switch {
	case strings.Contains(u.Path, constants.StatusPath):
		return KindStatus, "", nil
	case strings.Contains(u.Path, constants.ZonePath):
		return KindZone, u.Query().Get("zoneId"), nil
	case strings.Contains(u.Path, "/noti/"):
		return KindNotification, "", nil
	default:
		return 0, "", fmt.Errorf("no mock stream for %s", u.Path)
	}
}

// interval returns the emission period for a stream kind.
func (s *Simulator) interval(kind Kind) time.Duration {
	switch kind {
	case KindStatus:
		return s.statusInterval
	case KindZone:
		return s.zoneInterval
	default:
		return s.notiInterval
	}
}

// Open starts a mock producer for the given URL, mirroring the real
// connection contract: the handlers see an open, then periodic messages,
// and the returned producer's Close behaves like a connection's.
func (s *Simulator) Open(rawURL string, h sse.Handlers) (*Producer, error) {
	kind, zoneID, err := kindForURL(rawURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, streamerr.ErrStreamClosed
	}

	p := newProducer(s, rawURL, kind, zoneID, h)
	s.producers[p.id] = p
	s.log.Debug().
		Str("kind", kind.String()).
		Str("url", sse.Redact(rawURL)).
		Msg("Mock stream opened")
	p.start()
	return p, nil
}

// remove drops a producer from the registry after it closes.
func (s *Simulator) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.producers, id)
}

// Active returns the number of live producers.
func (s *Simulator) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.producers)
}

// CloseAll tears down every live producer and refuses new opens.
func (s *Simulator) CloseAll() {
	s.mu.Lock()
	s.closed = true
	producers := make([]*Producer, 0, len(s.producers))
	for _, p := range s.producers {
		producers = append(producers, p)
	}
	s.mu.Unlock()

	for _, p := range producers {
		_ = p.Close()
	}
}

// float64 draws from the simulator's seeded source. The source is shared by
// every producer tick, so draws are serialized.
func (s *Simulator) float64() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

// intn draws a bounded int from the simulator's seeded source.
func (s *Simulator) intn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// Package wire defines the JSON contract shared by the real push endpoint
// and the mock producer. Every frame that crosses the streaming boundary is
// an Envelope whose Data shape depends on the stream kind: a zone-status
// list for the dashboard stream, sensor snapshots for a per-zone stream, or
// a notification list for the alert stream.
package wire

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// json is the codec used for all envelope decoding. Frames arrive on every
// tick of every open stream, so the faster drop-in replacement is used over
// encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope codes used by the backend.
const (
	CodeOK      = "OK"
	CodeSuccess = "SUCCESS"
	CodeError   = "ERROR"
)

// Envelope is the wrapper around every pushed frame. Data is kept raw until
// the caller knows which stream kind produced it.
type Envelope struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp,omitempty"`
	Data      jsoniter.RawMessage `json:"data"`
}

// OK reports whether the envelope carries a success code.
func (e *Envelope) OK() bool {
	return e.Code == CodeOK || e.Code == CodeSuccess
}

// ParseEnvelope decodes a raw frame into an Envelope.
func ParseEnvelope(b []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	if e.Code == "" {
		return nil, fmt.Errorf("envelope missing code")
	}
	return &e, nil
}

// Marshal encodes the envelope back to its wire form.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// MarshalData encodes a payload value into the raw Data field form.
func MarshalData(v any) (jsoniter.RawMessage, error) {
	return json.Marshal(v)
}

// ZoneStatus is the traffic-light state of a zone or sensor. GREEN, YELLOW
// and RED are severities; CONNECTING and DISCONNECTED are meta-states used
// while a stream is not delivering.
type ZoneStatus string

// Zone status values.
const (
	StatusGreen        ZoneStatus = "GREEN"
	StatusYellow       ZoneStatus = "YELLOW"
	StatusRed          ZoneStatus = "RED"
	StatusConnecting   ZoneStatus = "CONNECTING"
	StatusDisconnected ZoneStatus = "DISCONNECTED"
)

// Severity returns the alerting order of a status: GREEN < YELLOW < RED.
// Meta-states return -1.
func (s ZoneStatus) Severity() int {
	switch s {
	case StatusGreen:
		return 0
	case StatusYellow:
		return 1
	case StatusRed:
		return 2
	default:
		return -1
	}
}

// Valid reports whether the status is one of the known values.
func (s ZoneStatus) Valid() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed, StatusConnecting, StatusDisconnected:
		return true
	}
	return false
}

// SensorType identifies the kind of measurement a sensor takes.
type SensorType string

// Known sensor types.
const (
	SensorTemperature   SensorType = "temperature"
	SensorHumidity      SensorType = "humidity"
	SensorElectrostatic SensorType = "electrostatic"
	SensorParticle      SensorType = "particle"
	SensorWindDirection SensorType = "winddirection"
)

// SensorTypes lists every known sensor type in display order.
func SensorTypes() []SensorType {
	return []SensorType{
		SensorTemperature,
		SensorHumidity,
		SensorElectrostatic,
		SensorParticle,
		SensorWindDirection,
	}
}

// Valid reports whether the sensor type is one of the known values.
func (t SensorType) Valid() bool {
	switch t {
	case SensorTemperature, SensorHumidity, SensorElectrostatic, SensorParticle, SensorWindDirection:
		return true
	}
	return false
}

// Particle size bins emitted by particle counters, in µm.
const (
	ParticleBin01 = "0.1"
	ParticleBin03 = "0.3"
	ParticleBin05 = "0.5"
)

// Values holds a sensor's measured values. Scalar sensors carry a single
// value with an optional unit; particle counters carry three correlated
// size-bin counts instead.
type Values struct {
	Value float64
	Unit  string
	Bins  map[string]float64
}

// Particle reports whether the values came from a particle counter.
func (v Values) Particle() bool {
	return v.Bins != nil
}

// scalarValues is the wire form of a scalar sensor's values.
type scalarValues struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// UnmarshalJSON decodes either the scalar {value, unit} form or the
// particle size-bin map form.
func (v *Values) UnmarshalJSON(b []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if _, ok := raw["value"]; ok {
		var s scalarValues
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v.Value = s.Value
		v.Unit = s.Unit
		v.Bins = nil
		return nil
	}
	bins := make(map[string]float64, len(raw))
	for k, m := range raw {
		var f float64
		if err := json.Unmarshal(m, &f); err != nil {
			return fmt.Errorf("values bin %q: %w", k, err)
		}
		bins[k] = f
	}
	v.Bins = bins
	return nil
}

// MarshalJSON encodes the values back to their wire form.
func (v Values) MarshalJSON() ([]byte, error) {
	if v.Bins != nil {
		return json.Marshal(v.Bins)
	}
	return json.Marshal(scalarValues{Value: v.Value, Unit: v.Unit})
}

// Reading is one sensor's timestamped status and values. SensorID is stable
// across updates and its SensorType never changes.
type Reading struct {
	SensorID     string     `json:"sensorId"`
	SensorType   SensorType `json:"sensorType"`
	SensorStatus ZoneStatus `json:"sensorStatus"`
	Timestamp    string     `json:"timestamp"`
	Values       Values     `json:"values"`
}

// Time parses the reading's timestamp. Returns the zero time when the
// timestamp is absent or malformed, which sorts before any real time.
func (r Reading) Time() time.Time {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ZoneStatusEntry is one zone's status in a dashboard-wide status frame.
type ZoneStatusEntry struct {
	ZoneName string     `json:"zoneName"`
	Status   ZoneStatus `json:"status"`
}

// Snapshot is one timestamped reading set within a per-zone sensor frame. A
// frame may carry several snapshots after a reconnect catch-up.
type Snapshot struct {
	Timestamp string    `json:"timestamp"`
	Sensors   []Reading `json:"sensors"`
}

// Notification is one entry in a notification stream frame.
type Notification struct {
	NotiID     string `json:"notiId"`
	NotiType   string `json:"notiType"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	ZoneID     string `json:"zoneId"`
	Priority   string `json:"priority"`
	Timestamp  string `json:"timestamp"`
	ReadStatus bool   `json:"readStatus"`
}

// Notification types emitted by the backend.
const (
	NotiTypeMessage = "message"
	NotiTypeAlert   = "alert"
)

// ZoneStatuses decodes the envelope data as a zone-status list.
func (e *Envelope) ZoneStatuses() ([]ZoneStatusEntry, error) {
	var entries []ZoneStatusEntry
	if err := json.Unmarshal(e.Data, &entries); err != nil {
		return nil, fmt.Errorf("zone status data: %w", err)
	}
	return entries, nil
}

// Snapshots decodes the envelope data as per-zone sensor snapshots.
func (e *Envelope) Snapshots() ([]Snapshot, error) {
	var snaps []Snapshot
	if err := json.Unmarshal(e.Data, &snaps); err != nil {
		return nil, fmt.Errorf("sensor snapshot data: %w", err)
	}
	return snaps, nil
}

// Notifications decodes the envelope data as a notification list.
func (e *Envelope) Notifications() ([]Notification, error) {
	var notis []Notification
	if err := json.Unmarshal(e.Data, &notis); err != nil {
		return nil, fmt.Errorf("notification data: %w", err)
	}
	return notis, nil
}

package mock

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zonewatch/zonewatch/pkg/constants"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

// valueRange is a sensor type's documented normal operating band.
type valueRange struct {
	lo, hi float64
	unit   string
}

// Normal ranges per scalar sensor type. A draw escalated into the warning
// band multiplies the value by warningFactor.
var sensorRanges = map[wire.SensorType]valueRange{
	wire.SensorTemperature:   {lo: 19, hi: 24, unit: "°C"},
	wire.SensorHumidity:      {lo: 40, hi: 60, unit: "%"},
	wire.SensorElectrostatic: {lo: 0, hi: 80, unit: "V"},
	wire.SensorWindDirection: {lo: 0, hi: 360, unit: "°"},
}

// Normal ranges per particle size bin, in counts per cubic foot.
var particleRanges = map[string]valueRange{
	wire.ParticleBin01: {lo: 80, hi: 120},
	wire.ParticleBin03: {lo: 20, hi: 60},
	wire.ParticleBin05: {lo: 5, hi: 25},
}

// warningFactor pushes an escalated value past its normal band.
const warningFactor = 1.6

// sensorPrefixes build stable per-zone sensor IDs like TEMP_01.
var sensorPrefixes = map[wire.SensorType]string{
	wire.SensorTemperature:   "TEMP",
	wire.SensorHumidity:      "HUM",
	wire.SensorElectrostatic: "ESD",
	wire.SensorParticle:      "PM",
	wire.SensorWindDirection: "WD",
}

// envelopeFor synthesizes the next frame for a stream, with a small chance
// of a simulated fault envelope to exercise the error paths downstream.
func (s *Simulator) envelopeFor(kind Kind, zoneID string) *wire.Envelope {
	if s.faultProb > 0 && s.float64() < s.faultProb {
		return s.faultEnvelope()
	}
	switch kind {
	case KindStatus:
		return s.StatusEnvelope()
	case KindZone:
		return s.ZoneEnvelope(zoneID)
	default:
		return s.NotificationEnvelope()
	}
}

// faultEnvelope mimics the backend's error frame.
func (s *Simulator) faultEnvelope() *wire.Envelope {
	return &wire.Envelope{
		Code:      wire.CodeError,
		Message:   "simulated backend fault",
		Timestamp: s.now(),
	}
}

// StatusEnvelope draws an independent weighted status for every known zone.
func (s *Simulator) StatusEnvelope() *wire.Envelope {
	entries := make([]wire.ZoneStatusEntry, 0, len(s.zones))
	for _, z := range s.zones {
		entries = append(entries, wire.ZoneStatusEntry{
			ZoneName: z.Name,
			Status:   s.WeightedStatus(),
		})
	}
	return s.envelope(entries)
}

// ZoneEnvelope synthesizes one snapshot covering every sensor of the zone.
// Unknown zone IDs fall back to the first defined zone so a mistyped URL
// still produces schema-valid traffic.
func (s *Simulator) ZoneEnvelope(zoneID string) *wire.Envelope {
	zone := s.zones[0]
	for _, z := range s.zones {
		if z.Name == zoneID {
			zone = z
			break
		}
	}

	now := s.now()
	var readings []wire.Reading
	for _, t := range wire.SensorTypes() {
		for i := 1; i <= zone.count(t); i++ {
			readings = append(readings, s.reading(t, i, now))
		}
	}

	return s.envelope([]wire.Snapshot{{Timestamp: now, Sensors: readings}})
}

// reading draws one sensor's status and values.
func (s *Simulator) reading(t wire.SensorType, ordinal int, now string) wire.Reading {
	r := wire.Reading{
		SensorID:     fmt.Sprintf("%s_%02d", sensorPrefixes[t], ordinal),
		SensorType:   t,
		SensorStatus: s.WeightedStatus(),
		Timestamp:    now,
	}

	escalate := s.float64() < constants.WarningProbability
	if t == wire.SensorParticle {
		bins := make(map[string]float64, len(particleRanges))
		for bin, vr := range particleRanges {
			v := s.uniform(vr)
			if escalate {
				// Bins escalate together: a real excursion raises
				// all sizes at once.
				v *= warningFactor
			}
			bins[bin] = round1(v)
		}
		r.Values = wire.Values{Bins: bins}
		return r
	}

	vr := sensorRanges[t]
	v := s.uniform(vr)
	if escalate {
		v *= warningFactor
	}
	r.Values = wire.Values{Value: round1(v), Unit: vr.unit}
	return r
}

// NotificationEnvelope emits one synthetic notification, occasionally an
// alert to exercise alert-specific subscriber paths.
func (s *Simulator) NotificationEnvelope() *wire.Envelope {
	zone := s.zones[s.intn(len(s.zones))]
	now := s.now()

	noti := wire.Notification{
		NotiID:     uuid.NewString(),
		NotiType:   wire.NotiTypeMessage,
		Title:      "Zone update",
		Message:    fmt.Sprintf("Periodic report for zone %s", zone.Name),
		ZoneID:     zone.Name,
		Priority:   "NORMAL",
		Timestamp:  now,
		ReadStatus: false,
	}
	if s.float64() < s.alertProb {
		noti.NotiType = wire.NotiTypeAlert
		noti.Title = "Threshold exceeded"
		noti.Message = fmt.Sprintf("Sensor threshold exceeded in zone %s", zone.Name)
		noti.Priority = "HIGH"
	}

	return s.envelope([]wire.Notification{noti})
}

// WeightedStatus draws GREEN/YELLOW/RED at the documented 60/30/10 weights.
// The same weighting covers zone and per-sensor statuses.
func (s *Simulator) WeightedStatus() wire.ZoneStatus {
	n := s.intn(100)
	switch {
	case n < constants.GreenWeight:
		return wire.StatusGreen
	case n < constants.GreenWeight+constants.YellowWeight:
		return wire.StatusYellow
	default:
		return wire.StatusRed
	}
}

// envelope wraps a payload in the standard success envelope.
func (s *Simulator) envelope(data any) *wire.Envelope {
	raw, err := wire.MarshalData(data)
	if err != nil {
		// All payloads here are plain structs; a marshal failure is a
		// build defect.
		panic(err)
	}
	return &wire.Envelope{
		Code:      wire.CodeOK,
		Message:   "success",
		Timestamp: s.now(),
		Data:      raw,
	}
}

// uniform draws within a range.
func (s *Simulator) uniform(vr valueRange) float64 {
	return vr.lo + s.float64()*(vr.hi-vr.lo)
}

// now returns the wire-format timestamp for the current instant.
func (s *Simulator) now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// round1 trims a draw to one decimal place to match real sensor payloads.
func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

package wire

import "fmt"

// Structural validators for envelope payloads. The same checkers run against
// frames from the real backend and from the mock producer, so the two can be
// asserted shape-compatible in tests.

// ValidateEnvelope checks the envelope wrapper itself.
func ValidateEnvelope(e *Envelope) error {
	if e == nil {
		return fmt.Errorf("nil envelope")
	}
	if e.Code == "" {
		return fmt.Errorf("envelope missing code")
	}
	if e.OK() && len(e.Data) == 0 {
		return fmt.Errorf("envelope code %s with empty data", e.Code)
	}
	return nil
}

// ValidateZoneStatusData checks a zone-status envelope end to end.
func ValidateZoneStatusData(e *Envelope) error {
	if err := ValidateEnvelope(e); err != nil {
		return err
	}
	entries, err := e.ZoneStatuses()
	if err != nil {
		return err
	}
	for i, entry := range entries {
		if entry.ZoneName == "" {
			return fmt.Errorf("entry %d: missing zoneName", i)
		}
		if !entry.Status.Valid() {
			return fmt.Errorf("entry %d: unknown status %q", i, entry.Status)
		}
	}
	return nil
}

// ValidateSnapshotData checks a per-zone sensor envelope end to end.
func ValidateSnapshotData(e *Envelope) error {
	if err := ValidateEnvelope(e); err != nil {
		return err
	}
	snaps, err := e.Snapshots()
	if err != nil {
		return err
	}
	for i, snap := range snaps {
		for j, r := range snap.Sensors {
			if err := validateReading(r); err != nil {
				return fmt.Errorf("snapshot %d reading %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// validateReading checks a single reading, including the scalar/particle
// values split.
func validateReading(r Reading) error {
	if r.SensorID == "" {
		return fmt.Errorf("missing sensorId")
	}
	if !r.SensorType.Valid() {
		return fmt.Errorf("unknown sensorType %q", r.SensorType)
	}
	if !r.SensorStatus.Valid() {
		return fmt.Errorf("unknown sensorStatus %q", r.SensorStatus)
	}
	if r.SensorType == SensorParticle {
		if !r.Values.Particle() {
			return fmt.Errorf("particle sensor %s without size bins", r.SensorID)
		}
		for _, bin := range []string{ParticleBin01, ParticleBin03, ParticleBin05} {
			if _, ok := r.Values.Bins[bin]; !ok {
				return fmt.Errorf("particle sensor %s missing bin %s", r.SensorID, bin)
			}
		}
		return nil
	}
	if r.Values.Particle() {
		return fmt.Errorf("%s sensor %s with particle bins", r.SensorType, r.SensorID)
	}
	return nil
}

// ValidateNotificationData checks a notification envelope end to end.
func ValidateNotificationData(e *Envelope) error {
	if err := ValidateEnvelope(e); err != nil {
		return err
	}
	notis, err := e.Notifications()
	if err != nil {
		return err
	}
	for i, n := range notis {
		if n.NotiID == "" {
			return fmt.Errorf("notification %d: missing notiId", i)
		}
		if n.NotiType != NotiTypeMessage && n.NotiType != NotiTypeAlert {
			return fmt.Errorf("notification %d: unknown notiType %q", i, n.NotiType)
		}
	}
	return nil
}

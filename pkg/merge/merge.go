// Package merge folds incoming, possibly partial reading sets into a view's
// persistent per-type state. Sensor types absent from the latest frame are
// carried through unchanged, so a view never flickers to "no data" for a
// type the frame didn't happen to include.
//
// All functions are pure: inputs are never mutated and every call returns a
// fresh map, so callers can compare by identity to decide whether to
// re-render.
package merge

import (
	"sort"

	"github.com/zonewatch/zonewatch/pkg/wire"
)

// readingKey identifies a reading within a zone for deduplication.
type readingKey struct {
	Type wire.SensorType
	ID   string
}

// Readings folds the snapshots of a per-zone frame into prev. Readings are
// flattened across snapshots, deduplicated by (sensorType, sensorId) keeping
// the latest timestamp, and grouped by type. Each type present in the frame
// replaces that type's slice wholesale, sorted by the numeric suffix of the
// sensor ID; types present only in prev are copied through untouched.
func Readings(prev map[wire.SensorType][]wire.Reading, snaps []wire.Snapshot) map[wire.SensorType][]wire.Reading {
	latest := make(map[readingKey]wire.Reading)
	for _, snap := range snaps {
		for _, r := range snap.Sensors {
			key := readingKey{Type: r.SensorType, ID: r.SensorID}
			if prior, ok := latest[key]; ok && prior.Time().After(r.Time()) {
				continue
			}
			// Later payload position wins ties.
			latest[key] = r
		}
	}

	grouped := make(map[wire.SensorType][]wire.Reading)
	for key, r := range latest {
		grouped[key.Type] = append(grouped[key.Type], r)
	}
	for _, readings := range grouped {
		sortReadings(readings)
	}

	out := make(map[wire.SensorType][]wire.Reading, len(prev)+len(grouped))
	for t, readings := range prev {
		out[t] = readings
	}
	for t, readings := range grouped {
		out[t] = readings
	}
	return out
}

// ZoneStatuses folds a dashboard status frame into prev. Zones named in the
// frame take their new status; zones known only from prev are carried
// through.
func ZoneStatuses(prev map[string]wire.ZoneStatus, entries []wire.ZoneStatusEntry) map[string]wire.ZoneStatus {
	out := make(map[string]wire.ZoneStatus, len(prev)+len(entries))
	for name, status := range prev {
		out[name] = status
	}
	for _, entry := range entries {
		out[entry.ZoneName] = entry.Status
	}
	return out
}

// sortReadings orders a type's readings by the numeric suffix of the sensor
// ID ascending (TEMP_01 before TEMP_02), falling back to the full ID for
// IDs without one.
func sortReadings(readings []wire.Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		oi, oj := idOrdinal(readings[i].SensorID), idOrdinal(readings[j].SensorID)
		if oi != oj {
			return oi < oj
		}
		return readings[i].SensorID < readings[j].SensorID
	})
}

// idOrdinal extracts the trailing digit run of a sensor ID as a number.
// Returns -1 when the ID has no numeric suffix, sorting it first.
func idOrdinal(id string) int {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return -1
	}
	n := 0
	for _, c := range id[start:end] {
		n = n*10 + int(c-'0')
	}
	return n
}

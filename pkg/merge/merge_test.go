package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonewatch/zonewatch/pkg/merge"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

func reading(id string, typ wire.SensorType, ts string, value float64) wire.Reading {
	return wire.Reading{
		SensorID:     id,
		SensorType:   typ,
		SensorStatus: wire.StatusGreen,
		Timestamp:    ts,
		Values:       wire.Values{Value: value, Unit: "u"},
	}
}

func TestReadingsPreservesAbsentTypes(t *testing.T) {
	prev := map[wire.SensorType][]wire.Reading{
		wire.SensorHumidity: {reading("HUM_01", wire.SensorHumidity, "2026-08-29T10:00:00Z", 45)},
	}
	snaps := []wire.Snapshot{{
		Timestamp: "2026-08-29T10:01:00Z",
		Sensors: []wire.Reading{
			reading("TEMP_01", wire.SensorTemperature, "2026-08-29T10:01:00Z", 21.5),
		},
	}}

	out := merge.Readings(prev, snaps)

	require.Len(t, out, 2)
	assert.Equal(t, prev[wire.SensorHumidity], out[wire.SensorHumidity], "type absent from frame carries through")
	require.Len(t, out[wire.SensorTemperature], 1)
	assert.Equal(t, "TEMP_01", out[wire.SensorTemperature][0].SensorID)
}

func TestReadingsReplacesPresentTypeWholesale(t *testing.T) {
	prev := map[wire.SensorType][]wire.Reading{
		wire.SensorTemperature: {
			reading("TEMP_01", wire.SensorTemperature, "2026-08-29T09:00:00Z", 20),
			reading("TEMP_02", wire.SensorTemperature, "2026-08-29T09:00:00Z", 20),
		},
	}
	snaps := []wire.Snapshot{{
		Sensors: []wire.Reading{
			reading("TEMP_03", wire.SensorTemperature, "2026-08-29T10:00:00Z", 22),
		},
	}}

	out := merge.Readings(prev, snaps)

	require.Len(t, out[wire.SensorTemperature], 1, "frame replaces the type's slice, no merge with prior sensors")
	assert.Equal(t, "TEMP_03", out[wire.SensorTemperature][0].SensorID)
}

func TestReadingsDedupeKeepsLatestTimestamp(t *testing.T) {
	snaps := []wire.Snapshot{
		{Sensors: []wire.Reading{
			reading("TEMP_01", wire.SensorTemperature, "2026-08-29T10:05:00Z", 23),
		}},
		{Sensors: []wire.Reading{
			reading("TEMP_01", wire.SensorTemperature, "2026-08-29T10:00:00Z", 21),
		}},
	}

	out := merge.Readings(nil, snaps)

	require.Len(t, out[wire.SensorTemperature], 1)
	assert.Equal(t, 23.0, out[wire.SensorTemperature][0].Values.Value, "earlier timestamp loses regardless of payload order")
}

func TestReadingsDedupeTieLaterPositionWins(t *testing.T) {
	ts := "2026-08-29T10:00:00Z"
	snaps := []wire.Snapshot{
		{Sensors: []wire.Reading{reading("TEMP_01", wire.SensorTemperature, ts, 21)}},
		{Sensors: []wire.Reading{reading("TEMP_01", wire.SensorTemperature, ts, 22)}},
	}

	out := merge.Readings(nil, snaps)

	require.Len(t, out[wire.SensorTemperature], 1)
	assert.Equal(t, 22.0, out[wire.SensorTemperature][0].Values.Value)
}

func TestReadingsSortByNumericSuffix(t *testing.T) {
	snaps := []wire.Snapshot{{
		Sensors: []wire.Reading{
			reading("TEMP_10", wire.SensorTemperature, "2026-08-29T10:00:00Z", 1),
			reading("TEMP_2", wire.SensorTemperature, "2026-08-29T10:00:00Z", 2),
			reading("TEMP_01", wire.SensorTemperature, "2026-08-29T10:00:00Z", 3),
		},
	}}

	out := merge.Readings(nil, snaps)

	ids := make([]string, 0, 3)
	for _, r := range out[wire.SensorTemperature] {
		ids = append(ids, r.SensorID)
	}
	// Numeric suffix ordering, not lexicographic (TEMP_10 after TEMP_2).
	assert.Equal(t, []string{"TEMP_01", "TEMP_2", "TEMP_10"}, ids)
}

func TestReadingsDoesNotMutatePrev(t *testing.T) {
	prev := map[wire.SensorType][]wire.Reading{
		wire.SensorTemperature: {reading("TEMP_01", wire.SensorTemperature, "2026-08-29T09:00:00Z", 20)},
	}
	snaps := []wire.Snapshot{{
		Sensors: []wire.Reading{reading("TEMP_02", wire.SensorTemperature, "2026-08-29T10:00:00Z", 22)},
	}}

	out := merge.Readings(prev, snaps)

	require.Len(t, prev, 1)
	assert.Equal(t, "TEMP_01", prev[wire.SensorTemperature][0].SensorID, "input map untouched")
	assert.NotSame(t, &prev, &out)
}

func TestReadingsEmptyFrame(t *testing.T) {
	prev := map[wire.SensorType][]wire.Reading{
		wire.SensorParticle: {reading("PM_01", wire.SensorParticle, "2026-08-29T09:00:00Z", 0)},
	}

	out := merge.Readings(prev, nil)

	assert.Equal(t, prev[wire.SensorParticle], out[wire.SensorParticle])
}

func TestZoneStatusesCarryThrough(t *testing.T) {
	prev := map[string]wire.ZoneStatus{
		"Zone A01": wire.StatusGreen,
		"Zone B01": wire.StatusYellow,
	}
	entries := []wire.ZoneStatusEntry{
		{ZoneName: "Zone B01", Status: wire.StatusRed},
		{ZoneName: "Zone C02", Status: wire.StatusGreen},
	}

	out := merge.ZoneStatuses(prev, entries)

	assert.Equal(t, wire.StatusGreen, out["Zone A01"], "zone absent from frame keeps prior status")
	assert.Equal(t, wire.StatusRed, out["Zone B01"])
	assert.Equal(t, wire.StatusGreen, out["Zone C02"])
	assert.Equal(t, wire.StatusYellow, prev["Zone B01"], "input map untouched")
}

package zonewatch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonewatch/zonewatch"
	"github.com/zonewatch/zonewatch/pkg/mock"
	"github.com/zonewatch/zonewatch/pkg/streamerr"
	"github.com/zonewatch/zonewatch/pkg/wire"
)

func newMockClient(t *testing.T, simOpts []mock.Option, opts ...zonewatch.Option) zonewatch.Client {
	t.Helper()
	base := []mock.Option{
		mock.WithSeed(1),
		mock.WithOpenDelay(time.Millisecond),
		mock.WithIntervals(20*time.Millisecond, 20*time.Millisecond, 20*time.Millisecond),
		mock.WithFaultProbability(0),
	}
	sim := mock.NewSimulator(append(base, simOpts...)...)
	t.Cleanup(sim.CloseAll)

	all := append([]zonewatch.Option{
		zonewatch.WithSimulator(sim),
		zonewatch.WithStatusDebounce(5 * time.Millisecond),
		zonewatch.WithZoneDebounce(5 * time.Millisecond),
		zonewatch.WithNotificationDebounce(5 * time.Millisecond),
	}, opts...)

	client, err := zonewatch.New(all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewRequiresBaseURLOrSimulator(t *testing.T) {
	_, err := zonewatch.New()
	require.Error(t, err)

	client, err := zonewatch.New(zonewatch.WithBaseURL("https://dash.example.com/api"))
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestStatusStreamDeliversMergedState(t *testing.T) {
	client := newMockClient(t, nil)

	opened := make(chan struct{})
	updates := make(chan map[string]wire.ZoneStatus, 16)

	stop, err := client.OpenStatus(zonewatch.Handlers{
		OnOpen:   func() { close(opened) },
		OnStatus: func(state map[string]wire.ZoneStatus) { updates <- state },
	})
	require.NoError(t, err)
	defer stop()

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("stream never opened")
	}

	select {
	case state := <-updates:
		require.NotEmpty(t, state)
		for zone, status := range state {
			assert.NotEmpty(t, zone)
			assert.True(t, status.Valid())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no status update delivered")
	}
}

func TestZoneStreamDeliversMergedReadings(t *testing.T) {
	client := newMockClient(t, nil)

	updates := make(chan map[wire.SensorType][]wire.Reading, 16)
	stop, err := client.OpenZone("A01", zonewatch.Handlers{
		OnReadings: func(state map[wire.SensorType][]wire.Reading) { updates <- state },
	})
	require.NoError(t, err)
	defer stop()

	select {
	case state := <-updates:
		require.NotEmpty(t, state)
		for typ, readings := range state {
			require.NotEmpty(t, readings)
			for _, r := range readings {
				assert.Equal(t, typ, r.SensorType)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reading update delivered")
	}
}

func TestZoneStreamRequiresZoneID(t *testing.T) {
	client := newMockClient(t, nil)

	_, err := client.OpenZone("", zonewatch.Handlers{})
	require.Error(t, err)
}

func TestUnknownStreamKind(t *testing.T) {
	client := newMockClient(t, nil)

	_, err := client.Open(zonewatch.StreamKind("bogus"), zonewatch.Params{}, zonewatch.Handlers{})
	require.Error(t, err)
}

func TestNotificationStreamAndAlertHook(t *testing.T) {
	client := newMockClient(t, []mock.Option{mock.WithAlertProbability(1)})

	notis := make(chan []wire.Notification, 16)
	alerts := make(chan wire.Notification, 16)

	client.OnAlert(func(n wire.Notification) { alerts <- n })

	stop, err := client.OpenNotifications(zonewatch.Handlers{
		OnNotifications: func(batch []wire.Notification) { notis <- batch },
	})
	require.NoError(t, err)
	defer stop()

	select {
	case batch := <-notis:
		require.NotEmpty(t, batch)
		assert.Equal(t, wire.NotiTypeAlert, batch[0].NotiType)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification delivered")
	}

	select {
	case alert := <-alerts:
		assert.Equal(t, wire.NotiTypeAlert, alert.NotiType)
		assert.NotEmpty(t, alert.ZoneID)
	case <-time.After(5 * time.Second):
		t.Fatal("alert hook never fired")
	}
}

func TestAlertHookIgnoresMessages(t *testing.T) {
	client := newMockClient(t, []mock.Option{mock.WithAlertProbability(0)})

	notis := make(chan []wire.Notification, 16)
	alerts := make(chan wire.Notification, 16)

	client.OnAlert(func(n wire.Notification) { alerts <- n })

	stop, err := client.OpenNotifications(zonewatch.Handlers{
		OnNotifications: func(batch []wire.Notification) { notis <- batch },
	})
	require.NoError(t, err)
	defer stop()

	select {
	case <-notis:
	case <-time.After(5 * time.Second):
		t.Fatal("no notification delivered")
	}

	select {
	case n := <-alerts:
		t.Fatalf("alert hook fired for %q notification", n.NotiType)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFaultFramesAreReportedNotDelivered(t *testing.T) {
	reported := make(chan streamerr.Class, 16)
	client := newMockClient(t,
		[]mock.Option{mock.WithFaultProbability(1)},
		zonewatch.WithReporter(func(class streamerr.Class, err error) {
			reported <- class
		}),
	)

	updates := make(chan map[string]wire.ZoneStatus, 16)
	stop, err := client.OpenStatus(zonewatch.Handlers{
		OnStatus: func(state map[string]wire.ZoneStatus) { updates <- state },
	})
	require.NoError(t, err)
	defer stop()

	select {
	case <-reported:
	case <-time.After(5 * time.Second):
		t.Fatal("fault frame never reported")
	}

	select {
	case state := <-updates:
		t.Fatalf("fault frame reached the status handler: %v", state)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopFuncIsIdempotent(t *testing.T) {
	client := newMockClient(t, nil)

	stop, err := client.OpenStatus(zonewatch.Handlers{})
	require.NoError(t, err)

	stop()
	stop()
}

func TestClientCloseStopsStreamsAndRefusesOpens(t *testing.T) {
	sim := mock.NewSimulator(
		mock.WithSeed(1),
		mock.WithOpenDelay(time.Millisecond),
		mock.WithIntervals(20*time.Millisecond, 20*time.Millisecond, 20*time.Millisecond),
	)
	defer sim.CloseAll()

	client, err := zonewatch.New(zonewatch.WithSimulator(sim))
	require.NoError(t, err)

	_, err = client.OpenStatus(zonewatch.Handlers{})
	require.NoError(t, err)
	require.Equal(t, 1, sim.Active())

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.Equal(t, 0, sim.Active())

	_, err = client.OpenStatus(zonewatch.Handlers{})
	assert.ErrorIs(t, err, streamerr.ErrStreamClosed)
}

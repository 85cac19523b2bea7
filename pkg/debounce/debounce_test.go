package debounce_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonewatch/zonewatch/pkg/debounce"
)

// recorder collects deliveries across goroutines.
type recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

func (r *recorder[T]) record(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, v)
}

func (r *recorder[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

func TestCoalescing(t *testing.T) {
	d := debounce.New[string](50 * time.Millisecond)
	defer d.Destroy()

	rec := &recorder[string]{}
	d.AddCallback(rec.record)

	d.Update("A")
	d.Update("B")
	d.Update("C")

	time.Sleep(150 * time.Millisecond)

	values := rec.snapshot()
	require.Len(t, values, 1, "burst must coalesce to one delivery")
	assert.Equal(t, "C", values[0], "only the most recent payload survives")
}

func TestSettledStreamDeliversEachUpdate(t *testing.T) {
	d := debounce.New[int](20 * time.Millisecond)
	defer d.Destroy()

	rec := &recorder[int]{}
	d.AddCallback(rec.record)

	d.Update(1)
	time.Sleep(80 * time.Millisecond)
	d.Update(2)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []int{1, 2}, rec.snapshot())
}

func TestMultipleCallbacks(t *testing.T) {
	d := debounce.New[int](20 * time.Millisecond)
	defer d.Destroy()

	first := &recorder[int]{}
	second := &recorder[int]{}
	d.AddCallback(first.record)
	d.AddCallback(second.record)

	d.Update(7)
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, []int{7}, first.snapshot())
	assert.Equal(t, []int{7}, second.snapshot())
}

func TestDestroyCancelsPending(t *testing.T) {
	d := debounce.New[int](50 * time.Millisecond)

	rec := &recorder[int]{}
	d.AddCallback(rec.record)

	d.Update(1)
	d.Destroy()

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "no delivery after Destroy")
}

func TestDestroyIdempotent(t *testing.T) {
	d := debounce.New[int](10 * time.Millisecond)
	d.Destroy()
	d.Destroy()

	// Updates after Destroy are no-ops rather than panics.
	d.Update(1)
	time.Sleep(50 * time.Millisecond)
}

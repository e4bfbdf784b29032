package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"menuboard/internal/client"
	"menuboard/internal/menu"
	"menuboard/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher returns queued results; when gate is set each Load blocks on it.
type fakeFetcher struct {
	mu      sync.Mutex
	results []result
	calls   atomic.Int32
	gate    chan struct{}
}

type result struct {
	payload *client.Payload
	err     error
}

func (f *fakeFetcher) push(p *client.Payload, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, result{p, err})
}

func (f *fakeFetcher) Load(ctx context.Context) (*client.Payload, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[0]
	f.results = f.results[1:]
	return r.payload, r.err
}

func samplePayload(t *testing.T) *client.Payload {
	t.Helper()
	info, err := models.NewRestaurantInfo([]byte(`{"name":"Shriyansh Restaurant"}`))
	require.NoError(t, err)
	mk := func(id string, c models.Category) models.MenuItem {
		return models.MenuItem{ID: id, Name: id, Category: c, Price: decimal.NewFromInt(50), PreparationTime: 5, IsAvailable: true}
	}
	return &client.Payload{
		Items: []models.MenuItem{
			mk("1", models.CategoryRice),
			mk("2", models.CategoryAppetizers),
			mk("3", models.CategoryRice),
		},
		Info: info,
	}
}

func wait(t *testing.T, m *Machine) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := m.Wait(ctx)
	require.NoError(t, err)
	return s
}

func TestMachine_StartsIdle(t *testing.T) {
	m := New(&fakeFetcher{})
	assert.Equal(t, PhaseIdle, m.State().Phase)
	assert.Equal(t, menu.StatusLoading, m.ViewModel().Status)

	s, err := m.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, s.Phase)
}

func TestMachine_Success(t *testing.T) {
	f := &fakeFetcher{}
	payload := samplePayload(t)
	f.push(payload, nil)

	m := New(f)
	require.True(t, m.Activate(context.Background()))

	s := wait(t, m)
	assert.Equal(t, PhaseSuccess, s.Phase)
	assert.Equal(t, 1, s.Cycle)
	assert.Equal(t, payload.Items, s.Items)
	assert.Empty(t, s.Message)
	assert.False(t, s.SettledAt.Before(s.StartedAt))

	vm := s.ViewModel()
	assert.Equal(t, menu.StatusReady, vm.Status)
	require.Len(t, vm.Sections, 2)
	assert.Equal(t, models.CategoryRice, vm.Sections[0].Category)
	assert.Equal(t, 3, vm.ItemCount())

	assert.False(t, m.Activate(context.Background()), "activate only works from idle")
	assert.False(t, m.Retry(context.Background()), "retry only works from error")
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestMachine_FailureThenRetry(t *testing.T) {
	f := &fakeFetcher{}
	f.push(nil, &client.LoadError{Err: &client.TransportError{Endpoint: client.RestaurantInfoPath, StatusCode: 500}})
	f.push(samplePayload(t), nil)

	var logs bytes.Buffer
	m := New(f, WithLogger(zerolog.New(&logs)))
	require.True(t, m.Activate(context.Background()))

	s := wait(t, m)
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, FailureMessage, s.Message)
	assert.Nil(t, s.Items, "no partial data in error state")
	assert.True(t, s.Info.IsZero())

	vm := s.ViewModel()
	assert.Equal(t, menu.StatusError, vm.Status)
	assert.True(t, vm.Retryable)
	assert.NotContains(t, vm.Message, "500", "raw cause stays out of the view")
	assert.Contains(t, logs.String(), "unexpected status code: 500")
	assert.Contains(t, logs.String(), `"kind":"transport"`)

	require.True(t, m.Retry(context.Background()))
	s = wait(t, m)
	assert.Equal(t, PhaseSuccess, s.Phase)
	assert.Equal(t, 2, s.Cycle)
	assert.Empty(t, s.Message)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestMachine_RetryWhileLoadingIsIgnored(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	f.push(nil, errors.New("network down"))
	f.push(samplePayload(t), nil)

	rec := &countingRecorder{}
	m := New(f, WithRecorder(rec))

	require.True(t, m.Activate(context.Background()))
	assert.Equal(t, PhaseLoading, m.State().Phase)

	assert.False(t, m.Retry(context.Background()))
	assert.False(t, m.Activate(context.Background()))
	assert.Equal(t, PhaseLoading, m.State().Phase)
	assert.Equal(t, 1, m.State().Cycle)

	f.gate <- struct{}{}
	s := wait(t, m)
	assert.Equal(t, PhaseError, s.Phase)
	assert.Equal(t, int32(1), f.calls.Load(), "no second fetch was issued")

	require.True(t, m.Retry(context.Background()))
	f.gate <- struct{}{}
	assert.Equal(t, PhaseSuccess, wait(t, m).Phase)

	assert.Equal(t, int32(2), rec.started.Load())
	assert.Equal(t, int32(2), rec.ignored.Load())
}

func TestMachine_ConcurrentRetries(t *testing.T) {
	f := &fakeFetcher{}
	f.push(nil, errors.New("boom"))
	f.push(samplePayload(t), nil)

	m := New(f)
	m.Activate(context.Background())
	require.Equal(t, PhaseError, wait(t, m).Phase)

	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Retry(context.Background()) {
				started.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), started.Load())
	assert.Equal(t, PhaseSuccess, wait(t, m).Phase)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestMachine_FetchOutlivesTriggerContext(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	f.push(samplePayload(t), nil)
	m := New(f)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, m.Activate(ctx))
	cancel()

	f.gate <- struct{}{}
	assert.Equal(t, PhaseSuccess, wait(t, m).Phase)
}

func TestMachine_Subscribe(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	f.push(samplePayload(t), nil)
	m := New(f)

	updates, unsubscribe := m.Subscribe()
	defer unsubscribe()

	assert.Equal(t, PhaseIdle, (<-updates).Phase)

	m.Activate(context.Background())
	assert.Equal(t, PhaseLoading, (<-updates).Phase)

	f.gate <- struct{}{}
	select {
	case s := <-updates:
		assert.Equal(t, PhaseSuccess, s.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("no success update")
	}

	unsubscribe()
	_, open := <-updates
	assert.False(t, open)
}

func TestMachine_UnknownCategoryWarns(t *testing.T) {
	f := &fakeFetcher{}
	payload := samplePayload(t)
	payload.Items = append(payload.Items, models.MenuItem{ID: "9", Name: "Chef Special", Category: "chef_specials"})
	f.push(payload, nil)

	var logs bytes.Buffer
	m := New(f, WithLogger(zerolog.New(&logs)))
	m.Activate(context.Background())
	s := wait(t, m)

	require.Equal(t, PhaseSuccess, s.Phase)
	vm := s.ViewModel()
	require.Len(t, vm.Sections, 3)
	assert.Equal(t, "chef_specials", vm.Sections[2].Label)

	found := false
	for _, line := range bytes.Split(logs.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["category"] == "chef_specials" {
			found = true
			assert.Equal(t, "warn", entry["level"])
		}
	}
	assert.True(t, found)
}

type countingRecorder struct {
	started atomic.Int32
	ignored atomic.Int32
}

func (r *countingRecorder) CycleStarted()                             { r.started.Add(1) }
func (r *countingRecorder) CycleFinished(Phase, time.Duration, error) {}
func (r *countingRecorder) TriggerIgnored(string, Phase)              { r.ignored.Add(1) }
func (r *countingRecorder) PhaseChanged(Phase)                        {}

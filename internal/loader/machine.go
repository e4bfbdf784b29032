// Package loader owns the fetch lifecycle: Idle, Loading, Success, Error,
// and the manual retry that moves Error back to Loading.
package loader

import (
	"context"
	"sync"
	"time"

	"menuboard/internal/client"
	"menuboard/internal/menu"
	"menuboard/internal/models"

	"github.com/rs/zerolog"
)

// FailureMessage is what users see for every failed cycle.
const FailureMessage = "Failed to load restaurant data. Please try again later."

// Phase is the machine's current step.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// Fetcher runs one load of both resources.
type Fetcher interface {
	Load(ctx context.Context) (*client.Payload, error)
}

// Recorder observes machine activity. Implemented by the metrics collector.
type Recorder interface {
	CycleStarted()
	CycleFinished(outcome Phase, elapsed time.Duration, err error)
	TriggerIgnored(trigger string, phase Phase)
	PhaseChanged(phase Phase)
}

// State is a snapshot of the machine. Items and Info are set only in
// PhaseSuccess, Message only in PhaseError.
type State struct {
	Phase     Phase
	Cycle     int
	Items     []models.MenuItem
	Info      models.RestaurantInfo
	Message   string
	StartedAt time.Time
	SettledAt time.Time
}

// ViewModel derives the render-ready view for this state.
func (s State) ViewModel() menu.ViewModel {
	switch s.Phase {
	case PhaseSuccess:
		return menu.Build(s.Items, s.Info)
	case PhaseError:
		return menu.Failed(s.Message)
	default:
		return menu.Loading()
	}
}

// Machine is the single holder of fetch state. All transitions happen under mu.
type Machine struct {
	fetcher  Fetcher
	log      zerolog.Logger
	recorder Recorder
	now      func() time.Time

	mu      sync.Mutex
	state   State
	settled chan struct{} // closed when the in-flight cycle resolves
	subs    map[int]chan State
	nextSub int
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger; raw fetch errors are only ever written here.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Machine) { m.recorder = r }
}

// New creates a machine in PhaseIdle.
func New(fetcher Fetcher, opts ...Option) *Machine {
	m := &Machine{
		fetcher:  fetcher,
		log:      zerolog.Nop(),
		recorder: nopRecorder{},
		now:      time.Now,
		state:    State{Phase: PhaseIdle},
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate starts the first cycle. It only has an effect in PhaseIdle.
func (m *Machine) Activate(ctx context.Context) bool {
	return m.begin(ctx, "activate", PhaseIdle)
}

// Retry starts a fresh cycle after a failure. It only has an effect in
// PhaseError; a retry while a cycle is in flight is dropped.
func (m *Machine) Retry(ctx context.Context) bool {
	return m.begin(ctx, "retry", PhaseError)
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ViewModel returns the view for the current snapshot.
func (m *Machine) ViewModel() menu.ViewModel {
	return m.State().ViewModel()
}

// Wait blocks until no cycle is in flight and returns the settled state.
func (m *Machine) Wait(ctx context.Context) (State, error) {
	m.mu.Lock()
	done := m.settled
	m.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return m.State(), ctx.Err()
		}
	}
	return m.State(), nil
}

// Subscribe returns a channel that receives the current state immediately and
// then every transition. Slow readers only see the latest state. Call the
// returned func to unsubscribe.
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.state
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

func (m *Machine) begin(ctx context.Context, trigger string, from Phase) bool {
	m.mu.Lock()
	if m.state.Phase != from {
		phase := m.state.Phase
		m.mu.Unlock()
		m.log.Debug().Str("trigger", trigger).Str("phase", string(phase)).Msg("trigger ignored")
		m.recorder.TriggerIgnored(trigger, phase)
		return false
	}

	m.state = State{
		Phase:     PhaseLoading,
		Cycle:     m.state.Cycle + 1,
		StartedAt: m.now(),
	}
	m.settled = make(chan struct{})
	cycle := m.state.Cycle
	m.publishLocked()
	m.mu.Unlock()

	m.log.Info().Int("cycle", cycle).Str("trigger", trigger).Msg("fetch cycle started")
	m.recorder.CycleStarted()
	m.recorder.PhaseChanged(PhaseLoading)

	// In-flight fetches are never aborted, even if the trigger's context ends.
	go m.run(context.WithoutCancel(ctx), cycle)
	return true
}

func (m *Machine) run(ctx context.Context, cycle int) {
	payload, err := m.fetcher.Load(ctx)

	m.mu.Lock()
	started := m.state.StartedAt
	m.mu.Unlock()

	next := State{Cycle: cycle, StartedAt: started, SettledAt: m.now()}
	elapsed := next.SettledAt.Sub(started)
	if err != nil {
		next.Phase = PhaseError
		next.Message = FailureMessage
		m.log.Error().
			Err(err).
			Int("cycle", cycle).
			Str("kind", client.Kind(err)).
			Str("endpoint", client.Endpoint(err)).
			Dur("elapsed", elapsed).
			Msg("fetch cycle failed")
	} else {
		next.Phase = PhaseSuccess
		next.Items = payload.Items
		next.Info = payload.Info
		m.warnUnknownCategories(cycle, next.Items)
		m.log.Info().
			Int("cycle", cycle).
			Int("items", len(next.Items)).
			Dur("elapsed", elapsed).
			Msg("fetch cycle succeeded")
	}
	m.recorder.CycleFinished(next.Phase, elapsed, err)
	m.recorder.PhaseChanged(next.Phase)

	m.mu.Lock()
	m.state = next
	close(m.settled)
	m.settled = nil
	m.publishLocked()
	m.mu.Unlock()
}

// publishLocked delivers the current state to every subscriber, replacing
// any unread value. Callers hold mu.
func (m *Machine) publishLocked() {
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m.state
	}
}

func (m *Machine) warnUnknownCategories(cycle int, items []models.MenuItem) {
	seen := make(map[models.Category]bool)
	for _, item := range items {
		if item.Category.Known() || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		m.log.Warn().
			Int("cycle", cycle).
			Str("category", string(item.Category)).
			Str("item_id", item.ID).
			Msg("menu item has unknown category, showing raw code")
	}
}

type nopRecorder struct{}

func (nopRecorder) CycleStarted()                             {}
func (nopRecorder) CycleFinished(Phase, time.Duration, error) {}
func (nopRecorder) TriggerIgnored(string, Phase)              {}
func (nopRecorder) PhaseChanged(Phase)                        {}

package orchestrator

import (
	"fmt"
	"sync"
	"time"

	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
)

// surfaceState is the per-surface scheduling state: active engine name,
// pending command queue, and single-flight dispatch flag (spec §4.4,
// §9 "per-surface maps... keyed by surface id").
type surfaceState struct {
	mu           sync.Mutex
	activeEngine string
	queue        *commandQueue
	dispatching  bool
}

// Orchestrator is a registry of engines plus, per surface id, the active
// engine, a priority queue of pending layout commands, a single-flight
// dispatcher, and an event bus (spec §4.4).
type Orchestrator struct {
	registry *layoutengine.Registry
	bus      *EventBus

	mu       sync.Mutex
	surfaces map[string]*surfaceState
}

// New returns an orchestrator backed by the given engine registry and
// event bus.
func New(registry *layoutengine.Registry, bus *EventBus) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		bus:      bus,
		surfaces: map[string]*surfaceState{},
	}
}

func (o *Orchestrator) surface(id string) *surfaceState {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.surfaces[id]
	if !ok {
		s = &surfaceState{queue: newCommandQueue(), activeEngine: "containment-grid"}
		o.surfaces[id] = s
	}
	return s
}

// RegisterEngine adds or replaces an engine in the shared registry.
func (o *Orchestrator) RegisterEngine(e layoutengine.Engine) {
	o.registry.Register(e)
}

// UnregisterEngine removes an engine from the shared registry.
func (o *Orchestrator) UnregisterEngine(name string) {
	o.registry.Unregister(name)
}

// GetEngine looks up an engine by name (aliases resolved).
func (o *Orchestrator) GetEngine(name string) (layoutengine.Engine, bool) {
	return o.registry.Get(name)
}

// UnregisterCanvas tears down a surface's pending queue (spec §5
// "Cancellation": pending commands are dropped only when the surface is
// unregistered).
func (o *Orchestrator) UnregisterCanvas(surfaceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.surfaces, surfaceID)
}

// SetActiveEngine switches a surface's active engine, emitting
// EngineSwitched with the previous name.
func (o *Orchestrator) SetActiveEngine(surfaceID, name, source string) {
	s := o.surface(surfaceID)
	canonical, _ := layoutengine.NormalizeEngineName(name)

	s.mu.Lock()
	previous := s.activeEngine
	s.activeEngine = canonical
	s.mu.Unlock()

	o.bus.Emit(Event{
		Kind:      EventEngineSwitched,
		CanvasID:  surfaceID,
		Source:    source,
		Timestamp: time.Now(),
		Payload:   map[string]string{"previous": previous, "current": canonical},
	})
}

// ActiveEngine returns the surface's current active engine name.
func (o *Orchestrator) ActiveEngine(surfaceID string) string {
	s := o.surface(surfaceID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeEngine
}

// RunLayout synchronously invokes the named (or active, if empty) engine,
// measuring duration and attaching metrics to diagnostics.metrics
// (spec §4.4).
func (o *Orchestrator) RunLayout(surfaceID string, g *graph.LayoutGraph, engineName string, opts layoutengine.Options, priority Priority, enqueuedAt time.Time, queueDepth int) (*layoutengine.Result, error) {
	s := o.surface(surfaceID)
	if engineName == "" {
		s.mu.Lock()
		engineName = s.activeEngine
		s.mu.Unlock()
	}
	engine, ok := o.registry.Get(engineName)
	if !ok {
		return nil, fmt.Errorf("orchestrator: unknown engine %q", engineName)
	}

	o.bus.Emit(Event{
		Kind: EventLayoutRequested, CanvasID: surfaceID, Source: "orchestrator",
		Timestamp: time.Now(), Payload: map[string]any{"engine": engine.Name()},
	})

	start := time.Now()
	result, err := engine.Layout(g, opts)
	duration := time.Since(start)
	queueWait := start.Sub(enqueuedAt)

	if err != nil {
		return nil, err
	}

	if result.Diagnostics == nil {
		result.Diagnostics = map[string]any{}
	}
	result.Diagnostics["metrics"] = map[string]any{
		"durationMs":     duration.Seconds() * 1000,
		"queueWaitMs":    queueWait.Seconds() * 1000,
		"queueDepth":     queueDepth,
		"priorityWeight": int(priority),
	}

	o.bus.Emit(Event{
		Kind: EventLayoutApplied, CanvasID: surfaceID, Source: "orchestrator",
		Timestamp: time.Now(), Payload: map[string]any{"engine": engine.Name(), "version": result.Graph.LayoutVersion},
	})

	return result, nil
}

// scheduleResult is delivered on a ScheduleLayout promise channel.
type scheduleResult struct {
	Result *layoutengine.Result
	Err    error
}

// ScheduleLayout enqueues a command with the given priority and returns a
// channel that receives exactly one scheduleResult once dispatched
// (spec §4.4's "promise"). At most one layout is in flight per surface;
// on completion the dispatcher pops the next command by priority/FIFO in
// the same loop (the Go analogue of the spec's microtask dispatch, so
// chained layouts never nest calls). A command that panics delivers the
// panic as an error on its channel.
func (o *Orchestrator) ScheduleLayout(surfaceID string, g *graph.LayoutGraph, engineName string, opts layoutengine.Options, priority Priority) <-chan scheduleResult {
	s := o.surface(surfaceID)
	out := make(chan scheduleResult, 1)
	enqueuedAt := time.Now()

	s.mu.Lock()
	queueDepth := s.queue.Len() + 1
	s.queue.push(priority, func() {
		defer func() {
			if r := recover(); r != nil {
				out <- scheduleResult{Err: fmt.Errorf("orchestrator: layout panicked: %v", r)}
			}
		}()
		res, err := o.RunLayout(surfaceID, g, engineName, opts, priority, enqueuedAt, queueDepth)
		out <- scheduleResult{Result: res, Err: err}
	})
	idle := !s.dispatching
	s.mu.Unlock()

	if idle {
		go o.dispatch(s)
	}
	return out
}

// dispatch drains s's queue one command at a time, single-flight, in a
// loop on one goroutine, so a long chain of scheduled layouts never grows
// the call stack.
func (o *Orchestrator) dispatch(s *surfaceState) {
	s.mu.Lock()
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		cmd, ok := s.queue.pop()
		if !ok {
			s.dispatching = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		func() {
			defer func() {
				// A command that panics must not wedge the dispatcher.
				// Commands queued by ScheduleLayout recover on their own
				// and report the panic as an error on their channel; this
				// recover keeps the loop going for any other command.
				recover()
			}()
			cmd.run()
		}()
	}
}

// QueueDepth returns the number of pending (not yet dispatched) commands
// for a surface, used by instrumentation/tests (spec §8 invariant 8).
func (o *Orchestrator) QueueDepth(surfaceID string) int {
	s := o.surface(surfaceID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Subscribe returns a channel of bus events.
func (o *Orchestrator) Subscribe() <-chan Event {
	return o.bus.Subscribe()
}

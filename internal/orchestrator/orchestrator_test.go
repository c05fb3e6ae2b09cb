package orchestrator

import (
	"sync"
	"testing"
	"time"

	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
)

func newTestOrchestrator() *Orchestrator {
	return New(layoutengine.NewDefaultRegistry(), NewEventBus(16, nil))
}

func emptyGraph() *graph.LayoutGraph {
	g := graph.NewLayoutGraph()
	g.Nodes["R"] = &graph.LGNode{ID: "R", Type: graph.NodeTypeContainer}
	g.RootIDs = []string{"R"}
	return g
}

func TestScheduleLayoutResolves(t *testing.T) {
	o := newTestOrchestrator()
	ch := o.ScheduleLayout("s1", emptyGraph(), "containment-grid", layoutengine.Options{Reason: layoutengine.ReasonInitial}, PriorityNormal)
	select {
	case r := <-ch:
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
		if r.Result.Graph.LayoutVersion == 0 {
			t.Fatal("expected a layout version > 0")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for scheduled layout")
	}
}

func TestRunLayoutUnknownEngineReturnsError(t *testing.T) {
	o := newTestOrchestrator()
	o.UnregisterEngine("containment-grid")
	_, err := o.RunLayout("s1", emptyGraph(), "containment-grid", layoutengine.Options{}, PriorityNormal, time.Now(), 0)
	if err == nil {
		t.Fatal("expected error for unregistered engine")
	}
}

// TestPriorityDispatchOrder exercises scenario S5 from spec §8: enqueue
// [normal A, low B, critical C, high D] while the surface is busy running
// a blocking first command, and expect dispatch order C, D, A, B after it
// completes.
func TestPriorityDispatchOrder(t *testing.T) {
	o := newTestOrchestrator()

	release := make(chan struct{})
	var mu sync.Mutex
	var order []string
	record := func(name string) {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()
	}

	// Directly manipulate the surface queue to control ordering without
	// racing the dispatcher: push a blocking "in flight" command first.
	s := o.surface("s1")
	s.mu.Lock()
	s.queue.push(PriorityNormal, func() {
		record("blocking")
		<-release
	})
	s.dispatching = false
	s.mu.Unlock()
	go o.dispatch(s)

	time.Sleep(20 * time.Millisecond) // let the blocking command start

	s.mu.Lock()
	s.queue.push(PriorityNormal, func() { record("A") })
	s.queue.push(PriorityLow, func() { record("B") })
	s.queue.push(PriorityCritical, func() { record("C") })
	s.queue.push(PriorityHigh, func() { record("D") })
	s.mu.Unlock()

	close(release)

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		done := len(order) == 5
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out, order so far: %v", order)
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"blocking", "C", "D", "A", "B"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("expected dispatch order %v, got %v", want, order)
		}
	}
}

func TestSetActiveEngineEmitsEngineSwitched(t *testing.T) {
	o := newTestOrchestrator()
	events := o.Subscribe()
	o.SetActiveEngine("s1", "orthogonal", "user-command")

	select {
	case e := <-events:
		if e.Kind != EventEngineSwitched {
			t.Fatalf("expected EngineSwitched, got %v", e.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for EngineSwitched event")
	}
}

func TestParsePriorityDefaultsToNormal(t *testing.T) {
	if ParsePriority("bogus") != PriorityNormal {
		t.Fatal("expected unknown priority name to default to normal")
	}
	if ParsePriority("critical") != PriorityCritical {
		t.Fatal("expected critical to parse")
	}
}

package workerbridge

import (
	"context"
	"testing"
	"time"

	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
	"github.com/phanxgames/canvaslayout/internal/orchestrator"
)

func newOrch() *orchestrator.Orchestrator {
	return orchestrator.New(layoutengine.NewDefaultRegistry(), orchestrator.NewEventBus(16, nil))
}

func sample() *graph.LayoutGraph {
	g := graph.NewLayoutGraph()
	g.Nodes["R"] = &graph.LGNode{ID: "R", Type: graph.NodeTypeContainer}
	g.RootIDs = []string{"R"}
	return g
}

func TestBridgeInProcessWhenDisabled(t *testing.T) {
	b := New(newOrch(), nil, false, 0, nil)
	res, err := b.RunLayout(context.Background(), "s1", sample(), "containment-grid", layoutengine.Options{}, orchestrator.PriorityNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Graph.LayoutVersion == 0 {
		t.Fatal("expected layout to run")
	}
}

func TestBridgeOffloadsToWorker(t *testing.T) {
	b := New(newOrch(), newOrch(), true, time.Second, nil)
	defer b.Close()
	res, err := b.RunLayout(context.Background(), "s1", sample(), "tree", layoutengine.Options{Reason: layoutengine.ReasonInitial}, orchestrator.PriorityNormal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Graph.Nodes["R"].Metadata[graph.MetaDisplayMode] != "tree" {
		t.Fatalf("expected worker to run the tree engine")
	}
}

// slowEngine blocks in Layout until release is closed, used to keep the
// single worker goroutine busy so a concurrent request must time out and
// fall back to in-process execution.
type slowEngine struct {
	release chan struct{}
}

func (e *slowEngine) Name() string                     { return "slow" }
func (e *slowEngine) Capabilities() layoutengine.Capabilities { return layoutengine.Capabilities{} }
func (e *slowEngine) Layout(g *graph.LayoutGraph, opts layoutengine.Options) (*layoutengine.Result, error) {
	<-e.release
	return &layoutengine.Result{Graph: g.Clone()}, nil
}

func TestBridgeFallsBackWhenWorkerBusy(t *testing.T) {
	worker := newOrch()
	slow := &slowEngine{release: make(chan struct{})}
	worker.RegisterEngine(slow)

	b := New(newOrch(), worker, true, 30*time.Millisecond, nil)
	defer b.Close()

	go func() {
		_, _ = b.RunLayout(context.Background(), "s1", sample(), "slow", layoutengine.Options{}, orchestrator.PriorityNormal)
	}()
	time.Sleep(10 * time.Millisecond) // let the slow request occupy the worker loop

	res, err := b.RunLayout(context.Background(), "s2", sample(), "containment-grid", layoutengine.Options{}, orchestrator.PriorityNormal)
	close(slow.release)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res == nil || res.Graph.Nodes["R"].Metadata[graph.MetaDisplayMode] != "containment-grid" {
		t.Fatalf("expected in-process fallback to run containment-grid, got %+v", res)
	}
}

func TestBridgeEnabledReportsFalseWithoutWorker(t *testing.T) {
	b := New(newOrch(), nil, true, 0, nil)
	if b.Enabled() {
		t.Fatal("expected Enabled() false when no worker orchestrator supplied")
	}
}

package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/phanxgames/canvaslayout/internal/canvasengine"
	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
	"github.com/phanxgames/canvaslayout/internal/normalize"
	"github.com/phanxgames/canvaslayout/internal/orchestrator"
	"github.com/phanxgames/canvaslayout/internal/viewstate"
	"github.com/phanxgames/canvaslayout/internal/workerbridge"
)

func newTestRuntime() *Runtime {
	local := orchestrator.New(layoutengine.NewDefaultRegistry(), orchestrator.NewEventBus(16, nil))
	bridge := workerbridge.New(local, nil, false, 0, nil)
	return New(bridge, nil)
}

func sampleRawData() normalize.RawData {
	return normalize.RawData{
		Entities: []normalize.Entity{
			{ID: "root", Name: "root", Properties: map[string]any{"type": "container"}},
			{ID: "a", Name: "a", Properties: map[string]any{"type": "node"}},
			{ID: "b", Name: "b", Properties: map[string]any{"type": "node"}},
		},
		Relationships: []normalize.Relationship{
			{ID: "r1", Type: "CONTAINS", FromGUID: "root", ToGUID: "a"},
			{ID: "r2", Type: "CONTAINS", FromGUID: "root", ToGUID: "b"},
			{ID: "e1", Type: "CALLS", FromGUID: "a", ToGUID: "b"},
		},
	}
}

func TestSetRawDataBuildsHierarchy(t *testing.T) {
	rt := newTestRuntime()
	_, err := rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data := rt.Snapshot("s1")
	if len(data.Nodes) != 1 || data.Nodes[0].GUID != "root" {
		t.Fatalf("expected single root 'root', got %+v", data.Nodes)
	}
	if len(data.Nodes[0].Children) != 2 {
		t.Fatalf("expected 2 children under root, got %d", len(data.Nodes[0].Children))
	}
}

func TestSetRawDataWithRunLayoutProducesResult(t *testing.T) {
	rt := newTestRuntime()
	rt.SetActiveEngine("s1", "containment-grid")
	result, err := rt.SetRawData(context.Background(), "s1", sampleRawData(), true, viewstate.SourceExternal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Graph.LayoutVersion == 0 {
		t.Fatal("expected a layout result with a non-zero version")
	}
}

func TestRunLayoutPriorityInitialIsCritical(t *testing.T) {
	if got := priorityFor(layoutengine.ReasonInitial); got != orchestrator.PriorityCritical {
		t.Fatalf("expected critical priority for initial reason, got %v", got)
	}
	if got := priorityFor(layoutengine.ReasonEngineSwitch); got != orchestrator.PriorityHigh {
		t.Fatalf("expected high priority for engine-switch reason, got %v", got)
	}
	if got := priorityFor(layoutengine.ReasonDataUpdate); got != orchestrator.PriorityNormal {
		t.Fatalf("expected normal priority for data-update reason, got %v", got)
	}
}

func TestSetActiveEngineNormalizesAlias(t *testing.T) {
	rt := newTestRuntime()
	rt.SetActiveEngine("s1", "hierarchical")
	s := rt.surfaceFor("s1")
	if s.activeEngine != "containment-grid" {
		t.Fatalf("expected alias 'hierarchical' normalized to 'containment-grid', got %q", s.activeEngine)
	}
}

func TestSetViewConfigContainmentModeChangeRebuildsFromRaw(t *testing.T) {
	rt := newTestRuntime()
	rt.SetActiveEngine("s1", "containment-grid")
	if _, err := rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := rt.Snapshot("s1")
	node := graph.FindNode(before.Nodes, "a")
	node.Style.Fill = "#ff0000"
	rt.surfaceFor("s1").viewstate.Publish(before, viewstate.MutationReplace, viewstate.SourceExternal, "", nil)

	if err := rt.SetViewConfig("s1", ViewConfig{ContainmentMode: "flat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := rt.Snapshot("s1")
	rebuilt := graph.FindNode(after.Nodes, "a")
	if rebuilt == nil {
		t.Fatal("expected node 'a' to survive the rebuild")
	}
	if rebuilt.Style.Fill != "#ff0000" {
		t.Fatalf("expected style override preserved across containment mode change, got %q", rebuilt.Style.Fill)
	}
}

func TestSelectMarksHitNodeAndClearsOthers(t *testing.T) {
	rt := newTestRuntime()
	rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal)
	data := rt.Snapshot("s1")
	graph.RecomputeWorldPositions(data.Nodes)
	b := graph.FindNode(data.Nodes, "b")

	// Without a layout pass a and b share the same origin and size; b is
	// later in pre-order, so it is the topmost node at that point.
	hit := rt.Select("s1", b.X+1, b.Y+1)
	if hit == nil || hit.GUID != "b" {
		t.Fatalf("expected hit on node 'b', got %+v", hit)
	}
	snap := rt.Snapshot("s1")
	if !graph.FindNode(snap.Nodes, "b").State.Selected {
		t.Fatal("expected node 'b' marked selected")
	}
	if graph.FindNode(snap.Nodes, "a").State.Selected {
		t.Fatal("expected node 'a' to remain unselected")
	}
}

func TestDoubleClickTogglesCollapsedAndRewiresEdges(t *testing.T) {
	rt := newTestRuntime()
	rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal)
	data := rt.Snapshot("s1")
	graph.RecomputeWorldPositions(data.Nodes)
	root := graph.FindNode(data.Nodes, "root")

	// Bottom-right corner of root: outside the 160x80 children at the origin.
	node, ok := rt.DoubleClick("s1", root.X+root.Width-1, root.Y+root.Height-1, time.Now())
	if !ok || node.GUID != "root" {
		t.Fatal("expected hit on root container")
	}
	if !node.State.Collapsed {
		t.Fatal("expected root collapsed after double-click")
	}

	snap := rt.Snapshot("s1")
	for _, e := range snap.Edges {
		if e.From == "root" || e.To == "root" {
			continue
		}
		if graph.FindNode(snap.Nodes, e.From) == nil || graph.FindNode(snap.Nodes, e.To) == nil {
			t.Fatalf("rewired edge endpoint no longer present: %+v", e)
		}
	}
}

func TestApplyLensFullReturnsEverythingByDefault(t *testing.T) {
	rt := newTestRuntime()
	rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal)
	roots, _ := rt.ApplyLens("s1", canvasengine.LensFull)
	if len(roots) != 1 {
		t.Fatalf("expected single root for full lens, got %d", len(roots))
	}
}

// TestScenarioS4EngineSwitchPreservesCamera exercises spec §8 scenario
// S4: an engine-switch layout restores the surface's prior camera even
// though the newly active engine (orthogonal) computes its own framing
// camera.
func TestScenarioS4EngineSwitchPreservesCamera(t *testing.T) {
	rt := newTestRuntime()
	rt.SetActiveEngine("s1", "containment-grid")
	rt.SetRawData(context.Background(), "s1", sampleRawData(), false, viewstate.SourceExternal)

	s := rt.surfaceFor("s1")
	s.viewstate.Publish(&graph.CanvasData{
		Nodes:         rt.Snapshot("s1").Nodes,
		OriginalEdges: rt.Snapshot("s1").OriginalEdges,
		Camera:        graph.Camera{X: 100, Y: 200, Zoom: 1.25},
	}, viewstate.MutationCamera, viewstate.SourceExternal, "", nil)

	rt.SetActiveEngine("s1", "orthogonal")
	if _, err := rt.RunLayout(context.Background(), "s1", layoutengine.Options{Reason: layoutengine.ReasonEngineSwitch}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cam := rt.Snapshot("s1").Camera
	if cam.X != 100 || cam.Y != 200 || cam.Zoom != 1.25 {
		t.Fatalf("expected camera preserved at (100,200,1.25), got (%v,%v,%v)", cam.X, cam.Y, cam.Zoom)
	}
}

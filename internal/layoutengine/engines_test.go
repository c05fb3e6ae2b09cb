package layoutengine

import (
	"testing"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

func sampleGraph() *graph.LayoutGraph {
	g := graph.NewLayoutGraph()
	g.Nodes["R"] = &graph.LGNode{ID: "R", Type: graph.NodeTypeContainer, Geometry: graph.Rect{Width: 200, Height: 120}, Children: []string{"A", "B"}}
	g.Nodes["A"] = &graph.LGNode{ID: "A", Type: graph.NodeTypeNode, Geometry: graph.Rect{Width: 160, Height: 80}}
	g.Nodes["B"] = &graph.LGNode{ID: "B", Type: graph.NodeTypeNode, Geometry: graph.Rect{Width: 160, Height: 80}}
	g.RootIDs = []string{"R"}
	return g
}

func TestContainmentGridChildrenFitInsideParent(t *testing.T) {
	e := NewContainmentGrid()
	res, err := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parent := res.Graph.Nodes["R"]
	for _, cid := range parent.Children {
		c := res.Graph.Nodes[cid]
		if c.Geometry.X+c.Geometry.Width > parent.Geometry.Width-gridPadding+1e-6 {
			t.Errorf("child %s right edge exceeds parent interior: %v vs %v", cid, c.Geometry.X+c.Geometry.Width, parent.Geometry.Width-gridPadding)
		}
		if c.Geometry.Y < gridHeaderOffset {
			t.Errorf("child %s starts above header offset", cid)
		}
	}
}

func TestContainmentGridSetsDisplayMode(t *testing.T) {
	e := NewContainmentGrid()
	res, _ := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	for id, n := range res.Graph.Nodes {
		if n.Metadata[graph.MetaDisplayMode] != "containment-grid" {
			t.Errorf("node %s missing displayMode", id)
		}
	}
}

func TestContainmentGridDeterministic(t *testing.T) {
	e := NewContainmentGrid()
	r1, _ := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	r2, _ := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	for id, n1 := range r1.Graph.Nodes {
		n2 := r2.Graph.Nodes[id]
		if n1.Geometry != n2.Geometry {
			t.Fatalf("non-deterministic output for %s: %v vs %v", id, n1.Geometry, n2.Geometry)
		}
	}
}

func TestOrthogonalEmitsCameraOnInitial(t *testing.T) {
	e := NewOrthogonal()
	res, err := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Camera == nil {
		t.Fatal("expected camera on initial reason")
	}
	if res.Camera.Zoom != orthoFrameZoom {
		t.Fatalf("expected zoom %v, got %v", orthoFrameZoom, res.Camera.Zoom)
	}
}

func TestOrthogonalNoCameraOnDataUpdate(t *testing.T) {
	e := NewOrthogonal()
	res, _ := e.Layout(sampleGraph(), Options{Reason: ReasonDataUpdate})
	if res.Camera != nil {
		t.Fatal("expected no camera on data-update reason")
	}
}

func TestOrthogonalParentRecenteredToChildMidpoint(t *testing.T) {
	e := NewOrthogonal()
	res, _ := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	root := res.Graph.Nodes["R"]
	a := res.Graph.Nodes["A"]
	b := res.Graph.Nodes["B"]
	want := (a.Geometry.Y + b.Geometry.Y) / 2
	if root.Geometry.Y != want {
		t.Fatalf("expected root y=%v, got %v", want, root.Geometry.Y)
	}
}

func TestTreeAllNonRootStartCollapsed(t *testing.T) {
	e := NewTree()
	res, err := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Graph.Nodes["R"].State.Collapsed {
		t.Error("root should not start collapsed")
	}
	if !res.Graph.Nodes["A"].State.Collapsed || !res.Graph.Nodes["B"].State.Collapsed {
		t.Error("non-root nodes should start collapsed")
	}
	if res.Camera == nil || res.Camera.Zoom != 0.75 {
		t.Fatalf("expected camera zoom 0.75, got %+v", res.Camera)
	}
}

func TestForceDirectedPlacesOnCircle(t *testing.T) {
	e := NewForceDirected()
	res, err := e.Layout(sampleGraph(), Options{Reason: ReasonInitial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := res.Graph.Nodes["R"]
	dist := root.Geometry.X*root.Geometry.X + root.Geometry.Y*root.Geometry.Y
	want := forceRadius * forceRadius
	if diff := dist - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected root at radius %v from origin, got distance^2=%v", forceRadius, dist)
	}
	if res.Camera == nil || res.Camera.X != -400 || res.Camera.Y != -300 {
		t.Fatalf("expected camera (-400,-300), got %+v", res.Camera)
	}
}

func TestContainmentRuntimeFlatModeKeepsContainmentEdge(t *testing.T) {
	g := sampleGraph()
	g.Edges["contains-1"] = &graph.LGEdge{ID: "contains-1", From: "R", To: "A", Metadata: map[string]any{"relationType": "CONTAINS"}}
	g.Edges["calls-1"] = &graph.LGEdge{ID: "calls-1", From: "R", To: "A", Metadata: map[string]any{"relationType": "CALLS"}}

	e := NewContainmentRuntime()
	res, err := e.Layout(g, Options{Reason: ReasonInitial, EngineOptions: map[string]any{"containmentMode": "flat"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Graph.Edges["contains-1"]; !ok {
		t.Fatal("expected CONTAINS edge to remain in flat mode")
	}
	if _, ok := res.Graph.Edges["calls-1"]; !ok {
		t.Fatal("expected CALLS edge to remain")
	}
}

func TestContainmentRuntimeContainersModeDropsContainmentEdge(t *testing.T) {
	g := sampleGraph()
	g.Edges["contains-1"] = &graph.LGEdge{ID: "contains-1", From: "R", To: "A", Metadata: map[string]any{"relationType": "CONTAINS"}}
	g.Edges["calls-1"] = &graph.LGEdge{ID: "calls-1", From: "R", To: "A", Metadata: map[string]any{"relationType": "CALLS"}}

	e := NewContainmentRuntime()
	res, err := e.Layout(g, Options{Reason: ReasonInitial, EngineOptions: map[string]any{"containmentMode": "containers"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Graph.Edges["contains-1"]; ok {
		t.Fatal("expected CONTAINS edge to be dropped in containers mode")
	}
	if _, ok := res.Graph.Edges["calls-1"]; !ok {
		t.Fatal("expected CALLS edge to remain")
	}
}

func TestContainmentRuntimeOrthogonalRoutingFourPoints(t *testing.T) {
	g := sampleGraph()
	g.Edges["calls-1"] = &graph.LGEdge{ID: "calls-1", From: "A", To: "B", Metadata: map[string]any{"relationType": "CALLS"}}

	e := NewContainmentRuntime()
	res, err := e.Layout(g, Options{Reason: ReasonInitial})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wp, _ := res.Graph.Edges["calls-1"].Metadata["waypoints"].([]graph.Vec2)
	if len(wp) != 4 {
		t.Fatalf("expected 4-point orthogonal waypoints, got %d", len(wp))
	}
}

func TestContainmentRuntimeStraightRoutingTwoPoints(t *testing.T) {
	g := sampleGraph()
	g.Edges["calls-1"] = &graph.LGEdge{ID: "calls-1", From: "A", To: "B", Metadata: map[string]any{"relationType": "CALLS"}}

	e := NewContainmentRuntime()
	res, err := e.Layout(g, Options{Reason: ReasonInitial, EngineOptions: map[string]any{"edgeRouting": "straight"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wp, _ := res.Graph.Edges["calls-1"].Metadata["waypoints"].([]graph.Vec2)
	if len(wp) != 2 {
		t.Fatalf("expected 2-point straight waypoints, got %d", len(wp))
	}
}

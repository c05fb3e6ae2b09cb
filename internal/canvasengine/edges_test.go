package canvasengine

import (
	"testing"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

func buildRewireTree() ([]*graph.Node, *graph.Node, *graph.Node, *graph.Node) {
	root := graph.NewNode("root", graph.NodeTypeContainer)
	a := graph.NewNode("a", graph.NodeTypeContainer)
	root.AddChild(a)
	a1 := graph.NewNode("a1", graph.NodeTypeNode)
	a.AddChild(a1)
	a2 := graph.NewNode("a2", graph.NodeTypeNode)
	a.AddChild(a2)
	b := graph.NewNode("b", graph.NodeTypeNode)
	root.AddChild(b)
	return []*graph.Node{root}, a, a1, b
}

func TestRewireEdgesPassesThroughWhenBothVisible(t *testing.T) {
	roots, _, a1, b := buildRewireTree()
	_ = a1
	original := []*graph.Edge{{GUID: "e1", From: "a1", To: "b", Width: 2}}
	out := RewireEdges(roots, original)
	if len(out) != 1 || out[0].From != "a1" || out[0].To != "b" {
		t.Fatalf("expected passthrough edge, got %+v", out)
	}
	_ = b
}

func TestRewireEdgesRewiresHiddenEndpointToAncestor(t *testing.T) {
	roots, a, _, b := buildRewireTree()
	a.State.Collapsed = true

	original := []*graph.Edge{{GUID: "e1", From: "a1", To: "b", Width: 2, Stroke: "#808080"}}
	out := RewireEdges(roots, original)
	if len(out) != 1 {
		t.Fatalf("expected one rewired edge, got %d", len(out))
	}
	e := out[0]
	if e.From != a.GUID || e.To != b.GUID {
		t.Fatalf("expected rewire from a1 to a (collapsed ancestor), got from=%s to=%s", e.From, e.To)
	}
	if e.GUID[:len(inheritedEdgeIDPrefix)] != inheritedEdgeIDPrefix {
		t.Fatalf("expected inherited edge id prefix, got %s", e.GUID)
	}
	if len(e.Dash) != 2 || e.Dash[0] != 4 {
		t.Fatalf("expected inherited dash pattern, got %v", e.Dash)
	}
	if e.Width != 3 {
		t.Fatalf("expected inherited width incremented from 2 to 3, got %v", e.Width)
	}
	if e.Stroke != "#595959" {
		t.Fatalf("expected darkened stroke, got %v", e.Stroke)
	}
}

func TestRewireEdgesDropsSelfLoops(t *testing.T) {
	roots, a, a1, _ := buildRewireTree()
	a.State.Collapsed = true
	a2 := graph.FindNode(roots, "a2")

	original := []*graph.Edge{{GUID: "e1", From: a1.GUID, To: a2.GUID, Width: 2}}
	out := RewireEdges(roots, original)
	if len(out) != 0 {
		t.Fatalf("expected self-loop edge dropped, got %+v", out)
	}
}

func TestRewireEdgesMergesAndCapsWidth(t *testing.T) {
	roots, a, _, b := buildRewireTree()
	a.State.Collapsed = true

	original := []*graph.Edge{
		{GUID: "e1", From: "a1", To: "b", Width: 4},
		{GUID: "e2", From: "a2", To: "b", Width: 4},
	}
	out := RewireEdges(roots, original)
	if len(out) != 1 {
		t.Fatalf("expected edges merged into one, got %d", len(out))
	}
	if out[0].Width != inheritedEdgeWidthCap {
		t.Fatalf("expected merged width capped at %v, got %v", inheritedEdgeWidthCap, out[0].Width)
	}
}

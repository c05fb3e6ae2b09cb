package persistence

import (
	"testing"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

func buildSampleCanvas() *graph.CanvasData {
	data := graph.NewCanvasData()
	root := graph.NewNode("root", graph.NodeTypeContainer)
	root.Width, root.Height = 400, 300
	child := graph.NewNode("child", graph.NodeTypeNode)
	child.X, child.Y = 20, 30
	root.AddChild(child)
	data.Nodes = []*graph.Node{root}
	data.Edges = []*graph.Edge{{GUID: "e1", From: "root", To: "child", Width: 1}}
	data.OriginalEdges = data.Edges
	data.Camera = graph.Camera{X: 5, Y: 10, Zoom: 1.5}
	graph.RecomputeWorldPositions(data.Nodes)
	return data
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	data := buildSampleCanvas()
	settings := AutoLayoutSettings{CollapseBehavior: "manual", ReflowBehavior: "dynamic"}

	raw, err := Marshal(data, settings)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	roundTripped, gotSettings, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if gotSettings != settings {
		t.Fatalf("expected settings round-trip, got %+v", gotSettings)
	}
	if roundTripped.Camera.Zoom != 1.5 {
		t.Fatalf("expected camera zoom to round-trip, got %v", roundTripped.Camera.Zoom)
	}
	if len(roundTripped.Nodes) != 1 || roundTripped.Nodes[0].GUID != "root" {
		t.Fatalf("expected a single root node 'root', got %+v", roundTripped.Nodes)
	}
	child := graph.FindNode(roundTripped.Nodes, "child")
	if child == nil || child.Parent == nil || child.Parent.GUID != "root" {
		t.Fatal("expected child to be reparented under root")
	}
	if len(roundTripped.Edges) != 1 || roundTripped.Edges[0].GUID != "e1" {
		t.Fatalf("expected edge to round-trip, got %+v", roundTripped.Edges)
	}
}

func TestUnmarshalOrphanNodeBecomesRoot(t *testing.T) {
	raw := []byte(`{
		"nodes": [
			{"guid": "orphan", "parentGuid": "missing-parent", "type": "node", "width": 10, "height": 10, "visible": true, "style": {}}
		],
		"edges": [],
		"originalEdges": [],
		"camera": {"x": 0, "y": 0, "zoom": 1},
		"autoLayout": {"collapseBehavior": "static", "reflowBehavior": "static"}
	}`)
	canvas, _, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(canvas.Nodes) != 1 || canvas.Nodes[0].GUID != "orphan" {
		t.Fatalf("expected orphan node promoted to root, got %+v", canvas.Nodes)
	}
}

func TestUnmarshalInvalidJSONReturnsError(t *testing.T) {
	_, _, err := Unmarshal([]byte("not json"))
	if err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

// Package persistence defines the on-disk/wire JSON shape of a saved
// canvas (spec §6) and marshals/unmarshals it from graph.CanvasData.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// AutoLayoutSettings persists the per-canvas collapse/reflow behavior
// (spec §6).
type AutoLayoutSettings struct {
	CollapseBehavior string `json:"collapseBehavior"`
	ReflowBehavior   string `json:"reflowBehavior"`
}

// nodeDoc is the JSON wire shape for a single node, flattened (not
// nested) to keep the persisted payload diff-friendly: ParentGUID
// replaces the in-memory Parent pointer.
type nodeDoc struct {
	GUID       string            `json:"guid"`
	HID        string            `json:"hid,omitempty"`
	ParentGUID string            `json:"parentGuid,omitempty"`
	Type       graph.NodeType    `json:"type"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Collapsed  bool              `json:"collapsed"`
	Visible    bool              `json:"visible"`
	Style      styleDoc          `json:"style"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

type styleDoc struct {
	Fill         string   `json:"fill,omitempty"`
	Stroke       string   `json:"stroke,omitempty"`
	Icon         string   `json:"icon,omitempty"`
	Badges       []string `json:"badges,omitempty"`
	LabelVisible bool     `json:"labelVisible"`
}

type edgeDoc struct {
	GUID         string         `json:"guid"`
	From         string         `json:"from"`
	To           string         `json:"to"`
	Stroke       string         `json:"stroke,omitempty"`
	Width        float64        `json:"width,omitempty"`
	Dash         []float64      `json:"dash,omitempty"`
	Label        string         `json:"label,omitempty"`
	RelationType string         `json:"relationType,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type cameraDoc struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Document is the persisted canvas payload shape (spec §6).
type Document struct {
	Nodes         []nodeDoc          `json:"nodes"`
	Edges         []edgeDoc          `json:"edges"`
	OriginalEdges []edgeDoc          `json:"originalEdges"`
	Camera        cameraDoc          `json:"camera"`
	AutoLayout    AutoLayoutSettings `json:"autoLayout"`
}

// Marshal serializes data plus its auto-layout settings into the
// persisted JSON document shape.
func Marshal(data *graph.CanvasData, settings AutoLayoutSettings) ([]byte, error) {
	doc := Document{
		Camera:     cameraDoc{X: data.Camera.X, Y: data.Camera.Y, Zoom: data.Camera.Zoom},
		AutoLayout: settings,
	}
	graph.WalkNodes(data.Nodes, func(n *graph.Node) {
		parentGUID := ""
		if n.Parent != nil {
			parentGUID = n.Parent.GUID
		}
		doc.Nodes = append(doc.Nodes, nodeDoc{
			GUID: n.GUID, HID: n.HID, ParentGUID: parentGUID, Type: n.Type,
			X: n.X, Y: n.Y, Width: n.Width, Height: n.Height,
			Collapsed: n.State.Collapsed, Visible: n.State.Visible,
			Style: styleDoc{
				Fill: n.Style.Fill, Stroke: n.Style.Stroke, Icon: n.Style.Icon,
				Badges: n.Style.Badges, LabelVisible: n.Style.LabelVisible,
			},
			Metadata: n.Metadata,
		})
	})
	for _, e := range data.Edges {
		doc.Edges = append(doc.Edges, edgeToDoc(e))
	}
	for _, e := range data.OriginalEdges {
		doc.OriginalEdges = append(doc.OriginalEdges, edgeToDoc(e))
	}
	return json.MarshalIndent(doc, "", "  ")
}

func edgeToDoc(e *graph.Edge) edgeDoc {
	return edgeDoc{
		GUID: e.GUID, From: e.From, To: e.To, Stroke: e.Stroke, Width: e.Width,
		Dash: e.Dash, Label: e.Label, RelationType: e.RelationType, Metadata: e.Metadata,
	}
}

// Unmarshal parses a persisted document and rebuilds a graph.CanvasData
// plus its auto-layout settings. Nodes are reparented by ParentGUID;
// orphaned nodes (missing or unknown ParentGUID) become roots.
func Unmarshal(data []byte) (*graph.CanvasData, AutoLayoutSettings, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, AutoLayoutSettings{}, fmt.Errorf("canvaslayout: persistence: decode document: %w", err)
	}

	byGUID := make(map[string]*graph.Node, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		n := &graph.Node{
			GUID: nd.GUID, HID: nd.HID, Type: nd.Type,
			X: nd.X, Y: nd.Y, Width: nd.Width, Height: nd.Height,
			State: graph.State{Collapsed: nd.Collapsed, Visible: nd.Visible},
			Style: graph.Style{
				Fill: nd.Style.Fill, Stroke: nd.Style.Stroke, Icon: nd.Style.Icon,
				Badges: nd.Style.Badges, LabelVisible: nd.Style.LabelVisible,
			},
			Metadata: nd.Metadata,
		}
		if n.Metadata == nil {
			n.Metadata = map[string]any{}
		}
		byGUID[nd.GUID] = n
	}

	var roots []*graph.Node
	for _, nd := range doc.Nodes {
		n := byGUID[nd.GUID]
		if parent, ok := byGUID[nd.ParentGUID]; ok && nd.ParentGUID != "" {
			parent.Children = append(parent.Children, n)
			n.Parent = parent
		} else {
			roots = append(roots, n)
		}
	}

	canvas := &graph.CanvasData{
		Nodes:  roots,
		Camera: graph.Camera{X: doc.Camera.X, Y: doc.Camera.Y, Zoom: doc.Camera.Zoom},
	}
	for _, ed := range doc.Edges {
		canvas.Edges = append(canvas.Edges, docToEdge(ed))
	}
	for _, ed := range doc.OriginalEdges {
		canvas.OriginalEdges = append(canvas.OriginalEdges, docToEdge(ed))
	}
	graph.RecomputeWorldPositions(canvas.Nodes)
	return canvas, doc.AutoLayout, nil
}

func docToEdge(ed edgeDoc) *graph.Edge {
	return &graph.Edge{
		GUID: ed.GUID, From: ed.From, To: ed.To, Stroke: ed.Stroke, Width: ed.Width,
		Dash: ed.Dash, Label: ed.Label, RelationType: ed.RelationType, Metadata: ed.Metadata,
	}
}

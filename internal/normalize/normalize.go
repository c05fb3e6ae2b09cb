// Package normalize transforms raw entity/relationship input from the
// upstream query layer into a typed Layout Graph (spec §4.1).
package normalize

import (
	"fmt"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Entity is one node-shaped record from the query layer.
type Entity struct {
	ID         string
	Name       string
	Properties map[string]any
	Labels     []string
}

// Relationship is one edge- or containment-shaped record from the query
// layer. FromGUID/ToGUID hold the endpoint GUIDs; there are no separate
// "source"/"target" alias fields, and none are read.
type Relationship struct {
	ID         string
	Type       string
	FromGUID   string
	ToGUID     string
	Properties map[string]any
}

// RawData is the normalizer's input contract (spec §6).
type RawData struct {
	Entities      []Entity
	Relationships []Relationship
}

// containmentTypes defines hierarchy and are never emitted as edges.
var containmentTypes = map[string]bool{
	"CONTAINS":      true,
	"HAS_CHILD":     true,
	"HAS_COMPONENT": true,
	"PARENT_OF":     true,
}

// IsContainment reports whether relType denotes hierarchy. Matching is
// case-sensitive per spec §6.
func IsContainment(relType string) bool {
	return containmentTypes[relType]
}

// Diagnostic describes a non-fatal anomaly encountered during
// normalization (an entity skipped, an edge dropped, etc).
type Diagnostic struct {
	Message string
	EntityID string
	RelationshipID string
}

// Result bundles the produced graph with any diagnostics collected along
// the way. Normalize never throws for missing edge endpoints; the edge is
// simply dropped and a diagnostic recorded.
type Result struct {
	Graph       *graph.LayoutGraph
	Diagnostics []Diagnostic
}

// Normalize converts raw input into a Layout Graph.
//
// Contract (spec §4.1):
//   - entities lacking a GUID are skipped
//   - an empty entity list fails loudly
//   - containment relationships define children, not edges
//   - non-containment relationships with both endpoints present become
//     edges, synthesizing an id of "edge-<fromGUID>-<toGUID>" when absent
//   - default node size derives from type, overridable by entity properties
//   - root set = GUIDs never appearing as a containment target
func Normalize(input RawData) (*Result, error) {
	if len(input.Entities) == 0 {
		return emptyResult("raw data has no entities"), fmt.Errorf("normalize: entity list is empty")
	}

	g := graph.NewLayoutGraph()
	res := &Result{Graph: g}

	kept := map[string]Entity{}
	for _, e := range input.Entities {
		if e.ID == "" {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Message: "entity missing GUID, skipped", EntityID: e.ID,
			})
			continue
		}
		kept[e.ID] = e
	}

	for id, e := range kept {
		typ := nodeTypeOf(e)
		w, h := sizeOf(e, typ)
		g.Nodes[id] = &graph.LGNode{
			ID:       id,
			Label:    displayName(e),
			Type:     typ,
			Geometry: graph.Rect{Width: w, Height: h},
			State:    graph.State{Visible: true},
			Metadata: map[string]any{},
		}
	}

	isContainmentTarget := map[string]bool{}
	for _, rel := range input.Relationships {
		from := firstNonEmpty(rel.FromGUID)
		to := firstNonEmpty(rel.ToGUID)

		if IsContainment(rel.Type) {
			parent, pOK := g.Nodes[from]
			_, cOK := g.Nodes[to]
			if !pOK || !cOK {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Message:        "containment relationship endpoint missing, dropped",
					RelationshipID: rel.ID,
				})
				continue
			}
			parent.Children = append(parent.Children, to)
			isContainmentTarget[to] = true
			continue
		}

		_, fOK := g.Nodes[from]
		_, tOK := g.Nodes[to]
		if !fOK || !tOK {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Message:        "edge endpoint missing, dropped",
				RelationshipID: rel.ID,
			})
			continue
		}

		edgeID := rel.ID
		if edgeID == "" {
			edgeID = fmt.Sprintf("edge-%s-%s", from, to)
		}
		g.Edges[edgeID] = &graph.LGEdge{
			ID:       edgeID,
			From:     from,
			To:       to,
			Metadata: map[string]any{"relationType": rel.Type},
		}
		g.Nodes[from].Edges = append(g.Nodes[from].Edges, edgeID)
	}

	// Walk entities in their original order rather than ranging g.Nodes
	// (map iteration order is randomized) so RootIDs, and therefore
	// sibling order for layout, is deterministic across runs.
	seenRoot := map[string]bool{}
	for _, e := range input.Entities {
		if _, ok := g.Nodes[e.ID]; ok && !isContainmentTarget[e.ID] && !seenRoot[e.ID] {
			g.RootIDs = append(g.RootIDs, e.ID)
			seenRoot[e.ID] = true
		}
	}

	return res, nil
}

func emptyResult(msg string) *Result {
	return &Result{
		Graph:       graph.NewLayoutGraph(),
		Diagnostics: []Diagnostic{{Message: msg}},
	}
}

func nodeTypeOf(e Entity) graph.NodeType {
	if t, ok := e.Properties["type"].(string); ok && t != "" {
		switch graph.NodeType(t) {
		case graph.NodeTypeContainer, graph.NodeTypeComponent, graph.NodeTypeNode, graph.NodeTypeRoot:
			return graph.NodeType(t)
		}
	}
	return graph.NodeTypeNode
}

func sizeOf(e Entity, typ graph.NodeType) (w, h float64) {
	w, h = typ.DefaultSize()
	if ow, ok := numberProp(e.Properties, "width"); ok {
		w = ow
	}
	if oh, ok := numberProp(e.Properties, "height"); ok {
		h = oh
	}
	return w, h
}

func numberProp(props map[string]any, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func displayName(e Entity) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

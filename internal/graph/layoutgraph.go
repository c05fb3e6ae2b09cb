package graph

// LayoutGraph is the flat wire format shared between the normalizer,
// layout engines, and the orchestrator. It decouples engines from the
// nested CanvasData render tree (spec §3).
type LayoutGraph struct {
	Nodes map[string]*LGNode
	Edges map[string]*LGEdge

	RootIDs     []string
	LayoutVersion uint64
	DisplayMode string
}

// LGNode is one flat-map entry for a node.
type LGNode struct {
	ID       string
	Label    string
	Type     NodeType
	Geometry Rect
	State    State
	Style    Style
	Metadata map[string]any
	Children []string
	Edges    []string
}

// LGEdge is one flat-map entry for an edge.
type LGEdge struct {
	ID       string
	From     string
	To       string
	Label    string
	Metadata map[string]any
}

// NewLayoutGraph returns an empty graph with initialized maps.
func NewLayoutGraph() *LayoutGraph {
	return &LayoutGraph{Nodes: map[string]*LGNode{}, Edges: map[string]*LGEdge{}}
}

// Clone deep-copies a layout graph.
func (g *LayoutGraph) Clone() *LayoutGraph {
	cp := NewLayoutGraph()
	cp.RootIDs = append([]string(nil), g.RootIDs...)
	cp.LayoutVersion = g.LayoutVersion
	cp.DisplayMode = g.DisplayMode
	for id, n := range g.Nodes {
		nc := *n
		nc.Children = append([]string(nil), n.Children...)
		nc.Edges = append([]string(nil), n.Edges...)
		if n.Metadata != nil {
			nc.Metadata = make(map[string]any, len(n.Metadata))
			for k, v := range n.Metadata {
				nc.Metadata[k] = v
			}
		}
		cp.Nodes[id] = &nc
	}
	for id, e := range g.Edges {
		ec := *e
		if e.Metadata != nil {
			ec.Metadata = make(map[string]any, len(e.Metadata))
			for k, v := range e.Metadata {
				ec.Metadata[k] = v
			}
		}
		cp.Edges[id] = &ec
	}
	return cp
}

// ToLayoutGraph flattens a nested root/edge set into wire form. Each node
// contributes one map entry with its children's GUIDs; edges flatten 1:1;
// RootIDs are the top-level GUIDs (spec §4.2).
func ToLayoutGraph(roots []*Node, edges []*Edge, version uint64, displayMode string) *LayoutGraph {
	g := NewLayoutGraph()
	g.LayoutVersion = version
	g.DisplayMode = displayMode

	WalkNodes(roots, func(n *Node) {
		childIDs := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			childIDs = append(childIDs, c.GUID)
		}
		g.Nodes[n.GUID] = &LGNode{
			ID:       n.GUID,
			Label:    n.HID,
			Type:     n.Type,
			Geometry: Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height},
			State:    n.State,
			Style:    n.Style,
			Metadata: copyMeta(n.Metadata),
			Children: childIDs,
		}
	})

	for _, e := range edges {
		g.Edges[e.GUID] = &LGEdge{
			ID:       e.GUID,
			From:     e.From,
			To:       e.To,
			Label:    e.Label,
			Metadata: copyMeta(e.Metadata),
		}
		if n, ok := g.Nodes[e.From]; ok {
			n.Edges = append(n.Edges, e.GUID)
		}
	}

	for _, r := range roots {
		g.RootIDs = append(g.RootIDs, r.GUID)
	}
	return g
}

// ToHierarchical rebuilds the nested tree from the flat map, preserving
// child order, reattaching style/state/metadata. RootIDs come from
// g.RootIDs when present, else from nodes that are nobody's child
// (spec §4.2).
func ToHierarchical(g *LayoutGraph) (roots []*Node, edges []*Edge) {
	built := make(map[string]*Node, len(g.Nodes))
	for id, ln := range g.Nodes {
		n := &Node{
			GUID:     id,
			HID:      ln.Label,
			Type:     ln.Type,
			X:        ln.Geometry.X,
			Y:        ln.Geometry.Y,
			Width:    ln.Geometry.Width,
			Height:   ln.Geometry.Height,
			State:    ln.State,
			Style:    ln.Style,
			Metadata: copyMeta(ln.Metadata),
		}
		built[id] = n
	}

	isChild := map[string]bool{}
	for id, ln := range g.Nodes {
		for _, childID := range ln.Children {
			child, ok := built[childID]
			if !ok {
				continue
			}
			parent := built[id]
			child.Parent = parent
			parent.Children = append(parent.Children, child)
			isChild[childID] = true
		}
	}

	var rootIDs []string
	if len(g.RootIDs) > 0 {
		rootIDs = g.RootIDs
	} else {
		for id := range g.Nodes {
			if !isChild[id] {
				rootIDs = append(rootIDs, id)
			}
		}
	}
	for _, id := range rootIDs {
		if n, ok := built[id]; ok {
			roots = append(roots, n)
		}
	}

	for _, le := range g.Edges {
		edges = append(edges, &Edge{
			GUID:     le.ID,
			From:     le.From,
			To:       le.To,
			Label:    le.Label,
			Metadata: copyMeta(le.Metadata),
		})
	}
	return roots, edges
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

package layoutengine

import (
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Containment modes (spec §4.3.5 / §6 view configuration).
const (
	ContainmentModeContainers = "containers"
	ContainmentModeFlat       = "flat"

	LayoutModeGrid  = "grid"
	LayoutModeForce = "force"

	EdgeRoutingOrthogonal = "orthogonal"
	EdgeRoutingStraight   = "straight"
)

const (
	runtimeHeaderOffset = 40.0
	runtimeRowGap       = 16.0
	runtimePadding      = 20.0
)

// ContainmentRuntime is the live, parametric engine configured by
// engineOptions: containmentMode, layoutMode, edgeRouting (spec §4.3.5).
type ContainmentRuntime struct{}

func NewContainmentRuntime() *ContainmentRuntime { return &ContainmentRuntime{} }

func (e *ContainmentRuntime) Name() string { return "containment-runtime" }

func (e *ContainmentRuntime) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: true, Deterministic: true, CanHandleRealtime: true}
}

func (e *ContainmentRuntime) Layout(g *graph.LayoutGraph, opts Options) (*Result, error) {
	out := g.Clone()
	out.LayoutVersion++

	containmentMode := EngineOptString(opts, "containmentMode", ContainmentModeContainers)
	layoutMode := EngineOptString(opts, "layoutMode", LayoutModeGrid)
	edgeRouting := EngineOptString(opts, "edgeRouting", EdgeRoutingOrthogonal)

	containmentEdgeIDs := map[string]bool{}
	for id, edge := range out.Edges {
		if rt, _ := edge.Metadata["relationType"].(string); isContainmentRelation(rt) {
			containmentEdgeIDs[id] = true
		}
	}

	switch containmentMode {
	case ContainmentModeContainers:
		for _, rootID := range out.RootIDs {
			layoutRuntimeSubtree(out, rootID, layoutMode)
		}
		computeWorldMetaTopDown(out)
		for id := range containmentEdgeIDs {
			delete(out.Edges, id)
		}
	case ContainmentModeFlat:
		for _, rootID := range out.RootIDs {
			layoutRuntimeSubtree(out, rootID, layoutMode)
		}
		computeWorldMetaTopDown(out)
		// Containment edges stay in the output and render as visible
		// lines in flat mode.
	}

	routeEdges(out, edgeRouting)

	setDisplayMode(out, e.Name())
	return &Result{Graph: out}, nil
}

func isContainmentRelation(relType string) bool {
	switch relType {
	case "CONTAINS", "HAS_CHILD", "HAS_COMPONENT", "PARENT_OF":
		return true
	}
	return false
}

// layoutRuntimeSubtree is an adaptive grid: a vertical stack with a
// per-container header offset, then resizes the parent to fit its
// children (post-order, spec §4.3.5 "containers" path).
func layoutRuntimeSubtree(g *graph.LayoutGraph, id string, layoutMode string) {
	node, ok := g.Nodes[id]
	if !ok {
		return
	}
	for _, c := range node.Children {
		layoutRuntimeSubtree(g, c, layoutMode)
	}
	if len(node.Children) == 0 {
		return
	}

	children := childrenOf(g, id)
	sort.SliceStable(children, func(i, j int) bool { return children[i].ID < children[j].ID })

	y := runtimeHeaderOffset
	maxWidth := 0.0
	for _, child := range children {
		child.Geometry.X = runtimePadding
		child.Geometry.Y = y
		y += child.Geometry.Height + runtimeRowGap
		if w := child.Geometry.Width + 2*runtimePadding; w > maxWidth {
			maxWidth = w
		}
	}
	node.Geometry.Width = maxWidth
	node.Geometry.Height = y - runtimeRowGap + runtimePadding

	// Force mode still uses the grid's computed footprint for container
	// sizing (true relaxation is a non-goal); children keep their
	// stacked positions either way.
	_ = layoutMode
}

// computeWorldMetaTopDown stamps metadata.worldPosition on every node,
// root-down, after containment-runtime geometry settles (spec §4.3.5).
func computeWorldMetaTopDown(g *graph.LayoutGraph) {
	var walk func(id string, parentWorld graph.Vec2)
	walk = func(id string, parentWorld graph.Vec2) {
		node, ok := g.Nodes[id]
		if !ok {
			return
		}
		world := graph.Vec2{X: parentWorld.X + node.Geometry.X, Y: parentWorld.Y + node.Geometry.Y}
		if node.Metadata == nil {
			node.Metadata = map[string]any{}
		}
		node.Metadata[graph.MetaWorldPosition] = world
		for _, c := range node.Children {
			walk(c, world)
		}
	}
	for _, r := range g.RootIDs {
		walk(r, graph.Vec2{})
	}
}

// routeEdges emits waypoints for every remaining edge: 4-point orthogonal
// (up/out/over/in) or 2-point straight, between node centres in world
// coordinates (spec §4.3.5).
func routeEdges(g *graph.LayoutGraph, edgeRouting string) {
	for _, edge := range g.Edges {
		from, fOK := g.Nodes[edge.From]
		to, tOK := g.Nodes[edge.To]
		if !fOK || !tOK {
			continue
		}
		fromCenter := centerOf(from)
		toCenter := centerOf(to)

		var waypoints []graph.Vec2
		if edgeRouting == EdgeRoutingStraight {
			waypoints = []graph.Vec2{fromCenter, toCenter}
		} else {
			midY := (fromCenter.Y + toCenter.Y) / 2
			waypoints = []graph.Vec2{
				fromCenter,
				{X: fromCenter.X, Y: midY},
				{X: toCenter.X, Y: midY},
				toCenter,
			}
		}
		if edge.Metadata == nil {
			edge.Metadata = map[string]any{}
		}
		edge.Metadata["waypoints"] = waypoints
	}
}

func centerOf(n *graph.LGNode) graph.Vec2 {
	world, _ := n.Metadata[graph.MetaWorldPosition].(graph.Vec2)
	return graph.Vec2{X: world.X + n.Geometry.Width/2, Y: world.Y + n.Geometry.Height/2}
}

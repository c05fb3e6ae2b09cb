// Package canvasengine is the canvas engine facade (spec §4.10): it owns
// the camera, edge inheritance rewiring, per-node collapse/expand state,
// and graph lenses. It is renderer-agnostic — it mutates graph.CanvasData
// and leaves pixel output to whatever implements the render contract.
package canvasengine

import (
	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Lens selects which subset of the graph a view renders (spec §4.10).
type Lens string

const (
	// LensFull renders every root and its visible descendants.
	LensFull Lens = "full-graph"
	// LensSelectedNeighborhood renders only the selected node, its
	// parent, and its direct children.
	LensSelectedNeighborhood Lens = "selected-root-neighborhood"
	// LensActiveContainment renders only the subtree rooted at the
	// nearest containment-type ancestor of the selected node.
	LensActiveContainment Lens = "active-containment"
)

// Engine is the canvas engine facade. It does not own a CanvasData
// pointer directly; callers pass the current snapshot into each
// operation and receive the mutated result, keeping ownership with the
// runtime/viewstate layer (spec §4.6/§4.7 own the authoritative copy).
type Engine struct {
	Camera *CameraController
}

// New constructs an engine with a fresh camera controller.
func New() *Engine {
	return &Engine{Camera: NewCameraController()}
}

// CollapseNode sets guid's collapsed flag, recursively saving (on
// collapse) or restoring (on expand) each descendant's own Visible flag
// so that re-expanding a long-collapsed subtree restores whatever
// partial visibility it had before (spec §4.10 "per-node collapse/expand
// semantics... recursive visibility-state save/restore").
func CollapseNode(roots []*graph.Node, guid string, collapsed bool) bool {
	n := graph.FindNode(roots, guid)
	if n == nil {
		return false
	}
	if collapsed == n.State.Collapsed {
		return true
	}
	if collapsed {
		saveVisibility(n)
	} else {
		restoreVisibility(n)
	}
	n.State.Collapsed = collapsed
	graph.RecomputeWorldPositions(roots)
	return true
}

const metaSavedVisible = "_savedVisible"

func saveVisibility(n *graph.Node) {
	for _, c := range n.Children {
		c.SetMeta(metaSavedVisible, c.State.Visible)
		saveVisibility(c)
	}
}

func restoreVisibility(n *graph.Node) {
	for _, c := range n.Children {
		if saved, ok := c.Metadata[metaSavedVisible]; ok {
			if v, ok := saved.(bool); ok {
				c.State.Visible = v
			}
		}
		restoreVisibility(c)
	}
}

// collapsedLevelWidth and collapsedLevelHeight are the fixed size a
// collapsed-with-children container clamps to after a collapse-to-level
// walk, for node types without their own default-size metadata
// (spec §4.10).
const (
	collapsedLevelWidth  = 220.0
	collapsedLevelHeight = 64.0
)

// CollapseToLevel collapses every node at or deeper than depth (root is
// depth 0) and expands everything shallower, used for the "collapse to
// level N" interaction (spec §4.10). Collapsed containers with children
// are clamped to a fixed size (220x64, or their own metadata defaults
// when present, e.g. for tree mode).
func CollapseToLevel(roots []*graph.Node, depth int) {
	var walk func(n *graph.Node, level int)
	walk = func(n *graph.Node, level int) {
		shouldCollapse := level >= depth
		if shouldCollapse != n.State.Collapsed {
			CollapseNode(roots, n.GUID, shouldCollapse)
		}
		if shouldCollapse && len(n.Children) > 0 {
			clampCollapsedSize(n)
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	graph.RecomputeWorldPositions(roots)
}

func clampCollapsedSize(n *graph.Node) {
	w, h := collapsedLevelWidth, collapsedLevelHeight
	if dw, ok := n.Metadata[graph.MetaDefaultWidth].(float64); ok {
		w = dw
	}
	if dh, ok := n.Metadata[graph.MetaDefaultHeight].(float64); ok {
		h = dh
	}
	n.Width, n.Height = w, h
}

// ApplyLens filters roots/edges down to the subset lens selects, given
// the current selection (spec §4.10). Returns new slices; the original
// tree is left untouched since lenses are a view-time filter, not a
// structural mutation.
func ApplyLens(roots []*graph.Node, edges []*graph.Edge, lens Lens, selectedGUID string) ([]*graph.Node, []*graph.Edge) {
	switch lens {
	case LensSelectedNeighborhood:
		return selectedNeighborhood(roots, edges, selectedGUID)
	case LensActiveContainment:
		return activeContainment(roots, edges, selectedGUID)
	default:
		return roots, edges
	}
}

func selectedNeighborhood(roots []*graph.Node, edges []*graph.Edge, selectedGUID string) ([]*graph.Node, []*graph.Edge) {
	selected := graph.FindNode(roots, selectedGUID)
	if selected == nil {
		return roots, edges
	}
	include := map[string]bool{selected.GUID: true}
	if selected.Parent != nil {
		include[selected.Parent.GUID] = true
	}
	for _, c := range selected.Children {
		include[c.GUID] = true
	}
	return filterRoots(roots, include), filterEdges(edges, include)
}

func activeContainment(roots []*graph.Node, edges []*graph.Edge, selectedGUID string) ([]*graph.Node, []*graph.Edge) {
	selected := graph.FindNode(roots, selectedGUID)
	if selected == nil {
		return roots, edges
	}
	containmentRoot := selected
	for containmentRoot.Parent != nil && containmentRoot.Parent.Type != graph.NodeTypeContainer {
		containmentRoot = containmentRoot.Parent
	}
	if containmentRoot.Parent != nil {
		containmentRoot = containmentRoot.Parent
	}
	include := map[string]bool{}
	graph.WalkNodes([]*graph.Node{containmentRoot}, func(n *graph.Node) {
		include[n.GUID] = true
	})
	return []*graph.Node{containmentRoot}, filterEdges(edges, include)
}

func filterRoots(roots []*graph.Node, include map[string]bool) []*graph.Node {
	out := []*graph.Node{}
	graph.WalkNodes(roots, func(n *graph.Node) {
		if include[n.GUID] {
			out = append(out, n)
		}
	})
	return out
}

func filterEdges(edges []*graph.Edge, include map[string]bool) []*graph.Edge {
	out := []*graph.Edge{}
	for _, e := range edges {
		if include[e.From] && include[e.To] {
			out = append(out, e)
		}
	}
	return out
}

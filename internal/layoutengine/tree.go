package layoutengine

import (
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const (
	treeNodeWidth      = 220.0
	treeCollapsedHeight = 64.0
	treeIndent          = 220.0
	treeRowGap          = 8.0
)

// Tree is a vertical indent layout. All non-root nodes begin collapsed;
// positions are computed absolute then converted parent-relative
// (spec §4.3.3).
type Tree struct{}

func NewTree() *Tree { return &Tree{} }

func (e *Tree) Name() string { return "tree" }

func (e *Tree) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: false, Deterministic: true, CanHandleRealtime: true}
}

func (e *Tree) Layout(g *graph.LayoutGraph, opts Options) (*Result, error) {
	out := g.Clone()
	out.LayoutVersion++

	abs := map[string]graph.Vec2{}
	y := 0.0

	var visit func(id string, depth int, isRoot bool)
	visit = func(id string, depth int, isRoot bool) {
		node := out.Nodes[id]
		if node == nil {
			return
		}
		node.Geometry.Width = treeNodeWidth
		node.Geometry.Height = treeCollapsedHeight
		if !isRoot {
			node.State.Collapsed = true
		}
		abs[id] = graph.Vec2{X: float64(depth) * treeIndent, Y: y}
		y += treeCollapsedHeight + treeRowGap

		children := append([]string(nil), node.Children...)
		sort.Strings(children)
		for _, c := range children {
			visit(c, depth+1, false)
		}
	}

	roots := append([]string(nil), out.RootIDs...)
	sort.Strings(roots)
	for _, r := range roots {
		visit(r, 0, true)
	}

	// Convert absolute -> parent-relative.
	for id, node := range out.Nodes {
		a, ok := abs[id]
		if !ok {
			continue
		}
		if parentID := parentOf(out, id); parentID != "" {
			if pa, ok := abs[parentID]; ok {
				node.Geometry.X = a.X - pa.X
				node.Geometry.Y = a.Y - pa.Y
				continue
			}
		}
		node.Geometry.X = a.X
		node.Geometry.Y = a.Y
	}

	setDisplayMode(out, e.Name())

	result := &Result{Graph: out}
	if opts.Reason == ReasonInitial || opts.Reason == ReasonEngineSwitch {
		result.Camera = &graph.Camera{X: 0, Y: 0, Zoom: 0.75}
	}
	return result, nil
}

func parentOf(g *graph.LayoutGraph, id string) string {
	for pid, n := range g.Nodes {
		for _, c := range n.Children {
			if c == id {
				return pid
			}
		}
	}
	return ""
}

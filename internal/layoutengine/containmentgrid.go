package layoutengine

import (
	"math"
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const (
	gridPadding      = 20.0
	gridSpacing      = 10.0
	gridHeaderOffset = 50.0
)

// ContainmentGrid recursively positions children in a square-ish grid
// inside each container, resizing containers bottom-up to fit their
// children (spec §4.3.1). Deterministic.
type ContainmentGrid struct{}

// NewContainmentGrid constructs the containment-grid engine.
func NewContainmentGrid() *ContainmentGrid { return &ContainmentGrid{} }

func (e *ContainmentGrid) Name() string { return "containment-grid" }

func (e *ContainmentGrid) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: false, Deterministic: true, CanHandleRealtime: true}
}

func (e *ContainmentGrid) Layout(g *graph.LayoutGraph, opts Options) (*Result, error) {
	out := g.Clone()
	out.LayoutVersion++

	for _, rootID := range out.RootIDs {
		layoutGridSubtree(out, rootID)
	}

	setDisplayMode(out, e.Name())
	return &Result{Graph: out}, nil
}

// layoutGridSubtree lays out children of id in a grid, then resizes id to
// fit, bottom-up (post-order so parents see final child sizes).
func layoutGridSubtree(g *graph.LayoutGraph, id string) {
	node, ok := g.Nodes[id]
	if !ok {
		return
	}
	for _, childID := range node.Children {
		layoutGridSubtree(g, childID)
	}
	if len(node.Children) == 0 {
		minW, minH := minSizeFor(node.Type)
		if node.Geometry.Width < minW {
			node.Geometry.Width = minW
		}
		if node.Geometry.Height < minH {
			node.Geometry.Height = minH
		}
		return
	}

	children := childrenOf(g, id)
	sort.SliceStable(children, func(i, j int) bool { return children[i].ID < children[j].ID })

	cols := int(math.Ceil(math.Sqrt(float64(len(children)))))
	if cols < 1 {
		cols = 1
	}

	x, y := gridPadding, gridHeaderOffset
	rowHeight := 0.0
	col := 0
	maxRight := 0.0
	for _, child := range children {
		child.Geometry.X = x
		child.Geometry.Y = y
		if child.Geometry.Height > rowHeight {
			rowHeight = child.Geometry.Height
		}
		right := x + child.Geometry.Width
		if right > maxRight {
			maxRight = right
		}
		col++
		x += child.Geometry.Width + gridSpacing
		if col >= cols {
			col = 0
			x = gridPadding
			y += rowHeight + gridSpacing
			rowHeight = 0
		}
	}
	totalHeight := y
	if col != 0 {
		totalHeight += rowHeight
	}

	node.Geometry.Width = maxRight + gridPadding
	node.Geometry.Height = totalHeight + gridPadding
	minW, minH := minSizeFor(node.Type)
	if node.Geometry.Width < minW {
		node.Geometry.Width = minW
	}
	if node.Geometry.Height < minH {
		node.Geometry.Height = minH
	}
}

func minSizeFor(t graph.NodeType) (float64, float64) {
	return t.DefaultSize()
}

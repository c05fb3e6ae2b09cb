// Package reflow implements the dynamic reflow responder: reacting to
// collapse mutations by recomputing sibling positions and container
// bounds while preserving user-locked positions (spec §4.8).
package reflow

import (
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Behavior selects whether the responder is active (spec §6: persisted
// auto-layout settings, reflowBehavior).
type Behavior string

const (
	BehaviorStatic  Behavior = "static"
	BehaviorDynamic Behavior = "dynamic"
)

const (
	packHGap        = 30.0
	packVGap        = 20.0
	packPadding     = 20.0
	collapsedHeuristicW = 180.0
	collapsedHeuristicH = 60.0
	boundsPad       = 40.0
)

// Responder reacts to collapse/expand mutations (source != "layout") by
// reflowing siblings of the changed node.
type Responder struct {
	Behavior Behavior
}

// New returns a responder defaulting to static (inactive) behavior.
func New() *Responder {
	return &Responder{Behavior: BehaviorStatic}
}

// OnCollapse reflows the tree in response to a collapse/expand of
// changedGUID. Returns the mutated roots (a fresh clone; callers should
// republish as a "layout" source mutation so the reflow itself does not
// re-trigger this responder) and whether any reflow occurred.
//
// Algorithm (spec §4.8):
//  1. Skip unless Behavior == dynamic.
//  2. Record changed node's original position.
//  3. If the changed node is user-locked and not collapsed, reflow only
//     its children within its own bounds; otherwise reflow its sibling
//     list.
//  4. Restore the changed node's original position (a user-initiated
//     collapse must not move the collapsed node itself).
//  5. Walk the whole tree, ensuring each parent's size fits its
//     children's bounding box plus 40px padding.
func (r *Responder) OnCollapse(roots []*graph.Node, changedGUID string) ([]*graph.Node, bool) {
	if r.Behavior != BehaviorDynamic {
		return roots, false
	}
	clone := graph.CloneRoots(roots)
	changed := graph.FindNode(clone, changedGUID)
	if changed == nil {
		return roots, false
	}

	originalX, originalY := changed.X, changed.Y

	if changed.UserLocked() && !changed.State.Collapsed {
		reflowChildren(changed)
	} else if changed.Parent != nil {
		reflowSiblings(changed.Parent)
	}

	changed.X, changed.Y = originalX, originalY

	fitParentsToChildren(clone)
	graph.RecomputeWorldPositions(clone)

	return clone, true
}

// reflowSiblings repacks parent's children, skipping any user-locked
// node's position (spec invariant 6).
func reflowSiblings(parent *graph.Node) {
	packChildren(parent, parent.Children, parent.Width)
}

// reflowChildren repacks changed's own children within its own bounds,
// used when the changed node itself is user-locked (its position must
// not move, but its freshly-revealed/hidden children still need
// packing).
func reflowChildren(changed *graph.Node) {
	packChildren(changed, changed.Children, changed.Width)
}

// packChildren chooses between an optimal grid pack (when container
// bounds are known, i.e. containerWidth > 0) and a vertical stack
// otherwise (spec §4.8).
func packChildren(container *graph.Node, children []*graph.Node, containerWidth float64) {
	movable := make([]*graph.Node, 0, len(children))
	for _, c := range children {
		if !c.UserLocked() {
			movable = append(movable, c)
		}
	}
	if len(movable) == 0 {
		return
	}
	if containerWidth > 0 {
		gridPack(container, movable, containerWidth)
	} else {
		verticalStack(movable)
	}
}

// gridPack sorts children by effective area descending and packs them
// left to right, starting a new row when the next child would exceed the
// container's interior width (spec §4.8).
func gridPack(container *graph.Node, children []*graph.Node, containerWidth float64) {
	headerOffset := headerOffsetFor(container)

	ordered := append([]*graph.Node(nil), children...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return effectiveArea(ordered[i]) > effectiveArea(ordered[j])
	})

	x, y := float64(packPadding), headerOffset
	rowHeight := 0.0
	maxRight := containerWidth - packPadding

	for _, child := range ordered {
		w, h := effectiveSize(child)
		if x != packPadding && x+w > maxRight {
			x = packPadding
			y += rowHeight + packVGap
			rowHeight = 0
		}
		child.X = x
		child.Y = y
		if h > rowHeight {
			rowHeight = h
		}
		x += w + packHGap
	}
}

// verticalStack is used when the container's bounds are unknown.
func verticalStack(children []*graph.Node) {
	y := 0.0
	for _, c := range children {
		c.X = packPadding
		c.Y = y
		_, h := effectiveSize(c)
		y += h + packVGap
	}
}

func effectiveSize(n *graph.Node) (w, h float64) {
	if n.State.Collapsed && len(n.Children) > 0 {
		return collapsedHeuristicW, collapsedHeuristicH
	}
	return n.Width, n.Height
}

func effectiveArea(n *graph.Node) float64 {
	w, h := effectiveSize(n)
	return w * h
}

func headerOffsetFor(container *graph.Node) float64 {
	// Header offset proportional to parent height, matching the spec's
	// "header offset proportional to parent": a quarter of the container's
	// height, or 50px when the height is unknown.
	if container.Height > 0 {
		return container.Height * 0.25
	}
	return 50.0
}

// fitParentsToChildren walks the whole tree bottom-up, resizing each
// parent with children so its size fits their bounding box plus 40px
// padding (spec §4.8).
func fitParentsToChildren(roots []*graph.Node) {
	var walk func(n *graph.Node)
	walk = func(n *graph.Node) {
		for _, c := range n.Children {
			walk(c)
		}
		if len(n.Children) == 0 {
			return
		}
		maxRight, maxBottom := 0.0, 0.0
		for _, c := range n.Children {
			w, h := effectiveSize(c)
			if right := c.X + w; right > maxRight {
				maxRight = right
			}
			if bottom := c.Y + h; bottom > maxBottom {
				maxBottom = bottom
			}
		}
		if need := maxRight + boundsPad; need > n.Width {
			n.Width = need
		}
		if need := maxBottom + boundsPad; need > n.Height {
			n.Height = need
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

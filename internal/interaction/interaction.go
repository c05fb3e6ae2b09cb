// Package interaction implements the canvas interaction handler: hit
// testing, select/drag/resize state machines, and the ancestor-path
// cache (spec §4.9). The pointer state machine mirrors willow's
// input.go processPointer discipline (dead-zone-gated drag start,
// captured-node routing) generalized from ebiten screen/world pointer
// events to plain world-space coordinates, since this runtime has no
// platform input backend of its own.
package interaction

import (
	"time"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const (
	// dragDeadZone is the minimum pointer movement, in world pixels,
	// before a press-and-move is classified as a drag rather than a
	// click (mirrors willow's defaultDragDeadZone).
	dragDeadZone = 4.0

	// ResizeHandleSize is the edge length of a resize hit box (spec §4.9).
	ResizeHandleSize = 12.0

	// MinResizeDimension is the smallest width/height a resize may shrink
	// a node to (spec §4.9).
	MinResizeDimension = 50.0

	// doubleClickWindow bounds the time between two clicks on the same
	// node for them to register as a double-click.
	doubleClickWindow = 400 * time.Millisecond

	// dragClampPadding, dragClampHeaderOffset and dragClampGap bound the
	// interior a dragged node may be placed in within its parent (spec
	// §4.9 drag-update clamp).
	dragClampPadding      = 10.0
	dragClampHeaderOffset = 50.0
	dragClampGap          = 10.0
)

// ResizeHandle identifies which corner or edge of a node's bounds a
// pointer is over.
type ResizeHandle int

const (
	ResizeNone ResizeHandle = iota
	ResizeTopLeft
	ResizeTopRight
	ResizeBottomLeft
	ResizeBottomRight
)

// PathCache maps a node GUID to its ordered ancestor chain (root first,
// node itself last), rebuilt lazily and invalidated whenever the tree's
// structure changes (spec §4.9: "cache invalidated on structural
// mutation").
type PathCache struct {
	roots []*graph.Node
	paths map[string][]string
}

// NewPathCache builds a cache rooted at roots.
func NewPathCache(roots []*graph.Node) *PathCache {
	c := &PathCache{roots: roots}
	c.rebuild()
	return c
}

// Invalidate discards the cache and rebuilds it against a new root set,
// called after any AddChild/RemoveChild/structural mutation.
func (c *PathCache) Invalidate(roots []*graph.Node) {
	c.roots = roots
	c.rebuild()
}

func (c *PathCache) rebuild() {
	c.paths = map[string][]string{}
	var walk func(n *graph.Node, ancestors []string)
	walk = func(n *graph.Node, ancestors []string) {
		path := append(append([]string(nil), ancestors...), n.GUID)
		c.paths[n.GUID] = path
		for _, child := range n.Children {
			walk(child, path)
		}
	}
	for _, r := range c.roots {
		walk(r, nil)
	}
}

// Path returns the ancestor chain for guid (root first), or nil if
// guid is not present.
func (c *PathCache) Path(guid string) []string {
	return c.paths[guid]
}

// HitTest returns the topmost node whose world-space bounds contain
// (worldX, worldY), scanning in reverse pre-order so later-drawn
// (foreground) nodes win ties, mirroring willow's reverse-painter-order
// hitTest. Nodes that are not visible (per graph.VisibilityMap) are
// skipped.
func HitTest(roots []*graph.Node, worldX, worldY float64) *graph.Node {
	vis := graph.VisibilityMap(roots)
	var flat []*graph.Node
	graph.WalkNodes(roots, func(n *graph.Node) {
		if vis[n.GUID] {
			flat = append(flat, n)
		}
	})
	for i := len(flat) - 1; i >= 0; i-- {
		n := flat[i]
		wp := n.WorldPosition()
		bounds := graph.Rect{X: wp.X, Y: wp.Y, Width: n.Width, Height: n.Height}
		if bounds.Contains(worldX, worldY) {
			return n
		}
	}
	return nil
}

// HitTestResize reports which resize handle (if any) of node contains
// (worldX, worldY). Checked before HitTest since resize handles overlay
// the node's own hit region (spec §4.9: "12x12px resize hit boxes").
func HitTestResize(node *graph.Node, worldX, worldY float64) ResizeHandle {
	if node == nil {
		return ResizeNone
	}
	wp := node.WorldPosition()
	half := ResizeHandleSize / 2
	corners := []struct {
		handle ResizeHandle
		cx, cy float64
	}{
		{ResizeTopLeft, wp.X, wp.Y},
		{ResizeTopRight, wp.X + node.Width, wp.Y},
		{ResizeBottomLeft, wp.X, wp.Y + node.Height},
		{ResizeBottomRight, wp.X + node.Width, wp.Y + node.Height},
	}
	for _, c := range corners {
		box := graph.Rect{X: c.cx - half, Y: c.cy - half, Width: ResizeHandleSize, Height: ResizeHandleSize}
		if box.Contains(worldX, worldY) {
			return c.handle
		}
	}
	return ResizeNone
}

// dragState tracks an in-progress drag for a single pointer.
type dragState struct {
	node           *graph.Node
	startWorldX    float64
	startWorldY    float64
	startNodeX     float64
	startNodeY     float64
	dragging       bool
}

// resizeState tracks an in-progress resize for a single pointer.
type resizeState struct {
	node        *graph.Node
	handle      ResizeHandle
	startWorldX float64
	startWorldY float64
	startX      float64
	startY      float64
	startW      float64
	startH      float64
}

// clickRecord remembers the last click on a node, for double-click
// detection.
type clickRecord struct {
	guid string
	at   time.Time
}

// Handler runs the select/drag/resize/double-click pointer state
// machine for one canvas surface. Grounded on willow's per-pointer
// pointerState, simplified to a single pointer since this runtime has
// no touch/pinch surface.
type Handler struct {
	Roots []*graph.Node
	Cache *PathCache

	drag      dragState
	resize    resizeState
	lastClick clickRecord

	Selected string
}

// NewHandler constructs a handler over roots, building its path cache.
func NewHandler(roots []*graph.Node) *Handler {
	return &Handler{Roots: roots, Cache: NewPathCache(roots)}
}

// SetRoots swaps the node tree the handler operates over, invalidating
// the ancestor-path cache (spec §4.9).
func (h *Handler) SetRoots(roots []*graph.Node) {
	h.Roots = roots
	h.Cache.Invalidate(roots)
}

// Select sets the current selection to guid (empty string clears it)
// and returns the previously-selected node's GUID.
func (h *Handler) Select(guid string) (previous string) {
	previous = h.Selected
	h.Selected = guid
	return previous
}

// DragStart begins a drag on node at the given world position. Returns
// false only if node is nil; node type and other permissions are not
// checked here.
func (h *Handler) DragStart(node *graph.Node, worldX, worldY float64) bool {
	if node == nil {
		return false
	}
	h.drag = dragState{
		node: node, startWorldX: worldX, startWorldY: worldY,
		startNodeX: node.X, startNodeY: node.Y,
	}
	return true
}

// DragUpdate moves the dragged node by the pointer's displacement since
// DragStart, clamped to stay within the parent's bounds when the parent
// has explicit size (spec §4.9 "drag clamping formulas"). Returns false
// until the pointer has moved past the dead zone.
func (h *Handler) DragUpdate(worldX, worldY float64) bool {
	d := &h.drag
	if d.node == nil {
		return false
	}
	dx := worldX - d.startWorldX
	dy := worldY - d.startWorldY
	if !d.dragging {
		if dx*dx+dy*dy < dragDeadZone*dragDeadZone {
			return false
		}
		d.dragging = true
	}

	newX := d.startNodeX + dx
	newY := d.startNodeY + dy
	if parent := d.node.Parent; parent != nil && parent.Width > 0 && parent.Height > 0 {
		newX = clamp(newX, dragClampPadding, parent.Width-d.node.Width-dragClampPadding)
		newY = clamp(newY, dragClampHeaderOffset+dragClampGap, parent.Height-d.node.Height-dragClampPadding)
	}
	d.node.X, d.node.Y = newX, newY
	return true
}

// DragStop finalizes the drag, marking the node user-locked so future
// automatic reflows/layouts leave its position alone (spec invariant 6),
// and returns the dragged node (nil if no drag was active).
func (h *Handler) DragStop() *graph.Node {
	d := &h.drag
	node := d.node
	if node != nil && d.dragging {
		node.SetMeta(graph.MetaUserLocked, true)
		node.SetMeta(graph.MetaLockedPosition, graph.Vec2{X: node.X, Y: node.Y})
	}
	h.drag = dragState{}
	return node
}

// ResizeStart begins a resize of node via the given handle.
func (h *Handler) ResizeStart(node *graph.Node, handle ResizeHandle, worldX, worldY float64) bool {
	if node == nil || handle == ResizeNone {
		return false
	}
	h.resize = resizeState{
		node: node, handle: handle, startWorldX: worldX, startWorldY: worldY,
		startX: node.X, startY: node.Y, startW: node.Width, startH: node.Height,
	}
	return true
}

// ResizeUpdate applies the pointer's displacement to the node's size and
// (for top/left handles) position, enforcing a 50px minimum dimension
// and containment within the parent's bounds (spec §4.9).
func (h *Handler) ResizeUpdate(worldX, worldY float64) bool {
	r := &h.resize
	if r.node == nil {
		return false
	}
	dx := worldX - r.startWorldX
	dy := worldY - r.startWorldY

	x, y, w, hgt := r.startX, r.startY, r.startW, r.startH

	switch r.handle {
	case ResizeTopLeft:
		x, w = x+dx, w-dx
		y, hgt = y+dy, hgt-dy
	case ResizeTopRight:
		w = w + dx
		y, hgt = y+dy, hgt-dy
	case ResizeBottomLeft:
		x, w = x+dx, w-dx
		hgt = hgt + dy
	case ResizeBottomRight:
		w = w + dx
		hgt = hgt + dy
	}

	if w < MinResizeDimension {
		if r.handle == ResizeTopLeft || r.handle == ResizeBottomLeft {
			x -= MinResizeDimension - w
		}
		w = MinResizeDimension
	}
	if hgt < MinResizeDimension {
		if r.handle == ResizeTopLeft || r.handle == ResizeTopRight {
			y -= MinResizeDimension - hgt
		}
		hgt = MinResizeDimension
	}

	if parent := r.node.Parent; parent != nil && parent.Width > 0 && parent.Height > 0 {
		x = clamp(x, 0, parent.Width-w)
		y = clamp(y, 0, parent.Height-hgt)
	}

	r.node.X, r.node.Y, r.node.Width, r.node.Height = x, y, w, hgt
	return true
}

// ResizeStop finalizes the resize, marking the node user-locked, and
// returns the resized node.
func (h *Handler) ResizeStop() *graph.Node {
	r := &h.resize
	node := r.node
	if node != nil {
		node.SetMeta(graph.MetaUserLocked, true)
		node.SetMeta(graph.MetaLockedPosition, graph.Vec2{X: node.X, Y: node.Y})
	}
	h.resize = resizeState{}
	return node
}

// RegisterClick records a click on guid at now and reports whether it
// completes a double-click (spec §4.9).
func (h *Handler) RegisterClick(guid string, now time.Time) bool {
	isDouble := h.lastClick.guid == guid && !h.lastClick.at.IsZero() &&
		now.Sub(h.lastClick.at) <= doubleClickWindow
	h.lastClick = clickRecord{guid: guid, at: now}
	return isDouble
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

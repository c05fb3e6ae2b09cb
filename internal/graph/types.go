// Package graph defines the canonical layout graph model: nodes, edges,
// camera, and canvas data. Geometry is stored parent-relative; absolute
// (world) position is cached in Node.Metadata under the reserved
// "worldPosition" key and kept invariant by RecomputeWorldPositions.
package graph

// Vec2 is a 2D point or offset used for positions, sizes, and waypoints.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in either world or local space.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap, sharing an edge counts.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// NodeType is the semantic tag carried on every node.
type NodeType string

const (
	NodeTypeRoot      NodeType = "root"
	NodeTypeContainer NodeType = "container"
	NodeTypeNode      NodeType = "node"
	NodeTypeComponent NodeType = "component"
)

// DefaultSize returns the normalizer's default width/height for a type.
func (t NodeType) DefaultSize() (width, height float64) {
	switch t {
	case NodeTypeContainer:
		return 200, 120
	case NodeTypeComponent:
		return 120, 60
	default:
		return 160, 80
	}
}

// Reserved metadata keys. See spec §3.
const (
	MetaWorldPosition  = "worldPosition"
	MetaDisplayMode    = "displayMode"
	MetaDefaultWidth   = "defaultWidth"
	MetaDefaultHeight  = "defaultHeight"
	MetaLockedPosition = "_lockedPosition"
	MetaUserLocked     = "_userLocked"
	MetaPresentation   = "presentation"
	MetaStyleOverrides = "styleOverrides"
)

// Style carries the presentation attributes of a node.
type Style struct {
	Fill            string
	Stroke          string
	Icon            string
	Badges          []string
	LabelVisible    bool
}

// State carries the visibility/selection/drag flags of a node.
type State struct {
	Collapsed bool
	Visible   bool
	Selected  bool
	Dragging  bool
}

// Node is a hierarchical graph node. Position is relative to Parent
// (or to world origin for root nodes). Children is ordered, and
// ToLayoutGraph/ToHierarchical preserve that order; the layout engines
// in internal/layoutengine do not follow it and place siblings in GUID
// order.
type Node struct {
	GUID  string
	HID   string // secondary human id, used for display fallback
	Type  NodeType

	X, Y          float64
	Width, Height float64

	State State
	Style Style

	Parent   *Node
	Children []*Node

	Metadata map[string]any
}

// NewNode constructs a node with visible state and an empty metadata map.
func NewNode(guid string, typ NodeType) *Node {
	w, h := typ.DefaultSize()
	return &Node{
		GUID:     guid,
		Type:     typ,
		Width:    w,
		Height:   h,
		State:    State{Visible: true},
		Metadata: map[string]any{},
	}
}

// AddChild appends child to n's children and sets child.Parent.
// Panics if child is nil or would create a cycle (mirrors willow's
// Node.AddChild tree-manipulation discipline).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("graph: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("graph: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// RemoveChild detaches child from n. No-op if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		return
	}
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			break
		}
	}
	child.Parent = nil
}

func isAncestor(candidate, n *Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == candidate {
			return true
		}
	}
	return false
}

// WorldPosition returns the cached absolute position, defaulting to the
// zero vector if never computed.
func (n *Node) WorldPosition() Vec2 {
	if v, ok := n.Metadata[MetaWorldPosition].(Vec2); ok {
		return v
	}
	return Vec2{}
}

// AbsolutePosition walks the parent chain and sums relative offsets.
// Used to derive WorldPosition from scratch (e.g. after deserialization).
func (n *Node) AbsolutePosition() Vec2 {
	x, y := n.X, n.Y
	for p := n.Parent; p != nil; p = p.Parent {
		x += p.X
		y += p.Y
	}
	return Vec2{X: x, Y: y}
}

// SetMeta sets a metadata key, creating the map if needed.
func (n *Node) SetMeta(key string, val any) {
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}
	n.Metadata[key] = val
}

// UserLocked reports whether the user has dragged this node and reflow
// must not move it.
func (n *Node) UserLocked() bool {
	v, _ := n.Metadata[MetaUserLocked].(bool)
	return v
}

// IsVisibleLocally reports the node's own visible flag (does not consider
// ancestors); see graph.VisibilityMap for the ancestor-aware computation.
func (n *Node) IsVisibleLocally() bool {
	return n.State.Visible
}

// Edge connects two nodes by GUID.
type Edge struct {
	GUID string
	From string
	To   string

	Stroke       string
	Width        float64
	Dash         []float64
	Label        string
	RelationType string

	// Waypoints are optional world-space routing points; invalidated
	// whenever either endpoint's geometry changes.
	Waypoints []Vec2

	Metadata map[string]any
}

// Clone returns a deep copy of e (waypoints and metadata copied).
func (e *Edge) Clone() *Edge {
	cp := *e
	if e.Dash != nil {
		cp.Dash = append([]float64(nil), e.Dash...)
	}
	if e.Waypoints != nil {
		cp.Waypoints = append([]Vec2(nil), e.Waypoints...)
	}
	if e.Metadata != nil {
		cp.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// Camera is the world-to-screen viewport transform.
// Screen coordinate = (world - camera) * zoom.
type Camera struct {
	X, Y float64
	Zoom float64
}

// DefaultCamera returns the camera used on reset: origin, zoom 1.
func DefaultCamera() Camera {
	return Camera{X: 0, Y: 0, Zoom: 1.0}
}

// ToScreen converts a world point to screen space under this camera.
func (c Camera) ToScreen(world Vec2) Vec2 {
	return Vec2{X: (world.X - c.X) * c.Zoom, Y: (world.Y - c.Y) * c.Zoom}
}

// ToWorld converts a screen point to world space under this camera.
func (c Camera) ToWorld(screen Vec2) Vec2 {
	if c.Zoom == 0 {
		return Vec2{X: c.X, Y: c.Y}
	}
	return Vec2{X: screen.X/c.Zoom + c.X, Y: screen.Y/c.Zoom + c.Y}
}

// IsFinite reports whether the camera's numeric fields are all finite and
// zoom is strictly positive, used by the camera-bounds guard (spec §4.10).
func (c Camera) IsFinite() bool {
	return isFiniteFloat(c.X) && isFiniteFloat(c.Y) && isFiniteFloat(c.Zoom) && c.Zoom > 0
}

func isFiniteFloat(f float64) bool {
	return f == f && f > -maxFloat && f < maxFloat
}

const maxFloat = 1e308

// CanvasData is the root render-facing snapshot: a nested node tree,
// the current render edge set, the authoritative unfiltered edge set,
// the camera, and free-form metadata.
type CanvasData struct {
	Nodes         []*Node
	Edges         []*Edge
	OriginalEdges []*Edge
	Camera        Camera
	Metadata      map[string]any
}

// NewCanvasData returns an empty canvas with the default camera.
func NewCanvasData() *CanvasData {
	return &CanvasData{Camera: DefaultCamera(), Metadata: map[string]any{}}
}

// RecomputeWorldPositions walks the tree top-down, writing
// metadata.worldPosition on every node as parent-world + local offset.
// Invariant from spec §3: must be called after any geometry mutation.
func RecomputeWorldPositions(roots []*Node) {
	var walk func(n *Node, parentWorld Vec2)
	walk = func(n *Node, parentWorld Vec2) {
		world := Vec2{X: parentWorld.X + n.X, Y: parentWorld.Y + n.Y}
		n.SetMeta(MetaWorldPosition, world)
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range roots {
		walk(r, Vec2{})
	}
}

// VisibilityMap computes, for every node reachable from roots, whether it
// is visible: its own Visible flag is true AND every ancestor is neither
// collapsed nor hidden (spec §4.10 step 1).
func VisibilityMap(roots []*Node) map[string]bool {
	vis := map[string]bool{}
	var walk func(n *Node, ancestorsOK bool)
	walk = func(n *Node, ancestorsOK bool) {
		visible := ancestorsOK && n.State.Visible
		vis[n.GUID] = visible
		childrenOK := visible && !n.State.Collapsed
		for _, c := range n.Children {
			walk(c, childrenOK)
		}
	}
	for _, r := range roots {
		walk(r, true)
	}
	return vis
}

// WalkNodes calls fn for every node reachable from roots, pre-order.
func WalkNodes(roots []*Node, fn func(n *Node)) {
	var walk func(n *Node)
	walk = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
}

// FindNode returns the node with the given GUID reachable from roots, or
// nil. Linear scan; callers that need repeated lookups should build an
// index (see interaction.PathCache).
func FindNode(roots []*Node, guid string) *Node {
	var found *Node
	WalkNodes(roots, func(n *Node) {
		if found == nil && n.GUID == guid {
			found = n
		}
	})
	return found
}

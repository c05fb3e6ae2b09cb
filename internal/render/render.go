// Package render defines the renderer contract: the interfaces a host
// application implements to turn a graph.CanvasData snapshot into
// pixels. This package is implementation-free by design — spec.md §1
// places pixel/sprite drawing out of scope, and §2's Renderer Contract
// row is explicitly "implementation-free here". No rendering backend
// (ebiten or otherwise) is imported anywhere in this module.
package render

import (
	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Surface is implemented by a host renderer: given the current
// snapshot and camera, it is responsible for drawing nodes and edges to
// whatever output device it owns.
type Surface interface {
	// Draw renders data under the given camera. Implementations own
	// their own frame pacing; this call is expected to be synchronous.
	Draw(data *graph.CanvasData, cam graph.Camera) error

	// Viewport returns the surface's current screen-space rectangle,
	// used by the canvas engine facade's camera-bounds guard.
	Viewport() graph.Rect
}

// NodeRenderer is an optional finer-grained contract a Surface may also
// implement to support per-node custom drawing (icons, badges),
// dispatched by node type.
type NodeRenderer interface {
	DrawNode(n *graph.Node, cam graph.Camera) error
}

// EdgeRenderer is an optional finer-grained contract for custom edge
// drawing (e.g. routed waypoints, dash patterns for inherited edges).
type EdgeRenderer interface {
	DrawEdge(e *graph.Edge, cam graph.Camera) error
}

package layoutengine

import (
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const (
	orthoColumnWidth = 360.0
	orthoRowGap      = 40.0
	orthoLayerPad    = 140.0
	orthoFramePad    = 200.0
	orthoFrameZoom   = 0.65
)

// Orthogonal is a layered layout by depth from roots (spec §4.3.2).
type Orthogonal struct{}

func NewOrthogonal() *Orthogonal { return &Orthogonal{} }

func (e *Orthogonal) Name() string { return "orthogonal" }

func (e *Orthogonal) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: false, Deterministic: true, CanHandleRealtime: true}
}

func (e *Orthogonal) Layout(g *graph.LayoutGraph, opts Options) (*Result, error) {
	out := g.Clone()
	out.LayoutVersion++

	layers := map[string][]string{} // depth-sorted node id buckets, keyed by "layer index" as string for determinism
	depthOf := map[string]int{}

	var assignDepth func(id string, depth int)
	assignDepth = func(id string, depth int) {
		depthOf[id] = depth
		node := out.Nodes[id]
		if node == nil {
			return
		}
		for _, c := range node.Children {
			assignDepth(c, depth+1)
		}
	}
	roots := append([]string(nil), out.RootIDs...)
	sort.Strings(roots)
	for _, r := range roots {
		assignDepth(r, 0)
	}

	maxDepth := 0
	for _, d := range depthOf {
		if d > maxDepth {
			maxDepth = d
		}
	}
	for id, d := range depthOf {
		key := layerKey(d)
		layers[key] = append(layers[key], id)
	}

	for d := 0; d <= maxDepth; d++ {
		ids := layers[layerKey(d)]
		sort.Strings(ids)
		y := 0.0
		for _, id := range ids {
			node := out.Nodes[id]
			node.Geometry.X = float64(d) * orthoColumnWidth
			node.Geometry.Y = y + orthoLayerPad
			y += node.Geometry.Height + orthoRowGap
		}
	}

	// Re-center each parent's Y to the midpoint of its first/last child,
	// from deepest layer up so parents see final child Y (spec §4.3.2).
	for d := maxDepth - 1; d >= 0; d-- {
		for _, id := range layers[layerKey(d)] {
			node := out.Nodes[id]
			if len(node.Children) == 0 {
				continue
			}
			first := out.Nodes[node.Children[0]]
			last := out.Nodes[node.Children[len(node.Children)-1]]
			node.Geometry.Y = (first.Geometry.Y + last.Geometry.Y) / 2
		}
	}

	setDisplayMode(out, e.Name())

	result := &Result{Graph: out}
	if opts.Reason == ReasonInitial || opts.Reason == ReasonEngineSwitch {
		minX, minY, maxX, maxY := boundsOf(out)
		cam := frameCamera(minX, minY, maxX, maxY, orthoFramePad, opts.Viewport, orthoFrameZoom)
		result.Camera = &cam
	}
	return result, nil
}

func layerKey(d int) string {
	// Fixed-width key keeps iteration order stable without sorting ints
	// as strings incorrectly for depths >= 10.
	return string(rune('a' + d))
}

func boundsOf(g *graph.LayoutGraph) (minX, minY, maxX, maxY float64) {
	first := true
	for _, n := range g.Nodes {
		x0, y0 := n.Geometry.X, n.Geometry.Y
		x1, y1 := x0+n.Geometry.Width, y0+n.Geometry.Height
		if first {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			first = false
			continue
		}
		if x0 < minX {
			minX = x0
		}
		if y0 < minY {
			minY = y0
		}
		if x1 > maxX {
			maxX = x1
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	return
}

// frameCamera centers the camera on the content bounds at defaultZoom. If
// a viewport is supplied, zoom is reduced (never increased) so the padded
// content bounds fit entirely within it.
func frameCamera(minX, minY, maxX, maxY, pad float64, vp *Viewport, defaultZoom float64) graph.Camera {
	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	zoom := defaultZoom
	if vp != nil && vp.Width > 0 && vp.Height > 0 {
		contentW := (maxX - minX) + 2*pad
		contentH := (maxY - minY) + 2*pad
		if contentW > 0 && contentH > 0 {
			fitZoom := vp.Width / contentW
			if alt := vp.Height / contentH; alt < fitZoom {
				fitZoom = alt
			}
			if fitZoom < zoom {
				zoom = fitZoom
			}
		}
	}
	return graph.Camera{X: cx, Y: cy, Zoom: zoom}
}

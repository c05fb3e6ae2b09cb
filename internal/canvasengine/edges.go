package canvasengine

import (
	"fmt"
	"strconv"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const (
	// inheritedEdgeWidthCap is the maximum stroke width an inherited edge
	// may carry, regardless of how many original edges it represents
	// (spec §4.10).
	inheritedEdgeWidthCap = 6.0

	// inheritedEdgeWidthIncrement is added to an edge's width each time it
	// is carried across a collapsed ancestor (spec §4.10 "width
	// incremented").
	inheritedEdgeWidthIncrement = 1.0

	// inheritedEdgeDarkenFactor scales each RGB channel of an inherited
	// edge's stroke color down toward black (spec §4.10 "darker stroke").
	inheritedEdgeDarkenFactor = 0.7

	// inheritedEdgeIDPrefix marks an edge as synthesized rather than part
	// of the authoritative OriginalEdges set.
	inheritedEdgeIDPrefix = "inherited-"
)

var inheritedEdgeDash = []float64{4, 4}

// darkenStroke scales a "#rrggbb" stroke color toward black by factor.
// Malformed or empty colors pass through unchanged.
func darkenStroke(stroke string, factor float64) string {
	if len(stroke) != 7 || stroke[0] != '#' {
		return stroke
	}
	r, err1 := strconv.ParseUint(stroke[1:3], 16, 8)
	g, err2 := strconv.ParseUint(stroke[3:5], 16, 8)
	b, err3 := strconv.ParseUint(stroke[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return stroke
	}
	return fmt.Sprintf("#%02x%02x%02x",
		uint8(float64(r)*factor), uint8(float64(g)*factor), uint8(float64(b)*factor))
}

// nearestVisibleAncestor walks guid's ancestor chain (including itself)
// until it finds a node visible per vis, returning its GUID. Returns ""
// if guid is unknown or no ancestor is visible.
func nearestVisibleAncestor(roots []*graph.Node, vis map[string]bool, guid string) string {
	n := graph.FindNode(roots, guid)
	for n != nil {
		if vis[n.GUID] {
			return n.GUID
		}
		n = n.Parent
	}
	return ""
}

// RewireEdges recomputes the rendered edge set from OriginalEdges: edges
// whose endpoints are both visible pass through unchanged; edges with a
// hidden endpoint are rewired to the nearest visible ancestor of that
// endpoint, darkened and widened by one (capped at 6) per spec §4.10.
// Edges collapsing to a self-loop (both endpoints resolve to the same
// visible ancestor) are dropped. Multiple original edges that rewire to
// the same (from, to) pair are merged into one inherited edge whose
// width keeps incrementing (capped at 6) rather than rendering
// duplicate lines.
func RewireEdges(roots []*graph.Node, original []*graph.Edge) []*graph.Edge {
	vis := graph.VisibilityMap(roots)

	type key struct{ from, to string }
	merged := map[key]*graph.Edge{}
	order := []key{}

	for _, e := range original {
		from := nearestVisibleAncestor(roots, vis, e.From)
		to := nearestVisibleAncestor(roots, vis, e.To)
		if from == "" || to == "" || from == to {
			continue
		}

		isInherited := from != e.From || to != e.To
		k := key{from, to}
		if existing, ok := merged[k]; ok {
			if isInherited {
				existing.Width += inheritedEdgeWidthIncrement
				if existing.Width > inheritedEdgeWidthCap {
					existing.Width = inheritedEdgeWidthCap
				}
			}
			continue
		}

		cp := e.Clone()
		cp.From, cp.To = from, to
		if isInherited {
			cp.GUID = inheritedEdgeIDPrefix + e.GUID
			cp.Dash = append([]float64(nil), inheritedEdgeDash...)
			cp.Stroke = darkenStroke(cp.Stroke, inheritedEdgeDarkenFactor)
			cp.Width += inheritedEdgeWidthIncrement
			if cp.Width > inheritedEdgeWidthCap {
				cp.Width = inheritedEdgeWidthCap
			}
		}
		merged[k] = cp
		order = append(order, k)
	}

	out := make([]*graph.Edge, 0, len(order))
	for _, k := range order {
		out = append(out, merged[k])
	}
	return out
}

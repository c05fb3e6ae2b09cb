package layoutengine

import (
	"math"
	"sort"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

const forceRadius = 350.0

// ForceDirected places nodes deterministically on a circle; true force
// relaxation is a non-goal (spec §4.3.4).
type ForceDirected struct{}

func NewForceDirected() *ForceDirected { return &ForceDirected{} }

func (e *ForceDirected) Name() string { return "force-directed" }

func (e *ForceDirected) Capabilities() Capabilities {
	return Capabilities{SupportsIncremental: false, Deterministic: true, CanHandleRealtime: true}
}

func (e *ForceDirected) Layout(g *graph.LayoutGraph, opts Options) (*Result, error) {
	out := g.Clone()
	out.LayoutVersion++

	ids := make([]string, 0, len(out.Nodes))
	for id := range out.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	n := len(ids)
	absPos := make(map[string]graph.Vec2, n)
	for i, id := range ids {
		angle := 2 * math.Pi * float64(i) / float64(maxInt(n, 1))
		absPos[id] = graph.Vec2{X: forceRadius * math.Cos(angle), Y: forceRadius * math.Sin(angle)}
	}

	// Convert the absolute circle placement to parent-relative geometry.
	for _, id := range ids {
		node := out.Nodes[id]
		a := absPos[id]
		if parentID := parentOf(out, id); parentID != "" {
			if pa, ok := absPos[parentID]; ok {
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
		result.Camera = &graph.Camera{X: -400, Y: -300, Zoom: 0.6}
	}
	return result, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

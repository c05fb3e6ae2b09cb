// Package layoutengine provides the pluggable layout algorithms that turn
// a Layout Graph into a laid-out Layout Graph (spec §4.3). Engines are
// pure over their inputs and must not retain state between calls.
package layoutengine

import (
	"github.com/phanxgames/canvaslayout/internal/graph"
)

// Reason identifies why a layout pass was requested (spec §4.3).
type Reason string

const (
	ReasonInitial      Reason = "initial"
	ReasonEngineSwitch Reason = "engine-switch"
	ReasonDataUpdate   Reason = "data-update"
	ReasonReflow       Reason = "reflow"
	ReasonUserCommand  Reason = "user-command"
)

// Viewport is the visible world rectangle, used by engines that frame a
// camera to content bounds.
type Viewport struct {
	Width, Height float64
}

// Options configures a single layout() call.
type Options struct {
	Reason        Reason
	Viewport      *Viewport
	PreviousGraph *graph.LayoutGraph
	EngineOptions map[string]any
	Timestamp     int64
}

// Capabilities describes what an engine supports.
type Capabilities struct {
	SupportsIncremental bool
	Deterministic       bool
	CanHandleRealtime   bool
}

// Result is the output of a single layout() call.
type Result struct {
	Graph       *graph.LayoutGraph
	Camera      *graph.Camera
	Diagnostics map[string]any
}

// Engine is the common contract every layout algorithm implements
// (spec §4.3).
type Engine interface {
	Name() string
	Capabilities() Capabilities
	Layout(g *graph.LayoutGraph, opts Options) (*Result, error)
}

// RawDataProcessor is optionally implemented by engines that can derive a
// graph directly from raw data (spec §4.3: "processRawData?").
type RawDataProcessor interface {
	ProcessRawData(input any) (*graph.LayoutGraph, error)
}

// setDisplayMode stamps metadata.displayMode on every node, as required
// of every engine (spec §4.3).
func setDisplayMode(g *graph.LayoutGraph, name string) {
	for _, n := range g.Nodes {
		if n.Metadata == nil {
			n.Metadata = map[string]any{}
		}
		n.Metadata[graph.MetaDisplayMode] = name
	}
}

func childrenOf(g *graph.LayoutGraph, id string) []*graph.LGNode {
	n, ok := g.Nodes[id]
	if !ok {
		return nil
	}
	out := make([]*graph.LGNode, 0, len(n.Children))
	for _, cid := range n.Children {
		if c, ok := g.Nodes[cid]; ok {
			out = append(out, c)
		}
	}
	return out
}

// EngineOptFloat reads a float64 engine option with a default.
func EngineOptFloat(opts Options, key string, def float64) float64 {
	if opts.EngineOptions == nil {
		return def
	}
	if v, ok := opts.EngineOptions[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

// EngineOptString reads a string engine option with a default.
func EngineOptString(opts Options, key, def string) string {
	if opts.EngineOptions == nil {
		return def
	}
	if v, ok := opts.EngineOptions[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

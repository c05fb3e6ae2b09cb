// Package runtime implements the Canvas Layout Runtime facade (spec
// §4.6): it binds a surface id to a view graph, a raw-data cache, the
// orchestrator/worker bridge, the view-state bus, the interaction
// handler, and the canvas engine facade, and exposes the small set of
// operations host applications call.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phanxgames/canvaslayout/internal/canvasengine"
	"github.com/phanxgames/canvaslayout/internal/graph"
	"github.com/phanxgames/canvaslayout/internal/interaction"
	"github.com/phanxgames/canvaslayout/internal/layoutengine"
	"github.com/phanxgames/canvaslayout/internal/normalize"
	"github.com/phanxgames/canvaslayout/internal/orchestrator"
	"github.com/phanxgames/canvaslayout/internal/reflow"
	"github.com/phanxgames/canvaslayout/internal/viewstate"
	"github.com/phanxgames/canvaslayout/internal/workerbridge"
)

// ViewConfig is the per-surface runtime view configuration (spec §4.6).
type ViewConfig struct {
	ContainmentMode string
	LayoutMode      string
	EdgeRouting     string
}

// surface holds all per-surface state (spec §9: "no process-wide
// singleton except the stateless module registry... per-surface maps
// keyed by surface id").
type surface struct {
	id string

	mu             sync.Mutex
	config         ViewConfig
	rawData        *normalize.RawData
	styleOverrides map[string]graph.Style
	layoutVersion  uint64
	activeEngine   string
	activeLens     canvasengine.Lens
	selectedGUID   string

	viewstate *viewstate.Service
	engine    *canvasengine.Engine
	handler   *interaction.Handler
	reflower  *reflow.Responder
}

// Runtime coordinates all surfaces sharing one engine registry, worker
// bridge, and event bus.
type Runtime struct {
	bridge *workerbridge.Bridge
	logger *slog.Logger

	mu       sync.Mutex
	surfaces map[string]*surface
}

// New constructs a runtime backed by bridge (which itself wraps an
// orchestrator and optionally a worker-hosted one).
func New(bridge *workerbridge.Bridge, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{bridge: bridge, logger: logger, surfaces: map[string]*surface{}}
}

func (rt *Runtime) surfaceFor(id string) *surface {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s, ok := rt.surfaces[id]
	if !ok {
		s = &surface{
			id:             id,
			config:         ViewConfig{ContainmentMode: "containers", LayoutMode: "grid", EdgeRouting: "orthogonal"},
			styleOverrides: map[string]graph.Style{},
			viewstate:      viewstate.New(),
			engine:         canvasengine.New(),
			handler:        interaction.NewHandler(nil),
			reflower:       reflow.New(),
		}
		rt.surfaces[id] = s
	}
	return s
}

// Subscribe exposes the surface's view-state mutation stream.
func (rt *Runtime) Subscribe(surfaceID string, origin viewstate.Source) (<-chan viewstate.Mutation, func()) {
	return rt.surfaceFor(surfaceID).viewstate.Subscribe(origin)
}

// Snapshot returns the current canvas data for a surface.
func (rt *Runtime) Snapshot(surfaceID string) *graph.CanvasData {
	return rt.surfaceFor(surfaceID).viewstate.Snapshot()
}

// SetCanvasData swaps the surface's view graph (spec §4.6). When
// runLayout is true, a layout pass is kicked off afterward.
func (rt *Runtime) SetCanvasData(ctx context.Context, surfaceID string, data *graph.CanvasData, runLayout bool, source viewstate.Source) (*layoutengine.Result, error) {
	s := rt.surfaceFor(surfaceID)
	s.viewstate.Publish(data, viewstate.MutationReplace, source, "", nil)
	s.handler.SetRoots(data.Nodes)
	if runLayout {
		return rt.RunLayout(ctx, surfaceID, layoutengine.Options{Reason: layoutengine.ReasonDataUpdate})
	}
	return nil, nil
}

// SetRawData validates and normalizes input, rebuilds the hierarchical
// snapshot in place while preserving the camera, and optionally runs
// layout (spec §4.6).
func (rt *Runtime) SetRawData(ctx context.Context, surfaceID string, input normalize.RawData, runLayout bool, source viewstate.Source) (*layoutengine.Result, error) {
	s := rt.surfaceFor(surfaceID)

	result, err := normalize.Normalize(input)
	if err != nil {
		return nil, err
	}

	roots, edges := graph.ToHierarchical(result.Graph)

	s.mu.Lock()
	s.rawData = &input
	current := s.viewstate.Snapshot()
	data := &graph.CanvasData{Nodes: roots, OriginalEdges: edges, Edges: edges, Camera: current.Camera}
	applyStyleOverrides(data.Nodes, s.styleOverrides)
	s.mu.Unlock()

	s.viewstate.Publish(data, viewstate.MutationReplace, source, "", nil)
	s.handler.SetRoots(data.Nodes)

	if runLayout {
		return rt.RunLayout(ctx, surfaceID, layoutengine.Options{Reason: layoutengine.ReasonDataUpdate})
	}
	return nil, nil
}

// SetViewConfig patches the surface's runtime view config. When
// containmentMode changes and a raw dataset is cached, per-GUID style
// overrides are preserved across the rebuild (spec §4.6).
func (rt *Runtime) SetViewConfig(surfaceID string, patch ViewConfig) error {
	s := rt.surfaceFor(surfaceID)
	s.mu.Lock()
	modeChanged := patch.ContainmentMode != "" && patch.ContainmentMode != s.config.ContainmentMode
	if patch.ContainmentMode != "" {
		s.config.ContainmentMode = patch.ContainmentMode
	}
	if patch.LayoutMode != "" {
		s.config.LayoutMode = patch.LayoutMode
	}
	if patch.EdgeRouting != "" {
		s.config.EdgeRouting = patch.EdgeRouting
	}
	current := s.viewstate.Snapshot()
	if modeChanged {
		graph.WalkNodes(current.Nodes, func(n *graph.Node) {
			s.styleOverrides[n.GUID] = n.Style
		})
	}
	rawData := s.rawData
	s.mu.Unlock()

	if !modeChanged || rawData == nil {
		return nil
	}

	result, err := normalize.Normalize(*rawData)
	if err != nil {
		return err
	}
	roots, edges := graph.ToHierarchical(result.Graph)
	data := &graph.CanvasData{Nodes: roots, OriginalEdges: edges, Edges: edges, Camera: current.Camera}
	applyStyleOverrides(data.Nodes, s.styleOverrides)

	s.viewstate.Publish(data, viewstate.MutationReplace, viewstate.SourceExternal, "", nil)
	s.handler.SetRoots(data.Nodes)
	return nil
}

func applyStyleOverrides(roots []*graph.Node, overrides map[string]graph.Style) {
	graph.WalkNodes(roots, func(n *graph.Node) {
		if style, ok := overrides[n.GUID]; ok {
			n.Style = style
		}
	})
}

// RunLayout bumps the layout version, converts the view graph to a
// layout graph, normalizes the engine alias, chooses a priority,
// dispatches via the worker bridge, converts the result back, and
// preserves the camera unless the engine emitted one (spec §4.6).
func (rt *Runtime) RunLayout(ctx context.Context, surfaceID string, opts layoutengine.Options) (*layoutengine.Result, error) {
	s := rt.surfaceFor(surfaceID)

	s.mu.Lock()
	s.layoutVersion++
	version := s.layoutVersion
	engineName := s.activeEngine
	s.mu.Unlock()

	current := s.viewstate.Snapshot()
	lg := graph.ToLayoutGraph(current.Nodes, current.OriginalEdges, version, engineName)

	canonical, known := layoutengine.NormalizeEngineName(engineName)
	if !known {
		rt.logger.Warn("runtime: unknown engine name, falling back to containment-grid", "surface", surfaceID, "requested", engineName)
	}

	priority := priorityFor(opts.Reason)

	result, err := rt.bridge.RunLayout(ctx, surfaceID, lg, canonical, opts, priority)
	if err != nil {
		return nil, err
	}

	roots, edges := graph.ToHierarchical(result.Graph)
	graph.RecomputeWorldPositions(roots)
	next := &graph.CanvasData{Nodes: roots, OriginalEdges: edges, Camera: current.Camera}
	// An engine-switch always restores the surface's prior camera even
	// when the newly active engine emits its own initial framing (spec
	// §8 scenario S4) — every other reason keeps the engine's camera
	// when one is emitted.
	if result.Camera != nil && opts.Reason != layoutengine.ReasonEngineSwitch {
		next.Camera = *result.Camera
	}
	next.Edges = canvasengine.RewireEdges(next.Nodes, next.OriginalEdges)

	s.viewstate.Publish(next, viewstate.MutationLayout, viewstate.SourceLayout, "", nil)
	s.handler.SetRoots(next.Nodes)
	return result, nil
}

// priorityFor chooses a scheduling priority from a layout Reason (spec
// §4.6: "initial→critical, engine-switch|user-command|reflow→high...
// else normal").
func priorityFor(reason layoutengine.Reason) orchestrator.Priority {
	switch reason {
	case layoutengine.ReasonInitial:
		return orchestrator.PriorityCritical
	case layoutengine.ReasonEngineSwitch, layoutengine.ReasonUserCommand, layoutengine.ReasonReflow:
		return orchestrator.PriorityHigh
	default:
		return orchestrator.PriorityNormal
	}
}

// SetActiveEngine switches a surface's active layout engine, normalizing
// the supplied name (spec §4.4/§6).
func (rt *Runtime) SetActiveEngine(surfaceID, name string) {
	s := rt.surfaceFor(surfaceID)
	canonical, _ := layoutengine.NormalizeEngineName(name)
	s.mu.Lock()
	s.activeEngine = canonical
	s.mu.Unlock()
}

// Select hit-tests the topmost node at the given world point, clears
// prior selection, and marks the hit node selected (spec §4.9 "select").
func (rt *Runtime) Select(surfaceID string, worldX, worldY float64) *graph.Node {
	s := rt.surfaceFor(surfaceID)
	current := s.viewstate.Snapshot()
	hit := interaction.HitTest(current.Nodes, worldX, worldY)

	graph.WalkNodes(current.Nodes, func(n *graph.Node) { n.State.Selected = false })
	guid := ""
	if hit != nil {
		hitNode := graph.FindNode(current.Nodes, hit.GUID)
		if hitNode != nil {
			hitNode.State.Selected = true
			guid = hitNode.GUID
		}
	}
	s.handler.Select(guid)
	s.mu.Lock()
	s.selectedGUID = guid
	s.mu.Unlock()
	s.viewstate.Publish(current, viewstate.MutationPosition, viewstate.SourceExternal, guid, nil)
	return hit
}

// DoubleClick toggles the collapsed state of the node at the given
// world point and rewires edges accordingly (spec §4.9 "double-click").
func (rt *Runtime) DoubleClick(surfaceID string, worldX, worldY float64, now time.Time) (*graph.Node, bool) {
	s := rt.surfaceFor(surfaceID)
	current := s.viewstate.Snapshot()
	hit := interaction.HitTest(current.Nodes, worldX, worldY)
	if hit == nil {
		return nil, false
	}
	node := graph.FindNode(current.Nodes, hit.GUID)
	if node == nil {
		return nil, false
	}

	canvasengine.CollapseNode(current.Nodes, node.GUID, !node.State.Collapsed)
	current.Edges = canvasengine.RewireEdges(current.Nodes, current.OriginalEdges)

	draft, reflowed := s.reflower.OnCollapse(current.Nodes, node.GUID)
	if reflowed {
		current.Nodes = draft
		current.Edges = canvasengine.RewireEdges(current.Nodes, current.OriginalEdges)
	}

	s.viewstate.Publish(current, viewstate.MutationCollapse, viewstate.SourceExternal, node.GUID, nil)
	s.handler.SetRoots(current.Nodes)
	return graph.FindNode(current.Nodes, node.GUID), true
}

// SetReflowBehavior toggles whether collapse/expand triggers automatic
// sibling reflow (spec §6 AutoLayoutSettings.reflowBehavior).
func (rt *Runtime) SetReflowBehavior(surfaceID string, behavior reflow.Behavior) {
	rt.surfaceFor(surfaceID).reflower.Behavior = behavior
}

// ApplyLens filters the current snapshot's nodes/edges through lens,
// centered on the surface's current selection (spec §4.10).
func (rt *Runtime) ApplyLens(surfaceID string, lens canvasengine.Lens) ([]*graph.Node, []*graph.Edge) {
	s := rt.surfaceFor(surfaceID)
	s.mu.Lock()
	s.activeLens = lens
	selected := s.selectedGUID
	s.mu.Unlock()

	current := s.viewstate.Snapshot()
	return canvasengine.ApplyLens(current.Nodes, current.Edges, lens, selected)
}

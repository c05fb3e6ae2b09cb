package layoutengine

import "sync"

// aliases maps legacy/alternate engine names to their canonical name
// (spec §6).
var aliases = map[string]string{
	"grid":                   "containment-grid",
	"hierarchical":           "containment-grid",
	"codebase-hierarchical":  "containment-grid",
	"containment":            "containment-grid",
	"orthogonal":             "orthogonal",
	"containment-orthogonal": "orthogonal",
	"tree":                   "tree",
	"tree-table":             "tree",
	"code-model-tree":        "tree",
	"force":                  "force-directed",
	"force-directed":         "force-directed",
	"flat-graph":             "force-directed",
	"containment-runtime":    "containment-runtime",
	"containment-live":       "containment-runtime",
}

// NormalizeEngineName maps a legacy or canonical engine name to its
// canonical form. Unknown names fall back to "containment-grid" per
// spec §7 ("unknown engine name yields containment-grid with a logged
// warning; no throw"). The caller is expected to log the fallback.
func NormalizeEngineName(name string) (canonical string, known bool) {
	if c, ok := aliases[name]; ok {
		return c, true
	}
	return "containment-grid", false
}

// Registry is a name -> Engine map, the "stateless module registry"
// referenced in spec §9 (the one process-wide singleton permitted).
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{engines: map[string]Engine{}}
}

// NewDefaultRegistry returns a registry pre-populated with the five
// built-in engines (spec §4.3.1-4.3.5).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewContainmentGrid())
	r.Register(NewOrthogonal())
	r.Register(NewTree())
	r.Register(NewForceDirected())
	r.Register(NewContainmentRuntime())
	return r
}

// Register adds or replaces an engine under its own Name().
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Name()] = e
}

// Unregister removes an engine by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, name)
}

// Get looks up an engine by name, normalizing aliases first. A name
// registered as-is is returned directly.
func (r *Registry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.engines[name]; ok {
		return e, true
	}
	canonical, _ := NormalizeEngineName(name)
	e, ok := r.engines[canonical]
	return e, ok
}

// Names returns the registered engine names (canonical form).
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for n := range r.engines {
		names = append(names, n)
	}
	return names
}

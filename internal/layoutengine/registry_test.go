package layoutengine

import "testing"

func TestNormalizeEngineNameAliases(t *testing.T) {
	cases := map[string]string{
		"grid":                "containment-grid",
		"hierarchical":        "containment-grid",
		"orthogonal":          "orthogonal",
		"tree-table":          "tree",
		"code-model-tree":     "tree",
		"force":               "force-directed",
		"flat-graph":          "force-directed",
		"containment-live":    "containment-runtime",
		"containment-runtime": "containment-runtime",
	}
	for in, want := range cases {
		got, known := NormalizeEngineName(in)
		if !known {
			t.Errorf("%s: expected known alias", in)
		}
		if got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestNormalizeEngineNameUnknownFallsBackToGrid(t *testing.T) {
	got, known := NormalizeEngineName("something-made-up")
	if known {
		t.Fatalf("expected unknown name")
	}
	if got != "containment-grid" {
		t.Fatalf("expected fallback to containment-grid, got %s", got)
	}
}

func TestDefaultRegistryHasAllFiveEngines(t *testing.T) {
	r := NewDefaultRegistry()
	names := []string{"containment-grid", "orthogonal", "tree", "force-directed", "containment-runtime"}
	for _, n := range names {
		if _, ok := r.Get(n); !ok {
			t.Errorf("expected engine %s to be registered", n)
		}
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewDefaultRegistry()
	r.Unregister("tree")
	if _, ok := r.Get("tree"); ok {
		t.Fatalf("expected tree to be unregistered")
	}
}

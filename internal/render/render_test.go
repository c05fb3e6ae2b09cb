package render

import (
	"testing"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

type fakeSurface struct {
	drawn    int
	viewport graph.Rect
}

func (f *fakeSurface) Draw(data *graph.CanvasData, cam graph.Camera) error {
	f.drawn++
	return nil
}

func (f *fakeSurface) Viewport() graph.Rect {
	return f.viewport
}

func TestFakeSurfaceSatisfiesContract(t *testing.T) {
	var s Surface = &fakeSurface{viewport: graph.Rect{Width: 800, Height: 600}}
	if err := s.Draw(graph.NewCanvasData(), graph.DefaultCamera()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Viewport().Width != 800 {
		t.Fatalf("expected viewport width 800, got %v", s.Viewport().Width)
	}
}

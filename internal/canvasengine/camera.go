package canvasengine

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/canvaslayout/internal/graph"
)

// cameraAnim holds an in-flight tweened transition between two camera
// states, grounded on willow's Camera.ScrollTo/scrollAnim (camera.go),
// generalized here to also tween zoom since layout-engine switches
// change zoom as often as position.
type cameraAnim struct {
	tweenX, tweenY, tweenZoom *gween.Tween
	doneX, doneY, doneZoom    bool
}

// CameraController owns the live camera value and any in-progress
// tweened transition, decoupling engine-driven camera resets from
// direct user pans/zooms.
type CameraController struct {
	current graph.Camera
	anim    *cameraAnim
}

// NewCameraController starts at the default camera (origin, zoom 1).
func NewCameraController() *CameraController {
	return &CameraController{current: graph.DefaultCamera()}
}

// Current returns the live camera value.
func (c *CameraController) Current() graph.Camera {
	return c.current
}

// Snap immediately sets the camera, cancelling any running tween.
func (c *CameraController) Snap(cam graph.Camera) {
	c.current = cam
	c.anim = nil
}

// TransitionTo starts a tween from the current camera to target over
// duration seconds using easeFn (defaults to ease.Linear when nil).
func (c *CameraController) TransitionTo(target graph.Camera, duration float32, easeFn ease.TweenFunc) {
	if duration <= 0 {
		c.Snap(target)
		return
	}
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.anim = &cameraAnim{
		tweenX:    gween.New(float32(c.current.X), float32(target.X), duration, easeFn),
		tweenY:    gween.New(float32(c.current.Y), float32(target.Y), duration, easeFn),
		tweenZoom: gween.New(float32(c.current.Zoom), float32(target.Zoom), duration, easeFn),
	}
}

// Advance steps any running tween by dt seconds, returning the updated
// camera. Once all three components finish, the tween is cleared.
func (c *CameraController) Advance(dt float32) graph.Camera {
	if c.anim == nil {
		return c.current
	}
	a := c.anim
	if !a.doneX {
		v, done := a.tweenX.Update(dt)
		c.current.X = float64(v)
		a.doneX = done
	}
	if !a.doneY {
		v, done := a.tweenY.Update(dt)
		c.current.Y = float64(v)
		a.doneY = done
	}
	if !a.doneZoom {
		v, done := a.tweenZoom.Update(dt)
		c.current.Zoom = float64(v)
		a.doneZoom = done
	}
	if a.doneX && a.doneY && a.doneZoom {
		c.anim = nil
	}
	return c.current
}

// GuardBounds re-centers the camera on the default if it has become
// non-finite (NaN/Inf zoom, etc.), per spec §4.10's camera bounds guard.
func (c *CameraController) GuardBounds() {
	if !c.current.IsFinite() {
		c.current = graph.DefaultCamera()
		c.anim = nil
	}
}

// FitsViewport reports whether bounds, padded by 25% on each side,
// still intersects the camera's current viewport rectangle — used to
// decide whether a camera reset is needed after a structural change
// (spec §4.10: "25%-padded viewport intersection check").
func FitsViewport(cam graph.Camera, viewport graph.Rect, bounds graph.Rect) bool {
	padX := bounds.Width * 0.25
	padY := bounds.Height * 0.25
	padded := graph.Rect{
		X: bounds.X - padX, Y: bounds.Y - padY,
		Width: bounds.Width + 2*padX, Height: bounds.Height + 2*padY,
	}
	visible := visibleWorldBounds(cam, viewport)
	return visible.Intersects(padded)
}

func visibleWorldBounds(cam graph.Camera, viewport graph.Rect) graph.Rect {
	if cam.Zoom == 0 {
		return graph.Rect{}
	}
	topLeft := cam.ToWorld(graph.Vec2{X: viewport.X, Y: viewport.Y})
	bottomRight := cam.ToWorld(graph.Vec2{X: viewport.X + viewport.Width, Y: viewport.Y + viewport.Height})
	return graph.Rect{
		X: topLeft.X, Y: topLeft.Y,
		Width: bottomRight.X - topLeft.X, Height: bottomRight.Y - topLeft.Y,
	}
}

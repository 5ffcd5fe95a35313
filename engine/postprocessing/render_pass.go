package postprocessing

import (
	"image"

	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/renderer"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
)

// RenderPass rasterizes a scene and ignores its input. The renderer is sized by its owner.
type RenderPass struct {
	renderer renderer.Renderer
	scene    scene.Scene
	camera   camera.Camera
	disabled bool
}

var _ Pass = &RenderPass{}

// NewRenderPass creates a pass that draws s from cam with r.
func NewRenderPass(r renderer.Renderer, s scene.Scene, cam camera.Camera) *RenderPass {
	return &RenderPass{renderer: r, scene: s, camera: cam}
}

func (p *RenderPass) SetSize(width, height int) {}

func (p *RenderPass) Render(_ *image.RGBA) *image.RGBA {
	return p.renderer.Render(p.scene, p.camera)
}

func (p *RenderPass) Enabled() bool {
	return !p.disabled
}

// SetEnabled toggles the pass.
func (p *RenderPass) SetEnabled(enabled bool) {
	p.disabled = !enabled
}

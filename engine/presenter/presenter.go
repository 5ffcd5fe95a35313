// Package presenter copies finished CPU frames onto a window surface with WebGPU.
package presenter

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed blit.wgsl
var blitShaderSource string

// ErrNoSurface is returned when the window cannot provide a surface, as with a headless window.
var ErrNoSurface = errors.New("presenter: window has no surface")

// PresentMode controls how frames are delivered to the display.
type PresentMode int

const (
	// PresentModeVSync waits for vertical blank (Fifo).
	PresentModeVSync PresentMode = iota
	// PresentModeUncapped presents immediately.
	PresentModeUncapped
)

// presenter is the implementation of the Presenter interface.
type presenter struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	surfaceFormat        wgpu.TextureFormat
	configured           bool

	shader   shaderInterface
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler

	frameTexture   *wgpu.Texture
	frameView      *wgpu.TextureView
	frameBindGroup *wgpu.BindGroup
	frameWidth     int
	frameHeight    int
}

// Presenter owns the WebGPU device and surface of a window and draws each frame
// as a single textured triangle.
type Presenter interface {
	// Resize (re)configures the surface for a framebuffer size in device pixels.
	//
	// Parameters:
	//   - width: framebuffer width
	//   - height: framebuffer height
	Resize(width, height int)

	// SetPresentMode changes the present mode, applied on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Present uploads frame and presents it, stretched to the surface.
	//
	// Parameters:
	//   - frame: a premultiplied image whose bounds start at the origin
	//
	// Returns:
	//   - error: error if the surface texture could not be acquired or the upload failed
	Present(frame *image.RGBA) error

	// Release frees every GPU object.
	Release()
}

var _ Presenter = &presenter{}

// NewPresenter creates a WebGPU instance, surface, adapter and device for a window surface
// and builds the blit pipeline.
//
// Parameters:
//   - surfaceDescriptor: the window's surface descriptor, nil for headless windows
//   - options: a variadic list of PresenterBuilderOption functions
//
// Returns:
//   - Presenter: the presenter, ready for Resize
//   - error: ErrNoSurface when surfaceDescriptor is nil, or the device setup error
func NewPresenter(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...PresenterBuilderOption) (Presenter, error) {
	if surfaceDescriptor == nil {
		return nil, ErrNoSurface
	}

	runtime.LockOSThread()
	p := &presenter{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
	}
	for _, option := range options {
		option(p)
	}

	p.instance = wgpu.CreateInstance(nil)
	p.surface = p.instance.CreateSurface(surfaceDescriptor)

	adapter, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.forceFallbackAdapter,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	p.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "Presenter Device"})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	p.device = device
	p.queue = device.GetQueue()
	p.surfaceFormat = chooseSurfaceFormat(p.surface.GetCapabilities(p.adapter).Formats)

	if err := p.createPipeline(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// chooseSurfaceFormat prefers a linear 8-bit format so display-referred frames are not encoded twice.
func chooseSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return wgpu.TextureFormatBGRA8Unorm
}

func (p *presenter) createPipeline() error {
	si, err := reflectShader(blitShaderSource)
	if err != nil {
		return err
	}
	p.shader = si

	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Blit Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitShaderSource},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit shader: %w", err)
	}
	defer module.Release()

	p.layout, err = p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Blit Bind Group Layout",
		Entries: p.shader.bindings,
	})
	if err != nil {
		return fmt.Errorf("failed to create blit bind group layout: %w", err)
	}

	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Blit Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.layout},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Blit Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: si.vertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: si.fragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    p.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create blit pipeline: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Blit Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create blit sampler: %w", err)
	}
	return nil
}

func (p *presenter) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}

	capabilities := p.surface.GetCapabilities(p.adapter)
	alphaMode := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alphaMode = capabilities.AlphaModes[0]
	}

	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: p.presentMode,
		AlphaMode:   alphaMode,
	})
	p.configured = true
}

func (p *presenter) SetPresentMode(mode PresentMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.presentMode = toWGPUPresentMode(mode)
}

func toWGPUPresentMode(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeUncapped:
		return wgpu.PresentModeImmediate
	case PresentModeVSync:
		fallthrough
	default:
		return wgpu.PresentModeFifo
	}
}

func (p *presenter) Present(frame *image.RGBA) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.configured {
		return errors.New("presenter: surface not configured")
	}
	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if err := p.ensureFrameTexture(w, h); err != nil {
		return err
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  p.frameTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(frame.Stride),
			RowsPerImage: uint32(h),
		},
		&wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
	)

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("failed to acquire surface texture: %w", err)
	}
	defer surfaceTexture.Release()

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.frameBindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()

	p.queue.Submit(commandBuffer)
	p.surface.Present()
	return nil
}

// ensureFrameTexture recreates the upload texture and its bind group when the frame size changes.
func (p *presenter) ensureFrameTexture(width, height int) error {
	if p.frameTexture != nil && p.frameWidth == width && p.frameHeight == height {
		return nil
	}
	p.releaseFrameTexture()

	tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "Frame Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("failed to create frame texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame Bind Group",
		Layout: p.layout,
		Entries: p.bindGroupEntries(view),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return fmt.Errorf("failed to create frame bind group: %w", err)
	}

	p.frameTexture, p.frameView, p.frameBindGroup = tex, view, bindGroup
	p.frameWidth, p.frameHeight = width, height
	return nil
}

// bindGroupEntries binds view to every texture slot of the blit shader and the sampler to every sampler slot.
func (p *presenter) bindGroupEntries(view *wgpu.TextureView) []wgpu.BindGroupEntry {
	entries := make([]wgpu.BindGroupEntry, 0, len(p.shader.bindings))
	for _, b := range p.shader.bindings {
		entry := wgpu.BindGroupEntry{Binding: b.Binding}
		if b.Sampler.Type != wgpu.SamplerBindingTypeUndefined {
			entry.Sampler = p.sampler
		} else {
			entry.TextureView = view
		}
		entries = append(entries, entry)
	}
	return entries
}

func (p *presenter) releaseFrameTexture() {
	if p.frameBindGroup != nil {
		p.frameBindGroup.Release()
		p.frameBindGroup = nil
	}
	if p.frameView != nil {
		p.frameView.Release()
		p.frameView = nil
	}
	if p.frameTexture != nil {
		p.frameTexture.Release()
		p.frameTexture = nil
	}
}

func (p *presenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseFrameTexture()
	if p.sampler != nil {
		p.sampler.Release()
		p.sampler = nil
	}
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.device != nil {
		p.device.Release()
		p.device = nil
	}
	if p.adapter != nil {
		p.adapter.Release()
		p.adapter = nil
	}
	if p.surface != nil {
		p.surface.Release()
		p.surface = nil
	}
	if p.instance != nil {
		p.instance.Release()
		p.instance = nil
	}
}

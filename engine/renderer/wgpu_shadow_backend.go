package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-atlas/engine/shadow"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoCasterShader is returned when a draw needs a pipeline before RegisterCasterShader succeeded.
var ErrNoCasterShader = errors.New("renderer: no caster shader registered")

// CasterEncoder records the shadow casters of one visible light into an open depth pass.
// The pipeline, viewport and per-draw view-projection bind group (group 0) are already set;
// the encoder binds its own vertex/index buffers and any extra bind groups, then draws.
type CasterEncoder func(pass *wgpu.RenderPassEncoder, draw shadow.DrawShadowsSettings)

type atlasTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	size    int
	inUse   bool
	cleared bool
}

type wgpuShadowBackendImpl struct {
	mu *sync.Mutex

	instance   *wgpu.Instance
	adapter    *wgpu.Adapter
	device     *wgpu.Device
	queue      *wgpu.Queue
	ownsDevice bool

	forceFallbackAdapter bool
	pancakingName        string

	// Caster pipeline state. One pipeline exists per distinct slope-scale bias because
	// depth bias is fixed at pipeline creation in WebGPU.
	casterSource      string
	casterEntry       string
	casterModule      *wgpu.ShaderModule
	vertexLayouts     []wgpu.VertexBufferLayout
	extraGroupLayouts []*wgpu.BindGroupLayout
	cullMode          wgpu.CullMode
	drawGroupLayout   *wgpu.BindGroupLayout
	pipelineLayout    *wgpu.PipelineLayout
	pipelines         map[float32]*wgpu.RenderPipeline

	// Per-draw uniforms live in one buffer addressed with dynamic offsets.
	maxDraws      int
	drawBuffer    *wgpu.Buffer
	drawBindGroup *wgpu.BindGroup
	drawSlot      int

	atlases map[string]*atlasTexture
	globals *globalStore

	globalsBuffer *wgpu.Buffer
	sampler       *wgpu.Sampler

	// Recording state between Execute calls.
	encoder  *wgpu.CommandEncoder
	pass     *wgpu.RenderPassEncoder
	target   string
	viewport shadow.Viewport
	view     mgl32.Mat4
	proj     mgl32.Mat4
	slope    float32
	caster   CasterEncoder
	errs     []error
}

// WGPUShadowBackend renders shadow atlases with WebGPU. It implements shadow.CommandBuffer:
// atlases are Depth32Float textures, each SetRenderTarget opens a depth-only render pass and
// each DrawShadows hands the pass to the registered CasterEncoder.
type WGPUShadowBackend interface {
	shadow.CommandBuffer

	// RegisterCasterShader validates WGSL caster source and prepares pipelines for it.
	// The shader must declare the per-draw ShadowDraw uniform at group 0, binding 0.
	//
	// Parameters:
	//   - source: the WGSL source
	//   - entryPoint: the vertex entry point
	//
	// Returns:
	//   - error: validation or pipeline layout errors
	RegisterCasterShader(source, entryPoint string) error

	// SetCasterEncoder sets the callback that draws the casters of each visible light.
	//
	// Parameters:
	//   - encoder: the caster encoder, nil disables drawing
	SetCasterEncoder(encoder CasterEncoder)

	// UploadGlobals writes the shadow globals into the globals uniform buffer.
	//
	// Parameters:
	//   - globals: the globals to upload
	//
	// Returns:
	//   - error: buffer creation errors
	UploadGlobals(globals *shadow.GPUShadowGlobals) error

	// GlobalsBuffer returns the uniform buffer filled by UploadGlobals, nil before the first upload.
	//
	// Returns:
	//   - *wgpu.Buffer: the globals buffer
	GlobalsBuffer() *wgpu.Buffer

	// AtlasView returns the texture view bound under name. Aliases set with
	// SetGlobalTexture are followed.
	//
	// Parameters:
	//   - name: the atlas or alias name
	//
	// Returns:
	//   - *wgpu.TextureView: the depth texture view
	//   - bool: false if no allocated atlas matches
	AtlasView(name string) (*wgpu.TextureView, bool)

	// ComparisonSampler returns a depth comparison sampler for sampling the atlases.
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler, created on first use
	//   - error: sampler creation errors
	ComparisonSampler() (*wgpu.Sampler, error)

	// Global returns the last value published for a named global.
	Global(name string) (any, bool)

	// Keyword reports whether a shader keyword is enabled.
	Keyword(name string) bool

	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// Release frees every GPU resource owned by the backend.
	Release()
}

var _ WGPUShadowBackend = &wgpuShadowBackendImpl{}

// NewWGPUShadowBackend creates a WebGPU shadow backend. Without WithDevice it requests its
// own headless adapter and device.
//
// Parameters:
//   - options: variadic list of WGPUShadowBackendBuilderOption functions
//
// Returns:
//   - WGPUShadowBackend: the backend
//   - error: adapter, device or caster shader errors
func NewWGPUShadowBackend(options ...WGPUShadowBackendBuilderOption) (WGPUShadowBackend, error) {
	b := &wgpuShadowBackendImpl{
		mu:            &sync.Mutex{},
		pancakingName: shadow.DefaultShaderProperties().ShadowPancaking,
		casterSource:  DefaultCasterShaderSource,
		casterEntry:   DefaultCasterEntryPoint,
		cullMode:      wgpu.CullModeNone,
		maxDraws:      64,
		pipelines:     make(map[float32]*wgpu.RenderPipeline),
		atlases:       make(map[string]*atlasTexture),
		globals:       newGlobalStore(),
		vertexLayouts: []wgpu.VertexBufferLayout{{
			ArrayStride: 12,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         wgpu.VertexFormatFloat32x3,
				Offset:         0,
				ShaderLocation: 0,
			}},
		}},
	}
	for _, opt := range options {
		opt(b)
	}

	if b.device == nil {
		if err := b.requestDevice(); err != nil {
			return nil, err
		}
	}
	if err := b.createDrawResources(); err != nil {
		b.Release()
		return nil, err
	}
	if err := b.RegisterCasterShader(b.casterSource, b.casterEntry); err != nil {
		b.Release()
		return nil, err
	}
	return b, nil
}

func (b *wgpuShadowBackendImpl) requestDevice() error {
	b.instance = wgpu.CreateInstance(nil)
	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
	})
	if err != nil {
		return fmt.Errorf("failed to request shadow adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Shadow Device",
	})
	if err != nil {
		return fmt.Errorf("failed to request shadow device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()
	b.ownsDevice = true
	return nil
}

func (b *wgpuShadowBackendImpl) createDrawResources() error {
	var draw gpuShadowDraw
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Draw Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   uint64(draw.Size()),
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow draw bind group layout: %w", err)
	}
	b.drawGroupLayout = layout

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Draw Uniforms",
		Size:  uint64(b.maxDraws * drawSlotStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow draw buffer: %w", err)
	}
	b.drawBuffer = buf

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Draw Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    uint64(draw.Size()),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow draw bind group: %w", err)
	}
	b.drawBindGroup = bg
	return nil
}

func (b *wgpuShadowBackendImpl) RegisterCasterShader(source, entryPoint string) error {
	if err := validateCasterShader(source, entryPoint); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Shadow Caster Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create caster shader module: %w", err)
	}

	groupLayouts := append([]*wgpu.BindGroupLayout{b.drawGroupLayout}, b.extraGroupLayouts...)
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Caster Pipeline Layout",
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		module.Release()
		return fmt.Errorf("failed to create caster pipeline layout: %w", err)
	}

	b.releasePipelines()
	b.casterSource = source
	b.casterEntry = entryPoint
	b.casterModule = module
	b.pipelineLayout = pipelineLayout
	return nil
}

// pipelineFor returns the caster pipeline for a slope-scale bias, creating it on first use.
func (b *wgpuShadowBackendImpl) pipelineFor(slope float32) (*wgpu.RenderPipeline, error) {
	if p, ok := b.pipelines[slope]; ok {
		return p, nil
	}
	if b.casterModule == nil {
		return nil, ErrNoCasterShader
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Shadow Caster Pipeline (slope %g)", slope),
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     b.casterModule,
			EntryPoint: b.casterEntry,
			Buffers:    b.vertexLayouts,
		},
		Fragment: nil,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  b.cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLess,
			DepthBiasSlopeScale: slope,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create caster pipeline: %w", err)
	}
	b.pipelines[slope] = created
	return created, nil
}

func (b *wgpuShadowBackendImpl) releasePipelines() {
	for k, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, k)
	}
	if b.pipelineLayout != nil {
		b.pipelineLayout.Release()
		b.pipelineLayout = nil
	}
	if b.casterModule != nil {
		b.casterModule.Release()
		b.casterModule = nil
	}
}

func (b *wgpuShadowBackendImpl) SetCasterEncoder(encoder CasterEncoder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caster = encoder
}

func (b *wgpuShadowBackendImpl) GetTemporaryShadowAtlas(name string, size int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if size < 1 {
		return fmt.Errorf("%w: %q size %d", ErrInvalidAtlasSize, name, size)
	}
	if a, ok := b.atlases[name]; ok {
		if a.inUse {
			return fmt.Errorf("%w: %q", ErrAtlasInUse, name)
		}
		if a.size == size {
			a.inUse = true
			a.cleared = false
			return nil
		}
		a.view.Release()
		a.texture.Release()
		delete(b.atlases, name)
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: name,
		Size: wgpu.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create shadow atlas %q: %w", name, err)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("failed to create shadow atlas view %q: %w", name, err)
	}

	b.atlases[name] = &atlasTexture{texture: tex, view: view, size: size, inUse: true}
	return nil
}

// ReleaseTemporaryShadowAtlas returns the atlas to the pool. The texture is kept for reuse
// by the next allocation of the same name and size.
func (b *wgpuShadowBackendImpl) ReleaseTemporaryShadowAtlas(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.atlases[name]
	if !ok || !a.inUse {
		return fmt.Errorf("%w: %q", ErrUnknownAtlas, name)
	}
	if b.target == name {
		b.endPass()
		b.target = ""
	}
	a.inUse = false
	return nil
}

func (b *wgpuShadowBackendImpl) SetRenderTarget(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPass()
	b.target = name
	if err := b.beginPass(); err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *wgpuShadowBackendImpl) beginPass() error {
	a, ok := b.atlases[b.target]
	if !ok || !a.inUse {
		return fmt.Errorf("%w: render target %q", ErrUnknownAtlas, b.target)
	}
	if b.encoder == nil {
		encoder, err := b.device.CreateCommandEncoder(nil)
		if err != nil {
			return err
		}
		b.encoder = encoder
	}

	loadOp := wgpu.LoadOpLoad
	if !a.cleared {
		loadOp = wgpu.LoadOpClear
		a.cleared = true
	}
	b.pass = b.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            a.view,
			DepthLoadOp:     loadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	return nil
}

func (b *wgpuShadowBackendImpl) endPass() {
	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass = nil
}

func (b *wgpuShadowBackendImpl) SetViewport(v shadow.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = v
}

func (b *wgpuShadowBackendImpl) SetViewProjectionMatrices(view, projection mgl32.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.view = view
	b.proj = projection
}

// SetGlobalDepthBias selects the slope-scale bias of following draws. The constant bias is
// ignored; shadow casters only use slope-scale bias.
func (b *wgpuShadowBackendImpl) SetGlobalDepthBias(_, slopeBias float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slope = slopeBias
}

func (b *wgpuShadowBackendImpl) DrawShadows(settings shadow.DrawShadowsSettings) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pass == nil {
		b.errs = append(b.errs, fmt.Errorf("renderer: draw for light %d without render target", settings.VisibleLightIndex))
		return
	}
	if b.caster == nil {
		return
	}

	p, err := b.pipelineFor(b.slope)
	if err != nil {
		b.errs = append(b.errs, err)
		return
	}

	if b.drawSlot == b.maxDraws {
		shadow.Logger().Debug("shadow draw slots exhausted, submitting early", "maxDraws", b.maxDraws)
		if err := b.flush(); err != nil {
			b.errs = append(b.errs, err)
			return
		}
		if err := b.beginPass(); err != nil {
			b.errs = append(b.errs, err)
			return
		}
	}

	pancaking := b.globals.floats[b.pancakingName]
	draw := newShadowDraw(b.view, b.proj, pancaking > 0.5)
	offset := uint32(b.drawSlot * drawSlotStride)
	b.queue.WriteBuffer(b.drawBuffer, uint64(offset), draw.Marshal())
	b.drawSlot++

	b.pass.SetPipeline(p)
	b.pass.SetViewport(b.viewport.X, b.viewport.Y, b.viewport.Width, b.viewport.Height, 0, 1)
	b.pass.SetBindGroup(0, b.drawBindGroup, []uint32{offset})
	b.caster(b.pass, settings)
}

// flush submits everything recorded so far. Per-draw uniform slots become free again.
func (b *wgpuShadowBackendImpl) flush() error {
	b.endPass()
	b.drawSlot = 0
	if b.encoder == nil {
		return nil
	}

	commandBuffer, err := b.encoder.Finish(nil)
	b.encoder.Release()
	b.encoder = nil
	if err != nil {
		return fmt.Errorf("failed to finish shadow commands: %w", err)
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuShadowBackendImpl) SetGlobalInt(name string, v int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.ints[name] = v
}

func (b *wgpuShadowBackendImpl) SetGlobalFloat(name string, v float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.floats[name] = v
}

func (b *wgpuShadowBackendImpl) SetGlobalVector(name string, v mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.vectors[name] = v
}

func (b *wgpuShadowBackendImpl) SetGlobalVectorArray(name string, v []mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.setVectorArray(name, v)
}

func (b *wgpuShadowBackendImpl) SetGlobalMatrixArray(name string, m []mgl32.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.setMatrixArray(name, m)
}

func (b *wgpuShadowBackendImpl) SetGlobalTexture(name, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.textures[name] = source
}

func (b *wgpuShadowBackendImpl) SetKeyword(keyword string, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.globals.keywords[keyword] = enabled
}

// Execute submits the recorded passes and returns any error collected while recording.
func (b *wgpuShadowBackendImpl) Execute() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.flush(); err != nil {
		b.errs = append(b.errs, err)
	}
	b.target = ""

	err := errors.Join(b.errs...)
	if err != nil {
		shadow.Logger().Warn("shadow commands failed", "error", err)
	}
	b.errs = nil
	return err
}

func (b *wgpuShadowBackendImpl) UploadGlobals(globals *shadow.GPUShadowGlobals) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.globalsBuffer == nil {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Shadow Globals",
			Size:  uint64(globals.Size()),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create shadow globals buffer: %w", err)
		}
		b.globalsBuffer = buf
	}
	b.queue.WriteBuffer(b.globalsBuffer, 0, globals.Marshal())
	return nil
}

func (b *wgpuShadowBackendImpl) GlobalsBuffer() *wgpu.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.globalsBuffer
}

func (b *wgpuShadowBackendImpl) AtlasView(name string) (*wgpu.TextureView, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	a, ok := b.atlases[b.globals.resolveTexture(name)]
	if !ok || !a.inUse {
		return nil, false
	}
	return a.view, true
}

func (b *wgpuShadowBackendImpl) ComparisonSampler() (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sampler != nil {
		return b.sampler, nil
	}
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	b.sampler = samp
	return samp, nil
}

func (b *wgpuShadowBackendImpl) Global(name string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.globals.lookup(name)
}

func (b *wgpuShadowBackendImpl) Keyword(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.globals.keywords[name]
}

func (b *wgpuShadowBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuShadowBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuShadowBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPass()
	if b.encoder != nil {
		b.encoder.Release()
		b.encoder = nil
	}
	b.releasePipelines()
	for name, a := range b.atlases {
		a.view.Release()
		a.texture.Release()
		delete(b.atlases, name)
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.globalsBuffer != nil {
		b.globalsBuffer.Release()
		b.globalsBuffer = nil
	}
	if b.drawBindGroup != nil {
		b.drawBindGroup.Release()
		b.drawBindGroup = nil
	}
	if b.drawBuffer != nil {
		b.drawBuffer.Release()
		b.drawBuffer = nil
	}
	if b.drawGroupLayout != nil {
		b.drawGroupLayout.Release()
		b.drawGroupLayout = nil
	}
	if !b.ownsDevice {
		return
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
